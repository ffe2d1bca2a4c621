package deeplx

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/langdec/langdec/pkg/providers"
)

// Config DeepLX配置
type Config struct {
	providers.BaseConfig
	AccessToken string `json:"access_token,omitempty"` // 可选的访问令牌
}

// DefaultConfig 返回默认配置
func DefaultConfig() Config {
	config := Config{
		BaseConfig: providers.DefaultConfig(),
	}
	config.APIEndpoint = "http://localhost:1188/translate"
	return config
}

// Provider DeepLX提供商，自部署的DeepL兼容服务
type Provider struct {
	config     Config
	httpClient *http.Client
}

var _ providers.Provider = (*Provider)(nil)

// New 创建新的DeepLX提供商
func New(config Config) *Provider {
	if config.APIEndpoint == "" {
		config.APIEndpoint = "http://localhost:1188/translate"
	}

	return &Provider{
		config: config,
		httpClient: &http.Client{
			Timeout: config.Timeout,
		},
	}
}

// Configure 配置提供商
func (p *Provider) Configure(config interface{}) error {
	cfg, ok := config.(Config)
	if !ok {
		return fmt.Errorf("invalid config type: expected Config")
	}
	p.config = cfg
	return nil
}

// TranslateWord 翻译单个词
func (p *Provider) TranslateWord(ctx context.Context, req *providers.Request) (*providers.Response, error) {
	resp, err := p.translate(ctx, req)
	if err != nil {
		return nil, err
	}

	text := strings.TrimSpace(resp.Data)
	if text == "" {
		return nil, providers.NewError(providers.ErrCodeEmptyResponse, fmt.Sprintf("empty translation for %q", req.Text))
	}

	resp.Data = text
	return toResponse(resp), nil
}

// TranslateText 翻译整段文本
func (p *Provider) TranslateText(ctx context.Context, req *providers.Request) (*providers.Response, error) {
	resp, err := p.translate(ctx, req)
	if err != nil {
		return nil, err
	}
	return toResponse(resp), nil
}

// GetName 获取提供商名称
func (p *Provider) GetName() string {
	return "deeplx"
}

// GetCapabilities 获取提供商能力，语言集合与DeepL一致
func (p *Provider) GetCapabilities() providers.Capabilities {
	return providers.Capabilities{
		SupportedLanguages: []providers.Language{
			{Code: "BG", Name: "Bulgarian"},
			{Code: "CS", Name: "Czech"},
			{Code: "DA", Name: "Danish"},
			{Code: "DE", Name: "German"},
			{Code: "EL", Name: "Greek"},
			{Code: "EN", Name: "English"},
			{Code: "ES", Name: "Spanish"},
			{Code: "ET", Name: "Estonian"},
			{Code: "FI", Name: "Finnish"},
			{Code: "FR", Name: "French"},
			{Code: "HU", Name: "Hungarian"},
			{Code: "ID", Name: "Indonesian"},
			{Code: "IT", Name: "Italian"},
			{Code: "JA", Name: "Japanese"},
			{Code: "KO", Name: "Korean"},
			{Code: "LT", Name: "Lithuanian"},
			{Code: "LV", Name: "Latvian"},
			{Code: "NB", Name: "Norwegian"},
			{Code: "NL", Name: "Dutch"},
			{Code: "PL", Name: "Polish"},
			{Code: "PT", Name: "Portuguese"},
			{Code: "RO", Name: "Romanian"},
			{Code: "RU", Name: "Russian"},
			{Code: "SK", Name: "Slovak"},
			{Code: "SL", Name: "Slovenian"},
			{Code: "SV", Name: "Swedish"},
			{Code: "TR", Name: "Turkish"},
			{Code: "UK", Name: "Ukrainian"},
			{Code: "ZH", Name: "Chinese"},
		},
		MaxTextLength:  5000,
		RequiresAPIKey: false,
	}
}

// HealthCheck 健康检查
func (p *Provider) HealthCheck(ctx context.Context) error {
	req := &providers.Request{
		Text:           "hello",
		SourceLanguage: "EN",
		TargetLanguage: "DE",
	}

	_, err := p.TranslateWord(ctx, req)
	return err
}

// translate 执行翻译请求
func (p *Provider) translate(ctx context.Context, req *providers.Request) (*TranslateResponse, error) {
	deeplxReq := TranslateRequest{
		Text:       req.Text,
		SourceLang: normalizeLanguageCode(req.SourceLanguage),
		TargetLang: normalizeLanguageCode(req.TargetLanguage),
	}

	body, err := json.Marshal(deeplxReq)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	var lastErr error

	for i := 0; i <= p.config.MaxRetries; i++ {
		if i > 0 {
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(p.config.RetryDelay * time.Duration(i)):
			}
		}

		httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost,
			p.config.APIEndpoint, bytes.NewReader(body))
		if err != nil {
			return nil, fmt.Errorf("failed to create request: %w", err)
		}

		httpReq.Header.Set("Content-Type", "application/json")
		if p.config.AccessToken != "" {
			httpReq.Header.Set("Authorization", "Bearer "+p.config.AccessToken)
		}
		for k, v := range p.config.Headers {
			httpReq.Header.Set(k, v)
		}

		resp, err := p.httpClient.Do(httpReq)
		if err != nil {
			lastErr = err
			continue
		}

		respBody, err := io.ReadAll(resp.Body)
		resp.Body.Close()
		if err != nil {
			lastErr = fmt.Errorf("failed to read response: %w", err)
			continue
		}

		var translateResp TranslateResponse
		if err := json.Unmarshal(respBody, &translateResp); err != nil {
			lastErr = fmt.Errorf("failed to decode response: %w", err)
			continue
		}

		// DeepLX在响应体内携带业务状态码
		if translateResp.Code != 200 {
			lastErr = fmt.Errorf("API error: %s", translateResp.Message)
			if translateResp.Code == 400 || translateResp.Code == 404 {
				return nil, lastErr
			}
			continue
		}

		return &translateResp, nil
	}

	return nil, lastErr
}

func toResponse(resp *TranslateResponse) *providers.Response {
	out := &providers.Response{
		Text:  resp.Data,
		Model: "deeplx",
	}
	if resp.SourceLang != "" {
		out.Metadata = map[string]interface{}{"detected_source": resp.SourceLang}
	}
	return out
}

// normalizeLanguageCode 标准化语言代码，与DeepL格式兼容
func normalizeLanguageCode(lang string) string {
	upper := strings.ToUpper(lang)

	replacements := map[string]string{
		"CHINESE":    "ZH",
		"ENGLISH":    "EN",
		"SPANISH":    "ES",
		"FRENCH":     "FR",
		"GERMAN":     "DE",
		"JAPANESE":   "JA",
		"KOREAN":     "KO",
		"PORTUGUESE": "PT",
		"RUSSIAN":    "RU",
		"ITALIAN":    "IT",
	}

	if normalized, ok := replacements[upper]; ok {
		return normalized
	}

	return upper
}

// TranslateRequest 翻译请求
type TranslateRequest struct {
	Text       string `json:"text"`
	SourceLang string `json:"source_lang"`
	TargetLang string `json:"target_lang"`
}

// TranslateResponse 翻译响应
type TranslateResponse struct {
	Code       int    `json:"code"`
	Message    string `json:"message,omitempty"`
	Data       string `json:"data"`
	SourceLang string `json:"source_lang,omitempty"`
}
