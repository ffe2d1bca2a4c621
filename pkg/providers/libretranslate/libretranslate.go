package libretranslate

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/langdec/langdec/pkg/providers"
)

// Config LibreTranslate配置
type Config struct {
	providers.BaseConfig
	RequiresAPIKey bool `json:"requires_api_key"` // 服务器是否需要API密钥
}

// DefaultConfig 返回默认配置
func DefaultConfig() Config {
	config := Config{
		BaseConfig:     providers.DefaultConfig(),
		RequiresAPIKey: false,
	}
	config.APIEndpoint = "https://libretranslate.com"
	return config
}

// Provider LibreTranslate提供商
type Provider struct {
	config     Config
	httpClient *http.Client

	langOnce  sync.Once
	languages []Language // 缓存服务器支持的语言
}

var _ providers.Provider = (*Provider)(nil)

// New 创建新的LibreTranslate提供商
func New(config Config) *Provider {
	if config.APIEndpoint == "" {
		config.APIEndpoint = "https://libretranslate.com"
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
	resp, err := p.doTranslate(ctx, req)
	if err != nil {
		return nil, err
	}

	text := strings.TrimSpace(resp.TranslatedText)
	if text == "" {
		return nil, providers.NewError(providers.ErrCodeEmptyResponse, fmt.Sprintf("empty translation for %q", req.Text))
	}

	resp.TranslatedText = text
	return toResponse(resp), nil
}

// TranslateText 翻译整段文本
func (p *Provider) TranslateText(ctx context.Context, req *providers.Request) (*providers.Response, error) {
	resp, err := p.doTranslate(ctx, req)
	if err != nil {
		return nil, err
	}
	return toResponse(resp), nil
}

func (p *Provider) doTranslate(ctx context.Context, req *providers.Request) (*TranslateResponse, error) {
	p.ensureLanguages(ctx)

	translateReq := TranslateRequest{
		Q:      req.Text,
		Source: p.normalizeLanguageCode(req.SourceLanguage),
		Target: p.normalizeLanguageCode(req.TargetLanguage),
		Format: "text",
	}

	if p.config.RequiresAPIKey && p.config.APIKey != "" {
		translateReq.APIKey = p.config.APIKey
	}

	return p.translate(ctx, translateReq)
}

// GetName 获取提供商名称
func (p *Provider) GetName() string {
	return "libretranslate"
}

// GetCapabilities 获取提供商能力
func (p *Provider) GetCapabilities() providers.Capabilities {
	langs := p.languages
	if langs == nil {
		langs = getDefaultLanguages()
	}

	supportedLangs := make([]providers.Language, 0, len(langs))
	for _, lang := range langs {
		supportedLangs = append(supportedLangs, providers.Language{
			Code: lang.Code,
			Name: lang.Name,
		})
	}

	return providers.Capabilities{
		SupportedLanguages: supportedLangs,
		MaxTextLength:      5000,
		RequiresAPIKey:     p.config.RequiresAPIKey,
	}
}

// HealthCheck 健康检查，拉取语言列表
func (p *Provider) HealthCheck(ctx context.Context) error {
	return p.fetchLanguages(ctx)
}

// translate 执行翻译请求
func (p *Provider) translate(ctx context.Context, req TranslateRequest) (*TranslateResponse, error) {
	body, err := json.Marshal(req)
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
			p.config.APIEndpoint+"/translate", bytes.NewReader(body))
		if err != nil {
			return nil, fmt.Errorf("failed to create request: %w", err)
		}

		httpReq.Header.Set("Content-Type", "application/json")
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

		if resp.StatusCode >= 200 && resp.StatusCode < 300 {
			var translateResp TranslateResponse
			if err := json.Unmarshal(respBody, &translateResp); err != nil {
				return nil, fmt.Errorf("failed to decode response: %w", err)
			}
			return &translateResp, nil
		}

		var errorResp ErrorResponse
		if err := json.Unmarshal(respBody, &errorResp); err == nil && errorResp.Error != "" {
			lastErr = fmt.Errorf("API error: %s", errorResp.Error)
		} else {
			lastErr = fmt.Errorf("API error: %s", resp.Status)
		}

		if resp.StatusCode == 429 || resp.StatusCode >= 500 {
			continue
		}
		break
	}

	return nil, lastErr
}

// ensureLanguages 首次调用时拉取语言列表，失败则退回内置列表
func (p *Provider) ensureLanguages(ctx context.Context) {
	p.langOnce.Do(func() {
		if err := p.fetchLanguages(ctx); err != nil {
			p.languages = getDefaultLanguages()
		}
	})
}

// fetchLanguages 获取支持的语言列表
func (p *Provider) fetchLanguages(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet,
		p.config.APIEndpoint+"/languages", nil)
	if err != nil {
		return err
	}

	resp, err := p.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("failed to fetch languages: %s", resp.Status)
	}

	var languages []Language
	if err := json.NewDecoder(resp.Body).Decode(&languages); err != nil {
		return err
	}

	p.languages = languages
	return nil
}

// normalizeLanguageCode 标准化语言代码
func (p *Provider) normalizeLanguageCode(lang string) string {
	lower := strings.ToLower(lang)

	replacements := map[string]string{
		"chinese":    "zh",
		"english":    "en",
		"spanish":    "es",
		"french":     "fr",
		"german":     "de",
		"japanese":   "ja",
		"korean":     "ko",
		"portuguese": "pt",
		"russian":    "ru",
		"italian":    "it",
		"arabic":     "ar",
		"hindi":      "hi",
		"turkish":    "tr",
		"polish":     "pl",
		"dutch":      "nl",
		"swedish":    "sv",
		"danish":     "da",
		"norwegian":  "no",
		"finnish":    "fi",
	}

	if normalized, ok := replacements[lower]; ok {
		return normalized
	}

	if len(lang) == 2 {
		return lower
	}

	for _, l := range p.languages {
		if strings.EqualFold(l.Name, lang) {
			return l.Code
		}
	}

	return lower
}

func toResponse(resp *TranslateResponse) *providers.Response {
	out := &providers.Response{
		Text:  resp.TranslatedText,
		Model: "libretranslate",
	}
	if resp.DetectedLanguage != nil {
		out.Metadata = map[string]interface{}{
			"detected_source": resp.DetectedLanguage.Language,
			"confidence":      fmt.Sprintf("%.2f", resp.DetectedLanguage.Confidence),
		}
	}
	return out
}

// getDefaultLanguages 返回内置语言列表
func getDefaultLanguages() []Language {
	return []Language{
		{Code: "en", Name: "English"},
		{Code: "ar", Name: "Arabic"},
		{Code: "zh", Name: "Chinese"},
		{Code: "fr", Name: "French"},
		{Code: "de", Name: "German"},
		{Code: "hi", Name: "Hindi"},
		{Code: "id", Name: "Indonesian"},
		{Code: "ga", Name: "Irish"},
		{Code: "it", Name: "Italian"},
		{Code: "ja", Name: "Japanese"},
		{Code: "ko", Name: "Korean"},
		{Code: "pl", Name: "Polish"},
		{Code: "pt", Name: "Portuguese"},
		{Code: "ru", Name: "Russian"},
		{Code: "es", Name: "Spanish"},
		{Code: "tr", Name: "Turkish"},
		{Code: "vi", Name: "Vietnamese"},
	}
}

// Language 语言信息
type Language struct {
	Code string `json:"code"`
	Name string `json:"name"`
}

// TranslateRequest 翻译请求
type TranslateRequest struct {
	Q      string `json:"q"`
	Source string `json:"source"`
	Target string `json:"target"`
	Format string `json:"format"`
	APIKey string `json:"api_key,omitempty"`
}

// TranslateResponse 翻译响应
type TranslateResponse struct {
	TranslatedText   string `json:"translatedText"`
	DetectedLanguage *struct {
		Confidence float64 `json:"confidence"`
		Language   string  `json:"language"`
	} `json:"detectedLanguage,omitempty"`
}

// ErrorResponse 错误响应
type ErrorResponse struct {
	Error string `json:"error"`
}
