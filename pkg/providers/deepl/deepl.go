package deepl

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/langdec/langdec/pkg/providers"
)

// Config DeepL配置
type Config struct {
	providers.BaseConfig
	UseFreeAPI bool   `json:"use_free_api"`
	Formality  string `json:"formality,omitempty"` // default / more / less
}

// DefaultConfig 返回默认配置
func DefaultConfig() Config {
	config := Config{
		BaseConfig: providers.DefaultConfig(),
		UseFreeAPI: false,
	}
	config.APIEndpoint = "https://api.deepl.com/v2"
	return config
}

// Provider DeepL提供商
type Provider struct {
	config     Config
	httpClient *http.Client
}

var (
	_ providers.Provider    = (*Provider)(nil)
	_ providers.WordBatcher = (*Provider)(nil)
)

// New 创建新的DeepL提供商
func New(config Config) *Provider {
	if config.APIEndpoint == "" {
		if config.UseFreeAPI {
			config.APIEndpoint = "https://api-free.deepl.com/v2"
		} else {
			config.APIEndpoint = "https://api.deepl.com/v2"
		}
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
	resp, err := p.translate(ctx, []string{req.Text}, req.SourceLanguage, req.TargetLanguage)
	if err != nil {
		return nil, err
	}

	if len(resp.Translations) == 0 {
		return nil, providers.NewError(providers.ErrCodeEmptyResponse, "no translation returned")
	}

	text := strings.TrimSpace(resp.Translations[0].Text)
	if text == "" {
		return nil, providers.NewError(providers.ErrCodeEmptyResponse, fmt.Sprintf("empty translation for %q", req.Text))
	}

	return &providers.Response{
		Text:     text,
		Metadata: responseMetadata(resp.Translations[0].DetectedSourceLanguage),
	}, nil
}

// TranslateText 翻译整段文本
func (p *Provider) TranslateText(ctx context.Context, req *providers.Request) (*providers.Response, error) {
	resp, err := p.translate(ctx, []string{req.Text}, req.SourceLanguage, req.TargetLanguage)
	if err != nil {
		return nil, err
	}

	if len(resp.Translations) == 0 {
		return nil, providers.NewError(providers.ErrCodeEmptyResponse, "no translation returned")
	}

	return &providers.Response{
		Text:     resp.Translations[0].Text,
		Metadata: responseMetadata(resp.Translations[0].DetectedSourceLanguage),
	}, nil
}

// TranslateWords 批量翻译词。/translate 接口接受多个 text 参数，
// translations 数组按请求顺序返回。
func (p *Provider) TranslateWords(ctx context.Context, req *providers.BatchRequest) (*providers.BatchResponse, error) {
	if len(req.Words) == 0 {
		return &providers.BatchResponse{}, nil
	}

	resp, err := p.translate(ctx, req.Words, req.SourceLanguage, req.TargetLanguage)
	if err != nil {
		return nil, err
	}

	out := &providers.BatchResponse{
		Translations: make([]string, len(req.Words)),
		OK:           make([]bool, len(req.Words)),
	}
	for i := range req.Words {
		if i >= len(resp.Translations) {
			break
		}
		text := strings.TrimSpace(resp.Translations[i].Text)
		if text == "" {
			continue
		}
		out.Translations[i] = text
		out.OK[i] = true
	}
	return out, nil
}

// GetName 获取提供商名称
func (p *Provider) GetName() string {
	return "deepl"
}

// GetCapabilities 获取提供商能力
func (p *Provider) GetCapabilities() providers.Capabilities {
	return providers.Capabilities{
		SupportedLanguages: []providers.Language{
			{Code: "BG", Name: "Bulgarian"},
			{Code: "CS", Name: "Czech"},
			{Code: "DA", Name: "Danish"},
			{Code: "DE", Name: "German"},
			{Code: "EL", Name: "Greek"},
			{Code: "EN", Name: "English"},
			{Code: "EN-GB", Name: "English (British)"},
			{Code: "EN-US", Name: "English (American)"},
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
			{Code: "NB", Name: "Norwegian (Bokmål)"},
			{Code: "NL", Name: "Dutch"},
			{Code: "PL", Name: "Polish"},
			{Code: "PT", Name: "Portuguese"},
			{Code: "PT-BR", Name: "Portuguese (Brazilian)"},
			{Code: "PT-PT", Name: "Portuguese (European)"},
			{Code: "RO", Name: "Romanian"},
			{Code: "RU", Name: "Russian"},
			{Code: "SK", Name: "Slovak"},
			{Code: "SL", Name: "Slovenian"},
			{Code: "SV", Name: "Swedish"},
			{Code: "TR", Name: "Turkish"},
			{Code: "UK", Name: "Ukrainian"},
			{Code: "ZH", Name: "Chinese"},
		},
		MaxTextLength:     130000, // DeepL Pro限制
		SupportsWordBatch: true,
		RequiresAPIKey:    true,
		RateLimit: &providers.RateLimit{
			CharactersPerDay: 500000, // 免费版限制
		},
	}
}

// HealthCheck 健康检查，查询使用量接口
func (p *Provider) HealthCheck(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet,
		p.config.APIEndpoint+"/usage", nil)
	if err != nil {
		return err
	}

	req.Header.Set("Authorization", "DeepL-Auth-Key "+p.config.APIKey)

	resp, err := p.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("health check failed: %s", resp.Status)
	}

	return nil
}

// translate 执行翻译请求
func (p *Provider) translate(ctx context.Context, texts []string, source, target string) (*TranslateResponse, error) {
	params := url.Values{}
	for _, t := range texts {
		params.Add("text", t)
	}
	params.Set("source_lang", normalizeLanguageCode(source, true))
	params.Set("target_lang", normalizeLanguageCode(target, false))
	if p.config.Formality != "" {
		params.Set("formality", p.config.Formality)
	}
	body := params.Encode()

	var resp *http.Response
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
			p.config.APIEndpoint+"/translate",
			strings.NewReader(body))
		if err != nil {
			return nil, fmt.Errorf("failed to create request: %w", err)
		}

		httpReq.Header.Set("Content-Type", "application/x-www-form-urlencoded")
		httpReq.Header.Set("Authorization", "DeepL-Auth-Key "+p.config.APIKey)
		for k, v := range p.config.Headers {
			httpReq.Header.Set(k, v)
		}

		resp, err = p.httpClient.Do(httpReq)
		if err != nil {
			lastErr = err
			continue
		}

		if resp.StatusCode >= 200 && resp.StatusCode < 300 {
			break
		}

		errBody, _ := io.ReadAll(resp.Body)
		resp.Body.Close()

		switch resp.StatusCode {
		case 400:
			lastErr = fmt.Errorf("bad request: %s", string(errBody))
		case 403:
			lastErr = fmt.Errorf("authentication failed")
		case 404:
			lastErr = fmt.Errorf("requested resource not found")
		case 413:
			lastErr = fmt.Errorf("request size exceeded")
		case 429:
			lastErr = fmt.Errorf("too many requests")
		case 456:
			lastErr = fmt.Errorf("quota exceeded")
		case 503:
			lastErr = fmt.Errorf("service temporarily unavailable")
		default:
			lastErr = fmt.Errorf("API error: %s", resp.Status)
		}

		if resp.StatusCode == 429 || resp.StatusCode >= 500 {
			continue
		}
		return nil, lastErr
	}

	if resp == nil || resp.StatusCode < 200 || resp.StatusCode >= 300 {
		if lastErr != nil {
			return nil, lastErr
		}
		return nil, fmt.Errorf("request failed")
	}

	defer resp.Body.Close()

	var translateResp TranslateResponse
	if err := json.NewDecoder(resp.Body).Decode(&translateResp); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}

	return &translateResp, nil
}

func responseMetadata(detected string) map[string]interface{} {
	if detected == "" {
		return nil
	}
	return map[string]interface{}{"detected_source": detected}
}

// normalizeLanguageCode 标准化语言代码为DeepL格式
func normalizeLanguageCode(lang string, isSource bool) string {
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
		upper = normalized
	}

	// 目标语言的英语和葡萄牙语需要指定变体
	if !isSource {
		switch upper {
		case "EN":
			return "EN-US"
		case "PT":
			return "PT-BR"
		}
	}

	// xx_YY 转 XX-YY
	if strings.Contains(upper, "_") {
		parts := strings.Split(upper, "_")
		if len(parts) == 2 {
			return parts[0] + "-" + parts[1]
		}
	}

	return upper
}

// TranslateResponse 翻译响应
type TranslateResponse struct {
	Translations []struct {
		DetectedSourceLanguage string `json:"detected_source_language"`
		Text                   string `json:"text"`
	} `json:"translations"`
}
