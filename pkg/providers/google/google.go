package google

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

// Config Google Cloud Translation v2 配置
type Config struct {
	providers.BaseConfig
	ProjectID string `json:"project_id,omitempty"`
}

// DefaultConfig 返回默认配置
func DefaultConfig() Config {
	config := Config{
		BaseConfig: providers.DefaultConfig(),
	}
	config.APIEndpoint = "https://translation.googleapis.com/language/translate/v2"
	return config
}

// Provider Google Translate提供商
type Provider struct {
	config     Config
	httpClient *http.Client
}

var (
	_ providers.Provider    = (*Provider)(nil)
	_ providers.WordBatcher = (*Provider)(nil)
)

// New 创建新的Google Translate提供商
func New(config Config) *Provider {
	if config.APIEndpoint == "" {
		config.APIEndpoint = "https://translation.googleapis.com/language/translate/v2"
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

	if len(resp.Data.Translations) == 0 {
		return nil, providers.NewError(providers.ErrCodeEmptyResponse, "no translation returned")
	}

	text := strings.TrimSpace(resp.Data.Translations[0].TranslatedText)
	if text == "" {
		return nil, providers.NewError(providers.ErrCodeEmptyResponse, fmt.Sprintf("empty translation for %q", req.Text))
	}

	return &providers.Response{
		Text:  text,
		Model: "google-translate-v2",
		Metadata: map[string]interface{}{
			"detected_source": resp.Data.Translations[0].DetectedSourceLanguage,
		},
	}, nil
}

// TranslateText 翻译整段文本
func (p *Provider) TranslateText(ctx context.Context, req *providers.Request) (*providers.Response, error) {
	resp, err := p.translate(ctx, []string{req.Text}, req.SourceLanguage, req.TargetLanguage)
	if err != nil {
		return nil, err
	}

	if len(resp.Data.Translations) == 0 {
		return nil, providers.NewError(providers.ErrCodeEmptyResponse, "no translation returned")
	}

	return &providers.Response{
		Text:  resp.Data.Translations[0].TranslatedText,
		Model: "google-translate-v2",
		Metadata: map[string]interface{}{
			"detected_source": resp.Data.Translations[0].DetectedSourceLanguage,
		},
	}, nil
}

// TranslateWords 批量翻译词。v2 接口允许一次请求携带多个 q 参数，
// 响应中的 translations 数组与请求顺序一致。
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
		if i >= len(resp.Data.Translations) {
			break
		}
		text := strings.TrimSpace(resp.Data.Translations[i].TranslatedText)
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
	return "google"
}

// GetCapabilities 获取提供商能力
func (p *Provider) GetCapabilities() providers.Capabilities {
	return providers.Capabilities{
		SupportedLanguages: []providers.Language{
			{Code: "ar", Name: "Arabic"},
			{Code: "bg", Name: "Bulgarian"},
			{Code: "ca", Name: "Catalan"},
			{Code: "cs", Name: "Czech"},
			{Code: "da", Name: "Danish"},
			{Code: "de", Name: "German"},
			{Code: "el", Name: "Greek"},
			{Code: "en", Name: "English"},
			{Code: "es", Name: "Spanish"},
			{Code: "et", Name: "Estonian"},
			{Code: "fi", Name: "Finnish"},
			{Code: "fr", Name: "French"},
			{Code: "he", Name: "Hebrew"},
			{Code: "hi", Name: "Hindi"},
			{Code: "hr", Name: "Croatian"},
			{Code: "hu", Name: "Hungarian"},
			{Code: "id", Name: "Indonesian"},
			{Code: "it", Name: "Italian"},
			{Code: "ja", Name: "Japanese"},
			{Code: "ko", Name: "Korean"},
			{Code: "la", Name: "Latin"},
			{Code: "lt", Name: "Lithuanian"},
			{Code: "lv", Name: "Latvian"},
			{Code: "nl", Name: "Dutch"},
			{Code: "no", Name: "Norwegian"},
			{Code: "pl", Name: "Polish"},
			{Code: "pt", Name: "Portuguese"},
			{Code: "ro", Name: "Romanian"},
			{Code: "ru", Name: "Russian"},
			{Code: "sk", Name: "Slovak"},
			{Code: "sl", Name: "Slovenian"},
			{Code: "sv", Name: "Swedish"},
			{Code: "th", Name: "Thai"},
			{Code: "tr", Name: "Turkish"},
			{Code: "uk", Name: "Ukrainian"},
			{Code: "vi", Name: "Vietnamese"},
			{Code: "zh", Name: "Chinese"},
			{Code: "zh-CN", Name: "Chinese (Simplified)"},
			{Code: "zh-TW", Name: "Chinese (Traditional)"},
		},
		MaxTextLength:     5000, // v2 API 单请求限制
		SupportsWordBatch: true,
		RequiresAPIKey:    true,
		RateLimit: &providers.RateLimit{
			RequestsPerMinute: 600,
			CharactersPerDay:  500000, // 免费层级限制
		},
	}
}

// HealthCheck 健康检查
func (p *Provider) HealthCheck(ctx context.Context) error {
	req := &providers.Request{
		Text:           "hello",
		SourceLanguage: "en",
		TargetLanguage: "de",
	}

	_, err := p.TranslateWord(ctx, req)
	return err
}

// translate 执行翻译请求
func (p *Provider) translate(ctx context.Context, texts []string, source, target string) (*TranslateResponse, error) {
	params := url.Values{}
	params.Set("key", p.config.APIKey)
	for _, t := range texts {
		params.Add("q", t)
	}
	params.Set("source", normalizeLanguageCode(source))
	params.Set("target", normalizeLanguageCode(target))
	params.Set("format", "text")
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
			p.config.APIEndpoint, strings.NewReader(body))
		if err != nil {
			return nil, fmt.Errorf("failed to create request: %w", err)
		}

		httpReq.Header.Set("Content-Type", "application/x-www-form-urlencoded")
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

		var apiErr APIError
		if err := json.Unmarshal(errBody, &apiErr); err == nil && apiErr.Error.Message != "" {
			lastErr = fmt.Errorf("Google API error: %s", apiErr.Error.Message)
		} else {
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

// normalizeLanguageCode 标准化语言代码
func normalizeLanguageCode(lang string) string {
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
	}

	lower := strings.ToLower(lang)
	if normalized, ok := replacements[lower]; ok {
		return normalized
	}

	// xx_YY 转 xx-YY
	if strings.Contains(lang, "_") {
		return strings.Replace(lang, "_", "-", 1)
	}

	return lang
}

// TranslateRequest 翻译请求
type TranslateRequest struct {
	Q      string `json:"q"`
	Source string `json:"source"`
	Target string `json:"target"`
	Format string `json:"format"`
}

// TranslateResponse 翻译响应
type TranslateResponse struct {
	Data struct {
		Translations []struct {
			TranslatedText         string `json:"translatedText"`
			DetectedSourceLanguage string `json:"detectedSourceLanguage,omitempty"`
		} `json:"translations"`
	} `json:"data"`
}

// APIError API错误
type APIError struct {
	Error struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
		Errors  []struct {
			Message string `json:"message"`
			Domain  string `json:"domain"`
			Reason  string `json:"reason"`
		} `json:"errors"`
	} `json:"error"`
}
