package ollama

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/langdec/langdec/pkg/providers"
	"github.com/langdec/langdec/pkg/providers/retry"
)

// Config Ollama配置
type Config struct {
	providers.BaseConfig
	Model       string            `json:"model"`
	Temperature float32           `json:"temperature"`
	MaxTokens   int               `json:"max_tokens"`
	RetryConfig retry.RetryConfig `json:"retry_config"`
}

// DefaultConfig 返回默认配置
func DefaultConfig() Config {
	return Config{
		BaseConfig:  providers.DefaultConfig(),
		Model:       "llama3",
		Temperature: 0.1,
		MaxTokens:   4096,
		RetryConfig: retry.DefaultRetryConfig(),
	}
}

// Provider Ollama提供商，走本地 /api/generate 接口
type Provider struct {
	config      Config
	retryClient *retry.RetryableHTTPClient
}

var _ providers.Provider = (*Provider)(nil)

// New 创建新的Ollama提供商
func New(config Config) *Provider {
	if config.APIEndpoint == "" {
		config.APIEndpoint = "http://localhost:11434"
	}

	httpClient := &http.Client{
		Timeout: config.Timeout,
	}

	networkRetrier := retry.NewNetworkRetrier(config.RetryConfig)

	return &Provider{
		config:      config,
		retryClient: networkRetrier.WrapHTTPClient(httpClient),
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
	prompt := providers.BuildWordPrompt(req.Text, req.SourceLanguage, req.TargetLanguage)
	prompt = providers.WordSystemPrompt + "\n\n" + prompt

	resp, err := p.generate(ctx, prompt, 64)
	if err != nil {
		return nil, err
	}

	word := providers.CleanWordResponse(resp.Response)
	if word == "" {
		return nil, providers.NewError(providers.ErrCodeEmptyResponse, fmt.Sprintf("empty translation for %q", req.Text))
	}

	return &providers.Response{
		Text:      word,
		Model:     resp.Model,
		TokensIn:  resp.PromptEvalCount,
		TokensOut: resp.EvalCount,
	}, nil
}

// TranslateText 翻译整段文本
func (p *Provider) TranslateText(ctx context.Context, req *providers.Request) (*providers.Response, error) {
	prompt := providers.BuildTextPrompt(req.Text, req.SourceLanguage, req.TargetLanguage)
	prompt = providers.ApplyInstruction(prompt, req.Metadata)

	resp, err := p.generate(ctx, prompt, p.config.MaxTokens)
	if err != nil {
		return nil, err
	}

	text := providers.StripReasoning(resp.Response)
	if text == "" {
		return nil, providers.NewError(providers.ErrCodeEmptyResponse, "empty translation")
	}

	return &providers.Response{
		Text:      text,
		Model:     resp.Model,
		TokensIn:  resp.PromptEvalCount,
		TokensOut: resp.EvalCount,
		Metadata: map[string]interface{}{
			"total_duration": resp.TotalDuration,
			"eval_duration":  resp.EvalDuration,
		},
	}, nil
}

// GetName 获取提供商名称
func (p *Provider) GetName() string {
	return "ollama"
}

// GetCapabilities 获取提供商能力
func (p *Provider) GetCapabilities() providers.Capabilities {
	return providers.Capabilities{
		SupportedLanguages: []providers.Language{
			{Code: "en", Name: "English"},
			{Code: "zh", Name: "Chinese"},
			{Code: "ja", Name: "Japanese"},
			{Code: "ko", Name: "Korean"},
			{Code: "es", Name: "Spanish"},
			{Code: "fr", Name: "French"},
			{Code: "de", Name: "German"},
			{Code: "ru", Name: "Russian"},
			{Code: "pt", Name: "Portuguese"},
			{Code: "it", Name: "Italian"},
			// 实际支持取决于所加载的模型
		},
		MaxTextLength:     8000, // 取决于模型的上下文长度
		SupportsWordBatch: false,
		RequiresAPIKey:    false,
		RateLimit: &providers.RateLimit{
			RequestsPerMinute: 60,
		},
	}
}

// HealthCheck 健康检查
func (p *Provider) HealthCheck(ctx context.Context) error {
	_, err := p.generate(ctx, "Hello", 5)
	return err
}

// generate 执行生成请求
func (p *Provider) generate(ctx context.Context, prompt string, maxTokens int) (*GenerateResponse, error) {
	generateReq := GenerateRequest{
		Model:  p.config.Model,
		Prompt: prompt,
		Stream: false,
		Options: map[string]interface{}{
			"temperature": p.config.Temperature,
		},
	}
	if maxTokens > 0 {
		generateReq.Options["num_predict"] = maxTokens
	}

	body, err := json.Marshal(generateReq)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost,
		p.config.APIEndpoint+"/api/generate", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	httpReq.Header.Set("Content-Type", "application/json")
	for k, v := range p.config.Headers {
		httpReq.Header.Set(k, v)
	}

	resp, err := p.retryClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("failed to execute request: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		errBody, _ := io.ReadAll(resp.Body)
		resp.Body.Close()

		var apiErr APIError
		if json.Unmarshal(errBody, &apiErr) == nil && apiErr.ErrorMsg != "" {
			return nil, &apiErr
		}
		return nil, fmt.Errorf("API error: %s", resp.Status)
	}

	defer resp.Body.Close()

	var generateResp GenerateResponse
	if err := json.NewDecoder(resp.Body).Decode(&generateResp); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}

	return &generateResp, nil
}

// GenerateRequest 生成请求
type GenerateRequest struct {
	Model   string                 `json:"model"`
	Prompt  string                 `json:"prompt"`
	Stream  bool                   `json:"stream"`
	Options map[string]interface{} `json:"options,omitempty"`
}

// GenerateResponse 生成响应
type GenerateResponse struct {
	Model              string    `json:"model"`
	CreatedAt          time.Time `json:"created_at"`
	Response           string    `json:"response"`
	Done               bool      `json:"done"`
	TotalDuration      int64     `json:"total_duration"`
	LoadDuration       int64     `json:"load_duration"`
	PromptEvalCount    int       `json:"prompt_eval_count"`
	PromptEvalDuration int64     `json:"prompt_eval_duration"`
	EvalCount          int       `json:"eval_count"`
	EvalDuration       int64     `json:"eval_duration"`
}

// APIError API错误
type APIError struct {
	ErrorMsg string `json:"error"`
}

func (e *APIError) Error() string {
	return e.ErrorMsg
}
