package openai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/langdec/langdec/pkg/providers"
	"github.com/langdec/langdec/pkg/providers/retry"
)

// Config OpenAI配置
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
		Model:       "gpt-4o-mini",
		Temperature: 0.1,
		MaxTokens:   4096,
		RetryConfig: retry.DefaultRetryConfig(),
	}
}

// Provider OpenAI提供商，手写的 chat/completions 客户端
type Provider struct {
	config      Config
	retryClient *retry.RetryableHTTPClient
}

var _ providers.Provider = (*Provider)(nil)

// New 创建新的OpenAI提供商
func New(config Config) *Provider {
	if config.APIEndpoint == "" {
		config.APIEndpoint = "https://api.openai.com/v1"
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
	chatReq := ChatRequest{
		Model: p.config.Model,
		Messages: []Message{
			{Role: "system", Content: providers.WordSystemPrompt},
			{Role: "user", Content: providers.BuildWordPrompt(req.Text, req.SourceLanguage, req.TargetLanguage)},
		},
		Temperature: p.config.Temperature,
		MaxTokens:   64,
	}

	resp, err := p.chat(ctx, chatReq)
	if err != nil {
		return nil, err
	}

	word := providers.CleanWordResponse(resp.Choices[0].Message.Content)
	if word == "" {
		return nil, providers.NewError(providers.ErrCodeEmptyResponse, fmt.Sprintf("empty translation for %q", req.Text))
	}

	return &providers.Response{
		Text:      word,
		Model:     resp.Model,
		TokensIn:  resp.Usage.PromptTokens,
		TokensOut: resp.Usage.CompletionTokens,
	}, nil
}

// TranslateText 翻译整段文本
func (p *Provider) TranslateText(ctx context.Context, req *providers.Request) (*providers.Response, error) {
	system := providers.TextSystemPrompt
	if req.Metadata != nil {
		if instruction, ok := req.Metadata["instruction"].(string); ok && instruction != "" {
			system += "\n\n" + instruction
		}
	}

	chatReq := ChatRequest{
		Model: p.config.Model,
		Messages: []Message{
			{Role: "system", Content: system},
			{Role: "user", Content: providers.BuildTextPrompt(req.Text, req.SourceLanguage, req.TargetLanguage)},
		},
		Temperature: p.config.Temperature,
		MaxTokens:   p.config.MaxTokens,
	}

	resp, err := p.chat(ctx, chatReq)
	if err != nil {
		return nil, err
	}

	text := providers.StripReasoning(resp.Choices[0].Message.Content)
	if text == "" {
		return nil, providers.NewError(providers.ErrCodeEmptyResponse, "empty translation")
	}

	return &providers.Response{
		Text:      text,
		Model:     resp.Model,
		TokensIn:  resp.Usage.PromptTokens,
		TokensOut: resp.Usage.CompletionTokens,
		Metadata: map[string]interface{}{
			"finish_reason": resp.Choices[0].FinishReason,
			"id":            resp.ID,
		},
	}, nil
}

// GetName 获取提供商名称
func (p *Provider) GetName() string {
	return "openai"
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
			// 实际支持的语言远多于此
		},
		MaxTextLength:     8000, // 取决于模型
		SupportsWordBatch: false,
		RequiresAPIKey:    true,
		RateLimit: &providers.RateLimit{
			RequestsPerMinute: 60, // 取决于账户类型
		},
	}
}

// HealthCheck 健康检查
func (p *Provider) HealthCheck(ctx context.Context) error {
	req := ChatRequest{
		Model: p.config.Model,
		Messages: []Message{
			{Role: "user", Content: "Hello"},
		},
		MaxTokens: 10,
	}

	_, err := p.chat(ctx, req)
	return err
}

// chat 执行聊天请求
func (p *Provider) chat(ctx context.Context, req ChatRequest) (*ChatResponse, error) {
	body, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost,
		p.config.APIEndpoint+"/chat/completions", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+p.config.APIKey)
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
		if json.Unmarshal(errBody, &apiErr) == nil && apiErr.ErrorInfo.Message != "" {
			return nil, &apiErr
		}
		return nil, fmt.Errorf("API error: %s", resp.Status)
	}

	defer resp.Body.Close()

	var chatResp ChatResponse
	if err := json.NewDecoder(resp.Body).Decode(&chatResp); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}

	if len(chatResp.Choices) == 0 {
		return nil, providers.NewError(providers.ErrCodeEmptyResponse, "no choices returned")
	}

	return &chatResp, nil
}

// Message 聊天消息
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// ChatRequest 聊天请求
type ChatRequest struct {
	Model       string    `json:"model"`
	Messages    []Message `json:"messages"`
	Temperature float32   `json:"temperature,omitempty"`
	MaxTokens   int       `json:"max_tokens,omitempty"`
	Stream      bool      `json:"stream,omitempty"`
}

// ChatResponse 聊天响应
type ChatResponse struct {
	ID      string `json:"id"`
	Object  string `json:"object"`
	Created int64  `json:"created"`
	Model   string `json:"model"`
	Choices []struct {
		Index        int     `json:"index"`
		Message      Message `json:"message"`
		FinishReason string  `json:"finish_reason"`
	} `json:"choices"`
	Usage struct {
		PromptTokens     int `json:"prompt_tokens"`
		CompletionTokens int `json:"completion_tokens"`
		TotalTokens      int `json:"total_tokens"`
	} `json:"usage"`
}

// APIError API错误
type APIError struct {
	ErrorInfo struct {
		Message string `json:"message"`
		Type    string `json:"type"`
		Code    string `json:"code"`
	} `json:"error"`
}

func (e *APIError) Error() string {
	return e.ErrorInfo.Message
}
