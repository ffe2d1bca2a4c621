package openaicompat

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	openai "github.com/sashabaranov/go-openai"

	"github.com/langdec/langdec/pkg/providers"
)

// Config OpenAI兼容服务配置。适用于 LM Studio、vLLM、llama.cpp server
// 以及 Ollama 的 /v1 接口等自建服务。
type Config struct {
	providers.BaseConfig
	Model       string  `json:"model"`
	Temperature float32 `json:"temperature"`
	MaxTokens   int     `json:"max_tokens"`
}

// DefaultConfig 返回默认配置
func DefaultConfig() Config {
	config := Config{
		BaseConfig:  providers.DefaultConfig(),
		Temperature: 0.1,
		MaxTokens:   4096,
	}
	config.APIEndpoint = "http://localhost:1234/v1"
	return config
}

// Provider OpenAI兼容提供商
type Provider struct {
	config Config
	client *openai.Client
}

var _ providers.Provider = (*Provider)(nil)

// New 创建新的OpenAI兼容提供商
func New(config Config) *Provider {
	if config.APIEndpoint == "" {
		config.APIEndpoint = "http://localhost:1234/v1"
	}

	// 很多本地服务不校验密钥，但 go-openai 要求非空
	apiKey := config.APIKey
	if apiKey == "" {
		apiKey = "not-needed"
	}

	clientConfig := openai.DefaultConfig(apiKey)
	// go-openai 的 API 后缀以斜杠开头，去掉结尾斜杠避免双斜杠
	clientConfig.BaseURL = strings.TrimSuffix(config.APIEndpoint, "/")
	clientConfig.HTTPClient = &http.Client{
		Timeout: config.Timeout,
	}

	return &Provider{
		config: config,
		client: openai.NewClientWithConfig(clientConfig),
	}
}

// Configure 配置提供商
func (p *Provider) Configure(config interface{}) error {
	cfg, ok := config.(Config)
	if !ok {
		return fmt.Errorf("invalid config type: expected Config")
	}
	*p = *New(cfg)
	return nil
}

// TranslateWord 翻译单个词
func (p *Provider) TranslateWord(ctx context.Context, req *providers.Request) (*providers.Response, error) {
	chatReq := openai.ChatCompletionRequest{
		Model: p.config.Model,
		Messages: []openai.ChatCompletionMessage{
			{
				Role:    openai.ChatMessageRoleSystem,
				Content: providers.WordSystemPrompt,
			},
			{
				Role:    openai.ChatMessageRoleUser,
				Content: providers.BuildWordPrompt(req.Text, req.SourceLanguage, req.TargetLanguage),
			},
		},
		Temperature: p.config.Temperature,
		MaxTokens:   64,
	}

	resp, err := p.client.CreateChatCompletion(ctx, chatReq)
	if err != nil {
		return nil, fmt.Errorf("chat completion failed: %w", err)
	}

	if len(resp.Choices) == 0 {
		return nil, providers.NewError(providers.ErrCodeEmptyResponse, "no choices returned")
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

	chatReq := openai.ChatCompletionRequest{
		Model: p.config.Model,
		Messages: []openai.ChatCompletionMessage{
			{
				Role:    openai.ChatMessageRoleSystem,
				Content: system,
			},
			{
				Role:    openai.ChatMessageRoleUser,
				Content: providers.BuildTextPrompt(req.Text, req.SourceLanguage, req.TargetLanguage),
			},
		},
		Temperature: p.config.Temperature,
		MaxTokens:   p.config.MaxTokens,
	}

	resp, err := p.client.CreateChatCompletion(ctx, chatReq)
	if err != nil {
		return nil, fmt.Errorf("chat completion failed: %w", err)
	}

	if len(resp.Choices) == 0 {
		return nil, providers.NewError(providers.ErrCodeEmptyResponse, "no choices returned")
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
			"finish_reason": string(resp.Choices[0].FinishReason),
			"id":            resp.ID,
		},
	}, nil
}

// GetName 获取提供商名称
func (p *Provider) GetName() string {
	return "openai-compatible"
}

// GetCapabilities 获取提供商能力
func (p *Provider) GetCapabilities() providers.Capabilities {
	return providers.Capabilities{
		SupportedLanguages: []providers.Language{
			// 实际支持取决于所部署的模型
			{Code: "*", Name: "Model Dependent"},
		},
		MaxTextLength:     8000,
		SupportsWordBatch: false,
		RequiresAPIKey:    false,
	}
}

// HealthCheck 健康检查
func (p *Provider) HealthCheck(ctx context.Context) error {
	req := openai.ChatCompletionRequest{
		Model: p.config.Model,
		Messages: []openai.ChatCompletionMessage{
			{
				Role:    openai.ChatMessageRoleUser,
				Content: "Hello",
			},
		},
		MaxTokens: 10,
	}

	_, err := p.client.CreateChatCompletion(ctx, req)
	return err
}
