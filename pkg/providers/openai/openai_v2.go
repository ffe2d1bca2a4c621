package openai

import (
	"context"
	"fmt"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"

	"github.com/langdec/langdec/pkg/providers"
)

// getModel 根据字符串获取模型常量
func getModel(model string) openai.ChatModel {
	switch model {
	case "gpt-4":
		return openai.ChatModelGPT4
	case "gpt-4-turbo", "gpt-4-turbo-preview":
		return openai.ChatModelGPT4Turbo
	case "gpt-4o":
		return openai.ChatModelGPT4o
	case "gpt-4o-mini":
		return openai.ChatModelGPT4oMini
	case "gpt-3.5-turbo":
		return openai.ChatModelGPT3_5Turbo
	default:
		// 新模型或自定义模型直接用字符串
		return openai.ChatModel(model)
	}
}

// ConfigV2 OpenAI配置（官方SDK）
type ConfigV2 struct {
	providers.BaseConfig
	Model       string  `json:"model"`
	Temperature float32 `json:"temperature"`
	MaxTokens   int     `json:"max_tokens"`
	OrgID       string  `json:"org_id,omitempty"`
}

// DefaultConfigV2 返回默认配置
func DefaultConfigV2() ConfigV2 {
	return ConfigV2{
		BaseConfig:  providers.DefaultConfig(),
		Model:       "gpt-4o-mini",
		Temperature: 0.1,
		MaxTokens:   4096,
	}
}

// ProviderV2 OpenAI提供商（官方SDK），重试由SDK自带的机制处理
type ProviderV2 struct {
	config ConfigV2
	client openai.Client
}

var _ providers.Provider = (*ProviderV2)(nil)

// NewV2 创建新的OpenAI提供商（官方SDK）
func NewV2(config ConfigV2) *ProviderV2 {
	opts := []option.RequestOption{
		option.WithAPIKey(config.APIKey),
	}

	if config.APIEndpoint != "" {
		opts = append(opts, option.WithBaseURL(config.APIEndpoint))
	}

	if config.OrgID != "" {
		opts = append(opts, option.WithOrganization(config.OrgID))
	}

	for k, v := range config.Headers {
		opts = append(opts, option.WithHeader(k, v))
	}

	if config.Timeout > 0 {
		opts = append(opts, option.WithRequestTimeout(config.Timeout))
	}

	if config.MaxRetries > 0 {
		opts = append(opts, option.WithMaxRetries(config.MaxRetries))
	}

	return &ProviderV2{
		config: config,
		client: openai.NewClient(opts...),
	}
}

// Configure 配置提供商
func (p *ProviderV2) Configure(config interface{}) error {
	cfg, ok := config.(ConfigV2)
	if !ok {
		return fmt.Errorf("invalid config type: expected ConfigV2")
	}
	*p = *NewV2(cfg)
	return nil
}

// TranslateWord 翻译单个词
func (p *ProviderV2) TranslateWord(ctx context.Context, req *providers.Request) (*providers.Response, error) {
	params := openai.ChatCompletionNewParams{
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.SystemMessage(providers.WordSystemPrompt),
			openai.UserMessage(providers.BuildWordPrompt(req.Text, req.SourceLanguage, req.TargetLanguage)),
		},
		Model:     getModel(p.config.Model),
		MaxTokens: openai.Int(64),
	}
	if p.config.Temperature > 0 {
		params.Temperature = openai.Float(float64(p.config.Temperature))
	}

	completion, err := p.client.Chat.Completions.New(ctx, params)
	if err != nil {
		return nil, fmt.Errorf("openai chat completion failed: %w", err)
	}

	if len(completion.Choices) == 0 {
		return nil, providers.NewError(providers.ErrCodeEmptyResponse, "no choices returned")
	}

	word := providers.CleanWordResponse(completion.Choices[0].Message.Content)
	if word == "" {
		return nil, providers.NewError(providers.ErrCodeEmptyResponse, fmt.Sprintf("empty translation for %q", req.Text))
	}

	return &providers.Response{
		Text:      word,
		Model:     completion.Model,
		TokensIn:  int(completion.Usage.PromptTokens),
		TokensOut: int(completion.Usage.CompletionTokens),
	}, nil
}

// TranslateText 翻译整段文本
func (p *ProviderV2) TranslateText(ctx context.Context, req *providers.Request) (*providers.Response, error) {
	system := providers.TextSystemPrompt
	if req.Metadata != nil {
		if instruction, ok := req.Metadata["instruction"].(string); ok && instruction != "" {
			system += "\n\n" + instruction
		}
	}

	params := openai.ChatCompletionNewParams{
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.SystemMessage(system),
			openai.UserMessage(providers.BuildTextPrompt(req.Text, req.SourceLanguage, req.TargetLanguage)),
		},
		Model: getModel(p.config.Model),
	}
	if p.config.Temperature > 0 {
		params.Temperature = openai.Float(float64(p.config.Temperature))
	}
	if p.config.MaxTokens > 0 {
		params.MaxTokens = openai.Int(int64(p.config.MaxTokens))
	}

	completion, err := p.client.Chat.Completions.New(ctx, params)
	if err != nil {
		return nil, fmt.Errorf("openai chat completion failed: %w", err)
	}

	if len(completion.Choices) == 0 {
		return nil, providers.NewError(providers.ErrCodeEmptyResponse, "no choices returned")
	}

	text := providers.StripReasoning(completion.Choices[0].Message.Content)
	if text == "" {
		return nil, providers.NewError(providers.ErrCodeEmptyResponse, "empty translation")
	}

	return &providers.Response{
		Text:      text,
		Model:     completion.Model,
		TokensIn:  int(completion.Usage.PromptTokens),
		TokensOut: int(completion.Usage.CompletionTokens),
		Metadata: map[string]interface{}{
			"finish_reason": string(completion.Choices[0].FinishReason),
			"id":            completion.ID,
		},
	}, nil
}

// GetName 获取提供商名称
func (p *ProviderV2) GetName() string {
	return "openai"
}

// GetCapabilities 获取提供商能力
func (p *ProviderV2) GetCapabilities() providers.Capabilities {
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
			{Code: "ar", Name: "Arabic"},
			{Code: "hi", Name: "Hindi"},
			{Code: "nl", Name: "Dutch"},
			{Code: "pl", Name: "Polish"},
			{Code: "tr", Name: "Turkish"},
			{Code: "sv", Name: "Swedish"},
			{Code: "da", Name: "Danish"},
			{Code: "no", Name: "Norwegian"},
			{Code: "fi", Name: "Finnish"},
		},
		MaxTextLength:     8000,
		SupportsWordBatch: false,
		RequiresAPIKey:    true,
		RateLimit: &providers.RateLimit{
			RequestsPerMinute: 60,
		},
	}
}

// HealthCheck 健康检查
func (p *ProviderV2) HealthCheck(ctx context.Context) error {
	params := openai.ChatCompletionNewParams{
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.UserMessage("Hello"),
		},
		Model:     getModel(p.config.Model),
		MaxTokens: openai.Int(10),
	}

	_, err := p.client.Chat.Completions.New(ctx, params)
	return err
}

// StreamTranslate 流式翻译整段文本
func (p *ProviderV2) StreamTranslate(ctx context.Context, req *providers.Request) (<-chan StreamChunk, error) {
	chunks := make(chan StreamChunk)

	params := openai.ChatCompletionNewParams{
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.SystemMessage(providers.TextSystemPrompt),
			openai.UserMessage(providers.BuildTextPrompt(req.Text, req.SourceLanguage, req.TargetLanguage)),
		},
		Model: getModel(p.config.Model),
	}
	if p.config.Temperature > 0 {
		params.Temperature = openai.Float(float64(p.config.Temperature))
	}
	if p.config.MaxTokens > 0 {
		params.MaxTokens = openai.Int(int64(p.config.MaxTokens))
	}

	stream := p.client.Chat.Completions.NewStreaming(ctx, params)

	go func() {
		defer close(chunks)

		for stream.Next() {
			chunk := stream.Current()
			if len(chunk.Choices) > 0 && chunk.Choices[0].Delta.Content != "" {
				select {
				case chunks <- StreamChunk{
					Text:  chunk.Choices[0].Delta.Content,
					Model: chunk.Model,
				}:
				case <-ctx.Done():
					return
				}
			}
		}

		if err := stream.Err(); err != nil {
			chunks <- StreamChunk{Error: err}
		}
	}()

	return chunks, nil
}

// StreamChunk 流式响应块
type StreamChunk struct {
	Text  string
	Model string
	Error error
}
