package anthropic

import (
	"context"
	"fmt"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"

	"github.com/langdec/langdec/pkg/providers"
)

// Config Anthropic配置
type Config struct {
	providers.BaseConfig
	Model     string `json:"model"`
	MaxTokens int    `json:"max_tokens"`
}

// DefaultConfig 返回默认配置
func DefaultConfig() Config {
	return Config{
		BaseConfig: providers.DefaultConfig(),
		Model:      "claude-3-5-haiku-latest",
		MaxTokens:  4096,
	}
}

// Provider Anthropic提供商（官方SDK）
type Provider struct {
	config Config
	client anthropic.Client
}

var _ providers.Provider = (*Provider)(nil)

// New 创建新的Anthropic提供商
func New(config Config) *Provider {
	opts := []option.RequestOption{
		option.WithAPIKey(config.APIKey),
	}

	if config.APIEndpoint != "" {
		opts = append(opts, option.WithBaseURL(config.APIEndpoint))
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

	return &Provider{
		config: config,
		client: anthropic.NewClient(opts...),
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
	prompt := providers.WordSystemPrompt + "\n\n" +
		providers.BuildWordPrompt(req.Text, req.SourceLanguage, req.TargetLanguage)

	message, err := p.message(ctx, prompt, 64)
	if err != nil {
		return nil, err
	}

	word := providers.CleanWordResponse(message.Content[0].Text)
	if word == "" {
		return nil, providers.NewError(providers.ErrCodeEmptyResponse, fmt.Sprintf("empty translation for %q", req.Text))
	}

	return &providers.Response{
		Text:      word,
		Model:     string(message.Model),
		TokensIn:  int(message.Usage.InputTokens),
		TokensOut: int(message.Usage.OutputTokens),
	}, nil
}

// TranslateText 翻译整段文本
func (p *Provider) TranslateText(ctx context.Context, req *providers.Request) (*providers.Response, error) {
	prompt := providers.TextSystemPrompt + "\n\n" +
		providers.BuildTextPrompt(req.Text, req.SourceLanguage, req.TargetLanguage)
	prompt = providers.ApplyInstruction(prompt, req.Metadata)

	message, err := p.message(ctx, prompt, p.config.MaxTokens)
	if err != nil {
		return nil, err
	}

	text := providers.StripReasoning(message.Content[0].Text)
	if text == "" {
		return nil, providers.NewError(providers.ErrCodeEmptyResponse, "empty translation")
	}

	return &providers.Response{
		Text:      text,
		Model:     string(message.Model),
		TokensIn:  int(message.Usage.InputTokens),
		TokensOut: int(message.Usage.OutputTokens),
	}, nil
}

// message 发送单轮消息。系统提示词并入用户消息，避开SDK里复杂的联合类型。
func (p *Provider) message(ctx context.Context, prompt string, maxTokens int) (*anthropic.Message, error) {
	if maxTokens <= 0 {
		maxTokens = 4096
	}

	message, err := p.client.Messages.New(ctx, anthropic.MessageNewParams{
		Model:     anthropic.Model(p.config.Model),
		MaxTokens: int64(maxTokens),
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(prompt)),
		},
	})
	if err != nil {
		return nil, fmt.Errorf("anthropic message failed: %w", err)
	}

	if len(message.Content) == 0 {
		return nil, providers.NewError(providers.ErrCodeEmptyResponse, "no content returned")
	}

	return message, nil
}

// GetName 获取提供商名称
func (p *Provider) GetName() string {
	return "anthropic"
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
		},
		MaxTextLength:     100000,
		SupportsWordBatch: false,
		RequiresAPIKey:    true,
		RateLimit: &providers.RateLimit{
			RequestsPerMinute: 50,
		},
	}
}

// HealthCheck 健康检查
func (p *Provider) HealthCheck(ctx context.Context) error {
	_, err := p.client.Messages.New(ctx, anthropic.MessageNewParams{
		Model:     anthropic.Model(p.config.Model),
		MaxTokens: 10,
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock("Hello")),
		},
	})
	return err
}
