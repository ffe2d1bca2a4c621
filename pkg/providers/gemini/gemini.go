package gemini

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"

	"github.com/langdec/langdec/pkg/providers"
)

// Config Gemini配置
type Config struct {
	providers.BaseConfig
	Model       string  `json:"model"`
	Temperature float32 `json:"temperature"`
	MaxTokens   int     `json:"max_tokens"`
}

// DefaultConfig 返回默认配置
func DefaultConfig() Config {
	return Config{
		BaseConfig:  providers.DefaultConfig(),
		Model:       "gemini-1.5-flash",
		Temperature: 0.1,
		MaxTokens:   4096,
	}
}

// Provider Gemini提供商（官方SDK）
type Provider struct {
	config Config
	client *genai.Client
}

var _ providers.TranslationProvider = (*Provider)(nil)

// New 创建新的Gemini提供商。客户端初始化需要网络上下文，可能失败。
func New(ctx context.Context, config Config) (*Provider, error) {
	opts := []option.ClientOption{
		option.WithAPIKey(config.APIKey),
	}
	if config.APIEndpoint != "" {
		opts = append(opts, option.WithEndpoint(config.APIEndpoint))
	}

	client, err := genai.NewClient(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}

	return &Provider{
		config: config,
		client: client,
	}, nil
}

// Close 关闭底层客户端
func (p *Provider) Close() error {
	return p.client.Close()
}

// TranslateWord 翻译单个词
func (p *Provider) TranslateWord(ctx context.Context, req *providers.Request) (*providers.Response, error) {
	text, usage, err := p.generate(ctx, providers.WordSystemPrompt,
		providers.BuildWordPrompt(req.Text, req.SourceLanguage, req.TargetLanguage), 64)
	if err != nil {
		return nil, err
	}

	word := providers.CleanWordResponse(text)
	if word == "" {
		return nil, providers.NewError(providers.ErrCodeEmptyResponse, fmt.Sprintf("empty translation for %q", req.Text))
	}

	return &providers.Response{
		Text:      word,
		Model:     p.config.Model,
		TokensIn:  usage.in,
		TokensOut: usage.out,
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

	text, usage, err := p.generate(ctx, system,
		providers.BuildTextPrompt(req.Text, req.SourceLanguage, req.TargetLanguage), p.config.MaxTokens)
	if err != nil {
		return nil, err
	}

	out := providers.StripReasoning(text)
	if out == "" {
		return nil, providers.NewError(providers.ErrCodeEmptyResponse, "empty translation")
	}

	return &providers.Response{
		Text:      out,
		Model:     p.config.Model,
		TokensIn:  usage.in,
		TokensOut: usage.out,
	}, nil
}

type tokenUsage struct {
	in  int
	out int
}

// generate 执行生成请求。每次调用都取新的模型句柄，
// SystemInstruction 是模型级状态，不能在并发请求间共享。
func (p *Provider) generate(ctx context.Context, system, prompt string, maxTokens int) (string, tokenUsage, error) {
	model := p.client.GenerativeModel(p.config.Model)
	model.SystemInstruction = &genai.Content{
		Parts: []genai.Part{genai.Text(system)},
	}
	model.SetTemperature(p.config.Temperature)
	if maxTokens > 0 {
		model.SetMaxOutputTokens(int32(maxTokens))
	}

	resp, err := model.GenerateContent(ctx, genai.Text(prompt))
	if err != nil {
		return "", tokenUsage{}, fmt.Errorf("gemini generate failed: %w", err)
	}

	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil || len(resp.Candidates[0].Content.Parts) == 0 {
		return "", tokenUsage{}, providers.NewError(providers.ErrCodeEmptyResponse, "no content returned")
	}

	var sb strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		if text, ok := part.(genai.Text); ok {
			sb.WriteString(string(text))
		}
	}

	var usage tokenUsage
	if resp.UsageMetadata != nil {
		usage.in = int(resp.UsageMetadata.PromptTokenCount)
		usage.out = int(resp.UsageMetadata.CandidatesTokenCount)
	}

	return sb.String(), usage, nil
}

// GetName 获取提供商名称
func (p *Provider) GetName() string {
	return "gemini"
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
		MaxTextLength:     30000,
		SupportsWordBatch: false,
		RequiresAPIKey:    true,
		RateLimit: &providers.RateLimit{
			RequestsPerMinute: 60,
		},
	}
}

// HealthCheck 健康检查
func (p *Provider) HealthCheck(ctx context.Context) error {
	model := p.client.GenerativeModel(p.config.Model)
	model.SetMaxOutputTokens(10)

	_, err := model.GenerateContent(ctx, genai.Text("Hello"))
	return err
}
