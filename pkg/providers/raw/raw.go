package raw

import (
	"context"

	"github.com/langdec/langdec/pkg/providers"
)

// Config Raw 提供商配置（实际上不需要任何配置）
type Config struct {
	providers.BaseConfig
}

// DefaultConfig 返回默认配置
func DefaultConfig() Config {
	return Config{
		BaseConfig: providers.DefaultConfig(),
	}
}

// Provider Raw 提供商实现，原样返回输入。
// 用来调试对齐与排版流水线，不触发任何网络请求。
type Provider struct {
	config Config
}

var (
	_ providers.Provider    = (*Provider)(nil)
	_ providers.WordBatcher = (*Provider)(nil)
)

// New 创建新的 Raw 提供商
func New(config Config) *Provider {
	return &Provider{
		config: config,
	}
}

// Configure 配置提供商
func (p *Provider) Configure(config interface{}) error {
	// Raw 提供商不需要配置
	return nil
}

// TranslateWord 直接返回原词
func (p *Provider) TranslateWord(ctx context.Context, req *providers.Request) (*providers.Response, error) {
	return &providers.Response{
		Text:  req.Text,
		Model: "raw",
		Metadata: map[string]interface{}{
			"type": "raw_passthrough",
		},
	}, nil
}

// TranslateText 直接返回原文
func (p *Provider) TranslateText(ctx context.Context, req *providers.Request) (*providers.Response, error) {
	return &providers.Response{
		Text:  req.Text,
		Model: "raw",
		Metadata: map[string]interface{}{
			"type": "raw_passthrough",
		},
	}, nil
}

// TranslateWords 逐词原样返回
func (p *Provider) TranslateWords(ctx context.Context, req *providers.BatchRequest) (*providers.BatchResponse, error) {
	resp := &providers.BatchResponse{
		Translations: make([]string, len(req.Words)),
		OK:           make([]bool, len(req.Words)),
	}
	for i, word := range req.Words {
		resp.Translations[i] = word
		resp.OK[i] = true
	}
	return resp, nil
}

// GetName 获取提供商名称
func (p *Provider) GetName() string {
	return "raw"
}

// GetCapabilities 获取提供商能力
func (p *Provider) GetCapabilities() providers.Capabilities {
	return providers.Capabilities{
		SupportedLanguages: []providers.Language{
			{Code: "*", Name: "All Languages"},
		},
		MaxTextLength:     1000000,
		SupportsWordBatch: true,
		Offline:           true,
		RequiresAPIKey:    false,
	}
}

// HealthCheck 健康检查
func (p *Provider) HealthCheck(ctx context.Context) error {
	return nil
}
