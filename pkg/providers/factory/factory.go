package factory

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/langdec/langdec/internal/config"
	"github.com/langdec/langdec/pkg/providers"
	"github.com/langdec/langdec/pkg/providers/anthropic"
	"github.com/langdec/langdec/pkg/providers/batch"
	"github.com/langdec/langdec/pkg/providers/cache"
	"github.com/langdec/langdec/pkg/providers/deepl"
	"github.com/langdec/langdec/pkg/providers/deeplx"
	"github.com/langdec/langdec/pkg/providers/dictionary"
	"github.com/langdec/langdec/pkg/providers/gemini"
	"github.com/langdec/langdec/pkg/providers/glossary"
	"github.com/langdec/langdec/pkg/providers/google"
	"github.com/langdec/langdec/pkg/providers/libretranslate"
	"github.com/langdec/langdec/pkg/providers/ollama"
	"github.com/langdec/langdec/pkg/providers/openai"
	"github.com/langdec/langdec/pkg/providers/openaicompat"
	"github.com/langdec/langdec/pkg/providers/raw"
	"github.com/langdec/langdec/pkg/providers/stats"
)

// Options 装配选项
type Options struct {
	// Logger 为 nil 时使用 zap.NewNop()
	Logger *zap.Logger

	// Stats 非 nil 时在最外层叠加统计中间件
	Stats *stats.Manager
}

// Factory 提供商工厂。装配好的提供商登记进注册表，
// 同名提供商只装配一次，之后取回同一实例。
type Factory struct {
	registry *providers.Registry
	opts     Options
}

// New 创建工厂
func New(opts Options) *Factory {
	return &Factory{
		registry: providers.NewRegistry(),
		opts:     opts,
	}
}

// CreateProvider 返回按配置装配好的提供商，已登记的直接复用
func (f *Factory) CreateProvider(ctx context.Context, name string, cfg *config.Config) (providers.TranslationProvider, error) {
	if provider, err := f.registry.Get(name); err == nil {
		return provider, nil
	}

	provider, err := f.assemble(ctx, name, cfg)
	if err != nil {
		return nil, err
	}
	if err := f.registry.Register(name, provider); err != nil {
		return nil, err
	}
	return provider, nil
}

// Providers 列出已装配的提供商名称
func (f *Factory) Providers() []string {
	return f.registry.List()
}

// CreateProvider 用一次性工厂装配提供商
func CreateProvider(ctx context.Context, name string, cfg *config.Config, opts Options) (providers.TranslationProvider, error) {
	return New(opts).CreateProvider(ctx, name, cfg)
}

// assemble 创建提供商并按配置叠加包装层。
// 包装顺序（由内向外）：批量 → 术语表 → 缓存 → 统计，
// 术语表命中的词因此也会进缓存之前被拦截，统计看到的是
// 缓存未命中后的真实请求之外加缓存命中记录。
func (f *Factory) assemble(ctx context.Context, name string, cfg *config.Config) (providers.TranslationProvider, error) {
	logger := f.opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	provider, err := createBase(ctx, name, cfg)
	if err != nil {
		return nil, err
	}

	if cfg.WordBatch.Enabled && IsLLMProvider(name) {
		provider = batch.Wrap(provider, batch.Config{
			BatchSize:       cfg.WordBatch.Size,
			FallbackPerWord: cfg.WordBatch.FallbackPerWord,
		})
	}

	if cfg.GlossaryPath != "" {
		entries, err := config.LoadGlossary(cfg.GlossaryPath)
		if err != nil {
			return nil, fmt.Errorf("load glossary: %w", err)
		}
		if entries.Matches(cfg.SourceLang, cfg.TargetLang) {
			provider = glossary.Wrap(provider, entries.Words)
		} else {
			logger.Warn("glossary language pair does not match, ignoring",
				zap.String("glossary_source", entries.SourceLang),
				zap.String("glossary_target", entries.TargetLang),
				zap.String("source", cfg.SourceLang),
				zap.String("target", cfg.TargetLang),
			)
		}
	}

	if store := cache.NewStore(cfg.UseCache, cfg.CacheDir); store != nil {
		provider = cache.Wrap(provider, store, cache.Options{CacheTexts: cfg.CacheTexts})
	}

	if f.opts.Stats != nil {
		provider = stats.Wrap(provider, f.opts.Stats)
	}

	return provider, nil
}

// createBase 创建未包装的具体提供商
func createBase(ctx context.Context, name string, cfg *config.Config) (providers.TranslationProvider, error) {
	pc := cfg.ProviderSettings(name)

	switch name {
	case "google":
		c := google.DefaultConfig()
		applyBase(&c.BaseConfig, pc)
		return google.New(c), nil

	case "deepl":
		c := deepl.DefaultConfig()
		applyBase(&c.BaseConfig, pc)
		c.UseFreeAPI = pc.UseFreeAPI
		return deepl.New(c), nil

	case "deeplx":
		c := deeplx.DefaultConfig()
		applyBase(&c.BaseConfig, pc)
		return deeplx.New(c), nil

	case "libretranslate":
		c := libretranslate.DefaultConfig()
		applyBase(&c.BaseConfig, pc)
		return libretranslate.New(c), nil

	case "ollama":
		c := ollama.DefaultConfig()
		applyBase(&c.BaseConfig, pc)
		applyModel(&c.Model, &c.Temperature, &c.MaxTokens, pc)
		return ollama.New(c), nil

	case "openai":
		c := openai.DefaultConfig()
		applyBase(&c.BaseConfig, pc)
		applyModel(&c.Model, &c.Temperature, &c.MaxTokens, pc)
		return openai.New(c), nil

	case "openai-official":
		c := openai.DefaultConfigV2()
		applyBase(&c.BaseConfig, pc)
		applyModel(&c.Model, &c.Temperature, &c.MaxTokens, pc)
		return openai.NewV2(c), nil

	case "openaicompat":
		c := openaicompat.DefaultConfig()
		applyBase(&c.BaseConfig, pc)
		applyModel(&c.Model, &c.Temperature, &c.MaxTokens, pc)
		return openaicompat.New(c), nil

	case "anthropic":
		c := anthropic.DefaultConfig()
		applyBase(&c.BaseConfig, pc)
		if pc.Model != "" {
			c.Model = pc.Model
		}
		if pc.MaxTokens > 0 {
			c.MaxTokens = pc.MaxTokens
		}
		return anthropic.New(c), nil

	case "gemini":
		c := gemini.DefaultConfig()
		applyBase(&c.BaseConfig, pc)
		applyModel(&c.Model, &c.Temperature, &c.MaxTokens, pc)
		return gemini.New(ctx, c)

	case "dictionary":
		c := dictionary.DefaultConfig()
		c.Path = pc.DictionaryPath
		c.SourceLanguage = cfg.SourceLang
		c.TargetLanguage = cfg.TargetLang
		return dictionary.New(c)

	case "raw", "none":
		return raw.New(raw.DefaultConfig()), nil

	default:
		if suggestion := providers.SuggestName(name, SupportedProviders()); suggestion != "" {
			return nil, fmt.Errorf("unsupported provider type: %s (did you mean %q?)", name, suggestion)
		}
		return nil, fmt.Errorf("unsupported provider type: %s", name)
	}
}

// applyBase 用用户配置覆盖提供商的基础配置，未设置的字段保持默认
func applyBase(base *providers.BaseConfig, pc config.ProviderConfig) {
	if pc.APIKey != "" {
		base.APIKey = pc.APIKey
	}
	if pc.APIEndpoint != "" {
		base.APIEndpoint = pc.APIEndpoint
	}
	if pc.Timeout > 0 {
		base.Timeout = time.Duration(pc.Timeout) * time.Second
	}
	if pc.MaxRetries > 0 {
		base.MaxRetries = pc.MaxRetries
	}
}

// applyModel 覆盖 LLM 提供商的模型参数
func applyModel(model *string, temperature *float32, maxTokens *int, pc config.ProviderConfig) {
	if pc.Model != "" {
		*model = pc.Model
	}
	if pc.Temperature != 0 {
		*temperature = float32(pc.Temperature)
	}
	if pc.MaxTokens > 0 {
		*maxTokens = pc.MaxTokens
	}
}

// SupportedProviders 返回支持的提供商名称
func SupportedProviders() []string {
	return []string{
		"google",
		"deepl",
		"deeplx",
		"libretranslate",
		"ollama",
		"openai",
		"openai-official",
		"openaicompat",
		"anthropic",
		"gemini",
		"dictionary",
		"raw",
	}
}

// IsLLMProvider 是否为 LLM 提供商（使用提示词，需要词批量标记协议）
func IsLLMProvider(name string) bool {
	switch name {
	case "ollama", "openai", "openai-official", "openaicompat", "anthropic", "gemini":
		return true
	default:
		return false
	}
}
