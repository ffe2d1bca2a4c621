package config

import (
	"fmt"
	"os"
	"path/filepath"
)

// Config 应用配置
type Config struct {
	// 语言设置
	SourceLang string `mapstructure:"source_lang" yaml:"source_lang"`
	TargetLang string `mapstructure:"target_lang" yaml:"target_lang"`

	// MaxLineLength 排版的每行最大宽度，0 表示不换行。
	// 上限 300 来自原始界面的取值范围。
	MaxLineLength int `mapstructure:"max_line_length" yaml:"max_line_length"`

	// Provider 使用的翻译提供商名称
	Provider string `mapstructure:"provider" yaml:"provider"`

	// StrictSentenceCount 源文与译文句子数不一致时报错而不是截断
	StrictSentenceCount bool `mapstructure:"strict_sentence_count" yaml:"strict_sentence_count"`

	// 缓存设置（只作用于网关边界）
	UseCache   bool   `mapstructure:"use_cache" yaml:"use_cache"`
	CacheDir   string `mapstructure:"cache_dir" yaml:"cache_dir"`
	CacheTexts bool   `mapstructure:"cache_texts" yaml:"cache_texts"`

	// WordBatch 词批量翻译设置
	WordBatch WordBatchConfig `mapstructure:"word_batch" yaml:"word_batch"`

	// GlossaryPath 术语表 TOML 文件路径，空表示不使用
	GlossaryPath string `mapstructure:"glossary_path" yaml:"glossary_path"`

	// ShowStats 解码后输出提供商统计
	ShowStats bool `mapstructure:"show_stats" yaml:"show_stats"`

	// 日志
	Debug   bool `mapstructure:"debug" yaml:"debug"`
	Verbose bool `mapstructure:"verbose" yaml:"verbose"`

	// Providers 各提供商的连接配置，键为提供商名称
	Providers map[string]ProviderConfig `mapstructure:"providers" yaml:"providers"`
}

// WordBatchConfig 词批量翻译配置。批量只发生在网关边界，
// 对齐算法始终消费完整解析好的孤立翻译集合。
type WordBatchConfig struct {
	Enabled         bool `mapstructure:"enabled" yaml:"enabled"`
	Size            int  `mapstructure:"size" yaml:"size"`
	FallbackPerWord bool `mapstructure:"fallback_per_word" yaml:"fallback_per_word"`
}

// ProviderConfig 单个提供商的连接配置
type ProviderConfig struct {
	APIKey      string  `mapstructure:"api_key" yaml:"api_key"`
	APIEndpoint string  `mapstructure:"api_endpoint" yaml:"api_endpoint"`
	Model       string  `mapstructure:"model" yaml:"model"`
	Temperature float64 `mapstructure:"temperature" yaml:"temperature"`
	MaxTokens   int     `mapstructure:"max_tokens" yaml:"max_tokens"`

	// Timeout 请求超时（秒）
	Timeout    int `mapstructure:"timeout" yaml:"timeout"`
	MaxRetries int `mapstructure:"max_retries" yaml:"max_retries"`

	// DictionaryPath 离线词典提供商的 TSV 文件路径
	DictionaryPath string `mapstructure:"dictionary_path" yaml:"dictionary_path"`

	// UseFreeAPI DeepL 免费版端点
	UseFreeAPI bool `mapstructure:"use_free_api" yaml:"use_free_api"`
}

// NewDefaultConfig 返回默认配置
func NewDefaultConfig() *Config {
	return &Config{
		SourceLang:    "en",
		TargetLang:    "de",
		MaxLineLength: 80,
		Provider:      "google",
		UseCache:      true,
		CacheDir:      getDefaultCacheDir(),
		WordBatch: WordBatchConfig{
			Size:            32,
			FallbackPerWord: true,
		},
		Providers: make(map[string]ProviderConfig),
	}
}

// Validate 校验配置
func (c *Config) Validate() error {
	if c.SourceLang == "" {
		return fmt.Errorf("source_lang must not be empty")
	}
	if c.TargetLang == "" {
		return fmt.Errorf("target_lang must not be empty")
	}
	if c.Provider == "" {
		return fmt.Errorf("provider must not be empty")
	}
	if c.MaxLineLength < 0 || c.MaxLineLength > 300 {
		return fmt.Errorf("max_line_length must be between 0 and 300, got %d", c.MaxLineLength)
	}
	if c.WordBatch.Size < 0 {
		return fmt.Errorf("word_batch.size must not be negative, got %d", c.WordBatch.Size)
	}
	return nil
}

// ProviderSettings 返回指定提供商的连接配置，未配置时返回零值
func (c *Config) ProviderSettings(name string) ProviderConfig {
	if c.Providers == nil {
		return ProviderConfig{}
	}
	return c.Providers[name]
}

// getDefaultCacheDir 返回默认缓存目录
func getDefaultCacheDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(os.TempDir(), "langdec-cache")
	}
	return filepath.Join(home, ".langdec", "cache")
}
