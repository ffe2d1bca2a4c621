package config

import (
	"os"

	"github.com/spf13/viper"
)

// LoadConfig 加载配置文件。configPath 为空时在家目录和当前目录
// 查找 .langdec.yaml，找不到配置文件则使用默认值。
// 环境变量前缀 LANGDEC（如 LANGDEC_PROVIDER）。
func LoadConfig(configPath string) (*Config, error) {
	v := viper.New()

	setDefaults(v)

	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, err
		}

		v.AddConfigPath(home)
		v.AddConfigPath(".")
		v.SetConfigName(".langdec")
		v.SetConfigType("yaml")
	}

	v.AutomaticEnv()
	v.SetEnvPrefix("LANGDEC")

	if err := v.ReadInConfig(); err != nil {
		// 找不到配置文件不算错误，用默认值
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, err
		}
	}

	config := NewDefaultConfig()
	if err := v.Unmarshal(config); err != nil {
		return nil, err
	}

	if config.CacheDir == "" {
		config.CacheDir = getDefaultCacheDir()
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}

	return config, nil
}

// setDefaults 设置 viper 默认值，保证部分配置文件也能得到完整配置
func setDefaults(v *viper.Viper) {
	defaults := NewDefaultConfig()

	v.SetDefault("source_lang", defaults.SourceLang)
	v.SetDefault("target_lang", defaults.TargetLang)
	v.SetDefault("max_line_length", defaults.MaxLineLength)
	v.SetDefault("provider", defaults.Provider)
	v.SetDefault("use_cache", defaults.UseCache)
	v.SetDefault("cache_dir", defaults.CacheDir)
	v.SetDefault("word_batch.size", defaults.WordBatch.Size)
	v.SetDefault("word_batch.fallback_per_word", defaults.WordBatch.FallbackPerWord)
}

// SaveDefaultConfig 把默认配置写到指定路径，供 config init 使用
func SaveDefaultConfig(path string) error {
	defaults := NewDefaultConfig()

	v := viper.New()
	v.SetConfigType("yaml")

	v.Set("source_lang", defaults.SourceLang)
	v.Set("target_lang", defaults.TargetLang)
	v.Set("max_line_length", defaults.MaxLineLength)
	v.Set("provider", defaults.Provider)
	v.Set("strict_sentence_count", defaults.StrictSentenceCount)
	v.Set("use_cache", defaults.UseCache)
	v.Set("cache_dir", defaults.CacheDir)
	v.Set("cache_texts", defaults.CacheTexts)
	v.Set("word_batch.enabled", defaults.WordBatch.Enabled)
	v.Set("word_batch.size", defaults.WordBatch.Size)
	v.Set("word_batch.fallback_per_word", defaults.WordBatch.FallbackPerWord)
	v.Set("glossary_path", defaults.GlossaryPath)

	return v.WriteConfigAs(path)
}
