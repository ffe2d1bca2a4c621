package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/langdec/langdec/internal/config"
)

var (
	// 持久化标志
	cfgFile      string
	sourceLang   string
	targetLang   string
	providerName string
	debugMode    bool
	verboseMode  bool
)

// NewRootCommand 创建根命令
func NewRootCommand(version, commit, buildDate string) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "langdec",
		Short: "langdec 是一个逐词对照的语言学习解码器",
		Long: `langdec 把原文和它的整句译文逐词对齐，渲染成上下两行、
逐列对齐的对照文本（Birkenbihl 风格），让学习者在不丢失句子
语境的情况下看到每个词的对应关系。

整句翻译保证译文质量，逐词翻译提供对应关系线索，对齐器把
两者融合；语义匹配不了的词退回位置对齐，任何词都不会丢失。

支持的翻译提供商:
  - google / deepl / deeplx / libretranslate: 传统翻译 API
  - openai / openai-official / openaicompat / anthropic / gemini / ollama: LLM
  - dictionary: 离线 TSV 词典
  - raw: 原样返回（测试用）`,
		Version:       fmt.Sprintf("%s (commit %s, built %s)", version, commit, buildDate),
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "配置文件路径（默认查找 ~/.langdec.yaml）")
	rootCmd.PersistentFlags().StringVarP(&sourceLang, "source", "s", "", "源语言代码（如 en、de、pt）")
	rootCmd.PersistentFlags().StringVarP(&targetLang, "target", "t", "", "目标语言代码")
	rootCmd.PersistentFlags().StringVarP(&providerName, "provider", "p", "", "翻译提供商")
	rootCmd.PersistentFlags().BoolVar(&debugMode, "debug", false, "调试模式")
	rootCmd.PersistentFlags().BoolVarP(&verboseMode, "verbose", "v", false, "输出详细日志")

	rootCmd.AddCommand(newDecodeCommand())
	rootCmd.AddCommand(newTranslateCommand())
	rootCmd.AddCommand(newDictCommand())
	rootCmd.AddCommand(newListCommand())
	rootCmd.AddCommand(newConfigCommand())

	return rootCmd
}

// loadConfig 加载配置并应用持久化标志的覆盖
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg, err := config.LoadConfig(cfgFile)
	if err != nil {
		return nil, err
	}

	flags := cmd.Flags()
	if flags.Changed("source") {
		cfg.SourceLang = sourceLang
	}
	if flags.Changed("target") {
		cfg.TargetLang = targetLang
	}
	if flags.Changed("provider") {
		cfg.Provider = providerName
	}
	if flags.Changed("debug") {
		cfg.Debug = debugMode
	}
	if flags.Changed("verbose") {
		cfg.Verbose = verboseMode
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}
