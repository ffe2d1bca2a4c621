package cli

import (
	"fmt"
	"os"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"github.com/langdec/langdec/internal/input"
	"github.com/langdec/langdec/internal/logger"
	"github.com/langdec/langdec/pkg/interlinear"
	"github.com/langdec/langdec/pkg/providers/factory"
	"github.com/langdec/langdec/pkg/providers/stats"
)

// newDecodeCommand 创建 decode 子命令
func newDecodeCommand() *cobra.Command {
	var (
		inlineText      string
		maxWidth        int
		outputPath      string
		showTrace       bool
		showStats       bool
		useBatch        bool
		strictSentences bool
		glossaryPath    string
		noCache         bool
	)

	cmd := &cobra.Command{
		Use:   "decode [file]",
		Short: "把文本解码成逐词对照的对齐输出",
		Long: `decode 读取一段源语言文本，整段翻译后逐句逐词对齐，
输出上行原文、下行译文、逐列对齐的对照文本。

输入来源三选一：位置参数指定文件（"-" 表示标准输入，
.md/.markdown 文件自动抽取正文）、--text 直接给出文本、
或省略参数从标准输入读取。`,
		Example: `  langdec decode --text "the cat sleeps" -s en -t de
  langdec decode story.txt -o story.decoded.txt
  cat story.txt | langdec decode --trace`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}

			flags := cmd.Flags()
			if flags.Changed("width") {
				cfg.MaxLineLength = maxWidth
			}
			if flags.Changed("batch") {
				cfg.WordBatch.Enabled = useBatch
			}
			if flags.Changed("strict-sentences") {
				cfg.StrictSentenceCount = strictSentences
			}
			if flags.Changed("glossary") {
				cfg.GlossaryPath = glossaryPath
			}
			if flags.Changed("stats") {
				cfg.ShowStats = showStats
			}
			if noCache {
				cfg.UseCache = false
			}
			if err := cfg.Validate(); err != nil {
				return err
			}

			log, err := logger.NewLoggerWithVerbose(cfg.Debug, cfg.Verbose)
			if err != nil {
				return fmt.Errorf("failed to create logger: %w", err)
			}
			defer log.Sync() //nolint:errcheck

			text, err := readDecodeInput(inlineText, args)
			if err != nil {
				return err
			}

			var statsManager *stats.Manager
			if cfg.ShowStats {
				statsManager = stats.NewManager(log)
			}

			provider, err := factory.CreateProvider(cmd.Context(), cfg.Provider, cfg, factory.Options{
				Logger: log,
				Stats:  statsManager,
			})
			if err != nil {
				return err
			}

			decoder := interlinear.New(provider, log, interlinear.Config{
				StrictSentenceCount: cfg.StrictSentenceCount,
				UseWordBatch:        cfg.WordBatch.Enabled,
			})

			// 结果走 stdout 时不画进度条，避免污染输出
			var bar *pterm.ProgressbarPrinter
			if outputPath != "" {
				decoder.OnSentence = func(done, total int) {
					if bar == nil {
						bar, _ = pterm.DefaultProgressbar.WithTotal(total).WithTitle("解码进度").Start()
					}
					if bar != nil {
						bar.Increment()
					}
				}
			}

			result, err := decoder.Decode(cmd.Context(), &interlinear.DecodeRequest{
				Text:          text,
				SourceLang:    cfg.SourceLang,
				TargetLang:    cfg.TargetLang,
				MaxLineLength: cfg.MaxLineLength,
			})
			if bar != nil {
				bar.Stop() //nolint:errcheck
			}
			if err != nil {
				return err
			}

			if outputPath != "" {
				if err := os.WriteFile(outputPath, []byte(result.Text), 0o644); err != nil {
					return fmt.Errorf("failed to write output file: %w", err)
				}
				fmt.Fprintf(cmd.OutOrStdout(), "decoded text written to %s\n", outputPath)
			} else {
				fmt.Fprint(cmd.OutOrStdout(), result.Text)
			}

			if showTrace {
				renderTraceTable(cmd.OutOrStdout(), result.Traces)
			}
			if cfg.ShowStats {
				renderDecodeStats(cmd.OutOrStdout(), result.Stats)
				if statsManager != nil {
					renderProviderStats(cmd.OutOrStdout(), statsManager.Snapshot())
				}
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&inlineText, "text", "", "直接给出要解码的文本")
	cmd.Flags().IntVarP(&maxWidth, "width", "w", 0, "每行最大宽度（0 表示不换行）")
	cmd.Flags().StringVarP(&outputPath, "output", "o", "", "输出文件路径（默认写标准输出）")
	cmd.Flags().BoolVar(&showTrace, "trace", false, "输出每个词的对齐诊断表")
	cmd.Flags().BoolVar(&showStats, "stats", false, "输出解码与提供商统计")
	cmd.Flags().BoolVar(&useBatch, "batch", false, "对 LLM 提供商启用词批量翻译")
	cmd.Flags().BoolVar(&strictSentences, "strict-sentences", false, "原文与译文句数不一致时报错而非截断")
	cmd.Flags().StringVar(&glossaryPath, "glossary", "", "术语表 TOML 文件路径")
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "本次运行禁用翻译缓存")

	return cmd
}

// readDecodeInput 按 --text、位置参数、标准输入的优先级取输入文本
func readDecodeInput(inlineText string, args []string) (string, error) {
	if inlineText != "" {
		return inlineText, nil
	}
	path := "-"
	if len(args) > 0 {
		path = args[0]
	}
	return input.ReadText(path)
}
