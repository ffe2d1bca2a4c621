package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/langdec/langdec/internal/logger"
	"github.com/langdec/langdec/pkg/interlinear"
	"github.com/langdec/langdec/pkg/providers/factory"
)

// newTranslateCommand 创建 translate 子命令（整句翻译，不做对齐）
func newTranslateCommand() *cobra.Command {
	var inlineText string

	cmd := &cobra.Command{
		Use:   "translate [file]",
		Short: "逐行整句翻译，不做逐词对齐",
		Long: `translate 把输入按行整句翻译后输出，空行原样保留。
适合只需要译文、不需要对照排版的场景，也可以用来检查
某个提供商的整句翻译质量。`,
		Example: `  langdec translate --text "the cat sleeps" -s en -t de
  langdec translate notes.txt -p deepl`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
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

			provider, err := factory.CreateProvider(cmd.Context(), cfg.Provider, cfg, factory.Options{Logger: log})
			if err != nil {
				return err
			}

			translated, err := interlinear.TranslateLines(cmd.Context(), provider, text, cfg.SourceLang, cfg.TargetLang)
			if err != nil {
				return err
			}

			fmt.Fprintln(cmd.OutOrStdout(), translated)
			return nil
		},
	}

	cmd.Flags().StringVar(&inlineText, "text", "", "直接给出要翻译的文本")
	return cmd
}
