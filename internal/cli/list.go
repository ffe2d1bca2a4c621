package cli

import (
	"fmt"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"github.com/langdec/langdec/internal/logger"
	"github.com/langdec/langdec/pkg/providers"
	"github.com/langdec/langdec/pkg/providers/factory"
)

// newListCommand 创建 list 子命令组
func newListCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "list",
		Short: "列出提供商和语言",
	}

	cmd.AddCommand(newListProvidersCommand())
	cmd.AddCommand(newListLanguagesCommand())
	return cmd
}

// newListProvidersCommand 列出支持的提供商
func newListProvidersCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "providers",
		Short: "列出支持的翻译提供商",
		RunE: func(cmd *cobra.Command, args []string) error {
			tw := table.NewWriter()
			tw.SetOutputMirror(cmd.OutOrStdout())
			tw.AppendHeader(table.Row{"名称", "类型"})

			for _, name := range factory.SupportedProviders() {
				kind := "api"
				switch {
				case factory.IsLLMProvider(name):
					kind = "llm"
				case name == "dictionary":
					kind = "offline"
				case name == "raw":
					kind = "testing"
				}
				tw.AppendRow(table.Row{name, kind})
			}

			tw.SetStyle(table.StyleLight)
			tw.Render()
			return nil
		},
	}
}

// newListLanguagesCommand 列出某提供商声明支持的语言
func newListLanguagesCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "languages",
		Short:   "列出指定提供商支持的语言",
		Example: `  langdec list languages -p deepl`,
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

			// 包装层只实现翻译接口，查能力要拿裸提供商
			cfg.UseCache = false
			cfg.GlossaryPath = ""
			cfg.WordBatch.Enabled = false

			provider, err := factory.CreateProvider(cmd.Context(), cfg.Provider, cfg, factory.Options{Logger: log})
			if err != nil {
				return err
			}

			full, ok := provider.(providers.Provider)
			if !ok {
				return fmt.Errorf("provider does not report capabilities: %s", cfg.Provider)
			}
			caps := full.GetCapabilities()

			if len(caps.SupportedLanguages) == 0 {
				fmt.Fprintf(cmd.OutOrStdout(), "provider %s does not declare a language list\n", cfg.Provider)
				return nil
			}

			tw := table.NewWriter()
			tw.SetOutputMirror(cmd.OutOrStdout())
			tw.AppendHeader(table.Row{"代码", "语言"})
			for _, lang := range caps.SupportedLanguages {
				tw.AppendRow(table.Row{lang.Code, lang.Name})
			}
			tw.SetStyle(table.StyleLight)
			tw.Render()
			return nil
		},
	}

	return cmd
}
