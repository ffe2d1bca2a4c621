package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"github.com/langdec/langdec/internal/config"
)

// newConfigCommand 创建 config 子命令组
func newConfigCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "配置文件管理",
	}

	cmd.AddCommand(newConfigInitCommand())
	cmd.AddCommand(newConfigShowCommand())
	return cmd
}

// newConfigInitCommand 生成默认配置文件
func newConfigInitCommand() *cobra.Command {
	var outputPath string

	cmd := &cobra.Command{
		Use:   "init",
		Short: "生成默认配置文件",
		RunE: func(cmd *cobra.Command, args []string) error {
			path := outputPath
			if path == "" {
				home, err := os.UserHomeDir()
				if err != nil {
					return fmt.Errorf("failed to get home directory: %w", err)
				}
				path = filepath.Join(home, ".langdec.yaml")
			}

			if _, err := os.Stat(path); err == nil {
				return fmt.Errorf("config file already exists: %s", path)
			}

			if err := config.SaveDefaultConfig(path); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "default config written to %s\n", path)
			return nil
		},
	}

	cmd.Flags().StringVarP(&outputPath, "output", "o", "", "配置文件路径（默认 ~/.langdec.yaml）")
	return cmd
}

// newConfigShowCommand 显示当前生效的配置
func newConfigShowCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "显示当前生效的配置",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}

			tw := table.NewWriter()
			tw.SetOutputMirror(cmd.OutOrStdout())
			tw.AppendRow(table.Row{"项", "值"})
			tw.AppendSeparator()
			tw.AppendRow(table.Row{"source_lang", cfg.SourceLang})
			tw.AppendRow(table.Row{"target_lang", cfg.TargetLang})
			tw.AppendRow(table.Row{"provider", cfg.Provider})
			tw.AppendRow(table.Row{"max_line_length", cfg.MaxLineLength})
			tw.AppendRow(table.Row{"strict_sentence_count", cfg.StrictSentenceCount})
			tw.AppendRow(table.Row{"use_cache", cfg.UseCache})
			tw.AppendRow(table.Row{"cache_dir", cfg.CacheDir})
			tw.AppendRow(table.Row{"word_batch.enabled", cfg.WordBatch.Enabled})
			tw.AppendRow(table.Row{"word_batch.size", cfg.WordBatch.Size})
			if cfg.GlossaryPath != "" {
				tw.AppendRow(table.Row{"glossary_path", cfg.GlossaryPath})
			}

			names := make([]string, 0, len(cfg.Providers))
			for name := range cfg.Providers {
				names = append(names, name)
			}
			sort.Strings(names)
			for _, name := range names {
				pc := cfg.Providers[name]
				tw.AppendSeparator()
				tw.AppendRow(table.Row{"providers." + name + ".api_key", maskSecret(pc.APIKey)})
				if pc.APIEndpoint != "" {
					tw.AppendRow(table.Row{"providers." + name + ".api_endpoint", pc.APIEndpoint})
				}
				if pc.Model != "" {
					tw.AppendRow(table.Row{"providers." + name + ".model", pc.Model})
				}
			}

			tw.SetStyle(table.StyleLight)
			tw.Render()
			return nil
		},
	}
}

// maskSecret 只露出密钥末四位
func maskSecret(secret string) string {
	if secret == "" {
		return "(not set)"
	}
	if len(secret) <= 4 {
		return strings.Repeat("*", len(secret))
	}
	return strings.Repeat("*", len(secret)-4) + secret[len(secret)-4:]
}
