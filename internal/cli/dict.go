package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/langdec/langdec/internal/dictconv"
	"github.com/langdec/langdec/pkg/providers/dictionary"
)

// newDictCommand 创建 dict 子命令组
func newDictCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "dict",
		Short: "离线词典工具",
	}

	cmd.AddCommand(newDictConvertCommand())
	cmd.AddCommand(newDictLookupCommand())
	return cmd
}

// newDictConvertCommand TEI 词典转 TSV
func newDictConvertCommand() *cobra.Command {
	var (
		inputPath  string
		outputPath string
	)

	cmd := &cobra.Command{
		Use:   "convert",
		Short: "把 FreeDict 的 TEI 词典转换为 TSV",
		Long: `convert 读取 FreeDict 项目的 TEI XML 词典文件，抽取词头和
译文，写出 dictionary 提供商可直接加载的 TSV 文件
（每行 headword<TAB>translation）。`,
		Example: `  langdec dict convert -i deu-eng.tei -o deu-eng.tsv`,
		RunE: func(cmd *cobra.Command, args []string) error {
			result, err := dictconv.ConvertFile(inputPath, outputPath)
			if err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "wrote %d rows to %s", result.Rows, outputPath)
			if result.SkippedEntries > 0 {
				fmt.Fprintf(cmd.OutOrStdout(), " (%d entries skipped)", result.SkippedEntries)
			}
			fmt.Fprintln(cmd.OutOrStdout())
			return nil
		},
	}

	cmd.Flags().StringVarP(&inputPath, "input", "i", "", "TEI 词典文件路径")
	cmd.Flags().StringVarP(&outputPath, "output", "o", "", "输出 TSV 文件路径")
	cmd.MarkFlagRequired("input")  //nolint:errcheck
	cmd.MarkFlagRequired("output") //nolint:errcheck

	return cmd
}

// newDictLookupCommand 在 TSV 词典里查词
func newDictLookupCommand() *cobra.Command {
	var (
		dictPath      string
		caseSensitive bool
	)

	cmd := &cobra.Command{
		Use:     "lookup <word>",
		Short:   "在 TSV 词典里查一个词",
		Example: `  langdec dict lookup Hund --dict deu-eng.tsv`,
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c := dictionary.DefaultConfig()
			c.Path = dictPath
			c.CaseSensitive = caseSensitive

			provider, err := dictionary.New(c)
			if err != nil {
				return err
			}

			translation, found := provider.Lookup(args[0])
			if !found {
				return fmt.Errorf("word not found in dictionary (%d entries): %s", provider.Size(), args[0])
			}

			fmt.Fprintln(cmd.OutOrStdout(), translation)
			return nil
		},
	}

	cmd.Flags().StringVar(&dictPath, "dict", "", "TSV 词典文件路径")
	cmd.Flags().BoolVar(&caseSensitive, "case-sensitive", false, "区分大小写")
	cmd.MarkFlagRequired("dict") //nolint:errcheck

	return cmd
}
