package cli

import (
	"fmt"
	"io"
	"time"

	"github.com/fatih/color"
	"github.com/jedib0t/go-pretty/v6/table"

	"github.com/langdec/langdec/pkg/interlinear"
	"github.com/langdec/langdec/pkg/providers/stats"
)

var (
	matchedColor  = color.New(color.FgGreen)
	fallbackColor = color.New(color.FgYellow)
	missingColor  = color.New(color.FgRed)
)

// renderTraceTable 渲染逐词对齐诊断表
func renderTraceTable(w io.Writer, traces []interlinear.AlignmentTrace) {
	tw := table.NewWriter()
	tw.SetOutputMirror(w)
	tw.AppendHeader(table.Row{"#", "源词", "孤立翻译", "状态"})

	for i, trace := range traces {
		translation := trace.Translation
		if !trace.HasTranslation {
			translation = missingColor.Sprint("(failed)")
		}
		tw.AppendRow(table.Row{i + 1, trace.SourceToken, translation, formatStatus(trace.Status)})
	}

	tw.SetStyle(table.StyleLight)
	fmt.Fprintln(w)
	tw.Render()
}

func formatStatus(status interlinear.MatchStatus) string {
	switch status {
	case interlinear.StatusMatchedInContext:
		return matchedColor.Sprint(string(status))
	case interlinear.StatusNotFoundInContext:
		return fallbackColor.Sprint(string(status))
	default:
		return string(status)
	}
}

// renderDecodeStats 渲染单次解码统计表
func renderDecodeStats(w io.Writer, s interlinear.DecodeStats) {
	tw := table.NewWriter()
	tw.SetOutputMirror(w)

	tw.AppendRow(table.Row{"项", "值"})
	tw.AppendSeparator()
	tw.AppendRow(table.Row{"解码 ID", s.ID})
	tw.AppendRow(table.Row{"句对", s.Sentences})
	if s.DroppedSentences > 0 {
		tw.AppendRow(table.Row{"丢弃句子", fallbackColor.Sprint(s.DroppedSentences)})
	}
	tw.AppendRow(table.Row{"源词 / 译词", fmt.Sprintf("%d / %d", s.SourceTokens, s.TargetTokens)})
	tw.AppendRow(table.Row{"语境内匹配", fmt.Sprintf("%d (%.0f%%)", s.MatchedInContext, percent(s.MatchedInContext, s.SourceTokens))})
	tw.AppendRow(table.Row{"整句 / 逐词请求", fmt.Sprintf("%d / %d", s.TextCalls, s.WordCalls)})
	if s.WordFailures > 0 {
		tw.AppendRow(table.Row{"逐词失败", fallbackColor.Sprint(s.WordFailures)})
	}
	tw.AppendRow(table.Row{"耗时", formatDuration(s.Duration)})

	tw.SetStyle(table.StyleLight)
	fmt.Fprintln(w)
	tw.Render()
}

// renderProviderStats 渲染提供商请求统计表
func renderProviderStats(w io.Writer, snapshots []stats.ProviderStats) {
	if len(snapshots) == 0 {
		return
	}

	tw := table.NewWriter()
	tw.SetOutputMirror(w)
	tw.AppendHeader(table.Row{"提供商", "请求", "词/句", "成功", "失败", "缓存命中", "平均延迟", "Tokens 入/出"})

	for _, s := range snapshots {
		failed := fmt.Sprint(s.FailedRequests)
		if s.FailedRequests > 0 {
			failed = missingColor.Sprint(s.FailedRequests)
		}
		tw.AppendRow(table.Row{
			s.ProviderName,
			s.TotalRequests,
			fmt.Sprintf("%d/%d", s.WordRequests, s.TextRequests),
			s.SuccessfulRequests,
			failed,
			s.CacheHits,
			formatDuration(s.AverageLatency),
			fmt.Sprintf("%d/%d", s.TotalTokensIn, s.TotalTokensOut),
		})
	}

	tw.SetStyle(table.StyleLight)
	fmt.Fprintln(w)
	tw.Render()
}

func percent(part, total int) float64 {
	if total == 0 {
		return 0
	}
	return float64(part) / float64(total) * 100
}

func formatDuration(d time.Duration) string {
	switch {
	case d >= time.Minute:
		return fmt.Sprintf("%dm%02ds", int(d.Minutes()), int(d.Seconds())%60)
	case d >= time.Second:
		return fmt.Sprintf("%.1fs", d.Seconds())
	default:
		return fmt.Sprintf("%dms", d.Milliseconds())
	}
}
