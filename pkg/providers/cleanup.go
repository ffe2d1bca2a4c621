package providers

import (
	"regexp"
	"strings"
)

// 常见推理标记对，推理模型会把思考过程混入正文
var reasoningTagPairs = [][2]string{
	{"<think>", "</think>"},
	{"<thinking>", "</thinking>"},
	{"<thought>", "</thought>"},
	{"<reasoning>", "</reasoning>"},
	{"<reflection>", "</reflection>"},
	{"[THINKING]", "[/THINKING]"},
	{"[REASONING]", "[/REASONING]"},
}

// StripReasoning 移除推理模型输出中的思考过程标记
func StripReasoning(content string) string {
	result := content
	for _, pair := range reasoningTagPairs {
		pattern := regexp.QuoteMeta(pair[0]) + `(?s:.*?)` + regexp.QuoteMeta(pair[1])
		result = regexp.MustCompile(pattern).ReplaceAllString(result, "")
	}
	return strings.TrimSpace(result)
}

// HasReasoningTags 检查内容是否包含推理标记
func HasReasoningTags(content string) bool {
	lower := strings.ToLower(content)
	for _, pair := range reasoningTagPairs {
		if strings.Contains(lower, strings.ToLower(pair[0])) {
			return true
		}
	}
	return false
}

// CleanWordResponse 清理 LLM 对单词翻译请求的回答。
// 模型常常附带引号、句号或解释性第二行，这里只保留第一行的裸翻译；
// 多词结果（如复合词的意译）原样保留。
func CleanWordResponse(content string) string {
	cleaned := StripReasoning(content)

	if idx := strings.IndexByte(cleaned, '\n'); idx >= 0 {
		cleaned = cleaned[:idx]
	}
	cleaned = strings.TrimSpace(cleaned)
	cleaned = strings.Trim(cleaned, `"'„“”‚‘’«»`)
	cleaned = strings.TrimRight(cleaned, ".,;:!")

	return strings.TrimSpace(cleaned)
}
