package interlinear

import "strings"

// SplitSentences 把整段文本切分为句子。
// 连续的句号和换行算作一个边界，产生的空片段全部丢弃，
// 每个句子两端去除空白。结果中句子只靠位置寻址，没有边界标记。
func SplitSentences(text string) []string {
	fragments := strings.FieldsFunc(text, func(r rune) bool {
		return r == '.' || r == '\n'
	})

	sentences := make([]string, 0, len(fragments))
	for _, fragment := range fragments {
		fragment = strings.TrimSpace(fragment)
		if fragment == "" {
			continue
		}
		sentences = append(sentences, fragment)
	}
	return sentences
}

// Tokenize 按空白切分句子为词。不去标点、不改大小写，
// 大小写归一化只发生在对齐器的匹配阶段。
func Tokenize(sentence string) []string {
	return strings.Fields(sentence)
}
