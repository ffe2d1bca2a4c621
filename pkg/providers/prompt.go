package providers

import "fmt"

// WordSystemPrompt 词翻译的系统提示词，各 LLM 提供商共用
const WordSystemPrompt = "You are a bilingual dictionary. " +
	"Reply with the single most common translation of the given word, and nothing else: " +
	"no punctuation, no explanation, no alternatives."

// TextSystemPrompt 篇章翻译的系统提示词
const TextSystemPrompt = "You are a professional translator. " +
	"Reply with only the translation, without any additional explanations."

// BuildWordPrompt 构建单词翻译提示词
func BuildWordPrompt(word, sourceLang, targetLang string) string {
	return fmt.Sprintf("Translate the %s word %q into %s. Reply with only the translated word.",
		sourceLang, word, targetLang)
}

// BuildTextPrompt 构建篇章翻译提示词
func BuildTextPrompt(text, sourceLang, targetLang string) string {
	return fmt.Sprintf("Translate the following text from %s to %s. Reply with only the translation:\n\n%s",
		sourceLang, targetLang, text)
}

// ApplyInstruction 把请求元数据里的 instruction 前置到提示词。
// 批量包装器靠它传递标记保持指令。
func ApplyInstruction(prompt string, metadata map[string]interface{}) string {
	if metadata == nil {
		return prompt
	}
	if instruction, ok := metadata["instruction"].(string); ok && instruction != "" {
		return instruction + "\n\n" + prompt
	}
	return prompt
}
