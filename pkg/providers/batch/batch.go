package batch

import (
	"context"
	"fmt"
	"strings"

	"github.com/dlclark/regexp2"

	"github.com/langdec/langdec/pkg/providers"
)

// 标记格式：@@W_<n>@@ word @@W_END_<n>@@
// 翻译后按编号取回，词序和数量与原文本无关，解析只认标记对。
const (
	markerStart = "@@W_%d@@"
	markerEnd   = "@@W_END_%d@@"
)

// 结束标记必须与开始标记编号一致，反向引用需要 regexp2
var markerPattern = regexp2.MustCompile(`@@W_(\d+)@@\s*(.*?)\s*@@W_END_\1@@`, regexp2.Singleline)

// batchInstruction 附加给下游提供商的翻译指令
const batchInstruction = "Each marked segment is an independent word. Translate every word on its own, " +
	"keep all @@W_n@@ and @@W_END_n@@ markers exactly as they are, and replace only the word between them. " +
	"Do not merge, reorder, or drop any marker pair."

// Config 批量配置
type Config struct {
	// BatchSize 单次请求的最大词数
	BatchSize int `json:"batch_size"`

	// FallbackPerWord 批量结果缺词时是否逐词补查
	FallbackPerWord bool `json:"fallback_per_word"`
}

// DefaultConfig 返回默认批量配置
func DefaultConfig() Config {
	return Config{
		BatchSize:       32,
		FallbackPerWord: true,
	}
}

// Translator 批量包装器：把 N 次 TranslateWord 归并为 ceil(N/BatchSize)
// 次 TranslateText 往返。对齐算法不感知批量，始终消费完整的词翻译集。
type Translator struct {
	next   providers.TranslationProvider
	config Config
}

var (
	_ providers.TranslationProvider = (*Translator)(nil)
	_ providers.WordBatcher         = (*Translator)(nil)
)

// Wrap 用批量能力包装提供商
func Wrap(next providers.TranslationProvider, config Config) *Translator {
	if config.BatchSize <= 0 {
		config.BatchSize = DefaultConfig().BatchSize
	}
	return &Translator{
		next:   next,
		config: config,
	}
}

// TranslateWord 透传单词翻译
func (t *Translator) TranslateWord(ctx context.Context, req *providers.Request) (*providers.Response, error) {
	return t.next.TranslateWord(ctx, req)
}

// TranslateText 透传整段翻译
func (t *Translator) TranslateText(ctx context.Context, req *providers.Request) (*providers.Response, error) {
	return t.next.TranslateText(ctx, req)
}

// GetName 获取底层提供商名称
func (t *Translator) GetName() string {
	return t.next.GetName()
}

// TranslateWords 批量翻译词表。个别词解析失败不报错，
// 对应位置 OK=false（可选逐词补查），与词翻译失败非致命的约定一致。
func (t *Translator) TranslateWords(ctx context.Context, req *providers.BatchRequest) (*providers.BatchResponse, error) {
	resp := &providers.BatchResponse{
		Translations: make([]string, len(req.Words)),
		OK:           make([]bool, len(req.Words)),
	}

	for offset := 0; offset < len(req.Words); offset += t.config.BatchSize {
		end := offset + t.config.BatchSize
		if end > len(req.Words) {
			end = len(req.Words)
		}
		chunk := req.Words[offset:end]

		textResp, err := t.next.TranslateText(ctx, &providers.Request{
			Text:           Encode(chunk),
			SourceLanguage: req.SourceLanguage,
			TargetLanguage: req.TargetLanguage,
			Metadata: map[string]interface{}{
				"instruction": batchInstruction,
				"word_batch":  true,
			},
		})
		if err != nil {
			// 整块失败按词失败处理，留给补查或对齐回退
			continue
		}

		resp.TokensIn += textResp.TokensIn
		resp.TokensOut += textResp.TokensOut

		for idx, translation := range Decode(textResp.Text) {
			if idx < 0 || idx >= len(chunk) || translation == "" {
				continue
			}
			resp.Translations[offset+idx] = translation
			resp.OK[offset+idx] = true
		}
	}

	if t.config.FallbackPerWord {
		t.fillMissing(ctx, req, resp)
	}

	return resp, nil
}

// Encode 把词表编码为带标记的文本块，每词一行
func Encode(words []string) string {
	var b strings.Builder
	for i, word := range words {
		if i > 0 {
			b.WriteByte('\n')
		}
		fmt.Fprintf(&b, markerStart+" %s "+markerEnd, i, word, i)
	}
	return b.String()
}

// Decode 从翻译结果中按标记对取回各词，返回编号到译文的映射
func Decode(text string) map[int]string {
	text = providers.StripReasoning(text)
	result := make(map[int]string)

	m, err := markerPattern.FindStringMatch(text)
	for err == nil && m != nil {
		groups := m.Groups()
		if len(groups) >= 3 {
			var idx int
			if _, convErr := fmt.Sscanf(groups[1].String(), "%d", &idx); convErr == nil {
				translation := strings.TrimSpace(groups[2].String())
				translation = strings.Trim(translation, `"'„“”‚‘’«»`)
				if _, seen := result[idx]; !seen && translation != "" {
					result[idx] = translation
				}
			}
		}
		m, err = markerPattern.FindNextMatch(m)
	}

	return result
}

// fillMissing 对批量未覆盖的词逐个补查
func (t *Translator) fillMissing(ctx context.Context, req *providers.BatchRequest, resp *providers.BatchResponse) {
	for i, ok := range resp.OK {
		if ok {
			continue
		}
		wordResp, err := t.next.TranslateWord(ctx, &providers.Request{
			Text:           req.Words[i],
			SourceLanguage: req.SourceLanguage,
			TargetLanguage: req.TargetLanguage,
		})
		if err != nil || wordResp.Text == "" {
			continue
		}
		resp.Translations[i] = wordResp.Text
		resp.OK[i] = true
	}
}
