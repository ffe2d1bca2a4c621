package glossary

import (
	"context"
	"strings"

	"github.com/langdec/langdec/pkg/providers"
)

// Overlay 术语表覆盖层。用户钉死的词优先于下游提供商的结果，
// 整段文本翻译不受影响。
type Overlay struct {
	next    providers.TranslationProvider
	entries map[string]string
}

var (
	_ providers.TranslationProvider = (*Overlay)(nil)
	_ providers.WordBatcher         = (*Overlay)(nil)
)

// Wrap 在提供商外包一层术语表。entries 为空时直接返回原提供商。
// 查询按小写匹配。
func Wrap(next providers.TranslationProvider, entries map[string]string) providers.TranslationProvider {
	if len(entries) == 0 {
		return next
	}

	normalized := make(map[string]string, len(entries))
	for word, translation := range entries {
		word = strings.TrimSpace(word)
		translation = strings.TrimSpace(translation)
		if word == "" || translation == "" {
			continue
		}
		normalized[strings.ToLower(word)] = translation
	}
	if len(normalized) == 0 {
		return next
	}

	return &Overlay{
		next:    next,
		entries: normalized,
	}
}

// Lookup 查询术语表
func (o *Overlay) Lookup(word string) (string, bool) {
	translation, ok := o.entries[strings.ToLower(word)]
	return translation, ok
}

// TranslateWord 术语表命中时直接返回，否则透传
func (o *Overlay) TranslateWord(ctx context.Context, req *providers.Request) (*providers.Response, error) {
	if translation, ok := o.Lookup(req.Text); ok {
		return &providers.Response{
			Text:  translation,
			Model: "glossary",
			Metadata: map[string]interface{}{
				"glossary": "hit",
			},
		}, nil
	}
	return o.next.TranslateWord(ctx, req)
}

// TranslateText 透传，术语表只作用于逐词翻译
func (o *Overlay) TranslateText(ctx context.Context, req *providers.Request) (*providers.Response, error) {
	return o.next.TranslateText(ctx, req)
}

// TranslateWords 先用术语表填充命中的词，剩余的交给下游
func (o *Overlay) TranslateWords(ctx context.Context, req *providers.BatchRequest) (*providers.BatchResponse, error) {
	resp := &providers.BatchResponse{
		Translations: make([]string, len(req.Words)),
		OK:           make([]bool, len(req.Words)),
	}

	var missing []string
	var missingIdx []int
	for i, word := range req.Words {
		if translation, ok := o.Lookup(word); ok {
			resp.Translations[i] = translation
			resp.OK[i] = true
		} else {
			missing = append(missing, word)
			missingIdx = append(missingIdx, i)
		}
	}

	if len(missing) == 0 {
		return resp, nil
	}

	var downstream *providers.BatchResponse
	var err error
	if batcher, ok := o.next.(providers.WordBatcher); ok {
		downstream, err = batcher.TranslateWords(ctx, &providers.BatchRequest{
			Words:          missing,
			SourceLanguage: req.SourceLanguage,
			TargetLanguage: req.TargetLanguage,
		})
	} else {
		downstream, err = providers.FallbackTranslateWords(ctx, o.next, &providers.BatchRequest{
			Words:          missing,
			SourceLanguage: req.SourceLanguage,
			TargetLanguage: req.TargetLanguage,
		})
	}
	if err != nil {
		return nil, err
	}

	for j, idx := range missingIdx {
		if j >= len(downstream.Translations) || j >= len(downstream.OK) {
			break
		}
		if downstream.OK[j] {
			resp.Translations[idx] = downstream.Translations[j]
			resp.OK[idx] = true
		}
	}
	resp.TokensIn = downstream.TokensIn
	resp.TokensOut = downstream.TokensOut

	return resp, nil
}

// GetName 获取提供商名称
func (o *Overlay) GetName() string {
	return o.next.GetName()
}
