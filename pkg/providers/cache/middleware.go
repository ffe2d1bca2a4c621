package cache

import (
	"context"

	"github.com/langdec/langdec/pkg/providers"
)

// Options 中间件选项
type Options struct {
	// CacheTexts 是否缓存整段翻译（词翻译总是缓存）
	CacheTexts bool
}

// Middleware 缓存中间件：包装任意提供商，在网关边界透明缓存词翻译。
// 解码核心保持无状态，缓存只存在于这里。
type Middleware struct {
	next  providers.TranslationProvider
	store Store
	opts  Options
}

var (
	_ providers.TranslationProvider = (*Middleware)(nil)
	_ providers.WordBatcher         = (*Middleware)(nil)
)

// Wrap 用缓存包装提供商。store 为 nil 时原样返回 next。
func Wrap(next providers.TranslationProvider, store Store, opts Options) providers.TranslationProvider {
	if store == nil {
		return next
	}
	return &Middleware{
		next:  next,
		store: store,
		opts:  opts,
	}
}

// TranslateWord 先查缓存，未命中时透传并写回
func (m *Middleware) TranslateWord(ctx context.Context, req *providers.Request) (*providers.Response, error) {
	key := m.key(KindWord, req)
	if value, ok := m.store.Get(key); ok {
		return &providers.Response{Text: value, Metadata: map[string]interface{}{"cache": "hit"}}, nil
	}

	resp, err := m.next.TranslateWord(ctx, req)
	if err != nil {
		return nil, err
	}

	// 失败的查询不写缓存，下次仍有机会成功
	if resp.Text != "" {
		_ = m.store.Set(key, resp.Text)
	}
	return resp, nil
}

// TranslateText 整段翻译，按配置缓存
func (m *Middleware) TranslateText(ctx context.Context, req *providers.Request) (*providers.Response, error) {
	if !m.opts.CacheTexts {
		return m.next.TranslateText(ctx, req)
	}

	key := m.key(KindText, req)
	if value, ok := m.store.Get(key); ok {
		return &providers.Response{Text: value, Metadata: map[string]interface{}{"cache": "hit"}}, nil
	}

	resp, err := m.next.TranslateText(ctx, req)
	if err != nil {
		return nil, err
	}

	if resp.Text != "" {
		_ = m.store.Set(key, resp.Text)
	}
	return resp, nil
}

// TranslateWords 批量词翻译：命中的词直接取缓存，只有未命中的词
// 进入下游（下游支持 WordBatcher 时一次请求，否则逐词）。
func (m *Middleware) TranslateWords(ctx context.Context, req *providers.BatchRequest) (*providers.BatchResponse, error) {
	resp := &providers.BatchResponse{
		Translations: make([]string, len(req.Words)),
		OK:           make([]bool, len(req.Words)),
	}

	var missing []string
	var missingIdx []int
	for i, word := range req.Words {
		key := Key(KeyComponents{
			Provider:   m.next.GetName(),
			SourceLang: req.SourceLanguage,
			TargetLang: req.TargetLanguage,
			Kind:       KindWord,
			Text:       word,
		})
		if value, ok := m.store.Get(key); ok {
			resp.Translations[i] = value
			resp.OK[i] = true
			continue
		}
		missing = append(missing, word)
		missingIdx = append(missingIdx, i)
	}

	if len(missing) == 0 {
		return resp, nil
	}

	if batcher, ok := m.next.(providers.WordBatcher); ok {
		inner, err := batcher.TranslateWords(ctx, &providers.BatchRequest{
			Words:          missing,
			SourceLanguage: req.SourceLanguage,
			TargetLanguage: req.TargetLanguage,
		})
		if err != nil {
			return nil, err
		}
		resp.TokensIn = inner.TokensIn
		resp.TokensOut = inner.TokensOut
		for j, idx := range missingIdx {
			if j >= len(inner.Translations) || j >= len(inner.OK) || !inner.OK[j] {
				continue
			}
			resp.Translations[idx] = inner.Translations[j]
			resp.OK[idx] = true
			m.storeWord(req, req.Words[idx], inner.Translations[j])
		}
		return resp, nil
	}

	for j, idx := range missingIdx {
		wordResp, err := m.next.TranslateWord(ctx, &providers.Request{
			Text:           missing[j],
			SourceLanguage: req.SourceLanguage,
			TargetLanguage: req.TargetLanguage,
		})
		if err != nil {
			continue
		}
		resp.Translations[idx] = wordResp.Text
		resp.OK[idx] = true
		m.storeWord(req, req.Words[idx], wordResp.Text)
	}
	return resp, nil
}

// GetName 获取底层提供商名称
func (m *Middleware) GetName() string {
	return m.next.GetName()
}

// Stats 缓存统计
func (m *Middleware) Stats() Stats {
	return m.store.Stats()
}

func (m *Middleware) key(kind string, req *providers.Request) string {
	return Key(KeyComponents{
		Provider:   m.next.GetName(),
		SourceLang: req.SourceLanguage,
		TargetLang: req.TargetLanguage,
		Kind:       kind,
		Text:       req.Text,
	})
}

func (m *Middleware) storeWord(req *providers.BatchRequest, word, translation string) {
	if translation == "" {
		return
	}
	_ = m.store.Set(Key(KeyComponents{
		Provider:   m.next.GetName(),
		SourceLang: req.SourceLanguage,
		TargetLang: req.TargetLanguage,
		Kind:       KindWord,
		Text:       word,
	}), translation)
}
