package stats

import (
	"context"
	"time"

	"github.com/langdec/langdec/pkg/providers"
)

// Middleware 统计中间件，记录每次请求的延迟与结果
type Middleware struct {
	next    providers.TranslationProvider
	manager *Manager
	name    string
}

// Wrap 在提供商外包一层统计。manager 为 nil 时直接返回原提供商。
func Wrap(next providers.TranslationProvider, manager *Manager) providers.TranslationProvider {
	if manager == nil {
		return next
	}
	return &Middleware{
		next:    next,
		manager: manager,
		name:    next.GetName(),
	}
}

var (
	_ providers.TranslationProvider = (*Middleware)(nil)
	_ providers.WordBatcher         = (*Middleware)(nil)
)

func (m *Middleware) TranslateWord(ctx context.Context, req *providers.Request) (*providers.Response, error) {
	start := time.Now()
	resp, err := m.next.TranslateWord(ctx, req)
	m.record("word", start, resp, err)
	return resp, err
}

func (m *Middleware) TranslateText(ctx context.Context, req *providers.Request) (*providers.Response, error) {
	start := time.Now()
	resp, err := m.next.TranslateText(ctx, req)
	m.record("text", start, resp, err)
	return resp, err
}

// TranslateWords 整批记为一次 word 请求，不逐词拆分统计
func (m *Middleware) TranslateWords(ctx context.Context, req *providers.BatchRequest) (*providers.BatchResponse, error) {
	batcher, ok := m.next.(providers.WordBatcher)
	if !ok {
		return providers.FallbackTranslateWords(ctx, m, req)
	}

	start := time.Now()
	resp, err := batcher.TranslateWords(ctx, req)

	result := RequestResult{
		Kind:    "word",
		Success: err == nil,
		Latency: time.Since(start),
	}
	if err != nil {
		result.ErrorType = ClassifyError(err)
	}
	if resp != nil {
		result.TokensIn = resp.TokensIn
		result.TokensOut = resp.TokensOut
	}
	m.manager.RecordRequest(m.name, result)
	return resp, err
}

func (m *Middleware) GetName() string {
	return m.next.GetName()
}

func (m *Middleware) record(kind string, start time.Time, resp *providers.Response, err error) {
	result := RequestResult{
		Kind:    kind,
		Success: err == nil,
		Latency: time.Since(start),
	}
	if err != nil {
		result.ErrorType = ClassifyError(err)
	}
	if resp != nil {
		result.TokensIn = resp.TokensIn
		result.TokensOut = resp.TokensOut
		if resp.Metadata != nil && resp.Metadata["cache"] == "hit" {
			result.CacheHit = true
		}
	}
	m.manager.RecordRequest(m.name, result)
}
