package stats

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/langdec/langdec/pkg/providers"
)

func TestManagerRecordAndSnapshot(t *testing.T) {
	manager := NewManager(nil)

	manager.RecordRequest("raw", RequestResult{Kind: "word", Success: true, Latency: 10 * time.Millisecond, TokensIn: 3, TokensOut: 1})
	manager.RecordRequest("raw", RequestResult{Kind: "text", Success: true, Latency: 30 * time.Millisecond})
	manager.RecordRequest("raw", RequestResult{Kind: "word", Success: false, ErrorType: "timeout"})
	manager.RecordRequest("deepl", RequestResult{Kind: "word", Success: true, CacheHit: true})

	snapshot := manager.Snapshot()
	require.Len(t, snapshot, 2)

	// 按提供商名称排序
	assert.Equal(t, "deepl", snapshot[0].ProviderName)
	assert.Equal(t, "raw", snapshot[1].ProviderName)

	assert.Equal(t, int64(3), snapshot[1].TotalRequests)
	assert.Equal(t, int64(2), snapshot[1].WordRequests)
	assert.Equal(t, int64(1), snapshot[1].TextRequests)
	assert.Equal(t, int64(2), snapshot[1].SuccessfulRequests)
	assert.Equal(t, int64(1), snapshot[1].FailedRequests)
	assert.Equal(t, int64(3), snapshot[1].TotalTokensIn)
	assert.Equal(t, int64(1), snapshot[1].TotalTokensOut)
	assert.Equal(t, int64(1), snapshot[1].ErrorTypes["timeout"])

	assert.Equal(t, int64(1), snapshot[0].CacheHits)
}

func TestClassifyError(t *testing.T) {
	assert.Equal(t, "", ClassifyError(nil))
	assert.Equal(t, providers.ErrCodeRateLimit, ClassifyError(errors.New("got 429 from upstream")))
	assert.Equal(t, providers.ErrCodeTimeout, ClassifyError(errors.New("request timeout")))
	assert.Equal(t, providers.ErrCodeAuth, ClassifyError(errors.New("401 unauthorized")))
	assert.Equal(t, providers.ErrCodeWordNotFound,
		ClassifyError(providers.NewError(providers.ErrCodeWordNotFound, "no entry")))
}

type flakyProvider struct {
	failWords bool
}

func (p *flakyProvider) TranslateWord(ctx context.Context, req *providers.Request) (*providers.Response, error) {
	if p.failWords {
		return nil, providers.NewError(providers.ErrCodeServerError, "boom")
	}
	return &providers.Response{Text: req.Text, TokensIn: 2, TokensOut: 1}, nil
}

func (p *flakyProvider) TranslateText(ctx context.Context, req *providers.Request) (*providers.Response, error) {
	return &providers.Response{Text: req.Text}, nil
}

func (p *flakyProvider) GetName() string { return "flaky" }

func TestMiddlewareRecords(t *testing.T) {
	manager := NewManager(nil)
	wrapped := Wrap(&flakyProvider{}, manager)

	_, err := wrapped.TranslateWord(context.Background(), &providers.Request{Text: "cat"})
	require.NoError(t, err)
	_, err = wrapped.TranslateText(context.Background(), &providers.Request{Text: "the cat"})
	require.NoError(t, err)

	snapshot := manager.Snapshot()
	require.Len(t, snapshot, 1)
	assert.Equal(t, int64(1), snapshot[0].WordRequests)
	assert.Equal(t, int64(1), snapshot[0].TextRequests)
	assert.Equal(t, int64(2), snapshot[0].SuccessfulRequests)
	assert.Equal(t, int64(2), snapshot[0].TotalTokensIn)
}

func TestMiddlewareRecordsFailures(t *testing.T) {
	manager := NewManager(nil)
	wrapped := Wrap(&flakyProvider{failWords: true}, manager)

	_, err := wrapped.TranslateWord(context.Background(), &providers.Request{Text: "cat"})
	require.Error(t, err)

	snapshot := manager.Snapshot()
	require.Len(t, snapshot, 1)
	assert.Equal(t, int64(1), snapshot[0].FailedRequests)
	assert.Equal(t, int64(1), snapshot[0].ErrorTypes[providers.ErrCodeServerError])
}

func TestWrapNilManager(t *testing.T) {
	inner := &flakyProvider{}
	assert.Equal(t, providers.TranslationProvider(inner), Wrap(inner, nil))
}
