package interlinear

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/langdec/langdec/pkg/providers"
)

// echoProvider 整段翻译加前缀返回，便于断言行结构
type echoProvider struct {
	failOn string
	calls  int
}

func (e *echoProvider) TranslateWord(ctx context.Context, req *providers.Request) (*providers.Response, error) {
	return &providers.Response{Text: req.Text}, nil
}

func (e *echoProvider) TranslateText(ctx context.Context, req *providers.Request) (*providers.Response, error) {
	e.calls++
	if e.failOn != "" && req.Text == e.failOn {
		return nil, providers.NewError(providers.ErrCodeServerError, "boom")
	}
	return &providers.Response{Text: "DE:" + req.Text}, nil
}

func (e *echoProvider) GetName() string { return "echo" }

func TestTranslateLines(t *testing.T) {
	provider := &echoProvider{}

	got, err := TranslateLines(context.Background(), provider,
		"erste Zeile\n\nzweite Zeile", "de", "en")

	require.NoError(t, err)
	assert.Equal(t, "DE:erste Zeile\n\nDE:zweite Zeile", got)
	// 空行不产生网关调用
	assert.Equal(t, 2, provider.calls)
}

func TestTranslateLinesEmptyInput(t *testing.T) {
	provider := &echoProvider{}

	got, err := TranslateLines(context.Background(), provider, "  \n ", "de", "en")

	require.NoError(t, err)
	assert.Equal(t, "", got)
	assert.Zero(t, provider.calls)
}

func TestTranslateLinesFailureAborts(t *testing.T) {
	provider := &echoProvider{failOn: "zweite Zeile"}

	_, err := TranslateLines(context.Background(), provider,
		"erste Zeile\nzweite Zeile\ndritte Zeile", "de", "en")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "line 2")
}
