package providers

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type nopProvider struct {
	name string
}

func (p *nopProvider) TranslateWord(ctx context.Context, req *Request) (*Response, error) {
	return &Response{Text: req.Text}, nil
}

func (p *nopProvider) TranslateText(ctx context.Context, req *Request) (*Response, error) {
	return &Response{Text: req.Text}, nil
}

func (p *nopProvider) GetName() string { return p.name }

func TestRegistry(t *testing.T) {
	registry := NewRegistry()

	require.NoError(t, registry.Register("google", &nopProvider{name: "google"}))
	require.NoError(t, registry.Register("deepl", &nopProvider{name: "deepl"}))

	t.Run("duplicate registration", func(t *testing.T) {
		err := registry.Register("google", &nopProvider{name: "google"})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "already registered")
	})

	t.Run("get", func(t *testing.T) {
		provider, err := registry.Get("google")
		require.NoError(t, err)
		assert.Equal(t, "google", provider.GetName())
	})

	t.Run("get unknown with suggestion", func(t *testing.T) {
		_, err := registry.Get("googl")
		require.Error(t, err)
		assert.Contains(t, err.Error(), `did you mean "google"`)
	})

	t.Run("list sorted", func(t *testing.T) {
		assert.Equal(t, []string{"deepl", "google"}, registry.List())
	})
}

func TestSuggestName(t *testing.T) {
	candidates := []string{"google", "deepl", "ollama"}

	assert.Equal(t, "google", SuggestName("googl", candidates))
	assert.Equal(t, "deepl", SuggestName("DEEPL", candidates))
	assert.Equal(t, "", SuggestName("quantum", candidates))
	assert.Equal(t, "", SuggestName("x", nil))
}

func TestStripReasoning(t *testing.T) {
	cases := map[string]struct {
		in   string
		want string
	}{
		"no tags":        {"die Katze", "die Katze"},
		"think tag":      {"<think>hmm, tricky</think>die Katze", "die Katze"},
		"multiline":      {"<thinking>line one\nline two</thinking>\ndie Katze", "die Katze"},
		"bracket style":  {"[THINKING]...[/THINKING] die Katze", "die Katze"},
		"tag mid-string": {"die <reasoning>x</reasoning>Katze", "die Katze"},
	}

	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			assert.Equal(t, tc.want, StripReasoning(tc.in))
		})
	}
}

func TestHasReasoningTags(t *testing.T) {
	assert.True(t, HasReasoningTags("<THINK>loud</THINK>x"))
	assert.False(t, HasReasoningTags("plain text"))
}

func TestCleanWordResponse(t *testing.T) {
	cases := map[string]struct {
		in   string
		want string
	}{
		"bare word":           {"Katze", "Katze"},
		"quoted":              {`"Katze"`, "Katze"},
		"trailing period":     {"Katze.", "Katze"},
		"explanation line":    {"Katze\nThis is the German word for cat.", "Katze"},
		"reasoning then word": {"<think>easy</think>Katze", "Katze"},
		"german quotes":       {"„Katze“", "Katze"},
		"multiword kept":      {"zu Hause", "zu Hause"},
	}

	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			assert.Equal(t, tc.want, CleanWordResponse(tc.in))
		})
	}
}

func TestErrorRetryable(t *testing.T) {
	retryable := NewError(ErrCodeRateLimit, "slow down")
	assert.True(t, retryable.IsRetryable())

	fatal := NewError(ErrCodeAuth, "bad key")
	assert.False(t, fatal.IsRetryable())

	var provErr *Error
	assert.True(t, errors.As(error(retryable), &provErr))
}

func TestFallbackTranslateWords(t *testing.T) {
	provider := &nopProvider{name: "nop"}

	resp, err := FallbackTranslateWords(context.Background(), provider, &BatchRequest{
		Words: []string{"the", "cat"},
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"the", "cat"}, resp.Translations)
	assert.Equal(t, []bool{true, true}, resp.OK)
}

func TestBuildPrompts(t *testing.T) {
	word := BuildWordPrompt("cat", "en", "de")
	assert.Contains(t, word, "cat")
	assert.Contains(t, word, "en")
	assert.Contains(t, word, "de")

	text := BuildTextPrompt("the cat sleeps", "en", "de")
	assert.Contains(t, text, "the cat sleeps")
}

func TestApplyInstruction(t *testing.T) {
	base := BuildTextPrompt("hi", "en", "de")

	assert.Equal(t, base, ApplyInstruction(base, nil))

	withNote := ApplyInstruction(base, map[string]interface{}{"instruction": "keep markers"})
	assert.Contains(t, withNote, "keep markers")
}
