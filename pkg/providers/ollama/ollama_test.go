package ollama

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/langdec/langdec/pkg/providers"
)

func TestDefaultConfig(t *testing.T) {
	config := DefaultConfig()

	assert.Equal(t, "llama3", config.Model)
	assert.Equal(t, float32(0.1), config.Temperature)
	assert.Equal(t, 4096, config.MaxTokens)
}

func TestNew(t *testing.T) {
	provider := New(DefaultConfig())

	assert.NotNil(t, provider)
	assert.Equal(t, "http://localhost:11434", provider.config.APIEndpoint)
}

func TestNewWithCustomEndpoint(t *testing.T) {
	config := DefaultConfig()
	config.APIEndpoint = "http://custom-ollama:8080"

	provider := New(config)

	assert.Equal(t, "http://custom-ollama:8080", provider.config.APIEndpoint)
}

func TestConfigureInvalidType(t *testing.T) {
	provider := New(DefaultConfig())

	err := provider.Configure("invalid-config")
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "invalid config type")
}

func TestGetName(t *testing.T) {
	provider := New(DefaultConfig())
	assert.Equal(t, "ollama", provider.GetName())
}

func TestGetCapabilities(t *testing.T) {
	provider := New(DefaultConfig())
	capabilities := provider.GetCapabilities()

	assert.Contains(t, capabilities.SupportedLanguages, providers.Language{Code: "de", Name: "German"})
	assert.False(t, capabilities.SupportsWordBatch)
	assert.False(t, capabilities.RequiresAPIKey)
}

func TestTranslateText(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "POST", r.Method)
		assert.Equal(t, "/api/generate", r.URL.Path)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))

		var req GenerateRequest
		err := json.NewDecoder(r.Body).Decode(&req)
		require.NoError(t, err)

		assert.Equal(t, "llama3", req.Model)
		assert.Contains(t, req.Prompt, "the cat sleeps")
		assert.Contains(t, req.Prompt, "en")
		assert.Contains(t, req.Prompt, "de")
		assert.False(t, req.Stream)

		response := GenerateResponse{
			Model:           "llama3",
			CreatedAt:       time.Now(),
			Response:        "die Katze schläft",
			Done:            true,
			PromptEvalCount: 10,
			EvalCount:       5,
		}

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(response)
	}))
	defer server.Close()

	config := DefaultConfig()
	config.APIEndpoint = server.URL
	provider := New(config)

	resp, err := provider.TranslateText(context.Background(), &providers.Request{
		Text:           "the cat sleeps",
		SourceLanguage: "en",
		TargetLanguage: "de",
	})
	require.NoError(t, err)

	assert.Equal(t, "die Katze schläft", resp.Text)
	assert.Equal(t, 10, resp.TokensIn)
	assert.Equal(t, 5, resp.TokensOut)
}

func TestTranslateWord(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req GenerateRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))

		assert.Contains(t, req.Prompt, "cat")
		// 单词翻译限制生成长度
		assert.Equal(t, 64, int(req.Options["num_predict"].(float64)))

		json.NewEncoder(w).Encode(GenerateResponse{
			Model:    "llama3",
			Response: "\"Katze\"\n",
			Done:     true,
		})
	}))
	defer server.Close()

	config := DefaultConfig()
	config.APIEndpoint = server.URL
	provider := New(config)

	resp, err := provider.TranslateWord(context.Background(), &providers.Request{
		Text:           "cat",
		SourceLanguage: "en",
		TargetLanguage: "de",
	})
	require.NoError(t, err)

	// 响应里的引号和换行被清理掉
	assert.Equal(t, "Katze", resp.Text)
}

func TestTranslateWordEmptyResponse(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(GenerateResponse{Model: "llama3", Response: "", Done: true})
	}))
	defer server.Close()

	config := DefaultConfig()
	config.APIEndpoint = server.URL
	provider := New(config)

	_, err := provider.TranslateWord(context.Background(), &providers.Request{Text: "cat"})
	require.Error(t, err)

	var provErr *providers.Error
	require.ErrorAs(t, err, &provErr)
	assert.Equal(t, providers.ErrCodeEmptyResponse, provErr.Code)
}

func TestTranslateTextStripsReasoning(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(GenerateResponse{
			Model:    "llama3",
			Response: "<think>let me think about this</think>die Katze schläft",
			Done:     true,
		})
	}))
	defer server.Close()

	config := DefaultConfig()
	config.APIEndpoint = server.URL
	provider := New(config)

	resp, err := provider.TranslateText(context.Background(), &providers.Request{
		Text:           "the cat sleeps",
		SourceLanguage: "en",
		TargetLanguage: "de",
	})
	require.NoError(t, err)
	assert.Equal(t, "die Katze schläft", resp.Text)
}

func TestTranslateServerError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		w.Write([]byte(`{"error": "model not loaded"}`))
	}))
	defer server.Close()

	config := DefaultConfig()
	config.APIEndpoint = server.URL
	provider := New(config)

	_, err := provider.TranslateText(context.Background(), &providers.Request{Text: "hi"})
	require.Error(t, err)
	assert.IsType(t, &APIError{}, err)
	assert.Contains(t, err.Error(), "model not loaded")
}

func TestHealthCheck(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req GenerateRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))

		assert.Equal(t, "Hello", req.Prompt)
		assert.Equal(t, 5, int(req.Options["num_predict"].(float64)))

		json.NewEncoder(w).Encode(GenerateResponse{Model: "llama3", Response: "Hi", Done: true})
	}))
	defer server.Close()

	config := DefaultConfig()
	config.APIEndpoint = server.URL
	provider := New(config)

	assert.NoError(t, provider.HealthCheck(context.Background()))
}

func TestContextCancellation(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(200 * time.Millisecond)
		json.NewEncoder(w).Encode(GenerateResponse{Model: "llama3", Response: "zu spät", Done: true})
	}))
	defer server.Close()

	config := DefaultConfig()
	config.APIEndpoint = server.URL
	provider := New(config)

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	_, err := provider.TranslateText(ctx, &providers.Request{Text: "hi"})
	assert.Error(t, err)
}
