package llm

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"LLMBridge/internal/config"
	"LLMBridge/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewClient(t *testing.T) {
	ctx := context.Background()

	c, err := NewClient(ctx, config.LLMConfig{Provider: "ollama", Ollama: config.OllamaConfig{Model: "llama3.2:3b"}})
	require.NoError(t, err)
	assert.IsType(t, &Ollama{}, c)

	_, err = NewClient(ctx, config.LLMConfig{Provider: "openai"})
	assert.Error(t, err, "missing API key")

	_, err = NewClient(ctx, config.LLMConfig{Provider: "gemini"})
	assert.Error(t, err, "missing API key")

	_, err = NewClient(ctx, config.LLMConfig{Provider: "parrot"})
	assert.Error(t, err)
}

func TestOllama_GenerateContent(t *testing.T) {
	var body map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/generate", r.URL.Path)
		raw, _ := io.ReadAll(r.Body)
		require.NoError(t, json.Unmarshal(raw, &body))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"model":"llama3.2:3b","created_at":"2025-01-01T00:00:00Z","response":"{\"ok\":true}","done":true}`))
	}))
	defer srv.Close()

	o, err := NewOllama("llama3.2:3b", srv.URL)
	require.NoError(t, err)

	temp := float32(0.1)
	req := models.NewTextRequest("be terse", "analyze this")
	req.JSONOutput = true
	req.Temperature = &temp

	resp, err := o.GenerateContent(context.Background(), req)
	require.NoError(t, err)

	assert.Equal(t, `{"ok":true}`, resp.Text())
	assert.Equal(t, "llama3.2:3b", resp.ModelVersion)
	assert.Equal(t, "be terse", body["system"])
	assert.Equal(t, "analyze this", body["prompt"])
	assert.Equal(t, "json", body["format"])
	assert.Equal(t, false, body["stream"])
}

func TestOllama_ServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error":"model not found"}`, http.StatusNotFound)
	}))
	defer srv.Close()

	o, err := NewOllama("missing", srv.URL)
	require.NoError(t, err)

	_, err = o.GenerateContent(context.Background(), models.NewTextRequest("", "hi"))
	assert.Error(t, err)
}

func TestOpenAI_GenerateContent(t *testing.T) {
	var body map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/chat/completions", r.URL.Path)
		raw, _ := io.ReadAll(r.Body)
		require.NoError(t, json.Unmarshal(raw, &body))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"id":"cmpl-1","object":"chat.completion","model":"gpt-4o-mini",
			"choices":[{"index":0,"message":{"role":"assistant","content":"hello"},"finish_reason":"stop"}]}`))
	}))
	defer srv.Close()

	o, err := NewOpenAI("gpt-4o-mini", "test-key", srv.URL+"/v1")
	require.NoError(t, err)

	req := models.NewTextRequest("system text", "user text")
	req.JSONOutput = true
	resp, err := o.GenerateContent(context.Background(), req)
	require.NoError(t, err)

	assert.Equal(t, "hello", resp.Text())
	assert.Equal(t, "cmpl-1", resp.ResponseID)

	messages := body["messages"].([]any)
	require.Len(t, messages, 2)
	assert.Equal(t, "system", messages[0].(map[string]any)["role"])
	assert.Equal(t, "user", messages[1].(map[string]any)["role"])
	assert.Equal(t, "json_object", body["response_format"].(map[string]any)["type"])
}

func TestFuncAdapter(t *testing.T) {
	var f LLM = Func(func(ctx context.Context, req *models.GenerateContentRequest) (*models.GenerateContentResponse, error) {
		return TextResponse("pong"), nil
	})
	resp, err := f.GenerateContent(context.Background(), models.NewTextRequest("", "ping"))
	require.NoError(t, err)
	assert.Equal(t, "pong", resp.Text())
}
