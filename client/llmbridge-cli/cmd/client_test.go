package cmd

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func useServer(t *testing.T, handler http.HandlerFunc) {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	prevURL, prevTimeout := serverURL, timeout
	serverURL, timeout = srv.URL+"/", 5*time.Second
	t.Cleanup(func() { serverURL, timeout = prevURL, prevTimeout })
}

func TestAPIClient_DecodesErrorBody(t *testing.T) {
	useServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusBadRequest)
		_, _ = io.WriteString(w, `{"error":"Invalid profile","details":"interests"}`)
	})

	client, err := newAPIClient()
	require.NoError(t, err)

	err = client.getJSON(context.Background(), "/api/models", nil)
	var apiErr *apiError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusBadRequest, apiErr.Status)
	assert.Equal(t, "Invalid profile: interests (status 400)", err.Error())
}

func TestAPIClient_ServerErrorKeepsMessage(t *testing.T) {
	useServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = io.WriteString(w, `{"error":"Failed to extract memory"}`)
	})

	client, err := newAPIClient()
	require.NoError(t, err)

	err = client.postJSON(context.Background(), "/api/extract-memory", map[string]string{}, nil)
	assert.EqualError(t, err, "Failed to extract memory (status 500)")
}

func TestAPIClient_NonJSONError(t *testing.T) {
	useServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	})

	client, err := newAPIClient()
	require.NoError(t, err)

	err = client.getJSON(context.Background(), "/api/health", nil)
	assert.EqualError(t, err, "Bad Gateway (status 502)")
}

func TestExtractProfile_SendsRawJSONAndWritesProfile(t *testing.T) {
	var got map[string]json.RawMessage
	useServer(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/extract-memory", r.URL.Path)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		_, _ = io.WriteString(w, `{"profile":{"role":"Engineer","interests":["Go"]},"llmPrompt":"x","profileId":"abc"}`)
	})

	dir := t.TempDir()
	in := filepath.Join(dir, "conversations.json")
	require.NoError(t, os.WriteFile(in, []byte(`[{"title":"t"}]`), 0o600))

	profileOut = filepath.Join(dir, "profile.json")
	t.Cleanup(func() { profileOut = "" })

	require.NoError(t, extractProfile(context.Background(), in))

	assert.JSONEq(t, `[{"title":"t"}]`, string(got["fileContent"]))
	assert.JSONEq(t, `"conversations.json"`, string(got["fileName"]))

	written, err := os.ReadFile(profileOut)
	require.NoError(t, err)
	assert.Contains(t, string(written), `"role": "Engineer"`)
}

func TestExtractProfile_RejectsInvalidFile(t *testing.T) {
	in := filepath.Join(t.TempDir(), "bad.json")
	require.NoError(t, os.WriteFile(in, []byte("{not json"), 0o600))

	err := extractProfile(context.Background(), in)
	assert.ErrorContains(t, err, "not a valid JSON file")
}

func TestUploadFile_SendsMultipart(t *testing.T) {
	useServer(t, func(w http.ResponseWriter, r *http.Request) {
		f, header, err := r.FormFile("file")
		if !assert.NoError(t, err) {
			return
		}
		defer f.Close()
		body, _ := io.ReadAll(f)
		assert.Equal(t, "export.json", header.Filename)
		assert.Equal(t, "{}", string(body))
		_, _ = io.WriteString(w, `{"message":"File uploaded successfully","size":2,"originalName":"export.json","contentHash":"44136fa355b3678a","uploaded":true}`)
	})

	in := filepath.Join(t.TempDir(), "export.json")
	require.NoError(t, os.WriteFile(in, []byte("{}"), 0o600))
	assert.NoError(t, uploadFile(context.Background(), in))
}

func TestGeneratePrompt_ByProfileID(t *testing.T) {
	var got promptRequest
	useServer(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/generate-prompt", r.URL.Path)
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		_, _ = io.WriteString(w, `{"success":true,"prompt":"hello","model":"gemini"}`)
	})

	promptModel, promptProfileID = "gemini", "abc"
	t.Cleanup(func() { promptModel, promptProfileID = "claude", "" })

	require.NoError(t, generatePrompt(context.Background()))
	assert.Equal(t, "abc", got.ProfileID)
	assert.Equal(t, "gemini", got.Model)
	assert.Empty(t, got.Profile)
}

func TestGeneratePrompt_RequiresProfile(t *testing.T) {
	promptProfile, promptProfileID = "", ""
	assert.ErrorContains(t, generatePrompt(context.Background()), "--profile")
}
