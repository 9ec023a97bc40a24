package provider

import (
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fairyhunter13/jobmatch-analyzer/internal/domain"
)

func TestNewClaude_RequestShapeAndParse(t *testing.T) {
	var gotHeader http.Header
	var gotBody []byte
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotHeader = r.Header.Clone()
		gotBody, _ = io.ReadAll(r.Body)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"content":[{"type":"text","text":"claude says hi"}]}`))
	}))
	defer srv.Close()

	a := NewClaude("ck-test", srv.URL, "claude-test")
	text, source, err := a.Chat(t.Context(), "you are HR", "evaluate this job", domain.CompletionOptions{Timeout: time.Second})
	require.NoError(t, err)
	assert.Equal(t, "claude says hi", text)
	assert.Equal(t, domain.SourcePrimary, source)
	assert.Equal(t, "ck-test", gotHeader.Get("x-api-key"))
	assert.Contains(t, string(gotBody), "you are HR")
	assert.Contains(t, string(gotBody), "\"system\"")
}

func TestNewGemini_RequestShapeAndParse(t *testing.T) {
	var gotBody []byte
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotBody, _ = io.ReadAll(r.Body)
		assert.Contains(t, r.URL.RawQuery, "key=gk-test")
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"candidates":[{"content":{"parts":[{"text":"gemini says hi"}]}}]}`))
	}))
	defer srv.Close()

	a := NewGemini("gk-test", srv.URL, "gemini-test")
	text, source, err := a.Chat(t.Context(), "system prompt", "user prompt", domain.CompletionOptions{Timeout: time.Second})
	require.NoError(t, err)
	assert.Equal(t, "gemini says hi", text)
	assert.Equal(t, domain.SourcePrimary, source)
	assert.Contains(t, string(gotBody), "system prompt")
	assert.Contains(t, string(gotBody), "user prompt")
}

func TestNewGLM_Timeout(t *testing.T) {
	a := NewGLM("glm-key", "http://unused", "")
	assert.Equal(t, 120*time.Second, a.timeout)
	assert.Equal(t, "glm", a.ID())
}

func TestNewDeepSeekOpenAIOpenRouter_DefaultTimeouts(t *testing.T) {
	for _, tc := range []struct {
		adapter *Adapter
		id      string
	}{
		{NewDeepSeek("k", "http://unused", ""), "deepseek"},
		{NewOpenAI("k", "http://unused", ""), "openai"},
		{NewOpenRouter("k", "http://unused", ""), "openrouter"},
	} {
		assert.Equal(t, 30*time.Second, tc.adapter.timeout)
		assert.Equal(t, tc.id, tc.adapter.ID())
	}
}
