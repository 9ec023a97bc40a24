package provider

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fairyhunter13/jobmatch-analyzer/internal/domain"
)

func fastBackoff() backoffConfig {
	return backoffConfig{
		MaxElapsedTime:  500 * time.Millisecond,
		InitialInterval: 10 * time.Millisecond,
		MaxInterval:     50 * time.Millisecond,
		Multiplier:      2,
	}
}

func TestNewHTTPChatFunc_Success(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"choices":[{"message":{"content":"hello there"}}]}`))
	}))
	defer srv.Close()

	impl := newHTTPChatFunc("test", "key123", authBearer("key123", openAICompatibleBuild(srv.URL, "m")), openAICompatibleParse, fastBackoff())
	primary, reasoning, err := impl(t.Context(), "sys", "usr", domain.CompletionOptions{Timeout: time.Second})
	require.NoError(t, err)
	assert.Equal(t, "hello there", primary)
	assert.Empty(t, reasoning)
}

func TestNewHTTPChatFunc_MissingCredential(t *testing.T) {
	impl := newHTTPChatFunc("test", "", authBearer("", openAICompatibleBuild("http://unused", "m")), openAICompatibleParse, fastBackoff())
	_, _, err := impl(t.Context(), "sys", "usr", domain.CompletionOptions{Timeout: time.Second})
	require.Error(t, err)
	var pe *domain.PipelineError
	require.ErrorAs(t, err, &pe)
	assert.Equal(t, domain.KindConfigError, pe.Kind)
}

func TestNewHTTPChatFunc_RateLimited(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
		_, _ = w.Write([]byte(`{"error":"rate limited"}`))
	}))
	defer srv.Close()

	impl := newHTTPChatFunc("test", "key", authBearer("key", openAICompatibleBuild(srv.URL, "m")), openAICompatibleParse, fastBackoff())
	_, _, err := impl(t.Context(), "sys", "usr", domain.CompletionOptions{Timeout: time.Second})
	require.Error(t, err)
	var pe *domain.PipelineError
	require.ErrorAs(t, err, &pe)
	assert.Equal(t, domain.KindRateLimitError, pe.Kind)
}

func TestNewHTTPChatFunc_UpstreamErrorRetriesThenFails(t *testing.T) {
	calls := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(`{"error":"boom"}`))
	}))
	defer srv.Close()

	impl := newHTTPChatFunc("test", "key", authBearer("key", openAICompatibleBuild(srv.URL, "m")), openAICompatibleParse, fastBackoff())
	_, _, err := impl(t.Context(), "sys", "usr", domain.CompletionOptions{Timeout: time.Second})
	require.Error(t, err)
	var pe *domain.PipelineError
	require.ErrorAs(t, err, &pe)
	assert.Equal(t, domain.KindUpstreamError, pe.Kind)
	assert.Greater(t, calls, 1, "5xx responses must be retried")
}

func TestNewHTTPChatFunc_NonRetryableClientError(t *testing.T) {
	calls := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"error":"bad request"}`))
	}))
	defer srv.Close()

	impl := newHTTPChatFunc("test", "key", authBearer("key", openAICompatibleBuild(srv.URL, "m")), openAICompatibleParse, fastBackoff())
	_, _, err := impl(t.Context(), "sys", "usr", domain.CompletionOptions{Timeout: time.Second})
	require.Error(t, err)
	assert.Equal(t, 1, calls, "4xx (non-429) responses must not be retried")
}

func TestNewHTTPChatFunc_ShapeError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"choices":[]}`))
	}))
	defer srv.Close()

	impl := newHTTPChatFunc("test", "key", authBearer("key", openAICompatibleBuild(srv.URL, "m")), openAICompatibleParse, fastBackoff())
	_, _, err := impl(t.Context(), "sys", "usr", domain.CompletionOptions{Timeout: time.Second})
	require.Error(t, err)
	var pe *domain.PipelineError
	require.ErrorAs(t, err, &pe)
	assert.Equal(t, domain.KindShapeError, pe.Kind)
}

func TestNewHTTPChatFunc_ReasoningSalvage(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"choices":[{"message":{"content":"","reasoning_content":"thinking about it..."}}]}`))
	}))
	defer srv.Close()

	a := &Adapter{id: "test", impl: newHTTPChatFunc("test", "key", authBearer("key", openAICompatibleBuild(srv.URL, "m")), openAICompatibleParse, fastBackoff()), timeout: time.Second}
	text, source, err := a.Chat(t.Context(), "sys", "usr", domain.CompletionOptions{})
	require.NoError(t, err)
	assert.Equal(t, "thinking about it...", text)
	assert.Equal(t, domain.SourceReasoning, source)
}

func TestNewHTTPChatFunc_EmptyCompletion(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"choices":[{"message":{"content":"","reasoning_content":""}}]}`))
	}))
	defer srv.Close()

	a := &Adapter{id: "test", impl: newHTTPChatFunc("test", "key", authBearer("key", openAICompatibleBuild(srv.URL, "m")), openAICompatibleParse, fastBackoff()), timeout: time.Second}
	_, _, err := a.Chat(t.Context(), "sys", "usr", domain.CompletionOptions{})
	require.Error(t, err)
	var pe *domain.PipelineError
	require.ErrorAs(t, err, &pe)
	assert.Equal(t, domain.KindEmptyCompletionError, pe.Kind)
}

func TestCredentialFingerprint(t *testing.T) {
	assert.Equal(t, "none", credentialFingerprint(""))
	fp1 := credentialFingerprint("sk-abc123")
	fp2 := credentialFingerprint("sk-abc123")
	fp3 := credentialFingerprint("sk-different")
	assert.Equal(t, fp1, fp2)
	assert.NotEqual(t, fp1, fp3)
	assert.NotContains(t, fp1, "abc123")
}
