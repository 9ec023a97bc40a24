package provider

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/cenkalti/backoff/v4"
	"golang.org/x/crypto/blake2b"

	"github.com/fairyhunter13/jobmatch-analyzer/internal/domain"
)

// httpClient is shared by every adapter variant; a single transport keeps
// connection pooling effective across providers.
var httpClient = &http.Client{}

// requestBuilder shapes the outbound HTTP request for one provider's wire
// format given a system/user turn pair and options.
type requestBuilder func(system, user string, opts domain.CompletionOptions) (method, url string, headers map[string]string, body []byte, err error)

// responseParser extracts the primary completion text and, if present, a
// reasoning trace from a 200 response body. It returns a ShapeError if the
// expected path is absent.
type responseParser func(body []byte) (primary, reasoning string, err error)

// backoffConfig controls the retry policy applied around every HTTP round trip.
type backoffConfig struct {
	MaxElapsedTime  time.Duration
	InitialInterval time.Duration
	MaxInterval     time.Duration
	Multiplier      float64
}

// defaultBackoff mirrors the teacher's GetAIBackoffConfig production defaults.
var defaultBackoff = backoffConfig{
	MaxElapsedTime:  180 * time.Second,
	InitialInterval: 2 * time.Second,
	MaxInterval:     20 * time.Second,
	Multiplier:      1.5,
}

// newHTTPChatFunc builds a chatFunc that performs one HTTP call (with
// backoff-wrapped retry on transient failures) per the given request/response
// shaping functions. Every variant adapter (deepseek, claude, gemini,
// openai, glm, openrouter) is a thin configuration of this one mechanism,
// following the teacher's preference for one generic implementation over
// near-duplicate adapter types.
func newHTTPChatFunc(providerID string, apiKey string, build requestBuilder, parse responseParser, bo backoffConfig) chatFunc {
	fingerprint := credentialFingerprint(apiKey)
	return func(ctx domain.Context, system, user string, opts domain.CompletionOptions) (string, string, error) {
		if apiKey == "" {
			return "", "", domain.NewPipelineError(domain.KindConfigError, fmt.Sprintf("missing credential for provider %q", providerID), "", nil)
		}
		method, url, headers, body, err := build(system, user, opts)
		if err != nil {
			return "", "", domain.NewPipelineError(domain.KindConfigError, "failed to build request", "", err)
		}

		var primary, reasoning string
		op := func() error {
			reqCtx, cancel := context.WithTimeout(ctx, opts.Timeout)
			defer cancel()
			req, err := http.NewRequestWithContext(reqCtx, method, url, bytes.NewReader(body))
			if err != nil {
				return backoff.Permanent(domain.NewPipelineError(domain.KindConfigError, "failed to build HTTP request", "", err))
			}
			req.Header.Set("Content-Type", "application/json")
			for k, v := range headers {
				req.Header.Set(k, v)
			}

			resp, err := httpClient.Do(req)
			if err != nil {
				if errors.Is(reqCtx.Err(), context.DeadlineExceeded) {
					return domain.NewPipelineError(domain.KindTimeoutError, "request deadline exceeded", "", err)
				}
				return domain.NewPipelineError(domain.KindTransportError, "transport failure", err.Error(), err)
			}
			defer resp.Body.Close()

			respBody, err := io.ReadAll(resp.Body)
			if err != nil {
				return domain.NewPipelineError(domain.KindTransportError, "failed reading response body", err.Error(), err)
			}

			if resp.StatusCode == http.StatusTooManyRequests {
				return domain.NewPipelineError(domain.KindRateLimitError, "provider rate-limited the request", string(respBody), nil)
			}
			if resp.StatusCode >= 500 {
				// Upstream server errors are treated as transient and retried.
				return domain.NewPipelineError(domain.KindUpstreamError, fmt.Sprintf("upstream returned HTTP %d", resp.StatusCode), string(respBody), nil)
			}
			if resp.StatusCode != http.StatusOK {
				return backoff.Permanent(domain.NewPipelineError(domain.KindUpstreamError, fmt.Sprintf("upstream returned HTTP %d", resp.StatusCode), string(respBody), nil))
			}

			p, r, perr := parse(respBody)
			if perr != nil {
				return backoff.Permanent(domain.NewPipelineError(domain.KindShapeError, "response JSON missing expected path", string(respBody), perr))
			}
			primary, reasoning = p, r
			return nil
		}

		bexp := backoff.NewExponentialBackOff()
		bexp.InitialInterval = bo.InitialInterval
		bexp.MaxInterval = bo.MaxInterval
		bexp.Multiplier = bo.Multiplier
		bexp.MaxElapsedTime = bo.MaxElapsedTime
		bk := backoff.WithContext(bexp, ctx)

		notify := func(err error, wait time.Duration) {
			slog.Warn("provider call retrying",
				slog.String("provider", providerID),
				slog.String("credential_fingerprint", fingerprint),
				slog.Duration("wait", wait),
				slog.Any("error", err))
		}
		if err := backoff.RetryNotify(op, bk, notify); err != nil {
			return "", "", err
		}
		return primary, reasoning, nil
	}
}

// credentialFingerprint returns a short non-reversible hash of an API key
// for debug-log correlation; the key itself is never logged.
func credentialFingerprint(key string) string {
	if key == "" {
		return "none"
	}
	sum := blake2b.Sum256([]byte(key))
	return fmt.Sprintf("%x", sum[:4])
}

// decodeJSON is a small helper shared by every response parser below.
func decodeJSON(body []byte, v any) error {
	return json.Unmarshal(body, v)
}
