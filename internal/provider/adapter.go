// Package provider implements the LLM Provider Adapter (C1) and Provider
// Registry (C2): a uniform two-operation interface over several upstream
// HTTP chat APIs, with reasoning-trace salvage and a credential/model
// resolving registry.
package provider

import (
	"time"

	"github.com/fairyhunter13/jobmatch-analyzer/internal/domain"
)

// Adapter wraps one LLM provider's HTTP API behind a uniform two-method
// interface. Implementations MUST NOT parse domain JSON out of the
// returned text; that is the Response Parser's job (internal/parser).
type Adapter struct {
	id      string
	impl    chatFunc
	timeout time.Duration
}

// chatFunc performs one HTTP round trip and returns the primary completion
// text, a salvaged reasoning trace (if any), and an error from the
// taxonomy in domain.ErrorKind.
type chatFunc func(ctx domain.Context, system, user string, opts domain.CompletionOptions) (primary, reasoning string, err error)

// ID returns the provider identifier this adapter was constructed for.
func (a *Adapter) ID() string { return a.id }

// Chat performs two-role prompting: system + user.
func (a *Adapter) Chat(ctx domain.Context, system, user string, opts domain.CompletionOptions) (string, domain.Source, error) {
	return a.call(ctx, system, user, opts)
}

// Complete performs single-prompt prompting. The prompt is passed as the
// user turn with an empty system turn, matching BaseAIClient.call_api_simple's
// single-prompt contract in the source this adapter is grounded on.
func (a *Adapter) Complete(ctx domain.Context, prompt string, opts domain.CompletionOptions) (string, domain.Source, error) {
	return a.call(ctx, "", prompt, opts)
}

func (a *Adapter) call(ctx domain.Context, system, user string, opts domain.CompletionOptions) (string, domain.Source, error) {
	if opts.Timeout == 0 {
		opts.Timeout = a.timeout
	}
	primary, reasoning, err := a.impl(ctx, system, user, opts)
	if err != nil {
		return "", domain.SourcePrimary, err
	}
	if primary != "" {
		return primary, domain.SourcePrimary, nil
	}
	if reasoning != "" {
		// Reasoning-trace salvage (SPEC_FULL.md §4.1): surface the
		// chain-of-thought text verbatim, flagged as lower-confidence.
		return reasoning, domain.SourceReasoning, nil
	}
	return "", domain.SourcePrimary, domain.NewPipelineError(domain.KindEmptyCompletionError, "empty primary content and empty reasoning content", "", nil)
}

// Ping performs a minimal connectivity smoke test, mirroring
// BaseAIClient.test_connection in the original source.
func (a *Adapter) Ping(ctx domain.Context) bool {
	text, _, err := a.Complete(ctx, "Hello", domain.CompletionOptions{MaxTokens: 10})
	return err == nil && text != ""
}
