package provider

import (
	"fmt"
	"sync"

	"github.com/fairyhunter13/jobmatch-analyzer/internal/config"
	"github.com/fairyhunter13/jobmatch-analyzer/internal/domain"
)

// Registry constructs and holds every configured provider Adapter, and
// tracks the "current" adapter for runtime switching (C2), grounded on
// ai_service.py's _create_client/switch_provider pair.
type Registry struct {
	mu        sync.RWMutex
	adapters  map[string]*Adapter
	currentID string
}

// New builds adapters for every provider with a non-empty credential in cfg.
// A provider with no configured credential is simply absent from the
// registry; Get on it returns ErrUnsupportedProvider rather than a
// half-built adapter that would fail on first use.
func New(cfg config.Config) *Registry {
	r := &Registry{adapters: map[string]*Adapter{}}

	type ctor struct {
		id   string
		make func(apiKey, baseURL string) *Adapter
	}
	ctors := []ctor{
		{"deepseek", func(k, b string) *Adapter { return NewDeepSeek(k, b, "") }},
		{"claude", func(k, b string) *Adapter { return NewClaude(k, b, "") }},
		{"gemini", func(k, b string) *Adapter { return NewGemini(k, b, "") }},
		{"openai", func(k, b string) *Adapter { return NewOpenAI(k, b, "") }},
		{"glm", func(k, b string) *Adapter { return NewGLM(k, b, "") }},
		{"openrouter", func(k, b string) *Adapter { return NewOpenRouter(k, b, "") }},
	}
	for _, c := range ctors {
		key := cfg.CredentialFor(c.id)
		if key == "" {
			continue
		}
		r.adapters[c.id] = c.make(key, cfg.BaseURLFor(c.id))
	}

	r.currentID = cfg.DefaultAnalysisProvider
	if _, ok := r.adapters[r.currentID]; !ok {
		for id := range r.adapters {
			r.currentID = id
			break
		}
	}
	return r
}

// Get returns the adapter for providerID, or ErrUnsupportedProvider if none
// was configured with a credential.
func (r *Registry) Get(providerID string) (*Adapter, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	a, ok := r.adapters[providerID]
	if !ok {
		return nil, fmt.Errorf("provider %q: %w", providerID, domain.ErrUnsupportedProvider)
	}
	return a, nil
}

// Current returns the adapter currently selected by Switch (or the
// construction-time default).
func (r *Registry) Current() (*Adapter, error) {
	r.mu.RLock()
	id := r.currentID
	r.mu.RUnlock()
	return r.Get(id)
}

// Switch atomically changes which provider Current returns. The model
// argument is accepted for interface symmetry with the original
// switch_provider call but does not mutate the adapter: per-call model
// overrides travel through CompletionOptions.Model instead.
func (r *Registry) Switch(providerID, model string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.adapters[providerID]; !ok {
		return fmt.Errorf("provider %q: %w", providerID, domain.ErrUnsupportedProvider)
	}
	r.currentID = providerID
	_ = model
	return nil
}

// Available lists every provider id with a configured credential.
func (r *Registry) Available() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	ids := make([]string, 0, len(r.adapters))
	for id := range r.adapters {
		ids = append(ids, id)
	}
	return ids
}
