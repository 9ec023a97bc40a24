package provider

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fairyhunter13/jobmatch-analyzer/internal/config"
	"github.com/fairyhunter13/jobmatch-analyzer/internal/domain"
)

func TestRegistry_OnlyConfiguredProvidersPresent(t *testing.T) {
	cfg := config.Config{
		DeepSeekAPIKey:          "dk",
		GLMAPIKey:               "gk",
		DefaultAnalysisProvider: "deepseek",
	}
	r := New(cfg)
	assert.ElementsMatch(t, []string{"deepseek", "glm"}, r.Available())

	_, err := r.Get("claude")
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrUnsupportedProvider)

	a, err := r.Get("deepseek")
	require.NoError(t, err)
	assert.Equal(t, "deepseek", a.ID())
}

func TestRegistry_CurrentDefaultsAndSwitch(t *testing.T) {
	cfg := config.Config{
		DeepSeekAPIKey:          "dk",
		GLMAPIKey:               "gk",
		DefaultAnalysisProvider: "deepseek",
	}
	r := New(cfg)
	cur, err := r.Current()
	require.NoError(t, err)
	assert.Equal(t, "deepseek", cur.ID())

	require.NoError(t, r.Switch("glm", ""))
	cur, err = r.Current()
	require.NoError(t, err)
	assert.Equal(t, "glm", cur.ID())

	err = r.Switch("nonexistent", "")
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrUnsupportedProvider)
}

func TestRegistry_FallsBackWhenDefaultProviderUnconfigured(t *testing.T) {
	cfg := config.Config{
		GLMAPIKey:               "gk",
		DefaultAnalysisProvider: "deepseek",
	}
	r := New(cfg)
	cur, err := r.Current()
	require.NoError(t, err)
	assert.Equal(t, "glm", cur.ID())
}
