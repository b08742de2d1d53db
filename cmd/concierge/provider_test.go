package main

import (
	"context"
	"testing"

	"github.com/fwojciec/concierge"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolveConfig_Explicit(t *testing.T) {
	t.Parallel()

	for _, name := range []string{"openai", "gemini", "anthropic", "OpenAI"} {
		cfg, err := resolveConfig(name, "key", apiKeys{})
		require.NoError(t, err, name)
		assert.Equal(t, "key", cfg.key)
	}
}

func TestResolveConfig_UnknownProvider(t *testing.T) {
	t.Parallel()
	_, err := resolveConfig("mistral", "key", apiKeys{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown provider")
}

func TestResolveConfig_NoKeysNoFlag(t *testing.T) {
	t.Parallel()
	_, err := resolveConfig("", "", apiKeys{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no API key found")
}

func TestResolveConfig_MultipleKeysNoFlag(t *testing.T) {
	t.Parallel()
	_, err := resolveConfig("", "", apiKeys{OpenAI: "sk-oa", Anthropic: "sk-ant"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "multiple API keys found (openai, anthropic)")
}

func TestResolveConfig_AutoDetect(t *testing.T) {
	t.Parallel()

	t.Run("openai", func(t *testing.T) {
		t.Parallel()
		cfg, err := resolveConfig("", "", apiKeys{OpenAI: "sk-oa"})
		require.NoError(t, err)
		assert.Equal(t, engineConfig{name: "openai", key: "sk-oa"}, cfg)
	})

	t.Run("gemini", func(t *testing.T) {
		t.Parallel()
		cfg, err := resolveConfig("", "", apiKeys{Gemini: "gk"})
		require.NoError(t, err)
		assert.Equal(t, engineConfig{name: "gemini", key: "gk"}, cfg)
	})

	t.Run("anthropic", func(t *testing.T) {
		t.Parallel()
		cfg, err := resolveConfig("", "", apiKeys{Anthropic: "sk-ant"})
		require.NoError(t, err)
		assert.Equal(t, engineConfig{name: "anthropic", key: "sk-ant"}, cfg)
	})
}

func TestResolveConfig_FlagKeyOverridesEnv(t *testing.T) {
	t.Parallel()
	cfg, err := resolveConfig("openai", "sk-flag", apiKeys{OpenAI: "sk-env"})
	require.NoError(t, err)
	assert.Equal(t, "sk-flag", cfg.key)
}

func TestResolveConfig_ExplicitProviderMissingKey(t *testing.T) {
	t.Parallel()

	_, err := resolveConfig("openai", "", apiKeys{Gemini: "gk"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "OPENAI_API_KEY not set")

	_, err = resolveConfig("gemini", "", apiKeys{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "GEMINI_API_KEY not set")

	_, err = resolveConfig("anthropic", "", apiKeys{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "ANTHROPIC_API_KEY not set")
}

func TestResolveEngine(t *testing.T) {
	t.Parallel()

	for _, name := range []string{"openai", "gemini", "anthropic"} {
		engine, got, err := resolveEngine(context.Background(), concierge.EngineConfig{Provider: name, Model: "m"}, "key", apiKeys{})
		require.NoError(t, err, name)
		assert.NotNil(t, engine)
		assert.Equal(t, name, got)
	}

	_, _, err := resolveEngine(context.Background(), concierge.EngineConfig{}, "", apiKeys{})
	require.Error(t, err)
}
