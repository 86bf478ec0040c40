package main

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolveConfig_ExplicitOpenAI(t *testing.T) {
	t.Parallel()
	cfg, err := resolveConfig("openai", "sk-test", "", "")
	require.NoError(t, err)
	assert.Equal(t, "openai", cfg.name)
	assert.Equal(t, "sk-test", cfg.key)
}

func TestResolveConfig_ExplicitGemini(t *testing.T) {
	t.Parallel()
	cfg, err := resolveConfig("gemini", "gk-test", "", "")
	require.NoError(t, err)
	assert.Equal(t, "gemini", cfg.name)
}

func TestResolveConfig_UnknownProvider(t *testing.T) {
	t.Parallel()
	_, err := resolveConfig("anthropic", "key", "", "")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown provider")
}

func TestResolveConfig_NoKeysNoFlag(t *testing.T) {
	t.Parallel()
	_, err := resolveConfig("", "", "", "")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no API key found")
}

func TestResolveConfig_BothKeysNoFlag(t *testing.T) {
	t.Parallel()
	_, err := resolveConfig("", "", "sk-open", "gk-gem")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "multiple API keys")
}

func TestResolveConfig_AutoDetectOpenAI(t *testing.T) {
	t.Parallel()
	cfg, err := resolveConfig("", "", "sk-open", "")
	require.NoError(t, err)
	assert.Equal(t, "openai", cfg.name)
	assert.Equal(t, "sk-open", cfg.key)
}

func TestResolveConfig_AutoDetectGemini(t *testing.T) {
	t.Parallel()
	cfg, err := resolveConfig("", "", "", "gk-gem")
	require.NoError(t, err)
	assert.Equal(t, "gemini", cfg.name)
}

func TestResolveConfig_FlagKeyOverridesEnv(t *testing.T) {
	t.Parallel()
	cfg, err := resolveConfig("openai", "sk-flag", "sk-env", "")
	require.NoError(t, err)
	assert.Equal(t, "sk-flag", cfg.key)
}

func TestResolveConfig_ExplicitProviderMissingKey(t *testing.T) {
	t.Parallel()
	_, err := resolveConfig("openai", "", "", "")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "OPENAI_API_KEY not set")

	_, err = resolveConfig("gemini", "", "", "")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "GEMINI_API_KEY not set")
}

func TestResolveProvider_ConstructsOpenAI(t *testing.T) {
	t.Parallel()
	p, err := resolveProvider(context.Background(), "openai", "sk-test", "", "")
	require.NoError(t, err)
	assert.NotNil(t, p)
}
