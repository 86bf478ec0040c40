package main

import (
	"context"
	"fmt"

	"github.com/pwalczyk/trickle"
	"github.com/pwalczyk/trickle/gemini"
	"github.com/pwalczyk/trickle/openai"
)

// providerConfig is the resolved provider selection: which backend and with
// what key.
type providerConfig struct {
	name string
	key  string
}

// resolveConfig selects the provider and API key. All env var values are
// passed in as parameters so env is only read in main().
func resolveConfig(providerFlag, apiKeyFlag, openaiEnvKey, geminiEnvKey string) (providerConfig, error) {
	provider := providerFlag

	// Auto-detect from env vars if no flag.
	if provider == "" {
		hasOpenAI := openaiEnvKey != ""
		hasGemini := geminiEnvKey != ""
		switch {
		case hasOpenAI && hasGemini:
			return providerConfig{}, fmt.Errorf("multiple API keys found (OPENAI_API_KEY, GEMINI_API_KEY): use -provider flag to select")
		case hasOpenAI:
			provider = "openai"
		case hasGemini:
			provider = "gemini"
		default:
			return providerConfig{}, fmt.Errorf("no API key found: set OPENAI_API_KEY or GEMINI_API_KEY (or use -provider and -api-key flags)")
		}
	}

	// Resolve API key: explicit flag overrides env var.
	key := apiKeyFlag
	switch provider {
	case "openai":
		if key == "" {
			key = openaiEnvKey
		}
		if key == "" {
			return providerConfig{}, fmt.Errorf("OPENAI_API_KEY not set (use -api-key flag or environment variable)")
		}
	case "gemini":
		if key == "" {
			key = geminiEnvKey
		}
		if key == "" {
			return providerConfig{}, fmt.Errorf("GEMINI_API_KEY not set (use -api-key flag or environment variable)")
		}
	default:
		return providerConfig{}, fmt.Errorf("unknown provider %q: must be \"openai\" or \"gemini\"", provider)
	}
	return providerConfig{name: provider, key: key}, nil
}

// resolveProvider selects and constructs the provider.
func resolveProvider(ctx context.Context, providerFlag, apiKeyFlag, openaiEnvKey, geminiEnvKey string) (trickle.Provider, error) {
	cfg, err := resolveConfig(providerFlag, apiKeyFlag, openaiEnvKey, geminiEnvKey)
	if err != nil {
		return nil, err
	}
	switch cfg.name {
	case "openai":
		return openai.New(cfg.key), nil
	default:
		client, err := gemini.New(ctx, cfg.key)
		if err != nil {
			return nil, fmt.Errorf("gemini: %w", err)
		}
		return client, nil
	}
}
