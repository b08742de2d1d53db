package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/fwojciec/concierge"
	"github.com/fwojciec/concierge/anthropic"
	"github.com/fwojciec/concierge/gemini"
	"github.com/fwojciec/concierge/openai"
)

// apiKeys holds the provider keys found in the environment.
type apiKeys struct {
	OpenAI    string
	Gemini    string
	Anthropic string
}

// engineConfig is the resolved provider name and key.
type engineConfig struct {
	name string
	key  string
}

// resolveConfig selects the provider and its key. All env var values are
// passed in as parameters; env is only read in main().
func resolveConfig(providerName, apiKeyFlag string, env apiKeys) (engineConfig, error) {
	provider := strings.ToLower(providerName)

	// Auto-detect from env vars if no provider was named.
	if provider == "" {
		var found []string
		if env.OpenAI != "" {
			found = append(found, "openai")
		}
		if env.Gemini != "" {
			found = append(found, "gemini")
		}
		if env.Anthropic != "" {
			found = append(found, "anthropic")
		}
		switch len(found) {
		case 0:
			return engineConfig{}, fmt.Errorf("no API key found: set OPENAI_API_KEY, GEMINI_API_KEY or ANTHROPIC_API_KEY (or use -provider and -api-key flags)")
		case 1:
			provider = found[0]
		default:
			return engineConfig{}, fmt.Errorf("multiple API keys found (%s): use -provider flag to select", strings.Join(found, ", "))
		}
	}

	// Explicit flag overrides env var.
	key := apiKeyFlag
	var envName string
	switch provider {
	case "openai":
		envName = "OPENAI_API_KEY"
		if key == "" {
			key = env.OpenAI
		}
	case "gemini":
		envName = "GEMINI_API_KEY"
		if key == "" {
			key = env.Gemini
		}
	case "anthropic":
		envName = "ANTHROPIC_API_KEY"
		if key == "" {
			key = env.Anthropic
		}
	default:
		return engineConfig{}, fmt.Errorf("unknown provider %q: must be \"openai\", \"gemini\" or \"anthropic\"", provider)
	}
	if key == "" {
		return engineConfig{}, fmt.Errorf("%s not set (use -api-key flag or environment variable)", envName)
	}
	return engineConfig{name: provider, key: key}, nil
}

// resolveEngine constructs the engine selected by cfg.
func resolveEngine(ctx context.Context, cfg concierge.EngineConfig, apiKeyFlag string, env apiKeys) (concierge.Engine, string, error) {
	ec, err := resolveConfig(cfg.Provider, apiKeyFlag, env)
	if err != nil {
		return nil, "", err
	}
	switch ec.name {
	case "openai":
		var opts []openai.Option
		if cfg.Model != "" {
			opts = append(opts, openai.WithModel(cfg.Model))
		}
		return openai.New(ec.key, opts...), ec.name, nil
	case "gemini":
		var opts []gemini.Option
		if cfg.Model != "" {
			opts = append(opts, gemini.WithModel(cfg.Model))
		}
		client, err := gemini.New(ctx, ec.key, opts...)
		if err != nil {
			return nil, "", err
		}
		return client, ec.name, nil
	default:
		var opts []anthropic.Option
		if cfg.Model != "" {
			opts = append(opts, anthropic.WithModel(cfg.Model))
		}
		return anthropic.New(ec.key, opts...), ec.name, nil
	}
}
