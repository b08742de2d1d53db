package concierge

import (
	"fmt"
	"time"
)

// Transport tags how an endpoint address is reached.
type Transport string

const (
	TransportHTTP      Transport = "http"
	TransportStdio     Transport = "stdio"
	TransportWebSocket Transport = "ws"
)

// EndpointConfig names one tool catalog endpoint. For the stdio transport
// Address is the command to spawn and Args its arguments. Tools, when set,
// restricts which of the endpoint's tools are used (glob patterns).
type EndpointConfig struct {
	Name      string
	Address   string
	Transport Transport
	Args      []string
	Tools     []string
}

// EngineConfig selects the reasoning engine.
type EngineConfig struct {
	Provider string // openai, gemini, anthropic; empty = auto-detect
	Model    string // empty = provider default
}

// Config is everything the assistant core consumes.
type Config struct {
	Endpoints      []EndpointConfig
	MaxTurns       int
	MaxParallel    int
	EpisodeTimeout time.Duration
	ToolTimeout    time.Duration
	Refresh        string // cron spec for re-discovery; empty = discover once
	SystemPrompt   string
	Engine         EngineConfig
}

// Defaults.
const (
	DefaultAddress        = "http://localhost:3900/mcp"
	DefaultMaxTurns       = 8
	DefaultMaxParallel    = 4
	DefaultEpisodeTimeout = 2 * time.Minute
	DefaultToolTimeout    = 20 * time.Second
)

// DefaultConfig returns a configuration pointing at a single local catalog.
func DefaultConfig() Config {
	return Config{
		Endpoints: []EndpointConfig{{
			Name:      "restaurant",
			Address:   DefaultAddress,
			Transport: TransportHTTP,
		}},
		MaxTurns:       DefaultMaxTurns,
		MaxParallel:    DefaultMaxParallel,
		EpisodeTimeout: DefaultEpisodeTimeout,
		ToolTimeout:    DefaultToolTimeout,
	}
}

// Validate checks the configuration for values the core cannot run with.
func (c Config) Validate() error {
	if len(c.Endpoints) == 0 {
		return fmt.Errorf("no endpoints configured: %w", ErrValidation)
	}
	names := make(map[string]bool, len(c.Endpoints))
	for i, e := range c.Endpoints {
		if e.Name == "" {
			return fmt.Errorf("endpoint %d has no name: %w", i, ErrValidation)
		}
		if names[e.Name] {
			return fmt.Errorf("duplicate endpoint name %q: %w", e.Name, ErrValidation)
		}
		names[e.Name] = true
		if e.Address == "" {
			return fmt.Errorf("endpoint %q has no address: %w", e.Name, ErrValidation)
		}
		switch e.Transport {
		case TransportHTTP, TransportStdio, TransportWebSocket:
		default:
			return fmt.Errorf("endpoint %q: unknown transport %q: %w", e.Name, e.Transport, ErrValidation)
		}
	}
	if c.MaxTurns <= 0 {
		return fmt.Errorf("max_turns must be positive, got %d: %w", c.MaxTurns, ErrValidation)
	}
	if c.MaxParallel < 0 {
		return fmt.Errorf("max_parallel must be non-negative, got %d: %w", c.MaxParallel, ErrValidation)
	}
	if c.EpisodeTimeout < 0 || c.ToolTimeout < 0 {
		return fmt.Errorf("timeouts must be non-negative: %w", ErrValidation)
	}
	return nil
}
