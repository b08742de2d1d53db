// Package yaml loads assistant configuration and restaurant datasets from
// YAML files using gopkg.in/yaml.v3.
package yaml

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/fwojciec/concierge"
	"gopkg.in/yaml.v3"
)

type configDTO struct {
	Endpoints      []endpointDTO `yaml:"endpoints"`
	MaxTurns       *int          `yaml:"max_turns"`
	MaxParallel    *int          `yaml:"max_parallel"`
	EpisodeTimeout string        `yaml:"episode_timeout"`
	ToolTimeout    string        `yaml:"tool_timeout"`
	Refresh        string        `yaml:"refresh"`
	SystemPrompt   string        `yaml:"system_prompt"`
	Engine         engineDTO     `yaml:"engine"`
}

type endpointDTO struct {
	Name      string   `yaml:"name"`
	Address   string   `yaml:"address"`
	Transport string   `yaml:"transport"`
	Args      []string `yaml:"args"`
	Tools     []string `yaml:"tools"`
}

type engineDTO struct {
	Provider string `yaml:"provider"`
	Model    string `yaml:"model"`
}

// LoadConfig reads a configuration file. Values absent from the file keep
// their defaults. A missing file yields an error wrapping [os.ErrNotExist].
func LoadConfig(path string) (concierge.Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return concierge.Config{}, fmt.Errorf("yaml: read config: %w", err)
	}
	cfg, err := DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return concierge.Config{}, fmt.Errorf("yaml: %s: %w", path, err)
	}
	return cfg, nil
}

// DecodeConfig decodes a configuration document over [concierge.DefaultConfig]
// and validates the result.
func DecodeConfig(r io.Reader) (concierge.Config, error) {
	var dto configDTO
	if err := decode(r, &dto); err != nil {
		return concierge.Config{}, err
	}

	cfg := concierge.DefaultConfig()
	if len(dto.Endpoints) > 0 {
		cfg.Endpoints = make([]concierge.EndpointConfig, len(dto.Endpoints))
		for i, e := range dto.Endpoints {
			cfg.Endpoints[i] = concierge.EndpointConfig{
				Name:      e.Name,
				Address:   e.Address,
				Transport: parseTransport(e.Transport),
				Args:      e.Args,
				Tools:     e.Tools,
			}
		}
	}
	if dto.MaxTurns != nil {
		cfg.MaxTurns = *dto.MaxTurns
	}
	if dto.MaxParallel != nil {
		cfg.MaxParallel = *dto.MaxParallel
	}
	var err error
	if cfg.EpisodeTimeout, err = parseDuration("episode_timeout", dto.EpisodeTimeout, cfg.EpisodeTimeout); err != nil {
		return concierge.Config{}, err
	}
	if cfg.ToolTimeout, err = parseDuration("tool_timeout", dto.ToolTimeout, cfg.ToolTimeout); err != nil {
		return concierge.Config{}, err
	}
	cfg.Refresh = dto.Refresh
	cfg.SystemPrompt = dto.SystemPrompt
	cfg.Engine = concierge.EngineConfig{Provider: dto.Engine.Provider, Model: dto.Engine.Model}

	if err := cfg.Validate(); err != nil {
		return concierge.Config{}, err
	}
	return cfg, nil
}

// parseTransport maps a transport tag to a Transport. An empty tag and the
// "streamable_http" spelling both mean HTTP.
func parseTransport(s string) concierge.Transport {
	switch s {
	case "", "streamable_http", "streamable-http":
		return concierge.TransportHTTP
	case "websocket":
		return concierge.TransportWebSocket
	default:
		return concierge.Transport(s)
	}
}

func parseDuration(field, s string, fallback time.Duration) (time.Duration, error) {
	if s == "" {
		return fallback, nil
	}
	d, err := time.ParseDuration(s)
	if err != nil {
		return 0, fmt.Errorf("%s: %w: %w", field, err, concierge.ErrValidation)
	}
	return d, nil
}

// decode rejects unknown keys so that typos in configuration surface early.
func decode(r io.Reader, v any) error {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(v); err != nil {
		if errors.Is(err, io.EOF) {
			return nil
		}
		return fmt.Errorf("decode: %w", err)
	}
	return nil
}
