// Command concierge answers questions about a restaurant by reasoning over
// the tools published by one or more catalog endpoints.
//
// Usage:
//
//	OPENAI_API_KEY=sk-...    concierge [flags]
//	GEMINI_API_KEY=gk-...    concierge [flags]
//	ANTHROPIC_API_KEY=sk-... concierge [flags]
//
// Flags:
//
//	-config string      Path to YAML config (default: concierge.yaml, optional)
//	-provider string    Provider: openai, gemini, anthropic (auto-detected from env vars if omitted)
//	-model string       Model ID (default: provider default)
//	-api-key string     API key (overrides provider's env var)
//	-q string           Ask a single question, print the answer and exit
//	-plain              Line-oriented prompt instead of the TUI
//	-http string        Serve the chat API on this address instead of the TUI
//	-transcript string  Write the last episode transcript to this path
//	-v                  Debug logging
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"time"

	"github.com/fwojciec/concierge"
	"github.com/fwojciec/concierge/agent"
	bt "github.com/fwojciec/concierge/bubbletea"
	chttp "github.com/fwojciec/concierge/http"
	cjson "github.com/fwojciec/concierge/json"
	"github.com/fwojciec/concierge/registry"
	"github.com/fwojciec/concierge/yaml"
)

const defaultConfigPath = "concierge.yaml"

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "concierge: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	var (
		configPath     = flag.String("config", defaultConfigPath, "Path to YAML config")
		providerFlag   = flag.String("provider", "", "Provider: openai, gemini, anthropic (auto-detected from env vars if omitted)")
		model          = flag.String("model", "", "Model ID (provider-specific)")
		apiKey         = flag.String("api-key", "", "API key (overrides provider's env var)")
		query          = flag.String("q", "", "Ask a single question and exit")
		plain          = flag.Bool("plain", false, "Line-oriented prompt instead of the TUI")
		httpAddr       = flag.String("http", "", "Serve the chat API on this address")
		transcriptPath = flag.String("transcript", "", "Write the last episode transcript to this path")
		verbose        = flag.Bool("v", false, "Debug logging")
	)
	flag.Parse()

	level := slog.LevelInfo
	if *verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	cfg, err := loadConfig(*configPath)
	if err != nil {
		return err
	}
	if *providerFlag != "" {
		cfg.Engine.Provider = *providerFlag
	}
	if *model != "" {
		cfg.Engine.Model = *model
	}

	// Env vars are read here and passed as values.
	engine, provider, err := resolveEngine(ctx, cfg.Engine, *apiKey, apiKeys{
		OpenAI:    os.Getenv("OPENAI_API_KEY"),
		Gemini:    os.Getenv("GEMINI_API_KEY"),
		Anthropic: os.Getenv("ANTHROPIC_API_KEY"),
	})
	if err != nil {
		return err
	}
	logger.Debug("engine selected", "provider", provider, "model", cfg.Engine.Model)

	endpoints, closeEndpoints, err := dialEndpoints(ctx, cfg.Endpoints)
	if err != nil {
		return err
	}
	defer closeEndpoints()

	reg := registry.New(endpoints, registryOptions(cfg, logger)...)
	if cfg.Refresh != "" {
		stopRefresh, err := reg.Schedule(cfg.Refresh)
		if err != nil {
			return err
		}
		defer stopRefresh()
	}
	discover(ctx, reg, cfg.ToolTimeout, logger)

	loop := agent.New(engine, reg, loopOptions(cfg, logger)...)
	rec := &recorder{}
	ask := func(ctx context.Context, q string, onEvent func(concierge.Event)) (concierge.Outcome, error) {
		var opts []agent.RunOption
		if onEvent != nil {
			opts = append(opts, agent.WithEventHandler(onEvent))
		}
		conv, out, err := loop.Ask(ctx, reg, q, opts...)
		rec.record(conv, out)
		return out, err
	}

	switch {
	case *query != "":
		err = runOnce(ctx, os.Stdout, ask, *query)
	case *httpAddr != "":
		err = serve(ctx, *httpAddr, ask, logger)
	case *plain:
		err = runPlain(ctx, os.Stdin, os.Stdout, ask)
	default:
		tui := bt.New(ask, concierge.DefaultTheme(), bt.WithTitle(title(ctx, reg, cfg.ToolTimeout)))
		if err = bt.Run(ctx, tui); err != nil {
			err = fmt.Errorf("TUI: %w", err)
		}
	}

	if *transcriptPath != "" {
		if saveErr := rec.save(*transcriptPath); saveErr != nil {
			err = errors.Join(err, saveErr)
		}
	}
	return err
}

// loadConfig reads the YAML config. A missing default file yields the
// built-in defaults; a missing explicit file is an error.
func loadConfig(path string) (concierge.Config, error) {
	cfg, err := yaml.LoadConfig(path)
	switch {
	case err == nil:
		return cfg, nil
	case errors.Is(err, os.ErrNotExist) && path == defaultConfigPath:
		return concierge.DefaultConfig(), nil
	default:
		return concierge.Config{}, fmt.Errorf("load config: %w", err)
	}
}

func registryOptions(cfg concierge.Config, logger *slog.Logger) []registry.Option {
	opts := []registry.Option{
		registry.WithLogger(logger),
		registry.WithToolTimeout(cfg.ToolTimeout),
	}
	for _, e := range cfg.Endpoints {
		if len(e.Tools) > 0 {
			opts = append(opts, registry.WithFilter(e.Name, e.Tools...))
		}
	}
	return opts
}

func loopOptions(cfg concierge.Config, logger *slog.Logger) []agent.Option {
	opts := []agent.Option{
		agent.WithMaxTurns(cfg.MaxTurns),
		agent.WithMaxParallel(cfg.MaxParallel),
		agent.WithEpisodeTimeout(cfg.EpisodeTimeout),
		agent.WithToolTimeout(cfg.ToolTimeout),
		agent.WithModel(cfg.Engine.Model),
		agent.WithLogger(logger),
	}
	if cfg.SystemPrompt != "" {
		opts = append(opts, agent.WithSystemPrompt(cfg.SystemPrompt))
	}
	return opts
}

// discover warms the registry so that startup problems are logged before
// the first question. Failure is not fatal: the next episode retries.
func discover(ctx context.Context, reg *registry.Registry, timeout time.Duration, logger *slog.Logger) {
	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}
	if err := reg.Discover(ctx); err != nil {
		logger.Warn("tool discovery failed", "error", err)
		return
	}
	for _, w := range reg.Warnings() {
		logger.Warn("tool discovery", "warning", w.String())
	}
}

// title retries discovery when the startup attempt failed, so it is bounded
// by the same timeout as discover.
func title(ctx context.Context, reg *registry.Registry, timeout time.Duration) string {
	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}
	tools, err := reg.Tools(ctx)
	if err != nil {
		return "concierge (offline)"
	}
	return fmt.Sprintf("concierge · %d tools", len(tools))
}

func serve(ctx context.Context, addr string, ask bt.AskFunc, logger *slog.Logger) error {
	h := chttp.NewHandler(func(ctx context.Context, q string) (concierge.Outcome, error) {
		return ask(ctx, q, nil)
	}, chttp.WithLogger(logger))
	srv := &http.Server{Addr: addr, Handler: h, ReadHeaderTimeout: 10 * time.Second}

	errc := make(chan error, 1)
	go func() { errc <- srv.ListenAndServe() }()
	logger.Info("serving chat API", "addr", addr)

	select {
	case err := <-errc:
		return fmt.Errorf("serve: %w", err)
	case <-ctx.Done():
	}
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}

// recorder keeps the most recent episode for the transcript.
type recorder struct {
	mu   sync.Mutex
	last *cjson.Transcript
}

func (r *recorder) record(conv *concierge.Conversation, out concierge.Outcome) {
	if conv == nil {
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.last = &cjson.Transcript{Conversation: *conv, Outcome: out}
}

func (r *recorder) save(path string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.last == nil {
		return nil
	}
	if err := cjson.Save(path, *r.last); err != nil {
		return fmt.Errorf("save transcript: %w", err)
	}
	return nil
}
