// Command restaurant serves the restaurant tool catalog to concierge clients.
//
// Usage:
//
//	restaurant [flags]
//
// Flags:
//
//	-addr string       Listen address for the http and ws transports (default ":3900")
//	-transport string  Transport: http, stdio, ws (default "http")
//	-data string       Path to a YAML dataset (default: built-in Spice Garden data)
//	-origins string    Comma-separated cross-origin hosts allowed on the ws transport
//	-booking           Publish the bookTable tool
//	-dump              Write the dataset as YAML to stdout and exit
//	-v                 Debug logging
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
	"strings"
	"time"

	"github.com/fwojciec/concierge"
	"github.com/fwojciec/concierge/catalog"
	"github.com/fwojciec/concierge/mcp"
	"github.com/fwojciec/concierge/restaurant"
	"github.com/fwojciec/concierge/yaml"
)

const (
	httpPath = "/mcp"
	wsPath   = "/ws"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "restaurant: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	var (
		addr      = flag.String("addr", ":3900", "Listen address for the http and ws transports")
		transport = flag.String("transport", string(concierge.TransportHTTP), "Transport: http, stdio, ws")
		dataPath  = flag.String("data", "", "Path to a YAML dataset")
		origins   = flag.String("origins", "", "Comma-separated cross-origin hosts allowed on the ws transport")
		booking   = flag.Bool("booking", false, "Publish the bookTable tool")
		dump      = flag.Bool("dump", false, "Write the dataset as YAML to stdout and exit")
		verbose   = flag.Bool("v", false, "Debug logging")
	)
	flag.Parse()

	level := slog.LevelInfo
	if *verbose {
		level = slog.LevelDebug
	}
	// Stdout carries protocol messages on the stdio transport.
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	data, err := loadDataset(*dataPath)
	if err != nil {
		return err
	}
	if *dump {
		return yaml.EncodeDataset(os.Stdout, data)
	}

	store := restaurant.New(data)
	cat := catalog.New(store, catalog.WithBooking(*booking), catalog.WithLogger(logger))
	srv := mcp.NewServer(cat,
		mcp.WithServerInfo("restaurant", "1.0.0"),
		mcp.WithServerLogger(logger),
		mcp.WithOriginPatterns(splitList(*origins)...),
	)
	logger.Info("catalog ready", "store", store.Describe(), "tools", len(cat.List()), "booking", *booking)

	switch concierge.Transport(*transport) {
	case concierge.TransportStdio:
		return srv.ServeStdio(ctx, os.Stdin, os.Stdout)
	case concierge.TransportHTTP:
		return listen(ctx, *addr, httpPath, srv, logger)
	case concierge.TransportWebSocket:
		return listen(ctx, *addr, wsPath, srv.WebSocketHandler(), logger)
	default:
		return fmt.Errorf("unknown transport %q: must be \"http\", \"stdio\" or \"ws\"", *transport)
	}
}

func loadDataset(path string) (restaurant.Dataset, error) {
	if path == "" {
		return restaurant.DefaultDataset(), nil
	}
	data, err := yaml.LoadDataset(path)
	if err != nil {
		return restaurant.Dataset{}, fmt.Errorf("load dataset: %w", err)
	}
	return data, nil
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

func listen(ctx context.Context, addr, path string, h http.Handler, logger *slog.Logger) error {
	mux := http.NewServeMux()
	mux.Handle(path, h)
	srv := &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: 10 * time.Second}

	errc := make(chan error, 1)
	go func() { errc <- srv.ListenAndServe() }()
	logger.Info("serving catalog", "addr", addr, "path", path)

	select {
	case err := <-errc:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
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
