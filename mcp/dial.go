package mcp

import (
	"context"
	"fmt"

	"github.com/fwojciec/concierge"
)

// Dial connects to the endpoint described by cfg. For the stdio transport
// the spawned process is bound to ctx.
func Dial(ctx context.Context, cfg concierge.EndpointConfig) (*Client, error) {
	switch cfg.Transport {
	case concierge.TransportHTTP, "":
		return NewHTTPClient(cfg.Name, cfg.Address), nil
	case concierge.TransportStdio:
		return NewStdioClient(ctx, cfg.Name, cfg.Address, cfg.Args...)
	case concierge.TransportWebSocket:
		return NewWebSocketClient(ctx, cfg.Name, cfg.Address)
	default:
		return nil, fmt.Errorf("mcp: %s: unknown transport %q", cfg.Name, cfg.Transport)
	}
}
