package main

import (
	"context"
	"fmt"

	"github.com/fwojciec/concierge"
	"github.com/fwojciec/concierge/mcp"
	"github.com/fwojciec/concierge/registry"
)

// dialEndpoints connects to every configured endpoint in order. The returned
// function closes all of them. On failure the already opened ones are closed.
func dialEndpoints(ctx context.Context, cfgs []concierge.EndpointConfig) ([]registry.Endpoint, func(), error) {
	var clients []*mcp.Client
	closeAll := func() {
		for _, c := range clients {
			_ = c.Close()
		}
	}
	endpoints := make([]registry.Endpoint, 0, len(cfgs))
	for _, cfg := range cfgs {
		c, err := mcp.Dial(ctx, cfg)
		if err != nil {
			closeAll()
			return nil, nil, fmt.Errorf("dial endpoint %q: %w", cfg.Name, err)
		}
		clients = append(clients, c)
		endpoints = append(endpoints, c)
	}
	return endpoints, closeAll, nil
}
