package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"sync"
	"sync/atomic"

	"github.com/fwojciec/concierge"
	mcpschema "github.com/viant/mcp-protocol/schema"
)

// transport sends one encoded request and returns the encoded response.
// Notifications expect no response.
type transport interface {
	call(ctx context.Context, id int64, req []byte) ([]byte, error)
	notify(ctx context.Context, req []byte) error
	close() error
}

// Client talks to one remote tool catalog. The initialization handshake runs
// lazily before the first request and is retried if it fails.
type Client struct {
	name      string
	transport transport
	requestID atomic.Int64

	initMu      sync.Mutex
	initialized bool
	serverInfo  implementation
}

func newClient(name string, t transport) *Client {
	return &Client{name: name, transport: t}
}

// Name returns the endpoint name.
func (c *Client) Name() string { return c.name }

// ServerName returns the implementation name the server announced, once
// initialized.
func (c *Client) ServerName() string {
	c.initMu.Lock()
	defer c.initMu.Unlock()
	return c.serverInfo.Name
}

// ListTools fetches every tool the endpoint publishes, following pagination.
func (c *Client) ListTools(ctx context.Context) ([]concierge.Tool, error) {
	if err := c.ensureInitialized(ctx); err != nil {
		return nil, err
	}
	var tools []concierge.Tool
	var cursor *string
	for {
		var res mcpschema.ListToolsResult
		if err := c.request(ctx, MethodToolsList, listToolsParams{Cursor: cursor}, &res); err != nil {
			return nil, err
		}
		for _, t := range res.Tools {
			tool, err := ToolFromMCP(t)
			if err != nil {
				return nil, fmt.Errorf("mcp: %s: %w", c.name, err)
			}
			tools = append(tools, tool)
		}
		if res.NextCursor == nil || *res.NextCursor == "" {
			return tools, nil
		}
		cursor = res.NextCursor
	}
}

// CallTool invokes a tool. Failures reported by the remote tool come back as
// *concierge.Error values; transport failures are plain errors.
func (c *Client) CallTool(ctx context.Context, name string, args json.RawMessage) (json.RawMessage, error) {
	if err := c.ensureInitialized(ctx); err != nil {
		return nil, err
	}
	arguments := map[string]interface{}{}
	if len(args) > 0 && string(args) != "null" {
		if err := json.Unmarshal(args, &arguments); err != nil {
			return nil, concierge.InvalidArgument("", "arguments must be a JSON object: %v", err)
		}
	}
	var res mcpschema.CallToolResult
	params := mcpschema.CallToolRequestParams{Name: name, Arguments: arguments}
	if err := c.request(ctx, MethodToolsCall, params, &res); err != nil {
		return nil, err
	}
	return ResultFromMCP(&res)
}

// Ping checks that the endpoint is responsive.
func (c *Client) Ping(ctx context.Context) error {
	if err := c.ensureInitialized(ctx); err != nil {
		return err
	}
	return c.request(ctx, MethodPing, nil, nil)
}

// Close releases the transport.
func (c *Client) Close() error {
	return c.transport.close()
}

func (c *Client) ensureInitialized(ctx context.Context) error {
	c.initMu.Lock()
	defer c.initMu.Unlock()
	if c.initialized {
		return nil
	}
	params := initializeParams{
		ProtocolVersion: ProtocolVersion,
		Capabilities:    map[string]any{},
		ClientInfo:      implementation{Name: "concierge", Version: "0.1.0"},
	}
	var res initializeResult
	if err := c.request(ctx, MethodInitialize, params, &res); err != nil {
		return fmt.Errorf("initialize: %w", err)
	}
	note, _ := json.Marshal(Request{JSONRPC: "2.0", Method: MethodInitialized})
	if err := c.transport.notify(ctx, note); err != nil {
		return fmt.Errorf("initialized notification: %w", err)
	}
	c.serverInfo = res.ServerInfo
	c.initialized = true
	return nil
}

func (c *Client) request(ctx context.Context, method string, params, result any) error {
	id := c.requestID.Add(1)
	req := Request{JSONRPC: "2.0", ID: json.RawMessage(strconv.FormatInt(id, 10)), Method: method}
	if params != nil {
		data, err := json.Marshal(params)
		if err != nil {
			return fmt.Errorf("mcp: marshal %s params: %w", method, err)
		}
		req.Params = data
	}
	data, err := json.Marshal(req)
	if err != nil {
		return fmt.Errorf("mcp: marshal %s request: %w", method, err)
	}
	out, err := c.transport.call(ctx, id, data)
	if err != nil {
		return fmt.Errorf("mcp: %s: %s: %w", c.name, method, err)
	}
	var resp Response
	if err := json.Unmarshal(out, &resp); err != nil {
		return fmt.Errorf("mcp: %s: %s: decode response: %w", c.name, method, err)
	}
	if resp.Error != nil {
		return fmt.Errorf("mcp: %s: %s: %w", c.name, method, resp.Error)
	}
	if result == nil {
		return nil
	}
	if err := json.Unmarshal(resp.Result, result); err != nil {
		return fmt.Errorf("mcp: %s: %s: decode result: %w", c.name, method, err)
	}
	return nil
}

// responseID extracts the numeric id of an encoded response.
func responseID(data []byte) (int64, bool) {
	var probe struct {
		ID json.RawMessage `json:"id"`
	}
	if err := json.Unmarshal(data, &probe); err != nil || len(probe.ID) == 0 {
		return 0, false
	}
	var id int64
	if err := json.Unmarshal(probe.ID, &id); err != nil {
		var s string
		if err := json.Unmarshal(probe.ID, &s); err != nil {
			return 0, false
		}
		if id, err = strconv.ParseInt(s, 10, 64); err != nil {
			return 0, false
		}
	}
	return id, true
}

// pending routes responses arriving on a shared stream to the waiting
// callers. It backs the stdio and WebSocket transports.
type pending struct {
	mu      sync.Mutex
	waiters map[int64]chan []byte
	err     error
	done    chan struct{}
}

func newPending() *pending {
	return &pending{waiters: map[int64]chan []byte{}, done: make(chan struct{})}
}

func (p *pending) register(id int64) (chan []byte, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.err != nil {
		return nil, p.err
	}
	ch := make(chan []byte, 1)
	p.waiters[id] = ch
	return ch, nil
}

func (p *pending) forget(id int64) {
	p.mu.Lock()
	defer p.mu.Unlock()
	delete(p.waiters, id)
}

func (p *pending) deliver(data []byte) {
	id, ok := responseID(data)
	if !ok {
		return
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	if ch, ok := p.waiters[id]; ok {
		ch <- data
		delete(p.waiters, id)
	}
}

// fail stops the router; later and waiting calls get err.
func (p *pending) fail(err error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.err != nil {
		return
	}
	p.err = err
	close(p.done)
}

func (p *pending) wait(ctx context.Context, id int64, ch chan []byte) ([]byte, error) {
	defer p.forget(id)
	select {
	case data := <-ch:
		return data, nil
	case <-p.done:
		p.mu.Lock()
		defer p.mu.Unlock()
		return nil, p.err
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}
