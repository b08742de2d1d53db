package mcp

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"

	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"
	"github.com/fwojciec/concierge"
	mcpschema "github.com/viant/mcp-protocol/schema"
)

const maxMessageSize = 4 << 20

// Backend is what a [Server] publishes: a fixed tool list and a way to run
// the tools.
type Backend interface {
	concierge.ToolSource
	concierge.ToolInvoker
}

// Server answers JSON-RPC requests against a [Backend]. Each transport entry
// point handles one message at a time per connection; separate connections
// are served concurrently.
type Server struct {
	backend Backend
	name    string
	version string
	logger  *slog.Logger
	origins []string
}

// ServerOption configures a [Server].
type ServerOption func(*Server)

// WithServerInfo sets the implementation name and version announced during
// initialization. Default is "concierge".
func WithServerInfo(name, version string) ServerOption {
	return func(s *Server) {
		s.name = name
		s.version = version
	}
}

// WithServerLogger sets the logger. Default is slog.Default().
func WithServerLogger(l *slog.Logger) ServerOption {
	return func(s *Server) { s.logger = l }
}

// WithOriginPatterns lists the cross-origin hosts allowed to open WebSocket
// sessions, as path.Match patterns. By default only same-origin browsers
// and clients that send no Origin header are accepted.
func WithOriginPatterns(patterns ...string) ServerOption {
	return func(s *Server) { s.origins = patterns }
}

// NewServer creates a [Server] publishing backend.
func NewServer(backend Backend, opts ...ServerOption) *Server {
	s := &Server{backend: backend, name: "concierge", logger: slog.Default()}
	for _, o := range opts {
		o(s)
	}
	s.logger = s.logger.With("component", "mcp-server")
	return s
}

// Handle processes one encoded JSON-RPC message and returns the encoded
// response, or nil for notifications. It never panics.
func (s *Server) Handle(ctx context.Context, data []byte) []byte {
	var req Request
	if err := json.Unmarshal(data, &req); err != nil {
		return encode(Response{JSONRPC: "2.0", ID: json.RawMessage("null"), Error: &RPCError{Code: CodeParseError, Message: err.Error()}})
	}
	resp := s.dispatch(ctx, req)
	if req.IsNotification() {
		return nil
	}
	return encode(resp)
}

func encode(resp Response) []byte {
	data, err := json.Marshal(resp)
	if err != nil {
		data, _ = json.Marshal(Response{JSONRPC: "2.0", ID: resp.ID, Error: &RPCError{Code: CodeInternalError, Message: err.Error()}})
	}
	return data
}

func (s *Server) dispatch(ctx context.Context, req Request) (resp Response) {
	resp = Response{JSONRPC: "2.0", ID: req.ID}
	defer func() {
		if r := recover(); r != nil {
			s.logger.Error("request panicked", "method", req.Method, "panic", r)
			resp.Result = nil
			resp.Error = &RPCError{Code: CodeInternalError, Message: fmt.Sprintf("internal error: %v", r)}
		}
	}()
	if req.JSONRPC != "2.0" {
		resp.Error = &RPCError{Code: CodeInvalidRequest, Message: "jsonrpc must be \"2.0\""}
		return resp
	}

	var result any
	var rpcErr *RPCError
	switch req.Method {
	case MethodInitialize:
		result, rpcErr = s.initialize(req.Params)
	case MethodInitialized:
		return resp
	case MethodPing:
		result = struct{}{}
	case MethodToolsList:
		result, rpcErr = s.listTools(ctx)
	case MethodToolsCall:
		result, rpcErr = s.callTool(ctx, req.Params)
	default:
		rpcErr = &RPCError{Code: CodeMethodNotFound, Message: fmt.Sprintf("method %q not found", req.Method)}
	}
	if rpcErr != nil {
		resp.Error = rpcErr
		return resp
	}
	data, err := json.Marshal(result)
	if err != nil {
		resp.Error = &RPCError{Code: CodeInternalError, Message: err.Error()}
		return resp
	}
	resp.Result = data
	return resp
}

func (s *Server) initialize(params json.RawMessage) (any, *RPCError) {
	var p initializeParams
	if len(params) > 0 {
		if err := json.Unmarshal(params, &p); err != nil {
			return nil, &RPCError{Code: CodeInvalidParams, Message: err.Error()}
		}
	}
	version := p.ProtocolVersion
	if version == "" {
		version = ProtocolVersion
	}
	s.logger.Info("client initialized", "client", p.ClientInfo.Name, "protocol", version)
	return initializeResult{
		ProtocolVersion: version,
		Capabilities:    serverCapabilities{Tools: &toolsCapability{}},
		ServerInfo:      implementation{Name: s.name, Version: s.version},
	}, nil
}

func (s *Server) listTools(ctx context.Context) (any, *RPCError) {
	tools, err := s.backend.Tools(ctx)
	if err != nil {
		return nil, &RPCError{Code: CodeInternalError, Message: err.Error()}
	}
	out := make([]mcpschema.Tool, len(tools))
	for i, t := range tools {
		out[i] = ToolToMCP(t)
	}
	return &mcpschema.ListToolsResult{Tools: out}, nil
}

func (s *Server) callTool(ctx context.Context, params json.RawMessage) (any, *RPCError) {
	var p mcpschema.CallToolRequestParams
	if err := json.Unmarshal(params, &p); err != nil {
		return nil, &RPCError{Code: CodeInvalidParams, Message: err.Error()}
	}
	if p.Name == "" {
		return nil, &RPCError{Code: CodeInvalidParams, Message: "missing tool name"}
	}
	args, err := json.Marshal(p.Arguments)
	if err != nil {
		return nil, &RPCError{Code: CodeInvalidParams, Message: err.Error()}
	}
	value, err := s.backend.Invoke(ctx, p.Name, args)
	if err != nil {
		s.logger.Debug("tool call failed", "tool", p.Name, "error", err)
		return ErrorToMCP(err), nil
	}
	return ResultToMCP(value), nil
}

// ServeHTTP implements the single-response form of the streamable HTTP
// transport: each POST carries one JSON-RPC message and receives one JSON
// response, or 202 Accepted for notifications.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.Header().Set("Allow", http.MethodPost)
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	body, err := io.ReadAll(io.LimitReader(r.Body, maxMessageSize))
	if err != nil {
		http.Error(w, "read body: "+err.Error(), http.StatusBadRequest)
		return
	}
	out := s.Handle(r.Context(), body)
	if out == nil {
		w.WriteHeader(http.StatusAccepted)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	_, _ = w.Write(out)
}

// ServeStdio reads newline-delimited JSON-RPC messages from r and writes
// responses to w until r is exhausted or ctx is done.
func (s *Server) ServeStdio(ctx context.Context, r io.Reader, w io.Writer) error {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 64*1024), maxMessageSize)
	for scanner.Scan() {
		if err := ctx.Err(); err != nil {
			return err
		}
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}
		out := s.Handle(ctx, line)
		if out == nil {
			continue
		}
		if _, err := fmt.Fprintf(w, "%s\n", out); err != nil {
			return fmt.Errorf("mcp: write response: %w", err)
		}
	}
	if err := scanner.Err(); err != nil {
		return fmt.Errorf("mcp: read request: %w", err)
	}
	return nil
}

// WebSocketHandler returns an http.Handler that upgrades connections and
// serves one JSON-RPC message per frame.
func (s *Server) WebSocketHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := websocket.Accept(w, r, &websocket.AcceptOptions{OriginPatterns: s.origins})
		if err != nil {
			s.logger.Warn("websocket accept failed", "error", err)
			return
		}
		defer conn.Close(websocket.StatusNormalClosure, "session ended")
		conn.SetReadLimit(maxMessageSize)

		ctx := r.Context()
		for {
			var msg json.RawMessage
			if err := wsjson.Read(ctx, conn, &msg); err != nil {
				s.logger.Debug("websocket read ended", "error", err)
				return
			}
			out := s.Handle(ctx, msg)
			if out == nil {
				continue
			}
			if err := wsjson.Write(ctx, conn, json.RawMessage(out)); err != nil {
				s.logger.Debug("websocket write failed", "error", err)
				return
			}
		}
	})
}
