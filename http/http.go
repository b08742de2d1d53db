// Package http serves the concierge chat API: a health check on GET / and
// one reasoning episode per POST /chat request.
package http

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/fwojciec/concierge"
)

// maxBodyBytes caps the size of a chat request body.
const maxBodyBytes = 64 << 10

// AskFunc runs one episode for query.
type AskFunc func(ctx context.Context, query string) (concierge.Outcome, error)

// ChatRequest is the body of POST /chat.
type ChatRequest struct {
	Query string `json:"query"`
}

// ChatResponse is the body of a successful POST /chat.
type ChatResponse struct {
	Answer string `json:"answer"`
}

// ErrorResponse is the body of every failed request.
type ErrorResponse struct {
	Error ErrorBody `json:"error"`
}

// ErrorBody describes a failure. Kind is empty for transport-level failures
// such as a malformed body.
type ErrorBody struct {
	Kind    string `json:"kind,omitempty"`
	Message string `json:"message"`
}

// Handler is the chat API. It is safe for concurrent use; each request runs
// its own episode.
type Handler struct {
	ask    AskFunc
	logger *slog.Logger
	mux    *http.ServeMux
}

var _ http.Handler = (*Handler)(nil)

// Option configures a [Handler].
type Option func(*Handler)

// WithLogger sets the logger. Defaults to slog.Default().
func WithLogger(l *slog.Logger) Option {
	return func(h *Handler) { h.logger = l }
}

// NewHandler returns a Handler that answers chat requests with ask. A nil ask
// yields a handler that reports 503 on /chat until an agent is available.
func NewHandler(ask AskFunc, opts ...Option) *Handler {
	h := &Handler{ask: ask, logger: slog.Default()}
	for _, o := range opts {
		o(h)
	}
	h.logger = h.logger.With("component", "http")

	h.mux = http.NewServeMux()
	h.mux.HandleFunc("GET /{$}", h.handleHealth)
	h.mux.HandleFunc("POST /chat", h.handleChat)
	return h
}

// ServeHTTP implements http.Handler. Every response carries permissive CORS
// headers and preflight requests are answered directly.
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Access-Control-Allow-Origin", "*")
	w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
	w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
	if r.Method == http.MethodOptions {
		w.WriteHeader(http.StatusNoContent)
		return
	}
	h.mux.ServeHTTP(w, r)
}

func (h *Handler) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *Handler) handleChat(w http.ResponseWriter, r *http.Request) {
	if h.ask == nil {
		writeError(w, http.StatusServiceUnavailable, "", "agent not initialized")
		return
	}

	var req ChatRequest
	dec := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes))
	if err := dec.Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "", "invalid request body: "+err.Error())
		return
	}
	query := strings.TrimSpace(req.Query)
	if query == "" {
		writeError(w, http.StatusBadRequest, "", "query must not be empty")
		return
	}

	start := time.Now()
	out, err := h.ask(r.Context(), query)
	if err != nil {
		status := StatusFor(err)
		kind := concierge.KindOf(err)
		message := err.Error()
		if e, ok := concierge.AsError(err); ok {
			message = e.Message
		}
		h.logger.Warn("chat failed", "status", status, "kind", kind, "error", message, "elapsed", time.Since(start))
		writeError(w, status, string(kind), message)
		return
	}
	h.logger.Info("chat answered", "turns", out.Turns, "tokens", out.Usage.Total(), "elapsed", time.Since(start))
	writeJSON(w, http.StatusOK, ChatResponse{Answer: out.Answer})
}

// StatusFor maps an episode failure to an HTTP status: 504 when the episode
// ran out of turns or time, 500 otherwise.
func StatusFor(err error) int {
	switch {
	case concierge.KindOf(err) == concierge.KindTurnLimitExceeded:
		return http.StatusGatewayTimeout
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout
	default:
		return http.StatusInternalServerError
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, kind, message string) {
	writeJSON(w, status, ErrorResponse{Error: ErrorBody{Kind: kind, Message: message}})
}
