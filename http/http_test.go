package http_test

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/fwojciec/concierge"
	chttp "github.com/fwojciec/concierge/http"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func answer(text string) chttp.AskFunc {
	return func(context.Context, string) (concierge.Outcome, error) {
		return concierge.Outcome{State: concierge.StateFinal, Answer: text, Turns: 1}, nil
	}
}

func fail(err *concierge.Error) chttp.AskFunc {
	return func(context.Context, string) (concierge.Outcome, error) {
		return concierge.Outcome{State: concierge.StateAborted, Err: err}, err
	}
}

func post(t *testing.T, h http.Handler, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/chat", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func decodeError(t *testing.T, rec *httptest.ResponseRecorder) chttp.ErrorBody {
	t.Helper()
	var resp chttp.ErrorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	return resp.Error
}

func TestHandler_Health(t *testing.T) {
	t.Parallel()

	h := chttp.NewHandler(nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())
}

func TestHandler_Chat(t *testing.T) {
	t.Parallel()

	t.Run("answers the query", func(t *testing.T) {
		t.Parallel()
		var got string
		h := chttp.NewHandler(func(_ context.Context, q string) (concierge.Outcome, error) {
			got = q
			return concierge.Outcome{State: concierge.StateFinal, Answer: "Samosa and Paneer Tikka."}, nil
		})
		rec := post(t, h, `{"query":"  Get vegetarian menu "}`)

		assert.Equal(t, http.StatusOK, rec.Code)
		assert.JSONEq(t, `{"answer":"Samosa and Paneer Tikka."}`, rec.Body.String())
		assert.Equal(t, "Get vegetarian menu", got)
	})

	t.Run("turn limit maps to 504", func(t *testing.T) {
		t.Parallel()
		h := chttp.NewHandler(fail(concierge.Errorf(concierge.KindTurnLimitExceeded, "no final answer after 8 reasoning turns")))
		rec := post(t, h, `{"query":"hi"}`)

		assert.Equal(t, http.StatusGatewayTimeout, rec.Code)
		body := decodeError(t, rec)
		assert.Equal(t, "TurnLimitExceeded", body.Kind)
		assert.Equal(t, "no final answer after 8 reasoning turns", body.Message)
	})

	t.Run("episode timeout maps to 504", func(t *testing.T) {
		t.Parallel()
		h := chttp.NewHandler(fail(&concierge.Error{
			Kind:    concierge.KindReasoningEngineFailure,
			Message: "episode timed out after 2m0s",
			Err:     context.DeadlineExceeded,
		}))
		rec := post(t, h, `{"query":"hi"}`)

		assert.Equal(t, http.StatusGatewayTimeout, rec.Code)
		assert.Equal(t, "ReasoningEngineFailure", decodeError(t, rec).Kind)
	})

	t.Run("engine failure maps to 500", func(t *testing.T) {
		t.Parallel()
		h := chttp.NewHandler(fail(concierge.Errorf(concierge.KindReasoningEngineFailure, "openai: 401 Unauthorized")))
		rec := post(t, h, `{"query":"hi"}`)

		assert.Equal(t, http.StatusInternalServerError, rec.Code)
		assert.Equal(t, "openai: 401 Unauthorized", decodeError(t, rec).Message)
	})

	t.Run("plain error maps to 500 without kind", func(t *testing.T) {
		t.Parallel()
		h := chttp.NewHandler(func(context.Context, string) (concierge.Outcome, error) {
			return concierge.Outcome{}, errors.New("boom")
		})
		rec := post(t, h, `{"query":"hi"}`)

		assert.Equal(t, http.StatusInternalServerError, rec.Code)
		body := decodeError(t, rec)
		assert.Empty(t, body.Kind)
		assert.Equal(t, "boom", body.Message)
	})

	t.Run("malformed body is rejected", func(t *testing.T) {
		t.Parallel()
		var calls atomic.Int32
		h := chttp.NewHandler(func(context.Context, string) (concierge.Outcome, error) {
			calls.Add(1)
			return concierge.Outcome{}, nil
		})
		rec := post(t, h, `{"query":`)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Contains(t, decodeError(t, rec).Message, "invalid request body")
		assert.Zero(t, calls.Load())
	})

	t.Run("empty query is rejected", func(t *testing.T) {
		t.Parallel()
		h := chttp.NewHandler(answer("unused"))
		for _, body := range []string{`{}`, `{"query":""}`, `{"query":"   "}`} {
			rec := post(t, h, body)
			assert.Equal(t, http.StatusBadRequest, rec.Code, body)
			assert.Equal(t, "query must not be empty", decodeError(t, rec).Message)
		}
	})

	t.Run("no agent yields 503", func(t *testing.T) {
		t.Parallel()
		rec := post(t, chttp.NewHandler(nil), `{"query":"hi"}`)
		assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
		assert.Equal(t, "agent not initialized", decodeError(t, rec).Message)
	})

	t.Run("wrong method is rejected", func(t *testing.T) {
		t.Parallel()
		rec := httptest.NewRecorder()
		chttp.NewHandler(answer("x")).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/chat", nil))
		assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
	})
}

func TestHandler_CORS(t *testing.T) {
	t.Parallel()

	h := chttp.NewHandler(answer("x"))

	t.Run("preflight", func(t *testing.T) {
		t.Parallel()
		req := httptest.NewRequest(http.MethodOptions, "/chat", nil)
		req.Header.Set("Origin", "http://example.com")
		req.Header.Set("Access-Control-Request-Method", "POST")
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusNoContent, rec.Code)
		assert.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))
		assert.Contains(t, rec.Header().Get("Access-Control-Allow-Methods"), "POST")
	})

	t.Run("simple request", func(t *testing.T) {
		t.Parallel()
		rec := post(t, h, `{"query":"hi"}`)
		assert.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))
	})
}

func TestHandler_ConcurrentEpisodes(t *testing.T) {
	t.Parallel()

	h := chttp.NewHandler(func(_ context.Context, q string) (concierge.Outcome, error) {
		return concierge.Outcome{State: concierge.StateFinal, Answer: "echo " + q}, nil
	})
	srv := httptest.NewServer(h)
	defer srv.Close()

	errs := make(chan error, 10)
	for i := range 10 {
		go func() {
			q := fmt.Sprintf("q%d", i)
			resp, err := http.Post(srv.URL+"/chat", "application/json", strings.NewReader(`{"query":"`+q+`"}`))
			if err != nil {
				errs <- err
				return
			}
			defer resp.Body.Close()
			var body chttp.ChatResponse
			if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
				errs <- err
				return
			}
			if body.Answer != "echo "+q {
				errs <- fmt.Errorf("got %q for %q", body.Answer, q)
				return
			}
			errs <- nil
		}()
	}
	for range 10 {
		require.NoError(t, <-errs)
	}
}

func TestStatusFor(t *testing.T) {
	t.Parallel()

	assert.Equal(t, http.StatusGatewayTimeout, chttp.StatusFor(concierge.Errorf(concierge.KindTurnLimitExceeded, "x")))
	assert.Equal(t, http.StatusGatewayTimeout, chttp.StatusFor(fmt.Errorf("wrapped: %w", context.DeadlineExceeded)))
	assert.Equal(t, http.StatusInternalServerError, chttp.StatusFor(concierge.Errorf(concierge.KindReasoningEngineFailure, "x")))
	assert.Equal(t, http.StatusInternalServerError, chttp.StatusFor(errors.New("x")))
}
