package mcp

import (
	"bufio"
	"bytes"
	"context"
	"fmt"
	"io"
	"mime"
	"net/http"
	"strings"
	"sync"
)

const sessionHeader = "Mcp-Session-Id"

// HTTPOption configures an HTTP client.
type HTTPOption func(*httpTransport)

// WithHTTPClient sets the HTTP client used for requests.
func WithHTTPClient(c *http.Client) HTTPOption {
	return func(t *httpTransport) { t.client = c }
}

// WithHeader adds a header sent with every request.
func WithHeader(key, value string) HTTPOption {
	return func(t *httpTransport) { t.headers.Set(key, value) }
}

// NewHTTPClient creates a client for an endpoint served over HTTP POST. The
// server may answer with a single JSON body or with an event stream.
func NewHTTPClient(name, url string, opts ...HTTPOption) *Client {
	t := &httpTransport{url: url, client: http.DefaultClient, headers: http.Header{}}
	for _, o := range opts {
		o(t)
	}
	return newClient(name, t)
}

type httpTransport struct {
	url     string
	client  *http.Client
	headers http.Header

	mu      sync.Mutex
	session string
}

func (t *httpTransport) call(ctx context.Context, id int64, req []byte) ([]byte, error) {
	resp, err := t.post(ctx, req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, parseHTTPError(resp)
	}
	mediaType, _, _ := mime.ParseMediaType(resp.Header.Get("Content-Type"))
	if mediaType == "text/event-stream" {
		return readEventStream(resp.Body, id)
	}
	data, err := io.ReadAll(io.LimitReader(resp.Body, maxMessageSize))
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}
	return data, nil
}

func (t *httpTransport) notify(ctx context.Context, req []byte) error {
	resp, err := t.post(ctx, req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)
	if resp.StatusCode != http.StatusAccepted && resp.StatusCode != http.StatusOK {
		return fmt.Errorf("notification rejected: HTTP %d", resp.StatusCode)
	}
	return nil
}

func (t *httpTransport) close() error {
	t.client.CloseIdleConnections()
	return nil
}

func (t *httpTransport) post(ctx context.Context, body []byte) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, t.url, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	for k, v := range t.headers {
		req.Header[k] = v
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json, text/event-stream")
	t.mu.Lock()
	if t.session != "" {
		req.Header.Set(sessionHeader, t.session)
	}
	t.mu.Unlock()

	resp, err := t.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("send request: %w", err)
	}
	if s := resp.Header.Get(sessionHeader); s != "" {
		t.mu.Lock()
		t.session = s
		t.mu.Unlock()
	}
	return resp, nil
}

func parseHTTPError(resp *http.Response) error {
	body, err := io.ReadAll(io.LimitReader(resp.Body, 4096))
	if err != nil {
		return fmt.Errorf("HTTP %d (failed to read body: %w)", resp.StatusCode, err)
	}
	msg := strings.TrimSpace(string(body))
	if msg == "" {
		msg = http.StatusText(resp.StatusCode)
	}
	return fmt.Errorf("HTTP %d: %s", resp.StatusCode, msg)
}

// readEventStream returns the data of the first event carrying the response
// with the given id. Server-initiated messages on the stream are skipped.
func readEventStream(r io.Reader, id int64) ([]byte, error) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 64*1024), maxMessageSize)
	for {
		data, err := readSSEData(scanner)
		if err != nil {
			return nil, err
		}
		if got, ok := responseID([]byte(data)); ok && got == id {
			return []byte(data), nil
		}
	}
}

func readSSEData(scanner *bufio.Scanner) (string, error) {
	var dataBuf strings.Builder
	for scanner.Scan() {
		line := scanner.Text()
		if line == "" {
			if dataBuf.Len() > 0 {
				return dataBuf.String(), nil
			}
			continue
		}
		if data, ok := strings.CutPrefix(line, "data:"); ok {
			if dataBuf.Len() > 0 {
				dataBuf.WriteByte('\n')
			}
			dataBuf.WriteString(strings.TrimPrefix(data, " "))
		}
		// Event names, ids and comments carry nothing we need.
	}
	if err := scanner.Err(); err != nil {
		return "", fmt.Errorf("read event stream: %w", err)
	}
	if dataBuf.Len() > 0 {
		return dataBuf.String(), nil
	}
	return "", fmt.Errorf("event stream ended before response: %w", io.ErrUnexpectedEOF)
}
