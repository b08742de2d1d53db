package mcp

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"sync"
)

// ErrClosed is returned by calls on a closed stream transport.
var ErrClosed = errors.New("mcp: transport closed")

// NewStdioClient starts command and talks to it over its standard streams
// using newline-delimited JSON. Environment references in command and args
// are expanded. The process lives until Close or until ctx is done.
func NewStdioClient(ctx context.Context, name, command string, args ...string) (*Client, error) {
	expanded := make([]string, len(args))
	for i, a := range args {
		expanded[i] = os.ExpandEnv(a)
	}
	cmd := exec.CommandContext(ctx, os.ExpandEnv(command), expanded...)
	cmd.Stderr = os.Stderr

	stdin, err := cmd.StdinPipe()
	if err != nil {
		return nil, fmt.Errorf("mcp: %s: stdin pipe: %w", name, err)
	}
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return nil, fmt.Errorf("mcp: %s: stdout pipe: %w", name, err)
	}
	if err := cmd.Start(); err != nil {
		return nil, fmt.Errorf("mcp: %s: start %s: %w", name, command, err)
	}
	t := newStreamTransport(stdout, stdin)
	t.onClose = func() error {
		if cmd.Process != nil {
			_ = cmd.Process.Kill()
		}
		_ = cmd.Wait()
		return nil
	}
	return newClient(name, t), nil
}

// NewStreamClient talks newline-delimited JSON over an arbitrary reader and
// writer pair, such as the two ends of a pipe.
func NewStreamClient(name string, r io.Reader, w io.WriteCloser) *Client {
	return newClient(name, newStreamTransport(r, w))
}

type streamTransport struct {
	w       io.WriteCloser
	writeMu sync.Mutex
	pending *pending
	onClose func() error
	once    sync.Once
}

func newStreamTransport(r io.Reader, w io.WriteCloser) *streamTransport {
	t := &streamTransport{w: w, pending: newPending()}
	go t.readLoop(r)
	return t
}

func (t *streamTransport) readLoop(r io.Reader) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 64*1024), maxMessageSize)
	for scanner.Scan() {
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}
		msg := make([]byte, len(line))
		copy(msg, line)
		t.pending.deliver(msg)
	}
	err := scanner.Err()
	if err == nil {
		err = io.EOF
	}
	t.pending.fail(fmt.Errorf("stream ended: %w", err))
}

func (t *streamTransport) write(data []byte) error {
	t.writeMu.Lock()
	defer t.writeMu.Unlock()
	if _, err := fmt.Fprintf(t.w, "%s\n", data); err != nil {
		return fmt.Errorf("write: %w", err)
	}
	return nil
}

func (t *streamTransport) call(ctx context.Context, id int64, req []byte) ([]byte, error) {
	ch, err := t.pending.register(id)
	if err != nil {
		return nil, err
	}
	if err := t.write(req); err != nil {
		t.pending.forget(id)
		return nil, err
	}
	return t.pending.wait(ctx, id, ch)
}

func (t *streamTransport) notify(_ context.Context, req []byte) error {
	return t.write(req)
}

func (t *streamTransport) close() error {
	var err error
	t.once.Do(func() {
		t.pending.fail(ErrClosed)
		err = t.w.Close()
		if t.onClose != nil {
			if cerr := t.onClose(); cerr != nil && err == nil {
				err = cerr
			}
		}
	})
	return err
}
