package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"
)

// NewWebSocketClient dials url and exchanges one JSON-RPC message per frame.
func NewWebSocketClient(ctx context.Context, name, url string) (*Client, error) {
	conn, _, err := websocket.Dial(ctx, url, nil)
	if err != nil {
		return nil, fmt.Errorf("mcp: %s: dial %s: %w", name, url, err)
	}
	conn.SetReadLimit(maxMessageSize)
	t := &wsTransport{conn: conn, pending: newPending()}
	readCtx, cancel := context.WithCancel(context.Background())
	t.cancel = cancel
	go t.readLoop(readCtx)
	return newClient(name, t), nil
}

type wsTransport struct {
	conn    *websocket.Conn
	pending *pending
	cancel  context.CancelFunc
	once    sync.Once
}

func (t *wsTransport) readLoop(ctx context.Context) {
	for {
		var msg json.RawMessage
		if err := wsjson.Read(ctx, t.conn, &msg); err != nil {
			t.pending.fail(fmt.Errorf("websocket read: %w", err))
			return
		}
		t.pending.deliver(msg)
	}
}

func (t *wsTransport) call(ctx context.Context, id int64, req []byte) ([]byte, error) {
	ch, err := t.pending.register(id)
	if err != nil {
		return nil, err
	}
	if err := wsjson.Write(ctx, t.conn, json.RawMessage(req)); err != nil {
		t.pending.forget(id)
		return nil, fmt.Errorf("websocket write: %w", err)
	}
	return t.pending.wait(ctx, id, ch)
}

func (t *wsTransport) notify(ctx context.Context, req []byte) error {
	if err := wsjson.Write(ctx, t.conn, json.RawMessage(req)); err != nil {
		return fmt.Errorf("websocket write: %w", err)
	}
	return nil
}

func (t *wsTransport) close() error {
	var err error
	t.once.Do(func() {
		t.pending.fail(ErrClosed)
		err = t.conn.Close(websocket.StatusNormalClosure, "client closed")
		t.cancel()
	})
	return err
}
