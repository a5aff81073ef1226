package transport

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/fasthttp/websocket"
	"github.com/google/uuid"

	"polarizer/pkg/logging"
)

// OpTestCaseImport is the operation name of a test case import request.
const OpTestCaseImport = "testcase-import-ws"

// TypeAck marks a message that only acknowledges a request.
const TypeAck = "ack"

// Message is the envelope exchanged with the import service.
type Message struct {
	Op   string          `json:"op"`
	Type string          `json:"type"`
	Tag  string          `json:"tag"`
	Ack  bool            `json:"ack"`
	Data json.RawMessage `json:"data,omitempty"`
}

// NewTag returns a fresh correlation tag for kind, e.g. testcase-import-<uuid>.
func NewTag(kind string) string {
	return kind + "-" + uuid.NewString()
}

// WebSocketTransport sends one tagged request over a websocket and waits for
// the message carrying the same tag.
type WebSocketTransport struct {
	url          string
	maxAttempts  int
	pollInterval time.Duration
	dialer       *websocket.Dialer
}

// NewWebSocketTransport creates a websocket transport.
func NewWebSocketTransport(opts Options) (*WebSocketTransport, error) {
	if opts.URL == "" {
		return nil, fmt.Errorf("websocket transport requires a url")
	}
	if opts.MaxAttempts <= 0 {
		opts.MaxAttempts = 30
	}
	if opts.PollInterval <= 0 {
		opts.PollInterval = 2 * time.Second
	}
	return &WebSocketTransport{
		url:          opts.URL,
		maxAttempts:  opts.MaxAttempts,
		pollInterval: opts.PollInterval,
		dialer: &websocket.Dialer{
			HandshakeTimeout: 10 * time.Second,
			ReadBufferSize:   16 * 1024,
			WriteBufferSize:  16 * 1024,
		},
	}, nil
}

// Deliver sends the request and polls for the correlated answer. It gives up
// with ErrNoResponse after the configured number of empty poll intervals.
func (t *WebSocketTransport) Deliver(ctx context.Context, req Request) (*Response, error) {
	conn, _, err := t.dialer.DialContext(ctx, t.url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to %s: %w", t.url, err)
	}
	defer conn.Close()

	data, err := json.Marshal(map[string]string{
		"mapping":  string(req.Mapping),
		"testcase": string(req.Document),
		"tcargs":   string(req.Args),
	})
	if err != nil {
		return nil, err
	}
	// data travels as a JSON encoded string
	encoded, err := json.Marshal(string(data))
	if err != nil {
		return nil, err
	}

	tag := NewTag("testcase-import")
	request := Message{
		Op:   OpTestCaseImport,
		Type: "na",
		Tag:  tag,
		Ack:  true,
		Data: encoded,
	}
	if err := conn.WriteJSON(request); err != nil {
		return nil, fmt.Errorf("failed to send import request: %w", err)
	}
	logging.Debug("Transport", "Sent %s import request %s", req.Project, tag)

	messages := make(chan Message)
	readErr := make(chan error, 1)
	done := make(chan struct{})
	defer close(done)

	go func() {
		for {
			var msg Message
			if err := conn.ReadJSON(&msg); err != nil {
				readErr <- err
				return
			}
			select {
			case messages <- msg:
			case <-done:
				return
			}
		}
	}()

	timer := time.NewTimer(t.pollInterval)
	defer timer.Stop()

	attempts := 0
	for attempts < t.maxAttempts {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()

		case err := <-readErr:
			return nil, fmt.Errorf("connection to import service lost: %w", err)

		case msg := <-messages:
			if msg.Tag != tag {
				logging.Debug("Transport", "Ignoring message for tag %s", msg.Tag)
				continue
			}
			if msg.Type == TypeAck {
				logging.Debug("Transport", "Import request %s acknowledged", tag)
				continue
			}
			logging.Info("Transport", "Import service answered %s batch", req.Project)
			return ParseResponse(unwrapData(msg.Data))

		case <-timer.C:
			attempts++
			if attempts%5 == 0 {
				logging.Info("Transport", "Still waiting for import response (%s)",
					time.Duration(attempts)*t.pollInterval)
			}
			timer.Reset(t.pollInterval)
		}
	}

	return nil, fmt.Errorf("%w after %d attempts", ErrNoResponse, t.maxAttempts)
}

// unwrapData returns the payload of a message whose data may be a JSON
// encoded string or a plain object.
func unwrapData(data json.RawMessage) []byte {
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		return []byte(s)
	}
	return data
}
