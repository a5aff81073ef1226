// Package transport delivers export documents to the remote import service.
//
// Three transports exist: an HTTP multipart upload, a request/response
// exchange over a websocket, and a local command. None of them retries; a
// failed delivery is reported to the caller as is.
package transport

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"polarizer/internal/mapping"
)

// ErrNoResponse is returned when the remote did not answer within the
// configured number of poll attempts.
var ErrNoResponse = errors.New("no response from import service")

// Request is one export document ready for delivery.
type Request struct {
	// Project the document belongs to.
	Project string

	// Document is the serialized export document.
	Document []byte

	// DocumentPath is where the document was written, if it was.
	DocumentPath string

	// Mapping is the current identifier mapping file content.
	Mapping []byte

	// Args is the JSON arguments payload.
	Args []byte
}

// Response is what the import service sent back.
type Response struct {
	// Mapping holds the ids the remote assigned, if it returned any.
	Mapping mapping.Mapping

	// Raw is the undecoded response body.
	Raw []byte
}

// Transport delivers a request and waits for the answer.
type Transport interface {
	Deliver(ctx context.Context, req Request) (*Response, error)
}

// Options configures a transport.
type Options struct {
	// URL is the endpoint of the http and websocket transports.
	URL string

	// Command is the program and arguments of the exec transport.
	Command []string

	// MaxAttempts bounds how many poll intervals the websocket transport waits.
	MaxAttempts int

	// PollInterval is the length of one poll.
	PollInterval time.Duration

	// Timeout bounds one http request or command run. Zero means no limit.
	Timeout time.Duration
}

// Kinds of transport.
const (
	KindHTTP      = "http"
	KindWebSocket = "websocket"
	KindExec      = "exec"
)

// New returns the transport of the given kind.
func New(kind string, opts Options) (Transport, error) {
	var (
		t   Transport
		err error
	)
	switch kind {
	case KindHTTP, "":
		t, err = NewHTTPTransport(opts)
	case KindWebSocket:
		t, err = NewWebSocketTransport(opts)
	case KindExec:
		t, err = NewCommandTransport(opts)
	default:
		return nil, fmt.Errorf("unknown transport kind %q", kind)
	}
	if err != nil {
		return nil, err
	}
	return t, nil
}

// ParseResponse decodes a response body. A JSON object with a "mapping" key
// yields the remote mapping; an empty body yields an empty response.
func ParseResponse(raw []byte) (*Response, error) {
	resp := &Response{Raw: raw}
	if len(raw) == 0 {
		return resp, nil
	}

	var body struct {
		Mapping json.RawMessage `json:"mapping"`
	}
	if err := json.Unmarshal(raw, &body); err != nil {
		return nil, fmt.Errorf("invalid response from import service: %w", err)
	}
	if len(body.Mapping) == 0 {
		return resp, nil
	}

	// some services send the mapping as an encoded JSON string
	inner := []byte(body.Mapping)
	var encoded string
	if err := json.Unmarshal(inner, &encoded); err == nil {
		inner = []byte(encoded)
	}

	m, err := mapping.Decode(inner)
	if err != nil {
		return nil, fmt.Errorf("invalid mapping in response: %w", err)
	}
	resp.Mapping = m
	return resp, nil
}
