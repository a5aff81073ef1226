package transport

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/textproto"

	"polarizer/pkg/logging"
)

// Multipart form part names understood by the import service.
const (
	PartArgs     = "tcargs"
	PartMapping  = "mapping"
	PartTestCase = "testcase"
)

// HTTPTransport uploads the document, mapping and arguments as one
// multipart form.
type HTTPTransport struct {
	url    string
	client *http.Client
}

// NewHTTPTransport creates an HTTP transport.
func NewHTTPTransport(opts Options) (*HTTPTransport, error) {
	if opts.URL == "" {
		return nil, fmt.Errorf("http transport requires a url")
	}
	return &HTTPTransport{
		url:    opts.URL,
		client: &http.Client{Timeout: opts.Timeout},
	}, nil
}

// Deliver posts the request and decodes the JSON answer.
func (t *HTTPTransport) Deliver(ctx context.Context, req Request) (*Response, error) {
	body, contentType, err := buildForm(req)
	if err != nil {
		return nil, err
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, t.url, body)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", contentType)
	httpReq.Header.Set("Accept", "application/json")

	logging.Debug("Transport", "Posting %s import for %s (%d bytes)", req.Project, t.url, body.Len())
	resp, err := t.client.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("import request for %s failed: %w", req.Project, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read import response: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("import service returned %s: %s", resp.Status, bytes.TrimSpace(raw))
	}

	logging.Info("Transport", "Import service accepted %s batch", req.Project)
	return ParseResponse(raw)
}

func buildForm(req Request) (*bytes.Buffer, string, error) {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)

	parts := []struct {
		name, filename, contentType string
		content                     []byte
	}{
		{PartArgs, "tcargs.json", "application/json", req.Args},
		{PartMapping, "mapping.json", "application/json", req.Mapping},
		{PartTestCase, "testcase.xml", "application/xml", req.Document},
	}

	for _, p := range parts {
		header := make(textproto.MIMEHeader)
		header.Set("Content-Disposition", fmt.Sprintf(`form-data; name="%s"; filename="%s"`, p.name, p.filename))
		header.Set("Content-Type", p.contentType)
		part, err := w.CreatePart(header)
		if err != nil {
			return nil, "", fmt.Errorf("failed to create %s part: %w", p.name, err)
		}
		if _, err := part.Write(p.content); err != nil {
			return nil, "", fmt.Errorf("failed to write %s part: %w", p.name, err)
		}
	}

	if err := w.Close(); err != nil {
		return nil, "", err
	}
	return &buf, w.FormDataContentType(), nil
}
