package template

import (
	"bytes"
	"fmt"
	"strings"
	"sync"
	"text/template"

	"github.com/Masterminds/sprig/v3"
)

// Engine renders small text templates such as title prefixes and suffixes.
// Templates use Go text/template syntax with the sprig function library.
// Parsed templates are cached by their source text.
type Engine struct {
	mu    sync.RWMutex
	cache map[string]*template.Template
}

// New creates a new template engine
func New() *Engine {
	return &Engine{
		cache: make(map[string]*template.Template),
	}
}

// IsTemplate reports whether text contains template actions.
func IsTemplate(text string) bool {
	return strings.Contains(text, "{{")
}

// Parse compiles text, returning a cached template when it was seen before.
func (e *Engine) Parse(text string) (*template.Template, error) {
	e.mu.RLock()
	tmpl, ok := e.cache[text]
	e.mu.RUnlock()
	if ok {
		return tmpl, nil
	}

	tmpl, err := template.New("inline").
		Funcs(sprig.TxtFuncMap()).
		Option("missingkey=error").
		Parse(text)
	if err != nil {
		return nil, fmt.Errorf("invalid template %q: %w", text, err)
	}

	e.mu.Lock()
	e.cache[text] = tmpl
	e.mu.Unlock()
	return tmpl, nil
}

// Render executes text against data. Plain text without actions is returned
// unchanged.
func (e *Engine) Render(text string, data map[string]interface{}) (string, error) {
	if !IsTemplate(text) {
		return text, nil
	}

	tmpl, err := e.Parse(text)
	if err != nil {
		return "", err
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("failed to render template %q: %w", text, err)
	}
	return buf.String(), nil
}

// Validate checks that text parses.
func (e *Engine) Validate(text string) error {
	if !IsTemplate(text) {
		return nil
	}
	_, err := e.Parse(text)
	return err
}
