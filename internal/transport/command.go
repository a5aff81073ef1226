package transport

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	"polarizer/pkg/logging"
)

// Placeholders substituted in command arguments.
const (
	PlaceholderTestCase = "{testcase}"
	PlaceholderMapping  = "{mapping}"
	PlaceholderArgs     = "{tcargs}"
)

// CommandTransport hands the request to a local program. The document,
// mapping and arguments are written to temporary files whose paths replace
// the placeholders in the command line, or are appended when no placeholder
// is used. The program's standard output is the response.
type CommandTransport struct {
	command []string
	timeout time.Duration
}

// NewCommandTransport creates an exec transport.
func NewCommandTransport(opts Options) (*CommandTransport, error) {
	if len(opts.Command) == 0 || opts.Command[0] == "" {
		return nil, fmt.Errorf("exec transport requires a command")
	}
	return &CommandTransport{
		command: append([]string(nil), opts.Command...),
		timeout: opts.Timeout,
	}, nil
}

// Deliver runs the command and parses what it prints.
func (t *CommandTransport) Deliver(ctx context.Context, req Request) (*Response, error) {
	dir, err := os.MkdirTemp("", "polarizer-import-")
	if err != nil {
		return nil, fmt.Errorf("failed to create work directory: %w", err)
	}
	defer os.RemoveAll(dir)

	files := map[string]string{}
	for placeholder, f := range map[string]struct {
		name    string
		content []byte
	}{
		PlaceholderTestCase: {"testcase.xml", req.Document},
		PlaceholderMapping:  {"mapping.json", req.Mapping},
		PlaceholderArgs:     {"tcargs.json", req.Args},
	} {
		path := filepath.Join(dir, f.name)
		if err := os.WriteFile(path, f.content, 0600); err != nil {
			return nil, fmt.Errorf("failed to write %s: %w", f.name, err)
		}
		files[placeholder] = path
	}
	if req.DocumentPath != "" {
		files[PlaceholderTestCase] = req.DocumentPath
	}

	args := expandArgs(t.command[1:], files)

	if t.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, t.timeout)
		defer cancel()
	}

	cmd := exec.CommandContext(ctx, t.command[0], args...)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	logging.Debug("Transport", "Running %s for %s batch", t.command[0], req.Project)
	if err := cmd.Run(); err != nil {
		if ctx.Err() != nil {
			return nil, fmt.Errorf("import command interrupted: %w", ctx.Err())
		}
		return nil, fmt.Errorf("import command failed: %w: %s", err, strings.TrimSpace(stderr.String()))
	}

	logging.Info("Transport", "Import command finished for %s batch", req.Project)
	return ParseResponse(bytes.TrimSpace(stdout.Bytes()))
}

// expandArgs substitutes placeholders in args. When none of them appear, the
// document, mapping and arguments paths are appended in that order.
func expandArgs(args []string, files map[string]string) []string {
	out := make([]string, 0, len(args)+3)
	used := false
	for _, arg := range args {
		for placeholder, path := range files {
			if strings.Contains(arg, placeholder) {
				arg = strings.ReplaceAll(arg, placeholder, path)
				used = true
			}
		}
		out = append(out, arg)
	}
	if !used {
		out = append(out, files[PlaceholderTestCase], files[PlaceholderMapping], files[PlaceholderArgs])
	}
	return out
}
