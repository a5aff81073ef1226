package export

import (
	"bytes"
	"context"
	"encoding/xml"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"golang.org/x/sync/errgroup"

	"polarizer/internal/reconciler"
	"polarizer/pkg/logging"
)

// FileSuffix is appended to the project name to form a document file name.
const FileSuffix = "-testcases.xml"

// Encode writes doc with an XML header and two-space indentation.
func Encode(w io.Writer, doc *Document) error {
	if _, err := io.WriteString(w, xml.Header); err != nil {
		return err
	}
	enc := xml.NewEncoder(w)
	enc.Indent("", "  ")
	if err := enc.Encode(doc); err != nil {
		return fmt.Errorf("failed to encode document for %s: %w", doc.ProjectID, err)
	}
	if err := enc.Close(); err != nil {
		return err
	}
	_, err := io.WriteString(w, "\n")
	return err
}

// Marshal returns the encoded document.
func Marshal(doc *Document) ([]byte, error) {
	var buf bytes.Buffer
	if err := Encode(&buf, doc); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// FileName returns the document file name for project.
func FileName(project string) string {
	return project + FileSuffix
}

// BatchResult describes the document written for one project.
type BatchResult struct {
	Project string
	// Path is empty when every entry of the project was rejected.
	Path     string
	Exported []string
	Rejected []error
}

// WriteAll builds and writes one document per project into dir. Projects are
// written concurrently. Results are sorted by project.
func WriteAll(ctx context.Context, dir string, batches map[string][]reconciler.QueueEntry, b *Builder) ([]BatchResult, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create output directory %s: %w", dir, err)
	}

	var (
		mu      sync.Mutex
		results = make([]BatchResult, 0, len(batches))
	)

	eg, egCtx := errgroup.WithContext(ctx)
	for project, entries := range batches {
		if len(entries) == 0 {
			continue
		}
		project, entries := project, entries
		eg.Go(func() error {
			if err := egCtx.Err(); err != nil {
				return err
			}
			result, err := writeBatch(dir, project, entries, b)
			if err != nil {
				return err
			}
			mu.Lock()
			results = append(results, result)
			mu.Unlock()
			return nil
		})
	}

	if err := eg.Wait(); err != nil {
		return nil, err
	}

	sort.Slice(results, func(i, j int) bool { return results[i].Project < results[j].Project })
	return results, nil
}

func writeBatch(dir, project string, entries []reconciler.QueueEntry, b *Builder) (BatchResult, error) {
	if project == "" || strings.ContainsAny(project, `/\`) {
		return BatchResult{}, fmt.Errorf("invalid project name %q", project)
	}

	doc, exported, rejected := b.BuildBatch(project, entries)
	result := BatchResult{Project: project, Exported: exported, Rejected: rejected}

	if len(doc.TestCases) == 0 {
		logging.Warn("ExportWriter", "No exportable test cases for %s, skipping document", project)
		return result, nil
	}

	out, err := Marshal(doc)
	if err != nil {
		return BatchResult{}, err
	}

	path := filepath.Join(dir, FileName(project))
	if err := os.WriteFile(path, out, 0644); err != nil {
		return BatchResult{}, fmt.Errorf("failed to write %s: %w", path, err)
	}
	result.Path = path

	logging.Info("ExportWriter", "Wrote %d test cases for %s to %s", len(doc.TestCases), project, path)
	return result, nil
}
