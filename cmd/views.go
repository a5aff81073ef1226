package cmd

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"polarizer/internal/app"
	"polarizer/internal/export"
	"polarizer/internal/formatting"
	"polarizer/internal/reconciler"
	"polarizer/pkg/metadata"
	pkgstrings "polarizer/pkg/strings"
)

// outputFlags are the rendering flags of commands that print results.
type outputFlags struct {
	format  string
	quiet   bool
	noColor bool
}

func (o *outputFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&o.format, "output", "o", "table", "Output format: table, plain, json or yaml")
	cmd.Flags().BoolVarP(&o.quiet, "quiet", "q", false, "Suppress titles, headers and footers")
	cmd.Flags().BoolVar(&o.noColor, "no-color", false, "Disable colored table output")
}

func (o *outputFlags) formatter(cmd *cobra.Command) (formatting.Formatter, error) {
	format, err := formatting.ParseFormat(o.format)
	if err != nil {
		return nil, err
	}
	return formatting.New(formatting.Options{
		Format: format,
		Quiet:  o.quiet,
		Color:  !o.noColor,
		Output: cmd.OutOrStdout(),
	}), nil
}

type resultRow struct {
	Identity string `json:"identity"`
	Project  string `json:"project"`
	State    string `json:"state"`
	Action   string `json:"action"`
	Queued   bool   `json:"queued"`
	Mismatch string `json:"mismatch,omitempty"`
}

func reconcileView(results []reconciler.Result, summary reconciler.MetricsSummary) formatting.View {
	rows := make([][]string, 0, len(results))
	data := make([]resultRow, 0, len(results))
	for _, r := range results {
		row := resultRow{
			Identity: r.Identity,
			Project:  r.Project,
			State:    string(r.State),
			Action:   string(r.Action),
			Queued:   r.Queued,
		}
		if r.Mismatch != nil {
			row.Mismatch = r.Mismatch.Error()
		}
		data = append(data, row)
		rows = append(rows, []string{
			pkgstrings.Truncate(row.Identity, pkgstrings.DefaultCellMaxLen),
			row.Project,
			row.State,
			row.Action,
			yesNo(row.Queued),
		})
	}
	return formatting.View{
		Title:   "Reconciliation",
		Headers: []string{"identity", "project", "state", "action", "queued"},
		Rows:    rows,
		Footer: fmt.Sprintf("%d pairs: %d both set, %d mapping only, %d definition only, %d new, %d mismatched, %d queued",
			len(results), summary.BothSet, summary.MetaMissing, summary.MapMissing, summary.BothMissing,
			summary.Mismatches, summary.Enqueued),
		Data: data,
	}
}

func statusView(statuses []metadata.Status) formatting.View {
	rows := make([][]string, 0, len(statuses))
	mismatches := 0
	for _, s := range statuses {
		state := string(s.State)
		if s.Mismatch() {
			state = "Mismatch"
			mismatches++
		}
		rows = append(rows, []string{
			pkgstrings.Truncate(s.Identity, pkgstrings.DefaultCellMaxLen),
			s.Project,
			pkgstrings.OrDash(s.MappingID),
			pkgstrings.OrDash(s.DefinitionID),
			state,
		})
	}
	return formatting.View{
		Title:   "Test case status",
		Headers: []string{"identity", "project", "mapping id", "definition id", "state"},
		Rows:    rows,
		Footer:  fmt.Sprintf("%d pairs, %d mismatched", len(statuses), mismatches),
		Data:    statuses,
	}
}

type batchRow struct {
	Project   string   `json:"project"`
	Path      string   `json:"path,omitempty"`
	Exported  []string `json:"exported"`
	Rejected  []string `json:"rejected,omitempty"`
	Delivered *bool    `json:"delivered,omitempty"`
	Merged    int      `json:"merged,omitempty"`
	Error     string   `json:"error,omitempty"`
}

func newBatchRow(b export.BatchResult) batchRow {
	row := batchRow{Project: b.Project, Path: b.Path, Exported: b.Exported}
	if row.Exported == nil {
		row.Exported = []string{}
	}
	for _, err := range b.Rejected {
		row.Rejected = append(row.Rejected, err.Error())
	}
	return row
}

func exportView(batches []export.BatchResult) formatting.View {
	rows := make([][]string, 0, len(batches))
	data := make([]batchRow, 0, len(batches))
	for _, b := range batches {
		row := newBatchRow(b)
		data = append(data, row)
		rows = append(rows, []string{
			row.Project,
			pkgstrings.OrDash(row.Path),
			strconv.Itoa(len(row.Exported)),
			strconv.Itoa(len(row.Rejected)),
		})
	}
	return formatting.View{
		Title:   "Export",
		Headers: []string{"project", "document", "exported", "rejected"},
		Rows:    rows,
		Footer:  fmt.Sprintf("%d documents", len(batches)),
		Data:    data,
	}
}

func importView(results []app.ImportResult) formatting.View {
	rows := make([][]string, 0, len(results))
	data := make([]batchRow, 0, len(results))
	delivered := 0
	for _, r := range results {
		row := newBatchRow(r.BatchResult)
		d := r.Delivered
		row.Delivered = &d
		row.Merged = r.Merged
		if r.Err != nil {
			row.Error = r.Err.Error()
		}
		if d {
			delivered++
		}
		data = append(data, row)
		rows = append(rows, []string{
			row.Project,
			pkgstrings.OrDash(row.Path),
			strconv.Itoa(len(row.Exported)),
			yesNo(d),
			strconv.Itoa(row.Merged),
			pkgstrings.OrDash(pkgstrings.Truncate(row.Error, pkgstrings.DefaultCellMaxLen)),
		})
	}
	return formatting.View{
		Title:   "Import",
		Headers: []string{"project", "document", "exported", "delivered", "merged", "error"},
		Rows:    rows,
		Footer:  fmt.Sprintf("%d of %d documents delivered", delivered, len(results)),
		Data:    data,
	}
}

func yesNo(b bool) string {
	if b {
		return "yes"
	}
	return "no"
}
