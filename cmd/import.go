package cmd

import (
	"time"

	"github.com/briandowns/spinner"
	"github.com/jedib0t/go-pretty/v6/text"
	"github.com/spf13/cobra"
)

func newImportCmd() *cobra.Command {
	var out outputFlags

	cmd := &cobra.Command{
		Use:   "import",
		Short: "Export and deliver the import documents to Polarion",
		Long: `Runs 'polarizer export', then delivers every written document through the
configured transport (http, websocket or exec). Ids returned by the importer
are merged into the mapping file and copied into the definitions.

With testcase.enabled set to false the documents are written but not sent.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			formatter, err := out.formatter(cmd)
			if err != nil {
				return err
			}
			application, err := newApplication(cmd)
			if err != nil {
				return err
			}
			services := application.Services()

			tr, err := services.Transport()
			if err != nil {
				return err
			}

			var s *spinner.Spinner
			if !out.quiet && !silent {
				s = spinner.New(spinner.CharSets[14], 100*time.Millisecond)
				s.Writer = cmd.ErrOrStderr()
			}
			progress := func(project string) {
				if s == nil {
					return
				}
				s.Suffix = " Importing test cases of " + project + "..."
				s.Start()
			}

			results, importErr := services.Import(cmd.Context(), tr, progress)
			if s != nil {
				if importErr != nil {
					s.FinalMSG = text.FgRed.Sprint("Import finished with errors") + "\n"
				}
				s.Stop()
			}

			if err := formatter.Format(importView(results)); err != nil {
				return err
			}
			return importErr
		},
	}
	out.register(cmd)
	return cmd
}
