package cmd

import (
	"github.com/spf13/cobra"
)

func newExportCmd() *cobra.Command {
	var (
		out       outputFlags
		outputDir string
	)

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Write the XML import document of every project with new test cases",
		Long: `Reconciles, then writes one <project>-testcases.xml document per project
holding the test cases that need to be imported. Records missing a title,
description or test steps are reported and left out.`,
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
			if outputDir != "" {
				services.Config.OutputDir = outputDir
			}

			batches, exportErr := services.Export(cmd.Context())
			if err := formatter.Format(exportView(batches)); err != nil {
				return err
			}
			return exportErr
		},
	}
	out.register(cmd)
	cmd.Flags().StringVar(&outputDir, "output-dir", "", "Directory for the documents (overrides output-dir)")
	return cmd
}
