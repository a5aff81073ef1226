package cmd

import (
	"github.com/spf13/cobra"
)

func newWatchCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "watch",
		Short: "Reconcile whenever the mapping or the definitions change",
		Long: `Runs a reconciliation pass at startup and again every time the mapping file
or a definition file changes, until interrupted with Ctrl+C.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			application, err := newApplication(cmd)
			if err != nil {
				return err
			}
			return application.Services().Watch(cmd.Context())
		},
	}
}
