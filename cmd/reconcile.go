package cmd

import (
	"github.com/spf13/cobra"
)

func newReconcileCmd() *cobra.Command {
	var out outputFlags

	cmd := &cobra.Command{
		Use:   "reconcile",
		Short: "Reconcile the definitions with the identifier mapping",
		Long: `Reconciles every test case of the definition files against the identifier
mapping file.

An id present on only one side is copied to the other. Test cases without an id
on either side get a mapping entry and are counted as new; run 'polarizer export'
or 'polarizer import' to create them remotely. Differing ids are reported and
left untouched.`,
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

			results, reconcileErr := services.Reconcile(cmd.Context())
			if err := formatter.Format(reconcileView(results, services.Metrics.GetSummary())); err != nil {
				return err
			}
			return reconcileErr
		},
	}
	out.register(cmd)
	return cmd
}
