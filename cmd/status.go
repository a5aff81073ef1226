package cmd

import (
	"github.com/spf13/cobra"
)

func newStatusCmd() *cobra.Command {
	var out outputFlags

	cmd := &cobra.Command{
		Use:   "status",
		Short: "Show the identifiers of every test case without changing anything",
		Long: `Lists every (test, project) pair known to the mapping file or the definition
files with the id each side holds and the resulting state. Nothing is written.`,
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
			return formatter.Format(statusView(application.Services().Registry().Status()))
		},
	}
	out.register(cmd)
	return cmd
}
