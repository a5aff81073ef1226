package cmd

import (
	"fmt"
	"runtime"

	"github.com/spf13/cobra"
)

// versionLine is the build description printed by 'polarizer version'.
func versionLine(version string, short bool) string {
	if version == "" {
		version = "dev"
	}
	if short {
		return version
	}
	return fmt.Sprintf("polarizer %s (%s, %s/%s)", version, runtime.Version(), runtime.GOOS, runtime.GOARCH)
}

func newVersionCmd() *cobra.Command {
	var short bool

	cmd := &cobra.Command{
		Use:   "version",
		Short: "Print the polarizer version",
		Long: `Prints the polarizer version together with the Go toolchain and platform
it was built for. With --short only the version is printed.`,
		Args: cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintln(cmd.OutOrStdout(), versionLine(rootCmd.Version, short))
		},
	}
	cmd.Flags().BoolVar(&short, "short", false, "Print only the version")
	return cmd
}
