package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version number of bsprep",
		Long:  `Print the version number of bsprep. The same version is stamped on every prepared capability set.`,
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "bsprep version %s\n", rootCmd.Version)
		},
	}
}
