// Package main provides the pullback CLI.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

const version = "v0.0.1-dev"

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "pullback",
		Short: "Reverse-mode automatic differentiation checks",
		Long: `pullback runs the reference gradient scenarios through the reverse-mode
engine and verifies every gradient against central finite differences.`,
		SilenceUsage: true,
	}
	root.AddCommand(newCheckCmd(), newVersionCmd())
	return root
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version",
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "pullback %s\n", version)
		},
	}
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}
