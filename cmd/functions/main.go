package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var Version = "dev"

func main() {
	rootCmd := &cobra.Command{
		Use:     "functions",
		Short:   "Background jobs for the team todo API",
		Version: Version,
		// Errors are printed once below.
		SilenceErrors: true,
		SilenceUsage:  true,
	}

	rootCmd.AddCommand(workerCmd())
	rootCmd.AddCommand(recomputeMemberCmd())
	rootCmd.AddCommand(rollupTeamCmd())
	rootCmd.AddCommand(rebuildShardsCmd())
	rootCmd.AddCommand(backupCmd())
	rootCmd.AddCommand(reportCmd())

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
