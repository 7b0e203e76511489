// Package cli provides command-line interface definitions using cobra, including all
// subcommands and their flag definitions.
package cli

import (
	"github.com/spf13/cobra"
)

// NewRootCmd creates the root cobra command for the chain CLI.
func NewRootCmd(version, commit, date string) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:     "chain",
		Short:   "chain manages stacked git branches as ordered, persistent chains",
		Version: version,
		Long: `chain manages stacked git branches as ordered, persistent chains: a sequence of
branches rooted at a trunk, each depending on the one before it. Membership and order survive
checkouts and new shells, because both live in git config rather than in a separate state file.

Version: ` + version + `
Commit:  ` + commit + `
Date:    ` + date,
	}

	rootCmd.AddCommand(newInitCmd())
	rootCmd.AddCommand(newAddCmd())
	rootCmd.AddCommand(newRemoveCmd())
	rootCmd.AddCommand(newListCmd())
	rootCmd.AddCommand(newStatusCmd())
	rootCmd.AddCommand(newRebaseCmd())
	rootCmd.AddCommand(newMergeCmd())
	rootCmd.AddCommand(newPruneCmd())
	rootCmd.AddCommand(newRenameCmd())
	rootCmd.AddCommand(newBackupCmd())
	rootCmd.AddCommand(newPushCmd())
	rootCmd.AddCommand(newPRCmd())

	return rootCmd
}
