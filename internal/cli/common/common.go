// Package common provides shared helper functions for chain CLI commands.
package common

import (
	"github.com/spf13/cobra"

	"github.com/chainctl/chain/internal/runtime"
)

// Run provides a runtime context to a command's execution function and always closes it
// afterward, regardless of outcome.
func Run(cmd *cobra.Command, fn func(ctx *runtime.Context) error) error {
	ctx, err := runtime.GetContext(cmd.Context())
	if err != nil {
		return err
	}
	defer func() { _ = ctx.Close() }()
	return fn(ctx)
}

// CompleteChains is a cobra.ValidArgsFunction/RegisterFlagCompletionFunc helper that offers
// every chain name as a completion candidate for a "which chain" argument.
func CompleteChains(cmd *cobra.Command, _ []string, _ string) ([]string, cobra.ShellCompDirective) {
	rtCtx, err := runtime.GetContext(cmd.Context())
	if err != nil {
		return nil, cobra.ShellCompDirectiveError
	}
	defer func() { _ = rtCtx.Close() }()

	chains, err := rtCtx.Mgr.All(rtCtx.Context)
	if err != nil {
		return nil, cobra.ShellCompDirectiveError
	}
	names := make([]string, len(chains))
	for i, c := range chains {
		names[i] = c.Name
	}
	return names, cobra.ShellCompDirectiveNoFileComp
}
