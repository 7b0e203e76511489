package cli

import (
	"fmt"
	"io"

	"github.com/chainctl/chain/internal/chain"
	"github.com/chainctl/chain/internal/runtime"
)

// renderChainMembers writes c's members from the tip of the chain down to its root, one line
// each, each annotated with its ahead/behind count relative to its immediate parent (the
// previous member, or the chain's root for the first member) and an arrow marking whichever
// branch is currently checked out. When showPR is set, each member's pull request status is
// printed beneath its line.
func renderChainMembers(ctx *runtime.Context, out io.Writer, c *chain.Chain, showPR bool) error {
	current, _, err := ctx.Repo.HeadBranchName(ctx.Context)
	if err != nil {
		return err
	}
	for i := len(c.Branches) - 1; i >= 0; i-- {
		b := c.Branches[i]
		parent := c.RootBranch
		if i > 0 {
			parent = c.Branches[i-1].Name
		}
		ahead, behind, err := ctx.Repo.GraphAheadBehind(ctx.Context, parent, b.Name)
		if err != nil {
			return err
		}
		fmt.Fprintf(out, "%s%s ⦁ %s\n", branchMarker(b.Name, current), colorBranch(b.Name), aheadBehindSummary(ahead, behind))
		if showPR {
			printPRStatus(ctx, out, b.Name)
		}
	}
	fmt.Fprintf(out, "%s%s (root branch)\n", branchMarker(c.RootBranch, current), colorBranch(c.RootBranch))
	return nil
}

// branchMarker returns the arrow prefix for the currently checked out branch, or matching
// indentation otherwise.
func branchMarker(branch, current string) string {
	if branch == current {
		return "→ "
	}
	return "  "
}

// aheadBehindSummary renders an ahead/behind pair the way `chain status`/`chain list` describe a
// member's relationship to its parent.
func aheadBehindSummary(ahead, behind int) string {
	switch {
	case ahead > 0 && behind > 0:
		return fmt.Sprintf("%d ahead, %d behind", ahead, behind)
	case ahead > 0:
		return fmt.Sprintf("%d ahead", ahead)
	case behind > 0:
		return fmt.Sprintf("%d behind", behind)
	default:
		return "up to date"
	}
}
