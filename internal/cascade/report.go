// Package cascade implements the cascading rebase and merge engines: replaying or propagating a
// chain's branches against each other in order, tracking per-branch outcomes, and persisting
// enough state to resume a rebase interrupted by a conflict.
package cascade

import (
	"context"
	"fmt"
	"strings"

	"github.com/chainctl/chain/internal/gitops"
)

// Pair names the two branches involved in one cascade step.
type Pair struct {
	Parent, Child string
}

// RenderLevel selects how much detail Report.Render includes.
type RenderLevel int

const (
	RenderMinimal RenderLevel = iota
	RenderStandard
	RenderDetailed
)

// Report records, per cascade operation, which pairs succeeded, conflicted, were skipped, or
// were handled as a squashed merge. Op is the cascade verb ("rebase" or "merge"); rendered
// output uses its past tense.
type Report struct {
	Op         string
	Succeeded  []Pair
	Conflicted []Pair
	Skipped    []Pair
	Squashed   []Pair
}

// NewReport builds an empty report for the given cascade verb ("rebase" or "merge").
func NewReport(op string) *Report {
	return &Report{Op: op}
}

func (r *Report) recordSuccess(p Pair)  { r.Succeeded = append(r.Succeeded, p) }
func (r *Report) recordSkipped(p Pair)  { r.Skipped = append(r.Skipped, p) }
func (r *Report) recordSquashed(p Pair) { r.Squashed = append(r.Squashed, p) }
func (r *Report) recordConflict(p Pair) { r.Conflicted = append(r.Conflicted, p) }

// OK reports whether the cascade finished without any conflicted pair.
func (r *Report) OK() bool { return len(r.Conflicted) == 0 }

// Render produces the cascade's textual report at the requested level. For RenderDetailed,
// repo/upstreamOf are used to fetch commit-stat metadata for each successful pair; upstreamOf supplies
// the upstream each child was diffed against so the stat is the child's own change, not its
// entire history.
func (r *Report) Render(ctx context.Context, level RenderLevel, repo gitops.Repo, upstreamOf map[string]string) string {
	switch level {
	case RenderMinimal:
		return r.renderMinimal()
	case RenderDetailed:
		return r.renderStandard(ctx, repo, upstreamOf, true)
	default:
		return r.renderStandard(ctx, repo, upstreamOf, false)
	}
}

func (r *Report) renderMinimal() string {
	if r.OK() {
		if len(r.Succeeded) == 0 {
			return fmt.Sprintf("chain already up to date, nothing %s", pastTense(r.Op))
		}
		return fmt.Sprintf("successfully %s chain (%d branch(es))", pastTense(r.Op), len(r.Succeeded))
	}
	return fmt.Sprintf("%s cascade stopped: %d conflict(s)", r.Op, len(r.Conflicted))
}

func (r *Report) renderStandard(ctx context.Context, repo gitops.Repo, upstreamOf map[string]string, detailed bool) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s\n", r.renderMinimal())
	fmt.Fprintf(&b, "  %d %s, %d skipped, %d squashed, %d conflicted\n",
		len(r.Succeeded), pastTense(r.Op), len(r.Skipped), len(r.Squashed), len(r.Conflicted))
	for _, p := range r.Succeeded {
		line := fmt.Sprintf("  %s <- %s: %s", p.Parent, p.Child, pastTense(r.Op))
		if detailed && repo != nil {
			upstream := upstreamOf[p.Child]
			if upstream == "" {
				upstream = p.Parent
			}
			if stat, err := repo.CommitStatFor(ctx, upstream, p.Child); err == nil {
				line += fmt.Sprintf(" — %q (%d files, +%d/-%d)", stat.Message, stat.FilesChanged, stat.Insertions, stat.Deletions)
			}
		}
		b.WriteString(line)
		b.WriteByte('\n')
	}
	for _, p := range r.Skipped {
		fmt.Fprintf(&b, "  %s <- %s: skipped\n", p.Parent, p.Child)
	}
	for _, p := range r.Squashed {
		fmt.Fprintf(&b, "  %s <- %s: squash-merged\n", p.Parent, p.Child)
	}
	for _, p := range r.Conflicted {
		fmt.Fprintf(&b, "  %s <- %s: CONFLICT\n", p.Parent, p.Child)
	}
	return b.String()
}

func pastTense(op string) string {
	switch op {
	case "rebase":
		return "rebased"
	case "merge":
		return "merged"
	default:
		return op + "ed"
	}
}
