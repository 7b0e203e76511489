package chain

// SortKind selects how a branch's order key is resolved relative to its chain neighbours.
type SortKind int

const (
	SortFirst SortKind = iota
	SortLast
	SortBefore
	SortAfter
)

// SortOption is the resolved placement request passed to Manager.Setup/MoveInto. Before/After
// carry the name of the branch to place relative to.
type SortOption struct {
	Kind  SortKind
	Other string
}

// First places the branch closest to the chain's root.
func First() SortOption { return SortOption{Kind: SortFirst} }

// Last places the branch farthest from the chain's root.
func Last() SortOption { return SortOption{Kind: SortLast} }

// BeforeBranch places the branch immediately before other in chain order.
func BeforeBranch(other string) SortOption { return SortOption{Kind: SortBefore, Other: other} }

// AfterBranch places the branch immediately after other in chain order.
func AfterBranch(other string) SortOption { return SortOption{Kind: SortAfter, Other: other} }
