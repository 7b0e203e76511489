// Package demo provides a simulated, in-memory gitops.Repo for exercising the chain CLI and
// taking screenshots without a real git repository on disk.
package demo

import (
	"context"
	"fmt"
	"regexp"
	"sort"
	"strings"
	"sync"

	"github.com/chainctl/chain/internal/gitops"
	"github.com/chainctl/chain/internal/runtime"
)

func init() {
	runtime.DemoRepoFactory = func() gitops.Repo {
		if seeded, err := NewSeededRepo(context.Background()); err == nil {
			return seeded
		}
		return NewRepo()
	}
}

type commitNode struct {
	id      string
	parent  string
	parent2 string // second parent, set only for merge commits
	tree    string
	message string
}

// Repo is an in-memory gitops.Repo. Its object model is deliberately simplified to a
// singly-linked commit chain per branch (merge commits carry a second parent, nothing more):
// enough to drive chain setup, rebase, and merge cascades deterministically for demos, without
// needing an on-disk repository.
type Repo struct {
	mu       sync.Mutex
	current  string
	branches map[string]string // branch name -> head commit id
	remotes  map[string]bool   // branch names considered to exist on a remote
	commits  map[string]*commitNode
	configs  map[string]string
	pushed   []string
	seq      int
}

// NewRepo builds an empty demo repo with just a "main" branch and one commit.
func NewRepo() *Repo {
	r := &Repo{
		current:  "main",
		branches: map[string]string{},
		remotes:  map[string]bool{},
		commits:  map[string]*commitNode{},
		configs:  map[string]string{},
	}
	root := r.newCommit("", "", "root commit")
	r.branches["main"] = root
	return r
}

func (r *Repo) newCommit(parent, parent2, message string) string {
	r.seq++
	id := fmt.Sprintf("c%d", r.seq)
	r.commits[id] = &commitNode{id: id, parent: parent, parent2: parent2, tree: "t" + id, message: message}
	return id
}

// Seed creates branch as a child of parent (which must already exist) with one simulated commit.
// Used by scenario setup to populate a demo chain before the CLI runs against it.
func (r *Repo) Seed(branch, parent string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	parentCommit := r.branches[parent]
	r.branches[branch] = r.newCommit(parentCommit, "", fmt.Sprintf("work on %s", branch))
}

func (r *Repo) HeadBranchName(context.Context) (string, bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.current, r.current != "", nil
}

func (r *Repo) LocalBranchExists(_ context.Context, name string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	_, ok := r.branches[name]
	return ok, nil
}

func (r *Repo) AnyBranchExists(_ context.Context, name string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.branches[name]; ok {
		return true, nil
	}
	return r.remotes[name], nil
}

func (r *Repo) Checkout(_ context.Context, name string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.branches[name]; !ok {
		return fmt.Errorf("demo: branch %q does not exist", name)
	}
	r.current = name
	return nil
}

func (r *Repo) resolve(ref string) (string, bool) {
	if id, ok := r.branches[ref]; ok {
		return id, true
	}
	if _, ok := r.commits[ref]; ok {
		return ref, true
	}
	return "", false
}

func (r *Repo) TreeIDOf(_ context.Context, ref string) (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	id, ok := r.resolve(ref)
	if !ok {
		return "", fmt.Errorf("demo: unknown ref %q", ref)
	}
	return r.commits[id].tree, nil
}

func (r *Repo) HeadCommitID(ctx context.Context) (string, error) {
	r.mu.Lock()
	current := r.current
	r.mu.Unlock()
	return r.ResolveCommit(ctx, current)
}

func (r *Repo) ResolveCommit(_ context.Context, ref string) (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	id, ok := r.resolve(ref)
	if !ok {
		return "", fmt.Errorf("demo: unknown ref %q", ref)
	}
	return id, nil
}

func (r *Repo) WorkingDirDirty(context.Context) (bool, error) { return false, nil }
func (r *Repo) RepoStateClean(context.Context) (bool, error)  { return true, nil }

func (r *Repo) ancestors(id string) map[string]bool {
	seen := map[string]bool{}
	stack := []string{id}
	for len(stack) > 0 {
		cur := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if cur == "" || seen[cur] {
			continue
		}
		seen[cur] = true
		if c, ok := r.commits[cur]; ok {
			stack = append(stack, c.parent, c.parent2)
		}
	}
	return seen
}

func (r *Repo) IsAncestor(_ context.Context, ancestor, descendant string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	aID, ok := r.resolve(ancestor)
	if !ok {
		return false, fmt.Errorf("demo: unknown ref %q", ancestor)
	}
	dID, ok := r.resolve(descendant)
	if !ok {
		return false, fmt.Errorf("demo: unknown ref %q", descendant)
	}
	return r.ancestors(dID)[aID], nil
}

func (r *Repo) MergeBase(_ context.Context, a, b string) (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.mergeBase(a, b)
}

func (r *Repo) mergeBase(a, b string) (string, error) {
	aID, ok := r.resolve(a)
	if !ok {
		return "", fmt.Errorf("demo: unknown ref %q", a)
	}
	bID, ok := r.resolve(b)
	if !ok {
		return "", fmt.Errorf("demo: unknown ref %q", b)
	}
	aAnc := r.ancestors(aID)
	// walk b's history breadth-first so the first shared commit found is the nearest one
	visited := map[string]bool{}
	queue := []string{bID}
	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]
		if cur == "" || visited[cur] {
			continue
		}
		visited[cur] = true
		if aAnc[cur] {
			return cur, nil
		}
		if c, ok := r.commits[cur]; ok {
			queue = append(queue, c.parent, c.parent2)
		}
	}
	return "", fmt.Errorf("demo: no common ancestor between %q and %q", a, b)
}

// MergeBaseForkPoint has no reflog to consult in the demo model, so it is identical to MergeBase.
func (r *Repo) MergeBaseForkPoint(ctx context.Context, a, b string) (string, error) {
	return r.MergeBase(ctx, a, b)
}

func (r *Repo) GraphAheadBehind(_ context.Context, a, b string) (int, int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	aID, ok := r.resolve(a)
	if !ok {
		return 0, 0, fmt.Errorf("demo: unknown ref %q", a)
	}
	bID, ok := r.resolve(b)
	if !ok {
		return 0, 0, fmt.Errorf("demo: unknown ref %q", b)
	}
	base, err := r.mergeBase(a, b)
	if err != nil {
		return 0, 0, err
	}
	ahead := len(r.ancestors(bID)) - len(r.ancestors(base))
	behind := len(r.ancestors(aID)) - len(r.ancestors(base))
	if ahead < 0 {
		ahead = 0
	}
	if behind < 0 {
		behind = 0
	}
	return ahead, behind, nil
}

func (r *Repo) ResetHard(_ context.Context, target string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	id, ok := r.resolve(target)
	if !ok {
		return fmt.Errorf("demo: unknown ref %q", target)
	}
	r.branches[r.current] = id
	return nil
}

func (r *Repo) RunRebase(_ context.Context, onto, _, branch string, _ bool) (gitops.RebaseOutcome, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	ontoID, ok := r.resolve(onto)
	if !ok {
		return gitops.RebaseClean, fmt.Errorf("demo: unknown ref %q", onto)
	}
	branchID, ok := r.branches[branch]
	if !ok {
		return gitops.RebaseClean, fmt.Errorf("demo: unknown branch %q", branch)
	}
	if strings.Contains(branch, "conflict") {
		return gitops.RebaseConflictOutcome, nil
	}
	newID := r.newCommit(ontoID, "", r.commits[branchID].message)
	r.branches[branch] = newID
	r.current = branch
	return gitops.RebaseClean, nil
}

// RebaseContinue always succeeds: the demo model never actually leaves a rebase half-applied.
func (r *Repo) RebaseContinue(context.Context) (gitops.RebaseOutcome, error) {
	return gitops.RebaseClean, nil
}

func (r *Repo) RebaseAbort(context.Context) error { return nil }

func (r *Repo) RunMerge(_ context.Context, upstream string, _ []string) (gitops.MergeOutcome, string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	upstreamID, ok := r.resolve(upstream)
	if !ok {
		return gitops.MergeSuccess, "", fmt.Errorf("demo: unknown ref %q", upstream)
	}
	currentID := r.branches[r.current]
	if r.ancestors(currentID)[upstreamID] {
		return gitops.MergeUpToDate, "Already up to date.", nil
	}
	if strings.Contains(r.current, "conflict") {
		return gitops.MergeConflictOutcome, "CONFLICT (content): demo conflict", nil
	}
	merged := r.newCommit(currentID, upstreamID, fmt.Sprintf("merge %s into %s", upstream, r.current))
	r.branches[r.current] = merged
	return gitops.MergeSuccess, "", nil
}

func (r *Repo) Cherry(_ context.Context, parent, candidate string) ([]string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	parentID, ok := r.resolve(parent)
	if !ok {
		return nil, fmt.Errorf("demo: unknown ref %q", parent)
	}
	candID, ok := r.resolve(candidate)
	if !ok {
		return nil, fmt.Errorf("demo: unknown ref %q", candidate)
	}
	if r.ancestors(parentID)[candID] {
		return []string{"- " + candID}, nil
	}
	return []string{"+ " + candID}, nil
}

func (r *Repo) SynthCommit(_ context.Context, tree, parent, message string) (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	parentID, ok := r.resolve(parent)
	if !ok {
		return "", fmt.Errorf("demo: unknown ref %q", parent)
	}
	r.seq++
	id := fmt.Sprintf("c%d", r.seq)
	r.commits[id] = &commitNode{id: id, parent: parentID, tree: tree, message: message}
	return id, nil
}

func (r *Repo) ForceBranch(_ context.Context, name, commit string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	id, ok := r.resolve(commit)
	if !ok {
		return fmt.Errorf("demo: unknown ref %q", commit)
	}
	r.branches[name] = id
	return nil
}

func (r *Repo) DeleteBranch(_ context.Context, name string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.branches, name)
	return nil
}

func (r *Repo) Push(_ context.Context, branch string, force bool) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.remotes[branch] = true
	r.pushed = append(r.pushed, fmt.Sprintf("%s(force=%v)", branch, force))
	return nil
}

func (r *Repo) ConfigGet(_ context.Context, key string) (string, bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	v, ok := r.configs[key]
	return v, ok, nil
}

func (r *Repo) ConfigSet(_ context.Context, key, value string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.configs[key] = value
	return nil
}

func (r *Repo) ConfigDelete(_ context.Context, key string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.configs, key)
	return nil
}

func (r *Repo) ConfigScan(_ context.Context, keyRegex string) ([]gitops.ConfigEntry, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	re, err := regexp.Compile(keyRegex)
	if err != nil {
		return nil, err
	}
	var out []gitops.ConfigEntry
	for k, v := range r.configs {
		if re.MatchString(k) {
			out = append(out, gitops.ConfigEntry{Key: k, Value: v})
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Key < out[j].Key })
	return out, nil
}

func (r *Repo) PrivateDirPath(context.Context) (string, error) {
	return "demo-git-dir", nil
}

func (r *Repo) CommitStatFor(_ context.Context, _, ref string) (gitops.CommitStat, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	id, ok := r.resolve(ref)
	if !ok {
		return gitops.CommitStat{}, fmt.Errorf("demo: unknown ref %q", ref)
	}
	return gitops.CommitStat{Message: r.commits[id].message, FilesChanged: 1, Insertions: 10, Deletions: 2}, nil
}
