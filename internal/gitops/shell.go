package gitops

import (
	"bytes"
	"context"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/object"

	"github.com/chainctl/chain/internal/chainerrors"
)

// DefaultCommandTimeout bounds any single git invocation; the engine does not otherwise time
// out or cancel VCS operations, but an unbounded subprocess still needs a backstop.
const DefaultCommandTimeout = 5 * time.Minute

// ShellRepo is the real Repo implementation: it shells out to the git binary for everything
// that mutates refs/working tree or lacks a clean go-git equivalent, and uses go-git for
// read-only plumbing (merge-base) the way the library is naturally suited for.
type ShellRepo struct {
	dir string
}

// NewShellRepo builds a ShellRepo rooted at dir (the working tree root, not the .git directory).
func NewShellRepo(dir string) *ShellRepo {
	return &ShellRepo{dir: dir}
}

// Dir returns the working tree root this ShellRepo operates on.
func (r *ShellRepo) Dir() string {
	return r.dir
}

func (r *ShellRepo) run(ctx context.Context, args ...string) (string, error) {
	out, _, err := r.runRaw(ctx, args...)
	return strings.TrimSpace(out), err
}

func (r *ShellRepo) runRaw(ctx context.Context, args ...string) (stdout, stderr string, err error) {
	if ctx == nil {
		ctx = context.Background()
	}
	if _, ok := ctx.Deadline(); !ok {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, DefaultCommandTimeout)
		defer cancel()
	}
	cmd := exec.CommandContext(ctx, "git", args...)
	cmd.Dir = r.dir
	var outBuf, errBuf bytes.Buffer
	cmd.Stdout = &outBuf
	cmd.Stderr = &errBuf
	runErr := cmd.Run()
	if runErr != nil {
		exitStatus := -1
		if ee, ok := runErr.(*exec.ExitError); ok {
			exitStatus = ee.ExitCode()
		}
		return outBuf.String(), errBuf.String(), chainerrors.VcsCommandFailed("git", args, outBuf.String(), errBuf.String(), exitStatus, runErr)
	}
	return outBuf.String(), errBuf.String(), nil
}

func (r *ShellRepo) gitDir(ctx context.Context) (string, error) {
	out, err := r.run(ctx, "rev-parse", "--git-dir")
	if err != nil {
		return "", err
	}
	if filepath.IsAbs(out) {
		return out, nil
	}
	return filepath.Join(r.dir, out), nil
}

func (r *ShellRepo) HeadBranchName(ctx context.Context) (string, bool, error) {
	out, err := r.run(ctx, "symbolic-ref", "--short", "-q", "HEAD")
	if err != nil {
		return "", false, nil // detached or unborn: not an error condition
	}
	if out == "" {
		return "", false, nil
	}
	return out, true, nil
}

func (r *ShellRepo) LocalBranchExists(ctx context.Context, name string) (bool, error) {
	_, err := r.run(ctx, "show-ref", "--verify", "--quiet", "refs/heads/"+name)
	return err == nil, nil
}

func (r *ShellRepo) AnyBranchExists(ctx context.Context, name string) (bool, error) {
	if ok, _ := r.LocalBranchExists(ctx, name); ok {
		return true, nil
	}
	out, err := r.run(ctx, "for-each-ref", "--format=%(refname)", "refs/remotes/*/"+name)
	if err != nil {
		return false, nil //nolint:nilerr // no matching remote-tracking ref
	}
	return out != "", nil
}

func (r *ShellRepo) Checkout(ctx context.Context, name string) error {
	_, err := r.run(ctx, "checkout", name)
	return err
}

func (r *ShellRepo) TreeIDOf(ctx context.Context, ref string) (string, error) {
	return r.run(ctx, "rev-parse", "--verify", ref+"^{tree}")
}

func (r *ShellRepo) HeadCommitID(ctx context.Context) (string, error) {
	return r.run(ctx, "rev-parse", "HEAD")
}

func (r *ShellRepo) ResolveCommit(ctx context.Context, ref string) (string, error) {
	return r.run(ctx, "rev-parse", "--verify", ref)
}

func (r *ShellRepo) WorkingDirDirty(ctx context.Context) (bool, error) {
	out, err := r.run(ctx, "status", "--porcelain")
	if err != nil {
		return false, err
	}
	return out != "", nil
}

func (r *ShellRepo) RepoStateClean(ctx context.Context) (bool, error) {
	dir, err := r.gitDir(ctx)
	if err != nil {
		return false, err
	}
	for _, marker := range []string{"rebase-merge", "rebase-apply", "MERGE_HEAD", "CHERRY_PICK_HEAD", "BISECT_LOG"} {
		if _, statErr := os.Stat(filepath.Join(dir, marker)); statErr == nil {
			return false, nil
		}
	}
	return true, nil
}

func (r *ShellRepo) IsAncestor(ctx context.Context, ancestor, descendant string) (bool, error) {
	_, err := r.run(ctx, "merge-base", "--is-ancestor", ancestor, descendant)
	return err == nil, nil
}

func (r *ShellRepo) openGoGit() (*git.Repository, error) {
	return git.PlainOpen(r.dir)
}

func (r *ShellRepo) MergeBase(ctx context.Context, a, b string) (string, error) {
	repo, err := r.openGoGit()
	if err != nil {
		return r.mergeBaseShell(ctx, a, b)
	}
	commitA, errA := resolveCommit(repo, a)
	commitB, errB := resolveCommit(repo, b)
	if errA != nil || errB != nil {
		return r.mergeBaseShell(ctx, a, b)
	}
	bases, err := commitA.MergeBase(commitB)
	if err != nil || len(bases) == 0 {
		return r.mergeBaseShell(ctx, a, b)
	}
	return bases[0].Hash.String(), nil
}

func (r *ShellRepo) mergeBaseShell(ctx context.Context, a, b string) (string, error) {
	return r.run(ctx, "merge-base", a, b)
}

// resolveCommit resolves ref (branch name, tag, or hash) to its commit object via go-git,
// trying revision parsing first and falling back to a branch reference.
func resolveCommit(repo *git.Repository, ref string) (*object.Commit, error) {
	if rev, err := repo.ResolveRevision(plumbing.Revision(ref)); err == nil {
		return repo.CommitObject(*rev)
	}
	branchRef, err := repo.Reference(plumbing.NewBranchReferenceName(ref), true)
	if err != nil {
		return nil, err
	}
	return repo.CommitObject(branchRef.Hash())
}

func (r *ShellRepo) MergeBaseForkPoint(ctx context.Context, a, b string) (string, error) {
	out, err := r.run(ctx, "merge-base", "--fork-point", a, b)
	if err != nil || out == "" {
		return r.MergeBase(ctx, a, b)
	}
	return out, nil
}

func (r *ShellRepo) GraphAheadBehind(ctx context.Context, a, b string) (int, int, error) {
	out, err := r.run(ctx, "rev-list", "--left-right", "--count", a+"..."+b)
	if err != nil {
		return 0, 0, err
	}
	fields := strings.Fields(out)
	if len(fields) != 2 {
		return 0, 0, chainerrors.Internal("unexpected rev-list --count output %q", out)
	}
	ahead, _ := strconv.Atoi(fields[1])
	behind, _ := strconv.Atoi(fields[0])
	return ahead, behind, nil
}

func (r *ShellRepo) ResetHard(ctx context.Context, target string) error {
	_, err := r.run(ctx, "reset", "--hard", target)
	return err
}

func (r *ShellRepo) RunRebase(ctx context.Context, onto, upstream, branch string, keepEmpty bool) (RebaseOutcome, error) {
	args := []string{"rebase"}
	if keepEmpty {
		args = append(args, "--keep-empty")
	}
	args = append(args, "--onto", onto, upstream, branch)
	_, err := r.run(ctx, args...)
	if err == nil {
		return RebaseClean, nil
	}
	clean, cleanErr := r.RepoStateClean(ctx)
	if cleanErr == nil && !clean {
		return RebaseConflictOutcome, nil
	}
	return RebaseConflictOutcome, err
}

func (r *ShellRepo) RebaseContinue(ctx context.Context) (RebaseOutcome, error) {
	_, err := r.run(ctx, "-c", "core.editor=true", "rebase", "--continue")
	if err == nil {
		return RebaseClean, nil
	}
	clean, cleanErr := r.RepoStateClean(ctx)
	if cleanErr == nil && !clean {
		return RebaseConflictOutcome, nil
	}
	return RebaseConflictOutcome, err
}

func (r *ShellRepo) RebaseAbort(ctx context.Context) error {
	_, err := r.run(ctx, "rebase", "--abort")
	return err
}

func (r *ShellRepo) RunMerge(ctx context.Context, upstream string, flags []string) (MergeOutcome, string, error) {
	args := append([]string{"merge"}, flags...)
	args = append(args, upstream)
	out, stderr, err := r.runRaw(ctx, args...)
	combined := out + stderr
	if err == nil {
		if strings.Contains(combined, "Already up to date") {
			return MergeUpToDate, combined, nil
		}
		return MergeSuccess, combined, nil
	}
	clean, cleanErr := r.RepoStateClean(ctx)
	if cleanErr == nil && !clean {
		return MergeConflictOutcome, combined, nil
	}
	return MergeConflictOutcome, combined, err
}

func (r *ShellRepo) Cherry(ctx context.Context, parent, candidate string) ([]string, error) {
	out, err := r.run(ctx, "cherry", parent, candidate)
	if err != nil {
		return nil, err
	}
	if out == "" {
		return nil, nil
	}
	return strings.Split(out, "\n"), nil
}

func (r *ShellRepo) SynthCommit(ctx context.Context, tree, parent, message string) (string, error) {
	return r.run(ctx, "commit-tree", tree, "-p", parent, "-m", message)
}

func (r *ShellRepo) ForceBranch(ctx context.Context, name, commit string) error {
	_, err := r.run(ctx, "branch", "-f", name, commit)
	return err
}

func (r *ShellRepo) DeleteBranch(ctx context.Context, name string) error {
	_, err := r.run(ctx, "branch", "-D", name)
	return err
}

func (r *ShellRepo) Push(ctx context.Context, branch string, force bool) error {
	args := []string{"push"}
	if force {
		args = append(args, "--force-with-lease")
	}
	args = append(args, "origin", branch)
	_, err := r.run(ctx, args...)
	return err
}

func (r *ShellRepo) ConfigGet(ctx context.Context, key string) (string, bool, error) {
	out, err := r.run(ctx, "config", "--local", "--get", key)
	if err != nil {
		return "", false, nil //nolint:nilerr // git config exits 1 when the key is absent
	}
	return out, true, nil
}

func (r *ShellRepo) ConfigSet(ctx context.Context, key, value string) error {
	_, err := r.run(ctx, "config", "--local", key, value)
	return err
}

func (r *ShellRepo) ConfigDelete(ctx context.Context, key string) error {
	_, err := r.run(ctx, "config", "--local", "--unset-all", key)
	if err != nil {
		// Unsetting an absent key is treated as success.
		return nil
	}
	return nil
}

func (r *ShellRepo) ConfigScan(ctx context.Context, keyRegex string) ([]ConfigEntry, error) {
	out, err := r.run(ctx, "config", "--local", "--get-regexp", keyRegex)
	if err != nil {
		return nil, nil //nolint:nilerr // git config exits 1 when nothing matches
	}
	if out == "" {
		return nil, nil
	}
	var entries []ConfigEntry
	for _, line := range strings.Split(out, "\n") {
		if line == "" {
			continue
		}
		parts := strings.SplitN(line, " ", 2)
		if len(parts) != 2 {
			continue
		}
		entries = append(entries, ConfigEntry{Key: parts[0], Value: parts[1]})
	}
	return entries, nil
}

func (r *ShellRepo) PrivateDirPath(ctx context.Context) (string, error) {
	return r.gitDir(ctx)
}

func (r *ShellRepo) CommitStatFor(ctx context.Context, parent, ref string) (CommitStat, error) {
	message, err := r.run(ctx, "show", "-s", "--format=%s", ref)
	if err != nil {
		return CommitStat{}, err
	}
	shortstat, err := r.run(ctx, "diff", "--shortstat", parent, ref)
	if err != nil {
		return CommitStat{}, err
	}
	stat := CommitStat{Message: message}
	stat.FilesChanged, stat.Insertions, stat.Deletions = parseShortstat(shortstat)
	return stat, nil
}

// parseShortstat parses a line like:
// " 3 files changed, 10 insertions(+), 2 deletions(-)"
func parseShortstat(s string) (files, insertions, deletions int) {
	for _, part := range strings.Split(s, ",") {
		part = strings.TrimSpace(part)
		fields := strings.Fields(part)
		if len(fields) == 0 {
			continue
		}
		n, err := strconv.Atoi(fields[0])
		if err != nil {
			continue
		}
		switch {
		case strings.Contains(part, "file"):
			files = n
		case strings.Contains(part, "insertion"):
			insertions = n
		case strings.Contains(part, "deletion"):
			deletions = n
		}
	}
	return
}
