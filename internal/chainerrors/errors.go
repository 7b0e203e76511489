// Package chainerrors provides sentinel errors and structured error kinds for chain operations.
// Use errors.Is() to check for a kind and errors.As() to recover the carried details.
package chainerrors

import (
	"errors"
	"fmt"
)

// Kind identifies one of the error categories a chain operation can fail with.
type Kind int

const (
	// KindInternal covers malformed config entries or invariant violations.
	KindInternal Kind = iota
	KindNotInRepository
	KindBareRepository
	KindBranchNotFound
	KindRootBranchNotFound
	KindBranchNotInChain
	KindChainNotFound
	KindChainAlreadyExists
	KindBranchIsRoot
	KindDuplicateBranchInSetup
	KindDirtyWorkingDirectory
	KindRepositoryNotClean
	KindMergeConflict
	KindRebaseConflict
	KindVcsCommandFailed
)

// Sentinel errors, one per Kind, usable directly with errors.Is.
var (
	ErrInternal               = errors.New("internal error")
	ErrNotInRepository        = errors.New("not inside a git repository")
	ErrBareRepository         = errors.New("repository has no working tree")
	ErrBranchNotFound         = errors.New("branch not found")
	ErrRootBranchNotFound     = errors.New("root branch not found")
	ErrBranchNotInChain       = errors.New("branch is not part of any chain")
	ErrChainNotFound          = errors.New("chain not found")
	ErrChainAlreadyExists     = errors.New("chain already exists")
	ErrBranchIsRoot           = errors.New("branch cannot be its own chain root")
	ErrDuplicateBranchInSetup = errors.New("branch listed more than once")
	ErrDirtyWorkingDirectory  = errors.New("working directory is not clean")
	ErrRepositoryNotClean     = errors.New("repository has an operation in progress")
	ErrMergeConflict          = errors.New("merge conflict")
	ErrRebaseConflict         = errors.New("rebase conflict")
	ErrVcsCommandFailed       = errors.New("vcs command failed")
)

var sentinelByKind = map[Kind]error{
	KindInternal:               ErrInternal,
	KindNotInRepository:        ErrNotInRepository,
	KindBareRepository:         ErrBareRepository,
	KindBranchNotFound:         ErrBranchNotFound,
	KindRootBranchNotFound:     ErrRootBranchNotFound,
	KindBranchNotInChain:       ErrBranchNotInChain,
	KindChainNotFound:          ErrChainNotFound,
	KindChainAlreadyExists:     ErrChainAlreadyExists,
	KindBranchIsRoot:           ErrBranchIsRoot,
	KindDuplicateBranchInSetup: ErrDuplicateBranchInSetup,
	KindDirtyWorkingDirectory:  ErrDirtyWorkingDirectory,
	KindRepositoryNotClean:     ErrRepositoryNotClean,
	KindMergeConflict:          ErrMergeConflict,
	KindRebaseConflict:         ErrRebaseConflict,
	KindVcsCommandFailed:       ErrVcsCommandFailed,
}

// Error is the structured error carried through the chain/cascade packages.
type Error struct {
	Kind    Kind
	Message string
	Cause   error
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Cause
}

// Is makes errors.Is(err, ErrXxx) match the sentinel for e.Kind.
func (e *Error) Is(target error) bool {
	return sentinelByKind[e.Kind] == target
}

// New builds an *Error of the given kind with a formatted message.
func New(kind Kind, format string, args ...any) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

// Wrap builds an *Error of the given kind, wrapping an underlying cause.
func Wrap(kind Kind, cause error, format string, args ...any) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...), Cause: cause}
}

// BranchNotFound reports that the named branch does not exist locally.
func BranchNotFound(branch string) *Error {
	return New(KindBranchNotFound, "branch %q does not exist", branch)
}

// RootBranchNotFound reports that the named root branch does not exist locally.
func RootBranchNotFound(branch string) *Error {
	return New(KindRootBranchNotFound, "root branch %q does not exist", branch)
}

// BranchNotInChain reports that branch is not a chain member, with the init hint.
func BranchNotInChain(branch string) *Error {
	return New(KindBranchNotInChain, "branch %q is not part of any chain (run \"chain init\" first)", branch)
}

// ChainNotFound reports that no chain with the given name exists.
func ChainNotFound(name string) *Error {
	return New(KindChainNotFound, "chain %q not found", name)
}

// ChainAlreadyExists reports a naming collision on setup/rename.
func ChainAlreadyExists(name string) *Error {
	return New(KindChainAlreadyExists, "chain %q already exists", name)
}

// BranchIsRoot reports an attempt to make a branch both a member and its own root.
func BranchIsRoot(branch string) *Error {
	return New(KindBranchIsRoot, "branch %q cannot be a member of a chain rooted at itself", branch)
}

// DuplicateBranchInSetup reports a branch listed more than once in a setup call.
func DuplicateBranchInSetup(branch string) *Error {
	return New(KindDuplicateBranchInSetup, "branch %q was listed more than once", branch)
}

// DirtyWorkingDirectory reports uncommitted changes blocking a cascade.
func DirtyWorkingDirectory() *Error {
	return New(KindDirtyWorkingDirectory, "working directory has uncommitted or untracked changes")
}

// RepositoryNotClean reports an unfinished VCS operation blocking a cascade.
func RepositoryNotClean() *Error {
	return New(KindRepositoryNotClean, "repository has an unfinished operation in progress (merge/rebase/cherry-pick/bisect)")
}

// MergeConflictError carries the branch pair and VCS message for a fatal merge conflict.
type MergeConflictError struct {
	Branch, Upstream, VCSMessage string
}

func (e *MergeConflictError) Error() string {
	return fmt.Sprintf("merge conflict merging %q into %q: %s", e.Upstream, e.Branch, e.VCSMessage)
}

func (e *MergeConflictError) Is(target error) bool { return target == ErrMergeConflict }

// MergeConflict constructs a MergeConflictError.
func MergeConflict(branch, upstream, vcsMessage string) *MergeConflictError {
	return &MergeConflictError{Branch: branch, Upstream: upstream, VCSMessage: vcsMessage}
}

// RebaseConflict reports a rebase conflict directing the user to continue/abort/skip.
func RebaseConflict(branch string) *Error {
	return New(KindRebaseConflict, "rebase conflict on %q: resolve and run \"chain rebase --continue\" (or --abort/--skip)", branch)
}

// VcsCommandFailedError carries the full detail of a failed VCS invocation.
type VcsCommandFailedError struct {
	Command          string
	Args             []string
	Stdout, Stderr   string
	ExitStatus       int
	Cause            error
}

func (e *VcsCommandFailedError) Error() string {
	msg := fmt.Sprintf("%s %v failed (exit %d)", e.Command, e.Args, e.ExitStatus)
	if e.Stderr != "" {
		msg += ": " + e.Stderr
	}
	return msg
}

func (e *VcsCommandFailedError) Unwrap() error       { return e.Cause }
func (e *VcsCommandFailedError) Is(target error) bool { return target == ErrVcsCommandFailed }

// VcsCommandFailed constructs a VcsCommandFailedError.
func VcsCommandFailed(command string, args []string, stdout, stderr string, exitStatus int, cause error) *VcsCommandFailedError {
	return &VcsCommandFailedError{Command: command, Args: args, Stdout: stdout, Stderr: stderr, ExitStatus: exitStatus, Cause: cause}
}

// Internal reports a bug-class invariant violation (e.g. a torn config record a self-heal path
// did not expect, or chain members disagreeing on root_branch).
func Internal(format string, args ...any) *Error {
	return New(KindInternal, format, args...)
}
