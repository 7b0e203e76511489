// Package scenario provides a high-level test scenario that combines a Scene and a chain
// Manager to give a terse, fluent API for integration tests.
package scenario

import (
	"context"
	"os"
	"os/exec"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/chainctl/chain/internal/cascade"
	"github.com/chainctl/chain/internal/chain"
	"github.com/chainctl/chain/internal/gitops"
	"github.com/chainctl/chain/testhelpers"
)

// Scenario combines a Scene with a chain.Manager to provide a terse API for integration tests.
type Scenario struct {
	T          *testing.T
	Scene      *testhelpers.Scene
	Repo       gitops.Repo
	Mgr        *chain.Manager
	BinaryPath string
}

// NewScenario creates a new Scenario with an optional setup function.
// NOTE: not safe for parallel tests, since it uses t.Setenv and NewScene.
func NewScenario(t *testing.T, setup testhelpers.SceneSetup) *Scenario {
	t.Helper()
	t.Setenv("CHAIN_NON_INTERACTIVE", "true")

	scene := testhelpers.NewScene(t, setup)
	repo := gitops.NewShellRepo(scene.Dir)

	return &Scenario{
		T:     t,
		Scene: scene,
		Repo:  repo,
		Mgr:   chain.NewManager(repo),
	}
}

// NewScenarioParallel creates a new Scenario that is safe for parallel tests.
// It does not set global environment variables. Use this for tests that primarily call the
// CLI binary rather than the Manager directly.
func NewScenarioParallel(t *testing.T, setup testhelpers.SceneSetup) *Scenario {
	t.Helper()
	scene := testhelpers.NewSceneParallel(t, setup)
	repo := gitops.NewShellRepo(scene.Dir)
	return &Scenario{
		T:     t,
		Scene: scene,
		Repo:  repo,
		Mgr:   chain.NewManager(repo),
	}
}

func (s *Scenario) ctx() context.Context {
	return context.Background()
}

// WithInitialCommit creates an initial commit on the trunk branch.
func (s *Scenario) WithInitialCommit() *Scenario {
	s.T.Helper()
	err := s.Scene.Repo.CreateChangeAndCommit("initial", "init")
	require.NoError(s.T, err)
	return s
}

// WithUncommittedChange creates an uncommitted change in the repository.
func (s *Scenario) WithUncommittedChange(name string) *Scenario {
	s.T.Helper()
	err := s.Scene.Repo.CreateChange("unstaged content", name, true)
	require.NoError(s.T, err)
	return s
}

// RunGit runs a git command in the scenario's repository.
func (s *Scenario) RunGit(args ...string) *Scenario {
	s.T.Helper()
	err := s.Scene.Repo.RunGitCommand(args...)
	require.NoError(s.T, err)
	return s
}

// Checkout checks out a branch.
func (s *Scenario) Checkout(branch string) *Scenario {
	s.T.Helper()
	err := s.Scene.Repo.CheckoutBranch(branch)
	require.NoError(s.T, err)
	return s
}

// CreateBranch creates and checks out a new branch.
func (s *Scenario) CreateBranch(name string) *Scenario {
	s.T.Helper()
	err := s.Scene.Repo.CreateAndCheckoutBranch(name)
	require.NoError(s.T, err)
	return s
}

// Commit creates an empty commit with the given message.
func (s *Scenario) Commit(message string) *Scenario {
	s.T.Helper()
	err := s.Scene.Repo.RunGitCommand("commit", "--allow-empty", "-m", message)
	require.NoError(s.T, err)
	return s
}

// CommitChange creates a file change and commits it.
func (s *Scenario) CommitChange(name, message string) *Scenario {
	s.T.Helper()
	err := s.Scene.Repo.CreateChangeAndCommit(message, name)
	require.NoError(s.T, err)
	return s
}

// Setup creates chainName rooted at rootBranch with branchName as its first member.
func (s *Scenario) Setup(chainName, rootBranch, branchName string) *Scenario {
	s.T.Helper()
	_, err := s.Mgr.Setup(s.ctx(), chainName, rootBranch, branchName, chain.Last())
	require.NoError(s.T, err, "failed to set up chain %s", chainName)
	return s
}

// Add adds branchName to the end of chainName.
func (s *Scenario) Add(chainName, rootBranch, branchName string) *Scenario {
	s.T.Helper()
	_, err := s.Mgr.Setup(s.ctx(), chainName, rootBranch, branchName, chain.Last())
	require.NoError(s.T, err, "failed to add %s to chain %s", branchName, chainName)
	return s
}

// WithChain builds chainName rooted at rootBranch, creating and committing a branch for each
// entry of members in order.
func (s *Scenario) WithChain(chainName, rootBranch string, members ...string) *Scenario {
	s.T.Helper()
	s.Checkout(rootBranch)
	for i, member := range members {
		s.CreateBranch(member)
		s.CommitChange(member, "change on "+member)
		if i == 0 {
			s.Setup(chainName, rootBranch, member)
		} else {
			s.Add(chainName, rootBranch, member)
		}
	}
	return s
}

// ExpectChainOrder asserts chainName's members appear in exactly the given order.
func (s *Scenario) ExpectChainOrder(chainName string, expected ...string) *Scenario {
	s.T.Helper()
	c, err := s.Mgr.Get(s.ctx(), chainName)
	require.NoError(s.T, err)
	names := make([]string, len(c.Branches))
	for i, b := range c.Branches {
		names[i] = b.Name
	}
	require.Equal(s.T, expected, names, "chain %s member order", chainName)
	return s
}

// RebaseCascade runs a cascade rebase over chainName and requires it to succeed.
func (s *Scenario) RebaseCascade(chainName string) *cascade.Report {
	s.T.Helper()
	engine := cascade.NewRebaseEngine(s.Repo, s.Mgr)
	report, err := engine.Run(s.ctx(), cascade.RebaseOptions{ChainName: chainName})
	require.NoError(s.T, err, "cascade rebase of %s failed", chainName)
	return report
}

// MergeCascade runs a cascade merge over chainName and requires it to succeed.
func (s *Scenario) MergeCascade(chainName string) *cascade.Report {
	s.T.Helper()
	engine := cascade.NewMergeEngine(s.Repo, s.Mgr)
	report, err := engine.Run(s.ctx(), cascade.MergeOptions{ChainName: chainName, ForkPointMode: true})
	require.NoError(s.T, err, "cascade merge of %s failed", chainName)
	return report
}

// WithBinaryPath sets the path to the chain binary for RunCli methods.
func (s *Scenario) WithBinaryPath(path string) *Scenario {
	s.BinaryPath = path
	return s
}

// RunCli executes a chain CLI command in the scenario's repository.
func (s *Scenario) RunCli(args ...string) *Scenario {
	s.T.Helper()
	if s.BinaryPath == "" {
		s.T.Fatal("BinaryPath not set. Call WithBinaryPath first.")
	}
	cmd := exec.Command(s.BinaryPath, args...)
	cmd.Dir = s.Scene.Dir
	cmd.Env = append(os.Environ(), "CHAIN_NON_INTERACTIVE=true")
	output, err := cmd.CombinedOutput()
	require.NoError(s.T, err, "CLI command failed: chain %v\nOutput: %s", args, string(output))
	return s
}

// RunCliAndGetOutput executes a chain CLI command and returns its output.
func (s *Scenario) RunCliAndGetOutput(args ...string) (string, error) {
	if s.BinaryPath == "" {
		return "", os.ErrInvalid
	}
	cmd := exec.Command(s.BinaryPath, args...)
	cmd.Dir = s.Scene.Dir
	cmd.Env = append(os.Environ(), "CHAIN_NON_INTERACTIVE=true")
	output, err := cmd.CombinedOutput()
	return string(output), err
}

// RunExpectError executes a chain CLI command and expects it to fail.
func (s *Scenario) RunExpectError(args ...string) *Scenario {
	s.T.Helper()
	if s.BinaryPath == "" {
		s.T.Fatal("BinaryPath not set")
	}
	cmd := exec.Command(s.BinaryPath, args...)
	cmd.Dir = s.Scene.Dir
	cmd.Env = append(os.Environ(), "CHAIN_NON_INTERACTIVE=true")
	_, err := cmd.CombinedOutput()
	require.Error(s.T, err, "expected CLI command to fail: chain %v", args)
	return s
}

// ExpectBranch asserts that the current branch is as expected.
func (s *Scenario) ExpectBranch(expected string) *Scenario {
	s.T.Helper()
	actual, err := s.Scene.Repo.CurrentBranchName()
	require.NoError(s.T, err)
	require.Equal(s.T, expected, actual)
	return s
}
