// Package runtime provides the per-invocation Context every chain CLI command runs against:
// the resolved repository, its chain manager, and a logger, bundled so command handlers take a
// single parameter instead of threading each dependency through individually.
package runtime

import (
	"context"
	"log/slog"
	"os"

	"github.com/chainctl/chain/internal/chain"
	"github.com/chainctl/chain/internal/chainerrors"
	"github.com/chainctl/chain/internal/gitops"
	"github.com/chainctl/chain/internal/obslog"
)

// Context bundles the dependencies a command needs: the underlying context.Context for
// cancellation/timeouts, the repository, its chain manager, and a logger.
type Context struct {
	context.Context
	Repo     gitops.Repo
	Mgr      *chain.Manager
	Logger   *slog.Logger
	RepoRoot string

	closeLog func() error
}

// Close releases resources opened for this Context (currently just the rotated log file, if
// one was configured).
func (c *Context) Close() error {
	if c.closeLog == nil {
		return nil
	}
	return c.closeLog()
}

// IsDemoMode reports whether CHAIN_DEMO is set, selecting the in-memory fake repo over the real
// git-backed one.
func IsDemoMode() bool {
	return os.Getenv("CHAIN_DEMO") != ""
}

// DemoRepoFactory is set by internal/demo's init to avoid a runtime -> demo -> runtime import
// cycle; GetContext calls it when IsDemoMode is true.
var DemoRepoFactory func() gitops.Repo

// GetContext is the entry point every cmd/chain command calls first: in demo mode it builds an
// in-memory fake repo, otherwise it discovers the real repository rooted at the current
// directory. Either way it attaches a logger and chain manager.
func GetContext(ctx context.Context) (*Context, error) {
	logger, closeLog, err := obslog.New(logFilePath(), os.Getenv("DEBUG") != "")
	if err != nil {
		return nil, err
	}

	if IsDemoMode() {
		if DemoRepoFactory == nil {
			return nil, chainerrors.New(chainerrors.KindInternal, "CHAIN_DEMO set but demo repo factory not registered")
		}
		repo := DemoRepoFactory()
		return &Context{
			Context:  ctx,
			Repo:     repo,
			Mgr:      chain.NewManager(repo),
			Logger:   logger,
			closeLog: closeLog,
		}, nil
	}

	repo, err := gitops.Discover(ctx)
	if err != nil {
		return nil, err
	}
	return &Context{
		Context:  ctx,
		Repo:     repo,
		Mgr:      chain.NewManager(repo),
		Logger:   logger,
		RepoRoot: repo.Dir(),
		closeLog: closeLog,
	}, nil
}

func logFilePath() string {
	return os.Getenv("CHAIN_LOG_FILE")
}
