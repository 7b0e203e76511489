package gitops

import (
	"bytes"
	"context"
	"os"
	"os/exec"
	"strings"

	"github.com/chainctl/chain/internal/chainerrors"
)

// Discover locates the working tree root for the repository containing the current directory
// and returns a ready-to-use ShellRepo rooted there. It rejects bare repositories (RepoOps
// assumes a working tree) and directories outside any git repository.
func Discover(ctx context.Context) (*ShellRepo, error) {
	wd, err := os.Getwd()
	if err != nil {
		return nil, err
	}

	bare, err := runIn(ctx, wd, "rev-parse", "--is-bare-repository")
	if err != nil {
		return nil, chainerrors.New(chainerrors.KindNotInRepository, "not inside a git repository")
	}
	if strings.TrimSpace(bare) == "true" {
		return nil, chainerrors.New(chainerrors.KindBareRepository, "repository has no working tree")
	}

	root, err := runIn(ctx, wd, "rev-parse", "--show-toplevel")
	if err != nil {
		return nil, chainerrors.New(chainerrors.KindNotInRepository, "not inside a git repository")
	}
	return NewShellRepo(strings.TrimSpace(root)), nil
}

func runIn(ctx context.Context, dir string, args ...string) (string, error) {
	cmd := exec.CommandContext(ctx, "git", args...)
	cmd.Dir = dir
	var out, errOut bytes.Buffer
	cmd.Stdout = &out
	cmd.Stderr = &errOut
	if err := cmd.Run(); err != nil {
		return "", err
	}
	return out.String(), nil
}
