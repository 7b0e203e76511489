package demo

import (
	"context"

	"github.com/chainctl/chain/internal/chain"
)

// seedBranch names one commit/chain-membership step of the canned demo scenario.
type seedBranch struct {
	Name   string
	Parent string
}

// demoBranches is a small auth feature stack: three branches atop main, the way a real chain
// init/add sequence would build one up.
var demoBranches = []seedBranch{
	{Name: "feature/auth-base", Parent: "main"},
	{Name: "feature/auth-validation", Parent: "feature/auth-base"},
	{Name: "feature/auth-login", Parent: "feature/auth-validation"},
}

// NewSeededRepo builds a demo Repo with demoBranches already committed and registered as a
// single chain named "auth", for `chain status`/`chain list` screenshots.
func NewSeededRepo(ctx context.Context) (*Repo, error) {
	repo := NewRepo()
	for _, b := range demoBranches {
		repo.Seed(b.Name, b.Parent)
	}

	mgr := chain.NewManager(repo)
	for _, b := range demoBranches {
		if _, err := mgr.Setup(ctx, "auth", "main", b.Name, chain.Last()); err != nil {
			return nil, err
		}
	}
	return repo, nil
}
