// Package githubpr is a thin wrapper over the GitHub REST API for the optional PR-aware leaves
// of the chain CLI: looking up a branch's pull request for `chain status --pr` and
// `chain list --pr`, and opening one for `chain pr`. Nothing in the chain/cascade/gitops packages depends on this one.
package githubpr

import (
	"context"
	"fmt"
	"os"
	"regexp"

	"github.com/google/go-github/v62/github"
	"golang.org/x/oauth2"
)

// PullRequest is a trimmed projection of github.PullRequest, enough for status rendering and
// `chain pr` output without leaking the go-github types into the rest of the module.
type PullRequest struct {
	Number  int
	HTMLURL string
	Title   string
	State   string
	Draft   bool
	Base    string
	Head    string
}

// CreateOptions configures a new pull request.
type CreateOptions struct {
	Title string
	Body  string
	Head  string
	Base  string
	Draft bool
}

// Client is the PR capability the CLI consumes.
type Client interface {
	GetByBranch(ctx context.Context, branch string) (*PullRequest, bool, error)
	Create(ctx context.Context, opts CreateOptions) (*PullRequest, error)
}

// realClient implements Client against the real GitHub API.
type realClient struct {
	gh    *github.Client
	owner string
	repo  string
}

// NewRealClient builds a Client authenticated with token, against owner/repo.
func NewRealClient(ctx context.Context, owner, repo, token string) Client {
	ts := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: token})
	httpClient := oauth2.NewClient(ctx, ts)
	return &realClient{gh: github.NewClient(httpClient), owner: owner, repo: repo}
}

// TokenFromEnv reads GITHUB_TOKEN, the same variable `gh` and most CI runners use.
func TokenFromEnv() (string, bool) {
	v := os.Getenv("GITHUB_TOKEN")
	return v, v != ""
}

// NewFromEnv builds a real Client using TokenFromEnv; ok=false means no token is configured and
// PR features should be silently unavailable rather than an error: this is an optional feature.
func NewFromEnv(ctx context.Context, owner, repo string) (Client, bool) {
	token, ok := TokenFromEnv()
	if !ok {
		return nil, false
	}
	return NewRealClient(ctx, owner, repo, token), true
}

func (c *realClient) GetByBranch(ctx context.Context, branch string) (*PullRequest, bool, error) {
	prs, _, err := c.gh.PullRequests.List(ctx, c.owner, c.repo, &github.PullRequestListOptions{
		Head:        fmt.Sprintf("%s:%s", c.owner, branch),
		State:       "all",
		ListOptions: github.ListOptions{PerPage: 1},
	})
	if err != nil {
		return nil, false, fmt.Errorf("list pull requests for %s: %w", branch, err)
	}
	if len(prs) == 0 {
		return nil, false, nil
	}
	return toPullRequest(prs[0]), true, nil
}

func (c *realClient) Create(ctx context.Context, opts CreateOptions) (*PullRequest, error) {
	pr := &github.NewPullRequest{
		Title: github.String(opts.Title),
		Head:  github.String(opts.Head),
		Base:  github.String(opts.Base),
		Draft: github.Bool(opts.Draft),
	}
	if opts.Body != "" {
		pr.Body = github.String(opts.Body)
	}
	created, _, err := c.gh.PullRequests.Create(ctx, c.owner, c.repo, pr)
	if err != nil {
		return nil, fmt.Errorf("create pull request for %s: %w", opts.Head, err)
	}
	return toPullRequest(created), nil
}

func toPullRequest(pr *github.PullRequest) *PullRequest {
	out := &PullRequest{}
	if pr.Number != nil {
		out.Number = *pr.Number
	}
	if pr.HTMLURL != nil {
		out.HTMLURL = *pr.HTMLURL
	}
	if pr.Title != nil {
		out.Title = *pr.Title
	}
	if pr.State != nil {
		out.State = *pr.State
	}
	if pr.Draft != nil {
		out.Draft = *pr.Draft
	}
	if pr.Base != nil && pr.Base.Ref != nil {
		out.Base = *pr.Base.Ref
	}
	if pr.Head != nil && pr.Head.Ref != nil {
		out.Head = *pr.Head.Ref
	}
	return out
}

var (
	sshRemote   = regexp.MustCompile(`^git@[^:]+:([^/]+)/(.+?)(\.git)?$`)
	httpsRemote = regexp.MustCompile(`^https?://[^/]+/([^/]+)/(.+?)(\.git)?$`)
)

// ParseOwnerRepo extracts "owner", "repo" from a git remote URL in either SSH or HTTPS form.
func ParseOwnerRepo(remoteURL string) (owner, repo string, ok bool) {
	for _, re := range []*regexp.Regexp{sshRemote, httpsRemote} {
		if m := re.FindStringSubmatch(remoteURL); m != nil {
			return m[1], m[2], true
		}
	}
	return "", "", false
}
