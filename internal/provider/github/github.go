package github

import (
	"context"
	"fmt"
	"net/http"

	"github.com/google/go-github/v60/github"

	"github.com/msoria/hookfetch/internal/provider"
)

// GitHubProvider implements provider.Fetcher against the GitHub contents
// API, scoped to a single owner/repo.
type GitHubProvider struct {
	client *github.Client
	owner  string
	repo   string
	token  string
}

// Option configures the GitHub provider.
type Option func(*GitHubProvider)

// WithBaseURL sets a custom base URL (for testing).
func WithBaseURL(url string) Option {
	return func(p *GitHubProvider) {
		p.client.BaseURL, _ = p.client.BaseURL.Parse(url + "/")
	}
}

// New creates a GitHub provider for owner/repo authenticated with token.
func New(token, owner, repo string, opts ...Option) *GitHubProvider {
	httpClient := &http.Client{
		Transport: &tokenTransport{token: token},
	}

	p := &GitHubProvider{
		client: github.NewClient(httpClient),
		owner:  owner,
		repo:   repo,
		token:  token,
	}

	for _, opt := range opts {
		opt(p)
	}

	return p
}

// tokenTransport adds authorization header to requests.
type tokenTransport struct {
	token string
}

func (t *tokenTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	req.Header.Set("Authorization", "Bearer "+t.token)
	return http.DefaultTransport.RoundTrip(req)
}

// FetchFile downloads the file at path as of ref via the contents API.
func (p *GitHubProvider) FetchFile(ctx context.Context, path, ref string) (*provider.File, error) {
	fc, _, resp, err := p.client.Repositories.GetContents(ctx, p.owner, p.repo, path,
		&github.RepositoryContentGetOptions{Ref: ref})
	if err != nil {
		if resp != nil && resp.StatusCode == http.StatusNotFound {
			return nil, provider.ErrNotFound
		}
		return nil, fmt.Errorf("fetching %s@%s: %w", path, ref, err)
	}

	// A nil file content means the path resolved to a directory.
	if fc == nil {
		return nil, provider.ErrNotFound
	}

	content, err := fc.GetContent()
	if err != nil {
		return nil, fmt.Errorf("decoding %s: %w", path, err)
	}

	return &provider.File{
		Path:    path,
		Content: content,
		SHA:     fc.GetSHA(),
		Size:    len(content),
	}, nil
}

// RegisterWebhook creates a push webhook on the repository pointing at url,
// configured with the given shared secret. Returns the new hook ID.
func (p *GitHubProvider) RegisterWebhook(ctx context.Context, url, secret string) (int64, error) {
	hook := &github.Hook{
		Active: github.Bool(true),
		Events: []string{"push"},
		Config: &github.HookConfig{
			URL:         github.String(url),
			ContentType: github.String("json"),
			Secret:      github.String(secret),
		},
	}

	created, _, err := p.client.Repositories.CreateHook(ctx, p.owner, p.repo, hook)
	if err != nil {
		return 0, fmt.Errorf("creating webhook: %w", err)
	}

	return created.GetID(), nil
}
