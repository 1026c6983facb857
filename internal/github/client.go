package github

//go:generate go run go.uber.org/mock/mockgen -destination client_mock.gen.go -package github . DiffFetcher

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"
)

const diffAPIFmt = "https://api.github.com/repos/%s/commits/%s"

var (
	ErrNotFound    = errors.New("not found")
	ErrRateLimited = errors.New("rate limited")
)

// DiffFetcher retrieves the code diff for a commit (used by the worker pool).
type DiffFetcher interface {
	FetchCommitDiff(ctx context.Context, repoURL, sha string) (string, error)
}

// Client implements DiffFetcher using the GitHub API.
// BaseURL is optional; when set (e.g. in tests) it replaces the default API host.
type Client struct {
	httpClient *http.Client
	token      string
	BaseURL    string // for tests: e.g. httptest.Server.URL
	log        *slog.Logger
}

// NewClient returns a GitHub API client. token is optional (PAT for higher rate limits).
func NewClient(token string) *Client {
	return &Client{
		httpClient: &http.Client{Timeout: 30 * time.Second},
		token:      token,
		log:        slog.Default(),
	}
}

func (c *Client) diffURL(fullName, sha string) string {
	if c.BaseURL != "" {
		return fmt.Sprintf("%s/repos/%s/commits/%s", strings.TrimSuffix(c.BaseURL, "/"), fullName, sha)
	}
	return fmt.Sprintf(diffAPIFmt, fullName, sha)
}

// FetchCommitDiff fetches the unified diff for a commit. repoURL is the
// repository HTML URL (e.g. https://github.com/owner/repo); the owner/repo
// pair is taken from its path. Returns ErrNotFound on 404.
func (c *Client) FetchCommitDiff(ctx context.Context, repoURL, sha string) (string, error) {
	fullName, err := repoFullName(repoURL)
	if err != nil {
		return "", err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.diffURL(fullName, sha), nil)
	if err != nil {
		return "", err
	}
	if c.token != "" {
		req.Header.Set("Authorization", "token "+c.token)
	}
	req.Header.Set("Accept", "application/vnd.github.diff")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK:
		body, err := io.ReadAll(resp.Body)
		if err != nil {
			return "", err
		}
		return string(body), nil
	case http.StatusNotFound:
		return "", ErrNotFound
	case http.StatusForbidden, http.StatusTooManyRequests:
		c.log.Warn("diff fetch rate limited", "repo", fullName, "sha", sha)
		return "", ErrRateLimited
	default:
		return "", fmt.Errorf("commit diff API: %s", resp.Status)
	}
}

// repoFullName extracts "owner/repo" from a repository HTML URL.
func repoFullName(repoURL string) (string, error) {
	u, err := url.Parse(repoURL)
	if err != nil {
		return "", fmt.Errorf("parse repo url %q: %w", repoURL, err)
	}
	name := strings.Trim(u.Path, "/")
	if !strings.Contains(name, "/") {
		return "", fmt.Errorf("repo url %q has no owner/repo path", repoURL)
	}
	return name, nil
}
