// Package version orders release version strings and checks the GitHub
// releases API for a newer build. Used only by the version command; nothing
// in the verification pipeline touches the network through this package.
package version

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"regexp"
	"runtime"
	"strconv"
	"strings"
	"time"
)

const (
	defaultBaseURL = "https://api.github.com"
	requestTimeout = 15 * time.Second

	// Response bodies are size-capped so a misbehaving endpoint cannot
	// balloon memory.
	maxBodyBytes      = 64 * 1024
	maxErrorBodyBytes = 1024
)

// Errors returned by this package.
var (
	ErrGitHubAPIFailed  = errors.New("GitHub API request failed")
	ErrInvalidOwnerRepo = errors.New("invalid owner or repo name")
)

// ownerRepoPattern matches names GitHub itself accepts: alphanumeric start,
// then alphanumerics, dots, hyphens, underscores.
var ownerRepoPattern = regexp.MustCompile(`^[a-zA-Z0-9][a-zA-Z0-9._-]*$`)

// GitHubRelease is the subset of the releases API response this package reads.
type GitHubRelease struct {
	TagName     string    `json:"tag_name"`
	Name        string    `json:"name"`
	Prerelease  bool      `json:"prerelease"`
	PublishedAt time.Time `json:"published_at"`
}

// Client fetches release metadata from the GitHub API.
type Client struct {
	baseURL    string
	httpClient *http.Client
	userAgent  string
}

// Option configures a Client.
type Option func(*Client)

// WithBaseURL points the client at an alternate API endpoint.
func WithBaseURL(url string) Option {
	return func(c *Client) {
		c.baseURL = strings.TrimSuffix(url, "/")
	}
}

// NewClient creates a release client with sane timeouts.
func NewClient(opts ...Option) *Client {
	c := &Client{
		baseURL:    defaultBaseURL,
		httpClient: &http.Client{Timeout: requestTimeout},
		userAgent:  fmt.Sprintf("vigil/dev (%s/%s)", runtime.GOOS, runtime.GOARCH),
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

var defaultClient = NewClient() //nolint:gochecknoglobals // package-level convenience client

// GetLatestRelease fetches the latest release of owner/repo using the
// package-level default client.
func GetLatestRelease(ctx context.Context, owner, repo string) (*GitHubRelease, error) {
	return defaultClient.GetLatestRelease(ctx, owner, repo)
}

// GetLatestRelease fetches the latest release of owner/repo.
func (c *Client) GetLatestRelease(ctx context.Context, owner, repo string) (*GitHubRelease, error) {
	if !ownerRepoPattern.MatchString(owner) || !ownerRepoPattern.MatchString(repo) {
		return nil, fmt.Errorf("%w: %q/%q", ErrInvalidOwnerRepo, owner, repo)
	}

	url := fmt.Sprintf("%s/repos/%s/%s/releases/latest", c.baseURL, owner, repo)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("Accept", "application/vnd.github.v3+json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetching release: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBodyBytes))
		return nil, fmt.Errorf("%w: status %d: %s", ErrGitHubAPIFailed, resp.StatusCode, string(body))
	}

	var release GitHubRelease
	if err := json.NewDecoder(io.LimitReader(resp.Body, maxBodyBytes)).Decode(&release); err != nil {
		return nil, fmt.Errorf("decoding response: %w", err)
	}

	return &release, nil
}

// CompareVersions orders two version strings: 1 if v1 is newer, -1 if older,
// 0 if equal. "dev", empty, and commit-hash builds sort before any release.
// Pre-release and build-metadata suffixes are ignored.
func CompareVersions(v1, v2 string) int {
	dev1, dev2 := isDevBuild(v1), isDevBuild(v2)
	switch {
	case dev1 && dev2:
		return 0
	case dev1:
		return -1
	case dev2:
		return 1
	}

	parts1 := splitVersion(v1)
	parts2 := splitVersion(v2)
	for i := 0; i < 3; i++ {
		var n1, n2 int
		if i < len(parts1) {
			n1 = parts1[i]
		}
		if i < len(parts2) {
			n2 = parts2[i]
		}

		if n1 != n2 {
			if n1 > n2 {
				return 1
			}
			return -1
		}
	}

	return 0
}

// IsNewerVersion reports whether latest is newer than current.
func IsNewerVersion(current, latest string) bool {
	return CompareVersions(latest, current) > 0
}

func isDevBuild(v string) bool {
	v = strings.TrimPrefix(v, "v")
	return v == "" || v == "dev" || isCommitHash(v)
}

// splitVersion parses "v1.2.3-rc1" into [1 2 3]; parsing stops at the first
// non-numeric field.
func splitVersion(v string) []int {
	v = strings.TrimPrefix(v, "v")
	if idx := strings.IndexAny(v, "-+"); idx != -1 {
		v = v[:idx]
	}

	fields := strings.Split(v, ".")
	nums := make([]int, 0, len(fields))
	for _, f := range fields {
		n, err := strconv.Atoi(f)
		if err != nil {
			break
		}
		nums = append(nums, n)
	}
	return nums
}

// isCommitHash reports whether s looks like a short or full git SHA-1:
// 7..40 hex characters with at least one letter, which keeps pure numeric
// versions like "1234567" out.
func isCommitHash(s string) bool {
	s = strings.TrimSuffix(s, "-dirty")
	if len(s) < 7 || len(s) > 40 {
		return false
	}

	hasLetter := false
	for _, c := range s {
		switch {
		case c >= '0' && c <= '9':
		case c >= 'a' && c <= 'f', c >= 'A' && c <= 'F':
			hasLetter = true
		default:
			return false
		}
	}
	return hasLetter
}
