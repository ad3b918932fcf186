package harvest

import (
	"context"
	"fmt"
	"strings"

	"github.com/huangsam/mlscore/internal/contract"
	"github.com/huangsam/mlscore/schema"
)

// CommitPageSize is the page size of commit history requests.
const CommitPageSize = 100

// GitHubSource reads repository documents and implements RepositoryClient.
type GitHubSource struct {
	client *Client
	base   string
}

var (
	_ contract.MetadataSource   = &GitHubSource{} // Compile-time check
	_ contract.RepositoryClient = &GitHubSource{} // Compile-time check
)

// NewGitHubSource creates a GitHub source on the given API base.
func NewGitHubSource(client *Client, base string) *GitHubSource {
	return &GitHubSource{client: client, base: baseOrDefault(base, DefaultGitHubAPIBase)}
}

// GitHubHeaders returns the headers expected by the GitHub REST API.
func GitHubHeaders() map[string]string {
	return map[string]string{"Accept": "application/vnd.github.v3+json"}
}

// GitHubTokenAuth returns an auth function that sends token only to GitHub hosts.
func GitHubTokenAuth(token string, apiBase string) func(string) (string, string) {
	apiBase = baseOrDefault(apiBase, DefaultGitHubAPIBase)
	return func(url string) (string, string) {
		if token == "" || !strings.HasPrefix(url, apiBase) {
			return "", ""
		}
		return "Authorization", "token " + token
	}
}

// Kind returns the artifact kind served by the source.
func (s *GitHubSource) Kind() schema.ArtifactKind { return schema.CodeKind }

// Fetch returns the repository document of "owner/repo".
func (s *GitHubSource) Fetch(ctx context.Context, identifier string) (map[string]any, error) {
	var payload map[string]any
	if err := s.client.GetJSON(ctx, fmt.Sprintf("%s/repos/%s", s.base, identifier), &payload); err != nil {
		return nil, err
	}
	if payload == nil {
		return nil, fmt.Errorf("empty document for %s", identifier)
	}
	return payload, nil
}

// ListTree returns every path of the recursive tree of repo at branch.
// An empty branch resolves through the repository document, falling back to HEAD.
func (s *GitHubSource) ListTree(ctx context.Context, repo, branch string) []string {
	if repo == "" {
		return nil
	}
	if branch == "" {
		branch = "HEAD"
		if doc, err := s.Fetch(ctx, repo); err == nil {
			if def, ok := doc["default_branch"].(string); ok && strings.TrimSpace(def) != "" {
				branch = strings.TrimSpace(def)
			}
		}
	}

	var payload struct {
		Tree []struct {
			Path string `json:"path"`
		} `json:"tree"`
	}
	url := fmt.Sprintf("%s/repos/%s/git/trees/%s?recursive=1", s.base, repo, branch)
	if err := s.client.GetJSON(ctx, url, &payload); err != nil {
		contract.LoggerFrom(ctx).Debug("tree listing failed", "repo", repo, "err", err)
		return nil
	}

	paths := make([]string, 0, len(payload.Tree))
	for _, entry := range payload.Tree {
		paths = append(paths, entry.Path)
	}
	return paths
}

// ListCommitAuthors returns one identifier per commit of the first history page:
// the login, else the author name, else the author email.
func (s *GitHubSource) ListCommitAuthors(ctx context.Context, repo string, perPage int) []string {
	if repo == "" {
		return nil
	}
	if perPage <= 0 {
		perPage = CommitPageSize
	}

	var commits []struct {
		Author *struct {
			Login string `json:"login"`
		} `json:"author"`
		Commit struct {
			Author struct {
				Name  string `json:"name"`
				Email string `json:"email"`
			} `json:"author"`
		} `json:"commit"`
	}
	url := fmt.Sprintf("%s/repos/%s/commits?per_page=%d", s.base, repo, perPage)
	if err := s.client.GetJSON(ctx, url, &commits); err != nil {
		contract.LoggerFrom(ctx).Debug("commit listing failed", "repo", repo, "err", err)
		return nil
	}

	authors := make([]string, 0, len(commits))
	for _, c := range commits {
		var id string
		switch {
		case c.Author != nil && c.Author.Login != "":
			id = c.Author.Login
		case c.Commit.Author.Name != "":
			id = c.Commit.Author.Name
		default:
			id = c.Commit.Author.Email
		}
		if id = strings.TrimSpace(id); id != "" {
			authors = append(authors, id)
		}
	}
	return authors
}
