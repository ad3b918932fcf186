package harvest

import (
	"strings"
	"time"

	"github.com/huangsam/mlscore/internal/contract"
)

// Endpoints overrides the upstream base URLs. Empty fields select the public hosts.
type Endpoints struct {
	HuggingFace string
	GitHubAPI   string
	GitHubRaw   string
}

// Stack bundles every harvesting collaborator built from one configuration.
type Stack struct {
	Client    *Client
	GitHub    *GitHubSource
	Documents *Documents
	Harvester *Harvester
}

// NewStack wires the shared client, sources and harvester from cfg.
// A nil cache disables response caching.
func NewStack(cfg *contract.Config, cache contract.CacheStore, ep Endpoints, opts ...Option) *Stack {
	hfBase := baseOrDefault(ep.HuggingFace, DefaultHuggingFaceBase)
	ghAuth := GitHubTokenAuth(cfg.GitHubToken, ep.GitHubAPI)
	hfToken := cfg.HFToken

	base := []Option{
		WithTimeout(cfg.Timeout),
		WithRetries(cfg.Retries),
		WithRateLimit(cfg.RateLimit),
		WithHeaders(GitHubHeaders()),
		WithAuthFunc(func(url string) (string, string) {
			if name, value := ghAuth(url); name != "" {
				return name, value
			}
			if hfToken != "" && strings.HasPrefix(url, hfBase) {
				return "Authorization", "Bearer " + hfToken
			}
			return "", ""
		}),
	}
	if cache != nil {
		base = append(base, WithCache(cache, cfg.CacheTTL))
	}
	client := NewClient(append(base, opts...)...)

	gh := NewGitHubSource(client, ep.GitHubAPI)
	return &Stack{
		Client:    client,
		GitHub:    gh,
		Documents: NewDocuments(client, ep.HuggingFace, ep.GitHubRaw),
		Harvester: NewHarvester(cfg.Timeout*time.Duration(cfg.Retries+1),
			NewModelSource(client, ep.HuggingFace),
			NewDatasetSource(client, ep.HuggingFace),
			gh,
		),
	}
}
