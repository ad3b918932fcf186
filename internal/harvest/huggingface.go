package harvest

import (
	"context"
	"fmt"
	"strings"

	"github.com/huangsam/mlscore/internal/contract"
	"github.com/huangsam/mlscore/schema"
)

// HuggingFaceSource reads model or dataset documents from the Hugging Face API.
type HuggingFaceSource struct {
	client *Client
	base   string
	kind   schema.ArtifactKind
}

var (
	_ contract.MetadataSource  = &HuggingFaceSource{} // Compile-time check
	_ contract.DocumentFetcher = &Documents{}         // Compile-time check
)

// NewModelSource creates a source for Hugging Face models.
func NewModelSource(client *Client, base string) *HuggingFaceSource {
	return &HuggingFaceSource{client: client, base: baseOrDefault(base, DefaultHuggingFaceBase), kind: schema.ModelKind}
}

// NewDatasetSource creates a source for Hugging Face datasets.
func NewDatasetSource(client *Client, base string) *HuggingFaceSource {
	return &HuggingFaceSource{client: client, base: baseOrDefault(base, DefaultHuggingFaceBase), kind: schema.DatasetKind}
}

// Kind returns the artifact kind served by the source.
func (s *HuggingFaceSource) Kind() schema.ArtifactKind { return s.kind }

// Fetch returns the API document of a model or dataset.
func (s *HuggingFaceSource) Fetch(ctx context.Context, identifier string) (map[string]any, error) {
	collection := "models"
	if s.kind == schema.DatasetKind {
		collection = "datasets"
	}
	var payload map[string]any
	if err := s.client.GetJSON(ctx, fmt.Sprintf("%s/api/%s/%s", s.base, collection, identifier), &payload); err != nil {
		return nil, err
	}
	if payload == nil {
		return nil, fmt.Errorf("empty document for %s", identifier)
	}
	return payload, nil
}

// Documents fetches README files from Hugging Face and GitHub.
type Documents struct {
	client  *Client
	hfBase  string
	rawBase string
}

// NewDocuments creates a README fetcher. Empty bases select the public hosts.
func NewDocuments(client *Client, hfBase, rawBase string) *Documents {
	return &Documents{
		client:  client,
		hfBase:  baseOrDefault(hfBase, DefaultHuggingFaceBase),
		rawBase: baseOrDefault(rawBase, DefaultGitHubRawBase),
	}
}

// FetchReadme returns the README text of an artifact. Any failure or an empty
// document reports false.
func (d *Documents) FetchReadme(ctx context.Context, kind schema.ArtifactKind, identifier string) (string, bool) {
	if identifier == "" {
		return "", false
	}
	var url string
	switch kind {
	case schema.ModelKind:
		url = fmt.Sprintf("%s/%s/resolve/main/README.md", d.hfBase, identifier)
	case schema.DatasetKind:
		url = fmt.Sprintf("%s/datasets/%s/resolve/main/README.md", d.hfBase, identifier)
	case schema.CodeKind:
		url = fmt.Sprintf("%s/%s/HEAD/README.md", d.rawBase, identifier)
	default:
		return "", false
	}
	text, err := d.client.GetText(ctx, url)
	if err != nil || strings.TrimSpace(text) == "" {
		return "", false
	}
	return text, true
}

func baseOrDefault(base, def string) string {
	if base == "" {
		return def
	}
	return strings.TrimRight(base, "/")
}
