package harvest

import (
	"context"
	"errors"
	"time"

	"github.com/huangsam/mlscore/internal/contract"
	"github.com/huangsam/mlscore/schema"
)

// ErrUnsupportedURL marks URLs outside the supported hosts.
var ErrUnsupportedURL = errors.New("unsupported url")

// Harvester selects the MetadataSource of a URL's kind and fetches its document.
type Harvester struct {
	sources map[schema.ArtifactKind]contract.MetadataSource
	timeout time.Duration
}

var _ contract.Harvester = &Harvester{} // Compile-time check

// NewHarvester creates a harvester over one source per kind.
func NewHarvester(timeout time.Duration, sources ...contract.MetadataSource) *Harvester {
	h := &Harvester{
		sources: make(map[schema.ArtifactKind]contract.MetadataSource, len(sources)),
		timeout: timeout,
	}
	for _, s := range sources {
		h.sources[s.Kind()] = s
	}
	return h
}

// Harvest fetches the raw metadata of a URL. Failures are returned as an
// error-marked payload, never as an error.
func (h *Harvester) Harvest(ctx context.Context, rawURL string) schema.RawMetadata {
	target := Classify(rawURL)
	raw := schema.RawMetadata{Kind: target.Kind, URL: rawURL, Identifier: target.Identifier}

	source, ok := h.sources[target.Kind]
	if !ok || target.Identifier == "" {
		raw.Kind = schema.UnknownKind
		raw.Payload = schema.ErrorPayload(ErrUnsupportedURL.Error())
		return raw
	}

	fetchCtx := ctx
	if h.timeout > 0 {
		var cancel context.CancelFunc
		fetchCtx, cancel = context.WithTimeout(ctx, h.timeout)
		defer cancel()
	}

	payload, err := source.Fetch(fetchCtx, target.Identifier)
	if err != nil {
		contract.LoggerFrom(ctx).Warn("metadata fetch failed", "url", rawURL, "kind", target.Kind, "err", err)
		raw.Payload = schema.ErrorPayload(err.Error())
		return raw
	}
	raw.Payload = payload
	return raw
}
