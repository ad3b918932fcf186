package core

import (
	"context"
	"net/url"
	"regexp"
	"slices"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/huangsam/mlscore/core/evidence"
	"github.com/huangsam/mlscore/internal/contract"
	"github.com/huangsam/mlscore/internal/harvest"
	"github.com/huangsam/mlscore/schema"
)

// UnknownArtifactName is used when no name can be derived from a URL.
const UnknownArtifactName = "unknown_artifact"

var nameSanitizer = regexp.MustCompile(`[^\p{L}\p{N}_\-.]`)

// ArtifactManager runs the harvest, normalize and aggregate pipeline for one URL.
type ArtifactManager struct {
	harvester  contract.Harvester
	normalizer *evidence.Normalizer
	aggregator *Aggregator
	store      contract.ArtifactStore
	newID      func() string
	now        func() time.Time
}

// ManagerOption configures an ArtifactManager.
type ManagerOption func(*ArtifactManager)

// WithArtifactStore persists records produced by ScoreURLs.
func WithArtifactStore(store contract.ArtifactStore) ManagerOption {
	return func(m *ArtifactManager) { m.store = store }
}

// WithIDGenerator overrides the record id generator.
func WithIDGenerator(fn func() string) ManagerOption {
	return func(m *ArtifactManager) { m.newID = fn }
}

// WithClock overrides the record timestamp source.
func WithClock(now func() time.Time) ManagerOption {
	return func(m *ArtifactManager) { m.now = now }
}

// NewArtifactManager creates a manager. A nil normalizer or aggregator
// selects one with default settings.
func NewArtifactManager(h contract.Harvester, n *evidence.Normalizer, a *Aggregator, opts ...ManagerOption) *ArtifactManager {
	if n == nil {
		n = evidence.NewNormalizer(nil, nil, 0)
	}
	if a == nil {
		a = NewAggregator(nil, nil)
	}
	m := &ArtifactManager{
		harvester:  h,
		normalizer: n,
		aggregator: a,
		newID:      NewArtifactID,
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Store returns the artifact store, or nil.
func (m *ArtifactManager) Store() contract.ArtifactStore { return m.store }

// Process scores one artifact URL or package URL. Only an empty or
// unparseable input is an error; upstream failures are recorded in the
// metadata summary.
func (m *ArtifactManager) Process(ctx context.Context, input string) (schema.ArtifactRecord, error) {
	rawURL, err := harvest.ResolveInput(input)
	if err != nil {
		return schema.ArtifactRecord{}, contract.WrapError(contract.CodeInvalidInput, err, "invalid package url %q", strings.TrimSpace(input))
	}
	if err := ValidateURL(rawURL); err != nil {
		return schema.ArtifactRecord{}, err
	}

	raw := m.harvester.Harvest(ctx, rawURL)
	ev := m.normalizer.Normalize(ctx, raw)
	report := m.aggregator.Aggregate(ctx, &ev)

	target := harvest.Target{Kind: raw.Kind, URL: rawURL, Identifier: raw.Identifier}
	return schema.ArtifactRecord{
		ID:        m.newID(),
		Name:      ArtifactName(rawURL),
		Kind:      raw.Kind,
		URL:       rawURL,
		PURL:      harvest.PackageURL(target),
		Metadata:  summarize(raw, &ev, harvest.DownloadURL(target)),
		Scores:    report,
		CreatedAt: m.now().UTC(),
	}, nil
}

// ValidateURL rejects URLs that cannot be harvested at all.
func ValidateURL(rawURL string) error {
	if strings.TrimSpace(rawURL) == "" {
		return contract.NewError(contract.CodeInvalidInput, "empty url")
	}
	parsed, err := url.Parse(rawURL)
	if err != nil {
		return contract.WrapError(contract.CodeInvalidInput, err, "invalid url %q", rawURL)
	}
	if parsed.Scheme == "" || parsed.Host == "" {
		return contract.NewError(contract.CodeInvalidInput, "invalid url %q: scheme and host are required", rawURL)
	}
	return nil
}

// NewArtifactID returns a random id in 32-character hex form.
func NewArtifactID() string {
	id := uuid.New()
	return strings.ReplaceAll(id.String(), "-", "")
}

// ArtifactName derives a display name from the last path segment of a URL.
func ArtifactName(rawURL string) string {
	p := rawURL
	if parsed, err := url.Parse(rawURL); err == nil {
		p = parsed.Path
	}
	p = strings.TrimRight(p, "/")
	if i := strings.LastIndex(p, "/"); i >= 0 {
		p = p[i+1:]
	}
	name := strings.TrimSuffix(nameSanitizer.ReplaceAllString(p, "_"), ".git")
	if name == "" {
		return UnknownArtifactName
	}
	return name
}

// summarize extracts the record metadata from the harvested payload and evidence.
func summarize(raw schema.RawMetadata, ev *schema.Evidence, downloadURL string) schema.ArtifactSummary {
	s := schema.ArtifactSummary{
		Identifier:   raw.Identifier,
		License:      ev.License.License,
		Downloads:    ev.PerformanceClaims.Downloads,
		Likes:        ev.PerformanceClaims.Likes,
		Contributors: len(ev.BusFactor.CommitAuthors),
		DownloadURL:  downloadURL,
		HarvestError: raw.ErrorMessage(),
	}
	if raw.Kind == schema.CodeKind {
		s.Likes = ev.DatasetAndCode.Likes
	}
	s.Description = ev.DatasetQuality.Description
	if ev.Size.Known {
		size := ev.Size.SizeMB
		s.SizeMB = &size
	}
	for lang, n := range ev.CodeQuality.LanguageCounts {
		if n > 0 {
			s.Languages = append(s.Languages, lang)
		}
	}
	slices.Sort(s.Languages)
	return s
}
