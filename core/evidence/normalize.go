// Package evidence turns raw upstream metadata into per-dimension evidence records.
package evidence

import (
	"context"
	"time"

	"github.com/huangsam/mlscore/internal/contract"
	"github.com/huangsam/mlscore/internal/harvest"
	"github.com/huangsam/mlscore/schema"
)

// DefaultFetchTimeout bounds every secondary fetch of a normalization.
const DefaultFetchTimeout = 10 * time.Second

// Normalizer builds evidence records. The repository client and document
// fetcher are optional; without them only the primary payload is used.
type Normalizer struct {
	repos   contract.RepositoryClient
	docs    contract.DocumentFetcher
	timeout time.Duration
}

// NewNormalizer creates a Normalizer. A non-positive timeout selects DefaultFetchTimeout.
func NewNormalizer(repos contract.RepositoryClient, docs contract.DocumentFetcher, timeout time.Duration) *Normalizer {
	if timeout <= 0 {
		timeout = DefaultFetchTimeout
	}
	return &Normalizer{repos: repos, docs: docs, timeout: timeout}
}

// Normalize returns the full evidence set of one artifact. It never fails:
// error-marked or empty payloads yield default records.
func (n *Normalizer) Normalize(ctx context.Context, raw schema.RawMetadata) schema.Evidence {
	return n.newBuilder(ctx, raw).
		License().
		BusFactor().
		CodeQuality().
		DatasetQuality().
		DatasetAndCode().
		PerformanceClaims().
		RampUp().
		Size().
		Build()
}

// Builder accumulates the evidence of one artifact. The README of the artifact
// is fetched at most once and shared between dimensions.
type Builder struct {
	ctx context.Context
	n   *Normalizer
	raw schema.RawMetadata
	d   doc
	ev  schema.Evidence

	readme        string
	readmeChecked bool
}

func (n *Normalizer) newBuilder(ctx context.Context, raw schema.RawMetadata) *Builder {
	b := &Builder{ctx: ctx, n: n, raw: raw, ev: schema.Evidence{Kind: raw.Kind}}
	if !raw.HasError() && raw.Payload != nil {
		b.d = raw.Payload
	} else {
		b.d = doc{}
	}
	return b
}

// usable reports whether the payload can produce evidence.
func (b *Builder) usable() bool {
	return len(b.d) > 0 && b.raw.Kind != schema.UnknownKind
}

// identifier returns the "owner/name" form of the artifact.
func (b *Builder) identifier() string {
	if b.raw.Identifier != "" {
		return b.raw.Identifier
	}
	return b.d.firstStr("full_name", "id", "modelId")
}

// fetchReadme returns the artifact README, fetching it on first use.
func (b *Builder) fetchReadme() string {
	if b.readmeChecked {
		return b.readme
	}
	b.readmeChecked = true
	if b.n.docs == nil || !b.usable() {
		return ""
	}

	ctx, cancel := context.WithTimeout(b.ctx, b.n.timeout)
	defer cancel()
	if text, ok := b.n.docs.FetchReadme(ctx, b.raw.Kind, b.identifier()); ok {
		b.readme = text
	}
	return b.readme
}

// linkedRepository returns the repository referenced by a model or dataset README.
func (b *Builder) linkedRepository() string {
	if b.raw.Kind == schema.CodeKind {
		return ""
	}
	repo, ok := harvest.ExtractRepository(b.fetchReadme())
	if !ok {
		return ""
	}
	return repo
}

// listTree lists a repository tree under the fetch timeout.
func (b *Builder) listTree(repo, branch string) []string {
	if b.n.repos == nil || repo == "" {
		return nil
	}
	ctx, cancel := context.WithTimeout(b.ctx, b.n.timeout)
	defer cancel()
	return b.n.repos.ListTree(ctx, repo, branch)
}

// commitAuthors lists the first commit page of a repository under the fetch timeout.
func (b *Builder) commitAuthors(repo string) []string {
	if b.n.repos == nil || repo == "" {
		return nil
	}
	ctx, cancel := context.WithTimeout(b.ctx, b.n.timeout)
	defer cancel()
	return b.n.repos.ListCommitAuthors(ctx, repo, harvest.CommitPageSize)
}

// License extracts the license identifier.
func (b *Builder) License() *Builder {
	if b.usable() {
		b.ev.License = licenseEvidence(b.raw.Kind, b.d)
	}
	return b
}

// BusFactor collects distinct commit authors of the artifact or its linked repository.
func (b *Builder) BusFactor() *Builder {
	if !b.usable() {
		return b
	}
	repo := b.identifier()
	if b.raw.Kind != schema.CodeKind {
		repo = b.linkedRepository()
	}
	b.ev.BusFactor = schema.BusFactorEvidence{CommitAuthors: uniqueAuthors(b.commitAuthors(repo))}
	return b
}

// CodeQuality classifies the file listing, falling back to the linked
// repository when the bundled listing is sparse.
func (b *Builder) CodeQuality() *Builder {
	b.ev.CodeQuality = ClassifyPaths(nil)
	if !b.usable() {
		return b
	}

	if b.raw.Kind == schema.CodeKind {
		b.ev.CodeQuality = ClassifyPaths(b.listTree(b.identifier(), b.d.str("default_branch")))
		return b
	}

	b.ev.CodeQuality = ClassifyPaths(b.d.siblings())
	if !b.ev.CodeQuality.Sparse() {
		return b
	}
	if repo := b.linkedRepository(); repo != "" {
		if paths := b.listTree(repo, "HEAD"); len(paths) > 0 {
			b.ev.CodeQuality = ClassifyPaths(paths)
		}
	}
	return b
}

// DatasetQuality extracts documentation and linkage signals.
func (b *Builder) DatasetQuality() *Builder {
	if b.usable() {
		b.ev.DatasetQuality = datasetQualityEvidence(b.raw, b.d, b.linkedRepository())
	}
	return b
}

// DatasetAndCode extracts documentation, examples and engagement signals.
func (b *Builder) DatasetAndCode() *Builder {
	b.ev.DatasetAndCode.Kind = b.raw.Kind
	if b.usable() {
		b.ev.DatasetAndCode = datasetAndCodeEvidence(b.raw.Kind, b.d, b.ev.License.License)
	}
	return b
}

// PerformanceClaims extracts evaluation results and popularity.
func (b *Builder) PerformanceClaims() *Builder {
	b.ev.PerformanceClaims.Kind = b.raw.Kind
	if b.usable() {
		b.ev.PerformanceClaims = performanceEvidence(b.raw.Kind, b.d)
	}
	return b
}

// RampUp extracts onboarding signals. Code repositories add their README.
func (b *Builder) RampUp() *Builder {
	b.ev.RampUp = schema.RampUpEvidence{Kind: b.raw.Kind, SizeClass: schema.MediumModel}
	if !b.usable() {
		return b
	}
	readme := ""
	if b.raw.Kind == schema.CodeKind {
		readme = b.fetchReadme()
	}
	b.ev.RampUp = rampUpEvidence(b.raw.Kind, b.d, readme)
	return b
}

// Size extracts the artifact size.
func (b *Builder) Size() *Builder {
	if b.usable() {
		b.ev.Size = sizeEvidence(b.raw.Kind, b.d)
	}
	return b
}

// Build returns the collected evidence.
func (b *Builder) Build() schema.Evidence {
	return b.ev
}
