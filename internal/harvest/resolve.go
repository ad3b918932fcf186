package harvest

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/huangsam/mlscore/schema"
	packageurl "github.com/package-url/packageurl-go"
)

// Well-known hosts and endpoints.
const (
	HuggingFaceHost = "huggingface.co"
	GitHubHost      = "github.com"

	DefaultHuggingFaceBase = "https://huggingface.co"
	DefaultGitHubAPIBase   = "https://api.github.com"
	DefaultGitHubRawBase   = "https://raw.githubusercontent.com"
)

// Package URL types of each artifact kind.
const (
	purlTypeHuggingFace = "huggingface"
	purlTypeGitHub      = "github"
)

// repoLinkMarker starts a repository reference inside free text.
const repoLinkMarker = "github.com/"

// repoLinkWindow bounds how far past the marker a reference is read.
const repoLinkWindow = 200

// repoLinkDelimiters end a repository reference.
var repoLinkDelimiters = []string{" ", "\n", "\r", "\t", ")", "]", "<", ">", "\"", "'", "#"}

// viewSegments mark the start of a file view inside a Hugging Face or GitHub path.
var viewSegments = map[string]struct{}{
	"tree":    {},
	"blob":    {},
	"resolve": {},
	"raw":     {},
	"commit":  {},
}

// Target is a classified artifact URL.
type Target struct {
	Kind       schema.ArtifactKind
	URL        string
	Identifier string // "owner/name", or "name" for legacy Hugging Face ids
}

// Classify derives the artifact kind and identifier of a URL.
// Unsupported URLs resolve to UnknownKind with an empty identifier.
func Classify(rawURL string) Target {
	target := Target{Kind: schema.UnknownKind, URL: rawURL}
	parsed, err := url.Parse(strings.TrimSpace(rawURL))
	if err != nil {
		return target
	}
	host := strings.TrimPrefix(strings.ToLower(parsed.Host), "www.")
	segments := pathSegments(parsed.Path)

	switch host {
	case HuggingFaceHost:
		if len(segments) > 0 && segments[0] == "datasets" {
			if id := joinIdentifier(segments[1:]); id != "" {
				target.Kind = schema.DatasetKind
				target.Identifier = id
			}
			return target
		}
		if len(segments) > 0 && (segments[0] == "spaces" || segments[0] == "api") {
			return target
		}
		if id := joinIdentifier(segments); id != "" {
			target.Kind = schema.ModelKind
			target.Identifier = id
		}
	case GitHubHost:
		if len(segments) >= 2 {
			target.Kind = schema.CodeKind
			target.Identifier = segments[0] + "/" + strings.TrimSuffix(segments[1], ".git")
		}
	}
	return target
}

// pathSegments splits a URL path into non-empty segments.
func pathSegments(path string) []string {
	var segments []string
	for seg := range strings.SplitSeq(path, "/") {
		if seg != "" {
			segments = append(segments, seg)
		}
	}
	return segments
}

// joinIdentifier keeps at most "owner/name" and stops at file view segments.
func joinIdentifier(segments []string) string {
	var kept []string
	for _, seg := range segments {
		if _, ok := viewSegments[seg]; ok {
			break
		}
		kept = append(kept, seg)
		if len(kept) == 2 {
			break
		}
	}
	return strings.Join(kept, "/")
}

// ExtractRepository returns the first "owner/repo" referenced after github.com/ in text.
func ExtractRepository(text string) (string, bool) {
	idx := strings.Index(text, repoLinkMarker)
	if idx == -1 {
		return "", false
	}
	frag := text[idx+len(repoLinkMarker):]
	if len(frag) > repoLinkWindow {
		frag = frag[:repoLinkWindow]
	}
	for _, delim := range repoLinkDelimiters {
		frag, _, _ = strings.Cut(frag, delim)
	}

	parts := strings.Split(strings.TrimSpace(frag), "/")
	if len(parts) < 2 {
		return "", false
	}
	owner := parts[0]
	repo := strings.TrimRight(parts[1], ".,);]\n\r")
	repo = strings.TrimSuffix(repo, ".git")
	if owner == "" || repo == "" {
		return "", false
	}
	return owner + "/" + repo, true
}

// DownloadURL derives the archive location of a target, or "" when unknown.
func DownloadURL(t Target) string {
	name := lastSegment(t.Identifier)
	switch t.Kind {
	case schema.CodeKind:
		return "https://github.com/" + t.Identifier + "/archive/refs/heads/main.zip"
	case schema.ModelKind:
		return DefaultHuggingFaceBase + "/" + t.Identifier + "/resolve/main/" + name + ".zip"
	case schema.DatasetKind:
		return DefaultHuggingFaceBase + "/datasets/" + t.Identifier + "/resolve/main/" + name + ".zip"
	default:
		return ""
	}
}

// PackageURL builds the purl of a target, or "" when unknown.
func PackageURL(t Target) string {
	namespace, name := splitIdentifier(t.Identifier)
	if name == "" {
		return ""
	}
	var qualifiers packageurl.Qualifiers
	purlType := purlTypeHuggingFace
	switch t.Kind {
	case schema.CodeKind:
		purlType = purlTypeGitHub
	case schema.DatasetKind:
		qualifiers = packageurl.QualifiersFromMap(map[string]string{"repository_type": "dataset"})
	case schema.ModelKind:
	default:
		return ""
	}
	return packageurl.NewPackageURL(purlType, namespace, name, "", qualifiers, "").ToString()
}

// purlScheme prefixes every package URL.
const purlScheme = "pkg:"

// IsPackageURL reports whether input is a purl rather than a web URL.
func IsPackageURL(input string) bool {
	return strings.HasPrefix(strings.TrimSpace(input), purlScheme)
}

// ResolveInput turns a purl into the web URL of its artifact and leaves
// any other input unchanged.
func ResolveInput(input string) (string, error) {
	input = strings.TrimSpace(input)
	if !IsPackageURL(input) {
		return input, nil
	}
	t, err := ParsePackageURL(input)
	if err != nil {
		return "", err
	}
	if t.Kind == schema.UnknownKind {
		return "", fmt.Errorf("unsupported package url type in %q", input)
	}
	return t.URL, nil
}

// ParsePackageURL recovers a target from a purl produced by PackageURL.
// The purl spec lowercases github names, so the identifier of a code
// target compares case-insensitively with the original URL.
func ParsePackageURL(purl string) (Target, error) {
	p, err := packageurl.FromString(purl)
	if err != nil {
		return Target{}, fmt.Errorf("parsing package url: %w", err)
	}
	id := p.Name
	if p.Namespace != "" {
		id = p.Namespace + "/" + p.Name
	}
	t := Target{Identifier: id, Kind: schema.UnknownKind}
	switch p.Type {
	case purlTypeGitHub:
		t.Kind = schema.CodeKind
		t.URL = "https://github.com/" + id
	case purlTypeHuggingFace:
		t.Kind = schema.ModelKind
		t.URL = DefaultHuggingFaceBase + "/" + id
		if p.Qualifiers.Map()["repository_type"] == "dataset" {
			t.Kind = schema.DatasetKind
			t.URL = DefaultHuggingFaceBase + "/datasets/" + id
		}
	}
	return t, nil
}

func splitIdentifier(id string) (namespace, name string) {
	if i := strings.LastIndex(id, "/"); i >= 0 {
		return id[:i], id[i+1:]
	}
	return "", id
}

func lastSegment(id string) string {
	_, name := splitIdentifier(id)
	return name
}
