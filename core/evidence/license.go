package evidence

import (
	"strings"

	"github.com/huangsam/mlscore/schema"
)

const licenseTagPrefix = "license:"

// licenseEvidence collects license identifiers from the top-level field, the
// card and license tags. Distinct values are joined with ", ".
func licenseEvidence(kind schema.ArtifactKind, d doc) schema.LicenseEvidence {
	if kind == schema.CodeKind {
		return schema.LicenseEvidence{License: githubLicense(d)}
	}

	var values []string
	values = append(values, d.strList("license")...)
	values = append(values, d.sub("cardData").strList("license")...)
	values = append(values, licenseTags(d.tags())...)
	return schema.LicenseEvidence{License: joinDistinct(values)}
}

// githubLicense reads the spdx id of a repository license, else its key.
func githubLicense(d doc) string {
	lic := d.sub("license")
	id := lic.str("spdx_id")
	if id == "" || strings.EqualFold(id, "NOASSERTION") {
		id = lic.str("key")
	}
	if id == "" {
		id = d.str("license")
	}
	return strings.ToLower(id)
}

// licenseTags returns the values of "license:" prefixed tags.
func licenseTags(tags []string) []string {
	var out []string
	for _, t := range tags {
		if v, ok := strings.CutPrefix(t, licenseTagPrefix); ok {
			if v = strings.TrimSpace(v); v != "" {
				out = append(out, v)
			}
		}
	}
	return out
}

// joinDistinct lowercases values and joins the distinct ones in order.
func joinDistinct(values []string) string {
	seen := make(map[string]struct{}, len(values))
	out := make([]string, 0, len(values))
	for _, v := range values {
		v = strings.ToLower(strings.TrimSpace(v))
		if v == "" {
			continue
		}
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	return strings.Join(out, ", ")
}

// uniqueAuthors trims and de-duplicates authors, keeping first occurrences.
func uniqueAuthors(authors []string) []string {
	seen := make(map[string]struct{}, len(authors))
	out := make([]string, 0, len(authors))
	for _, a := range authors {
		a = strings.TrimSpace(a)
		if a == "" {
			continue
		}
		if _, ok := seen[a]; ok {
			continue
		}
		seen[a] = struct{}{}
		out = append(out, a)
	}
	return out
}
