package metric

import (
	"strings"

	"github.com/huangsam/mlscore/schema"
)

// Scores of the license classes.
const (
	permissiveLicense = 1.0
	weakCopyleft      = 0.75
	namedLicense      = 0.5
)

// permissivePrefixes identify licenses that allow unrestricted reuse.
var permissivePrefixes = []string{"apache", "mit", "bsd", "isc", "unlicense", "cc0"}

// unnamedLicenses carry no usable license information.
var unnamedLicenses = map[string]struct{}{
	"":            {},
	"unknown":     {},
	"none":        {},
	"other":       {},
	"noassertion": {},
}

// License scores the license identifier. A joined value such as
// "apache-2.0, other" scores as its most permissive part.
func License(ev schema.LicenseEvidence) float64 {
	var best float64
	for part := range strings.SplitSeq(ev.License, ",") {
		best = max(best, licenseClass(part))
	}
	return clamp01(best)
}

func licenseClass(id string) float64 {
	id = strings.ToLower(strings.TrimSpace(id))
	if _, ok := unnamedLicenses[id]; ok {
		return 0
	}
	for _, prefix := range permissivePrefixes {
		if strings.HasPrefix(id, prefix) {
			return permissiveLicense
		}
	}
	if strings.HasPrefix(id, "mpl") {
		return weakCopyleft
	}
	return namedLicense
}

// busFactorSaturation is the contributor count that reaches the full score.
const busFactorSaturation = 10.0

// BusFactor scores the number of distinct commit authors.
func BusFactor(ev schema.BusFactorEvidence) float64 {
	unique := make(map[string]struct{}, len(ev.CommitAuthors))
	for _, a := range ev.CommitAuthors {
		if a = strings.TrimSpace(a); a != "" {
			unique[a] = struct{}{}
		}
	}
	return clamp01(float64(len(unique)) / busFactorSaturation)
}
