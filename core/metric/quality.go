package metric

import (
	"strings"

	"github.com/huangsam/mlscore/schema"
)

// CodeQuality scores tests, CI, linting, code volume and documentation.
func CodeQuality(ev schema.CodeQualityEvidence) float64 {
	const (
		wTests    = 0.25
		wCI       = 0.20
		wLint     = 0.10
		wVolume   = 0.25
		wDocsPack = 0.20

		saturatedFiles = 20.0
		saturatedLangs = 5.0
		diversityBonus = 0.2
	)

	languages := 0
	for _, n := range ev.LanguageCounts {
		if n > 0 {
			languages++
		}
	}

	var volume float64
	if ev.TotalCodeFiles > 0 {
		volume = min(1, float64(ev.TotalCodeFiles)/saturatedFiles)
	}
	volume += min(diversityBonus, float64(languages)/saturatedLangs*diversityBonus)
	volume = min(1, volume)

	var docsPack float64
	switch {
	case ev.HasReadme && ev.HasPackaging:
		docsPack = 1
	case ev.HasReadme || ev.HasPackaging:
		docsPack = 0.5
	}

	score := wVolume*volume + wDocsPack*docsPack
	if ev.HasTests {
		score += wTests
	}
	if ev.HasCI {
		score += wCI
	}
	if ev.HasLintConfig {
		score += wLint
	}
	return clamp01(score)
}

// DatasetQuality scores dataset linkage, documentation and integration signals.
func DatasetQuality(ev schema.DatasetQualityEvidence) float64 {
	var score float64
	if ev.DatasetURL != "" {
		score += 0.3
	}
	if ev.CodeURL != "" {
		score += 0.3
	}
	switch n := runeLen(ev.Description); {
	case n > 100:
		score += 0.2
	case n > 50:
		score += 0.1
	}
	if ev.HasReadme {
		score += 0.1
	}
	if ev.HasExamples {
		score += 0.15
	}
	if ev.MLIntegration {
		score += 0.1
	}
	if ev.TransformersConfig {
		score += 0.2
	}
	if ev.Downloads >= 1000 {
		score += 0.03
	}
	if ev.Likes >= 100 {
		score += 0.02
	}
	return clamp01(score)
}

// commonLicenseMarkers are substrings of widely recognized license families.
var commonLicenseMarkers = []string{"apache", "mit", "bsd", "gpl", "cc", "mozilla"}

// DatasetAndCode scores documentation, examples, scale, license and engagement.
func DatasetAndCode(ev schema.DatasetAndCodeEvidence) float64 {
	var score float64
	if ev.HasDocumentation {
		switch n := runeLen(ev.Description); {
		case n > 200:
			score += 0.35
		case n > 100:
			score += 0.25
		case n > 50:
			score += 0.15
		}
	}
	if ev.HasCodeExamples {
		score += 0.30
	}

	switch ev.Kind {
	case schema.DatasetKind:
		switch n := ev.ExampleCount; {
		case n > 1_000_000:
			score += 0.25
		case n > 100_000:
			score += 0.20
		case n > 10_000:
			score += 0.15
		case n > 1_000:
			score += 0.08
		}
	case schema.ModelKind, schema.CodeKind:
		if ev.MLIntegration {
			score += 0.20
		}
	}

	license := strings.ToLower(strings.TrimSpace(ev.License))
	if license != "" && license != "unknown" && license != "none" {
		recognized := false
		for _, marker := range commonLicenseMarkers {
			if strings.Contains(license, marker) {
				recognized = true
				break
			}
		}
		if recognized {
			score += 0.20
		} else {
			score += 0.10
		}
	}

	score += min(float64(max(ev.Downloads, 0))/1000, 0.15)
	score += min(float64(max(ev.Likes, 0))/100, 0.08)
	return clamp01(score)
}
