package evidence

import (
	"strings"

	"github.com/huangsam/mlscore/schema"
)

// readmeExcerptLength bounds how much of a README feeds the ramp-up description.
const readmeExcerptLength = 2000

var (
	evalTags = []string{"benchmark", "leaderboard", "sota", "evaluation", "eval-results"}

	knownFamilies = []string{"bert", "distilbert", "gpt", "whisper", "roberta", "t5"}

	docFileMarkers = []string{"readme.md", "readme.txt", "readme.rst", "docs/", "documentation"}

	quickStartPhrases = []string{"quick start", "getting started", "quickstart", "installation", "usage", "example", "tutorial", "how to use"}
	quickStartFiles   = []string{"quickstart", "getting_started", "tutorial", "example", "demo", "usage", "install"}

	installPhrases = []string{"pip install", "conda install", "npm install", "yarn add", "installation", "install", "setup", "requirements"}
	installFiles   = []string{"requirements.txt", "package.json", "setup.py", "pyproject.toml", "environment.yml", "dockerfile", "makefile"}

	runnableFiles = []string{".py", ".ipynb", "example", "demo", "sample"}

	lightweightTags   = []string{"transformers", "diffusers", "sentence-transformers", "sklearn", "numpy", "pytorch", "tensorflow"}
	standalonePhrases = []string{"no dependencies", "standalone", "zero dependencies", "minimal setup", "plug and play"}

	largeDescPhrases = []string{"billion", "parameters", "large-scale"}
	smallDescPhrases = []string{"lightweight", "efficient", "fast"}

	// sizeClassTagGroups are checked in order; the first matching group wins.
	sizeClassTagGroups = []struct {
		class   schema.SizeClass
		markers []string
	}{
		{schema.LargeModel, []string{"large", "xl", "big", "giant"}},
		{schema.MediumModel, []string{"medium", "base", "standard"}},
		{schema.SmallModel, []string{"small", "mini", "tiny", "micro", "nano"}},
	}
)

// performanceEvidence extracts evaluation results and popularity.
func performanceEvidence(kind schema.ArtifactKind, d doc) schema.PerformanceEvidence {
	downloads, likes := d.engagement()
	ev := schema.PerformanceEvidence{
		Kind:      kind,
		EvalTags:  anyContains(d.tags(), evalTags),
		Downloads: downloads,
		Likes:     likes,
	}

	entries := d.list("model-index")
	ev.ModelIndex = len(entries)
	for _, entry := range entries {
		if m, ok := entry.(map[string]any); ok {
			ev.ResultCount += len(doc(m).list("results"))
		}
	}
	if ev.ModelIndex == 0 {
		ev.CardModelIndex = d.sub("cardData").has("model-index")
	}
	return ev
}

// rampUpEvidence extracts the signals of how fast a newcomer can get started.
func rampUpEvidence(kind schema.ArtifactKind, d doc, readme string) schema.RampUpEvidence {
	card := d.sub("cardData")
	tags := d.tags()
	siblings := lowered(d.siblings())

	desc := d.str("description")
	if desc == "" {
		desc = card.firstStr("model_description", "description")
	}
	if kind == schema.CodeKind && readme != "" {
		desc = strings.TrimSpace(desc + "\n\n" + truncateRunes(readme, readmeExcerptLength))
	}
	lowDesc := strings.ToLower(desc)

	transformersInfo := d.sub("transformersInfo")
	ev := schema.RampUpEvidence{
		Kind:        kind,
		Description: desc,
		KnownFamily: anyContains(tags, knownFamilies),
		SizeClass:   sizeClass(tags, lowDesc),
	}
	ev.HasDocFile = anyContains(siblings, docFileMarkers) || (kind == schema.CodeKind && readme != "")
	ev.HasQuickStart = containsAny(lowDesc, quickStartPhrases) || anyContains(siblings, quickStartFiles)
	ev.HasInstall = containsAny(lowDesc, installPhrases) ||
		anyContains(tags, []string{"transformers"}) ||
		anyContains(siblings, installFiles)
	ev.HasRunnableExamples = d.has("widgetData") ||
		transformersInfo.has("auto_model") ||
		anyContains(siblings, runnableFiles)
	ev.MinimalDeps = anyContains(tags, lightweightTags) || containsAny(lowDesc, standalonePhrases)
	return ev
}

// sizeClass buckets a model by tag markers, then by description wording.
func sizeClass(tags []string, lowDesc string) schema.SizeClass {
	for _, group := range sizeClassTagGroups {
		if anyContains(tags, group.markers) {
			return group.class
		}
	}
	switch {
	case containsAny(lowDesc, largeDescPhrases):
		return schema.LargeModel
	case containsAny(lowDesc, smallDescPhrases):
		return schema.SmallModel
	default:
		return schema.MediumModel
	}
}

func lowered(values []string) []string {
	out := make([]string, len(values))
	for i, v := range values {
		out[i] = strings.ToLower(v)
	}
	return out
}
