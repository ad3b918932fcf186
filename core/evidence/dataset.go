package evidence

import (
	"strings"
	"unicode/utf8"

	"github.com/huangsam/mlscore/internal/harvest"
	"github.com/huangsam/mlscore/schema"
)

// minDocumentedLength is the description length that counts as documentation.
const minDocumentedLength = 50

var (
	// exampleFileMarkers mark bundled files that show usage.
	exampleFileMarkers = []string{"example", "demo", "tutorial", ".ipynb", ".py"}

	// frameworkTags mark direct framework integration.
	frameworkTags = []string{"transformers", "pytorch", "tensorflow"}

	// exampleTags mark tags that point to code guidance.
	exampleTags = []string{"transformers", "pytorch", "tensorflow", "pipeline_tag", "task_categories:", "task_ids:"}

	// mlIntegrationTags mark any machine learning integration.
	mlIntegrationTags = []string{"transformers", "pytorch", "tensorflow", "tf", "jax", "task_categories:", "task_ids:", "pipeline_tag"}
)

// datasetQualityEvidence extracts the signals of dataset documentation and linkage.
func datasetQualityEvidence(raw schema.RawMetadata, d doc, linkedRepo string) schema.DatasetQualityEvidence {
	card := d.sub("cardData")
	siblings := d.siblings()
	tags := d.tags()
	downloads, likes := d.engagement()

	ev := schema.DatasetQualityEvidence{
		DatasetURL:  datasetLink(raw, d),
		CodeURL:     codeLink(raw, d, linkedRepo),
		Description: d.firstStr("description"),
		Downloads:   downloads,
		Likes:       likes,
	}
	if ev.Description == "" {
		ev.Description = card.str("description")
	}

	for _, name := range siblings {
		if strings.HasPrefix(strings.ToUpper(name), "README") {
			ev.HasReadme = true
			break
		}
	}

	transformersInfo := d.sub("transformersInfo")
	if len(transformersInfo) == 0 {
		transformersInfo = card.sub("transformersInfo")
	}
	ev.HasExamples = hasExampleFile(siblings) ||
		card.has("widgetData") || d.has("widgetData") ||
		transformersInfo.has("auto_model") ||
		anyContains(tags, exampleTags)

	ev.TransformersConfig = len(transformersInfo) > 0 || card.has("pipeline_tag")
	ev.MLIntegration = ev.TransformersConfig || anyContains(tags, frameworkTags)
	return ev
}

// datasetLink returns the dataset referenced by an artifact.
func datasetLink(raw schema.RawMetadata, d doc) string {
	card := d.sub("cardData")
	if link := d.firstStr("dataset"); link != "" {
		return link
	}
	if link := card.str("dataset_url"); link != "" {
		return link
	}
	if raw.Kind == schema.DatasetKind {
		return raw.URL
	}
	if names := card.strList("datasets"); len(names) > 0 {
		return harvest.DefaultHuggingFaceBase + "/datasets/" + names[0]
	}
	return ""
}

// codeLink returns the code repository referenced by an artifact.
func codeLink(raw schema.RawMetadata, d doc, linkedRepo string) string {
	if link := d.firstStr("code_url"); link != "" {
		return link
	}
	if link := d.sub("cardData").str("code_url"); link != "" {
		return link
	}
	if raw.Kind == schema.CodeKind {
		return raw.URL
	}
	if linkedRepo != "" {
		return "https://" + harvest.GitHubHost + "/" + linkedRepo
	}
	return ""
}

// datasetAndCodeEvidence extracts documentation, examples and engagement signals.
func datasetAndCodeEvidence(kind schema.ArtifactKind, d doc, license string) schema.DatasetAndCodeEvidence {
	siblings := d.siblings()
	tags := d.tags()
	downloads, likes := d.engagement()
	if kind == schema.CodeKind && likes == 0 {
		likes = max(d.count("stargazers_count"), 0)
	}

	ev := schema.DatasetAndCodeEvidence{
		Kind:        kind,
		Description: d.str("description"),
		License:     license,
		Downloads:   downloads,
		Likes:       likes,
	}

	ev.HasDocumentation = utf8.RuneCountInString(strings.TrimSpace(ev.Description)) >= minDocumentedLength
	for _, name := range siblings {
		upper := strings.ToUpper(name)
		if strings.Contains(upper, "README.MD") || strings.Contains(upper, "README.TXT") || strings.Contains(upper, "README.RST") {
			ev.HasDocumentation = true
			break
		}
	}

	ev.HasCodeExamples = d.has("widgetData") ||
		d.sub("transformersInfo").has("auto_model") ||
		hasExampleFile(siblings)

	ev.MLIntegration = anyContains(tags, mlIntegrationTags) ||
		d.has("pipeline_tag") || d.has("transformersInfo")

	if kind == schema.DatasetKind {
		ev.ExampleCount = exampleCount(d.sub("cardData")["dataset_info"])
	}
	return ev
}

// exampleCount sums num_examples over the splits of one or several dataset_info blocks.
func exampleCount(info any) int64 {
	var total int64
	switch v := info.(type) {
	case map[string]any:
		for _, split := range doc(v).list("splits") {
			if s, ok := split.(map[string]any); ok {
				total += max(doc(s).count("num_examples"), 0)
			}
		}
	case []any:
		for _, item := range v {
			total += exampleCount(item)
		}
	}
	return total
}

func hasExampleFile(siblings []string) bool {
	for _, name := range siblings {
		if containsAny(strings.ToLower(name), exampleFileMarkers) {
			return true
		}
	}
	return false
}
