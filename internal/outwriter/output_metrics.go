package outwriter

import (
	"fmt"
	"io"
	"strings"

	"github.com/huangsam/mlscore/internal/contract"
	"github.com/huangsam/mlscore/schema"
)

// dimensionInfo holds the static description of a dimension.
type dimensionInfo struct {
	purpose string
	signals []string
}

var dimensionDescriptions = map[schema.Dimension]dimensionInfo{
	schema.LicenseDim: {
		purpose: "Permissiveness of the declared license",
		signals: []string{"license field", "card license", "license: tags"},
	},
	schema.BusFactorDim: {
		purpose: "Breadth of the contributor base",
		signals: []string{"distinct commit authors / 10"},
	},
	schema.CodeQualityDim: {
		purpose: "Engineering hygiene of the linked code",
		signals: []string{"tests", "CI", "lint config", "language diversity", "packaging"},
	},
	schema.DatasetQualityDim: {
		purpose: "Documentation and linkage of the training data",
		signals: []string{"dataset url", "code url", "description", "examples", "ML integration"},
	},
	schema.DatasetAndCodeDim: {
		purpose: "Availability of documentation and runnable examples",
		signals: []string{"description length", "code examples", "example count", "license", "engagement"},
	},
	schema.PerformanceClaimsDim: {
		purpose: "Evidence backing reported performance",
		signals: []string{"model index", "eval tags", "downloads", "likes"},
	},
	schema.RampUpTimeDim: {
		purpose: "How fast a newcomer can get started",
		signals: []string{"README quality", "quick start", "install steps", "model size class"},
	},
	schema.SizeDim: {
		purpose: "Fit of the artifact on reference hardware",
		signals: []string{"model size in MB", "device memory budgets"},
	},
}

// PrintMetricsDefinitions displays the dimensions, weights and device budgets used for scoring.
// This is a static display that does not contact any upstream service.
func PrintMetricsDefinitions(cfg *contract.Config) error {
	model := BuildMetricsRenderModel(cfg)
	return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
		return WriteMetricsDefinitions(w, model, cfg)
	}, successMessage(cfg.Output))
}

// WriteMetricsDefinitions writes the render model in the configured output format.
func WriteMetricsDefinitions(w io.Writer, model *schema.MetricsRenderModel, cfg *contract.Config) error {
	switch cfg.Output {
	case schema.JSONOut, schema.NDJSONOut:
		return writeJSONMetrics(w, model)
	case schema.CSVOut:
		return writeCSVMetrics(w, model)
	default:
		return writeTextMetrics(w, model)
	}
}

// BuildMetricsRenderModel constructs the complete render model from the active configuration.
func BuildMetricsRenderModel(cfg *contract.Config) *schema.MetricsRenderModel {
	weights := make(map[schema.Dimension]float64, len(schema.AllDimensions))
	if cfg.Weights != nil {
		for dim, w := range cfg.Weights {
			weights[dim] = w.InexactFloat64()
		}
	} else {
		weights = schema.GetDefaultWeights()
	}
	limits := cfg.DeviceLimits
	if limits == nil {
		limits = schema.GetDefaultDeviceLimits()
	}

	model := &schema.MetricsRenderModel{
		Title:        "mlscore Dimensions",
		Description:  "Net score = weighted sum of the rounded dimension scores, bounded to [0,1]",
		SizeFormula:  "device score = min(1, limit_mb / size_mb); size_score = mean of device scores",
		Placeholders: schema.PlaceholderDimensions,
	}

	var terms []string
	for _, dim := range schema.AllDimensions {
		info := dimensionDescriptions[dim]
		model.Dimensions = append(model.Dimensions, schema.MetricsDimension{
			Name:    dim,
			Purpose: info.purpose,
			Signals: info.signals,
			Weight:  weights[dim],
		})
		if weights[dim] > 0 {
			terms = append(terms, fmt.Sprintf("%.2f*%s", weights[dim], dim))
		}
	}
	model.Formula = strings.Join(terms, " + ")

	for _, tier := range schema.AllDevices {
		model.Devices = append(model.Devices, schema.MetricsDevice{Name: tier, LimitMB: limits[tier]})
	}
	return model
}

// writeTextMetrics displays metrics in human-readable text format.
func writeTextMetrics(w io.Writer, model *schema.MetricsRenderModel) error {
	var b strings.Builder
	fmt.Fprintf(&b, "📐 %s\n", model.Title)
	fmt.Fprintf(&b, "%s\n\n", strings.Repeat("=", len(model.Title)+3))
	fmt.Fprintf(&b, "%s\n\n", model.Description)

	for _, d := range model.Dimensions {
		fmt.Fprintf(&b, "%s (weight %.2f): %s\n", d.Name, d.Weight, d.Purpose)
		fmt.Fprintf(&b, "   Signals: %s\n", strings.Join(d.Signals, ", "))
	}

	fmt.Fprintf(&b, "\nFormula: net_score = %s\n\n", model.Formula)
	fmt.Fprintf(&b, "💻 Device budgets\n")
	for _, dev := range model.Devices {
		fmt.Fprintf(&b, "   %-13s %8.0f MB\n", dev.Name, dev.LimitMB)
	}
	fmt.Fprintf(&b, "   %s\n\n", model.SizeFormula)

	names := make([]string, len(model.Placeholders))
	for i, p := range model.Placeholders {
		names[i] = string(p)
	}
	fmt.Fprintf(&b, "Advisory dimensions reported as %.1f: %s\n", schema.PlaceholderScore, strings.Join(names, ", "))

	_, err := io.WriteString(w, b.String())
	return err
}
