package outwriter

import (
	"encoding/csv"
	"fmt"
	"io"
	"strings"

	"github.com/huangsam/mlscore/internal/contract"
	"github.com/huangsam/mlscore/internal/parquet"
	"github.com/huangsam/mlscore/schema"
	"github.com/olekukonko/tablewriter"
	"github.com/olekukonko/tablewriter/tw"
)

// dimensionRow is one line of the per-dimension breakdown.
type dimensionRow struct {
	Name    string
	Score   schema.Fixed
	Latency schema.Fixed
	Weight  string // "" for advisory dimensions and devices
}

// dimensionRows expands a report into rows in report order. Devices follow the size dimension.
func dimensionRows(report schema.ScoreReport, weights map[schema.Dimension]string) []dimensionRow {
	rows := make([]dimensionRow, 0, len(schema.AllDimensions)+len(schema.AllDevices)+len(schema.PlaceholderDimensions))
	for _, dim := range schema.AllDimensions {
		ds := report.Dimension(dim)
		rows = append(rows, dimensionRow{Name: string(dim), Score: ds.Score, Latency: ds.Latency, Weight: weights[dim]})
		if dim == schema.SizeDim {
			for _, tier := range schema.AllDevices {
				rows = append(rows, dimensionRow{Name: "  " + string(tier), Score: report.SizeScore.Get(tier)})
			}
		}
	}
	for _, dim := range schema.PlaceholderDimensions {
		ds := report.Dimension(dim)
		rows = append(rows, dimensionRow{Name: string(dim), Score: ds.Score, Latency: ds.Latency})
	}
	return rows
}

// weightLabels formats the active weight table for display.
func weightLabels(cfg *contract.Config) map[schema.Dimension]string {
	out := make(map[schema.Dimension]string, len(schema.AllDimensions))
	if cfg.Weights != nil {
		for dim, w := range cfg.Weights {
			out[dim] = w.StringFixed(2)
		}
		return out
	}
	for dim, w := range schema.GetDefaultWeights() {
		out[dim] = fmt.Sprintf("%.2f", w)
	}
	return out
}

// PrintArtifactDetail outputs one record with its metadata and per-dimension breakdown.
func PrintArtifactDetail(record schema.ArtifactRecord, cfg *contract.Config) error {
	return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
		return WriteArtifactDetail(w, record, cfg)
	}, successMessage(cfg.Output))
}

// WriteArtifactDetail writes one record to w in the configured output format.
func WriteArtifactDetail(w io.Writer, record schema.ArtifactRecord, cfg *contract.Config) error {
	switch cfg.Output {
	case schema.JSONOut:
		return writeJSON(w, NewArtifactView(record))
	case schema.NDJSONOut:
		return writeNDJSON(w, []RatingView{NewRatingView(record)})
	case schema.CSVOut:
		return writeDimensionsCSV(w, record.Scores, cfg)
	case schema.ParquetOut:
		return parquet.WriteArtifacts(w, parquet.ConvertArtifactRecords([]schema.ArtifactRecord{record}))
	default:
		if err := writeMetadataBlock(w, record, cfg); err != nil {
			return err
		}
		return writeDimensionsTable(w, record.Scores, cfg)
	}
}

// PrintRating outputs the score report of one record.
func PrintRating(record schema.ArtifactRecord, cfg *contract.Config) error {
	return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
		return WriteRating(w, record, cfg)
	}, successMessage(cfg.Output))
}

// WriteRating writes the score report of one record to w.
func WriteRating(w io.Writer, record schema.ArtifactRecord, cfg *contract.Config) error {
	switch cfg.Output {
	case schema.JSONOut:
		return writeJSON(w, NewRatingView(record))
	case schema.TextOut, "":
		if _, err := fmt.Fprintf(w, "%s (%s)\n", record.Name, record.KindLabel()); err != nil {
			return err
		}
		return writeDimensionsTable(w, record.Scores, cfg)
	default:
		return WriteArtifactDetail(w, record, cfg)
	}
}

// writeMetadataBlock prints the identifying fields of a record.
func writeMetadataBlock(w io.Writer, r schema.ArtifactRecord, cfg *contract.Config) error {
	fmtFloat, intFmt := createFormatters(cfg.Precision)
	size := "unknown"
	if r.Metadata.SizeMB != nil {
		size = fmtFloat(*r.Metadata.SizeMB) + " MB"
	}
	license := r.Metadata.License
	if license == "" {
		license = "none"
	}

	lines := [][2]string{
		{"ID", r.ID},
		{"Name", r.Name},
		{"Kind", r.KindLabel()},
		{"URL", r.URL},
		{"PURL", r.PURL},
		{"License", license},
		{"Downloads", fmt.Sprintf(intFmt, r.Metadata.Downloads)},
		{"Likes", fmt.Sprintf(intFmt, r.Metadata.Likes)},
		{"Size", size},
		{"Contributors", fmt.Sprintf(intFmt, r.Metadata.Contributors)},
		{"Languages", strings.Join(r.Metadata.Languages, ", ")},
		{"Download", r.Metadata.DownloadURL},
		{"Created", r.CreatedAt.Format(contract.DateTimeFormat)},
	}
	if r.Metadata.HarvestError != "" {
		lines = append(lines, [2]string{"Harvest error", r.Metadata.HarvestError})
	}
	for _, l := range lines {
		if l[1] == "" {
			continue
		}
		if _, err := fmt.Fprintf(w, "%-14s %s\n", l[0]+":", l[1]); err != nil {
			return err
		}
	}
	_, err := fmt.Fprintln(w)
	return err
}

// writeDimensionsTable renders the per-dimension breakdown of a report.
func writeDimensionsTable(w io.Writer, report schema.ScoreReport, cfg *contract.Config) error {
	fmtFloat, _ := createFormatters(cfg.Precision)
	table := tablewriter.NewWriter(w)
	table.Header([]string{"Dimension", "Score", "Band", "Weight", "Latency (ms)"})
	table.Configure(func(cfg *tablewriter.Config) {
		cfg.Row.Alignment.Global = tw.AlignRight
	})

	var data [][]string
	for _, row := range dimensionRows(report, weightLabels(cfg)) {
		latency := row.Latency.String()
		if strings.HasPrefix(row.Name, " ") {
			latency = ""
		}
		data = append(data, []string{
			row.Name,
			fmtFloat(row.Score.Float64()),
			bandLabel(row.Score.Float64(), cfg.UseColors),
			row.Weight,
			latency,
		})
	}
	net := report.NetScore.Float64()
	data = append(data, []string{"net_score", fmtFloat(net), bandLabel(net, cfg.UseColors), "", report.NetScoreLatency.String()})

	if err := table.Bulk(data); err != nil {
		return err
	}
	return table.Render()
}

// writeDimensionsCSV writes the per-dimension breakdown as CSV.
func writeDimensionsCSV(w io.Writer, report schema.ScoreReport, cfg *contract.Config) error {
	fmtFloat, _ := createFormatters(cfg.Precision)
	header := []string{"dimension", "score", "label", "weight", "latency_ms"}
	return writeCSVWithHeader(w, header, func(cw *csv.Writer) error {
		for _, row := range dimensionRows(report, weightLabels(cfg)) {
			rec := []string{
				strings.TrimSpace(row.Name),
				fmtFloat(row.Score.Float64()),
				contract.GetPlainLabel(row.Score.Float64()),
				row.Weight,
				row.Latency.String(),
			}
			if err := cw.Write(rec); err != nil {
				return fmt.Errorf("failed to write CSV record: %w", err)
			}
		}
		net := report.NetScore.Float64()
		return cw.Write([]string{"net_score", fmtFloat(net), contract.GetPlainLabel(net), "", report.NetScoreLatency.String()})
	})
}
