package outwriter

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/huangsam/mlscore/internal/contract"
	"github.com/huangsam/mlscore/internal/parquet"
	"github.com/huangsam/mlscore/schema"
	"github.com/olekukonko/tablewriter"
	"github.com/olekukonko/tablewriter/tw"
)

// artifactTableFixedWidth is the width taken by every column except the name.
const artifactTableFixedWidth = 82

// PrintArtifacts outputs artifact records, dispatching on the configured output format.
// A zero duration marks a listing of stored records rather than a scoring run.
func PrintArtifacts(records []schema.ArtifactRecord, cfg *contract.Config, duration time.Duration) error {
	return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
		return WriteArtifacts(w, records, cfg, duration)
	}, successMessage(cfg.Output))
}

// WriteArtifacts writes artifact records to w in the configured output format.
func WriteArtifacts(w io.Writer, records []schema.ArtifactRecord, cfg *contract.Config, duration time.Duration) error {
	fmtFloat, _ := createFormatters(cfg.Precision)

	var err error
	switch cfg.Output {
	case schema.JSONOut:
		err = writeArtifactsJSON(w, records)
	case schema.NDJSONOut:
		err = writeArtifactsNDJSON(w, records)
	case schema.CSVOut:
		err = writeArtifactsCSV(w, records, fmtFloat)
	case schema.ParquetOut:
		err = parquet.WriteArtifacts(w, parquet.ConvertArtifactRecords(records))
	default:
		return writeArtifactsTable(w, records, cfg, fmtFloat, duration)
	}
	if err != nil {
		return fmt.Errorf("error writing %s output: %w", cfg.Output, err)
	}
	return nil
}

func successMessage(mode schema.OutputMode) string {
	switch mode {
	case schema.JSONOut:
		return "Wrote JSON"
	case schema.NDJSONOut:
		return "Wrote NDJSON"
	case schema.CSVOut:
		return "Wrote CSV"
	case schema.ParquetOut:
		return "Wrote Parquet"
	default:
		return "Wrote table"
	}
}

// writeArtifactsTable generates and writes the human-readable table.
func writeArtifactsTable(w io.Writer, records []schema.ArtifactRecord, cfg *contract.Config, fmtFloat func(float64) string, duration time.Duration) error {
	table := tablewriter.NewWriter(w)
	table.Header([]string{"#", "Name", "Kind", "Net", "Band", "Lic", "Bus", "Code", "DataQ", "D&C", "Perf", "Ramp", "Size"})
	table.Configure(func(cfg *tablewriter.Config) {
		cfg.Row.Alignment.Global = tw.AlignRight
	})

	nameWidth := GetMaxTableNameWidth(cfg, artifactTableFixedWidth)
	data := make([][]string, 0, len(records))
	for i, r := range records {
		s := r.Scores
		net := s.NetScore.Float64()
		data = append(data, []string{
			strconv.Itoa(i + 1),
			contract.TruncateText(r.Name, nameWidth),
			r.KindLabel(),
			fmtFloat(net),
			bandLabel(net, cfg.UseColors),
			fmtFloat(s.License.Float64()),
			fmtFloat(s.BusFactor.Float64()),
			fmtFloat(s.CodeQuality.Float64()),
			fmtFloat(s.DatasetQuality.Float64()),
			fmtFloat(s.DatasetAndCode.Float64()),
			fmtFloat(s.PerformanceClaims.Float64()),
			fmtFloat(s.RampUpTime.Float64()),
			fmtFloat(s.SizeScore.Mean().Float64()),
		})
	}

	if err := table.Bulk(data); err != nil {
		return err
	}
	if err := table.Render(); err != nil {
		return err
	}

	if duration <= 0 {
		_, err := fmt.Fprintf(w, "Showing %d artifacts. Store backend: %s\n", len(records), cfg.StoreBackend)
		return err
	}
	_, err := fmt.Fprintf(w, "Scored %d artifacts in %v with %d workers. Cache backend: %s\n",
		len(records), duration.Round(time.Millisecond), cfg.Workers, cfg.CacheBackend)
	return err
}

// bandLabel returns the score band, colored when enabled.
func bandLabel(score float64, useColors bool) string {
	if useColors {
		return contract.GetColorLabel(score)
	}
	return contract.GetPlainLabel(score)
}

// writeArtifactsJSON writes the records as one indented JSON array.
func writeArtifactsJSON(w io.Writer, records []schema.ArtifactRecord) error {
	output := make([]ArtifactView, len(records))
	for i, r := range records {
		output[i] = NewArtifactView(r)
	}
	return writeJSON(w, output)
}

// writeArtifactsNDJSON writes one compact rating line per record.
func writeArtifactsNDJSON(w io.Writer, records []schema.ArtifactRecord) error {
	lines := make([]RatingView, len(records))
	for i, r := range records {
		lines[i] = NewRatingView(r)
	}
	return writeNDJSON(w, lines)
}

// artifactCSVHeader lists the CSV columns of artifact output.
var artifactCSVHeader = []string{
	"index", "id", "name", "kind", "url", "net_score", "label",
	"license", "bus_factor", "code_quality", "dataset_quality", "dataset_and_code",
	"performance_claims", "ramp_up_time",
	"size_raspberry_pi", "size_jetson_nano", "size_desktop_pc", "size_aws_server",
	"net_score_latency", "created_at",
}

// writeArtifactsCSV writes one CSV row per record.
func writeArtifactsCSV(w io.Writer, records []schema.ArtifactRecord, fmtFloat func(float64) string) error {
	return writeCSVWithHeader(w, artifactCSVHeader, func(cw *csv.Writer) error {
		for i, r := range records {
			s := r.Scores
			row := []string{
				strconv.Itoa(i + 1),
				r.ID,
				r.Name,
				string(r.Kind),
				r.URL,
				fmtFloat(s.NetScore.Float64()),
				contract.GetPlainLabel(s.NetScore.Float64()),
				fmtFloat(s.License.Float64()),
				fmtFloat(s.BusFactor.Float64()),
				fmtFloat(s.CodeQuality.Float64()),
				fmtFloat(s.DatasetQuality.Float64()),
				fmtFloat(s.DatasetAndCode.Float64()),
				fmtFloat(s.PerformanceClaims.Float64()),
				fmtFloat(s.RampUpTime.Float64()),
				fmtFloat(s.SizeScore.RaspberryPi.Float64()),
				fmtFloat(s.SizeScore.JetsonNano.Float64()),
				fmtFloat(s.SizeScore.DesktopPC.Float64()),
				fmtFloat(s.SizeScore.AWSServer.Float64()),
				s.NetScoreLatency.String(),
				r.CreatedAt.Format(contract.DateTimeFormat),
			}
			if err := cw.Write(row); err != nil {
				return fmt.Errorf("failed to write CSV record: %w", err)
			}
		}
		return nil
	})
}
