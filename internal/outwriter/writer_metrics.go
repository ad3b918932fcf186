package outwriter

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/huangsam/mlscore/schema"
)

// writeJSONMetrics writes the metrics definitions in JSON format.
func writeJSONMetrics(w io.Writer, model *schema.MetricsRenderModel) error {
	return writeJSON(w, model)
}

// writeCSVMetrics writes one row per dimension followed by one row per device.
func writeCSVMetrics(w io.Writer, model *schema.MetricsRenderModel) error {
	header := []string{"kind", "name", "weight_or_limit_mb", "purpose", "signals"}
	return writeCSVWithHeader(w, header, func(cw *csv.Writer) error {
		for _, d := range model.Dimensions {
			record := []string{
				"dimension",
				string(d.Name),
				strconv.FormatFloat(d.Weight, 'f', 2, 64),
				d.Purpose,
				strings.Join(d.Signals, "|"),
			}
			if err := cw.Write(record); err != nil {
				return fmt.Errorf("failed to write CSV record: %w", err)
			}
		}
		for _, dev := range model.Devices {
			record := []string{"device", string(dev.Name), strconv.FormatFloat(dev.LimitMB, 'f', 0, 64), "", ""}
			if err := cw.Write(record); err != nil {
				return fmt.Errorf("failed to write CSV record: %w", err)
			}
		}
		return nil
	})
}
