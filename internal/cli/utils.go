// Package cli formats tumorcheck results for the terminal.
package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/hyperjump/tumorcheck/internal/batch"
	"github.com/hyperjump/tumorcheck/internal/models"
	"github.com/hyperjump/tumorcheck/internal/schema"
	"github.com/hyperjump/tumorcheck/pkg/utils"
)

// OutputFormat is the format for command output.
type OutputFormat string

const (
	// OutputText is human-readable text (default).
	OutputText OutputFormat = "text"
	// OutputJSON is structured JSON for machine consumption.
	OutputJSON OutputFormat = "json"
)

// ParseOutputFormat accepts "text" or "json".
func ParseOutputFormat(s string) (OutputFormat, error) {
	switch OutputFormat(strings.ToLower(s)) {
	case OutputText, "":
		return OutputText, nil
	case OutputJSON:
		return OutputJSON, nil
	default:
		return "", fmt.Errorf("unknown output format %q: want text or json", s)
	}
}

func writeJSON(w io.Writer, v interface{}) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// WritePrediction writes one prediction to w in the given format.
func WritePrediction(w io.Writer, resp *models.PredictResponse, format OutputFormat) error {
	if format == OutputJSON {
		return writeJSON(w, resp)
	}
	fmt.Fprintf(w, "Diagnosis:   %s\n", resp.Label)
	fmt.Fprintf(w, "Probability: %.4f (malignant if > %.2f)\n", resp.Probability, models.DecisionThreshold)
	if resp.ModelVersion != "" {
		fmt.Fprintf(w, "Model:       %s\n", resp.ModelVersion)
	}
	if resp.ID != "" {
		fmt.Fprintf(w, "ID:          %s\n", resp.ID)
	}
	return nil
}

// PrintPrediction prints a prediction to stdout in text format.
func PrintPrediction(resp *models.PredictResponse) {
	_ = WritePrediction(os.Stdout, resp, OutputText)
}

// WriteSchema writes the feature schema grouped by band.
func WriteSchema(w io.Writer, groups []schema.Group, format OutputFormat) error {
	if format == OutputJSON {
		return writeJSON(w, groups)
	}
	for _, g := range groups {
		fmt.Fprintf(w, "%s (%s)\n", g.Band.Title, g.Band.Key)
		for _, f := range g.Features {
			fmt.Fprintf(w, "  %-26s default %10.4f  range [%.4f, %.4f]\n", f.Name, f.Default, f.Min, f.Max)
		}
		fmt.Fprintln(w)
	}
	return nil
}

// WriteHistory writes stored predictions, newest first.
func WriteHistory(w io.Writer, recs []*models.PredictionRecord, format OutputFormat) error {
	if format == OutputJSON {
		if recs == nil {
			recs = []*models.PredictionRecord{}
		}
		return writeJSON(w, recs)
	}
	if len(recs) == 0 {
		fmt.Fprintln(w, "No predictions recorded.")
		return nil
	}
	fmt.Fprintf(w, "%-11s  %-20s  %-6s  %-11s  %s\n", "ID", "CREATED", "SOURCE", "PROBABILITY", "LABEL")
	for _, r := range recs {
		fmt.Fprintf(w, "%-11s  %-20s  %-6s  %-11.4f  %s\n",
			utils.Truncate(r.ID, 8), r.CreatedAt.Format("2006-01-02 15:04:05"), r.Source, r.Probability, r.Label)
	}
	return nil
}

// BatchReport is the output of a batch run.
type BatchReport struct {
	Input   string         `json:"input"`
	Output  string         `json:"output,omitempty"`
	Summary batch.Summary  `json:"summary"`
	Results []batch.Result `json:"results,omitempty"`
}

// WriteBatchReport writes a batch summary and, in text mode, one line per failed row.
func WriteBatchReport(w io.Writer, report *BatchReport, format OutputFormat) error {
	if format == OutputJSON {
		return writeJSON(w, report)
	}
	s := report.Summary
	fmt.Fprintf(w, "Scored %d rows from %s: %d malignant, %d benign, %d failed\n",
		s.Total, report.Input, s.Malignant, s.Benign, s.Failed)
	for _, r := range report.Results {
		if !r.OK() {
			fmt.Fprintf(w, "  line %d: %s\n", r.Line, utils.Truncate(r.Error, 200))
		}
	}
	if report.Output != "" {
		fmt.Fprintf(w, "Results written to %s\n", report.Output)
	}
	return nil
}

// WriteStatus writes a status report.
func WriteStatus(w io.Writer, st *models.StatusReport, format OutputFormat) error {
	if format == OutputJSON {
		return writeJSON(w, st)
	}
	fmt.Fprintf(w, "Model version: %s\n", st.ModelVersion)
	fmt.Fprintf(w, "Backend:       %s (input width %d)\n", st.Backend, st.InputWidth)
	fmt.Fprintf(w, "Scaler:        %s\n", st.ScalerPath)
	fmt.Fprintf(w, "Model:         %s\n", st.ModelPath)
	if st.ArtifactsStale {
		fmt.Fprintln(w, "               artifacts changed on disk; restart to load them")
	}
	if st.Cache != nil {
		fmt.Fprintf(w, "Cache:         %d entries, %d hits, %d misses\n", st.Cache.Size, st.Cache.Hits, st.Cache.Misses)
	}
	if st.HistoryEnabled {
		fmt.Fprintf(w, "Database:      %s\n", st.DatabasePath)
		fmt.Fprintf(w, "Predictions:   %d (%d malignant, %d benign)\n",
			st.Predictions, st.Labels[models.LabelMalignant], st.Labels[models.LabelBenign])
	}
	fmt.Fprintf(w, "Disk usage:    %s\n", FormatBytes(st.DiskUsageBytes))
	return nil
}

// FormatBytes renders n with a binary unit suffix.
func FormatBytes(n int64) string {
	const unit = 1024
	if n < unit {
		return fmt.Sprintf("%d B", n)
	}
	div, exp := int64(unit), 0
	for m := n / unit; m >= unit; m /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %ciB", float64(n)/float64(div), "KMGTPE"[exp])
}
