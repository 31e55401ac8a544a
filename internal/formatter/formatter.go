// package formatter renders an import run's results as a CSV or JSON report.
package formatter

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/donalf/yt2spot/internal/match"
	"github.com/donalf/yt2spot/internal/shared"
	"github.com/donalf/yt2spot/internal/tasks"
)

// csvHeaders are the report columns, one row per source item.
var csvHeaders = []string{
	"position", "source_id", "raw_title",
	"artist", "title", "confidence",
	"outcome", "matched_id", "matched_title", "matched_artist",
	"query", "reason",
}

// ExportToCSV renders the per-item results as CSV, one row per source item
// in playlist order.
func ExportToCSV(result *tasks.ImportResult) ([]byte, error) {
	var buf bytes.Buffer
	writer := csv.NewWriter(&buf)

	if err := writer.Write(csvHeaders); err != nil {
		return nil, fmt.Errorf("failed to write CSV headers: %w", err)
	}

	for _, r := range result.Results {
		if err := writer.Write(csvRecord(r)); err != nil {
			return nil, fmt.Errorf("failed to write CSV record: %w", err)
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return nil, fmt.Errorf("CSV writer error: %w", err)
	}

	return buf.Bytes(), nil
}

func csvRecord(r match.Result) []string {
	record := []string{
		strconv.Itoa(r.Item.Position),
		r.Item.SourceID,
		r.Item.RawTitle,
		r.Query.Artist,
		r.Query.Title,
		r.Query.Confidence.String(),
		r.Outcome.String(),
		"", "", "",
		r.QueryString,
		r.Reason,
	}

	if r.Candidate != nil {
		record[7] = r.Candidate.ID
		record[8] = r.Candidate.Title
		record[9] = r.Candidate.Artist
	}

	return record
}

// jsonReport is the JSON report envelope.
type jsonReport struct {
	GeneratedAt string              `json:"generated_at"`
	Summary     jsonSummary         `json:"summary"`
	Result      *tasks.ImportResult `json:"report"`
}

type jsonSummary struct {
	Total           int     `json:"total"`
	Matched         int     `json:"matched"`
	Ambiguous       int     `json:"ambiguous"`
	NotFound        int     `json:"not_found"`
	AddFailed       int     `json:"add_failed"`
	MatchPercentage float64 `json:"match_percentage"`
}

// ExportToJSON renders the full run, summary included, as indented JSON.
func ExportToJSON(result *tasks.ImportResult) ([]byte, error) {
	report := jsonReport{
		GeneratedAt: time.Now().UTC().Format(time.RFC3339),
		Summary: jsonSummary{
			Total:           len(result.Results),
			Matched:         result.Matched,
			Ambiguous:       result.Ambiguous,
			NotFound:        result.NotFound,
			AddFailed:       result.AddFailed,
			MatchPercentage: result.MatchPercentage(),
		},
		Result: result,
	}

	return shared.MarshalJSON(report, true)
}

// WriteReport writes the report in the given format ("csv" or "json") and
// returns the path written. basePath may omit the extension; the format's
// extension is appended when missing.
func WriteReport(result *tasks.ImportResult, format, basePath string) (string, error) {
	var (
		data []byte
		err  error
	)

	switch format {
	case "csv":
		data, err = ExportToCSV(result)
	case "json":
		data, err = ExportToJSON(result)
	default:
		return "", fmt.Errorf("%w: unsupported report format %q", shared.ErrInvalidArgument, format)
	}
	if err != nil {
		return "", fmt.Errorf("failed to generate %s report: %w", format, err)
	}

	path := basePath
	if path == "" {
		path = "import_report"
	}
	if !strings.HasSuffix(path, "."+format) {
		path += "." + format
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return "", fmt.Errorf("failed to write report file: %w", err)
	}

	return path, nil
}
