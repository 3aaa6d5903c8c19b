// Package export writes chart breakdowns to CSV or JSON files.
package export

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	jsoniter "github.com/json-iterator/go"

	"github.com/rebeliceyang/surveylens/internal/models"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// Format is an export file format
type Format string

const (
	CSV  Format = "csv"
	JSON Format = "json"
)

// Report is one export: the filters that produced it and its breakdowns
type Report struct {
	GeneratedAt time.Time           `json:"generatedAt"`
	Fragment    string              `json:"fragment,omitempty"`
	Filters     map[string][]string `json:"filters"`
	Respondents int64               `json:"respondents"`
	Breakdowns  []models.Breakdown  `json:"breakdowns"`
}

// NewReport keeps only the active categories of state
func NewReport(state models.FilterState, fragment string, respondents int64, breakdowns []models.Breakdown) Report {
	filters := make(map[string][]string)
	for k, v := range state {
		if len(v) > 0 {
			filters[k] = v
		}
	}
	return Report{
		GeneratedAt: time.Now().UTC(),
		Fragment:    fragment,
		Filters:     filters,
		Respondents: respondents,
		Breakdowns:  breakdowns,
	}
}

// FormatFor picks a format from a file extension
func FormatFor(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".csv":
		return CSV, nil
	case ".json":
		return JSON, nil
	default:
		return "", fmt.Errorf("unsupported export format %q", filepath.Ext(path))
	}
}

// WriteCSV writes one line per breakdown item
func WriteCSV(w io.Writer, report Report) error {
	writer := csv.NewWriter(w)

	header := []string{"chart_id", "question_id", "kind", "row", "label", "count", "share"}
	if err := writer.Write(header); err != nil {
		return fmt.Errorf("failed to write CSV header: %w", err)
	}

	for _, b := range report.Breakdowns {
		for _, it := range b.Items {
			row := []string{
				b.ChartID,
				b.QuestionID,
				b.Kind,
				it.Row,
				it.Label,
				strconv.FormatInt(it.Count, 10),
				strconv.FormatFloat(it.Share, 'f', 4, 64),
			}
			if err := writer.Write(row); err != nil {
				return fmt.Errorf("failed to write CSV row: %w", err)
			}
		}
	}

	writer.Flush()
	return writer.Error()
}

// WriteJSON writes the report with indentation
func WriteJSON(w io.Writer, report Report) error {
	data, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal report to JSON: %w", err)
	}
	if _, err := w.Write(append(data, '\n')); err != nil {
		return fmt.Errorf("failed to write JSON: %w", err)
	}
	return nil
}

// Write writes report in the given format
func Write(w io.Writer, format Format, report Report) error {
	switch format {
	case CSV:
		return WriteCSV(w, report)
	case JSON:
		return WriteJSON(w, report)
	default:
		return fmt.Errorf("unsupported export format %q", format)
	}
}

// ToFile exports report to path, choosing the format from its extension
func ToFile(path string, report Report) error {
	format, err := FormatFor(path)
	if err != nil {
		return err
	}

	file, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0644)
	if err != nil {
		return fmt.Errorf("failed to create export file: %w", err)
	}
	if err := Write(file, format, report); err != nil {
		_ = file.Close()
		return err
	}
	return file.Close()
}
