package export

import (
	"bytes"
	"encoding/csv"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/rebeliceyang/surveylens/internal/models"
	"github.com/rebeliceyang/surveylens/internal/registry"
)

func testReport() Report {
	state := registry.Default().NewState()
	state.Set(registry.Experience, []string{"2 to 5 years"})

	return NewReport(state, "#?experience=2-to-5-years", 3, []models.Breakdown{
		{
			ChartID:    "use-cases",
			QuestionID: "Rd9Fu5",
			Kind:       "bar",
			Total:      4,
			Items: []models.BreakdownItem{
				{Label: "Home automation", Count: 2, Share: 0.5},
				{Label: "Chatbots, \"bots\" & notifications", Count: 1, Share: 0.25},
			},
		},
		{
			ChartID:    "feature-ratings",
			QuestionID: "Fr3Mx0",
			Kind:       "matrix",
			Total:      3,
			Items: []models.BreakdownItem{
				{Row: "Editor", Label: "4", Count: 2, Share: 2.0 / 3},
			},
		},
	})
}

func TestNewReport_KeepsActiveFilters(t *testing.T) {
	r := testReport()
	if len(r.Filters) != 1 {
		t.Fatalf("Expected 1 active filter, got %d: %v", len(r.Filters), r.Filters)
	}
	if got := r.Filters[registry.Experience]; len(got) != 1 || got[0] != "2 to 5 years" {
		t.Errorf("Unexpected experience filter %v", got)
	}
	if r.GeneratedAt.IsZero() {
		t.Error("GeneratedAt not set")
	}
}

func TestWriteCSV(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteCSV(&buf, testReport()); err != nil {
		t.Fatalf("WriteCSV failed: %v", err)
	}

	records, err := csv.NewReader(&buf).ReadAll()
	if err != nil {
		t.Fatalf("Failed to read CSV: %v", err)
	}

	if len(records) != 4 { // header + 3 items
		t.Fatalf("Expected 4 records, got %d", len(records))
	}

	expectedHeader := []string{"chart_id", "question_id", "kind", "row", "label", "count", "share"}
	for i, h := range expectedHeader {
		if records[0][i] != h {
			t.Errorf("Header[%d]: expected %q, got %q", i, h, records[0][i])
		}
	}

	if records[2][4] != "Chatbots, \"bots\" & notifications" {
		t.Errorf("Label with quotes and commas not preserved: %q", records[2][4])
	}
	if records[1][5] != "2" || records[1][6] != "0.5000" {
		t.Errorf("Unexpected count/share: %v", records[1][5:])
	}
	if records[3][3] != "Editor" || records[3][6] != "0.6667" {
		t.Errorf("Unexpected matrix row: %v", records[3])
	}
}

func TestWriteJSON(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteJSON(&buf, testReport()); err != nil {
		t.Fatalf("WriteJSON failed: %v", err)
	}

	var decoded Report
	if err := json.Unmarshal(buf.Bytes(), &decoded); err != nil {
		t.Fatalf("Failed to parse JSON: %v", err)
	}
	if decoded.Respondents != 3 {
		t.Errorf("Expected 3 respondents, got %d", decoded.Respondents)
	}
	if len(decoded.Breakdowns) != 2 || decoded.Breakdowns[1].Items[0].Row != "Editor" {
		t.Errorf("Breakdowns not preserved: %+v", decoded.Breakdowns)
	}
	if !strings.Contains(buf.String(), "\n  \"generatedAt\"") {
		t.Error("Expected indented output")
	}
}

func TestToFile(t *testing.T) {
	dir := t.TempDir()

	for _, name := range []string{"out.csv", "out.JSON"} {
		path := filepath.Join(dir, name)
		if err := ToFile(path, testReport()); err != nil {
			t.Fatalf("ToFile(%s) failed: %v", name, err)
		}
		info, err := os.Stat(path)
		if err != nil {
			t.Fatalf("Failed to stat file: %v", err)
		}
		if info.Size() == 0 {
			t.Errorf("%s is empty", name)
		}
	}

	if err := ToFile(filepath.Join(dir, "out.xlsx"), testReport()); err == nil {
		t.Error("Expected error for unsupported extension")
	}
	if err := ToFile(filepath.Join(dir, "missing", "out.csv"), testReport()); err == nil {
		t.Error("Expected error for missing directory")
	}
}

func TestFormatFor(t *testing.T) {
	tests := []struct {
		path    string
		want    Format
		wantErr bool
	}{
		{"a.csv", CSV, false},
		{"a.Json", JSON, false},
		{"a", "", true},
		{"a.txt", "", true},
	}
	for _, tt := range tests {
		got, err := FormatFor(tt.path)
		if (err != nil) != tt.wantErr {
			t.Errorf("FormatFor(%q) error = %v, wantErr %v", tt.path, err, tt.wantErr)
		}
		if got != tt.want {
			t.Errorf("FormatFor(%q) = %q, want %q", tt.path, got, tt.want)
		}
	}
}
