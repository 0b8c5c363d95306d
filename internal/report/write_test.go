package report

import (
	"bytes"
	"encoding/csv"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestPathUsesTimestampAndFormat(t *testing.T) {
	now := time.Date(2026, 2, 9, 13, 45, 12, 0, time.UTC)
	got := Path("/logs", FormatCSV, now)
	if got != filepath.Join("/logs", "conversion_report_20260209_134512.csv") {
		t.Fatalf("unexpected path: %s", got)
	}
	got = Path("/logs", FormatYAML, now)
	if !strings.HasSuffix(got, ".yaml") {
		t.Fatalf("unexpected yaml path: %s", got)
	}
}

func TestWriteCSVRows(t *testing.T) {
	path := filepath.Join(t.TempDir(), "report.csv")
	if err := Write(path, FormatCSV, Summarize(sampleOutcomes())); err != nil {
		t.Fatalf("write: %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	records, err := csv.NewReader(bytes.NewReader(data)).ReadAll()
	if err != nil {
		t.Fatalf("parse csv: %v", err)
	}
	if len(records) != 4 {
		t.Fatalf("expected header plus 3 rows, got %d", len(records))
	}
	if strings.Join(records[0], ",") != "source,target,archive,status,kind,duration_ms,detail" {
		t.Fatalf("unexpected header: %v", records[0])
	}
	if records[1][0] != "a.vsdx" || records[1][1] != "a.vdx" || records[1][3] != "succeeded" {
		t.Fatalf("unexpected success row: %v", records[1])
	}
	if records[2][4] != "engine-unavailable" || records[2][1] != "" {
		t.Fatalf("unexpected failure row: %v", records[2])
	}
}

func TestWriteYAMLIsCanonical(t *testing.T) {
	dir := t.TempDir()
	r := Summarize(sampleOutcomes())

	first := filepath.Join(dir, "a.yaml")
	second := filepath.Join(dir, "b.yaml")
	if err := Write(first, FormatYAML, r); err != nil {
		t.Fatalf("write: %v", err)
	}
	if err := Write(second, FormatYAML, r); err != nil {
		t.Fatalf("write: %v", err)
	}
	a, _ := os.ReadFile(first)
	b, _ := os.ReadFile(second)
	if !bytes.Equal(a, b) {
		t.Fatal("yaml output is not stable across writes")
	}
	s := string(a)
	for _, want := range []string{"summary:", "succeeded: 1", "outcomes:", "source: a.vsdx", "kind: engine-unavailable"} {
		if !strings.Contains(s, want) {
			t.Fatalf("yaml missing %q:\n%s", want, s)
		}
	}
}

func TestWriteRejectsUnknownFormat(t *testing.T) {
	if err := Write(filepath.Join(t.TempDir(), "r.bin"), "xml", RunReport{}); err == nil {
		t.Fatal("expected error for unknown format")
	}
}

func TestRenderSummaryListsFailures(t *testing.T) {
	var buf bytes.Buffer
	Render(&buf, Summarize(sampleOutcomes()))
	out := buf.String()
	for _, want := range []string{"Files processed: 3", "b.vsd", "engine-unavailable", "Failures:"} {
		if !strings.Contains(out, want) {
			t.Fatalf("summary missing %q:\n%s", want, out)
		}
	}
}
