package report

import (
	"encoding/csv"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"riskboard/internal/market"
	"riskboard/internal/risk"
)

func testSnapshot(t *testing.T) *risk.Snapshot {
	t.Helper()

	dates := make([]time.Time, 5)
	for i := range dates {
		dates[i] = time.Date(2024, 1, i+1, 0, 0, 0, 0, time.UTC)
	}
	table, err := market.NewTable(dates, []string{"AAA", "BBB"}, [][]float64{
		{100, 50},
		{102, 49},
		{101, 51},
		{105, 52},
		{103, 50},
	})
	if err != nil {
		t.Fatalf("failed to build table: %v", err)
	}

	engine, err := risk.New(table)
	if err != nil {
		t.Fatalf("engine init failed: %v", err)
	}
	s, err := engine.Compute(risk.Params{Confidence: 95, Window: 2})
	if err != nil {
		t.Fatalf("compute failed: %v", err)
	}
	return s
}

func TestGenerateReport(t *testing.T) {
	outputDir := t.TempDir()
	reporter := NewReporter(testSnapshot(t), outputDir)

	if err := reporter.GenerateReport(); err != nil {
		t.Fatalf("report generation failed: %v", err)
	}

	for _, name := range []string{"risk_summary.txt", "var_es.csv", "risk_metrics.json"} {
		if _, err := os.Stat(filepath.Join(outputDir, name)); err != nil {
			t.Errorf("expected report file %s: %v", name, err)
		}
	}
}

func TestSummaryContent(t *testing.T) {
	outputDir := t.TempDir()
	reporter := NewReporter(testSnapshot(t), outputDir)
	if err := reporter.GenerateReport(); err != nil {
		t.Fatalf("report generation failed: %v", err)
	}

	data, err := os.ReadFile(filepath.Join(outputDir, "risk_summary.txt"))
	if err != nil {
		t.Fatalf("failed to read summary: %v", err)
	}
	summary := string(data)

	for _, want := range []string{
		"2024-01-01 to 2024-01-05",
		"Confidence Level: 95%",
		"Volatility Window: 2 days",
		"AAA:",
		"BBB:",
	} {
		if !strings.Contains(summary, want) {
			t.Errorf("summary should contain %q", want)
		}
	}
}

func TestTailCSVContent(t *testing.T) {
	outputDir := t.TempDir()
	snapshot := testSnapshot(t)
	reporter := NewReporter(snapshot, outputDir)
	if err := reporter.GenerateReport(); err != nil {
		t.Fatalf("report generation failed: %v", err)
	}

	file, err := os.Open(filepath.Join(outputDir, "var_es.csv"))
	if err != nil {
		t.Fatalf("failed to open tail CSV: %v", err)
	}
	defer file.Close()

	records, err := csv.NewReader(file).ReadAll()
	if err != nil {
		t.Fatalf("failed to parse tail CSV: %v", err)
	}
	if len(records) != 3 {
		t.Fatalf("expected header plus 2 rows, got %d records", len(records))
	}
	if records[0][0] != "symbol" || records[0][1] != "var" {
		t.Errorf("unexpected header %v", records[0])
	}
	if records[1][0] != "AAA" || records[2][0] != "BBB" {
		t.Errorf("unexpected symbol order %v, %v", records[1][0], records[2][0])
	}
}

func TestJSONReportRoundTrip(t *testing.T) {
	outputDir := t.TempDir()
	snapshot := testSnapshot(t)
	reporter := NewReporter(snapshot, outputDir)
	if err := reporter.GenerateReport(); err != nil {
		t.Fatalf("report generation failed: %v", err)
	}

	data, err := os.ReadFile(filepath.Join(outputDir, "risk_metrics.json"))
	if err != nil {
		t.Fatalf("failed to read JSON report: %v", err)
	}

	var decoded risk.Snapshot
	if err := json.Unmarshal(data, &decoded); err != nil {
		t.Fatalf("failed to decode JSON report: %v", err)
	}
	if decoded.Params.Confidence != snapshot.Params.Confidence {
		t.Errorf("confidence: got %g, want %g", decoded.Params.Confidence, snapshot.Params.Confidence)
	}
	if len(decoded.Symbols) != len(snapshot.Symbols) {
		t.Errorf("symbols: got %v, want %v", decoded.Symbols, snapshot.Symbols)
	}
}
