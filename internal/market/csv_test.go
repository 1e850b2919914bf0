package market

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestReadCSV(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr string
	}{
		{
			name: "valid",
			input: "date,AAA,BBB\n" +
				"2024-01-01,100,50\n" +
				"2024-01-02,101,51\n",
		},
		{
			name:    "missing date column",
			input:   "time,AAA\n2024-01-01,100\n",
			wantErr: "first CSV column",
		},
		{
			name:    "header only symbols missing",
			input:   "date\n2024-01-01\n",
			wantErr: "at least one symbol",
		},
		{
			name:    "bad date",
			input:   "date,AAA\nnot-a-date,100\n",
			wantErr: "bad date",
		},
		{
			name:    "non-numeric price",
			input:   "date,AAA\n2024-01-01,abc\n",
			wantErr: "non-numeric",
		},
		{
			name:    "short row",
			input:   "date,AAA,BBB\n2024-01-01,100\n",
			wantErr: "fields",
		},
		{
			name:    "unsorted dates",
			input:   "date,AAA\n2024-01-02,101\n2024-01-01,100\n",
			wantErr: "ascending",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			table, err := ReadCSV(strings.NewReader(tt.input))
			if tt.wantErr != "" {
				if err == nil {
					t.Fatal("expected error, got nil")
				}
				if !strings.Contains(err.Error(), tt.wantErr) {
					t.Errorf("error %q should mention %q", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if table.Rows() != 2 || table.Cols() != 2 {
				t.Errorf("got %dx%d table, want 2x2", table.Rows(), table.Cols())
			}
		})
	}
}

func TestLoadCSV(t *testing.T) {
	path := filepath.Join(t.TempDir(), "prices.csv")
	content := "date,AAA,BBB\n" +
		"2024-01-01,100,50\n" +
		"2024-01-02,102,49\n" +
		"2024-01-03,101,51\n"
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("failed to write test CSV: %v", err)
	}

	table, err := LoadCSV(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if table.Rows() != 3 {
		t.Errorf("expected 3 rows, got %d", table.Rows())
	}
	if table.Symbols[0] != "AAA" || table.Symbols[1] != "BBB" {
		t.Errorf("unexpected symbols %v", table.Symbols)
	}
	if table.Values[1][1] != 49 {
		t.Errorf("cell (1,1): got %f, want 49", table.Values[1][1])
	}
}

func TestLoadCSVMissingFile(t *testing.T) {
	if _, err := LoadCSV(filepath.Join(t.TempDir(), "absent.csv")); err == nil {
		t.Error("expected error for missing file")
	}
}
