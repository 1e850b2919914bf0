package cfg

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoadFromEnv(t *testing.T) {
	tests := []struct {
		name     string
		envVars  map[string]string
		wantErr  bool
		validate func(t *testing.T, settings Settings)
	}{
		{
			name:    "defaults",
			envVars: map[string]string{},
			wantErr: false,
			validate: func(t *testing.T, settings Settings) {
				if len(settings.Symbols) != 3 || settings.Symbols[0] != "AAPL" {
					t.Errorf("expected default symbols [AAPL MSFT GOOGL], got %v", settings.Symbols)
				}
				if settings.FetchBaseURL != "https://stooq.com" {
					t.Errorf("expected default FetchBaseURL, got %s", settings.FetchBaseURL)
				}
				if settings.FetchTimeout != 10*time.Second {
					t.Errorf("expected default FetchTimeout 10s, got %v", settings.FetchTimeout)
				}
				if settings.ListenPort != 8050 {
					t.Errorf("expected default ListenPort 8050, got %d", settings.ListenPort)
				}
				if settings.Confidence != 95 {
					t.Errorf("expected default Confidence 95, got %g", settings.Confidence)
				}
				if settings.Window != 60 {
					t.Errorf("expected default Window 60, got %d", settings.Window)
				}
				if len(settings.WindowChoices) != 4 || settings.WindowChoices[0] != 30 {
					t.Errorf("expected default WindowChoices [30 60 90 120], got %v", settings.WindowChoices)
				}
			},
		},
		{
			name: "custom symbols and risk settings",
			envVars: map[string]string{
				"SYMBOLS":        "SPY, QQQ ,IWM",
				"CONFIDENCE":     "97.5",
				"WINDOW":         "90",
				"FETCH_TIMEOUT":  "30s",
				"LISTEN_PORT":    "9000",
				"HISTORY_DAYS":   "730",
				"WINDOW_CHOICES": "30,60,90",
			},
			wantErr: false,
			validate: func(t *testing.T, settings Settings) {
				want := []string{"SPY", "QQQ", "IWM"}
				if len(settings.Symbols) != 3 {
					t.Fatalf("expected 3 symbols, got %v", settings.Symbols)
				}
				for i := range want {
					if settings.Symbols[i] != want[i] {
						t.Errorf("symbol[%d]: got %s, want %s", i, settings.Symbols[i], want[i])
					}
				}
				if settings.Confidence != 97.5 {
					t.Errorf("expected Confidence 97.5, got %g", settings.Confidence)
				}
				if settings.Window != 90 {
					t.Errorf("expected Window 90, got %d", settings.Window)
				}
				if settings.FetchTimeout != 30*time.Second {
					t.Errorf("expected FetchTimeout 30s, got %v", settings.FetchTimeout)
				}
				if settings.HistoryDays != 730 {
					t.Errorf("expected HistoryDays 730, got %d", settings.HistoryDays)
				}
			},
		},
		{
			name: "confidence out of range",
			envVars: map[string]string{
				"CONFIDENCE": "100",
			},
			wantErr: true,
		},
		{
			name: "confidence outside slider domain",
			envVars: map[string]string{
				"CONFIDENCE": "80",
			},
			wantErr: true,
		},
		{
			name: "window not among choices",
			envVars: map[string]string{
				"WINDOW": "45",
			},
			wantErr: true,
		},
		{
			name: "window choices not ascending",
			envVars: map[string]string{
				"WINDOW_CHOICES": "90,60,30",
			},
			wantErr: true,
		},
		{
			name: "fetch timeout too long",
			envVars: map[string]string{
				"FETCH_TIMEOUT": "5m",
			},
			wantErr: true,
		},
		{
			name: "privileged port",
			envVars: map[string]string{
				"LISTEN_PORT": "80",
			},
			wantErr: true,
		},
		{
			name: "duplicate symbols",
			envVars: map[string]string{
				"SYMBOLS": "SPY,SPY",
			},
			wantErr: true,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for k, v := range tt.envVars {
				t.Setenv(k, v)
			}

			settings, err := Load()
			if tt.wantErr {
				if err == nil {
					t.Fatal("expected error, got nil")
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if tt.validate != nil {
				tt.validate(t, settings)
			}
		})
	}
}

func TestLoadFromYAML(t *testing.T) {
	content := `
data:
  symbols: [SPY, QQQ]
  fetchBaseURL: https://example.com
  fetchTimeout: 20s
  historyDays: 180
server:
  port: 9090
risk:
  confidence: 97
  window: 30
  confidenceMin: 91
  confidenceMax: 98
  windowChoices: [30, 60]
`
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("failed to write config: %v", err)
	}
	t.Setenv("CONFIG_FILE", path)

	settings, err := Load()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(settings.Symbols) != 2 || settings.Symbols[0] != "SPY" {
		t.Errorf("unexpected symbols %v", settings.Symbols)
	}
	if settings.FetchBaseURL != "https://example.com" {
		t.Errorf("unexpected FetchBaseURL %s", settings.FetchBaseURL)
	}
	if settings.FetchTimeout != 20*time.Second {
		t.Errorf("unexpected FetchTimeout %v", settings.FetchTimeout)
	}
	if settings.ListenPort != 9090 {
		t.Errorf("unexpected ListenPort %d", settings.ListenPort)
	}
	if settings.Confidence != 97 || settings.Window != 30 {
		t.Errorf("unexpected risk params %g/%d", settings.Confidence, settings.Window)
	}
	if settings.ConfidenceMin != 91 || settings.ConfidenceMax != 98 {
		t.Errorf("unexpected slider domain [%d, %d]", settings.ConfidenceMin, settings.ConfidenceMax)
	}
}

func TestLoadFromYAMLEnvOverride(t *testing.T) {
	content := `
risk:
  confidence: 97
`
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("failed to write config: %v", err)
	}
	t.Setenv("CONFIG_FILE", path)
	t.Setenv("CONFIDENCE", "93")
	t.Setenv("SYMBOLS", "SPY")

	settings, err := Load()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if settings.Confidence != 93 {
		t.Errorf("environment should override file value, got %g", settings.Confidence)
	}
	if len(settings.Symbols) != 1 || settings.Symbols[0] != "SPY" {
		t.Errorf("unexpected symbols %v", settings.Symbols)
	}
}

func TestLoadFromYAMLMissingFile(t *testing.T) {
	t.Setenv("CONFIG_FILE", filepath.Join(t.TempDir(), "absent.yaml"))
	if _, err := Load(); err == nil {
		t.Error("expected error for missing config file")
	}
}
