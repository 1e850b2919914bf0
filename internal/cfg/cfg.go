// Package cfg loads dashboard configuration from a YAML file and the
// environment. A CONFIG_FILE path takes precedence; individual
// environment variables override file values; everything else falls
// back to defaults. Settings are validated before use.
package cfg

import (
	"fmt"
	"os"
	"sort"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

type Settings struct {
	Symbols      []string
	CSVPath      string
	DataPath     string
	FetchBaseURL string
	FetchTimeout time.Duration
	HistoryDays  int

	ListenPort int

	Confidence    float64
	Window        int
	ConfidenceMin int
	ConfidenceMax int
	WindowChoices []int
}

type ConfigFile struct {
	Data struct {
		Symbols      []string `yaml:"symbols"`
		CSVPath      string   `yaml:"csvPath"`
		DataPath     string   `yaml:"dataPath"`
		FetchBaseURL string   `yaml:"fetchBaseURL"`
		FetchTimeout string   `yaml:"fetchTimeout"`
		HistoryDays  int      `yaml:"historyDays"`
	} `yaml:"data"`

	Server struct {
		Port int `yaml:"port"`
	} `yaml:"server"`

	Risk struct {
		Confidence    float64 `yaml:"confidence"`
		Window        int     `yaml:"window"`
		ConfidenceMin int     `yaml:"confidenceMin"`
		ConfidenceMax int     `yaml:"confidenceMax"`
		WindowChoices []int   `yaml:"windowChoices"`
	} `yaml:"risk"`
}

func Load() (Settings, error) {
	if configPath := os.Getenv("CONFIG_FILE"); configPath != "" {
		return loadFromYAML(configPath)
	}
	return loadFromEnv()
}

func loadFromYAML(path string) (Settings, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Settings{}, fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	var config ConfigFile
	if err := yaml.Unmarshal(data, &config); err != nil {
		return Settings{}, fmt.Errorf("failed to parse config file: %w", err)
	}

	fetchTimeout, err := time.ParseDuration(config.Data.FetchTimeout)
	if err != nil {
		fetchTimeout = 10 * time.Second
	}
	if env := os.Getenv("FETCH_TIMEOUT"); env != "" {
		if d, err := time.ParseDuration(env); err == nil {
			fetchTimeout = d
		}
	}

	settings := Settings{
		Symbols:       getSymbolsFromEnvOrConfig(config.Data.Symbols),
		CSVPath:       getEnvOrDefault("CSV_PATH", config.Data.CSVPath),
		DataPath:      getEnvOrDefault("DATA_PATH", config.Data.DataPath),
		FetchBaseURL:  getEnvOrDefault("FETCH_BASE_URL", config.Data.FetchBaseURL),
		FetchTimeout:  fetchTimeout,
		HistoryDays:   getIntFromEnvOrConfig("HISTORY_DAYS", config.Data.HistoryDays, 365),
		ListenPort:    getIntFromEnvOrConfig("LISTEN_PORT", config.Server.Port, 8050),
		Confidence:    getFloatFromEnvOrConfig("CONFIDENCE", config.Risk.Confidence, 95),
		Window:        getIntFromEnvOrConfig("WINDOW", config.Risk.Window, 60),
		ConfidenceMin: getIntFromEnvOrConfig("CONFIDENCE_MIN", config.Risk.ConfidenceMin, 90),
		ConfidenceMax: getIntFromEnvOrConfig("CONFIDENCE_MAX", config.Risk.ConfidenceMax, 99),
		WindowChoices: getIntsFromEnvOrConfig("WINDOW_CHOICES", config.Risk.WindowChoices),
	}

	if settings.FetchBaseURL == "" {
		settings.FetchBaseURL = "https://stooq.com"
	}

	if err := validateSettings(&settings); err != nil {
		return Settings{}, fmt.Errorf("configuration validation failed: %w", err)
	}
	return settings, nil
}

func loadFromEnv() (Settings, error) {
	settings := Settings{
		Symbols:       splitOrDefault(os.Getenv("SYMBOLS"), []string{"AAPL", "MSFT", "GOOGL"}),
		CSVPath:       os.Getenv("CSV_PATH"),  // optional
		DataPath:      os.Getenv("DATA_PATH"), // optional
		FetchBaseURL:  getEnvOrDefault("FETCH_BASE_URL", "https://stooq.com"),
		FetchTimeout:  getDurationOrDefault("FETCH_TIMEOUT", 10*time.Second),
		HistoryDays:   getIntOrDefault("HISTORY_DAYS", 365),
		ListenPort:    getIntOrDefault("LISTEN_PORT", 8050),
		Confidence:    getFloatOrDefault("CONFIDENCE", 95),
		Window:        getIntOrDefault("WINDOW", 60),
		ConfidenceMin: getIntOrDefault("CONFIDENCE_MIN", 90),
		ConfidenceMax: getIntOrDefault("CONFIDENCE_MAX", 99),
		WindowChoices: getIntsOrDefault("WINDOW_CHOICES", []int{30, 60, 90, 120}),
	}

	if err := validateSettings(&settings); err != nil {
		return Settings{}, fmt.Errorf("configuration validation failed: %w", err)
	}
	return settings, nil
}

func getEnvOrDefault(key, defaultValue string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return defaultValue
}

func getDurationOrDefault(key string, defaultValue time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return defaultValue
}

func getIntOrDefault(key string, defaultValue int) int {
	if v := os.Getenv(key); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return defaultValue
}

func getFloatOrDefault(key string, defaultValue float64) float64 {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return defaultValue
}

func getIntsOrDefault(key string, defaultValue []int) []int {
	if v := os.Getenv(key); v != "" {
		if ints, err := parseInts(v); err == nil {
			return ints
		}
	}
	return defaultValue
}

func splitOrDefault(v string, def []string) []string {
	if v == "" {
		return def
	}
	var out []string
	for _, s := range strings.Split(v, ",") {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	if len(out) == 0 {
		return def
	}
	return out
}

func getSymbolsFromEnvOrConfig(configSymbols []string) []string {
	if env := os.Getenv("SYMBOLS"); env != "" {
		return splitOrDefault(env, configSymbols)
	}
	if len(configSymbols) > 0 {
		return configSymbols
	}
	return []string{"AAPL", "MSFT", "GOOGL"}
}

func getIntFromEnvOrConfig(key string, configValue, defaultValue int) int {
	if env := os.Getenv(key); env != "" {
		if val, err := strconv.Atoi(env); err == nil {
			return val
		}
	}
	if configValue != 0 {
		return configValue
	}
	return defaultValue
}

func getFloatFromEnvOrConfig(key string, configValue, defaultValue float64) float64 {
	if env := os.Getenv(key); env != "" {
		if val, err := strconv.ParseFloat(env, 64); err == nil {
			return val
		}
	}
	if configValue != 0 {
		return configValue
	}
	return defaultValue
}

func getIntsFromEnvOrConfig(key string, configValue []int) []int {
	if env := os.Getenv(key); env != "" {
		if ints, err := parseInts(env); err == nil {
			return ints
		}
	}
	if len(configValue) > 0 {
		return configValue
	}
	return []int{30, 60, 90, 120}
}

func parseInts(v string) ([]int, error) {
	var out []int
	for _, s := range strings.Split(v, ",") {
		i, err := strconv.Atoi(strings.TrimSpace(s))
		if err != nil {
			return nil, err
		}
		out = append(out, i)
	}
	return out, nil
}

// validateSettings performs comprehensive validation of configuration values
func validateSettings(settings *Settings) error {
	if len(settings.Symbols) == 0 && settings.CSVPath == "" {
		return fmt.Errorf("either symbols or a CSV path must be configured")
	}

	seen := make(map[string]bool, len(settings.Symbols))
	for _, s := range settings.Symbols {
		if seen[s] {
			return fmt.Errorf("duplicate symbol %q in configuration", s)
		}
		seen[s] = true
	}

	if settings.CSVPath == "" && settings.FetchBaseURL == "" {
		return fmt.Errorf("fetch base URL cannot be empty without a CSV path")
	}
	if settings.FetchTimeout < time.Second || settings.FetchTimeout > time.Minute {
		return fmt.Errorf("fetch timeout must be between 1s and 1m, got %v", settings.FetchTimeout)
	}
	if settings.HistoryDays < 30 || settings.HistoryDays > 3650 {
		return fmt.Errorf("history days must be between 30 and 3650, got %d", settings.HistoryDays)
	}

	if settings.ListenPort < 1024 || settings.ListenPort > 65535 {
		return fmt.Errorf("listen port must be between 1024 and 65535, got %d", settings.ListenPort)
	}

	if settings.Confidence <= 50 || settings.Confidence >= 100 {
		return fmt.Errorf("confidence level must be in (50, 100), got %g", settings.Confidence)
	}
	if settings.Window < 2 {
		return fmt.Errorf("window size must be at least 2, got %d", settings.Window)
	}

	if settings.ConfidenceMin <= 50 || settings.ConfidenceMax >= 100 || settings.ConfidenceMin >= settings.ConfidenceMax {
		return fmt.Errorf("confidence slider domain must satisfy 50 < min < max < 100, got [%d, %d]",
			settings.ConfidenceMin, settings.ConfidenceMax)
	}
	if float64(settings.ConfidenceMin) > settings.Confidence || settings.Confidence > float64(settings.ConfidenceMax) {
		return fmt.Errorf("default confidence %g outside slider domain [%d, %d]",
			settings.Confidence, settings.ConfidenceMin, settings.ConfidenceMax)
	}

	if len(settings.WindowChoices) == 0 {
		return fmt.Errorf("at least one window choice must be configured")
	}
	if !sort.IntsAreSorted(settings.WindowChoices) {
		return fmt.Errorf("window choices must be ascending, got %v", settings.WindowChoices)
	}
	for _, w := range settings.WindowChoices {
		if w < 2 {
			return fmt.Errorf("window choice must be at least 2, got %d", w)
		}
	}
	windowOK := false
	for _, w := range settings.WindowChoices {
		if w == settings.Window {
			windowOK = true
			break
		}
	}
	if !windowOK {
		return fmt.Errorf("default window %d not among window choices %v", settings.Window, settings.WindowChoices)
	}

	return nil
}
