package main

import (
	"flag"
	"fmt"
	"os"

	"riskboard/internal/cfg"
	"riskboard/internal/market"
	"riskboard/internal/report"
	"riskboard/internal/risk"
	"riskboard/internal/storage"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

func main() {
	var (
		dataPath   = flag.String("data", "", "Path to CSV file or bar cache directory")
		outputPath = flag.String("output", "reports", "Output directory for results")
		confidence = flag.Float64("confidence", 0, "Confidence level in percent (overrides config)")
		window     = flag.Int("window", 0, "Rolling volatility window in days (overrides config)")
		logLevel   = flag.String("log-level", "info", "Log level: debug, info, warn, error")
	)
	flag.Parse()

	level, err := zerolog.ParseLevel(*logLevel)
	if err != nil {
		level = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(level)
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})

	config, err := cfg.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load config")
	}

	if *dataPath != "" {
		if info, statErr := os.Stat(*dataPath); statErr == nil && info.IsDir() {
			config.CSVPath = ""
			config.DataPath = *dataPath
		} else {
			config.CSVPath = *dataPath
		}
	}
	if *confidence != 0 {
		config.Confidence = *confidence
	}
	if *window != 0 {
		config.Window = *window
	}

	fmt.Println("=== Risk Report Configuration ===")
	fmt.Printf("CSV Path: %s\n", config.CSVPath)
	fmt.Printf("Data Path: %s\n", config.DataPath)
	fmt.Printf("Output Directory: %s\n", *outputPath)
	fmt.Printf("Confidence: %g%%\n", config.Confidence)
	fmt.Printf("Window: %d days\n", config.Window)
	fmt.Println("=================================")

	table, err := loadTable(config)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load price history")
	}

	engine, err := risk.New(table)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize risk engine")
	}

	snapshot, err := engine.Compute(risk.Params{
		Confidence: config.Confidence,
		Window:     config.Window,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("Risk computation failed")
	}

	reporter := report.NewReporter(snapshot, *outputPath)
	if err := reporter.GenerateReport(); err != nil {
		log.Fatal().Err(err).Msg("Report generation failed")
	}
	reporter.PrintSummary()

	log.Info().Str("output", *outputPath).Msg("risk report complete")
}

func loadTable(c cfg.Settings) (*market.Table, error) {
	if c.CSVPath != "" {
		return market.LoadCSV(c.CSVPath)
	}
	if c.DataPath == "" {
		return nil, fmt.Errorf("no data source configured: set -data, CSV_PATH or DATA_PATH")
	}
	store, err := storage.New(c.DataPath)
	if err != nil {
		return nil, err
	}
	defer store.Close()
	return store.LoadTable(c.Symbols)
}
