package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"
	"time"

	"riskboard/internal/cfg"
	"riskboard/internal/dashboard"
	"riskboard/internal/market"
	"riskboard/internal/metrics"
	"riskboard/internal/risk"
	"riskboard/internal/storage"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

func main() {
	logLevel := flag.String("log-level", "info", "Log level: debug, info, warn, error")
	flag.Parse()

	level, err := zerolog.ParseLevel(*logLevel)
	if err != nil {
		level = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(level)
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})

	_ = godotenv.Load()

	c, err := cfg.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("config load failed")
	}

	m := metrics.New()

	table, err := loadPrices(c, m)
	if err != nil {
		log.Fatal().Err(err).Msg("price history load failed")
	}
	log.Info().
		Int("assets", table.Cols()).
		Int("days", table.Rows()).
		Msg("price history loaded")

	engine, err := risk.New(table)
	if err != nil {
		log.Fatal().Err(err).Msg("risk engine init failed")
	}

	d := dashboard.New(engine, c, m)
	if err := d.Start(); err != nil {
		log.Fatal().Err(err).Msg("dashboard start failed")
	}

	waitForShutdown(d)
}

// loadPrices resolves the price history source: a CSV file when
// configured, otherwise the local bar cache, otherwise a remote fetch
// (which seeds the cache when a data path is set).
func loadPrices(c cfg.Settings, m *metrics.Metrics) (*market.Table, error) {
	if c.CSVPath != "" {
		table, err := market.LoadCSV(c.CSVPath)
		if err != nil {
			return nil, err
		}
		m.BarsLoaded.Add(float64(table.Rows() * table.Cols()))
		return table, nil
	}

	var store *storage.Store
	if c.DataPath != "" {
		var err error
		store, err = storage.New(c.DataPath)
		if err != nil {
			return nil, err
		}
		defer store.Close()

		table, err := store.LoadTable(c.Symbols)
		if err == nil {
			m.BarsLoaded.Add(float64(table.Rows() * table.Cols()))
			return table, nil
		}
		log.Warn().Err(err).Msg("bar cache empty or unusable, fetching remote history")
	}

	fetcher := market.NewFetcher(c.FetchBaseURL, c.FetchTimeout)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	end := time.Now()
	start := end.AddDate(0, 0, -c.HistoryDays)
	table, err := fetcher.Fetch(ctx, c.Symbols, start, end)
	if err != nil {
		return nil, err
	}
	m.BarsLoaded.Add(float64(table.Rows() * table.Cols()))

	if store != nil {
		if err := store.StoreBars(table.Bars()); err != nil {
			log.Warn().Err(err).Msg("failed to cache fetched bars")
		}
	}
	return table, nil
}

func waitForShutdown(d *dashboard.Dashboard) {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	sig := <-sigCh
	log.Info().Str("signal", sig.String()).Msg("shutting down")

	if err := d.Stop(); err != nil {
		log.Error().Err(err).Msg("dashboard shutdown failed")
	}
	log.Info().Msg("shutdown complete")
}
