package market

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/rs/zerolog/log"
)

// Fetcher downloads daily close prices from a Stooq-compatible CSV
// endpoint, one request per symbol.
type Fetcher struct {
	base string
	rest *resty.Client
}

// NewFetcher creates a fetcher against the given base URL.
func NewFetcher(base string, timeout time.Duration) *Fetcher {
	r := resty.New()
	if timeout > 0 {
		r.SetTimeout(timeout)
	} else {
		r.SetTimeout(10 * time.Second)
	}
	return &Fetcher{base: strings.TrimRight(base, "/"), rest: r}
}

// Fetch downloads daily bars for all symbols in [start, end] and
// assembles them into a table on the dates every symbol shares.
func (f *Fetcher) Fetch(ctx context.Context, symbols []string, start, end time.Time) (*Table, error) {
	if len(symbols) == 0 {
		return nil, errInput("no symbols to fetch")
	}

	var bars []Bar
	for _, symbol := range symbols {
		sb, err := f.fetchSymbol(ctx, symbol, start, end)
		if err != nil {
			return nil, fmt.Errorf("fetch %s: %w", symbol, err)
		}
		bars = append(bars, sb...)
	}

	table, err := TableFromBars(symbols, bars)
	if err != nil {
		return nil, err
	}

	log.Info().
		Strs("symbols", symbols).
		Int("rows", table.Rows()).
		Time("start", table.Dates[0]).
		Time("end", table.Dates[table.Rows()-1]).
		Msg("price history fetched")

	return table, nil
}

// fetchSymbol requests one symbol's daily history. The endpoint
// returns Stooq-format CSV: Date,Open,High,Low,Close,Volume.
func (f *Fetcher) fetchSymbol(ctx context.Context, symbol string, start, end time.Time) ([]Bar, error) {
	resp, err := f.rest.R().
		SetContext(ctx).
		SetQueryParams(map[string]string{
			"s":  strings.ToLower(symbol),
			"d1": start.Format("20060102"),
			"d2": end.Format("20060102"),
			"i":  "d",
		}).
		Get(f.base + "/q/d/l/")
	if err != nil {
		return nil, err
	}
	if resp.StatusCode() != 200 {
		return nil, fmt.Errorf("unexpected status %d", resp.StatusCode())
	}

	return parseDailyCSV(symbol, strings.NewReader(resp.String()))
}

func parseDailyCSV(symbol string, r io.Reader) ([]Bar, error) {
	reader := csv.NewReader(r)

	header, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}
	indices := make(map[string]int, len(header))
	for i, col := range header {
		indices[strings.ToLower(strings.TrimSpace(col))] = i
	}
	dateIdx, ok := indices["date"]
	if !ok {
		return nil, fmt.Errorf("response has no date column")
	}
	closeIdx, ok := indices["close"]
	if !ok {
		return nil, fmt.Errorf("response has no close column")
	}

	var bars []Bar
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}

		date, err := time.Parse(dateLayout, strings.TrimSpace(record[dateIdx]))
		if err != nil {
			continue
		}
		closePx, err := strconv.ParseFloat(strings.TrimSpace(record[closeIdx]), 64)
		if err != nil || closePx <= 0 {
			continue
		}

		bars = append(bars, Bar{Symbol: symbol, Date: date, Close: closePx})
	}

	if len(bars) == 0 {
		return nil, fmt.Errorf("no usable rows for %s", symbol)
	}
	return bars, nil
}
