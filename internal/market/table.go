// Package market defines the historical price data model for the risk
// dashboard. A Table holds daily adjusted close prices for a set of
// assets, indexed by ascending trading date. Tables are validated on
// construction so downstream computations never see malformed input.
package market

import (
	"fmt"
	"math"
	"sort"
	"time"
)

// InvalidInputError reports a malformed price table. It is returned
// before any metric is computed.
type InvalidInputError struct {
	Reason string
}

func (e *InvalidInputError) Error() string {
	return "invalid price data: " + e.Reason
}

func errInput(format string, args ...any) error {
	return &InvalidInputError{Reason: fmt.Sprintf(format, args...)}
}

// Bar is a single daily observation for one asset. It is the unit the
// price cache stores and the remote fetcher produces.
type Bar struct {
	Symbol string    `json:"symbol"`
	Date   time.Time `json:"date"`
	Close  float64   `json:"close"`
}

// Table is an ordered daily price table. Rows are trading dates
// (ascending, unique), columns are asset symbols (unique), cells are
// positive adjusted close prices.
type Table struct {
	Dates   []time.Time
	Symbols []string
	// Values is row-major: Values[i][j] is the price of Symbols[j]
	// on Dates[i].
	Values [][]float64
}

// NewTable validates and builds a price table. It fails fast with an
// *InvalidInputError on an empty table, dimension mismatch, duplicate
// or unsorted dates, duplicate symbols, or non-positive/non-finite
// cells.
func NewTable(dates []time.Time, symbols []string, values [][]float64) (*Table, error) {
	if len(dates) == 0 {
		return nil, errInput("table has no rows")
	}
	if len(symbols) == 0 {
		return nil, errInput("table has no columns")
	}
	if len(values) != len(dates) {
		return nil, errInput("have %d rows of values for %d dates", len(values), len(dates))
	}

	seen := make(map[string]bool, len(symbols))
	for _, s := range symbols {
		if s == "" {
			return nil, errInput("empty symbol name")
		}
		if seen[s] {
			return nil, errInput("duplicate symbol %q", s)
		}
		seen[s] = true
	}

	for i, d := range dates {
		if i > 0 {
			prev := dates[i-1]
			if d.Equal(prev) {
				return nil, errInput("duplicate date %s", d.Format("2006-01-02"))
			}
			if d.Before(prev) {
				return nil, errInput("dates not ascending at %s", d.Format("2006-01-02"))
			}
		}
		if len(values[i]) != len(symbols) {
			return nil, errInput("row %d has %d cells for %d symbols", i, len(values[i]), len(symbols))
		}
		for j, v := range values[i] {
			if math.IsNaN(v) || math.IsInf(v, 0) {
				return nil, errInput("non-numeric price for %s on %s", symbols[j], d.Format("2006-01-02"))
			}
			if v <= 0 {
				return nil, errInput("non-positive price %g for %s on %s", v, symbols[j], d.Format("2006-01-02"))
			}
		}
	}

	return &Table{Dates: dates, Symbols: symbols, Values: values}, nil
}

// Rows returns the number of dates in the table.
func (t *Table) Rows() int { return len(t.Dates) }

// Cols returns the number of assets in the table.
func (t *Table) Cols() int { return len(t.Symbols) }

// Column returns a copy of the price series for column j.
func (t *Table) Column(j int) []float64 {
	out := make([]float64, len(t.Values))
	for i, row := range t.Values {
		out[i] = row[j]
	}
	return out
}

// TableFromBars assembles a table from per-asset bars, keeping only
// the dates on which every requested symbol has an observation. The
// bars need not be sorted.
func TableFromBars(symbols []string, bars []Bar) (*Table, error) {
	if len(symbols) == 0 {
		return nil, errInput("no symbols requested")
	}

	bySymbol := make(map[string]map[int64]float64, len(symbols))
	for _, s := range symbols {
		bySymbol[s] = make(map[int64]float64)
	}
	for _, b := range bars {
		col, ok := bySymbol[b.Symbol]
		if !ok {
			continue
		}
		col[b.Date.Unix()] = b.Close
	}

	// Intersect dates across all symbols.
	var common []int64
	for ts := range bySymbol[symbols[0]] {
		shared := true
		for _, s := range symbols[1:] {
			if _, ok := bySymbol[s][ts]; !ok {
				shared = false
				break
			}
		}
		if shared {
			common = append(common, ts)
		}
	}
	if len(common) == 0 {
		return nil, errInput("no overlapping dates across %v", symbols)
	}
	sort.Slice(common, func(i, j int) bool { return common[i] < common[j] })

	dates := make([]time.Time, len(common))
	values := make([][]float64, len(common))
	for i, ts := range common {
		dates[i] = time.Unix(ts, 0).UTC()
		row := make([]float64, len(symbols))
		for j, s := range symbols {
			row[j] = bySymbol[s][ts]
		}
		values[i] = row
	}

	return NewTable(dates, symbols, values)
}

// Bars flattens the table back into per-asset bars, in date order.
func (t *Table) Bars() []Bar {
	bars := make([]Bar, 0, t.Rows()*t.Cols())
	for i, d := range t.Dates {
		for j, s := range t.Symbols {
			bars = append(bars, Bar{Symbol: s, Date: d, Close: t.Values[i][j]})
		}
	}
	return bars
}
