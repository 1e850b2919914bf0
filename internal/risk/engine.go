// Package risk computes return-based risk statistics for a price
// table: equal-weight portfolio value, per-asset return distribution,
// historical Value at Risk, Expected Shortfall, Pearson correlation,
// and annualized rolling volatility.
//
// The engine is pure and stateless per call: Compute transforms
// (price table, parameters) into a fresh Snapshot every time, with no
// caching and no shared mutable state, so it is safe to call
// repeatedly from a single caller on every slider change.
package risk

import (
	"math"
	"sort"
	"strconv"
	"time"

	"riskboard/internal/market"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"
)

// tradingDaysPerYear is the annualization convention for daily data.
const tradingDaysPerYear = 252

// histogramBins is the bin count of the return distribution.
const histogramBins = 20

// Float is a float64 whose JSON encoding turns NaN and infinities
// into null. Undefined metric values (leading rolling-volatility
// entries, empty-tail ES) stay NaN in memory and become null on the
// wire instead of being coerced to zero.
type Float float64

// MarshalJSON implements json.Marshaler.
func (f Float) MarshalJSON() ([]byte, error) {
	v := float64(f)
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return []byte("null"), nil
	}
	return strconv.AppendFloat(nil, v, 'g', -1, 64), nil
}

// ES is a per-asset Expected Shortfall value. Defined is false when
// no return observation falls at or below the VaR threshold, in which
// case Value is NaN ("no tail data").
type ES struct {
	Value   Float `json:"value"`
	Defined bool  `json:"defined"`
}

// Histogram is a per-asset return distribution: Counts[i] observations
// fell in [Edges[i], Edges[i+1]).
type Histogram struct {
	Edges  []float64 `json:"edges"`
	Counts []int     `json:"counts"`
}

// Returns is a table of period-over-period percentage changes derived
// from a price table. It has one row fewer than its source.
type Returns struct {
	Dates   []time.Time
	Symbols []string
	Values  [][]float64
}

// Rows returns the number of return observations.
func (r *Returns) Rows() int { return len(r.Dates) }

// Column returns a copy of asset j's return series.
func (r *Returns) Column(j int) []float64 {
	out := make([]float64, len(r.Values))
	for i, row := range r.Values {
		out[i] = row[j]
	}
	return out
}

// Snapshot is the full output of one recomputation. It is produced
// wholesale and never mutated; identical inputs yield identical
// snapshots.
type Snapshot struct {
	Params         Params               `json:"params"`
	Symbols        []string             `json:"symbols"`
	Dates          []time.Time          `json:"dates"`
	ReturnDates    []time.Time          `json:"returnDates"`
	PortfolioValue []float64            `json:"portfolioValue"`
	Distribution   map[string]Histogram `json:"distribution"`
	VaR            map[string]float64   `json:"var"`
	ES             map[string]ES        `json:"es"`
	Correlation    [][]Float            `json:"correlation"`
	RollingVol     map[string][]Float   `json:"rollingVol"`
}

// Engine computes snapshots from a fixed price table. The table is
// the only state it carries and it is never modified.
type Engine struct {
	table   *market.Table
	returns *Returns
}

// New creates an engine over the given price table. The table must
// have at least two rows so returns exist.
func New(table *market.Table) (*Engine, error) {
	if table == nil {
		return nil, &market.InvalidInputError{Reason: "nil price table"}
	}
	if table.Rows() < 2 {
		return nil, &market.InvalidInputError{Reason: "need at least 2 price rows to compute returns"}
	}
	return &Engine{table: table, returns: ComputeReturns(table)}, nil
}

// Table returns the source price table.
func (e *Engine) Table() *market.Table { return e.table }

// Returns returns the derived return table.
func (e *Engine) Returns() *Returns { return e.returns }

// Compute produces a full snapshot for the given parameters. All six
// outputs are recomputed from the unmodified source table on every
// call; a snapshot is either fully produced or not at all.
func (e *Engine) Compute(p Params) (*Snapshot, error) {
	if err := p.Validate(e.returns.Rows()); err != nil {
		return nil, err
	}

	varByAsset := VaR(e.returns, p.Confidence)

	return &Snapshot{
		Params:         p,
		Symbols:        append([]string(nil), e.table.Symbols...),
		Dates:          append([]time.Time(nil), e.table.Dates...),
		ReturnDates:    append([]time.Time(nil), e.returns.Dates...),
		PortfolioValue: PortfolioValue(e.table),
		Distribution:   Distribution(e.returns, histogramBins),
		VaR:            varByAsset,
		ES:             ExpectedShortfall(e.returns, varByAsset),
		Correlation:    correlationRows(Correlation(e.returns)),
		RollingVol:     RollingVolatility(e.returns, p.Window),
	}, nil
}

// PortfolioValue is the row-wise equal-weight mean of all asset
// prices, one value per date.
func PortfolioValue(t *market.Table) []float64 {
	out := make([]float64, t.Rows())
	for i, row := range t.Values {
		out[i] = stat.Mean(row, nil)
	}
	return out
}

// ComputeReturns derives percentage changes row-to-row:
// returns[t] = price[t]/price[t-1] - 1. The first price row has no
// prior value and is dropped.
func ComputeReturns(t *market.Table) *Returns {
	rows := t.Rows() - 1
	values := make([][]float64, rows)
	for i := 0; i < rows; i++ {
		row := make([]float64, t.Cols())
		for j := range row {
			row[j] = t.Values[i+1][j]/t.Values[i][j] - 1
		}
		values[i] = row
	}
	return &Returns{
		Dates:   append([]time.Time(nil), t.Dates[1:]...),
		Symbols: append([]string(nil), t.Symbols...),
		Values:  values,
	}
}

// VaR is the empirical (100-confidence)-th percentile of each asset's
// return series. The raw quantile is reported as-is (typically
// negative), not negated; callers display it directly as "% at risk".
func VaR(r *Returns, confidence float64) map[string]float64 {
	q := (100 - confidence) / 100
	out := make(map[string]float64, len(r.Symbols))
	for j, symbol := range r.Symbols {
		col := r.Column(j)
		sort.Float64s(col)
		out[symbol] = stat.Quantile(q, stat.Empirical, col, nil)
	}
	return out
}

// ExpectedShortfall is the mean of each asset's returns at or below
// its VaR threshold. An empty tail yields Defined=false with a NaN
// value rather than a silent zero.
func ExpectedShortfall(r *Returns, threshold map[string]float64) map[string]ES {
	out := make(map[string]ES, len(r.Symbols))
	for j, symbol := range r.Symbols {
		cut, ok := threshold[symbol]
		if !ok {
			out[symbol] = ES{Value: Float(math.NaN())}
			continue
		}
		var tail []float64
		for _, v := range r.Column(j) {
			if v <= cut {
				tail = append(tail, v)
			}
		}
		if len(tail) == 0 {
			out[symbol] = ES{Value: Float(math.NaN())}
			continue
		}
		out[symbol] = ES{Value: Float(stat.Mean(tail, nil)), Defined: true}
	}
	return out
}

// Correlation is the pairwise Pearson correlation matrix across all
// asset columns: symmetric, diagonal 1 for every asset with non-zero
// variance.
func Correlation(r *Returns) *mat.SymDense {
	rows, cols := r.Rows(), len(r.Symbols)
	flat := make([]float64, 0, rows*cols)
	for _, row := range r.Values {
		flat = append(flat, row...)
	}
	dst := mat.NewSymDense(cols, nil)
	stat.CorrelationMatrix(dst, mat.NewDense(rows, cols, flat), nil)
	return dst
}

func correlationRows(m *mat.SymDense) [][]Float {
	n := m.SymmetricDim()
	out := make([][]Float, n)
	for i := 0; i < n; i++ {
		row := make([]Float, n)
		for j := 0; j < n; j++ {
			row[j] = Float(m.At(i, j))
		}
		out[i] = row
	}
	return out
}

// RollingVolatility is the rolling sample standard deviation over
// window consecutive observations per asset, annualized by sqrt(252).
// The first window-1 entries per asset are NaN until enough
// observations accumulate.
func RollingVolatility(r *Returns, window int) map[string][]Float {
	out := make(map[string][]Float, len(r.Symbols))
	for j, symbol := range r.Symbols {
		col := r.Column(j)
		series := make([]Float, len(col))
		for i := range series {
			if i < window-1 {
				series[i] = Float(math.NaN())
				continue
			}
			sd := stat.StdDev(col[i-window+1:i+1], nil)
			series[i] = Float(sd * math.Sqrt(tradingDaysPerYear))
		}
		out[symbol] = series
	}
	return out
}

// Distribution bins each asset's returns into a fixed-width histogram
// over that asset's observed range.
func Distribution(r *Returns, bins int) map[string]Histogram {
	out := make(map[string]Histogram, len(r.Symbols))
	for j, symbol := range r.Symbols {
		col := r.Column(j)
		sort.Float64s(col)

		lo, hi := col[0], col[len(col)-1]
		if lo == hi {
			// Degenerate series: a unit-wide bin around the value.
			lo, hi = lo-0.5, hi+0.5
		} else {
			// Half-open bins; nudge the top edge so the maximum is
			// counted in the last bin.
			hi = math.Nextafter(hi, math.Inf(1))
		}

		edges := make([]float64, bins+1)
		floats.Span(edges, lo, hi)
		weighted := stat.Histogram(nil, edges, col, nil)

		counts := make([]int, len(weighted))
		for i, w := range weighted {
			counts[i] = int(w)
		}
		out[symbol] = Histogram{Edges: edges, Counts: counts}
	}
	return out
}
