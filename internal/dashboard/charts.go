package dashboard

import (
	"fmt"
	"math"
	"sort"

	"riskboard/internal/risk"

	charts "github.com/vicanso/go-charts/v2"
)

const distributionChartBins = 30

// RenderChart renders the named chart from a snapshot as PNG bytes.
// Known names: portfolio, distribution, var, es, volatility.
func RenderChart(name string, s *risk.Snapshot) ([]byte, error) {
	switch name {
	case "portfolio":
		return renderPortfolio(s)
	case "distribution":
		return renderDistribution(s)
	case "var":
		return renderVaR(s)
	case "es":
		return renderES(s)
	case "volatility":
		return renderVolatility(s)
	default:
		return nil, fmt.Errorf("unknown chart %q", name)
	}
}

func dateLabels(s *risk.Snapshot, fromReturnRow int) []string {
	dates := s.ReturnDates[fromReturnRow:]
	labels := make([]string, len(dates))
	for i, d := range dates {
		labels[i] = d.Format("2006-01-02")
	}
	return labels
}

func renderPortfolio(s *risk.Snapshot) ([]byte, error) {
	labels := make([]string, len(s.Dates))
	for i, d := range s.Dates {
		labels[i] = d.Format("2006-01-02")
	}

	yMin, yMax := paddedRange(s.PortfolioValue)
	painter, err := charts.LineRender([][]float64{s.PortfolioValue},
		charts.TitleTextOptionFunc("Portfolio Value Over Time"),
		charts.XAxisOptionFunc(charts.XAxisOption{Data: labels, BoundaryGap: charts.FalseFlag(), SplitNumber: 8}),
		charts.YAxisOptionFunc(charts.YAxisOption{Min: &yMin, Max: &yMax, DivideCount: 5}),
		charts.ThemeOptionFunc(charts.ThemeLight),
	)
	if err != nil {
		return nil, err
	}
	return painter.Bytes()
}

// renderDistribution overlays per-asset return histograms on a shared
// bin grid so the series align on one x-axis. The JSON snapshot keeps
// the per-asset binning; shared bins are a chart-only presentation
// choice.
func renderDistribution(s *risk.Snapshot) ([]byte, error) {
	lo, hi := math.Inf(1), math.Inf(-1)
	for _, h := range s.Distribution {
		if len(h.Edges) == 0 {
			continue
		}
		lo = math.Min(lo, h.Edges[0])
		hi = math.Max(hi, h.Edges[len(h.Edges)-1])
	}
	if lo >= hi {
		return nil, fmt.Errorf("no return data to plot")
	}

	width := (hi - lo) / distributionChartBins
	labels := make([]string, distributionChartBins)
	for i := range labels {
		labels[i] = fmt.Sprintf("%.2f%%", (lo+width*(float64(i)+0.5))*100)
	}

	values := make([][]float64, len(s.Symbols))
	for j, symbol := range s.Symbols {
		counts := make([]float64, distributionChartBins)
		h := s.Distribution[symbol]
		for k, c := range h.Counts {
			center := (h.Edges[k] + h.Edges[k+1]) / 2
			bin := int((center - lo) / width)
			if bin < 0 {
				bin = 0
			}
			if bin >= distributionChartBins {
				bin = distributionChartBins - 1
			}
			counts[bin] += float64(c)
		}
		values[j] = counts
	}

	painter, err := charts.BarRender(values,
		charts.TitleTextOptionFunc("Returns Distribution"),
		charts.XAxisOptionFunc(charts.XAxisOption{Data: labels, SplitNumber: 6}),
		charts.LegendOptionFunc(charts.LegendOption{Data: s.Symbols}),
		charts.ThemeOptionFunc(charts.ThemeLight),
	)
	if err != nil {
		return nil, err
	}
	return painter.Bytes()
}

func renderVaR(s *risk.Snapshot) ([]byte, error) {
	values := make([]float64, len(s.Symbols))
	for j, symbol := range s.Symbols {
		values[j] = s.VaR[symbol] * 100
	}

	painter, err := charts.BarRender([][]float64{values},
		charts.TitleTextOptionFunc(fmt.Sprintf("%g%% Value at Risk (%%)", s.Params.Confidence)),
		charts.XAxisOptionFunc(charts.XAxisOption{Data: s.Symbols}),
		charts.ThemeOptionFunc(charts.ThemeLight),
	)
	if err != nil {
		return nil, err
	}
	return painter.Bytes()
}

// renderES plots only the assets whose ES is defined; an asset with
// no tail observations is omitted rather than drawn as zero.
func renderES(s *risk.Snapshot) ([]byte, error) {
	var labels []string
	var values []float64
	for _, symbol := range s.Symbols {
		es := s.ES[symbol]
		if !es.Defined {
			continue
		}
		labels = append(labels, symbol)
		values = append(values, float64(es.Value)*100)
	}
	if len(values) == 0 {
		return nil, fmt.Errorf("no asset has tail data at %g%% confidence", s.Params.Confidence)
	}

	painter, err := charts.BarRender([][]float64{values},
		charts.TitleTextOptionFunc(fmt.Sprintf("%g%% Expected Shortfall (%%)", s.Params.Confidence)),
		charts.XAxisOptionFunc(charts.XAxisOption{Data: labels}),
		charts.ThemeOptionFunc(charts.ThemeLight),
	)
	if err != nil {
		return nil, err
	}
	return painter.Bytes()
}

// renderVolatility draws per-asset rolling volatility lines, starting
// at the first row where every series is defined (the leading
// window-1 rows are undefined for all assets alike).
func renderVolatility(s *risk.Snapshot) ([]byte, error) {
	from := s.Params.Window - 1
	if from >= len(s.ReturnDates) {
		return nil, fmt.Errorf("window %d leaves no defined volatility", s.Params.Window)
	}

	values := make([][]float64, len(s.Symbols))
	for j, symbol := range s.Symbols {
		series := s.RollingVol[symbol][from:]
		row := make([]float64, len(series))
		for i, v := range series {
			row[i] = float64(v) * 100
		}
		values[j] = row
	}

	painter, err := charts.LineRender(values,
		charts.TitleTextOptionFunc(fmt.Sprintf("%d-Day Rolling Volatility (%%, annualized)", s.Params.Window)),
		charts.XAxisOptionFunc(charts.XAxisOption{Data: dateLabels(s, from), BoundaryGap: charts.FalseFlag(), SplitNumber: 8}),
		charts.LegendOptionFunc(charts.LegendOption{Data: s.Symbols}),
		charts.ThemeOptionFunc(charts.ThemeLight),
	)
	if err != nil {
		return nil, err
	}
	return painter.Bytes()
}

func paddedRange(values []float64) (float64, float64) {
	sorted := append([]float64(nil), values...)
	sort.Float64s(sorted)
	yMin, yMax := sorted[0], sorted[len(sorted)-1]

	pad := (yMax - yMin) * 0.05
	if pad < yMax*0.002 {
		pad = yMax * 0.002
	}
	yMin -= pad
	if yMin < 0 {
		yMin = 0
	}
	yMax += pad
	return yMin, yMax
}
