// Package report writes a one-shot risk report from a metrics
// snapshot: a human-readable summary, a machine-readable JSON dump,
// and a VaR/ES CSV.
package report

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strconv"

	"riskboard/internal/risk"

	"github.com/rs/zerolog/log"
)

// Reporter generates risk reports for a snapshot.
type Reporter struct {
	snapshot   *risk.Snapshot
	outputPath string
}

// NewReporter creates a reporter writing into outputPath.
func NewReporter(snapshot *risk.Snapshot, outputPath string) *Reporter {
	return &Reporter{snapshot: snapshot, outputPath: outputPath}
}

// GenerateReport writes all report formats.
func (r *Reporter) GenerateReport() error {
	if err := os.MkdirAll(r.outputPath, 0o755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}

	if err := r.generateSummary(); err != nil {
		return err
	}
	if err := r.generateTailCSV(); err != nil {
		return err
	}
	if err := r.generateJSONReport(); err != nil {
		return err
	}
	return nil
}

// generateSummary writes the human-readable summary.
func (r *Reporter) generateSummary() error {
	summaryPath := filepath.Join(r.outputPath, "risk_summary.txt")
	file, err := os.Create(summaryPath)
	if err != nil {
		return fmt.Errorf("failed to create summary file: %w", err)
	}
	defer file.Close()

	s := r.snapshot

	fmt.Fprintf(file, "RISK ANALYTICS SUMMARY\n")
	fmt.Fprintf(file, "======================\n\n")

	fmt.Fprintf(file, "Time Period: %s to %s (%d trading days)\n",
		s.Dates[0].Format("2006-01-02"),
		s.Dates[len(s.Dates)-1].Format("2006-01-02"),
		len(s.Dates))
	fmt.Fprintf(file, "Assets: %d\n", len(s.Symbols))
	fmt.Fprintf(file, "Confidence Level: %g%%\n", s.Params.Confidence)
	fmt.Fprintf(file, "Volatility Window: %d days\n\n", s.Params.Window)

	fmt.Fprintf(file, "PORTFOLIO\n")
	fmt.Fprintf(file, "---------\n")
	first := s.PortfolioValue[0]
	last := s.PortfolioValue[len(s.PortfolioValue)-1]
	fmt.Fprintf(file, "Initial Value: %.2f\n", first)
	fmt.Fprintf(file, "Final Value: %.2f (%.2f%%)\n\n", last, (last/first-1)*100)

	fmt.Fprintf(file, "TAIL RISK BY ASSET\n")
	fmt.Fprintf(file, "------------------\n")
	for _, symbol := range s.Symbols {
		esText := "no tail data"
		if es := s.ES[symbol]; es.Defined {
			esText = fmt.Sprintf("%.2f%%", float64(es.Value)*100)
		}
		fmt.Fprintf(file, "%s: VaR %.2f%%, ES %s\n", symbol, s.VaR[symbol]*100, esText)
	}

	fmt.Fprintf(file, "\nLATEST ANNUALIZED VOLATILITY\n")
	fmt.Fprintf(file, "----------------------------\n")
	for _, symbol := range s.Symbols {
		series := s.RollingVol[symbol]
		latest := float64(series[len(series)-1])
		if math.IsNaN(latest) {
			fmt.Fprintf(file, "%s: undefined\n", symbol)
			continue
		}
		fmt.Fprintf(file, "%s: %.2f%%\n", symbol, latest*100)
	}

	log.Info().Str("file", summaryPath).Msg("summary report generated")
	return nil
}

// generateTailCSV writes per-asset VaR and ES as CSV.
func (r *Reporter) generateTailCSV() error {
	csvPath := filepath.Join(r.outputPath, "var_es.csv")
	file, err := os.Create(csvPath)
	if err != nil {
		return fmt.Errorf("failed to create tail CSV: %w", err)
	}
	defer file.Close()

	writer := csv.NewWriter(file)
	defer writer.Flush()

	if err := writer.Write([]string{"symbol", "var", "es", "es_defined"}); err != nil {
		return err
	}

	s := r.snapshot
	for _, symbol := range s.Symbols {
		es := s.ES[symbol]
		esCell := ""
		if es.Defined {
			esCell = strconv.FormatFloat(float64(es.Value), 'g', -1, 64)
		}
		record := []string{
			symbol,
			strconv.FormatFloat(s.VaR[symbol], 'g', -1, 64),
			esCell,
			strconv.FormatBool(es.Defined),
		}
		if err := writer.Write(record); err != nil {
			return err
		}
	}

	log.Info().Str("file", csvPath).Msg("tail risk CSV generated")
	return nil
}

// generateJSONReport writes the full snapshot as JSON.
func (r *Reporter) generateJSONReport() error {
	jsonPath := filepath.Join(r.outputPath, "risk_metrics.json")
	file, err := os.Create(jsonPath)
	if err != nil {
		return fmt.Errorf("failed to create JSON report: %w", err)
	}
	defer file.Close()

	encoder := json.NewEncoder(file)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(r.snapshot); err != nil {
		return fmt.Errorf("failed to encode snapshot: %w", err)
	}

	log.Info().Str("file", jsonPath).Msg("JSON report generated")
	return nil
}

// PrintSummary prints a short console summary.
func (r *Reporter) PrintSummary() {
	s := r.snapshot

	fmt.Println("=== Risk Analytics Summary ===")
	fmt.Printf("Period: %s to %s\n",
		s.Dates[0].Format("2006-01-02"),
		s.Dates[len(s.Dates)-1].Format("2006-01-02"))
	fmt.Printf("Confidence: %g%%, Window: %dd\n", s.Params.Confidence, s.Params.Window)
	for _, symbol := range s.Symbols {
		esText := "undefined"
		if es := s.ES[symbol]; es.Defined {
			esText = fmt.Sprintf("%.2f%%", float64(es.Value)*100)
		}
		fmt.Printf("%-8s VaR %7.2f%%  ES %s\n", symbol, s.VaR[symbol]*100, esText)
	}
	fmt.Println("==============================")
}
