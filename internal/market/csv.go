package market

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
)

const dateLayout = "2006-01-02"

// LoadCSV reads a wide-format price CSV: a "date" column followed by
// one column per asset, e.g.
//
//	date,AAPL,MSFT,GOOGL
//	2023-01-03,125.07,239.58,89.70
//
// Unlike a lenient ingest pipeline, a bad row here is a hard error:
// the engine contract is that a table is either fully valid or
// rejected before any computation.
func LoadCSV(path string) (*Table, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open CSV file: %w", err)
	}
	defer file.Close()

	table, err := ReadCSV(file)
	if err != nil {
		return nil, err
	}

	log.Info().
		Str("file", path).
		Int("rows", table.Rows()).
		Strs("symbols", table.Symbols).
		Msg("price CSV loaded")

	return table, nil
}

// ReadCSV parses wide-format price data from r. See LoadCSV for the
// expected shape.
func ReadCSV(r io.Reader) (*Table, error) {
	reader := csv.NewReader(r)

	header, err := reader.Read()
	if err != nil {
		return nil, errInput("failed to read CSV header: %v", err)
	}
	if len(header) < 2 {
		return nil, errInput("CSV header needs a date column and at least one symbol")
	}
	if !strings.EqualFold(strings.TrimSpace(header[0]), "date") {
		return nil, errInput("first CSV column must be %q, got %q", "date", header[0])
	}

	symbols := make([]string, len(header)-1)
	for i, col := range header[1:] {
		symbols[i] = strings.TrimSpace(col)
	}

	var (
		dates  []time.Time
		values [][]float64
	)
	for line := 2; ; line++ {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, errInput("CSV line %d: %v", line, err)
		}
		if len(record) != len(header) {
			return nil, errInput("CSV line %d has %d fields, want %d", line, len(record), len(header))
		}

		date, err := time.Parse(dateLayout, strings.TrimSpace(record[0]))
		if err != nil {
			return nil, errInput("CSV line %d: bad date %q", line, record[0])
		}

		row := make([]float64, len(symbols))
		for j, cell := range record[1:] {
			v, err := strconv.ParseFloat(strings.TrimSpace(cell), 64)
			if err != nil {
				return nil, errInput("CSV line %d: non-numeric value %q for %s", line, cell, symbols[j])
			}
			row[j] = v
		}

		dates = append(dates, date)
		values = append(values, row)
	}

	return NewTable(dates, symbols, values)
}
