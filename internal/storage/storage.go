// Package storage provides a local cache of historical price bars
// using BoltDB, so the dashboard can warm-start without re-fetching
// remote data. Only input prices are cached; computed metrics are
// never persisted.
//
// Bars are stored one record per (symbol, date) with keys of the form
// "symbol_unixnano", which keeps per-symbol records contiguous and
// makes time-range scans a cursor seek.
package storage

import (
	"bytes"
	"encoding/json"
	"fmt"
	"path/filepath"
	"time"

	"riskboard/internal/market"

	"go.etcd.io/bbolt"
)

const barsBucket = "bars"

// Store is a BoltDB-backed price-bar cache.
type Store struct {
	db *bbolt.DB
}

// New opens (or creates) the cache database under dataPath.
func New(dataPath string) (*Store, error) {
	dbPath := filepath.Join(dataPath, "riskboard-data.db")

	db, err := bbolt.Open(dbPath, 0o600, &bbolt.Options{Timeout: 1 * time.Second})
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	err = db.Update(func(tx *bbolt.Tx) error {
		if _, err := tx.CreateBucketIfNotExists([]byte(barsBucket)); err != nil {
			return fmt.Errorf("create bars bucket: %w", err)
		}
		return nil
	})
	if err != nil {
		db.Close()
		return nil, err
	}

	return &Store{db: db}, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// StoreBar stores a single price bar, overwriting any existing record
// for the same symbol and date.
func (s *Store) StoreBar(bar market.Bar) error {
	return s.db.Update(func(tx *bbolt.Tx) error {
		return putBar(tx, bar)
	})
}

// StoreBars stores a batch of bars in one transaction.
func (s *Store) StoreBars(bars []market.Bar) error {
	return s.db.Update(func(tx *bbolt.Tx) error {
		for _, bar := range bars {
			if err := putBar(tx, bar); err != nil {
				return err
			}
		}
		return nil
	})
}

func putBar(tx *bbolt.Tx, bar market.Bar) error {
	b := tx.Bucket([]byte(barsBucket))

	data, err := json.Marshal(bar)
	if err != nil {
		return fmt.Errorf("marshal bar: %w", err)
	}

	key := fmt.Sprintf("%s_%d", bar.Symbol, bar.Date.UnixNano())
	return b.Put([]byte(key), data)
}

// GetBars retrieves bars for a symbol within [start, end], ordered by
// date. The range is inclusive on both ends.
func (s *Store) GetBars(symbol string, start, end time.Time) ([]market.Bar, error) {
	var bars []market.Bar

	err := s.db.View(func(tx *bbolt.Tx) error {
		b := tx.Bucket([]byte(barsBucket))
		c := b.Cursor()

		prefix := []byte(symbol + "_")
		startKey := []byte(fmt.Sprintf("%s_%d", symbol, start.UnixNano()))
		endKey := []byte(fmt.Sprintf("%s_%d", symbol, end.UnixNano()))

		for k, v := c.Seek(startKey); k != nil && bytes.Compare(k, endKey) <= 0; k, v = c.Next() {
			if !bytes.HasPrefix(k, prefix) {
				continue
			}

			var bar market.Bar
			if err := json.Unmarshal(v, &bar); err != nil {
				continue // Skip malformed records
			}
			bars = append(bars, bar)
		}

		return nil
	})

	return bars, err
}

// LoadTable assembles a price table from all cached bars of the given
// symbols. Returns an error if any symbol has no cached bars or the
// symbols share no dates.
func (s *Store) LoadTable(symbols []string) (*market.Table, error) {
	var all []market.Bar
	for _, symbol := range symbols {
		bars, err := s.GetBars(symbol, time.Unix(0, 0), time.Now().AddDate(1, 0, 0))
		if err != nil {
			return nil, fmt.Errorf("load cached bars for %s: %w", symbol, err)
		}
		if len(bars) == 0 {
			return nil, fmt.Errorf("no cached bars for %s", symbol)
		}
		all = append(all, bars...)
	}
	return market.TableFromBars(symbols, all)
}
