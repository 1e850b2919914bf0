package storage

import (
	"testing"
	"time"

	"riskboard/internal/market"
)

func day(d int) time.Time {
	return time.Date(2024, 1, d, 0, 0, 0, 0, time.UTC)
}

func testStore(t *testing.T) *Store {
	t.Helper()
	store, err := New(t.TempDir())
	if err != nil {
		t.Fatalf("failed to open store: %v", err)
	}
	t.Cleanup(func() { store.Close() })
	return store
}

func TestStoreAndGetBars(t *testing.T) {
	store := testStore(t)

	bars := []market.Bar{
		{Symbol: "AAA", Date: day(1), Close: 100},
		{Symbol: "AAA", Date: day(2), Close: 102},
		{Symbol: "AAA", Date: day(3), Close: 101},
		{Symbol: "BBB", Date: day(2), Close: 50},
	}
	if err := store.StoreBars(bars); err != nil {
		t.Fatalf("failed to store bars: %v", err)
	}

	got, err := store.GetBars("AAA", day(1), day(3))
	if err != nil {
		t.Fatalf("failed to read bars: %v", err)
	}
	if len(got) != 3 {
		t.Fatalf("expected 3 bars, got %d", len(got))
	}
	for i, bar := range got {
		if bar.Symbol != "AAA" {
			t.Errorf("bar[%d]: unexpected symbol %s", i, bar.Symbol)
		}
		if i > 0 && got[i-1].Date.After(bar.Date) {
			t.Errorf("bars not date-ordered at %d", i)
		}
	}
}

func TestGetBarsRange(t *testing.T) {
	store := testStore(t)

	for d := 1; d <= 10; d++ {
		if err := store.StoreBar(market.Bar{Symbol: "AAA", Date: day(d), Close: 100 + float64(d)}); err != nil {
			t.Fatalf("failed to store bar: %v", err)
		}
	}

	got, err := store.GetBars("AAA", day(3), day(6))
	if err != nil {
		t.Fatalf("failed to read bars: %v", err)
	}
	if len(got) != 4 {
		t.Fatalf("expected 4 bars in range, got %d", len(got))
	}
	if !got[0].Date.Equal(day(3)) || !got[3].Date.Equal(day(6)) {
		t.Errorf("unexpected range bounds %v .. %v", got[0].Date, got[3].Date)
	}
}

func TestGetBarsIsolatesSymbols(t *testing.T) {
	store := testStore(t)

	if err := store.StoreBars([]market.Bar{
		{Symbol: "AAA", Date: day(1), Close: 100},
		{Symbol: "AAAX", Date: day(1), Close: 200},
	}); err != nil {
		t.Fatalf("failed to store bars: %v", err)
	}

	got, err := store.GetBars("AAA", day(1), day(2))
	if err != nil {
		t.Fatalf("failed to read bars: %v", err)
	}
	if len(got) != 1 || got[0].Close != 100 {
		t.Errorf("prefix scan leaked another symbol's bars: %v", got)
	}
}

func TestLoadTable(t *testing.T) {
	store := testStore(t)

	if err := store.StoreBars([]market.Bar{
		{Symbol: "AAA", Date: day(1), Close: 100},
		{Symbol: "AAA", Date: day(2), Close: 102},
		{Symbol: "BBB", Date: day(1), Close: 50},
		{Symbol: "BBB", Date: day(2), Close: 49},
	}); err != nil {
		t.Fatalf("failed to store bars: %v", err)
	}

	table, err := store.LoadTable([]string{"AAA", "BBB"})
	if err != nil {
		t.Fatalf("failed to load table: %v", err)
	}
	if table.Rows() != 2 || table.Cols() != 2 {
		t.Fatalf("got %dx%d table, want 2x2", table.Rows(), table.Cols())
	}
	if table.Values[1][1] != 49 {
		t.Errorf("cell (1,1): got %f, want 49", table.Values[1][1])
	}
}

func TestLoadTableEmpty(t *testing.T) {
	store := testStore(t)
	if _, err := store.LoadTable([]string{"AAA"}); err == nil {
		t.Error("expected error when cache has no bars")
	}
}

func TestStorePersistsAcrossReopen(t *testing.T) {
	dir := t.TempDir()

	store, err := New(dir)
	if err != nil {
		t.Fatalf("failed to open store: %v", err)
	}
	if err := store.StoreBar(market.Bar{Symbol: "AAA", Date: day(1), Close: 100}); err != nil {
		t.Fatalf("failed to store bar: %v", err)
	}
	if err := store.Close(); err != nil {
		t.Fatalf("failed to close store: %v", err)
	}

	reopened, err := New(dir)
	if err != nil {
		t.Fatalf("failed to reopen store: %v", err)
	}
	defer reopened.Close()

	got, err := reopened.GetBars("AAA", day(1), day(1))
	if err != nil {
		t.Fatalf("failed to read bars: %v", err)
	}
	if len(got) != 1 || got[0].Close != 100 {
		t.Errorf("expected persisted bar, got %v", got)
	}
}
