package backtest

import (
	"math"
	"testing"
	"time"

	"github.com/seenimoa/momentum/pkg/models"
)

func points(symbol string, start time.Time, closes ...float64) []models.PricePoint {
	series := make([]models.PricePoint, len(closes))
	for i, c := range closes {
		series[i] = models.PricePoint{Symbol: symbol, Date: start.AddDate(0, 0, i), Close: c}
	}
	return series
}

func TestAddPeriodSingleSymbol(t *testing.T) {
	start := date(2025, time.January, 1)
	table := models.PriceTable{
		"A": points("A", start, 100, 110, 121),
	}

	b := NewReturnsBuilder(0)
	b.AddPeriod(table, []string{"A"}, start, start.AddDate(0, 0, 2), 0)

	series := b.Series()
	if len(series) != 2 {
		t.Fatalf("got %d return points, want 2", len(series))
	}
	for i, want := range []float64{0.1, 0.1} {
		if !almostEqual(series[i].Return, want) {
			t.Errorf("return[%d] = %f, want %f", i, series[i].Return, want)
		}
	}
}

func TestAddPeriodEqualWeight(t *testing.T) {
	start := date(2025, time.January, 1)
	table := models.PriceTable{
		"A": points("A", start, 100, 110), // +10%
		"B": points("B", start, 100, 90),  // -10%
	}

	b := NewReturnsBuilder(0)
	b.AddPeriod(table, []string{"A", "B"}, start, start.AddDate(0, 0, 1), 0)

	series := b.Series()
	if len(series) != 1 {
		t.Fatalf("got %d return points, want 1", len(series))
	}
	if !almostEqual(series[0].Return, 0) {
		t.Errorf("equal-weighted return = %f, want 0", series[0].Return)
	}
}

func TestAddPeriodCommissionDrag(t *testing.T) {
	start := date(2025, time.January, 1)
	table := models.PriceTable{
		"A": points("A", start, 100, 100, 100),
	}

	b := NewReturnsBuilder(0.01)
	b.AddPeriod(table, []string{"A"}, start, start.AddDate(0, 0, 2), 2)

	series := b.Series()
	if len(series) != 2 {
		t.Fatalf("got %d return points, want 2", len(series))
	}
	// Two position changes at 1% each hit only the first day.
	if !almostEqual(series[0].Return, -0.02) {
		t.Errorf("first return = %f, want -0.02", series[0].Return)
	}
	if !almostEqual(series[1].Return, 0) {
		t.Errorf("second return = %f, want 0", series[1].Return)
	}
}

func TestAddPeriodMissingSymbol(t *testing.T) {
	start := date(2025, time.January, 1)
	table := models.PriceTable{
		"A": points("A", start, 100, 102),
	}

	b := NewReturnsBuilder(0)
	b.AddPeriod(table, []string{"A", "GHOST"}, start, start.AddDate(0, 0, 1), 0)

	series := b.Series()
	if len(series) != 1 {
		t.Fatalf("got %d return points, want 1", len(series))
	}
	// GHOST contributes nothing; the day is A's return alone.
	if !almostEqual(series[0].Return, 0.02) {
		t.Errorf("return = %f, want 0.02", series[0].Return)
	}
}

func TestAddPeriodConcatenatesChronologically(t *testing.T) {
	start := date(2025, time.January, 1)
	table := models.PriceTable{
		"A": points("A", start, 100, 110, 121, 133.1),
	}

	b := NewReturnsBuilder(0)
	b.AddPeriod(table, []string{"A"}, start, start.AddDate(0, 0, 2), 0)
	b.AddPeriod(table, []string{"A"}, start.AddDate(0, 0, 2), start.AddDate(0, 0, 3), 0)

	series := b.Series()
	if len(series) != 3 {
		t.Fatalf("got %d return points, want 3", len(series))
	}
	for i := 1; i < len(series); i++ {
		if !series[i].Date.After(series[i-1].Date) {
			t.Errorf("series not chronological at %d: %s then %s",
				i, series[i-1].Date, series[i].Date)
		}
	}
	total := 1.0
	for _, p := range series {
		total *= 1 + p.Return
	}
	if math.Abs(total-1.331) > 1e-9 {
		t.Errorf("compounded growth = %f, want 1.331", total)
	}
}

func TestAddPeriodNoData(t *testing.T) {
	b := NewReturnsBuilder(0)
	b.AddPeriod(models.PriceTable{}, []string{"A"}, date(2025, time.January, 1), date(2025, time.January, 31), 1)
	if len(b.Series()) != 0 {
		t.Errorf("expected empty series when no symbol has data")
	}
}
