package features

import (
	"math"
	"testing"
	"time"

	"github.com/hacks11/inventory-health/backend-go/internal/domain"
)

func day(n int) time.Time {
	return time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC).AddDate(0, 0, n)
}

func record(n int, qty float64) domain.UsageRecord {
	q := qty
	return domain.UsageRecord{Date: day(n), QtyUsed: &q}
}

func almostEqual(a, b float64) bool {
	return math.Abs(a-b) < 1e-9
}

func TestBuildEmptyHistory(t *testing.T) {
	b := NewBuilder()
	if rows := b.Build(nil); rows != nil {
		t.Fatalf("expected nil rows for empty history, got %d", len(rows))
	}
}

func TestBuildDefaultsForMissingColumns(t *testing.T) {
	b := NewBuilder()
	rows := b.Build([]domain.UsageRecord{record(0, 10)})
	if len(rows) != 1 {
		t.Fatalf("expected 1 row, got %d", len(rows))
	}

	row := rows[0]
	checks := []struct {
		name string
		got  float64
		want float64
	}{
		{"covers", row.Covers, DefaultCovers},
		{"seasonality_factor", row.SeasonalityFactor, DefaultSeasonalityFactor},
		{"inventory_start", row.InventoryStart, DefaultInventoryStart},
		{"on_order_qty", row.OnOrderQty, DefaultOnOrderQty},
		{"avg_daily_usage_7d", row.AvgDailyUsage7d, DefaultAvgDailyUsage7d},
		{"avg_daily_usage_28d", row.AvgDailyUsage28d, DefaultAvgDailyUsage28d},
		{"shelf_life_days", row.ShelfLifeDays, DefaultShelfLifeDays},
		{"unit_cost", row.UnitCost, DefaultUnitCost},
		{"is_holiday", row.IsHoliday, DefaultIsHoliday},
		{"lead_time_days", row.LeadTimeDays, DefaultLeadTimeDays},
	}
	for _, c := range checks {
		if !almostEqual(c.got, c.want) {
			t.Errorf("%s: got %v, want default %v", c.name, c.got, c.want)
		}
	}
}

func TestBuildCalendarColumns(t *testing.T) {
	b := NewBuilder()

	tests := []struct {
		date        time.Time
		wantDOW     float64
		wantWeekend float64
	}{
		// 2026-01-05 is a Monday
		{time.Date(2026, 1, 5, 0, 0, 0, 0, time.UTC), 0, 0},
		{time.Date(2026, 1, 9, 0, 0, 0, 0, time.UTC), 4, 0},
		{time.Date(2026, 1, 10, 0, 0, 0, 0, time.UTC), 5, 1},
		{time.Date(2026, 1, 11, 0, 0, 0, 0, time.UTC), 6, 1},
	}

	for _, tc := range tests {
		rows := b.Build([]domain.UsageRecord{{Date: tc.date}})
		row := rows[0]
		if row.DayOfWeek != tc.wantDOW {
			t.Errorf("%s: day_of_week got %v, want %v", tc.date.Format("2006-01-02"), row.DayOfWeek, tc.wantDOW)
		}
		if row.IsWeekend != tc.wantWeekend {
			t.Errorf("%s: is_weekend got %v, want %v", tc.date.Format("2006-01-02"), row.IsWeekend, tc.wantWeekend)
		}
		if row.Month != float64(tc.date.Month()) || row.DayOfMonth != float64(tc.date.Day()) {
			t.Errorf("%s: month/day got %v/%v", tc.date.Format("2006-01-02"), row.Month, row.DayOfMonth)
		}
	}
}

func TestBuildLagsAndRollingMeans(t *testing.T) {
	b := NewBuilder()

	// 15 days of usage 1..15
	records := make([]domain.UsageRecord, 15)
	for i := range records {
		records[i] = record(i, float64(i+1))
	}

	rows := b.Build(records)
	last := rows[len(rows)-1]

	if !almostEqual(last.QtyUsedLag1, 14) {
		t.Errorf("lag1: got %v, want 14", last.QtyUsedLag1)
	}
	if !almostEqual(last.QtyUsedLag7, 8) {
		t.Errorf("lag7: got %v, want 8", last.QtyUsedLag7)
	}
	if !almostEqual(last.QtyUsedLag14, 1) {
		t.Errorf("lag14: got %v, want 1", last.QtyUsedLag14)
	}

	// rolling window includes the current row: mean(13,14,15) and mean(9..15)
	if !almostEqual(last.QtyUsedRoll3d, 14) {
		t.Errorf("roll3: got %v, want 14", last.QtyUsedRoll3d)
	}
	if !almostEqual(last.QtyUsedRoll7d, 12) {
		t.Errorf("roll7: got %v, want 12", last.QtyUsedRoll7d)
	}
}

func TestBuildShortHistoryLagsAreZero(t *testing.T) {
	b := NewBuilder()
	rows := b.Build([]domain.UsageRecord{record(0, 5), record(1, 6)})

	first := rows[0]
	if first.QtyUsedLag1 != 0 || first.QtyUsedLag7 != 0 || first.QtyUsedLag14 != 0 {
		t.Errorf("first row lags should be zero, got %v/%v/%v", first.QtyUsedLag1, first.QtyUsedLag7, first.QtyUsedLag14)
	}
	if first.QtyUsedRoll3d != 0 || first.QtyUsedRoll7d != 0 {
		t.Errorf("first row rolling means should be zero, got %v/%v", first.QtyUsedRoll3d, first.QtyUsedRoll7d)
	}

	second := rows[1]
	if !almostEqual(second.QtyUsedLag1, 5) {
		t.Errorf("second row lag1: got %v, want 5", second.QtyUsedLag1)
	}
	if second.QtyUsedRoll3d != 0 {
		t.Errorf("second row roll3 should be zero with only 2 rows, got %v", second.QtyUsedRoll3d)
	}
}

func TestVectorMatchesFeatureNames(t *testing.T) {
	b := NewBuilder()
	rows := b.Build([]domain.UsageRecord{record(0, 1)})
	vec := rows[0].Vector()
	if len(vec) != len(domain.FeatureNames) {
		t.Fatalf("vector length %d does not match %d feature names", len(vec), len(domain.FeatureNames))
	}
}
