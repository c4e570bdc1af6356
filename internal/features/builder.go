// backend-go/internal/features/builder.go
package features

import (
	"time"

	"github.com/hacks11/inventory-health/backend-go/internal/domain"
)

// Per-column defaults substituted for missing source values. These are
// contract values shared with the trained models; changing one silently
// shifts every prediction.
const (
	DefaultCovers            = 250.0
	DefaultSeasonalityFactor = 1.0
	DefaultInventoryStart    = 0.0
	DefaultOnOrderQty        = 0.0
	DefaultAvgDailyUsage7d   = 0.0
	DefaultAvgDailyUsage28d  = 0.0
	DefaultShelfLifeDays     = 30.0
	DefaultUnitCost          = 1.0
	DefaultIsHoliday         = 0.0
	DefaultLeadTimeDays      = 2.0
)

// Lag and rolling windows are row-based over the sorted same-SKU sequence,
// not calendar days: a gap in the series shifts the window.
const (
	lagShort  = 1
	lagWeek   = 7
	lagTwoWk  = 14
	rollShort = 3
	rollWeek  = 7
)

// Builder derives fixed-schema feature rows from a usage history.
type Builder struct{}

func NewBuilder() *Builder {
	return &Builder{}
}

// Build produces one FeatureRow per input record, covering the trailing
// window. Records must already be sorted ascending by date; lag and rolling
// correctness is undefined otherwise. Short histories are not an error: the
// earliest rows simply carry default lag/rolling values.
func (b *Builder) Build(records []domain.UsageRecord) []domain.FeatureRow {
	if len(records) == 0 {
		return nil
	}

	qty := make([]float64, len(records))
	for i := range records {
		qty[i] = records[i].QtyUsedValue()
	}

	rows := make([]domain.FeatureRow, len(records))
	for i := range records {
		rec := &records[i]
		dow := mondayWeekday(rec.Date)

		row := domain.FeatureRow{
			Date: rec.Date,

			Covers:            fill(rec.Covers, DefaultCovers),
			SeasonalityFactor: fill(rec.SeasonalityFactor, DefaultSeasonalityFactor),
			InventoryStart:    fill(rec.InventoryStart, DefaultInventoryStart),
			OnOrderQty:        fill(rec.OnOrderQty, DefaultOnOrderQty),
			AvgDailyUsage7d:   fill(rec.AvgDailyUsage7d, DefaultAvgDailyUsage7d),
			AvgDailyUsage28d:  fill(rec.AvgDailyUsage28d, DefaultAvgDailyUsage28d),
			ShelfLifeDays:     fill(rec.ShelfLifeDays, DefaultShelfLifeDays),
			UnitCost:          fill(rec.UnitCost, DefaultUnitCost),
			IsHoliday:         fill(rec.IsHoliday, DefaultIsHoliday),
			LeadTimeDays:      fill(rec.LeadTimeDays, DefaultLeadTimeDays),

			DayOfWeek:  float64(dow),
			Month:      float64(rec.Date.Month()),
			DayOfMonth: float64(rec.Date.Day()),
		}
		if dow >= 5 {
			row.IsWeekend = 1
		}

		row.QtyUsedLag1 = lag(qty, i, lagShort)
		row.QtyUsedLag7 = lag(qty, i, lagWeek)
		row.QtyUsedLag14 = lag(qty, i, lagTwoWk)
		row.QtyUsedRoll3d = rollingMean(qty, i, rollShort)
		row.QtyUsedRoll7d = rollingMean(qty, i, rollWeek)

		rows[i] = row
	}

	return rows
}

func fill(v *float64, def float64) float64 {
	if v == nil {
		return def
	}
	return *v
}

// mondayWeekday maps time.Weekday to the Monday=0..Sunday=6 convention the
// models were trained against.
func mondayWeekday(t time.Time) int {
	return (int(t.Weekday()) + 6) % 7
}

// lag returns the value n rows earlier, or zero when fewer than n prior
// rows exist.
func lag(series []float64, i, n int) float64 {
	if i-n < 0 {
		return 0
	}
	return series[i-n]
}

// rollingMean averages the trailing n rows including the current one, or
// zero when the window is not yet full.
func rollingMean(series []float64, i, n int) float64 {
	if i+1 < n {
		return 0
	}

	var sum float64
	for j := i - n + 1; j <= i; j++ {
		sum += series[j]
	}
	return sum / float64(n)
}
