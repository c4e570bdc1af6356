// backend-go/internal/advisor/advisor.go
package advisor

import (
	"time"

	"github.com/hacks11/inventory-health/backend-go/internal/domain"
)

// Decision thresholds (in days). These are fixed contract values of the
// recommendation table, not tunables.
const (
	reorderSoonSlack    = 3
	excessInventoryDays = 30

	// Reported stock coverage when average daily consumption is zero.
	unboundedCoverageDays = 999
)

// Input carries the stock/expiry parameters for one advisor run. Today is
// the reference date the forecast was rolled out from; PerishDate is nil
// when the ingredient has no tracked expiry.
type Input struct {
	CurrentStock     float64
	PerishDate       *time.Time
	SafetyBufferDays int
	Today            time.Time
}

// Result is the advisor verdict before response formatting.
type Result struct {
	RunoutDate       *string
	DaysUntilRunout  *int
	WasteRisk        bool
	Action           domain.Action
	TotalConsumption float64
	AvgDaily         float64
	CoverageDays     int
}

// Advisor turns a forecast sequence and stock parameters into a runout
// date, a waste-risk flag, and a recommended action. Pure computation; safe
// for concurrent use.
type Advisor struct{}

func New() *Advisor {
	return &Advisor{}
}

// Evaluate walks the forecast in date order. The forecast must already be
// sorted ascending with point i covering day i+1 from Today.
func (a *Advisor) Evaluate(in Input, forecast []domain.ForecastPoint) Result {
	res := Result{}

	var cumulative float64
	for i, p := range forecast {
		res.TotalConsumption += p.Predicted
		if res.RunoutDate == nil {
			cumulative += p.Predicted
			if cumulative >= in.CurrentStock {
				date := p.Date
				days := i + 1
				res.RunoutDate = &date
				res.DaysUntilRunout = &days
			}
		}
	}

	if len(forecast) > 0 {
		res.AvgDaily = res.TotalConsumption / float64(len(forecast))
	}

	res.WasteRisk = a.wasteRisk(in, forecast)

	if res.AvgDaily > 0 {
		res.CoverageDays = int(in.CurrentStock / res.AvgDaily)
	} else {
		res.CoverageDays = unboundedCoverageDays
	}

	res.Action = Recommend(res.WasteRisk, res.DaysUntilRunout, in.SafetyBufferDays)

	return res
}

// wasteRisk reports whether current stock is projected to outlive the
// ingredient's shelf life: forecast consumption strictly before the perish
// date falls short of current stock. Always false when the perish date is
// absent or not strictly in the future.
func (a *Advisor) wasteRisk(in Input, forecast []domain.ForecastPoint) bool {
	if in.PerishDate == nil {
		return false
	}

	daysToPerish := daysBetween(in.Today, *in.PerishDate)
	if daysToPerish <= 0 {
		return false
	}

	var consumed float64
	for i, p := range forecast {
		if i >= daysToPerish {
			break
		}
		consumed += p.Predicted
	}

	return consumed < in.CurrentStock
}

// Recommend is the action decision table: a pure function of the waste
// flag, days-until-runout, and safety buffer, first match wins.
func Recommend(wasteRisk bool, daysUntilRunout *int, safetyBuffer int) domain.Action {
	switch {
	case wasteRisk:
		return domain.ActionRunSpecial
	case daysUntilRunout == nil:
		return domain.ActionStockSufficient
	case *daysUntilRunout <= safetyBuffer:
		return domain.ActionReorderNow
	case *daysUntilRunout <= safetyBuffer+reorderSoonSlack:
		return domain.ActionReorderSoon
	case *daysUntilRunout >= excessInventoryDays:
		return domain.ActionRaiseBuffer
	default:
		return domain.ActionMonitorNormal
	}
}

func daysBetween(from, to time.Time) int {
	fromDay := time.Date(from.Year(), from.Month(), from.Day(), 0, 0, 0, 0, time.UTC)
	toDay := time.Date(to.Year(), to.Month(), to.Day(), 0, 0, 0, 0, time.UTC)
	return int(toDay.Sub(fromDay).Hours() / 24)
}
