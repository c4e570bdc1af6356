// backend-go/internal/forecast/rollout.go
package forecast

import (
	"fmt"
	"math"
	"time"

	"github.com/hacks11/inventory-health/backend-go/internal/domain"
	"github.com/hacks11/inventory-health/backend-go/internal/model"
)

// Heuristic constants. The confidence band is a fixed symmetric percentage
// around the point estimate; the ensemble decay approximates diminishing
// forecast confidence across the horizon. Both are contract values, not
// learned components.
const (
	ConfidenceBandLow  = 0.85
	ConfidenceBandHigh = 1.15
	EnsembleDailyDecay = 0.02

	MinHorizonDays = 1
	MaxHorizonDays = 90
)

const dateLayout = "2006-01-02"

// Engine rolls a point predictor out over a forecast horizon. Construct via
// NewSingleEngine or NewEnsembleEngine depending on the configured variant.
type Engine struct {
	variant  string
	single   model.Predictor
	tabular  model.Predictor
	sequence model.Predictor
	meta     model.Predictor
}

// NewSingleEngine builds an engine that applies one predictor directly to
// the latest feature row for every forecast day. The row is not advanced
// between days, so a deterministic predictor yields a flat forecast.
func NewSingleEngine(p model.Predictor) *Engine {
	return &Engine{variant: model.VariantSingle, single: p}
}

// NewEnsembleEngine builds an engine that combines a tabular and a sequence
// expert through a meta combiner, then decays the combined estimate
// geometrically across the horizon.
func NewEnsembleEngine(tabular, sequence, meta model.Predictor) *Engine {
	return &Engine{variant: model.VariantEnsemble, tabular: tabular, sequence: sequence, meta: meta}
}

// Variant reports which rollout variant the engine runs.
func (e *Engine) Variant() string {
	return e.variant
}

// Rollout produces exactly horizon ForecastPoints for consecutive days
// starting the day after now. Every estimate is clamped to be non-negative
// and carries the fixed confidence band. A predictor failure surfaces as a
// PredictionError carrying the SKU; it is not retried.
func (e *Engine) Rollout(sku string, latest domain.FeatureRow, now time.Time, horizon int) ([]domain.ForecastPoint, error) {
	if horizon < MinHorizonDays || horizon > MaxHorizonDays {
		return nil, &domain.ValidationError{
			Field:  "lookahead_days",
			Reason: fmt.Sprintf("must be between %d and %d, got %d", MinHorizonDays, MaxHorizonDays, horizon),
		}
	}

	values, err := e.estimates(sku, latest, horizon)
	if err != nil {
		return nil, err
	}

	points := make([]domain.ForecastPoint, horizon)
	for i, v := range values {
		v = math.Max(0, v)
		points[i] = domain.ForecastPoint{
			Date:           now.AddDate(0, 0, i+1).Format(dateLayout),
			Predicted:      v,
			ConfidenceLow:  v * ConfidenceBandLow,
			ConfidenceHigh: v * ConfidenceBandHigh,
		}
	}

	return points, nil
}

func (e *Engine) estimates(sku string, latest domain.FeatureRow, horizon int) ([]float64, error) {
	vec := latest.Vector()
	values := make([]float64, horizon)

	switch e.variant {
	case model.VariantSingle:
		// Every day scores the same unchanged snapshot; see the service
		// docs for the feedback-rollout follow-up this isolates.
		for i := range values {
			v, err := e.single.Predict(vec)
			if err != nil {
				return nil, &domain.PredictionError{SKU: sku, Err: err}
			}
			values[i] = v
		}

	case model.VariantEnsemble:
		a, err := e.tabular.Predict(vec)
		if err != nil {
			return nil, &domain.PredictionError{SKU: sku, Err: fmt.Errorf("tabular expert: %w", err)}
		}
		b, err := e.sequence.Predict(vec)
		if err != nil {
			return nil, &domain.PredictionError{SKU: sku, Err: fmt.Errorf("sequence expert: %w", err)}
		}
		combined, err := e.meta.Predict([]float64{a, b})
		if err != nil {
			return nil, &domain.PredictionError{SKU: sku, Err: fmt.Errorf("meta combiner: %w", err)}
		}
		for i := range values {
			values[i] = combined * math.Pow(1-EnsembleDailyDecay, float64(i))
		}

	default:
		return nil, &domain.PredictionError{SKU: sku, Err: fmt.Errorf("unknown engine variant %q", e.variant)}
	}

	return values, nil
}

// TrailingAverage is the configuration-level fallback predictor used by the
// single variant when no model artifact is loaded: it returns the mean of
// the trailing 7 days of historical usage regardless of input features.
type TrailingAverage struct {
	value float64
}

const trailingAverageWindow = 7

// NewTrailingAverage computes the fallback estimate from a usage history
// sorted ascending by date. Missing quantities count as zero.
func NewTrailingAverage(records []domain.UsageRecord) *TrailingAverage {
	start := len(records) - trailingAverageWindow
	if start < 0 {
		start = 0
	}

	var sum float64
	n := len(records) - start
	for _, rec := range records[start:] {
		sum += rec.QtyUsedValue()
	}

	t := &TrailingAverage{}
	if n > 0 {
		t.value = sum / float64(n)
	}
	return t
}

func (t *TrailingAverage) Predict([]float64) (float64, error) {
	return t.value, nil
}
