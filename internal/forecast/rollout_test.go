package forecast

import (
	"errors"
	"math"
	"testing"
	"time"

	"github.com/hacks11/inventory-health/backend-go/internal/domain"
)

type stubPredictor struct {
	value float64
	err   error
}

func (s *stubPredictor) Predict([]float64) (float64, error) {
	return s.value, s.err
}

var testNow = time.Date(2026, 4, 10, 9, 30, 0, 0, time.UTC)

func TestRolloutHorizonValidation(t *testing.T) {
	e := NewSingleEngine(&stubPredictor{value: 5})

	for _, horizon := range []int{0, -1, 91, 1000} {
		_, err := e.Rollout("R001-I001", domain.FeatureRow{}, testNow, horizon)
		var validation *domain.ValidationError
		if !errors.As(err, &validation) {
			t.Errorf("horizon %d: expected ValidationError, got %v", horizon, err)
		}
	}
}

func TestRolloutPointCountAndDates(t *testing.T) {
	e := NewSingleEngine(&stubPredictor{value: 5})

	for _, horizon := range []int{1, 7, 90} {
		points, err := e.Rollout("R001-I001", domain.FeatureRow{}, testNow, horizon)
		if err != nil {
			t.Fatalf("horizon %d: %v", horizon, err)
		}
		if len(points) != horizon {
			t.Fatalf("horizon %d: got %d points", horizon, len(points))
		}
		if points[0].Date != "2026-04-11" {
			t.Errorf("first date: got %s, want 2026-04-11", points[0].Date)
		}
		last := testNow.AddDate(0, 0, horizon).Format("2006-01-02")
		if points[horizon-1].Date != last {
			t.Errorf("last date: got %s, want %s", points[horizon-1].Date, last)
		}
	}
}

func TestRolloutConfidenceBand(t *testing.T) {
	e := NewSingleEngine(&stubPredictor{value: 10})

	points, err := e.Rollout("R001-I001", domain.FeatureRow{}, testNow, 3)
	if err != nil {
		t.Fatal(err)
	}
	for _, p := range points {
		if p.Predicted != 10 {
			t.Errorf("predicted: got %v, want 10", p.Predicted)
		}
		if math.Abs(p.ConfidenceLow-8.5) > 1e-9 || math.Abs(p.ConfidenceHigh-11.5) > 1e-9 {
			t.Errorf("band: got [%v, %v], want [8.5, 11.5]", p.ConfidenceLow, p.ConfidenceHigh)
		}
	}
}

func TestRolloutClampsNegativeEstimates(t *testing.T) {
	e := NewSingleEngine(&stubPredictor{value: -4})

	points, err := e.Rollout("R001-I001", domain.FeatureRow{}, testNow, 2)
	if err != nil {
		t.Fatal(err)
	}
	for _, p := range points {
		if p.Predicted != 0 || p.ConfidenceLow != 0 || p.ConfidenceHigh != 0 {
			t.Errorf("negative estimate must clamp to zero, got %+v", p)
		}
	}
}

func TestRolloutPredictorFailure(t *testing.T) {
	e := NewSingleEngine(&stubPredictor{err: errors.New("boom")})

	_, err := e.Rollout("R002-I005", domain.FeatureRow{}, testNow, 7)
	var predErr *domain.PredictionError
	if !errors.As(err, &predErr) {
		t.Fatalf("expected PredictionError, got %v", err)
	}
	if predErr.SKU != "R002-I005" {
		t.Errorf("error SKU: got %s", predErr.SKU)
	}
}

func TestEnsembleRolloutDecay(t *testing.T) {
	e := NewEnsembleEngine(
		&stubPredictor{value: 10},
		&stubPredictor{value: 20},
		&stubPredictor{value: 100},
	)

	points, err := e.Rollout("R001-I001", domain.FeatureRow{}, testNow, 5)
	if err != nil {
		t.Fatal(err)
	}

	if math.Abs(points[0].Predicted-100) > 1e-9 {
		t.Errorf("day 1: got %v, want meta output 100", points[0].Predicted)
	}
	for i := 1; i < len(points); i++ {
		if points[i].Predicted >= points[i-1].Predicted {
			t.Errorf("decay must be strictly decreasing: day %d %v >= day %d %v",
				i+1, points[i].Predicted, i, points[i-1].Predicted)
		}
		want := 100 * math.Pow(1-EnsembleDailyDecay, float64(i))
		if math.Abs(points[i].Predicted-want) > 1e-9 {
			t.Errorf("day %d: got %v, want %v", i+1, points[i].Predicted, want)
		}
	}
}

func TestEnsembleExpertFailure(t *testing.T) {
	e := NewEnsembleEngine(
		&stubPredictor{err: errors.New("tabular down")},
		&stubPredictor{value: 20},
		&stubPredictor{value: 1},
	)

	_, err := e.Rollout("R001-I001", domain.FeatureRow{}, testNow, 3)
	var predErr *domain.PredictionError
	if !errors.As(err, &predErr) {
		t.Fatalf("expected PredictionError, got %v", err)
	}
}

func TestTrailingAverage(t *testing.T) {
	qty := func(v float64) *float64 { return &v }

	tests := []struct {
		name    string
		records []domain.UsageRecord
		want    float64
	}{
		{"empty history", nil, 0},
		{"short history", []domain.UsageRecord{{QtyUsed: qty(4)}, {QtyUsed: qty(6)}}, 5},
		{
			"only last seven count",
			[]domain.UsageRecord{
				{QtyUsed: qty(1000)},
				{QtyUsed: qty(7)}, {QtyUsed: qty(7)}, {QtyUsed: qty(7)},
				{QtyUsed: qty(7)}, {QtyUsed: qty(7)}, {QtyUsed: qty(7)}, {QtyUsed: qty(7)},
			},
			7,
		},
		{"missing quantities count as zero", []domain.UsageRecord{{}, {QtyUsed: qty(10)}}, 5},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got, err := NewTrailingAverage(tc.records).Predict(nil)
			if err != nil {
				t.Fatal(err)
			}
			if math.Abs(got-tc.want) > 1e-9 {
				t.Errorf("got %v, want %v", got, tc.want)
			}
		})
	}
}
