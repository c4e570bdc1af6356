package cache

import (
	"context"
	"strings"
	"testing"
)

func TestBuildPredictionKey(t *testing.T) {
	a := buildPredictionKey(PredictionKey{SKUID: "R001-I003", Horizon: 7, Variant: "single"})
	b := buildPredictionKey(PredictionKey{SKUID: " r001-i003 ", Horizon: 7, Variant: "SINGLE"})
	if a != b {
		t.Error("key must be case and whitespace insensitive")
	}

	c := buildPredictionKey(PredictionKey{SKUID: "R001-I003", Horizon: 14, Variant: "single"})
	if a == c {
		t.Error("different horizons must produce different keys")
	}

	d := buildPredictionKey(PredictionKey{SKUID: "R001-I003", Horizon: 7, Variant: "ensemble"})
	if a == d {
		t.Error("different variants must produce different keys")
	}

	if !strings.HasPrefix(a, forecastKeyPrefix+":") {
		t.Errorf("key %q missing prefix", a)
	}
}

func TestNoopForecastCache(t *testing.T) {
	c := NewNoopForecastCache()
	ctx := context.Background()
	key := PredictionKey{SKUID: "R001-I001", Horizon: 7, Variant: "single"}

	if _, ok, err := c.GetPrediction(ctx, key); ok || err != nil {
		t.Errorf("noop get: ok=%v err=%v", ok, err)
	}
	if err := c.SetPrediction(ctx, key, nil); err != nil {
		t.Errorf("noop set: %v", err)
	}
	if err := c.InvalidateAll(ctx); err != nil {
		t.Errorf("noop invalidate: %v", err)
	}
}
