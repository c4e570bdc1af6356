// backend-go/internal/service/forecast_service.go
package service

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/hacks11/inventory-health/backend-go/internal/advisor"
	"github.com/hacks11/inventory-health/backend-go/internal/cache"
	"github.com/hacks11/inventory-health/backend-go/internal/domain"
	"github.com/hacks11/inventory-health/backend-go/internal/features"
	"github.com/hacks11/inventory-health/backend-go/internal/forecast"
	"github.com/hacks11/inventory-health/backend-go/internal/model"
	"github.com/hacks11/inventory-health/backend-go/internal/repository"
)

const (
	defaultLookaheadDays    = 7
	defaultSafetyBufferDays = 3
	optimizationHorizonDays = 30
	defaultHistoryWindow    = 30
	actualsTailDays         = 7
	defaultSKUListLimit     = 10

	dateLayout = "2006-01-02"

	// Variant label reported when predictions come from the historical
	// average rather than a loaded model.
	variantFallback = "fallback"
)

// ForecastService orchestrates one prediction: fetch history, derive
// features, roll the predictor out, and shape the chart-ready response. A
// nil registry is valid only with the fallback enabled.
type ForecastService struct {
	repo            repository.UsageRepository
	registry        *model.Registry
	cache           cache.ForecastCache
	builder         *features.Builder
	advisor         *advisor.Advisor
	historyWindow   int
	fallbackEnabled bool
	now             func() time.Time
}

func NewForecastService(repo repository.UsageRepository, registry *model.Registry, cacheImpl cache.ForecastCache, historyWindowDays int, fallbackEnabled bool) *ForecastService {
	if cacheImpl == nil {
		cacheImpl = cache.NewNoopForecastCache()
	}
	if historyWindowDays <= 0 {
		historyWindowDays = defaultHistoryWindow
	}
	return &ForecastService{
		repo:            repo,
		registry:        registry,
		cache:           cacheImpl,
		builder:         features.NewBuilder(),
		advisor:         advisor.New(),
		historyWindow:   historyWindowDays,
		fallbackEnabled: fallbackEnabled,
		now:             time.Now,
	}
}

// WithClock overrides the service clock. Test hook.
func (s *ForecastService) WithClock(now func() time.Time) *ForecastService {
	s.now = now
	return s
}

func (s *ForecastService) variant() string {
	if s.registry == nil {
		return variantFallback
	}
	return s.registry.Variant()
}

// PredictInventory produces the consumption forecast for one SKU: the last
// week of actuals merged with the predicted horizon, plus summary stats.
func (s *ForecastService) PredictInventory(ctx context.Context, req domain.PredictionRequest) (*domain.PredictionResponse, error) {
	horizon := req.LookaheadDays
	if horizon == 0 {
		horizon = defaultLookaheadDays
	}
	if horizon < forecast.MinHorizonDays || horizon > forecast.MaxHorizonDays {
		return nil, &domain.ValidationError{
			Field:  "lookahead_days",
			Reason: fmt.Sprintf("must be between %d and %d, got %d", forecast.MinHorizonDays, forecast.MaxHorizonDays, horizon),
		}
	}

	if s.registry == nil && !s.fallbackEnabled {
		return nil, domain.ErrModelsUnavailable
	}

	key := cache.PredictionKey{SKUID: req.SKUID, Horizon: horizon, Variant: s.variant()}
	if resp, ok, err := s.cache.GetPrediction(ctx, key); err == nil && ok {
		return resp, nil
	} else if err != nil {
		log.Warn().Err(err).Str("sku", req.SKUID).Msg("forecast: cache get failed")
	}

	records, points, err := s.rollout(ctx, req.SKUID, horizon)
	if err != nil {
		return nil, err
	}

	resp := &domain.PredictionResponse{
		SKUID:       req.SKUID,
		Predictions: mergeSeries(records, points),
		Summary:     summarize(records, points, horizon, s.variant()),
	}

	if err := s.cache.SetPrediction(ctx, key, resp); err != nil {
		log.Warn().Err(err).Str("sku", req.SKUID).Msg("forecast: cache set failed")
	}

	return resp, nil
}

// Optimize runs the reorder/waste advisor for one SKU against an internal
// 30-day forecast.
func (s *ForecastService) Optimize(ctx context.Context, skuID string, req domain.OptimizationRequest) (*domain.OptimizationResult, error) {
	if s.registry == nil && !s.fallbackEnabled {
		return nil, domain.ErrModelsUnavailable
	}

	var perishDate *time.Time
	if req.PerishDate != "" {
		t, err := time.Parse(dateLayout, req.PerishDate)
		if err != nil {
			return nil, &domain.ValidationError{
				Field:  "perish_date",
				Reason: fmt.Sprintf("expected YYYY-MM-DD, got %q", req.PerishDate),
			}
		}
		perishDate = &t
	}

	buffer := req.SafetyBufferDays
	if buffer == 0 {
		buffer = defaultSafetyBufferDays
	}

	_, points, err := s.rollout(ctx, skuID, optimizationHorizonDays)
	if err != nil {
		return nil, err
	}

	res := s.advisor.Evaluate(advisor.Input{
		CurrentStock:     req.CurrentStock,
		PerishDate:       perishDate,
		SafetyBufferDays: buffer,
		Today:            s.now(),
	}, points)

	return &domain.OptimizationResult{
		SKUID:           skuID,
		RunoutDate:      res.RunoutDate,
		WasteRisk:       res.WasteRisk,
		SuggestedAction: res.Action.Label(),
		Details: domain.OptimizationDetails{
			CurrentStock:                req.CurrentStock,
			PredictedHorizonConsumption: res.TotalConsumption,
			AvgDailyConsumption:         res.AvgDaily,
			DaysUntilRunout:             res.DaysUntilRunout,
			StockCoverageDays:           res.CoverageDays,
			PerishDate:                  req.PerishDate,
			SafetyBufferDays:            buffer,
		},
	}, nil
}

// ListSKUs returns the bounded listing of pairs with recorded history.
func (s *ForecastService) ListSKUs(ctx context.Context, limit int) ([]domain.SKUInfo, error) {
	if limit <= 0 {
		limit = defaultSKUListLimit
	}
	return s.repo.ListSKUs(ctx, limit)
}

// Health reports readiness of the predictor and the data source. Either one
// missing degrades the status; it never hard-fails.
func (s *ForecastService) Health(ctx context.Context) domain.HealthStatus {
	modelLoaded := s.registry != nil || s.fallbackEnabled
	dbConnected := s.repo != nil && s.repo.Ping(ctx) == nil

	status := "degraded"
	if modelLoaded && dbConnected {
		status = "healthy"
	}

	return domain.HealthStatus{
		Status:            status,
		Timestamp:         s.now().UTC().Format(time.RFC3339),
		ModelLoaded:       modelLoaded,
		DatabaseConnected: dbConnected,
		ModelVariant:      s.variant(),
	}
}

// rollout loads the trailing history window for a SKU, derives features, and
// rolls the configured engine out over the horizon.
func (s *ForecastService) rollout(ctx context.Context, skuID string, horizon int) ([]domain.UsageRecord, []domain.ForecastPoint, error) {
	restaurantID, ingredientID, err := domain.ParseSKU(skuID)
	if err != nil {
		return nil, nil, err
	}

	now := s.now()
	start := now.AddDate(0, 0, -s.historyWindow)

	records, err := s.repo.GetSKUHistory(ctx, restaurantID, ingredientID, start, now)
	if err != nil {
		return nil, nil, fmt.Errorf("load history for %s: %w", skuID, err)
	}
	if len(records) == 0 {
		return nil, nil, &domain.NoDataError{SKU: skuID}
	}

	rows := s.builder.Build(records)
	if len(rows) == 0 {
		return nil, nil, &domain.FeatureError{Reason: "no feature rows derived from history"}
	}

	engine, err := s.engine(records)
	if err != nil {
		return nil, nil, err
	}

	points, err := engine.Rollout(skuID, rows[len(rows)-1], now, horizon)
	if err != nil {
		return nil, nil, err
	}

	return records, points, nil
}

func (s *ForecastService) engine(records []domain.UsageRecord) (*forecast.Engine, error) {
	if s.registry == nil {
		return forecast.NewSingleEngine(forecast.NewTrailingAverage(records)), nil
	}

	switch s.registry.Variant() {
	case model.VariantSingle:
		return forecast.NewSingleEngine(s.registry.Single()), nil
	case model.VariantEnsemble:
		tabular, sequence, meta := s.registry.Experts()
		return forecast.NewEnsembleEngine(tabular, sequence, meta), nil
	default:
		return nil, fmt.Errorf("unknown model variant %q", s.registry.Variant())
	}
}

// mergeSeries interleaves the last week of actuals with the forecast points
// into one date-sorted chart series.
func mergeSeries(records []domain.UsageRecord, points []domain.ForecastPoint) []domain.SeriesPoint {
	tail := records
	if len(tail) > actualsTailDays {
		tail = tail[len(tail)-actualsTailDays:]
	}

	series := make([]domain.SeriesPoint, 0, len(tail)+len(points))
	for i := range tail {
		actual := tail[i].QtyUsedValue()
		series = append(series, domain.SeriesPoint{
			Date:   tail[i].Date.Format(dateLayout),
			Actual: &actual,
		})
	}
	for i := range points {
		p := points[i]
		series = append(series, domain.SeriesPoint{
			Date:           p.Date,
			Predicted:      &p.Predicted,
			ConfidenceLow:  &p.ConfidenceLow,
			ConfidenceHigh: &p.ConfidenceHigh,
		})
	}

	sort.SliceStable(series, func(i, j int) bool { return series[i].Date < series[j].Date })

	return series
}

func summarize(records []domain.UsageRecord, points []domain.ForecastPoint, horizon int, variant string) domain.ForecastSummary {
	var total float64
	peakDay := 0
	peakValue := 0.0
	for i, p := range points {
		total += p.Predicted
		if i == 0 || p.Predicted > peakValue {
			peakValue = p.Predicted
			peakDay = i + 1
		}
	}

	var avg float64
	if len(points) > 0 {
		avg = total / float64(len(points))
	}

	// The historical baseline needs a full trailing week; shorter histories
	// report zero rather than a misleading partial mean.
	var histAvg float64
	if len(records) >= actualsTailDays {
		var sum float64
		for _, rec := range records[len(records)-actualsTailDays:] {
			sum += rec.QtyUsedValue()
		}
		histAvg = sum / float64(actualsTailDays)
	}

	return domain.ForecastSummary{
		TotalPredictedConsumption: total,
		AvgDailyConsumption:       avg,
		PeakConsumptionDay:        peakDay,
		ForecastHorizonDays:       horizon,
		HistoricalAvg:             histAvg,
		ModelVariant:              variant,
	}
}
