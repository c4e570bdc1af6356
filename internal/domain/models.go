// backend-go/internal/domain/models.go
package domain

import "time"

// UsageRecord is one (restaurant, ingredient, date) observation from the
// daily inventory log, joined with ingredient and restaurant reference data.
// Optional columns are pointer-typed so missing values can be filled with
// documented defaults during feature derivation. Records are read-only once
// loaded.
type UsageRecord struct {
	ID                int64      `json:"id" db:"id"`
	RestaurantID      int        `json:"restaurant_id" db:"restaurant_id"`
	IngredientID      int        `json:"ingredient_id" db:"ingredient_id"`
	Date              time.Time  `json:"date" db:"date"`
	Covers            *float64   `json:"covers,omitempty" db:"covers"`
	SeasonalityFactor *float64   `json:"seasonality_factor,omitempty" db:"seasonality_factor"`
	InventoryStart    *float64   `json:"inventory_start,omitempty" db:"inventory_start"`
	QtyUsed           *float64   `json:"qty_used,omitempty" db:"qty_used"`
	StockoutQty       *float64   `json:"stockout_qty,omitempty" db:"stockout_qty"`
	InventoryEnd      *float64   `json:"inventory_end,omitempty" db:"inventory_end"`
	OnOrderQty        *float64   `json:"on_order_qty,omitempty" db:"on_order_qty"`
	AvgDailyUsage7d   *float64   `json:"avg_daily_usage_7d,omitempty" db:"avg_daily_usage_7d"`
	AvgDailyUsage28d  *float64   `json:"avg_daily_usage_28d,omitempty" db:"avg_daily_usage_28d"`
	AvgDailyUsage56d  *float64   `json:"avg_daily_usage_56d,omitempty" db:"avg_daily_usage_56d"`
	UnitCost          *float64   `json:"unit_cost,omitempty" db:"unit_cost"`
	ShelfLifeDays     *float64   `json:"shelf_life_days,omitempty" db:"shelf_life_days"`
	LeadTimeDays      *float64   `json:"lead_time_days,omitempty" db:"lead_time_days"`
	IsHoliday         *float64   `json:"is_holiday,omitempty" db:"is_holiday"`
	IngredientName    *string    `json:"ingredient_name,omitempty" db:"ingredient_name"`
	RestaurantName    *string    `json:"restaurant_name,omitempty" db:"restaurant_name"`
}

// QtyUsedValue returns the consumed quantity, treating missing as zero.
func (r *UsageRecord) QtyUsedValue() float64 {
	if r.QtyUsed == nil {
		return 0
	}
	return *r.QtyUsed
}

// FeatureNames is the canonical feature order consumed by the predictors.
// Model artifacts declare their expected schema against this list.
var FeatureNames = []string{
	"covers",
	"seasonality_factor",
	"inventory_start",
	"on_order_qty",
	"avg_daily_usage_7d",
	"avg_daily_usage_28d",
	"shelf_life_days",
	"unit_cost",
	"is_holiday",
	"lead_time_days",
	"day_of_week",
	"month",
	"day_of_month",
	"is_weekend",
	"qty_used_lag_1",
	"qty_used_lag_7",
	"qty_used_lag_14",
	"qty_used_roll_3d",
	"qty_used_roll_7d",
}

// FeatureRow is the fixed-schema numeric vector derived from one usage
// record plus its trailing same-SKU history. Every column is populated
// after derivation; defaults substitute for missing source values.
type FeatureRow struct {
	Date time.Time `json:"date"`

	Covers            float64 `json:"covers"`
	SeasonalityFactor float64 `json:"seasonality_factor"`
	InventoryStart    float64 `json:"inventory_start"`
	OnOrderQty        float64 `json:"on_order_qty"`
	AvgDailyUsage7d   float64 `json:"avg_daily_usage_7d"`
	AvgDailyUsage28d  float64 `json:"avg_daily_usage_28d"`
	ShelfLifeDays     float64 `json:"shelf_life_days"`
	UnitCost          float64 `json:"unit_cost"`
	IsHoliday         float64 `json:"is_holiday"`
	LeadTimeDays      float64 `json:"lead_time_days"`
	DayOfWeek         float64 `json:"day_of_week"`
	Month             float64 `json:"month"`
	DayOfMonth        float64 `json:"day_of_month"`
	IsWeekend         float64 `json:"is_weekend"`
	QtyUsedLag1       float64 `json:"qty_used_lag_1"`
	QtyUsedLag7       float64 `json:"qty_used_lag_7"`
	QtyUsedLag14      float64 `json:"qty_used_lag_14"`
	QtyUsedRoll3d     float64 `json:"qty_used_roll_3d"`
	QtyUsedRoll7d     float64 `json:"qty_used_roll_7d"`
}

// Vector returns the row in canonical FeatureNames order.
func (f *FeatureRow) Vector() []float64 {
	return []float64{
		f.Covers,
		f.SeasonalityFactor,
		f.InventoryStart,
		f.OnOrderQty,
		f.AvgDailyUsage7d,
		f.AvgDailyUsage28d,
		f.ShelfLifeDays,
		f.UnitCost,
		f.IsHoliday,
		f.LeadTimeDays,
		f.DayOfWeek,
		f.Month,
		f.DayOfMonth,
		f.IsWeekend,
		f.QtyUsedLag1,
		f.QtyUsedLag7,
		f.QtyUsedLag14,
		f.QtyUsedRoll3d,
		f.QtyUsedRoll7d,
	}
}

// ForecastPoint is one predicted future day. The confidence band is a fixed
// symmetric percentage of the point estimate, not a statistical interval.
type ForecastPoint struct {
	Date           string  `json:"date"`
	Predicted      float64 `json:"predicted"`
	ConfidenceLow  float64 `json:"confidence_low"`
	ConfidenceHigh float64 `json:"confidence_high"`
}

// SeriesPoint is one row of the merged chart series: historical dates carry
// an actual and no prediction, future dates the reverse.
type SeriesPoint struct {
	Date           string   `json:"date"`
	Actual         *float64 `json:"actual,omitempty"`
	Predicted      *float64 `json:"predicted,omitempty"`
	ConfidenceLow  *float64 `json:"confidence_low,omitempty"`
	ConfidenceHigh *float64 `json:"confidence_high,omitempty"`
}

// PredictionRequest is the serving-boundary request for a consumption
// forecast. LookaheadDays defaults to 7 when omitted and must be in [1,90].
type PredictionRequest struct {
	SKUID         string  `json:"sku_id" binding:"required"`
	LookaheadDays int     `json:"lookahead_days"`
	CurrentStock  float64 `json:"current_stock,omitempty"`
}

// ForecastSummary aggregates the future portion of a prediction response.
type ForecastSummary struct {
	TotalPredictedConsumption float64 `json:"total_predicted_consumption"`
	AvgDailyConsumption       float64 `json:"avg_daily_consumption"`
	PeakConsumptionDay        int     `json:"peak_consumption_day"`
	ForecastHorizonDays       int     `json:"forecast_horizon_days"`
	HistoricalAvg             float64 `json:"historical_avg"`
	ModelVariant              string  `json:"model_variant"`
}

// PredictionResponse is the chart-ready forecast payload.
type PredictionResponse struct {
	SKUID       string          `json:"sku_id"`
	Predictions []SeriesPoint   `json:"predictions"`
	Summary     ForecastSummary `json:"summary"`
}

// OptimizationRequest carries the stock/expiry parameters for reorder and
// waste analysis. SafetyBufferDays defaults to 3 when omitted.
type OptimizationRequest struct {
	CurrentStock     float64 `json:"current_stock" binding:"required"`
	PerishDate       string  `json:"perish_date,omitempty"`
	SafetyBufferDays int     `json:"safety_buffer_days"`
}

// OptimizationDetails is the supporting numeric detail of an advisor run.
type OptimizationDetails struct {
	CurrentStock                float64 `json:"current_stock"`
	PredictedHorizonConsumption float64 `json:"predicted_horizon_consumption"`
	AvgDailyConsumption         float64 `json:"avg_daily_consumption"`
	DaysUntilRunout             *int    `json:"days_until_runout"`
	StockCoverageDays           int     `json:"stock_coverage_days"`
	PerishDate                  string  `json:"perish_date,omitempty"`
	SafetyBufferDays            int     `json:"safety_buffer_days"`
}

// OptimizationResult is the advisor verdict for one SKU. RunoutDate is
// absent when cumulative forecast consumption never reaches current stock
// within the horizon.
type OptimizationResult struct {
	SKUID           string              `json:"sku_id"`
	RunoutDate      *string             `json:"runout_date"`
	WasteRisk       bool                `json:"waste_risk"`
	SuggestedAction string              `json:"suggested_action"`
	Details         OptimizationDetails `json:"details"`
}

// SKUInfo is one entry of the bounded SKU listing.
type SKUInfo struct {
	SKUID          string    `json:"sku_id" db:"-"`
	RestaurantID   int       `json:"restaurant_id" db:"restaurant_id"`
	IngredientID   int       `json:"ingredient_id" db:"ingredient_id"`
	IngredientName *string   `json:"ingredient_name,omitempty" db:"ingredient_name"`
	RestaurantName *string   `json:"restaurant_name,omitempty" db:"restaurant_name"`
	LastDate       time.Time `json:"last_date" db:"last_date"`
}

// HealthStatus reports the readiness of the process-wide handles. Status is
// "healthy" iff both the predictor and the data source are initialized,
// otherwise "degraded"; there is no hard-fail state.
type HealthStatus struct {
	Status            string `json:"status"`
	Timestamp         string `json:"timestamp"`
	ModelLoaded       bool   `json:"model_loaded"`
	DatabaseConnected bool   `json:"database_connected"`
	ModelVariant      string `json:"model_variant"`
}
