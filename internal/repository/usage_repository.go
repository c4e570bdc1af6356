// backend-go/internal/repository/usage_repository.go
package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/hacks11/inventory-health/backend-go/internal/domain"
)

type UsageRepository interface {
	GetSKUHistory(ctx context.Context, restaurantID, ingredientID int, start, end time.Time) ([]domain.UsageRecord, error)
	ListSKUs(ctx context.Context, limit int) ([]domain.SKUInfo, error)
	Ping(ctx context.Context) error
}

type usageRepository struct {
	db *sqlx.DB
}

func NewUsageRepository(db *sqlx.DB) UsageRepository {
	return &usageRepository{db: db}
}

// GetSKUHistory returns the daily log rows for one (restaurant, ingredient)
// pair in [start, end], joined with ingredient cost/shelf-life reference
// data, the pair's lead time, and the holiday calendar. Rows come back
// sorted ascending by date, which downstream feature derivation relies on.
func (r *usageRepository) GetSKUHistory(ctx context.Context, restaurantID, ingredientID int, start, end time.Time) ([]domain.UsageRecord, error) {
	query := `
		SELECT
			l.id,
			l.restaurant_id,
			l.ingredient_id,
			l.log_date AS date,
			l.covers,
			l.seasonality_factor,
			l.inventory_start,
			l.qty_used,
			l.stockout_qty,
			l.inventory_end,
			l.on_order_qty,
			l.avg_daily_usage_7d,
			l.avg_daily_usage_28d,
			l.avg_daily_usage_56d,
			i.unit_cost,
			i.shelf_life_days,
			i.ingredient_name,
			rst.restaurant_name,
			ri.lead_time_days,
			CASE WHEN h.holiday_date IS NULL THEN 0 ELSE 1 END AS is_holiday
		FROM daily_inventory_log l
		JOIN ingredients i ON i.ingredient_id = l.ingredient_id
		JOIN restaurants rst ON rst.restaurant_id = l.restaurant_id
		LEFT JOIN restaurant_ingredients ri
			ON ri.restaurant_id = l.restaurant_id
			AND ri.ingredient_id = l.ingredient_id
		LEFT JOIN holidays h ON h.holiday_date = l.log_date
		WHERE l.restaurant_id = $1
			AND l.ingredient_id = $2
			AND l.log_date BETWEEN $3 AND $4
		ORDER BY l.log_date ASC
	`

	var records []domain.UsageRecord
	if err := r.db.SelectContext(ctx, &records, query, restaurantID, ingredientID, start, end); err != nil {
		return nil, fmt.Errorf("error getting SKU history: %w", err)
	}

	return records, nil
}

// ListSKUs returns up to limit (restaurant, ingredient) pairs that have log
// rows, most recently active first. A non-positive limit falls back to 10.
func (r *usageRepository) ListSKUs(ctx context.Context, limit int) ([]domain.SKUInfo, error) {
	if limit <= 0 {
		limit = 10
	}

	query := `
		SELECT
			l.restaurant_id,
			l.ingredient_id,
			i.ingredient_name,
			rst.restaurant_name,
			MAX(l.log_date) AS last_date
		FROM daily_inventory_log l
		JOIN ingredients i ON i.ingredient_id = l.ingredient_id
		JOIN restaurants rst ON rst.restaurant_id = l.restaurant_id
		GROUP BY l.restaurant_id, l.ingredient_id, i.ingredient_name, rst.restaurant_name
		ORDER BY MAX(l.log_date) DESC, l.restaurant_id, l.ingredient_id
		LIMIT $1
	`

	var infos []domain.SKUInfo
	if err := r.db.SelectContext(ctx, &infos, query, limit); err != nil {
		return nil, fmt.Errorf("error listing SKUs: %w", err)
	}

	for i := range infos {
		infos[i].SKUID = domain.FormatSKU(infos[i].RestaurantID, infos[i].IngredientID)
	}

	return infos, nil
}

func (r *usageRepository) Ping(ctx context.Context) error {
	return r.db.PingContext(ctx)
}
