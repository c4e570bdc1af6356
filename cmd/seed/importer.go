package main

import (
	"context"
	"database/sql"
	"encoding/csv"
	"fmt"
	"io"
	"log"
	"os"
	"sort"
	"strconv"
	"strings"
)

// Multi-row insert chunk for the daily log. 15 columns per row keeps a full
// chunk well under the Postgres 65535 bind-parameter limit.
const insertBatchSize = 500

const logProgressEvery = 5000

// Importer loads one combined inventory training export: dimension rows are
// deduplicated in memory first, then the daily log is bulk-inserted. Each
// file imports in a single transaction.
type Importer struct {
	db *sql.DB
}

func NewImporter(db *sql.DB) *Importer {
	return &Importer{db: db}
}

type ingredientDim struct {
	name          string
	unit          string
	unitCost      sql.NullFloat64
	shelfLifeDays sql.NullInt64
}

type pairDim struct {
	leadTimeDays sql.NullInt64
	firstDate    string
}

type holidayDim struct {
	date   string
	name   string
	region string
}

type dailyRow struct {
	restaurantID      int
	ingredientID      int
	logDate           string
	covers            sql.NullInt64
	seasonalityFactor sql.NullFloat64
	inventoryStart    sql.NullFloat64
	qtyUsed           sql.NullFloat64
	stockoutQty       sql.NullFloat64
	inventoryEnd      sql.NullFloat64
	onOrderQty        sql.NullFloat64
	avgDailyUsage7d   sql.NullFloat64
	avgDailyUsage28d  sql.NullFloat64
	avgDailyUsage56d  sql.NullFloat64
	unitsSold         sql.NullInt64
	revenue           sql.NullFloat64
}

// ImportFile parses one CSV export and loads it into the database.
func (im *Importer) ImportFile(ctx context.Context, path string) error {
	file, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("failed to open file %s: %w", path, err)
	}
	defer file.Close()

	reader := csv.NewReader(file)
	header, err := reader.Read()
	if err != nil {
		return fmt.Errorf("failed to read CSV header: %w", err)
	}

	col := make(map[string]int, len(header))
	for i, name := range header {
		col[strings.TrimSpace(name)] = i
	}
	for _, required := range []string{"restaurant_id", "ingredient_id", "date"} {
		if _, ok := col[required]; !ok {
			return fmt.Errorf("missing required column %q in %s", required, path)
		}
	}

	restaurants := make(map[int]string)
	ingredients := make(map[int]ingredientDim)
	holidays := make(map[string]holidayDim)
	pairs := make(map[[2]int]pairDim)
	var rows []dailyRow

	field := func(record []string, name string) string {
		idx, ok := col[name]
		if !ok || idx >= len(record) {
			return ""
		}
		return strings.TrimSpace(record[idx])
	}

	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return fmt.Errorf("failed to read CSV record: %w", err)
		}

		rid, err := parseID(field(record, "restaurant_id"), "R")
		if err != nil {
			return err
		}
		iid, err := parseID(field(record, "ingredient_id"), "I")
		if err != nil {
			return err
		}
		logDate := field(record, "date")

		if _, ok := restaurants[rid]; !ok {
			restaurants[rid] = field(record, "restaurant_name")
		}

		if _, ok := ingredients[iid]; !ok {
			ingredients[iid] = ingredientDim{
				name:          field(record, "ingredient_name"),
				unit:          field(record, "unit"),
				unitCost:      nullDecimal(field(record, "unit_cost")),
				shelfLifeDays: nullInt(field(record, "shelf_life_days")),
			}
		}

		if field(record, "is_holiday") == "1" {
			if name := field(record, "holiday_name"); name != "" {
				key := logDate + "|" + name
				if _, ok := holidays[key]; !ok {
					holidays[key] = holidayDim{date: logDate, name: name, region: "US"}
				}
			}
		}

		pairKey := [2]int{rid, iid}
		if existing, ok := pairs[pairKey]; !ok {
			pairs[pairKey] = pairDim{
				leadTimeDays: nullInt(field(record, "lead_time_days")),
				firstDate:    logDate,
			}
		} else if logDate < existing.firstDate {
			existing.firstDate = logDate
			pairs[pairKey] = existing
		}

		rows = append(rows, dailyRow{
			restaurantID:      rid,
			ingredientID:      iid,
			logDate:           logDate,
			covers:            nullInt(field(record, "covers")),
			seasonalityFactor: nullDecimal(field(record, "seasonality_factor")),
			inventoryStart:    nullDecimal(field(record, "inventory_start")),
			qtyUsed:           nullDecimal(field(record, "qty_used")),
			stockoutQty:       nullDecimal(field(record, "stockout_qty")),
			inventoryEnd:      nullDecimal(field(record, "inventory_end")),
			onOrderQty:        nullDecimal(field(record, "on_order_qty")),
			avgDailyUsage7d:   nullDecimal(field(record, "avg_daily_usage_7d")),
			avgDailyUsage28d:  nullDecimal(field(record, "avg_daily_usage_28d")),
			avgDailyUsage56d:  nullDecimal(field(record, "avg_daily_usage_56d")),
			unitsSold:         nullInt(field(record, "units_sold_items_using_ing")),
			revenue:           nullDecimal(field(record, "revenue_items_using_ing")),
		})
	}

	log.Printf("  parsed %d rows: %d restaurants, %d ingredients, %d holidays, %d pairs",
		len(rows), len(restaurants), len(ingredients), len(holidays), len(pairs))

	tx, err := im.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if err := im.insertDimensions(ctx, tx, restaurants, ingredients, holidays, pairs); err != nil {
		return err
	}
	if err := im.insertDailyLog(ctx, tx, rows); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	return nil
}

func (im *Importer) insertDimensions(ctx context.Context, tx *sql.Tx, restaurants map[int]string, ingredients map[int]ingredientDim, holidays map[string]holidayDim, pairs map[[2]int]pairDim) error {
	restaurantIDs := make([]int, 0, len(restaurants))
	for rid := range restaurants {
		restaurantIDs = append(restaurantIDs, rid)
	}
	sort.Ints(restaurantIDs)
	for _, rid := range restaurantIDs {
		_, err := tx.ExecContext(ctx,
			`INSERT INTO restaurants (restaurant_id, restaurant_name) VALUES ($1, $2) ON CONFLICT DO NOTHING`,
			rid, restaurants[rid])
		if err != nil {
			return fmt.Errorf("failed to insert restaurant %d: %w", rid, err)
		}
	}

	ingredientIDs := make([]int, 0, len(ingredients))
	for iid := range ingredients {
		ingredientIDs = append(ingredientIDs, iid)
	}
	sort.Ints(ingredientIDs)
	for _, iid := range ingredientIDs {
		ing := ingredients[iid]
		_, err := tx.ExecContext(ctx,
			`INSERT INTO ingredients (ingredient_id, ingredient_name, unit, unit_cost, shelf_life_days)
			 VALUES ($1, $2, $3, $4, $5) ON CONFLICT DO NOTHING`,
			iid, ing.name, ing.unit, ing.unitCost, ing.shelfLifeDays)
		if err != nil {
			return fmt.Errorf("failed to insert ingredient %d: %w", iid, err)
		}
	}

	for _, h := range holidays {
		_, err := tx.ExecContext(ctx,
			`INSERT INTO holidays (holiday_date, holiday_name, region) VALUES ($1, $2, $3) ON CONFLICT DO NOTHING`,
			h.date, h.name, h.region)
		if err != nil {
			return fmt.Errorf("failed to insert holiday %s: %w", h.date, err)
		}
	}

	for key, pair := range pairs {
		_, err := tx.ExecContext(ctx,
			`INSERT INTO restaurant_ingredients (restaurant_id, ingredient_id, lead_time_days, first_stocked_date)
			 VALUES ($1, $2, $3, $4) ON CONFLICT DO NOTHING`,
			key[0], key[1], pair.leadTimeDays, pair.firstDate)
		if err != nil {
			return fmt.Errorf("failed to insert restaurant_ingredient (%d, %d): %w", key[0], key[1], err)
		}
	}

	return nil
}

func (im *Importer) insertDailyLog(ctx context.Context, tx *sql.Tx, rows []dailyRow) error {
	const columns = 15

	for start := 0; start < len(rows); start += insertBatchSize {
		end := start + insertBatchSize
		if end > len(rows) {
			end = len(rows)
		}
		batch := rows[start:end]

		var sb strings.Builder
		sb.WriteString(`INSERT INTO daily_inventory_log (
			restaurant_id, ingredient_id, log_date,
			covers, seasonality_factor,
			inventory_start, qty_used, stockout_qty, inventory_end, on_order_qty,
			avg_daily_usage_7d, avg_daily_usage_28d, avg_daily_usage_56d,
			units_sold_items_using, revenue_items_using
		) VALUES `)

		args := make([]interface{}, 0, len(batch)*columns)
		for i, row := range batch {
			if i > 0 {
				sb.WriteString(", ")
			}
			base := i * columns
			sb.WriteString("(")
			for j := 1; j <= columns; j++ {
				if j > 1 {
					sb.WriteString(", ")
				}
				sb.WriteString("$" + strconv.Itoa(base+j))
			}
			sb.WriteString(")")

			args = append(args,
				row.restaurantID, row.ingredientID, row.logDate,
				row.covers, row.seasonalityFactor,
				row.inventoryStart, row.qtyUsed, row.stockoutQty, row.inventoryEnd, row.onOrderQty,
				row.avgDailyUsage7d, row.avgDailyUsage28d, row.avgDailyUsage56d,
				row.unitsSold, row.revenue,
			)
		}
		sb.WriteString(" ON CONFLICT (restaurant_id, ingredient_id, log_date) DO NOTHING")

		if _, err := tx.ExecContext(ctx, sb.String(), args...); err != nil {
			return fmt.Errorf("failed to insert daily log batch at row %d: %w", start, err)
		}

		if end%logProgressEvery == 0 || end == len(rows) {
			log.Printf("  %d/%d daily log rows", end, len(rows))
		}
	}

	return nil
}

// parseID strips the letter prefix from training-data identifiers: "R001"
// yields 1, "I03" yields 3.
func parseID(raw, prefix string) (int, error) {
	id, err := strconv.Atoi(strings.TrimPrefix(raw, prefix))
	if err != nil {
		return 0, fmt.Errorf("invalid %s-prefixed id %q", prefix, raw)
	}
	return id, nil
}

func nullDecimal(s string) sql.NullFloat64 {
	if s == "" {
		return sql.NullFloat64{}
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return sql.NullFloat64{}
	}
	return sql.NullFloat64{Float64: v, Valid: true}
}

func nullInt(s string) sql.NullInt64 {
	if s == "" {
		return sql.NullInt64{}
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: int64(v), Valid: true}
}
