package domain

import (
	"fmt"
	"strconv"
	"strings"
)

// SKU identifiers encode a (restaurant, ingredient) pair as "R001-I003",
// matching the ID prefixes used by the training data exports.

// FormatSKU builds the canonical SKU string for a restaurant/ingredient pair.
func FormatSKU(restaurantID, ingredientID int) string {
	return fmt.Sprintf("R%03d-I%03d", restaurantID, ingredientID)
}

// ParseSKU splits a SKU identifier into its restaurant and ingredient IDs.
// Malformed identifiers yield a ValidationError.
func ParseSKU(sku string) (restaurantID, ingredientID int, err error) {
	parts := strings.Split(strings.TrimSpace(sku), "-")
	if len(parts) != 2 || !strings.HasPrefix(parts[0], "R") || !strings.HasPrefix(parts[1], "I") {
		return 0, 0, &ValidationError{Field: "sku_id", Reason: fmt.Sprintf("expected R<id>-I<id>, got %q", sku)}
	}

	restaurantID, err = strconv.Atoi(strings.TrimPrefix(parts[0], "R"))
	if err != nil {
		return 0, 0, &ValidationError{Field: "sku_id", Reason: fmt.Sprintf("invalid restaurant id in %q", sku)}
	}

	ingredientID, err = strconv.Atoi(strings.TrimPrefix(parts[1], "I"))
	if err != nil {
		return 0, 0, &ValidationError{Field: "sku_id", Reason: fmt.Sprintf("invalid ingredient id in %q", sku)}
	}

	return restaurantID, ingredientID, nil
}
