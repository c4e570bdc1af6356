package domain

import (
	"errors"
	"fmt"
)

// ErrModelsUnavailable signals that no predictor or data source is
// configured for the process. Maps to 503 at the serving boundary.
var ErrModelsUnavailable = errors.New("prediction models are not available")

// NoDataError signals that a SKU has no usage history in the requested
// range. Maps to 404; an empty fetch result itself is valid, the error is
// raised by the serving layer.
type NoDataError struct {
	SKU string
}

func (e *NoDataError) Error() string {
	return fmt.Sprintf("no historical data found for SKU: %s", e.SKU)
}

// FeatureError signals that a feature matrix could not be built from the
// available history. Maps to 422.
type FeatureError struct {
	Reason string
}

func (e *FeatureError) Error() string {
	return "could not prepare features: " + e.Reason
}

// ValidationError signals a malformed request value (bad date string,
// out-of-range horizon, malformed SKU). Maps to 400.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

// PredictionError wraps a failure raised by the underlying predictor. It is
// propagated, never retried.
type PredictionError struct {
	SKU string
	Err error
}

func (e *PredictionError) Error() string {
	return fmt.Sprintf("prediction failed for SKU %s: %v", e.SKU, e.Err)
}

func (e *PredictionError) Unwrap() error {
	return e.Err
}
