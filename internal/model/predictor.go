// backend-go/internal/model/predictor.go
package model

// Predictor is the capability every loaded model component exposes: accept
// a feature vector, return a non-negative scalar consumption estimate. The
// caller owns clamping and decay; a Predictor only scores.
type Predictor interface {
	Predict(features []float64) (float64, error)
}
