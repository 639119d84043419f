package prediction

import (
	"math"

	"github.com/yourusername/propcast/internal/models"
)

// Baseline is the output of the recency-weighted estimator
type Baseline struct {
	Value      float64
	SampleSize int
	LowSample  bool
	DecayRate  float64
}

// Weights returns the unnormalised recency weights e^(-k*i) for i in [0, n)
func Weights(n int, k float64) []float64 {
	if n <= 0 {
		return nil
	}
	w := make([]float64, n)
	for i := range w {
		w[i] = math.Exp(-k * float64(i))
	}
	return w
}

// WeightedAverage computes sum(v_i*w_i)/sum(w_i) over values ordered newest first
func WeightedAverage(values []float64, k float64) (float64, error) {
	if len(values) == 0 {
		return 0, models.ErrInsufficientData
	}
	// constant input returns the constant exactly, free of rounding drift
	if allEqual(values) {
		return values[0], nil
	}
	weights := Weights(len(values), k)
	num := 0.0
	den := 0.0
	for i, v := range values {
		num += v * weights[i]
		den += weights[i]
	}
	return num / den, nil
}

// EstimateBaseline computes the baseline over the most recent WindowSize values
func EstimateBaseline(values []float64, decayRate float64, cfg Config) (Baseline, error) {
	window := recent(values, cfg.WindowSize)
	value, err := WeightedAverage(window, decayRate)
	if err != nil {
		return Baseline{}, err
	}
	return Baseline{
		Value:      value,
		SampleSize: len(window),
		LowSample:  len(window) < cfg.MinGames,
		DecayRate:  decayRate,
	}, nil
}

func recent(values []float64, n int) []float64 {
	if n > 0 && len(values) > n {
		return values[:n]
	}
	return values
}

func mean(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	sum := 0.0
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values))
}

// sampleStddev uses the n-1 denominator; fewer than two values yield 0
func sampleStddev(values []float64) float64 {
	if len(values) < 2 {
		return 0
	}
	m := mean(values)
	variance := 0.0
	for _, v := range values {
		diff := v - m
		variance += diff * diff
	}
	variance /= float64(len(values) - 1)
	return math.Sqrt(variance)
}

func allEqual(values []float64) bool {
	for _, v := range values[1:] {
		if v != values[0] {
			return false
		}
	}
	return true
}
