package utils

import "math"

// Normalizer maps raw metric values onto the 0-1 confidence scale
type Normalizer struct{}

// NewNormalizer creates a new normalizer
func NewNormalizer() *Normalizer {
	return &Normalizer{}
}

// Normalize converts a value to 0-1 scale based on min/max thresholds.
// Values at or below min return 0, values at or above max return 1.
func (n *Normalizer) Normalize(value, min, max float64) float64 {
	if max <= min {
		if value > min {
			return 1.0
		}
		return 0.0
	}
	if value <= min {
		return 0.0
	}
	if value >= max {
		return 1.0
	}
	return (value - min) / (max - min)
}

// Saturate maps an occurrence count onto min(max, 1-(1-rate)^count). The
// result is 0 for count <= 0 and never decreases as count grows.
func (n *Normalizer) Saturate(count int, rate, max float64) float64 {
	if count <= 0 {
		return 0.0
	}
	c := 1.0 - math.Pow(1.0-n.Clamp(rate, 0, 1), float64(count))
	return math.Min(n.Clamp(max, 0, 1), c)
}

// Ramp returns base + span*Normalize(value, min, max), clamped to [0,1]
func (n *Normalizer) Ramp(value, min, max, base, span float64) float64 {
	return n.Clamp(base+span*n.Normalize(value, min, max), 0, 1)
}

// Clamp constrains a value to [min, max] range
func (n *Normalizer) Clamp(value, min, max float64) float64 {
	if math.IsNaN(value) {
		return min
	}
	if value < min {
		return min
	}
	if value > max {
		return max
	}
	return value
}
