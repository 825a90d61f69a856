package utils

import (
	"math"
	"time"
)

// Round rounds x to the given number of decimal places
func Round(x float64, places int) float64 {
	p := math.Pow(10, float64(places))
	return math.Round(x*p) / p
}

// Clamp limits x to [lo, hi]
func Clamp(x, lo, hi float64) float64 {
	return math.Min(hi, math.Max(lo, x))
}

// Jitter maps a uniform sample u in [0,1) to [-scale/2, +scale/2)
func Jitter(u, scale float64) float64 {
	return (u - 0.5) * scale
}

// ClockString formats a wall-clock time for display
func ClockString(t time.Time) string {
	return t.Format(ClockLayout)
}
