package fit

import "math"

func abs32(v float32) float32 { return float32(math.Abs(float64(v))) }

func sqrt32(v float32) float32 { return float32(math.Sqrt(float64(v))) }

func log32(v float32) float32 { return float32(math.Log(float64(v))) }

func asin32(v float32) float32 { return float32(math.Asin(float64(v))) }

func finite(v float32) bool {
	f := float64(v)
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}
