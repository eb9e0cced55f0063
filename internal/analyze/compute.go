package analyze

import "math"

// chartBounds pads the taller bar by ten points and caps the axis at 100%.
func chartBounds(current, required float64) float64 {
	return math.Min(math.Max(current, required)+10, 100)
}

func round4(value float64) float64 {
	return math.Round(value*10000) / 10000
}
