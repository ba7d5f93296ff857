package catalog

import "math"

// AvailabilityPercent derives pourcentage_disponible from the stock
// counters. Zero stock means nothing to sell, never a division by zero.
func AvailabilityPercent(stock, stockReduc int) int {
	if stock <= 0 {
		return 0
	}
	return int(math.Round(float64(stock-stockReduc) / float64(stock) * 100))
}

// AverageStars recomputes the cached average, rounded to one decimal.
func AverageStars(reviews []Review) float64 {
	if len(reviews) == 0 {
		return 0
	}
	var sum float64
	for _, r := range reviews {
		sum += r.Rating
	}
	return math.Round(sum/float64(len(reviews))*10) / 10
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
