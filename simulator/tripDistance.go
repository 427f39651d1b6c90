package simulator

import (
	"golang.org/x/exp/rand"
)

// Cumulative probabilities of the trip length bands. The band limits are in
// miles from a household travel survey and are rescaled to the extent of the
// network being simulated.
const (
	PROB_SHORT_TRIP  float64 = 0.51 // <= 3.85 miles
	PROB_MEDIUM_TRIP float64 = 0.71 // <= 7.65 miles
	PROB_LONG_TRIP   float64 = 0.81 // <= 11.59 miles
	PROB_VERY_LONG   float64 = 0.92 // <= 19.68 miles
	PROB_EXTREME     float64 = 0.95 // <= 30 miles

	DIST_VERY_SHORT float64 = 1.00
	DIST_SHORT      float64 = 3.85
	DIST_MEDIUM     float64 = 7.65
	DIST_LONG       float64 = 11.59
	DIST_VERY_LONG  float64 = 19.68
	DIST_EXTREME    float64 = 30.00
)

// TripDistanceRange draws a trip length band and scales it so the longest
// band ends at extent.
func TripDistanceRange(rng *rand.Rand, extent float64) (float64, float64) {
	// only the bands up to PROB_EXTREME are used
	dice := rng.Float64() * PROB_EXTREME

	var minDis, maxDis float64
	switch {
	case dice <= PROB_SHORT_TRIP:
		minDis, maxDis = 0, DIST_SHORT
	case dice <= PROB_MEDIUM_TRIP:
		minDis, maxDis = DIST_SHORT, DIST_MEDIUM
	case dice <= PROB_LONG_TRIP:
		minDis, maxDis = DIST_MEDIUM, DIST_LONG
	case dice <= PROB_VERY_LONG:
		minDis, maxDis = DIST_LONG, DIST_VERY_LONG
	default:
		minDis, maxDis = DIST_VERY_LONG, DIST_EXTREME
	}

	scale := extent / DIST_EXTREME
	return minDis * scale, maxDis * scale
}
