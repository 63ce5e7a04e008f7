package optimizer

import (
	"math"

	"github.com/dharmasatrya/skyfare/internal/models"
)

// Scoring weights: cost dominates, then duration, then routing simplicity.
const (
	costWeight     = 50.0
	durationWeight = 30.0
	layoverPenalty = 7.5
	directBonus    = 10.0
)

// scoreItinerary maps an itinerary onto [0,100]. Lower cost or duration
// never decreases the score, all else equal.
func scoreItinerary(totalCost float64, totalMinutes, layovers int, maxCost, maxDuration float64) float64 {
	costNorm := 0.0
	if maxCost > 0 {
		costNorm = totalCost / maxCost
	}
	durNorm := 0.0
	if maxDuration > 0 {
		durNorm = float64(totalMinutes) / maxDuration
	}

	score := 100 - costWeight*costNorm - durationWeight*durNorm
	score -= math.Min(layoverPenalty*float64(layovers), 15)
	if layovers == 0 {
		score += directBonus
	}

	if score < 0 {
		score = 0
	}
	if score > 100 {
		score = 100
	}
	return math.Round(score*100) / 100
}

func maxima(flights []models.FlightResult) (maxCost, maxDuration float64) {
	for _, f := range flights {
		if f.Pricing.Total > maxCost {
			maxCost = f.Pricing.Total
		}
		if d := float64(f.DurationMinutes); d > maxDuration {
			maxDuration = d
		}
	}
	return maxCost, maxDuration
}

// ScoreResults computes a score for every result against the maxima of the
// whole set and returns a scored copy. The orchestrator runs this before
// persisting aggregated results.
func ScoreResults(flights []models.FlightResult) []models.FlightResult {
	if len(flights) == 0 {
		return flights
	}

	maxCost, maxDuration := maxima(flights)
	out := make([]models.FlightResult, len(flights))
	for i, f := range flights {
		out[i] = f
		out[i].Score = scoreItinerary(f.Pricing.Total, f.DurationMinutes, f.Layovers, maxCost, maxDuration)
	}
	return out
}
