package rating

import "math"

// SkillBracket is a display band on the rating line.
type SkillBracket struct {
	Label string `json:"label"`
	Color string `json:"color"`
	Min   int    `json:"min"`
	Max   int    `json:"max"`
}

// BracketFor classifies a rating into one of six fixed skill bands.
func BracketFor(rating int) SkillBracket {
	switch {
	case rating < 1000:
		return SkillBracket{Label: "Beginner", Color: "#9CA3AF", Min: 0, Max: 999}
	case rating < 1200:
		return SkillBracket{Label: "Recreational", Color: "#10B981", Min: 1000, Max: 1199}
	case rating < 1400:
		return SkillBracket{Label: "Intermediate", Color: "#3B82F6", Min: 1200, Max: 1399}
	case rating < 1600:
		return SkillBracket{Label: "Advanced", Color: "#8B5CF6", Min: 1400, Max: 1599}
	case rating < 1800:
		return SkillBracket{Label: "Expert", Color: "#F59E0B", Min: 1600, Max: 1799}
	default:
		return SkillBracket{Label: "Elite", Color: "#EF4444", Min: 1800, Max: 9999}
	}
}

// WinProbability returns the expected win percentage for each side,
// rounded independently so the pair sums to roughly 100.
func WinProbability(ratingA, ratingB int) (percentA, percentB int) {
	probA := ExpectedWinProbability(float64(ratingA), float64(ratingB))
	return int(math.Round(probA * 100)), int(math.Round((1 - probA) * 100))
}

// PerformanceRating estimates the level a player performed at in a single
// result. A lone win or loss makes the log argument degenerate, so the
// estimate falls back to opponent rating ±200.
func PerformanceRating(playerRating, opponentRating int, won bool) int {
	actual := 0.0
	if won {
		actual = 1.0
	}

	performance := float64(opponentRating) + 400*math.Log10(actual/(1-actual))
	if math.IsInf(performance, 0) || math.IsNaN(performance) {
		if won {
			return opponentRating + 200
		}
		return opponentRating - 200
	}
	return int(math.Round(performance))
}

// Trend describes the direction of a player's recent rating movement.
type Trend string

const (
	TrendImproving Trend = "improving"
	TrendDeclining Trend = "declining"
	TrendStable    Trend = "stable"
)

// Volatility computes the population standard deviation of a rating
// history and its trend, comparing first-half and second-half means with
// a ±20 threshold. Fewer than 5 samples yields zero volatility and a
// stable trend.
func Volatility(recentRatings []int) (volatility int, trend Trend) {
	if len(recentRatings) < 5 {
		return 0, TrendStable
	}

	n := float64(len(recentRatings))
	sum := 0.0
	for _, r := range recentRatings {
		sum += float64(r)
	}
	mean := sum / n

	variance := 0.0
	for _, r := range recentRatings {
		diff := float64(r) - mean
		variance += diff * diff
	}
	variance /= n

	half := len(recentRatings) / 2
	firstAvg := intMean(recentRatings[:half])
	secondAvg := intMean(recentRatings[half:])

	trend = TrendStable
	if secondAvg > firstAvg+20 {
		trend = TrendImproving
	} else if secondAvg < firstAvg-20 {
		trend = TrendDeclining
	}

	return int(math.Round(math.Sqrt(variance))), trend
}

func intMean(ratings []int) float64 {
	sum := 0.0
	for _, r := range ratings {
		sum += float64(r)
	}
	return sum / float64(len(ratings))
}
