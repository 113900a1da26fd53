package rating

import (
	"math"

	"github.com/google/uuid"
)

const (
	// KFactor scales the base sensitivity of every rating change.
	KFactor = 32

	// InitialRating is assigned to every new player profile.
	InitialRating = 1200

	MinRatingChange = 10
	MaxRatingChange = 50

	dominantWinBonus = 1.5
	closeGameBonus   = 1.2

	// upsetThreshold is the pre-match rating gap beyond which a win by the
	// lower-rated side counts as an upset.
	upsetThreshold = 200
	upsetBonus     = 1.5
)

// Team identifies one of the two sides of a match.
type Team int

const (
	Team1 Team = 1
	Team2 Team = 2
)

// Player is the rating projection of a player profile.
type Player struct {
	ID     uuid.UUID
	Rating int
}

// Side holds one or two players. Player2 is nil for singles; both members
// of a doubles side always move by the same signed amount.
type Side struct {
	Player1 Player
	Player2 *Player
}

// Members returns the side's players in slot order.
func (s Side) Members() []Player {
	if s.Player2 != nil {
		return []Player{s.Player1, *s.Player2}
	}
	return []Player{s.Player1}
}

// Rating returns the side's effective rating, the mean of its members.
func (s Side) Rating() float64 {
	if s.Player2 != nil {
		return float64(s.Player1.Rating+s.Player2.Rating) / 2
	}
	return float64(s.Player1.Rating)
}

// Outcome describes one completed, non-tied match. Callers must guarantee
// Winner is set and scores are non-negative; the engine does not validate.
type Outcome struct {
	Team1      Side
	Team2      Side
	Winner     Team
	Team1Score int
	Team2Score int
}

// PlayerUpdate is one player's rating movement from a single match.
type PlayerUpdate struct {
	PlayerID  uuid.UUID `json:"player_id"`
	OldRating int       `json:"old_rating"`
	NewRating int       `json:"new_rating"`
	Change    int       `json:"change"`
}

// Metadata captures the intermediate factors of a rating computation,
// kept for logging only.
type Metadata struct {
	ExpectedWinProbability float64 `json:"expected_win_probability"`
	ScoreDifferentialBonus float64 `json:"score_differential_bonus"`
	UpsetBonus             float64 `json:"upset_bonus"`
	IsUpset                bool    `json:"is_upset"`
}

// Update is the result of one rating computation for every linked player
// in a match. It is transient and never persisted as an entity.
type Update struct {
	Team1    []PlayerUpdate
	Team2    []PlayerUpdate
	Metadata Metadata
}

// CalculateNewRatings computes symmetric rating adjustments for a two-sided
// match. The winning side's players gain the clamped magnitude, the losing
// side's lose it, and new ratings are rounded to the nearest integer.
func CalculateNewRatings(match Outcome) Update {
	team1Rating := match.Team1.Rating()
	team2Rating := match.Team2.Rating()

	expected := ExpectedWinProbability(team1Rating, team2Rating)

	actual := 0.0
	if match.Winner == Team1 {
		actual = 1.0
	}

	scoreBonus := ScoreDifferentialBonus(match.Team1Score, match.Team2Score)

	ratingGap := math.Abs(team1Rating - team2Rating)
	isUpset := ratingGap >= upsetThreshold &&
		((match.Winner == Team1 && team1Rating < team2Rating) ||
			(match.Winner == Team2 && team2Rating < team1Rating))

	upset := 1.0
	if isUpset {
		upset = upsetBonus
	}

	baseChange := KFactor * (actual - expected) * scoreBonus * upset
	change := clampChange(math.Abs(baseChange))

	team1Change := -change
	if match.Winner == Team1 {
		team1Change = change
	}

	return Update{
		Team1: applyChange(match.Team1, team1Change),
		Team2: applyChange(match.Team2, -team1Change),
		Metadata: Metadata{
			ExpectedWinProbability: expected,
			ScoreDifferentialBonus: scoreBonus,
			UpsetBonus:             upset,
			IsUpset:                isUpset,
		},
	}
}

// ExpectedWinProbability returns side A's logistic win expectation against
// side B on the standard 400-point scale.
func ExpectedWinProbability(ratingA, ratingB float64) float64 {
	return 1 / (1 + math.Pow(10, (ratingB-ratingA)/400))
}

// ScoreDifferentialBonus rewards dominant wins and very close games.
// A gap of 8+ points (11-3 or worse) is dominant, 2 or less is close.
func ScoreDifferentialBonus(scoreA, scoreB int) float64 {
	differential := scoreA - scoreB
	if differential < 0 {
		differential = -differential
	}

	switch {
	case differential >= 8:
		return dominantWinBonus
	case differential <= 2:
		return closeGameBonus
	default:
		return 1.0
	}
}

func clampChange(change float64) float64 {
	return math.Max(MinRatingChange, math.Min(MaxRatingChange, change))
}

func applyChange(side Side, change float64) []PlayerUpdate {
	members := side.Members()
	updates := make([]PlayerUpdate, len(members))
	for i, p := range members {
		newRating := int(math.Round(float64(p.Rating) + change))
		updates[i] = PlayerUpdate{
			PlayerID:  p.ID,
			OldRating: p.Rating,
			NewRating: newRating,
			Change:    int(math.Round(change)),
		}
	}
	return updates
}
