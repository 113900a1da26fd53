package models

import (
	"time"

	"github.com/google/uuid"
)

// PlayerStats is the running per-player aggregate, updated incrementally
// after every processed match and never recomputed from match history.
type PlayerStats struct {
	PlayerID             uuid.UUID  `json:"player_id"`
	MatchesPlayed        int        `json:"matches_played"`
	MatchesWon           int        `json:"matches_won"`
	MatchesLost          int        `json:"matches_lost"`
	PointsScored         int        `json:"points_scored"`
	PointsAgainst        int        `json:"points_against"`
	CurrentWinStreak     int        `json:"current_win_streak"`
	BestWinStreak        int        `json:"best_win_streak"`
	CurrentLossStreak    int        `json:"current_loss_streak"`
	AvgPointDifferential float64    `json:"avg_point_differential"`
	LastPlayedAt         *time.Time `json:"last_played_at,omitempty"`
}
