package models

import (
	"time"

	"github.com/google/uuid"
)

type MatchStatus string

const (
	MatchStatusPending    MatchStatus = "pending"
	MatchStatusInProgress MatchStatus = "in_progress"
	MatchStatusCompleted  MatchStatus = "completed"
)

// Match is one bracket slot. Team1ID/Team2ID stay nil on placeholder
// matches until the feeding round produces winners. WinnerID is non-nil
// iff Status is completed.
type Match struct {
	ID                uuid.UUID   `json:"id"`
	EventID           uuid.UUID   `json:"event_id"`
	RoundNumber       int         `json:"round_number"`
	MatchNumber       int         `json:"match_number"`
	CourtNumber       *int        `json:"court_number,omitempty"`
	Team1ID           *uuid.UUID  `json:"team1_id,omitempty"`
	Team2ID           *uuid.UUID  `json:"team2_id,omitempty"`
	Team1Score        int         `json:"team1_score"`
	Team2Score        int         `json:"team2_score"`
	Status            MatchStatus `json:"status"`
	WinnerID          *uuid.UUID  `json:"winner_id,omitempty"`
	RatingProcessedAt *time.Time  `json:"rating_processed_at,omitempty"`
	CreatedAt         time.Time   `json:"created_at"`
	UpdatedAt         time.Time   `json:"updated_at"`
}

// IsBye reports whether the match was an automatic round-1 win for a
// participant without an opponent.
func (m *Match) IsBye() bool {
	return m.Team1ID != nil && m.Team2ID == nil && m.Status == MatchStatusCompleted
}
