package models

import (
	"time"

	"github.com/google/uuid"
)

// TeamChemistry tracks one unordered doubles partnership. Rows are stored
// with the lexicographically smaller profile id in PlayerID so each pair
// has exactly one row.
type TeamChemistry struct {
	PlayerID           uuid.UUID  `json:"player_id"`
	PartnerID          uuid.UUID  `json:"partner_id"`
	MatchesTogether    int        `json:"matches_together"`
	WinsTogether       int        `json:"wins_together"`
	LossesTogether     int        `json:"losses_together"`
	ChemistryScore     int        `json:"chemistry_score"`
	LastPlayedTogether *time.Time `json:"last_played_together,omitempty"`
}

// CanonicalPair orders two profile ids into the stored (player, partner)
// orientation.
func CanonicalPair(a, b uuid.UUID) (uuid.UUID, uuid.UUID) {
	if a.String() < b.String() {
		return a, b
	}
	return b, a
}
