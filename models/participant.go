package models

import (
	"time"

	"github.com/google/uuid"
)

// Participant is one bracket entry for an event: a single player or a
// doubles pairing. Either player link may be nil for walk-ins without an
// account; such entries still occupy a bracket slot but are skipped by
// rating processing.
type Participant struct {
	ID        uuid.UUID  `json:"id"`
	EventID   uuid.UUID  `json:"event_id"`
	TeamName  string     `json:"team_name"`
	Player1ID *uuid.UUID `json:"player1_id,omitempty"`
	Player2ID *uuid.UUID `json:"player2_id,omitempty"`
	CheckedIn bool       `json:"checked_in"`
	CreatedAt time.Time  `json:"created_at"`
}

// PlayerIDs returns the linked player profile ids, 0 to 2 of them.
func (p *Participant) PlayerIDs() []uuid.UUID {
	ids := make([]uuid.UUID, 0, 2)
	if p.Player1ID != nil {
		ids = append(ids, *p.Player1ID)
	}
	if p.Player2ID != nil {
		ids = append(ids, *p.Player2ID)
	}
	return ids
}
