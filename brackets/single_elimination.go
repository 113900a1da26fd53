package brackets

import (
	"errors"
	"math"

	"github.com/google/uuid"
	"github.com/wefitlabs/courtside/models"
)

var ErrNotEnoughParticipants = errors.New("not enough participants to generate a single elimination bracket (minimum 2)")

// Slot is one generated bracket position, ready to be persisted as a
// match row. Team ids are nil on placeholder slots for later rounds.
type Slot struct {
	RoundNumber int
	MatchNumber int
	Team1ID     *uuid.UUID
	Team2ID     *uuid.UUID
	WinnerID    *uuid.UUID
	Status      models.MatchStatus
}

// Seeding is a full single-elimination structure: the populated first
// round plus empty placeholder slots for every subsequent round.
type Seeding struct {
	Rounds       int
	Round1       []Slot
	Placeholders []Slot
}

// MatchCount returns the total number of slots in the seeding.
func (s *Seeding) MatchCount() int {
	return len(s.Round1) + len(s.Placeholders)
}

// GenerateSingleElimination pairs the participants in the given order into
// round-1 slots and builds placeholder slots for each later round. An odd
// participant count leaves the final entry without an opponent; that slot
// is created already completed with the entry as winner (a bye).
//
// Ordering is the caller's concern: pass a pre-shuffled list for random
// seeding.
func GenerateSingleElimination(participantIDs []uuid.UUID) (*Seeding, error) {
	n := len(participantIDs)
	if n < 2 {
		return nil, ErrNotEnoughParticipants
	}

	rounds := int(math.Ceil(math.Log2(float64(n))))

	round1 := make([]Slot, 0, (n+1)/2)
	matchNumber := 1
	for i := 0; i < n; i += 2 {
		team1 := participantIDs[i]
		slot := Slot{
			RoundNumber: 1,
			MatchNumber: matchNumber,
			Team1ID:     &team1,
			Status:      models.MatchStatusPending,
		}
		if i+1 < n {
			team2 := participantIDs[i+1]
			slot.Team2ID = &team2
		} else {
			// Bye: auto-win for the unpaired participant.
			slot.WinnerID = &team1
			slot.Status = models.MatchStatusCompleted
		}
		round1 = append(round1, slot)
		matchNumber++
	}

	placeholders := make([]Slot, 0)
	previousRoundMatches := len(round1)
	for round := 2; round <= rounds; round++ {
		thisRoundMatches := (previousRoundMatches + 1) / 2
		for i := 1; i <= thisRoundMatches; i++ {
			placeholders = append(placeholders, Slot{
				RoundNumber: round,
				MatchNumber: i,
				Status:      models.MatchStatusPending,
			})
		}
		previousRoundMatches = thisRoundMatches
	}

	return &Seeding{
		Rounds:       rounds,
		Round1:       round1,
		Placeholders: placeholders,
	}, nil
}

// NextSlot maps a completed match position to the downstream match it
// feeds: winners of matches 1 and 2 meet in match 1 of the next round,
// 3 and 4 in match 2, and so on. The odd feeder fills team slot 1, the
// even feeder slot 2.
func NextSlot(roundNumber, matchNumber int) (nextRound, nextMatch, teamSlot int) {
	nextRound = roundNumber + 1
	nextMatch = (matchNumber + 1) / 2
	teamSlot = 2
	if matchNumber%2 == 1 {
		teamSlot = 1
	}
	return nextRound, nextMatch, teamSlot
}
