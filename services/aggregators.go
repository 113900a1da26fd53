package services

import (
	"math"
	"time"

	"github.com/google/uuid"
	"github.com/wefitlabs/courtside/models"
)

// chemistryBaseline is the neutral score assigned to a pairing before any
// shared match has been recorded.
const chemistryBaseline = 50

// nextPlayerStats folds one match outcome into a player's running stats
// snapshot. The average point differential is recomputed from cumulative
// totals, not averaged per match.
func nextPlayerStats(current *models.PlayerStats, playerID uuid.UUID, won bool, pointsScored, pointsAgainst int, now time.Time) *models.PlayerStats {
	if current == nil {
		current = &models.PlayerStats{PlayerID: playerID}
	}

	next := &models.PlayerStats{
		PlayerID:      playerID,
		MatchesPlayed: current.MatchesPlayed + 1,
		MatchesWon:    current.MatchesWon,
		MatchesLost:   current.MatchesLost,
		PointsScored:  current.PointsScored + pointsScored,
		PointsAgainst: current.PointsAgainst + pointsAgainst,
		BestWinStreak: current.BestWinStreak,
		LastPlayedAt:  &now,
	}

	if won {
		next.MatchesWon++
		next.CurrentWinStreak = current.CurrentWinStreak + 1
		next.CurrentLossStreak = 0
		if next.CurrentWinStreak > next.BestWinStreak {
			next.BestWinStreak = next.CurrentWinStreak
		}
	} else {
		next.MatchesLost++
		next.CurrentWinStreak = 0
		next.CurrentLossStreak = current.CurrentLossStreak + 1
	}

	next.AvgPointDifferential = float64(next.PointsScored-next.PointsAgainst) / float64(next.MatchesPlayed)

	return next
}

// nextTeamChemistry folds one shared doubles result into a pairing's
// chemistry record. The ids are canonicalized so either argument order
// addresses the same row. Score formula: 70% win rate plus up to 20
// points of experience bonus (2 per match together), capped at 100.
func nextTeamChemistry(current *models.TeamChemistry, player1ID, player2ID uuid.UUID, won bool, now time.Time) *models.TeamChemistry {
	playerID, partnerID := models.CanonicalPair(player1ID, player2ID)

	if current == nil {
		current = &models.TeamChemistry{
			PlayerID:       playerID,
			PartnerID:      partnerID,
			ChemistryScore: chemistryBaseline,
		}
	}

	next := &models.TeamChemistry{
		PlayerID:           playerID,
		PartnerID:          partnerID,
		MatchesTogether:    current.MatchesTogether + 1,
		WinsTogether:       current.WinsTogether,
		LossesTogether:     current.LossesTogether,
		LastPlayedTogether: &now,
	}
	if won {
		next.WinsTogether++
	} else {
		next.LossesTogether++
	}

	winRate := float64(next.WinsTogether) / float64(next.MatchesTogether) * 100
	matchesBonus := math.Min(float64(next.MatchesTogether*2), 20)
	next.ChemistryScore = int(math.Min(math.Round(winRate*0.7+matchesBonus), 100))

	return next
}
