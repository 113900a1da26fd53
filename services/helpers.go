package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/wefitlabs/courtside/brackets"
	"github.com/wefitlabs/courtside/models"
	"github.com/wefitlabs/courtside/repositories"
)

// advanceWinner places a completed match's winner into the downstream
// placeholder slot. No downstream match means the feeder was the final;
// an already-filled slot means the advancement was delivered before and
// is left alone.
func advanceWinner(ctx context.Context, matchRepo repositories.MatchRepository, feeder *models.Match, winnerID uuid.UUID, logger *slog.Logger) error {
	nextRound, nextMatch, teamSlot := brackets.NextSlot(feeder.RoundNumber, feeder.MatchNumber)

	target, err := matchRepo.GetByRoundPosition(ctx, feeder.EventID, nextRound, nextMatch)
	if err != nil {
		if errors.Is(err, repositories.ErrMatchNotFound) {
			logger.Info("no downstream match, bracket winner decided",
				slog.String("winner_id", winnerID.String()))
			return nil
		}
		return fmt.Errorf("failed to locate downstream match for round %d match %d: %w", feeder.RoundNumber, feeder.MatchNumber, err)
	}

	if err := matchRepo.UpdateTeamSlot(ctx, target.ID, teamSlot, winnerID); err != nil {
		if errors.Is(err, repositories.ErrMatchSlotOccupied) {
			logger.Info("downstream slot already filled",
				slog.String("target_match_id", target.ID.String()),
				slog.Int("team_slot", teamSlot))
			return nil
		}
		return fmt.Errorf("failed to fill slot %d of match %s: %w", teamSlot, target.ID, err)
	}

	logger.Info("winner advanced",
		slog.String("winner_id", winnerID.String()),
		slog.Int("next_round", nextRound),
		slog.Int("next_match", nextMatch),
		slog.Int("team_slot", teamSlot))
	return nil
}
