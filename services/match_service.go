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

// ScoreUpdateInput is the scorer console's payload for one match.
type ScoreUpdateInput struct {
	Team1Score int                `json:"team1_score"`
	Team2Score int                `json:"team2_score"`
	Status     models.MatchStatus `json:"status"`
}

type MatchService interface {
	GetMatch(ctx context.Context, matchID uuid.UUID) (*models.Match, error)
	ListByEvent(ctx context.Context, eventID uuid.UUID) ([]*models.Match, error)

	// SubmitScore persists a score/status update. On the transition to
	// completed it validates the winner, advances them into the next
	// round, broadcasts the update, and hands the match to the rating
	// pipeline asynchronously; the caller never waits on rating
	// processing and never observes its failure.
	SubmitScore(ctx context.Context, matchID uuid.UUID, input ScoreUpdateInput) (*models.Match, error)
}

// ResultDispatcher decouples score submission from rating processing.
type ResultDispatcher interface {
	Enqueue(matchID uuid.UUID)
}

type matchService struct {
	matchRepo  repositories.MatchRepository
	dispatcher ResultDispatcher
	hub        *brackets.Hub
	logger     *slog.Logger
}

func NewMatchService(
	matchRepo repositories.MatchRepository,
	dispatcher ResultDispatcher,
	hub *brackets.Hub,
	logger *slog.Logger,
) MatchService {
	return &matchService{
		matchRepo:  matchRepo,
		dispatcher: dispatcher,
		hub:        hub,
		logger:     logger,
	}
}

func (s *matchService) GetMatch(ctx context.Context, matchID uuid.UUID) (*models.Match, error) {
	match, err := s.matchRepo.GetByID(ctx, matchID)
	if err != nil {
		if errors.Is(err, repositories.ErrMatchNotFound) {
			return nil, ErrMatchNotFound
		}
		return nil, fmt.Errorf("failed to load match %s: %w", matchID, err)
	}
	return match, nil
}

func (s *matchService) ListByEvent(ctx context.Context, eventID uuid.UUID) ([]*models.Match, error) {
	matches, err := s.matchRepo.ListByEvent(ctx, eventID)
	if err != nil {
		return nil, fmt.Errorf("failed to list matches for event %s: %w", eventID, err)
	}
	return matches, nil
}

func (s *matchService) SubmitScore(ctx context.Context, matchID uuid.UUID, input ScoreUpdateInput) (*models.Match, error) {
	if input.Team1Score < 0 || input.Team2Score < 0 {
		return nil, ErrInvalidScore
	}
	switch input.Status {
	case models.MatchStatusPending, models.MatchStatusInProgress, models.MatchStatusCompleted:
	default:
		return nil, ErrInvalidStatusTransition
	}

	match, err := s.matchRepo.GetByID(ctx, matchID)
	if err != nil {
		if errors.Is(err, repositories.ErrMatchNotFound) {
			return nil, ErrMatchNotFound
		}
		return nil, fmt.Errorf("failed to load match %s: %w", matchID, err)
	}

	if match.Status == models.MatchStatusCompleted {
		return nil, ErrMatchAlreadyCompleted
	}

	var winnerID *uuid.UUID
	completing := input.Status == models.MatchStatusCompleted
	if completing {
		if match.Team1ID == nil || match.Team2ID == nil {
			return nil, ErrMatchNotSeeded
		}
		if input.Team1Score == input.Team2Score {
			return nil, ErrMatchTied
		}
		if input.Team1Score > input.Team2Score {
			winnerID = match.Team1ID
		} else {
			winnerID = match.Team2ID
		}
	}

	if err := s.matchRepo.UpdateScoreStatusWinner(ctx, matchID, input.Team1Score, input.Team2Score, input.Status, winnerID); err != nil {
		if errors.Is(err, repositories.ErrMatchNotFound) {
			return nil, ErrMatchNotFound
		}
		return nil, fmt.Errorf("failed to update match %s: %w", matchID, err)
	}

	match.Team1Score = input.Team1Score
	match.Team2Score = input.Team2Score
	match.Status = input.Status
	match.WinnerID = winnerID

	if completing {
		if err := advanceWinner(ctx, s.matchRepo, match, *winnerID, s.logger); err != nil {
			// Advancement failure must not undo the recorded score; the
			// organizer can fill the slot manually on the next reseed.
			s.logger.Error("failed to advance winner",
				slog.String("match_id", matchID.String()),
				slog.Any("error", err))
		}
		s.dispatcher.Enqueue(matchID)
	}

	s.hub.BroadcastToRoom(match.EventID.String(), brackets.Message{
		Type:    brackets.MessageTypeMatchUpdated,
		Payload: match,
		EventID: match.EventID.String(),
	})

	return match, nil
}
