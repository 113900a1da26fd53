package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"math/rand"
	"strings"

	"github.com/google/uuid"
	"github.com/wefitlabs/courtside/brackets"
	"github.com/wefitlabs/courtside/models"
	"github.com/wefitlabs/courtside/repositories"
	"golang.org/x/sync/errgroup"
)

// ReseedResult summarizes a successful bracket (re)generation.
type ReseedResult struct {
	Participants int `json:"participants"`
	Rounds       int `json:"rounds"`
	Matches      int `json:"matches"`
}

// Bracket is an event's full seeded state for display.
type Bracket struct {
	Event        *models.Event         `json:"event"`
	Participants []*models.Participant `json:"participants"`
	Matches      []*models.Match       `json:"matches"`
}

// RegisterParticipantInput is the desk-registration payload for one
// bracket entry. Player links are optional so unlinked walk-ins can
// still be seeded.
type RegisterParticipantInput struct {
	TeamName  string     `json:"team_name"`
	Player1ID *uuid.UUID `json:"player1_id"`
	Player2ID *uuid.UUID `json:"player2_id"`
}

type BracketService interface {
	// Reseed deletes an event's matches and regenerates a randomized
	// single-elimination bracket. It refuses to run once any match in
	// the event has been completed.
	Reseed(ctx context.Context, eventID uuid.UUID) (*ReseedResult, error)
	GetBracket(ctx context.Context, eventID uuid.UUID) (*Bracket, error)
	RegisterParticipant(ctx context.Context, eventID uuid.UUID, input RegisterParticipantInput) (*models.Participant, error)
	SetCheckIn(ctx context.Context, eventID, participantID uuid.UUID, checkedIn bool) (*models.Participant, error)
}

type bracketService struct {
	db              *sql.DB
	eventRepo       repositories.EventRepository
	participantRepo repositories.ParticipantRepository
	matchRepo       repositories.MatchRepository
	hub             *brackets.Hub
	logger          *slog.Logger
}

func NewBracketService(
	db *sql.DB,
	eventRepo repositories.EventRepository,
	participantRepo repositories.ParticipantRepository,
	matchRepo repositories.MatchRepository,
	hub *brackets.Hub,
	logger *slog.Logger,
) BracketService {
	return &bracketService{
		db:              db,
		eventRepo:       eventRepo,
		participantRepo: participantRepo,
		matchRepo:       matchRepo,
		hub:             hub,
		logger:          logger,
	}
}

func (s *bracketService) Reseed(ctx context.Context, eventID uuid.UUID) (*ReseedResult, error) {
	logger := s.logger.With(slog.String("event_id", eventID.String()))

	hasCompleted, err := s.matchRepo.HasCompletedByEvent(ctx, eventID)
	if err != nil {
		return nil, fmt.Errorf("failed to check completed matches for event %s: %w", eventID, err)
	}
	if hasCompleted {
		return nil, ErrBracketLocked
	}

	participants, err := s.participantRepo.ListByEvent(ctx, eventID)
	if err != nil {
		return nil, fmt.Errorf("failed to list participants for event %s: %w", eventID, err)
	}
	if len(participants) < 2 {
		return nil, ErrInsufficientParticipants
	}

	shuffled := make([]uuid.UUID, len(participants))
	for i, p := range participants {
		shuffled[i] = p.ID
	}
	rand.Shuffle(len(shuffled), func(i, j int) {
		shuffled[i], shuffled[j] = shuffled[j], shuffled[i]
	})

	seeding, err := brackets.GenerateSingleElimination(shuffled)
	if err != nil {
		if errors.Is(err, brackets.ErrNotEnoughParticipants) {
			return nil, ErrInsufficientParticipants
		}
		return nil, fmt.Errorf("failed to generate bracket for event %s: %w", eventID, err)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	var txErr error
	defer func() {
		if p := recover(); p != nil {
			_ = tx.Rollback()
			panic(p)
		} else if txErr != nil {
			if rbErr := tx.Rollback(); rbErr != nil {
				logger.Error("rollback failed", slog.Any("error", rbErr))
			}
		}
	}()

	if txErr = s.matchRepo.DeleteAllByEvent(ctx, tx, eventID); txErr != nil {
		return nil, txErr
	}

	round1 := slotsToMatches(eventID, seeding.Round1, true)
	if txErr = s.matchRepo.CreateBatch(ctx, tx, round1); txErr != nil {
		return nil, txErr
	}

	placeholders := slotsToMatches(eventID, seeding.Placeholders, false)
	if len(placeholders) > 0 {
		if txErr = s.matchRepo.CreateBatch(ctx, tx, placeholders); txErr != nil {
			return nil, txErr
		}
	}

	if err := tx.Commit(); err != nil {
		txErr = fmt.Errorf("failed to commit bracket for event %s: %w", eventID, err)
		return nil, txErr
	}

	// Round-1 byes are born completed, so their winners advance into
	// round 2 immediately.
	for _, match := range round1 {
		if match.IsBye() {
			if err := advanceWinner(ctx, s.matchRepo, match, *match.WinnerID, logger); err != nil {
				logger.Error("failed to advance bye winner", slog.Any("error", err))
			}
		}
	}

	result := &ReseedResult{
		Participants: len(participants),
		Rounds:       seeding.Rounds,
		Matches:      seeding.MatchCount(),
	}

	s.hub.BroadcastToRoom(eventID.String(), brackets.Message{
		Type:    brackets.MessageTypeBracketReseeded,
		Payload: result,
		EventID: eventID.String(),
	})

	logger.Info("bracket reseeded",
		slog.Int("participants", result.Participants),
		slog.Int("rounds", result.Rounds),
		slog.Int("matches", result.Matches))
	return result, nil
}

func (s *bracketService) GetBracket(ctx context.Context, eventID uuid.UUID) (*Bracket, error) {
	bracket := &Bracket{}

	g, gCtx := errgroup.WithContext(ctx)

	g.Go(func() error {
		event, err := s.eventRepo.GetByID(gCtx, eventID)
		if err != nil {
			if errors.Is(err, repositories.ErrEventNotFound) {
				return ErrEventNotFound
			}
			return fmt.Errorf("failed to load event %s: %w", eventID, err)
		}
		bracket.Event = event
		return nil
	})

	g.Go(func() error {
		participants, err := s.participantRepo.ListByEvent(gCtx, eventID)
		if err != nil {
			return fmt.Errorf("failed to list participants for event %s: %w", eventID, err)
		}
		bracket.Participants = participants
		return nil
	})

	g.Go(func() error {
		matches, err := s.matchRepo.ListByEvent(gCtx, eventID)
		if err != nil {
			return fmt.Errorf("failed to list matches for event %s: %w", eventID, err)
		}
		bracket.Matches = matches
		return nil
	})

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return bracket, nil
}

func (s *bracketService) RegisterParticipant(ctx context.Context, eventID uuid.UUID, input RegisterParticipantInput) (*models.Participant, error) {
	teamName := strings.TrimSpace(input.TeamName)
	if teamName == "" {
		return nil, fmt.Errorf("%w: team name is required", ErrValidationFailed)
	}
	if input.Player1ID != nil && input.Player2ID != nil && *input.Player1ID == *input.Player2ID {
		return nil, fmt.Errorf("%w: a doubles team needs two distinct players", ErrValidationFailed)
	}

	if _, err := s.eventRepo.GetByID(ctx, eventID); err != nil {
		if errors.Is(err, repositories.ErrEventNotFound) {
			return nil, ErrEventNotFound
		}
		return nil, fmt.Errorf("failed to load event %s: %w", eventID, err)
	}

	// Once a result is in, the bracket can no longer absorb new entries.
	hasCompleted, err := s.matchRepo.HasCompletedByEvent(ctx, eventID)
	if err != nil {
		return nil, fmt.Errorf("failed to check completed matches for event %s: %w", eventID, err)
	}
	if hasCompleted {
		return nil, ErrBracketLocked
	}

	participant := &models.Participant{
		EventID:   eventID,
		TeamName:  teamName,
		Player1ID: input.Player1ID,
		Player2ID: input.Player2ID,
	}
	if err := s.participantRepo.Create(ctx, participant); err != nil {
		if errors.Is(err, repositories.ErrParticipantEventInvalid) {
			return nil, ErrEventNotFound
		}
		return nil, fmt.Errorf("failed to register participant: %w", err)
	}

	s.logger.Info("participant registered",
		slog.String("event_id", eventID.String()),
		slog.String("participant_id", participant.ID.String()),
		slog.String("team_name", participant.TeamName))
	return participant, nil
}

func (s *bracketService) SetCheckIn(ctx context.Context, eventID, participantID uuid.UUID, checkedIn bool) (*models.Participant, error) {
	participant, err := s.participantRepo.GetByID(ctx, participantID)
	if err != nil {
		if errors.Is(err, repositories.ErrParticipantNotFound) {
			return nil, ErrParticipantNotFound
		}
		return nil, fmt.Errorf("failed to load participant %s: %w", participantID, err)
	}
	if participant.EventID != eventID {
		return nil, ErrParticipantNotFound
	}

	if err := s.participantRepo.SetCheckedIn(ctx, participantID, checkedIn); err != nil {
		if errors.Is(err, repositories.ErrParticipantNotFound) {
			return nil, ErrParticipantNotFound
		}
		return nil, fmt.Errorf("failed to update check-in for participant %s: %w", participantID, err)
	}

	participant.CheckedIn = checkedIn
	return participant, nil
}

func slotsToMatches(eventID uuid.UUID, slots []brackets.Slot, assignCourts bool) []*models.Match {
	matches := make([]*models.Match, len(slots))
	for i, slot := range slots {
		match := &models.Match{
			EventID:     eventID,
			RoundNumber: slot.RoundNumber,
			MatchNumber: slot.MatchNumber,
			Team1ID:     slot.Team1ID,
			Team2ID:     slot.Team2ID,
			WinnerID:    slot.WinnerID,
			Status:      slot.Status,
		}
		if assignCourts {
			court := slot.MatchNumber
			match.CourtNumber = &court
		}
		matches[i] = match
	}
	return matches
}
