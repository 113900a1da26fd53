package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/wefitlabs/courtside/models"
	"github.com/wefitlabs/courtside/rating"
	"github.com/wefitlabs/courtside/repositories"
)

// MatchResultProcessor applies rating, stats, and chemistry updates for a
// match that has transitioned to completed. Processing is idempotent: the
// match row carries a rating_processed_at stamp that is claimed
// transactionally before any delta is applied, so a duplicate trigger for
// the same match is a no-op.
type MatchResultProcessor interface {
	ProcessMatchResult(ctx context.Context, matchID uuid.UUID) error
}

type matchResultService struct {
	db              *sql.DB
	matchRepo       repositories.MatchRepository
	participantRepo repositories.ParticipantRepository
	playerRepo      repositories.PlayerProfileRepository
	statsRepo       repositories.PlayerStatsRepository
	chemistryRepo   repositories.TeamChemistryRepository
	historyRepo     repositories.RatingHistoryRepository
	logger          *slog.Logger
}

func NewMatchResultService(
	db *sql.DB,
	matchRepo repositories.MatchRepository,
	participantRepo repositories.ParticipantRepository,
	playerRepo repositories.PlayerProfileRepository,
	statsRepo repositories.PlayerStatsRepository,
	chemistryRepo repositories.TeamChemistryRepository,
	historyRepo repositories.RatingHistoryRepository,
	logger *slog.Logger,
) MatchResultProcessor {
	return &matchResultService{
		db:              db,
		matchRepo:       matchRepo,
		participantRepo: participantRepo,
		playerRepo:      playerRepo,
		statsRepo:       statsRepo,
		chemistryRepo:   chemistryRepo,
		historyRepo:     historyRepo,
		logger:          logger,
	}
}

// sidePlayers is one team's resolved rating subjects: the 0-2 player
// profiles linked to the participant entry.
type sidePlayers struct {
	participantID uuid.UUID
	profiles      []*models.PlayerProfile
	won           bool
	pointsScored  int
	pointsAgainst int
}

func (s *sidePlayers) ratingSide() rating.Side {
	side := rating.Side{
		Player1: rating.Player{ID: s.profiles[0].ID, Rating: s.profiles[0].SkillRating},
	}
	if len(s.profiles) == 2 {
		p2 := rating.Player{ID: s.profiles[1].ID, Rating: s.profiles[1].SkillRating}
		side.Player2 = &p2
	}
	return side
}

func (s *matchResultService) ProcessMatchResult(ctx context.Context, matchID uuid.UUID) error {
	logger := s.logger.With(slog.String("match_id", matchID.String()))

	// Re-read the match as a second confirmation of the completion
	// transition; a stale or repeated trigger exits quietly.
	match, err := s.matchRepo.GetByID(ctx, matchID)
	if err != nil {
		if errors.Is(err, repositories.ErrMatchNotFound) {
			logger.Info("match not found, skipping result processing")
			return nil
		}
		return fmt.Errorf("failed to load match %s: %w", matchID, err)
	}

	if match.Status != models.MatchStatusCompleted {
		logger.Info("match not completed, skipping result processing", slog.String("status", string(match.Status)))
		return nil
	}

	if match.Team1ID == nil || match.Team2ID == nil || match.WinnerID == nil {
		// Bye or still-unseeded placeholder; nothing to rate.
		logger.Info("match has no opposing teams, skipping result processing")
		return nil
	}

	team1, err := s.resolveSide(ctx, *match.Team1ID, match, true)
	if err != nil {
		return err
	}
	team2, err := s.resolveSide(ctx, *match.Team2ID, match, false)
	if err != nil {
		return err
	}

	totalLinked := len(team1.profiles) + len(team2.profiles)
	if totalLinked < 2 || len(team1.profiles) == 0 || len(team2.profiles) == 0 {
		logger.Info("not enough linked player profiles, skipping rating update",
			slog.Int("linked_players", totalLinked))
		return nil
	}

	winner := rating.Team2
	if team1.won {
		winner = rating.Team1
	}
	update := rating.CalculateNewRatings(rating.Outcome{
		Team1:      team1.ratingSide(),
		Team2:      team2.ratingSide(),
		Winner:     winner,
		Team1Score: match.Team1Score,
		Team2Score: match.Team2Score,
	})

	logger.Info("calculated rating update",
		slog.Float64("expected_win_probability", update.Metadata.ExpectedWinProbability),
		slog.Float64("score_differential_bonus", update.Metadata.ScoreDifferentialBonus),
		slog.Bool("is_upset", update.Metadata.IsUpset))

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
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

	claimed, err := s.matchRepo.ClaimRatingProcessing(ctx, tx, matchID)
	if err != nil {
		txErr = err
		return txErr
	}
	if !claimed {
		_ = tx.Rollback()
		logger.Info("match already processed, skipping")
		return nil
	}

	if txErr = s.applyUpdates(ctx, tx, matchID, update, team1, team2, logger); txErr != nil {
		return txErr
	}

	if err := tx.Commit(); err != nil {
		txErr = fmt.Errorf("failed to commit rating updates for match %s: %w", matchID, err)
		return txErr
	}

	logger.Info("match result processed",
		slog.Int("players_updated", totalLinked))
	return nil
}

func (s *matchResultService) resolveSide(ctx context.Context, participantID uuid.UUID, match *models.Match, isTeam1 bool) (*sidePlayers, error) {
	participant, err := s.participantRepo.GetByID(ctx, participantID)
	if err != nil {
		if errors.Is(err, repositories.ErrParticipantNotFound) {
			// Treat a vanished participant as an unlinked side.
			return &sidePlayers{participantID: participantID}, nil
		}
		return nil, fmt.Errorf("failed to load participant %s: %w", participantID, err)
	}

	profiles, err := s.playerRepo.ListByIDs(ctx, participant.PlayerIDs())
	if err != nil {
		return nil, fmt.Errorf("failed to load player profiles for participant %s: %w", participantID, err)
	}

	side := &sidePlayers{
		participantID: participantID,
		profiles:      profiles,
		won:           match.WinnerID != nil && *match.WinnerID == participantID,
	}
	if isTeam1 {
		side.pointsScored, side.pointsAgainst = match.Team1Score, match.Team2Score
	} else {
		side.pointsScored, side.pointsAgainst = match.Team2Score, match.Team1Score
	}
	return side, nil
}

// applyUpdates persists ratings, stats, and chemistry sequentially inside
// the claimed transaction. Order mirrors the computation: ratings first,
// then per-player stats, then per-pair chemistry.
func (s *matchResultService) applyUpdates(ctx context.Context, tx *sql.Tx, matchID uuid.UUID, update rating.Update, team1, team2 *sidePlayers, logger *slog.Logger) error {
	now := time.Now().UTC()

	for _, playerUpdate := range append(append([]rating.PlayerUpdate{}, update.Team1...), update.Team2...) {
		if err := s.playerRepo.UpdateRating(ctx, tx, playerUpdate.PlayerID, playerUpdate.NewRating); err != nil {
			return fmt.Errorf("failed to persist rating for player %s: %w", playerUpdate.PlayerID, err)
		}
		if err := s.historyRepo.Insert(ctx, tx, playerUpdate.PlayerID, matchID, playerUpdate.NewRating); err != nil {
			return err
		}
		logger.Info("player rating updated",
			slog.String("player_id", playerUpdate.PlayerID.String()),
			slog.Int("old_rating", playerUpdate.OldRating),
			slog.Int("new_rating", playerUpdate.NewRating))
	}

	for _, side := range []*sidePlayers{team1, team2} {
		for _, profile := range side.profiles {
			current, err := s.statsRepo.Get(ctx, profile.ID)
			if err != nil && !errors.Is(err, repositories.ErrPlayerStatsNotFound) {
				return fmt.Errorf("failed to load stats for player %s: %w", profile.ID, err)
			}
			next := nextPlayerStats(current, profile.ID, side.won, side.pointsScored, side.pointsAgainst, now)
			if err := s.statsRepo.Upsert(ctx, tx, next); err != nil {
				return err
			}
		}

		if len(side.profiles) == 2 {
			playerID, partnerID := models.CanonicalPair(side.profiles[0].ID, side.profiles[1].ID)
			current, err := s.chemistryRepo.Get(ctx, playerID, partnerID)
			if err != nil && !errors.Is(err, repositories.ErrTeamChemistryNotFound) {
				return fmt.Errorf("failed to load chemistry for pair (%s, %s): %w", playerID, partnerID, err)
			}
			next := nextTeamChemistry(current, playerID, partnerID, side.won, now)
			if err := s.chemistryRepo.Upsert(ctx, tx, next); err != nil {
				return err
			}
		}
	}

	return nil
}
