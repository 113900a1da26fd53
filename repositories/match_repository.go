package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/wefitlabs/courtside/models"
)

var (
	ErrMatchNotFound      = errors.New("match not found")
	ErrMatchEventInvalid  = errors.New("match references an unknown event")
	ErrMatchTeamInvalid   = errors.New("match references an unknown participant")
	ErrMatchSlotOccupied  = errors.New("match team slot is already filled")
)

type MatchRepository interface {
	GetByID(ctx context.Context, id uuid.UUID) (*models.Match, error)
	GetByRoundPosition(ctx context.Context, eventID uuid.UUID, roundNumber, matchNumber int) (*models.Match, error)
	ListByEvent(ctx context.Context, eventID uuid.UUID) ([]*models.Match, error)
	HasCompletedByEvent(ctx context.Context, eventID uuid.UUID) (bool, error)
	CreateBatch(ctx context.Context, exec SQLExecutor, matches []*models.Match) error
	DeleteAllByEvent(ctx context.Context, exec SQLExecutor, eventID uuid.UUID) error
	UpdateScoreStatusWinner(ctx context.Context, id uuid.UUID, team1Score, team2Score int, status models.MatchStatus, winnerID *uuid.UUID) error
	UpdateTeamSlot(ctx context.Context, id uuid.UUID, teamSlot int, teamID uuid.UUID) error
	ClaimRatingProcessing(ctx context.Context, exec SQLExecutor, id uuid.UUID) (bool, error)
}

type postgresMatchRepository struct {
	db *sql.DB
}

func NewPostgresMatchRepository(db *sql.DB) MatchRepository {
	return &postgresMatchRepository{db: db}
}

const matchColumns = `id, event_id, round_number, match_number, court_number, team1_id, team2_id,
	team1_score, team2_score, status, winner_id, rating_processed_at, created_at, updated_at`

func (r *postgresMatchRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Match, error) {
	query := `SELECT ` + matchColumns + ` FROM matches WHERE id = $1`
	return scanMatchRow(r.db.QueryRowContext(ctx, query, id))
}

func (r *postgresMatchRepository) GetByRoundPosition(ctx context.Context, eventID uuid.UUID, roundNumber, matchNumber int) (*models.Match, error) {
	query := `SELECT ` + matchColumns + ` FROM matches
		WHERE event_id = $1 AND round_number = $2 AND match_number = $3`
	return scanMatchRow(r.db.QueryRowContext(ctx, query, eventID, roundNumber, matchNumber))
}

func (r *postgresMatchRepository) ListByEvent(ctx context.Context, eventID uuid.UUID) ([]*models.Match, error) {
	query := `SELECT ` + matchColumns + ` FROM matches
		WHERE event_id = $1
		ORDER BY round_number ASC, match_number ASC`

	rows, err := r.db.QueryContext(ctx, query, eventID)
	if err != nil {
		return nil, fmt.Errorf("failed to query matches for event %s: %w", eventID, err)
	}
	defer rows.Close()

	matches := make([]*models.Match, 0)
	for rows.Next() {
		match, err := scanMatch(rows)
		if err != nil {
			return nil, err
		}
		matches = append(matches, match)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error during match rows iteration: %w", err)
	}
	return matches, nil
}

func (r *postgresMatchRepository) HasCompletedByEvent(ctx context.Context, eventID uuid.UUID) (bool, error) {
	query := `SELECT EXISTS (SELECT 1 FROM matches WHERE event_id = $1 AND status = $2)`

	var exists bool
	if err := r.db.QueryRowContext(ctx, query, eventID, models.MatchStatusCompleted).Scan(&exists); err != nil {
		return false, fmt.Errorf("failed to check completed matches for event %s: %w", eventID, err)
	}
	return exists, nil
}

func (r *postgresMatchRepository) CreateBatch(ctx context.Context, exec SQLExecutor, matches []*models.Match) error {
	query := `
		INSERT INTO matches
			(event_id, round_number, match_number, court_number, team1_id, team2_id,
			 team1_score, team2_score, status, winner_id)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING id, created_at, updated_at`

	for _, match := range matches {
		err := exec.QueryRowContext(ctx, query,
			match.EventID,
			match.RoundNumber,
			match.MatchNumber,
			match.CourtNumber,
			nullableUUID(match.Team1ID),
			nullableUUID(match.Team2ID),
			match.Team1Score,
			match.Team2Score,
			match.Status,
			nullableUUID(match.WinnerID),
		).Scan(&match.ID, &match.CreatedAt, &match.UpdatedAt)
		if err != nil {
			return handleMatchError(err)
		}
	}
	return nil
}

func (r *postgresMatchRepository) DeleteAllByEvent(ctx context.Context, exec SQLExecutor, eventID uuid.UUID) error {
	query := `DELETE FROM matches WHERE event_id = $1`
	if _, err := exec.ExecContext(ctx, query, eventID); err != nil {
		return fmt.Errorf("failed to delete matches for event %s: %w", eventID, err)
	}
	return nil
}

func (r *postgresMatchRepository) UpdateScoreStatusWinner(ctx context.Context, id uuid.UUID, team1Score, team2Score int, status models.MatchStatus, winnerID *uuid.UUID) error {
	query := `
		UPDATE matches
		SET team1_score = $1, team2_score = $2, status = $3, winner_id = $4, updated_at = now()
		WHERE id = $5`

	result, err := r.db.ExecContext(ctx, query, team1Score, team2Score, status, nullableUUID(winnerID), id)
	if err != nil {
		return handleMatchError(err)
	}
	return checkAffectedRows(result, ErrMatchNotFound)
}

// UpdateTeamSlot fills one of a placeholder match's team slots with an
// advancing participant. Filling an occupied slot is rejected so a
// re-delivered advancement cannot displace a seeded team.
func (r *postgresMatchRepository) UpdateTeamSlot(ctx context.Context, id uuid.UUID, teamSlot int, teamID uuid.UUID) error {
	var query string
	switch teamSlot {
	case 1:
		query = `UPDATE matches SET team1_id = $1, updated_at = now() WHERE id = $2 AND team1_id IS NULL`
	case 2:
		query = `UPDATE matches SET team2_id = $1, updated_at = now() WHERE id = $2 AND team2_id IS NULL`
	default:
		return fmt.Errorf("invalid team slot %d", teamSlot)
	}

	result, err := r.db.ExecContext(ctx, query, teamID, id)
	if err != nil {
		return handleMatchError(err)
	}
	return checkAffectedRows(result, ErrMatchSlotOccupied)
}

// ClaimRatingProcessing atomically stamps rating_processed_at and reports
// whether this caller won the claim. A false return means another
// invocation already processed (or is processing) the match.
func (r *postgresMatchRepository) ClaimRatingProcessing(ctx context.Context, exec SQLExecutor, id uuid.UUID) (bool, error) {
	query := `UPDATE matches SET rating_processed_at = now() WHERE id = $1 AND rating_processed_at IS NULL`

	result, err := exec.ExecContext(ctx, query, id)
	if err != nil {
		return false, fmt.Errorf("failed to claim rating processing for match %s: %w", id, err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to check affected rows: %w", err)
	}
	return rowsAffected == 1, nil
}

func scanMatchRow(row *sql.Row) (*models.Match, error) {
	match := &models.Match{}
	var team1ID, team2ID, winnerID uuid.NullUUID

	err := row.Scan(
		&match.ID,
		&match.EventID,
		&match.RoundNumber,
		&match.MatchNumber,
		&match.CourtNumber,
		&team1ID,
		&team2ID,
		&match.Team1Score,
		&match.Team2Score,
		&match.Status,
		&winnerID,
		&match.RatingProcessedAt,
		&match.CreatedAt,
		&match.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrMatchNotFound
		}
		return nil, fmt.Errorf("failed to scan match: %w", err)
	}

	match.Team1ID = uuidPtr(team1ID)
	match.Team2ID = uuidPtr(team2ID)
	match.WinnerID = uuidPtr(winnerID)
	return match, nil
}

func scanMatch(rows *sql.Rows) (*models.Match, error) {
	match := &models.Match{}
	var team1ID, team2ID, winnerID uuid.NullUUID

	err := rows.Scan(
		&match.ID,
		&match.EventID,
		&match.RoundNumber,
		&match.MatchNumber,
		&match.CourtNumber,
		&team1ID,
		&team2ID,
		&match.Team1Score,
		&match.Team2Score,
		&match.Status,
		&winnerID,
		&match.RatingProcessedAt,
		&match.CreatedAt,
		&match.UpdatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to scan match row: %w", err)
	}

	match.Team1ID = uuidPtr(team1ID)
	match.Team2ID = uuidPtr(team2ID)
	match.WinnerID = uuidPtr(winnerID)
	return match, nil
}

func handleMatchError(err error) error {
	if err == nil {
		return nil
	}
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		switch pqErr.Constraint {
		case "matches_event_id_fkey":
			return ErrMatchEventInvalid
		case "matches_team1_id_fkey", "matches_team2_id_fkey", "matches_winner_id_fkey":
			return ErrMatchTeamInvalid
		}
	}
	return err
}
