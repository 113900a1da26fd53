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
	ErrParticipantNotFound     = errors.New("participant not found")
	ErrParticipantEventInvalid = errors.New("participant references an unknown event")
)

type ParticipantRepository interface {
	Create(ctx context.Context, participant *models.Participant) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Participant, error)
	ListByEvent(ctx context.Context, eventID uuid.UUID) ([]*models.Participant, error)
	SetCheckedIn(ctx context.Context, id uuid.UUID, checkedIn bool) error
}

type postgresParticipantRepository struct {
	db *sql.DB
}

func NewPostgresParticipantRepository(db *sql.DB) ParticipantRepository {
	return &postgresParticipantRepository{db: db}
}

const participantColumns = `id, event_id, team_name, player1_id, player2_id, checked_in, created_at`

func (r *postgresParticipantRepository) Create(ctx context.Context, participant *models.Participant) error {
	query := `
		INSERT INTO participants (event_id, team_name, player1_id, player2_id, checked_in)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, created_at`

	err := r.db.QueryRowContext(ctx, query,
		participant.EventID,
		participant.TeamName,
		nullableUUID(participant.Player1ID),
		nullableUUID(participant.Player2ID),
		participant.CheckedIn,
	).Scan(&participant.ID, &participant.CreatedAt)

	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Constraint == "participants_event_id_fkey" {
			return ErrParticipantEventInvalid
		}
		return fmt.Errorf("failed to create participant: %w", err)
	}
	return nil
}

func (r *postgresParticipantRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Participant, error) {
	query := `SELECT ` + participantColumns + ` FROM participants WHERE id = $1`

	participant := &models.Participant{}
	var player1ID, player2ID uuid.NullUUID
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&participant.ID,
		&participant.EventID,
		&participant.TeamName,
		&player1ID,
		&player2ID,
		&participant.CheckedIn,
		&participant.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrParticipantNotFound
		}
		return nil, fmt.Errorf("failed to scan participant %s: %w", id, err)
	}

	participant.Player1ID = uuidPtr(player1ID)
	participant.Player2ID = uuidPtr(player2ID)
	return participant, nil
}

func (r *postgresParticipantRepository) ListByEvent(ctx context.Context, eventID uuid.UUID) ([]*models.Participant, error) {
	// Registration order drives bracket seeding, so the sort matters.
	query := `SELECT ` + participantColumns + ` FROM participants
		WHERE event_id = $1
		ORDER BY created_at ASC`

	rows, err := r.db.QueryContext(ctx, query, eventID)
	if err != nil {
		return nil, fmt.Errorf("failed to query participants for event %s: %w", eventID, err)
	}
	defer rows.Close()

	participants := make([]*models.Participant, 0)
	for rows.Next() {
		participant := &models.Participant{}
		var player1ID, player2ID uuid.NullUUID
		if err := rows.Scan(
			&participant.ID,
			&participant.EventID,
			&participant.TeamName,
			&player1ID,
			&player2ID,
			&participant.CheckedIn,
			&participant.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan participant row: %w", err)
		}
		participant.Player1ID = uuidPtr(player1ID)
		participant.Player2ID = uuidPtr(player2ID)
		participants = append(participants, participant)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error during participant rows iteration: %w", err)
	}
	return participants, nil
}

func (r *postgresParticipantRepository) SetCheckedIn(ctx context.Context, id uuid.UUID, checkedIn bool) error {
	query := `UPDATE participants SET checked_in = $1 WHERE id = $2`
	result, err := r.db.ExecContext(ctx, query, checkedIn, id)
	if err != nil {
		return fmt.Errorf("failed to update check-in for participant %s: %w", id, err)
	}
	return checkAffectedRows(result, ErrParticipantNotFound)
}
