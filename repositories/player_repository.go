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
	ErrPlayerProfileNotFound = errors.New("player profile not found")
	ErrPlayerUserConflict    = errors.New("user already has a player profile")
)

type PlayerProfileRepository interface {
	Create(ctx context.Context, profile *models.PlayerProfile) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.PlayerProfile, error)
	GetByUserID(ctx context.Context, userID uuid.UUID) (*models.PlayerProfile, error)
	ListByIDs(ctx context.Context, ids []uuid.UUID) ([]*models.PlayerProfile, error)
	UpdateRating(ctx context.Context, exec SQLExecutor, id uuid.UUID, rating int) error
	UpdateAvatar(ctx context.Context, id uuid.UUID, avatarKey, avatarURL string) error
}

type postgresPlayerProfileRepository struct {
	db *sql.DB
}

func NewPostgresPlayerProfileRepository(db *sql.DB) PlayerProfileRepository {
	return &postgresPlayerProfileRepository{db: db}
}

const playerProfileColumns = `id, user_id, display_name, avatar_key, avatar_url, bio, location, skill_rating, created_at, updated_at`

func (r *postgresPlayerProfileRepository) Create(ctx context.Context, profile *models.PlayerProfile) error {
	query := `
		INSERT INTO player_profiles (user_id, display_name, bio, location, skill_rating)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, created_at, updated_at`

	err := r.db.QueryRowContext(ctx, query,
		profile.UserID,
		profile.DisplayName,
		profile.Bio,
		profile.Location,
		profile.SkillRating,
	).Scan(&profile.ID, &profile.CreatedAt, &profile.UpdatedAt)

	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Constraint == "player_profiles_user_id_key" {
			return ErrPlayerUserConflict
		}
		return fmt.Errorf("failed to create player profile: %w", err)
	}
	return nil
}

func (r *postgresPlayerProfileRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.PlayerProfile, error) {
	query := `SELECT ` + playerProfileColumns + ` FROM player_profiles WHERE id = $1`
	return r.scanOne(r.db.QueryRowContext(ctx, query, id))
}

func (r *postgresPlayerProfileRepository) GetByUserID(ctx context.Context, userID uuid.UUID) (*models.PlayerProfile, error) {
	query := `SELECT ` + playerProfileColumns + ` FROM player_profiles WHERE user_id = $1`
	return r.scanOne(r.db.QueryRowContext(ctx, query, userID))
}

func (r *postgresPlayerProfileRepository) ListByIDs(ctx context.Context, ids []uuid.UUID) ([]*models.PlayerProfile, error) {
	if len(ids) == 0 {
		return []*models.PlayerProfile{}, nil
	}

	idStrings := make([]string, len(ids))
	for i, id := range ids {
		idStrings[i] = id.String()
	}

	query := `SELECT ` + playerProfileColumns + ` FROM player_profiles WHERE id = ANY($1)`
	rows, err := r.db.QueryContext(ctx, query, pq.Array(idStrings))
	if err != nil {
		return nil, fmt.Errorf("failed to query player profiles: %w", err)
	}
	defer rows.Close()

	profiles := make([]*models.PlayerProfile, 0, len(ids))
	for rows.Next() {
		profile := &models.PlayerProfile{}
		if err := rows.Scan(
			&profile.ID,
			&profile.UserID,
			&profile.DisplayName,
			&profile.AvatarKey,
			&profile.AvatarURL,
			&profile.Bio,
			&profile.Location,
			&profile.SkillRating,
			&profile.CreatedAt,
			&profile.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan player profile row: %w", err)
		}
		profiles = append(profiles, profile)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error during player profile rows iteration: %w", err)
	}
	return profiles, nil
}

func (r *postgresPlayerProfileRepository) UpdateRating(ctx context.Context, exec SQLExecutor, id uuid.UUID, skillRating int) error {
	query := `UPDATE player_profiles SET skill_rating = $1, updated_at = now() WHERE id = $2`
	result, err := exec.ExecContext(ctx, query, skillRating, id)
	if err != nil {
		return fmt.Errorf("failed to update rating for player %s: %w", id, err)
	}
	return checkAffectedRows(result, ErrPlayerProfileNotFound)
}

func (r *postgresPlayerProfileRepository) UpdateAvatar(ctx context.Context, id uuid.UUID, avatarKey, avatarURL string) error {
	query := `UPDATE player_profiles SET avatar_key = $1, avatar_url = $2, updated_at = now() WHERE id = $3`
	result, err := r.db.ExecContext(ctx, query, avatarKey, avatarURL, id)
	if err != nil {
		return fmt.Errorf("failed to update avatar for player %s: %w", id, err)
	}
	return checkAffectedRows(result, ErrPlayerProfileNotFound)
}

func (r *postgresPlayerProfileRepository) scanOne(row *sql.Row) (*models.PlayerProfile, error) {
	profile := &models.PlayerProfile{}
	err := row.Scan(
		&profile.ID,
		&profile.UserID,
		&profile.DisplayName,
		&profile.AvatarKey,
		&profile.AvatarURL,
		&profile.Bio,
		&profile.Location,
		&profile.SkillRating,
		&profile.CreatedAt,
		&profile.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrPlayerProfileNotFound
		}
		return nil, fmt.Errorf("failed to scan player profile: %w", err)
	}
	return profile, nil
}
