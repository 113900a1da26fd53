package repositories

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"
)

// RatingHistoryRepository records every rating a player has held, one row
// per processed match, for volatility and trend readouts.
type RatingHistoryRepository interface {
	Insert(ctx context.Context, exec SQLExecutor, playerID, matchID uuid.UUID, skillRating int) error
	ListRecentByPlayer(ctx context.Context, playerID uuid.UUID, limit int) ([]int, error)
}

type postgresRatingHistoryRepository struct {
	db *sql.DB
}

func NewPostgresRatingHistoryRepository(db *sql.DB) RatingHistoryRepository {
	return &postgresRatingHistoryRepository{db: db}
}

func (r *postgresRatingHistoryRepository) Insert(ctx context.Context, exec SQLExecutor, playerID, matchID uuid.UUID, skillRating int) error {
	query := `INSERT INTO rating_history (player_id, match_id, skill_rating) VALUES ($1, $2, $3)`
	if _, err := exec.ExecContext(ctx, query, playerID, matchID, skillRating); err != nil {
		return fmt.Errorf("failed to insert rating history for player %s: %w", playerID, err)
	}
	return nil
}

// ListRecentByPlayer returns the player's last ratings in chronological
// order, oldest first, as the volatility computation expects.
func (r *postgresRatingHistoryRepository) ListRecentByPlayer(ctx context.Context, playerID uuid.UUID, limit int) ([]int, error) {
	query := `
		SELECT skill_rating FROM (
			SELECT skill_rating, recorded_at
			FROM rating_history
			WHERE player_id = $1
			ORDER BY recorded_at DESC
			LIMIT $2
		) recent
		ORDER BY recorded_at ASC`

	rows, err := r.db.QueryContext(ctx, query, playerID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query rating history for player %s: %w", playerID, err)
	}
	defer rows.Close()

	ratings := make([]int, 0, limit)
	for rows.Next() {
		var skillRating int
		if err := rows.Scan(&skillRating); err != nil {
			return nil, fmt.Errorf("failed to scan rating history row: %w", err)
		}
		ratings = append(ratings, skillRating)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error during rating history rows iteration: %w", err)
	}
	return ratings, nil
}
