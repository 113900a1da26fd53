package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/wefitlabs/courtside/models"
)

var ErrPlayerStatsNotFound = errors.New("player stats not found")

type PlayerStatsRepository interface {
	Get(ctx context.Context, playerID uuid.UUID) (*models.PlayerStats, error)
	Upsert(ctx context.Context, exec SQLExecutor, stats *models.PlayerStats) error
}

type postgresPlayerStatsRepository struct {
	db *sql.DB
}

func NewPostgresPlayerStatsRepository(db *sql.DB) PlayerStatsRepository {
	return &postgresPlayerStatsRepository{db: db}
}

func (r *postgresPlayerStatsRepository) Get(ctx context.Context, playerID uuid.UUID) (*models.PlayerStats, error) {
	query := `
		SELECT player_id, matches_played, matches_won, matches_lost, points_scored, points_against,
		       current_win_streak, best_win_streak, current_loss_streak, avg_point_differential, last_played_at
		FROM player_stats
		WHERE player_id = $1`

	stats := &models.PlayerStats{}
	err := r.db.QueryRowContext(ctx, query, playerID).Scan(
		&stats.PlayerID,
		&stats.MatchesPlayed,
		&stats.MatchesWon,
		&stats.MatchesLost,
		&stats.PointsScored,
		&stats.PointsAgainst,
		&stats.CurrentWinStreak,
		&stats.BestWinStreak,
		&stats.CurrentLossStreak,
		&stats.AvgPointDifferential,
		&stats.LastPlayedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrPlayerStatsNotFound
		}
		return nil, fmt.Errorf("failed to scan player stats for %s: %w", playerID, err)
	}
	return stats, nil
}

func (r *postgresPlayerStatsRepository) Upsert(ctx context.Context, exec SQLExecutor, stats *models.PlayerStats) error {
	query := `
		INSERT INTO player_stats
			(player_id, matches_played, matches_won, matches_lost, points_scored, points_against,
			 current_win_streak, best_win_streak, current_loss_streak, avg_point_differential, last_played_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		ON CONFLICT (player_id) DO UPDATE SET
			matches_played = EXCLUDED.matches_played,
			matches_won = EXCLUDED.matches_won,
			matches_lost = EXCLUDED.matches_lost,
			points_scored = EXCLUDED.points_scored,
			points_against = EXCLUDED.points_against,
			current_win_streak = EXCLUDED.current_win_streak,
			best_win_streak = EXCLUDED.best_win_streak,
			current_loss_streak = EXCLUDED.current_loss_streak,
			avg_point_differential = EXCLUDED.avg_point_differential,
			last_played_at = EXCLUDED.last_played_at`

	_, err := exec.ExecContext(ctx, query,
		stats.PlayerID,
		stats.MatchesPlayed,
		stats.MatchesWon,
		stats.MatchesLost,
		stats.PointsScored,
		stats.PointsAgainst,
		stats.CurrentWinStreak,
		stats.BestWinStreak,
		stats.CurrentLossStreak,
		stats.AvgPointDifferential,
		stats.LastPlayedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to upsert player stats for %s: %w", stats.PlayerID, err)
	}
	return nil
}
