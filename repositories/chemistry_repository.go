package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/wefitlabs/courtside/models"
)

var ErrTeamChemistryNotFound = errors.New("team chemistry record not found")

// TeamChemistryRepository stores one row per unordered doubles pairing.
// Callers pass ids through models.CanonicalPair before lookups.
type TeamChemistryRepository interface {
	Get(ctx context.Context, playerID, partnerID uuid.UUID) (*models.TeamChemistry, error)
	ListByPlayer(ctx context.Context, playerID uuid.UUID) ([]*models.TeamChemistry, error)
	Upsert(ctx context.Context, exec SQLExecutor, chemistry *models.TeamChemistry) error
}

type postgresTeamChemistryRepository struct {
	db *sql.DB
}

func NewPostgresTeamChemistryRepository(db *sql.DB) TeamChemistryRepository {
	return &postgresTeamChemistryRepository{db: db}
}

const teamChemistryColumns = `player_id, partner_id, matches_together, wins_together, losses_together, chemistry_score, last_played_together`

func (r *postgresTeamChemistryRepository) Get(ctx context.Context, playerID, partnerID uuid.UUID) (*models.TeamChemistry, error) {
	query := `SELECT ` + teamChemistryColumns + ` FROM team_chemistry WHERE player_id = $1 AND partner_id = $2`

	chemistry := &models.TeamChemistry{}
	err := r.db.QueryRowContext(ctx, query, playerID, partnerID).Scan(
		&chemistry.PlayerID,
		&chemistry.PartnerID,
		&chemistry.MatchesTogether,
		&chemistry.WinsTogether,
		&chemistry.LossesTogether,
		&chemistry.ChemistryScore,
		&chemistry.LastPlayedTogether,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrTeamChemistryNotFound
		}
		return nil, fmt.Errorf("failed to scan team chemistry for pair (%s, %s): %w", playerID, partnerID, err)
	}
	return chemistry, nil
}

func (r *postgresTeamChemistryRepository) ListByPlayer(ctx context.Context, playerID uuid.UUID) ([]*models.TeamChemistry, error) {
	// The player can sit on either side of the canonical pair.
	query := `SELECT ` + teamChemistryColumns + `
		FROM team_chemistry
		WHERE player_id = $1 OR partner_id = $1
		ORDER BY matches_together DESC, chemistry_score DESC`

	rows, err := r.db.QueryContext(ctx, query, playerID)
	if err != nil {
		return nil, fmt.Errorf("failed to query team chemistry for player %s: %w", playerID, err)
	}
	defer rows.Close()

	records := make([]*models.TeamChemistry, 0)
	for rows.Next() {
		chemistry := &models.TeamChemistry{}
		if err := rows.Scan(
			&chemistry.PlayerID,
			&chemistry.PartnerID,
			&chemistry.MatchesTogether,
			&chemistry.WinsTogether,
			&chemistry.LossesTogether,
			&chemistry.ChemistryScore,
			&chemistry.LastPlayedTogether,
		); err != nil {
			return nil, fmt.Errorf("failed to scan team chemistry row: %w", err)
		}
		records = append(records, chemistry)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error during team chemistry rows iteration: %w", err)
	}
	return records, nil
}

func (r *postgresTeamChemistryRepository) Upsert(ctx context.Context, exec SQLExecutor, chemistry *models.TeamChemistry) error {
	query := `
		INSERT INTO team_chemistry
			(player_id, partner_id, matches_together, wins_together, losses_together, chemistry_score, last_played_together)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (player_id, partner_id) DO UPDATE SET
			matches_together = EXCLUDED.matches_together,
			wins_together = EXCLUDED.wins_together,
			losses_together = EXCLUDED.losses_together,
			chemistry_score = EXCLUDED.chemistry_score,
			last_played_together = EXCLUDED.last_played_together`

	_, err := exec.ExecContext(ctx, query,
		chemistry.PlayerID,
		chemistry.PartnerID,
		chemistry.MatchesTogether,
		chemistry.WinsTogether,
		chemistry.LossesTogether,
		chemistry.ChemistryScore,
		chemistry.LastPlayedTogether,
	)
	if err != nil {
		return fmt.Errorf("failed to upsert team chemistry for pair (%s, %s): %w", chemistry.PlayerID, chemistry.PartnerID, err)
	}
	return nil
}
