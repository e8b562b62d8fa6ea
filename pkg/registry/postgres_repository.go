package registry

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

// PostgresRepository implements the Repository interface using PostgreSQL
type PostgresRepository struct {
	pool *pgxpool.Pool
}

// NewPostgresRepository creates a new PostgreSQL provider state repository
func NewPostgresRepository(pool *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{
		pool: pool,
	}
}

func (r *PostgresRepository) GetProviderStates(ctx context.Context, userID string) (map[string]bool, error) {
	query := `
		SELECT provider_id, enabled
		FROM twofa_provider_state
		WHERE user_id = $1
	`

	rows, err := r.pool.Query(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to get provider states: %w", err)
	}
	defer rows.Close()

	states := make(map[string]bool)
	for rows.Next() {
		var providerID string
		var enabled bool
		if err := rows.Scan(&providerID, &enabled); err != nil {
			return nil, fmt.Errorf("failed to scan provider state: %w", err)
		}
		states[providerID] = enabled
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read provider states: %w", err)
	}

	return states, nil
}

func (r *PostgresRepository) EnableProviderFor(ctx context.Context, userID, providerID string) error {
	return r.setState(ctx, userID, providerID, true)
}

func (r *PostgresRepository) DisableProviderFor(ctx context.Context, userID, providerID string) error {
	return r.setState(ctx, userID, providerID, false)
}

func (r *PostgresRepository) setState(ctx context.Context, userID, providerID string, enabled bool) error {
	query := `
		INSERT INTO twofa_provider_state (user_id, provider_id, enabled, created_at, updated_at)
		VALUES ($1, $2, $3, NOW(), NOW())
		ON CONFLICT (user_id, provider_id)
		DO UPDATE SET enabled = EXCLUDED.enabled, updated_at = NOW()
	`

	if _, err := r.pool.Exec(ctx, query, userID, providerID, enabled); err != nil {
		return fmt.Errorf("failed to set provider state: %w", err)
	}

	return nil
}
