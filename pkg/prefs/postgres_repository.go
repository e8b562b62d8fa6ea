package prefs

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PostgresRepository implements the Repository interface using PostgreSQL
type PostgresRepository struct {
	pool *pgxpool.Pool
}

// NewPostgresRepository creates a new PostgreSQL preference repository
func NewPostgresRepository(pool *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{
		pool: pool,
	}
}

func (r *PostgresRepository) GetUserValue(ctx context.Context, userID, namespace, key, defaultValue string) (string, error) {
	query := `
		SELECT value
		FROM user_preference
		WHERE user_id = $1 AND namespace = $2 AND key = $3
	`

	var value string
	err := r.pool.QueryRow(ctx, query, userID, namespace, key).Scan(&value)
	if err != nil {
		if err == pgx.ErrNoRows {
			return defaultValue, nil
		}
		return "", fmt.Errorf("failed to get preference: %w", err)
	}

	return value, nil
}

func (r *PostgresRepository) SetUserValue(ctx context.Context, userID, namespace, key, value string) error {
	query := `
		INSERT INTO user_preference (user_id, namespace, key, value, updated_at)
		VALUES ($1, $2, $3, $4, NOW())
		ON CONFLICT (user_id, namespace, key)
		DO UPDATE SET value = EXCLUDED.value, updated_at = NOW()
	`

	if _, err := r.pool.Exec(ctx, query, userID, namespace, key, value); err != nil {
		return fmt.Errorf("failed to set preference: %w", err)
	}

	return nil
}

func (r *PostgresRepository) DeleteUserValue(ctx context.Context, userID, namespace, key string) error {
	query := `
		DELETE FROM user_preference
		WHERE user_id = $1 AND namespace = $2 AND key = $3
	`

	if _, err := r.pool.Exec(ctx, query, userID, namespace, key); err != nil {
		return fmt.Errorf("failed to delete preference: %w", err)
	}

	return nil
}

func (r *PostgresRepository) GetUserKeys(ctx context.Context, userID, namespace string) ([]string, error) {
	query := `
		SELECT key
		FROM user_preference
		WHERE user_id = $1 AND namespace = $2
		ORDER BY key
	`

	rows, err := r.pool.Query(ctx, query, userID, namespace)
	if err != nil {
		return nil, fmt.Errorf("failed to get preference keys: %w", err)
	}
	defer rows.Close()

	var keys []string
	for rows.Next() {
		var key string
		if err := rows.Scan(&key); err != nil {
			return nil, fmt.Errorf("failed to scan preference key: %w", err)
		}
		keys = append(keys, key)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read preference keys: %w", err)
	}

	return keys, nil
}
