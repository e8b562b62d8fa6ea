package logintoken

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PostgresRepository implements the Repository interface using PostgreSQL
type PostgresRepository struct {
	pool *pgxpool.Pool
}

// NewPostgresRepository creates a new PostgreSQL login token repository
func NewPostgresRepository(pool *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{
		pool: pool,
	}
}

func (r *PostgresRepository) Create(ctx context.Context, token LoginToken) (*LoginToken, error) {
	query := `
		INSERT INTO login_token (user_id, session_id, name, created_at, last_activity, expires_at)
		VALUES ($1, $2, $3, NOW(), NOW(), $4)
		RETURNING id, created_at, last_activity
	`

	var expiresAt sql.NullTime
	if !token.ExpiresAt.IsZero() {
		expiresAt = sql.NullTime{Time: token.ExpiresAt, Valid: true}
	}

	created := token
	err := r.pool.QueryRow(ctx, query,
		token.UserID,
		token.SessionID,
		token.Name,
		expiresAt,
	).Scan(
		&created.ID,
		&created.CreatedAt,
		&created.LastActivity,
	)

	if err != nil {
		return nil, fmt.Errorf("failed to create login token: %w", err)
	}

	return &created, nil
}

func (r *PostgresRepository) GetBySessionID(ctx context.Context, sessionID string) (*LoginToken, error) {
	query := `
		SELECT id, user_id, session_id, name, created_at, last_activity, expires_at
		FROM login_token
		WHERE session_id = $1
	`

	token := &LoginToken{}
	var expiresAt sql.NullTime

	err := r.pool.QueryRow(ctx, query, sessionID).Scan(
		&token.ID,
		&token.UserID,
		&token.SessionID,
		&token.Name,
		&token.CreatedAt,
		&token.LastActivity,
		&expiresAt,
	)

	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, ErrTokenNotFound
		}
		return nil, fmt.Errorf("failed to get login token: %w", err)
	}

	if expiresAt.Valid {
		token.ExpiresAt = expiresAt.Time
	}

	return token, nil
}

func (r *PostgresRepository) UpdateLastActivity(ctx context.Context, id int64) error {
	query := `
		UPDATE login_token
		SET last_activity = NOW()
		WHERE id = $1
	`

	tag, err := r.pool.Exec(ctx, query, id)
	if err != nil {
		return fmt.Errorf("failed to update login token activity: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrTokenNotFound
	}

	return nil
}

func (r *PostgresRepository) Delete(ctx context.Context, id int64) error {
	query := `
		DELETE FROM login_token
		WHERE id = $1
	`

	tag, err := r.pool.Exec(ctx, query, id)
	if err != nil {
		return fmt.Errorf("failed to delete login token: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrTokenNotFound
	}

	return nil
}
