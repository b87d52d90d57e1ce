package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/pixglobal/registry/internal/domain"
)

// SessionRepository resolves bearer tokens issued by the hosted identity
// platform to user ids. The sessions table is synced by the platform; this
// side only reads it.
type SessionRepository struct {
	pool *pgxpool.Pool
}

func NewSessionRepository(pool *pgxpool.Pool) *SessionRepository {
	return &SessionRepository{pool: pool}
}

func (r *SessionRepository) ResolveToken(ctx context.Context, token string, now time.Time) (string, error) {
	const query = `
SELECT user_id
FROM sessions
WHERE token = $1 AND expires_at > $2`

	var userID string
	err := r.pool.QueryRow(ctx, query, token, now).Scan(&userID)
	if err != nil {
		if err == pgx.ErrNoRows {
			return "", domain.ErrUnauthenticated
		}
		return "", fmt.Errorf("resolve token: %w", err)
	}
	return userID, nil
}
