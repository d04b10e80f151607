package session

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"
)

// RevocationStore remembers token ids that must no longer be accepted.
type RevocationStore interface {
	Revoke(ctx context.Context, jti, userID string, expiresAt time.Time, reason string) error
	IsRevoked(ctx context.Context, jti string) (bool, error)
}

// SQLRevocations keeps the list in the revoked_sessions table.
type SQLRevocations struct {
	db *sql.DB
}

func NewSQLRevocations(db *sql.DB) *SQLRevocations {
	return &SQLRevocations{db: db}
}

func (s *SQLRevocations) Revoke(ctx context.Context, jti, userID string, expiresAt time.Time, reason string) error {
	if s.db == nil {
		return errors.New("revocation store not initialized")
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO revoked_sessions (jti, user_id, expires_at, reason) VALUES (?, ?, ?, ?)
		 ON CONFLICT(jti) DO NOTHING`,
		jti, userID, expiresAt.Unix(), reason)
	if err != nil {
		return fmt.Errorf("revoke session %s: %w", jti, err)
	}
	return nil
}

func (s *SQLRevocations) IsRevoked(ctx context.Context, jti string) (bool, error) {
	if s.db == nil {
		return false, errors.New("revocation store not initialized")
	}
	var one int
	err := s.db.QueryRowContext(ctx, `SELECT 1 FROM revoked_sessions WHERE jti = ?`, jti).Scan(&one)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}
