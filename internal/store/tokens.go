package store

import (
	"context"
	"fmt"
	"time"

	"github.com/erazemk/najdeno/internal/db"
)

// RevokeToken adds a token's JTI to the revocation list.
func RevokeToken(ctx context.Context, db *db.DB, jti string, expiresAt time.Time) error {
	_, err := db.ExecContext(ctx,
		`INSERT INTO revoked_tokens (jti, expires_at) VALUES (?, ?) ON CONFLICT (jti) DO NOTHING`,
		jti, expiresAt.UTC(),
	)
	if err != nil {
		return fmt.Errorf("revoking token: %w", err)
	}

	// Opportunistically clean up expired revocations.
	_, _ = db.ExecContext(ctx,
		`DELETE FROM revoked_tokens WHERE expires_at < ?`, now(),
	)

	return nil
}

// IsTokenRevoked checks if a token's JTI has been revoked.
func IsTokenRevoked(ctx context.Context, db *db.DB, jti string) (bool, error) {
	var count int
	err := db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM revoked_tokens WHERE jti = ?`, jti,
	).Scan(&count)
	if err != nil {
		return false, fmt.Errorf("checking token revocation: %w", err)
	}
	return count > 0, nil
}

// TokenRevoker keeps the revocation list in the database. It is used
// when no Redis instance is configured.
type TokenRevoker struct {
	DB *db.DB
}

// Revoke implements auth.Revoker.
func (r *TokenRevoker) Revoke(ctx context.Context, jti string, expiresAt time.Time) error {
	return RevokeToken(ctx, r.DB, jti, expiresAt)
}

// IsRevoked implements auth.Revoker.
func (r *TokenRevoker) IsRevoked(ctx context.Context, jti string) (bool, error) {
	return IsTokenRevoked(ctx, r.DB, jti)
}
