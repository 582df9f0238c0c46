package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/lukazajc/najdeno/internal/model"
)

// CreateVerificationToken stores a new verification token for a user.
// Existing tokens for the same user are left untouched; each token is
// single-use on its own.
func CreateVerificationToken(ctx context.Context, db *sql.DB, token string, userID int64, expiresAt time.Time) error {
	_, err := db.ExecContext(ctx,
		`INSERT INTO verification_tokens (token, user_id, expires_at) VALUES (?, ?, ?)`,
		token, userID, expiresAt,
	)
	if err != nil {
		return fmt.Errorf("creating verification token: %w", err)
	}
	return nil
}

// GetVerificationToken returns a token record, or nil if it does not exist.
func GetVerificationToken(ctx context.Context, db *sql.DB, token string) (*model.VerificationToken, error) {
	vt := &model.VerificationToken{}
	err := db.QueryRowContext(ctx,
		`SELECT token, user_id, expires_at, created_at
		 FROM verification_tokens WHERE token = ?`, token,
	).Scan(&vt.Token, &vt.UserID, &vt.ExpiresAt, &vt.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("getting verification token: %w", err)
	}
	return vt, nil
}

// DeleteVerificationToken removes a token (after redemption or expiry).
func DeleteVerificationToken(ctx context.Context, db *sql.DB, token string) error {
	_, err := db.ExecContext(ctx,
		`DELETE FROM verification_tokens WHERE token = ?`, token,
	)
	if err != nil {
		return fmt.Errorf("deleting verification token: %w", err)
	}

	// Opportunistically clean up expired tokens.
	_, _ = db.ExecContext(ctx,
		`DELETE FROM verification_tokens WHERE expires_at < ?`, time.Now(),
	)

	return nil
}
