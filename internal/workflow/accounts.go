package workflow

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/lukazajc/najdeno/internal/model"
	"github.com/lukazajc/najdeno/internal/store"
)

// VerificationTokenTTL is how long an issued verification token stays
// redeemable.
const VerificationTokenTTL = 24 * time.Hour

// Signup creates an unverified account and issues a verification token.
// Delivery of the token is the caller's concern (email is external).
func (e *Engine) Signup(ctx context.Context, email, password string) (*model.User, string, error) {
	if err := model.ValidateEmail(email, e.EmailDomain); err != nil {
		return nil, "", validationErr("email", err.Error())
	}
	if err := model.ValidatePassword(password); err != nil {
		return nil, "", validationErr("password", err.Error())
	}

	existing, err := store.GetUserByEmail(ctx, e.DB, email)
	if err != nil {
		return nil, "", err
	}
	if existing != nil {
		return nil, "", validationErr("email", "already registered")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, "", fmt.Errorf("hashing password: %w", err)
	}

	user, err := store.CreateUser(ctx, e.DB, email, string(hash), model.RoleUser)
	if err != nil {
		return nil, "", err
	}

	token, err := e.IssueVerification(ctx, user.ID)
	if err != nil {
		return nil, "", err
	}
	return user, token, nil
}

// IssueVerification creates a fresh verification token for the user.
// Prior unredeemed tokens stay valid; each one is single-use on its own.
func (e *Engine) IssueVerification(ctx context.Context, userID int64) (string, error) {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("generating verification token: %w", err)
	}
	token := hex.EncodeToString(buf)

	if err := store.CreateVerificationToken(ctx, e.DB, token, userID, time.Now().Add(VerificationTokenTTL)); err != nil {
		return "", err
	}
	return token, nil
}

// RedeemVerification marks the token's owner verified and consumes the
// token. Unknown tokens fail with ErrInvalidToken; expired tokens are
// deleted and fail with ErrExpiredToken. Deletion on success makes
// redemption exactly-once: a second call sees no token.
func (e *Engine) RedeemVerification(ctx context.Context, token string) (int64, error) {
	vt, err := store.GetVerificationToken(ctx, e.DB, token)
	if err != nil {
		return 0, err
	}
	if vt == nil {
		return 0, ErrInvalidToken
	}

	if vt.Expired(time.Now()) {
		if err := store.DeleteVerificationToken(ctx, e.DB, token); err != nil {
			return 0, err
		}
		return 0, ErrExpiredToken
	}

	if err := store.MarkUserVerified(ctx, e.DB, vt.UserID); err != nil {
		return 0, err
	}
	if err := store.DeleteVerificationToken(ctx, e.DB, token); err != nil {
		return 0, err
	}
	return vt.UserID, nil
}

// Promote grants the target user the admin role.
func (e *Engine) Promote(ctx context.Context, userID int64) (*model.User, error) {
	return e.setRole(ctx, userID, model.RoleAdmin)
}

// Disable demotes the target user back to a regular account. There is no
// self-demotion guard or audit trail; moderation is trusted.
func (e *Engine) Disable(ctx context.Context, userID int64) (*model.User, error) {
	return e.setRole(ctx, userID, model.RoleUser)
}

func (e *Engine) setRole(ctx context.Context, userID int64, role string) (*model.User, error) {
	user, err := store.GetUser(ctx, e.DB, userID)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, ErrNotFound
	}

	if err := store.UpdateUserRole(ctx, e.DB, userID, role); err != nil {
		return nil, err
	}
	return store.GetUser(ctx, e.DB, userID)
}
