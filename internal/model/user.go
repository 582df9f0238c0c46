package model

import (
	"fmt"
	"regexp"
	"strings"
	"time"
)

// User represents an account on the board.
type User struct {
	ID           int64      `json:"id"`
	Email        string     `json:"email"`
	PasswordHash string     `json:"-"`
	Role         string     `json:"role"`
	VerifiedAt   *time.Time `json:"verified_at,omitempty"`
	CreatedAt    time.Time  `json:"created_at"`

	// Computed by ListUsers (not a column).
	ItemCount int `json:"item_count"`
}

// Roles.
const (
	RoleAdmin = "admin"
	RoleUser  = "user"
)

// ValidRole reports whether role is a known role.
func ValidRole(role string) bool {
	return role == RoleAdmin || role == RoleUser
}

// Verified reports whether the user has redeemed a verification token.
func (u *User) Verified() bool {
	return u != nil && u.VerifiedAt != nil
}

// CanMutate reports whether u may edit or delete item: owners have standing
// over their own reports, admins over everything. Evaluated server-side on
// every mutating call; nil receivers fail closed.
func (u *User) CanMutate(item *Item) bool {
	if u == nil || item == nil {
		return false
	}
	return u.ID == item.OwnerID || u.Role == RoleAdmin
}

var emailRe = regexp.MustCompile(`^[A-Za-z0-9._%+-]+@[A-Za-z0-9.-]+\.[A-Za-z]{2,}$`)

// ValidateEmail checks that email is well-formed and, if domain is non-empty,
// that it belongs to the campus domain.
func ValidateEmail(email, domain string) error {
	if !emailRe.MatchString(email) {
		return fmt.Errorf("malformed email address")
	}
	if domain != "" && !strings.HasSuffix(strings.ToLower(email), "@"+strings.ToLower(domain)) {
		return fmt.Errorf("email must belong to %s", domain)
	}
	return nil
}

// ValidatePassword enforces the minimum password policy.
func ValidatePassword(password string) error {
	if len(password) < 8 {
		return fmt.Errorf("password must be at least 8 characters")
	}
	return nil
}
