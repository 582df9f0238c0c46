package model

import "time"

// Item is a lost or found report on the campus board.
type Item struct {
	ID           int64     `json:"id"`
	OwnerID      int64     `json:"owner_id"`
	Type         string    `json:"type"`
	Status       string    `json:"status"`
	Title        string    `json:"title"`
	Description  string    `json:"description"`
	Category     string    `json:"category"`
	Building     string    `json:"building"`
	Term         string    `json:"term"`
	Date         time.Time `json:"date"`
	LocationName string    `json:"location_name,omitempty"`
	PhotoMime    string    `json:"photo_mime,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// Item types. Fixed at creation, never mutated afterwards.
const (
	TypeLost  = "lost"
	TypeFound = "found"
)

// Item statuses, listed in lifecycle order
// (open < turned_in < waiting_for_pickup < recovered).
// Any authorized caller may set any valid status; the ordering is not
// enforced as a transition graph.
const (
	StatusOpen             = "open"
	StatusTurnedIn         = "turned_in"
	StatusWaitingForPickup = "waiting_for_pickup"
	StatusRecovered        = "recovered"
)

// ValidType reports whether t is a known item type.
func ValidType(t string) bool {
	return t == TypeLost || t == TypeFound
}

// ValidStatus reports whether s is a member of the status enumeration.
func ValidStatus(s string) bool {
	switch s {
	case StatusOpen, StatusTurnedIn, StatusWaitingForPickup, StatusRecovered:
		return true
	}
	return false
}

// DefaultStatus returns the initial status for a newly reported item:
// lost items start open, found items wait for pickup.
func DefaultStatus(itemType string) string {
	if itemType == TypeFound {
		return StatusWaitingForPickup
	}
	return StatusOpen
}
