package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/lukazajc/najdeno/internal/model"
)

// UnseenPickups returns the user's items waiting for pickup that the user
// has not yet acknowledged.
func UnseenPickups(ctx context.Context, db *sql.DB, userID int64) ([]model.Item, error) {
	rows, err := db.QueryContext(ctx,
		`SELECT `+itemColumns+` FROM items
		 WHERE owner_id = ? AND status = ?
		   AND id NOT IN (SELECT item_id FROM seen_pickups WHERE user_id = ?)
		 ORDER BY id`,
		userID, model.StatusWaitingForPickup, userID,
	)
	if err != nil {
		return nil, fmt.Errorf("listing unseen pickups: %w", err)
	}
	defer rows.Close()

	var items []model.Item
	for rows.Next() {
		item, err := scanItem(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning unseen pickup: %w", err)
		}
		items = append(items, *item)
	}
	return items, rows.Err()
}

// MarkPickupsSeen records that the user has acknowledged the given items.
// Re-acknowledging is a no-op.
func MarkPickupsSeen(ctx context.Context, db *sql.DB, userID int64, itemIDs []int64) error {
	for _, itemID := range itemIDs {
		_, err := db.ExecContext(ctx,
			`INSERT OR IGNORE INTO seen_pickups (user_id, item_id) VALUES (?, ?)`,
			userID, itemID,
		)
		if err != nil {
			return fmt.Errorf("marking pickup seen: %w", err)
		}
	}
	return nil
}
