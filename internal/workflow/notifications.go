package workflow

import (
	"context"

	"github.com/lukazajc/najdeno/internal/model"
	"github.com/lukazajc/najdeno/internal/store"
)

// PendingPickups returns the caller's items waiting for pickup that the
// caller has not yet acknowledged.
func (e *Engine) PendingPickups(ctx context.Context, user *model.User) ([]model.Item, error) {
	if user == nil {
		return nil, ErrUnauthenticated
	}
	return store.UnseenPickups(ctx, e.DB, user.ID)
}

// AcknowledgePickups marks all of the caller's pending pickup items as
// seen and returns how many were acknowledged.
func (e *Engine) AcknowledgePickups(ctx context.Context, user *model.User) (int, error) {
	if user == nil {
		return 0, ErrUnauthenticated
	}

	pending, err := store.UnseenPickups(ctx, e.DB, user.ID)
	if err != nil {
		return 0, err
	}
	if len(pending) == 0 {
		return 0, nil
	}

	ids := make([]int64, len(pending))
	for i, item := range pending {
		ids[i] = item.ID
	}
	if err := store.MarkPickupsSeen(ctx, e.DB, user.ID, ids); err != nil {
		return 0, err
	}
	return len(ids), nil
}
