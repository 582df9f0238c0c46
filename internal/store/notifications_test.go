package store

import (
	"context"
	"testing"

	"github.com/lukazajc/najdeno/internal/db"
	"github.com/lukazajc/najdeno/internal/model"
)

func TestUnseenPickups(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()

	owner, _ := CreateUser(ctx, database, "pickup@uni.si", "hash", model.RoleUser)
	other, _ := CreateUser(ctx, database, "other@uni.si", "hash", model.RoleUser)

	waiting, _ := CreateItem(ctx, database, newItem(owner.ID, model.TypeFound, "Waiting"))
	CreateItem(ctx, database, newItem(owner.ID, model.TypeLost, "Still Open"))
	CreateItem(ctx, database, newItem(other.ID, model.TypeFound, "Someone Else's"))

	unseen, err := UnseenPickups(ctx, database, owner.ID)
	if err != nil {
		t.Fatalf("UnseenPickups: %v", err)
	}
	if len(unseen) != 1 || unseen[0].ID != waiting.ID {
		t.Fatalf("expected only item %d, got %+v", waiting.ID, unseen)
	}

	if err := MarkPickupsSeen(ctx, database, owner.ID, []int64{waiting.ID}); err != nil {
		t.Fatalf("MarkPickupsSeen: %v", err)
	}

	unseen, _ = UnseenPickups(ctx, database, owner.ID)
	if len(unseen) != 0 {
		t.Errorf("expected 0 unseen after acknowledgement, got %d", len(unseen))
	}

	// Acknowledging again is a no-op.
	if err := MarkPickupsSeen(ctx, database, owner.ID, []int64{waiting.ID}); err != nil {
		t.Fatalf("repeat MarkPickupsSeen: %v", err)
	}
}
