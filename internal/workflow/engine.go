// Package workflow enforces the item lifecycle and authorization rules:
// who may create, edit, and delete reports, which fields are writable,
// and how statuses default. Handlers stay thin; every rule lives here.
package workflow

import (
	"context"
	"database/sql"
	"strings"
	"time"

	"github.com/lukazajc/najdeno/internal/model"
	"github.com/lukazajc/najdeno/internal/store"
)

// Engine runs the item workflow over an injected database handle.
// It holds no other state; each operation is a single request-scoped
// read-then-write (concurrent updates are last-write-wins).
type Engine struct {
	DB *sql.DB

	// EmailDomain restricts signup to campus addresses. Empty disables
	// the domain check (any well-formed address).
	EmailDomain string
}

// ItemDraft carries the caller-supplied fields for a new report.
type ItemDraft struct {
	Title        string
	Description  string
	Category     string
	Building     string
	Term         string
	Type         string
	Status       string
	Date         time.Time
	LocationName string
}

// ItemPatch carries a partial update. Nil fields are left unchanged.
// Type and owner are not patchable; they are fixed at creation.
type ItemPatch struct {
	Title        *string
	Description  *string
	Category     *string
	Building     *string
	Term         *string
	Date         *time.Time
	LocationName *string
	Status       *string
}

// CreateItem persists a new report owned by the caller. The caller must be
// authenticated and verified. Lost items default to open, found items to
// waiting_for_pickup; an invalid status override falls back to the default
// rather than failing. A zero date becomes the current date.
func (e *Engine) CreateItem(ctx context.Context, user *model.User, draft ItemDraft) (*model.Item, error) {
	if user == nil {
		return nil, ErrUnauthenticated
	}
	if !user.Verified() {
		return nil, ErrForbidden
	}

	required := []struct{ field, value string }{
		{"title", draft.Title},
		{"description", draft.Description},
		{"type", draft.Type},
		{"category", draft.Category},
		{"building", draft.Building},
		{"term", draft.Term},
	}
	for _, f := range required {
		if strings.TrimSpace(f.value) == "" {
			return nil, validationErr(f.field, "required")
		}
	}
	if !model.ValidType(draft.Type) {
		return nil, validationErr("type", "must be lost or found")
	}

	status := draft.Status
	if !model.ValidStatus(status) {
		status = model.DefaultStatus(draft.Type)
	}

	date := draft.Date
	if date.IsZero() {
		date = time.Now()
	}

	item := &model.Item{
		OwnerID:      user.ID,
		Type:         draft.Type,
		Status:       status,
		Title:        draft.Title,
		Description:  draft.Description,
		Category:     draft.Category,
		Building:     draft.Building,
		Term:         draft.Term,
		Date:         date,
		LocationName: draft.LocationName,
	}
	return store.CreateItem(ctx, e.DB, item)
}

// GetItem returns a report by ID. Reads are public.
func (e *Engine) GetItem(ctx context.Context, id int64) (*model.Item, error) {
	item, err := store.GetItem(ctx, e.DB, id)
	if err != nil {
		return nil, err
	}
	if item == nil {
		return nil, ErrNotFound
	}
	return item, nil
}

// ListItems returns reports matching the filter. Reads are public; the
// owner constraint in the filter is how /my-items narrows the feed.
func (e *Engine) ListItems(ctx context.Context, filter store.ItemFilter) ([]model.Item, error) {
	return store.ListItems(ctx, e.DB, filter)
}

// UpdateItem applies a partial update to a report. Only the owner or an
// admin may update. Whitelisted fields only; a status outside the
// enumeration is ignored (the rest of the patch still applies) so partial
// payloads survive. Required text fields may not be blanked.
func (e *Engine) UpdateItem(ctx context.Context, user *model.User, id int64, patch ItemPatch) (*model.Item, error) {
	if user == nil {
		return nil, ErrUnauthenticated
	}

	item, err := store.GetItem(ctx, e.DB, id)
	if err != nil {
		return nil, err
	}
	if item == nil {
		return nil, ErrNotFound
	}
	if !user.CanMutate(item) {
		return nil, ErrForbidden
	}

	text := []struct {
		field string
		src   *string
		dst   *string
	}{
		{"title", patch.Title, &item.Title},
		{"description", patch.Description, &item.Description},
		{"category", patch.Category, &item.Category},
		{"building", patch.Building, &item.Building},
		{"term", patch.Term, &item.Term},
	}
	for _, f := range text {
		if f.src == nil {
			continue
		}
		if strings.TrimSpace(*f.src) == "" {
			return nil, validationErr(f.field, "cannot be empty")
		}
		*f.dst = *f.src
	}
	if patch.Date != nil && !patch.Date.IsZero() {
		item.Date = *patch.Date
	}
	if patch.LocationName != nil {
		item.LocationName = *patch.LocationName
	}
	if patch.Status != nil && model.ValidStatus(*patch.Status) {
		item.Status = *patch.Status
	}

	if err := store.UpdateItem(ctx, e.DB, item); err != nil {
		return nil, err
	}
	return store.GetItem(ctx, e.DB, id)
}

// DeleteItem permanently removes a report. Same predicate as UpdateItem.
func (e *Engine) DeleteItem(ctx context.Context, user *model.User, id int64) error {
	if user == nil {
		return ErrUnauthenticated
	}

	item, err := store.GetItem(ctx, e.DB, id)
	if err != nil {
		return err
	}
	if item == nil {
		return ErrNotFound
	}
	if !user.CanMutate(item) {
		return ErrForbidden
	}

	return store.DeleteItem(ctx, e.DB, id)
}

// AttachPhoto stores a processed photo on a report. Same predicate as
// UpdateItem.
func (e *Engine) AttachPhoto(ctx context.Context, user *model.User, id int64, photo []byte, mime string) error {
	if user == nil {
		return ErrUnauthenticated
	}

	item, err := store.GetItem(ctx, e.DB, id)
	if err != nil {
		return err
	}
	if item == nil {
		return ErrNotFound
	}
	if !user.CanMutate(item) {
		return ErrForbidden
	}

	return store.SetItemPhoto(ctx, e.DB, id, photo, mime)
}

// ItemPhoto returns a report's photo. Reads are public.
func (e *Engine) ItemPhoto(ctx context.Context, id int64) ([]byte, string, error) {
	photo, mime, err := store.GetItemPhoto(ctx, e.DB, id)
	if err != nil {
		return nil, "", err
	}
	if photo == nil {
		return nil, "", ErrNotFound
	}
	return photo, mime, nil
}
