package api

import (
	"net/http"
	"strconv"
	"time"

	"github.com/lukazajc/najdeno/internal/imaging"
	"github.com/lukazajc/najdeno/internal/model"
	"github.com/lukazajc/najdeno/internal/store"
	"github.com/lukazajc/najdeno/internal/workflow"
)

// ItemsHandler handles item endpoints.
type ItemsHandler struct {
	Engine *workflow.Engine
}

// dateFormat is the wire format for the loss/find date.
const dateFormat = "2006-01-02"

type createItemRequest struct {
	Title        string `json:"title"`
	Description  string `json:"description"`
	Category     string `json:"category"`
	Building     string `json:"building"`
	Term         string `json:"term"`
	Type         string `json:"type"`
	Status       string `json:"status"`
	Date         string `json:"date"`
	LocationName string `json:"location_name"`
}

type updateItemRequest struct {
	Title        *string `json:"title"`
	Description  *string `json:"description"`
	Category     *string `json:"category"`
	Building     *string `json:"building"`
	Term         *string `json:"term"`
	Date         *string `json:"date"`
	LocationName *string `json:"location_name"`
	Status       *string `json:"status"`
}

// List handles GET /api/items.
func (h *ItemsHandler) List(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	filter := store.ItemFilter{
		Type:   q.Get("type"),
		Status: q.Get("status"),
		Query:  q.Get("q"),
	}

	items, err := h.Engine.ListItems(r.Context(), filter)
	if err != nil {
		workflowError(w, err, "failed to list items")
		return
	}
	if items == nil {
		items = []model.Item{}
	}
	jsonResponse(w, http.StatusOK, items)
}

// MyItems handles GET /api/my-items.
func (h *ItemsHandler) MyItems(w http.ResponseWriter, r *http.Request) {
	user := GetPrincipal(r.Context())
	if user == nil {
		jsonError(w, http.StatusUnauthorized, "not authenticated")
		return
	}

	items, err := h.Engine.ListItems(r.Context(), store.ItemFilter{OwnerID: user.ID})
	if err != nil {
		workflowError(w, err, "failed to list items")
		return
	}
	if items == nil {
		items = []model.Item{}
	}
	jsonResponse(w, http.StatusOK, items)
}

// Create handles POST /api/items.
func (h *ItemsHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req createItemRequest
	if err := decodeJSON(r, &req); err != nil {
		jsonError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	draft := workflow.ItemDraft{
		Title:        req.Title,
		Description:  req.Description,
		Category:     req.Category,
		Building:     req.Building,
		Term:         req.Term,
		Type:         req.Type,
		Status:       req.Status,
		LocationName: req.LocationName,
	}
	if req.Date != "" {
		date, err := time.Parse(dateFormat, req.Date)
		if err != nil {
			jsonError(w, http.StatusBadRequest, "date must be YYYY-MM-DD")
			return
		}
		draft.Date = date
	}

	item, err := h.Engine.CreateItem(r.Context(), GetPrincipal(r.Context()), draft)
	if err != nil {
		workflowError(w, err, "failed to create item")
		return
	}

	jsonResponse(w, http.StatusCreated, item)
}

// Get handles GET /api/items/{id}.
func (h *ItemsHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		jsonError(w, http.StatusBadRequest, "invalid item id")
		return
	}

	item, err := h.Engine.GetItem(r.Context(), id)
	if err != nil {
		workflowError(w, err, "failed to get item")
		return
	}
	jsonResponse(w, http.StatusOK, item)
}

// Update handles PUT /api/items/{id}.
func (h *ItemsHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		jsonError(w, http.StatusBadRequest, "invalid item id")
		return
	}

	var req updateItemRequest
	if err := decodeJSON(r, &req); err != nil {
		jsonError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	patch := workflow.ItemPatch{
		Title:        req.Title,
		Description:  req.Description,
		Category:     req.Category,
		Building:     req.Building,
		Term:         req.Term,
		LocationName: req.LocationName,
		Status:       req.Status,
	}
	if req.Date != nil {
		date, err := time.Parse(dateFormat, *req.Date)
		if err != nil {
			jsonError(w, http.StatusBadRequest, "date must be YYYY-MM-DD")
			return
		}
		patch.Date = &date
	}

	item, err := h.Engine.UpdateItem(r.Context(), GetPrincipal(r.Context()), id, patch)
	if err != nil {
		workflowError(w, err, "failed to update item")
		return
	}
	jsonResponse(w, http.StatusOK, item)
}

// Delete handles DELETE /api/items/{id}.
func (h *ItemsHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		jsonError(w, http.StatusBadRequest, "invalid item id")
		return
	}

	if err := h.Engine.DeleteItem(r.Context(), GetPrincipal(r.Context()), id); err != nil {
		workflowError(w, err, "failed to delete item")
		return
	}
	jsonResponse(w, http.StatusOK, map[string]string{"message": "item deleted"})
}

// UploadPhoto handles PUT /api/items/{id}/photo.
func (h *ItemsHandler) UploadPhoto(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		jsonError(w, http.StatusBadRequest, "invalid item id")
		return
	}

	// Limit to 5 MB.
	r.Body = http.MaxBytesReader(w, r.Body, 5<<20)

	if err := r.ParseMultipartForm(5 << 20); err != nil {
		jsonError(w, http.StatusBadRequest, "file too large or invalid multipart form")
		return
	}

	file, _, err := r.FormFile("photo")
	if err != nil {
		jsonError(w, http.StatusBadRequest, "photo file required")
		return
	}
	defer file.Close()

	processed, err := imaging.Process(file)
	if err != nil {
		jsonError(w, http.StatusBadRequest, err.Error())
		return
	}

	if err := h.Engine.AttachPhoto(r.Context(), GetPrincipal(r.Context()), id, processed.Data, processed.MIME); err != nil {
		workflowError(w, err, "failed to save photo")
		return
	}
	jsonResponse(w, http.StatusOK, map[string]string{"message": "photo uploaded"})
}

// GetPhoto handles GET /api/items/{id}/photo.
func (h *ItemsHandler) GetPhoto(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		jsonError(w, http.StatusBadRequest, "invalid item id")
		return
	}

	data, mime, err := h.Engine.ItemPhoto(r.Context(), id)
	if err != nil {
		workflowError(w, err, "failed to get photo")
		return
	}

	w.Header().Set("Content-Type", mime)
	w.Header().Set("Cache-Control", "public, max-age=3600")
	w.Write(data)
}
