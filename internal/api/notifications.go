package api

import (
	"net/http"

	"github.com/lukazajc/najdeno/internal/model"
	"github.com/lukazajc/najdeno/internal/workflow"
)

// NotificationsHandler exposes pending pickup notifications.
type NotificationsHandler struct {
	Engine *workflow.Engine
}

// List handles GET /api/notifications.
func (h *NotificationsHandler) List(w http.ResponseWriter, r *http.Request) {
	items, err := h.Engine.PendingPickups(r.Context(), GetPrincipal(r.Context()))
	if err != nil {
		workflowError(w, err, "failed to list notifications")
		return
	}
	if items == nil {
		items = []model.Item{}
	}
	jsonResponse(w, http.StatusOK, items)
}

// Acknowledge handles POST /api/notifications/ack.
func (h *NotificationsHandler) Acknowledge(w http.ResponseWriter, r *http.Request) {
	n, err := h.Engine.AcknowledgePickups(r.Context(), GetPrincipal(r.Context()))
	if err != nil {
		workflowError(w, err, "failed to acknowledge notifications")
		return
	}
	jsonResponse(w, http.StatusOK, map[string]int{"acknowledged": n})
}
