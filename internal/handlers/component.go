package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/voltio/panelquote/internal/httpx"
	"github.com/voltio/panelquote/internal/models"
	"github.com/voltio/panelquote/internal/repository"
	"github.com/voltio/panelquote/internal/services"
)

type ComponentHandler struct {
	svc *services.ComponentService
}

func NewComponentHandler(svc *services.ComponentService) *ComponentHandler {
	return &ComponentHandler{svc: svc}
}

// List handles GET /components with optional category/manufacturer filters.
func (h *ComponentHandler) List(w http.ResponseWriter, r *http.Request) {
	filters := repository.Filters{}
	if v := r.URL.Query().Get("category"); v != "" {
		filters["category"] = v
	}
	if v := r.URL.Query().Get("manufacturer"); v != "" {
		filters["manufacturer"] = v
	}
	components, err := h.svc.List(r.Context(), filters)
	if err != nil {
		writeError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"items": components, "total": len(components)})
}

// Get handles GET /components/get?id=...
func (h *ComponentHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := requireID(w, r)
	if !ok {
		return
	}
	c, err := h.svc.Get(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, c)
}

// Create handles POST /components.
func (h *ComponentHandler) Create(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		httpx.JSONError(w, http.StatusMethodNotAllowed, "method_not_allowed", nil)
		return
	}
	var c models.Component
	if err := json.NewDecoder(r.Body).Decode(&c); err != nil {
		httpx.JSONError(w, http.StatusBadRequest, "invalid_json", nil)
		return
	}
	created, err := h.svc.Create(r.Context(), &c)
	if err != nil {
		writeError(w, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, created)
}

// Update handles PATCH /components/update?id=...
func (h *ComponentHandler) Update(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost && r.Method != http.MethodPut && r.Method != http.MethodPatch {
		httpx.JSONError(w, http.StatusMethodNotAllowed, "method_not_allowed", nil)
		return
	}
	id, ok := requireID(w, r)
	if !ok {
		return
	}
	var changes map[string]any
	if err := json.NewDecoder(r.Body).Decode(&changes); err != nil {
		httpx.JSONError(w, http.StatusBadRequest, "invalid_json", nil)
		return
	}
	updated, err := h.svc.Update(r.Context(), id, changes)
	if err != nil {
		writeError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, updated)
}

// Delete handles DELETE /components/delete?id=... A component referenced
// by any quotation is refused with a conflict.
func (h *ComponentHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost && r.Method != http.MethodDelete {
		httpx.JSONError(w, http.StatusMethodNotAllowed, "method_not_allowed", nil)
		return
	}
	id, ok := requireID(w, r)
	if !ok {
		return
	}
	if err := h.svc.Delete(r.Context(), id); err != nil {
		writeError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"deleted": id})
}
