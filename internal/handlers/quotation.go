package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/voltio/panelquote/internal/httpx"
	"github.com/voltio/panelquote/internal/quote"
	"github.com/voltio/panelquote/internal/repository"
	"github.com/voltio/panelquote/internal/services"
)

type QuotationHandler struct {
	svc *services.QuotationService
}

func NewQuotationHandler(svc *services.QuotationService) *QuotationHandler {
	return &QuotationHandler{svc: svc}
}

// List handles GET /quotations with optional client_id/status filters.
func (h *QuotationHandler) List(w http.ResponseWriter, r *http.Request) {
	filters := repository.Filters{}
	if v := r.URL.Query().Get("client_id"); v != "" {
		filters["client_id"] = v
	}
	if v := r.URL.Query().Get("status"); v != "" {
		filters["status"] = v
	}
	quotations, err := h.svc.List(r.Context(), filters)
	if err != nil {
		writeError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"items": quotations, "total": len(quotations)})
}

// Get handles GET /quotations/get?id=...
func (h *QuotationHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := requireID(w, r)
	if !ok {
		return
	}
	q, err := h.svc.Get(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, q)
}

// Create handles POST /quotations.
func (h *QuotationHandler) Create(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		httpx.JSONError(w, http.StatusMethodNotAllowed, "method_not_allowed", nil)
		return
	}
	var input services.CreateInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		httpx.JSONError(w, http.StatusBadRequest, "invalid_json", nil)
		return
	}
	created, err := h.svc.Create(r.Context(), input)
	if err != nil {
		writeError(w, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, created)
}

// Update handles PATCH /quotations/update?id=...
func (h *QuotationHandler) Update(w http.ResponseWriter, r *http.Request) {
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

// Transition handles POST /quotations/transition?id=...
func (h *QuotationHandler) Transition(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		httpx.JSONError(w, http.StatusMethodNotAllowed, "method_not_allowed", nil)
		return
	}
	id, ok := requireID(w, r)
	if !ok {
		return
	}
	var body struct {
		Status string `json:"status"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil || body.Status == "" {
		httpx.JSONError(w, http.StatusBadRequest, "invalid_json", nil)
		return
	}
	updated, err := h.svc.Transition(r.Context(), id, body.Status)
	if err != nil {
		writeError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, updated)
}

// Revise handles POST /quotations/revise?id=...
func (h *QuotationHandler) Revise(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		httpx.JSONError(w, http.StatusMethodNotAllowed, "method_not_allowed", nil)
		return
	}
	id, ok := requireID(w, r)
	if !ok {
		return
	}
	revision, err := h.svc.Revise(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, revision)
}

// Delete handles DELETE /quotations/delete?id=...
func (h *QuotationHandler) Delete(w http.ResponseWriter, r *http.Request) {
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

// AddItem handles POST /quotations/items/add?id=...
func (h *QuotationHandler) AddItem(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		httpx.JSONError(w, http.StatusMethodNotAllowed, "method_not_allowed", nil)
		return
	}
	id, ok := requireID(w, r)
	if !ok {
		return
	}
	var body struct {
		ComponentID string  `json:"component_id"`
		Quantity    int     `json:"quantity"`
		UnitPrice   float64 `json:"unit_price"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		httpx.JSONError(w, http.StatusBadRequest, "invalid_json", nil)
		return
	}
	if body.ComponentID == "" || body.Quantity <= 0 {
		httpx.JSONError(w, http.StatusBadRequest, "validation_failed", map[string]string{"component_id": "required", "quantity": "must be positive"})
		return
	}
	updated, err := h.svc.AddItem(r.Context(), id, quote.ItemInput{
		ComponentID: body.ComponentID,
		Quantity:    body.Quantity,
		UnitPrice:   body.UnitPrice,
	})
	if err != nil {
		writeError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, updated)
}

// RemoveItem handles POST /quotations/items/remove?id=...&item_id=...
func (h *QuotationHandler) RemoveItem(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost && r.Method != http.MethodDelete {
		httpx.JSONError(w, http.StatusMethodNotAllowed, "method_not_allowed", nil)
		return
	}
	id, ok := requireID(w, r)
	if !ok {
		return
	}
	itemID := r.URL.Query().Get("item_id")
	if itemID == "" {
		httpx.JSONError(w, http.StatusBadRequest, "invalid_item_id", nil)
		return
	}
	updated, err := h.svc.RemoveItem(r.Context(), id, itemID)
	if err != nil {
		writeError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, updated)
}
