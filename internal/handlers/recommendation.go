package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/voltio/panelquote/internal/ai"
	"github.com/voltio/panelquote/internal/httpx"
)

type RecommendationHandler struct {
	svc *ai.Service
}

func NewRecommendationHandler(svc *ai.Service) *RecommendationHandler {
	return &RecommendationHandler{svc: svc}
}

// Recommend handles POST /ai/recommendations. Anonymous callers get an
// empty recommendation set, not an error.
func (h *RecommendationHandler) Recommend(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		httpx.JSONError(w, http.StatusMethodNotAllowed, "method_not_allowed", nil)
		return
	}
	var input ai.RecommendationInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		httpx.JSONError(w, http.StatusBadRequest, "invalid_json", nil)
		return
	}
	out, err := h.svc.ComponentRecommendations(r.Context(), input)
	if err != nil {
		writeError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, out)
}

// Pairings handles GET /ai/pairings?component_ids=a,b,c
func (h *RecommendationHandler) Pairings(w http.ResponseWriter, r *http.Request) {
	raw := r.URL.Query().Get("component_ids")
	if raw == "" {
		httpx.JSONError(w, http.StatusBadRequest, "invalid_component_ids", nil)
		return
	}
	ids := strings.Split(raw, ",")
	pairings, err := h.svc.ComponentPairings(r.Context(), ids)
	if err != nil {
		writeError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"items": pairings})
}

// Feedback handles POST /ai/feedback?id=...
func (h *RecommendationHandler) Feedback(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		httpx.JSONError(w, http.StatusMethodNotAllowed, "method_not_allowed", nil)
		return
	}
	id, ok := requireID(w, r)
	if !ok {
		return
	}
	var body struct {
		WasAccepted  *bool  `json:"was_accepted"`
		FeedbackText string `json:"feedback_text,omitempty"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil || body.WasAccepted == nil {
		httpx.JSONError(w, http.StatusBadRequest, "invalid_json", nil)
		return
	}
	if err := h.svc.RecordFeedback(r.Context(), id, *body.WasAccepted, body.FeedbackText); err != nil {
		writeError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"recorded": id})
}

// Performance handles GET /ai/performance?from=RFC3339&to=RFC3339.
// The window defaults to the last 30 days.
func (h *RecommendationHandler) Performance(w http.ResponseWriter, r *http.Request) {
	to := time.Now()
	from := to.AddDate(0, 0, -30)
	if v := r.URL.Query().Get("from"); v != "" {
		t, err := time.Parse(time.RFC3339, v)
		if err != nil {
			httpx.JSONError(w, http.StatusBadRequest, "invalid_from", nil)
			return
		}
		from = t
	}
	if v := r.URL.Query().Get("to"); v != "" {
		t, err := time.Parse(time.RFC3339, v)
		if err != nil {
			httpx.JSONError(w, http.StatusBadRequest, "invalid_to", nil)
			return
		}
		to = t
	}
	perf, err := h.svc.RecommendationPerformance(r.Context(), from, to)
	if err != nil {
		writeError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, perf)
}

// TopPatterns handles GET /ai/patterns/top?limit=N
func (h *RecommendationHandler) TopPatterns(w http.ResponseWriter, r *http.Request) {
	limit := 10
	if v := r.URL.Query().Get("limit"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 && n <= 100 {
			limit = n
		}
	}
	patterns, err := h.svc.TopPatterns(r.Context(), limit)
	if err != nil {
		writeError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"items": patterns})
}
