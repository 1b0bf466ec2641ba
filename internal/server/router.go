// Package server wires handlers, middleware and health endpoints into the
// root http.Handler.
package server

import (
	"net/http"
	"time"

	"gorm.io/gorm"

	"github.com/voltio/panelquote/internal/ai"
	"github.com/voltio/panelquote/internal/auth"
	"github.com/voltio/panelquote/internal/handlers"
	"github.com/voltio/panelquote/internal/httpx"
	"github.com/voltio/panelquote/internal/platform/logger"
	"github.com/voltio/panelquote/internal/repository"
	"github.com/voltio/panelquote/internal/services"
)

// Deps carries everything the router needs, built by the composition root.
type Deps struct {
	DB         *gorm.DB
	Repos      *repository.Repositories
	Quotations *services.QuotationService
	Components *services.ComponentService
	AI         *ai.Service
	Log        *logger.Logger
}

// New constructs the root http.Handler with all routes and middleware.
func New(deps Deps) http.Handler {
	mux := http.NewServeMux()

	qh := handlers.NewQuotationHandler(deps.Quotations)
	ch := handlers.NewComponentHandler(deps.Components)
	clh := handlers.NewClientHandler(deps.Repos)
	rh := handlers.NewRecommendationHandler(deps.AI)

	// --- Health endpoints ---
	mux.HandleFunc("/health", func(w http.ResponseWriter, _ *http.Request) {
		httpx.JSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		if err := deps.DB.Exec("SELECT 1").Error; err != nil {
			httpx.JSONError(w, http.StatusServiceUnavailable, "degraded", nil)
			return
		}
		httpx.JSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	// Quotation endpoints. List/Create via /quotations; everything else via
	// action paths keyed on ?id=.
	mux.Handle("/quotations", protected(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodGet:
			qh.List(w, r)
		case http.MethodPost:
			qh.Create(w, r)
		default:
			w.Header().Set("Allow", "GET,POST")
			httpx.JSONError(w, http.StatusMethodNotAllowed, "method_not_allowed", nil)
		}
	})))
	mux.Handle("/quotations/get", protected(http.HandlerFunc(qh.Get)))
	mux.Handle("/quotations/update", protected(http.HandlerFunc(qh.Update)))
	mux.Handle("/quotations/delete", protected(http.HandlerFunc(qh.Delete)))
	mux.Handle("/quotations/transition", protected(http.HandlerFunc(qh.Transition)))
	mux.Handle("/quotations/revise", protected(http.HandlerFunc(qh.Revise)))
	mux.Handle("/quotations/items/add", protected(http.HandlerFunc(qh.AddItem)))
	mux.Handle("/quotations/items/remove", protected(http.HandlerFunc(qh.RemoveItem)))

	// Component endpoints.
	mux.Handle("/components", protected(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodGet:
			ch.List(w, r)
		case http.MethodPost:
			ch.Create(w, r)
		default:
			w.Header().Set("Allow", "GET,POST")
			httpx.JSONError(w, http.StatusMethodNotAllowed, "method_not_allowed", nil)
		}
	})))
	mux.Handle("/components/get", protected(http.HandlerFunc(ch.Get)))
	mux.Handle("/components/update", protected(http.HandlerFunc(ch.Update)))
	mux.Handle("/components/delete", protected(http.HandlerFunc(ch.Delete)))

	// Client endpoints.
	mux.Handle("/clients", protected(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodGet:
			clh.List(w, r)
		case http.MethodPost:
			clh.Create(w, r)
		default:
			w.Header().Set("Allow", "GET,POST")
			httpx.JSONError(w, http.StatusMethodNotAllowed, "method_not_allowed", nil)
		}
	})))
	mux.Handle("/clients/get", protected(http.HandlerFunc(clh.Get)))
	mux.Handle("/clients/update", protected(http.HandlerFunc(clh.Update)))
	mux.Handle("/clients/delete", protected(http.HandlerFunc(clh.Delete)))

	// AI endpoints attach the session but do not require it: the service
	// soft-disables for anonymous callers.
	mux.Handle("/ai/recommendations", auth.Middleware(http.HandlerFunc(rh.Recommend)))
	mux.Handle("/ai/pairings", auth.Middleware(http.HandlerFunc(rh.Pairings)))
	mux.Handle("/ai/feedback", protected(http.HandlerFunc(rh.Feedback)))
	mux.Handle("/ai/performance", protected(http.HandlerFunc(rh.Performance)))
	mux.Handle("/ai/patterns/top", protected(http.HandlerFunc(rh.TopPatterns)))

	return withRecover(withLogging(mux, deps.Log), deps.Log)
}

func protected(next http.Handler) http.Handler {
	return auth.Middleware(auth.RequireAuth(next))
}

func withLogging(next http.Handler, log *logger.Logger) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		next.ServeHTTP(w, r)
		log.Info("request", "method", r.Method, "path", r.URL.Path, "elapsed", time.Since(start))
	})
}

func withRecover(next http.Handler, log *logger.Logger) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if rec := recover(); rec != nil {
				log.Error("handler panicked", "path", r.URL.Path, "panic", rec)
				httpx.JSONError(w, http.StatusInternalServerError, "internal_error", nil)
			}
		}()
		next.ServeHTTP(w, r)
	})
}
