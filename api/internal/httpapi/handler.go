// Package httpapi provides the HTTP surface of the service: the analysis
// API, the message CRUD and the WhatsApp webhook.
package httpapi

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"factcheck-bot/api/internal/analysis"
	"factcheck-bot/api/internal/cache"
	"factcheck-bot/api/internal/session"
	"factcheck-bot/api/internal/store"
)

// Version reported at the root endpoint.
const Version = "1.0.0"

// Analyzer runs one claim end to end. Satisfied by *analysis.Orchestrator;
// stubbed in tests.
type Analyzer interface {
	Run(ctx context.Context, req analysis.Request) *analysis.VerdictRecord
}

// Handler carries the shared dependencies of all HTTP endpoints.
type Handler struct {
	Analyzer   Analyzer
	Cache      *cache.Cache
	Messages   *store.MessageRepo // nil when running without a database
	Sessions   *session.Store
	Dispatcher *Dispatcher
	Log        *zap.SugaredLogger
}

// RegisterRoutes mounts every endpoint on r.
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Get("/", h.handleRoot)
	r.Get("/health", h.handleHealth)
	r.Post("/api/analyze", h.handleAnalyze)
	r.Post("/api/analyze/upload", h.handleAnalyzeUpload)
	if h.Messages != nil {
		r.Route("/api/messages", func(r chi.Router) {
			r.Get("/", h.handleListMessages)
			r.Post("/", h.handleCreateMessage)
			r.Get("/{id}", h.handleGetMessage)
			r.Delete("/{id}", h.handleDeleteMessage)
		})
	}
	if h.Dispatcher != nil {
		r.Post("/webhook", h.Dispatcher.HandleWebhook)
	}
}

func (h *Handler) handleRoot(w http.ResponseWriter, r *http.Request) {
	JSON(w, http.StatusOK, map[string]string{"status": "API is running", "version": Version})
}

func (h *Handler) handleHealth(w http.ResponseWriter, r *http.Request) {
	JSON(w, http.StatusOK, map[string]string{"status": "healthy"})
}

// JSON writes v as a JSON response with the given status code.
func JSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		http.Error(w, `{"error": "failed to encode response"}`, http.StatusInternalServerError)
	}
}

// Error writes a JSON error response.
func Error(w http.ResponseWriter, status int, message string) {
	JSON(w, status, map[string]string{"error": message})
}
