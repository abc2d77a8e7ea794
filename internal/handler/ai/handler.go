package ai

import (
	"log"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/zhouzirui/bubble/backend/internal/middleware"
	aiservice "github.com/zhouzirui/bubble/backend/internal/service/ai"
	"github.com/zhouzirui/bubble/backend/pkg/utils"
)

// Handler exposes the AI-derived endpoints.
type Handler struct {
	svc *aiservice.Service
}

// New creates the AI handler.
func New(svc *aiservice.Service) *Handler {
	return &Handler{svc: svc}
}

// RegisterRoutes mounts the AI routes on an authenticated router.
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Post("/smart-replies/{id}", h.handleSmartReplies)
}

func (h *Handler) handleSmartReplies(w http.ResponseWriter, r *http.Request) {
	self, ok := middleware.UserFrom(r.Context())
	if !ok {
		utils.RespondError(w, http.StatusUnauthorized, "missing credentials")
		return
	}
	partnerID := chi.URLParam(r, "id")

	suggestions, err := h.svc.SmartReplies(r.Context(), self.ID, partnerID)
	if err != nil {
		// Only a context-fetch failure reaches here; AI trouble already
		// degraded to the fallback inside the service.
		log.Printf("[ai] smart replies failed for %s/%s: %v", self.ID, partnerID, err)
		utils.RespondError(w, http.StatusInternalServerError, "Server Error")
		return
	}
	utils.RespondJSON(w, http.StatusOK, map[string]any{"suggestions": suggestions})
}
