package message

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/zhouzirui/bubble/backend/internal/middleware"
	chatmodel "github.com/zhouzirui/bubble/backend/internal/model/chat"
	chatservice "github.com/zhouzirui/bubble/backend/internal/service/chat"
	"github.com/zhouzirui/bubble/backend/pkg/utils"
)

// Handler exposes the messaging endpoints.
type Handler struct {
	svc *chatservice.Service
}

// New creates the message handler.
func New(svc *chatservice.Service) *Handler {
	return &Handler{svc: svc}
}

// RegisterRoutes mounts the messaging routes on an authenticated router.
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Get("/users", h.handleSidebar)
	r.Get("/{id}", h.handleConversation)
	r.Put("/mark/{id}", h.handleMarkSeen)
	r.Post("/send/{id}", h.handleSend)
}

func (h *Handler) handleSidebar(w http.ResponseWriter, r *http.Request) {
	self, ok := middleware.UserFrom(r.Context())
	if !ok {
		utils.RespondError(w, http.StatusUnauthorized, "missing credentials")
		return
	}

	sidebar, err := h.svc.Sidebar(r.Context(), self.ID)
	if err != nil {
		log.Printf("[message] sidebar failed for %s: %v", self.ID, err)
		utils.RespondError(w, http.StatusInternalServerError, "failed to load conversations")
		return
	}
	utils.RespondJSON(w, http.StatusOK, sidebar)
}

func (h *Handler) handleConversation(w http.ResponseWriter, r *http.Request) {
	self, ok := middleware.UserFrom(r.Context())
	if !ok {
		utils.RespondError(w, http.StatusUnauthorized, "missing credentials")
		return
	}
	partnerID := chi.URLParam(r, "id")

	messages, err := h.svc.Conversation(r.Context(), self.ID, partnerID)
	if err != nil {
		log.Printf("[message] conversation load failed for %s/%s: %v", self.ID, partnerID, err)
		utils.RespondError(w, http.StatusInternalServerError, "failed to load messages")
		return
	}
	utils.RespondJSON(w, http.StatusOK, map[string]any{"messages": messages})
}

func (h *Handler) handleMarkSeen(w http.ResponseWriter, r *http.Request) {
	messageID := chi.URLParam(r, "id")

	if err := h.svc.MarkSeen(r.Context(), messageID); err != nil {
		if errors.Is(err, chatmodel.ErrMessageNotFound) {
			utils.RespondError(w, http.StatusNotFound, "message not found")
			return
		}
		log.Printf("[message] mark seen failed for %s: %v", messageID, err)
		utils.RespondError(w, http.StatusInternalServerError, "failed to mark message seen")
		return
	}
	utils.RespondJSON(w, http.StatusOK, map[string]bool{"success": true})
}

func (h *Handler) handleSend(w http.ResponseWriter, r *http.Request) {
	self, ok := middleware.UserFrom(r.Context())
	if !ok {
		utils.RespondError(w, http.StatusUnauthorized, "missing credentials")
		return
	}
	receiverID := chi.URLParam(r, "id")

	var payload struct {
		Text  string `json:"text"`
		Image string `json:"image"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		utils.RespondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	msg, err := h.svc.Send(r.Context(), self.ID, receiverID, payload.Text, payload.Image)
	if err != nil {
		if errors.Is(err, chatservice.ErrEmptyMessage) {
			utils.RespondError(w, http.StatusBadRequest, err.Error())
			return
		}
		log.Printf("[message] send failed from %s to %s: %v", self.ID, receiverID, err)
		utils.RespondError(w, http.StatusInternalServerError, "failed to send message")
		return
	}
	utils.RespondJSON(w, http.StatusCreated, map[string]any{"newMessage": msg})
}
