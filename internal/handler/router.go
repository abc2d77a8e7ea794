package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	aiHandler "github.com/zhouzirui/bubble/backend/internal/handler/ai"
	messageHandler "github.com/zhouzirui/bubble/backend/internal/handler/message"
	wsHandler "github.com/zhouzirui/bubble/backend/internal/handler/ws"
	middlewarePkg "github.com/zhouzirui/bubble/backend/internal/middleware"
	"github.com/zhouzirui/bubble/backend/internal/model/user"
	aiService "github.com/zhouzirui/bubble/backend/internal/service/ai"
	chatService "github.com/zhouzirui/bubble/backend/internal/service/chat"
	"github.com/zhouzirui/bubble/backend/internal/service/realtime"
	"github.com/zhouzirui/bubble/backend/pkg/utils"
)

// NewRouter wires HTTP routes to core services.
func NewRouter(users user.Store, chatSvc *chatService.Service, aiSvc *aiService.Service, hub *realtime.Hub, uploadDir string) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middlewarePkg.CORS)

	// Presence websocket lives at the root, next to the REST surface.
	wsHandler.New(hub, users).RegisterRoutes(r)

	// Uploaded images are served straight off disk.
	r.Handle("/uploads/*", http.StripPrefix("/uploads/", http.FileServer(http.Dir(uploadDir))))

	r.Route("/api", func(api chi.Router) {
		api.Get("/status", func(w http.ResponseWriter, r *http.Request) {
			utils.RespondJSON(w, http.StatusOK, map[string]string{
				"status":  "ok",
				"message": "Server is running",
			})
		})

		api.Route("/messages", func(mr chi.Router) {
			mr.Use(middlewarePkg.Auth(users))
			messageHandler.New(chatSvc).RegisterRoutes(mr)
		})

		api.Route("/ai", func(ar chi.Router) {
			ar.Use(middlewarePkg.Auth(users))
			aiHandler.New(aiSvc).RegisterRoutes(ar)
		})
	})

	return r
}
