package httpapi

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/pkelleher/live-poll-backend/internal/hub"
	"github.com/pkelleher/live-poll-backend/internal/ws"
)

func SetupRoutes(h *hub.Hub, log *zap.Logger) http.Handler {
	r := chi.NewRouter()

	// Public routes
	r.Get("/healthz", Healthz)
	r.Get("/rooms/{code}", RoomStats(h))
	r.Get("/ws", ws.Handler(h, log))
	return r
}
