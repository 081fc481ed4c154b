package ws

import (
	"log/slog"
	"net/http"
	"strings"

	"github.com/gorilla/websocket"

	"techconnect/internal/domain"
)

// Handler upgrades HTTP requests to websocket connections and registers them
// with the broadcast hub. Clients receive global announcements immediately and
// can join per-event channels with {"action":"join:event","event_id":"..."}.
type Handler struct {
	hub      domain.Broadcaster
	logger   *slog.Logger
	upgrader websocket.Upgrader
}

func NewHandler(hub domain.Broadcaster, allowedOrigins []string, logger *slog.Logger) *Handler {
	allowed := make(map[string]struct{}, len(allowedOrigins))
	for _, o := range allowedOrigins {
		o = strings.TrimSuffix(strings.TrimSpace(o), "/")
		if o != "" {
			allowed[o] = struct{}{}
		}
	}
	return &Handler{
		hub:    hub,
		logger: logger,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(r *http.Request) bool {
				origin := r.Header.Get("Origin")
				if origin == "" {
					return true
				}
				_, ok := allowed[strings.TrimSuffix(origin, "/")]
				return ok
			},
		},
	}
}

func (h *Handler) ServeWS(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Debug("websocket upgrade failed", "err", err)
		return
	}
	client := newClient(h.hub, conn, h.logger)
	h.hub.Connect(client)

	go client.writePump()
	go client.readPump()
}
