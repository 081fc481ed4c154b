package http

import (
	"log/slog"
	"net/http"

	httpSwagger "github.com/swaggo/http-swagger"

	"techconnect/internal/delivery/http/controllers"
	"techconnect/internal/delivery/http/middleware"
	"techconnect/internal/delivery/http/ws"
	"techconnect/internal/domain"
)

// RouterConfig carries everything the router needs to wire routes.
type RouterConfig struct {
	Logger   *slog.Logger
	Verifier domain.TokenVerifier

	Auth         *controllers.AuthController
	Events       *controllers.EventController
	Registration *controllers.RegistrationController
	Invites      *controllers.InviteController
	Uploads      *controllers.UploadController
	Feed         *controllers.FeedController
	WS           *ws.Handler

	// UploadDir is served read-only under /uploads/.
	UploadDir string
}

// NewRouter initializes the HTTP router with all application routes.
func NewRouter(cfg RouterConfig) *http.ServeMux {
	mux := http.NewServeMux()

	requireAuth := middleware.RequireAuth(cfg.Verifier, cfg.Logger)
	optionalAuth := middleware.OptionalAuth(cfg.Verifier)

	// Auth
	mux.HandleFunc("POST /auth/signup", cfg.Auth.SignUp)
	mux.HandleFunc("POST /auth/login", cfg.Auth.Login)

	// Events
	mux.HandleFunc("GET /events", cfg.Events.List)
	mux.HandleFunc("POST /events", requireAuth(cfg.Events.Create))
	mux.HandleFunc("GET /events/{eventID}", cfg.Events.Get)
	mux.HandleFunc("PUT /events/{eventID}", requireAuth(cfg.Events.Update))
	mux.HandleFunc("DELETE /events/{eventID}", requireAuth(cfg.Events.Delete))
	mux.HandleFunc("GET /events/{eventID}/ics", cfg.Events.ExportICS)

	// Registration and comments
	mux.HandleFunc("POST /events/{eventID}/register", cfg.Registration.Register)
	mux.HandleFunc("GET /events/{eventID}/comments", cfg.Registration.ListComments)
	mux.HandleFunc("POST /events/{eventID}/comments", optionalAuth(cfg.Registration.AddComment))

	// Invites
	mux.HandleFunc("POST /invites", requireAuth(cfg.Invites.Issue))
	mux.HandleFunc("GET /invites", requireAuth(cfg.Invites.List))
	mux.HandleFunc("PUT /invites/{inviteID}", requireAuth(cfg.Invites.SetRevoked))

	// Uploads
	mux.HandleFunc("POST /upload", requireAuth(cfg.Uploads.Upload))
	mux.Handle("GET /uploads/", http.StripPrefix("/uploads/", http.FileServer(http.Dir(cfg.UploadDir))))

	// Feed
	mux.HandleFunc("GET /feed", cfg.Feed.RSS)

	// Live updates
	mux.HandleFunc("GET /ws", cfg.WS.ServeWS)

	// Swagger
	mux.Handle("/swagger/", httpSwagger.WrapHandler)

	return mux
}
