package httpapi

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/swaggo/http-swagger"

	"github.com/beratoz/vampireville/internal/httpapi/handler"
	"github.com/beratoz/vampireville/internal/monitor"
	"github.com/beratoz/vampireville/internal/ratelimit"
	"github.com/beratoz/vampireville/internal/session"
	"github.com/beratoz/vampireville/internal/websocket"

	_ "github.com/beratoz/vampireville/docs" // swag-generated docs
)

// NewRouter builds the root HTTP router. tokenSecret signs moderator and
// spectator tokens; with an empty secret every protected route rejects.
// rateLimiter may be nil to disable limiting.
//
// @title            Vampireville API
// @version          1.0
// @description      Moderator API for vampire party game sessions.
// @BasePath         /
// @SecurityDefinitions.apikey  BearerAuth
// @in               header
// @name             Authorization
func NewRouter(sessions *session.Manager, tokenSecret []byte, rateLimiter ratelimit.Limiter, metrics *monitor.Metrics) http.Handler {
	if rateLimiter == nil {
		rateLimiter = &ratelimit.Noop{}
	}
	if metrics == nil {
		metrics = monitor.Nop()
	}

	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Authorization", "Content-Type"},
		MaxAge:         300,
	}))

	r.Get("/healthz", handler.Healthz)
	r.Handle("/metrics", promhttp.Handler())

	// Swagger UI and generated spec (from swag comments)
	r.Get("/docs", func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, "/docs/", http.StatusMovedPermanently)
	})
	r.Get("/docs/*", httpSwagger.Handler(httpSwagger.URL("/docs/doc.json")))

	// Observer fan-out: every committed state change is pushed to the
	// session's websocket clients.
	hub := websocket.NewHub(metrics)
	go hub.Run()
	sessions.SetNotifier(func(code string, changes []session.Change) {
		for _, change := range changes {
			hub.BroadcastChange(code, change.Key, change.Value)
		}
	})

	wsHandler := websocket.NewHandler(hub, sessions, tokenSecret)
	r.Get("/ws/sessions/{code}", wsHandler.HandleObserve)

	rateLimitByIP := RateLimitMiddleware(rateLimiter, RateLimitKeyByIP)
	requireModerator := RequireModerator(tokenSecret)

	sessionHandler := handler.NewSessionHandler(sessions, tokenSecret, metrics)
	r.Get("/api/roles", handler.GetRoles)
	r.Route("/api/sessions", func(r chi.Router) {
		r.Use(LimitRequestBody(DefaultMaxBodyBytes))
		r.With(rateLimitByIP).Post("/", sessionHandler.CreateSession)

		r.Route("/{code}", func(r chi.Router) {
			r.Get("/", sessionHandler.GetSession)
			r.With(rateLimitByIP).Post("/login", sessionHandler.Login)
			r.With(rateLimitByIP).Post("/spectate", sessionHandler.Spectate)

			// Moderator commands.
			r.Group(func(r chi.Router) {
				r.Use(requireModerator)
				r.Post("/players", sessionHandler.AddPlayer)
				r.Delete("/players/{playerID}", sessionHandler.RemovePlayer)
				r.Patch("/config", sessionHandler.UpdateConfig)
				r.Post("/start", sessionHandler.Start)
				r.Post("/night-action", sessionHandler.NightAction)
				r.Post("/role-action", sessionHandler.RoleAction)
				r.Post("/votes", sessionHandler.CastVote)
				r.Delete("/votes", sessionHandler.ClearVotes)
				r.Put("/active-voter", sessionHandler.SetActiveVoter)
				r.Post("/eliminate", sessionHandler.Eliminate)
				r.Post("/advance", sessionHandler.Advance)
				r.Post("/reset-round", sessionHandler.ResetRound)
				r.Post("/reset", sessionHandler.ResetAll)
			})
		})
	})

	return r
}

// DefaultRateLimiter limits session creation and logins to 20 requests
// per minute per IP. Single-instance only.
func DefaultRateLimiter() ratelimit.Limiter {
	return ratelimit.NewSlidingWindow(20, time.Minute)
}
