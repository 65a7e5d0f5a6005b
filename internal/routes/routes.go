package routes

import (
	"net/http"

	"github.com/VSD-Devs/sandalwood-memories/internal/app"
	"github.com/VSD-Devs/sandalwood-memories/internal/handler"
	"github.com/VSD-Devs/sandalwood-memories/internal/middleware"
)

func SetupRoutes(app *app.App) http.Handler {
	// Handlers
	health := handler.NewHealthHandler(app.Cfg)
	usage := handler.NewUsageHandler(app.QuotaService, app.SubscriptionService)
	subscription := handler.NewSubscriptionHandler(app.SubscriptionService)
	memorial := handler.NewMemorialHandler(app.MemorialService)
	media := handler.NewMediaHandler(app.MediaService)
	timeline := handler.NewTimelineHandler(app.TimelineService)

	mux := http.NewServeMux()

	// Public
	mux.HandleFunc("GET /health", health.Health)

	// Usage and plan. These work in every mode: without a datastore the
	// snapshot is empty and every check is allowed.
	mux.HandleFunc("GET /api/usage", middleware.RequireAuth(usage.Get))
	mux.HandleFunc("POST /api/usage/check", middleware.RequireAuth(usage.Check))
	mux.HandleFunc("GET /api/subscription", middleware.RequireAuth(subscription.Get))

	// Content routes need persistence.
	if app.Cfg.HasDatastore() {
		rateLimiter := middleware.RateLimitWrites()

		mux.HandleFunc("POST /api/usage/memorials/{id}/recompute", middleware.RequireAuth(usage.Recompute))
		mux.HandleFunc("DELETE /api/subscription", middleware.RequireAuth(subscription.Cancel))

		mux.HandleFunc("GET /api/memorials", middleware.RequireAuth(memorial.List))
		mux.HandleFunc("POST /api/memorials", rateLimiter(middleware.RequireAuth(memorial.Create)))
		mux.HandleFunc("GET /api/memorials/{id}", middleware.RequireAuth(memorial.Get))
		mux.HandleFunc("PUT /api/memorials/{id}", middleware.RequireAuth(memorial.Update))
		mux.HandleFunc("POST /api/memorials/{id}/publish", middleware.RequireAuth(memorial.Publish))
		mux.HandleFunc("DELETE /api/memorials/{id}", middleware.RequireAuth(memorial.Delete))

		mux.HandleFunc("GET /api/memorials/{id}/timeline", middleware.RequireAuth(timeline.List))
		mux.HandleFunc("POST /api/memorials/{id}/timeline", rateLimiter(middleware.RequireAuth(timeline.Add)))
		mux.HandleFunc("DELETE /api/timeline/{id}", middleware.RequireAuth(timeline.Delete))

		// Media additionally needs an object store.
		if app.Cfg.HasStorage() {
			mux.HandleFunc("GET /api/memorials/{id}/media", middleware.RequireAuth(media.List))
			mux.HandleFunc("POST /api/memorials/{id}/media", rateLimiter(middleware.RequireAuth(media.Upload)))
			mux.HandleFunc("DELETE /api/media/{id}", middleware.RequireAuth(media.Delete))
		}
	}

	// Global middleware - executed in order (top to bottom)
	return middleware.Chain(
		mux,
		middleware.RequestLogging,
		middleware.Auth(app.Cfg.JWTSecret, app.SubscriptionService),
	)
}
