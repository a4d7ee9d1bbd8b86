package router

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"sideio-backend/internal/handlers"
	"sideio-backend/internal/middleware"
)

func New(
	chatHandler *handlers.ChatHandler,
	visitHandler *handlers.VisitHandler,
	contactHandler *handlers.ContactHandler,
	static http.Handler,
	frontendURL string,
) http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.RequestID)
	r.Use(chimiddleware.Logger)
	r.Use(chimiddleware.Recoverer)

	// Health check
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"status":"ok"}`))
	})

	r.Route("/api", func(r chi.Router) {
		r.Use(middleware.CORS(frontendURL))

		r.Post("/chat", chatHandler.Chat)
		r.Post("/visit", visitHandler.Track)
		r.Post("/contact", contactHandler.Submit)

		r.NotFound(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusNotFound)
			w.Write([]byte(`{"error":{"code":"NOT_FOUND","message":"Unknown API route"}}`))
		})
	})

	// Everything else is the single-page app.
	if static != nil {
		r.Handle("/*", static)
	}

	return r
}
