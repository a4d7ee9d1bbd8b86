package middleware

import (
	"net/http"

	"github.com/rs/cors"
)

// CORS allows the Vite dev server (or any configured frontend origin) to
// call the API. In production the bundle is served from the same origin.
// An empty frontendURL allows no cross-origin callers at all.
func CORS(frontendURL string) func(http.Handler) http.Handler {
	opts := cors.Options{
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders:   []string{"Content-Type", RequestIDHeader},
		ExposedHeaders:   []string{RequestIDHeader},
		AllowCredentials: false,
		MaxAge:           600,
	}

	// rs/cors reads an empty origin list as "*".
	if frontendURL != "" {
		opts.AllowedOrigins = []string{frontendURL}
	} else {
		opts.AllowOriginFunc = func(string) bool { return false }
	}

	return cors.New(opts).Handler
}
