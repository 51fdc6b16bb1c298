package middleware

import (
	"github.com/go-chi/cors"
)

// NewCORS creates a new CORS middleware with the given allowed origins.
// The session header is both accepted and exposed so browser clients can
// read a freshly issued token and send it back.
func NewCORS(allowedOrigins []string) *cors.Cors {
	return cors.New(cors.Options{
		AllowedOrigins: allowedOrigins,
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{
			"Content-Type",
			SessionHeader,
		},
		ExposedHeaders:   []string{"Content-Type", SessionHeader},
		AllowCredentials: true,
		MaxAge:           300,
	})
}
