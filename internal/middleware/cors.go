package middleware

import (
	"net/http"

	"github.com/rs/cors"
)

// Cors allows the listed origins, or any origin when none are given.
func Cors(origins ...string) Middleware {
	options := cors.Options{
		AllowedMethods: []string{
			http.MethodHead,
			http.MethodGet,
			http.MethodPost,
		},
		AllowedHeaders:   []string{"Content-Type", OwnerHeader},
		AllowCredentials: true,
	}
	if len(origins) > 0 {
		options.AllowedOrigins = origins
	} else {
		options.AllowOriginFunc = func(string) bool { return true }
	}
	return cors.New(options).Handler
}
