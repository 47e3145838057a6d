package http

import (
	"net/http"
)

const (
	corsAllowMethods = "GET, POST, PATCH, DELETE"
	corsAllowHeaders = "Content-Type, Authorization"
)

// CORSMiddleware allows cross-origin requests from a single origin and
// answers preflight requests itself. An empty origin disables it.
func CORSMiddleware(next http.Handler, origin string) http.Handler {
	if origin == "" {
		return next
	}

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Origin") != origin {
			next.ServeHTTP(w, r)

			return
		}

		w.Header().Set("Access-Control-Allow-Origin", origin)
		w.Header().Add("Vary", "Origin")

		if r.Method == http.MethodOptions && r.Header.Get("Access-Control-Request-Method") != "" {
			w.Header().Set("Access-Control-Allow-Methods", corsAllowMethods)
			w.Header().Set("Access-Control-Allow-Headers", corsAllowHeaders)
			w.WriteHeader(http.StatusNoContent)

			return
		}

		next.ServeHTTP(w, r)
	})
}
