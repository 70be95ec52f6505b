// Package middleware provides HTTP middleware for the API server.
package middleware

import (
	"net/http"
)

// AdminPasswordHeader carries the shared admin secret.
const AdminPasswordHeader = "X-Admin-Password"

// AdminAuth gates admin routes behind a shared secret compared verbatim
// against the request header. This is a placeholder gate, not a capability
// system: no sessions, no expiry, no per-admin identity.
func AdminAuth(password string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.Header.Get(AdminPasswordHeader) != password {
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusUnauthorized)
				w.Write([]byte(`{"error":"invalid admin password"}`))
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
