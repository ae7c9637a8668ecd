package server

import "net/http"

// healthEndpoints are reachable without authentication so liveness
// probes work with no credentials configured.
var healthEndpoints = map[string]bool{
	"/health": true,
	"/ready":  true,
	"/status": true,
}

// Auth is a middleware that checks the X-API-KEY header on deck
// routes. Health endpoints bypass the check.
func Auth(next http.Handler, authKey string) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if healthEndpoints[r.URL.Path] {
			next.ServeHTTP(w, r)
			return
		}
		key := r.Header.Get("X-API-KEY")
		if key == "" {
			http.Error(w, "Unauthorized", http.StatusUnauthorized)
			return
		}
		if key != authKey {
			http.Error(w, "Unauthorized", http.StatusUnauthorized)
			return
		}
		next.ServeHTTP(w, r)
	})
}
