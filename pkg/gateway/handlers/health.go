package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/voxhire/voxhire/pkg/gateway/lifecycle"
	"github.com/voxhire/voxhire/pkg/gateway/sessions"
	"github.com/voxhire/voxhire/pkg/store"
)

// HealthHandler reports process liveness.
func HealthHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		_, _ = w.Write([]byte("ok\n"))
	})
}

// ReadyHandler reports whether the gateway can accept new interviews:
// not draining and the result store reachable.
func ReadyHandler(lc *lifecycle.State, st store.Repository, registry *sessions.Registry) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		status := http.StatusOK
		body := map[string]any{
			"status":          "ready",
			"active_sessions": registry.Count(),
		}
		if lc != nil && lc.Draining() {
			status = http.StatusServiceUnavailable
			body["status"] = "draining"
		} else if st != nil {
			if err := st.Ping(r.Context()); err != nil {
				status = http.StatusServiceUnavailable
				body["status"] = "store unavailable"
			}
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_ = json.NewEncoder(w).Encode(body)
	})
}
