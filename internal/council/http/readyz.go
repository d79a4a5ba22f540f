package http

import (
	"context"
	"net/http"
	"time"

	"github.com/yplabs/council/internal/council/identity"
	"github.com/yplabs/council/internal/council/store"
	"github.com/yplabs/council/pkg/httpx"
)

// ReadyzHandler verifies the council database and the identity provider
// before reporting ready.
func ReadyzHandler(startTime time.Time, version string, st store.Store, ident identity.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		checks := &healthChecks{Database: "ok", Identity: "ok"}
		status := "ok"
		code := http.StatusOK

		if err := st.Ping(r.Context()); err != nil {
			checks.Database = "error: " + err.Error()
			status = "degraded"
			code = http.StatusServiceUnavailable
		}

		ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
		defer cancel()
		if _, err := ident.List(ctx); err != nil {
			checks.Identity = "error: " + err.Error()
			status = "degraded"
			code = http.StatusServiceUnavailable
		}

		httpx.WriteJSON(w, code, healthResponse{
			Status:  status,
			Uptime:  time.Since(startTime).String(),
			Version: version,
			Checks:  checks,
		})
	}
}
