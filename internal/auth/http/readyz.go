package http

import (
	"context"
	"net/http"
	"time"

	"github.com/shopking/auth/pkg/authsdk"
	"github.com/shopking/auth/pkg/httpx"
)

// Pinger is a dependency readiness can probe.
type Pinger interface {
	Ping(ctx context.Context) error
}

// ReadyzHandler godoc
//
//	@Summary		Readiness probe
//	@Description	Checks the database and, when configured, the session denylist and reset notifier.
//	@Description	Unconfigured optional dependencies report "disabled".
//	@Tags			Health
//	@Produce		json
//	@Success		200	{object}	authsdk.HealthResponse	"status, uptime, version, checks"
//	@Failure		503	{object}	authsdk.HealthResponse	"at least one check failed"
//	@Router			/readyz [get].
func ReadyzHandler(startTime time.Time, version string, db, denylist, notifier Pinger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()

		checks := &authsdk.HealthChecks{
			Database: probe(ctx, db),
			Denylist: probe(ctx, denylist),
			Notifier: probe(ctx, notifier),
		}

		status, code := "ok", http.StatusOK
		for _, c := range []string{checks.Database, checks.Denylist, checks.Notifier} {
			if c != "ok" && c != "disabled" {
				status, code = "degraded", http.StatusServiceUnavailable
			}
		}

		httpx.WriteJSON(w, code, authsdk.HealthResponse{
			Status:  status,
			Uptime:  time.Since(startTime).Round(time.Second).String(),
			Version: version,
			Checks:  checks,
		})
	}
}

func probe(ctx context.Context, p Pinger) string {
	if p == nil {
		return "disabled"
	}
	if err := p.Ping(ctx); err != nil {
		return "error: " + err.Error()
	}
	return "ok"
}
