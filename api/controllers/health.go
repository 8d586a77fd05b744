package controllers

import (
	"context"
	"net/http"
	"time"

	"github.com/merrymatch/membership-backend/api/responses"
	"github.com/merrymatch/membership-backend/pkg/config"
	pkgerrors "github.com/merrymatch/membership-backend/pkg/errors"
	"github.com/merrymatch/membership-backend/pkg/logger"
)

const readinessTimeout = 2 * time.Second

type pinger interface {
	Ping(ctx context.Context) error
}

func HealthLive(cfg *config.Config) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Membership-Env", cfg.App.Env)
		responses.WriteSuccess(w, map[string]string{"status": "live"})
	}
}

// HealthReady reports ready only when Postgres and Redis both answer a ping.
func HealthReady(cfg *config.Config, logg *logger.Logger, dbPinger, redisPinger pinger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Membership-Env", cfg.App.Env)

		ctx, cancel := context.WithTimeout(r.Context(), readinessTimeout)
		defer cancel()

		deps := []struct {
			name string
			p    pinger
		}{{"postgres", dbPinger}, {"redis", redisPinger}}

		checks := map[string]string{}
		var failed error
		for _, dep := range deps {
			name, p := dep.name, dep.p
			checks[name] = "ok"
			if p == nil {
				checks[name] = "unconfigured"
				continue
			}
			if err := p.Ping(ctx); err != nil {
				checks[name] = "unavailable"
				if failed == nil {
					failed = pkgerrors.Wrap(pkgerrors.CodeDependency, err, name+" unavailable")
				}
			}
		}
		if failed != nil {
			if typed := pkgerrors.As(failed); typed != nil {
				failed = typed.WithDetails(checks)
			}
			responses.WriteError(r.Context(), logg, w, failed)
			return
		}

		responses.WriteSuccess(w, map[string]any{"status": "ready", "checks": checks})
	}
}
