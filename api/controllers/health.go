package controllers

import (
	"context"
	"net/http"

	"github.com/ahshafin2315/Lost-FoundTracking-CSE471-Project/api/responses"
	"github.com/ahshafin2315/Lost-FoundTracking-CSE471-Project/pkg/config"
	pkgerrors "github.com/ahshafin2315/Lost-FoundTracking-CSE471-Project/pkg/errors"
	"github.com/ahshafin2315/Lost-FoundTracking-CSE471-Project/pkg/logger"
)

const envHeader = "X-LAF-Env"

type pinger interface {
	Ping(ctx context.Context) error
}

func HealthLive(cfg *config.Config) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set(envHeader, cfg.App.Env)
		responses.WriteSuccess(w, map[string]string{"status": "live"})
	}
}

// HealthReady reports readiness of the hard dependencies. Optional ones
// (nil pingers) are skipped.
func HealthReady(cfg *config.Config, logg *logger.Logger, dbP, redisP, storageP pinger) http.HandlerFunc {
	checks := []struct {
		name string
		p    pinger
	}{
		{"database", dbP},
		{"redis", redisP},
		{"storage", storageP},
	}
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set(envHeader, cfg.App.Env)

		status := map[string]string{}
		ready := true
		for _, check := range checks {
			name, p := check.name, check.p
			if p == nil {
				status[name] = "skipped"
				continue
			}
			if err := p.Ping(r.Context()); err != nil {
				status[name] = "down"
				ready = false
				if logg != nil {
					logg.Error(r.Context(), "health: "+name+" ping failed", err)
				}
				continue
			}
			status[name] = "up"
		}

		if !ready {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeDependency, "dependencies unavailable").WithDetails(status))
			return
		}
		status["status"] = "ready"
		responses.WriteSuccess(w, status)
	}
}
