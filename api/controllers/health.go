package controllers

import (
	"context"
	"net/http"

	"github.com/cajaregistradora/pos-backend/api/responses"
	"github.com/cajaregistradora/pos-backend/pkg/config"
	pkgerrors "github.com/cajaregistradora/pos-backend/pkg/errors"
	"github.com/cajaregistradora/pos-backend/pkg/logger"
)

func HealthLive(cfg *config.Config) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-CajaPos-Env", cfg.App.Env)
		responses.WriteSuccess(w, map[string]string{"status": "live"})
	}
}

// HealthReady checks the backing stores before reporting ready.
func HealthReady(cfg *config.Config, deps map[string]func(context.Context) error, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-CajaPos-Env", cfg.App.Env)

		for name, check := range deps {
			if check == nil {
				continue
			}
			if err := check(r.Context()); err != nil {
				responses.WriteError(r.Context(), logg, w,
					pkgerrors.Wrap(pkgerrors.CodeDependency, err, name+" unavailable").WithDetails(map[string]string{"dependency": name}))
				return
			}
		}

		responses.WriteSuccess(w, map[string]string{"status": "ready"})
	}
}
