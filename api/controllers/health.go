package controllers

import (
	"context"
	"net/http"
	"time"

	"github.com/angelmondragon/refundlens/api/responses"
	pkgerrors "github.com/angelmondragon/refundlens/pkg/errors"
	"github.com/angelmondragon/refundlens/pkg/logger"
	"github.com/angelmondragon/refundlens/pkg/types"
)

const readyTimeout = 2 * time.Second

// Pinger is a dependency checked by the readiness probe.
type Pinger interface {
	Ping(ctx context.Context) error
}

func HealthLive(env string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Refundlens-Env", env)
		responses.WriteSuccess(w, types.StatusEnvelope{Status: "live"})
	}
}

// HealthReady pings redis when the cache lives there. A nil pinger is always ready.
func HealthReady(env string, logg *logger.Logger, redisClient Pinger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Refundlens-Env", env)
		if redisClient != nil {
			ctx, cancel := context.WithTimeout(r.Context(), readyTimeout)
			defer cancel()
			if err := redisClient.Ping(ctx); err != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "redis unavailable"))
				return
			}
		}
		responses.WriteSuccess(w, types.StatusEnvelope{Status: "ready"})
	}
}
