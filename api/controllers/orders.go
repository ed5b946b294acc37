package controllers

import (
	"net/http"
	"time"

	"github.com/angelmondragon/refundlens/api/responses"
	"github.com/angelmondragon/refundlens/api/validators"
	"github.com/angelmondragon/refundlens/internal/dashboard"
	"github.com/angelmondragon/refundlens/pkg/logger"
)

// Orders serves the enriched orders of the widened window as a JSON array.
func Orders(service dashboard.Service, loc *time.Location, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		_, window, err := validators.ParseDateRange(r, loc)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		list, err := service.Orders(ctx, window)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		responses.WriteSuccess(w, list)
	}
}
