package controllers

import (
	"net/http"
	"time"

	"github.com/angelmondragon/refundlens/api/responses"
	"github.com/angelmondragon/refundlens/api/validators"
	"github.com/angelmondragon/refundlens/internal/dashboard"
	"github.com/angelmondragon/refundlens/pkg/logger"
)

// Analytics serves the refund snapshot for exactly the requested window.
func Analytics(service dashboard.Service, loc *time.Location, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		_, window, err := validators.ParseDateRange(r, loc)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		snapshot, err := service.Analytics(ctx, window)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		responses.WriteSuccess(w, snapshot)
	}
}
