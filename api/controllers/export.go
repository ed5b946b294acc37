package controllers

import (
	"bytes"
	"fmt"
	"net/http"
	"time"

	"github.com/angelmondragon/refundlens/api/responses"
	"github.com/angelmondragon/refundlens/api/validators"
	"github.com/angelmondragon/refundlens/internal/dashboard"
	"github.com/angelmondragon/refundlens/internal/export"
	pkgerrors "github.com/angelmondragon/refundlens/pkg/errors"
	"github.com/angelmondragon/refundlens/pkg/logger"
)

// ExportOrders serves the same rows as Orders as a CSV attachment.
func ExportOrders(service dashboard.Service, loc *time.Location, logg *logger.Logger) http.HandlerFunc {
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

		var buf bytes.Buffer
		if err := export.WriteCSV(&buf, list); err != nil {
			responses.WriteError(ctx, logg, w, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "render csv"))
			return
		}

		name := export.Filename(window.Start.Format(time.DateOnly), window.End.Format(time.DateOnly))
		w.Header().Set("Content-Type", export.ContentType)
		w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", name))
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write(buf.Bytes())
	}
}
