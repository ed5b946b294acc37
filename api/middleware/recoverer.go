package middleware

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/angelmondragon/refundlens/api/responses"
	pkgerrors "github.com/angelmondragon/refundlens/pkg/errors"
	"github.com/angelmondragon/refundlens/pkg/logger"
)

// Recoverer turns a handler panic into a 500 error body, logged with the
// request's fields. http.ErrAbortHandler is re-raised so the server can drop
// the connection.
func Recoverer(logg *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				rec := recover()
				if rec == nil {
					return
				}
				if err, ok := rec.(error); ok && errors.Is(err, http.ErrAbortHandler) {
					panic(rec)
				}
				logger.Annotate(r.Context(), "panic", true)
				responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeInternal, panicError(rec), "handler panicked"))
			}()
			next.ServeHTTP(w, r)
		})
	}
}

func panicError(rec any) error {
	if err, ok := rec.(error); ok {
		return fmt.Errorf("panic: %w", err)
	}
	return fmt.Errorf("panic: %v", rec)
}
