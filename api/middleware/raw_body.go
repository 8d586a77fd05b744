package middleware

import (
	"context"
	"errors"
	"io"
	"net/http"

	"github.com/merrymatch/membership-backend/api/responses"
	pkgerrors "github.com/merrymatch/membership-backend/pkg/errors"
	"github.com/merrymatch/membership-backend/pkg/logger"
)

// RawBody reads the request body verbatim, capped at maxBytes, and stores it
// on the context. Handlers behind it must not decode r.Body themselves.
func RawBody(maxBytes int64, logg *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			body := r.Body
			if maxBytes > 0 {
				body = http.MaxBytesReader(w, r.Body, maxBytes)
			}
			payload, err := io.ReadAll(body)
			if err != nil {
				var tooLarge *http.MaxBytesError
				if errors.As(err, &tooLarge) {
					responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "request body too large").
						WithDetails(map[string]any{"limit_bytes": tooLarge.Limit}))
					return
				}
				responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "read request body"))
				return
			}

			ctx := context.WithValue(r.Context(), ctxRawBody, payload)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
