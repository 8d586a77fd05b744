package controllers

import (
	"context"
	"net/http"

	"github.com/google/uuid"

	"github.com/merrymatch/membership-backend/api/middleware"
	"github.com/merrymatch/membership-backend/api/responses"
	"github.com/merrymatch/membership-backend/internal/memberships"
	pkgerrors "github.com/merrymatch/membership-backend/pkg/errors"
	"github.com/merrymatch/membership-backend/pkg/logger"
)

type MembershipService interface {
	Latest(ctx context.Context, userID uuid.UUID) (*memberships.MembershipDetail, error)
}

// MembershipMe returns the caller's most recent membership.
func MembershipMe(svc MembershipService, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "membership service unavailable"))
			return
		}

		userID := middleware.UserIDFromContext(r.Context())
		if userID == "" {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "user context missing"))
			return
		}
		uid, err := uuid.Parse(userID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid user id"))
			return
		}

		detail, err := svc.Latest(r.Context(), uid)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, detail)
	}
}
