package controllers

import (
	"context"
	"net/http"

	"github.com/google/uuid"

	"github.com/merrymatch/membership-backend/api/middleware"
	"github.com/merrymatch/membership-backend/api/responses"
	"github.com/merrymatch/membership-backend/api/validators"
	"github.com/merrymatch/membership-backend/internal/eligibility"
	"github.com/merrymatch/membership-backend/internal/purchase"
	pkgerrors "github.com/merrymatch/membership-backend/pkg/errors"
	"github.com/merrymatch/membership-backend/pkg/logger"
)

type EligibilityService interface {
	CheckEligibility(ctx context.Context, userID uuid.UUID, packageID int64) (eligibility.Result, error)
}

type PurchaseService interface {
	Begin(ctx context.Context, userID uuid.UUID, packageID int64, confirmed bool) (purchase.Decision, error)
}

type checkPackageRequest struct {
	UserID    string `json:"user_id" validate:"required,uuid"`
	PackageID int64  `json:"package_id" validate:"required,gt=0"`
}

type purchaseRequest struct {
	UserID    string `json:"user_id" validate:"required,uuid"`
	PackageID int64  `json:"package_id" validate:"required,gt=0"`
	Confirmed bool   `json:"confirmed"`
}

// PaymentsCheckPackage tells the member whether a package can be bought now.
func PaymentsCheckPackage(svc EligibilityService, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "eligibility service unavailable"))
			return
		}

		var payload checkPackageRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		userID, err := authorizedUser(r, payload.UserID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		result, err := svc.CheckEligibility(r.Context(), userID, payload.PackageID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		if !result.Purchasable {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodePackageActive, result.Reason).
				WithDetails(map[string]any{"is_active": result.IsActive}))
			return
		}

		responses.WriteSuccess(w, result)
	}
}

// PaymentsPurchase runs the purchase flow and returns the next step.
func PaymentsPurchase(svc PurchaseService, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "purchase service unavailable"))
			return
		}

		var payload purchaseRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		userID, err := authorizedUser(r, payload.UserID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		decision, err := svc.Begin(r.Context(), userID, payload.PackageID, payload.Confirmed)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		if decision.Action == purchase.ActionRejected {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodePackageActive, decision.Reason).
				WithDetails(map[string]any{"is_active": decision.IsActive, "action": decision.Action}))
			return
		}

		responses.WriteSuccess(w, decision)
	}
}

// authorizedUser checks that the body names the authenticated member.
func authorizedUser(r *http.Request, bodyUserID string) (uuid.UUID, error) {
	tokenUser := middleware.UserIDFromContext(r.Context())
	if tokenUser == "" {
		return uuid.Nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "user context missing")
	}
	uid, err := uuid.Parse(bodyUserID)
	if err != nil {
		return uuid.Nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid user id")
	}
	if uid.String() != tokenUser {
		return uuid.Nil, pkgerrors.New(pkgerrors.CodeForbidden, "user id does not match the authenticated member")
	}
	return uid, nil
}
