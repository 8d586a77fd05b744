package controllers

import (
	"net/http"

	"github.com/merrymatch/membership-backend/api/responses"
	"github.com/merrymatch/membership-backend/internal/catalog"
	pkgerrors "github.com/merrymatch/membership-backend/pkg/errors"
	"github.com/merrymatch/membership-backend/pkg/logger"
)

// PackagesList returns the membership catalog in display order.
func PackagesList(svc catalog.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "catalog service unavailable"))
			return
		}

		packages, err := svc.List(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		if packages == nil {
			packages = []catalog.PackageDTO{}
		}

		responses.WriteSuccess(w, packages)
	}
}
