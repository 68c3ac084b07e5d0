package controllers

import (
	"net/http"

	"github.com/cellarline/cellarline-backend/api/responses"
	"github.com/cellarline/cellarline-backend/api/validators"
	"github.com/cellarline/cellarline-backend/internal/cellars"
	pkgerrors "github.com/cellarline/cellarline-backend/pkg/errors"
	"github.com/cellarline/cellarline-backend/pkg/logger"
)

// CellarsList returns all cellars belonging to the authenticated user.
func CellarsList(svc *cellars.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "cellar service unavailable"))
			return
		}

		user, err := currentUser(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		list, err := svc.List(r.Context(), user.ID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, list)
	}
}

// CellarsCreate adds a new cellar for the authenticated user.
func CellarsCreate(svc *cellars.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "cellar service unavailable"))
			return
		}

		user, err := currentUser(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload cellars.CreateCellarDTO
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		created, err := svc.Create(r.Context(), user.ID, payload)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccessStatus(w, http.StatusCreated, created)
	}
}

// CellarsGet returns one cellar by ID.
func CellarsGet(svc *cellars.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "cellar service unavailable"))
			return
		}

		user, err := currentUser(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		cellarID, err := validators.URLParamUUID(r, "cellarId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		cellar, err := svc.Get(r.Context(), user.ID, cellarID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, cellar)
	}
}

// CellarsUpdate adjusts the mutable fields of a cellar.
func CellarsUpdate(svc *cellars.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "cellar service unavailable"))
			return
		}

		user, err := currentUser(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		cellarID, err := validators.URLParamUUID(r, "cellarId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload cellars.UpdateCellarDTO
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		updated, err := svc.Update(r.Context(), user.ID, cellarID, payload)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, updated)
	}
}

// CellarsDelete removes a cellar.
func CellarsDelete(svc *cellars.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "cellar service unavailable"))
			return
		}

		user, err := currentUser(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		cellarID, err := validators.URLParamUUID(r, "cellarId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		if err := svc.Delete(r.Context(), user.ID, cellarID); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, nil)
	}
}

// CellarsUsage reports occupied space for one of the user's cellars.
func CellarsUsage(svc *cellars.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "cellar service unavailable"))
			return
		}

		user, err := currentUser(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		cellarID, err := validators.URLParamUUID(r, "cellarId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		usage, err := svc.UsageFor(r.Context(), user.ID, cellarID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, usage)
	}
}
