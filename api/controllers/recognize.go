package controllers

import (
	"net/http"

	"github.com/cellarline/cellarline-backend/api/responses"
	"github.com/cellarline/cellarline-backend/api/validators"
	"github.com/cellarline/cellarline-backend/internal/vision"
	pkgerrors "github.com/cellarline/cellarline-backend/pkg/errors"
	"github.com/cellarline/cellarline-backend/pkg/logger"
)

type recognizeRequest struct {
	ImageURL string `json:"image_url" validate:"required,url"`
}

// ItemsRecognize extracts bottle details from an uploaded label photo.
func ItemsRecognize(svc *vision.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "vision service unavailable"))
			return
		}

		if _, err := currentUser(r.Context()); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload recognizeRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		recognized, err := svc.Recognize(r.Context(), payload.ImageURL)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, recognized)
	}
}
