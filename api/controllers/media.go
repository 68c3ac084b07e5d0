package controllers

import (
	"net/http"

	"github.com/cellarline/cellarline-backend/api/responses"
	"github.com/cellarline/cellarline-backend/internal/media"
	pkgerrors "github.com/cellarline/cellarline-backend/pkg/errors"
	"github.com/cellarline/cellarline-backend/pkg/logger"
)

const maxLabelUploadBytes = 10 << 20

// LabelUpload accepts a multipart label photo and stores it in the media CDN.
func LabelUpload(svc *media.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "media service unavailable"))
			return
		}

		if _, err := currentUser(r.Context()); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		r.Body = http.MaxBytesReader(w, r.Body, maxLabelUploadBytes)
		if err := r.ParseMultipartForm(maxLabelUploadBytes); err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid multipart body"))
			return
		}

		file, _, err := r.FormFile("file")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "file field is required"))
			return
		}
		defer file.Close()

		result, err := svc.UploadLabel(r.Context(), file)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccessStatus(w, http.StatusCreated, result)
	}
}
