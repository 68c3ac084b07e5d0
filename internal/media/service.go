// Package media stores label photos in Cloudinary.
package media

import (
	"context"
	"fmt"
	"io"

	"github.com/cloudinary/cloudinary-go/v2"
	"github.com/cloudinary/cloudinary-go/v2/api/uploader"

	"github.com/cellarline/cellarline-backend/pkg/config"
	apperrors "github.com/cellarline/cellarline-backend/pkg/errors"
	"github.com/cellarline/cellarline-backend/pkg/logger"
)

// UploadResult describes a stored label image.
type UploadResult struct {
	URL      string `json:"url"`
	PublicID string `json:"public_id"`
	Width    int    `json:"width"`
	Height   int    `json:"height"`
}

type imageUploader interface {
	Upload(ctx context.Context, file interface{}, params uploader.UploadParams) (*uploader.UploadResult, error)
	Destroy(ctx context.Context, params uploader.DestroyParams) (*uploader.DestroyResult, error)
}

// ServiceParams configure the media service.
type ServiceParams struct {
	Logger   *logger.Logger
	Uploader imageUploader
	Folder   string
}

// Service wraps the Cloudinary upload API.
type Service struct {
	logg     *logger.Logger
	uploader imageUploader
	folder   string
}

// NewService builds a media service from config.
func NewService(logg *logger.Logger, cfg config.CloudinaryConfig) (*Service, error) {
	if cfg.CloudName == "" || cfg.APIKey == "" || cfg.APISecret == "" {
		return nil, fmt.Errorf("cloudinary credentials are required")
	}
	cld, err := cloudinary.NewFromParams(cfg.CloudName, cfg.APIKey, cfg.APISecret)
	if err != nil {
		return nil, fmt.Errorf("creating cloudinary client: %w", err)
	}
	return NewServiceWithUploader(ServiceParams{
		Logger:   logg,
		Uploader: &cld.Upload,
		Folder:   cfg.Folder,
	})
}

// NewServiceWithUploader builds a media service around an existing uploader.
func NewServiceWithUploader(params ServiceParams) (*Service, error) {
	if params.Logger == nil {
		return nil, fmt.Errorf("logger required")
	}
	if params.Uploader == nil {
		return nil, fmt.Errorf("uploader required")
	}
	return &Service{logg: params.Logger, uploader: params.Uploader, folder: params.Folder}, nil
}

// UploadLabel stores a label photo and returns its public URL and ID.
func (s *Service) UploadLabel(ctx context.Context, file io.Reader) (*UploadResult, error) {
	resp, err := s.uploader.Upload(ctx, file, uploader.UploadParams{
		Folder:         s.folder,
		ResourceType:   "image",
		UniqueFilename: boolPtr(true),
	})
	if err != nil {
		return nil, apperrors.Wrap(apperrors.CodeDependency, err, "image upload failed")
	}
	if resp.Error.Message != "" {
		return nil, apperrors.New(apperrors.CodeDependency, "image upload rejected: "+resp.Error.Message)
	}
	return &UploadResult{
		URL:      resp.SecureURL,
		PublicID: resp.PublicID,
		Width:    resp.Width,
		Height:   resp.Height,
	}, nil
}

// DeleteLabel removes a stored label photo. Missing images are not an error.
func (s *Service) DeleteLabel(ctx context.Context, publicID string) error {
	if publicID == "" {
		return nil
	}
	if _, err := s.uploader.Destroy(ctx, uploader.DestroyParams{PublicID: publicID}); err != nil {
		return apperrors.Wrap(apperrors.CodeDependency, err, "image delete failed")
	}
	return nil
}

func boolPtr(b bool) *bool { return &b }
