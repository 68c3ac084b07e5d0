package media

import (
	"context"
	"fmt"
	"io"
	"strings"
	"testing"

	"github.com/cloudinary/cloudinary-go/v2/api/uploader"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/cellarline/cellarline-backend/pkg/errors"
	"github.com/cellarline/cellarline-backend/pkg/logger"
)

type fakeUploader struct {
	uploadResp  *uploader.UploadResult
	uploadErr   error
	destroyed   []string
	destroyErr  error
	lastParams  uploader.UploadParams
	uploadCalls int
}

func (f *fakeUploader) Upload(ctx context.Context, file interface{}, params uploader.UploadParams) (*uploader.UploadResult, error) {
	f.uploadCalls++
	f.lastParams = params
	if f.uploadErr != nil {
		return nil, f.uploadErr
	}
	return f.uploadResp, nil
}

func (f *fakeUploader) Destroy(ctx context.Context, params uploader.DestroyParams) (*uploader.DestroyResult, error) {
	if f.destroyErr != nil {
		return nil, f.destroyErr
	}
	f.destroyed = append(f.destroyed, params.PublicID)
	return &uploader.DestroyResult{Result: "ok"}, nil
}

func newMediaTest(t *testing.T, fake *fakeUploader) *Service {
	t.Helper()
	svc, err := NewServiceWithUploader(ServiceParams{
		Logger:   logger.New(logger.Options{ServiceName: "test", Output: io.Discard}),
		Uploader: fake,
		Folder:   "cellarline/labels",
	})
	require.NoError(t, err)
	return svc
}

func TestUploadLabel(t *testing.T) {
	fake := &fakeUploader{uploadResp: &uploader.UploadResult{
		SecureURL: "https://res.cloudinary.com/demo/label.jpg",
		PublicID:  "cellarline/labels/abc",
		Width:     800,
		Height:    600,
	}}
	svc := newMediaTest(t, fake)

	got, err := svc.UploadLabel(context.Background(), strings.NewReader("img-bytes"))
	require.NoError(t, err)
	assert.Equal(t, "https://res.cloudinary.com/demo/label.jpg", got.URL)
	assert.Equal(t, "cellarline/labels/abc", got.PublicID)
	assert.Equal(t, "cellarline/labels", fake.lastParams.Folder)
}

func TestUploadLabel_ErrorMapsToDependency(t *testing.T) {
	fake := &fakeUploader{uploadErr: fmt.Errorf("network down")}
	svc := newMediaTest(t, fake)

	_, err := svc.UploadLabel(context.Background(), strings.NewReader("img"))
	require.Error(t, err)
	typed := apperrors.As(err)
	require.NotNil(t, typed)
	assert.Equal(t, apperrors.CodeDependency, typed.Code())
}

func TestDeleteLabel(t *testing.T) {
	fake := &fakeUploader{}
	svc := newMediaTest(t, fake)

	require.NoError(t, svc.DeleteLabel(context.Background(), "cellarline/labels/abc"))
	assert.Equal(t, []string{"cellarline/labels/abc"}, fake.destroyed)
}

func TestDeleteLabel_EmptyIDIsNoop(t *testing.T) {
	fake := &fakeUploader{}
	svc := newMediaTest(t, fake)

	require.NoError(t, svc.DeleteLabel(context.Background(), ""))
	assert.Empty(t, fake.destroyed)
}
