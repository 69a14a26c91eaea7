package admin

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/claydohscope/storefront/internal/client"
	"github.com/claydohscope/storefront/internal/domain"
	pkgerrors "github.com/claydohscope/storefront/pkg/errors"
)

// MediaAPI is the media surface used by the media view
type MediaAPI interface {
	CreateMedia(ctx context.Context, in client.MediaInput) (*domain.Media, error)
	ListMedia(ctx context.Context) ([]domain.Media, error)
}

// MediaForm is the upload-media form. Poster is only used for videos.
type MediaForm struct {
	Title   string
	Type    domain.MediaType
	Caption string
	File    *File
	Poster  *File
}

type MediaView struct {
	api      MediaAPI
	uploader Uploader
	inflight

	mu    sync.RWMutex
	media []domain.Media
}

func NewMediaView(api MediaAPI, uploader Uploader) *MediaView {
	return &MediaView{api: api, uploader: uploader}
}

// Refresh refetches all media, newest first
func (v *MediaView) Refresh(ctx context.Context) ([]domain.Media, error) {
	media, err := v.api.ListMedia(ctx)
	if err != nil {
		return nil, err
	}
	v.mu.Lock()
	v.media = media
	v.mu.Unlock()
	return media, nil
}

func (v *MediaView) Media() []domain.Media {
	v.mu.RLock()
	defer v.mu.RUnlock()
	out := make([]domain.Media, len(v.media))
	copy(out, v.media)
	return out
}

func (form MediaForm) validate() error {
	fields := map[string]string{}
	if form.File == nil {
		return &pkgerrors.ErrValidation{Message: "Please select a file to upload", Fields: map[string]string{"file": "required"}}
	}
	if strings.TrimSpace(form.Title) == "" {
		fields["title"] = "required"
	}
	if !form.Type.IsValid() {
		fields["type"] = "must be one of video, gif, image"
	}
	if len(fields) > 0 {
		return &pkgerrors.ErrValidation{Fields: fields}
	}
	return nil
}

// Add uploads the file (and a video's poster), inserts the media record and
// refetches the list. Any failed upload aborts before the insert.
func (v *MediaView) Add(ctx context.Context, form MediaForm) (*domain.Media, error) {
	if err := form.validate(); err != nil {
		return nil, err
	}
	if err := v.begin(); err != nil {
		return nil, err
	}
	defer v.end()

	src, err := v.uploader.Upload(ctx, domain.MediaBucket(form.Type), form.File.Name, form.File.Reader)
	if err != nil {
		return nil, fmt.Errorf("media upload failed: %w", err)
	}

	in := client.MediaInput{
		Title: strings.TrimSpace(form.Title),
		Type:  form.Type,
		Src:   src,
	}
	if c := strings.TrimSpace(form.Caption); c != "" {
		in.Caption = &c
	}
	if form.Type == domain.MediaTypeVideo && form.Poster != nil {
		poster, err := v.uploader.Upload(ctx, domain.BucketMediaPosters, form.Poster.Name, form.Poster.Reader)
		if err != nil {
			return nil, fmt.Errorf("poster upload failed: %w", err)
		}
		in.Poster = &poster
	}

	media, err := v.api.CreateMedia(ctx, in)
	if err != nil {
		return nil, err
	}

	if _, err := v.Refresh(ctx); err != nil {
		return media, fmt.Errorf("media added but list refresh failed: %w", err)
	}
	return media, nil
}
