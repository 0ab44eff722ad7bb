package application

import (
	"bytes"
	"context"
	"errors"
	"fmt"

	"github.com/gabriel-vasile/mimetype"
	"github.com/google/uuid"

	"github.com/campuseats/dining-reviews/api/internal/dining/domain"
)

const DefaultMaxImageBytes = 5 << 20

// ErrUploadUnavailable is returned when no image host is configured.
var ErrUploadUnavailable = errors.New("image upload is not configured")

// AllowedImageTypes lists the MIME types accepted for review photos.
var AllowedImageTypes = []string{"image/jpeg", "image/png", "image/gif", "image/webp"}

// ImageUpload is a fully buffered upload.
type ImageUpload struct {
	Filename string
	Data     []byte
}

// UploadedImage is the hosted result.
type UploadedImage struct {
	URL         string
	PublicID    string
	ContentType string
	Size        int
}

// ImageService validates review photos and hands them to the image host.
type ImageService struct {
	uploader ImageUploader
	maxBytes int
	newID    func() string
}

// NewImageService returns an ImageService. uploader may be nil, in which case Upload
// reports ErrUploadUnavailable.
func NewImageService(uploader ImageUploader, maxBytes int) *ImageService {
	if maxBytes <= 0 {
		maxBytes = DefaultMaxImageBytes
	}
	return &ImageService{
		uploader: uploader,
		maxBytes: maxBytes,
		newID:    func() string { return "review_" + uuid.NewString() },
	}
}

// MaxBytes is the largest accepted image.
func (s *ImageService) MaxBytes() int {
	return s.maxBytes
}

// Upload sniffs the content type, enforces the size limit and uploads.
func (s *ImageService) Upload(ctx context.Context, in ImageUpload) (*UploadedImage, error) {
	if s.uploader == nil {
		return nil, ErrUploadUnavailable
	}
	if len(in.Data) == 0 {
		return nil, &domain.ValidationError{Field: "image", Message: "file is empty"}
	}
	if len(in.Data) > s.maxBytes {
		return nil, &domain.ValidationError{Field: "image", Message: fmt.Sprintf("file exceeds %d bytes", s.maxBytes)}
	}

	detected := mimetype.Detect(in.Data)
	if !mimetype.EqualsAny(detected.String(), AllowedImageTypes...) {
		return nil, &domain.ValidationError{Field: "image", Message: fmt.Sprintf("unsupported file type %s", detected.String())}
	}

	publicID := s.newID()
	url, err := s.uploader.Upload(ctx, bytes.NewReader(in.Data), publicID)
	if err != nil {
		return nil, fmt.Errorf("upload image %s: %w", publicID, err)
	}
	return &UploadedImage{
		URL:         url,
		PublicID:    publicID,
		ContentType: detected.String(),
		Size:        len(in.Data),
	}, nil
}
