package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"
)

// ErrUnsupportedContentType is returned when a photo upload carries a MIME
// type outside the allowed image set.
var ErrUnsupportedContentType = errors.New("unsupported content type")

type UploadResult struct {
	Key      string
	Location string
	ETag     string
}

// FileUploader abstracts the object storage used for court photos. The only
// implementation talks to Cloudflare R2 through the S3 API; tests use a fake.
type FileUploader interface {
	Upload(ctx context.Context, key string, contentType string, reader io.Reader) (*UploadResult, error)
	Delete(ctx context.Context, key string) error
	GetPublicURL(key string) string
}

var imageExtensions = map[string]string{
	"image/jpeg": ".jpg",
	"image/png":  ".png",
	"image/webp": ".webp",
}

// CourtPhotoKey builds the object key for a court photo. Timestamp in the key
// makes every upload a fresh object, so stale CDN caches never serve the old
// photo after a replacement.
func CourtPhotoKey(courtID, contentType string, now time.Time) (string, error) {
	ext, ok := imageExtensions[contentType]
	if !ok {
		return "", fmt.Errorf("%w: %s", ErrUnsupportedContentType, contentType)
	}
	return fmt.Sprintf("courts/%s/%d%s", courtID, now.UnixNano(), ext), nil
}
