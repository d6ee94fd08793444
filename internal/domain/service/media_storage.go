package service

import (
	"context"
	"io"
	"time"
)

// MediaStorage is the boundary to the object store holding weekly-log photos,
// community media and avatars. Storage mechanics (retries, multipart, CDN)
// live behind this interface.
type MediaStorage interface {
	// Upload stores an object and returns nothing but the error; the caller
	// chooses the object name.
	Upload(ctx context.Context, bucket, objectName string, body io.Reader, size int64, contentType string) error

	// SignedURL returns a time-limited download link for a private object.
	SignedURL(ctx context.Context, bucket, objectName string, expiry time.Duration) (string, error)

	// PublicURL returns the stable link for an object in a public bucket.
	PublicURL(bucket, objectName string) string
}
