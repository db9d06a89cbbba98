// Package imagestore persists product images. Images are opaque to the
// rest of the system: products carry only a reference string, and the
// store resolves it to bytes.
package imagestore

import (
	"context"
	"errors"
	"io"
)

// Image validation errors
var (
	// ErrUnsupportedType indicates the upload is not an accepted image format.
	ErrUnsupportedType = errors.New("unsupported image type: must be jpeg, png, gif or webp")

	// ErrTooLarge indicates the upload exceeds the configured size limit.
	ErrTooLarge = errors.New("image too large")

	// ErrImageNotFound indicates no image exists for the reference.
	ErrImageNotFound = errors.New("image not found")
)

// allowedContentTypes maps accepted MIME types to file extensions.
var allowedContentTypes = map[string]string{
	"image/jpeg": ".jpg",
	"image/png":  ".png",
	"image/gif":  ".gif",
	"image/webp": ".webp",
}

// ExtensionFor returns the file extension for an accepted content type,
// or ErrUnsupportedType.
func ExtensionFor(contentType string) (string, error) {
	ext, ok := allowedContentTypes[contentType]
	if !ok {
		return "", ErrUnsupportedType
	}
	return ext, nil
}

// Store persists product images under opaque references.
type Store interface {
	// Save stores an image and returns its reference. The content type
	// must be an accepted image format and size must not exceed the
	// configured limit.
	Save(ctx context.Context, reader io.Reader, size int64, contentType string) (ref string, err error)

	// Open returns the image bytes for a reference. The caller must
	// close the reader.
	Open(ctx context.Context, ref string) (io.ReadCloser, error)

	// Release removes the image for a reference. Releasing an unknown
	// reference is not an error; the record deletion it accompanies
	// must not fail over a missing file.
	Release(ctx context.Context, ref string) error
}
