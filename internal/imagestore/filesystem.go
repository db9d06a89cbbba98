package imagestore

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// FilesystemStore stores images as files under a data directory.
// References are "<uuid><ext>" and map directly to file names.
type FilesystemStore struct {
	dataDir string
	maxSize int64
	logger  zerolog.Logger
}

// NewFilesystemStore creates the data directory if needed and returns
// a filesystem-backed image store.
func NewFilesystemStore(dataDir string, maxSize int64, logger zerolog.Logger) (*FilesystemStore, error) {
	if err := os.MkdirAll(dataDir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create image directory: %w", err)
	}

	return &FilesystemStore{
		dataDir: dataDir,
		maxSize: maxSize,
		logger:  logger.With().Str("component", "imagestore").Logger(),
	}, nil
}

// refPath resolves a reference to a path inside the data directory.
// Path separators in the reference are rejected.
func (s *FilesystemStore) refPath(ref string) (string, error) {
	if ref == "" || strings.ContainsAny(ref, `/\`) || ref != filepath.Base(ref) {
		return "", ErrImageNotFound
	}
	return filepath.Join(s.dataDir, ref), nil
}

// Save stores an image and returns its reference.
func (s *FilesystemStore) Save(ctx context.Context, reader io.Reader, size int64, contentType string) (string, error) {
	ext, err := ExtensionFor(contentType)
	if err != nil {
		return "", err
	}
	if size > s.maxSize {
		return "", fmt.Errorf("%w: %d bytes exceeds limit of %d", ErrTooLarge, size, s.maxSize)
	}

	ref := uuid.New().String() + ext
	path := filepath.Join(s.dataDir, ref)

	file, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		return "", fmt.Errorf("failed to create image file: %w", err)
	}

	// LimitReader guards against callers under-reporting size.
	written, err := io.Copy(file, io.LimitReader(reader, s.maxSize+1))
	if cerr := file.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		_ = os.Remove(path)
		return "", fmt.Errorf("failed to write image: %w", err)
	}
	if written > s.maxSize {
		_ = os.Remove(path)
		return "", fmt.Errorf("%w: exceeds limit of %d bytes", ErrTooLarge, s.maxSize)
	}

	s.logger.Debug().Str("ref", ref).Int64("size", written).Msg("image stored")
	return ref, nil
}

// Open returns the image bytes for a reference.
func (s *FilesystemStore) Open(ctx context.Context, ref string) (io.ReadCloser, error) {
	path, err := s.refPath(ref)
	if err != nil {
		return nil, err
	}

	file, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrImageNotFound
		}
		return nil, fmt.Errorf("failed to open image: %w", err)
	}
	return file, nil
}

// Release removes the image for a reference.
func (s *FilesystemStore) Release(ctx context.Context, ref string) error {
	path, err := s.refPath(ref)
	if err != nil {
		return nil
	}

	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to remove image: %w", err)
	}
	return nil
}

// Ensure FilesystemStore implements Store.
var _ Store = (*FilesystemStore)(nil)
