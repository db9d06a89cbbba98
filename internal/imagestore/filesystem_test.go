package imagestore

import (
	"bytes"
	"context"
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/rs/zerolog"
)

func newTestStore(t *testing.T, maxSize int64) *FilesystemStore {
	t.Helper()

	store, err := NewFilesystemStore(t.TempDir(), maxSize, zerolog.Nop())
	if err != nil {
		t.Fatalf("failed to create store: %v", err)
	}
	return store
}

func TestFilesystemStore_SaveOpenRelease(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t, 1024)

	data := []byte("fake jpeg bytes")
	ref, err := store.Save(ctx, bytes.NewReader(data), int64(len(data)), "image/jpeg")
	if err != nil {
		t.Fatalf("save failed: %v", err)
	}
	if !strings.HasSuffix(ref, ".jpg") {
		t.Errorf("expected .jpg reference, got %q", ref)
	}

	rc, err := store.Open(ctx, ref)
	if err != nil {
		t.Fatalf("open failed: %v", err)
	}
	got, err := io.ReadAll(rc)
	rc.Close()
	if err != nil {
		t.Fatalf("read failed: %v", err)
	}
	if !bytes.Equal(got, data) {
		t.Error("stored bytes do not round-trip")
	}

	if err := store.Release(ctx, ref); err != nil {
		t.Fatalf("release failed: %v", err)
	}
	if _, err := store.Open(ctx, ref); !errors.Is(err, ErrImageNotFound) {
		t.Errorf("expected ErrImageNotFound after release, got %v", err)
	}
}

func TestFilesystemStore_ContentTypes(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t, 1024)

	tests := []struct {
		contentType string
		wantExt     string
	}{
		{"image/jpeg", ".jpg"},
		{"image/png", ".png"},
		{"image/gif", ".gif"},
		{"image/webp", ".webp"},
	}

	for _, tt := range tests {
		ref, err := store.Save(ctx, strings.NewReader("x"), 1, tt.contentType)
		if err != nil {
			t.Errorf("%s: save failed: %v", tt.contentType, err)
			continue
		}
		if !strings.HasSuffix(ref, tt.wantExt) {
			t.Errorf("%s: expected extension %s, got %q", tt.contentType, tt.wantExt, ref)
		}
	}

	for _, contentType := range []string{"application/pdf", "text/html", "image/svg+xml", ""} {
		_, err := store.Save(ctx, strings.NewReader("x"), 1, contentType)
		if !errors.Is(err, ErrUnsupportedType) {
			t.Errorf("%q: expected ErrUnsupportedType, got %v", contentType, err)
		}
	}
}

func TestFilesystemStore_SizeLimit(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t, 16)

	t.Run("declared size over the limit", func(t *testing.T) {
		_, err := store.Save(ctx, strings.NewReader("x"), 17, "image/png")
		if !errors.Is(err, ErrTooLarge) {
			t.Errorf("expected ErrTooLarge, got %v", err)
		}
	})

	t.Run("under-reported size still capped", func(t *testing.T) {
		big := strings.Repeat("a", 64)
		_, err := store.Save(ctx, strings.NewReader(big), 8, "image/png")
		if !errors.Is(err, ErrTooLarge) {
			t.Errorf("expected ErrTooLarge, got %v", err)
		}
	})

	t.Run("exactly at the limit", func(t *testing.T) {
		data := strings.Repeat("a", 16)
		if _, err := store.Save(ctx, strings.NewReader(data), 16, "image/png"); err != nil {
			t.Errorf("unexpected error at the limit: %v", err)
		}
	})
}

func TestFilesystemStore_RefPathTraversal(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t, 1024)

	for _, ref := range []string{"../escape.png", "a/b.png", `a\b.png`, ""} {
		if _, err := store.Open(ctx, ref); !errors.Is(err, ErrImageNotFound) {
			t.Errorf("ref %q: expected ErrImageNotFound, got %v", ref, err)
		}
	}
}

func TestFilesystemStore_ReleaseUnknownRef(t *testing.T) {
	store := newTestStore(t, 1024)

	if err := store.Release(context.Background(), "no-such-image.png"); err != nil {
		t.Errorf("releasing an unknown ref must not fail, got %v", err)
	}
}
