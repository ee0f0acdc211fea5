package service

import (
	"bytes"
	"context"
	"image"
	"image/color"
	"image/png"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/javajolt/kava/kava-backend/internal/testutil"
)

func pngFixture(t *testing.T, w, h int) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for x := 0; x < w; x++ {
		for y := 0; y < h; y++ {
			img.Set(x, y, color.RGBA{R: uint8(x % 256), G: uint8(y % 256), A: 255})
		}
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("encoding fixture: %v", err)
	}
	return buf.Bytes()
}

func TestAvatarRemove(t *testing.T) {
	picture := pngFixture(t, 300, 300)
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "image/png")
		w.Write(picture)
	}))
	defer server.Close()

	repo := testutil.NewMockAvatarRepository()
	svc := NewAvatarService(repo)

	if err := svc.Sync(context.Background(), "demo-example-com", server.URL); err != nil {
		t.Fatalf("Sync failed: %v", err)
	}
	if _, ok := repo.Get("avatars/demo-example-com.jpg"); !ok {
		t.Fatal("Expected avatar object to be stored")
	}

	if err := svc.Remove(context.Background(), "demo-example-com"); err != nil {
		t.Fatalf("Remove failed: %v", err)
	}
	if _, ok := repo.Get("avatars/demo-example-com.jpg"); ok {
		t.Error("Expected avatar object to be gone after Remove")
	}
}

func TestAvatarRemove_Disabled(t *testing.T) {
	svc := NewAvatarService(nil)
	if err := svc.Remove(context.Background(), "anyone"); err != nil {
		t.Errorf("Expected nil from disabled service, got %v", err)
	}
}

func TestAvatarSync(t *testing.T) {
	picture := pngFixture(t, 400, 300)
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "image/png")
		w.Write(picture)
	}))
	defer server.Close()

	repo := testutil.NewMockAvatarRepository()
	svc := NewAvatarService(repo)

	if err := svc.Sync(context.Background(), "demo-example-com", server.URL); err != nil {
		t.Fatalf("Sync failed: %v", err)
	}

	stored, ok := repo.Get("avatars/demo-example-com.jpg")
	if !ok {
		t.Fatal("Expected avatar object to be stored")
	}

	thumb, _, err := image.Decode(bytes.NewReader(stored))
	if err != nil {
		t.Fatalf("Stored avatar is not a decodable image: %v", err)
	}
	bounds := thumb.Bounds()
	if bounds.Dx() != AvatarSize || bounds.Dy() != AvatarSize {
		t.Errorf("Expected %dx%d thumbnail, got %dx%d", AvatarSize, AvatarSize, bounds.Dx(), bounds.Dy())
	}
}

func TestAvatarSync_FetchFailure(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer server.Close()

	svc := NewAvatarService(testutil.NewMockAvatarRepository())
	if err := svc.Sync(context.Background(), "u1", server.URL); err != ErrAvatarFetchFailed {
		t.Errorf("Expected ErrAvatarFetchFailed, got %v", err)
	}
}

func TestAvatarSync_InvalidImage(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("not an image"))
	}))
	defer server.Close()

	svc := NewAvatarService(testutil.NewMockAvatarRepository())
	if err := svc.Sync(context.Background(), "u1", server.URL); err != ErrInvalidAvatarImage {
		t.Errorf("Expected ErrInvalidAvatarImage, got %v", err)
	}
}

func TestAvatarService_Disabled(t *testing.T) {
	svc := NewAvatarService(nil)
	if svc.IsEnabled() {
		t.Error("Expected service without storage to be disabled")
	}
	if err := svc.Sync(context.Background(), "u1", "http://example.com/p.png"); err != nil {
		t.Errorf("Disabled sync must be a no-op, got %v", err)
	}
	if url := svc.URL("u1"); url != "" {
		t.Errorf("Expected empty URL when disabled, got %q", url)
	}
}
