package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image/jpeg"
	"io"
	"net/http"
	"time"

	"github.com/disintegration/imaging"
	"github.com/javajolt/kava/kava-backend/internal/repository/storage"
	"github.com/rs/zerolog/log"
)

const (
	// MaxAvatarSize caps the picture download
	MaxAvatarSize = 5 * 1024 * 1024
	// AvatarSize is the square thumbnail edge in pixels
	AvatarSize = 200
	// avatarJPEGQuality for the stored thumbnail
	avatarJPEGQuality = 85
)

var (
	ErrAvatarTooLarge     = errors.New("avatar exceeds maximum size")
	ErrAvatarFetchFailed  = errors.New("avatar could not be fetched")
	ErrInvalidAvatarImage = errors.New("invalid avatar image data")
)

// AvatarService mirrors the profile pictures of external-identity users
// into object storage as fixed-size JPEG thumbnails. Everything here is
// best effort: sign-in never fails because an avatar did.
type AvatarService struct {
	storage storage.AvatarRepository
	client  *http.Client
}

// NewAvatarService creates a new AvatarService. storage may be nil, which
// disables the service.
func NewAvatarService(repo storage.AvatarRepository) *AvatarService {
	return &AvatarService{
		storage: repo,
		client:  &http.Client{Timeout: 10 * time.Second},
	}
}

// IsEnabled indicates whether avatar storage is configured
func (s *AvatarService) IsEnabled() bool {
	return s != nil && s.storage != nil
}

// SyncAsync mirrors the picture in the background, logging failures only
func (s *AvatarService) SyncAsync(userID, pictureURL string) {
	if !s.IsEnabled() || pictureURL == "" {
		return
	}

	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		if err := s.Sync(ctx, userID, pictureURL); err != nil {
			log.Warn().Err(err).Str("user_id", userID).Msg("Avatar sync failed")
		}
	}()
}

// Sync downloads the picture, resizes it to a square thumbnail and uploads
// it as avatars/<userID>.jpg
func (s *AvatarService) Sync(ctx context.Context, userID, pictureURL string) error {
	if !s.IsEnabled() {
		return nil
	}

	data, err := s.fetch(ctx, pictureURL)
	if err != nil {
		return err
	}

	img, err := imaging.Decode(bytes.NewReader(data))
	if err != nil {
		return ErrInvalidAvatarImage
	}

	thumb := imaging.Fill(img, AvatarSize, AvatarSize, imaging.Center, imaging.Lanczos)

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, thumb, &jpeg.Options{Quality: avatarJPEGQuality}); err != nil {
		return fmt.Errorf("encoding avatar: %w", err)
	}

	objectPath := fmt.Sprintf("avatars/%s.jpg", userID)
	if _, err := s.storage.Upload(ctx, objectPath, &buf, "image/jpeg", int64(buf.Len())); err != nil {
		return fmt.Errorf("uploading avatar: %w", err)
	}

	log.Debug().Str("user_id", userID).Str("path", objectPath).Msg("Avatar stored")
	return nil
}

// Remove deletes the stored avatar. Used when a signed-in identity no
// longer carries a picture, so the mirror does not serve a stale one.
func (s *AvatarService) Remove(ctx context.Context, userID string) error {
	if !s.IsEnabled() {
		return nil
	}

	objectPath := fmt.Sprintf("avatars/%s.jpg", userID)
	if err := s.storage.Delete(ctx, objectPath); err != nil {
		return fmt.Errorf("removing avatar: %w", err)
	}

	log.Debug().Str("user_id", userID).Str("path", objectPath).Msg("Avatar removed")
	return nil
}

// URL returns the storage URL for a user's avatar, or empty when disabled
func (s *AvatarService) URL(userID string) string {
	if !s.IsEnabled() {
		return ""
	}
	return s.storage.GenerateURL(fmt.Sprintf("avatars/%s.jpg", userID))
}

func (s *AvatarService) fetch(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, ErrAvatarFetchFailed
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, ErrAvatarFetchFailed
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, ErrAvatarFetchFailed
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, MaxAvatarSize+1))
	if err != nil {
		return nil, ErrAvatarFetchFailed
	}
	if len(data) > MaxAvatarSize {
		return nil, ErrAvatarTooLarge
	}
	return data, nil
}
