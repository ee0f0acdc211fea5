package storage

import (
	"context"
	"io"
)

// AvatarRepository defines the interface for avatar object storage
type AvatarRepository interface {
	Upload(ctx context.Context, objectPath string, data io.Reader, contentType string, size int64) (string, error)
	Delete(ctx context.Context, objectPath string) error
	GenerateURL(objectPath string) string
}
