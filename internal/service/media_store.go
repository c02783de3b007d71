package service

import (
	"context"
	"fmt"

	"github.com/plaxtilineas/catalog_api/internal/config"
)

// MediaObject is a validated image ready to be stored.
type MediaObject struct {
	Folder      string
	Name        string // generated public id, without extension
	Extension   string // e.g. ".jpg"
	ContentType string
	Data        []byte
}

// StoredMedia identifies an object held by a MediaStore.
type StoredMedia struct {
	URL string
	ID  string
}

// MediaStore hosts product images.
type MediaStore interface {
	// Name identifies the backend in logs and diagnostics.
	Name() string
	Upload(ctx context.Context, obj MediaObject) (*StoredMedia, error)
	Delete(ctx context.Context, id string) error
	Ping(ctx context.Context) error
}

// NewMediaStore builds the backend selected by cfg.Driver.
func NewMediaStore(ctx context.Context, cfg config.MediaConfig) (MediaStore, error) {
	switch cfg.Driver {
	case "cloudinary":
		return NewCloudinaryStore(cfg.Cloudinary)
	case "s3":
		return NewS3Store(ctx, cfg.S3)
	default:
		return nil, fmt.Errorf("unknown media store %q", cfg.Driver)
	}
}
