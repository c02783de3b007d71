package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"

	"github.com/cloudinary/cloudinary-go/v2"
	"github.com/cloudinary/cloudinary-go/v2/api"
	"github.com/cloudinary/cloudinary-go/v2/api/uploader"
	"github.com/rs/zerolog/log"

	"github.com/plaxtilineas/catalog_api/internal/config"
)

// Formats Cloudinary accepts for product images.
var cloudinaryFormats = api.CldAPIArray{"jpg", "jpeg", "png", "webp", "gif"}

// Images larger than 800x600 are scaled down, keeping aspect ratio.
const cloudinaryTransformation = "c_limit,w_800,h_600"

// CloudinaryStore stores images on Cloudinary.
type CloudinaryStore struct {
	cld *cloudinary.Cloudinary
}

// NewCloudinaryStore creates a CloudinaryStore from a CLOUDINARY_URL or explicit credentials.
func NewCloudinaryStore(cfg config.CloudinaryConfig) (*CloudinaryStore, error) {
	var (
		cld *cloudinary.Cloudinary
		err error
	)
	switch {
	case cfg.URL != "":
		cld, err = cloudinary.NewFromURL(cfg.URL)
	case cfg.CloudName != "" && cfg.APIKey != "" && cfg.APISecret != "":
		cld, err = cloudinary.NewFromParams(cfg.CloudName, cfg.APIKey, cfg.APISecret)
	default:
		return nil, errors.New("cloudinary credentials not configured")
	}
	if err != nil {
		return nil, fmt.Errorf("cloudinary init: %w", err)
	}
	return &CloudinaryStore{cld: cld}, nil
}

// Name implements MediaStore.
func (s *CloudinaryStore) Name() string { return "cloudinary" }

// Upload implements MediaStore.
func (s *CloudinaryStore) Upload(ctx context.Context, obj MediaObject) (*StoredMedia, error) {
	res, err := s.cld.Upload.Upload(ctx, bytes.NewReader(obj.Data), uploader.UploadParams{
		Folder:         obj.Folder,
		PublicID:       obj.Name,
		AllowedFormats: cloudinaryFormats,
		Transformation: cloudinaryTransformation,
	})
	if err != nil {
		return nil, err
	}
	if res.Error.Message != "" {
		return nil, errors.New(res.Error.Message)
	}
	log.Debug().Str("public_id", res.PublicID).Msg("Image stored on Cloudinary")
	return &StoredMedia{URL: res.SecureURL, ID: res.PublicID}, nil
}

// Delete implements MediaStore.
func (s *CloudinaryStore) Delete(ctx context.Context, id string) error {
	res, err := s.cld.Upload.Destroy(ctx, uploader.DestroyParams{PublicID: id})
	if err != nil {
		return err
	}
	if res.Error.Message != "" {
		return errors.New(res.Error.Message)
	}
	return nil
}

// Ping implements MediaStore.
func (s *CloudinaryStore) Ping(ctx context.Context) error {
	res, err := s.cld.Admin.Ping(ctx)
	if err != nil {
		return err
	}
	if res.Error.Message != "" {
		return errors.New(res.Error.Message)
	}
	return nil
}
