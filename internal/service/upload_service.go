package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/gabriel-vasile/mimetype"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"

	"github.com/plaxtilineas/catalog_api/internal/config"
	"github.com/plaxtilineas/catalog_api/internal/utils"
)

// Content types accepted for product images.
var allowedImageTypes = []string{"image/jpeg", "image/png", "image/webp"}

// ImageFile is an image received from a client, fully read into memory.
type ImageFile struct {
	Filename string
	Data     []byte
}

// UploadedImage is an image stored by the MediaStore.
type UploadedImage struct {
	URL          string
	ID           string
	OriginalName string
}

// ImageUploadService validates and stores product images.
type ImageUploadService struct {
	store    MediaStore
	folder   string
	maxFiles int
	maxBytes int64
	timeout  time.Duration
	now      func() time.Time
}

// NewImageUploadService creates an ImageUploadService bounded by cfg.
func NewImageUploadService(store MediaStore, cfg config.UploadConfig) *ImageUploadService {
	return &ImageUploadService{
		store:    store,
		folder:   cfg.Folder,
		maxFiles: cfg.MaxFiles,
		maxBytes: cfg.MaxBytes,
		timeout:  cfg.Timeout,
		now:      time.Now,
	}
}

// MaxFiles is the largest batch accepted.
func (s *ImageUploadService) MaxFiles() int { return s.maxFiles }

// MaxBytes is the largest single file accepted.
func (s *ImageUploadService) MaxBytes() int64 { return s.maxBytes }

// Prepare checks count, size and content type of every file and builds the
// objects to store. No network call happens here.
func (s *ImageUploadService) Prepare(files []ImageFile) ([]MediaObject, error) {
	if len(files) > s.maxFiles {
		return nil, fmt.Errorf("%w: at most %d images per request", utils.ErrUploadRejected, s.maxFiles)
	}

	objects := make([]MediaObject, 0, len(files))
	for _, f := range files {
		if len(f.Data) == 0 {
			return nil, fmt.Errorf("%w: %s is empty", utils.ErrUploadRejected, f.Filename)
		}
		if int64(len(f.Data)) > s.maxBytes {
			return nil, fmt.Errorf("%w: %s exceeds %d bytes", utils.ErrUploadRejected, f.Filename, s.maxBytes)
		}
		mt := mimetype.Detect(f.Data)
		if !mimetype.EqualsAny(mt.String(), allowedImageTypes...) {
			return nil, fmt.Errorf("%w: %s has unsupported type %s", utils.ErrUploadRejected, f.Filename, mt.String())
		}
		objects = append(objects, MediaObject{
			Folder:      s.folder,
			Name:        fmt.Sprintf("%d-%s", s.now().UnixMilli(), uuid.NewString()[:8]),
			Extension:   mt.Extension(),
			ContentType: mt.String(),
			Data:        f.Data,
		})
	}
	return objects, nil
}

// UploadAll validates files and stores them concurrently. Any failure fails
// the batch; images already stored by the batch are discarded before returning.
func (s *ImageUploadService) UploadAll(ctx context.Context, files []ImageFile) ([]UploadedImage, error) {
	if len(files) == 0 {
		return nil, nil
	}
	objects, err := s.Prepare(files)
	if err != nil {
		return nil, err
	}

	results := make([]*UploadedImage, len(objects))
	g, gctx := errgroup.WithContext(ctx)
	for i := range objects {
		i := i
		g.Go(func() error {
			stored, err := s.uploadOne(gctx, objects[i])
			if err != nil {
				return fmt.Errorf("%s: %w", files[i].Filename, err)
			}
			results[i] = &UploadedImage{URL: stored.URL, ID: stored.ID, OriginalName: files[i].Filename}
			return nil
		})
	}

	waitErr := g.Wait()
	uploaded := make([]UploadedImage, 0, len(results))
	for _, r := range results {
		if r != nil {
			uploaded = append(uploaded, *r)
		}
	}
	if waitErr != nil {
		log.Error().Err(waitErr).Int("stored", len(uploaded)).Msg("Image batch failed")
		s.Discard(ctx, uploaded)
		return nil, waitErr
	}

	log.Info().Int("count", len(uploaded)).Str("store", s.store.Name()).Msg("Images uploaded")
	return uploaded, nil
}

func (s *ImageUploadService) uploadOne(ctx context.Context, obj MediaObject) (*StoredMedia, error) {
	uctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	stored, err := s.store.Upload(uctx, obj)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) || errors.Is(uctx.Err(), context.DeadlineExceeded) {
			return nil, fmt.Errorf("%w: no response within %s", utils.ErrUploadTimeout, s.timeout)
		}
		return nil, fmt.Errorf("%w: %v", utils.ErrMediaStore, err)
	}
	return stored, nil
}

// Discard deletes stored images on a best-effort basis. It keeps running after
// ctx is cancelled so a failed request does not leave orphans behind.
func (s *ImageUploadService) Discard(ctx context.Context, images []UploadedImage) {
	if len(images) == 0 {
		return
	}
	dctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.timeout)
	defer cancel()

	for _, img := range images {
		if err := s.store.Delete(dctx, img.ID); err != nil {
			log.Warn().Err(err).Str("id", img.ID).Msg("Failed to discard stored image")
		}
	}
}
