package service

import (
	"bytes"
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/plaxtilineas/catalog_api/internal/config"
	"github.com/plaxtilineas/catalog_api/internal/utils"
)

var (
	pngBytes  = append([]byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR"), bytes.Repeat([]byte{0}, 32)...)
	jpegBytes = append([]byte{0xFF, 0xD8, 0xFF, 0xE0, 0x00, 0x10, 'J', 'F', 'I', 'F', 0x00}, bytes.Repeat([]byte{0}, 32)...)
)

func uploadConfig() config.UploadConfig {
	return config.UploadConfig{Folder: "productos", MaxFiles: 5, MaxBytes: 1024, Timeout: time.Second}
}

func TestImageUploadService_UploadAll(t *testing.T) {
	store := newFakeStore()
	svc := NewImageUploadService(store, uploadConfig())

	images, err := svc.UploadAll(context.Background(), []ImageFile{
		{Filename: "frente.png", Data: pngBytes},
		{Filename: "lado.jpg", Data: jpegBytes},
	})
	require.NoError(t, err)
	require.Len(t, images, 2)
	assert.Equal(t, "frente.png", images[0].OriginalName)
	assert.Equal(t, "lado.jpg", images[1].OriginalName)
	assert.Contains(t, images[0].URL, "https://media.test/productos/")
	assert.Contains(t, images[1].URL, ".jpg")
	assert.Equal(t, 2, store.storedCount())
}

func TestImageUploadService_RejectsBeforeNetwork(t *testing.T) {
	cases := map[string][]ImageFile{
		"too large":   {{Filename: "big.png", Data: append(pngBytes, bytes.Repeat([]byte{1}, 2048)...)}},
		"wrong type":  {{Filename: "doc.pdf", Data: []byte("%PDF-1.4 fake document body")}},
		"empty":       {{Filename: "nada.png"}},
		"too many":    make([]ImageFile, 6),
		"mixed batch": {{Filename: "ok.png", Data: pngBytes}, {Filename: "x.txt", Data: []byte("hola")}},
	}
	for name, files := range cases {
		t.Run(name, func(t *testing.T) {
			store := newFakeStore()
			svc := NewImageUploadService(store, uploadConfig())

			_, err := svc.UploadAll(context.Background(), files)
			assert.ErrorIs(t, err, utils.ErrUploadRejected)
			assert.Zero(t, store.calls)
		})
	}
}

func TestImageUploadService_TimeoutIsDistinguishable(t *testing.T) {
	store := newFakeStore()
	store.block = true
	cfg := uploadConfig()
	cfg.Timeout = 20 * time.Millisecond
	svc := NewImageUploadService(store, cfg)

	_, err := svc.UploadAll(context.Background(), []ImageFile{{Filename: "a.png", Data: pngBytes}})
	assert.ErrorIs(t, err, utils.ErrUploadTimeout)
	assert.NotErrorIs(t, err, utils.ErrMediaStore)
}

func TestImageUploadService_SingleFailureFailsBatch(t *testing.T) {
	store := newFakeStore()
	store.failAt = 2
	svc := NewImageUploadService(store, uploadConfig())

	images, err := svc.UploadAll(context.Background(), []ImageFile{
		{Filename: "a.png", Data: pngBytes},
		{Filename: "b.png", Data: pngBytes},
		{Filename: "c.png", Data: pngBytes},
	})
	assert.ErrorIs(t, err, utils.ErrMediaStore)
	assert.Nil(t, images)
	assert.Zero(t, store.storedCount())
}

func TestImageUploadService_NoFiles(t *testing.T) {
	svc := NewImageUploadService(newFakeStore(), uploadConfig())
	images, err := svc.UploadAll(context.Background(), nil)
	assert.NoError(t, err)
	assert.Empty(t, images)
}
