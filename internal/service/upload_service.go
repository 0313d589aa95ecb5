package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"path"
	"time"

	"github.com/minio/minio-go/v7"
	"github.com/rs/zerolog"

	"gadamagado/api/internal/config"
	"gadamagado/api/internal/ids"
	"gadamagado/api/internal/storage"
)

var ErrUnsupportedImage = errors.New("unsupported image type")

var imageExtensions = map[string]string{
	"image/jpeg": "jpg",
	"image/png":  "png",
	"image/webp": "webp",
	"image/gif":  "gif",
}

// UploadService stores listing images in the object store and hands back
// public URLs for embedding in ads.
type UploadService struct {
	store *storage.ObjectStore
	cfg   *config.AppConfig
	log   zerolog.Logger
}

func NewUploadService(store *storage.ObjectStore, cfg *config.AppConfig, log zerolog.Logger) *UploadService {
	return &UploadService{
		store: store,
		cfg:   cfg,
		log:   log,
	}
}

type UploadInput struct {
	UserID string
	File   multipart.File
	Header *multipart.FileHeader
}

type UploadResult struct {
	URL       string
	SizeBytes int64
}

func (s *UploadService) Upload(ctx context.Context, input UploadInput) (UploadResult, error) {
	if input.File == nil || input.Header == nil {
		return UploadResult{}, errors.New("invalid file payload")
	}

	data, err := io.ReadAll(input.File)
	if err != nil {
		return UploadResult{}, fmt.Errorf("read file: %w", err)
	}
	if len(data) == 0 {
		return UploadResult{}, errors.New("empty file")
	}

	contentType := http.DetectContentType(data)
	ext, ok := imageExtensions[contentType]
	if !ok {
		return UploadResult{}, fmt.Errorf("%w: %s", ErrUnsupportedImage, contentType)
	}

	datePrefix := time.Now().UTC().Format("2006/01/02")
	objectKey := path.Join(datePrefix, fmt.Sprintf("%s.%s", ids.New(), ext))

	info, err := s.store.Client().PutObject(ctx,
		s.cfg.Storage.BucketImages,
		objectKey,
		bytes.NewReader(data),
		int64(len(data)),
		minio.PutObjectOptions{ContentType: contentType},
	)
	if err != nil {
		return UploadResult{}, fmt.Errorf("put object: %w", err)
	}

	s.log.Debug().
		Str("user_id", input.UserID).
		Str("object", objectKey).
		Int64("size", info.Size).
		Msg("listing image stored")

	return UploadResult{
		URL:       s.store.PublicURL(objectKey),
		SizeBytes: info.Size,
	}, nil
}
