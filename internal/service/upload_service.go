package service

import (
	"context"
	"fmt"
	"io"
	"strings"

	"catalog/internal/config"
	"catalog/internal/domain"
	"catalog/internal/metrics"
	"catalog/internal/storage"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// maxParallelUploads bounds concurrent transfers in a batch.
const maxParallelUploads = 4

// FileInput is one file received from a client.
type FileInput struct {
	FileName    string
	ContentType string
	Size        int64
	Data        io.Reader
}

// UploadService defines the interface for image uploads
type UploadService interface {
	UploadImage(ctx context.Context, file FileInput) (string, error)
	UploadMultipleImages(ctx context.Context, files []FileInput) ([]string, error)
	DeleteImage(ctx context.Context, publicID string) error
}

type uploadService struct {
	store  storage.Storage
	cfg    config.UploadConfig
	logger *zap.Logger
}

// NewUploadService creates a new instance of UploadService
func NewUploadService(store storage.Storage, cfg config.UploadConfig, logger *zap.Logger) UploadService {
	return &uploadService{
		store:  store,
		cfg:    cfg,
		logger: logger,
	}
}

// UploadImage validates one image and sends it to storage, returning its URL
func (s *uploadService) UploadImage(ctx context.Context, file FileInput) (string, error) {
	if err := s.validate(file); err != nil {
		return "", err
	}
	return s.transfer(ctx, file)
}

// UploadMultipleImages validates every file before any transfer, then uploads
// them and returns the URLs in input order. The first failure aborts the batch.
func (s *uploadService) UploadMultipleImages(ctx context.Context, files []FileInput) ([]string, error) {
	if len(files) == 0 {
		return nil, fmt.Errorf("%w: at least one image is required", domain.ErrUpload)
	}
	if len(files) > s.cfg.MaxFiles {
		return nil, fmt.Errorf("%w: at most %d images can be uploaded at once", domain.ErrUpload, s.cfg.MaxFiles)
	}

	for _, file := range files {
		if err := s.validate(file); err != nil {
			return nil, err
		}
	}

	urls := make([]string, len(files))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(maxParallelUploads)

	for i, file := range files {
		g.Go(func() error {
			// Files still queued when a sibling fails are skipped.
			if err := gctx.Err(); err != nil {
				return fmt.Errorf("%w: upload of %s canceled: %w", domain.ErrUpload, file.FileName, err)
			}
			url, err := s.transfer(gctx, file)
			if err != nil {
				return err
			}
			urls[i] = url
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return urls, nil
}

// DeleteImage removes an image from storage by its public id
func (s *uploadService) DeleteImage(ctx context.Context, publicID string) error {
	publicID = strings.TrimSpace(publicID)
	if publicID == "" {
		return fmt.Errorf("%w: public id is required", domain.ErrInvalidArgument)
	}

	if err := s.store.Delete(ctx, publicID); err != nil {
		s.logger.Error("Failed to delete image", zap.Error(err), zap.String("public_id", publicID))
		return fmt.Errorf("%w: could not delete image %s", domain.ErrUpload, publicID)
	}
	return nil
}

func (s *uploadService) validate(file FileInput) error {
	if !strings.HasPrefix(strings.ToLower(file.ContentType), "image/") {
		return fmt.Errorf("%w: %s must be an image, got %q", domain.ErrUpload, file.FileName, file.ContentType)
	}
	if file.Size <= 0 {
		return fmt.Errorf("%w: %s is empty", domain.ErrUpload, file.FileName)
	}
	if file.Size > s.cfg.MaxFileBytes {
		return fmt.Errorf("%w: %s exceeds the %d byte limit", domain.ErrUpload, file.FileName, s.cfg.MaxFileBytes)
	}
	return nil
}

func (s *uploadService) transfer(ctx context.Context, file FileInput) (string, error) {
	result, err := s.store.Upload(ctx, &storage.UploadInput{
		Folder:      s.cfg.Folder,
		FileName:    file.FileName,
		ContentType: file.ContentType,
		Size:        file.Size,
		Data:        file.Data,
	})
	if err != nil && storage.IsCanceled(err) {
		s.logger.Debug("Image upload canceled", zap.String("file_name", file.FileName))
		return "", fmt.Errorf("%w: upload of %s canceled: %w", domain.ErrUpload, file.FileName, err)
	}
	metrics.ObserveUpload(file.Size, err)
	if err != nil {
		s.logger.Error("Image upload failed",
			zap.Error(err),
			zap.String("file_name", file.FileName),
			zap.Int64("size", file.Size),
		)
		return "", fmt.Errorf("%w: could not upload %s", domain.ErrUpload, file.FileName)
	}

	s.logger.Info("Image uploaded",
		zap.String("public_id", result.PublicID),
		zap.String("file_name", file.FileName),
	)
	return result.URL, nil
}
