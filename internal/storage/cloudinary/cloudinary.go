package cloudinary

import (
	"context"
	"errors"
	"fmt"

	"catalog/internal/storage"

	cld "github.com/cloudinary/cloudinary-go/v2"
	"github.com/cloudinary/cloudinary-go/v2/api/uploader"
)

const destroyNotFound = "not found"

// Config holds the account credentials.
type Config struct {
	CloudName string
	APIKey    string
	APISecret string
}

// Storage implements storage.Storage on top of a Cloudinary account.
type Storage struct {
	client *cld.Cloudinary
}

// New creates a client bound to the given account.
func New(cfg Config) (*Storage, error) {
	if cfg.CloudName == "" || cfg.APIKey == "" || cfg.APISecret == "" {
		return nil, errors.New("cloudinary: cloud name, api key and api secret are required")
	}

	client, err := cld.NewFromParams(cfg.CloudName, cfg.APIKey, cfg.APISecret)
	if err != nil {
		return nil, fmt.Errorf("cloudinary: create client: %w", err)
	}

	return &Storage{client: client}, nil
}

// Upload streams the file into the configured folder and returns its secure URL.
func (s *Storage) Upload(ctx context.Context, input *storage.UploadInput) (*storage.UploadResult, error) {
	resp, err := s.client.Upload.Upload(ctx, input.Data, uploader.UploadParams{
		Folder:       input.Folder,
		ResourceType: "auto",
	})
	if err != nil {
		return nil, fmt.Errorf("cloudinary: upload %s: %w", input.FileName, err)
	}
	if resp.Error.Message != "" {
		return nil, fmt.Errorf("cloudinary: upload %s: %s", input.FileName, resp.Error.Message)
	}

	return &storage.UploadResult{
		PublicID: resp.PublicID,
		URL:      resp.SecureURL,
	}, nil
}

// Delete destroys the asset with the given public id.
func (s *Storage) Delete(ctx context.Context, publicID string) error {
	resp, err := s.client.Upload.Destroy(ctx, uploader.DestroyParams{PublicID: publicID})
	if err != nil {
		return fmt.Errorf("cloudinary: destroy %s: %w", publicID, err)
	}
	if resp.Error.Message != "" {
		return fmt.Errorf("cloudinary: destroy %s: %s", publicID, resp.Error.Message)
	}
	if resp.Result != "ok" && resp.Result != destroyNotFound {
		return fmt.Errorf("cloudinary: destroy %s: unexpected result %q", publicID, resp.Result)
	}
	return nil
}
