package storage

import (
	"context"
	"io"
)

// Storage defines the interface for the object storage that hosts uploaded
// images.
type Storage interface {
	// Upload stores a file and returns its public id and URL.
	Upload(ctx context.Context, input *UploadInput) (*UploadResult, error)

	// Delete removes a file by its public id. Deleting an unknown id is not an error.
	Delete(ctx context.Context, publicID string) error
}

// UploadInput holds the parameters for uploading a file.
type UploadInput struct {
	Folder      string
	FileName    string
	ContentType string
	Size        int64
	Data        io.Reader
}

// UploadResult holds the result of a successful upload.
type UploadResult struct {
	PublicID string
	URL      string
}
