package memory

import (
	"context"
	"strings"
	"testing"

	"catalog/internal/storage"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStorage_UploadAndDelete(t *testing.T) {
	s := New("http://localhost:3000")
	ctx := context.Background()

	res, err := s.Upload(ctx, &storage.UploadInput{
		Folder:      "zeroFear/products",
		FileName:    "shirt.png",
		ContentType: "image/png",
		Size:        4,
		Data:        strings.NewReader("data"),
	})
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(res.PublicID, "zeroFear/products/"))
	assert.Equal(t, "http://localhost:3000/media/"+res.PublicID, res.URL)
	assert.True(t, s.Has(res.PublicID))

	require.NoError(t, s.Delete(ctx, res.PublicID))
	assert.False(t, s.Has(res.PublicID))
	assert.Zero(t, s.Len())
}

func TestStorage_DeleteUnknownIsNoop(t *testing.T) {
	s := New("http://localhost:3000")
	assert.NoError(t, s.Delete(context.Background(), "missing"))
}

func TestStorage_UploadsGetDistinctIDs(t *testing.T) {
	s := New("http://cdn")
	ctx := context.Background()

	a, err := s.Upload(ctx, &storage.UploadInput{Folder: "f", FileName: "a.jpg"})
	require.NoError(t, err)
	b, err := s.Upload(ctx, &storage.UploadInput{Folder: "f", FileName: "a.jpg"})
	require.NoError(t, err)

	assert.NotEqual(t, a.PublicID, b.PublicID)
	assert.Equal(t, 2, s.Len())
}

func TestStorage_UploadHonoursCanceledContext(t *testing.T) {
	s := New("http://cdn")
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := s.Upload(ctx, &storage.UploadInput{Folder: "f", FileName: "a.jpg"})
	assert.ErrorIs(t, err, context.Canceled)
	assert.Zero(t, s.Len())
}
