package domain

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// ProductImage is a gallery entry. SortOrder drives gallery order and at most
// one image per product is primary.
type ProductImage struct {
	ID        uuid.UUID `json:"id"`
	URL       string    `json:"url"`
	AltText   string    `json:"altText,omitempty"`
	SortOrder int       `json:"sortOrder"`
	IsPrimary bool      `json:"isPrimary"`
	CreatedAt time.Time `json:"createdAt"`
}

// NewProductImage validates and builds an image.
func NewProductImage(id uuid.UUID, url, altText string, sortOrder int, isPrimary bool) (ProductImage, error) {
	if strings.TrimSpace(url) == "" {
		return ProductImage{}, fmt.Errorf("%w: image url must not be empty", ErrInvalidArgument)
	}
	return ProductImage{
		ID:        id,
		URL:       url,
		AltText:   altText,
		SortOrder: sortOrder,
		IsPrimary: isPrimary,
	}, nil
}
