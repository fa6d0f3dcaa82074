package domain

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Category groups products. Names are unique across the catalog.
type Category struct {
	ID        uuid.UUID `json:"id"`
	Name      string    `json:"name"`
	Slug      string    `json:"slug,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// NewCategory builds a category, rejecting names that are blank after trimming.
func NewCategory(id uuid.UUID, name string, createdAt, updatedAt time.Time) (*Category, error) {
	c := &Category{
		ID:        id,
		CreatedAt: createdAt,
		UpdatedAt: updatedAt,
	}
	if err := c.Rename(name); err != nil {
		return nil, err
	}
	return c, nil
}

// Rename replaces the category name and its slug.
func (c *Category) Rename(name string) error {
	trimmed := strings.TrimSpace(name)
	if trimmed == "" {
		return fmt.Errorf("%w: category name must not be empty", ErrInvalidArgument)
	}
	slug := GenerateSlug(trimmed)
	if slug == "" {
		return fmt.Errorf("%w: category name %q yields an empty slug", ErrInvalidArgument, trimmed)
	}
	c.Name = trimmed
	c.Slug = slug
	return nil
}
