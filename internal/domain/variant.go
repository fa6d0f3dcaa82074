package domain

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ProductVariant is a size-specific stock keeping unit of a product.
// Price and PurchasePrice override the product values when set.
type ProductVariant struct {
	ID            uuid.UUID        `json:"id"`
	SKU           string           `json:"sku"`
	Size          Size             `json:"size"`
	Stock         int              `json:"stock"`
	Price         *decimal.Decimal `json:"price,omitempty"`
	PurchasePrice *decimal.Decimal `json:"purchasePrice,omitempty"`
	CreatedAt     time.Time        `json:"createdAt"`
	UpdatedAt     time.Time        `json:"updatedAt"`
}

// NewProductVariant validates and builds a variant.
func NewProductVariant(id uuid.UUID, sku string, size Size, stock int, price, purchasePrice *decimal.Decimal) (ProductVariant, error) {
	if strings.TrimSpace(sku) == "" {
		return ProductVariant{}, fmt.Errorf("%w: sku must not be empty", ErrInvalidArgument)
	}
	if !size.IsValid() {
		return ProductVariant{}, fmt.Errorf("%w: %q", ErrInvalidSize, size)
	}
	if stock < 0 {
		return ProductVariant{}, fmt.Errorf("%w: stock must not be negative", ErrInvalidArgument)
	}
	if price != nil && !price.IsPositive() {
		return ProductVariant{}, fmt.Errorf("%w: variant price must be greater than zero", ErrInvalidArgument)
	}
	if purchasePrice != nil && purchasePrice.IsNegative() {
		return ProductVariant{}, fmt.Errorf("%w: variant purchase price must not be negative", ErrInvalidArgument)
	}

	return ProductVariant{
		ID:            id,
		SKU:           sku,
		Size:          size,
		Stock:         stock,
		Price:         price,
		PurchasePrice: purchasePrice,
	}, nil
}

// EffectivePrice returns the variant override or the given base price.
func (v ProductVariant) EffectivePrice(base decimal.Decimal) decimal.Decimal {
	if v.Price != nil {
		return *v.Price
	}
	return base
}
