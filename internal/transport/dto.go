package transport

import (
	"time"

	"catalog/internal/domain"
	"catalog/internal/service"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// VariantRequest represents a variant in a create or add-variant payload
type VariantRequest struct {
	SKU           string           `json:"sku" validate:"required,max=100"`
	Size          string           `json:"size" validate:"required"`
	Stock         int              `json:"stock" validate:"gte=0,lte=2147483647"`
	Price         *decimal.Decimal `json:"price" validate:"omitempty,gte=0.01,lte=9999999999.99"`
	PurchasePrice *decimal.Decimal `json:"purchasePrice" validate:"omitempty,gte=0,lte=9999999999.99"`
}

// ImageRequest represents an image in a create or add-image payload
type ImageRequest struct {
	URL       string `json:"url" validate:"required,url,max=1024"`
	AltText   string `json:"altText" validate:"max=255"`
	SortOrder int    `json:"sortOrder" validate:"gte=0,lte=2147483647"`
	IsPrimary bool   `json:"isPrimary"`
}

// CreateProductRequest represents the product creation payload
type CreateProductRequest struct {
	Name          string           `json:"name" validate:"required,max=255"`
	Description   *string          `json:"description" validate:"omitempty,max=5000"`
	Price         decimal.Decimal  `json:"price" validate:"required,gte=0.01,lte=9999999999.99"`
	PurchasePrice *decimal.Decimal `json:"purchasePrice" validate:"omitempty,gte=0,lte=9999999999.99"`
	CategoryID    string           `json:"categoryId" validate:"required,uuid"`
	ImageURL      *string          `json:"imageUrl" validate:"omitempty,url,max=1024"`
	Images        []ImageRequest   `json:"images" validate:"omitempty,dive"`
	Variants      []VariantRequest `json:"variants" validate:"omitempty,dive"`
}

// UpdateProductRequest represents a partial product update. Absent fields
// are left unchanged.
type UpdateProductRequest struct {
	Name          *string          `json:"name" validate:"omitempty,min=1,max=255"`
	Description   *string          `json:"description" validate:"omitempty,max=5000"`
	Price         *decimal.Decimal `json:"price" validate:"omitempty,gte=0.01,lte=9999999999.99"`
	PurchasePrice *decimal.Decimal `json:"purchasePrice" validate:"omitempty,gte=0,lte=9999999999.99"`
	CategoryID    *string          `json:"categoryId" validate:"omitempty,uuid"`
	ImageURL      *string          `json:"imageUrl" validate:"omitempty,url,max=1024"`
}

// CategoryRequest represents the category create and rename payload
type CategoryRequest struct {
	Name string `json:"name" validate:"required,max=255"`
}

// VariantResponse represents a variant in API responses
type VariantResponse struct {
	ID             string           `json:"id"`
	SKU            string           `json:"sku"`
	Size           string           `json:"size"`
	Stock          int              `json:"stock"`
	Price          *decimal.Decimal `json:"price"`
	PurchasePrice  *decimal.Decimal `json:"purchasePrice"`
	EffectivePrice decimal.Decimal  `json:"effectivePrice"`
}

// ImageResponse represents an image in API responses
type ImageResponse struct {
	ID        string `json:"id"`
	URL       string `json:"url"`
	AltText   string `json:"altText"`
	SortOrder int    `json:"sortOrder"`
	IsPrimary bool   `json:"isPrimary"`
}

// ProductResponse represents a product in API responses
type ProductResponse struct {
	ID            string            `json:"id"`
	Name          string            `json:"name"`
	Slug          string            `json:"slug"`
	Description   *string           `json:"description"`
	Price         decimal.Decimal   `json:"price"`
	PurchasePrice *decimal.Decimal  `json:"purchasePrice"`
	ImageURL      *string           `json:"imageUrl"`
	CategoryID    string            `json:"categoryId"`
	TotalStock    int               `json:"totalStock"`
	InStock       bool              `json:"inStock"`
	Images        []ImageResponse   `json:"images"`
	Variants      []VariantResponse `json:"variants"`
	CreatedAt     time.Time         `json:"createdAt"`
	UpdatedAt     time.Time         `json:"updatedAt"`
}

// CategoryResponse represents a category in API responses
type CategoryResponse struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Slug      string    `json:"slug"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// UploadImageResponse is returned after a single upload
type UploadImageResponse struct {
	Success  bool   `json:"success"`
	ImageURL string `json:"imageUrl"`
	Message  string `json:"message"`
}

// UploadImagesResponse is returned after a batch upload
type UploadImagesResponse struct {
	Success   bool     `json:"success"`
	ImageURLs []string `json:"imageUrls"`
	Count     int      `json:"count"`
	Message   string   `json:"message"`
}

func (req VariantRequest) toInput() service.VariantInput {
	return service.VariantInput{
		SKU:           req.SKU,
		Size:          req.Size,
		Stock:         req.Stock,
		Price:         req.Price,
		PurchasePrice: req.PurchasePrice,
	}
}

func (req ImageRequest) toInput() service.ImageInput {
	return service.ImageInput{
		URL:       req.URL,
		AltText:   req.AltText,
		SortOrder: req.SortOrder,
		IsPrimary: req.IsPrimary,
	}
}

// toInput assumes the request passed validation, so CategoryID parses.
func (req CreateProductRequest) toInput() service.CreateProductInput {
	input := service.CreateProductInput{
		Name:          req.Name,
		Description:   req.Description,
		Price:         req.Price,
		PurchasePrice: req.PurchasePrice,
		CategoryID:    uuid.MustParse(req.CategoryID),
		ImageURL:      req.ImageURL,
	}
	for _, img := range req.Images {
		input.Images = append(input.Images, img.toInput())
	}
	for _, v := range req.Variants {
		input.Variants = append(input.Variants, v.toInput())
	}
	return input
}

func (req UpdateProductRequest) toInput() service.UpdateProductInput {
	input := service.UpdateProductInput{
		Name:          req.Name,
		Description:   req.Description,
		Price:         req.Price,
		PurchasePrice: req.PurchasePrice,
		ImageURL:      req.ImageURL,
	}
	if req.CategoryID != nil {
		id := uuid.MustParse(*req.CategoryID)
		input.CategoryID = &id
	}
	return input
}

func toProductResponse(p *domain.Product) ProductResponse {
	resp := ProductResponse{
		ID:            p.ID.String(),
		Name:          p.Name,
		Slug:          p.Slug,
		Description:   p.Description,
		Price:         p.Price,
		PurchasePrice: p.PurchasePrice,
		ImageURL:      p.ImageURL,
		CategoryID:    p.CategoryID.String(),
		TotalStock:    p.TotalStock(),
		InStock:       p.HasStock(),
		Images:        make([]ImageResponse, 0, len(p.Images)),
		Variants:      make([]VariantResponse, 0, len(p.Variants)),
		CreatedAt:     p.CreatedAt,
		UpdatedAt:     p.UpdatedAt,
	}

	for _, img := range p.SortedImages() {
		resp.Images = append(resp.Images, ImageResponse{
			ID:        img.ID.String(),
			URL:       img.URL,
			AltText:   img.AltText,
			SortOrder: img.SortOrder,
			IsPrimary: img.IsPrimary,
		})
	}
	for _, v := range p.Variants {
		resp.Variants = append(resp.Variants, VariantResponse{
			ID:             v.ID.String(),
			SKU:            v.SKU,
			Size:           v.Size.String(),
			Stock:          v.Stock,
			Price:          v.Price,
			PurchasePrice:  v.PurchasePrice,
			EffectivePrice: v.EffectivePrice(p.Price),
		})
	}
	return resp
}

func toProductResponses(products []*domain.Product) []ProductResponse {
	out := make([]ProductResponse, 0, len(products))
	for _, p := range products {
		out = append(out, toProductResponse(p))
	}
	return out
}

func toCategoryResponse(c *domain.Category) CategoryResponse {
	return CategoryResponse{
		ID:        c.ID.String(),
		Name:      c.Name,
		Slug:      c.Slug,
		CreatedAt: c.CreatedAt,
		UpdatedAt: c.UpdatedAt,
	}
}
