package repository

import (
	"context"
	"errors"
	"fmt"

	"catalog/internal/domain"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/shopspring/decimal"
)

// Constraint names used to tell conflicts apart.
const (
	constraintVariantSKU      = "product_variants_sku_key"
	constraintOnePrimaryImage = "idx_product_images_one_primary"
	constraintVariantProduct  = "fk_product_variants_product"
	constraintImageProduct    = "fk_product_images_product"
)

// ProductRepository defines the interface for product data access. Products
// are always returned with their variants and images loaded.
type ProductRepository interface {
	FindAll(ctx context.Context) ([]*domain.Product, error)
	FindByID(ctx context.Context, id uuid.UUID) (*domain.Product, error)
	FindBySlug(ctx context.Context, slug string) (*domain.Product, error)
	Create(ctx context.Context, product *domain.Product) (*domain.Product, error)
	Update(ctx context.Context, product *domain.Product) (*domain.Product, error)
	Delete(ctx context.Context, id uuid.UUID) error
	AddVariant(ctx context.Context, productID uuid.UUID, variant domain.ProductVariant) error
	AddImage(ctx context.Context, productID uuid.UUID, image domain.ProductImage) error
	FindVariantByID(ctx context.Context, id uuid.UUID) (*domain.ProductVariant, error)
	FindImageByID(ctx context.Context, id uuid.UUID) (*domain.ProductImage, error)
}

type productRepository struct {
	db DBTX
}

// NewProductRepository creates a new instance of ProductRepository
func NewProductRepository(db DBTX) ProductRepository {
	return &productRepository{db: db}
}

const productColumns = `id, name, slug, description, price, purchase_price, image_url, category_id, created_at, updated_at`

const variantColumns = `id, product_id, sku, size, stock, price, purchase_price, created_at, updated_at`

const imageColumns = `id, product_id, url, alt_text, sort_order, is_primary, created_at`

func scanProduct(row pgx.Row) (*domain.Product, error) {
	p := &domain.Product{
		Images:   []domain.ProductImage{},
		Variants: []domain.ProductVariant{},
	}
	var purchasePrice decimal.NullDecimal
	err := row.Scan(
		&p.ID,
		&p.Name,
		&p.Slug,
		&p.Description,
		&p.Price,
		&purchasePrice,
		&p.ImageURL,
		&p.CategoryID,
		&p.CreatedAt,
		&p.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	p.PurchasePrice = decimalPtr(purchasePrice)
	return p, nil
}

func scanVariant(row pgx.Row) (uuid.UUID, domain.ProductVariant, error) {
	var (
		v             domain.ProductVariant
		productID     uuid.UUID
		size          string
		price         decimal.NullDecimal
		purchasePrice decimal.NullDecimal
	)
	err := row.Scan(
		&v.ID,
		&productID,
		&v.SKU,
		&size,
		&v.Stock,
		&price,
		&purchasePrice,
		&v.CreatedAt,
		&v.UpdatedAt,
	)
	if err != nil {
		return uuid.Nil, v, err
	}

	parsed, err := domain.ParseSize(size)
	if err != nil {
		return uuid.Nil, v, fmt.Errorf("stored variant %s: %w", v.ID, err)
	}
	v.Size = parsed
	v.Price = decimalPtr(price)
	v.PurchasePrice = decimalPtr(purchasePrice)
	return productID, v, nil
}

func scanImage(row pgx.Row) (uuid.UUID, domain.ProductImage, error) {
	var (
		img       domain.ProductImage
		productID uuid.UUID
		altText   *string
	)
	err := row.Scan(
		&img.ID,
		&productID,
		&img.URL,
		&altText,
		&img.SortOrder,
		&img.IsPrimary,
		&img.CreatedAt,
	)
	if err != nil {
		return uuid.Nil, img, err
	}
	if altText != nil {
		img.AltText = *altText
	}
	return productID, img, nil
}

func decimalPtr(d decimal.NullDecimal) *decimal.Decimal {
	if !d.Valid {
		return nil
	}
	v := d.Decimal
	return &v
}

func nullString(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

// FindAll retrieves every product with its variants and images
func (r *productRepository) FindAll(ctx context.Context) ([]*domain.Product, error) {
	query := `SELECT ` + productColumns + ` FROM products ORDER BY created_at DESC, name ASC`

	rows, err := r.db.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list products: %w", err)
	}

	products := []*domain.Product{}
	for rows.Next() {
		product, err := scanProduct(rows)
		if err != nil {
			rows.Close()
			return nil, fmt.Errorf("failed to scan product: %w", err)
		}
		products = append(products, product)
	}
	rows.Close()

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating products: %w", err)
	}

	if err := loadChildren(ctx, r.db, products); err != nil {
		return nil, err
	}

	return products, nil
}

// FindByID retrieves a product by ID
func (r *productRepository) FindByID(ctx context.Context, id uuid.UUID) (*domain.Product, error) {
	return findProduct(ctx, r.db, `WHERE id = $1`, id)
}

// FindBySlug retrieves a product by slug
func (r *productRepository) FindBySlug(ctx context.Context, slug string) (*domain.Product, error) {
	return findProduct(ctx, r.db, `WHERE slug = $1`, slug)
}

func findProduct(ctx context.Context, q querier, where string, arg any) (*domain.Product, error) {
	query := `SELECT ` + productColumns + ` FROM products ` + where

	product, err := scanProduct(q.QueryRow(ctx, query, arg))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrProductNotFound
		}
		return nil, fmt.Errorf("failed to find product: %w", err)
	}

	if err := loadChildren(ctx, q, []*domain.Product{product}); err != nil {
		return nil, err
	}

	return product, nil
}

// loadChildren fills in the variants and images of the given products with
// one query per child table.
func loadChildren(ctx context.Context, q querier, products []*domain.Product) error {
	if len(products) == 0 {
		return nil
	}

	ids := make([]string, len(products))
	byID := make(map[uuid.UUID]*domain.Product, len(products))
	for i, p := range products {
		ids[i] = p.ID.String()
		byID[p.ID] = p
	}

	variantRows, err := q.Query(ctx,
		`SELECT `+variantColumns+` FROM product_variants WHERE product_id = ANY($1::uuid[]) ORDER BY created_at ASC, sku ASC`,
		ids,
	)
	if err != nil {
		return fmt.Errorf("failed to load variants: %w", err)
	}
	for variantRows.Next() {
		productID, v, err := scanVariant(variantRows)
		if err != nil {
			variantRows.Close()
			return fmt.Errorf("failed to scan variant: %w", err)
		}
		if p, ok := byID[productID]; ok {
			p.Variants = append(p.Variants, v)
		}
	}
	variantRows.Close()
	if err := variantRows.Err(); err != nil {
		return fmt.Errorf("error iterating variants: %w", err)
	}

	imageRows, err := q.Query(ctx,
		`SELECT `+imageColumns+` FROM product_images WHERE product_id = ANY($1::uuid[]) ORDER BY sort_order ASC, created_at ASC`,
		ids,
	)
	if err != nil {
		return fmt.Errorf("failed to load images: %w", err)
	}
	for imageRows.Next() {
		productID, img, err := scanImage(imageRows)
		if err != nil {
			imageRows.Close()
			return fmt.Errorf("failed to scan image: %w", err)
		}
		if p, ok := byID[productID]; ok {
			p.Images = append(p.Images, img)
		}
	}
	imageRows.Close()
	if err := imageRows.Err(); err != nil {
		return fmt.Errorf("error iterating images: %w", err)
	}

	return nil
}

// Create inserts the product with its variants and images in one transaction
// and returns it as stored.
func (r *productRepository) Create(ctx context.Context, product *domain.Product) (*domain.Product, error) {
	var created *domain.Product

	err := withTx(ctx, r.db, func(tx pgx.Tx) error {
		_, err := tx.Exec(ctx, `
			INSERT INTO products (id, name, slug, description, price, purchase_price, image_url, category_id)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
			product.ID,
			product.Name,
			product.Slug,
			product.Description,
			product.Price,
			product.PurchasePrice,
			product.ImageURL,
			product.CategoryID,
		)
		if err != nil {
			return translateProductError(err)
		}

		for _, v := range product.Variants {
			if err := insertVariant(ctx, tx, product.ID, v); err != nil {
				return err
			}
		}
		for _, img := range product.Images {
			if err := insertImage(ctx, tx, product.ID, img); err != nil {
				return err
			}
		}

		created, err = findProduct(ctx, tx, `WHERE id = $1`, product.ID)
		return err
	})
	if err != nil {
		return nil, err
	}

	return created, nil
}

// Update stores the product's scalar fields. Variants and images are left as they are.
func (r *productRepository) Update(ctx context.Context, product *domain.Product) (*domain.Product, error) {
	tag, err := r.db.Exec(ctx, `
		UPDATE products
		SET name = $2, slug = $3, description = $4, price = $5,
		    purchase_price = $6, image_url = $7, category_id = $8
		WHERE id = $1`,
		product.ID,
		product.Name,
		product.Slug,
		product.Description,
		product.Price,
		product.PurchasePrice,
		product.ImageURL,
		product.CategoryID,
	)
	if err != nil {
		return nil, translateProductError(err)
	}

	if tag.RowsAffected() == 0 {
		return nil, ErrProductNotFound
	}

	return r.FindByID(ctx, product.ID)
}

// Delete removes a product. Variants and images go with it through the
// cascading foreign keys.
func (r *productRepository) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM products WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete product: %w", err)
	}

	if tag.RowsAffected() == 0 {
		return ErrProductNotFound
	}

	return nil
}

// AddVariant inserts a variant for an existing product
func (r *productRepository) AddVariant(ctx context.Context, productID uuid.UUID, variant domain.ProductVariant) error {
	return insertVariant(ctx, r.db, productID, variant)
}

// AddImage inserts an image. A primary image demotes the current primary and
// becomes the product's image_url in the same transaction.
func (r *productRepository) AddImage(ctx context.Context, productID uuid.UUID, image domain.ProductImage) error {
	return withTx(ctx, r.db, func(tx pgx.Tx) error {
		if image.IsPrimary {
			if _, err := tx.Exec(ctx,
				`UPDATE product_images SET is_primary = FALSE WHERE product_id = $1 AND is_primary`,
				productID,
			); err != nil {
				return fmt.Errorf("failed to demote primary image: %w", err)
			}
		}

		if err := insertImage(ctx, tx, productID, image); err != nil {
			return err
		}

		if image.IsPrimary {
			if _, err := tx.Exec(ctx,
				`UPDATE products SET image_url = $2 WHERE id = $1`,
				productID, image.URL,
			); err != nil {
				return fmt.Errorf("failed to set product image url: %w", err)
			}
		}
		return nil
	})
}

// FindVariantByID retrieves a single variant
func (r *productRepository) FindVariantByID(ctx context.Context, id uuid.UUID) (*domain.ProductVariant, error) {
	_, v, err := scanVariant(r.db.QueryRow(ctx,
		`SELECT `+variantColumns+` FROM product_variants WHERE id = $1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrVariantNotFound
		}
		return nil, fmt.Errorf("failed to find variant: %w", err)
	}
	return &v, nil
}

// FindImageByID retrieves a single image
func (r *productRepository) FindImageByID(ctx context.Context, id uuid.UUID) (*domain.ProductImage, error) {
	_, img, err := scanImage(r.db.QueryRow(ctx,
		`SELECT `+imageColumns+` FROM product_images WHERE id = $1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrImageNotFound
		}
		return nil, fmt.Errorf("failed to find image: %w", err)
	}
	return &img, nil
}

type execer interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
}

func insertVariant(ctx context.Context, db execer, productID uuid.UUID, v domain.ProductVariant) error {
	_, err := db.Exec(ctx, `
		INSERT INTO product_variants (id, product_id, sku, size, stock, price, purchase_price)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		v.ID,
		productID,
		v.SKU,
		v.Size.String(),
		v.Stock,
		v.Price,
		v.PurchasePrice,
	)
	if err != nil {
		return translateProductError(err)
	}
	return nil
}

func insertImage(ctx context.Context, db execer, productID uuid.UUID, img domain.ProductImage) error {
	_, err := db.Exec(ctx, `
		INSERT INTO product_images (id, product_id, url, alt_text, sort_order, is_primary)
		VALUES ($1, $2, $3, $4, $5, $6)`,
		img.ID,
		productID,
		img.URL,
		nullString(img.AltText),
		img.SortOrder,
		img.IsPrimary,
	)
	if err != nil {
		return translateProductError(err)
	}
	return nil
}

// translateProductError maps constraint violations on the product tables to
// repository sentinels.
func translateProductError(err error) error {
	if constraint, ok := isUniqueViolation(err); ok {
		switch constraint {
		case constraintVariantSKU:
			return ErrSKUAlreadyExists
		case constraintOnePrimaryImage:
			return ErrPrimaryImageExists
		default:
			return ErrProductAlreadyExists
		}
	}
	if constraint, ok := isForeignKeyViolation(err); ok {
		if constraint == constraintVariantProduct || constraint == constraintImageProduct {
			return ErrProductNotFound
		}
		return ErrCategoryNotFound
	}
	if isCheckViolation(err) || isOutOfRange(err) {
		return fmt.Errorf("%w: %v", domain.ErrInvalidArgument, err)
	}
	return fmt.Errorf("failed to write product: %w", err)
}
