package memory

import (
	"context"
	"testing"
	"time"

	"catalog/internal/domain"
	"catalog/internal/repository"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func seed(t *testing.T, s *Store, sku string) (*domain.Category, *domain.Product) {
	t.Helper()
	ctx := context.Background()

	category, err := domain.NewCategory(uuid.New(), "Shoes "+uuid.NewString(), time.Time{}, time.Time{})
	require.NoError(t, err)
	_, err = s.Categories().Create(ctx, category)
	require.NoError(t, err)

	name := "Runner " + uuid.NewString()
	product, err := domain.NewProduct(domain.ProductParams{
		ID:         uuid.New(),
		Name:       name,
		Slug:       domain.GenerateSlug(name),
		Price:      decimal.NewFromInt(50),
		CategoryID: category.ID,
	})
	require.NoError(t, err)
	variant, err := domain.NewProductVariant(uuid.New(), sku, domain.SizeM, 1, nil, nil)
	require.NoError(t, err)
	require.NoError(t, product.AddVariant(variant))

	_, err = s.Products().Create(ctx, product)
	require.NoError(t, err)
	return category, product
}

func TestStore_SKUIsGloballyUnique(t *testing.T) {
	s := NewStore()
	_, product := seed(t, s, "RUN-M")

	variant, err := domain.NewProductVariant(uuid.New(), "RUN-M", domain.SizeL, 1, nil, nil)
	require.NoError(t, err)
	err = s.Products().AddVariant(context.Background(), product.ID, variant)
	assert.ErrorIs(t, err, repository.ErrSKUAlreadyExists)
}

func TestStore_CategoryInUse(t *testing.T) {
	s := NewStore()
	ctx := context.Background()
	category, product := seed(t, s, "RUN-S")

	assert.ErrorIs(t, s.Categories().Delete(ctx, category.ID), repository.ErrCategoryInUse)

	require.NoError(t, s.Products().Delete(ctx, product.ID))
	require.NoError(t, s.Categories().Delete(ctx, category.ID))
	assert.ErrorIs(t, s.Categories().Delete(ctx, category.ID), repository.ErrCategoryNotFound)
}

func TestStore_ReturnsCopies(t *testing.T) {
	s := NewStore()
	ctx := context.Background()
	_, product := seed(t, s, "RUN-L")

	fetched, err := s.Products().FindByID(ctx, product.ID)
	require.NoError(t, err)
	fetched.Variants[0].Stock = 99

	again, err := s.Products().FindByID(ctx, product.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, again.Variants[0].Stock)
	assert.False(t, again.CreatedAt.IsZero())
}
