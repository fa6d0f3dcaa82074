package service

import (
	"context"
	"errors"
	"testing"

	"catalog/internal/domain"
	"catalog/internal/repository"
	"catalog/internal/repository/memory"

	"github.com/google/uuid"
	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type fixture struct {
	products   ProductService
	categories CategoryService
	category   *domain.Category
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	store := memory.NewStore()
	logger := zap.NewNop()

	f := &fixture{
		products:   NewProductService(store.Products(), store.Categories(), logger),
		categories: NewCategoryService(store.Categories(), logger),
	}

	category, err := f.categories.Create(context.Background(), "Shirts")
	require.NoError(t, err)
	f.category = category
	return f
}

func (f *fixture) input(name string) CreateProductInput {
	return CreateProductInput{
		Name:       name,
		Price:      decimal.RequireFromString("29.99"),
		CategoryID: f.category.ID,
	}
}

func decimalPtr(s string) *decimal.Decimal {
	d := decimal.RequireFromString(s)
	return &d
}

func TestProductService_CreateDerivesSlugAndChildren(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	input := f.input("  Test Product ")
	input.Variants = []VariantInput{
		{SKU: "TP-S", Size: "s", Stock: 2},
		{SKU: "TP-XL", Size: " XL ", Stock: 5, Price: decimalPtr("34.99")},
	}
	input.Images = []ImageInput{
		{URL: "https://cdn.test/back.jpg", SortOrder: 2},
		{URL: "https://cdn.test/front.jpg", SortOrder: 1, IsPrimary: true},
	}

	product, err := f.products.Create(ctx, input)
	require.NoError(t, err)

	assert.Equal(t, "Test Product", product.Name)
	assert.Equal(t, "test-product", product.Slug)
	assert.Equal(t, 7, product.TotalStock())
	assert.Equal(t, domain.SizeS, product.Variants[0].Size)
	assert.Equal(t, domain.SizeXL, product.Variants[1].Size)
	require.NotNil(t, product.ImageURL)
	assert.Equal(t, "https://cdn.test/front.jpg", *product.ImageURL)
	assert.False(t, product.CreatedAt.IsZero())

	bySlug, err := f.products.GetBySlug(ctx, "test-product")
	require.NoError(t, err)
	assert.Equal(t, product.ID, bySlug.ID)
}

func TestProductService_CreateRejections(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(f *fixture, in *CreateProductInput)
		wantErr error
	}{
		{
			name:    "zero price",
			mutate:  func(_ *fixture, in *CreateProductInput) { in.Price = decimal.Zero },
			wantErr: domain.ErrInvalidArgument,
		},
		{
			name:    "blank name",
			mutate:  func(_ *fixture, in *CreateProductInput) { in.Name = "   " },
			wantErr: domain.ErrInvalidArgument,
		},
		{
			name: "unknown size",
			mutate: func(_ *fixture, in *CreateProductInput) {
				in.Variants = []VariantInput{{SKU: "A", Size: "XXXL"}}
			},
			wantErr: domain.ErrInvalidSize,
		},
		{
			name: "duplicate sku in input",
			mutate: func(_ *fixture, in *CreateProductInput) {
				in.Variants = []VariantInput{{SKU: "A", Size: "M"}, {SKU: "A", Size: "L"}}
			},
			wantErr: domain.ErrDuplicateSKU,
		},
		{
			name: "two primary images",
			mutate: func(_ *fixture, in *CreateProductInput) {
				in.Images = []ImageInput{
					{URL: "https://cdn.test/1.jpg", IsPrimary: true},
					{URL: "https://cdn.test/2.jpg", IsPrimary: true},
				}
			},
			wantErr: domain.ErrInvalidArgument,
		},
		{
			name:    "unknown category",
			mutate:  func(_ *fixture, in *CreateProductInput) { in.CategoryID = uuid.New() },
			wantErr: repository.ErrCategoryNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)
			in := f.input("Rejected")
			tt.mutate(f, &in)

			_, err := f.products.Create(context.Background(), in)
			assert.ErrorIs(t, err, tt.wantErr)

			all, err := f.products.List(context.Background())
			require.NoError(t, err)
			assert.Empty(t, all)
		})
	}
}

func TestProductService_CreateConflicts(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	first := f.input("Test Product")
	first.Variants = []VariantInput{{SKU: "TP-M", Size: "M"}}
	_, err := f.products.Create(ctx, first)
	require.NoError(t, err)

	_, err = f.products.Create(ctx, f.input("Test Product"))
	assert.ErrorIs(t, err, domain.ErrConflict)

	// Different name, same slug.
	_, err = f.products.Create(ctx, f.input("Test  Product!"))
	assert.ErrorIs(t, err, domain.ErrConflict)

	other := f.input("Another Product")
	other.Variants = []VariantInput{{SKU: "TP-M", Size: "L"}}
	_, err = f.products.Create(ctx, other)
	assert.ErrorIs(t, err, repository.ErrSKUAlreadyExists)
}

// Any unparsable id reads as a missing product.
func TestProperty_UnparsableIDsAreNotFound(t *testing.T) {
	f := newFixture(t)
	properties := gopter.NewProperties(nil)

	properties.Property("get, update and delete report not found", prop.ForAll(
		func(id string) bool {
			ctx := context.Background()
			_, getErr := f.products.GetByID(ctx, id)
			_, updErr := f.products.Update(ctx, id, UpdateProductInput{})
			delErr := f.products.Delete(ctx, id)
			return errors.Is(getErr, domain.ErrNotFound) &&
				errors.Is(updErr, domain.ErrNotFound) &&
				errors.Is(delErr, domain.ErrNotFound)
		},
		gen.AlphaString().SuchThat(func(s string) bool {
			_, err := uuid.Parse(s)
			return err != nil
		}),
	))

	properties.TestingRun(t, gopter.ConsoleReporter(false))
}

// Products created with positive prices round-trip through the store.
func TestProperty_CreatedProductsCanBeRead(t *testing.T) {
	f := newFixture(t)
	properties := gopter.NewProperties(nil)

	properties.Property("create then get by id returns the same product", prop.ForAll(
		func(cents int64, stock int) bool {
			ctx := context.Background()
			in := f.input("Product " + uuid.NewString())
			in.Price = decimal.New(cents, -2)
			in.Variants = []VariantInput{{SKU: uuid.NewString(), Size: "ONE", Stock: stock}}

			created, err := f.products.Create(ctx, in)
			if err != nil {
				return false
			}
			got, err := f.products.GetByID(ctx, created.ID.String())
			if err != nil {
				return false
			}
			return got.Price.Equal(in.Price) && got.TotalStock() == stock && got.HasStock() == (stock > 0)
		},
		gen.Int64Range(1, 1000000),
		gen.IntRange(0, 500),
	))

	properties.TestingRun(t, gopter.ConsoleReporter(false))
}

func TestProductService_UpdateKeepsCollections(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	in := f.input("Test Product")
	in.Variants = []VariantInput{{SKU: "TP-M", Size: "M", Stock: 3}}
	in.Images = []ImageInput{{URL: "https://cdn.test/a.jpg", IsPrimary: true}}
	created, err := f.products.Create(ctx, in)
	require.NoError(t, err)

	newName := "Renamed Product"
	updated, err := f.products.Update(ctx, created.ID.String(), UpdateProductInput{
		Name:  &newName,
		Price: decimalPtr("49.90"),
	})
	require.NoError(t, err)

	assert.Equal(t, "renamed-product", updated.Slug)
	assert.True(t, updated.Price.Equal(decimal.RequireFromString("49.90")))
	assert.Len(t, updated.Variants, 1)
	assert.Len(t, updated.Images, 1)
	require.NotNil(t, updated.ImageURL)
	assert.Equal(t, "https://cdn.test/a.jpg", *updated.ImageURL)
}

func TestProductService_UpdateRejectsBadValues(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	created, err := f.products.Create(ctx, f.input("Test Product"))
	require.NoError(t, err)

	_, err = f.products.Update(ctx, created.ID.String(), UpdateProductInput{Price: decimalPtr("0")})
	assert.ErrorIs(t, err, domain.ErrInvalidArgument)

	missing := uuid.New()
	_, err = f.products.Update(ctx, created.ID.String(), UpdateProductInput{CategoryID: &missing})
	assert.ErrorIs(t, err, repository.ErrCategoryNotFound)

	stored, err := f.products.GetByID(ctx, created.ID.String())
	require.NoError(t, err)
	assert.True(t, stored.Price.Equal(created.Price))
	assert.Equal(t, f.category.ID, stored.CategoryID)
}

func TestProductService_AddVariant(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	in := f.input("Test Product")
	in.Variants = []VariantInput{{SKU: "TP-M", Size: "M", Stock: 1}}
	created, err := f.products.Create(ctx, in)
	require.NoError(t, err)

	updated, err := f.products.AddVariant(ctx, created.ID.String(), VariantInput{SKU: "TP-L", Size: "l", Stock: 4})
	require.NoError(t, err)
	assert.Equal(t, 5, updated.TotalStock())

	_, err = f.products.AddVariant(ctx, created.ID.String(), VariantInput{SKU: "TP-M", Size: "S"})
	assert.ErrorIs(t, err, domain.ErrDuplicateSKU)

	_, err = f.products.AddVariant(ctx, created.ID.String(), VariantInput{SKU: "TP-XS", Size: "tiny"})
	assert.ErrorIs(t, err, domain.ErrInvalidSize)

	_, err = f.products.AddVariant(ctx, uuid.NewString(), VariantInput{SKU: "X", Size: "M"})
	assert.ErrorIs(t, err, repository.ErrProductNotFound)
}

func TestProductService_AddImageReplacesPrimary(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	in := f.input("Test Product")
	in.Images = []ImageInput{{URL: "https://cdn.test/old.jpg", IsPrimary: true}}
	created, err := f.products.Create(ctx, in)
	require.NoError(t, err)

	updated, err := f.products.AddImage(ctx, created.ID.String(), ImageInput{URL: "https://cdn.test/new.jpg", SortOrder: 1, IsPrimary: true})
	require.NoError(t, err)

	primary, ok := updated.PrimaryImage()
	require.True(t, ok)
	assert.Equal(t, "https://cdn.test/new.jpg", primary.URL)
	assert.Equal(t, "https://cdn.test/new.jpg", *updated.ImageURL)

	primaries := 0
	for _, img := range updated.Images {
		if img.IsPrimary {
			primaries++
		}
	}
	assert.Equal(t, 1, primaries)

	_, err = f.products.AddImage(ctx, created.ID.String(), ImageInput{URL: " "})
	assert.ErrorIs(t, err, domain.ErrInvalidArgument)
}

func TestProductService_DeleteCascades(t *testing.T) {
	store := memory.NewStore()
	categories := NewCategoryService(store.Categories(), zap.NewNop())
	products := NewProductService(store.Products(), store.Categories(), zap.NewNop())
	ctx := context.Background()

	category, err := categories.Create(ctx, "Hoodies")
	require.NoError(t, err)

	created, err := products.Create(ctx, CreateProductInput{
		Name:       "Test Product",
		Price:      decimal.NewFromInt(10),
		CategoryID: category.ID,
		Variants:   []VariantInput{{SKU: "TP-M", Size: "M"}},
	})
	require.NoError(t, err)

	require.NoError(t, products.Delete(ctx, created.ID.String()))

	_, err = store.Products().FindVariantByID(ctx, created.Variants[0].ID)
	assert.ErrorIs(t, err, repository.ErrVariantNotFound)
	assert.ErrorIs(t, products.Delete(ctx, created.ID.String()), repository.ErrProductNotFound)

	// The SKU is free again once its product is gone.
	_, err = products.Create(ctx, CreateProductInput{
		Name:       "Second Product",
		Price:      decimal.NewFromInt(10),
		CategoryID: category.ID,
		Variants:   []VariantInput{{SKU: "TP-M", Size: "M"}},
	})
	assert.NoError(t, err)
}
