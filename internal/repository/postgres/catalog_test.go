package postgres

import (
	"context"
	"errors"
	"testing"

	"github.com/jackc/pgx/v5"
	pgxmock "github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/utafrali/variant-service/internal/domain"
	"github.com/utafrali/variant-service/pkg/database"
	apperrors "github.com/utafrali/variant-service/pkg/errors"
)

// ---------------------------------------------------------------------------
// helpers
// ---------------------------------------------------------------------------

func newMock(t *testing.T) pgxmock.PgxPoolIface {
	t.Helper()
	mock, err := database.NewMockPool()
	require.NoError(t, err)
	t.Cleanup(mock.Close)
	return mock
}

func int64Ptr(n int64) *int64 { return &n }

var productColumns = []string{
	"id", "name", "sku", "market_code", "ean", "price", "list_price", "currency", "stock", "media",
}

var variantColumns = []string{
	"id", "sku", "market_code", "ean", "price", "list_price", "stock", "attributes", "media",
}

func productRow() []any {
	return []any{
		"phone-x", "Phone X", "PHONE-X", "", "7790000000001",
		int64(500000), int64Ptr(550000), "ARS", 9,
		[]byte(`[{"url":"https://cdn/phone-x.jpg","type":"image"}]`),
	}
}

// ---------------------------------------------------------------------------
// GetSource
// ---------------------------------------------------------------------------

func TestGetSource(t *testing.T) {
	mock := newMock(t)
	repo := NewCatalogRepository(mock)

	mock.ExpectQuery("SELECT (.+) FROM products").
		WithArgs("phone-x").
		WillReturnRows(pgxmock.NewRows(productColumns).AddRow(productRow()...))

	mock.ExpectQuery("SELECT (.+) FROM product_variants").
		WithArgs("phone-x").
		WillReturnRows(pgxmock.NewRows(variantColumns).
			AddRow("v-1", "B128", "", "", int64(1000000), int64Ptr(1100000), 3,
				[]byte(`{"color":"Black","capacity":"128GB"}`), []byte(nil)).
			AddRow("v-2", "", "MC-2", "", int64(1200000), (*int64)(nil), 0,
				[]byte(`{"color":"White","ram":"no aplica"}`),
				[]byte(`[{"url":"https://cdn/white.jpg","type":"image"}]`)))

	src, err := repo.GetSource(context.Background(), "phone-x")
	require.NoError(t, err)

	assert.Equal(t, "Phone X", src.Product.Name)
	assert.Equal(t, int64(550000), src.Product.ListPrice)
	assert.Equal(t, 9, src.Product.Stock)
	require.Len(t, src.Product.Media, 1)
	assert.Equal(t, domain.MediaImage, src.Product.Media[0].Type)

	require.Len(t, src.Variants, 2)
	assert.Equal(t, "B128", src.Variants[0].SKU)
	assert.Equal(t, int64(1100000), *src.Variants[0].ListPrice)
	assert.Equal(t, map[string]string{"color": "Black", "capacity": "128GB"}, src.Variants[0].Attributes)
	assert.Empty(t, src.Variants[0].Media)

	assert.Equal(t, "MC-2", src.Variants[1].MarketCode)
	assert.Nil(t, src.Variants[1].ListPrice)
	assert.Len(t, src.Variants[1].Media, 1)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGetSource_NoVariants(t *testing.T) {
	mock := newMock(t)
	repo := NewCatalogRepository(mock)

	mock.ExpectQuery("SELECT (.+) FROM products").
		WithArgs("phone-x").
		WillReturnRows(pgxmock.NewRows(productColumns).AddRow(productRow()...))
	mock.ExpectQuery("SELECT (.+) FROM product_variants").
		WithArgs("phone-x").
		WillReturnRows(pgxmock.NewRows(variantColumns))

	src, err := repo.GetSource(context.Background(), "phone-x")
	require.NoError(t, err)
	assert.Empty(t, src.Variants)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGetSource_ProductNotFound(t *testing.T) {
	mock := newMock(t)
	repo := NewCatalogRepository(mock)

	mock.ExpectQuery("SELECT (.+) FROM products").
		WithArgs("missing").
		WillReturnError(pgx.ErrNoRows)

	_, err := repo.GetSource(context.Background(), "missing")
	require.Error(t, err)
	assert.True(t, errors.Is(err, apperrors.ErrNotFound))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGetSource_QueryErrors(t *testing.T) {
	t.Run("product query", func(t *testing.T) {
		mock := newMock(t)
		mock.ExpectQuery("SELECT (.+) FROM products").
			WithArgs("phone-x").
			WillReturnError(errors.New("connection reset"))

		_, err := NewCatalogRepository(mock).GetSource(context.Background(), "phone-x")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "get product phone-x")
	})

	t.Run("variant query", func(t *testing.T) {
		mock := newMock(t)
		mock.ExpectQuery("SELECT (.+) FROM products").
			WithArgs("phone-x").
			WillReturnRows(pgxmock.NewRows(productColumns).AddRow(productRow()...))
		mock.ExpectQuery("SELECT (.+) FROM product_variants").
			WithArgs("phone-x").
			WillReturnError(errors.New("timeout"))

		_, err := NewCatalogRepository(mock).GetSource(context.Background(), "phone-x")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "list variants")
	})

	t.Run("bad attributes json", func(t *testing.T) {
		mock := newMock(t)
		mock.ExpectQuery("SELECT (.+) FROM products").
			WithArgs("phone-x").
			WillReturnRows(pgxmock.NewRows(productColumns).AddRow(productRow()...))
		mock.ExpectQuery("SELECT (.+) FROM product_variants").
			WithArgs("phone-x").
			WillReturnRows(pgxmock.NewRows(variantColumns).
				AddRow("v-1", "B128", "", "", int64(1), (*int64)(nil), 1, []byte(`{oops`), []byte(nil)))

		_, err := NewCatalogRepository(mock).GetSource(context.Background(), "phone-x")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "decode attributes of variant v-1")
	})
}
