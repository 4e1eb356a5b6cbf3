package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/utafrali/variant-service/internal/domain"
	"github.com/utafrali/variant-service/pkg/database"
	apperrors "github.com/utafrali/variant-service/pkg/errors"
)

const (
	getProductQuery = `
		SELECT id, name, COALESCE(sku, ''), COALESCE(market_code, ''), COALESCE(ean, ''),
		       price, list_price, currency, stock, media
		FROM products
		WHERE id = $1`

	listVariantsQuery = `
		SELECT id, COALESCE(sku, ''), COALESCE(market_code, ''), COALESCE(ean, ''),
		       price, list_price, stock, attributes, media
		FROM product_variants
		WHERE product_id = $1 AND is_active
		ORDER BY position, id`
)

// CatalogRepository implements repository.CatalogRepository on PostgreSQL.
type CatalogRepository struct {
	pool database.DBTX
}

// NewCatalogRepository creates a CatalogRepository.
func NewCatalogRepository(pool database.DBTX) *CatalogRepository {
	return &CatalogRepository{pool: pool}
}

// GetSource loads a product and its active variants ordered by position.
func (r *CatalogRepository) GetSource(ctx context.Context, productID string) (_ *domain.CatalogSource, err error) {
	ctx, end := database.TraceQuery(ctx, "GetCatalogSource", getProductQuery)
	defer func() { end(err) }()

	product, err := r.getProduct(ctx, productID)
	if err != nil {
		return nil, err
	}

	variants, err := r.listVariants(ctx, productID)
	if err != nil {
		return nil, err
	}

	return &domain.CatalogSource{Product: *product, Variants: variants}, nil
}

func (r *CatalogRepository) getProduct(ctx context.Context, id string) (*domain.BaseProduct, error) {
	var (
		p         domain.BaseProduct
		listPrice *int64
		media     []byte
	)
	err := r.pool.QueryRow(ctx, getProductQuery, id).Scan(
		&p.ID,
		&p.Name,
		&p.SKU,
		&p.MarketCode,
		&p.EAN,
		&p.Price,
		&listPrice,
		&p.Currency,
		&p.Stock,
		&media,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NotFound("product", id)
		}
		return nil, fmt.Errorf("get product %s: %w", id, err)
	}

	if listPrice != nil {
		p.ListPrice = *listPrice
	}
	if err := unmarshalJSON(media, &p.Media); err != nil {
		return nil, fmt.Errorf("decode media of product %s: %w", id, err)
	}
	return &p, nil
}

func (r *CatalogRepository) listVariants(ctx context.Context, productID string) ([]domain.RawVariant, error) {
	rows, err := r.pool.Query(ctx, listVariantsQuery, productID)
	if err != nil {
		return nil, fmt.Errorf("list variants of product %s: %w", productID, err)
	}
	defer rows.Close()

	var variants []domain.RawVariant
	for rows.Next() {
		var (
			v          domain.RawVariant
			attrs, med []byte
		)
		if err := rows.Scan(
			&v.ID,
			&v.SKU,
			&v.MarketCode,
			&v.EAN,
			&v.Price,
			&v.ListPrice,
			&v.Stock,
			&attrs,
			&med,
		); err != nil {
			return nil, fmt.Errorf("scan variant: %w", err)
		}
		if err := unmarshalJSON(attrs, &v.Attributes); err != nil {
			return nil, fmt.Errorf("decode attributes of variant %s: %w", v.ID, err)
		}
		if err := unmarshalJSON(med, &v.Media); err != nil {
			return nil, fmt.Errorf("decode media of variant %s: %w", v.ID, err)
		}
		variants = append(variants, v)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate variants: %w", err)
	}

	return variants, nil
}

// unmarshalJSON treats NULL columns as empty.
func unmarshalJSON(raw []byte, dst any) error {
	if len(raw) == 0 {
		return nil
	}
	return json.Unmarshal(raw, dst)
}
