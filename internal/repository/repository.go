package repository

import (
	"context"

	"github.com/utafrali/variant-service/internal/domain"
)

// CatalogRepository loads the raw records a product's catalog is built from.
type CatalogRepository interface {
	// GetSource returns the base product and its active variants in catalog
	// order. A missing product yields an error matching errors.ErrNotFound.
	GetSource(ctx context.Context, productID string) (*domain.CatalogSource, error)
}

// CatalogCache is a shared read-through cache of catalog sources.
type CatalogCache interface {
	// Get returns nil, nil on a miss.
	Get(ctx context.Context, productID string) (*domain.CatalogSource, error)
	Set(ctx context.Context, src *domain.CatalogSource) error
	Delete(ctx context.Context, productID string) error
}
