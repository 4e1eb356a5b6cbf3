package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/utafrali/variant-service/internal/domain"
	"github.com/utafrali/variant-service/internal/installment"
	"github.com/utafrali/variant-service/internal/selection"
	apperrors "github.com/utafrali/variant-service/pkg/errors"
	"github.com/utafrali/variant-service/pkg/money"
)

// ResolverProvider hands out the resolver for a product's current catalog.
type ResolverProvider interface {
	Resolver(ctx context.Context, productID string) (*selection.Resolver, error)
}

// PriceQuoter fetches per-term installment prices for a variant.
type PriceQuoter interface {
	Quote(ctx context.Context, productID, sku string) (*domain.PriceQuote, error)
}

// View is what a product page renders for one selection.
type View struct {
	ProductID    string                            `json:"product_id"`
	Pinned       domain.Pins                       `json:"pinned"`
	Dimensions   []domain.DimensionKind            `json:"dimensions"`
	Available    map[domain.DimensionKind][]string `json:"available"`
	Variant      *domain.Variant                   `json:"variant"`
	InStock      bool                              `json:"in_stock"`
	Purchasable  bool                              `json:"purchasable"`
	Synthesized  bool                              `json:"synthesized"`
	Installments *domain.InstallmentPlan           `json:"installments,omitempty"`
}

// SelectionService turns shopper choices into renderable views.
type SelectionService struct {
	catalogs            ResolverProvider
	prices              PriceQuoter
	calculator          *installment.Calculator
	installmentsEnabled bool
	logger              *slog.Logger
}

// NewSelectionService creates a selection service. prices may be nil, in
// which case views never carry an installment plan.
func NewSelectionService(
	catalogs ResolverProvider,
	prices PriceQuoter,
	calculator *installment.Calculator,
	installmentsEnabled bool,
	logger *slog.Logger,
) *SelectionService {
	return &SelectionService{
		catalogs:            catalogs,
		prices:              prices,
		calculator:          calculator,
		installmentsEnabled: installmentsEnabled,
		logger:              logger,
	}
}

// Initial returns the opening view of productID, honoring preferredSKU
// when the catalog knows it.
func (s *SelectionService) Initial(ctx context.Context, productID, preferredSKU string) (*View, error) {
	r, err := s.catalogs.Resolver(ctx, productID)
	if err != nil {
		return nil, fmt.Errorf("initial selection: %w", err)
	}
	return s.view(ctx, r, r.Initialize(preferredSKU)), nil
}

// Select restores the client's pins and applies one dimension change. A
// nil dimension only restores.
func (s *SelectionService) Select(ctx context.Context, productID string, pinned domain.Pins, dimension *domain.DimensionKind, value string) (*View, error) {
	if dimension != nil && !dimension.Valid() {
		return nil, apperrors.InvalidInput(fmt.Sprintf("unknown dimension %d", int(*dimension)))
	}
	for d := range pinned {
		if !d.Valid() {
			return nil, apperrors.InvalidInput(fmt.Sprintf("unknown dimension %d", int(d)))
		}
	}

	r, err := s.catalogs.Resolver(ctx, productID)
	if err != nil {
		return nil, fmt.Errorf("select dimension: %w", err)
	}

	sel := r.Restore(pinned)
	if dimension != nil {
		sel = r.SelectDimension(sel, *dimension, value)
	}
	return s.view(ctx, r, sel), nil
}

// Installments computes the zero-interest plan for price using the price
// list of sku, or of the product's opening variant when sku is empty. A
// nil plan means the plain price is shown.
func (s *SelectionService) Installments(ctx context.Context, productID, sku string, price int64) (*domain.InstallmentPlan, error) {
	if price <= 0 {
		return nil, apperrors.InvalidInput("price must be positive")
	}

	r, err := s.catalogs.Resolver(ctx, productID)
	if err != nil {
		return nil, fmt.Errorf("installments: %w", err)
	}
	if sku == "" {
		if v := r.Initialize("").Resolved; v != nil {
			sku = v.Code()
		}
	}
	return s.plan(ctx, productID, sku, price), nil
}

func (s *SelectionService) view(ctx context.Context, r *selection.Resolver, sel selection.Selection) *View {
	c := r.Catalog()
	v := &View{
		ProductID:   c.Product().ID,
		Pinned:      sel.Pinned,
		Dimensions:  c.Dimensions(),
		Available:   make(map[domain.DimensionKind][]string, len(c.Dimensions())),
		Variant:     sel.Resolved,
		Synthesized: sel.Synthesized,
	}
	if v.Dimensions == nil {
		v.Dimensions = []domain.DimensionKind{}
	}
	for _, d := range v.Dimensions {
		v.Available[d] = r.AvailableValues(sel, d)
	}
	if sel.Resolved != nil {
		v.InStock = sel.Resolved.InStock()
		v.Purchasable = sel.Resolved.Purchasable()
		v.Installments = s.plan(ctx, v.ProductID, sel.Resolved.Code(), sel.Resolved.Price)
	}
	return v
}

// plan never fails: any trouble reaching the payment service yields no
// plan. Amounts are written in the quote's currency when it is a known
// one, otherwise in the configured format.
func (s *SelectionService) plan(ctx context.Context, productID, sku string, price int64) *domain.InstallmentPlan {
	if !s.installmentsEnabled || s.prices == nil {
		return nil
	}

	quote, err := s.prices.Quote(ctx, productID, sku)
	if err != nil {
		level := slog.LevelWarn
		if errors.Is(err, apperrors.ErrNotFound) {
			level = slog.LevelDebug
		}
		s.logger.Log(ctx, level, "installment price list unavailable",
			slog.String("product_id", productID),
			slog.String("sku", sku),
			slog.String("error", err.Error()),
		)
		return nil
	}
	calc := s.calculator
	if f, ok := money.LookupFormat(quote.Currency); ok {
		calc = installment.NewCalculator(f)
	}
	return calc.Compute(quote.Prices, price, s.installmentsEnabled)
}
