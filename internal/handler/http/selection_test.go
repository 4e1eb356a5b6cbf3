package http

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/utafrali/variant-service/internal/domain"
	"github.com/utafrali/variant-service/internal/installment"
	"github.com/utafrali/variant-service/internal/service"
	apperrors "github.com/utafrali/variant-service/pkg/errors"
	"github.com/utafrali/variant-service/pkg/health"
	"github.com/utafrali/variant-service/pkg/httputil"
	"github.com/utafrali/variant-service/pkg/middleware"
	"github.com/utafrali/variant-service/pkg/money"
)

// ============================================================================
// Mocks
// ============================================================================

type mockRepository struct {
	mock.Mock
}

func (m *mockRepository) GetSource(ctx context.Context, productID string) (*domain.CatalogSource, error) {
	args := m.Called(ctx, productID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.CatalogSource), args.Error(1)
}

type mockCache struct {
	mock.Mock
}

func (m *mockCache) Get(ctx context.Context, productID string) (*domain.CatalogSource, error) {
	args := m.Called(ctx, productID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.CatalogSource), args.Error(1)
}

func (m *mockCache) Set(ctx context.Context, src *domain.CatalogSource) error {
	return m.Called(ctx, src).Error(0)
}

func (m *mockCache) Delete(ctx context.Context, productID string) error {
	return m.Called(ctx, productID).Error(0)
}

type stubPrices struct {
	prices   domain.PriceList
	currency string
	err      error
}

func (s stubPrices) Quote(context.Context, string, string) (*domain.PriceQuote, error) {
	if s.err != nil {
		return nil, s.err
	}
	return &domain.PriceQuote{Currency: s.currency, Prices: s.prices}, nil
}

// ============================================================================
// Helpers
// ============================================================================

func phoneSource() *domain.CatalogSource {
	return &domain.CatalogSource{
		Product: domain.BaseProduct{ID: "phone-x", Name: "Phone X", Price: 1000000, Currency: "ARS"},
		Variants: []domain.RawVariant{
			{ID: "v1", SKU: "B128", Price: 1000000, Stock: 3, Attributes: map[string]string{"color": "Black", "capacity": "128GB"}},
			{ID: "v2", SKU: "B256", Price: 1200000, Stock: 1, Attributes: map[string]string{"color": "Black", "capacity": "256GB"}},
			{ID: "v3", SKU: "W128", Price: 1000000, Stock: 0, Attributes: map[string]string{"color": "White", "capacity": "128GB"}},
		},
	}
}

type fixture struct {
	router http.Handler
	repo   *mockRepository
	cache  *mockCache
}

func setup(t *testing.T, prices service.PriceQuoter) *fixture {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	repo := new(mockRepository)
	repo.On("GetSource", mock.Anything, "phone-x").Return(phoneSource(), nil).Maybe()
	repo.On("GetSource", mock.Anything, mock.Anything).Return(nil, apperrors.NotFound("product", "unknown")).Maybe()

	cache := new(mockCache)
	cache.On("Get", mock.Anything, mock.Anything).Return(nil, nil).Maybe()
	cache.On("Set", mock.Anything, mock.Anything).Return(nil).Maybe()

	catalogs := service.NewCatalogService(repo, cache, nil, logger, 0)
	selection := service.NewSelectionService(catalogs, prices, installment.NewCalculator(money.ARS), prices != nil, logger)

	router := NewRouter(selection, catalogs, health.NewHandler(), logger, RouterConfig{
		CORS:        middleware.DefaultCORSConfig(),
		CacheMaxAge: 60,
	})
	return &fixture{router: router, repo: repo, cache: cache}
}

type viewEnvelope struct {
	Data  *service.View           `json:"data"`
	Error *httputil.ErrorResponse `json:"error"`
}

func do(t *testing.T, h http.Handler, method, target string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var r io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		r = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, target, r)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func decodeView(t *testing.T, rec *httptest.ResponseRecorder) viewEnvelope {
	t.Helper()
	var env viewEnvelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env))
	return env
}

// ============================================================================
// Selection
// ============================================================================

func TestGetSelection(t *testing.T) {
	f := setup(t, stubPrices{prices: domain.PriceList{6: 1000000, 12: 1140000}})

	rec := do(t, f.router, http.MethodGet, "/api/v1/products/phone-x/selection", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "public, max-age=60", rec.Header().Get("Cache-Control"))

	env := decodeView(t, rec)
	require.NotNil(t, env.Data)
	assert.Equal(t, domain.Pins{domain.Color: "Black", domain.Capacity: "128GB"}, env.Data.Pinned)
	assert.Equal(t, "B128", env.Data.Variant.SKU)
	require.NotNil(t, env.Data.Installments)
	assert.Equal(t, 6, env.Data.Installments.TermCount)
	assert.Equal(t, "6 cuotas de $166.667 sin interés", env.Data.Installments.DisplayFull)

	// Dimension names are the JSON keys.
	assert.Contains(t, rec.Body.String(), `"pinned":{"capacity":"128GB","color":"Black"}`)
}

func TestGetSelection_PreferredSKU(t *testing.T) {
	f := setup(t, nil)

	rec := do(t, f.router, http.MethodGet, "/api/v1/products/phone-x/selection?sku=W128", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	env := decodeView(t, rec)
	assert.Equal(t, "W128", env.Data.Variant.SKU)
	assert.False(t, env.Data.InStock)
	assert.Nil(t, env.Data.Installments)
}

func TestGetSelection_NotFound(t *testing.T) {
	f := setup(t, nil)

	rec := do(t, f.router, http.MethodGet, "/api/v1/products/missing/selection", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	env := decodeView(t, rec)
	require.NotNil(t, env.Error)
	assert.Equal(t, "NOT_FOUND", env.Error.Code)
}

func TestSelectDimension(t *testing.T) {
	f := setup(t, nil)

	rec := do(t, f.router, http.MethodPost, "/api/v1/products/phone-x/selection", SelectDimensionRequest{
		Pinned:    map[string]string{"color": "Black", "capacity": "256GB"},
		Dimension: "Color",
		Value:     "White",
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Empty(t, rec.Header().Get("Cache-Control"))

	env := decodeView(t, rec)
	assert.Equal(t, domain.Pins{domain.Color: "White", domain.Capacity: "128GB"}, env.Data.Pinned)
	assert.Equal(t, "W128", env.Data.Variant.SKU)
	assert.Equal(t, []string{"128GB"}, env.Data.Available[domain.Capacity])
}

func TestSelectDimension_UnknownValueIsNoOp(t *testing.T) {
	f := setup(t, nil)

	rec := do(t, f.router, http.MethodPost, "/api/v1/products/phone-x/selection", SelectDimensionRequest{
		Pinned:    map[string]string{"color": "Black", "capacity": "256GB"},
		Dimension: "color",
		Value:     "Gold",
	})
	require.Equal(t, http.StatusOK, rec.Code)
	env := decodeView(t, rec)
	assert.Equal(t, "B256", env.Data.Variant.SKU)
}

func TestSelectDimension_Validation(t *testing.T) {
	tests := []struct {
		name string
		body any
		code string
	}{
		{
			name: "unknown dimension",
			body: SelectDimensionRequest{Dimension: "size", Value: "XL"},
			code: "VALIDATION_ERROR",
		},
		{
			name: "unknown pinned dimension",
			body: SelectDimensionRequest{Pinned: map[string]string{"weight": "1kg"}},
			code: "VALIDATION_ERROR",
		},
		{
			name: "dimension without value",
			body: SelectDimensionRequest{Dimension: "color"},
			code: "VALIDATION_ERROR",
		},
		{
			name: "dimension pinned twice in different case",
			body: SelectDimensionRequest{Pinned: map[string]string{"Color": "Black", "color": "White"}},
			code: "INVALID_INPUT",
		},
		{
			name: "malformed body",
			body: "not an object",
			code: "INVALID_INPUT",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := setup(t, nil)
			rec := do(t, f.router, http.MethodPost, "/api/v1/products/phone-x/selection", tt.body)
			assert.Equal(t, http.StatusBadRequest, rec.Code)
			env := decodeView(t, rec)
			require.NotNil(t, env.Error)
			assert.Equal(t, tt.code, env.Error.Code)
		})
	}
}

func TestSelectDimension_RejectsNonJSON(t *testing.T) {
	f := setup(t, nil)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/products/phone-x/selection", strings.NewReader(`dimension=color`))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	rec := httptest.NewRecorder()
	f.router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnsupportedMediaType, rec.Code)
}

// ============================================================================
// Installments
// ============================================================================

type installmentsEnvelope struct {
	Data  *InstallmentsResponse   `json:"data"`
	Error *httputil.ErrorResponse `json:"error"`
}

func TestGetInstallments(t *testing.T) {
	f := setup(t, stubPrices{prices: domain.PriceList{3: 1150000, 6: 1200000, 12: 1300000}})

	rec := do(t, f.router, http.MethodGet, "/api/v1/products/phone-x/installments?price=1200000&sku=B256", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var env installmentsEnvelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env))
	require.NotNil(t, env.Data.Plan)
	assert.Equal(t, 6, env.Data.Plan.TermCount)
	assert.Equal(t, int64(200000), env.Data.Plan.PerInstallmentAmount)
	assert.Equal(t, "$200.000 x6", env.Data.Plan.DisplayShort)
}

func TestGetInstallments_NoPlan(t *testing.T) {
	f := setup(t, stubPrices{err: errors.New("payment service down")})

	rec := do(t, f.router, http.MethodGet, "/api/v1/products/phone-x/installments?price=1000000", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"plan":null`)
}

func TestGetInstallments_BadPrice(t *testing.T) {
	f := setup(t, nil)

	for _, target := range []string{
		"/api/v1/products/phone-x/installments",
		"/api/v1/products/phone-x/installments?price=abc",
		"/api/v1/products/phone-x/installments?price=0",
	} {
		rec := do(t, f.router, http.MethodGet, target, nil)
		assert.Equal(t, http.StatusBadRequest, rec.Code, target)
	}
}

// ============================================================================
// Admin & health
// ============================================================================

func TestRefreshCatalog(t *testing.T) {
	f := setup(t, nil)
	f.cache.On("Delete", mock.Anything, "phone-x").Return(nil).Once()

	rec := do(t, f.router, http.MethodGet, "/api/v1/products/phone-x/selection", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = do(t, f.router, http.MethodPost, "/api/v1/products/phone-x/catalog/refresh", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"invalidated":true`)

	rec = do(t, f.router, http.MethodGet, "/api/v1/products/phone-x/selection", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	f.repo.AssertNumberOfCalls(t, "GetSource", 2)
	f.cache.AssertExpectations(t)
}

func TestRefreshCatalog_CacheDown(t *testing.T) {
	f := setup(t, nil)
	f.cache.On("Delete", mock.Anything, "phone-x").Return(errors.New("redis down"))

	rec := do(t, f.router, http.MethodPost, "/api/v1/products/phone-x/catalog/refresh", nil)
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestHealthAndMetrics(t *testing.T) {
	f := setup(t, nil)

	assert.Equal(t, http.StatusOK, do(t, f.router, http.MethodGet, "/health/live", nil).Code)
	assert.Equal(t, http.StatusOK, do(t, f.router, http.MethodGet, "/health/ready", nil).Code)

	rec := do(t, f.router, http.MethodGet, "/metrics", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "http_requests_total")
}
