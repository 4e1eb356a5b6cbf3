package http

import (
	"log/slog"
	"net/http"
	"strings"
	"sync"

	"github.com/go-chi/chi/v5"

	"github.com/utafrali/variant-service/internal/domain"
	"github.com/utafrali/variant-service/internal/service"
	apperrors "github.com/utafrali/variant-service/pkg/errors"
	"github.com/utafrali/variant-service/pkg/httputil"
	"github.com/utafrali/variant-service/pkg/validator"
)

var registerOnce sync.Once

// registerValidations installs the "dimension" tag, which accepts the
// declared dimension names in any case.
func registerValidations() {
	registerOnce.Do(func() {
		err := validator.RegisterValidation("dimension", func(v string) bool {
			_, err := domain.ParseDimensionKind(v)
			return err == nil
		})
		if err != nil {
			panic(err)
		}
	})
}

// SelectionHandler handles HTTP requests for selection endpoints.
type SelectionHandler struct {
	selection *service.SelectionService
	catalog   *service.CatalogService
	logger    *slog.Logger
}

// NewSelectionHandler creates a new selection HTTP handler.
func NewSelectionHandler(selection *service.SelectionService, catalog *service.CatalogService, logger *slog.Logger) *SelectionHandler {
	return &SelectionHandler{
		selection: selection,
		catalog:   catalog,
		logger:    logger,
	}
}

// --- Request / response DTOs ---

// SelectDimensionRequest carries the client's current pins and the change
// to apply. An empty Dimension only restores the pins.
type SelectDimensionRequest struct {
	Pinned    map[string]string `json:"pinned" validate:"omitempty,dive,keys,dimension,endkeys,required"`
	Dimension string            `json:"dimension" validate:"omitempty,dimension"`
	Value     string            `json:"value" validate:"required_with=Dimension"`
}

// InstallmentsResponse is the body of GET .../installments. A null plan
// means the plain price is shown.
type InstallmentsResponse struct {
	ProductID string                  `json:"product_id"`
	SKU       string                  `json:"sku,omitempty"`
	Price     int64                   `json:"price"`
	Plan      *domain.InstallmentPlan `json:"plan"`
}

// RefreshResponse is the body of POST .../catalog/refresh.
type RefreshResponse struct {
	ProductID   string `json:"product_id"`
	Invalidated bool   `json:"invalidated"`
}

// --- Handlers ---

// GetSelection handles GET /api/v1/products/{productId}/selection
func (h *SelectionHandler) GetSelection(w http.ResponseWriter, r *http.Request) {
	productID, ok := productIDParam(w, r)
	if !ok {
		return
	}

	view, err := h.selection.Initial(r.Context(), productID, strings.TrimSpace(r.URL.Query().Get("sku")))
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}
	httputil.WriteData(w, http.StatusOK, view)
}

// SelectDimension handles POST /api/v1/products/{productId}/selection
func (h *SelectionHandler) SelectDimension(w http.ResponseWriter, r *http.Request) {
	productID, ok := productIDParam(w, r)
	if !ok {
		return
	}

	var req SelectDimensionRequest
	if err := validator.DecodeAndValidate(r, &req); err != nil {
		httputil.WriteValidationError(w, err)
		return
	}

	// Tags above guarantee every name parses. Names differing only in case
	// map to the same dimension and are rejected.
	pins := make(domain.Pins, len(req.Pinned))
	for name, v := range req.Pinned {
		d, _ := domain.ParseDimensionKind(name)
		if _, dup := pins[d]; dup {
			httputil.WriteError(w, r, apperrors.InvalidInput("dimension "+d.String()+" is pinned more than once"), h.logger)
			return
		}
		pins[d] = v
	}
	var dimension *domain.DimensionKind
	if req.Dimension != "" {
		d, _ := domain.ParseDimensionKind(req.Dimension)
		dimension = &d
	}

	view, err := h.selection.Select(r.Context(), productID, pins, dimension, req.Value)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}
	httputil.WriteData(w, http.StatusOK, view)
}

// GetInstallments handles GET /api/v1/products/{productId}/installments
func (h *SelectionHandler) GetInstallments(w http.ResponseWriter, r *http.Request) {
	productID, ok := productIDParam(w, r)
	if !ok {
		return
	}

	price, present, ok := httputil.QueryInt64(w, r, "price")
	if !ok {
		return
	}
	if !present {
		httputil.WriteError(w, r, apperrors.InvalidInput("price is required"), h.logger)
		return
	}
	sku := strings.TrimSpace(r.URL.Query().Get("sku"))

	plan, err := h.selection.Installments(r.Context(), productID, sku, price)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}
	httputil.WriteData(w, http.StatusOK, InstallmentsResponse{
		ProductID: productID,
		SKU:       sku,
		Price:     price,
		Plan:      plan,
	})
}

// RefreshCatalog handles POST /api/v1/products/{productId}/catalog/refresh
func (h *SelectionHandler) RefreshCatalog(w http.ResponseWriter, r *http.Request) {
	productID, ok := productIDParam(w, r)
	if !ok {
		return
	}

	if err := h.catalog.Invalidate(r.Context(), productID); err != nil {
		httputil.WriteError(w, r, apperrors.ServiceUnavailable(err.Error()), h.logger)
		return
	}
	httputil.WriteData(w, http.StatusOK, RefreshResponse{ProductID: productID, Invalidated: true})
}

func productIDParam(w http.ResponseWriter, r *http.Request) (string, bool) {
	id := strings.TrimSpace(chi.URLParam(r, "productId"))
	if id == "" || len(id) > 128 {
		httputil.WriteJSON(w, http.StatusBadRequest, httputil.Response{
			Error: &httputil.ErrorResponse{Code: "INVALID_PARAMETER", Message: "invalid product id"},
		})
		return "", false
	}
	return id, true
}
