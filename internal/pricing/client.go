// Package pricing fetches installment price lists from the payment service.
package pricing

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/utafrali/variant-service/internal/domain"
	"github.com/utafrali/variant-service/pkg/httpclient"
)

const serviceName = "payment-service"

type priceListResponse struct {
	Data struct {
		Currency string           `json:"currency"`
		Prices   map[string]int64 `json:"prices"`
	} `json:"data"`
}

// Client reads per-term installment prices for a product variant.
type Client struct {
	doer    httpclient.Doer
	baseURL string
	logger  *slog.Logger
}

// NewClient creates a Client calling baseURL through doer.
func NewClient(doer httpclient.Doer, baseURL string, logger *slog.Logger) *Client {
	return &Client{doer: doer, baseURL: strings.TrimRight(baseURL, "/"), logger: logger}
}

// NewBreakerClient wires the retrying HTTP client behind a circuit breaker.
// While the breaker is open every lookup answers with an empty price list,
// which callers render as "no installment plan".
func NewBreakerClient(baseURL string, httpCfg httpclient.Config, cbCfg httpclient.CircuitBreakerConfig, logger *slog.Logger) *Client {
	cb := httpclient.NewCircuitBreakerClient(httpclient.New(httpCfg), cbCfg, logger).
		WithFallback(func(context.Context, error) (*http.Response, error) {
			return emptyPriceList(), nil
		})
	return NewClient(cb, baseURL, logger)
}

func emptyPriceList() *http.Response {
	return &http.Response{
		StatusCode: http.StatusOK,
		Header:     http.Header{"Content-Type": []string{"application/json"}},
		Body:       io.NopCloser(strings.NewReader(`{"data":{"prices":{}}}`)),
	}
}

// Quote returns the price charged per term count for one variant together
// with the currency the prices are in. Term keys that are not integers are
// skipped.
func (c *Client) Quote(ctx context.Context, productID, sku string) (*domain.PriceQuote, error) {
	q := url.Values{}
	q.Set("product_id", productID)
	if sku != "" {
		q.Set("sku", sku)
	}
	endpoint := c.baseURL + "/api/v1/installments/prices?" + q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, http.NoBody)
	if err != nil {
		return nil, fmt.Errorf("create price list request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.doer.Do(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("call %s: %w", serviceName, err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, httpclient.ParseResponseError(resp, serviceName)
	}
	defer func() { _ = resp.Body.Close() }()

	var body priceListResponse
	if err := json.NewDecoder(io.LimitReader(resp.Body, 1<<20)).Decode(&body); err != nil {
		return nil, fmt.Errorf("decode %s price list: %w", serviceName, err)
	}

	quote := &domain.PriceQuote{
		Currency: strings.ToUpper(strings.TrimSpace(body.Data.Currency)),
		Prices:   make(domain.PriceList, len(body.Data.Prices)),
	}
	for k, p := range body.Data.Prices {
		term, err := strconv.Atoi(strings.TrimSpace(k))
		if err != nil {
			c.logger.WarnContext(ctx, "ignoring malformed installment term",
				slog.String("product_id", productID),
				slog.String("term", k),
			)
			continue
		}
		quote.Prices[term] = p
	}
	return quote, nil
}
