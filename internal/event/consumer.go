package event

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	pkgkafka "github.com/utafrali/variant-service/pkg/kafka"
)

// Kafka topics consumed by the variant service.
const (
	TopicProductUpdated = "ecommerce.product.updated"
	TopicProductDeleted = "ecommerce.product.deleted"
	TopicVariantUpdated = "ecommerce.variant.updated"
)

// CatalogInvalidator defines the interface required by the event consumer.
type CatalogInvalidator interface {
	Invalidate(ctx context.Context, productID string) error
}

// ProductChangedData is the part of product and variant change payloads
// the consumer reads.
type ProductChangedData struct {
	ProductID string `json:"product_id"`
	VariantID string `json:"variant_id,omitempty"`
}

// Consumer processes incoming Kafka events for the variant service.
type Consumer struct {
	logger  *slog.Logger
	catalog CatalogInvalidator
}

// NewConsumer creates a new event consumer for the variant service.
func NewConsumer(catalog CatalogInvalidator, logger *slog.Logger) *Consumer {
	return &Consumer{
		catalog: catalog,
		logger:  logger,
	}
}

// Handlers returns the handler for every consumed topic.
func (c *Consumer) Handlers() map[string]pkgkafka.Handler {
	return map[string]pkgkafka.Handler{
		TopicProductUpdated: c.HandleProductUpdated,
		TopicProductDeleted: c.HandleProductDeleted,
		TopicVariantUpdated: c.HandleVariantUpdated,
	}
}

// HandleProductUpdated drops the catalog of the updated product.
func (c *Consumer) HandleProductUpdated(ctx context.Context, event *pkgkafka.Event) error {
	return c.invalidate(ctx, "product.updated", event)
}

// HandleProductDeleted drops the catalog of the deleted product.
func (c *Consumer) HandleProductDeleted(ctx context.Context, event *pkgkafka.Event) error {
	return c.invalidate(ctx, "product.deleted", event)
}

// HandleVariantUpdated drops the catalog owning the updated variant.
func (c *Consumer) HandleVariantUpdated(ctx context.Context, event *pkgkafka.Event) error {
	return c.invalidate(ctx, "variant.updated", event)
}

func (c *Consumer) invalidate(ctx context.Context, kind string, event *pkgkafka.Event) error {
	var data ProductChangedData
	if len(event.Data) > 0 {
		if err := json.Unmarshal(event.Data, &data); err != nil {
			return fmt.Errorf("unmarshal %s data: %w", kind, err)
		}
	}

	productID := data.ProductID
	if productID == "" && event.AggregateType == AggregateTypeProduct {
		productID = event.AggregateID
	}
	if productID == "" {
		c.logger.WarnContext(ctx, "skipping event without product id",
			slog.String("event_type", kind),
			slog.String("event_id", event.EventID),
		)
		return nil
	}

	c.logger.InfoContext(ctx, "processing "+kind+" event",
		slog.String("product_id", productID),
		slog.String("event_id", event.EventID),
	)

	if err := c.catalog.Invalidate(ctx, productID); err != nil {
		return fmt.Errorf("invalidate catalog for product %s: %w", productID, err)
	}
	return nil
}
