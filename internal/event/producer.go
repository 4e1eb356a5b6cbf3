package event

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/utafrali/variant-service/internal/catalog"
	pkgkafka "github.com/utafrali/variant-service/pkg/kafka"
)

// Kafka topics produced by the variant service.
const (
	TopicVariantDataQuality = "ecommerce.variant.data_quality"
)

// AggregateTypeProduct is the aggregate every variant event is keyed by.
const AggregateTypeProduct = "product"

// SourceVariantService identifies events originating here.
const SourceVariantService = "variant-service"

// Publisher is the part of *pkgkafka.Producer the event producer needs.
type Publisher interface {
	Publish(ctx context.Context, topic string, event *pkgkafka.Event) error
}

// IssueData is one data-quality finding inside a data_quality event.
type IssueData struct {
	Kind    string `json:"kind"`
	Variant string `json:"variant,omitempty"`
	Detail  string `json:"detail,omitempty"`
}

// DataQualityData is the payload for a variant.data_quality event.
type DataQualityData struct {
	ProductID string      `json:"product_id"`
	Issues    []IssueData `json:"issues"`
}

// Producer publishes variant domain events to Kafka.
type Producer struct {
	kafka  Publisher
	logger *slog.Logger
}

// NewProducer creates a new event producer for the variant service.
func NewProducer(kafka Publisher, logger *slog.Logger) *Producer {
	return &Producer{
		kafka:  kafka,
		logger: logger,
	}
}

// PublishDataQuality publishes the findings of one catalog build. Nothing
// is sent when issues is empty.
func (p *Producer) PublishDataQuality(ctx context.Context, productID string, issues []catalog.Issue) error {
	if len(issues) == 0 {
		return nil
	}

	data := DataQualityData{ProductID: productID, Issues: make([]IssueData, 0, len(issues))}
	for _, is := range issues {
		data.Issues = append(data.Issues, IssueData{
			Kind:    string(is.Kind),
			Variant: is.Variant,
			Detail:  is.Detail,
		})
	}

	event, err := pkgkafka.NewEvent(TopicVariantDataQuality, productID, AggregateTypeProduct, SourceVariantService, data)
	if err != nil {
		return fmt.Errorf("create variant.data_quality event: %w", err)
	}

	if err := p.kafka.Publish(ctx, TopicVariantDataQuality, event); err != nil {
		return fmt.Errorf("publish variant.data_quality event: %w", err)
	}

	p.logger.DebugContext(ctx, "published variant.data_quality event",
		slog.String("product_id", productID),
		slog.Int("issues", len(issues)),
	)

	return nil
}
