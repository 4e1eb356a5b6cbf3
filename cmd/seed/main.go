// Command seed loads demo products and variants into the variant service
// database and announces them on Kafka so running instances drop stale
// catalogs. Some records are deliberately messy to exercise the
// normalization and data-quality reporting paths.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/utafrali/variant-service/internal/config"
	"github.com/utafrali/variant-service/internal/domain"
	"github.com/utafrali/variant-service/internal/event"
	"github.com/utafrali/variant-service/migrations"
	"github.com/utafrali/variant-service/pkg/database"
	pkgkafka "github.com/utafrali/variant-service/pkg/kafka"
	"github.com/utafrali/variant-service/pkg/logger"
)

type variantDef struct {
	sku        string
	marketCode string
	price      int64
	listPrice  *int64
	stock      int
	attributes map[string]string
}

type productDef struct {
	product  domain.BaseProduct
	variants []variantDef
}

func ptr(v int64) *int64 { return &v }

func demoProducts() []productDef {
	img := func(name string) []domain.Media {
		return []domain.Media{{URL: "https://cdn.example.com/" + name + ".jpg", Type: domain.MediaImage}}
	}
	return []productDef{
		{
			product: domain.BaseProduct{ID: "phone-x", Name: "Phone X", Price: 1000000, ListPrice: 1100000, Currency: "ARS", Media: img("phone-x")},
			variants: []variantDef{
				{sku: "PX-BLK-128", price: 1000000, listPrice: ptr(1100000), stock: 12, attributes: map[string]string{"color": "Black", "capacity": "128GB"}},
				{sku: "PX-BLK-256", price: 1200000, listPrice: ptr(1300000), stock: 4, attributes: map[string]string{"color": "Black", "capacity": "256GB"}},
				{sku: "PX-WHT-128", price: 1000000, stock: 0, attributes: map[string]string{"color": "White", "capacity": "128GB"}},
			},
		},
		{
			product: domain.BaseProduct{ID: "laptop-pro", Name: "Laptop Pro", Price: 2500000, ListPrice: 2500000, Currency: "ARS", Media: img("laptop-pro")},
			variants: []variantDef{
				{sku: "LP-SLV-512-16", price: 2500000, stock: 3, attributes: map[string]string{"Colour": "Silver", "Almacenamiento": "512GB", "RAM": "16GB"}},
				{sku: "LP-SLV-1T-32", price: 3100000, stock: 1, attributes: map[string]string{"colour": "Silver", "storage": "1TB", "ram": "32GB"}},
				{marketCode: "MLA-LP-GRY", price: 2600000, stock: -2, attributes: map[string]string{"color": "Space Gray", "storage": "512GB", "memoria": "16GB"}},
				// Duplicate of the first combination without identifiers.
				{price: 2500000, stock: 7, attributes: map[string]string{"color": "Silver", "storage": "512GB", "ram": "16GB", "warranty": "1y"}},
			},
		},
		{
			product: domain.BaseProduct{ID: "cable-usb-c", Name: "USB-C Cable", SKU: "USBC-1M", Price: 15000, ListPrice: 15000, Currency: "ARS", Stock: 200, Media: img("cable-usb-c")},
		},
		{
			product: domain.BaseProduct{ID: "earbuds", Name: "Earbuds", Price: 180000, ListPrice: 180000, Currency: "ARS", Media: img("earbuds")},
			variants: []variantDef{
				{sku: "EB-BLK", price: 180000, stock: 30, attributes: map[string]string{"color": "Black", "capacity": "No aplica"}},
				{sku: "EB-WHT", price: 180000, stock: 8, attributes: map[string]string{"color": "White", "capacity": "N/A"}},
			},
		},
	}
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", slog.String("error", err.Error()))
		os.Exit(1)
	}
	log := logger.New("variant-seed", cfg.LogLevel)

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	if err := run(ctx, cfg, log); err != nil {
		log.Error("seed failed", slog.String("error", err.Error()))
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg *config.Config, log *slog.Logger) error {
	pool, err := database.NewPostgresPool(ctx, &database.PostgresConfig{
		Host:     cfg.PostgresHost,
		Port:     cfg.PostgresPort,
		User:     cfg.PostgresUser,
		Password: cfg.PostgresPass,
		DBName:   cfg.PostgresDB,
		SSLMode:  cfg.PostgresSSL,
		MaxConns: 2,
		MinConns: 1,
	}, log)
	if err != nil {
		return fmt.Errorf("connect to postgres: %w", err)
	}
	defer pool.Close()

	if err := database.RunMigrations(ctx, pool, migrations.FS, log); err != nil {
		return fmt.Errorf("run migrations: %w", err)
	}

	products := demoProducts()
	for _, p := range products {
		if err := pgx.BeginFunc(ctx, pool, func(tx pgx.Tx) error {
			return seedProduct(ctx, tx, p)
		}); err != nil {
			return fmt.Errorf("seed %s: %w", p.product.ID, err)
		}
		log.Info("product seeded",
			slog.String("product_id", p.product.ID),
			slog.Int("variants", len(p.variants)),
		)
	}

	producer := pkgkafka.NewProducer(pkgkafka.DefaultProducerConfig(cfg.KafkaBrokers), log)
	defer func() { _ = producer.Close() }()
	if err := producer.Ping(ctx); err != nil {
		log.Warn("kafka unreachable, running services keep their catalogs until they expire",
			slog.String("error", err.Error()),
		)
		return nil
	}
	for _, p := range products {
		e, err := pkgkafka.NewEvent(event.TopicProductUpdated, p.product.ID, event.AggregateTypeProduct, "variant-seed",
			event.ProductChangedData{ProductID: p.product.ID})
		if err != nil {
			return err
		}
		if err := producer.Publish(ctx, event.TopicProductUpdated, e); err != nil {
			log.Warn("failed to announce product", slog.String("product_id", p.product.ID), slog.String("error", err.Error()))
		}
	}

	log.Info("seed complete", slog.Int("products", len(products)))
	return nil
}

func seedProduct(ctx context.Context, tx pgx.Tx, p productDef) error {
	media, err := json.Marshal(p.product.Media)
	if err != nil {
		return fmt.Errorf("marshal media: %w", err)
	}

	if _, err := tx.Exec(ctx, `
		INSERT INTO products (id, name, sku, market_code, ean, price, list_price, currency, stock, media)
		VALUES ($1, $2, NULLIF($3, ''), NULLIF($4, ''), NULLIF($5, ''), $6, $7, $8, $9, $10)
		ON CONFLICT (id) DO UPDATE SET
			name = EXCLUDED.name, sku = EXCLUDED.sku, market_code = EXCLUDED.market_code,
			ean = EXCLUDED.ean, price = EXCLUDED.price, list_price = EXCLUDED.list_price,
			currency = EXCLUDED.currency, stock = EXCLUDED.stock, media = EXCLUDED.media,
			updated_at = NOW()`,
		p.product.ID, p.product.Name, p.product.SKU, p.product.MarketCode, p.product.EAN,
		p.product.Price, p.product.ListPrice, p.product.Currency, p.product.Stock, media,
	); err != nil {
		return fmt.Errorf("upsert product: %w", err)
	}

	if _, err := tx.Exec(ctx, `DELETE FROM product_variants WHERE product_id = $1`, p.product.ID); err != nil {
		return fmt.Errorf("clear variants: %w", err)
	}

	for i, v := range p.variants {
		attrs, err := json.Marshal(v.attributes)
		if err != nil {
			return fmt.Errorf("marshal attributes: %w", err)
		}
		if _, err := tx.Exec(ctx, `
			INSERT INTO product_variants (id, product_id, sku, market_code, price, list_price, stock, attributes, position)
			VALUES ($1, $2, NULLIF($3, ''), NULLIF($4, ''), $5, $6, $7, $8, $9)`,
			fmt.Sprintf("%s-%d", p.product.ID, i+1), p.product.ID, v.sku, v.marketCode,
			v.price, v.listPrice, v.stock, attrs, i,
		); err != nil {
			return fmt.Errorf("insert variant %d: %w", i+1, err)
		}
	}
	return nil
}
