package service

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/utafrali/variant-service/internal/catalog"
	"github.com/utafrali/variant-service/internal/domain"
	"github.com/utafrali/variant-service/internal/repository"
	"github.com/utafrali/variant-service/internal/selection"
)

// DataQualityPublisher announces the findings of a catalog build.
type DataQualityPublisher interface {
	PublishDataQuality(ctx context.Context, productID string, issues []catalog.Issue) error
}

type snapshot struct {
	resolver *selection.Resolver
	builtAt  time.Time
}

// CatalogService keeps one immutable catalog snapshot per product. A
// missing or expired snapshot is rebuilt from the shared cache, then from
// the repository. Snapshots are replaced whole and never patched.
//
// Every Invalidate bumps the product's generation. A build that started
// under an older generation still answers its caller but neither stores
// its snapshot nor refills the cache.
type CatalogService struct {
	repo      repository.CatalogRepository
	cache     repository.CatalogCache
	publisher DataQualityPublisher
	logger    *slog.Logger
	ttl       time.Duration
	now       func() time.Time

	mu          sync.RWMutex
	snapshots   map[string]snapshot
	generations map[string]uint64
}

// NewCatalogService creates a catalog service. cache and publisher may be
// nil. A zero ttl keeps snapshots until they are invalidated.
func NewCatalogService(
	repo repository.CatalogRepository,
	cache repository.CatalogCache,
	publisher DataQualityPublisher,
	logger *slog.Logger,
	ttl time.Duration,
) *CatalogService {
	return &CatalogService{
		repo:        repo,
		cache:       cache,
		publisher:   publisher,
		logger:      logger,
		ttl:         ttl,
		now:         time.Now,
		snapshots:   make(map[string]snapshot),
		generations: make(map[string]uint64),
	}
}

// Resolver returns the resolver over productID's current catalog. Findings
// noticed while resolving are reported against ctx.
func (s *CatalogService) Resolver(ctx context.Context, productID string) (*selection.Resolver, error) {
	s.mu.RLock()
	snap, ok := s.snapshots[productID]
	gen := s.generations[productID]
	s.mu.RUnlock()

	if ok && !s.expired(snap) {
		catalogLookups.WithLabelValues(layerSnapshot, resultHit).Inc()
		return snap.resolver.WithReporter(s.reporter(ctx)), nil
	}
	catalogLookups.WithLabelValues(layerSnapshot, resultMiss).Inc()

	r, err := s.build(ctx, productID, gen)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	if s.generations[productID] == gen {
		s.snapshots[productID] = snapshot{resolver: r, builtAt: s.now()}
	}
	s.mu.Unlock()
	return r.WithReporter(s.reporter(ctx)), nil
}

// Invalidate drops productID's snapshot and cache entry so the next read
// rebuilds the catalog from the repository.
func (s *CatalogService) Invalidate(ctx context.Context, productID string) error {
	s.mu.Lock()
	delete(s.snapshots, productID)
	s.generations[productID]++
	s.mu.Unlock()

	if s.cache != nil {
		if err := s.cache.Delete(ctx, productID); err != nil {
			return fmt.Errorf("invalidate catalog cache: %w", err)
		}
	}

	s.logger.InfoContext(ctx, "catalog invalidated", slog.String("product_id", productID))
	return nil
}

// reporter binds data-quality reporting to ctx.
func (s *CatalogService) reporter(ctx context.Context) selection.Reporter {
	return selection.ReporterFunc(func(issue catalog.Issue) {
		s.report(ctx, issue)
	})
}

func (s *CatalogService) report(ctx context.Context, issue catalog.Issue) {
	dataQualityIssues.WithLabelValues(string(issue.Kind)).Inc()
	s.logger.WarnContext(ctx, "catalog data quality issue",
		slog.String("product_id", issue.ProductID),
		slog.String("kind", string(issue.Kind)),
		slog.String("variant", issue.Variant),
		slog.String("detail", issue.Detail),
	)
}

func (s *CatalogService) expired(snap snapshot) bool {
	return s.ttl > 0 && s.now().Sub(snap.builtAt) >= s.ttl
}

// current reports whether no Invalidate ran for productID since gen was read.
func (s *CatalogService) current(productID string, gen uint64) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.generations[productID] == gen
}

func (s *CatalogService) build(ctx context.Context, productID string, gen uint64) (*selection.Resolver, error) {
	src := s.cachedSource(ctx, productID)
	if src == nil {
		var err error
		src, err = s.repo.GetSource(ctx, productID)
		if err != nil {
			return nil, fmt.Errorf("load catalog %s: %w", productID, err)
		}
		s.fillCache(ctx, productID, gen, src)
	}

	c := catalog.FromSource(*src)
	catalogBuilds.Inc()

	issues := c.Issues()
	for _, is := range issues {
		s.report(ctx, is)
	}
	if len(issues) > 0 && s.publisher != nil {
		if err := s.publisher.PublishDataQuality(ctx, productID, issues); err != nil {
			s.logger.ErrorContext(ctx, "failed to publish variant.data_quality event",
				slog.String("product_id", productID),
				slog.String("error", err.Error()),
			)
		}
	}

	s.logger.DebugContext(ctx, "catalog built",
		slog.String("product_id", productID),
		slog.Int("variants", c.Len()),
		slog.Int("issues", len(issues)),
	)
	return selection.New(c, nil), nil
}

// fillCache stores src unless productID was invalidated after gen was read.
// An invalidation racing the write is undone by deleting the entry again.
func (s *CatalogService) fillCache(ctx context.Context, productID string, gen uint64, src *domain.CatalogSource) {
	if s.cache == nil || !s.current(productID, gen) {
		return
	}
	if err := s.cache.Set(ctx, src); err != nil {
		s.logger.WarnContext(ctx, "failed to cache catalog source",
			slog.String("product_id", productID),
			slog.String("error", err.Error()),
		)
		return
	}
	if !s.current(productID, gen) {
		if err := s.cache.Delete(ctx, productID); err != nil {
			s.logger.WarnContext(ctx, "failed to drop stale catalog source",
				slog.String("product_id", productID),
				slog.String("error", err.Error()),
			)
		}
	}
}

// cachedSource returns nil on a miss. Cache failures are logged and
// treated as a miss.
func (s *CatalogService) cachedSource(ctx context.Context, productID string) *domain.CatalogSource {
	if s.cache == nil {
		return nil
	}
	src, err := s.cache.Get(ctx, productID)
	if err != nil {
		s.logger.WarnContext(ctx, "catalog cache read failed",
			slog.String("product_id", productID),
			slog.String("error", err.Error()),
		)
		return nil
	}
	if src == nil {
		catalogLookups.WithLabelValues(layerCache, resultMiss).Inc()
		return nil
	}
	catalogLookups.WithLabelValues(layerCache, resultHit).Inc()
	return src
}
