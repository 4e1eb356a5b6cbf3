package service

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	dataQualityIssues = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "variant_data_quality_issues_total",
		Help: "Catalog data-quality findings by kind",
	}, []string{"kind"})

	catalogLookups = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "variant_catalog_lookups_total",
		Help: "Catalog lookups by layer and outcome",
	}, []string{"layer", "result"})

	catalogBuilds = promauto.NewCounter(prometheus.CounterOpts{
		Name: "variant_catalog_builds_total",
		Help: "Catalog snapshots built from source records",
	})
)

const (
	layerSnapshot = "snapshot"
	layerCache    = "cache"

	resultHit  = "hit"
	resultMiss = "miss"
)
