package telemetry

import (
	"sync"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/metric"
)

const (
	meterName = "github.com/vetdesk/vetdesk"
)

// Metrics holds all the OpenTelemetry metric instruments
type Metrics struct {
	// Authentication pipeline metrics
	AuthResolutionsTotal metric.Int64Counter
	AuthRejectionsTotal  metric.Int64Counter
	AuthCacheHitsTotal   metric.Int64Counter
	AuthCacheMissesTotal metric.Int64Counter
	RegistryErrorsTotal  metric.Int64Counter
	ResolveDuration      metric.Float64Histogram

	// Session lifecycle metrics
	SessionsCreatedTotal metric.Int64Counter
	SessionsDeletedTotal metric.Int64Counter
	SessionsSweptTotal   metric.Int64Counter
}

var (
	once    sync.Once
	metrics *Metrics
)

// GetMetrics returns the singleton Metrics instance, initializing it if necessary
func GetMetrics() *Metrics {
	once.Do(func() {
		metrics = initMetrics()
	})
	return metrics
}

// initMetrics creates and registers all metric instruments
func initMetrics() *Metrics {
	meter := otel.GetMeterProvider().Meter(meterName)

	m := &Metrics{}

	m.AuthResolutionsTotal, _ = meter.Int64Counter(
		"vetdesk.auth.resolutions.total",
		metric.WithDescription("Total number of successful credential resolutions, by principal kind"),
		metric.WithUnit("{resolution}"),
	)

	m.AuthRejectionsTotal, _ = meter.Int64Counter(
		"vetdesk.auth.rejections.total",
		metric.WithDescription("Total number of rejected requests, by reason"),
		metric.WithUnit("{request}"),
	)

	m.AuthCacheHitsTotal, _ = meter.Int64Counter(
		"vetdesk.auth.cache.hits.total",
		metric.WithDescription("Total number of resolution cache hits"),
		metric.WithUnit("{lookup}"),
	)

	m.AuthCacheMissesTotal, _ = meter.Int64Counter(
		"vetdesk.auth.cache.misses.total",
		metric.WithDescription("Total number of resolution cache misses"),
		metric.WithUnit("{lookup}"),
	)

	m.RegistryErrorsTotal, _ = meter.Int64Counter(
		"vetdesk.auth.registry.errors.total",
		metric.WithDescription("Total number of registry failures during resolution"),
		metric.WithUnit("{error}"),
	)

	m.ResolveDuration, _ = meter.Float64Histogram(
		"vetdesk.auth.resolve.duration",
		metric.WithDescription("Duration of full registry resolutions (cache misses)"),
		metric.WithUnit("ms"),
	)

	m.SessionsCreatedTotal, _ = meter.Int64Counter(
		"vetdesk.sessions.created.total",
		metric.WithDescription("Total number of sessions created at login"),
		metric.WithUnit("{session}"),
	)

	m.SessionsDeletedTotal, _ = meter.Int64Counter(
		"vetdesk.sessions.deleted.total",
		metric.WithDescription("Total number of sessions deleted at logout"),
		metric.WithUnit("{session}"),
	)

	m.SessionsSweptTotal, _ = meter.Int64Counter(
		"vetdesk.sessions.swept.total",
		metric.WithDescription("Total number of expired sessions removed by the sweeper"),
		metric.WithUnit("{session}"),
	)

	return m
}
