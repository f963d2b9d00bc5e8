package telemetry

import (
	"context"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/metric"
)

// RequestMetrics records REST call volume, latency and classified failures for one exchange.
// Instruments that fail to register stay nil and are skipped.
type RequestMetrics struct {
	exchange string
	requests metric.Int64Counter
	errors   metric.Int64Counter
	duration metric.Float64Histogram
	refresh  metric.Int64Counter
}

// NewRequestMetrics registers instruments on meter, or on the global meter provider when nil.
func NewRequestMetrics(meter metric.Meter, exchange string) *RequestMetrics {
	if meter == nil {
		meter = otel.Meter("exchange.client")
	}
	m := &RequestMetrics{exchange: exchange}
	if counter, err := meter.Int64Counter(MetricRequests,
		metric.WithDescription("REST requests issued by exchange and endpoint"),
		metric.WithUnit("{request}")); err == nil {
		m.requests = counter
	}
	if counter, err := meter.Int64Counter(MetricErrors,
		metric.WithDescription("Classified exchange errors by class"),
		metric.WithUnit("{error}")); err == nil {
		m.errors = counter
	}
	if hist, err := meter.Float64Histogram(MetricRequestDuration,
		metric.WithDescription("REST round trip duration"),
		metric.WithUnit("ms")); err == nil {
		m.duration = hist
	}
	if counter, err := meter.Int64Counter(MetricCacheRefreshes,
		metric.WithDescription("Market cache refreshes"),
		metric.WithUnit("{refresh}")); err == nil {
		m.refresh = counter
	}
	return m
}

// RecordRequest tracks one completed round trip. class is empty on success.
func (m *RequestMetrics) RecordRequest(ctx context.Context, endpoint, method, scope, class string, elapsed time.Duration) {
	if m == nil {
		return
	}
	result := ResultSuccess
	if class != "" {
		result = ResultError
	}
	attrs := metric.WithAttributes(RequestAttributes(m.exchange, endpoint, method, scope, result)...)
	if m.requests != nil {
		m.requests.Add(ctx, 1, attrs)
	}
	if m.duration != nil {
		m.duration.Record(ctx, float64(elapsed.Microseconds())/1000, attrs)
	}
	if class != "" && m.errors != nil {
		m.errors.Add(ctx, 1, metric.WithAttributes(ErrorAttributes(m.exchange, endpoint, class)...))
	}
}

// RecordCacheRefresh counts a market cache reload.
func (m *RequestMetrics) RecordCacheRefresh(ctx context.Context, cache string) {
	if m == nil || m.refresh == nil {
		return
	}
	m.refresh.Add(ctx, 1, metric.WithAttributes(
		AttrEnvironment.String(Environment()),
		AttrExchange.String(m.exchange),
		AttrCache.String(cache),
	))
}
