package telemetry

import (
	"go.opentelemetry.io/otel/attribute"
)

// Attribute keys follow the OpenTelemetry namespace.attribute_name convention.
const (
	// AttrEnvironment specifies the deployment environment (dev/staging/prod) for every metric.
	AttrEnvironment = attribute.Key("environment")
	// AttrExchange identifies which venue adapter issued the request.
	AttrExchange = attribute.Key("exchange")
	// AttrEndpoint is the unimploded endpoint path, e.g. order_book/{pair}/.
	AttrEndpoint = attribute.Key("endpoint")
	// AttrMethod is the HTTP verb.
	AttrMethod = attribute.Key("http.method")
	// AttrScope separates public from signed private calls.
	AttrScope = attribute.Key("scope")
	// AttrResult records the outcome of an operation (success or error).
	AttrResult = attribute.Key("result")
	// AttrErrorClass categorizes failures by taxonomy class.
	AttrErrorClass = attribute.Key("error.class")
	// AttrCache labels cache metrics by cache name.
	AttrCache = attribute.Key("cache")
)

// Metric names emitted by the exchange client.
const (
	MetricRequests        = "meltica_exchange_requests"
	MetricErrors          = "meltica_exchange_errors"
	MetricRequestDuration = "meltica_exchange_request_duration"
	MetricCacheRefreshes  = "meltica_market_cache_refreshes"
)

// Result values
const (
	ResultSuccess = "success"
	ResultError   = "error"
)

// RequestAttributes returns attributes for REST request metrics.
func RequestAttributes(exchange, endpoint, method, scope, result string) []attribute.KeyValue {
	return []attribute.KeyValue{
		AttrEnvironment.String(Environment()),
		AttrExchange.String(exchange),
		AttrEndpoint.String(endpoint),
		AttrMethod.String(method),
		AttrScope.String(scope),
		AttrResult.String(result),
	}
}

// ErrorAttributes returns attributes for classified error metrics.
func ErrorAttributes(exchange, endpoint, class string) []attribute.KeyValue {
	return []attribute.KeyValue{
		AttrEnvironment.String(Environment()),
		AttrExchange.String(exchange),
		AttrEndpoint.String(endpoint),
		AttrErrorClass.String(class),
	}
}
