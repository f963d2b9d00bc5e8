// Package provider builds exchange clients from declarative specs.
package provider

import (
	"context"
	"strings"
	"time"

	"github.com/coachpo/meltica-rest/internal/exchange"
)

// Spec describes one exchange client to materialise.
type Spec struct {
	// Name keys the instance in a Manager; it defaults to Exchange.
	Name     string
	Exchange string
	BaseURL  string
	Sandbox  bool
	Client   exchange.Config
	// Options carries venue specific settings such as apex "broker_id".
	Options map[string]any
}

func (s Spec) key() string {
	if name := strings.TrimSpace(s.Name); name != "" {
		return name
	}
	return s.Exchange
}

// Factory constructs an exchange client from a spec.
type Factory func(ctx context.Context, spec Spec) (exchange.Exchange, error)

// StringOption returns a trimmed, non-empty string option.
func StringOption(opts map[string]any, key string) (string, bool) {
	if opts == nil {
		return "", false
	}
	value, ok := opts[key].(string)
	if !ok {
		return "", false
	}
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return "", false
	}
	return trimmed, true
}

// IntOption accepts ints and whole floats, as decoded from YAML or JSON.
func IntOption(opts map[string]any, key string) (int, bool) {
	switch v := opts[key].(type) {
	case int:
		return v, true
	case int64:
		return int(v), true
	case float64:
		if v == float64(int(v)) {
			return int(v), true
		}
	}
	return 0, false
}

// DurationOption accepts time.Duration values and Go duration strings.
func DurationOption(opts map[string]any, key string) (time.Duration, bool) {
	switch v := opts[key].(type) {
	case time.Duration:
		return v, true
	case string:
		d, err := time.ParseDuration(strings.TrimSpace(v))
		if err == nil {
			return d, true
		}
	}
	return 0, false
}
