package bitstamp

import (
	"fmt"
	"sort"

	"github.com/coachpo/meltica-rest/internal/exchange"
)

// HandleErrors detects {"status":"error"} and {"error": ...} envelopes:
//
//	{"error": "No permission found"}
//	{"status": "error", "reason": {"__all__": ["Minimum order size is 5.0 EUR."]}}
//	{"status": "error", "reason": "Invalid nonce", "code": "API0004"}
func (a *adapter) HandleErrors(status int, body []byte, payload any) error {
	obj := exchange.AsObject(payload)
	if obj == nil {
		return nil
	}
	rawErr, hasError := obj["error"]
	if exchange.StringOr(obj, "", "status") != "error" && (!hasError || rawErr == nil) {
		return nil
	}
	return a.classifier.Classify(exchange.Signal{
		Code:     exchange.StringOr(obj, "", "code"),
		Messages: errorMessages(rawErr, obj["reason"]),
		Status:   status,
		Body:     string(body),
	})
}

// errorMessages flattens the error field, then the reason. Object reasons
// yield "__all__" first and the per-field lists in key order.
func errorMessages(rawErr, reason any) []string {
	var out []string
	out = appendValues(out, rawErr)
	out = appendValues(out, reason)
	return out
}

func appendValues(out []string, v any) []string {
	switch val := v.(type) {
	case nil:
		return out
	case string:
		if val == "" {
			return out
		}
		return append(out, val)
	case []any:
		for _, item := range val {
			out = appendValues(out, item)
		}
		return out
	case map[string]any:
		out = appendValues(out, val["__all__"])
		keys := make([]string, 0, len(val))
		for k := range val {
			if k != "__all__" {
				keys = append(keys, k)
			}
		}
		sort.Strings(keys)
		for _, k := range keys {
			out = appendValues(out, val[k])
		}
		return out
	default:
		return append(out, fmt.Sprint(val))
	}
}
