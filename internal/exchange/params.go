package exchange

import (
	"net/url"
	"regexp"
	"sort"
	"strings"

	json "github.com/goccy/go-json"
)

// Params is the mutable argument bag of one request.
type Params map[string]any

// Clone returns a shallow copy; a nil receiver yields an empty map.
func (p Params) Clone() Params {
	out := make(Params, len(p))
	for k, v := range p {
		out[k] = v
	}
	return out
}

// Extend returns a copy of p with extra applied on top.
func (p Params) Extend(extra Params) Params {
	out := p.Clone()
	for k, v := range extra {
		out[k] = v
	}
	return out
}

// Omit returns a copy of p without keys.
func (p Params) Omit(keys ...string) Params {
	out := p.Clone()
	for _, k := range keys {
		delete(out, k)
	}
	return out
}

// Has reports whether key is present.
func (p Params) Has(key string) bool {
	_, ok := p[key]
	return ok
}

// String returns the param rendered as a string.
func (p Params) String(key string) (string, bool) {
	return scalarString(p[key])
}

// Keys returns the keys in sorted order.
func (p Params) Keys() []string {
	keys := make([]string, 0, len(p))
	for k := range p {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func paramValue(v any) string {
	if s, ok := scalarString(v); ok {
		return s
	}
	if v == nil {
		return ""
	}
	raw, err := json.Marshal(v)
	if err != nil {
		return ""
	}
	return string(raw)
}

// Encode URL-encodes the params with sorted keys.
func (p Params) Encode() string {
	values := make(url.Values, len(p))
	for k, v := range p {
		values.Set(k, paramValue(v))
	}
	return values.Encode()
}

// RawEncode joins k=v pairs with sorted keys and no escaping.
func (p Params) RawEncode() string {
	keys := p.Keys()
	pairs := make([]string, 0, len(keys))
	for _, k := range keys {
		pairs = append(pairs, k+"="+paramValue(p[k]))
	}
	return strings.Join(pairs, "&")
}

// JSON marshals the params; map keys come out sorted.
func (p Params) JSON() (string, error) {
	raw, err := json.Marshal(map[string]any(p))
	if err != nil {
		return "", err
	}
	return string(raw), nil
}

var placeholder = regexp.MustCompile(`\{([^{}]+)\}`)

// PathParams lists the {name} placeholders of path.
func PathParams(path string) []string {
	matches := placeholder.FindAllStringSubmatch(path, -1)
	out := make([]string, 0, len(matches))
	for _, m := range matches {
		out = append(out, m[1])
	}
	return out
}

// ImplodeParams substitutes {name} placeholders from params and returns the
// remaining params with the substituted keys removed.
func ImplodeParams(path string, params Params) (string, Params) {
	names := PathParams(path)
	if len(names) == 0 {
		return path, params.Clone()
	}
	resolved := placeholder.ReplaceAllStringFunc(path, func(m string) string {
		name := m[1 : len(m)-1]
		if v, ok := params[name]; ok {
			return paramValue(v)
		}
		return m
	})
	return resolved, params.Omit(names...)
}
