package exchange

import (
	"sort"
	"strconv"
	"strings"

	"github.com/coachpo/meltica-rest/errs"
)

// ErrorTable maps remote error codes or messages onto taxonomy classes.
// Exact keys must equal the code or message; broad keys match as substrings.
type ErrorTable struct {
	Exact map[string]errs.Class
	Broad map[string]errs.Class
}

// Signal is what an adapter extracted from a failed response.
type Signal struct {
	// Code is the remote error code, if any.
	Code string
	// Messages are the remote error texts in the order the venue reported them.
	Messages []string
	// Status is the HTTP status code.
	Status int
	// Body is the raw response body, used for the feedback string.
	Body string
}

// Classifier turns error signals into typed errors.
//
// Precedence is fixed for every exchange: exact match on the code, exact
// match on each message, broad match on each message, HTTP status, then a
// generic ExchangeError. Broad keys are tried longest first so the most
// specific substring wins.
type Classifier struct {
	exchangeID string
	exact      map[string]errs.Class
	broad      map[string]errs.Class
	broadKeys  []string
	http       map[int]errs.Class
}

// NewClassifier builds a classifier. The tables are copied.
func NewClassifier(exchangeID string, table ErrorTable, httpTable map[int]errs.Class) *Classifier {
	c := &Classifier{
		exchangeID: exchangeID,
		exact:      make(map[string]errs.Class, len(table.Exact)),
		broad:      make(map[string]errs.Class, len(table.Broad)),
		http:       make(map[int]errs.Class, len(httpTable)),
	}
	for k, v := range table.Exact {
		c.exact[k] = v
	}
	for k, v := range table.Broad {
		c.broad[k] = v
		c.broadKeys = append(c.broadKeys, k)
	}
	sort.Slice(c.broadKeys, func(i, j int) bool {
		a, b := c.broadKeys[i], c.broadKeys[j]
		if len(a) != len(b) {
			return len(a) > len(b)
		}
		return a < b
	})
	for k, v := range httpTable {
		c.http[k] = v
	}
	return c
}

// MatchExact returns the class of the first candidate found in the exact table.
func (c *Classifier) MatchExact(candidates ...string) (errs.Class, bool) {
	for _, s := range candidates {
		if s == "" {
			continue
		}
		if class, ok := c.exact[s]; ok {
			return class, true
		}
	}
	return "", false
}

// MatchBroad returns the class of the first broad key contained in a candidate.
func (c *Classifier) MatchBroad(candidates ...string) (errs.Class, bool) {
	for _, s := range candidates {
		if s == "" {
			continue
		}
		for _, key := range c.broadKeys {
			if strings.Contains(s, key) {
				return c.broad[key], true
			}
		}
	}
	return "", false
}

// MatchHTTP returns the class registered for status.
func (c *Classifier) MatchHTTP(status int) (errs.Class, bool) {
	class, ok := c.http[status]
	if ok {
		return class, true
	}
	switch {
	case status == 429:
		return errs.ClassRateLimitExceeded, true
	case status == 401:
		return errs.ClassAuthentication, true
	case status >= 500:
		return errs.ClassExchangeNotAvailable, true
	}
	return "", false
}

// Feedback is the user visible message: "<exchangeId> <body>".
func (c *Classifier) Feedback(body string) string {
	return c.exchangeID + " " + body
}

// Classify always returns an error; unmatched signals become ExchangeError.
func (c *Classifier) Classify(sig Signal) *errs.E {
	class, ok := c.MatchExact(append([]string{sig.Code}, sig.Messages...)...)
	if !ok {
		class, ok = c.MatchBroad(sig.Messages...)
	}
	if !ok && sig.Status >= 400 {
		class, ok = c.MatchHTTP(sig.Status)
	}
	if !ok {
		class = errs.ClassExchange
	}
	return c.build(class, sig)
}

// FromHTTP classifies a non-2xx response that carried no venue error payload.
// It returns nil for successful statuses.
func (c *Classifier) FromHTTP(status int, body string) *errs.E {
	if status < 400 {
		return nil
	}
	class, ok := c.MatchHTTP(status)
	if !ok {
		class = errs.ClassExchange
	}
	return c.build(class, Signal{Status: status, Body: body})
}

func (c *Classifier) build(class errs.Class, sig Signal) *errs.E {
	opts := []errs.Option{
		errs.WithMessage(c.Feedback(sig.Body)),
		errs.WithRawCode(sig.Code),
	}
	if sig.Status > 0 {
		opts = append(opts, errs.WithHTTP(sig.Status))
	}
	if len(sig.Messages) > 0 {
		opts = append(opts, errs.WithRawMessage(strings.Join(sig.Messages, "; ")))
	}
	return errs.New(c.exchangeID, class, opts...)
}

// StatusString renders an HTTP status for exact-table lookups keyed by status.
func StatusString(status int) string {
	if status <= 0 {
		return ""
	}
	return strconv.Itoa(status)
}
