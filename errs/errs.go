// Package errs provides the structured error envelope and the exchange error taxonomy.
package errs

import (
	"errors"
	"strconv"
	"strings"
)

// Code identifies a coarse error category used for telemetry labels.
type Code string

const (
	// CodeRateLimited indicates that the request exceeded rate limits.
	CodeRateLimited Code = "rate_limited"
	// CodeAuth indicates authentication or authorization errors.
	CodeAuth Code = "auth"
	// CodeInvalid indicates invalid input provided by the caller.
	CodeInvalid Code = "invalid_request"
	// CodeExchange indicates an exchange-side failure.
	CodeExchange Code = "exchange_error"
	// CodeNetwork indicates a network transport failure.
	CodeNetwork Code = "network"
	// CodeNotFound indicates a missing resource.
	CodeNotFound Code = "not_found"
	// CodeUnavailable indicates the service is temporarily unavailable.
	CodeUnavailable Code = "unavailable"
)

// CanonicalCode captures exchange-agnostic error categories.
type CanonicalCode string

const (
	// CanonicalUnknown captures uncategorized failures.
	CanonicalUnknown CanonicalCode = "unknown"
	// CanonicalCapabilityMissing indicates the adapter lacks the required capability.
	CanonicalCapabilityMissing CanonicalCode = "capability_missing"
	// CanonicalOrderNotFound indicates that the referenced order does not exist.
	CanonicalOrderNotFound CanonicalCode = "order_not_found"
	// CanonicalInsufficientBalance indicates insufficient balance for the requested operation.
	CanonicalInsufficientBalance CanonicalCode = "insufficient_balance"
	// CanonicalInvalidSymbol indicates an unsupported or malformed symbol.
	CanonicalInvalidSymbol CanonicalCode = "invalid_symbol"
	// CanonicalRateLimited indicates the request was rate limited.
	CanonicalRateLimited CanonicalCode = "rate_limited"
	// CanonicalMaintenance indicates the venue announced maintenance.
	CanonicalMaintenance CanonicalCode = "maintenance"
)

// E is the error value every adapter returns. Message starts with the
// exchange id so it reads well on its own; RawCode and RawMsg keep what the
// venue sent.
type E struct {
	Exchange  string
	Class     Class
	Code      Code
	HTTP      int
	RawCode   string
	RawMsg    string
	Message   string
	Canonical CanonicalCode

	cause error
}

// Option configures an error envelope.
type Option func(*E)

// New constructs an error of the given class. Code and Canonical follow
// from the class.
func New(exchange string, class Class, opts ...Option) *E {
	if class == "" {
		class = ClassExchange
	}
	e := &E{
		Exchange:  strings.TrimSpace(exchange),
		Class:     class,
		Code:      class.code(),
		Canonical: class.canonical(),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(e)
		}
	}
	return e
}

// Newf builds an error whose message is prefixed with the exchange id.
func Newf(exchange string, class Class, message string, opts ...Option) *E {
	msg := strings.TrimSpace(message)
	if exchange != "" {
		msg = strings.TrimSpace(exchange + " " + msg)
	}
	return New(exchange, class, append([]Option{WithMessage(msg)}, opts...)...)
}

// WithMessage attaches a human-readable message to the error.
func WithMessage(message string) Option {
	trimmed := strings.TrimSpace(message)
	return func(e *E) {
		e.Message = trimmed
	}
}

// WithHTTP records the response status.
func WithHTTP(status int) Option {
	return func(e *E) {
		e.HTTP = status
	}
}

// WithRawCode captures the venue's own error code.
func WithRawCode(code string) Option {
	trimmed := strings.TrimSpace(code)
	return func(e *E) {
		e.RawCode = trimmed
	}
}

// WithRawMessage captures the venue's own error text.
func WithRawMessage(msg string) Option {
	return func(e *E) {
		e.RawMsg = msg
	}
}

// WithCause sets the underlying cause error.
func WithCause(err error) Option {
	return func(e *E) {
		e.cause = err
	}
}

// Error renders the message, which starts with the exchange id, followed
// by the class and transport details, e.g.
//
//	bitvavo {"errorCode":240} [class=OrderNotFound http=404 raw_code="240"]
func (e *E) Error() string {
	if e == nil {
		return "<nil>"
	}
	var b strings.Builder
	switch {
	case e.Message != "":
		b.WriteString(e.Message)
	case e.Exchange != "":
		b.WriteString(e.Exchange)
	default:
		b.WriteString("unknown exchange")
	}

	details := make([]string, 0, 5)
	details = append(details, "class="+string(e.Class))
	if e.HTTP > 0 {
		details = append(details, "http="+strconv.Itoa(e.HTTP))
	}
	if e.RawCode != "" {
		details = append(details, "raw_code="+strconv.Quote(e.RawCode))
	}
	if e.RawMsg != "" {
		details = append(details, "raw_msg="+strconv.Quote(e.RawMsg))
	}
	if e.cause != nil {
		details = append(details, "cause="+strconv.Quote(e.cause.Error()))
	}
	b.WriteString(" [")
	b.WriteString(strings.Join(details, " "))
	b.WriteString("]")
	return b.String()
}

func (e *E) Unwrap() error { return e.cause }

// ClassOf returns the class carried by err, or "" when err is not an *E.
func ClassOf(err error) Class {
	var e *E
	if errors.As(err, &e) && e != nil {
		return e.Class
	}
	return ""
}

// IsClass reports whether err belongs to class, honouring the taxonomy hierarchy.
// IsClass(err, ClassInvalidOrder) is true for an OrderNotFound error.
func IsClass(err error, class Class) bool {
	c := ClassOf(err)
	if c == "" {
		return false
	}
	return c.Is(class)
}

// NotSupported returns a standardized error for unsupported capabilities.
func NotSupported(exchange, msg string) *E {
	return Newf(exchange, ClassNotSupported, msg)
}
