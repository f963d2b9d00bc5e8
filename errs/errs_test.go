package errs

import (
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestErrorFormattingIncludesClassAndDetails(t *testing.T) {
	err := New(
		"bitvavo",
		ClassOrderNotFound,
		WithHTTP(404),
		WithMessage("bitvavo {\"errorCode\":240}"),
		WithRawCode("240"),
		WithRawMessage("No order found."),
		WithCause(errors.New("http 404")),
	)

	require.Equal(t, CodeNotFound, err.Code)
	require.Equal(t, CanonicalOrderNotFound, err.Canonical)
	require.Equal(t,
		`bitvavo {"errorCode":240} [class=OrderNotFound http=404 raw_code="240" raw_msg="No order found." cause="http 404"]`,
		err.Error())
	require.Equal(t, "apex [class=NotSupported]", New("apex", ClassNotSupported).Error())
	require.True(t, strings.HasPrefix(Newf("bitstamp", ClassBadRequest, "bad pair").Error(), "bitstamp bad pair ["))
}

func TestNewDefaultsToExchangeClass(t *testing.T) {
	err := New("apex", "")
	require.Equal(t, ClassExchange, err.Class)
	require.Equal(t, CodeExchange, err.Code)
	require.Equal(t, CanonicalUnknown, err.Canonical)
	require.Equal(t, "apex [class=ExchangeError]", err.Error())
}

func TestNewfPrefixesExchangeID(t *testing.T) {
	err := Newf("bitstamp", ClassBadRequest, "transfer must involve the main account")
	require.True(t, strings.HasPrefix(err.Message, "bitstamp "))
}

func TestClassHierarchy(t *testing.T) {
	require.True(t, ClassOrderNotFound.Is(ClassInvalidOrder))
	require.True(t, ClassOrderNotFound.Is(ClassExchange))
	require.True(t, ClassAccountSuspended.Is(ClassAuthentication))
	require.True(t, ClassOnMaintenance.Is(ClassNetwork))
	require.False(t, ClassRateLimitExceeded.Is(ClassExchange))
	require.False(t, ClassInvalidOrder.Is(ClassOrderNotFound))
	require.True(t, ClassExchangeNotAvailable.Retryable())
	require.False(t, ClassInvalidNonce.Retryable())
	require.False(t, Class("Bogus").Known())
}

func TestIsClassThroughWrapping(t *testing.T) {
	base := New("bitvavo", ClassBadSymbol)
	wrapped := fmt.Errorf("fetch ticker: %w", base)

	require.True(t, IsClass(wrapped, ClassBadRequest))
	require.Equal(t, ClassBadSymbol, ClassOf(wrapped))
	require.False(t, IsClass(errors.New("plain"), ClassExchange))
	require.Equal(t, CanonicalInvalidSymbol, base.Canonical)
}

func TestNotSupported(t *testing.T) {
	err := NotSupported("apex", "transfer requires an order signer")
	require.Equal(t, ClassNotSupported, err.Class)
	require.Equal(t, CanonicalCapabilityMissing, err.Canonical)
	require.Equal(t, "apex transfer requires an order signer", err.Message)
}

func TestNilErrorString(t *testing.T) {
	var e *E
	require.Equal(t, "<nil>", e.Error())
}
