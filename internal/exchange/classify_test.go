package exchange

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/coachpo/meltica-rest/errs"
)

func testClassifier() *Classifier {
	return NewClassifier("venue", ErrorTable{
		Exact: map[string]errs.Class{
			"240":              errs.ClassOrderNotFound,
			"Order not found.": errs.ClassOrderNotFound,
			"216":              errs.ClassInsufficientFunds,
		},
		Broad: map[string]errs.Class{
			"parameter is invalid":        errs.ClassBadRequest,
			"symbol parameter is invalid": errs.ClassBadSymbol,
			"Minimum order size is":       errs.ClassInvalidOrder,
		},
	}, map[int]errs.Class{403: errs.ClassRateLimitExceeded})
}

func TestClassifyExactOnly(t *testing.T) {
	e := testClassifier().Classify(Signal{Code: "240", Messages: []string{"No order found."}, Body: `{"errorCode":240}`})
	require.Equal(t, errs.ClassOrderNotFound, e.Class)
	require.Equal(t, `venue {"errorCode":240}`, e.Message)
	require.Equal(t, "240", e.RawCode)
}

func TestClassifyExactMessage(t *testing.T) {
	e := testClassifier().Classify(Signal{Messages: []string{"Order not found."}})
	require.Equal(t, errs.ClassOrderNotFound, e.Class)
}

func TestClassifyBroadOnly(t *testing.T) {
	e := testClassifier().Classify(Signal{Messages: []string{"Minimum order size is 5.0 EUR."}, Body: "{}"})
	require.Equal(t, errs.ClassInvalidOrder, e.Class)
}

func TestClassifyBroadPrefersLongestKey(t *testing.T) {
	e := testClassifier().Classify(Signal{Messages: []string{"symbol parameter is invalid."}})
	require.Equal(t, errs.ClassBadSymbol, e.Class)
}

func TestClassifyExactWinsOverBroad(t *testing.T) {
	// matches exact code 216 and broad "parameter is invalid"
	e := testClassifier().Classify(Signal{Code: "216", Messages: []string{"amount parameter is invalid."}})
	require.Equal(t, errs.ClassInsufficientFunds, e.Class)
}

func TestClassifyFallsBackToHTTPThenGeneric(t *testing.T) {
	c := testClassifier()
	require.Equal(t, errs.ClassRateLimitExceeded, c.Classify(Signal{Code: "999", Status: 403}).Class)
	require.Equal(t, errs.ClassExchangeNotAvailable, c.Classify(Signal{Status: 503}).Class)
	generic := c.Classify(Signal{Code: "999", Messages: []string{"mystery"}, Status: 200, Body: "raw"})
	require.Equal(t, errs.ClassExchange, generic.Class)
	require.Equal(t, "venue raw", generic.Message)
}

func TestClassifyIsIdempotent(t *testing.T) {
	c := testClassifier()
	sig := Signal{Code: "216", Messages: []string{"Minimum order size is 1"}, Body: "b"}
	first, second := c.Classify(sig), c.Classify(sig)
	require.Equal(t, first.Class, second.Class)
	require.Equal(t, first.Message, second.Message)
}

func TestFromHTTP(t *testing.T) {
	c := testClassifier()
	require.Nil(t, c.FromHTTP(200, "ok"))
	require.Equal(t, errs.ClassAuthentication, c.FromHTTP(401, "").Class)
	require.Equal(t, errs.ClassRateLimitExceeded, c.FromHTTP(429, "").Class)
	require.Equal(t, errs.ClassExchange, c.FromHTTP(418, "teapot").Class)
	require.Equal(t, "418", StatusString(418))
	require.Equal(t, "", StatusString(0))
}
