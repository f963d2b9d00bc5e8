package bitstamp

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/coachpo/meltica-rest/errs"
	"github.com/coachpo/meltica-rest/internal/exchange"
)

func handle(t *testing.T, status int, body string) error {
	t.Helper()
	a := newAdapter(describe(), defaultAPIBaseURL, fixedNonce)
	payload, _ := exchange.Decode([]byte(body))
	return a.HandleErrors(status, []byte(body), payload)
}

func TestHandleErrors(t *testing.T) {
	cases := []struct {
		name  string
		body  string
		class errs.Class
	}{
		{"error string", `{"error":"No permission found"}`, errs.ClassPermissionDenied},
		{"code wins", `{"status":"error","reason":"Something else","code":"API0005"}`, errs.ClassAuthentication},
		{"reason string", `{"status":"error","reason":"Invalid nonce","code":"API0004"}`, errs.ClassInvalidNonce},
		{"all reasons", `{"status":"error","reason":{"__all__":["Minimum order size is 5.0 EUR."]}}`, errs.ClassInvalidOrder},
		{"field reasons", `{"status":"error","reason":{"amount":["Ensure that there are no more than 8 decimal places."]}}`, errs.ClassInvalidOrder},
		{"balance", `{"status":"error","reason":{"__all__":["You need 10.1 USD to open that order. Check your account balance for details."]}}`, errs.ClassInsufficientFunds},
		{"unknown", `{"status":"error","reason":"Strange failure"}`, errs.ClassExchange},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := handle(t, 200, tc.body)
			require.Error(t, err)
			require.Equal(t, tc.class, errs.ClassOf(err))

			var e *errs.E
			require.ErrorAs(t, err, &e)
			require.Equal(t, "bitstamp "+tc.body, e.Message)
		})
	}
}

func TestHandleErrorsIgnoresSuccess(t *testing.T) {
	require.NoError(t, handle(t, 200, `{"status":"success","id":"1"}`))
	require.NoError(t, handle(t, 200, `{"error":null,"id":"1"}`))
	require.NoError(t, handle(t, 200, `[{"currency":"usd"}]`))
	require.NoError(t, handle(t, 200, `not json`))
}

func TestErrorMessagesOrder(t *testing.T) {
	reason := map[string]any{
		"price":   []any{"too low"},
		"__all__": []any{"general"},
		"amount":  []any{"too small", ""},
	}
	require.Equal(t, []string{"top", "general", "too small", "too low"}, errorMessages("top", reason))
	require.Empty(t, errorMessages(nil, nil))
}
