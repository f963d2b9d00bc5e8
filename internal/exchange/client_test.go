package exchange

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/coachpo/meltica-rest/errs"
)

type stubAdapter struct {
	desc       *Descriptor
	classifier *Classifier
}

func newStubAdapter(baseURL string) *stubAdapter {
	desc := &Descriptor{
		ID:                  "stub",
		Name:                "Stub",
		RateLimit:           time.Millisecond,
		URLs:                URLs{API: baseURL},
		RequiredCredentials: Requirements{APIKey: true, Secret: true},
		Errors: ErrorTable{
			Exact: map[string]errs.Class{"E1": errs.ClassInsufficientFunds},
		},
	}
	return &stubAdapter{desc: desc, classifier: NewClassifier(desc.ID, desc.Errors, nil)}
}

func (s *stubAdapter) Describe() *Descriptor { return s.desc }

func (s *stubAdapter) Sign(ep Endpoint, params Params, creds Credentials, now time.Time) (Request, error) {
	path, rest := ImplodeParams(ep.Path, params)
	url := s.desc.URLs.API + "/" + path
	if len(rest) > 0 {
		url += "?" + rest.Encode()
	}
	headers := http.Header{}
	if ep.Scope == Private {
		headers.Set("X-Key", creds.APIKey)
		headers.Set("X-Sig", HMACHex([]byte(url), []byte(creds.Secret)))
	}
	return Request{Method: ep.Method, URL: url, Headers: headers}, nil
}

func (s *stubAdapter) HandleErrors(status int, body []byte, payload any) error {
	obj := AsObject(payload)
	code := String(obj, "error")
	if code == nil {
		return nil
	}
	return s.classifier.Classify(Signal{Code: *code, Status: status, Body: string(body)})
}

type flakyTransport struct {
	failures atomic.Int32
	calls    atomic.Int32
	next     http.RoundTripper
}

func (f *flakyTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	f.calls.Add(1)
	if f.failures.Add(-1) >= 0 {
		return nil, errors.New("connection reset by peer")
	}
	return f.next.RoundTrip(req)
}

func newTestClient(t *testing.T, handler http.HandlerFunc, cfg Config) (*Client, *httptest.Server) {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	cfg.DisableThrottle = true
	client, err := NewClient(newStubAdapter(srv.URL), cfg)
	require.NoError(t, err)
	return client, srv
}

func TestClientPublicCall(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/ticker/btcusd", r.URL.Path)
		require.Equal(t, "1", r.URL.Query().Get("depth"))
		require.Empty(t, r.Header.Get("X-Key"))
		_, _ = w.Write([]byte(`{"last":"43511.5"}`))
	}, Config{})

	obj, err := client.CallObject(context.Background(), Endpoint{Scope: Public, Method: http.MethodGet, Path: "ticker/{pair}"}, Params{"pair": "btcusd", "depth": 1})
	require.NoError(t, err)
	require.Equal(t, "43511.5", *String(obj, "last"))
}

func TestClientPrivateCallRequiresCredentials(t *testing.T) {
	var hits atomic.Int32
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
	}, Config{Credentials: Credentials{APIKey: "key"}})

	_, err := client.Call(context.Background(), Endpoint{Scope: Private, Method: http.MethodPost, Path: "balance"}, nil)
	require.True(t, errs.IsClass(err, errs.ClassAuthentication))
	require.Equal(t, int32(0), hits.Load(), "no request may leave without credentials")
}

func TestClientPrivateCallIsSigned(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "key", r.Header.Get("X-Key"))
		require.Len(t, r.Header.Get("X-Sig"), 64)
		_, _ = w.Write([]byte(`[{"currency":"BTC"}]`))
	}, Config{Credentials: Credentials{APIKey: "key", Secret: "secret"}})

	list, err := client.CallList(context.Background(), Endpoint{Scope: Private, Method: http.MethodGet, Path: "balance"}, nil)
	require.NoError(t, err)
	require.Len(t, list, 1)
}

func TestClientPropagatesVenueErrors(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"error":"E1"}`))
	}, Config{MaxRetries: 3})

	_, err := client.Call(context.Background(), Endpoint{Scope: Public, Method: http.MethodGet, Path: "x"}, nil)
	require.True(t, errs.IsClass(err, errs.ClassInsufficientFunds))
	var e *errs.E
	require.ErrorAs(t, err, &e)
	require.Equal(t, `stub {"error":"E1"}`, e.Message)
	require.Equal(t, http.StatusBadRequest, e.HTTP)
}

func TestClientClassifiesBareHTTPFailures(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
		_, _ = w.Write([]byte(`slow down`))
	}, Config{})

	_, err := client.Call(context.Background(), Endpoint{Scope: Public, Method: http.MethodGet, Path: "x"}, nil)
	require.True(t, errs.IsClass(err, errs.ClassRateLimitExceeded))
	require.True(t, errs.IsClass(err, errs.ClassNetwork))
}

func TestClientRejectsNonJSONSuccess(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`<html>maintenance</html>`))
	}, Config{})

	_, err := client.Call(context.Background(), Endpoint{Scope: Public, Method: http.MethodGet, Path: "x"}, nil)
	require.True(t, errs.IsClass(err, errs.ClassExchange))
}

func TestClientRetriesNetworkErrorsOnly(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"ok":true}`))
	}))
	t.Cleanup(srv.Close)

	transport := &flakyTransport{next: http.DefaultTransport}
	transport.failures.Store(1)
	client, err := NewClient(newStubAdapter(srv.URL), Config{
		HTTPClient:      &http.Client{Transport: transport},
		MaxRetries:      2,
		DisableThrottle: true,
	})
	require.NoError(t, err)

	obj, err := client.CallObject(context.Background(), Endpoint{Scope: Public, Method: http.MethodGet, Path: "x"}, nil)
	require.NoError(t, err)
	require.Equal(t, true, obj["ok"])
	require.Equal(t, int32(2), transport.calls.Load())
}

func TestClientWithoutRetriesSurfacesNetworkError(t *testing.T) {
	transport := &flakyTransport{next: http.DefaultTransport}
	transport.failures.Store(5)
	client, err := NewClient(newStubAdapter("https://api.stub.test"), Config{
		HTTPClient:      &http.Client{Transport: transport},
		DisableThrottle: true,
	})
	require.NoError(t, err)

	_, err = client.Call(context.Background(), Endpoint{Scope: Public, Method: http.MethodGet, Path: "x"}, nil)
	require.True(t, errs.IsClass(err, errs.ClassNetwork))
	require.Equal(t, int32(1), transport.calls.Load())
}

func TestClientMarketLoading(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {}, Config{})
	var loads atomic.Int32
	client.UseMarketLoader(func(context.Context) ([]Market, error) {
		loads.Add(1)
		return sampleMarkets(), nil
	})

	market, err := client.Market(context.Background(), "BTC/USD")
	require.NoError(t, err)
	require.Equal(t, "btcusd", market.ID)
	_, err = client.Market(context.Background(), "ETH/USD")
	require.NoError(t, err)
	require.Equal(t, int32(1), loads.Load())
}

func TestFanOutCollectsPerSymbol(t *testing.T) {
	out, err := FanOut(context.Background(), []string{"A", "B", "C"}, 2, func(_ context.Context, symbol string) (string, error) {
		return symbol + "!", nil
	})
	require.NoError(t, err)
	require.Equal(t, map[string]string{"A": "A!", "B": "B!", "C": "C!"}, out)

	_, err = FanOut(context.Background(), []string{"A", "B"}, 0, func(_ context.Context, symbol string) (int, error) {
		if symbol == "B" {
			return 0, errs.Newf("stub", errs.ClassBadSymbol, "unknown "+symbol)
		}
		return 1, nil
	})
	require.True(t, errs.IsClass(err, errs.ClassBadSymbol))

	require.Equal(t, map[string]int{"A": 1}, Filter(map[string]int{"A": 1, "B": 2}, []string{"A", "Z"}))
}

func TestSinceLimitSortsAndFilters(t *testing.T) {
	trades := []Trade{
		{ID: Ptr("c"), Timestamp: Ptr(int64(30))},
		{ID: Ptr("a"), Timestamp: Ptr(int64(10))},
		{ID: Ptr("b"), Timestamp: Ptr(int64(20))},
	}
	ts := func(tr Trade) *int64 { return tr.Timestamp }

	out := SinceLimit(trades, ts, Ptr(int64(15)), 1)
	require.Len(t, out, 1)
	require.Equal(t, "b", *out[0].ID)

	all := SinceLimit(trades, ts, nil, 0)
	require.Equal(t, []string{"a", "b", "c"}, []string{*all[0].ID, *all[1].ID, *all[2].ID})
}
