package main

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/goccy/go-json"
	"github.com/stretchr/testify/require"

	"github.com/coachpo/meltica-rest/errs"
)

// isolate runs the test from an empty directory so neither config/app.yaml
// nor .env from the repository leak in.
func isolate(t *testing.T) {
	t.Helper()
	t.Chdir(t.TempDir())
	for _, key := range []string{"MELTICA_ENV", "MELTICA_LOG_LEVEL", "MELTICA_LOG_FORMAT", "OTEL_EXPORTER_OTLP_ENDPOINT"} {
		t.Setenv(key, "")
	}
}

func venue(t *testing.T, routes map[string]string) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, ok := routes[r.Method+" "+r.URL.Path]
		if !ok {
			w.WriteHeader(http.StatusNotFound)
			_, _ = w.Write([]byte(`{"errorCode":110,"error":"Invalid endpoint."}`))
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestRunRequiresExchangeAndCommand(t *testing.T) {
	isolate(t)
	var stdout, stderr bytes.Buffer

	err := run(context.Background(), []string{"time"}, &stdout, &stderr)
	require.ErrorIs(t, err, errUsage)
	require.Contains(t, stderr.String(), "usage: meltica-rest")

	err = run(context.Background(), []string{"-exchange", "bitvavo"}, &stdout, &stderr)
	require.ErrorIs(t, err, errUsage)
	require.Empty(t, stdout.String())
}

func TestRunRejectsUnknownCommandAndMissingArgs(t *testing.T) {
	isolate(t)
	var stdout, stderr bytes.Buffer

	err := run(context.Background(), []string{"-exchange", "bitvavo", "liquidate"}, &stdout, &stderr)
	require.ErrorContains(t, err, `unknown command "liquidate"`)

	err = run(context.Background(), []string{"-exchange", "bitvavo", "ohlcv", "BTC/EUR"}, &stdout, &stderr)
	require.ErrorContains(t, err, "SYMBOL TIMEFRAME")

	err = run(context.Background(), []string{"-exchange", "kraken", "time"}, &stdout, &stderr)
	require.ErrorContains(t, err, "not supported")
}

func TestRunFetchesServerTime(t *testing.T) {
	isolate(t)
	srv := venue(t, map[string]string{"GET /v2/time": `{"time":1700000000123}`})
	t.Setenv("BITVAVO_BASE_URL", srv.URL)

	var stdout, stderr bytes.Buffer
	require.NoError(t, run(context.Background(), []string{"-exchange", "bitvavo", "time"}, &stdout, &stderr))

	var out map[string]any
	require.NoError(t, json.Unmarshal(stdout.Bytes(), &out))
	require.EqualValues(t, 1700000000123, out["time"])
	require.Equal(t, "2023-11-14T22:13:20.123Z", out["iso"])
}

func TestRunDescribeNeedsNoNetwork(t *testing.T) {
	isolate(t)
	t.Setenv("BITSTAMP_BASE_URL", "http://127.0.0.1:1")

	var stdout, stderr bytes.Buffer
	require.NoError(t, run(context.Background(), []string{"-exchange", "bitstamp", "describe"}, &stdout, &stderr))
	require.Contains(t, stdout.String(), "bitstamp")
}

func TestRunSurfacesVenueErrors(t *testing.T) {
	isolate(t)
	srv := venue(t, map[string]string{})
	t.Setenv("BITVAVO_BASE_URL", srv.URL)

	var stdout, stderr bytes.Buffer
	err := run(context.Background(), []string{"-exchange", "bitvavo", "time"}, &stdout, &stderr)
	require.Error(t, err)
	require.True(t, errs.IsClass(err, errs.ClassBadRequest))
	require.Empty(t, stdout.String())
}

func TestRunLoadsCredentialsFromEnvFile(t *testing.T) {
	isolate(t)
	srv := venue(t, map[string]string{"GET /v2/time": `{"time":1}`})
	envFile := filepath.Join(t.TempDir(), "creds.env")
	require.NoError(t, os.WriteFile(envFile, []byte("BITVAVO_BASE_URL="+srv.URL+"\n"), 0o600))
	t.Setenv("BITVAVO_BASE_URL", "")
	require.NoError(t, os.Unsetenv("BITVAVO_BASE_URL"))

	var stdout, stderr bytes.Buffer
	require.NoError(t, run(context.Background(), []string{"-exchange", "bitvavo", "-env-file", envFile, "time"}, &stdout, &stderr))
	require.Contains(t, stdout.String(), `"time": 1`)
}

func TestRunNeverLogsRawAPIKey(t *testing.T) {
	isolate(t)
	t.Setenv("MELTICA_LOG_LEVEL", "debug")
	t.Setenv("BITSTAMP_API_KEY", "stampkey-0123456789")
	t.Setenv("BITSTAMP_API_SECRET", "stampsecret-0123456789")

	var stdout, stderr bytes.Buffer
	require.NoError(t, run(context.Background(), []string{"-exchange", "bitstamp", "describe"}, &stdout, &stderr))
	require.Contains(t, stderr.String(), "stam****")
	require.NotContains(t, stderr.String(), "stampkey-0123456789")
	require.NotContains(t, stderr.String(), "stampsecret")
}
