package tebex

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/ulogstudios/review-bot/pkg/errors"
	"github.com/ulogstudios/review-bot/pkg/httpclient"
)

func newTestLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
}

func newTestClient(t *testing.T, cfg Config) *Client {
	t.Helper()
	base := httpclient.New(httpclient.Config{Timeout: 5 * time.Second, MaxRetries: 0})
	cb := httpclient.NewCircuitBreakerClient(base, httpclient.DefaultCircuitBreakerConfig(t.Name()), newTestLogger())
	return NewClient(cfg, cb, newTestLogger())
}

const paymentJSON = `{
	"id": 12345678,
	"amount": "9.99",
	"currency": {"iso_4217": "USD", "symbol": "$"},
	"date": "2025-05-20T10:00:00+00:00",
	"player": {"id": 900001, "name": "blockfan"},
	"packages": [
		{"id": 101, "name": "VIP Rank", "quantity": 1, "image": "https://cdn.example.com/vip.png"}
	],
	"status": "Complete"
}`

func TestLookupPayment_DirectHit(t *testing.T) {
	var gotSecret string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/payments/tbx-999", r.URL.Path)
		gotSecret = r.Header.Get("X-Tebex-Secret")
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(paymentJSON))
	}))
	defer server.Close()

	client := newTestClient(t, Config{PluginAPIURL: server.URL, Secret: "sekrit"})

	payment, err := client.LookupPayment(context.Background(), "tbx-999")
	require.NoError(t, err)

	assert.Equal(t, "sekrit", gotSecret)
	assert.Equal(t, "12345678", payment.ID)
	assert.Equal(t, "9.99", payment.Amount)
	assert.Equal(t, "USD", payment.Currency)
	assert.Equal(t, "blockfan", payment.PlayerName)
	assert.Equal(t, time.Date(2025, 5, 20, 10, 0, 0, 0, time.UTC), payment.Date.UTC())
	require.Len(t, payment.Packages, 1)
	assert.Equal(t, "VIP Rank", payment.Packages[0].Name)
	assert.Equal(t, "https://cdn.example.com/vip.png", payment.Packages[0].Image)
}

func TestLookupPayment_FallbackHit(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/payments/12345678":
			// The by-id endpoint rejects this identifier format.
			w.WriteHeader(http.StatusNotFound)
		case "/payments":
			assert.Equal(t, "100", r.URL.Query().Get("limit"))
			w.Header().Set("Content-Type", "application/json")
			_, _ = w.Write([]byte("[" + paymentJSON + "]"))
		default:
			t.Errorf("unexpected path %s", r.URL.Path)
		}
	}))
	defer server.Close()

	client := newTestClient(t, Config{PluginAPIURL: server.URL, Secret: "sekrit"})

	payment, err := client.LookupPayment(context.Background(), "12345678")
	require.NoError(t, err)
	assert.Equal(t, "12345678", payment.ID)
	assert.Equal(t, "VIP Rank", payment.Packages[0].Name)
}

func TestLookupPayment_NotFoundAnywhere(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/payments":
			w.Header().Set("Content-Type", "application/json")
			_, _ = w.Write([]byte("[" + paymentJSON + "]"))
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	defer server.Close()

	client := newTestClient(t, Config{PluginAPIURL: server.URL, Secret: "sekrit"})

	_, err := client.LookupPayment(context.Background(), "tbx-nope")
	require.Error(t, err)
	assert.True(t, errors.Is(err, apperrors.ErrNotFound))
}

func TestLookupPayment_BackendDown(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	client := newTestClient(t, Config{PluginAPIURL: server.URL, Secret: "sekrit"})

	_, err := client.LookupPayment(context.Background(), "tbx-999")
	require.Error(t, err)
	assert.True(t, errors.Is(err, apperrors.ErrNotFound),
		"an outage surfaces as not-found to the workflow")
}

func TestLookupPayment_ZeroPackages(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"id": 12345678, "amount": "9.99", "packages": []}`))
	}))
	defer server.Close()

	client := newTestClient(t, Config{PluginAPIURL: server.URL, Secret: "sekrit"})

	// The lookup itself succeeds; rejecting productless payments is the
	// workflow's call, not the client's.
	payment, err := client.LookupPayment(context.Background(), "12345678")
	require.NoError(t, err)
	assert.False(t, payment.HasProducts())
}

func TestFormatPayment_Defaults(t *testing.T) {
	wire := &pluginPayment{
		ID:       "555",
		Amount:   "4.50",
		Date:     "not-a-date",
		Packages: []pluginPkg{{ID: "9", Name: "Crate Key"}},
	}

	payment := formatPayment(wire)

	assert.Equal(t, "USD", payment.Currency, "missing currency falls back to USD")
	assert.True(t, payment.Date.IsZero(), "unparseable date zeroes out")
	assert.Equal(t, "Unknown", payment.PlayerName)
	assert.Equal(t, 1, payment.Packages[0].Quantity, "missing quantity defaults to 1")
}

func TestFormatPayment_SymbolCurrency(t *testing.T) {
	wire := &pluginPayment{ID: "555", Currency: pluginCurrency{Symbol: "€"}}

	assert.Equal(t, "€", formatPayment(wire).Currency)
}

const catalogJSON = `{
	"data": [
		{"packages": [
			{"id": 101, "name": "VIP Rank", "image": "https://cdn.example.com/vip.png"},
			{"id": 102, "name": "Crate Keys", "image": ""}
		]}
	]
}`

func TestFindPackageImage_CaseInsensitiveMatch(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/api/accounts/ws-1/categories", r.URL.Path)
		assert.Equal(t, "1", r.URL.Query().Get("includePackages"))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(catalogJSON))
	}))
	defer server.Close()

	client := newTestClient(t, Config{HeadlessAPIURL: server.URL, WebstoreID: "ws-1"})

	image, err := client.FindPackageImage(context.Background(), "vip rank")
	require.NoError(t, err)
	assert.Equal(t, "https://cdn.example.com/vip.png", image)
}

func TestFindPackageImage_NoMatch(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(catalogJSON))
	}))
	defer server.Close()

	client := newTestClient(t, Config{HeadlessAPIURL: server.URL, WebstoreID: "ws-1"})

	image, err := client.FindPackageImage(context.Background(), "Nonexistent")
	require.NoError(t, err)
	assert.Empty(t, image)
}

func TestFindPackageImage_NoWebstoreConfigured(t *testing.T) {
	client := newTestClient(t, Config{})

	image, err := client.FindPackageImage(context.Background(), "VIP Rank")
	require.NoError(t, err)
	assert.Empty(t, image)
}
