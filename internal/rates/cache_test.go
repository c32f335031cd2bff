package rates

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/healthdatalab/checkout-service/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newTestCache(t *testing.T, handler http.HandlerFunc) (*Cache, *httptest.Server, *atomic.Int32) {
	t.Helper()

	var fetches atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fetches.Add(1)
		handler(w, r)
	}))
	t.Cleanup(server.Close)

	cache := NewCache(Config{
		BaseURL:    server.URL,
		Currencies: []string{"USD", "EUR", "CHF", "CAD", "AUD"},
	}, zap.NewNop())

	return cache, server, &fetches
}

func serveRates(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.Write([]byte(`{"amount":1.0,"base":"GBP","date":"2026-01-02","rates":{"USD":1.27,"EUR":1.17,"CHF":1.12,"CAD":1.71,"AUD":1.92}}`))
}

func TestRateFetchesAndCaches(t *testing.T) {
	cache, _, fetches := newTestCache(t, serveRates)

	rate, err := cache.Rate(context.Background(), "USD")
	require.NoError(t, err)
	assert.Equal(t, 1.27, rate)

	// Повторные чтения внутри TTL не ходят наружу
	rate, err = cache.Rate(context.Background(), "eur")
	require.NoError(t, err)
	assert.Equal(t, 1.17, rate)

	assert.Equal(t, int32(1), fetches.Load())
}

func TestRateRefreshesAfterTTL(t *testing.T) {
	cache, _, fetches := newTestCache(t, serveRates)

	now := time.Now()
	cache.now = func() time.Time { return now }

	_, err := cache.Rate(context.Background(), "USD")
	require.NoError(t, err)

	// Прямо перед истечением TTL - из кеша
	now = now.Add(DefaultTTL - time.Second)
	_, err = cache.Rate(context.Background(), "USD")
	require.NoError(t, err)
	assert.Equal(t, int32(1), fetches.Load())

	// Сразу после истечения - новый запрос
	now = now.Add(2 * time.Second)
	_, err = cache.Rate(context.Background(), "USD")
	require.NoError(t, err)
	assert.Equal(t, int32(2), fetches.Load())
}

func TestRateUnavailableOnRefreshFailure(t *testing.T) {
	cache, _, _ := newTestCache(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	})

	_, err := cache.Rate(context.Background(), "USD")
	assert.ErrorIs(t, err, domain.ErrRateUnavailable)
}

func TestRateNoStaleFallbackAfterFailedRefresh(t *testing.T) {
	healthy := true
	cache, _, _ := newTestCache(t, func(w http.ResponseWriter, r *http.Request) {
		if !healthy {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		serveRates(w, r)
	})

	now := time.Now()
	cache.now = func() time.Time { return now }

	_, err := cache.Rate(context.Background(), "USD")
	require.NoError(t, err)

	// После истечения TTL неудачное обновление - ошибка, а не старый курс
	healthy = false
	now = now.Add(DefaultTTL + time.Second)
	_, err = cache.Rate(context.Background(), "USD")
	assert.ErrorIs(t, err, domain.ErrRateUnavailable)
}

func TestRateUnsupportedCurrency(t *testing.T) {
	cache, _, _ := newTestCache(t, serveRates)

	_, err := cache.Rate(context.Background(), "JPY")
	assert.ErrorIs(t, err, domain.ErrUnsupportedCurrency)
}

func TestRateEmptySnapshotRejected(t *testing.T) {
	cache, _, _ := newTestCache(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"base":"GBP","rates":{}}`))
	})

	_, err := cache.Rate(context.Background(), "USD")
	assert.ErrorIs(t, err, domain.ErrRateUnavailable)
}

func TestRateRequestShape(t *testing.T) {
	var gotPath, gotQuery string
	cache, _, _ := newTestCache(t, func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotQuery = r.URL.RawQuery
		serveRates(w, r)
	})

	_, err := cache.Rate(context.Background(), "USD")
	require.NoError(t, err)
	assert.Equal(t, "/latest", gotPath)
	assert.Contains(t, gotQuery, "from=GBP")
}
