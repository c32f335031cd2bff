package rates

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"sync/atomic"
	"time"

	"github.com/healthdatalab/checkout-service/internal/domain"
	"go.uber.org/zap"
)

// DefaultTTL время жизни снапшота курсов
const DefaultTTL = time.Hour

// Config конфигурация кеша курсов валют
type Config struct {
	// BaseURL адрес API курсов (Frankfurter)
	BaseURL string

	// Currencies целевые валюты, база всегда GBP
	Currencies []string

	// TTL время жизни снапшота, по умолчанию DefaultTTL
	TTL time.Duration

	// HTTPClient опциональный HTTP клиент (для тестов)
	HTTPClient *http.Client
}

// snapshot неизменяемый снимок курсов. Заменяется целиком,
// частичное обновление невозможно.
type snapshot struct {
	rates     map[string]float64
	fetchedAt time.Time
}

// Cache кеш курсов валют в памяти процесса с ленивым обновлением.
// Снапшот подменяется атомарно: читатели никогда не видят смесь
// старых и новых курсов. Одновременные обновления безопасны -
// обновление идемпотентно, побеждает последняя запись.
type Cache struct {
	baseURL    string
	currencies []string
	ttl        time.Duration
	httpClient *http.Client
	log        *zap.Logger
	now        func() time.Time
	snap       atomic.Pointer[snapshot]
}

// ratesResponse ответ Frankfurter API
type ratesResponse struct {
	Base  string             `json:"base"`
	Date  string             `json:"date"`
	Rates map[string]float64 `json:"rates"`
}

// NewCache создает новый кеш курсов валют
func NewCache(cfg Config, log *zap.Logger) *Cache {
	ttl := cfg.TTL
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 10 * time.Second}
	}

	return &Cache{
		baseURL:    strings.TrimRight(cfg.BaseURL, "/"),
		currencies: cfg.Currencies,
		ttl:        ttl,
		httpClient: httpClient,
		log:        log,
		now:        time.Now,
	}
}

// Rate возвращает курс GBP -> currency. Если снапшот отсутствует или
// устарел, синхронно запрашивает свежие курсы. При неудачном обновлении
// возвращает ErrRateUnavailable без отката на устаревшие значения.
func (c *Cache) Rate(ctx context.Context, currency string) (float64, error) {
	cur := strings.ToUpper(currency)

	snap := c.snap.Load()
	if snap == nil || c.now().Sub(snap.fetchedAt) >= c.ttl {
		fresh, err := c.fetch(ctx)
		if err != nil {
			c.log.Error("Failed to refresh exchange rates", zap.Error(err))
			return 0, fmt.Errorf("%w: %v", domain.ErrRateUnavailable, err)
		}
		c.snap.Store(fresh)
		snap = fresh
		c.log.Info("Exchange rate snapshot refreshed",
			zap.Int("currencies", len(fresh.rates)))
	}

	rate, ok := snap.rates[cur]
	if !ok {
		return 0, fmt.Errorf("%w: %s", domain.ErrUnsupportedCurrency, cur)
	}
	return rate, nil
}

// fetch запрашивает свежий снапшот курсов у внешнего API
func (c *Cache) fetch(ctx context.Context) (*snapshot, error) {
	endpoint := fmt.Sprintf("%s/latest?from=%s&to=%s",
		c.baseURL, domain.BaseCurrency, url.QueryEscape(strings.Join(c.currencies, ",")))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build rates request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch exchange rates: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("rates API returned status %d", resp.StatusCode)
	}

	var body ratesResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, fmt.Errorf("failed to decode rates response: %w", err)
	}
	if len(body.Rates) == 0 {
		return nil, fmt.Errorf("rates API returned empty snapshot")
	}

	return &snapshot{
		rates:     body.Rates,
		fetchedAt: c.now(),
	}, nil
}
