package handlers

import (
	"context"
	"net/http"
	"net/http/httptest"

	"github.com/gin-gonic/gin"
	"github.com/healthdatalab/checkout-service/internal/mail"
	"github.com/healthdatalab/checkout-service/internal/metrics"
	"github.com/healthdatalab/checkout-service/internal/provider"
	"github.com/prometheus/client_golang/prometheus"
)

// fakeProvider минимальная скриптуемая реализация provider.Provider
type fakeProvider struct {
	sessionID     string
	createErr     error
	createdParams []provider.SessionParams

	price provider.Price

	pages     []provider.SessionPage
	lineItems map[string][]string

	sub         *provider.Subscription
	subErr      error
	cancelCalls int

	invoices []provider.Invoice
}

func (f *fakeProvider) CreateSession(ctx context.Context, params provider.SessionParams) (string, error) {
	if f.createErr != nil {
		return "", f.createErr
	}
	f.createdParams = append(f.createdParams, params)
	return f.sessionID, nil
}

func (f *fakeProvider) GetPrice(ctx context.Context, priceID string) (provider.Price, error) {
	return f.price, nil
}

func (f *fakeProvider) ListCompletedSessions(ctx context.Context, startingAfter string, limit int64) (provider.SessionPage, error) {
	if len(f.pages) == 0 {
		return provider.SessionPage{}, nil
	}
	page := f.pages[0]
	f.pages = f.pages[1:]
	return page, nil
}

func (f *fakeProvider) ListSessionPriceIDs(ctx context.Context, sessionID string) ([]string, error) {
	return f.lineItems[sessionID], nil
}

func (f *fakeProvider) GetSubscription(ctx context.Context, subscriptionID string) (*provider.Subscription, error) {
	if f.subErr != nil {
		return nil, f.subErr
	}
	return f.sub, nil
}

func (f *fakeProvider) CancelSubscription(ctx context.Context, subscriptionID string) error {
	f.cancelCalls++
	f.sub.Status = provider.SubscriptionStatusCanceled
	return nil
}

func (f *fakeProvider) ListPaidInvoices(ctx context.Context, subscriptionID string) ([]provider.Invoice, error) {
	return f.invoices, nil
}

// fixedRates источник курсов с фиксированным значением
type fixedRates struct{ rate float64 }

func (f fixedRates) Rate(ctx context.Context, currency string) (float64, error) {
	return f.rate, nil
}

// fakeMailer запоминает отправленные письма
type fakeMailer struct {
	sent []mail.Message
	err  error
}

func (f *fakeMailer) Send(msg mail.Message) error {
	if f.err != nil {
		return f.err
	}
	f.sent = append(f.sent, msg)
	return nil
}

// testRecorder метрики в одноразовом реестре
func testRecorder() metrics.Recorder {
	return metrics.NewRecorder(prometheus.NewRegistry())
}

// perform прогоняет запрос через роутер и возвращает ответ
func perform(router *gin.Engine, req *http.Request) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}
