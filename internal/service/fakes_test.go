package service

import (
	"context"
	"errors"

	"github.com/healthdatalab/checkout-service/internal/mail"
	"github.com/healthdatalab/checkout-service/internal/provider"
)

// fakeProvider скриптуемая реализация provider.Provider для тестов
type fakeProvider struct {
	sessionID     string
	createErr     error
	createdParams []provider.SessionParams

	price    provider.Price
	priceErr error

	pages   []provider.SessionPage
	cursors []string

	lineItems map[string][]string

	sub    *provider.Subscription
	subErr error

	cancelCalls int
	cancelErr   error

	invoices    []provider.Invoice
	invoicesErr error
}

func (f *fakeProvider) CreateSession(ctx context.Context, params provider.SessionParams) (string, error) {
	if f.createErr != nil {
		return "", f.createErr
	}
	f.createdParams = append(f.createdParams, params)
	return f.sessionID, nil
}

func (f *fakeProvider) GetPrice(ctx context.Context, priceID string) (provider.Price, error) {
	if f.priceErr != nil {
		return provider.Price{}, f.priceErr
	}
	return f.price, nil
}

func (f *fakeProvider) ListCompletedSessions(ctx context.Context, startingAfter string, limit int64) (provider.SessionPage, error) {
	f.cursors = append(f.cursors, startingAfter)
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
	if f.cancelErr != nil {
		return f.cancelErr
	}
	f.cancelCalls++
	f.sub.Status = provider.SubscriptionStatusCanceled
	return nil
}

func (f *fakeProvider) ListPaidInvoices(ctx context.Context, subscriptionID string) ([]provider.Invoice, error) {
	if f.invoicesErr != nil {
		return nil, f.invoicesErr
	}
	return f.invoices, nil
}

// fakeRates источник курсов с фиксированной таблицей
type fakeRates struct {
	rates map[string]float64
	err   error
	calls int
}

func (f *fakeRates) Rate(ctx context.Context, currency string) (float64, error) {
	f.calls++
	if f.err != nil {
		return 0, f.err
	}
	rate, ok := f.rates[currency]
	if !ok {
		return 0, errors.New("unsupported currency")
	}
	return rate, nil
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

// recordingPublisher запоминает опубликованные события
type recordingPublisher struct {
	topics []string
}

func (p *recordingPublisher) Publish(ctx context.Context, topic, key string, payload map[string]any) error {
	p.topics = append(p.topics, topic)
	return nil
}

func (p *recordingPublisher) Close() error { return nil }
