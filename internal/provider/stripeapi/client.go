// Package stripeapi реализует интерфейс provider.Provider поверх
// официального SDK Stripe.
package stripeapi

import (
	"context"
	"errors"
	"strings"

	"github.com/healthdatalab/checkout-service/internal/domain"
	"github.com/healthdatalab/checkout-service/internal/provider"
	"github.com/stripe/stripe-go/v78"
	"github.com/stripe/stripe-go/v78/client"
	"go.uber.org/zap"
)

// Client клиент Stripe, реализующий provider.Provider
type Client struct {
	sc  *client.API
	log *zap.Logger
}

// NewClient создает новый клиент Stripe
func NewClient(apiKey string, log *zap.Logger) *Client {
	sc := &client.API{}
	sc.Init(apiKey, nil)
	return &Client{
		sc:  sc,
		log: log,
	}
}

// CreateSession создает Checkout-сессию в Stripe
func (c *Client) CreateSession(ctx context.Context, p provider.SessionParams) (string, error) {
	params := &stripe.CheckoutSessionParams{
		Mode:                stripe.String(p.Mode),
		SuccessURL:          stripe.String(p.SuccessURL),
		CancelURL:           stripe.String(p.CancelURL),
		PaymentMethodTypes:  stripe.StringSlice([]string{"card"}),
		AutomaticTax:        &stripe.CheckoutSessionAutomaticTaxParams{Enabled: stripe.Bool(true)},
		AllowPromotionCodes: stripe.Bool(true),
	}
	params.Context = ctx

	item := &stripe.CheckoutSessionLineItemParams{Quantity: stripe.Int64(1)}
	if p.PriceData != nil {
		priceData := &stripe.CheckoutSessionLineItemPriceDataParams{
			Currency:   stripe.String(strings.ToLower(p.PriceData.Currency)),
			Product:    stripe.String(p.PriceData.ProductID),
			UnitAmount: stripe.Int64(p.PriceData.UnitAmount),
		}
		if p.PriceData.Interval != "" {
			priceData.Recurring = &stripe.CheckoutSessionLineItemPriceDataRecurringParams{
				Interval: stripe.String(p.PriceData.Interval),
			}
		}
		item.PriceData = priceData
	} else {
		item.Price = stripe.String(p.PriceID)
	}
	params.LineItems = []*stripe.CheckoutSessionLineItemParams{item}

	if p.Subscription != nil {
		subData := &stripe.CheckoutSessionSubscriptionDataParams{}
		if p.Subscription.Description != "" {
			subData.Description = stripe.String(p.Subscription.Description)
		}
		if len(p.Subscription.Metadata) > 0 {
			subData.Metadata = p.Subscription.Metadata
		}
		if p.Subscription.TrialDays > 0 {
			subData.TrialPeriodDays = stripe.Int64(p.Subscription.TrialDays)
		}
		if p.Subscription.CancelOnTrialEnd {
			subData.TrialSettings = &stripe.CheckoutSessionSubscriptionDataTrialSettingsParams{
				EndBehavior: &stripe.CheckoutSessionSubscriptionDataTrialSettingsEndBehaviorParams{
					MissingPaymentMethod: stripe.String("cancel"),
				},
			}
		}
		params.SubscriptionData = subData
	}

	if p.SubmitMessage != "" {
		params.CustomText = &stripe.CheckoutSessionCustomTextParams{
			Submit: &stripe.CheckoutSessionCustomTextSubmitParams{
				Message: stripe.String(p.SubmitMessage),
			},
		}
	}

	sess, err := c.sc.CheckoutSessions.New(params)
	if err != nil {
		return "", c.wrapErr("CreateSession", err)
	}

	c.log.Info("Stripe checkout session created", zap.String("session_id", sess.ID))
	return sess.ID, nil
}

// GetPrice возвращает цену каталога Stripe
func (c *Client) GetPrice(ctx context.Context, priceID string) (provider.Price, error) {
	params := &stripe.PriceParams{}
	params.Context = ctx

	price, err := c.sc.Prices.Get(priceID, params)
	if err != nil {
		return provider.Price{}, c.wrapErr("GetPrice", err)
	}

	result := provider.Price{ID: price.ID}
	if price.Product != nil {
		result.ProductID = price.Product.ID
	}
	return result, nil
}

// ListCompletedSessions возвращает одну страницу завершенных Checkout-сессий
func (c *Client) ListCompletedSessions(ctx context.Context, startingAfter string, limit int64) (provider.SessionPage, error) {
	params := &stripe.CheckoutSessionListParams{
		Status: stripe.String("complete"),
	}
	params.Context = ctx
	params.Limit = stripe.Int64(limit)
	params.Single = true
	if startingAfter != "" {
		params.StartingAfter = stripe.String(startingAfter)
	}

	var page provider.SessionPage
	it := c.sc.CheckoutSessions.List(params)
	for it.Next() {
		page.IDs = append(page.IDs, it.CheckoutSession().ID)
	}
	if err := it.Err(); err != nil {
		return provider.SessionPage{}, c.wrapErr("ListCompletedSessions", err)
	}
	if meta := it.Meta(); meta != nil {
		page.HasMore = meta.HasMore
	}
	return page, nil
}

// ListSessionPriceIDs возвращает ID цен всех позиций Checkout-сессии
func (c *Client) ListSessionPriceIDs(ctx context.Context, sessionID string) ([]string, error) {
	params := &stripe.CheckoutSessionListLineItemsParams{
		Session: stripe.String(sessionID),
	}
	params.Context = ctx

	var ids []string
	it := c.sc.CheckoutSessions.ListLineItems(params)
	for it.Next() {
		if item := it.LineItem(); item.Price != nil {
			ids = append(ids, item.Price.ID)
		}
	}
	if err := it.Err(); err != nil {
		return nil, c.wrapErr("ListSessionPriceIDs", err)
	}
	return ids, nil
}

// GetSubscription возвращает подписку Stripe
func (c *Client) GetSubscription(ctx context.Context, subscriptionID string) (*provider.Subscription, error) {
	params := &stripe.SubscriptionParams{}
	params.Context = ctx

	sub, err := c.sc.Subscriptions.Get(subscriptionID, params)
	if err != nil {
		return nil, c.wrapErr("GetSubscription", err)
	}

	return &provider.Subscription{
		ID:       sub.ID,
		Status:   string(sub.Status),
		Metadata: sub.Metadata,
	}, nil
}

// CancelSubscription немедленно отменяет подписку Stripe
func (c *Client) CancelSubscription(ctx context.Context, subscriptionID string) error {
	params := &stripe.SubscriptionCancelParams{}
	params.Context = ctx

	if _, err := c.sc.Subscriptions.Cancel(subscriptionID, params); err != nil {
		return c.wrapErr("CancelSubscription", err)
	}

	c.log.Info("Stripe subscription cancelled", zap.String("subscription_id", subscriptionID))
	return nil
}

// ListPaidInvoices возвращает оплаченные инвойсы подписки
func (c *Client) ListPaidInvoices(ctx context.Context, subscriptionID string) ([]provider.Invoice, error) {
	params := &stripe.InvoiceListParams{
		Subscription: stripe.String(subscriptionID),
		Status:       stripe.String(string(stripe.InvoiceStatusPaid)),
	}
	params.Context = ctx
	params.Limit = stripe.Int64(100)

	var invoices []provider.Invoice
	it := c.sc.Invoices.List(params)
	for it.Next() {
		inv := it.Invoice()
		invoices = append(invoices, provider.Invoice{
			ID:         inv.ID,
			AmountPaid: inv.AmountPaid,
		})
	}
	if err := it.Err(); err != nil {
		return nil, c.wrapErr("ListPaidInvoices", err)
	}
	return invoices, nil
}

// wrapErr оборачивает ошибку Stripe в доменную ошибку провайдера,
// сохраняя сообщение Stripe для логов и ответа клиенту
func (c *Client) wrapErr(op string, err error) error {
	var stripeErr *stripe.Error
	if errors.As(err, &stripeErr) {
		c.log.Error("Stripe API error",
			zap.String("op", op),
			zap.String("code", string(stripeErr.Code)),
			zap.String("message", stripeErr.Msg))
		return domain.NewProviderError("stripe", op, stripeErr.Msg, err)
	}
	return domain.NewProviderError("stripe", op, err.Error(), err)
}
