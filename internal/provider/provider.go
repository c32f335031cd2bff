// Package provider определяет узкий интерфейс платежного провайдера.
// Бизнес-логика сервисов работает только с этим интерфейсом, что позволяет
// тестировать ее без живого Stripe.
package provider

import "context"

// SessionParams параметры для создания Checkout-сессии.
// Заполняется либо PriceID (цена из каталога), либо PriceData
// (цена, рассчитанная на лету в другой валюте).
type SessionParams struct {
	PriceID       string
	PriceData     *PriceData
	Mode          string
	SuccessURL    string
	CancelURL     string
	Subscription  *SubscriptionData
	SubmitMessage string
}

// PriceData описание ad-hoc цены в целевой валюте, привязанной
// к существующему продукту каталога
type PriceData struct {
	Currency   string
	ProductID  string
	UnitAmount int64
	// Interval интервал списания для подписок, пустой для разовой оплаты
	Interval string
}

// SubscriptionData параметры подписки внутри Checkout-сессии
type SubscriptionData struct {
	Description string
	Metadata    map[string]string
	TrialDays   int64
	// CancelOnTrialEnd отменять подписку по окончании триала,
	// если не привязан способ оплаты
	CancelOnTrialEnd bool
}

// Price цена из каталога провайдера
type Price struct {
	ID        string
	ProductID string
}

// Subscription подписка на стороне провайдера. Metadata хранит
// installments - лимит платежей рассрочки.
type Subscription struct {
	ID       string
	Status   string
	Metadata map[string]string
}

// Invoice оплаченный инвойс подписки. AmountPaid в минимальных
// единицах валюты, ноль у триальных инвойсов.
type Invoice struct {
	ID         string
	AmountPaid int64
}

// SessionPage одна страница завершенных Checkout-сессий
type SessionPage struct {
	IDs     []string
	HasMore bool
}

// SubscriptionStatusCanceled статус уже отмененной подписки
const SubscriptionStatusCanceled = "canceled"

// Provider определяет операции платежного провайдера, необходимые сервисам
type Provider interface {
	// CreateSession создает Checkout-сессию и возвращает ее ID
	CreateSession(ctx context.Context, params SessionParams) (string, error)

	// GetPrice возвращает цену каталога по ее ID
	GetPrice(ctx context.Context, priceID string) (Price, error)

	// ListCompletedSessions возвращает страницу завершенных сессий
	// начиная с курсора startingAfter (пустой курсор - первая страница)
	ListCompletedSessions(ctx context.Context, startingAfter string, limit int64) (SessionPage, error)

	// ListSessionPriceIDs возвращает ID цен всех позиций сессии
	ListSessionPriceIDs(ctx context.Context, sessionID string) ([]string, error)

	// GetSubscription возвращает подписку по ее ID
	GetSubscription(ctx context.Context, subscriptionID string) (*Subscription, error)

	// CancelSubscription немедленно отменяет подписку
	CancelSubscription(ctx context.Context, subscriptionID string) error

	// ListPaidInvoices возвращает оплаченные инвойсы подписки
	ListPaidInvoices(ctx context.Context, subscriptionID string) ([]Invoice, error)
}
