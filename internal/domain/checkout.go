package domain

// CheckoutMode режим оплаты в Stripe Checkout
type CheckoutMode string

const (
	// CheckoutModePayment разовый платеж
	CheckoutModePayment CheckoutMode = "payment"

	// CheckoutModeSubscription регулярный платеж (подписка)
	CheckoutModeSubscription CheckoutMode = "subscription"
)

// BaseCurrency базовая валюта каталога. Все цены в Stripe заведены в GBP,
// остальные валюты конвертируются по текущему курсу.
const BaseCurrency = "GBP"

// CheckoutRequest представляет запрос на создание Checkout-сессии.
// Живет только в рамках одного HTTP-запроса.
type CheckoutRequest struct {
	PriceID           string       `json:"priceId" binding:"required"`
	Mode              CheckoutMode `json:"mode"`
	SuccessURL        string       `json:"successUrl" binding:"required,url"`
	CancelURL         string       `json:"cancelUrl" binding:"required,url"`
	TrialDays         int64        `json:"trialDays"`
	Installments      int64        `json:"installments"`
	TierName          string       `json:"tierName"`
	InstallmentAmount float64      `json:"installmentAmount"`
	Currency          string       `json:"currency"`
	BaseAmountGBP     float64      `json:"baseAmountGBP"`
	RecurringInterval string       `json:"recurringInterval"`
	Tier              string       `json:"tier"`
}

// SeatCount представляет остаток мест на потоке курса
type SeatCount struct {
	Total     int `json:"total"`
	Sold      int `json:"sold"`
	Remaining int `json:"remaining"`
}

// ContactMessage представляет сообщение из формы обратной связи.
// BotField - скрытое honeypot-поле: заполненное значение означает бота.
type ContactMessage struct {
	Name     string `json:"name" binding:"required"`
	Email    string `json:"email" binding:"required,email"`
	Subject  string `json:"subject"`
	Message  string `json:"message" binding:"required"`
	BotField string `json:"botField"`
}
