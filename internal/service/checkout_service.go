package service

import (
	"context"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/healthdatalab/checkout-service/internal/domain"
	"github.com/healthdatalab/checkout-service/internal/kafka"
	"github.com/healthdatalab/checkout-service/internal/provider"
	"go.uber.org/zap"
)

// RateSource источник курсов валют для конвертации цен
type RateSource interface {
	Rate(ctx context.Context, currency string) (float64, error)
}

// CheckoutService собирает параметры Checkout-сессии и создает ее у провайдера
type CheckoutService struct {
	provider provider.Provider
	rates    RateSource
	events   kafka.Publisher
	log      *zap.Logger
}

// NewCheckoutService создает новый сервис Checkout-сессий
func NewCheckoutService(p provider.Provider, rates RateSource, events kafka.Publisher, log *zap.Logger) *CheckoutService {
	return &CheckoutService{
		provider: p,
		rates:    rates,
		events:   events,
		log:      log,
	}
}

// CreateSession создает Checkout-сессию и возвращает ее ID.
// Для базовой валюты (GBP) используется цена каталога без изменений.
// Для остальных валют сумма конвертируется по текущему курсу и к продукту
// привязывается ad-hoc цена в целевой валюте.
func (s *CheckoutService) CreateSession(ctx context.Context, req domain.CheckoutRequest) (string, error) {
	if req.PriceID == "" {
		return "", domain.NewValidationError("priceId", "is required")
	}

	mode := req.Mode
	if mode == "" {
		mode = domain.CheckoutModePayment
	}

	currency := strings.ToUpper(req.Currency)
	if currency == "" {
		currency = domain.BaseCurrency
	}
	nonBase := currency != domain.BaseCurrency

	// Запрос в другой валюте обязан нести базовую сумму в GBP,
	// иначе конвертировать нечего
	if nonBase && req.BaseAmountGBP <= 0 {
		return "", domain.NewValidationError("baseAmountGBP", "is required for non-GBP currency")
	}

	params := provider.SessionParams{
		Mode:       string(mode),
		SuccessURL: req.SuccessURL,
		CancelURL:  req.CancelURL,
	}

	if nonBase {
		rate, err := s.rates.Rate(ctx, currency)
		if err != nil {
			return "", err
		}

		converted := int64(math.Round(req.BaseAmountGBP * rate))

		price, err := s.provider.GetPrice(ctx, req.PriceID)
		if err != nil {
			return "", err
		}

		priceData := &provider.PriceData{
			Currency:   currency,
			ProductID:  price.ProductID,
			UnitAmount: converted,
		}
		if mode == domain.CheckoutModeSubscription {
			priceData.Interval = recurringInterval(req.RecurringInterval)
		}
		params.PriceData = priceData
	} else {
		params.PriceID = req.PriceID
	}

	// Триал с обязательной картой: без способа оплаты подписка
	// отменяется по окончании триала
	if req.TrialDays > 0 && mode == domain.CheckoutModeSubscription {
		params.Subscription = &provider.SubscriptionData{
			TrialDays:        req.TrialDays,
			CancelOnTrialEnd: true,
		}
	}

	// Рассрочка: метаданные для вебхука автоотмены плюс видимое
	// сообщение об условиях на странице оплаты
	if req.Installments > 0 && mode == domain.CheckoutModeSubscription {
		if params.Subscription == nil {
			params.Subscription = &provider.SubscriptionData{}
		}
		params.Subscription.Description = fmt.Sprintf("%d monthly payments for %s", req.Installments, req.TierName)
		params.Subscription.Metadata = map[string]string{
			"installments": strconv.FormatInt(req.Installments, 10),
			"tier":         req.TierName,
		}

		message, err := s.installmentMessage(ctx, req, currency, nonBase)
		if err != nil {
			return "", err
		}
		params.SubmitMessage = message
	}

	sessionID, err := s.provider.CreateSession(ctx, params)
	if err != nil {
		return "", err
	}

	s.log.Info("Checkout session created",
		zap.String("session_id", sessionID),
		zap.String("currency", currency),
		zap.String("mode", string(mode)))

	if err := s.events.Publish(ctx, kafka.TopicSessionCreated, sessionID, map[string]any{
		"session_id": sessionID,
		"price_id":   req.PriceID,
		"currency":   currency,
		"mode":       string(mode),
	}); err != nil {
		// Публикация события best-effort, сессия уже создана
		s.log.Warn("Failed to publish session created event", zap.Error(err))
	}

	return sessionID, nil
}

// installmentMessage собирает сообщение об условиях рассрочки для страницы
// оплаты. Политика округления единая: для не-GBP валют сумма платежа
// округляется до сотых после конвертации, итог считается умножением
// округленного платежа на число платежей.
func (s *CheckoutService) installmentMessage(ctx context.Context, req domain.CheckoutRequest, currency string, nonBase bool) (string, error) {
	symbol := "£"
	if currency != domain.BaseCurrency {
		symbol = currency + " "
	}

	if req.InstallmentAmount <= 0 {
		return fmt.Sprintf("Payment plan: %d monthly payments. Your subscription will automatically end after %d months.",
			req.Installments, req.Installments), nil
	}

	perPayment := req.InstallmentAmount
	if nonBase {
		rate, err := s.rates.Rate(ctx, currency)
		if err != nil {
			return "", err
		}
		perPayment = math.Round(req.InstallmentAmount*rate*100) / 100
	}
	total := perPayment * float64(req.Installments)

	return fmt.Sprintf("Payment plan: %d monthly payments of %s%.2f. Your subscription will automatically end after %d months (total %s%.2f).",
		req.Installments, symbol, perPayment, req.Installments, symbol, total), nil
}

// recurringInterval возвращает интервал списания, по умолчанию месяц
func recurringInterval(interval string) string {
	if interval == "" {
		return "month"
	}
	return interval
}
