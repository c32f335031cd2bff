package service

import (
	"context"
	"strconv"

	"github.com/healthdatalab/checkout-service/internal/kafka"
	"github.com/healthdatalab/checkout-service/internal/provider"
	"go.uber.org/zap"
)

// InstallmentOutcome результат обработки уведомления об оплате
type InstallmentOutcome string

const (
	// OutcomeNoSubscription инвойс не привязан к подписке
	OutcomeNoSubscription InstallmentOutcome = "no_subscription"

	// OutcomeNotInstallment подписка без лимита платежей
	OutcomeNotInstallment InstallmentOutcome = "not_installment"

	// OutcomeActive лимит не достигнут, подписка продолжается
	OutcomeActive InstallmentOutcome = "active"

	// OutcomeCancelled лимит достигнут, подписка отменена
	OutcomeCancelled InstallmentOutcome = "cancelled"

	// OutcomeAlreadyCancelled подписка уже была отменена ранее
	OutcomeAlreadyCancelled InstallmentOutcome = "already_cancelled"
)

// InstallmentService отслеживает платежи рассрочки и отменяет подписку
// по достижении лимита. Обработка идемпотентна: повторная доставка того же
// уведомления не приводит к повторной отмене или ошибке.
type InstallmentService struct {
	provider provider.Provider
	events   kafka.Publisher
	log      *zap.Logger
}

// NewInstallmentService создает новый сервис рассрочек
func NewInstallmentService(p provider.Provider, events kafka.Publisher, log *zap.Logger) *InstallmentService {
	return &InstallmentService{
		provider: p,
		events:   events,
		log:      log,
	}
}

// HandlePaidInvoice обрабатывает уведомление об успешной оплате инвойса.
// Лимит платежей читается из метаданных подписки; оплаченные инвойсы
// пересчитываются у провайдера при каждой доставке, поэтому повторная
// доставка дает тот же результат.
func (s *InstallmentService) HandlePaidInvoice(ctx context.Context, subscriptionID string) (InstallmentOutcome, error) {
	if subscriptionID == "" {
		return OutcomeNoSubscription, nil
	}

	sub, err := s.provider.GetSubscription(ctx, subscriptionID)
	if err != nil {
		return "", err
	}

	maxInstallments, err := strconv.Atoi(sub.Metadata["installments"])
	if err != nil || maxInstallments <= 0 {
		// Подписка без лимита - обычная подписка, ничего не делаем
		return OutcomeNotInstallment, nil
	}

	if sub.Status == provider.SubscriptionStatusCanceled {
		return OutcomeAlreadyCancelled, nil
	}

	invoices, err := s.provider.ListPaidInvoices(ctx, subscriptionID)
	if err != nil {
		return "", err
	}

	// Нулевые инвойсы триального периода платежами не считаются
	paidCount := 0
	for _, inv := range invoices {
		if inv.AmountPaid > 0 {
			paidCount++
		}
	}

	s.log.Info("Installment payment counted",
		zap.String("subscription_id", subscriptionID),
		zap.Int("paid", paidCount),
		zap.Int("max", maxInstallments))

	if paidCount < maxInstallments {
		return OutcomeActive, nil
	}

	if err := s.provider.CancelSubscription(ctx, subscriptionID); err != nil {
		return "", err
	}

	s.log.Info("Installment subscription cancelled after final payment",
		zap.String("subscription_id", subscriptionID),
		zap.Int("payments", paidCount))

	if err := s.events.Publish(ctx, kafka.TopicInstallmentsCompleted, subscriptionID, map[string]any{
		"subscription_id": subscriptionID,
		"payments":        paidCount,
		"tier":            sub.Metadata["tier"],
	}); err != nil {
		s.log.Warn("Failed to publish installments completed event", zap.Error(err))
	}

	return OutcomeCancelled, nil
}
