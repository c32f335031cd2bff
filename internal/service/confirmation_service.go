package service

import (
	"fmt"
	"html"
	"strings"

	"github.com/healthdatalab/checkout-service/internal/mail"
	"go.uber.org/zap"
)

// ConfirmationService отправляет покупателю письмо-подтверждение после
// успешной оплаты. Отправка best-effort: платеж уже прошел, поэтому
// неудача отправки логируется, но не считается ошибкой обработки.
type ConfirmationService struct {
	mailer mail.Sender
	from   string
	log    *zap.Logger
}

// NewConfirmationService создает новый сервис писем-подтверждений
func NewConfirmationService(mailer mail.Sender, from string, log *zap.Logger) *ConfirmationService {
	return &ConfirmationService{
		mailer: mailer,
		from:   from,
		log:    log,
	}
}

// SendPurchaseConfirmation отправляет подтверждение покупки.
// amountTotal в минимальных единицах валюты.
func (s *ConfirmationService) SendPurchaseConfirmation(email, name string, amountTotal int64, currency string) error {
	if email == "" {
		return fmt.Errorf("customer email is empty")
	}

	greeting := "Hello"
	if name != "" {
		greeting = "Hello " + html.EscapeString(name)
	}

	body := "<h3>Thank you for your purchase!</h3>" +
		"<p>" + greeting + ",</p>" +
		fmt.Sprintf("<p>We have received your payment of %s %.2f.</p>",
			strings.ToUpper(currency), float64(amountTotal)/100) +
		"<p>You will receive your onboarding details shortly. " +
		"If you have any questions, just reply to this email.</p>" +
		"<p>— The HealthDataLab team</p>"

	err := s.mailer.Send(mail.Message{
		From:     fmt.Sprintf("\"HealthDataLab\" <%s>", s.from),
		To:       email,
		Subject:  "Your HealthDataLab purchase confirmation",
		HTMLBody: body,
	})
	if err != nil {
		return fmt.Errorf("failed to send confirmation to %s: %w", email, err)
	}

	s.log.Info("Purchase confirmation sent", zap.String("to", email))
	return nil
}
