package service

import (
	"context"
	"fmt"
	"html"
	"regexp"
	"strings"

	"github.com/healthdatalab/checkout-service/internal/domain"
	"github.com/healthdatalab/checkout-service/internal/kafka"
	"github.com/healthdatalab/checkout-service/internal/mail"
	"go.uber.org/zap"
)

// emailShape грубая проверка формата адреса, без попытки полной
// валидации RFC 5322
var emailShape = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

// defaultSubject тема по умолчанию, если посетитель ее не указал
const defaultSubject = "General inquiry"

// ContactService валидирует и пересылает сообщения формы обратной связи
type ContactService struct {
	mailer mail.Sender
	from   string
	to     string
	events kafka.Publisher
	log    *zap.Logger
}

// NewContactService создает новый сервис обратной связи
func NewContactService(mailer mail.Sender, from, to string, events kafka.Publisher, log *zap.Logger) *ContactService {
	return &ContactService{
		mailer: mailer,
		from:   from,
		to:     to,
		events: events,
		log:    log,
	}
}

// Relay проверяет сообщение и отправляет его на офисный адрес.
// Заполненное honeypot-поле означает бота: отвечаем успехом,
// письмо не отправляем.
func (s *ContactService) Relay(ctx context.Context, msg domain.ContactMessage) error {
	if msg.BotField != "" {
		s.log.Info("Contact honeypot triggered, dropping message silently")
		return nil
	}

	if msg.Name == "" {
		return domain.NewValidationError("name", "is required")
	}
	if msg.Message == "" {
		return domain.NewValidationError("message", "is required")
	}
	if !emailShape.MatchString(msg.Email) {
		return domain.NewValidationError("email", "is not a valid email address")
	}

	subject := msg.Subject
	if subject == "" {
		subject = defaultSubject
	}

	err := s.mailer.Send(mail.Message{
		From:        fmt.Sprintf("\"HealthDataLab\" <%s>", s.from),
		To:          s.to,
		ReplyToName: msg.Name,
		ReplyToAddr: msg.Email,
		Subject:     "[HDL Contact] " + subject,
		HTMLBody:    buildContactBody(msg, subject),
	})
	if err != nil {
		s.log.Error("Failed to relay contact message", zap.Error(err))
		return fmt.Errorf("%w: %v", domain.ErrDeliveryFailed, err)
	}

	s.log.Info("Contact message relayed", zap.String("reply_to", msg.Email))

	if err := s.events.Publish(ctx, kafka.TopicContactReceived, msg.Email, map[string]any{
		"name":    msg.Name,
		"email":   msg.Email,
		"subject": subject,
	}); err != nil {
		s.log.Warn("Failed to publish contact received event", zap.Error(err))
	}

	return nil
}

// buildContactBody собирает HTML-тело письма. Свободный текст
// экранируется, переводы строк превращаются в <br>.
func buildContactBody(msg domain.ContactMessage, subject string) string {
	escaped := html.EscapeString(msg.Message)
	escaped = strings.ReplaceAll(escaped, "\n", "<br>")

	return "<h3>New contact form submission</h3>" +
		"<p><strong>Name:</strong> " + html.EscapeString(msg.Name) + "</p>" +
		"<p><strong>Email:</strong> " + html.EscapeString(msg.Email) + "</p>" +
		"<p><strong>Subject:</strong> " + html.EscapeString(subject) + "</p>" +
		"<hr>" +
		"<p>" + escaped + "</p>"
}
