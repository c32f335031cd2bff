package mail

import (
	"fmt"
	netmail "net/mail"
	"net/smtp"

	"go.uber.org/zap"
)

// Message письмо для отправки
type Message struct {
	From        string
	To          string
	ReplyToName string
	ReplyToAddr string
	Subject     string
	HTMLBody    string
}

// Sender определяет интерфейс отправки писем
type Sender interface {
	Send(msg Message) error
}

// SMTPMailer отправляет письма через SMTP-релей (Brevo)
type SMTPMailer struct {
	host     string
	port     string
	username string
	password string
	log      *zap.Logger
}

// NewSMTPMailer создает новый SMTP-отправитель
func NewSMTPMailer(host, port, username, password string, log *zap.Logger) *SMTPMailer {
	return &SMTPMailer{
		host:     host,
		port:     port,
		username: username,
		password: password,
		log:      log,
	}
}

// Send отправляет письмо. Тело письма - HTML.
func (m *SMTPMailer) Send(msg Message) error {
	var auth smtp.Auth
	if m.username != "" && m.password != "" {
		auth = smtp.PlainAuth("", m.username, m.password, m.host)
	}

	headers := fmt.Sprintf("From: %s\r\nTo: %s\r\n", msg.From, msg.To)
	if msg.ReplyToAddr != "" {
		headers += fmt.Sprintf("Reply-To: \"%s\" <%s>\r\n", msg.ReplyToName, msg.ReplyToAddr)
	}
	headers += fmt.Sprintf("Subject: %s\r\n", msg.Subject) +
		"MIME-Version: 1.0\r\n" +
		"Content-Type: text/html; charset=UTF-8\r\n\r\n"

	// MAIL FROM требует голый адрес, даже если заголовок From с именем
	envelopeFrom := msg.From
	if parsed, err := netmail.ParseAddress(msg.From); err == nil {
		envelopeFrom = parsed.Address
	}

	addr := fmt.Sprintf("%s:%s", m.host, m.port)
	if err := smtp.SendMail(addr, auth, envelopeFrom, []string{msg.To}, []byte(headers+msg.HTMLBody)); err != nil {
		m.log.Error("SMTP send failed", zap.String("addr", addr), zap.Error(err))
		return fmt.Errorf("failed to send mail via %s: %w", addr, err)
	}

	m.log.Info("Email sent", zap.String("to", msg.To), zap.String("addr", addr))
	return nil
}
