package handlers

import (
	"encoding/json"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/healthdatalab/checkout-service/internal/metrics"
	"github.com/healthdatalab/checkout-service/internal/service"
	"github.com/stripe/stripe-go/v78"
	"github.com/stripe/stripe-go/v78/webhook"
	"go.uber.org/zap"
)

// WebhookHandler обработчик вебхуков Stripe. Stripe доставляет события
// как минимум один раз, поэтому обработка каждого типа идемпотентна.
type WebhookHandler struct {
	installments  *service.InstallmentService
	confirmations *service.ConfirmationService
	webhookSecret string
	metrics       metrics.Recorder
	log           *zap.Logger
}

// NewWebhookHandler создает новый обработчик вебхуков
func NewWebhookHandler(installments *service.InstallmentService, confirmations *service.ConfirmationService, webhookSecret string, m metrics.Recorder, log *zap.Logger) *WebhookHandler {
	return &WebhookHandler{
		installments:  installments,
		confirmations: confirmations,
		webhookSecret: webhookSecret,
		metrics:       m,
		log:           log,
	}
}

// HandleStripeWebhook обрабатывает POST /webhooks/stripe
func (h *WebhookHandler) HandleStripeWebhook(c *gin.Context) {
	body, err := io.ReadAll(c.Request.Body)
	if err != nil {
		h.log.Error("Failed to read webhook body", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Failed to read webhook body"})
		return
	}

	event, err := h.parseEvent(body, c.GetHeader("Stripe-Signature"))
	if err != nil {
		h.log.Error("Webhook signature verification failed", zap.Error(err))
		h.metrics.IncWebhookEvent("unknown", "signature_failed")
		c.JSON(http.StatusBadRequest, gin.H{"error": "Webhook signature verification failed"})
		return
	}

	h.log.Info("Received Stripe webhook event",
		zap.String("event_id", event.ID),
		zap.String("type", string(event.Type)))

	switch event.Type {
	case "invoice.paid":
		h.handleInvoicePaid(c, event)
	case "checkout.session.completed":
		h.handleSessionCompleted(c, event)
	default:
		h.metrics.IncWebhookEvent(string(event.Type), "ignored")
		c.JSON(http.StatusOK, gin.H{"received": true})
	}
}

// parseEvent проверяет подпись (если секрет сконфигурирован) и разбирает событие
func (h *WebhookHandler) parseEvent(body []byte, signature string) (stripe.Event, error) {
	if h.webhookSecret != "" {
		return webhook.ConstructEvent(body, signature, h.webhookSecret)
	}

	var event stripe.Event
	if err := json.Unmarshal(body, &event); err != nil {
		return stripe.Event{}, err
	}
	return event, nil
}

// handleInvoicePaid запускает проверку лимита рассрочки по оплаченному инвойсу
func (h *WebhookHandler) handleInvoicePaid(c *gin.Context, event stripe.Event) {
	var invoice stripe.Invoice
	if err := json.Unmarshal(event.Data.Raw, &invoice); err != nil {
		h.log.Error("Failed to parse invoice from event", zap.Error(err))
		h.metrics.IncWebhookEvent(string(event.Type), "parse_failed")
		c.JSON(http.StatusBadRequest, gin.H{"error": "Failed to parse invoice"})
		return
	}

	subscriptionID := ""
	if invoice.Subscription != nil {
		subscriptionID = invoice.Subscription.ID
	}

	outcome, err := h.installments.HandlePaidInvoice(c.Request.Context(), subscriptionID)
	if err != nil {
		h.log.Error("Failed to process installment check",
			zap.String("subscription_id", subscriptionID),
			zap.Error(err))
		h.metrics.IncWebhookEvent(string(event.Type), "failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to process installment check"})
		return
	}

	h.metrics.IncWebhookEvent(string(event.Type), string(outcome))
	if outcome == service.OutcomeCancelled {
		h.metrics.IncSubscriptionCancelled()
	}

	c.JSON(http.StatusOK, gin.H{"received": true, "outcome": string(outcome)})
}

// handleSessionCompleted отправляет покупателю письмо-подтверждение.
// Отправка best-effort: финансовая операция уже прошла, поэтому неудача
// логируется, но вебхук отвечает 200.
func (h *WebhookHandler) handleSessionCompleted(c *gin.Context, event stripe.Event) {
	var session stripe.CheckoutSession
	if err := json.Unmarshal(event.Data.Raw, &session); err != nil {
		h.log.Error("Failed to parse checkout session from event", zap.Error(err))
		h.metrics.IncWebhookEvent(string(event.Type), "parse_failed")
		c.JSON(http.StatusBadRequest, gin.H{"error": "Failed to parse checkout session"})
		return
	}

	email, name := "", ""
	if session.CustomerDetails != nil {
		email = session.CustomerDetails.Email
		name = session.CustomerDetails.Name
	}

	if err := h.confirmations.SendPurchaseConfirmation(email, name, session.AmountTotal, string(session.Currency)); err != nil {
		h.log.Warn("Failed to send purchase confirmation",
			zap.String("session_id", session.ID),
			zap.Error(err))
		h.metrics.IncWebhookEvent(string(event.Type), "mail_failed")
	} else {
		h.metrics.IncWebhookEvent(string(event.Type), "confirmed")
	}

	c.JSON(http.StatusOK, gin.H{"received": true})
}
