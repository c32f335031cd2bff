package handlers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/healthdatalab/checkout-service/internal/domain"
	"github.com/healthdatalab/checkout-service/internal/metrics"
	"github.com/healthdatalab/checkout-service/internal/service"
	"go.uber.org/zap"
)

// CheckoutHandler обработчик создания Checkout-сессий
type CheckoutHandler struct {
	checkout *service.CheckoutService
	metrics  metrics.Recorder
	log      *zap.Logger
}

// NewCheckoutHandler создает новый обработчик Checkout-сессий
func NewCheckoutHandler(checkout *service.CheckoutService, m metrics.Recorder, log *zap.Logger) *CheckoutHandler {
	return &CheckoutHandler{
		checkout: checkout,
		metrics:  m,
		log:      log,
	}
}

// CreateSession обрабатывает POST /api/v1/checkout/sessions
func (h *CheckoutHandler) CreateSession(c *gin.Context) {
	var req domain.CheckoutRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.log.Warn("Invalid checkout request", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}

	sessionID, err := h.checkout.CreateSession(c.Request.Context(), req)
	if err != nil {
		if errors.Is(err, domain.ErrInvalidRequest) {
			h.log.Warn("Checkout request rejected", zap.Error(err))
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		h.log.Error("Failed to create checkout session", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": providerMessage(err)})
		return
	}

	currency := strings.ToUpper(req.Currency)
	if currency == "" {
		currency = domain.BaseCurrency
	}
	mode := string(req.Mode)
	if mode == "" {
		mode = string(domain.CheckoutModePayment)
	}
	h.metrics.IncSessionCreated(currency, mode)

	c.JSON(http.StatusOK, gin.H{"sessionId": sessionID})
}

// providerMessage возвращает сообщение провайдера для ответа 500,
// либо общее сообщение, если ошибка не от провайдера
func providerMessage(err error) string {
	var providerErr *domain.ProviderError
	if errors.As(err, &providerErr) {
		return providerErr.Message
	}
	if errors.Is(err, domain.ErrRateUnavailable) {
		return "Exchange rates are temporarily unavailable"
	}
	return "Internal server error"
}
