package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/healthdatalab/checkout-service/internal/domain"
	"github.com/healthdatalab/checkout-service/internal/metrics"
	"github.com/healthdatalab/checkout-service/internal/service"
	"go.uber.org/zap"
)

// ContactHandler обработчик формы обратной связи
type ContactHandler struct {
	contact *service.ContactService
	metrics metrics.Recorder
	log     *zap.Logger
}

// NewContactHandler создает новый обработчик формы обратной связи
func NewContactHandler(contact *service.ContactService, m metrics.Recorder, log *zap.Logger) *ContactHandler {
	return &ContactHandler{
		contact: contact,
		metrics: m,
		log:     log,
	}
}

// SendMessage обрабатывает POST /api/v1/contact
func (h *ContactHandler) SendMessage(c *gin.Context) {
	// Honeypot-сообщение не должно отсекаться binding-тегами:
	// боту отвечаем успехом независимо от полноты остальных полей
	var msg domain.ContactMessage
	if err := c.ShouldBindJSON(&msg); err != nil && msg.BotField == "" {
		h.log.Warn("Invalid contact payload", zap.Error(err))
		h.metrics.IncContactMessage("invalid")
		c.JSON(http.StatusBadRequest, gin.H{"error": "Missing required fields"})
		return
	}

	if err := h.contact.Relay(c.Request.Context(), msg); err != nil {
		if errors.Is(err, domain.ErrInvalidRequest) {
			h.metrics.IncContactMessage("invalid")
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		h.log.Error("Failed to send contact message", zap.Error(err))
		h.metrics.IncContactMessage("failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to send email"})
		return
	}

	h.metrics.IncContactMessage("sent")
	c.JSON(http.StatusOK, gin.H{"success": true})
}
