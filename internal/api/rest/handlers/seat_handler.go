package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/healthdatalab/checkout-service/internal/metrics"
	"github.com/healthdatalab/checkout-service/internal/service"
	"go.uber.org/zap"
)

// seatCacheControl окно свежести для клиентов и CDN
const seatCacheControl = "public, max-age=300"

// SeatHandler обработчик запросов остатка мест
type SeatHandler struct {
	seats   *service.SeatService
	metrics metrics.Recorder
	log     *zap.Logger
}

// NewSeatHandler создает новый обработчик остатка мест
func NewSeatHandler(seats *service.SeatService, m metrics.Recorder, log *zap.Logger) *SeatHandler {
	return &SeatHandler{
		seats:   seats,
		metrics: m,
		log:     log,
	}
}

// GetSeats обрабатывает GET /api/v1/seats
func (h *SeatHandler) GetSeats(c *gin.Context) {
	h.metrics.IncSeatQuery()

	count, err := h.seats.CountSold(c.Request.Context())
	if err != nil {
		h.log.Error("Failed to count seats", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": providerMessage(err)})
		return
	}

	c.Header("Cache-Control", seatCacheControl)
	c.JSON(http.StatusOK, count)
}
