package rest

import (
	"github.com/gin-gonic/gin"
	"github.com/healthdatalab/checkout-service/internal/api/rest/handlers"
	"github.com/healthdatalab/checkout-service/internal/api/rest/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

// Handlers контейнер обработчиков для маршрутизатора
type Handlers struct {
	Checkout *handlers.CheckoutHandler
	Webhook  *handlers.WebhookHandler
	Seats    *handlers.SeatHandler
	Contact  *handlers.ContactHandler
}

// SetupRouter настраивает маршрутизатор Gin с маршрутами и middleware
func SetupRouter(h Handlers, registry *prometheus.Registry, countryHeader string, log *zap.Logger) *gin.Engine {
	r := gin.New()

	r.Use(middleware.RequestLogger(log))
	r.Use(gin.Recovery())
	r.Use(middleware.GeoCurrency(countryHeader))

	// Endpoint для проверки работоспособности сервиса
	r.GET("/health", handlers.HealthCheck)

	// Prometheus метрики
	r.GET("/metrics", gin.WrapH(promhttp.HandlerFor(registry, promhttp.HandlerOpts{})))

	v1 := r.Group("/api/v1")
	{
		v1.POST("/checkout/sessions", h.Checkout.CreateSession)
		v1.GET("/seats", h.Seats.GetSeats)
		v1.POST("/contact", h.Contact.SendMessage)
	}

	// Вебхуки на корневом уровне роутера
	webhooks := r.Group("/webhooks")
	{
		webhooks.POST("/stripe", h.Webhook.HandleStripeWebhook)
	}

	return r
}
