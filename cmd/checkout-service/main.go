package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/healthdatalab/checkout-service/internal/api/rest"
	"github.com/healthdatalab/checkout-service/internal/api/rest/handlers"
	"github.com/healthdatalab/checkout-service/internal/config"
	"github.com/healthdatalab/checkout-service/internal/kafka"
	"github.com/healthdatalab/checkout-service/internal/mail"
	"github.com/healthdatalab/checkout-service/internal/metrics"
	"github.com/healthdatalab/checkout-service/internal/provider/stripeapi"
	"github.com/healthdatalab/checkout-service/internal/rates"
	"github.com/healthdatalab/checkout-service/internal/service"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"
)

func main() {
	// Загружаем конфигурацию
	cfg, err := config.LoadConfig(".env")
	if err != nil {
		panic(err)
	}

	log := initLogger(cfg.App.Env)
	defer log.Sync()

	log.Info("Checkout service starting up...")

	// Проверка наличия ключей Stripe
	if cfg.Stripe.APIKey == "" {
		log.Warn("Stripe API key is not set, provider calls will fail")
	}
	if cfg.Stripe.WebhookSecret == "" {
		log.Warn("Stripe webhook secret is not set, webhook signatures will not be verified")
	}

	if cfg.App.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	// Инициализируем Kafka producer. Публикация событий best-effort:
	// без брокеров сервис работает с заглушкой.
	var events kafka.Publisher
	events, err = kafka.NewPublisher(cfg.Kafka.Brokers, log)
	if err != nil {
		log.Warn("Kafka producer unavailable, continuing without event publishing", zap.Error(err))
		events = kafka.NoopPublisher{}
	}
	defer func() {
		if err := events.Close(); err != nil {
			log.Error("Error closing Kafka producer", zap.Error(err))
		}
	}()

	// Инициализируем клиент Stripe
	stripeClient := stripeapi.NewClient(cfg.Stripe.APIKey, log)

	// Кеш курсов валют
	rateCache := rates.NewCache(rates.Config{
		BaseURL:    cfg.Rates.APIURL,
		Currencies: cfg.Rates.Currencies,
	}, log)

	// SMTP-отправитель
	mailer := mail.NewSMTPMailer(cfg.SMTP.Host, cfg.SMTP.Port, cfg.SMTP.Username, cfg.SMTP.Password, log)

	// Инициализируем service layer
	checkoutService := service.NewCheckoutService(stripeClient, rateCache, events, log)
	installmentService := service.NewInstallmentService(stripeClient, events, log)
	seatService := service.NewSeatService(stripeClient, cfg.Seats.Total, cfg.Seats.PriceIDs, log)
	contactService := service.NewContactService(mailer, cfg.Contact.From, cfg.Contact.To, events, log)
	confirmationService := service.NewConfirmationService(mailer, cfg.Contact.From, log)

	// Метрики
	registry := prometheus.NewRegistry()
	recorder := metrics.NewRecorder(registry)

	// HTTP-обработчики и маршруты
	router := rest.SetupRouter(rest.Handlers{
		Checkout: handlers.NewCheckoutHandler(checkoutService, recorder, log),
		Webhook:  handlers.NewWebhookHandler(installmentService, confirmationService, cfg.Stripe.WebhookSecret, recorder, log),
		Seats:    handlers.NewSeatHandler(seatService, recorder, log),
		Contact:  handlers.NewContactHandler(contactService, recorder, log),
	}, registry, cfg.Geo.CountryHeader, log)

	httpServer := &http.Server{
		Addr:         ":" + cfg.App.Port,
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
	}

	// Запускаем HTTP сервер в горутине
	go func() {
		log.Info("Starting HTTP server", zap.String("port", cfg.App.Port))
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("Failed to start HTTP server", zap.Error(err))
		}
	}()

	// --- Graceful Shutdown ---
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("Shutdown signal received")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		log.Error("HTTP server shutdown error", zap.Error(err))
	} else {
		log.Info("HTTP server gracefully stopped")
	}
}

// initLogger инициализирует zap-логгер в зависимости от окружения
func initLogger(env string) *zap.Logger {
	var log *zap.Logger
	var err error
	if env == "production" {
		log, err = zap.NewProduction()
	} else {
		log, err = zap.NewDevelopment()
	}
	if err != nil {
		panic(err)
	}
	return log
}
