package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Recorder интерфейс для метрик сервиса
type Recorder interface {
	IncSessionCreated(currency, mode string)
	IncWebhookEvent(eventType, outcome string)
	IncSubscriptionCancelled()
	IncContactMessage(outcome string)
	IncSeatQuery()
}

type recorder struct {
	sessionsCreated        *prometheus.CounterVec
	webhookEvents          *prometheus.CounterVec
	subscriptionsCancelled prometheus.Counter
	contactMessages        *prometheus.CounterVec
	seatQueries            prometheus.Counter
}

// NewRecorder создает метрики сервиса в указанном реестре
func NewRecorder(registry *prometheus.Registry) Recorder {
	return &recorder{
		sessionsCreated: promauto.With(registry).NewCounterVec(
			prometheus.CounterOpts{
				Name: "checkout_sessions_created_total",
				Help: "The total number of created checkout sessions",
			},
			[]string{"currency", "mode"},
		),
		webhookEvents: promauto.With(registry).NewCounterVec(
			prometheus.CounterOpts{
				Name: "webhook_events_total",
				Help: "The total number of processed webhook events by outcome",
			},
			[]string{"type", "outcome"},
		),
		subscriptionsCancelled: promauto.With(registry).NewCounter(
			prometheus.CounterOpts{
				Name: "installment_subscriptions_cancelled_total",
				Help: "The total number of installment subscriptions auto-cancelled",
			},
		),
		contactMessages: promauto.With(registry).NewCounterVec(
			prometheus.CounterOpts{
				Name: "contact_messages_total",
				Help: "The total number of contact form submissions by outcome",
			},
			[]string{"outcome"},
		),
		seatQueries: promauto.With(registry).NewCounter(
			prometheus.CounterOpts{
				Name: "seat_queries_total",
				Help: "The total number of seat availability queries",
			},
		),
	}
}

// IncSessionCreated увеличивает счетчик созданных сессий
func (r *recorder) IncSessionCreated(currency, mode string) {
	r.sessionsCreated.WithLabelValues(currency, mode).Inc()
}

// IncWebhookEvent увеличивает счетчик обработанных вебхуков
func (r *recorder) IncWebhookEvent(eventType, outcome string) {
	r.webhookEvents.WithLabelValues(eventType, outcome).Inc()
}

// IncSubscriptionCancelled увеличивает счетчик отмененных рассрочек
func (r *recorder) IncSubscriptionCancelled() {
	r.subscriptionsCancelled.Inc()
}

// IncContactMessage увеличивает счетчик сообщений формы обратной связи
func (r *recorder) IncContactMessage(outcome string) {
	r.contactMessages.WithLabelValues(outcome).Inc()
}

// IncSeatQuery увеличивает счетчик запросов остатка мест
func (r *recorder) IncSeatQuery() {
	r.seatQueries.Inc()
}
