package config

import (
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config представляет структуру конфигурации для приложения.
// Вся конфигурация берется из переменных окружения, файлового
// состояния у сервиса нет.
type Config struct {
	App struct {
		Port string
		Env  string
	}
	Stripe struct {
		APIKey        string
		WebhookSecret string
	}
	Rates struct {
		APIURL     string
		Currencies []string
	}
	SMTP struct {
		Host     string
		Port     string
		Username string
		Password string
	}
	Contact struct {
		From string
		To   string
	}
	Seats struct {
		Total    int
		PriceIDs []string
	}
	Kafka struct {
		Brokers []string
	}
	Geo struct {
		CountryHeader string
	}
}

// LoadConfig загружает конфигурацию из .env (вне production) и переменных окружения.
func LoadConfig(path string) (*Config, error) {
	if os.Getenv("APP_ENV") != "production" {
		// .env опционален: локально удобен, в окружении деплоя его нет
		_ = godotenv.Load(path)
	}

	v := viper.New()
	v.AutomaticEnv()

	v.SetDefault("PORT", "8080")
	v.SetDefault("APP_ENV", "development")
	v.SetDefault("RATES_API_URL", "https://api.frankfurter.app")
	v.SetDefault("RATES_CURRENCIES", "USD,EUR,CHF,CAD,AUD")
	v.SetDefault("SMTP_HOST", "smtp-relay.brevo.com")
	v.SetDefault("SMTP_PORT", "587")
	v.SetDefault("CONTACT_FROM", "office@healthdatalab.com")
	v.SetDefault("CONTACT_TO", "office@healthdatalab.com")
	v.SetDefault("SEAT_TOTAL", 25)
	v.SetDefault("GEO_COUNTRY_HEADER", "X-Country")

	var cfg Config
	cfg.App.Port = v.GetString("PORT")
	cfg.App.Env = v.GetString("APP_ENV")
	cfg.Stripe.APIKey = v.GetString("STRIPE_SK")
	cfg.Stripe.WebhookSecret = v.GetString("STRIPE_WEBHOOK_SECRET")
	cfg.Rates.APIURL = v.GetString("RATES_API_URL")
	cfg.Rates.Currencies = splitList(v.GetString("RATES_CURRENCIES"))
	cfg.SMTP.Host = v.GetString("SMTP_HOST")
	cfg.SMTP.Port = v.GetString("SMTP_PORT")
	cfg.SMTP.Username = v.GetString("BREVO_SMTP_LOGIN")
	cfg.SMTP.Password = v.GetString("BREVO_SMTP_KEY")
	cfg.Contact.From = v.GetString("CONTACT_FROM")
	cfg.Contact.To = v.GetString("CONTACT_TO")
	cfg.Seats.Total = v.GetInt("SEAT_TOTAL")
	cfg.Seats.PriceIDs = splitList(v.GetString("SEAT_PRICE_IDS"))
	cfg.Kafka.Brokers = splitList(v.GetString("KAFKA_BROKERS"))
	cfg.Geo.CountryHeader = v.GetString("GEO_COUNTRY_HEADER")

	return &cfg, nil
}

// splitList разбирает список значений, разделенных запятыми
func splitList(s string) []string {
	if s == "" {
		return nil
	}
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
