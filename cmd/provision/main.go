// Команда provision разово заводит каталог продуктов и цен в Stripe.
// Запуск: STRIPE_SK=sk_... go run ./cmd/provision
package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/stripe/stripe-go/v78"
	"github.com/stripe/stripe-go/v78/client"
)

// priceSpec спецификация цены продукта
type priceSpec struct {
	UnitAmount int64
	Currency   string
	Interval   string
	Nickname   string
}

// productSpec спецификация продукта каталога
type productSpec struct {
	Name        string
	Description string
	Prices      []priceSpec
}

// catalog каталог HealthDataLab. Все цены в GBP, конвертация в другие
// валюты делается сервисом на лету.
var catalog = []productSpec{
	{
		Name:        "HealthDataLab Launchpad",
		Description: "Monthly subscription. 3 report credits/mo, Mini Course, Basic AI.",
		Prices: []priceSpec{
			{UnitAmount: 1900, Currency: "gbp", Interval: "month"},
		},
	},
	{
		Name:        "HealthDataLab Minimum",
		Description: "Monthly subscription. 15 report credits/mo, Full AI Suite, CRM.",
		Prices: []priceSpec{
			{UnitAmount: 9900, Currency: "gbp", Interval: "month"},
		},
	},
	{
		Name:        "Pro Practitioner Course",
		Description: "12-week course, Practitioner Certificate, 1 year software access.",
		Prices: []priceSpec{
			{UnitAmount: 99700, Currency: "gbp", Nickname: "Standard One-time"},
			{UnitAmount: 69700, Currency: "gbp", Nickname: "Founding One-time"},
			{UnitAmount: 34700, Currency: "gbp", Interval: "month", Nickname: "Payment Plan"},
		},
	},
	{
		Name:        "HealthDataLab Signature",
		Description: "Course + Software + Small Group Mentorship + Business AI.",
		Prices: []priceSpec{
			{UnitAmount: 249700, Currency: "gbp", Nickname: "Standard One-time"},
			{UnitAmount: 174700, Currency: "gbp", Nickname: "Founding One-time"},
			{UnitAmount: 44700, Currency: "gbp", Interval: "month", Nickname: "Payment Plan"},
		},
	},
}

// createdPrice итог создания цены
type createdPrice struct {
	ID        string `json:"id"`
	Amount    int64  `json:"amount"`
	Recurring bool   `json:"recurring"`
	Nickname  string `json:"nickname,omitempty"`
}

// createdProduct итог создания продукта
type createdProduct struct {
	ProductID string         `json:"product_id"`
	Prices    []createdPrice `json:"prices"`
}

func main() {
	key := os.Getenv("STRIPE_SK")
	if key == "" {
		fmt.Fprintln(os.Stderr, "Please provide STRIPE_SK env var")
		os.Exit(1)
	}

	sc := &client.API{}
	sc.Init(key, nil)

	result := make(map[string]createdProduct, len(catalog))

	for _, p := range catalog {
		fmt.Printf("Creating Product: %s...\n", p.Name)

		prod, err := sc.Products.New(&stripe.ProductParams{
			Name:        stripe.String(p.Name),
			Description: stripe.String(p.Description),
		})
		if err != nil {
			fmt.Fprintf(os.Stderr, "failed to create product %q: %v\n", p.Name, err)
			os.Exit(1)
		}
		fmt.Printf("  -> Product ID: %s\n", prod.ID)

		created := createdProduct{ProductID: prod.ID}
		for _, spec := range p.Prices {
			params := &stripe.PriceParams{
				Product:    stripe.String(prod.ID),
				UnitAmount: stripe.Int64(spec.UnitAmount),
				Currency:   stripe.String(spec.Currency),
			}
			if spec.Interval != "" {
				params.Recurring = &stripe.PriceRecurringParams{
					Interval: stripe.String(spec.Interval),
				}
			}
			if spec.Nickname != "" {
				params.Nickname = stripe.String(spec.Nickname)
			}

			price, err := sc.Prices.New(params)
			if err != nil {
				fmt.Fprintf(os.Stderr, "failed to create price for %q: %v\n", p.Name, err)
				os.Exit(1)
			}
			fmt.Printf("  -> Price ID: %s (%d)\n", price.ID, spec.UnitAmount)

			created.Prices = append(created.Prices, createdPrice{
				ID:        price.ID,
				Amount:    spec.UnitAmount,
				Recurring: spec.Interval != "",
				Nickname:  spec.Nickname,
			})
		}
		result[p.Name] = created
	}

	out, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to marshal summary: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("\nDone. Catalog summary:\n%s\n", out)
}
