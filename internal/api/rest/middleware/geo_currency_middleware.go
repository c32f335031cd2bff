package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
)

// CurrencyCookie имя куки с валютой посетителя
const CurrencyCookie = "hdl_geo_currency"

// currencyCookieMaxAge время жизни куки - сутки
const currencyCookieMaxAge = 86400

// countryToCurrency таблица страна -> валюта. Страны вне таблицы
// получают базовую валюту GBP.
var countryToCurrency = map[string]string{
	"US": "USD", "PR": "USD", "GU": "USD", "VI": "USD", "AS": "USD", "MP": "USD",
	"DE": "EUR", "FR": "EUR", "IT": "EUR", "ES": "EUR", "NL": "EUR", "BE": "EUR",
	"AT": "EUR", "PT": "EUR", "IE": "EUR", "FI": "EUR", "GR": "EUR", "SK": "EUR",
	"SI": "EUR", "EE": "EUR", "LV": "EUR", "LT": "EUR", "LU": "EUR", "MT": "EUR",
	"CY": "EUR", "HR": "EUR",
	"CH": "CHF", "LI": "CHF",
	"CA": "CAD",
	"AU": "AUD",
}

// documentPaths страницы, на которых выставляется кука валюты
var documentPaths = map[string]struct{}{
	"/":                     {},
	"/index.html":           {},
	"/personal-report":      {},
	"/personal-report.html": {},
}

// GeoCurrency - Gin middleware, выставляющий куку валюты по стране
// посетителя. Страна берется из заголовка CDN (countryHeader).
// Уже выставленная кука не перезаписывается.
func GeoCurrency(countryHeader string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if _, ok := documentPaths[c.Request.URL.Path]; !ok {
			c.Next()
			return
		}

		if _, err := c.Cookie(CurrencyCookie); err == nil {
			c.Next()
			return
		}

		country := strings.ToUpper(c.GetHeader(countryHeader))
		currency, ok := countryToCurrency[country]
		if !ok {
			currency = "GBP"
		}

		c.SetSameSite(http.SameSiteLaxMode)
		c.SetCookie(CurrencyCookie, currency, currencyCookieMaxAge, "/", "", false, false)

		c.Next()
	}
}
