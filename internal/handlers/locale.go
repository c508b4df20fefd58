package handlers

import (
	"net/http"
	"strings"

	"golang.org/x/text/currency"
	"golang.org/x/text/language"

	"github.com/socialstack-core/storefront-api/internal/platform/requestctx"
)

// LocaleDefaults carries the server-side fallbacks applied when a request does not
// negotiate a locale of its own.
type LocaleDefaults struct {
	Locale       string
	CurrencyCode string
	Jurisdiction string
}

// LocaleMiddleware negotiates the request locale from the Accept-Language header and
// stores the resolved locale, currency, and tax jurisdiction on the request context.
// The currency follows the negotiated region when one is present; otherwise the
// configured default applies.
func LocaleMiddleware(defaults LocaleDefaults) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			info := requestctx.LocaleInfo{
				Code:                   defaults.Locale,
				CurrencyCode:           strings.ToUpper(defaults.CurrencyCode),
				DefaultTaxJurisdiction: strings.ToUpper(defaults.Jurisdiction),
			}

			if header := strings.TrimSpace(r.Header.Get("Accept-Language")); header != "" {
				if tags, _, err := language.ParseAcceptLanguage(header); err == nil && len(tags) > 0 {
					tag := tags[0]
					info.Code = tag.String()
					if region, confidence := tag.Region(); confidence >= language.High {
						if unit, ok := currency.FromRegion(region); ok {
							info.CurrencyCode = unit.String()
						}
					}
				}
			}

			next.ServeHTTP(w, r.WithContext(requestctx.WithLocale(r.Context(), info)))
		})
	}
}
