package middleware

import (
	"net/http"
	"strings"
	"time"

	"agrocontrol_app_go/config"
	"agrocontrol_app_go/services/i18n"

	"github.com/labstack/echo/v4"
	"golang.org/x/text/language"
)

const ContextKeyLocale = "locale"

var supportedLocales = []language.Tag{language.Spanish, language.English}

var localeMatcher = language.NewMatcher(supportedLocales)

// Locale middleware handles language detection and persistence.
// Priority:
// 1. Query param "lang" (sets cookie)
// 2. Cookie "lang"
// 3. Accept-Language header
// 4. cfg.DefaultLocale
func Locale(cfg *config.Config) echo.MiddlewareFunc {
	fallback := normalizeLocale(cfg.DefaultLocale, "es")

	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			var lang string
			if q := c.QueryParam("lang"); q != "" {
				lang = normalizeLocale(q, fallback)
				writeLanguageCookie(c, lang, cfg.IsProduction())
			} else if cookie, err := c.Cookie("lang"); err == nil {
				lang = normalizeLocale(cookie.Value, fallback)
			} else if accept := c.Request().Header.Get("Accept-Language"); accept != "" {
				lang = matchAcceptLanguage(accept, fallback)
			} else {
				lang = fallback
			}

			c.Set(ContextKeyLocale, lang)
			c.SetRequest(c.Request().WithContext(i18n.WithLocale(c.Request().Context(), lang)))

			return next(c)
		}
	}
}

// SetLanguageCookie sets the language cookie
func SetLanguageCookie(c echo.Context, lang string) {
	cfg, ok := c.Get("config").(*config.Config)
	writeLanguageCookie(c, lang, ok && cfg.IsProduction())
}

// GetLocale returns the current locale from context
func GetLocale(c echo.Context) string {
	if lang, ok := c.Get(ContextKeyLocale).(string); ok {
		return lang
	}
	return i18n.Default()
}

func writeLanguageCookie(c echo.Context, lang string, secure bool) {
	c.SetCookie(&http.Cookie{
		Name:     "lang",
		Value:    lang,
		Expires:  time.Now().Add(24 * 365 * time.Hour), // 1 year
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
		Secure:   secure,
	})
}

// normalizeLocale reduces a tag like "es-CO" to a supported base language
func normalizeLocale(lang, fallback string) string {
	tag, err := language.Parse(strings.TrimSpace(lang))
	if err != nil {
		return fallback
	}
	base, _ := tag.Base()
	for _, supported := range supportedLocales {
		if b, _ := supported.Base(); b == base {
			return base.String()
		}
	}
	return fallback
}

func matchAcceptLanguage(accept, fallback string) string {
	tags, _, err := language.ParseAcceptLanguage(accept)
	if err != nil || len(tags) == 0 {
		return fallback
	}
	_, idx, conf := localeMatcher.Match(tags...)
	if conf == language.No {
		return fallback
	}
	base, _ := supportedLocales[idx].Base()
	return base.String()
}
