package i18n

import (
	"context"
	"embed"
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"sync"
)

//go:embed *.json
var fs embed.FS

// translations stores flattened keys: "es" -> "errors.not_found.title" -> "No encontrado"
var (
	translations = make(map[string]map[string]string)
	mutex        sync.RWMutex
	defaultLang  = "es"
)

// Load reads every embedded locale file and returns the loaded language codes
func Load() ([]string, error) {
	mutex.Lock()
	defer mutex.Unlock()

	entries, err := fs.ReadDir(".")
	if err != nil {
		return nil, fmt.Errorf("failed to read embedded locales: %w", err)
	}

	var loaded []string
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".json") {
			continue
		}
		lang := strings.TrimSuffix(entry.Name(), ".json")
		content, err := fs.ReadFile(entry.Name())
		if err != nil {
			return nil, fmt.Errorf("failed to read locale file %s: %w", entry.Name(), err)
		}

		var nested map[string]interface{}
		if err := json.Unmarshal(content, &nested); err != nil {
			return nil, fmt.Errorf("failed to unmarshal locale %s: %w", entry.Name(), err)
		}

		flat := make(map[string]string)
		flatten("", nested, flat)
		translations[lang] = flat
		loaded = append(loaded, lang)
	}
	sort.Strings(loaded)
	return loaded, nil
}

// SetDefault changes the fallback language. Unknown languages are ignored.
func SetDefault(lang string) {
	mutex.Lock()
	defer mutex.Unlock()
	if _, ok := translations[lang]; ok {
		defaultLang = lang
	}
}

// Default returns the fallback language
func Default() string {
	mutex.RLock()
	defer mutex.RUnlock()
	return defaultLang
}

// Supported reports whether a locale file was loaded for lang
func Supported(lang string) bool {
	mutex.RLock()
	defer mutex.RUnlock()
	_, ok := translations[lang]
	return ok
}

// flatten turns nested objects into dot-notation keys
func flatten(prefix string, nested map[string]interface{}, result map[string]string) {
	for k, v := range nested {
		key := k
		if prefix != "" {
			key = prefix + "." + k
		}

		switch child := v.(type) {
		case map[string]interface{}:
			flatten(key, child, result)
		case string:
			result[key] = child
		default:
			result[key] = fmt.Sprintf("%v", child)
		}
	}
}

// T translates key into the language carried by ctx
func T(ctx context.Context, key string, args ...map[string]interface{}) string {
	return Translate(GetLocale(ctx), key, args...)
}

// Translate looks key up in lang, then in the default language, and finally
// returns the key itself. {name} placeholders are filled from args.
func Translate(lang, key string, args ...map[string]interface{}) string {
	mutex.RLock()
	defer mutex.RUnlock()

	if val, ok := translations[lang][key]; ok {
		return format(val, args...)
	}
	if lang != defaultLang {
		if val, ok := translations[defaultLang][key]; ok {
			return format(val, args...)
		}
	}
	return key
}

// Has reports whether key exists in lang or in the default language
func Has(lang, key string) bool {
	mutex.RLock()
	defer mutex.RUnlock()
	if _, ok := translations[lang][key]; ok {
		return true
	}
	_, ok := translations[defaultLang][key]
	return ok
}

func format(text string, args ...map[string]interface{}) string {
	if len(args) == 0 {
		return text
	}
	for k, v := range args[0] {
		text = strings.ReplaceAll(text, "{"+k+"}", fmt.Sprintf("%v", v))
	}
	return text
}

type contextKey string

const LocaleContextKey contextKey = "locale"

// WithLocale stores lang in ctx
func WithLocale(ctx context.Context, lang string) context.Context {
	return context.WithValue(ctx, LocaleContextKey, lang)
}

// GetLocale returns the language set by the locale middleware, or the default
func GetLocale(ctx context.Context) string {
	if str, ok := ctx.Value(LocaleContextKey).(string); ok && str != "" {
		return str
	}
	return Default()
}
