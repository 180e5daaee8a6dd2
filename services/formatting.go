package services

import (
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// CapitalizeName collapses whitespace and capitalizes every word, so
// "  valle   del cauca" becomes "Valle Del Cauca".
func CapitalizeName(name string) string {
	words := strings.Fields(name)
	if len(words) == 0 {
		return ""
	}
	// a Caser keeps state between calls and must not be shared
	return cases.Title(language.Spanish).String(strings.Join(words, " "))
}

// capitalizeFields returns a hook that capitalizes the named string fields
func capitalizeFields(fields ...string) func(map[string]interface{}) map[string]interface{} {
	return func(input map[string]interface{}) map[string]interface{} {
		for _, name := range fields {
			for k, v := range input {
				if !strings.EqualFold(k, name) {
					continue
				}
				if s, ok := v.(string); ok {
					input[k] = CapitalizeName(s)
				}
			}
		}
		return input
	}
}
