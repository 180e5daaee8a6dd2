package config

import "strings"

const (
	ThemeLight = "light"
	ThemeDark  = "dark"
)

// Theme is the display palette handed to the views at construction time.
// It is a plain value; switching themes means building a new one.
type Theme struct {
	Name   string            `json:"name"`
	Colors map[string]string `json:"colors"`
}

var palettes = map[string]map[string]string{
	ThemeLight: {
		"bg_primary":     "#f0f0f0",
		"bg_secondary":   "white",
		"bg_header":      "#2c3e50",
		"bg_subheader":   "#34495e",
		"bg_status":      "#34495e",
		"text_primary":   "black",
		"text_secondary": "white",
		"accent":         "#2ecc71",
		"button_save":    "#4CAF50",
		"button_update":  "#2196F3",
		"button_delete":  "#f44336",
		"button_search":  "#FF9800",
		"button_clear":   "#9E9E9E",
	},
	ThemeDark: {
		"bg_primary":     "#2b2b2b",
		"bg_secondary":   "#1e1e1e",
		"bg_header":      "#1a1a1a",
		"bg_subheader":   "#2d2d2d",
		"bg_status":      "#2d2d2d",
		"text_primary":   "white",
		"text_secondary": "white",
		"accent":         "#27ae60",
		"button_save":    "#388E3C",
		"button_update":  "#1976D2",
		"button_delete":  "#D32F2F",
		"button_search":  "#F57C00",
		"button_clear":   "#616161",
	},
}

// ThemeByName returns the named theme, defaulting to light for unknown names
func ThemeByName(name string) Theme {
	name = strings.ToLower(strings.TrimSpace(name))
	colors, ok := palettes[name]
	if !ok {
		name = ThemeLight
		colors = palettes[ThemeLight]
	}

	copied := make(map[string]string, len(colors))
	for k, v := range colors {
		copied[k] = v
	}
	return Theme{Name: name, Colors: copied}
}
