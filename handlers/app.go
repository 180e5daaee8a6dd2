package handlers

import (
	"context"
	"net/http"
	"time"

	"agrocontrol_app_go/services/i18n"

	"github.com/labstack/echo/v4"
)

// View is an entity view that mounts its own routes
type View interface {
	Register(g *echo.Group)
}

// Tab is one entry of the main window
type Tab struct {
	Plural string
	View   View
}

// HealthChecker is the part of the gateway the health endpoint needs
type HealthChecker interface {
	Ping(ctx context.Context) error
	Driver() string
	Procedures() []string
}

// RegisterTabs mounts every view under /api/<plural> and lists the tabs, in
// order, at /api/tabs.
func RegisterTabs(api *echo.Group, tabs ...Tab) {
	for _, tab := range tabs {
		tab.View.Register(api.Group("/" + tab.Plural))
	}
	api.GET("/tabs", TabsHandler(tabs...))
}

// TabsHandler returns the tab names and translated titles
func TabsHandler(tabs ...Tab) echo.HandlerFunc {
	return func(c echo.Context) error {
		ctx := c.Request().Context()
		out := make([]map[string]string, 0, len(tabs))
		for _, tab := range tabs {
			out = append(out, map[string]string{
				"name":  tab.Plural,
				"title": i18n.T(ctx, "tabs."+tab.Plural),
			})
		}
		return c.JSON(http.StatusOK, map[string]interface{}{
			"title": i18n.T(ctx, "app.title"),
			"tabs":  out,
		})
	}
}

// HealthHandler pings the database
func HealthHandler(gw HealthChecker) echo.HandlerFunc {
	return func(c echo.Context) error {
		ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
		defer cancel()

		if err := gw.Ping(ctx); err != nil {
			return c.JSON(http.StatusServiceUnavailable, map[string]interface{}{
				"status": "unavailable",
				"driver": gw.Driver(),
			})
		}
		return c.JSON(http.StatusOK, map[string]interface{}{
			"status":     "ok",
			"driver":     gw.Driver(),
			"procedures": gw.Procedures(),
		})
	}
}
