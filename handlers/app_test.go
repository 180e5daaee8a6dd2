package handlers

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"testing"

	"agrocontrol_app_go/services"
	"agrocontrol_app_go/services/i18n"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTabsHandler(t *testing.T) {
	app := setupTestApp(t)

	rec := app.do(http.MethodGet, "/api/tabs", nil, "")
	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Title string              `json:"title"`
		Tabs  []map[string]string `json:"tabs"`
	}
	decode(t, rec, &resp)
	assert.Equal(t, "AGROCONTROL - Sistema de Gestión Agrícola", resp.Title)
	require.Len(t, resp.Tabs, 5)

	names := make([]string, 0, len(resp.Tabs))
	for _, tab := range resp.Tabs {
		names = append(names, tab["name"])
	}
	assert.Equal(t, []string{"fincas", "cultivos", "parcelas", "clientes", "hoteles"}, names)
	assert.Equal(t, "Hoteles", resp.Tabs[4]["title"])
}

type stubHealth struct {
	err error
}

func (s stubHealth) Ping(context.Context) error { return s.err }
func (s stubHealth) Driver() string              { return "mysql" }
func (s stubHealth) Procedures() []string        { return []string{"sp_getallfincas"} }

func TestHealthHandler(t *testing.T) {
	t.Run("Gateway", func(t *testing.T) {
		app := setupTestApp(t)
		rec := app.do(http.MethodGet, "/health", nil, "")
		require.Equal(t, http.StatusOK, rec.Code)

		var resp map[string]interface{}
		decode(t, rec, &resp)
		assert.Equal(t, "ok", resp["status"])
		assert.Equal(t, "sqlite", resp["driver"])
	})

	t.Run("Unavailable", func(t *testing.T) {
		_, c, rec := setupEcho(http.MethodGet, "/health", nil)
		require.NoError(t, HealthHandler(stubHealth{err: errors.New("down")})(c))
		assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	})

	t.Run("Procedures listed", func(t *testing.T) {
		_, c, rec := setupEcho(http.MethodGet, "/health", nil)
		require.NoError(t, HealthHandler(stubHealth{})(c))
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Contains(t, rec.Body.String(), "sp_getallfincas")
	})
}

func TestRenderError(t *testing.T) {
	tests := []struct {
		name      string
		err       error
		lang      string
		wantCode  int
		wantTitle string
		wantError string
	}{
		{
			name:      "Operation",
			err:       &services.OperationError{Entity: "finca", Action: services.ActionList, Err: errors.New("boom")},
			wantCode:  http.StatusInternalServerError,
			wantTitle: "Error de base de datos",
			wantError: "Error listando finca",
		},
		{
			name:      "Connection",
			err:       &services.OperationError{Entity: "finca", Action: services.ActionGet, Err: fmt.Errorf("%w: refused", services.ErrConnection)},
			wantCode:  http.StatusInternalServerError,
			wantTitle: "Error de conexión",
			wantError: "No se pudo conectar a la base de datos",
		},
		{
			name:      "Unexpected",
			err:       errors.New("something odd"),
			wantCode:  http.StatusInternalServerError,
			wantTitle: "Error de base de datos",
			wantError: "something odd",
		},
		{
			name:      "Not found in English",
			err:       &services.NotFoundError{Entity: "Cultivo", ID: int64(5)},
			lang:      "en",
			wantCode:  http.StatusNotFound,
			wantTitle: "Not found",
			wantError: "Cultivo with ID 5 not found",
		},
		{
			name:      "Unknown code keeps the default message",
			err:       &services.ValidationError{Field: "X", Label: "Campo", Code: "validation.custom", Message: "no sirve"},
			wantCode:  http.StatusUnprocessableEntity,
			wantTitle: "Error de validación",
			wantError: "Error en campo 'Campo': no sirve",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, c, rec := setupEcho(http.MethodGet, "/", nil)
			if tt.lang != "" {
				c.SetRequest(c.Request().WithContext(i18n.WithLocale(c.Request().Context(), tt.lang)))
			}
			require.NoError(t, renderError(c, tt.err))
			assert.Equal(t, tt.wantCode, rec.Code)

			var resp ErrorResponse
			decode(t, rec, &resp)
			assert.Equal(t, tt.wantTitle, resp.Title)
			assert.Equal(t, tt.wantError, resp.Error)
		})
	}
}
