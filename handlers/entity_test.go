package handlers

import (
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"testing"

	"agrocontrol_app_go/models"
	"agrocontrol_app_go/services"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFormHandler(t *testing.T) {
	app := setupTestApp(t)

	t.Run("Spanish by default", func(t *testing.T) {
		rec := app.do(http.MethodGet, "/api/fincas/form", nil, "")
		require.Equal(t, http.StatusOK, rec.Code)

		var form FormDescriptor
		decode(t, rec, &form)
		assert.Equal(t, "Finca", form.Entity)
		assert.Equal(t, "Fincas", form.Title)
		assert.Equal(t, "ID_finca", form.PrimaryKey)
		assert.Len(t, form.Fields, len(models.FincaSchema.Fields))
		assert.Equal(t, "light", form.Theme.Name)
		assert.NotEmpty(t, form.Theme.Colors["button_save"])
	})

	t.Run("English via query", func(t *testing.T) {
		rec := app.do(http.MethodGet, "/api/parcelas/form?lang=en", nil, "")
		require.Equal(t, http.StatusOK, rec.Code)

		var form FormDescriptor
		decode(t, rec, &form)
		assert.Equal(t, "Plots", form.Title)
		assert.Equal(t, "Parcela", form.Entity)
	})
}

func TestEntityCRUDHandlers(t *testing.T) {
	app := setupTestApp(t)

	var id int64
	t.Run("Create answers with the id and the list", func(t *testing.T) {
		rec := app.doJSON(t, http.MethodPost, "/api/fincas", fincaPayload("finca la palma"))
		require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

		var resp ListResponse
		decode(t, rec, &resp)
		id = resp.ID
		assert.Greater(t, id, int64(0))
		require.Len(t, resp.Items, 1)
		assert.Equal(t, "Finca La Palma", resp.Items[0]["NOMBRE"])
	})

	t.Run("Create from a form body", func(t *testing.T) {
		form := url.Values{}
		form.Set("NOMBRE", "El Diamante")
		form.Set("ALTITUD_METROS", "900")
		rec := app.do(http.MethodPost, "/api/fincas", strings.NewReader(form.Encode()), echo.MIMEApplicationForm)
		require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

		var resp ListResponse
		decode(t, rec, &resp)
		assert.Len(t, resp.Items, 2)
	})

	t.Run("Get", func(t *testing.T) {
		rec := app.do(http.MethodGet, fmt.Sprintf("/api/fincas/%d", id), nil, "")
		require.Equal(t, http.StatusOK, rec.Code)

		var record map[string]interface{}
		decode(t, rec, &record)
		assert.Equal(t, "Finca La Palma", record["NOMBRE"])
		assert.Equal(t, float64(1500), record["ALTITUD_METROS"])
	})

	t.Run("Update", func(t *testing.T) {
		payload := fincaPayload("Finca La Palma")
		payload["ALTITUD_METROS"] = "1750"
		rec := app.doJSON(t, http.MethodPut, fmt.Sprintf("/api/fincas/%d", id), payload)
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

		var resp ListResponse
		decode(t, rec, &resp)
		for _, item := range resp.Items {
			if item["ID_finca"] == float64(id) {
				assert.Equal(t, float64(1750), item["ALTITUD_METROS"])
			}
		}
	})

	t.Run("Search and count", func(t *testing.T) {
		rec := app.do(http.MethodGet, "/api/fincas?q=palma", nil, "")
		require.Equal(t, http.StatusOK, rec.Code)
		var resp ListResponse
		decode(t, rec, &resp)
		assert.Len(t, resp.Items, 1)

		rec = app.do(http.MethodGet, "/api/fincas?q=", nil, "")
		require.Equal(t, http.StatusOK, rec.Code)
		decode(t, rec, &resp)
		assert.Empty(t, resp.Items)

		rec = app.do(http.MethodGet, "/api/fincas/count", nil, "")
		require.Equal(t, http.StatusOK, rec.Code)
		var count map[string]int64
		decode(t, rec, &count)
		assert.Equal(t, int64(2), count["count"])
	})

	t.Run("Summary and region", func(t *testing.T) {
		rec := app.do(http.MethodGet, fmt.Sprintf("/api/fincas/%d/summary", id), nil, "")
		require.Equal(t, http.StatusOK, rec.Code)
		var summary services.FincaSummary
		decode(t, rec, &summary)
		assert.True(t, summary.HasLocation)

		rec = app.do(http.MethodGet, "/api/fincas/region/"+url.PathEscape("quindío"), nil, "")
		require.Equal(t, http.StatusOK, rec.Code)
		var resp ListResponse
		decode(t, rec, &resp)
		assert.Len(t, resp.Items, 1)
	})

	t.Run("History", func(t *testing.T) {
		services.WaitForAuditEvents()
		rec := app.do(http.MethodGet, fmt.Sprintf("/api/fincas/%d/history", id), nil, "")
		require.Equal(t, http.StatusOK, rec.Code)

		var resp struct {
			Items []models.AuditLog `json:"items"`
		}
		decode(t, rec, &resp)
		assert.Len(t, resp.Items, 2)
	})

	t.Run("Delete", func(t *testing.T) {
		rec := app.do(http.MethodDelete, fmt.Sprintf("/api/fincas/%d", id), nil, "")
		require.Equal(t, http.StatusOK, rec.Code)

		var resp ListResponse
		decode(t, rec, &resp)
		assert.Len(t, resp.Items, 1)

		rec = app.do(http.MethodGet, fmt.Sprintf("/api/fincas/%d", id), nil, "")
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})
}

func TestEntityErrorResponses(t *testing.T) {
	app := setupTestApp(t)

	t.Run("Validation failure is 422 with the field", func(t *testing.T) {
		payload := map[string]interface{}{
			"NOMBRE_CIENTIFICO":       "Zea mays",
			"NOMBRE_COMUN":            "Maíz",
			"TIEMPO_CRECIMIENTO_DIAS": -5,
			"TEMPERATURAS_OPTIMAS":    24,
		}
		rec := app.doJSON(t, http.MethodPost, "/api/cultivos", payload)
		require.Equal(t, http.StatusUnprocessableEntity, rec.Code)

		var resp ErrorResponse
		decode(t, rec, &resp)
		assert.Equal(t, "TIEMPO_CRECIMIENTO_DIAS", resp.Field)
		assert.Equal(t, "Error de validación", resp.Title)
		assert.Equal(t, "Error en campo 'Tiempo de crecimiento (días)': debe ser mayor o igual a 1", resp.Error)
	})

	t.Run("Messages follow Accept-Language", func(t *testing.T) {
		rec := app.doJSON(t, http.MethodPost, "/api/clientes", map[string]interface{}{"APELLIDO": "Ruiz"},
			"Accept-Language", "en-US,en;q=0.9")
		require.Equal(t, http.StatusUnprocessableEntity, rec.Code)

		var resp ErrorResponse
		decode(t, rec, &resp)
		assert.Equal(t, "NOMBRE", resp.Field)
		assert.Equal(t, "Error in field 'Nombre': is required", resp.Error)
		assert.Equal(t, "Validation error", resp.Title)
	})

	t.Run("Invalid id is 400", func(t *testing.T) {
		rec := app.do(http.MethodGet, "/api/hoteles/abc", nil, "")
		assert.Equal(t, http.StatusBadRequest, rec.Code)

		rec = app.do(http.MethodDelete, "/api/hoteles/-2", nil, "")
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("Missing record is 404", func(t *testing.T) {
		rec := app.do(http.MethodGet, "/api/hoteles/999", nil, "")
		require.Equal(t, http.StatusNotFound, rec.Code)

		var resp ErrorResponse
		decode(t, rec, &resp)
		assert.Equal(t, "Hotel", resp.Entity)
		assert.Equal(t, "Hotel con ID 999 no encontrado", resp.Error)
	})

	t.Run("Malformed body is 400", func(t *testing.T) {
		rec := app.do(http.MethodPost, "/api/hoteles", strings.NewReader("{not json"), echo.MIMEApplicationJSON)
		require.Equal(t, http.StatusBadRequest, rec.Code)

		var resp ErrorResponse
		decode(t, rec, &resp)
		assert.Equal(t, "Solicitud inválida", resp.Title)
	})

	t.Run("Unknown reference is 422", func(t *testing.T) {
		rec := app.doJSON(t, http.MethodPost, "/api/parcelas", map[string]interface{}{
			"AREA_HECTAREAS_PARCELA": 1.5,
			"ID_FINCA":               777,
		})
		require.Equal(t, http.StatusUnprocessableEntity, rec.Code)

		var resp ErrorResponse
		decode(t, rec, &resp)
		assert.Equal(t, "ID_FINCA", resp.Field)
		assert.Equal(t, "Error en campo 'ID Finca': no existe Finca con ID 777", resp.Error)
	})

	t.Run("Referenced record is 409", func(t *testing.T) {
		fincaID := app.create(t, "fincas", fincaPayload("Finca Ocupada"))
		parcelaID := app.create(t, "parcelas", map[string]interface{}{
			"AREA_HECTAREAS_PARCELA": "3",
			"ID_FINCA":               fincaID,
		})

		rec := app.do(http.MethodDelete, fmt.Sprintf("/api/fincas/%d", fincaID), nil, "")
		require.Equal(t, http.StatusConflict, rec.Code, rec.Body.String())

		var resp ErrorResponse
		decode(t, rec, &resp)
		assert.Equal(t, "parcelas", resp.UsedIn)
		assert.Equal(t, "No se puede eliminar", resp.Title)
		assert.Contains(t, resp.Error, "está siendo usado en parcelas")

		rec = app.do(http.MethodDelete, fmt.Sprintf("/api/parcelas/%d", parcelaID), nil, "")
		require.Equal(t, http.StatusOK, rec.Code)
		rec = app.do(http.MethodDelete, fmt.Sprintf("/api/fincas/%d", fincaID), nil, "")
		assert.Equal(t, http.StatusOK, rec.Code)
	})
}

func TestValidateHandler(t *testing.T) {
	app := setupTestApp(t)

	rec := app.doJSON(t, http.MethodPost, "/api/hoteles/validate", map[string]interface{}{
		"NOMBRE_HOTEL": "Hotel Las Palmas",
		"CATEGORIA":    9,
		"CORREO":       "no-es-correo",
		"CHECKIN":      "3pm",
	})
	require.Equal(t, http.StatusOK, rec.Code)

	var resp ValidationResponse
	decode(t, rec, &resp)
	assert.False(t, resp.Valid)
	assert.Len(t, resp.Errors, 4)
	assert.Contains(t, resp.Errors, "DIRECCION")
	assert.Equal(t, "Error en campo 'Categoría': debe ser menor o igual a 5", resp.Errors["CATEGORIA"])
	assert.Contains(t, resp.Errors["CORREO"], "correo electrónico")
	assert.Contains(t, resp.Errors["CHECKIN"], "hora válida")

	rec = app.doJSON(t, http.MethodPost, "/api/hoteles/validate", map[string]interface{}{
		"NOMBRE_HOTEL": "Hotel Las Palmas",
		"DIRECCION":    "Carrera 7 # 12-30",
	})
	require.Equal(t, http.StatusOK, rec.Code)
	resp = ValidationResponse{}
	decode(t, rec, &resp)
	assert.True(t, resp.Valid)
	assert.Empty(t, resp.Errors)

	// nothing was stored
	rec = app.do(http.MethodGet, "/api/hoteles", nil, "")
	var list ListResponse
	decode(t, rec, &list)
	assert.Empty(t, list.Items)
}

func TestPhotoHandler(t *testing.T) {
	app := setupTestApp(t)
	id := app.create(t, "cultivos", map[string]interface{}{
		"NOMBRE_CIENTIFICO":       "Musa paradisiaca",
		"NOMBRE_COMUN":            "plátano",
		"TIEMPO_CRECIMIENTO_DIAS": 365,
		"TEMPERATURAS_OPTIMAS":    26.5,
	})
	path := fmt.Sprintf("/api/cultivos/%d/photo", id)

	t.Run("Upload", func(t *testing.T) {
		rec := app.upload(path, "platano.png", pngBytes)
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

		var resp struct {
			Record map[string]interface{}   `json:"record"`
			Items  []map[string]interface{} `json:"items"`
		}
		decode(t, rec, &resp)
		assert.Equal(t, "Plátano", resp.Record["NOMBRE_COMUN"])
		key, _ := resp.Record["PHOTO"].(string)
		assert.True(t, strings.HasPrefix(key, fmt.Sprintf("cultivos/%d/", id)), key)
		assert.Equal(t, app.storage.GetPublicURL(key), resp.Record[services.PhotoURLField])
		require.Len(t, resp.Items, 1)
	})

	t.Run("Download", func(t *testing.T) {
		rec := app.do(http.MethodGet, path, nil, "")
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
		assert.Equal(t, "image/png", rec.Header().Get(echo.HeaderContentType))
		assert.Equal(t, pngBytes, rec.Body.Bytes())
	})

	t.Run("PHOTO is not writable through the form", func(t *testing.T) {
		rec := app.doJSON(t, http.MethodPut, fmt.Sprintf("/api/cultivos/%d", id), map[string]interface{}{
			"NOMBRE_CIENTIFICO":       "Musa paradisiaca",
			"NOMBRE_COMUN":            "plátano",
			"TIEMPO_CRECIMIENTO_DIAS": 365,
			"TEMPERATURAS_OPTIMAS":    26.5,
			"PHOTO":                   "../victim.txt",
		})
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

		rec = app.do(http.MethodGet, fmt.Sprintf("/api/cultivos/%d", id), nil, "")
		var record map[string]interface{}
		decode(t, rec, &record)
		key, _ := record["PHOTO"].(string)
		assert.True(t, strings.HasPrefix(key, fmt.Sprintf("cultivos/%d/", id)), key)
	})

	t.Run("Missing file", func(t *testing.T) {
		rec := app.upload(path, "", nil)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("Not an image", func(t *testing.T) {
		rec := app.upload(path, "documento.pdf", []byte("%PDF-1.4"))
		require.Equal(t, http.StatusUnprocessableEntity, rec.Code)

		var resp ErrorResponse
		decode(t, rec, &resp)
		assert.Equal(t, "PHOTO", resp.Field)
		assert.Contains(t, resp.Error, "JPG, PNG, GIF o BMP")
	})

	t.Run("Unknown crop", func(t *testing.T) {
		rec := app.upload("/api/cultivos/4040/photo", "a.png", pngBytes)
		assert.Equal(t, http.StatusNotFound, rec.Code)

		rec = app.do(http.MethodGet, "/api/cultivos/4040/photo", nil, "")
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})

	t.Run("Crop without photo", func(t *testing.T) {
		other := app.create(t, "cultivos", map[string]interface{}{
			"NOMBRE_CIENTIFICO":       "Zea mays",
			"NOMBRE_COMUN":            "maíz",
			"TIEMPO_CRECIMIENTO_DIAS": 120,
			"TEMPERATURAS_OPTIMAS":    24,
		})
		rec := app.do(http.MethodGet, fmt.Sprintf("/api/cultivos/%d/photo", other), nil, "")
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})
}

func TestExistsHandler(t *testing.T) {
	app := setupTestApp(t)
	id := app.create(t, "fincas", fincaPayload("Finca Existente"))

	tests := []struct {
		path   string
		status int
		exists bool
	}{
		{fmt.Sprintf("/api/fincas/%d/exists", id), http.StatusOK, true},
		{"/api/fincas/9999/exists", http.StatusOK, false},
		{"/api/fincas/abc/exists", http.StatusOK, false},
	}
	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			rec := app.do(http.MethodGet, tt.path, nil, "")
			require.Equal(t, tt.status, rec.Code, rec.Body.String())
			var resp map[string]bool
			decode(t, rec, &resp)
			assert.Equal(t, tt.exists, resp["exists"])
		})
	}
}
