package services

import (
	"bytes"
	"context"
	"mime/multipart"
	"testing"

	"agrocontrol_app_go/config"
	"agrocontrol_app_go/db"
	"agrocontrol_app_go/models"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// setupTestGateway opens an isolated in-memory database with every entity table
func setupTestGateway(t *testing.T) *db.Gateway {
	t.Helper()
	cfg := &config.Config{
		Environment: "test",
		DBDriver:    config.DriverSQLite,
		DBPath:      "file:mem_" + uuid.New().String() + "?mode=memory&cache=shared",
	}
	gw := db.NewGateway(db.OpenerFor(cfg), cfg.DBDriver, zap.NewNop())
	require.NoError(t, gw.Connect(context.Background()))
	require.NoError(t, db.AutoMigrate(gw.GORM(), models.All()...))

	t.Cleanup(func() {
		WaitForAuditEvents()
		_ = gw.Close()
	})
	return gw
}

func testOptions() EntityOptions {
	return EntityOptions{InUseMarkers: []string{"asociad"}, Log: zap.NewNop()}
}

func fincaInput(name string) map[string]interface{} {
	return map[string]interface{}{
		"NOMBRE":                        name,
		"latitud":                       "4.5339",
		"longitud":                      "-75.6811",
		"EXTENSION_TOTAL_HECTAREAS":     "120.5",
		"ALTITUD_METROS":                "1500",
		"TEMPERATURA_PROMEDIO_ANUAL_fg": "22.5",
		"TIPO_SUELO_PREDOMINANTE":       "Franco",
		"region_ubicacion":              "Quindío",
	}
}

func cultivoInput() map[string]interface{} {
	return map[string]interface{}{
		"NOMBRE_CIENTIFICO":          "Coffea arabica",
		"NOMBRE_COMUN":               "Café",
		"TIEMPO_CRECIMIENTO_DIAS":    "270",
		"TEMPERATURAS_OPTIMAS":       "21",
		"REQUERIMIENTO_AGUA_SEMANAL": "25 mm",
	}
}

func parcelaInput(fincaID int64) map[string]interface{} {
	return map[string]interface{}{
		"AREA_HECTAREAS_PARCELA": "2.5",
		"SISTEMA_RIEGO":          "Goteo",
		"HISTORIAL_DE_USO":       "Maíz 2023",
		"ID_FINCA":               fincaID,
	}
}

// pngBytes starts with the PNG signature so content sniffing sees an image
var pngBytes = append([]byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR"), make([]byte, 64)...)

// photoHeader builds the file header a multipart "photo" upload produces
func photoHeader(t *testing.T, filename string, content []byte) *multipart.FileHeader {
	t.Helper()
	body := &bytes.Buffer{}
	w := multipart.NewWriter(body)
	part, err := w.CreateFormFile("photo", filename)
	require.NoError(t, err)
	_, err = part.Write(content)
	require.NoError(t, err)
	require.NoError(t, w.Close())

	form, err := multipart.NewReader(body, w.Boundary()).ReadForm(10 << 20)
	require.NoError(t, err)
	t.Cleanup(func() { _ = form.RemoveAll() })
	require.Len(t, form.File["photo"], 1)
	return form.File["photo"][0]
}
