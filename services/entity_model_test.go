package services

import (
	"context"
	"errors"
	"math"
	"testing"

	"agrocontrol_app_go/config"
	"agrocontrol_app_go/db"
	"agrocontrol_app_go/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

func TestEntityModelCRUD(t *testing.T) {
	gw := setupTestGateway(t)
	ctx := context.Background()
	fincas := NewEntityModel(gw, FincaDefinition, nil, zap.NewNop())

	t.Run("Create and get", func(t *testing.T) {
		id, err := fincas.Create(ctx, fincaInput("Finca Test"))
		require.NoError(t, err)
		assert.Greater(t, id, int64(0))

		finca, err := fincas.GetByID(ctx, id)
		require.NoError(t, err)
		assert.Equal(t, id, finca["ID_finca"])
		assert.Equal(t, "Finca Test", finca["NOMBRE"])
		assert.Equal(t, "4.5339", finca["latitud"])
		assert.Equal(t, 120.5, finca["EXTENSION_TOTAL_HECTAREAS"])
		assert.Equal(t, int64(1500), finca["ALTITUD_METROS"])
		assert.Equal(t, "Quindío", finca["region_ubicacion"])
	})

	t.Run("Optional fields stay null", func(t *testing.T) {
		id, err := fincas.Create(ctx, map[string]interface{}{"NOMBRE": "La Esperanza"})
		require.NoError(t, err)

		finca, err := fincas.GetByID(ctx, id)
		require.NoError(t, err)
		assert.Nil(t, finca["ALTITUD_METROS"])
		assert.Nil(t, finca["latitud"])
	})

	t.Run("Invalid input is rejected before any write", func(t *testing.T) {
		before, err := fincas.Count(ctx)
		require.NoError(t, err)

		_, err = fincas.Create(ctx, map[string]interface{}{"NOMBRE": "  "})
		assert.ErrorIs(t, err, ErrValidation)

		after, err := fincas.Count(ctx)
		require.NoError(t, err)
		assert.Equal(t, before, after)
	})

	t.Run("Update twice gives the same record", func(t *testing.T) {
		id, err := fincas.Create(ctx, fincaInput("Finca Vieja"))
		require.NoError(t, err)

		input := fincaInput("Finca Nueva")
		input["ALTITUD_METROS"] = "1800"
		require.NoError(t, fincas.Update(ctx, id, input))
		first, err := fincas.GetByID(ctx, id)
		require.NoError(t, err)

		require.NoError(t, fincas.Update(ctx, id, input))
		second, err := fincas.GetByID(ctx, id)
		require.NoError(t, err)

		assert.Equal(t, first, second)
		assert.Equal(t, "Finca Nueva", second["NOMBRE"])
		assert.Equal(t, int64(1800), second["ALTITUD_METROS"])
	})

	t.Run("Delete", func(t *testing.T) {
		id, err := fincas.Create(ctx, fincaInput("Finca Temporal"))
		require.NoError(t, err)

		require.NoError(t, fincas.Delete(ctx, id))
		_, err = fincas.GetByID(ctx, id)
		assert.ErrorIs(t, err, ErrNotFound)
	})
}

func TestEntityModelNotFound(t *testing.T) {
	gw := setupTestGateway(t)
	ctx := context.Background()
	fincas := NewEntityModel(gw, FincaDefinition, nil, zap.NewNop())
	const missing = 99999

	_, err := fincas.GetByID(ctx, missing)
	var nf *NotFoundError
	require.True(t, errors.As(err, &nf))
	assert.Equal(t, "Finca", nf.Entity)
	assert.Equal(t, "Finca con ID 99999 no encontrado", err.Error())

	assert.ErrorIs(t, fincas.Update(ctx, missing, fincaInput("X")), ErrNotFound)
	assert.ErrorIs(t, fincas.Delete(ctx, missing), ErrNotFound)

	t.Run("Invalid ids are validation errors", func(t *testing.T) {
		_, err := fincas.GetByID(ctx, "abc")
		assert.ErrorIs(t, err, ErrValidation)
		assert.ErrorIs(t, fincas.Delete(ctx, -1), ErrValidation)
	})
}

func TestEntityModelSearch(t *testing.T) {
	gw := setupTestGateway(t)
	ctx := context.Background()
	fincas := NewEntityModel(gw, FincaDefinition, nil, zap.NewNop())

	_, err := fincas.Create(ctx, fincaInput("El Cafetal"))
	require.NoError(t, err)
	other := fincaInput("La Ceiba")
	other["region_ubicacion"] = "Valle Del Cauca"
	_, err = fincas.Create(ctx, other)
	require.NoError(t, err)

	t.Run("Matches any search column", func(t *testing.T) {
		results, err := fincas.Search(ctx, "cafetal")
		require.NoError(t, err)
		require.Len(t, results, 1)
		assert.Equal(t, "El Cafetal", results[0]["NOMBRE"])

		results, err = fincas.Search(ctx, "Valle")
		require.NoError(t, err)
		require.Len(t, results, 1)
		assert.Equal(t, "La Ceiba", results[0]["NOMBRE"])
	})

	t.Run("No match", func(t *testing.T) {
		results, err := fincas.Search(ctx, "zzz")
		require.NoError(t, err)
		assert.Empty(t, results)
		assert.NotNil(t, results)
	})

	t.Run("FindBy ignores case", func(t *testing.T) {
		results, err := fincas.FindBy(ctx, "REGION_UBICACION", "valle del cauca")
		require.NoError(t, err)
		require.Len(t, results, 1)
		assert.Equal(t, "La Ceiba", results[0]["NOMBRE"])

		_, err = fincas.FindBy(ctx, "no_such_field", "x")
		assert.ErrorIs(t, err, ErrOperation)
	})

	t.Run("GetAll orders by id", func(t *testing.T) {
		all := fincas.GetAll(ctx)
		require.Len(t, all, 2)
		assert.Equal(t, "El Cafetal", all[0]["NOMBRE"])
		assert.Equal(t, "La Ceiba", all[1]["NOMBRE"])
	})
}

func TestBlankSearchIssuesNoQuery(t *testing.T) {
	opened := 0
	gw := db.NewGateway(func(ctx context.Context) (*gorm.DB, error) {
		opened++
		return nil, errors.New("unreachable")
	}, config.DriverSQLite, nil)
	fincas := NewEntityModel(gw, FincaDefinition, nil, nil)

	for _, term := range []string{"", "   ", "\t\n"} {
		results, err := fincas.Search(context.Background(), term)
		assert.NoError(t, err)
		assert.Empty(t, results)
	}
	assert.Equal(t, 0, opened)

	t.Run("GetAll swallows failures", func(t *testing.T) {
		assert.Empty(t, fincas.GetAll(context.Background()))
		assert.Greater(t, opened, 0)
	})
}

func TestEntityModelInUse(t *testing.T) {
	gw := setupTestGateway(t)
	ctx := context.Background()
	fincas := NewEntityModel(gw, FincaDefinition, nil, zap.NewNop())
	parcelas := NewEntityModel(gw, ParcelaDefinition, nil, zap.NewNop())

	fincaID, err := fincas.Create(ctx, fincaInput("Finca Con Parcelas"))
	require.NoError(t, err)
	parcelaID, err := parcelas.Create(ctx, parcelaInput(fincaID))
	require.NoError(t, err)

	err = fincas.Delete(ctx, fincaID)
	var iu *EntityInUseError
	require.True(t, errors.As(err, &iu), "got %v", err)
	assert.Equal(t, "parcelas", iu.UsedIn)
	assert.ErrorIs(t, err, ErrInUse)
	assert.NotErrorIs(t, err, ErrOperation)
	assert.Contains(t, err.Error(), "está siendo usado en parcelas")

	// the failed delete left the farm in place
	_, err = fincas.GetByID(ctx, fincaID)
	require.NoError(t, err)

	require.NoError(t, parcelas.Delete(ctx, parcelaID))
	assert.NoError(t, fincas.Delete(ctx, fincaID))
}

func TestEntityModelReferences(t *testing.T) {
	gw := setupTestGateway(t)
	ctx := context.Background()
	fincas := NewEntityModel(gw, FincaDefinition, nil, zap.NewNop())
	cultivos := NewEntityModel(gw, CultivoDefinition, nil, zap.NewNop())
	parcelas := NewEntityModel(gw, ParcelaDefinition, nil, zap.NewNop())

	t.Run("Missing farm", func(t *testing.T) {
		_, err := parcelas.Create(ctx, parcelaInput(4242))
		var ve *ValidationError
		require.True(t, errors.As(err, &ve))
		assert.Equal(t, "ID_FINCA", ve.Field)
		assert.Equal(t, CodeReference, ve.Code)
		assert.Contains(t, ve.Error(), "no existe Finca con ID 4242")
	})

	t.Run("Valid farm and crop", func(t *testing.T) {
		fincaID, err := fincas.Create(ctx, fincaInput("Finca Sembrada"))
		require.NoError(t, err)
		cultivoID, err := cultivos.Create(ctx, cultivoInput())
		require.NoError(t, err)

		input := parcelaInput(fincaID)
		input["ID_CULTIVO"] = cultivoID
		id, err := parcelas.Create(ctx, input)
		require.NoError(t, err)

		parcela, err := parcelas.GetByID(ctx, id)
		require.NoError(t, err)
		assert.Equal(t, fincaID, parcela["ID_FINCA"])
		assert.Equal(t, cultivoID, parcela["ID_CULTIVO"])
		assert.Equal(t, 2.5, parcela["AREA_HECTAREAS_PARCELA"])

		// the crop is now referenced by a plot
		err = cultivos.Delete(ctx, cultivoID)
		var iu *EntityInUseError
		require.True(t, errors.As(err, &iu))
		assert.Equal(t, "parcelas", iu.UsedIn)
	})

	t.Run("ValidateForeignKey", func(t *testing.T) {
		ok, err := parcelas.ValidateForeignKey(ctx, "FINCAS", "ID_finca", nil)
		assert.NoError(t, err)
		assert.True(t, ok)

		ok, err = parcelas.ValidateForeignKey(ctx, "FINCAS", "ID_finca", 777)
		assert.NoError(t, err)
		assert.False(t, ok)

		_, err = parcelas.ValidateForeignKey(ctx, "FINCAS; DROP TABLE x", "ID_finca", 1)
		assert.ErrorIs(t, err, ErrOperation)
	})
}

func TestEntityModelColumnMapping(t *testing.T) {
	gw := setupTestGateway(t)
	ctx := context.Background()
	hoteles := NewEntityModel(gw, HotelDefinition, nil, zap.NewNop())
	clientes := NewEntityModel(gw, ClienteDefinition, nil, zap.NewNop())

	t.Run("Hotel", func(t *testing.T) {
		id, err := hoteles.Create(ctx, map[string]interface{}{
			"NOMBRE_HOTEL":      "Hotel Mirador",
			"CATEGORIA":         "4",
			"DIRECCION":         "Calle 10 # 5-20",
			"ANIO_INAUGURACION": "2005",
			"HABITANTES":        "40",
			"CHECKIN":           "15:00",
			"CHECKOUT":          "12:00",
		})
		require.NoError(t, err)

		hotel, err := hoteles.GetByID(ctx, id)
		require.NoError(t, err)
		assert.Equal(t, id, hotel["id_hotel"])
		assert.Equal(t, "Hotel Mirador", hotel["NOMBRE_HOTEL"])
		assert.Equal(t, int64(4), hotel["CATEGORIA"])
		assert.Equal(t, int64(2005), hotel["ANIO_INAUGURACION"])
		assert.Equal(t, int64(40), hotel["HABITANTES"])
		assert.Equal(t, "15:00", hotel["CHECKIN"])
		assert.Nil(t, hotel["CORREO"])

		_, err = hoteles.Create(ctx, map[string]interface{}{
			"NOMBRE_HOTEL": "Hotel Seis Estrellas",
			"DIRECCION":    "Calle 1",
			"CATEGORIA":    "6",
		})
		assert.ErrorContains(t, err, "debe ser menor o igual a 5")
	})

	t.Run("Cliente", func(t *testing.T) {
		id, err := clientes.Create(ctx, map[string]interface{}{
			"NOMBRE":              "Ana",
			"APELLIDO":            "Gómez",
			"DOCUMENTO_IDENTIDAD": "1032456789",
			"FECHA_NACIMIENTO":    "1990-05-17",
			"TELEFONO":            "3001234567",
			"CORREO":              "ana@example.com",
		})
		require.NoError(t, err)

		cliente, err := clientes.GetByID(ctx, id)
		require.NoError(t, err)
		assert.Equal(t, "1990-05-17", cliente["FECHA_NACIMIENTO"])
		assert.Equal(t, int64(1032456789), cliente["DOCUMENTO_IDENTIDAD"])
		assert.Equal(t, int64(3001234567), cliente["TELEFONO"])

		results, err := clientes.Search(ctx, "gómez")
		require.NoError(t, err)
		assert.Len(t, results, 1)

		exists, err := clientes.Exists(ctx, id)
		assert.NoError(t, err)
		assert.True(t, exists)

		exists, err = clientes.Exists(ctx, "nope")
		assert.NoError(t, err)
		assert.False(t, exists)
	})
}

func TestProcedureCoverage(t *testing.T) {
	m := NewEntityModel(nil, ParcelaDefinition, nil, nil)

	assert.True(t, m.procedureCovers(models.Record{"AREA_HECTAREAS_PARCELA": 1.0, "ID_FINCA": int64(1), "ID_CULTIVO": nil}))
	assert.False(t, m.procedureCovers(models.Record{"AREA_HECTAREAS_PARCELA": 1.0, "ID_CULTIVO": int64(3)}))

	args := m.procedureArgs(models.Record{"AREA_HECTAREAS_PARCELA": 1.0, "SISTEMA_RIEGO": "Goteo", "ID_FINCA": int64(2)})
	assert.Equal(t, []interface{}{1.0, "Goteo", nil, int64(2)}, args)

	assert.Equal(t, int64(12), m.idFromRow(db.Row{"LAST_INSERT_ID()": "12"}))
	assert.Equal(t, int64(7), m.idFromRow(db.Row{"id_parcela": int64(7), "AREA_HECTAREAS_PARCELA": 1.0}))
}

func TestMigratedSchema(t *testing.T) {
	gw := setupTestGateway(t)
	ctx := context.Background()

	t.Run("Plots reference farms and crops", func(t *testing.T) {
		rows, err := gw.Query(ctx, "PRAGMA foreign_key_list(PARCELAS)")
		require.NoError(t, err)

		refs := map[string]string{}
		for _, row := range rows {
			refs[toText(row["from"])] = toText(row["table"]) + "." + toText(row["to"])
			assert.Equal(t, "RESTRICT", toText(row["on_delete"]))
		}
		assert.Equal(t, map[string]string{
			"ID_FINCA":   "FINCAS.ID_finca",
			"ID_CULTIVO": "cultivos.id_cultivo",
		}, refs)
	})

	t.Run("Parents carry no foreign keys", func(t *testing.T) {
		for _, table := range []string{"FINCAS", "cultivos"} {
			rows, err := gw.Query(ctx, "PRAGMA foreign_key_list("+table+")")
			require.NoError(t, err)
			assert.Empty(t, rows, table)
		}
	})

	t.Run("Crops are created without plots", func(t *testing.T) {
		cultivos := NewEntityModel(gw, CultivoDefinition, nil, zap.NewNop())
		id, err := cultivos.Create(ctx, cultivoInput())
		require.NoError(t, err)
		assert.Equal(t, int64(1), id)
	})
}

func TestSetField(t *testing.T) {
	gw := setupTestGateway(t)
	ctx := context.Background()
	cultivos := NewEntityModel(gw, CultivoDefinition, nil, zap.NewNop())

	id, err := cultivos.Create(ctx, cultivoInput())
	require.NoError(t, err)

	require.NoError(t, cultivos.SetField(ctx, id, "PHOTO", "cultivos/1/foto.png"))
	record, err := cultivos.GetByID(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, "cultivos/1/foto.png", record["PHOTO"])

	// editable fields go through Update
	assert.ErrorIs(t, cultivos.SetField(ctx, id, "NOMBRE_COMUN", "Otro"), ErrOperation)
	assert.ErrorIs(t, cultivos.SetField(ctx, id, "NO_EXISTE", "x"), ErrOperation)
	assert.ErrorIs(t, cultivos.SetField(ctx, 999, "PHOTO", "x"), ErrNotFound)
	assert.ErrorIs(t, cultivos.SetField(ctx, "abc", "PHOTO", "x"), ErrValidation)
}

func TestToInt64(t *testing.T) {
	assert.Equal(t, int64(42), toInt64(uint64(42)))
	assert.Equal(t, int64(0), toInt64(uint64(math.MaxUint64)))
	assert.Equal(t, int64(7), toInt64(" 7 "))
	assert.Equal(t, int64(3), toInt64([]byte("3.9")))
}
