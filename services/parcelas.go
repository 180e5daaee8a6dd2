package services

import (
	"agrocontrol_app_go/db"
	"agrocontrol_app_go/models"
)

// ParcelaDefinition uses the plot procedures, which know nothing about the
// crop reference. A plot carrying one is written with plain SQL.
var ParcelaDefinition = EntityDefinition{
	Schema: models.ParcelaSchema,
	UsedIn: "cultivos",
	Procedures: Procedures{
		Create:  "sp_InsertParcela",
		GetByID: "sp_GetParcelaById",
		Update:  "sp_UpdateParcela",
		Delete:  "sp_DeleteParcela",
		Search:  "sp_SearchParcelas",
		GetAll: []ProcedureCall{
			{Name: "sp_GetAllParcelas"},
			{Name: "sp_GetParcelas"},
		},
		Fields: []string{"AREA_HECTAREAS_PARCELA", "SISTEMA_RIEGO", "HISTORIAL_DE_USO", "ID_FINCA"},
	},
}

func NewParcelaService(gw *db.Gateway, opts EntityOptions) *EntityController {
	model := NewEntityModel(gw, ParcelaDefinition, opts.InUseMarkers, opts.logger())
	return NewEntityController(model, ControllerHooks{}, opts)
}
