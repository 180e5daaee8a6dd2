package services

import (
	"agrocontrol_app_go/db"
	"agrocontrol_app_go/models"
)

// ClienteDefinition has no stored procedures; every operation is plain SQL
var ClienteDefinition = EntityDefinition{
	Schema: models.ClienteSchema,
	UsedIn: "registros relacionados",
}

func NewClienteService(gw *db.Gateway, opts EntityOptions) *EntityController {
	model := NewEntityModel(gw, ClienteDefinition, opts.InUseMarkers, opts.logger())
	capitalize := capitalizeFields("NOMBRE", "APELLIDO")
	return NewEntityController(model, ControllerHooks{
		PreprocessCreate: capitalize,
		PreprocessUpdate: capitalize,
	}, opts)
}
