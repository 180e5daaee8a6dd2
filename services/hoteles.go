package services

import (
	"agrocontrol_app_go/db"
	"agrocontrol_app_go/models"
)

var HotelDefinition = EntityDefinition{
	Schema: models.HotelSchema,
	UsedIn: "registros relacionados",
}

func NewHotelService(gw *db.Gateway, opts EntityOptions) *EntityController {
	model := NewEntityModel(gw, HotelDefinition, opts.InUseMarkers, opts.logger())
	return NewEntityController(model, ControllerHooks{}, opts)
}
