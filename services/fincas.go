package services

import (
	"context"
	"strings"

	"agrocontrol_app_go/db"
	"agrocontrol_app_go/models"
)

// FincaDefinition prefers the farm stored procedures when the database has them
var FincaDefinition = EntityDefinition{
	Schema: models.FincaSchema,
	UsedIn: "parcelas",
	Procedures: Procedures{
		Create:  "sp_insertfinca",
		GetByID: "sp_GetFinca",
		Update:  "actualizar_finca",
		Delete:  "eliminar_finca",
		Search:  "sp_SearchFincas",
		GetAll: []ProcedureCall{
			{Name: "sp_GetAllFincas"},
			{Name: "sp_GetFincaByName", Args: []interface{}{""}},
			{Name: "sp_GetFinca", Args: []interface{}{0}},
		},
		Fields: models.FincaSchema.Names(),
	},
}

// FincaSummary is a farm record plus completeness flags
type FincaSummary struct {
	Finca        models.Record `json:"finca"`
	HasLocation  bool          `json:"has_location"`
	HasExtension bool          `json:"has_extension"`
	IsComplete   bool          `json:"is_complete"`
}

// FincaService adds the farm-specific queries to the generic controller
type FincaService struct {
	*EntityController
}

func NewFincaService(gw *db.Gateway, opts EntityOptions) *FincaService {
	model := NewEntityModel(gw, FincaDefinition, opts.InUseMarkers, opts.logger())
	capitalize := capitalizeFields("NOMBRE", "TIPO_SUELO_PREDOMINANTE", "region_ubicacion")
	hooks := ControllerHooks{
		PreprocessCreate: capitalize,
		PreprocessUpdate: capitalize,
		PostprocessGet:   fincaDefaults,
	}
	return &FincaService{EntityController: NewEntityController(model, hooks, opts)}
}

// Summary reports whether the farm has a location, an extension, and every
// field filled in.
func (s *FincaService) Summary(ctx context.Context, id interface{}) (*FincaSummary, error) {
	finca, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	complete := true
	for _, f := range models.FincaSchema.Fields {
		if isBlank(finca[f.Name]) {
			complete = false
			break
		}
	}
	return &FincaSummary{
		Finca:        finca,
		HasLocation:  !isBlank(finca["latitud"]) && !isBlank(finca["longitud"]),
		HasExtension: finca["EXTENSION_TOTAL_HECTAREAS"] != nil,
		IsComplete:   complete,
	}, nil
}

// ByRegion lists the farms of a region. A blank region matches nothing.
func (s *FincaService) ByRegion(ctx context.Context, region string) ([]models.Record, error) {
	region = CapitalizeName(region)
	if region == "" {
		return []models.Record{}, nil
	}
	return s.FindBy(ctx, "region_ubicacion", region)
}

// fincaDefaults fills absent text fields with "" so forms never show nulls
func fincaDefaults(_ context.Context, record models.Record) models.Record {
	for _, f := range models.FincaSchema.Fields {
		if f.Kind == models.KindString && record[f.Name] == nil {
			record[f.Name] = ""
		}
	}
	return record
}

func isBlank(v interface{}) bool {
	if v == nil {
		return true
	}
	if s, ok := v.(string); ok {
		return strings.TrimSpace(s) == ""
	}
	return false
}
