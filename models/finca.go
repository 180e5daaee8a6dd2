package models

// Finca represents a farm
type Finca struct {
	ID                  int64    `gorm:"column:ID_finca;primaryKey;autoIncrement" json:"ID_finca"`
	Nombre              string   `gorm:"column:NOMBRE;size:100;not null" json:"NOMBRE"`
	Latitud             *string  `gorm:"column:latitud;size:20" json:"latitud,omitempty"`
	Longitud            *string  `gorm:"column:longitud;size:20" json:"longitud,omitempty"`
	ExtensionHectareas  *float64 `gorm:"column:EXTENSION_TOTAL_HECTAREAS" json:"EXTENSION_TOTAL_HECTAREAS,omitempty"`
	AltitudMetros       *int64   `gorm:"column:ALTITUD_METROS" json:"ALTITUD_METROS,omitempty"`
	TemperaturaPromedio *float64 `gorm:"column:TEMPERATURA_PROMEDIO_ANUAL_fg" json:"TEMPERATURA_PROMEDIO_ANUAL_fg,omitempty"`
	TipoSuelo           *string  `gorm:"column:TIPO_SUELO_PREDOMINANTE;size:50" json:"TIPO_SUELO_PREDOMINANTE,omitempty"`
	Region              *string  `gorm:"column:region_ubicacion;size:50;index" json:"region_ubicacion,omitempty"`
}

// TableName specifies the table name
func (Finca) TableName() string {
	return "FINCAS"
}

var FincaSchema = EntitySchema{
	Entity:     "Finca",
	Plural:     "fincas",
	Table:      "FINCAS",
	PrimaryKey: "ID_finca",
	Fields: []FieldSchema{
		{Name: "NOMBRE", Label: "Nombre de la Finca", Kind: KindString, Required: true, MaxLength: 100, Search: true},
		{Name: "latitud", Label: "Latitud", Kind: KindString, MaxLength: 20},
		{Name: "longitud", Label: "Longitud", Kind: KindString, MaxLength: 20},
		{Name: "EXTENSION_TOTAL_HECTAREAS", Label: "Extensión Total Hectáreas", Kind: KindFloat, Min: bound(0)},
		{Name: "ALTITUD_METROS", Label: "Altitud Metros", Kind: KindInt, Min: bound(0)},
		{Name: "TEMPERATURA_PROMEDIO_ANUAL_fg", Label: "Temperatura Promedio Anual", Kind: KindFloat},
		{Name: "TIPO_SUELO_PREDOMINANTE", Label: "Tipo Suelo Predominante", Kind: KindString, MaxLength: 50, Search: true,
			Options: []string{"Arcilloso", "Arenoso", "Limoso", "Franco", "Volcánico"}},
		{Name: "region_ubicacion", Label: "Región Ubicación", Kind: KindString, MaxLength: 50, Search: true},
	},
}
