package models

// Parcela represents a plot inside a farm, optionally planted with a crop
type Parcela struct {
	ID             int64    `gorm:"column:ID_PARCELA;primaryKey;autoIncrement" json:"ID_PARCELA"`
	AreaHectareas  float64  `gorm:"column:AREA_HECTAREAS_PARCELA;not null" json:"AREA_HECTAREAS_PARCELA"`
	SistemaRiego   *string  `gorm:"column:SISTEMA_RIEGO;size:50" json:"SISTEMA_RIEGO,omitempty"`
	HistorialDeUso *string  `gorm:"column:HISTORIAL_DE_USO;size:500" json:"HISTORIAL_DE_USO,omitempty"`
	FincaID        *int64   `gorm:"column:ID_FINCA;index" json:"ID_FINCA,omitempty"`
	CultivoID      *int64   `gorm:"column:ID_CULTIVO;index" json:"ID_CULTIVO,omitempty"`

	// belongs-to; FK field names must not resolve to a column of the parent
	Finca   *Finca   `gorm:"foreignKey:FincaID;references:ID;constraint:OnUpdate:CASCADE,OnDelete:RESTRICT" json:"-"`
	Cultivo *Cultivo `gorm:"foreignKey:CultivoID;references:ID;constraint:OnUpdate:CASCADE,OnDelete:RESTRICT" json:"-"`
}

// TableName specifies the table name
func (Parcela) TableName() string {
	return "PARCELAS"
}

// Irrigation systems offered by the form; other values are accepted
var SistemasRiego = []string{"Goteo", "Aspersión", "Gravedad", "Microaspersión", "Ninguno"}

var ParcelaSchema = EntitySchema{
	Entity:     "Parcela",
	Plural:     "parcelas",
	Table:      "PARCELAS",
	PrimaryKey: "ID_PARCELA",
	Fields: []FieldSchema{
		{Name: "AREA_HECTAREAS_PARCELA", Label: "Área (hectáreas)", Kind: KindFloat, Required: true, MaxLength: 20, Min: bound(0), MinOpen: true, Search: true},
		{Name: "SISTEMA_RIEGO", Label: "Sistema de riego", Kind: KindString, MaxLength: 50, Options: SistemasRiego, Search: true},
		{Name: "HISTORIAL_DE_USO", Label: "Historial de uso", Kind: KindText, MaxLength: 500, Search: true},
		{Name: "ID_FINCA", Label: "ID Finca", Kind: KindInt, MaxLength: 10, Min: bound(1), Search: true,
			Ref: &Reference{Entity: "Finca", Table: "FINCAS", Column: "ID_finca"}},
		{Name: "ID_CULTIVO", Label: "ID Cultivo", Kind: KindInt, MaxLength: 10, Min: bound(1),
			Ref: &Reference{Entity: "Cultivo", Table: "cultivos", Column: "id_cultivo"}},
	},
}
