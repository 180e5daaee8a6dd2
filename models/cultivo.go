package models

// Cultivo represents a crop species
type Cultivo struct {
	ID                  int64   `gorm:"column:id_cultivo;primaryKey;autoIncrement" json:"id_cultivo"`
	NombreCientifico    string  `gorm:"column:nombre_cientifico;size:150;not null" json:"NOMBRE_CIENTIFICO"`
	NombreComun         string  `gorm:"column:nombre_comun;size:100;not null" json:"NOMBRE_COMUN"`
	TiempoCrecimiento   int64   `gorm:"column:tiempo_crecimiento_dias;not null" json:"TIEMPO_CRECIMIENTO_DIAS"`
	TemperaturasOptimas float64 `gorm:"column:temperaturas_optimas;not null" json:"TEMPERATURAS_OPTIMAS"`
	RequerimientoAgua   *string `gorm:"column:requerimiento_agua_semanal;type:text" json:"REQUERIMIENTO_AGUA_SEMANAL,omitempty"`
	Photo               *string `gorm:"column:photo;size:255" json:"PHOTO,omitempty"` // storage key
}

// TableName specifies the table name
func (Cultivo) TableName() string {
	return "cultivos"
}

var CultivoSchema = EntitySchema{
	Entity:     "Cultivo",
	Plural:     "cultivos",
	Table:      "cultivos",
	PrimaryKey: "id_cultivo",
	Fields: []FieldSchema{
		{Name: "NOMBRE_CIENTIFICO", Column: "nombre_cientifico", Label: "Nombre científico", Kind: KindString, Required: true, MaxLength: 150, Search: true},
		{Name: "NOMBRE_COMUN", Column: "nombre_comun", Label: "Nombre común", Kind: KindString, Required: true, MaxLength: 100, Search: true},
		{Name: "TIEMPO_CRECIMIENTO_DIAS", Column: "tiempo_crecimiento_dias", Label: "Tiempo de crecimiento (días)", Kind: KindInt, Required: true, Min: bound(1)},
		{Name: "TEMPERATURAS_OPTIMAS", Column: "temperaturas_optimas", Label: "Temperatura óptima", Kind: KindFloat, Required: true},
		{Name: "REQUERIMIENTO_AGUA_SEMANAL", Column: "requerimiento_agua_semanal", Label: "Requerimiento de agua semanal", Kind: KindText, MaxLength: 500},
		{Name: "PHOTO", Column: "photo", Label: "Foto", Kind: KindString, MaxLength: 255, ReadOnly: true},
	},
}
