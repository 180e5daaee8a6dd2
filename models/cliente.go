package models

// Cliente represents a customer of the farm's hospitality line
type Cliente struct {
	ID                        int64   `gorm:"column:id_cliente;primaryKey;autoIncrement" json:"id_cliente"`
	Nombre                    string  `gorm:"column:nombre;size:100;not null" json:"NOMBRE"`
	Apellido                  string  `gorm:"column:apellido;size:100;not null" json:"APELLIDO"`
	DocumentoIdentidad        int64   `gorm:"column:documento_identidad;not null;index" json:"DOCUMENTO_IDENTIDAD"`
	Nacionalidad              *string `gorm:"column:nacionalidad;size:50" json:"NACIONALIDAD,omitempty"`
	FechaNacimiento           *string `gorm:"column:fecha_nacimiento;type:date" json:"FECHA_NACIMIENTO,omitempty"`
	Direccion                 *string `gorm:"column:direccion;size:200" json:"DIRECCION,omitempty"`
	Telefono                  *int64  `gorm:"column:telefono" json:"TELEFONO,omitempty"`
	Correo                    *string `gorm:"column:correo;size:100" json:"CORREO,omitempty"`
	PreferenciasEspeciales    *string `gorm:"column:preferencias_especiales;type:text" json:"PREFERENCIAS_ESPECIALES,omitempty"`
	NivelProgramaFidelizacion *string `gorm:"column:nivel_programa_fidelizacion;size:50" json:"NIVEL_PROGRAMA_FIDELIZACION,omitempty"`
}

// TableName specifies the table name
func (Cliente) TableName() string {
	return "clientes"
}

var ClienteSchema = EntitySchema{
	Entity:     "Cliente",
	Plural:     "clientes",
	Table:      "clientes",
	PrimaryKey: "id_cliente",
	Fields: []FieldSchema{
		{Name: "NOMBRE", Column: "nombre", Label: "Nombre", Kind: KindString, Required: true, MaxLength: 100, Search: true},
		{Name: "APELLIDO", Column: "apellido", Label: "Apellido", Kind: KindString, Required: true, MaxLength: 100, Search: true},
		{Name: "DOCUMENTO_IDENTIDAD", Column: "documento_identidad", Label: "Documento de identidad", Kind: KindInt, Required: true, Min: bound(1), Search: true},
		{Name: "NACIONALIDAD", Column: "nacionalidad", Label: "Nacionalidad", Kind: KindString, MaxLength: 50},
		{Name: "FECHA_NACIMIENTO", Column: "fecha_nacimiento", Label: "Fecha de nacimiento", Kind: KindDate},
		{Name: "DIRECCION", Column: "direccion", Label: "Dirección", Kind: KindString, MaxLength: 200},
		{Name: "TELEFONO", Column: "telefono", Label: "Teléfono", Kind: KindInt, Min: bound(0)},
		{Name: "CORREO", Column: "correo", Label: "Correo", Kind: KindEmail, MaxLength: 100, Search: true},
		{Name: "PREFERENCIAS_ESPECIALES", Column: "preferencias_especiales", Label: "Preferencias especiales", Kind: KindText, MaxLength: 500},
		{Name: "NIVEL_PROGRAMA_FIDELIZACION", Column: "nivel_programa_fidelizacion", Label: "Nivel programa de fidelización", Kind: KindString, MaxLength: 50,
			Options: []string{"Bronce", "Plata", "Oro", "Platino"}},
	},
}
