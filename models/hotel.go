package models

// Hotel represents a partner hotel
type Hotel struct {
	ID                   int64   `gorm:"column:id_hotel;primaryKey;autoIncrement" json:"id_hotel"`
	NombreHotel          string  `gorm:"column:nombre_hotel;size:150;not null" json:"NOMBRE_HOTEL"`
	Categoria            *int64  `gorm:"column:categoria" json:"CATEGORIA,omitempty"`
	Direccion            string  `gorm:"column:direccion;size:200;not null" json:"DIRECCION"`
	Telefono             *int64  `gorm:"column:telefono" json:"TELEFONO,omitempty"`
	Correo               *string `gorm:"column:correo;size:100" json:"CORREO,omitempty"`
	AnioInauguracion     *int64  `gorm:"column:año_inauguracion" json:"ANIO_INAUGURACION,omitempty"`
	NumeroHabitantes     *int64  `gorm:"column:numero_total_habitantes" json:"HABITANTES,omitempty"`
	ServiciosDisponibles *string `gorm:"column:servicios_disponibles;type:text" json:"SERVICIOS,omitempty"`
	CheckIn              *string `gorm:"column:horarios_check_in;size:8" json:"CHECKIN,omitempty"`
	CheckOut             *string `gorm:"column:horarios_check_out;size:8" json:"CHECKOUT,omitempty"`
	GerenteResponsable   *string `gorm:"column:gerente_responsable;size:100" json:"GERENTE,omitempty"`
}

// TableName specifies the table name
func (Hotel) TableName() string {
	return "hoteles"
}

var HotelSchema = EntitySchema{
	Entity:     "Hotel",
	Plural:     "hoteles",
	Table:      "hoteles",
	PrimaryKey: "id_hotel",
	Fields: []FieldSchema{
		{Name: "NOMBRE_HOTEL", Column: "nombre_hotel", Label: "Nombre del hotel", Kind: KindString, Required: true, MaxLength: 150, Search: true},
		{Name: "CATEGORIA", Column: "categoria", Label: "Categoría", Kind: KindInt, Min: bound(1), Max: bound(5)},
		{Name: "DIRECCION", Column: "direccion", Label: "Dirección", Kind: KindString, Required: true, MaxLength: 200, Search: true},
		{Name: "TELEFONO", Column: "telefono", Label: "Teléfono", Kind: KindInt, Min: bound(0)},
		{Name: "CORREO", Column: "correo", Label: "Correo", Kind: KindEmail, MaxLength: 100},
		{Name: "ANIO_INAUGURACION", Column: "año_inauguracion", Label: "Año de inauguración", Kind: KindInt, Min: bound(1800), Max: bound(2100)},
		{Name: "HABITANTES", Column: "numero_total_habitantes", Label: "Número total de habitaciones", Kind: KindInt, Min: bound(0)},
		{Name: "SERVICIOS", Column: "servicios_disponibles", Label: "Servicios disponibles", Kind: KindText, MaxLength: 500},
		{Name: "CHECKIN", Column: "horarios_check_in", Label: "Horario check-in", Kind: KindTime},
		{Name: "CHECKOUT", Column: "horarios_check_out", Label: "Horario check-out", Kind: KindTime},
		{Name: "GERENTE", Column: "gerente_responsable", Label: "Gerente responsable", Kind: KindString, MaxLength: 100, Search: true},
	},
}
