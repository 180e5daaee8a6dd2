package models

// All returns every model the application migrates, parents first
func All() []interface{} {
	return []interface{}{
		&Finca{},
		&Cultivo{},
		&Parcela{},
		&Cliente{},
		&Hotel{},
		&AuditLog{},
	}
}

// Schemas returns the entity schemas in tab order
func Schemas() []EntitySchema {
	return []EntitySchema{FincaSchema, CultivoSchema, ParcelaSchema, ClienteSchema, HotelSchema}
}
