package entity

import "time"

// Vendor representa un proveedor de la plataforma (operadores de tours,
// hoteles, transportistas) que se sincroniza al sistema contable.
type Vendor struct {
	ID         string
	SucursalID string
	Nombre     string
	RFC        string
	Email      string
	Telefono   string
	Categoria  string // categoría original de la plataforma (passthrough)

	ERPSynced   bool
	ERPEntityID string
	ERPLastSync *time.Time

	CreatedAt time.Time
	UpdatedAt time.Time
}
