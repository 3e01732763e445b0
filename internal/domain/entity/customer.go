package entity

import "time"

// Customer representa un cliente de la plataforma (origen de UnifiedCustomer).
type Customer struct {
	ID         string
	SucursalID string
	Nombre     string
	RFC        string
	Email      string
	Telefono   string
	Direccion  string
	CP         string // código postal (DomicilioFiscalReceptor en CFDI)
	Regimen    string // régimen fiscal SAT del receptor

	// Escritura del orquestador tras sincronizar con éxito.
	ERPSynced   bool
	ERPEntityID string
	ERPLastSync *time.Time

	CreatedAt time.Time
	UpdatedAt time.Time
}
