package entity

import "time"

// Tipos de entidad sincronizable (spirit_entity_type en mapeo_erp_entidades).
const (
	EntityCustomer    = "customer"
	EntityInvoice     = "invoice"
	EntityPayment     = "payment"
	EntityVendor      = "vendor"
	EntityBill        = "bill"
	EntityBillPayment = "bill_payment"
	EntityCreditMemo  = "credit_memo"
)

// Direcciones de sincronización.
const (
	DirectionSpiritToERP = "spirit_to_erp"
	DirectionERPToSpirit = "erp_to_spirit"
)

// MappingKey es la llave natural del mapeo: una fila activa como máximo por llave.
type MappingKey struct {
	SucursalID string
	Provider   string
	EntityType string
	EntityID   string
}

// EntityMapping es la fila durable que cruza un registro de la plataforma con
// su contraparte en el sistema externo para un proveedor. El upsert sobre la
// llave natural incrementa SyncVersion: esa es la garantía de idempotencia.
type EntityMapping struct {
	ID                string
	SucursalID        string
	ERPProvider       string
	SpiritEntityType  string
	SpiritEntityID    string
	SpiritFolio       string // folio humano de la plataforma (ej. número de factura)
	ERPEntityType     string
	ERPEntityID       string
	ERPEntityNumber   string
	LastSyncedAt      time.Time
	LastSyncDirection string
	SyncVersion       int
	CreatedAt         time.Time
}

// Key devuelve la llave natural del mapeo.
func (m *EntityMapping) Key() MappingKey {
	return MappingKey{
		SucursalID: m.SucursalID,
		Provider:   m.ERPProvider,
		EntityType: m.SpiritEntityType,
		EntityID:   m.SpiritEntityID,
	}
}
