package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Estados de una cuenta por cobrar. Solo "pendiente" y "parcial" son
// elegibles para sincronización de pendientes.
const (
	ReceivableStatusPendiente = "pendiente"
	ReceivableStatusParcial   = "parcial"
	ReceivableStatusPagada    = "pagada"
	ReceivableStatusCancelada = "cancelada"
)

// Receivable es una cuenta por cobrar (CXC): la factura de la plataforma que
// se sincroniza como Invoice al sistema contable.
type Receivable struct {
	ID         string
	SucursalID string
	CustomerID string
	Folio      string
	Concepto   string
	Estado     string
	Moneda     string
	Subtotal   decimal.Decimal
	Impuestos  decimal.Decimal
	Total      decimal.Decimal
	Saldo      decimal.Decimal
	FechaEmision     time.Time
	FechaVencimiento time.Time
	Lineas     []ReceivableLine

	ERPSynced   bool
	ERPEntityID string
	ERPLastSync *time.Time

	CreatedAt time.Time
	UpdatedAt time.Time
}

// ReceivableLine es una línea de la cuenta por cobrar.
type ReceivableLine struct {
	ID            string
	ReceivableID  string
	Descripcion   string
	ClaveProdServ string // c_ClaveProdServ del SAT (passthrough al ERP/CFDI)
	Cantidad      decimal.Decimal
	PrecioUnitario decimal.Decimal
	Importe       decimal.Decimal
	TasaIVA       decimal.Decimal // ej. 0.16
}
