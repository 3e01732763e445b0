package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Estados de un pago recibido. Solo "aplicado" es elegible para sincronización.
const (
	PaymentStatusAplicado  = "aplicado"
	PaymentStatusPendiente = "pendiente"
	PaymentStatusDevuelto  = "devuelto"
)

// ReceivedPayment es un pago recibido de un cliente, aplicado contra una
// cuenta por cobrar. Se sincroniza como Payment al sistema contable.
type ReceivedPayment struct {
	ID           string
	SucursalID   string
	CustomerID   string
	ReceivableID string
	Folio        string
	Estado       string
	Moneda       string
	Monto        decimal.Decimal
	FormaPago    string // c_FormaPago SAT (01 efectivo, 03 transferencia, ...)
	Referencia   string
	FechaPago    time.Time

	ERPSynced   bool
	ERPEntityID string
	ERPLastSync *time.Time

	CreatedAt time.Time
	UpdatedAt time.Time
}
