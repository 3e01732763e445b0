package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Estados de una cuenta por pagar.
const (
	BillStatusPendiente = "pendiente"
	BillStatusParcial   = "parcial"
	BillStatusPagada    = "pagada"
)

// Bill es una cuenta por pagar (CXP) a un proveedor. Se sincroniza como Bill
// al sistema contable; requiere que el proveedor ya esté mapeado.
type Bill struct {
	ID         string
	SucursalID string
	VendorID   string
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

	ERPSynced   bool
	ERPEntityID string
	ERPLastSync *time.Time

	CreatedAt time.Time
	UpdatedAt time.Time
}

// BillPayment es un pago emitido a un proveedor contra una cuenta por pagar.
type BillPayment struct {
	ID         string
	SucursalID string
	VendorID   string
	BillID     string
	Folio      string
	Moneda     string
	Monto      decimal.Decimal
	FormaPago  string
	Referencia string
	FechaPago  time.Time

	ERPSynced   bool
	ERPEntityID string
	ERPLastSync *time.Time

	CreatedAt time.Time
	UpdatedAt time.Time
}
