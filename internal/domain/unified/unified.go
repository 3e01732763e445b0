// Package unified define el modelo financiero unificado: DTOs planos,
// agnósticos del adaptador, construidos en cada intento de sincronización a
// partir del registro nativo vigente. Son transitorios: nunca se persisten.
package unified

import (
	"time"

	"github.com/shopspring/decimal"
	"github.com/spirittours/erp-hub/internal/domain/entity"
)

// DefaultCurrency se aplica cuando el registro nativo no trae moneda.
const DefaultCurrency = "MXN"

// UnifiedCustomer representación unificada de un cliente.
type UnifiedCustomer struct {
	ID           string
	ERPID        string // vacío hasta que exista mapeo; con valor, el adaptador actualiza
	Name         string
	RFC          string
	Email        string
	Phone        string
	Address      string
	Currency     string
	CustomFields map[string]string
}

// UnifiedInvoiceLine línea de factura unificada.
type UnifiedInvoiceLine struct {
	Description string
	ItemCode    string
	Quantity    decimal.Decimal
	UnitPrice   decimal.Decimal
	Amount      decimal.Decimal
	TaxRate     decimal.Decimal
}

// UnifiedInvoice representación unificada de una factura (CXC).
type UnifiedInvoice struct {
	ID            string
	ERPID         string
	CustomerID    string // id de plataforma del cliente
	CustomerERPID string // id externo resuelto vía mapeo (dependencia)
	Folio         string
	Currency      string
	Subtotal      decimal.Decimal
	TaxTotal      decimal.Decimal
	Total         decimal.Decimal
	Balance       decimal.Decimal
	IssueDate     time.Time
	DueDate       time.Time
	Lines         []UnifiedInvoiceLine
	CustomFields  map[string]string
}

// UnifiedPayment representación unificada de un pago recibido.
type UnifiedPayment struct {
	ID            string
	ERPID         string
	CustomerID    string
	CustomerERPID string
	InvoiceID     string
	InvoiceERPID  string
	Folio         string
	Currency      string
	Amount        decimal.Decimal
	Method        string
	Reference     string
	Date          time.Time
	CustomFields  map[string]string
}

// UnifiedVendor representación unificada de un proveedor.
type UnifiedVendor struct {
	ID           string
	ERPID        string
	Name         string
	RFC          string
	Email        string
	Phone        string
	Currency     string
	CustomFields map[string]string
}

// UnifiedBill representación unificada de una cuenta por pagar.
type UnifiedBill struct {
	ID           string
	ERPID        string
	VendorID     string
	VendorERPID  string
	Folio        string
	Currency     string
	Subtotal     decimal.Decimal
	TaxTotal     decimal.Decimal
	Total        decimal.Decimal
	Balance      decimal.Decimal
	IssueDate    time.Time
	DueDate      time.Time
	Memo         string
	CustomFields map[string]string
}

// UnifiedBillPayment representación unificada de un pago a proveedor.
type UnifiedBillPayment struct {
	ID           string
	ERPID        string
	VendorID     string
	VendorERPID  string
	BillID       string
	BillERPID    string
	Folio        string
	Currency     string
	Amount       decimal.Decimal
	Method       string
	Reference    string
	Date         time.Time
	CustomFields map[string]string
}

// UnifiedCreditMemo representación unificada de una nota de crédito emitida
// contra una factura (devoluciones o ajustes de reservas).
type UnifiedCreditMemo struct {
	ID            string
	ERPID         string
	CustomerID    string
	CustomerERPID string
	InvoiceID     string
	InvoiceERPID  string
	Folio         string
	Currency      string
	Amount        decimal.Decimal
	Reason        string
	Date          time.Time
	CustomFields  map[string]string
}

// ── Constructores desde registros nativos ────────────────────────────────────
//
// Cada constructor recibe el registro nativo fresco y los ids externos de sus
// dependencias ya resueltos por el orquestador. Los montos siempre son
// decimales, nunca strings formateados; las fechas sólo se rellenan con "ahora"
// cuando faltan en el origen.

// FromCustomer construye el unificado a partir del cliente nativo.
func FromCustomer(c *entity.Customer, erpID string) *UnifiedCustomer {
	return &UnifiedCustomer{
		ID:       c.ID,
		ERPID:    erpID,
		Name:     c.Nombre,
		RFC:      c.RFC,
		Email:    c.Email,
		Phone:    c.Telefono,
		Address:  c.Direccion,
		Currency: DefaultCurrency,
		CustomFields: map[string]string{
			"sucursal_id":   c.SucursalID,
			"codigo_postal": c.CP,
			"regimen":       c.Regimen,
		},
	}
}

// FromReceivable construye la factura unificada. customerERPID es el id
// externo del cliente ya mapeado (dependencia obligatoria).
func FromReceivable(r *entity.Receivable, erpID, customerERPID string) *UnifiedInvoice {
	inv := &UnifiedInvoice{
		ID:            r.ID,
		ERPID:         erpID,
		CustomerID:    r.CustomerID,
		CustomerERPID: customerERPID,
		Folio:         r.Folio,
		Currency:      currencyOrDefault(r.Moneda),
		Subtotal:      r.Subtotal,
		TaxTotal:      r.Impuestos,
		Total:         r.Total,
		Balance:       r.Saldo,
		IssueDate:     dateOrNow(r.FechaEmision),
		DueDate:       dateOrNow(r.FechaVencimiento),
		CustomFields: map[string]string{
			"sucursal_id": r.SucursalID,
			"concepto":    r.Concepto,
		},
	}
	for _, l := range r.Lineas {
		inv.Lines = append(inv.Lines, UnifiedInvoiceLine{
			Description: l.Descripcion,
			ItemCode:    l.ClaveProdServ,
			Quantity:    l.Cantidad,
			UnitPrice:   l.PrecioUnitario,
			Amount:      l.Importe,
			TaxRate:     l.TasaIVA,
		})
	}
	return inv
}

// FromPayment construye el pago unificado con las dependencias resueltas
// (cliente y factura ya mapeados).
func FromPayment(p *entity.ReceivedPayment, erpID, customerERPID, invoiceERPID string) *UnifiedPayment {
	return &UnifiedPayment{
		ID:            p.ID,
		ERPID:         erpID,
		CustomerID:    p.CustomerID,
		CustomerERPID: customerERPID,
		InvoiceID:     p.ReceivableID,
		InvoiceERPID:  invoiceERPID,
		Folio:         p.Folio,
		Currency:      currencyOrDefault(p.Moneda),
		Amount:        p.Monto,
		Method:        p.FormaPago,
		Reference:     p.Referencia,
		Date:          dateOrNow(p.FechaPago),
		CustomFields: map[string]string{
			"sucursal_id": p.SucursalID,
		},
	}
}

// FromVendor construye el proveedor unificado.
func FromVendor(v *entity.Vendor, erpID string) *UnifiedVendor {
	return &UnifiedVendor{
		ID:       v.ID,
		ERPID:    erpID,
		Name:     v.Nombre,
		RFC:      v.RFC,
		Email:    v.Email,
		Phone:    v.Telefono,
		Currency: DefaultCurrency,
		CustomFields: map[string]string{
			"sucursal_id": v.SucursalID,
			"categoria":   v.Categoria,
		},
	}
}

// FromBill construye la cuenta por pagar unificada; requiere el proveedor mapeado.
func FromBill(b *entity.Bill, erpID, vendorERPID string) *UnifiedBill {
	return &UnifiedBill{
		ID:          b.ID,
		ERPID:       erpID,
		VendorID:    b.VendorID,
		VendorERPID: vendorERPID,
		Folio:       b.Folio,
		Currency:    currencyOrDefault(b.Moneda),
		Subtotal:    b.Subtotal,
		TaxTotal:    b.Impuestos,
		Total:       b.Total,
		Balance:     b.Saldo,
		IssueDate:   dateOrNow(b.FechaEmision),
		DueDate:     dateOrNow(b.FechaVencimiento),
		Memo:        b.Concepto,
		CustomFields: map[string]string{
			"sucursal_id": b.SucursalID,
		},
	}
}

// FromBillPayment construye el pago a proveedor unificado; requiere proveedor
// y cuenta por pagar mapeados.
func FromBillPayment(p *entity.BillPayment, erpID, vendorERPID, billERPID string) *UnifiedBillPayment {
	return &UnifiedBillPayment{
		ID:          p.ID,
		ERPID:       erpID,
		VendorID:    p.VendorID,
		VendorERPID: vendorERPID,
		BillID:      p.BillID,
		BillERPID:   billERPID,
		Folio:       p.Folio,
		Currency:    currencyOrDefault(p.Moneda),
		Amount:      p.Monto,
		Method:      p.FormaPago,
		Reference:   p.Referencia,
		Date:        dateOrNow(p.FechaPago),
		CustomFields: map[string]string{
			"sucursal_id": p.SucursalID,
		},
	}
}

// FromRefund construye una nota de crédito unificada a partir de la cuenta por
// cobrar original y el monto devuelto.
func FromRefund(r *entity.Receivable, erpID, customerERPID, invoiceERPID string, amount decimal.Decimal, reason string) *UnifiedCreditMemo {
	return &UnifiedCreditMemo{
		ID:            r.ID,
		ERPID:         erpID,
		CustomerID:    r.CustomerID,
		CustomerERPID: customerERPID,
		InvoiceID:     r.ID,
		InvoiceERPID:  invoiceERPID,
		Folio:         r.Folio,
		Currency:      currencyOrDefault(r.Moneda),
		Amount:        amount,
		Reason:        reason,
		Date:          time.Now(),
		CustomFields: map[string]string{
			"sucursal_id": r.SucursalID,
		},
	}
}

func currencyOrDefault(m string) string {
	if m == "" {
		return DefaultCurrency
	}
	return m
}

func dateOrNow(t time.Time) time.Time {
	if t.IsZero() {
		return time.Now()
	}
	return t
}
