package erp

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/spirittours/erp-hub/internal/domain/unified"
)

// SyncResult es el resultado de una operación de sincronización hacia el ERP.
// ERPEntityID es el identificador nativo asignado por el sistema contable.
type SyncResult struct {
	ERPEntityID     string
	ERPEntityNumber string // folio/número humano (DocNumber, folio de factura)
	Data            map[string]any
}

// ConnectionResult es el resultado de TestConnection. Nunca viaja como error:
// una conexión fallida es un resultado, no una falla del adaptador.
type ConnectionResult struct {
	Connected bool
	Message   string
	CheckedAt time.Time
}

// AdapterInfo describe un adaptador y sus capacidades.
type AdapterInfo struct {
	Provider      string
	DisplayName   string
	Version       string
	Authenticated bool
	LastSync      *time.Time
	ErrorCount    int
	Capabilities  []string
}

// AdapterError es un error operativo registrado por el adaptador para
// diagnóstico posterior (GetErrors).
type AdapterError struct {
	Operation  string
	Message    string
	OccurredAt time.Time
}

// Account es una cuenta del catálogo contable del ERP.
type Account struct {
	ERPID          string
	Name           string
	Number         string
	Type           string
	Classification string
	Balance        string
	Currency       string
	Active         bool
}

// ReportRow es un renglón de un reporte financiero (P&L, balance general).
type ReportRow struct {
	Label    string
	Amount   string
	Group    string
	Children []ReportRow
}

// Report es un reporte financiero plano devuelto por el ERP.
type Report struct {
	Name      string
	Currency  string
	StartDate time.Time
	EndDate   time.Time
	Rows      []ReportRow
}

// AccountingAdapter es el contrato que todo conector contable implementa.
// Las operaciones Sync* son idempotentes respecto al ERP cuando la entidad
// unificada trae ERPID: en ese caso actualizan en lugar de crear.
//
// Un proveedor que no soporta una operación regresa *UnsupportedError, nunca
// un error genérico: el orquestador distingue "no soportado" de "falló".
type AccountingAdapter interface {
	// Authenticate establece o renueva las credenciales contra el ERP.
	Authenticate(ctx context.Context) error
	// TestConnection verifica conectividad. No regresa error: el fallo de
	// conexión se reporta dentro del resultado.
	TestConnection(ctx context.Context) ConnectionResult

	SyncCustomer(ctx context.Context, c *unified.UnifiedCustomer) (*SyncResult, error)
	SyncInvoice(ctx context.Context, inv *unified.UnifiedInvoice) (*SyncResult, error)
	SyncPayment(ctx context.Context, p *unified.UnifiedPayment) (*SyncResult, error)
	SyncVendor(ctx context.Context, v *unified.UnifiedVendor) (*SyncResult, error)
	SyncBill(ctx context.Context, b *unified.UnifiedBill) (*SyncResult, error)
	SyncBillPayment(ctx context.Context, bp *unified.UnifiedBillPayment) (*SyncResult, error)
	SyncCreditMemo(ctx context.Context, cm *unified.UnifiedCreditMemo) (*SyncResult, error)

	GetCustomer(ctx context.Context, erpID string) (*unified.UnifiedCustomer, error)
	GetInvoice(ctx context.Context, erpID string) (*unified.UnifiedInvoice, error)
	GetPayment(ctx context.Context, erpID string) (*unified.UnifiedPayment, error)
	GetVendor(ctx context.Context, erpID string) (*unified.UnifiedVendor, error)
	GetBill(ctx context.Context, erpID string) (*unified.UnifiedBill, error)
	GetBillPayment(ctx context.Context, erpID string) (*unified.UnifiedBillPayment, error)
	GetCreditMemo(ctx context.Context, erpID string) (*unified.UnifiedCreditMemo, error)
	UpdateCustomer(ctx context.Context, erpID string, c *unified.UnifiedCustomer) (*SyncResult, error)
	VoidInvoice(ctx context.Context, erpID string) (*SyncResult, error)

	GetChartOfAccounts(ctx context.Context) ([]Account, error)
	GetAccount(ctx context.Context, erpID string) (*Account, error)
	GetProfitAndLossReport(ctx context.Context, start, end time.Time) (*Report, error)
	GetBalanceSheetReport(ctx context.Context, asOf time.Time) (*Report, error)

	GetErrors() []AdapterError
	ClearErrors()
	GetInfo() AdapterInfo
}

// UnsupportedError indica que el proveedor no implementa una operación.
// No es reintentable y el orquestador la registra como error terminal.
type UnsupportedError struct {
	Provider  string
	Operation string
}

func (e *UnsupportedError) Error() string {
	return fmt.Sprintf("erp: el proveedor %s no soporta la operación %s", e.Provider, e.Operation)
}

// IsUnsupported reporta si err (o su cadena) es un *UnsupportedError.
func IsUnsupported(err error) bool {
	var ue *UnsupportedError
	return errors.As(err, &ue)
}

// BaseAdapter aporta el estado compartido de todo adaptador: autenticación,
// registro de errores operativos y última sincronización. Los adaptadores
// concretos lo embeben; el acceso es seguro para uso concurrente.
type BaseAdapter struct {
	provider    string
	displayName string
	version     string

	mu            sync.Mutex
	authenticated bool
	lastSync      *time.Time
	errs          []AdapterError
}

// NewBaseAdapter construye el estado base de un adaptador.
func NewBaseAdapter(provider, displayName, version string) BaseAdapter {
	return BaseAdapter{provider: provider, displayName: displayName, version: version}
}

// Provider regresa el identificador del proveedor (quickbooks, contpaqi...).
func (b *BaseAdapter) Provider() string { return b.provider }

// SetAuthenticated marca el estado de autenticación del adaptador.
func (b *BaseAdapter) SetAuthenticated(ok bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.authenticated = ok
}

// Authenticated reporta si el adaptador tiene sesión válida.
func (b *BaseAdapter) Authenticated() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.authenticated
}

// TouchLastSync registra el momento de la última sincronización exitosa.
func (b *BaseAdapter) TouchLastSync() {
	now := time.Now()
	b.mu.Lock()
	defer b.mu.Unlock()
	b.lastSync = &now
}

// RecordError agrega un error operativo al registro del adaptador.
func (b *BaseAdapter) RecordError(operation string, err error) {
	if err == nil {
		return
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	b.errs = append(b.errs, AdapterError{
		Operation:  operation,
		Message:    err.Error(),
		OccurredAt: time.Now(),
	})
}

// GetErrors regresa una copia del registro de errores operativos.
func (b *BaseAdapter) GetErrors() []AdapterError {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := make([]AdapterError, len(b.errs))
	copy(out, b.errs)
	return out
}

// ClearErrors vacía el registro de errores operativos.
func (b *BaseAdapter) ClearErrors() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.errs = nil
}

// Info arma el AdapterInfo base; el adaptador concreto agrega capacidades.
func (b *BaseAdapter) Info(capabilities []string) AdapterInfo {
	b.mu.Lock()
	defer b.mu.Unlock()
	return AdapterInfo{
		Provider:      b.provider,
		DisplayName:   b.displayName,
		Version:       b.version,
		Authenticated: b.authenticated,
		LastSync:      b.lastSync,
		ErrorCount:    len(b.errs),
		Capabilities:  capabilities,
	}
}

// Unsupported es el helper con el que un adaptador concreto declara una
// operación fuera de su capacidad.
func (b *BaseAdapter) Unsupported(operation string) *UnsupportedError {
	return &UnsupportedError{Provider: b.provider, Operation: operation}
}
