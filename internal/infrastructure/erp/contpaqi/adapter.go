// Package contpaqi implementa el adaptador hacia el conector REST de
// CONTPAQi Comercial instalado en el servidor de cada sucursal. Autentica con
// API key y cubre un subconjunto de operaciones: clientes, facturas, pagos y
// proveedores. El resto se declara como no soportado.
package contpaqi

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/spirittours/erp-hub/internal/application/erp"
	"github.com/spirittours/erp-hub/internal/domain"
	"github.com/spirittours/erp-hub/internal/domain/entity"
	"github.com/spirittours/erp-hub/internal/domain/unified"
)

const providerName = "contpaqi"

var capabilities = []string{"customers", "invoices", "payments", "vendors"}

var _ erp.AccountingAdapter = (*Adapter)(nil)

// Adapter conector a CONTPAQi Comercial vía su API REST local.
type Adapter struct {
	erp.BaseAdapter
	apiKey     string
	baseURL    string
	httpClient *http.Client
}

// New construye el adaptador; CONTPAQi requiere api_key y base_url porque el
// conector corre en la red de la sucursal, no en un SaaS.
func New(cfg *entity.ConfiguracionERPSucursal) (*Adapter, error) {
	if cfg.APIKey == "" || cfg.BaseURL == "" {
		return nil, &domain.ConfigurationError{Reason: "contpaqi requiere api_key y base_url"}
	}
	return &Adapter{
		BaseAdapter: erp.NewBaseAdapter(providerName, "CONTPAQi Comercial", "1.x"),
		apiKey:      cfg.APIKey,
		baseURL:     strings.TrimRight(cfg.BaseURL, "/"),
		httpClient:  &http.Client{Timeout: 60 * time.Second},
	}, nil
}

// Builder es el constructor que se registra en el factory de adaptadores.
func Builder(cfg *entity.ConfiguracionERPSucursal) (erp.AccountingAdapter, error) {
	return New(cfg)
}

// ── DTOs del conector ────────────────────────────────────────────────────────

type cpqCliente struct {
	Codigo      string `json:"codigo,omitempty"`
	RazonSocial string `json:"razonSocial"`
	RFC         string `json:"rfc"`
	Email       string `json:"email,omitempty"`
	Telefono    string `json:"telefono,omitempty"`
	Direccion   string `json:"direccion,omitempty"`
	Moneda      string `json:"moneda,omitempty"`
}

type cpqMovimiento struct {
	Descripcion    string          `json:"descripcion"`
	Cantidad       decimal.Decimal `json:"cantidad"`
	PrecioUnitario decimal.Decimal `json:"precioUnitario"`
	Importe        decimal.Decimal `json:"importe"`
}

type cpqDocumento struct {
	Folio         string          `json:"folio,omitempty"`
	CodigoCliente string          `json:"codigoCliente,omitempty"`
	CodigoProv    string          `json:"codigoProveedor,omitempty"`
	Fecha         string          `json:"fecha"`
	Vencimiento   string          `json:"vencimiento,omitempty"`
	Moneda        string          `json:"moneda,omitempty"`
	Subtotal      decimal.Decimal `json:"subtotal"`
	Impuestos     decimal.Decimal `json:"impuestos"`
	Total         decimal.Decimal `json:"total"`
	Saldo         decimal.Decimal `json:"saldo"`
	Movimientos   []cpqMovimiento `json:"movimientos,omitempty"`
	Referencia    string          `json:"referencia,omitempty"`
	FormaPago     string          `json:"formaPago,omitempty"`
}

type cpqResponse struct {
	OK      bool            `json:"ok"`
	ID      string          `json:"id"`
	Folio   string          `json:"folio"`
	Mensaje string          `json:"mensaje"`
	Data    json.RawMessage `json:"data,omitempty"`
}

// ── Operaciones ──────────────────────────────────────────────────────────────

// Authenticate valida la API key contra el conector.
func (a *Adapter) Authenticate(ctx context.Context) error {
	var resp cpqResponse
	if err := a.call(ctx, "authenticate", http.MethodGet, "/api/sesion", nil, &resp); err != nil {
		a.SetAuthenticated(false)
		a.RecordError("authenticate", err)
		return err
	}
	a.SetAuthenticated(true)
	return nil
}

func (a *Adapter) TestConnection(ctx context.Context) erp.ConnectionResult {
	result := erp.ConnectionResult{CheckedAt: time.Now()}
	if err := a.Authenticate(ctx); err != nil {
		result.Message = err.Error()
		return result
	}
	result.Connected = true
	result.Message = "conexión establecida"
	return result
}

func (a *Adapter) SyncCustomer(ctx context.Context, c *unified.UnifiedCustomer) (*erp.SyncResult, error) {
	payload := &cpqCliente{
		Codigo:      c.ERPID,
		RazonSocial: c.Name,
		RFC:         c.RFC,
		Email:       c.Email,
		Telefono:    c.Phone,
		Direccion:   c.Address,
		Moneda:      c.Currency,
	}
	method, path := http.MethodPost, "/api/clientes"
	if c.ERPID != "" {
		method, path = http.MethodPut, "/api/clientes/"+c.ERPID
	}

	var resp cpqResponse
	if err := a.call(ctx, "sync_customer", method, path, payload, &resp); err != nil {
		a.RecordError("sync_customer", err)
		return nil, err
	}
	a.TouchLastSync()
	return &erp.SyncResult{ERPEntityID: resp.ID, ERPEntityNumber: resp.Folio}, nil
}

func (a *Adapter) GetCustomer(ctx context.Context, erpID string) (*unified.UnifiedCustomer, error) {
	var resp cpqResponse
	if err := a.call(ctx, "get_customer", http.MethodGet, "/api/clientes/"+erpID, nil, &resp); err != nil {
		a.RecordError("get_customer", err)
		return nil, err
	}
	var cliente cpqCliente
	if err := json.Unmarshal(resp.Data, &cliente); err != nil {
		return nil, &domain.AdapterOperationError{Provider: providerName, Method: "get_customer", Cause: err}
	}
	return &unified.UnifiedCustomer{
		ERPID:    erpID,
		Name:     cliente.RazonSocial,
		RFC:      cliente.RFC,
		Email:    cliente.Email,
		Phone:    cliente.Telefono,
		Address:  cliente.Direccion,
		Currency: cliente.Moneda,
	}, nil
}

func (a *Adapter) UpdateCustomer(ctx context.Context, erpID string, c *unified.UnifiedCustomer) (*erp.SyncResult, error) {
	clone := *c
	clone.ERPID = erpID
	return a.SyncCustomer(ctx, &clone)
}

func (a *Adapter) SyncInvoice(ctx context.Context, inv *unified.UnifiedInvoice) (*erp.SyncResult, error) {
	payload := &cpqDocumento{
		Folio:         inv.Folio,
		CodigoCliente: inv.CustomerERPID,
		Fecha:         inv.IssueDate.Format("2006-01-02"),
		Vencimiento:   inv.DueDate.Format("2006-01-02"),
		Moneda:        inv.Currency,
		Subtotal:      inv.Subtotal,
		Impuestos:     inv.TaxTotal,
		Total:         inv.Total,
		Saldo:         inv.Balance,
	}
	for _, l := range inv.Lines {
		payload.Movimientos = append(payload.Movimientos, cpqMovimiento{
			Descripcion:    l.Description,
			Cantidad:       l.Quantity,
			PrecioUnitario: l.UnitPrice,
			Importe:        l.Amount,
		})
	}
	method, path := http.MethodPost, "/api/facturas"
	if inv.ERPID != "" {
		method, path = http.MethodPut, "/api/facturas/"+inv.ERPID
	}

	var resp cpqResponse
	if err := a.call(ctx, "sync_invoice", method, path, payload, &resp); err != nil {
		a.RecordError("sync_invoice", err)
		return nil, err
	}
	a.TouchLastSync()
	return &erp.SyncResult{ERPEntityID: resp.ID, ERPEntityNumber: resp.Folio}, nil
}

func (a *Adapter) GetInvoice(ctx context.Context, erpID string) (*unified.UnifiedInvoice, error) {
	var resp cpqResponse
	if err := a.call(ctx, "get_invoice", http.MethodGet, "/api/facturas/"+erpID, nil, &resp); err != nil {
		a.RecordError("get_invoice", err)
		return nil, err
	}
	var doc cpqDocumento
	if err := json.Unmarshal(resp.Data, &doc); err != nil {
		return nil, &domain.AdapterOperationError{Provider: providerName, Method: "get_invoice", Cause: err}
	}
	inv := &unified.UnifiedInvoice{
		ERPID:         erpID,
		CustomerERPID: doc.CodigoCliente,
		Folio:         doc.Folio,
		Currency:      doc.Moneda,
		Subtotal:      doc.Subtotal,
		TaxTotal:      doc.Impuestos,
		Total:         doc.Total,
		Balance:       doc.Saldo,
	}
	if t, err := time.Parse("2006-01-02", doc.Fecha); err == nil {
		inv.IssueDate = t
	}
	return inv, nil
}

func (a *Adapter) SyncPayment(ctx context.Context, p *unified.UnifiedPayment) (*erp.SyncResult, error) {
	payload := &cpqDocumento{
		Folio:         p.Folio,
		CodigoCliente: p.CustomerERPID,
		Fecha:         p.Date.Format("2006-01-02"),
		Moneda:        p.Currency,
		Total:         p.Amount,
		Referencia:    p.Reference,
		FormaPago:     p.Method,
	}

	var resp cpqResponse
	if err := a.call(ctx, "sync_payment", http.MethodPost, "/api/pagos", payload, &resp); err != nil {
		a.RecordError("sync_payment", err)
		return nil, err
	}
	a.TouchLastSync()
	return &erp.SyncResult{ERPEntityID: resp.ID, ERPEntityNumber: resp.Folio}, nil
}

func (a *Adapter) GetPayment(ctx context.Context, erpID string) (*unified.UnifiedPayment, error) {
	var resp cpqResponse
	if err := a.call(ctx, "get_payment", http.MethodGet, "/api/pagos/"+erpID, nil, &resp); err != nil {
		a.RecordError("get_payment", err)
		return nil, err
	}
	var doc cpqDocumento
	if err := json.Unmarshal(resp.Data, &doc); err != nil {
		return nil, &domain.AdapterOperationError{Provider: providerName, Method: "get_payment", Cause: err}
	}
	p := &unified.UnifiedPayment{
		ERPID:         erpID,
		CustomerERPID: doc.CodigoCliente,
		Folio:         doc.Folio,
		Currency:      doc.Moneda,
		Amount:        doc.Total,
		Method:        doc.FormaPago,
		Reference:     doc.Referencia,
	}
	if t, err := time.Parse("2006-01-02", doc.Fecha); err == nil {
		p.Date = t
	}
	return p, nil
}

func (a *Adapter) SyncVendor(ctx context.Context, v *unified.UnifiedVendor) (*erp.SyncResult, error) {
	payload := &cpqCliente{
		Codigo:      v.ERPID,
		RazonSocial: v.Name,
		RFC:         v.RFC,
		Email:       v.Email,
		Telefono:    v.Phone,
		Moneda:      v.Currency,
	}
	method, path := http.MethodPost, "/api/proveedores"
	if v.ERPID != "" {
		method, path = http.MethodPut, "/api/proveedores/"+v.ERPID
	}

	var resp cpqResponse
	if err := a.call(ctx, "sync_vendor", method, path, payload, &resp); err != nil {
		a.RecordError("sync_vendor", err)
		return nil, err
	}
	a.TouchLastSync()
	return &erp.SyncResult{ERPEntityID: resp.ID, ERPEntityNumber: resp.Folio}, nil
}

func (a *Adapter) GetVendor(ctx context.Context, erpID string) (*unified.UnifiedVendor, error) {
	var resp cpqResponse
	if err := a.call(ctx, "get_vendor", http.MethodGet, "/api/proveedores/"+erpID, nil, &resp); err != nil {
		a.RecordError("get_vendor", err)
		return nil, err
	}
	var prov cpqCliente
	if err := json.Unmarshal(resp.Data, &prov); err != nil {
		return nil, &domain.AdapterOperationError{Provider: providerName, Method: "get_vendor", Cause: err}
	}
	return &unified.UnifiedVendor{
		ERPID:    erpID,
		Name:     prov.RazonSocial,
		RFC:      prov.RFC,
		Email:    prov.Email,
		Phone:    prov.Telefono,
		Currency: prov.Moneda,
	}, nil
}

// ── Operaciones fuera de la capacidad del conector ───────────────────────────

func (a *Adapter) SyncBill(ctx context.Context, _ *unified.UnifiedBill) (*erp.SyncResult, error) {
	return nil, a.Unsupported("sync_bill")
}

func (a *Adapter) GetBill(ctx context.Context, _ string) (*unified.UnifiedBill, error) {
	return nil, a.Unsupported("get_bill")
}

func (a *Adapter) GetBillPayment(ctx context.Context, _ string) (*unified.UnifiedBillPayment, error) {
	return nil, a.Unsupported("get_bill_payment")
}

func (a *Adapter) GetCreditMemo(ctx context.Context, _ string) (*unified.UnifiedCreditMemo, error) {
	return nil, a.Unsupported("get_credit_memo")
}

func (a *Adapter) SyncBillPayment(ctx context.Context, _ *unified.UnifiedBillPayment) (*erp.SyncResult, error) {
	return nil, a.Unsupported("sync_bill_payment")
}

func (a *Adapter) SyncCreditMemo(ctx context.Context, _ *unified.UnifiedCreditMemo) (*erp.SyncResult, error) {
	return nil, a.Unsupported("sync_credit_memo")
}

func (a *Adapter) VoidInvoice(ctx context.Context, _ string) (*erp.SyncResult, error) {
	return nil, a.Unsupported("void_invoice")
}

func (a *Adapter) GetChartOfAccounts(ctx context.Context) ([]erp.Account, error) {
	return nil, a.Unsupported("chart_of_accounts")
}

func (a *Adapter) GetAccount(ctx context.Context, _ string) (*erp.Account, error) {
	return nil, a.Unsupported("get_account")
}

func (a *Adapter) GetProfitAndLossReport(ctx context.Context, _, _ time.Time) (*erp.Report, error) {
	return nil, a.Unsupported("profit_and_loss")
}

func (a *Adapter) GetBalanceSheetReport(ctx context.Context, _ time.Time) (*erp.Report, error) {
	return nil, a.Unsupported("balance_sheet")
}

// GetInfo describe el adaptador y su capacidad parcial.
func (a *Adapter) GetInfo() erp.AdapterInfo {
	return a.Info(capabilities)
}

// ── Transporte ───────────────────────────────────────────────────────────────

func (a *Adapter) call(ctx context.Context, method, httpMethod, path string, payload any, out *cpqResponse) error {
	var body io.Reader
	if payload != nil {
		raw, err := json.Marshal(payload)
		if err != nil {
			return fmt.Errorf("contpaqi: serializar %s: %w", method, err)
		}
		body = bytes.NewReader(raw)
	}

	req, err := http.NewRequestWithContext(ctx, httpMethod, a.baseURL+path, body)
	if err != nil {
		return fmt.Errorf("contpaqi: crear request %s: %w", method, err)
	}
	req.Header.Set("X-Api-Key", a.apiKey)
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := a.httpClient.Do(req)
	if err != nil {
		return &domain.AdapterOperationError{Provider: providerName, Method: method, Cause: err}
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return &domain.AdapterOperationError{Provider: providerName, Method: method, Cause: err}
	}

	switch {
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		return &domain.AuthenticationError{Provider: providerName, Cause: fmt.Errorf("HTTP %d en %s", resp.StatusCode, method)}
	case resp.StatusCode >= 500:
		return &domain.AdapterOperationError{
			Provider: providerName,
			Method:   method,
			Cause:    fmt.Errorf("HTTP %d: %s", resp.StatusCode, strings.TrimSpace(string(raw))),
		}
	}

	if err := json.Unmarshal(raw, out); err != nil {
		return &domain.AdapterOperationError{Provider: providerName, Method: method, Cause: fmt.Errorf("respuesta no parseable: %w", err)}
	}
	if resp.StatusCode >= 400 || !out.OK {
		return fmt.Errorf("contpaqi %s: %s", method, out.Mensaje)
	}
	return nil
}
