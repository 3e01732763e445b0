package http

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	stdhttp "net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	appcfdi "github.com/spirittours/erp-hub/internal/application/cfdi"
	"github.com/spirittours/erp-hub/internal/application/erp"
	appsync "github.com/spirittours/erp-hub/internal/application/sync"
	"github.com/spirittours/erp-hub/internal/domain"
	cfdidom "github.com/spirittours/erp-hub/internal/domain/cfdi"
	"github.com/spirittours/erp-hub/internal/domain/entity"
	"github.com/spirittours/erp-hub/internal/domain/unified"
	infracfdi "github.com/spirittours/erp-hub/internal/infrastructure/cfdi"
	"github.com/spirittours/erp-hub/pkg/config"
	"github.com/spirittours/erp-hub/pkg/jwt"
	"github.com/spirittours/erp-hub/pkg/logger"
)

const testJWTSecret = "secreto-de-prueba"
const testWebhookSecret = "hook-123"

// ── Fakes en memoria ─────────────────────────────────────────────────────────

type memConfigRepo struct {
	cfg *entity.ConfiguracionERPSucursal
}

func (m *memConfigRepo) GetBySucursal(_ context.Context, _ string) (*entity.ConfiguracionERPSucursal, error) {
	return m.cfg, nil
}

func (m *memConfigRepo) MarkConnected(_ context.Context, _ string) error { return nil }

type memMappingRepo struct {
	rows map[entity.MappingKey]*entity.EntityMapping
}

func (m *memMappingRepo) Get(_ context.Context, key entity.MappingKey) (*entity.EntityMapping, error) {
	return m.rows[key], nil
}

func (m *memMappingRepo) Upsert(_ context.Context, e *entity.EntityMapping) error {
	if prev, ok := m.rows[e.Key()]; ok {
		prev.SyncVersion++
		e.SyncVersion = prev.SyncVersion
		return nil
	}
	cp := *e
	m.rows[e.Key()] = &cp
	return nil
}

func (m *memMappingRepo) ListBySucursal(_ context.Context, sucursalID, entityType string, _, _ int) ([]*entity.EntityMapping, error) {
	var out []*entity.EntityMapping
	for _, e := range m.rows {
		if e.SucursalID == sucursalID && (entityType == "" || e.SpiritEntityType == entityType) {
			out = append(out, e)
		}
	}
	return out, nil
}

type memLogRepo struct {
	entries []*entity.SyncLogEntry
}

func (m *memLogRepo) Open(_ context.Context, e *entity.SyncLogEntry) error {
	m.entries = append(m.entries, e)
	return nil
}

func (m *memLogRepo) CloseSuccess(_ context.Context, id, _, erpEntityID string) error {
	for _, e := range m.entries {
		if e.ID == id {
			e.Status = entity.SyncStatusSuccess
			e.ERPEntityID = erpEntityID
		}
	}
	return nil
}

func (m *memLogRepo) CloseError(_ context.Context, id, errorMessage string) error {
	for _, e := range m.entries {
		if e.ID == id {
			e.Status = entity.SyncStatusError
			e.ErrorMessage = errorMessage
		}
	}
	return nil
}

func (m *memLogRepo) ListByEntity(_ context.Context, _, entityType, entityID string, _ int) ([]*entity.SyncLogEntry, error) {
	var out []*entity.SyncLogEntry
	for i := len(m.entries) - 1; i >= 0; i-- {
		if m.entries[i].EntityType == entityType && m.entries[i].EntityID == entityID {
			out = append(out, m.entries[i])
		}
	}
	return out, nil
}

type memCustomerRepo struct{ byID map[string]*entity.Customer }

func (m *memCustomerRepo) GetByID(_ context.Context, id string) (*entity.Customer, error) {
	return m.byID[id], nil
}

func (m *memCustomerRepo) ListPendingERP(_ context.Context, _, _ string, _ int) ([]*entity.Customer, error) {
	return nil, nil
}

func (m *memCustomerRepo) MarkERPSynced(_ context.Context, _, _ string, _ time.Time) error {
	return nil
}

type memReceivableRepo struct{ byID map[string]*entity.Receivable }

func (m *memReceivableRepo) GetByID(_ context.Context, id string) (*entity.Receivable, error) {
	return m.byID[id], nil
}

func (m *memReceivableRepo) ListPendingERP(_ context.Context, _ string, _ int) ([]*entity.Receivable, error) {
	return nil, nil
}

func (m *memReceivableRepo) MarkERPSynced(_ context.Context, _, _ string, _ time.Time) error {
	return nil
}

type memPaymentRepo struct{ byID map[string]*entity.ReceivedPayment }

func (m *memPaymentRepo) GetByID(_ context.Context, id string) (*entity.ReceivedPayment, error) {
	return m.byID[id], nil
}

func (m *memPaymentRepo) ListPendingERP(_ context.Context, _ string, _ int) ([]*entity.ReceivedPayment, error) {
	return nil, nil
}

func (m *memPaymentRepo) MarkERPSynced(_ context.Context, _, _ string, _ time.Time) error {
	return nil
}

type memVendorRepo struct{}

func (memVendorRepo) GetByID(_ context.Context, _ string) (*entity.Vendor, error) { return nil, nil }

func (memVendorRepo) ListPendingERP(_ context.Context, _, _ string, _ int) ([]*entity.Vendor, error) {
	return nil, nil
}

func (memVendorRepo) MarkERPSynced(_ context.Context, _, _ string, _ time.Time) error { return nil }

type memBillRepo struct{}

func (memBillRepo) GetByID(_ context.Context, _ string) (*entity.Bill, error) { return nil, nil }

func (memBillRepo) GetBillPaymentByID(_ context.Context, _ string) (*entity.BillPayment, error) {
	return nil, nil
}

func (memBillRepo) ListPendingERP(_ context.Context, _ string, _ int) ([]*entity.Bill, error) {
	return nil, nil
}

func (memBillRepo) MarkERPSynced(_ context.Context, _, _ string, _ time.Time) error { return nil }

func (memBillRepo) MarkBillPaymentERPSynced(_ context.Context, _, _ string, _ time.Time) error {
	return nil
}

type memDocsRepo struct {
	byUUID map[string]*entity.CFDIDocument
}

func (m *memDocsRepo) Save(_ context.Context, d *entity.CFDIDocument) error {
	if _, ok := m.byUUID[d.UUID]; ok {
		return domain.ErrDuplicate
	}
	m.byUUID[d.UUID] = d
	return nil
}

func (m *memDocsRepo) GetByUUID(_ context.Context, uuid string) (*entity.CFDIDocument, error) {
	return m.byUUID[uuid], nil
}

func (m *memDocsRepo) MarkCanceled(_ context.Context, uuid, status, motivo, acuse string, at time.Time) error {
	d, ok := m.byUUID[uuid]
	if !ok {
		return domain.ErrNotFound
	}
	d.Status = status
	d.MotivoCancelacion = motivo
	d.Acuse = acuse
	d.CanceledAt = &at
	return nil
}

func (m *memDocsRepo) ListBySucursal(_ context.Context, sucursalID string, _, _ int) ([]*entity.CFDIDocument, error) {
	var out []*entity.CFDIDocument
	for _, d := range m.byUUID {
		if d.SucursalID == sucursalID {
			out = append(out, d)
		}
	}
	return out, nil
}

// stubAdapter responde sincronizaciones con syncFn y consultas con datos fijos.
type stubAdapter struct {
	erp.BaseAdapter
	syncFn func() (*erp.SyncResult, error)
}

func (s *stubAdapter) sync() (*erp.SyncResult, error) { return s.syncFn() }

func (s *stubAdapter) Authenticate(_ context.Context) error { return nil }

func (s *stubAdapter) TestConnection(_ context.Context) erp.ConnectionResult {
	return erp.ConnectionResult{Connected: true, Message: "empresa de prueba", CheckedAt: time.Now()}
}

func (s *stubAdapter) SyncCustomer(_ context.Context, _ *unified.UnifiedCustomer) (*erp.SyncResult, error) {
	return s.sync()
}

func (s *stubAdapter) SyncInvoice(_ context.Context, _ *unified.UnifiedInvoice) (*erp.SyncResult, error) {
	return s.sync()
}

func (s *stubAdapter) SyncPayment(_ context.Context, _ *unified.UnifiedPayment) (*erp.SyncResult, error) {
	return s.sync()
}

func (s *stubAdapter) SyncVendor(_ context.Context, _ *unified.UnifiedVendor) (*erp.SyncResult, error) {
	return s.sync()
}

func (s *stubAdapter) SyncBill(_ context.Context, _ *unified.UnifiedBill) (*erp.SyncResult, error) {
	return s.sync()
}

func (s *stubAdapter) SyncBillPayment(_ context.Context, _ *unified.UnifiedBillPayment) (*erp.SyncResult, error) {
	return s.sync()
}

func (s *stubAdapter) SyncCreditMemo(_ context.Context, _ *unified.UnifiedCreditMemo) (*erp.SyncResult, error) {
	return s.sync()
}

func (s *stubAdapter) GetCustomer(_ context.Context, _ string) (*unified.UnifiedCustomer, error) {
	return nil, s.Unsupported("GetCustomer")
}

func (s *stubAdapter) GetInvoice(_ context.Context, _ string) (*unified.UnifiedInvoice, error) {
	return nil, s.Unsupported("GetInvoice")
}

func (s *stubAdapter) GetPayment(_ context.Context, _ string) (*unified.UnifiedPayment, error) {
	return nil, s.Unsupported("GetPayment")
}

func (s *stubAdapter) GetVendor(_ context.Context, _ string) (*unified.UnifiedVendor, error) {
	return nil, s.Unsupported("GetVendor")
}

func (s *stubAdapter) GetBill(_ context.Context, _ string) (*unified.UnifiedBill, error) {
	return nil, s.Unsupported("GetBill")
}

func (s *stubAdapter) GetBillPayment(_ context.Context, _ string) (*unified.UnifiedBillPayment, error) {
	return nil, s.Unsupported("GetBillPayment")
}

func (s *stubAdapter) GetCreditMemo(_ context.Context, _ string) (*unified.UnifiedCreditMemo, error) {
	return nil, s.Unsupported("GetCreditMemo")
}

func (s *stubAdapter) UpdateCustomer(_ context.Context, _ string, _ *unified.UnifiedCustomer) (*erp.SyncResult, error) {
	return s.sync()
}

func (s *stubAdapter) VoidInvoice(_ context.Context, _ string) (*erp.SyncResult, error) {
	return s.sync()
}

func (s *stubAdapter) GetChartOfAccounts(_ context.Context) ([]erp.Account, error) {
	return []erp.Account{
		{ERPID: "1", Name: "Bancos", Type: "Bank", Active: true},
		{ERPID: "40", Name: "Ingresos por servicios", Type: "Income", Active: true},
	}, nil
}

func (s *stubAdapter) GetAccount(_ context.Context, _ string) (*erp.Account, error) {
	return &erp.Account{ERPID: "1", Name: "Bancos", Type: "Bank", Active: true}, nil
}

func (s *stubAdapter) GetProfitAndLossReport(_ context.Context, start, end time.Time) (*erp.Report, error) {
	return &erp.Report{
		Name: "ProfitAndLoss", Currency: "MXN", StartDate: start, EndDate: end,
		Rows: []erp.ReportRow{{Label: "Ingresos", Amount: "1500.00"}},
	}, nil
}

func (s *stubAdapter) GetBalanceSheetReport(_ context.Context, asOf time.Time) (*erp.Report, error) {
	return &erp.Report{Name: "BalanceSheet", StartDate: asOf, EndDate: asOf}, nil
}

func (s *stubAdapter) GetInfo() erp.AdapterInfo { return s.Info([]string{"customers", "invoices"}) }

// stubSigner sella sin certificado real.
type stubSigner struct{}

func (stubSigner) Sign(_ *cfdidom.Comprobante, xml []byte) (*appcfdi.SignedDocument, error) {
	return &appcfdi.SignedDocument{
		XML:           xml,
		Sello:         "U0VMTE8=",
		NoCertificado: "30001000000400002434",
		Certificado:   "Q0VSVA==",
	}, nil
}

// stubPAC timbra con UUID fijo y cancela en firme.
type stubPAC struct {
	stamped  int
	canceled int
}

const stubUUID = "AAAAAAAA-1111-2222-3333-444444444444"

func (p *stubPAC) Stamp(_ context.Context, signedXML []byte) (*appcfdi.StampResult, error) {
	p.stamped++
	return &appcfdi.StampResult{
		UUID:             stubUUID,
		FechaTimbrado:    time.Date(2026, 8, 20, 12, 0, 0, 0, time.UTC),
		SelloSAT:         "U0VMTE9TQVQ=",
		NoCertificadoSAT: "30001000000400002495",
		XML:              signedXML,
	}, nil
}

func (p *stubPAC) Cancel(_ context.Context, req appcfdi.CancelRequest) (*appcfdi.CancelResult, error) {
	p.canceled++
	return &appcfdi.CancelResult{
		UUID:       req.UUID,
		Status:     "cancelado",
		StatusCode: "201",
		Acuse:      []byte("<Acuse/>"),
		CanceledAt: time.Date(2026, 8, 21, 9, 0, 0, 0, time.UTC),
	}, nil
}

// stubRenderer regresa bytes con firma PDF sin dibujar nada.
type stubRenderer struct{}

func (stubRenderer) RenderComprobante(_ context.Context, c *cfdidom.Comprobante, _ string) ([]byte, error) {
	return []byte("%PDF-1.7 stub " + c.Serie), nil
}

// ── Armado de prueba ─────────────────────────────────────────────────────────

type webFixture struct {
	app      *fiber.App
	adapter  *stubAdapter
	pac      *stubPAC
	docs     *memDocsRepo
	logs     *memLogRepo
	mappings *memMappingRepo
}

func okSync() (*erp.SyncResult, error) {
	return &erp.SyncResult{ERPEntityID: "QB-77", ERPEntityNumber: "1077"}, nil
}

func newWebFixture(t *testing.T, syncFn func() (*erp.SyncResult, error)) *webFixture {
	t.Helper()

	fx := &webFixture{
		adapter: &stubAdapter{
			BaseAdapter: erp.NewBaseAdapter("fake", "Fake ERP", "1.0"),
			syncFn:      syncFn,
		},
		pac:      &stubPAC{},
		docs:     &memDocsRepo{byUUID: map[string]*entity.CFDIDocument{}},
		logs:     &memLogRepo{},
		mappings: &memMappingRepo{rows: map[entity.MappingKey]*entity.EntityMapping{}},
	}

	factory := erp.NewFactory()
	factory.Register("fake", func(_ *entity.ConfiguracionERPSucursal) (erp.AccountingAdapter, error) {
		return fx.adapter, nil
	})

	customers := &memCustomerRepo{byID: map[string]*entity.Customer{
		"cust-1": {ID: "cust-1", SucursalID: "suc-1", Nombre: "Viajes Aztlán", RFC: "VAZ010101AB1"},
	}}
	receivables := &memReceivableRepo{byID: map[string]*entity.Receivable{
		"rec-1": {
			ID: "rec-1", SucursalID: "suc-1", CustomerID: "cust-1",
			Folio: "F-1001", Estado: entity.ReceivableStatusPendiente,
			Total: decimal.NewFromInt(232), Saldo: decimal.NewFromInt(0),
		},
	}}
	payments := &memPaymentRepo{byID: map[string]*entity.ReceivedPayment{
		"pay-1": {
			ID: "pay-1", SucursalID: "suc-1", CustomerID: "cust-1", ReceivableID: "rec-1",
			Folio: "P-1", Estado: entity.PaymentStatusAplicado,
			Moneda: "MXN", Monto: decimal.NewFromInt(232), FormaPago: "03",
			FechaPago: time.Date(2026, 8, 19, 10, 0, 0, 0, time.UTC),
		},
	}}

	orch := appsync.NewOrchestrator(
		&memConfigRepo{cfg: &entity.ConfiguracionERPSucursal{
			ID: "cfg-1", SucursalID: "suc-1", Provider: "fake", Enviro: "sandbox",
			SyncCustomers: true, SyncInvoices: true, SyncPayments: true,
			SyncVendors: true, SyncBills: true, Activo: true,
		}},
		fx.mappings, fx.logs, customers, receivables, payments,
		memVendorRepo{}, memBillRepo{}, factory,
		config.SyncConfig{MaxRetries: 0, BaseDelayMS: 1, BackoffMultiplier: 2, BatchSize: 50, AdapterTimeoutSec: 5},
		logger.Nop(),
	)

	gen := appcfdi.NewGenerator(infracfdi.NewXMLBuilderService(), stubSigner{}, fx.pac, logger.Nop())

	fx.app = fiber.New()
	Router(fx.app, RouterDeps{
		Orchestrator:  orch,
		Generator:     gen,
		Documents:     fx.docs,
		Parser:        infracfdi.NewXMLParserService(),
		Renderer:      stubRenderer{},
		Payments:      payments,
		Receivables:   receivables,
		JWTSecret:     testJWTSecret,
		WebhookSecret: testWebhookSecret,
	})
	return fx
}

func bearer(t *testing.T, role string) string {
	t.Helper()
	token, err := jwt.Generate(testJWTSecret, "user-1", "suc-1", role, "erp-hub", 60)
	require.NoError(t, err)
	return "Bearer " + token
}

func doJSON(t *testing.T, app *fiber.App, method, path, auth string, body any) *stdhttp.Response {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if auth != "" {
		req.Header.Set("Authorization", auth)
	}
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	return resp
}

func decodeBody(t *testing.T, resp *stdhttp.Response, out any) {
	t.Helper()
	defer resp.Body.Close()
	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	require.NoError(t, json.Unmarshal(raw, out))
}

// ── Pruebas ──────────────────────────────────────────────────────────────────

func TestRutasProtegidasExigenToken(t *testing.T) {
	fx := newWebFixture(t, okSync)

	resp := doJSON(t, fx.app, stdhttp.MethodPost, "/api/sync/customers/cust-1", "", nil)
	assert.Equal(t, stdhttp.StatusUnauthorized, resp.StatusCode)

	resp = doJSON(t, fx.app, stdhttp.MethodPost, "/api/sync/customers/cust-1", "Bearer basura", nil)
	assert.Equal(t, stdhttp.StatusUnauthorized, resp.StatusCode)

	resp = doJSON(t, fx.app, stdhttp.MethodPost, "/api/sync/customers/cust-1", "Basic abc", nil)
	assert.Equal(t, stdhttp.StatusUnauthorized, resp.StatusCode)
}

func TestSyncCustomerPorHTTP(t *testing.T) {
	fx := newWebFixture(t, okSync)

	resp := doJSON(t, fx.app, stdhttp.MethodPost, "/api/sync/customers/cust-1", bearer(t, RoleOperador), nil)
	require.Equal(t, stdhttp.StatusOK, resp.StatusCode)

	var out appsync.Outcome
	decodeBody(t, resp, &out)
	assert.Equal(t, "QB-77", out.ERPEntityID)
	assert.Equal(t, 1, out.SyncVersion)

	// el intento quedó en el log
	require.Len(t, fx.logs.entries, 1)
	assert.Equal(t, entity.SyncStatusSuccess, fx.logs.entries[0].Status)
}

func TestSyncEntidadInexistenteEs404(t *testing.T) {
	fx := newWebFixture(t, okSync)

	resp := doJSON(t, fx.app, stdhttp.MethodPost, "/api/sync/customers/no-existe", bearer(t, RoleOperador), nil)
	assert.Equal(t, stdhttp.StatusNotFound, resp.StatusCode)

	var out ErrorResponse
	decodeBody(t, resp, &out)
	assert.Equal(t, "NOT_FOUND", out.Code)
}

func TestSyncFacturaSinClienteEs409(t *testing.T) {
	fx := newWebFixture(t, okSync)

	resp := doJSON(t, fx.app, stdhttp.MethodPost, "/api/sync/invoices/rec-1", bearer(t, RoleOperador), nil)
	assert.Equal(t, stdhttp.StatusConflict, resp.StatusCode)

	var out ErrorResponse
	decodeBody(t, resp, &out)
	assert.Equal(t, "DEPENDENCY_PENDING", out.Code)
}

func TestBatchAislaFallas(t *testing.T) {
	fx := newWebFixture(t, okSync)

	resp := doJSON(t, fx.app, stdhttp.MethodPost, "/api/sync/batch", bearer(t, RoleOperador), BatchSyncRequest{
		Entities: []BatchSyncItem{
			{EntityType: entity.EntityCustomer, EntityID: "cust-1"},
			{EntityType: entity.EntityCustomer, EntityID: "no-existe"},
		},
	})
	require.Equal(t, stdhttp.StatusOK, resp.StatusCode)

	var out BatchSyncResponse
	decodeBody(t, resp, &out)
	assert.Equal(t, 2, out.Processed)
	assert.Equal(t, 1, out.Succeeded)
	assert.Equal(t, 1, out.Failed)
	assert.True(t, out.Results[0].Success)
	assert.NotEmpty(t, out.Results[1].Error)
}

func TestStatsYReset(t *testing.T) {
	fx := newWebFixture(t, okSync)
	auth := bearer(t, RoleContabilidad)

	doJSON(t, fx.app, stdhttp.MethodPost, "/api/sync/customers/cust-1", auth, nil)

	resp := doJSON(t, fx.app, stdhttp.MethodGet, "/api/sync/stats", auth, nil)
	require.Equal(t, stdhttp.StatusOK, resp.StatusCode)
	var stats StatsResponse
	decodeBody(t, resp, &stats)
	assert.Equal(t, 1, stats.TotalSyncs)
	assert.Equal(t, 1.0, stats.SuccessRate)

	// el rol operador no puede resetear
	resp = doJSON(t, fx.app, stdhttp.MethodDelete, "/api/sync/stats", bearer(t, RoleOperador), nil)
	assert.Equal(t, stdhttp.StatusForbidden, resp.StatusCode)

	resp = doJSON(t, fx.app, stdhttp.MethodDelete, "/api/sync/stats", auth, nil)
	assert.Equal(t, stdhttp.StatusNoContent, resp.StatusCode)

	resp = doJSON(t, fx.app, stdhttp.MethodGet, "/api/sync/stats", auth, nil)
	decodeBody(t, resp, &stats)
	assert.Zero(t, stats.TotalSyncs)
}

func TestWebhookExigeSecreto(t *testing.T) {
	fx := newWebFixture(t, okSync)
	body := WebhookEntityConfirmed{SucursalID: "suc-1", EntityType: entity.EntityCustomer, EntityID: "cust-1"}

	var buf bytes.Buffer
	require.NoError(t, json.NewEncoder(&buf).Encode(body))
	req := httptest.NewRequest(stdhttp.MethodPost, "/api/webhooks/entity-confirmed", &buf)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Webhook-Secret", "equivocado")
	resp, err := fx.app.Test(req, -1)
	require.NoError(t, err)
	assert.Equal(t, stdhttp.StatusUnauthorized, resp.StatusCode)

	require.NoError(t, json.NewEncoder(&buf).Encode(body))
	req = httptest.NewRequest(stdhttp.MethodPost, "/api/webhooks/entity-confirmed", &buf)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Webhook-Secret", testWebhookSecret)
	resp, err = fx.app.Test(req, -1)
	require.NoError(t, err)
	require.Equal(t, stdhttp.StatusOK, resp.StatusCode)

	var out appsync.Outcome
	decodeBody(t, resp, &out)
	assert.Equal(t, "QB-77", out.ERPEntityID)
	// el log registra el origen webhook
	require.Len(t, fx.logs.entries, 1)
	assert.Equal(t, entity.TriggerWebhook, fx.logs.entries[0].TriggeredBy)
}

func TestConsultasERP(t *testing.T) {
	fx := newWebFixture(t, okSync)
	auth := bearer(t, RoleContabilidad)

	resp := doJSON(t, fx.app, stdhttp.MethodGet, "/api/erp/test-connection", auth, nil)
	require.Equal(t, stdhttp.StatusOK, resp.StatusCode)
	var conn ConnectionResponse
	decodeBody(t, resp, &conn)
	assert.True(t, conn.Connected)

	resp = doJSON(t, fx.app, stdhttp.MethodGet, "/api/erp/accounts", auth, nil)
	require.Equal(t, stdhttp.StatusOK, resp.StatusCode)
	var accounts []AccountResponse
	decodeBody(t, resp, &accounts)
	require.Len(t, accounts, 2)
	assert.Equal(t, "Bancos", accounts[0].Name)

	resp = doJSON(t, fx.app, stdhttp.MethodGet, "/api/erp/reports/profit-loss?from=2026-01-01&to=2026-06-30", auth, nil)
	require.Equal(t, stdhttp.StatusOK, resp.StatusCode)
	var report ReportResponse
	decodeBody(t, resp, &report)
	assert.Equal(t, "ProfitAndLoss", report.Name)
	require.Len(t, report.Rows, 1)
	assert.Equal(t, "1500.00", report.Rows[0].Amount)

	// periodo inválido
	resp = doJSON(t, fx.app, stdhttp.MethodGet, "/api/erp/reports/profit-loss?from=2026-06-30&to=2026-01-01", auth, nil)
	assert.Equal(t, stdhttp.StatusBadRequest, resp.StatusCode)

	resp = doJSON(t, fx.app, stdhttp.MethodGet, "/api/erp/info", auth, nil)
	require.Equal(t, stdhttp.StatusOK, resp.StatusCode)
	var info AdapterInfoResponse
	decodeBody(t, resp, &info)
	assert.Equal(t, "fake", info.Provider)
	assert.Contains(t, info.Capabilities, "customers")
}
