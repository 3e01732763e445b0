package quickbooks

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spirittours/erp-hub/internal/domain"
	"github.com/spirittours/erp-hub/internal/domain/entity"
	"github.com/spirittours/erp-hub/internal/domain/unified"
)

func testConfig() *entity.ConfiguracionERPSucursal {
	return &entity.ConfiguracionERPSucursal{
		SucursalID:   "suc-1",
		Provider:     "quickbooks",
		Enviro:       "sandbox",
		ClientID:     "client-id",
		ClientSecret: "client-secret",
		RefreshToken: "refresh-token",
		RealmID:      "realm-1",
		Activo:       true,
	}
}

// newTestAdapter levanta un servidor falso que atiende tanto el endpoint de
// tokens como el API v3, y un adaptador apuntando a él.
func newTestAdapter(t *testing.T, handler http.HandlerFunc) (*Adapter, *httptest.Server) {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/oauth2/v1/tokens/bearer" {
			fmt.Fprint(w, `{"access_token":"at-1","refresh_token":"rt-2","expires_in":3600,"token_type":"bearer"}`)
			return
		}
		handler(w, r)
	}))
	t.Cleanup(srv.Close)

	cfg := testConfig()
	cfg.BaseURL = srv.URL
	adapter, err := New(cfg)
	require.NoError(t, err)
	adapter.client.tokenURL = srv.URL + "/oauth2/v1/tokens/bearer"
	return adapter, srv
}

func TestAuthenticateRenuevaTokens(t *testing.T) {
	adapter, _ := newTestAdapter(t, func(w http.ResponseWriter, r *http.Request) {})

	require.NoError(t, adapter.Authenticate(context.Background()))

	assert.True(t, adapter.Authenticated())
	assert.Equal(t, "at-1", adapter.client.bearer())
	// Intuit rota el refresh token; debemos conservar el nuevo.
	assert.Equal(t, "rt-2", adapter.client.refreshToken)
}

func TestSyncCustomerCrea(t *testing.T) {
	var gotBody qbCustomer
	adapter, _ := newTestAdapter(t, func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotBody))
		fmt.Fprint(w, `{"Customer":{"Id":"58","SyncToken":"0","DisplayName":"Viajes Pacífico SA de CV"}}`)
	})

	result, err := adapter.SyncCustomer(context.Background(), &unified.UnifiedCustomer{
		ID:       "cli-1",
		Name:     "Viajes Pacífico SA de CV",
		RFC:      "VPA120315QJ4",
		Email:    "contacto@viajespacifico.mx",
		Currency: "MXN",
	})
	require.NoError(t, err)

	assert.Equal(t, "58", result.ERPEntityID)
	assert.Equal(t, "Viajes Pacífico SA de CV", gotBody.DisplayName)
	assert.Equal(t, "VPA120315QJ4", gotBody.PrimaryTaxIdentifier)
	assert.Empty(t, gotBody.ID, "creación no debe llevar Id")
	assert.False(t, gotBody.Sparse)
}

func TestSyncCustomerActualizaConSyncToken(t *testing.T) {
	var gotBody qbCustomer
	adapter, _ := newTestAdapter(t, func(w http.ResponseWriter, r *http.Request) {
		if strings.HasPrefix(r.URL.Path, "/v3/company/realm-1/query") {
			fmt.Fprint(w, `{"QueryResponse":{"Customer":[{"Id":"58","SyncToken":"3","DisplayName":"Viajes Pacífico"}]}}`)
			return
		}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotBody))
		fmt.Fprint(w, `{"Customer":{"Id":"58","SyncToken":"4","DisplayName":"Viajes Pacífico SA de CV"}}`)
	})

	result, err := adapter.SyncCustomer(context.Background(), &unified.UnifiedCustomer{
		ID:    "cli-1",
		ERPID: "58",
		Name:  "Viajes Pacífico SA de CV",
	})
	require.NoError(t, err)

	assert.Equal(t, "58", result.ERPEntityID)
	assert.Equal(t, "58", gotBody.ID)
	assert.Equal(t, "3", gotBody.SyncToken)
	assert.True(t, gotBody.Sparse, "actualización debe ser sparse")
}

func TestSyncInvoiceConLineasYVinculoCliente(t *testing.T) {
	var gotBody qbInvoice
	adapter, _ := newTestAdapter(t, func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotBody))
		fmt.Fprint(w, `{"Invoice":{"Id":"145","DocNumber":"FAC-2026-0042","TotalAmt":232.00}}`)
	})

	inv := &unified.UnifiedInvoice{
		ID:            "cxc-1",
		CustomerERPID: "58",
		Folio:         "FAC-2026-0042",
		Currency:      "MXN",
		Subtotal:      decimal.NewFromInt(200),
		Total:         decimal.RequireFromString("232.00"),
		IssueDate:     time.Date(2026, 8, 12, 0, 0, 0, 0, time.UTC),
		DueDate:       time.Date(2026, 9, 11, 0, 0, 0, 0, time.UTC),
		Lines: []unified.UnifiedInvoiceLine{{
			Description: "Tour Chichén Itzá",
			Quantity:    decimal.NewFromInt(2),
			UnitPrice:   decimal.NewFromInt(100),
			Amount:      decimal.NewFromInt(200),
		}},
	}
	result, err := adapter.SyncInvoice(context.Background(), inv)
	require.NoError(t, err)

	assert.Equal(t, "145", result.ERPEntityID)
	assert.Equal(t, "FAC-2026-0042", result.ERPEntityNumber)
	assert.Equal(t, "58", gotBody.CustomerRef.Value)
	require.Len(t, gotBody.Line, 1)
	assert.Equal(t, json.Number("200.00"), gotBody.Line[0].Amount)
	assert.Equal(t, "2026-08-12", gotBody.TxnDate)
}

func TestSyncPaymentVinculaFactura(t *testing.T) {
	var gotBody qbPayment
	adapter, _ := newTestAdapter(t, func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotBody))
		fmt.Fprint(w, `{"Payment":{"Id":"210","PaymentRefNum":"PAG-0007"}}`)
	})

	result, err := adapter.SyncPayment(context.Background(), &unified.UnifiedPayment{
		ID:            "pago-1",
		CustomerERPID: "58",
		InvoiceERPID:  "145",
		Amount:        decimal.RequireFromString("232.00"),
		Reference:     "PAG-0007",
		Date:          time.Date(2026, 8, 13, 0, 0, 0, 0, time.UTC),
	})
	require.NoError(t, err)

	assert.Equal(t, "210", result.ERPEntityID)
	require.Len(t, gotBody.Line, 1)
	require.Len(t, gotBody.Line[0].LinkedTxn, 1)
	assert.Equal(t, "145", gotBody.Line[0].LinkedTxn[0].TxnID)
	assert.Equal(t, "Invoice", gotBody.Line[0].LinkedTxn[0].TxnType)
}

func TestError401EsDeAutenticacion(t *testing.T) {
	adapter, _ := newTestAdapter(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		fmt.Fprint(w, `{"Fault":{"Error":[{"Message":"Token expired","code":"3200"}]}}`)
	})
	require.NoError(t, adapter.Authenticate(context.Background()))

	_, err := adapter.SyncCustomer(context.Background(), &unified.UnifiedCustomer{Name: "X"})

	var authErr *domain.AuthenticationError
	require.True(t, errors.As(err, &authErr))
	assert.True(t, domain.Retryable(err), "401 debe ser reintentable")
}

func TestError500EsReintentable(t *testing.T) {
	adapter, _ := newTestAdapter(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	})

	_, err := adapter.SyncCustomer(context.Background(), &unified.UnifiedCustomer{Name: "X"})

	var opErr *domain.AdapterOperationError
	require.True(t, errors.As(err, &opErr))
	assert.True(t, domain.Retryable(err))
}

func TestError400EsTerminal(t *testing.T) {
	adapter, _ := newTestAdapter(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		fmt.Fprint(w, `{"Fault":{"Error":[{"Message":"Invalid Reference Id","Detail":"CustomerRef no existe","code":"2500"}]}}`)
	})

	_, err := adapter.SyncInvoice(context.Background(), &unified.UnifiedInvoice{CustomerERPID: "999"})

	require.Error(t, err)
	assert.False(t, domain.Retryable(err), "400 no debe reintentarse")
	assert.Contains(t, err.Error(), "2500")
	assert.Len(t, adapter.GetErrors(), 1)
}

func TestVoidInvoiceUsaSyncTokenVigente(t *testing.T) {
	var gotQueryCount, gotVoid int
	adapter, _ := newTestAdapter(t, func(w http.ResponseWriter, r *http.Request) {
		if strings.HasPrefix(r.URL.Path, "/v3/company/realm-1/query") {
			gotQueryCount++
			fmt.Fprint(w, `{"QueryResponse":{"Invoice":[{"Id":"145","SyncToken":"2"}]}}`)
			return
		}
		gotVoid++
		assert.Equal(t, "void", r.URL.Query().Get("operation"))
		fmt.Fprint(w, `{"Invoice":{"Id":"145","SyncToken":"3"}}`)
	})

	_, err := adapter.VoidInvoice(context.Background(), "145")
	require.NoError(t, err)
	assert.Equal(t, 1, gotQueryCount)
	assert.Equal(t, 1, gotVoid)
}

func TestGetPaymentRecuperaFacturaVinculada(t *testing.T) {
	adapter, _ := newTestAdapter(t, func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"QueryResponse":{"Payment":[
  {"Id":"210","CustomerRef":{"value":"58"},"TotalAmt":232.00,"TxnDate":"2026-08-13","PaymentRefNum":"PAG-0007",
   "Line":[{"Amount":232.00,"LinkedTxn":[{"TxnId":"145","TxnType":"Invoice"}]}]}
]}}`)
	})

	p, err := adapter.GetPayment(context.Background(), "210")
	require.NoError(t, err)

	assert.Equal(t, "210", p.ERPID)
	assert.Equal(t, "58", p.CustomerERPID)
	assert.Equal(t, "145", p.InvoiceERPID)
	assert.Equal(t, "PAG-0007", p.Reference)
	assert.True(t, p.Amount.Equal(decimal.RequireFromString("232.00")))
	assert.Equal(t, time.Date(2026, 8, 13, 0, 0, 0, 0, time.UTC), p.Date)
}

func TestGetVendorYGetBill(t *testing.T) {
	adapter, _ := newTestAdapter(t, func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query().Get("query")
		switch {
		case strings.Contains(q, "from Vendor"):
			fmt.Fprint(w, `{"QueryResponse":{"Vendor":[{"Id":"33","DisplayName":"Hotel Mar Azul","TaxIdentifier":"HMA050607AB2"}]}}`)
		case strings.Contains(q, "from Bill"):
			fmt.Fprint(w, `{"QueryResponse":{"Bill":[
  {"Id":"77","DocNumber":"PROV-881","VendorRef":{"value":"33"},"TxnDate":"2026-08-01","DueDate":"2026-08-31","TotalAmt":5800.00,"Balance":5800.00}
]}}`)
		default:
			t.Fatalf("query inesperado: %s", q)
		}
	})

	v, err := adapter.GetVendor(context.Background(), "33")
	require.NoError(t, err)
	assert.Equal(t, "Hotel Mar Azul", v.Name)
	assert.Equal(t, "HMA050607AB2", v.RFC)

	b, err := adapter.GetBill(context.Background(), "77")
	require.NoError(t, err)
	assert.Equal(t, "33", b.VendorERPID)
	assert.Equal(t, "PROV-881", b.Folio)
	assert.True(t, b.Balance.Equal(decimal.RequireFromString("5800.00")))
	assert.Equal(t, time.Date(2026, 8, 31, 0, 0, 0, 0, time.UTC), b.DueDate)
}

func TestGetBillPaymentYCreditMemo(t *testing.T) {
	adapter, _ := newTestAdapter(t, func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query().Get("query")
		switch {
		case strings.Contains(q, "from BillPayment"):
			fmt.Fprint(w, `{"QueryResponse":{"BillPayment":[
  {"Id":"310","VendorRef":{"value":"33"},"PayType":"Check","TotalAmt":5800.00,"TxnDate":"2026-08-20",
   "Line":[{"Amount":5800.00,"LinkedTxn":[{"TxnId":"77","TxnType":"Bill"}]}]}
]}}`)
		case strings.Contains(q, "from CreditMemo"):
			fmt.Fprint(w, `{"QueryResponse":{"CreditMemo":[
  {"Id":"410","DocNumber":"NC-0003","CustomerRef":{"value":"58"},"TxnDate":"2026-08-22","TotalAmt":116.00,"PrivateNote":"Cancelación parcial de tour"}
]}}`)
		default:
			t.Fatalf("query inesperado: %s", q)
		}
	})

	bp, err := adapter.GetBillPayment(context.Background(), "310")
	require.NoError(t, err)
	assert.Equal(t, "77", bp.BillERPID)
	assert.Equal(t, "Check", bp.Method)

	cm, err := adapter.GetCreditMemo(context.Background(), "410")
	require.NoError(t, err)
	assert.Equal(t, "NC-0003", cm.Folio)
	assert.Equal(t, "Cancelación parcial de tour", cm.Reason)
	assert.True(t, cm.Amount.Equal(decimal.RequireFromString("116.00")))
}

func TestGetPaymentInexistenteEsNotFound(t *testing.T) {
	adapter, _ := newTestAdapter(t, func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"QueryResponse":{}}`)
	})

	_, err := adapter.GetPayment(context.Background(), "999")

	var nfErr *domain.NotFoundError
	require.True(t, errors.As(err, &nfErr))
	assert.Equal(t, "payment", nfErr.EntityType)
}

func TestGetChartOfAccounts(t *testing.T) {
	adapter, _ := newTestAdapter(t, func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"QueryResponse":{"Account":[
  {"Id":"1","Name":"Bancos","AcctNum":"1020","AccountType":"Bank","Classification":"Asset","CurrentBalance":15000.50,"Active":true},
  {"Id":"54","Name":"Gastos de viaje","AcctNum":"5400","AccountType":"Expense","Classification":"Expense","CurrentBalance":0,"Active":true}
]}}`)
	})

	accounts, err := adapter.GetChartOfAccounts(context.Background())
	require.NoError(t, err)

	require.Len(t, accounts, 2)
	assert.Equal(t, "Bancos", accounts[0].Name)
	assert.Equal(t, "15000.50", accounts[0].Balance)
	assert.Equal(t, "Expense", accounts[1].Classification)
}

func TestGetProfitAndLossReport(t *testing.T) {
	adapter, _ := newTestAdapter(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "2026-01-01", r.URL.Query().Get("start_date"))
		fmt.Fprint(w, `{
  "Header":{"ReportName":"ProfitAndLoss","Currency":"MXN"},
  "Rows":{"Row":[
    {"type":"Section","group":"Income",
     "Header":{"ColData":[{"value":"Ingresos"}]},
     "Rows":{"Row":[{"ColData":[{"value":"Ventas de tours"},{"value":"125000.00"}]}]},
     "Summary":{"ColData":[{"value":"Total Ingresos"},{"value":"125000.00"}]}}
  ]}
}`)
	})

	start := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(2026, 6, 30, 0, 0, 0, 0, time.UTC)
	report, err := adapter.GetProfitAndLossReport(context.Background(), start, end)
	require.NoError(t, err)

	assert.Equal(t, "ProfitAndLoss", report.Name)
	require.Len(t, report.Rows, 1)
	assert.Equal(t, "Ingresos", report.Rows[0].Label)
	require.Len(t, report.Rows[0].Children, 1)
	assert.Equal(t, "125000.00", report.Rows[0].Children[0].Amount)
}

func TestNewRechazaCredencialesIncompletas(t *testing.T) {
	cfg := testConfig()
	cfg.RefreshToken = ""

	_, err := New(cfg)

	var cfgErr *domain.ConfigurationError
	assert.True(t, errors.As(err, &cfgErr))
}
