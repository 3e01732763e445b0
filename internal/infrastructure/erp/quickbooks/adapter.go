package quickbooks

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/spirittours/erp-hub/internal/application/erp"
	"github.com/spirittours/erp-hub/internal/domain"
	"github.com/spirittours/erp-hub/internal/domain/entity"
	"github.com/spirittours/erp-hub/internal/domain/unified"
)

const (
	providerName = "quickbooks"
	txnDateFmt   = "2006-01-02"
)

var capabilities = []string{
	"customers", "invoices", "payments", "vendors", "bills",
	"bill_payments", "credit_memos", "chart_of_accounts", "reports", "void",
}

var _ erp.AccountingAdapter = (*Adapter)(nil)

// Adapter conector a QuickBooks Online. El modo sandbox se decide por el
// Enviro de la configuración de sucursal.
type Adapter struct {
	erp.BaseAdapter
	client *client
}

// New construye el adaptador a partir de la configuración de la sucursal.
func New(cfg *entity.ConfiguracionERPSucursal) (*Adapter, error) {
	if cfg.ClientID == "" || cfg.ClientSecret == "" || cfg.RefreshToken == "" || cfg.RealmID == "" {
		return nil, &domain.ConfigurationError{Reason: "quickbooks requiere client_id, client_secret, refresh_token y realm_id"}
	}
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = baseURLProd
		if cfg.Enviro == "sandbox" {
			baseURL = baseURLSandbox
		}
	}
	return &Adapter{
		BaseAdapter: erp.NewBaseAdapter(providerName, "QuickBooks Online", "v3"),
		client:      newClient(cfg.ClientID, cfg.ClientSecret, cfg.RefreshToken, cfg.RealmID, baseURL),
	}, nil
}

// Builder es el constructor que se registra en el factory de adaptadores.
func Builder(cfg *entity.ConfiguracionERPSucursal) (erp.AccountingAdapter, error) {
	return New(cfg)
}

// Authenticate fuerza la renovación del access token.
func (a *Adapter) Authenticate(ctx context.Context) error {
	if err := a.client.refreshAccessToken(ctx); err != nil {
		a.SetAuthenticated(false)
		a.RecordError("authenticate", err)
		return err
	}
	a.SetAuthenticated(true)
	return nil
}

// TestConnection consulta CompanyInfo; cualquier falla viaja en el resultado.
func (a *Adapter) TestConnection(ctx context.Context) erp.ConnectionResult {
	result := erp.ConnectionResult{CheckedAt: time.Now()}
	var out map[string]any
	if err := a.client.get(ctx, "test_connection", "companyinfo/"+a.client.realmID, &out); err != nil {
		a.RecordError("test_connection", err)
		result.Message = err.Error()
		return result
	}
	a.SetAuthenticated(true)
	result.Connected = true
	result.Message = "conexión establecida"
	return result
}

// ── Clientes ─────────────────────────────────────────────────────────────────

func (a *Adapter) SyncCustomer(ctx context.Context, c *unified.UnifiedCustomer) (*erp.SyncResult, error) {
	payload := customerToQB(c)
	if c.ERPID != "" {
		existing, err := a.fetchCustomer(ctx, "sync_customer", c.ERPID)
		if err != nil {
			return nil, err
		}
		payload.ID = existing.ID
		payload.SyncToken = existing.SyncToken
		payload.Sparse = true
	}

	var resp qbEntityResponse
	if err := a.client.post(ctx, "sync_customer", "customer", payload, &resp); err != nil {
		a.RecordError("sync_customer", err)
		return nil, err
	}
	if resp.Customer == nil {
		return nil, &domain.AdapterOperationError{Provider: providerName, Method: "sync_customer", Cause: fmt.Errorf("respuesta sin entidad Customer")}
	}
	a.TouchLastSync()
	return &erp.SyncResult{
		ERPEntityID:     resp.Customer.ID,
		ERPEntityNumber: resp.Customer.DisplayName,
	}, nil
}

func (a *Adapter) GetCustomer(ctx context.Context, erpID string) (*unified.UnifiedCustomer, error) {
	qc, err := a.fetchCustomer(ctx, "get_customer", erpID)
	if err != nil {
		a.RecordError("get_customer", err)
		return nil, err
	}
	return customerFromQB(qc), nil
}

func (a *Adapter) UpdateCustomer(ctx context.Context, erpID string, c *unified.UnifiedCustomer) (*erp.SyncResult, error) {
	clone := *c
	clone.ERPID = erpID
	return a.SyncCustomer(ctx, &clone)
}

func (a *Adapter) fetchCustomer(ctx context.Context, method, erpID string) (*qbCustomer, error) {
	var resp qbQueryResponse
	q := fmt.Sprintf("select * from Customer where Id = '%s'", erpID)
	if err := a.client.query(ctx, method, q, &resp); err != nil {
		return nil, err
	}
	if len(resp.QueryResponse.Customer) == 0 {
		return nil, &domain.NotFoundError{EntityType: "customer", EntityID: erpID}
	}
	return &resp.QueryResponse.Customer[0], nil
}

// ── Facturas ─────────────────────────────────────────────────────────────────

func (a *Adapter) SyncInvoice(ctx context.Context, inv *unified.UnifiedInvoice) (*erp.SyncResult, error) {
	payload := invoiceToQB(inv)
	if inv.ERPID != "" {
		existing, err := a.fetchInvoice(ctx, "sync_invoice", inv.ERPID)
		if err != nil {
			return nil, err
		}
		payload.ID = existing.ID
		payload.SyncToken = existing.SyncToken
		payload.Sparse = true
	}

	var resp qbEntityResponse
	if err := a.client.post(ctx, "sync_invoice", "invoice", payload, &resp); err != nil {
		a.RecordError("sync_invoice", err)
		return nil, err
	}
	if resp.Invoice == nil {
		return nil, &domain.AdapterOperationError{Provider: providerName, Method: "sync_invoice", Cause: fmt.Errorf("respuesta sin entidad Invoice")}
	}
	a.TouchLastSync()
	return &erp.SyncResult{
		ERPEntityID:     resp.Invoice.ID,
		ERPEntityNumber: resp.Invoice.DocNumber,
	}, nil
}

func (a *Adapter) GetInvoice(ctx context.Context, erpID string) (*unified.UnifiedInvoice, error) {
	qi, err := a.fetchInvoice(ctx, "get_invoice", erpID)
	if err != nil {
		a.RecordError("get_invoice", err)
		return nil, err
	}
	return invoiceFromQB(qi), nil
}

// VoidInvoice anula la factura en QuickBooks (operation=void).
func (a *Adapter) VoidInvoice(ctx context.Context, erpID string) (*erp.SyncResult, error) {
	existing, err := a.fetchInvoice(ctx, "void_invoice", erpID)
	if err != nil {
		a.RecordError("void_invoice", err)
		return nil, err
	}
	payload := map[string]string{"Id": existing.ID, "SyncToken": existing.SyncToken}
	var resp qbEntityResponse
	if err := a.client.post(ctx, "void_invoice", "invoice?operation=void", payload, &resp); err != nil {
		a.RecordError("void_invoice", err)
		return nil, err
	}
	a.TouchLastSync()
	return &erp.SyncResult{ERPEntityID: erpID}, nil
}

func (a *Adapter) fetchInvoice(ctx context.Context, method, erpID string) (*qbInvoice, error) {
	var resp qbQueryResponse
	q := fmt.Sprintf("select * from Invoice where Id = '%s'", erpID)
	if err := a.client.query(ctx, method, q, &resp); err != nil {
		return nil, err
	}
	if len(resp.QueryResponse.Invoice) == 0 {
		return nil, &domain.NotFoundError{EntityType: "invoice", EntityID: erpID}
	}
	return &resp.QueryResponse.Invoice[0], nil
}

// ── Pagos ────────────────────────────────────────────────────────────────────

func (a *Adapter) SyncPayment(ctx context.Context, p *unified.UnifiedPayment) (*erp.SyncResult, error) {
	payload := &qbPayment{
		ID:            p.ERPID,
		CustomerRef:   qbRef{Value: p.CustomerERPID},
		TotalAmt:      num(p.Amount),
		TxnDate:       p.Date.Format(txnDateFmt),
		PaymentRefNum: p.Reference,
		CurrencyRef:   currencyRef(p.Currency),
	}
	if p.InvoiceERPID != "" {
		payload.Line = []qbPaymentLine{{
			Amount:    num(p.Amount),
			LinkedTxn: []qbLinkedTxn{{TxnID: p.InvoiceERPID, TxnType: "Invoice"}},
		}}
	}

	var resp qbEntityResponse
	if err := a.client.post(ctx, "sync_payment", "payment", payload, &resp); err != nil {
		a.RecordError("sync_payment", err)
		return nil, err
	}
	if resp.Payment == nil {
		return nil, &domain.AdapterOperationError{Provider: providerName, Method: "sync_payment", Cause: fmt.Errorf("respuesta sin entidad Payment")}
	}
	a.TouchLastSync()
	return &erp.SyncResult{
		ERPEntityID:     resp.Payment.ID,
		ERPEntityNumber: resp.Payment.PaymentRefNum,
	}, nil
}

func (a *Adapter) GetPayment(ctx context.Context, erpID string) (*unified.UnifiedPayment, error) {
	var resp qbQueryResponse
	q := fmt.Sprintf("select * from Payment where Id = '%s'", erpID)
	if err := a.client.query(ctx, "get_payment", q, &resp); err != nil {
		a.RecordError("get_payment", err)
		return nil, err
	}
	if len(resp.QueryResponse.Payment) == 0 {
		return nil, &domain.NotFoundError{EntityType: "payment", EntityID: erpID}
	}
	return paymentFromQB(&resp.QueryResponse.Payment[0]), nil
}

// ── Proveedores y cuentas por pagar ──────────────────────────────────────────

func (a *Adapter) SyncVendor(ctx context.Context, v *unified.UnifiedVendor) (*erp.SyncResult, error) {
	payload := &qbVendor{
		DisplayName:   v.Name,
		TaxIdentifier: v.RFC,
		CurrencyRef:   currencyRef(v.Currency),
	}
	if v.Email != "" {
		payload.PrimaryEmailAddr = &qbEmail{Address: v.Email}
	}
	if v.Phone != "" {
		payload.PrimaryPhone = &qbPhone{FreeFormNumber: v.Phone}
	}
	if v.ERPID != "" {
		existing, err := a.fetchVendor(ctx, "sync_vendor", v.ERPID)
		if err != nil {
			return nil, err
		}
		payload.ID = existing.ID
		payload.SyncToken = existing.SyncToken
		payload.Sparse = true
	}

	var resp qbEntityResponse
	if err := a.client.post(ctx, "sync_vendor", "vendor", payload, &resp); err != nil {
		a.RecordError("sync_vendor", err)
		return nil, err
	}
	if resp.Vendor == nil {
		return nil, &domain.AdapterOperationError{Provider: providerName, Method: "sync_vendor", Cause: fmt.Errorf("respuesta sin entidad Vendor")}
	}
	a.TouchLastSync()
	return &erp.SyncResult{
		ERPEntityID:     resp.Vendor.ID,
		ERPEntityNumber: resp.Vendor.DisplayName,
	}, nil
}

func (a *Adapter) GetVendor(ctx context.Context, erpID string) (*unified.UnifiedVendor, error) {
	qv, err := a.fetchVendor(ctx, "get_vendor", erpID)
	if err != nil {
		a.RecordError("get_vendor", err)
		return nil, err
	}
	return vendorFromQB(qv), nil
}

func (a *Adapter) fetchVendor(ctx context.Context, method, erpID string) (*qbVendor, error) {
	var resp qbQueryResponse
	q := fmt.Sprintf("select * from Vendor where Id = '%s'", erpID)
	if err := a.client.query(ctx, method, q, &resp); err != nil {
		return nil, err
	}
	if len(resp.QueryResponse.Vendor) == 0 {
		return nil, &domain.NotFoundError{EntityType: "vendor", EntityID: erpID}
	}
	return &resp.QueryResponse.Vendor[0], nil
}

func (a *Adapter) SyncBill(ctx context.Context, b *unified.UnifiedBill) (*erp.SyncResult, error) {
	payload := &qbBill{
		ID:          b.ERPID,
		DocNumber:   b.Folio,
		VendorRef:   qbRef{Value: b.VendorERPID},
		TxnDate:     b.IssueDate.Format(txnDateFmt),
		DueDate:     b.DueDate.Format(txnDateFmt),
		CurrencyRef: currencyRef(b.Currency),
		Memo:        b.Memo,
		Line: []qbBillLine{{
			Amount:      num(b.Total),
			Description: b.Memo,
			DetailType:  "AccountBasedExpenseLineDetail",
			AccountBasedExpenseLineDetail: &qbBillLineDetail{
				AccountRef: qbRef{Value: expenseAccount(b.CustomFields)},
			},
		}},
	}

	var resp qbEntityResponse
	if err := a.client.post(ctx, "sync_bill", "bill", payload, &resp); err != nil {
		a.RecordError("sync_bill", err)
		return nil, err
	}
	if resp.Bill == nil {
		return nil, &domain.AdapterOperationError{Provider: providerName, Method: "sync_bill", Cause: fmt.Errorf("respuesta sin entidad Bill")}
	}
	a.TouchLastSync()
	return &erp.SyncResult{
		ERPEntityID:     resp.Bill.ID,
		ERPEntityNumber: resp.Bill.DocNumber,
	}, nil
}

func (a *Adapter) GetBill(ctx context.Context, erpID string) (*unified.UnifiedBill, error) {
	var resp qbQueryResponse
	q := fmt.Sprintf("select * from Bill where Id = '%s'", erpID)
	if err := a.client.query(ctx, "get_bill", q, &resp); err != nil {
		a.RecordError("get_bill", err)
		return nil, err
	}
	if len(resp.QueryResponse.Bill) == 0 {
		return nil, &domain.NotFoundError{EntityType: "bill", EntityID: erpID}
	}
	return billFromQB(&resp.QueryResponse.Bill[0]), nil
}

func (a *Adapter) SyncBillPayment(ctx context.Context, bp *unified.UnifiedBillPayment) (*erp.SyncResult, error) {
	payload := &qbBillPayment{
		ID:          bp.ERPID,
		VendorRef:   qbRef{Value: bp.VendorERPID},
		PayType:     "Check",
		TotalAmt:    num(bp.Amount),
		TxnDate:     bp.Date.Format(txnDateFmt),
		DocNumber:   bp.Reference,
		CurrencyRef: currencyRef(bp.Currency),
	}
	if bp.BillERPID != "" {
		payload.Line = []qbPaymentLine{{
			Amount:    num(bp.Amount),
			LinkedTxn: []qbLinkedTxn{{TxnID: bp.BillERPID, TxnType: "Bill"}},
		}}
	}

	var resp qbEntityResponse
	if err := a.client.post(ctx, "sync_bill_payment", "billpayment", payload, &resp); err != nil {
		a.RecordError("sync_bill_payment", err)
		return nil, err
	}
	if resp.BillPayment == nil {
		return nil, &domain.AdapterOperationError{Provider: providerName, Method: "sync_bill_payment", Cause: fmt.Errorf("respuesta sin entidad BillPayment")}
	}
	a.TouchLastSync()
	return &erp.SyncResult{
		ERPEntityID:     resp.BillPayment.ID,
		ERPEntityNumber: resp.BillPayment.DocNumber,
	}, nil
}

func (a *Adapter) GetBillPayment(ctx context.Context, erpID string) (*unified.UnifiedBillPayment, error) {
	var resp qbQueryResponse
	q := fmt.Sprintf("select * from BillPayment where Id = '%s'", erpID)
	if err := a.client.query(ctx, "get_bill_payment", q, &resp); err != nil {
		a.RecordError("get_bill_payment", err)
		return nil, err
	}
	if len(resp.QueryResponse.BillPayment) == 0 {
		return nil, &domain.NotFoundError{EntityType: "bill_payment", EntityID: erpID}
	}
	return billPaymentFromQB(&resp.QueryResponse.BillPayment[0]), nil
}

// ── Notas de crédito ─────────────────────────────────────────────────────────

func (a *Adapter) SyncCreditMemo(ctx context.Context, cm *unified.UnifiedCreditMemo) (*erp.SyncResult, error) {
	payload := &qbCreditMemo{
		ID:          cm.ERPID,
		DocNumber:   cm.Folio,
		CustomerRef: qbRef{Value: cm.CustomerERPID},
		TxnDate:     cm.Date.Format(txnDateFmt),
		CurrencyRef: currencyRef(cm.Currency),
		PrivateNote: cm.Reason,
		Line: []qbLine{{
			Amount:      num(cm.Amount),
			Description: cm.Reason,
			DetailType:  "SalesItemLineDetail",
			SalesItemLineDetail: &qbLineDetail{
				Qty:       "1",
				UnitPrice: num(cm.Amount),
			},
		}},
	}

	var resp qbEntityResponse
	if err := a.client.post(ctx, "sync_credit_memo", "creditmemo", payload, &resp); err != nil {
		a.RecordError("sync_credit_memo", err)
		return nil, err
	}
	if resp.Credit == nil {
		return nil, &domain.AdapterOperationError{Provider: providerName, Method: "sync_credit_memo", Cause: fmt.Errorf("respuesta sin entidad CreditMemo")}
	}
	a.TouchLastSync()
	return &erp.SyncResult{
		ERPEntityID:     resp.Credit.ID,
		ERPEntityNumber: resp.Credit.DocNumber,
	}, nil
}

func (a *Adapter) GetCreditMemo(ctx context.Context, erpID string) (*unified.UnifiedCreditMemo, error) {
	var resp qbQueryResponse
	q := fmt.Sprintf("select * from CreditMemo where Id = '%s'", erpID)
	if err := a.client.query(ctx, "get_credit_memo", q, &resp); err != nil {
		a.RecordError("get_credit_memo", err)
		return nil, err
	}
	if len(resp.QueryResponse.CreditMemo) == 0 {
		return nil, &domain.NotFoundError{EntityType: "credit_memo", EntityID: erpID}
	}
	return creditMemoFromQB(&resp.QueryResponse.CreditMemo[0]), nil
}

// ── Catálogo contable y reportes ─────────────────────────────────────────────

func (a *Adapter) GetChartOfAccounts(ctx context.Context) ([]erp.Account, error) {
	var resp qbQueryResponse
	if err := a.client.query(ctx, "chart_of_accounts", "select * from Account maxresults 1000", &resp); err != nil {
		a.RecordError("chart_of_accounts", err)
		return nil, err
	}
	accounts := make([]erp.Account, 0, len(resp.QueryResponse.Account))
	for _, qa := range resp.QueryResponse.Account {
		accounts = append(accounts, accountFromQB(qa))
	}
	return accounts, nil
}

func (a *Adapter) GetAccount(ctx context.Context, erpID string) (*erp.Account, error) {
	var resp qbQueryResponse
	q := fmt.Sprintf("select * from Account where Id = '%s'", erpID)
	if err := a.client.query(ctx, "get_account", q, &resp); err != nil {
		a.RecordError("get_account", err)
		return nil, err
	}
	if len(resp.QueryResponse.Account) == 0 {
		return nil, &domain.NotFoundError{EntityType: "account", EntityID: erpID}
	}
	acc := accountFromQB(resp.QueryResponse.Account[0])
	return &acc, nil
}

func (a *Adapter) GetProfitAndLossReport(ctx context.Context, start, end time.Time) (*erp.Report, error) {
	path := fmt.Sprintf("reports/ProfitAndLoss?start_date=%s&end_date=%s",
		start.Format(txnDateFmt), end.Format(txnDateFmt))
	var raw qbReport
	if err := a.client.get(ctx, "profit_and_loss", path, &raw); err != nil {
		a.RecordError("profit_and_loss", err)
		return nil, err
	}
	return reportFromQB(raw, start, end), nil
}

func (a *Adapter) GetBalanceSheetReport(ctx context.Context, asOf time.Time) (*erp.Report, error) {
	path := "reports/BalanceSheet?end_date=" + asOf.Format(txnDateFmt)
	var raw qbReport
	if err := a.client.get(ctx, "balance_sheet", path, &raw); err != nil {
		a.RecordError("balance_sheet", err)
		return nil, err
	}
	return reportFromQB(raw, asOf, asOf), nil
}

// GetInfo describe el adaptador y sus capacidades completas.
func (a *Adapter) GetInfo() erp.AdapterInfo {
	return a.Info(capabilities)
}

// ── Conversiones ─────────────────────────────────────────────────────────────

func customerToQB(c *unified.UnifiedCustomer) *qbCustomer {
	qc := &qbCustomer{
		DisplayName:          c.Name,
		CompanyName:          c.Name,
		PrimaryTaxIdentifier: c.RFC,
		CurrencyRef:          currencyRef(c.Currency),
	}
	if c.Email != "" {
		qc.PrimaryEmailAddr = &qbEmail{Address: c.Email}
	}
	if c.Phone != "" {
		qc.PrimaryPhone = &qbPhone{FreeFormNumber: c.Phone}
	}
	if c.Address != "" {
		qc.BillAddr = &qbAddress{Line1: c.Address}
	}
	return qc
}

func customerFromQB(qc *qbCustomer) *unified.UnifiedCustomer {
	c := &unified.UnifiedCustomer{
		ERPID: qc.ID,
		Name:  qc.DisplayName,
		RFC:   qc.PrimaryTaxIdentifier,
	}
	if qc.PrimaryEmailAddr != nil {
		c.Email = qc.PrimaryEmailAddr.Address
	}
	if qc.PrimaryPhone != nil {
		c.Phone = qc.PrimaryPhone.FreeFormNumber
	}
	if qc.BillAddr != nil {
		c.Address = qc.BillAddr.Line1
	}
	if qc.CurrencyRef != nil {
		c.Currency = qc.CurrencyRef.Value
	}
	return c
}

func invoiceToQB(inv *unified.UnifiedInvoice) *qbInvoice {
	qi := &qbInvoice{
		DocNumber:   inv.Folio,
		CustomerRef: qbRef{Value: inv.CustomerERPID},
		TxnDate:     inv.IssueDate.Format(txnDateFmt),
		DueDate:     inv.DueDate.Format(txnDateFmt),
		CurrencyRef: currencyRef(inv.Currency),
	}
	for _, l := range inv.Lines {
		qi.Line = append(qi.Line, qbLine{
			Amount:      num(l.Amount),
			Description: l.Description,
			DetailType:  "SalesItemLineDetail",
			SalesItemLineDetail: &qbLineDetail{
				Qty:       json.Number(l.Quantity.String()),
				UnitPrice: num(l.UnitPrice),
			},
		})
	}
	// Sin líneas (concepto global): una sola línea por el subtotal.
	if len(qi.Line) == 0 {
		qi.Line = []qbLine{{
			Amount:      num(inv.Subtotal),
			Description: inv.CustomFields["concepto"],
			DetailType:  "SalesItemLineDetail",
			SalesItemLineDetail: &qbLineDetail{
				Qty:       "1",
				UnitPrice: num(inv.Subtotal),
			},
		}}
	}
	return qi
}

func invoiceFromQB(qi *qbInvoice) *unified.UnifiedInvoice {
	inv := &unified.UnifiedInvoice{
		ERPID:         qi.ID,
		CustomerERPID: qi.CustomerRef.Value,
		Folio:         qi.DocNumber,
		Total:         parseAmount(qi.TotalAmt),
		Balance:       parseAmount(qi.Balance),
	}
	if qi.CurrencyRef != nil {
		inv.Currency = qi.CurrencyRef.Value
	}
	if t, err := time.Parse(txnDateFmt, qi.TxnDate); err == nil {
		inv.IssueDate = t
	}
	if t, err := time.Parse(txnDateFmt, qi.DueDate); err == nil {
		inv.DueDate = t
	}
	for _, l := range qi.Line {
		if l.SalesItemLineDetail == nil {
			continue
		}
		inv.Lines = append(inv.Lines, unified.UnifiedInvoiceLine{
			Description: l.Description,
			Quantity:    parseAmount(l.SalesItemLineDetail.Qty),
			UnitPrice:   parseAmount(l.SalesItemLineDetail.UnitPrice),
			Amount:      parseAmount(l.Amount),
		})
	}
	return inv
}

func paymentFromQB(qp *qbPayment) *unified.UnifiedPayment {
	p := &unified.UnifiedPayment{
		ERPID:         qp.ID,
		CustomerERPID: qp.CustomerRef.Value,
		Amount:        parseAmount(qp.TotalAmt),
		Reference:     qp.PaymentRefNum,
	}
	if qp.CurrencyRef != nil {
		p.Currency = qp.CurrencyRef.Value
	}
	if t, err := time.Parse(txnDateFmt, qp.TxnDate); err == nil {
		p.Date = t
	}
	for _, l := range qp.Line {
		for _, txn := range l.LinkedTxn {
			if txn.TxnType == "Invoice" {
				p.InvoiceERPID = txn.TxnID
			}
		}
	}
	return p
}

func vendorFromQB(qv *qbVendor) *unified.UnifiedVendor {
	v := &unified.UnifiedVendor{
		ERPID: qv.ID,
		Name:  qv.DisplayName,
		RFC:   qv.TaxIdentifier,
	}
	if qv.PrimaryEmailAddr != nil {
		v.Email = qv.PrimaryEmailAddr.Address
	}
	if qv.PrimaryPhone != nil {
		v.Phone = qv.PrimaryPhone.FreeFormNumber
	}
	if qv.CurrencyRef != nil {
		v.Currency = qv.CurrencyRef.Value
	}
	return v
}

func billFromQB(qb *qbBill) *unified.UnifiedBill {
	b := &unified.UnifiedBill{
		ERPID:       qb.ID,
		VendorERPID: qb.VendorRef.Value,
		Folio:       qb.DocNumber,
		Total:       parseAmount(qb.TotalAmt),
		Balance:     parseAmount(qb.Balance),
		Memo:        qb.Memo,
	}
	if qb.CurrencyRef != nil {
		b.Currency = qb.CurrencyRef.Value
	}
	if t, err := time.Parse(txnDateFmt, qb.TxnDate); err == nil {
		b.IssueDate = t
	}
	if t, err := time.Parse(txnDateFmt, qb.DueDate); err == nil {
		b.DueDate = t
	}
	return b
}

func billPaymentFromQB(qbp *qbBillPayment) *unified.UnifiedBillPayment {
	bp := &unified.UnifiedBillPayment{
		ERPID:       qbp.ID,
		VendorERPID: qbp.VendorRef.Value,
		Amount:      parseAmount(qbp.TotalAmt),
		Reference:   qbp.DocNumber,
		Method:      qbp.PayType,
	}
	if qbp.CurrencyRef != nil {
		bp.Currency = qbp.CurrencyRef.Value
	}
	if t, err := time.Parse(txnDateFmt, qbp.TxnDate); err == nil {
		bp.Date = t
	}
	for _, l := range qbp.Line {
		for _, txn := range l.LinkedTxn {
			if txn.TxnType == "Bill" {
				bp.BillERPID = txn.TxnID
			}
		}
	}
	return bp
}

func creditMemoFromQB(qcm *qbCreditMemo) *unified.UnifiedCreditMemo {
	cm := &unified.UnifiedCreditMemo{
		ERPID:         qcm.ID,
		CustomerERPID: qcm.CustomerRef.Value,
		Folio:         qcm.DocNumber,
		Amount:        parseAmount(qcm.TotalAmt),
		Reason:        qcm.PrivateNote,
	}
	if qcm.CurrencyRef != nil {
		cm.Currency = qcm.CurrencyRef.Value
	}
	if t, err := time.Parse(txnDateFmt, qcm.TxnDate); err == nil {
		cm.Date = t
	}
	return cm
}

func accountFromQB(qa qbAccount) erp.Account {
	acc := erp.Account{
		ERPID:          qa.ID,
		Name:           qa.Name,
		Number:         qa.AcctNum,
		Type:           qa.AccountType,
		Classification: qa.Classification,
		Balance:        qa.CurrentBalance.String(),
		Active:         qa.Active,
	}
	if qa.CurrencyRef != nil {
		acc.Currency = qa.CurrencyRef.Value
	}
	return acc
}

func reportFromQB(raw qbReport, start, end time.Time) *erp.Report {
	return &erp.Report{
		Name:      raw.Header.ReportName,
		Currency:  raw.Header.Currency,
		StartDate: start,
		EndDate:   end,
		Rows:      reportRowsFromQB(raw.Rows),
	}
}

func reportRowsFromQB(rows qbReportRows) []erp.ReportRow {
	out := make([]erp.ReportRow, 0, len(rows.Row))
	for _, r := range rows.Row {
		row := erp.ReportRow{Group: r.Group}
		switch {
		case len(r.ColData) >= 2:
			row.Label = r.ColData[0].Value
			row.Amount = r.ColData[1].Value
		case r.Header != nil && len(r.Header.ColData) >= 1:
			// Sección: etiqueta del encabezado, monto del renglón resumen.
			row.Label = r.Header.ColData[0].Value
			if r.Summary != nil && len(r.Summary.ColData) >= 2 {
				row.Amount = r.Summary.ColData[1].Value
			}
		case r.Summary != nil && len(r.Summary.ColData) >= 2:
			row.Label = r.Summary.ColData[0].Value
			row.Amount = r.Summary.ColData[1].Value
		}
		if r.Rows != nil {
			row.Children = reportRowsFromQB(*r.Rows)
		}
		out = append(out, row)
	}
	return out
}

func currencyRef(code string) *qbRef {
	if code == "" {
		return nil
	}
	return &qbRef{Value: code}
}

func num(d decimal.Decimal) json.Number {
	return json.Number(d.StringFixed(2))
}

func parseAmount(s json.Number) decimal.Decimal {
	if s == "" {
		return decimal.Zero
	}
	d, err := decimal.NewFromString(s.String())
	if err != nil {
		return decimal.Zero
	}
	return d
}

// expenseAccount resuelve la cuenta de gasto para las cuentas por pagar; la
// plataforma puede fijarla por sucursal vía custom fields.
func expenseAccount(custom map[string]string) string {
	if id := custom["expense_account_id"]; id != "" {
		return id
	}
	// Cuenta de gastos de viaje por omisión en los realms de la plataforma.
	return "54"
}
