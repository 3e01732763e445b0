package quickbooks

import "encoding/json"

// DTOs del API v3 de QuickBooks Online. Sólo se declaran los campos que la
// plataforma lee o escribe; el resto del payload de Intuit se ignora.

type qbRef struct {
	Value string `json:"value"`
	Name  string `json:"name,omitempty"`
}

type qbAddress struct {
	Line1 string `json:"Line1,omitempty"`
	City  string `json:"City,omitempty"`
}

type qbEmail struct {
	Address string `json:"Address,omitempty"`
}

type qbPhone struct {
	FreeFormNumber string `json:"FreeFormNumber,omitempty"`
}

type qbCustomer struct {
	ID               string     `json:"Id,omitempty"`
	SyncToken        string     `json:"SyncToken,omitempty"`
	Sparse           bool       `json:"sparse,omitempty"`
	DisplayName      string     `json:"DisplayName"`
	CompanyName      string     `json:"CompanyName,omitempty"`
	PrimaryTaxIdentifier string `json:"PrimaryTaxIdentifier,omitempty"`
	PrimaryEmailAddr *qbEmail   `json:"PrimaryEmailAddr,omitempty"`
	PrimaryPhone     *qbPhone   `json:"PrimaryPhone,omitempty"`
	BillAddr         *qbAddress `json:"BillAddr,omitempty"`
	CurrencyRef      *qbRef     `json:"CurrencyRef,omitempty"`
	Active           *bool      `json:"Active,omitempty"`
}

type qbVendor struct {
	ID               string   `json:"Id,omitempty"`
	SyncToken        string   `json:"SyncToken,omitempty"`
	Sparse           bool     `json:"sparse,omitempty"`
	DisplayName      string   `json:"DisplayName"`
	TaxIdentifier    string   `json:"TaxIdentifier,omitempty"`
	PrimaryEmailAddr *qbEmail `json:"PrimaryEmailAddr,omitempty"`
	PrimaryPhone     *qbPhone `json:"PrimaryPhone,omitempty"`
	CurrencyRef      *qbRef   `json:"CurrencyRef,omitempty"`
}

type qbLineDetail struct {
	Qty       json.Number `json:"Qty,omitempty"`
	UnitPrice json.Number `json:"UnitPrice,omitempty"`
	ItemRef   *qbRef `json:"ItemRef,omitempty"`
}

type qbLine struct {
	Amount              json.Number   `json:"Amount"`
	Description         string        `json:"Description,omitempty"`
	DetailType          string        `json:"DetailType"`
	SalesItemLineDetail *qbLineDetail `json:"SalesItemLineDetail,omitempty"`
}

type qbInvoice struct {
	ID          string  `json:"Id,omitempty"`
	SyncToken   string  `json:"SyncToken,omitempty"`
	Sparse      bool    `json:"sparse,omitempty"`
	DocNumber   string  `json:"DocNumber,omitempty"`
	CustomerRef qbRef   `json:"CustomerRef"`
	TxnDate     string  `json:"TxnDate,omitempty"`
	DueDate     string  `json:"DueDate,omitempty"`
	CurrencyRef *qbRef  `json:"CurrencyRef,omitempty"`
	Line        []qbLine `json:"Line"`
	TotalAmt    json.Number `json:"TotalAmt,omitempty"`
	Balance     json.Number `json:"Balance,omitempty"`
	PrivateNote string  `json:"PrivateNote,omitempty"`
}

type qbLinkedTxn struct {
	TxnID   string `json:"TxnId"`
	TxnType string `json:"TxnType"`
}

type qbPaymentLine struct {
	Amount    json.Number   `json:"Amount"`
	LinkedTxn []qbLinkedTxn `json:"LinkedTxn"`
}

type qbPayment struct {
	ID           string          `json:"Id,omitempty"`
	SyncToken    string          `json:"SyncToken,omitempty"`
	CustomerRef  qbRef           `json:"CustomerRef"`
	TotalAmt     json.Number     `json:"TotalAmt"`
	TxnDate      string          `json:"TxnDate,omitempty"`
	PaymentRefNum string         `json:"PaymentRefNum,omitempty"`
	CurrencyRef  *qbRef          `json:"CurrencyRef,omitempty"`
	Line         []qbPaymentLine `json:"Line,omitempty"`
}

type qbBill struct {
	ID          string   `json:"Id,omitempty"`
	SyncToken   string   `json:"SyncToken,omitempty"`
	Sparse      bool     `json:"sparse,omitempty"`
	DocNumber   string   `json:"DocNumber,omitempty"`
	VendorRef   qbRef    `json:"VendorRef"`
	TxnDate     string   `json:"TxnDate,omitempty"`
	DueDate     string   `json:"DueDate,omitempty"`
	CurrencyRef *qbRef   `json:"CurrencyRef,omitempty"`
	Line        []qbBillLine `json:"Line"`
	TotalAmt    json.Number `json:"TotalAmt,omitempty"`
	Balance     json.Number `json:"Balance,omitempty"`
	Memo        string   `json:"PrivateNote,omitempty"`
}

type qbBillLineDetail struct {
	AccountRef qbRef `json:"AccountRef"`
}

type qbBillLine struct {
	Amount                json.Number       `json:"Amount"`
	Description           string            `json:"Description,omitempty"`
	DetailType            string            `json:"DetailType"`
	AccountBasedExpenseLineDetail *qbBillLineDetail `json:"AccountBasedExpenseLineDetail,omitempty"`
}

type qbBillPayment struct {
	ID          string          `json:"Id,omitempty"`
	SyncToken   string          `json:"SyncToken,omitempty"`
	VendorRef   qbRef           `json:"VendorRef"`
	PayType     string          `json:"PayType"`
	TotalAmt    json.Number     `json:"TotalAmt"`
	TxnDate     string          `json:"TxnDate,omitempty"`
	DocNumber   string          `json:"DocNumber,omitempty"`
	CurrencyRef *qbRef          `json:"CurrencyRef,omitempty"`
	Line        []qbPaymentLine `json:"Line,omitempty"`
	CheckPayment *struct {
		BankAccountRef qbRef `json:"BankAccountRef"`
	} `json:"CheckPayment,omitempty"`
}

type qbCreditMemo struct {
	ID          string   `json:"Id,omitempty"`
	SyncToken   string   `json:"SyncToken,omitempty"`
	DocNumber   string   `json:"DocNumber,omitempty"`
	CustomerRef qbRef    `json:"CustomerRef"`
	TxnDate     string   `json:"TxnDate,omitempty"`
	CurrencyRef *qbRef   `json:"CurrencyRef,omitempty"`
	Line        []qbLine `json:"Line"`
	TotalAmt    json.Number `json:"TotalAmt,omitempty"`
	PrivateNote string   `json:"PrivateNote,omitempty"`
}

type qbAccount struct {
	ID             string `json:"Id"`
	Name           string `json:"Name"`
	AcctNum        string `json:"AcctNum"`
	AccountType    string `json:"AccountType"`
	Classification string `json:"Classification"`
	CurrentBalance json.Number `json:"CurrentBalance"`
	Active         bool   `json:"Active"`
	CurrencyRef    *qbRef `json:"CurrencyRef,omitempty"`
}

// qbEntityResponse envuelve la respuesta de creación/actualización: Intuit
// regresa la entidad bajo una llave con su nombre propio.
type qbEntityResponse struct {
	Customer    *qbCustomer    `json:"Customer,omitempty"`
	Vendor      *qbVendor      `json:"Vendor,omitempty"`
	Invoice     *qbInvoice     `json:"Invoice,omitempty"`
	Payment     *qbPayment     `json:"Payment,omitempty"`
	Bill        *qbBill        `json:"Bill,omitempty"`
	BillPayment *qbBillPayment `json:"BillPayment,omitempty"`
	Credit      *qbCreditMemo  `json:"CreditMemo,omitempty"`
	Fault       *qbFault       `json:"Fault,omitempty"`
}

type qbQueryResponse struct {
	QueryResponse struct {
		Customer    []qbCustomer    `json:"Customer,omitempty"`
		Vendor      []qbVendor      `json:"Vendor,omitempty"`
		Invoice     []qbInvoice     `json:"Invoice,omitempty"`
		Payment     []qbPayment     `json:"Payment,omitempty"`
		Bill        []qbBill        `json:"Bill,omitempty"`
		BillPayment []qbBillPayment `json:"BillPayment,omitempty"`
		CreditMemo  []qbCreditMemo  `json:"CreditMemo,omitempty"`
		Account     []qbAccount     `json:"Account,omitempty"`
	} `json:"QueryResponse"`
	Fault *qbFault `json:"Fault,omitempty"`
}

type qbFault struct {
	Type  string `json:"type"`
	Error []struct {
		Message string `json:"Message"`
		Detail  string `json:"Detail"`
		Code    string `json:"code"`
	} `json:"Error"`
}

// qbReport es la estructura genérica de los reportes financieros de Intuit
// (ProfitAndLoss, BalanceSheet): filas anidadas con columnas posicionales.
type qbReport struct {
	Header struct {
		ReportName  string `json:"ReportName"`
		Currency    string `json:"Currency"`
		StartPeriod string `json:"StartPeriod"`
		EndPeriod   string `json:"EndPeriod"`
	} `json:"Header"`
	Rows qbReportRows `json:"Rows"`
}

type qbReportRows struct {
	Row []qbReportRow `json:"Row"`
}

type qbReportRow struct {
	Type    string `json:"type"`
	Group   string `json:"group"`
	Header  *qbReportRowData `json:"Header,omitempty"`
	ColData []qbReportCol    `json:"ColData,omitempty"`
	Rows    *qbReportRows    `json:"Rows,omitempty"`
	Summary *qbReportRowData `json:"Summary,omitempty"`
}

type qbReportRowData struct {
	ColData []qbReportCol `json:"ColData"`
}

type qbReportCol struct {
	Value string `json:"value"`
}
