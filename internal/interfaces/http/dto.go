package http

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/spirittours/erp-hub/internal/application/erp"
	cfdidom "github.com/spirittours/erp-hub/internal/domain/cfdi"
	"github.com/spirittours/erp-hub/internal/domain/entity"
)

// ErrorResponse es el cuerpo estándar de error de la API.
type ErrorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// ── Sincronización ───────────────────────────────────────────────────────────

// BatchSyncItem es una entidad dentro de una corrida batch.
type BatchSyncItem struct {
	EntityType string `json:"entity_type"`
	EntityID   string `json:"entity_id"`
}

// BatchSyncRequest es el cuerpo de POST /api/sync/batch. Las entidades se
// procesan en el orden recibido; el fallo de una no detiene a las demás.
type BatchSyncRequest struct {
	Entities []BatchSyncItem `json:"entities"`
}

// BatchSyncItemResult es el resultado por entidad de una corrida batch.
type BatchSyncItemResult struct {
	EntityType  string `json:"entity_type"`
	EntityID    string `json:"entity_id"`
	Success     bool   `json:"success"`
	ERPEntityID string `json:"erp_entity_id,omitempty"`
	Error       string `json:"error,omitempty"`
}

// BatchSyncResponse resume una corrida batch.
type BatchSyncResponse struct {
	Processed int                   `json:"processed"`
	Succeeded int                   `json:"succeeded"`
	Failed    int                   `json:"failed"`
	Results   []BatchSyncItemResult `json:"results"`
}

// StatsResponse es la foto de contadores más la tasa de éxito derivada.
type StatsResponse struct {
	TotalSyncs       int     `json:"total_syncs"`
	SuccessfulSyncs  int     `json:"successful_syncs"`
	FailedSyncs      int     `json:"failed_syncs"`
	RetriedSyncs     int     `json:"retried_syncs"`
	UnsupportedSyncs int     `json:"unsupported_syncs"`
	SuccessRate      float64 `json:"success_rate"`
}

// SyncLogResponse es una fila del log de sincronización.
type SyncLogResponse struct {
	ID           string     `json:"id"`
	Provider     string     `json:"provider"`
	EntityType   string     `json:"entity_type"`
	EntityID     string     `json:"entity_id"`
	Folio        string     `json:"folio,omitempty"`
	Status       string     `json:"status"`
	Attempt      int        `json:"attempt"`
	ErrorMessage string     `json:"error_message,omitempty"`
	ERPEntityID  string     `json:"erp_entity_id,omitempty"`
	TriggeredBy  string     `json:"triggered_by"`
	StartedAt    time.Time  `json:"started_at"`
	FinishedAt   *time.Time `json:"finished_at,omitempty"`
}

func syncLogFromEntity(e *entity.SyncLogEntry) SyncLogResponse {
	return SyncLogResponse{
		ID:           e.ID,
		Provider:     e.Provider,
		EntityType:   e.EntityType,
		EntityID:     e.EntityID,
		Folio:        e.Folio,
		Status:       e.Status,
		Attempt:      e.Attempt,
		ErrorMessage: e.ErrorMessage,
		ERPEntityID:  e.ERPEntityID,
		TriggeredBy:  e.TriggeredBy,
		StartedAt:    e.StartedAt,
		FinishedAt:   e.FinishedAt,
	}
}

// MappingResponse es una fila del mapeo de entidades.
type MappingResponse struct {
	SucursalID      string    `json:"sucursal_id"`
	Provider        string    `json:"provider"`
	EntityType      string    `json:"entity_type"`
	EntityID        string    `json:"entity_id"`
	Folio           string    `json:"folio,omitempty"`
	ERPEntityID     string    `json:"erp_entity_id"`
	ERPEntityNumber string    `json:"erp_entity_number,omitempty"`
	SyncVersion     int       `json:"sync_version"`
	LastSyncedAt    time.Time `json:"last_synced_at"`
}

func mappingFromEntity(m *entity.EntityMapping) MappingResponse {
	return MappingResponse{
		SucursalID:      m.SucursalID,
		Provider:        m.ERPProvider,
		EntityType:      m.SpiritEntityType,
		EntityID:        m.SpiritEntityID,
		Folio:           m.SpiritFolio,
		ERPEntityID:     m.ERPEntityID,
		ERPEntityNumber: m.ERPEntityNumber,
		SyncVersion:     m.SyncVersion,
		LastSyncedAt:    m.LastSyncedAt,
	}
}

// WebhookEntityConfirmed es el cuerpo de POST /api/webhooks/entity-confirmed:
// la plataforma avisa que una entidad quedó confirmada y lista para contabilizar.
type WebhookEntityConfirmed struct {
	SucursalID string `json:"sucursal_id"`
	EntityType string `json:"entity_type"`
	EntityID   string `json:"entity_id"`
}

// ── ERP (consultas) ──────────────────────────────────────────────────────────

// ConnectionResponse es el resultado de probar la conexión ERP.
type ConnectionResponse struct {
	Connected bool      `json:"connected"`
	Message   string    `json:"message"`
	CheckedAt time.Time `json:"checked_at"`
}

// AccountResponse es una cuenta del catálogo contable.
type AccountResponse struct {
	ERPID          string `json:"erp_id"`
	Name           string `json:"name"`
	Number         string `json:"number,omitempty"`
	Type           string `json:"type"`
	Classification string `json:"classification,omitempty"`
	Balance        string `json:"balance,omitempty"`
	Currency       string `json:"currency,omitempty"`
	Active         bool   `json:"active"`
}

func accountFromERP(a erp.Account) AccountResponse {
	return AccountResponse{
		ERPID:          a.ERPID,
		Name:           a.Name,
		Number:         a.Number,
		Type:           a.Type,
		Classification: a.Classification,
		Balance:        a.Balance,
		Currency:       a.Currency,
		Active:         a.Active,
	}
}

// ReportRowResponse es un renglón de reporte financiero, con sus hijos.
type ReportRowResponse struct {
	Label    string              `json:"label"`
	Amount   string              `json:"amount,omitempty"`
	Group    string              `json:"group,omitempty"`
	Children []ReportRowResponse `json:"children,omitempty"`
}

// ReportResponse es un reporte financiero del ERP.
type ReportResponse struct {
	Name      string              `json:"name"`
	Currency  string              `json:"currency,omitempty"`
	StartDate time.Time           `json:"start_date"`
	EndDate   time.Time           `json:"end_date"`
	Rows      []ReportRowResponse `json:"rows"`
}

func reportFromERP(r *erp.Report) ReportResponse {
	return ReportResponse{
		Name:      r.Name,
		Currency:  r.Currency,
		StartDate: r.StartDate,
		EndDate:   r.EndDate,
		Rows:      reportRowsFromERP(r.Rows),
	}
}

func reportRowsFromERP(rows []erp.ReportRow) []ReportRowResponse {
	out := make([]ReportRowResponse, 0, len(rows))
	for _, r := range rows {
		out = append(out, ReportRowResponse{
			Label:    r.Label,
			Amount:   r.Amount,
			Group:    r.Group,
			Children: reportRowsFromERP(r.Children),
		})
	}
	return out
}

// AdapterInfoResponse describe el adaptador activo de la sucursal.
type AdapterInfoResponse struct {
	Provider      string     `json:"provider"`
	DisplayName   string     `json:"display_name"`
	Version       string     `json:"version"`
	Authenticated bool       `json:"authenticated"`
	LastSync      *time.Time `json:"last_sync,omitempty"`
	ErrorCount    int        `json:"error_count"`
	Capabilities  []string   `json:"capabilities"`
}

// ── CFDI ─────────────────────────────────────────────────────────────────────

// EmisorDTO datos fiscales del emisor.
type EmisorDTO struct {
	RFC           string `json:"rfc"`
	Nombre        string `json:"nombre"`
	RegimenFiscal string `json:"regimen_fiscal"`
}

// ReceptorDTO datos fiscales del receptor.
type ReceptorDTO struct {
	RFC             string `json:"rfc"`
	Nombre          string `json:"nombre"`
	DomicilioFiscal string `json:"domicilio_fiscal"`
	RegimenFiscal   string `json:"regimen_fiscal"`
	UsoCFDI         string `json:"uso_cfdi"`
}

// ImpuestoDTO es una línea de impuesto de un concepto. Base e importe en cero
// se calculan a partir de la base gravable del concepto.
type ImpuestoDTO struct {
	Impuesto   string          `json:"impuesto"`
	TipoFactor string          `json:"tipo_factor"`
	TasaOCuota decimal.Decimal `json:"tasa_o_cuota"`
}

// ConceptoDTO es una línea del comprobante a timbrar.
type ConceptoDTO struct {
	ClaveProdServ string          `json:"clave_prod_serv"`
	ClaveUnidad   string          `json:"clave_unidad"`
	Cantidad      decimal.Decimal `json:"cantidad"`
	Descripcion   string          `json:"descripcion"`
	ValorUnitario decimal.Decimal `json:"valor_unitario"`
	Descuento     decimal.Decimal `json:"descuento"`
	ObjetoImp     string          `json:"objeto_imp"`
	Traslados     []ImpuestoDTO   `json:"traslados,omitempty"`
	Retenciones   []ImpuestoDTO   `json:"retenciones,omitempty"`
}

// GenerateCFDIRequest es el cuerpo de POST /api/cfdi/generate. Los totales no
// viajan: los calcula el pipeline a partir de los conceptos.
type GenerateCFDIRequest struct {
	Serie             string        `json:"serie"`
	Folio             string        `json:"folio"`
	Fecha             *time.Time    `json:"fecha,omitempty"`
	TipoDeComprobante string        `json:"tipo_de_comprobante"`
	MetodoPago        string        `json:"metodo_pago"`
	FormaPago         string        `json:"forma_pago"`
	LugarExpedicion   string        `json:"lugar_expedicion"`
	Moneda            string        `json:"moneda"`
	Exportacion       string        `json:"exportacion"`
	Emisor            EmisorDTO     `json:"emisor"`
	Receptor          ReceptorDTO   `json:"receptor"`
	Conceptos         []ConceptoDTO `json:"conceptos"`
}

// Comprobante arma el modelo de dominio a partir de la petición.
func (r *GenerateCFDIRequest) Comprobante() *cfdidom.Comprobante {
	fecha := time.Now()
	if r.Fecha != nil {
		fecha = *r.Fecha
	}
	c := &cfdidom.Comprobante{
		Serie:             r.Serie,
		Folio:             r.Folio,
		Fecha:             fecha,
		TipoDeComprobante: r.TipoDeComprobante,
		MetodoPago:        r.MetodoPago,
		FormaPago:         r.FormaPago,
		LugarExpedicion:   r.LugarExpedicion,
		Moneda:            r.Moneda,
		Exportacion:       r.Exportacion,
		Emisor: cfdidom.Emisor{
			RFC:           r.Emisor.RFC,
			Nombre:        r.Emisor.Nombre,
			RegimenFiscal: r.Emisor.RegimenFiscal,
		},
		Receptor: cfdidom.Receptor{
			RFC:                     r.Receptor.RFC,
			Nombre:                  r.Receptor.Nombre,
			DomicilioFiscalReceptor: r.Receptor.DomicilioFiscal,
			RegimenFiscalReceptor:   r.Receptor.RegimenFiscal,
			UsoCFDI:                 r.Receptor.UsoCFDI,
		},
	}
	for _, con := range r.Conceptos {
		c.Conceptos = append(c.Conceptos, cfdidom.Concepto{
			ClaveProdServ: con.ClaveProdServ,
			ClaveUnidad:   con.ClaveUnidad,
			Cantidad:      con.Cantidad,
			Descripcion:   con.Descripcion,
			ValorUnitario: con.ValorUnitario,
			Descuento:     con.Descuento,
			ObjetoImp:     con.ObjetoImp,
			Traslados:     impuestosFromDTO(con.Traslados),
			Retenciones:   impuestosFromDTO(con.Retenciones),
		})
	}
	return c
}

func impuestosFromDTO(in []ImpuestoDTO) []cfdidom.ImpuestoConcepto {
	out := make([]cfdidom.ImpuestoConcepto, 0, len(in))
	for _, i := range in {
		out = append(out, cfdidom.ImpuestoConcepto{
			Impuesto:   i.Impuesto,
			TipoFactor: i.TipoFactor,
			TasaOCuota: i.TasaOCuota,
		})
	}
	return out
}

// ComplementoPagoRequest es el cuerpo de POST /api/cfdi/complemento-pago: el
// pago ya aplicado en la plataforma más los datos fiscales de las partes.
type ComplementoPagoRequest struct {
	PaymentID       string      `json:"payment_id"`
	InvoiceUUID     string      `json:"invoice_uuid"`
	Parcialidad     int         `json:"parcialidad"`
	LugarExpedicion string      `json:"lugar_expedicion"`
	Emisor          EmisorDTO   `json:"emisor"`
	Receptor        ReceptorDTO `json:"receptor"`
}

// CFDIResponse es el comprobante timbrado que regresa la API.
type CFDIResponse struct {
	UUID          string    `json:"uuid"`
	Serie         string    `json:"serie"`
	Folio         string    `json:"folio"`
	Total         string    `json:"total"`
	Moneda        string    `json:"moneda"`
	FechaTimbrado time.Time `json:"fecha_timbrado"`
	Status        string    `json:"status"`
	QRURL         string    `json:"qr_url"`
	XMLBase64     string    `json:"xml_base64"`
}

// CFDIDocumentResponse es una fila del archivo fiscal de comprobantes.
type CFDIDocumentResponse struct {
	UUID              string     `json:"uuid"`
	TipoDeComprobante string     `json:"tipo_de_comprobante"`
	Serie             string     `json:"serie,omitempty"`
	Folio             string     `json:"folio,omitempty"`
	ReceptorRFC       string     `json:"receptor_rfc"`
	Total             string     `json:"total"`
	Moneda            string     `json:"moneda"`
	Status            string     `json:"status"`
	FechaTimbrado     time.Time  `json:"fecha_timbrado"`
	CanceledAt        *time.Time `json:"canceled_at,omitempty"`
}

func cfdiDocumentFromEntity(d *entity.CFDIDocument) CFDIDocumentResponse {
	return CFDIDocumentResponse{
		UUID:              d.UUID,
		TipoDeComprobante: d.TipoDeComprobante,
		Serie:             d.Serie,
		Folio:             d.Folio,
		ReceptorRFC:       d.ReceptorRFC,
		Total:             d.Total.StringFixed(2),
		Moneda:            d.Moneda,
		Status:            d.Status,
		FechaTimbrado:     d.FechaTimbrado,
		CanceledAt:        d.CanceledAt,
	}
}

// CancelCFDIRequest es el cuerpo de POST /api/cfdi/:uuid/cancel.
type CancelCFDIRequest struct {
	Motivo           string `json:"motivo"`
	FolioSustitucion string `json:"folio_sustitucion,omitempty"`
}

// CancelCFDIResponse es el resultado de la solicitud de cancelación.
type CancelCFDIResponse struct {
	UUID        string    `json:"uuid"`
	Status      string    `json:"status"`
	StatusCode  string    `json:"status_code,omitempty"`
	AcuseBase64 string    `json:"acuse_base64,omitempty"`
	CanceledAt  time.Time `json:"canceled_at"`
}
