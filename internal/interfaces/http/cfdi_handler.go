package http

import (
	"encoding/base64"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	appcfdi "github.com/spirittours/erp-hub/internal/application/cfdi"
	"github.com/spirittours/erp-hub/internal/domain"
	cfdidom "github.com/spirittours/erp-hub/internal/domain/cfdi"
	"github.com/spirittours/erp-hub/internal/domain/entity"
	"github.com/spirittours/erp-hub/internal/domain/repository"
)

// CFDIHandler maneja el ciclo de vida de comprobantes fiscales: timbrado,
// complemento de pago, cancelación y representación impresa (protegido).
type CFDIHandler struct {
	gen         *appcfdi.Generator
	docs        repository.CFDIDocumentRepository
	parser      appcfdi.XMLParser
	renderer    appcfdi.PDFRenderer
	payments    repository.PaymentRepository
	receivables repository.ReceivableRepository
}

// NewCFDIHandler construye el handler.
func NewCFDIHandler(
	gen *appcfdi.Generator,
	docs repository.CFDIDocumentRepository,
	parser appcfdi.XMLParser,
	renderer appcfdi.PDFRenderer,
	payments repository.PaymentRepository,
	receivables repository.ReceivableRepository,
) *CFDIHandler {
	return &CFDIHandler{
		gen:         gen,
		docs:        docs,
		parser:      parser,
		renderer:    renderer,
		payments:    payments,
		receivables: receivables,
	}
}

// Generate timbra un comprobante y lo archiva en documentos_cfdi.
// POST /api/cfdi/generate
func (h *CFDIHandler) Generate(c *fiber.Ctx) error {
	var in GenerateCFDIRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	stamped, err := h.gen.Generate(c.Context(), in.Comprobante())
	if err != nil {
		return errorResponse(c, err)
	}
	if err := h.archive(c, stamped); err != nil {
		return errorResponse(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(stampedResponse(stamped))
}

// ComplementoPago timbra el CFDI de pago (tipo "P") de un pago ya aplicado
// contra una factura timbrada.
// POST /api/cfdi/complemento-pago
func (h *CFDIHandler) ComplementoPago(c *fiber.Ctx) error {
	var in ComplementoPagoRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	if in.PaymentID == "" {
		return c.Status(fiber.StatusBadRequest).JSON(ErrorResponse{Code: "VALIDATION", Message: "payment_id requerido"})
	}

	p, err := h.payments.GetByID(c.Context(), in.PaymentID)
	if err != nil {
		return errorResponse(c, err)
	}
	if p == nil {
		return errorResponse(c, &domain.NotFoundError{EntityType: entity.EntityPayment, EntityID: in.PaymentID})
	}
	r, err := h.receivables.GetByID(c.Context(), p.ReceivableID)
	if err != nil {
		return errorResponse(c, err)
	}
	if r == nil {
		return errorResponse(c, &domain.NotFoundError{EntityType: entity.EntityInvoice, EntityID: p.ReceivableID})
	}

	// El pago ya está aplicado: el saldo anterior es el saldo vigente más el
	// monto de este pago.
	saldoAnterior := r.Saldo.Add(p.Monto)
	parcialidad := in.Parcialidad
	if parcialidad <= 0 {
		parcialidad = 1
	}

	emisor := cfdidom.Emisor{
		RFC:           in.Emisor.RFC,
		Nombre:        in.Emisor.Nombre,
		RegimenFiscal: in.Emisor.RegimenFiscal,
	}
	receptor := cfdidom.Receptor{
		RFC:                     in.Receptor.RFC,
		Nombre:                  in.Receptor.Nombre,
		DomicilioFiscalReceptor: in.Receptor.DomicilioFiscal,
		RegimenFiscalReceptor:   in.Receptor.RegimenFiscal,
	}
	stamped, err := h.gen.GenerateComplementoPago(c.Context(), emisor, receptor, in.LugarExpedicion, p, in.InvoiceUUID, saldoAnterior, parcialidad)
	if err != nil {
		return errorResponse(c, err)
	}
	if err := h.archive(c, stamped); err != nil {
		return errorResponse(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(stampedResponse(stamped))
}

// Cancel solicita al PAC la cancelación del comprobante archivado y registra
// el nuevo estado.
// POST /api/cfdi/:uuid/cancel
func (h *CFDIHandler) Cancel(c *fiber.Ctx) error {
	doc, resp := h.findDocument(c)
	if doc == nil {
		return resp
	}
	if doc.Status == entity.CFDICancelado {
		return c.Status(fiber.StatusConflict).JSON(ErrorResponse{Code: "ALREADY_CANCELED", Message: "el comprobante ya está cancelado"})
	}
	var in CancelCFDIRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}

	comprobante := &cfdidom.Comprobante{
		Total:    doc.Total,
		Emisor:   cfdidom.Emisor{RFC: doc.EmisorRFC},
		Receptor: cfdidom.Receptor{RFC: doc.ReceptorRFC},
		Timbre:   &cfdidom.Timbre{UUID: doc.UUID},
	}
	res, err := h.gen.Cancel(c.Context(), comprobante, in.Motivo, in.FolioSustitucion)
	if err != nil {
		return errorResponse(c, err)
	}

	status := entity.CFDICancelacionProceso
	if res.Status == "cancelado" {
		status = entity.CFDICancelado
	}
	canceledAt := res.CanceledAt
	if canceledAt.IsZero() {
		canceledAt = time.Now()
	}
	if err := h.docs.MarkCanceled(c.Context(), doc.UUID, status, in.Motivo, string(res.Acuse), canceledAt); err != nil {
		return errorResponse(c, err)
	}

	return c.JSON(CancelCFDIResponse{
		UUID:        doc.UUID,
		Status:      status,
		StatusCode:  res.StatusCode,
		AcuseBase64: base64.StdEncoding.EncodeToString(res.Acuse),
		CanceledAt:  canceledAt,
	})
}

// PDF regresa la representación impresa del comprobante archivado.
// GET /api/cfdi/:uuid/pdf
func (h *CFDIHandler) PDF(c *fiber.Ctx) error {
	doc, resp := h.findDocument(c)
	if doc == nil {
		return resp
	}
	comprobante, err := h.parser.Parse([]byte(doc.XML))
	if err != nil {
		return errorResponse(c, err)
	}
	pdfBytes, err := h.renderer.RenderComprobante(c.Context(), comprobante, doc.QRURL)
	if err != nil {
		return errorResponse(c, err)
	}
	c.Set(fiber.HeaderContentType, "application/pdf")
	c.Set(fiber.HeaderContentDisposition, `inline; filename="`+doc.UUID+`.pdf"`)
	return c.Send(pdfBytes)
}

// List lista los comprobantes timbrados de la sucursal, más reciente primero.
// GET /api/cfdi
func (h *CFDIHandler) List(c *fiber.Ctx) error {
	docs, err := h.docs.ListBySucursal(c.Context(), GetSucursalID(c),
		queryInt(c, "limit", 50), queryInt(c, "offset", 0))
	if err != nil {
		return errorResponse(c, err)
	}
	out := make([]CFDIDocumentResponse, 0, len(docs))
	for _, d := range docs {
		out = append(out, cfdiDocumentFromEntity(d))
	}
	return c.JSON(out)
}

// findDocument resuelve el comprobante del path param y acota el acceso a la
// sucursal del token. Si regresa doc nil, el segundo valor es la respuesta ya
// escrita.
func (h *CFDIHandler) findDocument(c *fiber.Ctx) (*entity.CFDIDocument, error) {
	uuidParam := c.Params("uuid")
	if uuidParam == "" {
		return nil, c.Status(fiber.StatusBadRequest).JSON(ErrorResponse{Code: "VALIDATION", Message: "uuid requerido"})
	}
	doc, err := h.docs.GetByUUID(c.Context(), uuidParam)
	if err != nil {
		return nil, errorResponse(c, err)
	}
	if doc == nil || doc.SucursalID != GetSucursalID(c) {
		return nil, c.Status(fiber.StatusNotFound).JSON(ErrorResponse{Code: "NOT_FOUND", Message: "comprobante no encontrado"})
	}
	return doc, nil
}

// archive persiste el comprobante timbrado en el archivo fiscal.
func (h *CFDIHandler) archive(c *fiber.Ctx, stamped *appcfdi.StampedCFDI) error {
	comp := stamped.Comprobante
	return h.docs.Save(c.Context(), &entity.CFDIDocument{
		ID:                uuid.NewString(),
		SucursalID:        GetSucursalID(c),
		UUID:              stamped.UUID,
		TipoDeComprobante: comp.TipoDeComprobante,
		Serie:             comp.Serie,
		Folio:             comp.Folio,
		EmisorRFC:         comp.Emisor.RFC,
		ReceptorRFC:       comp.Receptor.RFC,
		Total:             comp.Total,
		Moneda:            comp.Moneda,
		XML:               string(stamped.XML),
		QRURL:             stamped.QRURL,
		Status:            entity.CFDIVigente,
		FechaTimbrado:     comp.Timbre.FechaTimbrado,
		CreatedAt:         time.Now(),
	})
}

func stampedResponse(stamped *appcfdi.StampedCFDI) CFDIResponse {
	comp := stamped.Comprobante
	return CFDIResponse{
		UUID:          stamped.UUID,
		Serie:         comp.Serie,
		Folio:         comp.Folio,
		Total:         comp.Total.StringFixed(2),
		Moneda:        comp.Moneda,
		FechaTimbrado: comp.Timbre.FechaTimbrado,
		Status:        entity.CFDIVigente,
		QRURL:         stamped.QRURL,
		XMLBase64:     stamped.XMLBase64,
	}
}
