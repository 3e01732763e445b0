package http

import (
	"io"
	stdhttp "net/http"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spirittours/erp-hub/internal/domain/entity"
	pkgcfdi "github.com/spirittours/erp-hub/pkg/cfdi"
)

func generateRequest() GenerateCFDIRequest {
	return GenerateCFDIRequest{
		Serie:             "A",
		Folio:             "1001",
		TipoDeComprobante: pkgcfdi.TipoIngreso,
		MetodoPago:        pkgcfdi.MetodoPagoPUE,
		FormaPago:         "03",
		LugarExpedicion:   "06600",
		Moneda:            "MXN",
		Exportacion:       pkgcfdi.ExportacionNoAplica,
		Emisor: EmisorDTO{
			RFC: "SPT190101AB1", Nombre: "SPIRIT TOURS", RegimenFiscal: "601",
		},
		Receptor: ReceptorDTO{
			RFC: "GODE561231GR8", Nombre: "GONZALEZ DIAZ EMMA",
			DomicilioFiscal: "06700", RegimenFiscal: "605", UsoCFDI: "G03",
		},
		Conceptos: []ConceptoDTO{{
			ClaveProdServ: "90121500",
			ClaveUnidad:   "E48",
			Cantidad:      decimal.NewFromInt(2),
			Descripcion:   "Tour ciudad de México",
			ValorUnitario: decimal.NewFromInt(100),
			ObjetoImp:     pkgcfdi.ObjetoImpSi,
			Traslados: []ImpuestoDTO{{
				Impuesto:   pkgcfdi.ImpuestoIVA,
				TipoFactor: pkgcfdi.TipoFactorTasa,
				TasaOCuota: decimal.NewFromFloat(0.16),
			}},
		}},
	}
}

func TestGenerateCFDITimbraYArchiva(t *testing.T) {
	fx := newWebFixture(t, okSync)

	resp := doJSON(t, fx.app, stdhttp.MethodPost, "/api/cfdi/generate", bearer(t, RoleContabilidad), generateRequest())
	require.Equal(t, stdhttp.StatusCreated, resp.StatusCode)

	var out CFDIResponse
	decodeBody(t, resp, &out)
	assert.Equal(t, stubUUID, out.UUID)
	assert.Equal(t, "232.00", out.Total)
	assert.Equal(t, entity.CFDIVigente, out.Status)
	assert.Contains(t, out.QRURL, stubUUID)
	assert.NotEmpty(t, out.XMLBase64)

	// archivado en documentos_cfdi con el XML timbrado
	doc := fx.docs.byUUID[stubUUID]
	require.NotNil(t, doc)
	assert.Equal(t, "suc-1", doc.SucursalID)
	assert.Equal(t, pkgcfdi.TipoIngreso, doc.TipoDeComprobante)
	assert.Contains(t, doc.XML, "cfdi:Comprobante")
	assert.Equal(t, 1, fx.pac.stamped)
}

func TestGenerateCFDIInvalidoNoTocaElPAC(t *testing.T) {
	fx := newWebFixture(t, okSync)

	in := generateRequest()
	in.Emisor.RFC = ""
	resp := doJSON(t, fx.app, stdhttp.MethodPost, "/api/cfdi/generate", bearer(t, RoleContabilidad), in)
	assert.Equal(t, stdhttp.StatusBadRequest, resp.StatusCode)

	var out ErrorResponse
	decodeBody(t, resp, &out)
	assert.Equal(t, "VALIDATION", out.Code)
	assert.Zero(t, fx.pac.stamped)
	assert.Empty(t, fx.docs.byUUID)
}

func TestComplementoPago(t *testing.T) {
	fx := newWebFixture(t, okSync)

	resp := doJSON(t, fx.app, stdhttp.MethodPost, "/api/cfdi/complemento-pago", bearer(t, RoleContabilidad), ComplementoPagoRequest{
		PaymentID:       "pay-1",
		InvoiceUUID:     "BBBBBBBB-1111-2222-3333-444444444444",
		LugarExpedicion: "06600",
		Emisor:          EmisorDTO{RFC: "SPT190101AB1", Nombre: "SPIRIT TOURS", RegimenFiscal: "601"},
		Receptor: ReceptorDTO{
			RFC: "GODE561231GR8", Nombre: "GONZALEZ DIAZ EMMA",
			DomicilioFiscal: "06700", RegimenFiscal: "605",
		},
	})
	require.Equal(t, stdhttp.StatusCreated, resp.StatusCode)

	var out CFDIResponse
	decodeBody(t, resp, &out)
	assert.Equal(t, stubUUID, out.UUID)
	assert.Equal(t, "P", out.Serie)

	doc := fx.docs.byUUID[stubUUID]
	require.NotNil(t, doc)
	assert.Equal(t, pkgcfdi.TipoPago, doc.TipoDeComprobante)
	// el monto viaja en el complemento, los totales del tipo P van en cero
	assert.Equal(t, "0.00", doc.Total.StringFixed(2))
	assert.Contains(t, doc.XML, "pago20:Pagos")
	assert.Contains(t, doc.XML, "BBBBBBBB-1111-2222-3333-444444444444")
}

func TestComplementoPagoPagoInexistente(t *testing.T) {
	fx := newWebFixture(t, okSync)

	resp := doJSON(t, fx.app, stdhttp.MethodPost, "/api/cfdi/complemento-pago", bearer(t, RoleContabilidad), ComplementoPagoRequest{
		PaymentID:   "no-existe",
		InvoiceUUID: "BBBBBBBB-1111-2222-3333-444444444444",
		Emisor:      EmisorDTO{RFC: "SPT190101AB1", Nombre: "SPIRIT TOURS", RegimenFiscal: "601"},
		Receptor:    ReceptorDTO{RFC: "GODE561231GR8", Nombre: "GONZALEZ DIAZ EMMA"},
	})
	assert.Equal(t, stdhttp.StatusNotFound, resp.StatusCode)
	assert.Zero(t, fx.pac.stamped)
}

func archivedDoc(fx *webFixture) *entity.CFDIDocument {
	doc := &entity.CFDIDocument{
		ID: "doc-1", SucursalID: "suc-1", UUID: stubUUID,
		TipoDeComprobante: pkgcfdi.TipoIngreso, Serie: "A", Folio: "1001",
		EmisorRFC: "SPT190101AB1", ReceptorRFC: "GODE561231GR8",
		Total: decimal.NewFromInt(232), Moneda: "MXN",
		XML:           `<cfdi:Comprobante xmlns:cfdi="http://www.sat.gob.mx/cfd/4" Version="4.0" Serie="A" Fecha="2026-08-20T12:00:00" SubTotal="200.00" Moneda="MXN" Total="232.00" TipoDeComprobante="I" Exportacion="01" LugarExpedicion="06600"><cfdi:Emisor Rfc="SPT190101AB1" Nombre="SPIRIT TOURS" RegimenFiscal="601"/><cfdi:Receptor Rfc="GODE561231GR8" Nombre="GONZALEZ DIAZ EMMA" DomicilioFiscalReceptor="06700" RegimenFiscalReceptor="605" UsoCFDI="G03"/><cfdi:Conceptos><cfdi:Concepto ClaveProdServ="90121500" Cantidad="2" ClaveUnidad="E48" Descripcion="Tour" ValorUnitario="100.00" Importe="200.00" ObjetoImp="02"/></cfdi:Conceptos></cfdi:Comprobante>`,
		QRURL:         "https://verificacfdi.facturaelectronica.sat.gob.mx/default.aspx?id=" + stubUUID,
		Status:        entity.CFDIVigente,
		FechaTimbrado: time.Date(2026, 8, 20, 12, 0, 0, 0, time.UTC),
		CreatedAt:     time.Now(),
	}
	fx.docs.byUUID[doc.UUID] = doc
	return doc
}

func TestCancelCFDI(t *testing.T) {
	fx := newWebFixture(t, okSync)
	doc := archivedDoc(fx)
	auth := bearer(t, RoleContabilidad)

	resp := doJSON(t, fx.app, stdhttp.MethodPost, "/api/cfdi/"+stubUUID+"/cancel", auth, CancelCFDIRequest{Motivo: "02"})
	require.Equal(t, stdhttp.StatusOK, resp.StatusCode)

	var out CancelCFDIResponse
	decodeBody(t, resp, &out)
	assert.Equal(t, entity.CFDICancelado, out.Status)
	assert.Equal(t, "201", out.StatusCode)
	assert.NotEmpty(t, out.AcuseBase64)

	assert.Equal(t, entity.CFDICancelado, doc.Status)
	assert.Equal(t, "02", doc.MotivoCancelacion)
	assert.Equal(t, "<Acuse/>", doc.Acuse)
	require.NotNil(t, doc.CanceledAt)

	// cancelar dos veces es conflicto
	resp = doJSON(t, fx.app, stdhttp.MethodPost, "/api/cfdi/"+stubUUID+"/cancel", auth, CancelCFDIRequest{Motivo: "02"})
	assert.Equal(t, stdhttp.StatusConflict, resp.StatusCode)
	assert.Equal(t, 1, fx.pac.canceled)
}

func TestCancelMotivo01ExigeSustitucion(t *testing.T) {
	fx := newWebFixture(t, okSync)
	archivedDoc(fx)

	resp := doJSON(t, fx.app, stdhttp.MethodPost, "/api/cfdi/"+stubUUID+"/cancel", bearer(t, RoleContabilidad), CancelCFDIRequest{Motivo: "01"})
	assert.Equal(t, stdhttp.StatusBadRequest, resp.StatusCode)
	assert.Zero(t, fx.pac.canceled)
}

func TestCancelExigeRolContable(t *testing.T) {
	fx := newWebFixture(t, okSync)
	archivedDoc(fx)

	resp := doJSON(t, fx.app, stdhttp.MethodPost, "/api/cfdi/"+stubUUID+"/cancel", bearer(t, RoleOperador), CancelCFDIRequest{Motivo: "02"})
	assert.Equal(t, stdhttp.StatusForbidden, resp.StatusCode)
	assert.Zero(t, fx.pac.canceled)
}

func TestPDFDeComprobanteArchivado(t *testing.T) {
	fx := newWebFixture(t, okSync)
	archivedDoc(fx)

	resp := doJSON(t, fx.app, stdhttp.MethodGet, "/api/cfdi/"+stubUUID+"/pdf", bearer(t, RoleOperador), nil)
	require.Equal(t, stdhttp.StatusOK, resp.StatusCode)
	assert.Equal(t, "application/pdf", resp.Header.Get("Content-Type"))

	defer resp.Body.Close()
	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Equal(t, "%PDF", string(raw[:4]))
}

func TestPDFComprobanteInexistente(t *testing.T) {
	fx := newWebFixture(t, okSync)

	resp := doJSON(t, fx.app, stdhttp.MethodGet, "/api/cfdi/"+stubUUID+"/pdf", bearer(t, RoleOperador), nil)
	assert.Equal(t, stdhttp.StatusNotFound, resp.StatusCode)
}

func TestListaComprobantesDeLaSucursal(t *testing.T) {
	fx := newWebFixture(t, okSync)
	archivedDoc(fx)
	// documento de otra sucursal: no debe listarse
	fx.docs.byUUID["otro"] = &entity.CFDIDocument{
		ID: "doc-2", SucursalID: "suc-9", UUID: "otro",
		Total: decimal.NewFromInt(10), Status: entity.CFDIVigente,
	}

	resp := doJSON(t, fx.app, stdhttp.MethodGet, "/api/cfdi/", bearer(t, RoleOperador), nil)
	require.Equal(t, stdhttp.StatusOK, resp.StatusCode)

	var out []CFDIDocumentResponse
	decodeBody(t, resp, &out)
	require.Len(t, out, 1)
	assert.Equal(t, stubUUID, out[0].UUID)
}
