package cfdi

import (
	"testing"
	"time"

	"github.com/beevik/etree"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	cfdidom "github.com/spirittours/erp-hub/internal/domain/cfdi"
	pkgcfdi "github.com/spirittours/erp-hub/pkg/cfdi"
)

func dec(s string) decimal.Decimal {
	d, _ := decimal.NewFromString(s)
	return d
}

func comprobanteParaXML(t *testing.T) *cfdidom.Comprobante {
	t.Helper()
	c := &cfdidom.Comprobante{
		Serie:             "A",
		Folio:             "1001",
		Fecha:             time.Date(2026, 8, 12, 14, 30, 0, 0, time.UTC),
		TipoDeComprobante: pkgcfdi.TipoIngreso,
		MetodoPago:        pkgcfdi.MetodoPagoPUE,
		FormaPago:         "03",
		LugarExpedicion:   "06600",
		Moneda:            "MXN",
		Exportacion:       pkgcfdi.ExportacionNoAplica,
		Emisor: cfdidom.Emisor{
			RFC:           "SPT190101AB1",
			Nombre:        "SPIRIT TOURS",
			RegimenFiscal: "601",
		},
		Receptor: cfdidom.Receptor{
			RFC:                     "GODE561231GR8",
			Nombre:                  "GONZALEZ DIAZ EMMA",
			DomicilioFiscalReceptor: "06700",
			RegimenFiscalReceptor:   "605",
			UsoCFDI:                 "G03",
		},
		Conceptos: []cfdidom.Concepto{{
			ClaveProdServ: "90121500",
			Cantidad:      dec("2"),
			ClaveUnidad:   "E48",
			Descripcion:   "Tour ciudad de México",
			ValorUnitario: dec("100"),
			ObjetoImp:     pkgcfdi.ObjetoImpSi,
			Traslados: []cfdidom.ImpuestoConcepto{{
				Impuesto:   pkgcfdi.ImpuestoIVA,
				TipoFactor: pkgcfdi.TipoFactorTasa,
				TasaOCuota: dec("0.16"),
			}},
		}},
	}
	require.NoError(t, cfdidom.ComputeTotals(c))
	return c
}

func TestBuildComprobanteIngreso(t *testing.T) {
	xmlBytes, err := NewXMLBuilderService().Build(comprobanteParaXML(t))
	require.NoError(t, err)

	doc := etree.NewDocument()
	require.NoError(t, doc.ReadFromBytes(xmlBytes))
	root := doc.Root()
	require.NotNil(t, root)

	assert.Equal(t, "Comprobante", root.Tag)
	assert.Equal(t, "4.0", root.SelectAttrValue("Version", ""))
	assert.Equal(t, NsCFDI, root.SelectAttrValue("xmlns:cfdi", ""))
	assert.Equal(t, "2026-08-12T14:30:00", root.SelectAttrValue("Fecha", ""))
	assert.Equal(t, "200.00", root.SelectAttrValue("SubTotal", ""))
	assert.Equal(t, "232.00", root.SelectAttrValue("Total", ""))
	// sin sello: ese atributo lo inyecta el firmador
	assert.Empty(t, root.SelectAttrValue("Sello", ""))

	emisor := root.FindElement("cfdi:Emisor")
	require.NotNil(t, emisor)
	assert.Equal(t, "SPT190101AB1", emisor.SelectAttrValue("Rfc", ""))

	receptor := root.FindElement("cfdi:Receptor")
	require.NotNil(t, receptor)
	assert.Equal(t, "06700", receptor.SelectAttrValue("DomicilioFiscalReceptor", ""))

	concepto := root.FindElement("cfdi:Conceptos/cfdi:Concepto")
	require.NotNil(t, concepto)
	assert.Equal(t, "200.00", concepto.SelectAttrValue("Importe", ""))

	traslado := concepto.FindElement("cfdi:Impuestos/cfdi:Traslados/cfdi:Traslado")
	require.NotNil(t, traslado)
	assert.Equal(t, "0.160000", traslado.SelectAttrValue("TasaOCuota", ""))
	assert.Equal(t, "32.00", traslado.SelectAttrValue("Importe", ""))

	resumen := root.FindElement("cfdi:Impuestos")
	require.NotNil(t, resumen)
	assert.Equal(t, "32.00", resumen.SelectAttrValue("TotalImpuestosTrasladados", ""))
}

func TestBuildComplementoPago(t *testing.T) {
	c := comprobanteParaXML(t)
	c.TipoDeComprobante = pkgcfdi.TipoPago
	c.MetodoPago = ""
	c.FormaPago = ""
	c.Moneda = "XXX"
	c.ComplementoPago = &cfdidom.ComplementoPago{
		Pagos: []cfdidom.Pago{{
			FechaPago:    time.Date(2026, 8, 15, 10, 0, 0, 0, time.UTC),
			FormaDePagoP: "03",
			MonedaP:      "MXN",
			Monto:        dec("232"),
			DoctosRelacionados: []cfdidom.DoctoRelacionado{{
				IDDocumento:      "AAAAAAAA-BBBB-CCCC-DDDD-EEEEEEEEEEEE",
				MonedaDR:         "MXN",
				NumParcialidad:   1,
				ImpSaldoAnt:      dec("232"),
				ImpPagado:        dec("232"),
				ImpSaldoInsoluto: dec("0"),
			}},
		}},
	}

	xmlBytes, err := NewXMLBuilderService().Build(c)
	require.NoError(t, err)

	doc := etree.NewDocument()
	require.NoError(t, doc.ReadFromBytes(xmlBytes))
	root := doc.Root()

	assert.Equal(t, NsPagos, root.SelectAttrValue("xmlns:pago20", ""))
	// MetodoPago/FormaPago vacíos se omiten en tipo P
	assert.Empty(t, root.SelectAttrValue("MetodoPago", ""))
	assert.Empty(t, root.SelectAttrValue("FormaPago", ""))

	pagos := root.FindElement("cfdi:Complemento/pago20:Pagos")
	require.NotNil(t, pagos)
	assert.Equal(t, "2.0", pagos.SelectAttrValue("Version", ""))

	totales := pagos.FindElement("pago20:Totales")
	require.NotNil(t, totales)
	assert.Equal(t, "232.00", totales.SelectAttrValue("MontoTotalPagos", ""))

	dr := pagos.FindElement("pago20:Pago/pago20:DoctoRelacionado")
	require.NotNil(t, dr)
	assert.Equal(t, "AAAAAAAA-BBBB-CCCC-DDDD-EEEEEEEEEEEE", dr.SelectAttrValue("IdDocumento", ""))
	assert.Equal(t, "0.00", dr.SelectAttrValue("ImpSaldoInsoluto", ""))
}
