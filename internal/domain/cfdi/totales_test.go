package cfdi

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	pkgcfdi "github.com/spirittours/erp-hub/pkg/cfdi"
)

func dec(s string) decimal.Decimal {
	d, _ := decimal.NewFromString(s)
	return d
}

func comprobanteIngreso() *Comprobante {
	return &Comprobante{
		Serie:             "A",
		Folio:             "1001",
		Fecha:             time.Now(),
		TipoDeComprobante: pkgcfdi.TipoIngreso,
		MetodoPago:        pkgcfdi.MetodoPagoPUE,
		FormaPago:         "03",
		LugarExpedicion:   "06600",
		Moneda:            "MXN",
		Emisor: Emisor{
			RFC:           "SPT190101AB1",
			Nombre:        "SPIRIT TOURS",
			RegimenFiscal: "601",
		},
		Receptor: Receptor{
			RFC:                     "GODE561231GR8",
			Nombre:                  "GONZALEZ DIAZ EMMA",
			DomicilioFiscalReceptor: "06700",
			RegimenFiscalReceptor:   "605",
			UsoCFDI:                 "G03",
		},
		Conceptos: []Concepto{
			{
				ClaveProdServ: "90121500",
				Cantidad:      dec("2"),
				ClaveUnidad:   "E48",
				Descripcion:   "Tour ciudad de México",
				ValorUnitario: dec("100"),
				ObjetoImp:     "02",
				Traslados: []ImpuestoConcepto{
					{
						Impuesto:   pkgcfdi.ImpuestoIVA,
						TipoFactor: pkgcfdi.TipoFactorTasa,
						TasaOCuota: dec("0.16"),
					},
				},
			},
		},
	}
}

func TestComputeTotalsIVA16(t *testing.T) {
	c := comprobanteIngreso()
	require.NoError(t, ComputeTotals(c))

	assert.Equal(t, "200", c.SubTotal.String())
	require.NotNil(t, c.Impuestos)
	require.Len(t, c.Impuestos.Traslados, 1)
	tras := c.Impuestos.Traslados[0]
	assert.Equal(t, "200", tras.Base.String())
	assert.Equal(t, "32", tras.Importe.String())
	assert.Equal(t, "32", c.Impuestos.TotalImpuestosTrasladados.String())
	assert.Equal(t, "232", c.Total.String())
	assert.NoError(t, VerifyTotal(c))
}

func TestComputeTotalsAgregaTrasladosMismaTasa(t *testing.T) {
	c := comprobanteIngreso()
	c.Conceptos = append(c.Conceptos, Concepto{
		ClaveProdServ: "90121500",
		Cantidad:      dec("1"),
		ClaveUnidad:   "E48",
		Descripcion:   "Traslado aeropuerto",
		ValorUnitario: dec("350.50"),
		ObjetoImp:     "02",
		Traslados: []ImpuestoConcepto{
			{
				Impuesto:   pkgcfdi.ImpuestoIVA,
				TipoFactor: pkgcfdi.TipoFactorTasa,
				TasaOCuota: dec("0.16"),
			},
		},
	})
	require.NoError(t, ComputeTotals(c))

	// dos conceptos con la misma (impuesto, tasa) producen un solo renglón
	require.Len(t, c.Impuestos.Traslados, 1)
	assert.Equal(t, "550.5", c.SubTotal.String())
	assert.Equal(t, "88.08", c.Impuestos.TotalImpuestosTrasladados.String())
	assert.Equal(t, "638.58", c.Total.String())
}

func TestComputeTotalsConRetencion(t *testing.T) {
	c := comprobanteIngreso()
	c.Conceptos[0].Retenciones = []ImpuestoConcepto{
		{
			Impuesto:   pkgcfdi.ImpuestoISR,
			TipoFactor: pkgcfdi.TipoFactorTasa,
			TasaOCuota: dec("0.10"),
		},
	}
	require.NoError(t, ComputeTotals(c))

	require.Len(t, c.Impuestos.Retenciones, 1)
	assert.Equal(t, "20", c.Impuestos.TotalImpuestosRetenidos.String())
	// 200 + 32 − 20
	assert.Equal(t, "212", c.Total.String())
	assert.NoError(t, VerifyTotal(c))
}

func TestComputeTotalsDescuento(t *testing.T) {
	c := comprobanteIngreso()
	c.Conceptos[0].Descuento = dec("50")
	require.NoError(t, ComputeTotals(c))

	assert.Equal(t, "200", c.SubTotal.String())
	assert.Equal(t, "50", c.Descuento.String())
	// base gravable 150 → IVA 24
	assert.Equal(t, "24", c.Impuestos.TotalImpuestosTrasladados.String())
	assert.Equal(t, "174", c.Total.String())
}

func TestComputeTotalsSinImpuestos(t *testing.T) {
	c := comprobanteIngreso()
	c.Conceptos[0].Traslados = nil
	require.NoError(t, ComputeTotals(c))

	assert.Nil(t, c.Impuestos)
	assert.Equal(t, "200", c.Total.String())
}

func TestVerifyTotalDetectaInconsistencia(t *testing.T) {
	c := comprobanteIngreso()
	require.NoError(t, ComputeTotals(c))
	c.Total = dec("999")
	assert.Error(t, VerifyTotal(c))
}
