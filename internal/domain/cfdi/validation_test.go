package cfdi

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/spirittours/erp-hub/internal/domain"
	pkgcfdi "github.com/spirittours/erp-hub/pkg/cfdi"
)

func assertValidationField(t *testing.T, err error, field string) {
	t.Helper()
	var verr *domain.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, field, verr.Field)
}

func TestValidateComprobanteValido(t *testing.T) {
	assert.NoError(t, Validate(comprobanteIngreso()))
}

func TestValidateEmisorRFCInvalido(t *testing.T) {
	c := comprobanteIngreso()
	c.Emisor.RFC = "NO-ES-RFC"
	assertValidationField(t, Validate(c), "emisor.rfc")
}

func TestValidateReceptorRequerido(t *testing.T) {
	c := comprobanteIngreso()
	c.Receptor.RFC = ""
	assertValidationField(t, Validate(c), "receptor.rfc")

	c = comprobanteIngreso()
	c.Receptor.Nombre = ""
	assertValidationField(t, Validate(c), "receptor.nombre")
}

func TestValidateTipoDesconocido(t *testing.T) {
	c := comprobanteIngreso()
	c.TipoDeComprobante = "Z"
	assertValidationField(t, Validate(c), "tipoDeComprobante")
}

func TestValidateSinConceptos(t *testing.T) {
	c := comprobanteIngreso()
	c.Conceptos = nil
	assertValidationField(t, Validate(c), "conceptos")
}

func TestValidateConceptoCantidadNoPositiva(t *testing.T) {
	c := comprobanteIngreso()
	c.Conceptos[0].Cantidad = dec("0")
	assertValidationField(t, Validate(c), "conceptos.cantidad")
}

func TestValidateImpuestoDesconocido(t *testing.T) {
	c := comprobanteIngreso()
	c.Conceptos[0].Traslados[0].Impuesto = "999"
	assertValidationField(t, Validate(c), "conceptos.impuesto")
}

func TestValidatePagoRequiereComplemento(t *testing.T) {
	c := comprobanteIngreso()
	c.TipoDeComprobante = pkgcfdi.TipoPago
	c.MetodoPago = ""
	assertValidationField(t, Validate(c), "complementoPago")

	c.ComplementoPago = &ComplementoPago{Pagos: []Pago{{
		FechaPago:    time.Now(),
		FormaDePagoP: "03",
		MonedaP:      "MXN",
		Monto:        dec("232"),
	}}}
	assertValidationField(t, Validate(c), "complementoPago.doctoRelacionado")

	c.ComplementoPago.Pagos[0].DoctosRelacionados = []DoctoRelacionado{{
		IDDocumento:      "aaaaaaaa-bbbb-cccc-dddd-eeeeeeeeeeee",
		MonedaDR:         "MXN",
		NumParcialidad:   1,
		ImpSaldoAnt:      dec("232"),
		ImpPagado:        dec("232"),
		ImpSaldoInsoluto: dec("0"),
	}}
	assert.NoError(t, Validate(c))
}

func TestValidateComplementoSoloEnTipoP(t *testing.T) {
	c := comprobanteIngreso()
	c.ComplementoPago = &ComplementoPago{Pagos: []Pago{{}}}
	assertValidationField(t, Validate(c), "complementoPago")
}
