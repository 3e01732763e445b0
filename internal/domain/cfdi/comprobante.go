// Package cfdi contiene el modelo de dominio del Comprobante Fiscal Digital
// por Internet (CFDI) 4.0: estructura, validación y aritmética de impuestos
// según el Anexo 20 del SAT.
package cfdi

import (
	"time"

	"github.com/shopspring/decimal"
)

// Version del estándar implementado.
const Version = "4.0"

// Emisor datos fiscales del emisor del comprobante.
type Emisor struct {
	RFC           string
	Nombre        string
	RegimenFiscal string // c_RegimenFiscal, ej. "601"
}

// Receptor datos fiscales del receptor. Los nombres de campo siguen los
// atributos del Anexo 20.
type Receptor struct {
	RFC                     string
	Nombre                  string
	DomicilioFiscalReceptor string // código postal
	RegimenFiscalReceptor   string
	UsoCFDI                 string // c_UsoCFDI, ej. "G03"
}

// ImpuestoConcepto es una línea de impuesto (traslado o retención) de un concepto.
type ImpuestoConcepto struct {
	Base       decimal.Decimal
	Impuesto   string          // "001" ISR, "002" IVA, "003" IEPS
	TipoFactor string          // Tasa | Cuota | Exento
	TasaOCuota decimal.Decimal // ej. 0.160000
	Importe    decimal.Decimal // si es cero se calcula Base × TasaOCuota
}

// Concepto es una línea del comprobante.
type Concepto struct {
	ClaveProdServ string // c_ClaveProdServ, ej. "90121500" servicios de viaje
	ClaveUnidad   string // c_ClaveUnidad, ej. "E48" unidad de servicio
	Cantidad      decimal.Decimal
	Descripcion   string
	ValorUnitario decimal.Decimal
	Importe       decimal.Decimal // calculado: Cantidad × ValorUnitario
	Descuento     decimal.Decimal
	ObjetoImp     string
	Traslados     []ImpuestoConcepto
	Retenciones   []ImpuestoConcepto
}

// ImpuestoResumen es una línea agregada de impuestos a nivel comprobante:
// los traslados idénticos (impuesto, tasa) de todos los conceptos en una fila.
type ImpuestoResumen struct {
	Base       decimal.Decimal
	Impuesto   string
	TipoFactor string
	TasaOCuota decimal.Decimal
	Importe    decimal.Decimal
}

// Impuestos es el resumen de impuestos del comprobante.
type Impuestos struct {
	Traslados                []ImpuestoResumen
	Retenciones              []ImpuestoResumen
	TotalImpuestosTrasladados decimal.Decimal
	TotalImpuestosRetenidos   decimal.Decimal
}

// DoctoRelacionado es un documento relacionado dentro del complemento de pago:
// la factura (UUID) contra la que se aplica el pago.
type DoctoRelacionado struct {
	IDDocumento      string // UUID del CFDI de ingreso relacionado
	Serie            string
	Folio            string
	MonedaDR         string
	NumParcialidad   int
	ImpSaldoAnt      decimal.Decimal
	ImpPagado        decimal.Decimal
	ImpSaldoInsoluto decimal.Decimal
}

// Pago es un pago dentro del complemento Pagos 2.0.
type Pago struct {
	FechaPago        time.Time
	FormaDePagoP     string
	MonedaP          string
	Monto            decimal.Decimal
	DoctosRelacionados []DoctoRelacionado
}

// ComplementoPago es el complemento de recepción de pagos (tipo "P").
type ComplementoPago struct {
	Pagos []Pago
}

// Timbre contiene los datos que el PAC fija al timbrar. Se escriben una sola
// vez; después el documento es inmutable salvo el estado de cancelación.
type Timbre struct {
	UUID             string
	FechaTimbrado    time.Time
	SelloSAT         string
	NoCertificadoSAT string
	CadenaOriginal   string // cadena original del complemento de certificación
}

// Comprobante es el documento fiscal transitorio que se arma por cada timbrado.
type Comprobante struct {
	Serie             string
	Folio             string
	Fecha             time.Time
	TipoDeComprobante string // I | E | T | N | P
	MetodoPago        string // PUE | PPD (vacío en tipo P)
	FormaPago         string
	LugarExpedicion   string // código postal del emisor
	Moneda            string
	Exportacion       string
	SubTotal          decimal.Decimal
	Descuento         decimal.Decimal
	Total             decimal.Decimal

	Emisor    Emisor
	Receptor  Receptor
	Conceptos []Concepto
	Impuestos *Impuestos

	ComplementoPago *ComplementoPago // solo tipo "P"

	// Firma del emisor (se fijan en el paso de sellado).
	Sello         string
	NoCertificado string
	Certificado   string // certificado CSD en base64

	// Datos del timbrado; nil hasta que el PAC certifica.
	Timbre *Timbre
}

// Timbrado indica si el comprobante ya fue certificado por el PAC.
func (c *Comprobante) Timbrado() bool {
	return c.Timbre != nil && c.Timbre.UUID != ""
}
