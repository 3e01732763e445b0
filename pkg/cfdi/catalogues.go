// Package cfdi contiene catálogos y validaciones alineados al Anexo 20 del
// Comprobante Fiscal Digital por Internet (CFDI) versión 4.0 del SAT (México).
package cfdi

// =============================================================================
// c_TipoDeComprobante (Anexo 20 - catálogo de tipos de comprobante)
// =============================================================================

const (
	TipoIngreso  = "I" // Ingreso (factura de venta)
	TipoEgreso   = "E" // Egreso (nota de crédito)
	TipoTraslado = "T" // Traslado
	TipoNomina   = "N" // Nómina
	TipoPago     = "P" // Pago (complemento de recepción de pagos)
)

// ValidTipoDeComprobante códigos de tipo de comprobante reconocidos.
var ValidTipoDeComprobante = map[string]bool{
	TipoIngreso: true, TipoEgreso: true, TipoTraslado: true,
	TipoNomina: true, TipoPago: true,
}

// =============================================================================
// c_MetodoPago (Anexo 20)
// =============================================================================

const (
	MetodoPagoPUE = "PUE" // Pago en una sola exhibición
	MetodoPagoPPD = "PPD" // Pago en parcialidades o diferido
)

// =============================================================================
// c_FormaPago (Anexo 20) - códigos de uso frecuente
// =============================================================================

const (
	FormaPagoEfectivo      = "01" // Efectivo
	FormaPagoCheque        = "02" // Cheque nominativo
	FormaPagoTransferencia = "03" // Transferencia electrónica de fondos
	FormaPagoTarjetaCred   = "04" // Tarjeta de crédito
	FormaPagoTarjetaDeb    = "28" // Tarjeta de débito
	FormaPagoPorDefinir    = "99" // Por definir (obligatoria con PPD)
)

// =============================================================================
// c_Impuesto (Anexo 20)
// =============================================================================

const (
	ImpuestoISR  = "001" // ISR (retención)
	ImpuestoIVA  = "002" // IVA
	ImpuestoIEPS = "003" // IEPS
)

// ValidImpuestos códigos de impuesto reconocidos en traslados/retenciones.
var ValidImpuestos = map[string]bool{
	ImpuestoISR: true, ImpuestoIVA: true, ImpuestoIEPS: true,
}

// =============================================================================
// c_TipoFactor (Anexo 20)
// =============================================================================

const (
	TipoFactorTasa   = "Tasa"
	TipoFactorCuota  = "Cuota"
	TipoFactorExento = "Exento"
)

// =============================================================================
// Motivos de cancelación (catálogo c_MotivoCancelacion, vigente desde 2022)
// =============================================================================

const (
	MotivoConRelacion    = "01" // Comprobante emitido con errores con relación (exige folio sustitución)
	MotivoSinRelacion    = "02" // Comprobante emitido con errores sin relación
	MotivoNoSeLlevo      = "03" // No se llevó a cabo la operación
	MotivoFacturaGlobal  = "04" // Operación nominativa relacionada en factura global
)

// ValidMotivosCancelacion motivos de cancelación reconocidos por el SAT.
var ValidMotivosCancelacion = map[string]bool{
	MotivoConRelacion: true, MotivoSinRelacion: true,
	MotivoNoSeLlevo: true, MotivoFacturaGlobal: true,
}

// MotivoRequiereSustitucion indica si el motivo exige FolioSustitucion (CFDI que sustituye).
func MotivoRequiereSustitucion(motivo string) bool {
	return motivo == MotivoConRelacion
}

// =============================================================================
// c_UsoCFDI (Anexo 20) - códigos de uso frecuente
// =============================================================================

const (
	UsoGastosGenerales = "G03" // Gastos en general
	UsoAdquisicion     = "G01" // Adquisición de mercancías
	UsoSinEfectos      = "S01" // Sin efectos fiscales
	UsoPagos           = "CP01" // Pagos (obligatorio en tipo P)
)

// =============================================================================
// c_Exportacion (Anexo 20)
// =============================================================================

const (
	ExportacionNoAplica = "01" // No aplica
)

// =============================================================================
// c_ObjetoImp (Anexo 20)
// =============================================================================

const (
	ObjetoImpNo = "01" // No objeto de impuesto
	ObjetoImpSi = "02" // Sí objeto de impuesto
)

// VerificacionURL es la base del servicio de verificación de CFDI del SAT,
// usada en el string del código QR de la representación impresa.
const VerificacionURL = "https://verificacfdi.facturaelectronica.sat.gob.mx/default.aspx"
