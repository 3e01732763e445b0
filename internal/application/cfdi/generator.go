// Package cfdi implementa el generador de comprobantes fiscales: el pipeline
// completo validar → calcular impuestos → construir XML → sellar → timbrar
// ante el PAC, y la cancelación de comprobantes ya timbrados.
package cfdi

import (
	"context"
	"encoding/base64"
	"fmt"
	"net/url"

	"github.com/shopspring/decimal"

	"github.com/spirittours/erp-hub/internal/domain"
	cfdidom "github.com/spirittours/erp-hub/internal/domain/cfdi"
	"github.com/spirittours/erp-hub/internal/domain/entity"
	pkgcfdi "github.com/spirittours/erp-hub/pkg/cfdi"
	"github.com/spirittours/erp-hub/pkg/logger"
)

// StampedCFDI es el resultado final del pipeline: comprobante timbrado y sus
// representaciones derivadas.
type StampedCFDI struct {
	Comprobante *cfdidom.Comprobante
	UUID        string
	XML         []byte
	XMLBase64   string
	QRURL       string
}

// Generator orquesta el ciclo de vida de un CFDI. Todas las dependencias se
// inyectan en el wiring; no hay estado global.
//
// El pipeline no tiene rollback: si el timbrado falla después del sellado no
// queda nada persistido, y Generate puede re-ejecutarse completo. El UUID lo
// asigna el PAC, por lo que un reintento tras un timbrado que sí llegó al PAC
// puede producir un duplicado en el proveedor; esa reconciliación se hace con
// los acuses, fuera de este componente.
type Generator struct {
	builder XMLBuilder
	signer  Signer
	pac     PACClient
	log     *logger.Logger
}

// NewGenerator construye el generador con sus dependencias.
func NewGenerator(builder XMLBuilder, signer Signer, pac PACClient, log *logger.Logger) *Generator {
	return &Generator{builder: builder, signer: signer, pac: pac, log: log}
}

// Generate ejecuta el pipeline completo sobre el comprobante y regresa el
// CFDI timbrado. Cualquier falla de validación aborta antes de tocar la red;
// no se produce documento parcial.
func (g *Generator) Generate(ctx context.Context, c *cfdidom.Comprobante) (*StampedCFDI, error) {
	if err := cfdidom.Validate(c); err != nil {
		return nil, err
	}
	if err := cfdidom.ComputeTotals(c); err != nil {
		return nil, err
	}

	xml, err := g.builder.Build(c)
	if err != nil {
		return nil, err
	}

	signed, err := g.signer.Sign(c, xml)
	if err != nil {
		return nil, err
	}
	c.Sello = signed.Sello
	c.NoCertificado = signed.NoCertificado
	c.Certificado = signed.Certificado

	stamp, err := g.pac.Stamp(ctx, signed.XML)
	if err != nil {
		return nil, err
	}
	// No todos los PAC regresan la cadena original; cuando falta se conserva
	// la calculada durante el sellado.
	cadena := stamp.CadenaOriginal
	if cadena == "" {
		cadena = signed.CadenaOriginal
	}
	c.Timbre = &cfdidom.Timbre{
		UUID:             stamp.UUID,
		FechaTimbrado:    stamp.FechaTimbrado,
		SelloSAT:         stamp.SelloSAT,
		NoCertificadoSAT: stamp.NoCertificadoSAT,
		CadenaOriginal:   cadena,
	}

	g.log.Info().
		Str("uuid", stamp.UUID).
		Str("serie", c.Serie).
		Str("folio", c.Folio).
		Str("tipo", c.TipoDeComprobante).
		Str("total", c.Total.String()).
		Msg("CFDI timbrado")

	return &StampedCFDI{
		Comprobante: c,
		UUID:        stamp.UUID,
		XML:         stamp.XML,
		XMLBase64:   base64.StdEncoding.EncodeToString(stamp.XML),
		QRURL:       qrURL(c),
	}, nil
}

// GenerateComplementoPago arma y timbra el CFDI de pago (tipo "P") para un
// pago recibido contra una factura timbrada. Los totales del comprobante de
// pago van en cero por regla del Anexo 20; el monto viaja en el complemento.
func (g *Generator) GenerateComplementoPago(ctx context.Context, emisor cfdidom.Emisor, receptor cfdidom.Receptor, lugarExpedicion string, p *entity.ReceivedPayment, invoiceUUID string, saldoAnterior decimal.Decimal, parcialidad int) (*StampedCFDI, error) {
	if invoiceUUID == "" {
		return nil, &domain.ValidationError{Field: "invoiceUUID", Reason: "la factura relacionada no está timbrada"}
	}
	receptor.UsoCFDI = pkgcfdi.UsoPagos
	c := &cfdidom.Comprobante{
		Serie:             "P",
		Folio:             p.Folio,
		Fecha:             p.FechaPago,
		TipoDeComprobante: pkgcfdi.TipoPago,
		LugarExpedicion:   lugarExpedicion,
		Moneda:            "XXX", // moneda del comprobante P; la real va en el pago
		Exportacion:       pkgcfdi.ExportacionNoAplica,
		Emisor:            emisor,
		Receptor:          receptor,
		Conceptos: []cfdidom.Concepto{{
			ClaveProdServ: "84111506", // servicios de facturación
			Cantidad:      decimal.NewFromInt(1),
			ClaveUnidad:   "ACT",
			Descripcion:   "Pago",
			ValorUnitario: decimal.Zero,
			ObjetoImp:     "01",
		}},
		ComplementoPago: &cfdidom.ComplementoPago{
			Pagos: []cfdidom.Pago{{
				FechaPago:    p.FechaPago,
				FormaDePagoP: p.FormaPago,
				MonedaP:      p.Moneda,
				Monto:        p.Monto,
				DoctosRelacionados: []cfdidom.DoctoRelacionado{{
					IDDocumento:      invoiceUUID,
					MonedaDR:         p.Moneda,
					NumParcialidad:   parcialidad,
					ImpSaldoAnt:      saldoAnterior,
					ImpPagado:        p.Monto,
					ImpSaldoInsoluto: saldoAnterior.Sub(p.Monto),
				}},
			}},
		},
	}
	return g.Generate(ctx, c)
}

// Cancel solicita al PAC la cancelación de un CFDI timbrado. Toda la
// validación de motivo y sustitución ocurre antes de tocar la red.
func (g *Generator) Cancel(ctx context.Context, c *cfdidom.Comprobante, motivo, folioSustitucion string) (*CancelResult, error) {
	if !c.Timbrado() {
		return nil, &domain.ValidationError{Field: "comprobante", Reason: "no se puede cancelar un comprobante sin timbrar"}
	}
	if !pkgcfdi.ValidMotivosCancelacion[motivo] {
		return nil, &domain.ValidationError{Field: "motivo", Reason: "motivo de cancelación desconocido: " + motivo}
	}
	if pkgcfdi.MotivoRequiereSustitucion(motivo) && folioSustitucion == "" {
		return nil, &domain.ValidationError{Field: "folioSustitucion", Reason: "el motivo 01 requiere el UUID del comprobante que sustituye"}
	}
	if !pkgcfdi.MotivoRequiereSustitucion(motivo) && folioSustitucion != "" {
		return nil, &domain.ValidationError{Field: "folioSustitucion", Reason: "sólo el motivo 01 admite comprobante de sustitución"}
	}

	res, err := g.pac.Cancel(ctx, CancelRequest{
		UUID:             c.Timbre.UUID,
		EmisorRFC:        c.Emisor.RFC,
		Motivo:           motivo,
		FolioSustitucion: folioSustitucion,
		Total:            c.Total.StringFixed(2),
	})
	if err != nil {
		return nil, err
	}

	g.log.Info().
		Str("uuid", c.Timbre.UUID).
		Str("motivo", motivo).
		Str("status", res.Status).
		Msg("cancelación de CFDI solicitada")
	return res, nil
}

// qrURL arma la URL del QR de verificación del SAT: UUID, RFCs, total y los
// últimos 8 caracteres del sello del emisor.
func qrURL(c *cfdidom.Comprobante) string {
	sello := c.Sello
	if len(sello) > 8 {
		sello = sello[len(sello)-8:]
	}
	q := url.Values{}
	q.Set("id", c.Timbre.UUID)
	q.Set("re", c.Emisor.RFC)
	q.Set("rr", c.Receptor.RFC)
	q.Set("tt", c.Total.StringFixed(2))
	q.Set("fe", sello)
	return fmt.Sprintf("%s?%s", pkgcfdi.VerificacionURL, q.Encode())
}
