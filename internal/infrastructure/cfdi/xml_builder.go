// Package cfdi contiene la infraestructura del comprobante fiscal: la
// serialización al XML del Anexo 20, la cadena original, el sellado con CSD y
// los clientes PAC.
package cfdi

import (
	"bytes"
	"encoding/xml"
	"fmt"

	"github.com/shopspring/decimal"

	appcfdi "github.com/spirittours/erp-hub/internal/application/cfdi"
	cfdidom "github.com/spirittours/erp-hub/internal/domain/cfdi"
	pkgcfdi "github.com/spirittours/erp-hub/pkg/cfdi"
)

// Namespaces oficiales del CFDI 4.0 y el complemento Pagos 2.0 (Anexo 20).
const (
	NsCFDI   = "http://www.sat.gob.mx/cfd/4"
	NsPagos  = "http://www.sat.gob.mx/Pagos20"
	nsXsi    = "http://www.w3.org/2001/XMLSchema-instance"

	schemaLocationCFDI  = "http://www.sat.gob.mx/cfd/4 http://www.sat.gob.mx/sitio_internet/cfd/4/cfdv40.xsd"
	schemaLocationPagos = "http://www.sat.gob.mx/Pagos20 http://www.sat.gob.mx/sitio_internet/cfd/Pagos/Pagos20.xsd"

	fechaFormat = "2006-01-02T15:04:05"
)

var _ appcfdi.XMLBuilder = (*XMLBuilderService)(nil)

// XMLBuilderService serializa el comprobante al XML CFDI 4.0 sin sello. Los
// atributos Sello/NoCertificado/Certificado los inyecta después el firmador.
type XMLBuilderService struct{}

// NewXMLBuilderService crea el servicio.
func NewXMLBuilderService() *XMLBuilderService {
	return &XMLBuilderService{}
}

// Build genera el []byte del cfdi:Comprobante según el Anexo 20.
func (s *XMLBuilderService) Build(c *cfdidom.Comprobante) ([]byte, error) {
	if c == nil {
		return nil, fmt.Errorf("cfdi: comprobante nulo")
	}

	var buf bytes.Buffer
	buf.WriteString(xml.Header)
	enc := xml.NewEncoder(&buf)
	enc.Indent("", "  ")

	// Root con prefijo explícito: el SAT valida contra el prefijo cfdi.
	rootAttrs := []xml.Attr{
		{Name: xml.Name{Local: "xmlns:cfdi"}, Value: NsCFDI},
		{Name: xml.Name{Local: "xmlns:xsi"}, Value: nsXsi},
	}
	schemaLocation := schemaLocationCFDI
	if c.ComplementoPago != nil {
		rootAttrs = append(rootAttrs, xml.Attr{Name: xml.Name{Local: "xmlns:pago20"}, Value: NsPagos})
		schemaLocation += " " + schemaLocationPagos
	}
	rootAttrs = append(rootAttrs,
		xml.Attr{Name: xml.Name{Local: "xsi:schemaLocation"}, Value: schemaLocation},
		xml.Attr{Name: xml.Name{Local: "Version"}, Value: cfdidom.Version},
	)
	rootAttrs = appendAttr(rootAttrs, "Serie", c.Serie)
	rootAttrs = appendAttr(rootAttrs, "Folio", c.Folio)
	rootAttrs = appendAttr(rootAttrs, "Fecha", c.Fecha.Format(fechaFormat))
	rootAttrs = appendAttr(rootAttrs, "FormaPago", c.FormaPago)
	rootAttrs = appendAttr(rootAttrs, "SubTotal", monto(c.SubTotal))
	if c.Descuento.IsPositive() {
		rootAttrs = appendAttr(rootAttrs, "Descuento", monto(c.Descuento))
	}
	rootAttrs = appendAttr(rootAttrs, "Moneda", c.Moneda)
	rootAttrs = appendAttr(rootAttrs, "Total", monto(c.Total))
	rootAttrs = appendAttr(rootAttrs, "TipoDeComprobante", c.TipoDeComprobante)
	rootAttrs = appendAttr(rootAttrs, "Exportacion", c.Exportacion)
	rootAttrs = appendAttr(rootAttrs, "MetodoPago", c.MetodoPago)
	rootAttrs = appendAttr(rootAttrs, "LugarExpedicion", c.LugarExpedicion)

	root := xml.StartElement{Name: xml.Name{Local: "cfdi:Comprobante"}, Attr: rootAttrs}
	if err := enc.EncodeToken(root); err != nil {
		return nil, err
	}

	writeEmpty(enc, "cfdi:Emisor",
		attr("Rfc", c.Emisor.RFC),
		attr("Nombre", c.Emisor.Nombre),
		attr("RegimenFiscal", c.Emisor.RegimenFiscal),
	)
	writeEmpty(enc, "cfdi:Receptor",
		attr("Rfc", c.Receptor.RFC),
		attr("Nombre", c.Receptor.Nombre),
		attr("DomicilioFiscalReceptor", c.Receptor.DomicilioFiscalReceptor),
		attr("RegimenFiscalReceptor", c.Receptor.RegimenFiscalReceptor),
		attr("UsoCFDI", c.Receptor.UsoCFDI),
	)

	if err := s.writeConceptos(enc, c); err != nil {
		return nil, err
	}
	if err := s.writeImpuestos(enc, c.Impuestos); err != nil {
		return nil, err
	}
	if c.ComplementoPago != nil {
		if err := s.writeComplementoPago(enc, c.ComplementoPago); err != nil {
			return nil, err
		}
	}

	if err := enc.EncodeToken(root.End()); err != nil {
		return nil, err
	}
	if err := enc.Flush(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func (s *XMLBuilderService) writeConceptos(enc *xml.Encoder, c *cfdidom.Comprobante) error {
	open(enc, "cfdi:Conceptos")
	for i := range c.Conceptos {
		con := &c.Conceptos[i]
		attrs := []xml.Attr{
			attr("ClaveProdServ", con.ClaveProdServ),
			attr("Cantidad", con.Cantidad.String()),
			attr("ClaveUnidad", con.ClaveUnidad),
			attr("Descripcion", con.Descripcion),
			attr("ValorUnitario", monto(con.ValorUnitario)),
			attr("Importe", monto(con.Importe)),
		}
		if con.Descuento.IsPositive() {
			attrs = append(attrs, attr("Descuento", monto(con.Descuento)))
		}
		attrs = append(attrs, attr("ObjetoImp", con.ObjetoImp))

		hasImpuestos := len(con.Traslados) > 0 || len(con.Retenciones) > 0
		if !hasImpuestos {
			writeEmpty(enc, "cfdi:Concepto", attrs...)
			continue
		}

		_ = enc.EncodeToken(xml.StartElement{Name: xml.Name{Local: "cfdi:Concepto"}, Attr: attrs})
		open(enc, "cfdi:Impuestos")
		if len(con.Traslados) > 0 {
			open(enc, "cfdi:Traslados")
			for _, t := range con.Traslados {
				writeEmpty(enc, "cfdi:Traslado",
					attr("Base", monto(t.Base)),
					attr("Impuesto", t.Impuesto),
					attr("TipoFactor", t.TipoFactor),
					attr("TasaOCuota", tasa(t.TasaOCuota)),
					attr("Importe", monto(t.Importe)),
				)
			}
			closeEl(enc, "cfdi:Traslados")
		}
		if len(con.Retenciones) > 0 {
			open(enc, "cfdi:Retenciones")
			for _, r := range con.Retenciones {
				writeEmpty(enc, "cfdi:Retencion",
					attr("Base", monto(r.Base)),
					attr("Impuesto", r.Impuesto),
					attr("TipoFactor", r.TipoFactor),
					attr("TasaOCuota", tasa(r.TasaOCuota)),
					attr("Importe", monto(r.Importe)),
				)
			}
			closeEl(enc, "cfdi:Retenciones")
		}
		closeEl(enc, "cfdi:Impuestos")
		closeEl(enc, "cfdi:Concepto")
	}
	closeEl(enc, "cfdi:Conceptos")
	return nil
}

// writeImpuestos escribe el resumen de impuestos del comprobante. En el nodo
// resumen la retención sólo lleva Impuesto e Importe (Anexo 20).
func (s *XMLBuilderService) writeImpuestos(enc *xml.Encoder, imp *cfdidom.Impuestos) error {
	if imp == nil {
		return nil
	}
	attrs := []xml.Attr{}
	if len(imp.Retenciones) > 0 {
		attrs = append(attrs, attr("TotalImpuestosRetenidos", monto(imp.TotalImpuestosRetenidos)))
	}
	if len(imp.Traslados) > 0 {
		attrs = append(attrs, attr("TotalImpuestosTrasladados", monto(imp.TotalImpuestosTrasladados)))
	}
	_ = enc.EncodeToken(xml.StartElement{Name: xml.Name{Local: "cfdi:Impuestos"}, Attr: attrs})

	if len(imp.Retenciones) > 0 {
		open(enc, "cfdi:Retenciones")
		for _, r := range imp.Retenciones {
			writeEmpty(enc, "cfdi:Retencion",
				attr("Impuesto", r.Impuesto),
				attr("Importe", monto(r.Importe)),
			)
		}
		closeEl(enc, "cfdi:Retenciones")
	}
	if len(imp.Traslados) > 0 {
		open(enc, "cfdi:Traslados")
		for _, t := range imp.Traslados {
			writeEmpty(enc, "cfdi:Traslado",
				attr("Base", monto(t.Base)),
				attr("Impuesto", t.Impuesto),
				attr("TipoFactor", t.TipoFactor),
				attr("TasaOCuota", tasa(t.TasaOCuota)),
				attr("Importe", monto(t.Importe)),
			)
		}
		closeEl(enc, "cfdi:Traslados")
	}
	closeEl(enc, "cfdi:Impuestos")
	return nil
}

func (s *XMLBuilderService) writeComplementoPago(enc *xml.Encoder, cp *cfdidom.ComplementoPago) error {
	open(enc, "cfdi:Complemento")
	_ = enc.EncodeToken(xml.StartElement{
		Name: xml.Name{Local: "pago20:Pagos"},
		Attr: []xml.Attr{attr("Version", "2.0")},
	})

	montoTotal := decimal.Zero
	for _, p := range cp.Pagos {
		montoTotal = montoTotal.Add(p.Monto)
	}
	writeEmpty(enc, "pago20:Totales", attr("MontoTotalPagos", monto(montoTotal)))

	for _, p := range cp.Pagos {
		_ = enc.EncodeToken(xml.StartElement{
			Name: xml.Name{Local: "pago20:Pago"},
			Attr: []xml.Attr{
				attr("FechaPago", p.FechaPago.Format(fechaFormat)),
				attr("FormaDePagoP", p.FormaDePagoP),
				attr("MonedaP", p.MonedaP),
				attr("Monto", monto(p.Monto)),
			},
		})
		for _, dr := range p.DoctosRelacionados {
			attrs := []xml.Attr{attr("IdDocumento", dr.IDDocumento)}
			attrs = appendAttr(attrs, "Serie", dr.Serie)
			attrs = appendAttr(attrs, "Folio", dr.Folio)
			attrs = append(attrs,
				attr("MonedaDR", dr.MonedaDR),
				attr("NumParcialidad", fmt.Sprintf("%d", dr.NumParcialidad)),
				attr("ImpSaldoAnt", monto(dr.ImpSaldoAnt)),
				attr("ImpPagado", monto(dr.ImpPagado)),
				attr("ImpSaldoInsoluto", monto(dr.ImpSaldoInsoluto)),
				attr("ObjetoImpDR", pkgcfdi.ObjetoImpNo),
			)
			writeEmpty(enc, "pago20:DoctoRelacionado", attrs...)
		}
		closeEl(enc, "pago20:Pago")
	}

	closeEl(enc, "pago20:Pagos")
	closeEl(enc, "cfdi:Complemento")
	return nil
}

// ── Helpers de serialización ─────────────────────────────────────────────────

func attr(local, value string) xml.Attr {
	return xml.Attr{Name: xml.Name{Local: local}, Value: value}
}

// appendAttr agrega el atributo solo si el valor no está vacío: los atributos
// opcionales del Anexo 20 se omiten, nunca van vacíos.
func appendAttr(attrs []xml.Attr, local, value string) []xml.Attr {
	if value == "" {
		return attrs
	}
	return append(attrs, attr(local, value))
}

func open(enc *xml.Encoder, local string) {
	_ = enc.EncodeToken(xml.StartElement{Name: xml.Name{Local: local}})
}

func closeEl(enc *xml.Encoder, local string) {
	_ = enc.EncodeToken(xml.EndElement{Name: xml.Name{Local: local}})
}

func writeEmpty(enc *xml.Encoder, local string, attrs ...xml.Attr) {
	_ = enc.EncodeToken(xml.StartElement{Name: xml.Name{Local: local}, Attr: attrs})
	_ = enc.EncodeToken(xml.EndElement{Name: xml.Name{Local: local}})
}

// monto formatea importes a 2 decimales, como exige el Anexo 20 para MXN.
func monto(d decimal.Decimal) string {
	return d.StringFixed(2)
}

// tasa formatea TasaOCuota a 6 decimales (ej. 0.160000).
func tasa(d decimal.Decimal) string {
	return d.StringFixed(6)
}
