package cfdi

import (
	"fmt"
	"time"

	"github.com/beevik/etree"
	"github.com/shopspring/decimal"

	appcfdi "github.com/spirittours/erp-hub/internal/application/cfdi"
	cfdidom "github.com/spirittours/erp-hub/internal/domain/cfdi"
)

var _ appcfdi.XMLParser = (*XMLParserService)(nil)

// XMLParserService reconstruye el comprobante desde el XML timbrado que se
// archiva en documentos_cfdi. El recorrido es por nombre local: el prefijo del
// namespace depende del PAC y no se asume.
type XMLParserService struct{}

// NewXMLParserService crea el servicio.
func NewXMLParserService() *XMLParserService {
	return &XMLParserService{}
}

// Parse lee el cfdi:Comprobante timbrado y regresa el modelo de dominio.
func (s *XMLParserService) Parse(raw []byte) (*cfdidom.Comprobante, error) {
	doc := etree.NewDocument()
	if err := doc.ReadFromBytes(raw); err != nil {
		return nil, fmt.Errorf("cfdi: XML malformado: %w", err)
	}
	root := doc.Root()
	if root == nil || localName(root) != "Comprobante" {
		return nil, fmt.Errorf("cfdi: el documento no es un cfdi:Comprobante")
	}

	c := &cfdidom.Comprobante{
		Serie:             attrVal(root, "Serie"),
		Folio:             attrVal(root, "Folio"),
		TipoDeComprobante: attrVal(root, "TipoDeComprobante"),
		MetodoPago:        attrVal(root, "MetodoPago"),
		FormaPago:         attrVal(root, "FormaPago"),
		LugarExpedicion:   attrVal(root, "LugarExpedicion"),
		Moneda:            attrVal(root, "Moneda"),
		Exportacion:       attrVal(root, "Exportacion"),
		Sello:             attrVal(root, "Sello"),
		NoCertificado:     attrVal(root, "NoCertificado"),
		Certificado:       attrVal(root, "Certificado"),
	}
	var err error
	if c.Fecha, err = parseFecha(attrVal(root, "Fecha")); err != nil {
		return nil, err
	}
	if c.SubTotal, err = parseMonto(root, "SubTotal"); err != nil {
		return nil, err
	}
	if c.Descuento, err = parseMonto(root, "Descuento"); err != nil {
		return nil, err
	}
	if c.Total, err = parseMonto(root, "Total"); err != nil {
		return nil, err
	}

	if e := childByLocal(root, "Emisor"); e != nil {
		c.Emisor = cfdidom.Emisor{
			RFC:           attrVal(e, "Rfc"),
			Nombre:        attrVal(e, "Nombre"),
			RegimenFiscal: attrVal(e, "RegimenFiscal"),
		}
	}
	if r := childByLocal(root, "Receptor"); r != nil {
		c.Receptor = cfdidom.Receptor{
			RFC:                     attrVal(r, "Rfc"),
			Nombre:                  attrVal(r, "Nombre"),
			DomicilioFiscalReceptor: attrVal(r, "DomicilioFiscalReceptor"),
			RegimenFiscalReceptor:   attrVal(r, "RegimenFiscalReceptor"),
			UsoCFDI:                 attrVal(r, "UsoCFDI"),
		}
	}

	if conceptos := childByLocal(root, "Conceptos"); conceptos != nil {
		for _, el := range conceptos.ChildElements() {
			if localName(el) != "Concepto" {
				continue
			}
			con, err := parseConcepto(el)
			if err != nil {
				return nil, err
			}
			c.Conceptos = append(c.Conceptos, *con)
		}
	}

	if imp := childByLocal(root, "Impuestos"); imp != nil {
		resumen, err := parseImpuestosResumen(imp)
		if err != nil {
			return nil, err
		}
		c.Impuestos = resumen
	}

	if tfd := findByLocal(root, "TimbreFiscalDigital"); tfd != nil {
		fecha, err := parseFecha(attrVal(tfd, "FechaTimbrado"))
		if err != nil {
			return nil, err
		}
		c.Timbre = &cfdidom.Timbre{
			UUID:             attrVal(tfd, "UUID"),
			FechaTimbrado:    fecha,
			SelloSAT:         attrVal(tfd, "SelloSAT"),
			NoCertificadoSAT: attrVal(tfd, "NoCertificadoSAT"),
		}
	}

	return c, nil
}

func parseConcepto(el *etree.Element) (*cfdidom.Concepto, error) {
	con := &cfdidom.Concepto{
		ClaveProdServ: attrVal(el, "ClaveProdServ"),
		ClaveUnidad:   attrVal(el, "ClaveUnidad"),
		Descripcion:   attrVal(el, "Descripcion"),
		ObjetoImp:     attrVal(el, "ObjetoImp"),
	}
	var err error
	if con.Cantidad, err = parseMonto(el, "Cantidad"); err != nil {
		return nil, err
	}
	if con.ValorUnitario, err = parseMonto(el, "ValorUnitario"); err != nil {
		return nil, err
	}
	if con.Importe, err = parseMonto(el, "Importe"); err != nil {
		return nil, err
	}
	if con.Descuento, err = parseMonto(el, "Descuento"); err != nil {
		return nil, err
	}
	if imp := childByLocal(el, "Impuestos"); imp != nil {
		if tras := childByLocal(imp, "Traslados"); tras != nil {
			for _, t := range tras.ChildElements() {
				it, err := parseImpuestoConcepto(t)
				if err != nil {
					return nil, err
				}
				con.Traslados = append(con.Traslados, *it)
			}
		}
		if ret := childByLocal(imp, "Retenciones"); ret != nil {
			for _, r := range ret.ChildElements() {
				it, err := parseImpuestoConcepto(r)
				if err != nil {
					return nil, err
				}
				con.Retenciones = append(con.Retenciones, *it)
			}
		}
	}
	return con, nil
}

func parseImpuestoConcepto(el *etree.Element) (*cfdidom.ImpuestoConcepto, error) {
	it := &cfdidom.ImpuestoConcepto{
		Impuesto:   attrVal(el, "Impuesto"),
		TipoFactor: attrVal(el, "TipoFactor"),
	}
	var err error
	if it.Base, err = parseMonto(el, "Base"); err != nil {
		return nil, err
	}
	if it.TasaOCuota, err = parseMonto(el, "TasaOCuota"); err != nil {
		return nil, err
	}
	if it.Importe, err = parseMonto(el, "Importe"); err != nil {
		return nil, err
	}
	return it, nil
}

// parseImpuestosResumen lee el nodo resumen. En el resumen la retención sólo
// trae Impuesto e Importe, igual que al serializar.
func parseImpuestosResumen(el *etree.Element) (*cfdidom.Impuestos, error) {
	imp := &cfdidom.Impuestos{}
	var err error
	if imp.TotalImpuestosTrasladados, err = parseMonto(el, "TotalImpuestosTrasladados"); err != nil {
		return nil, err
	}
	if imp.TotalImpuestosRetenidos, err = parseMonto(el, "TotalImpuestosRetenidos"); err != nil {
		return nil, err
	}
	if tras := childByLocal(el, "Traslados"); tras != nil {
		for _, t := range tras.ChildElements() {
			it, err := parseImpuestoConcepto(t)
			if err != nil {
				return nil, err
			}
			imp.Traslados = append(imp.Traslados, cfdidom.ImpuestoResumen(*it))
		}
	}
	if ret := childByLocal(el, "Retenciones"); ret != nil {
		for _, r := range ret.ChildElements() {
			it, err := parseImpuestoConcepto(r)
			if err != nil {
				return nil, err
			}
			imp.Retenciones = append(imp.Retenciones, cfdidom.ImpuestoResumen(*it))
		}
	}
	return imp, nil
}

// ── Helpers de recorrido ─────────────────────────────────────────────────────

func localName(el *etree.Element) string { return el.Tag }

func attrVal(el *etree.Element, name string) string {
	return el.SelectAttrValue(name, "")
}

// childByLocal regresa el primer hijo directo con ese nombre local, o nil.
func childByLocal(el *etree.Element, local string) *etree.Element {
	for _, ch := range el.ChildElements() {
		if localName(ch) == local {
			return ch
		}
	}
	return nil
}

// findByLocal busca en profundidad el primer elemento con ese nombre local.
func findByLocal(el *etree.Element, local string) *etree.Element {
	for _, ch := range el.ChildElements() {
		if localName(ch) == local {
			return ch
		}
		if found := findByLocal(ch, local); found != nil {
			return found
		}
	}
	return nil
}

func parseFecha(v string) (time.Time, error) {
	if v == "" {
		return time.Time{}, nil
	}
	t, err := time.Parse(fechaFormat, v)
	if err != nil {
		return time.Time{}, fmt.Errorf("cfdi: fecha inválida %q: %w", v, err)
	}
	return t, nil
}

// parseMonto lee un atributo decimal; ausente = cero (los opcionales del
// Anexo 20 se omiten).
func parseMonto(el *etree.Element, name string) (decimal.Decimal, error) {
	v := el.SelectAttrValue(name, "")
	if v == "" {
		return decimal.Zero, nil
	}
	d, err := decimal.NewFromString(v)
	if err != nil {
		return decimal.Zero, fmt.Errorf("cfdi: atributo %s inválido %q: %w", name, v, err)
	}
	return d, nil
}
