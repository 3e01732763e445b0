// Package pdf implementa la representación impresa del CFDI 4.0 (Anexo 20,
// regla 2.7.1.7 de la RMF): los datos fiscales del XML timbrado en una página
// A4 legible, con el UUID, los sellos y el código QR de verificación del SAT.
//
// Layout de la página:
//
//	┌─────────────────────────────────────────────────────────────┐
//	│  HEADER: Emisor + RFC  │  Serie-Folio + Fecha + Tipo        │
//	│  ─────────────────────────────────────────────────────────  │
//	│  RECEPTOR: Nombre + RFC + Uso CFDI + CP                      │
//	│  ─────────────────────────────────────────────────────────  │
//	│  TABLA: Cant | Clave | Descripción | V.Unit | Importe        │
//	│  ─────────────────────────────────────────────────────────  │
//	│  TOTALES: Subtotal / IVA / Retenciones / TOTAL               │
//	│  ─────────────────────────────────────────────────────────  │
//	│  TIMBRE: UUID + sellos recortados + QR + leyenda             │
//	└─────────────────────────────────────────────────────────────┘
package pdf

import (
	"context"
	"fmt"

	maroto "github.com/johnfercher/maroto/v2"
	"github.com/johnfercher/maroto/v2/pkg/components/code"
	"github.com/johnfercher/maroto/v2/pkg/components/col"
	"github.com/johnfercher/maroto/v2/pkg/components/line"
	"github.com/johnfercher/maroto/v2/pkg/components/row"
	"github.com/johnfercher/maroto/v2/pkg/components/text"
	"github.com/johnfercher/maroto/v2/pkg/config"
	"github.com/johnfercher/maroto/v2/pkg/consts/align"
	"github.com/johnfercher/maroto/v2/pkg/consts/fontstyle"
	"github.com/johnfercher/maroto/v2/pkg/consts/pagesize"
	"github.com/johnfercher/maroto/v2/pkg/core"
	"github.com/johnfercher/maroto/v2/pkg/props"

	appcfdi "github.com/spirittours/erp-hub/internal/application/cfdi"
	cfdidom "github.com/spirittours/erp-hub/internal/domain/cfdi"
	pkgcfdi "github.com/spirittours/erp-hub/pkg/cfdi"
)

// ── Paleta de colores ─────────────────────────────────────────────────────────

var (
	colorPrimary = &props.Color{Red: 0, Green: 94, Blue: 84} // verde institucional
	colorGray    = &props.Color{Red: 100, Green: 100, Blue: 100}
)

var _ appcfdi.PDFRenderer = (*MarotoPDFGenerator)(nil)

// MarotoPDFGenerator implementa cfdi.PDFRenderer usando Maroto v2.
type MarotoPDFGenerator struct{}

// NewMarotoPDFGenerator construye el generador.
func NewMarotoPDFGenerator() *MarotoPDFGenerator { return &MarotoPDFGenerator{} }

// RenderComprobante genera el PDF de un comprobante timbrado y devuelve sus bytes.
func (g *MarotoPDFGenerator) RenderComprobante(_ context.Context, c *cfdidom.Comprobante, qrURL string) ([]byte, error) {
	if !c.Timbrado() {
		return nil, fmt.Errorf("pdf: el comprobante no está timbrado")
	}

	cfg := config.NewBuilder().
		WithPageSize(pagesize.A4).
		WithLeftMargin(10).WithRightMargin(10).
		WithTopMargin(10).WithBottomMargin(10).
		WithDefaultFont(&props.Font{Family: "helvetica", Size: 9}).
		WithTitle("CFDI "+c.Timbre.UUID, true).
		WithAuthor(c.Emisor.Nombre, true).
		Build()

	m := maroto.New(cfg)

	m.AddRows(headerRow(c))
	m.AddRows(line.NewRow(1, props.Line{Color: colorPrimary, Thickness: 0.5}))
	m.AddRows(receptorRow(c))
	m.AddRows(line.NewRow(1, props.Line{Color: colorPrimary, Thickness: 0.3}))

	m.AddRows(tableHeaderRow())
	for _, r := range conceptoRows(c.Conceptos) {
		m.AddRows(r)
	}

	m.AddRows(line.NewRow(1, props.Line{Color: colorPrimary, Thickness: 0.3}))
	m.AddRows(totalsRow(c))

	m.AddRows(line.NewRow(3))
	m.AddRows(line.NewRow(1, props.Line{Color: colorGray, Thickness: 0.3}))
	for _, r := range timbreRows(c, qrURL) {
		m.AddRows(r)
	}

	doc, err := m.Generate()
	if err != nil {
		return nil, fmt.Errorf("pdf: generar documento: %w", err)
	}
	return doc.GetBytes(), nil
}

// ── Secciones ─────────────────────────────────────────────────────────────────

// headerRow: emisor (izq) y serie-folio, fecha y tipo (der).
func headerRow(c *cfdidom.Comprobante) core.Row {
	folio := c.Serie + "-" + c.Folio
	fecha := c.Fecha.Format("02/01/2006 15:04")

	return row.New(20).Add(
		col.New(7).Add(
			text.New(c.Emisor.Nombre, props.Text{
				Style: fontstyle.Bold, Size: 13, Color: colorPrimary, Top: 1,
			}),
			text.New("RFC: "+c.Emisor.RFC+"   Régimen: "+c.Emisor.RegimenFiscal, props.Text{
				Size: 9, Top: 9, Color: colorGray,
			}),
			text.New("Lugar de expedición: "+c.LugarExpedicion, props.Text{
				Size: 8, Top: 15, Color: colorGray,
			}),
		),
		col.New(5).Add(
			text.New(tipoLeyenda(c.TipoDeComprobante), props.Text{
				Style: fontstyle.Bold, Size: 8, Align: align.Right,
				Color: colorPrimary, Top: 1,
			}),
			text.New(folio, props.Text{
				Style: fontstyle.Bold, Size: 12, Align: align.Right, Top: 7,
			}),
			text.New("Fecha: "+fecha, props.Text{
				Size: 8, Align: align.Right, Top: 14, Color: colorGray,
			}),
		),
	)
}

// receptorRow: datos fiscales del receptor.
func receptorRow(c *cfdidom.Comprobante) core.Row {
	return row.New(14).Add(
		col.New(12).Add(
			text.New("RECEPTOR", props.Text{
				Style: fontstyle.Bold, Size: 8, Color: colorPrimary, Top: 1,
			}),
			text.New(c.Receptor.Nombre, props.Text{
				Style: fontstyle.Bold, Size: 10, Top: 6,
			}),
			text.New(fmt.Sprintf("RFC: %s   |   Uso CFDI: %s   |   CP: %s   |   Régimen: %s",
				c.Receptor.RFC,
				c.Receptor.UsoCFDI,
				c.Receptor.DomicilioFiscalReceptor,
				c.Receptor.RegimenFiscalReceptor,
			), props.Text{Size: 8, Top: 12, Color: colorGray}),
		),
	)
}

// tableHeaderRow: cabecera de la tabla de conceptos.
func tableHeaderRow() core.Row {
	h := func(label string, size int, a align.Type) core.Col {
		return col.New(size).Add(text.New(label, props.Text{
			Style: fontstyle.Bold, Size: 8, Align: a,
			Color: colorPrimary, Top: 2, Left: 1, Right: 1,
		}))
	}
	return row.New(8).Add(
		h("Cant.", 1, align.Center),
		h("Clave", 2, align.Center),
		h("Descripción", 5, align.Left),
		h("V. Unitario", 2, align.Right),
		h("Importe", 2, align.Right),
	)
}

// conceptoRows: una fila por concepto del comprobante.
func conceptoRows(conceptos []cfdidom.Concepto) []core.Row {
	result := make([]core.Row, 0, len(conceptos))
	for _, con := range conceptos {
		result = append(result, row.New(7).Add(
			col.New(1).Add(text.New(
				con.Cantidad.String(),
				props.Text{Size: 8, Align: align.Center, Top: 1},
			)),
			col.New(2).Add(text.New(
				con.ClaveProdServ,
				props.Text{Size: 8, Align: align.Center, Top: 1},
			)),
			col.New(5).Add(text.New(
				con.Descripcion,
				props.Text{Size: 8, Align: align.Left, Top: 1, Left: 1},
			)),
			col.New(2).Add(text.New(
				"$"+con.ValorUnitario.StringFixed(2),
				props.Text{Size: 8, Align: align.Right, Top: 1, Right: 1},
			)),
			col.New(2).Add(text.New(
				"$"+con.Importe.StringFixed(2),
				props.Text{Size: 8, Align: align.Right, Top: 1, Right: 1},
			)),
		))
	}
	return result
}

// totalsRow: bloque de totales alineado a la derecha, una línea por monto.
func totalsRow(c *cfdidom.Comprobante) core.Row {
	type montoLinea struct {
		label string
		value string
	}
	lineas := []montoLinea{{"Subtotal:", "$" + c.SubTotal.StringFixed(2)}}
	if c.Descuento.IsPositive() {
		lineas = append(lineas, montoLinea{"Descuento:", "-$" + c.Descuento.StringFixed(2)})
	}
	if c.Impuestos != nil {
		if c.Impuestos.TotalImpuestosTrasladados.IsPositive() {
			lineas = append(lineas, montoLinea{"Impuestos trasladados:", "$" + c.Impuestos.TotalImpuestosTrasladados.StringFixed(2)})
		}
		if c.Impuestos.TotalImpuestosRetenidos.IsPositive() {
			lineas = append(lineas, montoLinea{"Impuestos retenidos:", "-$" + c.Impuestos.TotalImpuestosRetenidos.StringFixed(2)})
		}
	}

	var labels, values []core.Component
	top := 1.0
	for _, l := range lineas {
		labels = append(labels, text.New(l.label, props.Text{
			Style: fontstyle.Bold, Size: 9, Align: align.Right, Right: 2, Top: top,
		}))
		values = append(values, text.New(l.value, props.Text{
			Size: 9, Align: align.Right, Right: 1, Top: top,
		}))
		top += 5
	}
	labels = append(labels, text.New("TOTAL:", props.Text{
		Style: fontstyle.Bold, Size: 10, Align: align.Right,
		Color: colorPrimary, Right: 2, Top: top,
	}))
	values = append(values, text.New("$"+c.Total.StringFixed(2)+" "+c.Moneda, props.Text{
		Style: fontstyle.Bold, Size: 10, Align: align.Right,
		Color: colorPrimary, Right: 1, Top: top,
	}))

	return row.New(top + 8).Add(
		col.New(3),
		col.New(4).Add(labels...),
		col.New(5).Add(values...),
	)
}

// timbreRows: UUID + sellos recortados + QR de verificación + leyenda legal.
func timbreRows(c *cfdidom.Comprobante, qrURL string) []core.Row {
	t := c.Timbre
	rows := []core.Row{
		row.New(6).Add(col.New(12).Add(
			text.New("TIMBRE FISCAL DIGITAL", props.Text{
				Style: fontstyle.Bold, Size: 8, Color: colorPrimary, Top: 1,
			}),
		)),
		row.New(5).Add(col.New(12).Add(
			text.New("Folio fiscal (UUID): "+t.UUID, props.Text{
				Style: fontstyle.Bold, Size: 7, Top: 1,
			}),
		)),
		row.New(4).Add(col.New(12).Add(
			text.New(fmt.Sprintf("Certificado SAT: %s   |   Fecha de timbrado: %s",
				t.NoCertificadoSAT, t.FechaTimbrado.Format("02/01/2006 15:04:05")),
				props.Text{Size: 7, Color: colorGray, Top: 0.5}),
		)),
	}

	// Sellos partidos en fragmentos de 110 caracteres
	for _, sello := range []struct{ label, value string }{
		{"Sello digital del emisor:", c.Sello},
		{"Sello del SAT:", t.SelloSAT},
	} {
		if sello.value == "" {
			continue
		}
		rows = append(rows, row.New(4).Add(col.New(12).Add(
			text.New(sello.label, props.Text{Style: fontstyle.Bold, Size: 6.5, Top: 0.5}),
		)))
		for _, chunk := range splitEvery(sello.value, 110) {
			rows = append(rows, row.New(3).Add(col.New(12).Add(
				text.New(chunk, props.Text{Size: 6, Color: colorGray, Top: 0.3, Left: 2}),
			)))
		}
	}

	rows = append(rows, row.New(3))

	// QR + leyenda
	if qrURL != "" {
		rows = append(rows, row.New(45).Add(
			col.New(4).Add(code.NewQr(qrURL, props.Rect{
				Percent: 95,
				Center:  true,
			})),
			col.New(8).Add(
				text.New("Escanea el código QR para verificar\neste comprobante en el portal del SAT.", props.Text{
					Size: 8, Top: 4, Left: 3, Color: colorGray,
				}),
				text.New("Este documento es una representación\nimpresa de un CFDI 4.0", props.Text{
					Style: fontstyle.Bold, Size: 10, Top: 20,
					Left: 3, Color: colorPrimary,
				}),
			),
		))
	} else {
		rows = append(rows, row.New(10).Add(col.New(12).Add(
			text.New("Este documento es una representación impresa de un CFDI 4.0", props.Text{
				Style: fontstyle.Bold, Size: 9, Align: align.Center,
				Color: colorPrimary, Top: 2,
			}),
		)))
	}

	return rows
}

// ── helpers ───────────────────────────────────────────────────────────────────

// tipoLeyenda traduce el tipo de comprobante a su leyenda del catálogo.
func tipoLeyenda(tipo string) string {
	switch tipo {
	case pkgcfdi.TipoIngreso:
		return "FACTURA (COMPROBANTE DE INGRESO)"
	case pkgcfdi.TipoEgreso:
		return "NOTA DE CRÉDITO (EGRESO)"
	case pkgcfdi.TipoPago:
		return "COMPLEMENTO DE RECEPCIÓN DE PAGOS"
	case pkgcfdi.TipoTraslado:
		return "COMPROBANTE DE TRASLADO"
	case pkgcfdi.TipoNomina:
		return "COMPROBANTE DE NÓMINA"
	default:
		return "COMPROBANTE FISCAL"
	}
}

// splitEvery divide s en trozos de max n caracteres.
func splitEvery(s string, n int) []string {
	var parts []string
	for len(s) > n {
		parts = append(parts, s[:n])
		s = s[n:]
	}
	if s != "" {
		parts = append(parts, s)
	}
	return parts
}
