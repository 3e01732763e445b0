package cfdi

import (
	"fmt"

	"github.com/shopspring/decimal"
	"github.com/spirittours/erp-hub/internal/domain"
)

// dos decimales en todos los montos del comprobante (Anexo 20).
const montoDecimales = 2

// ComputeTotals calcula importes por concepto e impuestos, agrega los
// traslados idénticos (impuesto, tasa) a nivel comprobante y fija
// SubTotal/Total con el invariante:
//
//	Total == SubTotal − Descuento + ΣTraslados − ΣRetenciones
//
// Todos los montos quedan redondeados a 2 decimales. Muta el comprobante.
func ComputeTotals(c *Comprobante) error {
	if c == nil {
		return &domain.ValidationError{Field: "comprobante", Reason: "nulo"}
	}

	subTotal := decimal.Zero
	descuento := decimal.Zero

	type trasladoKey struct {
		impuesto string
		tasa     string
	}
	trasladosAgg := map[trasladoKey]*ImpuestoResumen{}
	var trasladoOrder []trasladoKey
	retencionesAgg := map[trasladoKey]*ImpuestoResumen{}
	var retencionOrder []trasladoKey

	for i := range c.Conceptos {
		con := &c.Conceptos[i]
		con.Importe = con.Cantidad.Mul(con.ValorUnitario).Round(montoDecimales)
		subTotal = subTotal.Add(con.Importe)
		descuento = descuento.Add(con.Descuento)

		base := con.Importe.Sub(con.Descuento)

		for j := range con.Traslados {
			t := &con.Traslados[j]
			if t.Base.IsZero() {
				t.Base = base
			}
			if t.Importe.IsZero() {
				t.Importe = t.Base.Mul(t.TasaOCuota).Round(montoDecimales)
			}
			k := trasladoKey{t.Impuesto, t.TasaOCuota.String()}
			agg, ok := trasladosAgg[k]
			if !ok {
				agg = &ImpuestoResumen{
					Impuesto:   t.Impuesto,
					TipoFactor: t.TipoFactor,
					TasaOCuota: t.TasaOCuota,
				}
				trasladosAgg[k] = agg
				trasladoOrder = append(trasladoOrder, k)
			}
			agg.Base = agg.Base.Add(t.Base)
			agg.Importe = agg.Importe.Add(t.Importe)
		}

		for j := range con.Retenciones {
			r := &con.Retenciones[j]
			if r.Base.IsZero() {
				r.Base = base
			}
			if r.Importe.IsZero() {
				r.Importe = r.Base.Mul(r.TasaOCuota).Round(montoDecimales)
			}
			k := trasladoKey{r.Impuesto, r.TasaOCuota.String()}
			agg, ok := retencionesAgg[k]
			if !ok {
				agg = &ImpuestoResumen{
					Impuesto:   r.Impuesto,
					TipoFactor: r.TipoFactor,
					TasaOCuota: r.TasaOCuota,
				}
				retencionesAgg[k] = agg
				retencionOrder = append(retencionOrder, k)
			}
			agg.Base = agg.Base.Add(r.Base)
			agg.Importe = agg.Importe.Add(r.Importe)
		}
	}

	totalTraslados := decimal.Zero
	totalRetenciones := decimal.Zero
	imp := &Impuestos{}
	for _, k := range trasladoOrder {
		agg := trasladosAgg[k]
		agg.Base = agg.Base.Round(montoDecimales)
		agg.Importe = agg.Importe.Round(montoDecimales)
		totalTraslados = totalTraslados.Add(agg.Importe)
		imp.Traslados = append(imp.Traslados, *agg)
	}
	for _, k := range retencionOrder {
		agg := retencionesAgg[k]
		agg.Base = agg.Base.Round(montoDecimales)
		agg.Importe = agg.Importe.Round(montoDecimales)
		totalRetenciones = totalRetenciones.Add(agg.Importe)
		imp.Retenciones = append(imp.Retenciones, *agg)
	}
	imp.TotalImpuestosTrasladados = totalTraslados.Round(montoDecimales)
	imp.TotalImpuestosRetenidos = totalRetenciones.Round(montoDecimales)

	c.SubTotal = subTotal.Round(montoDecimales)
	c.Descuento = descuento.Round(montoDecimales)
	c.Total = c.SubTotal.Sub(c.Descuento).Add(totalTraslados).Sub(totalRetenciones).Round(montoDecimales)

	if len(imp.Traslados) > 0 || len(imp.Retenciones) > 0 {
		c.Impuestos = imp
	} else {
		c.Impuestos = nil
	}
	return nil
}

// VerifyTotal comprueba el invariante Total == SubTotal − Descuento +
// traslados − retenciones sobre un comprobante ya calculado.
func VerifyTotal(c *Comprobante) error {
	traslados := decimal.Zero
	retenciones := decimal.Zero
	if c.Impuestos != nil {
		traslados = c.Impuestos.TotalImpuestosTrasladados
		retenciones = c.Impuestos.TotalImpuestosRetenidos
	}
	expected := c.SubTotal.Sub(c.Descuento).Add(traslados).Sub(retenciones).Round(montoDecimales)
	if !c.Total.Equal(expected) {
		return fmt.Errorf("cfdi: total %s no coincide con subtotal %s − descuento %s + traslados %s − retenciones %s = %s",
			c.Total, c.SubTotal, c.Descuento, traslados, retenciones, expected)
	}
	return nil
}
