package cfdi

import (
	"fmt"

	"github.com/spirittours/erp-hub/internal/domain"
	pkgcfdi "github.com/spirittours/erp-hub/pkg/cfdi"
)

// Validate valida el comprobante antes de calcular totales o construir XML.
// Cualquier violación regresa un *domain.ValidationError que nombra el campo
// ofensor; no se produce documento parcial.
func Validate(c *Comprobante) error {
	if c == nil {
		return &domain.ValidationError{Field: "comprobante", Reason: "nulo"}
	}
	if c.Emisor.RFC == "" {
		return &domain.ValidationError{Field: "emisor.rfc", Reason: "requerido"}
	}
	if err := pkgcfdi.ValidateRFC(c.Emisor.RFC); err != nil {
		return &domain.ValidationError{Field: "emisor.rfc", Reason: err.Error()}
	}
	if c.Emisor.Nombre == "" {
		return &domain.ValidationError{Field: "emisor.nombre", Reason: "requerido"}
	}
	if c.Emisor.RegimenFiscal == "" {
		return &domain.ValidationError{Field: "emisor.regimenFiscal", Reason: "requerido"}
	}
	if c.Receptor.RFC == "" {
		return &domain.ValidationError{Field: "receptor.rfc", Reason: "requerido"}
	}
	if err := pkgcfdi.ValidateRFC(c.Receptor.RFC); err != nil {
		return &domain.ValidationError{Field: "receptor.rfc", Reason: err.Error()}
	}
	if c.Receptor.Nombre == "" {
		return &domain.ValidationError{Field: "receptor.nombre", Reason: "requerido"}
	}
	if c.TipoDeComprobante == "" {
		return &domain.ValidationError{Field: "tipoDeComprobante", Reason: "requerido"}
	}
	if !pkgcfdi.ValidTipoDeComprobante[c.TipoDeComprobante] {
		return &domain.ValidationError{Field: "tipoDeComprobante", Reason: "código desconocido: " + c.TipoDeComprobante}
	}
	if len(c.Conceptos) == 0 {
		return &domain.ValidationError{Field: "conceptos", Reason: "debe haber al menos un concepto"}
	}
	for i, con := range c.Conceptos {
		if con.Descripcion == "" {
			return &domain.ValidationError{Field: "conceptos.descripcion", Reason: conceptoField(i, "requerida")}
		}
		if !con.Cantidad.IsPositive() {
			return &domain.ValidationError{Field: "conceptos.cantidad", Reason: conceptoField(i, "debe ser positiva")}
		}
		if con.ValorUnitario.IsNegative() {
			return &domain.ValidationError{Field: "conceptos.valorUnitario", Reason: conceptoField(i, "no puede ser negativo")}
		}
		for _, t := range append(append([]ImpuestoConcepto{}, con.Traslados...), con.Retenciones...) {
			if !pkgcfdi.ValidImpuestos[t.Impuesto] {
				return &domain.ValidationError{Field: "conceptos.impuesto", Reason: conceptoField(i, "código de impuesto desconocido: "+t.Impuesto)}
			}
		}
	}
	// El complemento de pago sólo existe en tipo "P", y viceversa.
	if c.TipoDeComprobante == pkgcfdi.TipoPago {
		if c.ComplementoPago == nil || len(c.ComplementoPago.Pagos) == 0 {
			return &domain.ValidationError{Field: "complementoPago", Reason: "requerido en comprobantes tipo P"}
		}
		for _, p := range c.ComplementoPago.Pagos {
			if len(p.DoctosRelacionados) == 0 {
				return &domain.ValidationError{Field: "complementoPago.doctoRelacionado", Reason: "cada pago debe listar al menos un documento relacionado"}
			}
		}
	} else if c.ComplementoPago != nil {
		return &domain.ValidationError{Field: "complementoPago", Reason: "sólo válido en comprobantes tipo P"}
	}
	return nil
}

func conceptoField(i int, reason string) string {
	return fmt.Sprintf("concepto %d: %s", i+1, reason)
}
