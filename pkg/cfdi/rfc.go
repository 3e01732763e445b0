package cfdi

import (
	"fmt"
	"regexp"
	"strings"
)

// RFC genéricos reconocidos por el SAT: operaciones con público en general y
// con residentes en el extranjero. Pasan la validación sin más comprobaciones.
const (
	RFCGenericoNacional   = "XAXX010101000"
	RFCGenericoExtranjero = "XEXX010101000"
)

// Patrones del RFC según el Anexo 20:
//   - Persona moral: 12 caracteres (3 letras + fecha AAMMDD + homoclave).
//   - Persona física: 13 caracteres (4 letras + fecha AAMMDD + homoclave).
var (
	rfcPersonaMoral  = regexp.MustCompile(`^[A-ZÑ&]{3}[0-9]{6}[A-Z0-9]{3}$`)
	rfcPersonaFisica = regexp.MustCompile(`^[A-ZÑ&]{4}[0-9]{6}[A-Z0-9]{3}$`)
)

// NormalizeRFC limpia espacios y pasa a mayúsculas el RFC tal como lo exige el SAT.
func NormalizeRFC(rfc string) string {
	return strings.ToUpper(strings.TrimSpace(rfc))
}

// IsGenericRFC indica si el RFC es uno de los genéricos del SAT.
func IsGenericRFC(rfc string) bool {
	n := NormalizeRFC(rfc)
	return n == RFCGenericoNacional || n == RFCGenericoExtranjero
}

// ValidateRFC valida el formato del RFC (persona física de 13 caracteres,
// persona moral de 12, o genérico). No verifica la homoclave contra el padrón.
func ValidateRFC(rfc string) error {
	n := NormalizeRFC(rfc)
	if n == "" {
		return fmt.Errorf("cfdi: RFC vacío")
	}
	if IsGenericRFC(n) {
		return nil
	}
	switch len(n) {
	case 12:
		if !rfcPersonaMoral.MatchString(n) {
			return fmt.Errorf("cfdi: RFC de persona moral con formato inválido: %q", rfc)
		}
	case 13:
		if !rfcPersonaFisica.MatchString(n) {
			return fmt.Errorf("cfdi: RFC de persona física con formato inválido: %q", rfc)
		}
	default:
		return fmt.Errorf("cfdi: RFC debe tener 12 o 13 caracteres, tiene %d: %q", len(n), rfc)
	}
	return nil
}

// IsPersonaMoral indica si el RFC corresponde a una persona moral (12 caracteres).
func IsPersonaMoral(rfc string) bool {
	return rfcPersonaMoral.MatchString(NormalizeRFC(rfc))
}
