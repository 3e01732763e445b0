package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Estados de un documento CFDI timbrado.
const (
	CFDIVigente            = "vigente"
	CFDICancelado          = "cancelado"
	CFDICancelacionProceso = "cancelacion_en_proceso"
)

// CFDIDocument es la fila durable de documentos_cfdi: un comprobante timbrado
// con su XML completo. El XML nunca se modifica después del timbrado; sólo el
// estado de cancelación cambia.
type CFDIDocument struct {
	ID                string
	SucursalID        string
	UUID              string
	TipoDeComprobante string
	Serie             string
	Folio             string
	EmisorRFC         string
	ReceptorRFC       string
	Total             decimal.Decimal
	Moneda            string
	XML               string // XML timbrado completo en texto plano
	QRURL             string
	Status            string
	MotivoCancelacion string
	Acuse             string // acuse de cancelación del SAT, si existe
	FechaTimbrado     time.Time
	CanceledAt        *time.Time
	CreatedAt         time.Time
}
