package cfdi

import (
	"context"
	"time"

	cfdidom "github.com/spirittours/erp-hub/internal/domain/cfdi"
)

// XMLBuilder serializa un comprobante al XML CFDI 4.0 (sin sello).
type XMLBuilder interface {
	Build(c *cfdidom.Comprobante) ([]byte, error)
}

// SignedDocument es el XML con el sello digital del emisor ya inyectado.
type SignedDocument struct {
	XML           []byte
	Sello         string // base64 de la firma RSA-SHA256 de la cadena original
	NoCertificado string // serial del CSD en 20 dígitos
	Certificado   string // certificado CSD en base64
	CadenaOriginal string
}

// Signer produce la cadena original del comprobante y lo firma con el CSD
// del emisor.
type Signer interface {
	Sign(c *cfdidom.Comprobante, xml []byte) (*SignedDocument, error)
}

// StampResult es la respuesta exitosa del PAC al timbrar.
type StampResult struct {
	UUID             string
	FechaTimbrado    time.Time
	SelloSAT         string
	NoCertificadoSAT string
	CadenaOriginal   string
	XML              []byte // XML timbrado completo, con el TimbreFiscalDigital
}

// CancelRequest es la solicitud de cancelación ante el PAC.
type CancelRequest struct {
	UUID             string
	EmisorRFC        string
	Motivo           string // 01..04 del catálogo del SAT
	FolioSustitucion string // UUID del CFDI que sustituye; obligatorio con motivo 01
	Total            string
}

// CancelResult es la respuesta del PAC a una cancelación.
type CancelResult struct {
	UUID       string
	Status     string // "cancelado" | "en_proceso" | "rechazado"
	StatusCode string // código crudo del PAC
	Acuse      []byte // acuse XML del SAT, si el PAC lo regresa
	CanceledAt time.Time
}

// PACClient es el proveedor autorizado de certificación: timbra y cancela.
type PACClient interface {
	Stamp(ctx context.Context, signedXML []byte) (*StampResult, error)
	Cancel(ctx context.Context, req CancelRequest) (*CancelResult, error)
}

// XMLParser reconstruye el comprobante a partir del XML timbrado archivado.
// Es la operación inversa de XMLBuilder más el TimbreFiscalDigital.
type XMLParser interface {
	Parse(xml []byte) (*cfdidom.Comprobante, error)
}

// PDFRenderer produce la representación impresa de un comprobante timbrado.
type PDFRenderer interface {
	RenderComprobante(ctx context.Context, c *cfdidom.Comprobante, qrURL string) ([]byte, error)
}
