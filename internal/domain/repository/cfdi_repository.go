package repository

import (
	"context"
	"time"

	"github.com/spirittours/erp-hub/internal/domain/entity"
)

// CFDIDocumentRepository puerto de persistencia para documentos_cfdi: el
// archivo fiscal de comprobantes timbrados.
type CFDIDocumentRepository interface {
	// Save inserta el documento timbrado; el UUID es único.
	Save(ctx context.Context, d *entity.CFDIDocument) error
	// GetByUUID regresa el documento o nil si no existe.
	GetByUUID(ctx context.Context, uuid string) (*entity.CFDIDocument, error)
	// MarkCanceled actualiza el estado de cancelación del documento.
	MarkCanceled(ctx context.Context, uuid, status, motivo, acuse string, at time.Time) error
	// ListBySucursal lista documentos de la sucursal, más reciente primero.
	ListBySucursal(ctx context.Context, sucursalID string, limit, offset int) ([]*entity.CFDIDocument, error)
}
