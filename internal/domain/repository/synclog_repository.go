package repository

import (
	"context"

	"github.com/spirittours/erp-hub/internal/domain/entity"
)

// SyncLogRepository puerto de persistencia para log_sincronizacion_erp
// (append-only: una fila por intento, cerrada exactamente una vez).
type SyncLogRepository interface {
	// Open inserta la fila en estado "processing" con el payload de salida.
	Open(ctx context.Context, e *entity.SyncLogEntry) error
	// CloseSuccess cierra la fila con el payload de respuesta y el id externo.
	CloseSuccess(ctx context.Context, id, responsePayload, erpEntityID string) error
	// CloseError cierra la fila con el mensaje de error.
	CloseError(ctx context.Context, id, errorMessage string) error
	// ListByEntity lista los intentos de una entidad, más reciente primero.
	ListByEntity(ctx context.Context, sucursalID, entityType, entityID string, limit int) ([]*entity.SyncLogEntry, error)
}
