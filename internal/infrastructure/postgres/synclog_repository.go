package postgres

import (
	"context"
	"fmt"

	"github.com/spirittours/erp-hub/internal/domain"
	"github.com/spirittours/erp-hub/internal/domain/entity"
	"github.com/spirittours/erp-hub/internal/domain/repository"
)

var _ repository.SyncLogRepository = (*SyncLogRepo)(nil)

// SyncLogRepo implementa SyncLogRepository sobre log_sincronizacion_erp.
// La tabla es append-only: las filas se abren en "processing" y se cierran
// exactamente una vez; nunca se borran ni se reescriben después.
type SyncLogRepo struct {
	q Querier
}

// NewSyncLogRepository construye el adaptador. Pasar pool o tx (Querier).
func NewSyncLogRepository(q Querier) *SyncLogRepo {
	return &SyncLogRepo{q: q}
}

// Open inserta la fila del intento en estado "processing".
func (r *SyncLogRepo) Open(ctx context.Context, e *entity.SyncLogEntry) error {
	const query = `
		INSERT INTO log_sincronizacion_erp
			(id, sucursal_id, config_id, provider, entity_type, entity_id, folio,
			 direction, status, attempt, request_payload, triggered_by, triggered_by_user, started_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)`
	_, err := r.q.Exec(ctx, query,
		e.ID, e.SucursalID, e.ConfigID, e.Provider, e.EntityType, e.EntityID, e.Folio,
		e.Direction, e.Status, e.Attempt, e.RequestPayload, e.TriggeredBy, e.TriggeredByUser, e.StartedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicate
		}
		return fmt.Errorf("insert log_sincronizacion: %w", err)
	}
	return nil
}

// CloseSuccess cierra la fila en éxito. El WHERE sobre status garantiza que
// una fila cerrada no se reescriba.
func (r *SyncLogRepo) CloseSuccess(ctx context.Context, id, responsePayload, erpEntityID string) error {
	const query = `
		UPDATE log_sincronizacion_erp
		SET status = $2, response_payload = $3, erp_entity_id = $4, finished_at = now()
		WHERE id = $1 AND status = $5`
	_, err := r.q.Exec(ctx, query, id, entity.SyncStatusSuccess, responsePayload, erpEntityID, entity.SyncStatusProcessing)
	if err != nil {
		return fmt.Errorf("cerrar log en éxito: %w", err)
	}
	return nil
}

// CloseError cierra la fila en error.
func (r *SyncLogRepo) CloseError(ctx context.Context, id, errorMessage string) error {
	const query = `
		UPDATE log_sincronizacion_erp
		SET status = $2, error_message = $3, finished_at = now()
		WHERE id = $1 AND status = $4`
	_, err := r.q.Exec(ctx, query, id, entity.SyncStatusError, errorMessage, entity.SyncStatusProcessing)
	if err != nil {
		return fmt.Errorf("cerrar log en error: %w", err)
	}
	return nil
}

// ListByEntity lista los intentos de una entidad, más reciente primero.
func (r *SyncLogRepo) ListByEntity(ctx context.Context, sucursalID, entityType, entityID string, limit int) ([]*entity.SyncLogEntry, error) {
	const query = `
		SELECT id, sucursal_id, config_id, provider, entity_type, entity_id, folio,
		       direction, status, attempt,
		       COALESCE(request_payload, ''), COALESCE(response_payload, ''),
		       COALESCE(error_message, ''), COALESCE(erp_entity_id, ''),
		       triggered_by, COALESCE(triggered_by_user, ''), started_at, finished_at
		FROM log_sincronizacion_erp
		WHERE sucursal_id = $1 AND entity_type = $2 AND entity_id = $3
		ORDER BY started_at DESC
		LIMIT $4`
	rows, err := r.q.Query(ctx, query, sucursalID, entityType, entityID, limit)
	if err != nil {
		return nil, fmt.Errorf("list log_sincronizacion: %w", err)
	}
	defer rows.Close()

	var out []*entity.SyncLogEntry
	for rows.Next() {
		var e entity.SyncLogEntry
		if err := rows.Scan(
			&e.ID, &e.SucursalID, &e.ConfigID, &e.Provider, &e.EntityType, &e.EntityID, &e.Folio,
			&e.Direction, &e.Status, &e.Attempt,
			&e.RequestPayload, &e.ResponsePayload, &e.ErrorMessage, &e.ERPEntityID,
			&e.TriggeredBy, &e.TriggeredByUser, &e.StartedAt, &e.FinishedAt,
		); err != nil {
			return nil, fmt.Errorf("scan log_sincronizacion: %w", err)
		}
		out = append(out, &e)
	}
	return out, rows.Err()
}
