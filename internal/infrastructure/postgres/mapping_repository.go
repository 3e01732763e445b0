package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/spirittours/erp-hub/internal/domain/entity"
	"github.com/spirittours/erp-hub/internal/domain/repository"
)

var _ repository.MappingRepository = (*MappingRepo)(nil)

// MappingRepo implementa MappingRepository sobre mapeo_erp_entidades.
type MappingRepo struct {
	q Querier
}

// NewMappingRepository construye el adaptador. Pasar pool o tx (Querier).
func NewMappingRepository(q Querier) *MappingRepo {
	return &MappingRepo{q: q}
}

const mappingColumns = `
	id, sucursal_id, erp_provider, spirit_entity_type, spirit_entity_id, spirit_folio,
	erp_entity_type, erp_entity_id, erp_entity_number,
	last_synced_at, last_sync_direction, sync_version, created_at`

func scanMapping(row pgx.Row) (*entity.EntityMapping, error) {
	var m entity.EntityMapping
	err := row.Scan(
		&m.ID, &m.SucursalID, &m.ERPProvider, &m.SpiritEntityType, &m.SpiritEntityID, &m.SpiritFolio,
		&m.ERPEntityType, &m.ERPEntityID, &m.ERPEntityNumber,
		&m.LastSyncedAt, &m.LastSyncDirection, &m.SyncVersion, &m.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &m, nil
}

// Get devuelve el mapeo para la llave natural, o nil si no existe.
func (r *MappingRepo) Get(ctx context.Context, key entity.MappingKey) (*entity.EntityMapping, error) {
	query := `
		SELECT ` + mappingColumns + `
		FROM mapeo_erp_entidades
		WHERE sucursal_id = $1 AND erp_provider = $2 AND spirit_entity_type = $3 AND spirit_entity_id = $4`
	m, err := scanMapping(r.q.QueryRow(ctx, query, key.SucursalID, key.Provider, key.EntityType, key.EntityID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get mapeo: %w", err)
	}
	return m, nil
}

// Upsert inserta el mapeo o, si la llave natural ya existe, actualiza los
// datos externos e incrementa sync_version. El RETURNING deja el registro con
// el id y la versión reales de la fila.
func (r *MappingRepo) Upsert(ctx context.Context, m *entity.EntityMapping) error {
	const query = `
		INSERT INTO mapeo_erp_entidades
			(id, sucursal_id, erp_provider, spirit_entity_type, spirit_entity_id, spirit_folio,
			 erp_entity_type, erp_entity_id, erp_entity_number,
			 last_synced_at, last_sync_direction, sync_version, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, 1, now())
		ON CONFLICT (sucursal_id, erp_provider, spirit_entity_type, spirit_entity_id)
		DO UPDATE SET
			spirit_folio        = EXCLUDED.spirit_folio,
			erp_entity_type     = EXCLUDED.erp_entity_type,
			erp_entity_id       = EXCLUDED.erp_entity_id,
			erp_entity_number   = EXCLUDED.erp_entity_number,
			last_synced_at      = EXCLUDED.last_synced_at,
			last_sync_direction = EXCLUDED.last_sync_direction,
			sync_version        = mapeo_erp_entidades.sync_version + 1
		RETURNING id, sync_version`
	err := r.q.QueryRow(ctx, query,
		m.ID, m.SucursalID, m.ERPProvider, m.SpiritEntityType, m.SpiritEntityID, m.SpiritFolio,
		m.ERPEntityType, m.ERPEntityID, m.ERPEntityNumber,
		m.LastSyncedAt, m.LastSyncDirection,
	).Scan(&m.ID, &m.SyncVersion)
	if err != nil {
		return fmt.Errorf("upsert mapeo: %w", err)
	}
	return nil
}

// ListBySucursal lista los mapeos de la sucursal, más reciente primero.
// entityType vacío lista todos los tipos.
func (r *MappingRepo) ListBySucursal(ctx context.Context, sucursalID, entityType string, limit, offset int) ([]*entity.EntityMapping, error) {
	query := `
		SELECT ` + mappingColumns + `
		FROM mapeo_erp_entidades
		WHERE sucursal_id = $1 AND ($2 = '' OR spirit_entity_type = $2)
		ORDER BY last_synced_at DESC
		LIMIT $3 OFFSET $4`
	rows, err := r.q.Query(ctx, query, sucursalID, entityType, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("list mapeos: %w", err)
	}
	defer rows.Close()

	var out []*entity.EntityMapping
	for rows.Next() {
		m, err := scanMapping(rows)
		if err != nil {
			return nil, fmt.Errorf("scan mapeo: %w", err)
		}
		out = append(out, m)
	}
	return out, rows.Err()
}
