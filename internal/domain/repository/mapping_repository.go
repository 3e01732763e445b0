package repository

import (
	"context"

	"github.com/spirittours/erp-hub/internal/domain/entity"
)

// MappingRepository puerto de persistencia para mapeo_erp_entidades.
type MappingRepository interface {
	// Get devuelve el mapeo activo para la llave natural, o nil si no existe.
	Get(ctx context.Context, key entity.MappingKey) (*entity.EntityMapping, error)
	// Upsert inserta el mapeo o, si la llave ya existe, actualiza id/número
	// externos y marca de tiempo e incrementa sync_version. Garantía de
	// idempotencia del orquestador.
	Upsert(ctx context.Context, m *entity.EntityMapping) error
	// ListBySucursal lista los mapeos de la sucursal por tipo (tipo vacío = todos).
	ListBySucursal(ctx context.Context, sucursalID, entityType string, limit, offset int) ([]*entity.EntityMapping, error)
}
