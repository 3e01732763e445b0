package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/spirittours/erp-hub/internal/domain/entity"
	"github.com/spirittours/erp-hub/internal/domain/repository"
)

var _ repository.VendorRepository = (*VendorRepo)(nil)

// VendorRepo implementa VendorRepository sobre proveedores.
type VendorRepo struct {
	q Querier
}

// NewVendorRepository construye el adaptador. Pasar pool o tx (Querier).
func NewVendorRepository(q Querier) *VendorRepo {
	return &VendorRepo{q: q}
}

const vendorColumns = `
	id, sucursal_id, nombre, rfc, email, telefono, COALESCE(categoria, ''),
	erp_synced, COALESCE(erp_entity_id, ''), erp_last_sync, created_at, updated_at`

func scanVendor(row pgx.Row) (*entity.Vendor, error) {
	var v entity.Vendor
	err := row.Scan(
		&v.ID, &v.SucursalID, &v.Nombre, &v.RFC, &v.Email, &v.Telefono, &v.Categoria,
		&v.ERPSynced, &v.ERPEntityID, &v.ERPLastSync, &v.CreatedAt, &v.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &v, nil
}

// GetByID obtiene un proveedor por ID, o nil si no existe.
func (r *VendorRepo) GetByID(ctx context.Context, id string) (*entity.Vendor, error) {
	query := `SELECT ` + vendorColumns + ` FROM proveedores WHERE id = $1`
	v, err := scanVendor(r.q.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get proveedor: %w", err)
	}
	return v, nil
}

// ListPendingERP devuelve proveedores de la sucursal sin fila de mapeo para el
// proveedor ERP.
func (r *VendorRepo) ListPendingERP(ctx context.Context, sucursalID, provider string, limit int) ([]*entity.Vendor, error) {
	query := `
		SELECT ` + vendorColumns + `
		FROM proveedores p
		WHERE p.sucursal_id = $1
		  AND NOT EXISTS (
			SELECT 1 FROM mapeo_erp_entidades m
			WHERE m.sucursal_id = p.sucursal_id
			  AND m.erp_provider = $2
			  AND m.spirit_entity_type = 'vendor'
			  AND m.spirit_entity_id = p.id
		  )
		ORDER BY p.created_at
		LIMIT $3`
	rows, err := r.q.Query(ctx, query, sucursalID, provider, limit)
	if err != nil {
		return nil, fmt.Errorf("list proveedores pendientes: %w", err)
	}
	defer rows.Close()

	var out []*entity.Vendor
	for rows.Next() {
		v, err := scanVendor(rows)
		if err != nil {
			return nil, fmt.Errorf("scan proveedor: %w", err)
		}
		out = append(out, v)
	}
	return out, rows.Err()
}

// MarkERPSynced marca el proveedor como sincronizado con su id externo.
func (r *VendorRepo) MarkERPSynced(ctx context.Context, id, erpEntityID string, at time.Time) error {
	const query = `
		UPDATE proveedores
		SET erp_synced = true, erp_entity_id = $2, erp_last_sync = $3, updated_at = now()
		WHERE id = $1`
	_, err := r.q.Exec(ctx, query, id, erpEntityID, at)
	if err != nil {
		return fmt.Errorf("marcar proveedor sincronizado: %w", err)
	}
	return nil
}
