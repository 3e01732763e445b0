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

var _ repository.CustomerRepository = (*CustomerRepo)(nil)

// CustomerRepo implementa CustomerRepository sobre la tabla clientes.
type CustomerRepo struct {
	q Querier
}

// NewCustomerRepository construye el adaptador. Pasar pool o tx (Querier).
func NewCustomerRepository(q Querier) *CustomerRepo {
	return &CustomerRepo{q: q}
}

const customerColumns = `
	id, sucursal_id, nombre, rfc, email, telefono, direccion, codigo_postal, regimen_fiscal,
	erp_synced, COALESCE(erp_entity_id, ''), erp_last_sync, created_at, updated_at`

func scanCustomer(row pgx.Row) (*entity.Customer, error) {
	var c entity.Customer
	err := row.Scan(
		&c.ID, &c.SucursalID, &c.Nombre, &c.RFC, &c.Email, &c.Telefono, &c.Direccion, &c.CP, &c.Regimen,
		&c.ERPSynced, &c.ERPEntityID, &c.ERPLastSync, &c.CreatedAt, &c.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &c, nil
}

// GetByID obtiene un cliente por ID, o nil si no existe.
func (r *CustomerRepo) GetByID(ctx context.Context, id string) (*entity.Customer, error) {
	query := `SELECT ` + customerColumns + ` FROM clientes WHERE id = $1`
	c, err := scanCustomer(r.q.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get cliente: %w", err)
	}
	return c, nil
}

// ListPendingERP devuelve clientes de la sucursal sin fila de mapeo para el
// proveedor: los que nunca se han sincronizado.
func (r *CustomerRepo) ListPendingERP(ctx context.Context, sucursalID, provider string, limit int) ([]*entity.Customer, error) {
	query := `
		SELECT ` + customerColumns + `
		FROM clientes c
		WHERE c.sucursal_id = $1
		  AND NOT EXISTS (
			SELECT 1 FROM mapeo_erp_entidades m
			WHERE m.sucursal_id = c.sucursal_id
			  AND m.erp_provider = $2
			  AND m.spirit_entity_type = 'customer'
			  AND m.spirit_entity_id = c.id
		  )
		ORDER BY c.created_at
		LIMIT $3`
	rows, err := r.q.Query(ctx, query, sucursalID, provider, limit)
	if err != nil {
		return nil, fmt.Errorf("list clientes pendientes: %w", err)
	}
	defer rows.Close()

	var out []*entity.Customer
	for rows.Next() {
		c, err := scanCustomer(rows)
		if err != nil {
			return nil, fmt.Errorf("scan cliente: %w", err)
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

// MarkERPSynced es la única escritura del hub sobre la tabla de plataforma.
func (r *CustomerRepo) MarkERPSynced(ctx context.Context, id, erpEntityID string, at time.Time) error {
	const query = `
		UPDATE clientes
		SET erp_synced = true, erp_entity_id = $2, erp_last_sync = $3, updated_at = now()
		WHERE id = $1`
	_, err := r.q.Exec(ctx, query, id, erpEntityID, at)
	if err != nil {
		return fmt.Errorf("marcar cliente sincronizado: %w", err)
	}
	return nil
}
