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

var _ repository.ReceivableRepository = (*ReceivableRepo)(nil)

// ReceivableRepo implementa ReceivableRepository sobre cuentas_por_cobrar y
// sus líneas.
type ReceivableRepo struct {
	q Querier
}

// NewReceivableRepository construye el adaptador. Pasar pool o tx (Querier).
func NewReceivableRepository(q Querier) *ReceivableRepo {
	return &ReceivableRepo{q: q}
}

const receivableColumns = `
	id, sucursal_id, cliente_id, folio, concepto, estado, moneda,
	subtotal, impuestos, total, saldo, fecha_emision, fecha_vencimiento,
	erp_synced, COALESCE(erp_entity_id, ''), erp_last_sync, created_at, updated_at`

func scanReceivable(row pgx.Row) (*entity.Receivable, error) {
	var rec entity.Receivable
	err := row.Scan(
		&rec.ID, &rec.SucursalID, &rec.CustomerID, &rec.Folio, &rec.Concepto, &rec.Estado, &rec.Moneda,
		&rec.Subtotal, &rec.Impuestos, &rec.Total, &rec.Saldo, &rec.FechaEmision, &rec.FechaVencimiento,
		&rec.ERPSynced, &rec.ERPEntityID, &rec.ERPLastSync, &rec.CreatedAt, &rec.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &rec, nil
}

// GetByID obtiene la cuenta por cobrar con sus líneas, o nil si no existe.
func (r *ReceivableRepo) GetByID(ctx context.Context, id string) (*entity.Receivable, error) {
	query := `SELECT ` + receivableColumns + ` FROM cuentas_por_cobrar WHERE id = $1`
	rec, err := scanReceivable(r.q.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get cuenta por cobrar: %w", err)
	}
	if err := r.loadLines(ctx, rec); err != nil {
		return nil, err
	}
	return rec, nil
}

func (r *ReceivableRepo) loadLines(ctx context.Context, rec *entity.Receivable) error {
	const query = `
		SELECT id, cuenta_por_cobrar_id, descripcion, clave_prod_serv,
		       cantidad, precio_unitario, importe, tasa_iva
		FROM lineas_cuenta_por_cobrar
		WHERE cuenta_por_cobrar_id = $1
		ORDER BY id`
	rows, err := r.q.Query(ctx, query, rec.ID)
	if err != nil {
		return fmt.Errorf("list líneas de CXC: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var l entity.ReceivableLine
		if err := rows.Scan(
			&l.ID, &l.ReceivableID, &l.Descripcion, &l.ClaveProdServ,
			&l.Cantidad, &l.PrecioUnitario, &l.Importe, &l.TasaIVA,
		); err != nil {
			return fmt.Errorf("scan línea de CXC: %w", err)
		}
		rec.Lineas = append(rec.Lineas, l)
	}
	return rows.Err()
}

// ListPendingERP devuelve CXC sin sincronizar en estado pendiente o parcial.
// Las líneas no se cargan aquí: el orquestador relee por ID en cada intento.
func (r *ReceivableRepo) ListPendingERP(ctx context.Context, sucursalID string, limit int) ([]*entity.Receivable, error) {
	query := `
		SELECT ` + receivableColumns + `
		FROM cuentas_por_cobrar
		WHERE sucursal_id = $1 AND erp_synced = false AND estado IN ($2, $3)
		ORDER BY fecha_emision
		LIMIT $4`
	rows, err := r.q.Query(ctx, query, sucursalID,
		entity.ReceivableStatusPendiente, entity.ReceivableStatusParcial, limit)
	if err != nil {
		return nil, fmt.Errorf("list CXC pendientes: %w", err)
	}
	defer rows.Close()

	var out []*entity.Receivable
	for rows.Next() {
		rec, err := scanReceivable(rows)
		if err != nil {
			return nil, fmt.Errorf("scan cuenta por cobrar: %w", err)
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}

// MarkERPSynced marca la CXC como sincronizada con su id externo.
func (r *ReceivableRepo) MarkERPSynced(ctx context.Context, id, erpEntityID string, at time.Time) error {
	const query = `
		UPDATE cuentas_por_cobrar
		SET erp_synced = true, erp_entity_id = $2, erp_last_sync = $3, updated_at = now()
		WHERE id = $1`
	_, err := r.q.Exec(ctx, query, id, erpEntityID, at)
	if err != nil {
		return fmt.Errorf("marcar CXC sincronizada: %w", err)
	}
	return nil
}
