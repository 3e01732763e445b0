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

var _ repository.BillRepository = (*BillRepo)(nil)

// BillRepo implementa BillRepository sobre cuentas_por_pagar y pagos_proveedor.
type BillRepo struct {
	q Querier
}

// NewBillRepository construye el adaptador. Pasar pool o tx (Querier).
func NewBillRepository(q Querier) *BillRepo {
	return &BillRepo{q: q}
}

const billColumns = `
	id, sucursal_id, proveedor_id, folio, concepto, estado, moneda,
	subtotal, impuestos, total, saldo, fecha_emision, fecha_vencimiento,
	erp_synced, COALESCE(erp_entity_id, ''), erp_last_sync, created_at, updated_at`

func scanBill(row pgx.Row) (*entity.Bill, error) {
	var b entity.Bill
	err := row.Scan(
		&b.ID, &b.SucursalID, &b.VendorID, &b.Folio, &b.Concepto, &b.Estado, &b.Moneda,
		&b.Subtotal, &b.Impuestos, &b.Total, &b.Saldo, &b.FechaEmision, &b.FechaVencimiento,
		&b.ERPSynced, &b.ERPEntityID, &b.ERPLastSync, &b.CreatedAt, &b.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &b, nil
}

// GetByID obtiene la cuenta por pagar por ID, o nil si no existe.
func (r *BillRepo) GetByID(ctx context.Context, id string) (*entity.Bill, error) {
	query := `SELECT ` + billColumns + ` FROM cuentas_por_pagar WHERE id = $1`
	b, err := scanBill(r.q.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get cuenta por pagar: %w", err)
	}
	return b, nil
}

// GetBillPaymentByID obtiene un pago a proveedor por ID, o nil si no existe.
func (r *BillRepo) GetBillPaymentByID(ctx context.Context, id string) (*entity.BillPayment, error) {
	const query = `
		SELECT id, sucursal_id, proveedor_id, cuenta_por_pagar_id, folio, moneda,
		       monto, forma_pago, COALESCE(referencia, ''), fecha_pago,
		       erp_synced, COALESCE(erp_entity_id, ''), erp_last_sync, created_at, updated_at
		FROM pagos_proveedor WHERE id = $1`
	var p entity.BillPayment
	err := r.q.QueryRow(ctx, query, id).Scan(
		&p.ID, &p.SucursalID, &p.VendorID, &p.BillID, &p.Folio, &p.Moneda,
		&p.Monto, &p.FormaPago, &p.Referencia, &p.FechaPago,
		&p.ERPSynced, &p.ERPEntityID, &p.ERPLastSync, &p.CreatedAt, &p.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get pago a proveedor: %w", err)
	}
	return &p, nil
}

// ListPendingERP devuelve cuentas por pagar sin sincronizar en estado abierto.
func (r *BillRepo) ListPendingERP(ctx context.Context, sucursalID string, limit int) ([]*entity.Bill, error) {
	query := `
		SELECT ` + billColumns + `
		FROM cuentas_por_pagar
		WHERE sucursal_id = $1 AND erp_synced = false AND estado IN ($2, $3)
		ORDER BY fecha_emision
		LIMIT $4`
	rows, err := r.q.Query(ctx, query, sucursalID, entity.BillStatusPendiente, entity.BillStatusParcial, limit)
	if err != nil {
		return nil, fmt.Errorf("list CXP pendientes: %w", err)
	}
	defer rows.Close()

	var out []*entity.Bill
	for rows.Next() {
		b, err := scanBill(rows)
		if err != nil {
			return nil, fmt.Errorf("scan cuenta por pagar: %w", err)
		}
		out = append(out, b)
	}
	return out, rows.Err()
}

// MarkERPSynced marca la cuenta por pagar como sincronizada.
func (r *BillRepo) MarkERPSynced(ctx context.Context, id, erpEntityID string, at time.Time) error {
	const query = `
		UPDATE cuentas_por_pagar
		SET erp_synced = true, erp_entity_id = $2, erp_last_sync = $3, updated_at = now()
		WHERE id = $1`
	_, err := r.q.Exec(ctx, query, id, erpEntityID, at)
	if err != nil {
		return fmt.Errorf("marcar CXP sincronizada: %w", err)
	}
	return nil
}

// MarkBillPaymentERPSynced marca el pago a proveedor como sincronizado.
func (r *BillRepo) MarkBillPaymentERPSynced(ctx context.Context, id, erpEntityID string, at time.Time) error {
	const query = `
		UPDATE pagos_proveedor
		SET erp_synced = true, erp_entity_id = $2, erp_last_sync = $3, updated_at = now()
		WHERE id = $1`
	_, err := r.q.Exec(ctx, query, id, erpEntityID, at)
	if err != nil {
		return fmt.Errorf("marcar pago a proveedor sincronizado: %w", err)
	}
	return nil
}
