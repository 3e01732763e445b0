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

var _ repository.PaymentRepository = (*PaymentRepo)(nil)

// PaymentRepo implementa PaymentRepository sobre pagos_recibidos.
type PaymentRepo struct {
	q Querier
}

// NewPaymentRepository construye el adaptador. Pasar pool o tx (Querier).
func NewPaymentRepository(q Querier) *PaymentRepo {
	return &PaymentRepo{q: q}
}

const paymentColumns = `
	id, sucursal_id, cliente_id, cuenta_por_cobrar_id, folio, estado, moneda,
	monto, forma_pago, COALESCE(referencia, ''), fecha_pago,
	erp_synced, COALESCE(erp_entity_id, ''), erp_last_sync, created_at, updated_at`

func scanPayment(row pgx.Row) (*entity.ReceivedPayment, error) {
	var p entity.ReceivedPayment
	err := row.Scan(
		&p.ID, &p.SucursalID, &p.CustomerID, &p.ReceivableID, &p.Folio, &p.Estado, &p.Moneda,
		&p.Monto, &p.FormaPago, &p.Referencia, &p.FechaPago,
		&p.ERPSynced, &p.ERPEntityID, &p.ERPLastSync, &p.CreatedAt, &p.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// GetByID obtiene un pago recibido por ID, o nil si no existe.
func (r *PaymentRepo) GetByID(ctx context.Context, id string) (*entity.ReceivedPayment, error) {
	query := `SELECT ` + paymentColumns + ` FROM pagos_recibidos WHERE id = $1`
	p, err := scanPayment(r.q.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get pago recibido: %w", err)
	}
	return p, nil
}

// ListPendingERP devuelve pagos aplicados sin sincronizar.
func (r *PaymentRepo) ListPendingERP(ctx context.Context, sucursalID string, limit int) ([]*entity.ReceivedPayment, error) {
	query := `
		SELECT ` + paymentColumns + `
		FROM pagos_recibidos
		WHERE sucursal_id = $1 AND erp_synced = false AND estado = $2
		ORDER BY fecha_pago
		LIMIT $3`
	rows, err := r.q.Query(ctx, query, sucursalID, entity.PaymentStatusAplicado, limit)
	if err != nil {
		return nil, fmt.Errorf("list pagos pendientes: %w", err)
	}
	defer rows.Close()

	var out []*entity.ReceivedPayment
	for rows.Next() {
		p, err := scanPayment(rows)
		if err != nil {
			return nil, fmt.Errorf("scan pago recibido: %w", err)
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

// MarkERPSynced marca el pago como sincronizado con su id externo.
func (r *PaymentRepo) MarkERPSynced(ctx context.Context, id, erpEntityID string, at time.Time) error {
	const query = `
		UPDATE pagos_recibidos
		SET erp_synced = true, erp_entity_id = $2, erp_last_sync = $3, updated_at = now()
		WHERE id = $1`
	_, err := r.q.Exec(ctx, query, id, erpEntityID, at)
	if err != nil {
		return fmt.Errorf("marcar pago sincronizado: %w", err)
	}
	return nil
}
