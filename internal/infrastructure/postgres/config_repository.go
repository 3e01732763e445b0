package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/spirittours/erp-hub/internal/domain/entity"
	"github.com/spirittours/erp-hub/internal/domain/repository"
)

var _ repository.ERPConfigRepository = (*ERPConfigRepo)(nil)

// ERPConfigRepo implementa ERPConfigRepository sobre PostgreSQL.
type ERPConfigRepo struct {
	q Querier
}

// NewERPConfigRepository construye el adaptador. Pasar pool o tx (Querier).
func NewERPConfigRepository(q Querier) *ERPConfigRepo {
	return &ERPConfigRepo{q: q}
}

// GetBySucursal devuelve la configuración ERP activa de la sucursal con la
// sucursal denormalizada, o nil si no existe.
func (r *ERPConfigRepo) GetBySucursal(ctx context.Context, sucursalID string) (*entity.ConfiguracionERPSucursal, error) {
	const query = `
		SELECT c.id, c.sucursal_id, c.provider, c.environment,
		       c.client_id, c.client_secret, c.refresh_token, c.realm_id, c.api_key, c.base_url,
		       c.sync_customers, c.sync_invoices, c.sync_payments, c.sync_vendors,
		       c.sync_bills, c.sync_bill_payments, c.sync_credit_memos,
		       c.connect_timeout_sec, c.activo, c.last_connected_at, c.created_at, c.updated_at,
		       s.id, s.nombre, s.rfc, s.region, s.moneda
		FROM configuracion_erp_sucursal c
		JOIN sucursales s ON s.id = c.sucursal_id
		WHERE c.sucursal_id = $1 AND c.activo = true`
	var c entity.ConfiguracionERPSucursal
	var s entity.Sucursal
	err := r.q.QueryRow(ctx, query, sucursalID).Scan(
		&c.ID, &c.SucursalID, &c.Provider, &c.Enviro,
		&c.ClientID, &c.ClientSecret, &c.RefreshToken, &c.RealmID, &c.APIKey, &c.BaseURL,
		&c.SyncCustomers, &c.SyncInvoices, &c.SyncPayments, &c.SyncVendors,
		&c.SyncBills, &c.SyncBillPayments, &c.SyncCreditMemos,
		&c.ConnectTimeoutSec, &c.Activo, &c.LastConnectedAt, &c.CreatedAt, &c.UpdatedAt,
		&s.ID, &s.Nombre, &s.RFC, &s.Region, &s.Moneda,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get configuracion_erp_sucursal: %w", err)
	}
	c.Sucursal = &s
	return &c, nil
}

// MarkConnected registra la última conexión exitosa con el proveedor.
func (r *ERPConfigRepo) MarkConnected(ctx context.Context, configID string) error {
	const query = `
		UPDATE configuracion_erp_sucursal
		SET last_connected_at = now(), updated_at = now()
		WHERE id = $1`
	_, err := r.q.Exec(ctx, query, configID)
	if err != nil {
		return fmt.Errorf("update last_connected_at: %w", err)
	}
	return nil
}
