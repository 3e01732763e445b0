package repository

import (
	"context"
	"time"

	"github.com/spirittours/erp-hub/internal/domain/entity"
)

// Los repositorios de registros nativos exponen lo que el orquestador
// necesita: lectura por id, listado de pendientes de sincronizar y la única
// escritura de vuelta a tablas de plataforma (marcar como sincronizado).

// CustomerRepository puerto de persistencia para clientes.
type CustomerRepository interface {
	GetByID(ctx context.Context, id string) (*entity.Customer, error)
	// ListPendingERP devuelve clientes de la sucursal sin fila de mapeo para el proveedor.
	ListPendingERP(ctx context.Context, sucursalID, provider string, limit int) ([]*entity.Customer, error)
	MarkERPSynced(ctx context.Context, id, erpEntityID string, at time.Time) error
}

// ReceivableRepository puerto de persistencia para cuentas por cobrar.
type ReceivableRepository interface {
	GetByID(ctx context.Context, id string) (*entity.Receivable, error)
	// ListPendingERP devuelve CXC con erp_synced = false en estado pendiente o parcial.
	ListPendingERP(ctx context.Context, sucursalID string, limit int) ([]*entity.Receivable, error)
	MarkERPSynced(ctx context.Context, id, erpEntityID string, at time.Time) error
}

// PaymentRepository puerto de persistencia para pagos recibidos.
type PaymentRepository interface {
	GetByID(ctx context.Context, id string) (*entity.ReceivedPayment, error)
	// ListPendingERP devuelve pagos con erp_synced = false en estado aplicado.
	ListPendingERP(ctx context.Context, sucursalID string, limit int) ([]*entity.ReceivedPayment, error)
	MarkERPSynced(ctx context.Context, id, erpEntityID string, at time.Time) error
}

// VendorRepository puerto de persistencia para proveedores.
type VendorRepository interface {
	GetByID(ctx context.Context, id string) (*entity.Vendor, error)
	ListPendingERP(ctx context.Context, sucursalID, provider string, limit int) ([]*entity.Vendor, error)
	MarkERPSynced(ctx context.Context, id, erpEntityID string, at time.Time) error
}

// BillRepository puerto de persistencia para cuentas por pagar y sus pagos.
type BillRepository interface {
	GetByID(ctx context.Context, id string) (*entity.Bill, error)
	GetBillPaymentByID(ctx context.Context, id string) (*entity.BillPayment, error)
	ListPendingERP(ctx context.Context, sucursalID string, limit int) ([]*entity.Bill, error)
	MarkERPSynced(ctx context.Context, id, erpEntityID string, at time.Time) error
	MarkBillPaymentERPSynced(ctx context.Context, id, erpEntityID string, at time.Time) error
}
