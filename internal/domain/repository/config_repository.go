// Package repository define los puertos de persistencia del hub.
package repository

import (
	"context"

	"github.com/spirittours/erp-hub/internal/domain/entity"
)

// ERPConfigRepository puerto de lectura de configuracion_erp_sucursal
// (con join a sucursales para proveedor/región/moneda).
type ERPConfigRepository interface {
	// GetBySucursal devuelve la configuración activa de la sucursal, o nil si no hay.
	GetBySucursal(ctx context.Context, sucursalID string) (*entity.ConfiguracionERPSucursal, error)
	// MarkConnected registra la última conexión exitosa con el proveedor.
	MarkConnected(ctx context.Context, configID string) error
}
