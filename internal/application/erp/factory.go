package erp

import (
	"sort"
	"sync"

	"github.com/spirittours/erp-hub/internal/domain"
	"github.com/spirittours/erp-hub/internal/domain/entity"
)

// Builder construye un adaptador a partir de la configuración ERP de una
// sucursal. Cada proveedor registra el suyo al arrancar.
type Builder func(cfg *entity.ConfiguracionERPSucursal) (AccountingAdapter, error)

// Factory resuelve adaptadores por proveedor. El registro es explícito (se
// hace en el wiring de main), sin estado global.
type Factory struct {
	mu       sync.RWMutex
	builders map[string]Builder
}

// NewFactory construye una fábrica vacía.
func NewFactory() *Factory {
	return &Factory{builders: make(map[string]Builder)}
}

// Register registra el constructor de un proveedor. Sobrescribe si ya existía.
func (f *Factory) Register(provider string, b Builder) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.builders[provider] = b
}

// Providers regresa los proveedores registrados, ordenados.
func (f *Factory) Providers() []string {
	f.mu.RLock()
	defer f.mu.RUnlock()
	out := make([]string, 0, len(f.builders))
	for p := range f.builders {
		out = append(out, p)
	}
	sort.Strings(out)
	return out
}

// ForConfig construye el adaptador del proveedor configurado en la sucursal.
// Un proveedor desconocido es un error de configuración, no de operación.
func (f *Factory) ForConfig(cfg *entity.ConfiguracionERPSucursal) (AccountingAdapter, error) {
	if cfg == nil {
		return nil, &domain.ConfigurationError{Reason: "la sucursal no tiene configuración ERP"}
	}
	if !cfg.Activo {
		return nil, &domain.ConfigurationError{Reason: "la configuración ERP de la sucursal está inactiva"}
	}
	f.mu.RLock()
	b, ok := f.builders[cfg.Provider]
	f.mu.RUnlock()
	if !ok {
		return nil, &domain.ConfigurationError{Reason: "proveedor ERP desconocido: " + cfg.Provider}
	}
	return b(cfg)
}
