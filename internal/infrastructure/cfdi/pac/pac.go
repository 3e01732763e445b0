package pac

import (
	"fmt"

	appcfdi "github.com/spirittours/erp-hub/internal/application/cfdi"
	"github.com/spirittours/erp-hub/pkg/config"
)

// NewClient construye el cliente PAC según la configuración.
// Para SW Sapien el token Bearer viaja en PACPassword.
func NewClient(cfg config.CFDIConfig) (appcfdi.PACClient, error) {
	switch cfg.PACProvider {
	case "finkok":
		return NewFinkokClient(cfg.PACUser, cfg.PACPassword, cfg.PACTestMode), nil
	case "swsapien":
		return NewSWSapienClient(cfg.PACPassword, cfg.PACTestMode), nil
	default:
		return nil, fmt.Errorf("proveedor PAC no soportado: %q", cfg.PACProvider)
	}
}
