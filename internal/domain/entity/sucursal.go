package entity

import "time"

// Sucursal representa una sucursal de la plataforma: la unidad de tenencia
// para la configuración ERP.
type Sucursal struct {
	ID        string
	Nombre    string
	RFC       string // RFC del emisor para CFDI
	Region    string
	Moneda    string // código ISO de 3 letras, ej. MXN
	CreatedAt time.Time
	UpdatedAt time.Time
}

// ConfiguracionERPSucursal es la configuración ERP persistida por sucursal:
// proveedor, credenciales y qué tipos de entidad se sincronizan.
type ConfiguracionERPSucursal struct {
	ID         string
	SucursalID string
	Provider   string // "quickbooks" | "contpaqi"
	Enviro     string // "sandbox" | "production"

	// Credenciales por proveedor; los campos no aplicables quedan vacíos.
	ClientID     string
	ClientSecret string
	RefreshToken string
	RealmID      string // QuickBooks company id
	APIKey       string // CONTPAQi
	BaseURL      string // override opcional del endpoint

	// Flags por tipo de entidad.
	SyncCustomers    bool
	SyncInvoices     bool
	SyncPayments     bool
	SyncVendors      bool
	SyncBills        bool
	SyncBillPayments bool
	SyncCreditMemos  bool

	ConnectTimeoutSec int // timeout de conexión por proveedor
	Activo            bool
	LastConnectedAt   *time.Time
	CreatedAt         time.Time
	UpdatedAt         time.Time

	// Denormalizado del join con sucursales.
	Sucursal *Sucursal
}

// EntityEnabled indica si el tipo de entidad está habilitado para sincronizar.
func (c *ConfiguracionERPSucursal) EntityEnabled(entityType string) bool {
	switch entityType {
	case EntityCustomer:
		return c.SyncCustomers
	case EntityInvoice:
		return c.SyncInvoices
	case EntityPayment:
		return c.SyncPayments
	case EntityVendor:
		return c.SyncVendors
	case EntityBill:
		return c.SyncBills
	case EntityBillPayment:
		return c.SyncBillPayments
	case EntityCreditMemo:
		return c.SyncCreditMemos
	}
	return false
}
