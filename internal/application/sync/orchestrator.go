// Package sync implementa el orquestador de sincronización contable: toma
// registros nativos de la plataforma, los convierte al modelo unificado y los
// empuja al ERP de la sucursal a través del adaptador configurado, dejando
// rastro de cada intento en el log append-only.
package sync

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/spirittours/erp-hub/internal/application/erp"
	"github.com/spirittours/erp-hub/internal/domain"
	"github.com/spirittours/erp-hub/internal/domain/entity"
	"github.com/spirittours/erp-hub/internal/domain/repository"
	"github.com/spirittours/erp-hub/internal/domain/unified"
	"github.com/spirittours/erp-hub/pkg/config"
	"github.com/spirittours/erp-hub/pkg/logger"
)

// Outcome es el resultado de sincronizar una entidad, tras agotar reintentos.
type Outcome struct {
	EntityType      string `json:"entity_type"`
	EntityID        string `json:"entity_id"`
	Folio           string `json:"folio,omitempty"`
	ERPEntityID     string `json:"erp_entity_id,omitempty"`
	ERPEntityNumber string `json:"erp_entity_number,omitempty"`
	Attempts        int    `json:"attempts"`
	SyncVersion     int    `json:"sync_version,omitempty"`
}

// BatchOutcome resume una corrida de pendientes de una sucursal.
type BatchOutcome struct {
	SucursalID string   `json:"sucursal_id"`
	Processed  int      `json:"processed"`
	Succeeded  int      `json:"succeeded"`
	Failed     int      `json:"failed"`
	Errors     []string `json:"errors,omitempty"`
	StartedAt  time.Time `json:"started_at"`
	FinishedAt time.Time `json:"finished_at"`
}

// Orchestrator coordina el ciclo completo por entidad:
//
//	config → adaptador → registro nativo → dependencias → log → adaptador →
//	mapeo (upsert) → write-back → log cerrado
//
// Los reintentos re-ejecutan el ciclo completo desde el registro nativo, con
// backoff exponencial delay = base × multiplicador^(intento−1). Cada intento
// abre su propia fila de log. La espera de backoff ocurre fuera del candado
// por llave.
type Orchestrator struct {
	configRepo     repository.ERPConfigRepository
	mappingRepo    repository.MappingRepository
	logRepo        repository.SyncLogRepository
	customerRepo   repository.CustomerRepository
	receivableRepo repository.ReceivableRepository
	paymentRepo    repository.PaymentRepository
	vendorRepo     repository.VendorRepository
	billRepo       repository.BillRepository
	factory        *erp.Factory
	cfg            config.SyncConfig
	log            *logger.Logger

	keys  *keyedMutex
	stats *stats

	// sleep se inyecta en pruebas para no esperar el backoff real.
	sleep func(time.Duration)
}

// NewOrchestrator construye el orquestador con todas sus dependencias.
func NewOrchestrator(
	configRepo repository.ERPConfigRepository,
	mappingRepo repository.MappingRepository,
	logRepo repository.SyncLogRepository,
	customerRepo repository.CustomerRepository,
	receivableRepo repository.ReceivableRepository,
	paymentRepo repository.PaymentRepository,
	vendorRepo repository.VendorRepository,
	billRepo repository.BillRepository,
	factory *erp.Factory,
	cfg config.SyncConfig,
	log *logger.Logger,
) *Orchestrator {
	return &Orchestrator{
		configRepo:     configRepo,
		mappingRepo:    mappingRepo,
		logRepo:        logRepo,
		customerRepo:   customerRepo,
		receivableRepo: receivableRepo,
		paymentRepo:    paymentRepo,
		vendorRepo:     vendorRepo,
		billRepo:       billRepo,
		factory:        factory,
		cfg:            cfg,
		log:            log,
		keys:           newKeyedMutex(),
		stats:          &stats{},
		sleep:          time.Sleep,
	}
}

// Stats regresa la foto actual de contadores del orquestador.
func (o *Orchestrator) Stats() StatsSnapshot {
	return o.stats.snapshot()
}

// ResetStats pone los contadores en cero.
func (o *Orchestrator) ResetStats() {
	o.stats.reset()
}

// Factory expone el factory de adaptadores para las superficies de consulta
// (catálogo contable, reportes, info del adaptador).
func (o *Orchestrator) Factory() *erp.Factory {
	return o.factory
}

// Config regresa la configuración ERP activa de la sucursal.
func (o *Orchestrator) Config(ctx context.Context, sucursalID string) (*entity.ConfiguracionERPSucursal, error) {
	return o.configRepo.GetBySucursal(ctx, sucursalID)
}

// syncPlan es el plan ejecutable de un intento: payload unificado ya armado,
// la llamada al adaptador y el write-back nativo tras el éxito.
type syncPlan struct {
	entityType string
	entityID   string
	folio      string
	payload    any
	call       func(ctx context.Context, a erp.AccountingAdapter) (*erp.SyncResult, error)
	markSynced func(ctx context.Context, erpEntityID string, at time.Time) error
}

// SyncEntity sincroniza una entidad de la plataforma hacia el ERP de su
// sucursal, con reintentos para fallas transitorias. triggeredBy es el origen
// (manual | scheduled | webhook) y user el usuario responsable si aplica.
func (o *Orchestrator) SyncEntity(ctx context.Context, sucursalID, entityType, entityID, triggeredBy, user string) (*Outcome, error) {
	cfg, err := o.configRepo.GetBySucursal(ctx, sucursalID)
	if err != nil {
		return nil, err
	}
	if cfg == nil {
		return nil, &domain.ConfigurationError{Reason: "la sucursal " + sucursalID + " no tiene configuración ERP activa"}
	}
	if !cfg.EntityEnabled(entityType) {
		return nil, &domain.ConfigurationError{Reason: "sincronización de " + entityType + " deshabilitada para la sucursal " + sucursalID}
	}
	adapter, err := o.factory.ForConfig(cfg)
	if err != nil {
		return nil, err
	}

	maxAttempts := 1 + o.cfg.MaxRetries
	var lastErr error
	for attempt := 1; attempt <= maxAttempts; attempt++ {
		if attempt > 1 {
			o.stats.recordRetry()
			o.sleep(o.backoff(attempt))
		}
		outcome, err := o.syncOne(ctx, cfg, adapter, entityType, entityID, triggeredBy, user, attempt)
		if err == nil {
			outcome.Attempts = attempt
			return outcome, nil
		}
		lastErr = err
		if !domain.Retryable(err) {
			break
		}
		o.log.Warn().
			Str("sucursal_id", sucursalID).
			Str("entity_type", entityType).
			Str("entity_id", entityID).
			Int("attempt", attempt).
			Err(err).
			Msg("intento de sincronización fallido, reintentando")
	}
	return nil, lastErr
}

// backoff calcula la espera antes del intento dado (attempt ≥ 2).
func (o *Orchestrator) backoff(attempt int) time.Duration {
	delay := time.Duration(o.cfg.BaseDelayMS) * time.Millisecond
	for i := 2; i < attempt; i++ {
		delay *= time.Duration(o.cfg.BackoffMultiplier)
	}
	return delay
}

// syncOne ejecuta un intento completo: registro fresco, dependencias, log,
// adaptador, mapeo y write-back. El candado por llave cubre solo el intento.
func (o *Orchestrator) syncOne(ctx context.Context, cfg *entity.ConfiguracionERPSucursal, adapter erp.AccountingAdapter, entityType, entityID, triggeredBy, user string, attempt int) (*Outcome, error) {
	key := cfg.SucursalID + "/" + entityType + "/" + entityID
	unlock := o.keys.Lock(key)
	defer unlock()

	o.stats.recordAttempt()

	plan, err := o.prepare(ctx, cfg, entityType, entityID)
	if err != nil {
		o.stats.recordFailure()
		return nil, err
	}

	payload, err := json.Marshal(plan.payload)
	if err != nil {
		o.stats.recordFailure()
		return nil, fmt.Errorf("serializando payload de %s %s: %w", entityType, entityID, err)
	}

	logEntry := &entity.SyncLogEntry{
		ID:              uuid.NewString(),
		SucursalID:      cfg.SucursalID,
		ConfigID:        cfg.ID,
		Provider:        cfg.Provider,
		EntityType:      entityType,
		EntityID:        entityID,
		Folio:           plan.folio,
		Direction:       entity.DirectionSpiritToERP,
		Status:          entity.SyncStatusProcessing,
		Attempt:         attempt,
		RequestPayload:  string(payload),
		TriggeredBy:     triggeredBy,
		TriggeredByUser: user,
		StartedAt:       time.Now(),
	}
	if err := o.logRepo.Open(ctx, logEntry); err != nil {
		o.stats.recordFailure()
		return nil, err
	}

	callCtx, cancel := context.WithTimeout(ctx, time.Duration(o.cfg.AdapterTimeoutSec)*time.Second)
	result, err := plan.call(callCtx, adapter)
	cancel()
	if err != nil {
		if closeErr := o.logRepo.CloseError(ctx, logEntry.ID, err.Error()); closeErr != nil {
			o.log.Error().Err(closeErr).Str("log_id", logEntry.ID).Msg("no se pudo cerrar la fila de log en error")
		}
		if erp.IsUnsupported(err) {
			o.stats.recordUnsupported()
		} else {
			o.stats.recordFailure()
		}
		return nil, err
	}

	now := time.Now()
	mapping := &entity.EntityMapping{
		ID:                uuid.NewString(),
		SucursalID:        cfg.SucursalID,
		ERPProvider:       cfg.Provider,
		SpiritEntityType:  entityType,
		SpiritEntityID:    entityID,
		SpiritFolio:       plan.folio,
		ERPEntityType:     entityType,
		ERPEntityID:       result.ERPEntityID,
		ERPEntityNumber:   result.ERPEntityNumber,
		LastSyncedAt:      now,
		LastSyncDirection: entity.DirectionSpiritToERP,
		SyncVersion:       1,
	}
	if err := o.mappingRepo.Upsert(ctx, mapping); err != nil {
		if closeErr := o.logRepo.CloseError(ctx, logEntry.ID, err.Error()); closeErr != nil {
			o.log.Error().Err(closeErr).Str("log_id", logEntry.ID).Msg("no se pudo cerrar la fila de log en error")
		}
		o.stats.recordFailure()
		return nil, err
	}

	if plan.markSynced != nil {
		if err := plan.markSynced(ctx, result.ERPEntityID, now); err != nil {
			// El mapeo ya quedó; el write-back nativo es best-effort y se
			// reporta sin tirar la sincronización.
			o.log.Error().Err(err).
				Str("entity_type", entityType).
				Str("entity_id", entityID).
				Msg("write-back nativo fallido tras sincronización exitosa")
		}
	}

	response, _ := json.Marshal(result.Data)
	if err := o.logRepo.CloseSuccess(ctx, logEntry.ID, string(response), result.ERPEntityID); err != nil {
		o.log.Error().Err(err).Str("log_id", logEntry.ID).Msg("no se pudo cerrar la fila de log en éxito")
	}

	o.stats.recordSuccess()
	o.log.Info().
		Str("sucursal_id", cfg.SucursalID).
		Str("provider", cfg.Provider).
		Str("entity_type", entityType).
		Str("entity_id", entityID).
		Str("erp_entity_id", result.ERPEntityID).
		Int("attempt", attempt).
		Msg("entidad sincronizada")

	return &Outcome{
		EntityType:      entityType,
		EntityID:        entityID,
		Folio:           plan.folio,
		ERPEntityID:     result.ERPEntityID,
		ERPEntityNumber: result.ERPEntityNumber,
		SyncVersion:     mapping.SyncVersion,
	}, nil
}

// prepare carga el registro nativo fresco, resuelve dependencias vía mapeo y
// arma el plan del intento. El payload se reconstruye en cada intento para
// reflejar el estado vigente del registro.
func (o *Orchestrator) prepare(ctx context.Context, cfg *entity.ConfiguracionERPSucursal, entityType, entityID string) (*syncPlan, error) {
	switch entityType {
	case entity.EntityCustomer:
		return o.prepareCustomer(ctx, cfg, entityID)
	case entity.EntityInvoice:
		return o.prepareInvoice(ctx, cfg, entityID)
	case entity.EntityPayment:
		return o.preparePayment(ctx, cfg, entityID)
	case entity.EntityVendor:
		return o.prepareVendor(ctx, cfg, entityID)
	case entity.EntityBill:
		return o.prepareBill(ctx, cfg, entityID)
	case entity.EntityBillPayment:
		return o.prepareBillPayment(ctx, cfg, entityID)
	case entity.EntityCreditMemo:
		return o.prepareCreditMemo(ctx, cfg, entityID)
	}
	return nil, &domain.ConfigurationError{Reason: "tipo de entidad desconocido: " + entityType}
}

// mappedERPID regresa el id externo de la llave, o "" si no hay mapeo.
func (o *Orchestrator) mappedERPID(ctx context.Context, cfg *entity.ConfiguracionERPSucursal, entityType, entityID string) (string, error) {
	m, err := o.mappingRepo.Get(ctx, entity.MappingKey{
		SucursalID: cfg.SucursalID,
		Provider:   cfg.Provider,
		EntityType: entityType,
		EntityID:   entityID,
	})
	if err != nil {
		return "", err
	}
	if m == nil {
		return "", nil
	}
	return m.ERPEntityID, nil
}

// requireMapped es mappedERPID para dependencias: sin mapeo es DependencyError.
func (o *Orchestrator) requireMapped(ctx context.Context, cfg *entity.ConfiguracionERPSucursal, dependentType, depType, depID string) (string, error) {
	erpID, err := o.mappedERPID(ctx, cfg, depType, depID)
	if err != nil {
		return "", err
	}
	if erpID == "" {
		return "", &domain.DependencyError{EntityType: dependentType, DependsOn: depType, DependencyID: depID}
	}
	return erpID, nil
}

func (o *Orchestrator) prepareCustomer(ctx context.Context, cfg *entity.ConfiguracionERPSucursal, id string) (*syncPlan, error) {
	c, err := o.customerRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if c == nil {
		return nil, &domain.NotFoundError{EntityType: entity.EntityCustomer, EntityID: id}
	}
	erpID, err := o.mappedERPID(ctx, cfg, entity.EntityCustomer, id)
	if err != nil {
		return nil, err
	}
	u := unified.FromCustomer(c, erpID)
	return &syncPlan{
		entityType: entity.EntityCustomer,
		entityID:   id,
		folio:      c.RFC,
		payload:    u,
		call: func(ctx context.Context, a erp.AccountingAdapter) (*erp.SyncResult, error) {
			return a.SyncCustomer(ctx, u)
		},
		markSynced: func(ctx context.Context, erpEntityID string, at time.Time) error {
			return o.customerRepo.MarkERPSynced(ctx, id, erpEntityID, at)
		},
	}, nil
}

func (o *Orchestrator) prepareInvoice(ctx context.Context, cfg *entity.ConfiguracionERPSucursal, id string) (*syncPlan, error) {
	r, err := o.receivableRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if r == nil {
		return nil, &domain.NotFoundError{EntityType: entity.EntityInvoice, EntityID: id}
	}
	customerERPID, err := o.requireMapped(ctx, cfg, entity.EntityInvoice, entity.EntityCustomer, r.CustomerID)
	if err != nil {
		return nil, err
	}
	erpID, err := o.mappedERPID(ctx, cfg, entity.EntityInvoice, id)
	if err != nil {
		return nil, err
	}
	u := unified.FromReceivable(r, erpID, customerERPID)
	return &syncPlan{
		entityType: entity.EntityInvoice,
		entityID:   id,
		folio:      r.Folio,
		payload:    u,
		call: func(ctx context.Context, a erp.AccountingAdapter) (*erp.SyncResult, error) {
			return a.SyncInvoice(ctx, u)
		},
		markSynced: func(ctx context.Context, erpEntityID string, at time.Time) error {
			return o.receivableRepo.MarkERPSynced(ctx, id, erpEntityID, at)
		},
	}, nil
}

func (o *Orchestrator) preparePayment(ctx context.Context, cfg *entity.ConfiguracionERPSucursal, id string) (*syncPlan, error) {
	p, err := o.paymentRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if p == nil {
		return nil, &domain.NotFoundError{EntityType: entity.EntityPayment, EntityID: id}
	}
	customerERPID, err := o.requireMapped(ctx, cfg, entity.EntityPayment, entity.EntityCustomer, p.CustomerID)
	if err != nil {
		return nil, err
	}
	invoiceERPID, err := o.requireMapped(ctx, cfg, entity.EntityPayment, entity.EntityInvoice, p.ReceivableID)
	if err != nil {
		return nil, err
	}
	erpID, err := o.mappedERPID(ctx, cfg, entity.EntityPayment, id)
	if err != nil {
		return nil, err
	}
	u := unified.FromPayment(p, erpID, customerERPID, invoiceERPID)
	return &syncPlan{
		entityType: entity.EntityPayment,
		entityID:   id,
		folio:      p.Folio,
		payload:    u,
		call: func(ctx context.Context, a erp.AccountingAdapter) (*erp.SyncResult, error) {
			return a.SyncPayment(ctx, u)
		},
		markSynced: func(ctx context.Context, erpEntityID string, at time.Time) error {
			return o.paymentRepo.MarkERPSynced(ctx, id, erpEntityID, at)
		},
	}, nil
}

func (o *Orchestrator) prepareVendor(ctx context.Context, cfg *entity.ConfiguracionERPSucursal, id string) (*syncPlan, error) {
	v, err := o.vendorRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if v == nil {
		return nil, &domain.NotFoundError{EntityType: entity.EntityVendor, EntityID: id}
	}
	erpID, err := o.mappedERPID(ctx, cfg, entity.EntityVendor, id)
	if err != nil {
		return nil, err
	}
	u := unified.FromVendor(v, erpID)
	return &syncPlan{
		entityType: entity.EntityVendor,
		entityID:   id,
		folio:      v.RFC,
		payload:    u,
		call: func(ctx context.Context, a erp.AccountingAdapter) (*erp.SyncResult, error) {
			return a.SyncVendor(ctx, u)
		},
		markSynced: func(ctx context.Context, erpEntityID string, at time.Time) error {
			return o.vendorRepo.MarkERPSynced(ctx, id, erpEntityID, at)
		},
	}, nil
}

func (o *Orchestrator) prepareBill(ctx context.Context, cfg *entity.ConfiguracionERPSucursal, id string) (*syncPlan, error) {
	b, err := o.billRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if b == nil {
		return nil, &domain.NotFoundError{EntityType: entity.EntityBill, EntityID: id}
	}
	vendorERPID, err := o.requireMapped(ctx, cfg, entity.EntityBill, entity.EntityVendor, b.VendorID)
	if err != nil {
		return nil, err
	}
	erpID, err := o.mappedERPID(ctx, cfg, entity.EntityBill, id)
	if err != nil {
		return nil, err
	}
	u := unified.FromBill(b, erpID, vendorERPID)
	return &syncPlan{
		entityType: entity.EntityBill,
		entityID:   id,
		folio:      b.Folio,
		payload:    u,
		call: func(ctx context.Context, a erp.AccountingAdapter) (*erp.SyncResult, error) {
			return a.SyncBill(ctx, u)
		},
		markSynced: func(ctx context.Context, erpEntityID string, at time.Time) error {
			return o.billRepo.MarkERPSynced(ctx, id, erpEntityID, at)
		},
	}, nil
}

func (o *Orchestrator) prepareBillPayment(ctx context.Context, cfg *entity.ConfiguracionERPSucursal, id string) (*syncPlan, error) {
	p, err := o.billRepo.GetBillPaymentByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if p == nil {
		return nil, &domain.NotFoundError{EntityType: entity.EntityBillPayment, EntityID: id}
	}
	vendorERPID, err := o.requireMapped(ctx, cfg, entity.EntityBillPayment, entity.EntityVendor, p.VendorID)
	if err != nil {
		return nil, err
	}
	billERPID, err := o.requireMapped(ctx, cfg, entity.EntityBillPayment, entity.EntityBill, p.BillID)
	if err != nil {
		return nil, err
	}
	erpID, err := o.mappedERPID(ctx, cfg, entity.EntityBillPayment, id)
	if err != nil {
		return nil, err
	}
	u := unified.FromBillPayment(p, erpID, vendorERPID, billERPID)
	return &syncPlan{
		entityType: entity.EntityBillPayment,
		entityID:   id,
		folio:      p.Folio,
		payload:    u,
		call: func(ctx context.Context, a erp.AccountingAdapter) (*erp.SyncResult, error) {
			return a.SyncBillPayment(ctx, u)
		},
		markSynced: func(ctx context.Context, erpEntityID string, at time.Time) error {
			return o.billRepo.MarkBillPaymentERPSynced(ctx, id, erpEntityID, at)
		},
	}, nil
}

// prepareCreditMemo arma la nota de crédito a partir de la cuenta por cobrar
// devuelta (reembolsos de reservas). Requiere cliente y factura ya mapeados;
// el monto acreditado es el total menos el saldo vigente.
func (o *Orchestrator) prepareCreditMemo(ctx context.Context, cfg *entity.ConfiguracionERPSucursal, id string) (*syncPlan, error) {
	r, err := o.receivableRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if r == nil {
		return nil, &domain.NotFoundError{EntityType: entity.EntityCreditMemo, EntityID: id}
	}
	customerERPID, err := o.requireMapped(ctx, cfg, entity.EntityCreditMemo, entity.EntityCustomer, r.CustomerID)
	if err != nil {
		return nil, err
	}
	invoiceERPID, err := o.requireMapped(ctx, cfg, entity.EntityCreditMemo, entity.EntityInvoice, r.ID)
	if err != nil {
		return nil, err
	}
	erpID, err := o.mappedERPID(ctx, cfg, entity.EntityCreditMemo, id)
	if err != nil {
		return nil, err
	}
	amount := r.Total.Sub(r.Saldo)
	u := unified.FromRefund(r, erpID, customerERPID, invoiceERPID, amount, "devolución de reserva "+r.Folio)
	return &syncPlan{
		entityType: entity.EntityCreditMemo,
		entityID:   id,
		folio:      r.Folio,
		payload:    u,
		call: func(ctx context.Context, a erp.AccountingAdapter) (*erp.SyncResult, error) {
			return a.SyncCreditMemo(ctx, u)
		},
	}, nil
}

// SyncPending corre la sincronización de todos los registros pendientes de la
// sucursal en orden de dependencia: clientes y proveedores primero, luego
// facturas y cuentas por pagar, al final pagos. El fallo de una entidad no
// detiene la corrida.
func (o *Orchestrator) SyncPending(ctx context.Context, sucursalID, triggeredBy, user string) (*BatchOutcome, error) {
	cfg, err := o.configRepo.GetBySucursal(ctx, sucursalID)
	if err != nil {
		return nil, err
	}
	if cfg == nil {
		return nil, &domain.ConfigurationError{Reason: "la sucursal " + sucursalID + " no tiene configuración ERP activa"}
	}

	out := &BatchOutcome{SucursalID: sucursalID, StartedAt: time.Now()}
	limit := o.cfg.BatchSize

	runOne := func(entityType, id string) {
		out.Processed++
		if _, err := o.SyncEntity(ctx, sucursalID, entityType, id, triggeredBy, user); err != nil {
			out.Failed++
			out.Errors = append(out.Errors, fmt.Sprintf("%s %s: %v", entityType, id, err))
			return
		}
		out.Succeeded++
	}

	if cfg.SyncCustomers {
		customers, err := o.customerRepo.ListPendingERP(ctx, sucursalID, cfg.Provider, limit)
		if err != nil {
			return nil, err
		}
		for _, c := range customers {
			runOne(entity.EntityCustomer, c.ID)
		}
	}
	if cfg.SyncVendors {
		vendors, err := o.vendorRepo.ListPendingERP(ctx, sucursalID, cfg.Provider, limit)
		if err != nil {
			return nil, err
		}
		for _, v := range vendors {
			runOne(entity.EntityVendor, v.ID)
		}
	}
	if cfg.SyncInvoices {
		receivables, err := o.receivableRepo.ListPendingERP(ctx, sucursalID, limit)
		if err != nil {
			return nil, err
		}
		for _, r := range receivables {
			runOne(entity.EntityInvoice, r.ID)
		}
	}
	if cfg.SyncBills {
		bills, err := o.billRepo.ListPendingERP(ctx, sucursalID, limit)
		if err != nil {
			return nil, err
		}
		for _, b := range bills {
			runOne(entity.EntityBill, b.ID)
		}
	}
	if cfg.SyncPayments {
		payments, err := o.paymentRepo.ListPendingERP(ctx, sucursalID, limit)
		if err != nil {
			return nil, err
		}
		for _, p := range payments {
			runOne(entity.EntityPayment, p.ID)
		}
	}

	out.FinishedAt = time.Now()
	o.log.Info().
		Str("sucursal_id", sucursalID).
		Int("processed", out.Processed).
		Int("succeeded", out.Succeeded).
		Int("failed", out.Failed).
		Msg("corrida de pendientes terminada")
	return out, nil
}

// TestConnection prueba la conexión ERP de la sucursal y registra la marca de
// última conexión cuando es exitosa.
func (o *Orchestrator) TestConnection(ctx context.Context, sucursalID string) (*erp.ConnectionResult, error) {
	cfg, err := o.configRepo.GetBySucursal(ctx, sucursalID)
	if err != nil {
		return nil, err
	}
	if cfg == nil {
		return nil, &domain.ConfigurationError{Reason: "la sucursal " + sucursalID + " no tiene configuración ERP activa"}
	}
	adapter, err := o.factory.ForConfig(cfg)
	if err != nil {
		return nil, err
	}
	res := adapter.TestConnection(ctx)
	if res.Connected {
		if err := o.configRepo.MarkConnected(ctx, cfg.ID); err != nil {
			o.log.Error().Err(err).Str("config_id", cfg.ID).Msg("no se pudo registrar la última conexión")
		}
	}
	return &res, nil
}

// History lista los intentos de sincronización de una entidad, más reciente
// primero.
func (o *Orchestrator) History(ctx context.Context, sucursalID, entityType, entityID string, limit int) ([]*entity.SyncLogEntry, error) {
	return o.logRepo.ListByEntity(ctx, sucursalID, entityType, entityID, limit)
}

// Mappings lista los mapeos de la sucursal (tipo vacío = todos).
func (o *Orchestrator) Mappings(ctx context.Context, sucursalID, entityType string, limit, offset int) ([]*entity.EntityMapping, error) {
	return o.mappingRepo.ListBySucursal(ctx, sucursalID, entityType, limit, offset)
}
