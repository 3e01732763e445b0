package http

import (
	"strconv"

	"github.com/gofiber/fiber/v2"

	appsync "github.com/spirittours/erp-hub/internal/application/sync"
	"github.com/spirittours/erp-hub/internal/domain/entity"
)

// SyncHandler maneja las rutas de sincronización ERP (protegido).
type SyncHandler struct {
	orch *appsync.Orchestrator
}

// NewSyncHandler construye el handler.
func NewSyncHandler(orch *appsync.Orchestrator) *SyncHandler {
	return &SyncHandler{orch: orch}
}

// SyncCustomer sincroniza un cliente hacia el ERP.
// POST /api/sync/customers/:id
func (h *SyncHandler) SyncCustomer(c *fiber.Ctx) error {
	return h.syncOne(c, entity.EntityCustomer)
}

// SyncInvoice sincroniza una cuenta por cobrar como factura.
// POST /api/sync/invoices/:id
func (h *SyncHandler) SyncInvoice(c *fiber.Ctx) error {
	return h.syncOne(c, entity.EntityInvoice)
}

// SyncPayment sincroniza un pago recibido.
// POST /api/sync/payments/:id
func (h *SyncHandler) SyncPayment(c *fiber.Ctx) error {
	return h.syncOne(c, entity.EntityPayment)
}

// SyncVendor sincroniza un proveedor.
// POST /api/sync/vendors/:id
func (h *SyncHandler) SyncVendor(c *fiber.Ctx) error {
	return h.syncOne(c, entity.EntityVendor)
}

// SyncBill sincroniza una cuenta por pagar.
// POST /api/sync/bills/:id
func (h *SyncHandler) SyncBill(c *fiber.Ctx) error {
	return h.syncOne(c, entity.EntityBill)
}

func (h *SyncHandler) syncOne(c *fiber.Ctx, entityType string) error {
	id := c.Params("id")
	if id == "" {
		return c.Status(fiber.StatusBadRequest).JSON(ErrorResponse{Code: "VALIDATION", Message: "id requerido"})
	}
	outcome, err := h.orch.SyncEntity(c.Context(), GetSucursalID(c), entityType, id, entity.TriggerManual, GetUserID(c))
	if err != nil {
		return errorResponse(c, err)
	}
	return c.JSON(outcome)
}

// Batch sincroniza una lista de entidades en el orden recibido. El fallo de
// una entidad no detiene a las siguientes.
// POST /api/sync/batch
func (h *SyncHandler) Batch(c *fiber.Ctx) error {
	var in BatchSyncRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	if len(in.Entities) == 0 {
		return c.Status(fiber.StatusBadRequest).JSON(ErrorResponse{Code: "VALIDATION", Message: "entities requerido"})
	}

	sucursalID := GetSucursalID(c)
	userID := GetUserID(c)
	out := BatchSyncResponse{Results: make([]BatchSyncItemResult, 0, len(in.Entities))}
	for _, item := range in.Entities {
		out.Processed++
		res := BatchSyncItemResult{EntityType: item.EntityType, EntityID: item.EntityID}
		outcome, err := h.orch.SyncEntity(c.Context(), sucursalID, item.EntityType, item.EntityID, entity.TriggerManual, userID)
		if err != nil {
			out.Failed++
			res.Error = err.Error()
		} else {
			out.Succeeded++
			res.Success = true
			res.ERPEntityID = outcome.ERPEntityID
		}
		out.Results = append(out.Results, res)
	}
	return c.JSON(out)
}

// Pending corre la sincronización de todos los pendientes de la sucursal en
// orden de dependencia.
// POST /api/sync/pending
func (h *SyncHandler) Pending(c *fiber.Ctx) error {
	outcome, err := h.orch.SyncPending(c.Context(), GetSucursalID(c), entity.TriggerManual, GetUserID(c))
	if err != nil {
		return errorResponse(c, err)
	}
	return c.JSON(outcome)
}

// Stats regresa los contadores del orquestador.
// GET /api/sync/stats
func (h *SyncHandler) Stats(c *fiber.Ctx) error {
	s := h.orch.Stats()
	return c.JSON(StatsResponse{
		TotalSyncs:       s.TotalSyncs,
		SuccessfulSyncs:  s.SuccessfulSyncs,
		FailedSyncs:      s.FailedSyncs,
		RetriedSyncs:     s.RetriedSyncs,
		UnsupportedSyncs: s.UnsupportedSyncs,
		SuccessRate:      s.SuccessRate(),
	})
}

// ResetStats pone los contadores en cero.
// DELETE /api/sync/stats
func (h *SyncHandler) ResetStats(c *fiber.Ctx) error {
	h.orch.ResetStats()
	return c.SendStatus(fiber.StatusNoContent)
}

// History lista los intentos de sincronización de una entidad, más reciente
// primero.
// GET /api/sync/history/:entityType/:id
func (h *SyncHandler) History(c *fiber.Ctx) error {
	entityType := c.Params("entityType")
	id := c.Params("id")
	if entityType == "" || id == "" {
		return c.Status(fiber.StatusBadRequest).JSON(ErrorResponse{Code: "VALIDATION", Message: "entityType e id requeridos"})
	}
	entries, err := h.orch.History(c.Context(), GetSucursalID(c), entityType, id, queryInt(c, "limit", 50))
	if err != nil {
		return errorResponse(c, err)
	}
	out := make([]SyncLogResponse, 0, len(entries))
	for _, e := range entries {
		out = append(out, syncLogFromEntity(e))
	}
	return c.JSON(out)
}

// Mappings lista los mapeos de la sucursal; ?entity_type filtra por tipo.
// GET /api/sync/mappings
func (h *SyncHandler) Mappings(c *fiber.Ctx) error {
	mappings, err := h.orch.Mappings(c.Context(), GetSucursalID(c), c.Query("entity_type"),
		queryInt(c, "limit", 100), queryInt(c, "offset", 0))
	if err != nil {
		return errorResponse(c, err)
	}
	out := make([]MappingResponse, 0, len(mappings))
	for _, m := range mappings {
		out = append(out, mappingFromEntity(m))
	}
	return c.JSON(out)
}

// queryInt lee un query param entero con default; valores inválidos o fuera
// de rango regresan el default.
func queryInt(c *fiber.Ctx, key string, def int) int {
	v := c.Query(key)
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil || n < 0 {
		return def
	}
	return n
}
