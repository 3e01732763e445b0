package http

import (
	"crypto/subtle"

	"github.com/gofiber/fiber/v2"

	appsync "github.com/spirittours/erp-hub/internal/application/sync"
	"github.com/spirittours/erp-hub/internal/domain/entity"
)

// WebhookHandler recibe los avisos de la plataforma. Los webhooks no viajan
// con JWT de usuario: se autentican con el secreto compartido en el header
// X-Webhook-Secret.
type WebhookHandler struct {
	orch   *appsync.Orchestrator
	secret string
}

// NewWebhookHandler construye el handler.
func NewWebhookHandler(orch *appsync.Orchestrator, secret string) *WebhookHandler {
	return &WebhookHandler{orch: orch, secret: secret}
}

// EntityConfirmed sincroniza la entidad confirmada por la plataforma. La
// sucursal viene en el cuerpo porque el webhook no carga token de usuario.
// POST /api/webhooks/entity-confirmed
func (h *WebhookHandler) EntityConfirmed(c *fiber.Ctx) error {
	if h.secret == "" {
		return c.Status(fiber.StatusUnauthorized).JSON(ErrorResponse{Code: "WEBHOOKS_DISABLED", Message: "webhooks no configurados"})
	}
	got := c.Get("X-Webhook-Secret")
	if subtle.ConstantTimeCompare([]byte(got), []byte(h.secret)) != 1 {
		return c.Status(fiber.StatusUnauthorized).JSON(ErrorResponse{Code: "INVALID_SECRET", Message: "secreto de webhook inválido"})
	}

	var in WebhookEntityConfirmed
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	if in.SucursalID == "" || in.EntityType == "" || in.EntityID == "" {
		return c.Status(fiber.StatusBadRequest).JSON(ErrorResponse{Code: "VALIDATION", Message: "sucursal_id, entity_type y entity_id requeridos"})
	}

	outcome, err := h.orch.SyncEntity(c.Context(), in.SucursalID, in.EntityType, in.EntityID, entity.TriggerWebhook, "")
	if err != nil {
		return errorResponse(c, err)
	}
	return c.JSON(outcome)
}
