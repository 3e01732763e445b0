package http

import (
	"github.com/gofiber/fiber/v2"

	appcfdi "github.com/spirittours/erp-hub/internal/application/cfdi"
	appsync "github.com/spirittours/erp-hub/internal/application/sync"
	"github.com/spirittours/erp-hub/internal/domain/repository"
)

// Roles de los tokens de servicio de la plataforma.
const (
	RoleAdmin        = "admin"
	RoleContabilidad = "contabilidad"
	RoleOperador     = "operador"
)

// RouterDeps dependencias para el router.
type RouterDeps struct {
	Orchestrator  *appsync.Orchestrator
	Generator     *appcfdi.Generator
	Documents     repository.CFDIDocumentRepository
	Parser        appcfdi.XMLParser
	Renderer      appcfdi.PDFRenderer
	Payments      repository.PaymentRepository
	Receivables   repository.ReceivableRepository
	JWTSecret     string
	WebhookSecret string
}

// Router registra las rutas de la API.
func Router(app *fiber.App, deps RouterDeps) {
	api := app.Group("/api")

	// Webhooks (autenticados por secreto compartido, sin JWT)
	webhookHandler := NewWebhookHandler(deps.Orchestrator, deps.WebhookSecret)
	api.Post("/webhooks/entity-confirmed", webhookHandler.EntityConfirmed)

	// Rutas protegidas (requieren Bearer Token)
	protected := api.Group("/", AuthMiddleware(deps.JWTSecret))

	// Sincronización ERP (protegido)
	syncGroup := protected.Group("/sync")
	syncHandler := NewSyncHandler(deps.Orchestrator)
	syncGroup.Post("/customers/:id", syncHandler.SyncCustomer)
	syncGroup.Post("/invoices/:id", syncHandler.SyncInvoice)
	syncGroup.Post("/payments/:id", syncHandler.SyncPayment)
	syncGroup.Post("/vendors/:id", syncHandler.SyncVendor)
	syncGroup.Post("/bills/:id", syncHandler.SyncBill)
	syncGroup.Post("/batch", syncHandler.Batch)
	syncGroup.Post("/pending", syncHandler.Pending)
	syncGroup.Get("/stats", syncHandler.Stats)
	syncGroup.Delete("/stats", RequireRole(RoleAdmin, RoleContabilidad), syncHandler.ResetStats)
	syncGroup.Get("/history/:entityType/:id", syncHandler.History)
	syncGroup.Get("/mappings", syncHandler.Mappings)

	// Consultas ERP (protegido)
	erpGroup := protected.Group("/erp")
	erpHandler := NewERPHandler(deps.Orchestrator)
	erpGroup.Get("/test-connection", erpHandler.TestConnection)
	erpGroup.Get("/info", erpHandler.Info)
	erpGroup.Get("/accounts", erpHandler.Accounts)
	erpGroup.Get("/reports/profit-loss", erpHandler.ProfitAndLoss)
	erpGroup.Get("/reports/balance-sheet", erpHandler.BalanceSheet)

	// CFDI (protegido; la cancelación exige rol contable)
	cfdiGroup := protected.Group("/cfdi")
	cfdiHandler := NewCFDIHandler(deps.Generator, deps.Documents, deps.Parser, deps.Renderer, deps.Payments, deps.Receivables)
	cfdiGroup.Get("/", cfdiHandler.List)
	cfdiGroup.Post("/generate", cfdiHandler.Generate)
	cfdiGroup.Post("/complemento-pago", cfdiHandler.ComplementoPago)
	cfdiGroup.Post("/:uuid/cancel", RequireRole(RoleAdmin, RoleContabilidad), cfdiHandler.Cancel)
	cfdiGroup.Get("/:uuid/pdf", cfdiHandler.PDF)
}
