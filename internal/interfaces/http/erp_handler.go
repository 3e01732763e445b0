package http

import (
	"fmt"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/spirittours/erp-hub/internal/application/erp"
	appsync "github.com/spirittours/erp-hub/internal/application/sync"
)

const fechaQueryFormat = "2006-01-02"

// ERPHandler expone las consultas de solo lectura contra el ERP de la
// sucursal: conexión, catálogo contable y reportes financieros (protegido).
type ERPHandler struct {
	orch *appsync.Orchestrator
}

// NewERPHandler construye el handler.
func NewERPHandler(orch *appsync.Orchestrator) *ERPHandler {
	return &ERPHandler{orch: orch}
}

// TestConnection prueba la conexión ERP de la sucursal.
// GET /api/erp/test-connection
func (h *ERPHandler) TestConnection(c *fiber.Ctx) error {
	res, err := h.orch.TestConnection(c.Context(), GetSucursalID(c))
	if err != nil {
		return errorResponse(c, err)
	}
	return c.JSON(ConnectionResponse{
		Connected: res.Connected,
		Message:   res.Message,
		CheckedAt: res.CheckedAt,
	})
}

// Info describe el adaptador activo de la sucursal y sus capacidades.
// GET /api/erp/info
func (h *ERPHandler) Info(c *fiber.Ctx) error {
	adapter, err := h.adapter(c)
	if err != nil {
		return errorResponse(c, err)
	}
	info := adapter.GetInfo()
	return c.JSON(AdapterInfoResponse{
		Provider:      info.Provider,
		DisplayName:   info.DisplayName,
		Version:       info.Version,
		Authenticated: info.Authenticated,
		LastSync:      info.LastSync,
		ErrorCount:    info.ErrorCount,
		Capabilities:  info.Capabilities,
	})
}

// Accounts regresa el catálogo de cuentas contables del ERP.
// GET /api/erp/accounts
func (h *ERPHandler) Accounts(c *fiber.Ctx) error {
	adapter, err := h.adapter(c)
	if err != nil {
		return errorResponse(c, err)
	}
	accounts, err := adapter.GetChartOfAccounts(c.Context())
	if err != nil {
		return errorResponse(c, err)
	}
	out := make([]AccountResponse, 0, len(accounts))
	for _, a := range accounts {
		out = append(out, accountFromERP(a))
	}
	return c.JSON(out)
}

// ProfitAndLoss regresa el estado de resultados del periodo ?from=YYYY-MM-DD
// &to=YYYY-MM-DD.
// GET /api/erp/reports/profit-loss
func (h *ERPHandler) ProfitAndLoss(c *fiber.Ctx) error {
	from, to, err := reportPeriod(c)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(ErrorResponse{Code: "VALIDATION", Message: err.Error()})
	}
	adapter, err := h.adapter(c)
	if err != nil {
		return errorResponse(c, err)
	}
	report, err := adapter.GetProfitAndLossReport(c.Context(), from, to)
	if err != nil {
		return errorResponse(c, err)
	}
	return c.JSON(reportFromERP(report))
}

// BalanceSheet regresa el balance general al corte ?as_of=YYYY-MM-DD (hoy si
// se omite).
// GET /api/erp/reports/balance-sheet
func (h *ERPHandler) BalanceSheet(c *fiber.Ctx) error {
	asOf := time.Now()
	if v := c.Query("as_of"); v != "" {
		parsed, err := time.Parse(fechaQueryFormat, v)
		if err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(ErrorResponse{Code: "VALIDATION", Message: "as_of inválido, formato YYYY-MM-DD"})
		}
		asOf = parsed
	}
	adapter, err := h.adapter(c)
	if err != nil {
		return errorResponse(c, err)
	}
	report, err := adapter.GetBalanceSheetReport(c.Context(), asOf)
	if err != nil {
		return errorResponse(c, err)
	}
	return c.JSON(reportFromERP(report))
}

// adapter resuelve el adaptador del proveedor configurado en la sucursal del
// token.
func (h *ERPHandler) adapter(c *fiber.Ctx) (erp.AccountingAdapter, error) {
	cfg, err := h.orch.Config(c.Context(), GetSucursalID(c))
	if err != nil {
		return nil, err
	}
	return h.orch.Factory().ForConfig(cfg)
}

func reportPeriod(c *fiber.Ctx) (from, to time.Time, err error) {
	from, err = time.Parse(fechaQueryFormat, c.Query("from"))
	if err != nil {
		return time.Time{}, time.Time{}, fmt.Errorf("from inválido, formato YYYY-MM-DD")
	}
	to, err = time.Parse(fechaQueryFormat, c.Query("to"))
	if err != nil {
		return time.Time{}, time.Time{}, fmt.Errorf("to inválido, formato YYYY-MM-DD")
	}
	if to.Before(from) {
		return time.Time{}, time.Time{}, fmt.Errorf("to no puede ser anterior a from")
	}
	return from, to, nil
}
