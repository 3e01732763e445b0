package http

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"github.com/spirittours/erp-hub/internal/application/erp"
	"github.com/spirittours/erp-hub/internal/domain"
)

// errorResponse traduce la taxonomía de errores del dominio a HTTP. Los
// errores reintentables del adaptador salen como 502: el problema está del
// lado del sistema externo, no de la petición.
func errorResponse(c *fiber.Ctx, err error) error {
	var (
		cfgErr    *domain.ConfigurationError
		authErr   *domain.AuthenticationError
		nfErr     *domain.NotFoundError
		depErr    *domain.DependencyError
		opErr     *domain.AdapterOperationError
		valErr    *domain.ValidationError
		stampErr  *domain.StampingError
		cancelErr *domain.CancellationError
		unsupErr  *erp.UnsupportedError
	)
	switch {
	case errors.As(err, &valErr):
		return c.Status(fiber.StatusBadRequest).JSON(ErrorResponse{Code: "VALIDATION", Message: err.Error()})
	case errors.As(err, &nfErr), errors.Is(err, domain.ErrNotFound):
		return c.Status(fiber.StatusNotFound).JSON(ErrorResponse{Code: "NOT_FOUND", Message: err.Error()})
	case errors.Is(err, domain.ErrDuplicate):
		return c.Status(fiber.StatusConflict).JSON(ErrorResponse{Code: "DUPLICATE", Message: err.Error()})
	case errors.As(err, &depErr):
		return c.Status(fiber.StatusConflict).JSON(ErrorResponse{Code: "DEPENDENCY_PENDING", Message: err.Error()})
	case errors.As(err, &cfgErr):
		return c.Status(fiber.StatusUnprocessableEntity).JSON(ErrorResponse{Code: "CONFIGURATION", Message: err.Error()})
	case errors.As(err, &unsupErr):
		return c.Status(fiber.StatusNotImplemented).JSON(ErrorResponse{Code: "UNSUPPORTED_OPERATION", Message: err.Error()})
	case errors.As(err, &authErr):
		return c.Status(fiber.StatusBadGateway).JSON(ErrorResponse{Code: "ERP_AUTHENTICATION", Message: err.Error()})
	case errors.As(err, &opErr):
		return c.Status(fiber.StatusBadGateway).JSON(ErrorResponse{Code: "ERP_OPERATION", Message: err.Error()})
	case errors.As(err, &stampErr):
		return c.Status(fiber.StatusBadGateway).JSON(ErrorResponse{Code: "PAC_STAMPING", Message: err.Error()})
	case errors.As(err, &cancelErr):
		return c.Status(fiber.StatusBadGateway).JSON(ErrorResponse{Code: "PAC_CANCELLATION", Message: err.Error()})
	}
	return c.Status(fiber.StatusInternalServerError).JSON(ErrorResponse{Code: "INTERNAL", Message: err.Error()})
}
