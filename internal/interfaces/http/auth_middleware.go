package http

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/spirittours/erp-hub/pkg/jwt"
)

// Locals keys que fija el middleware de autenticación.
const (
	LocalUserID     = "user_id"
	LocalSucursalID = "sucursal_id"
	LocalRole       = "role"
)

// AuthMiddleware valida el Bearer Token JWT y extrae UserID, SucursalID y Role
// a c.Locals. Todas las rutas de sincronización operan sobre la sucursal del
// token, nunca sobre una del cuerpo de la petición.
func AuthMiddleware(jwtSecret string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		authHeader := c.Get("Authorization")
		if authHeader == "" {
			return c.Status(fiber.StatusUnauthorized).JSON(ErrorResponse{Code: "MISSING_TOKEN", Message: "Authorization header requerido"})
		}
		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
			return c.Status(fiber.StatusUnauthorized).JSON(ErrorResponse{Code: "INVALID_TOKEN", Message: "formato: Bearer <token>"})
		}
		tokenString := strings.TrimSpace(parts[1])
		if tokenString == "" {
			return c.Status(fiber.StatusUnauthorized).JSON(ErrorResponse{Code: "MISSING_TOKEN", Message: "token vacío"})
		}
		userID, sucursalID, role, err := jwt.Parse(jwtSecret, tokenString)
		if err != nil {
			return c.Status(fiber.StatusUnauthorized).JSON(ErrorResponse{Code: "INVALID_TOKEN", Message: "token inválido o expirado"})
		}
		if sucursalID == "" {
			return c.Status(fiber.StatusUnauthorized).JSON(ErrorResponse{Code: "INVALID_TOKEN", Message: "token sin sucursal"})
		}
		c.Locals(LocalUserID, userID)
		c.Locals(LocalSucursalID, sucursalID)
		c.Locals(LocalRole, role)
		return c.Next()
	}
}

// RequireRole exige que el rol del token sea uno de los permitidos. Se aplica
// después de AuthMiddleware.
func RequireRole(roles ...string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		role := GetRole(c)
		for _, r := range roles {
			if role == r {
				return c.Next()
			}
		}
		return c.Status(fiber.StatusForbidden).JSON(ErrorResponse{Code: "FORBIDDEN", Message: "rol sin permiso para esta operación"})
	}
}

// GetUserID devuelve el UserID del contexto (después del middleware de auth).
func GetUserID(c *fiber.Ctx) string {
	v := c.Locals(LocalUserID)
	if v == nil {
		return ""
	}
	s, _ := v.(string)
	return s
}

// GetSucursalID devuelve el SucursalID del contexto.
func GetSucursalID(c *fiber.Ctx) string {
	v := c.Locals(LocalSucursalID)
	if v == nil {
		return ""
	}
	s, _ := v.(string)
	return s
}

// GetRole devuelve el rol del contexto.
func GetRole(c *fiber.Ctx) string {
	v := c.Locals(LocalRole)
	if v == nil {
		return ""
	}
	s, _ := v.(string)
	return s
}
