// Package domain define las entidades, puertos y el catálogo de errores del hub.
package domain

import (
	"errors"
	"fmt"
)

// Errores genéricos de dominio (sin dependencias externas).
var (
	ErrNotFound  = errors.New("recurso no encontrado")
	ErrDuplicate = errors.New("recurso duplicado")
)

// ConfigurationError indica que la sincronización no está habilitada o la
// sucursal está mal configurada. No se reintenta.
type ConfigurationError struct {
	Reason string
}

func (e *ConfigurationError) Error() string {
	return "configuración ERP: " + e.Reason
}

// AuthenticationError indica que el adaptador no pudo autenticarse contra el
// sistema externo. Elegible para reintento.
type AuthenticationError struct {
	Provider string
	Cause    error
}

func (e *AuthenticationError) Error() string {
	return fmt.Sprintf("autenticación con %s fallida: %v", e.Provider, e.Cause)
}

func (e *AuthenticationError) Unwrap() error { return e.Cause }

// NotFoundError indica que el registro nativo referenciado no existe.
// Problema de datos, no transitorio: no se reintenta.
type NotFoundError struct {
	EntityType string
	EntityID   string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %s no encontrado", e.EntityType, e.EntityID)
}

// DependencyError indica que una entidad relacionada aún no está sincronizada.
// El caller debe sincronizar la dependencia primero; no se reintenta solo.
type DependencyError struct {
	EntityType    string // entidad que se intentó sincronizar
	DependsOn     string // tipo de la dependencia faltante
	DependencyID  string
}

func (e *DependencyError) Error() string {
	return fmt.Sprintf("%s debe sincronizarse antes que %s (id %s sin mapeo)",
		e.DependsOn, e.EntityType, e.DependencyID)
}

// AdapterOperationError indica que el sistema externo rechazó o falló la
// operación. Elegible para reintento.
type AdapterOperationError struct {
	Provider string
	Method   string
	Cause    error
}

func (e *AdapterOperationError) Error() string {
	return fmt.Sprintf("%s.%s: %v", e.Provider, e.Method, e.Cause)
}

func (e *AdapterOperationError) Unwrap() error { return e.Cause }

// ValidationError indica un comprobante o payload malformado. Falla inmediata,
// nunca se reintenta. Field nombra el campo ofensor.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validación de %s: %s", e.Field, e.Reason)
}

// StampingError indica que el PAC rechazó o falló el timbrado. Nunca se
// reintenta automáticamente: el timbrado tiene efectos en el proveedor.
type StampingError struct {
	Provider string
	Code     string
	Message  string
}

func (e *StampingError) Error() string {
	if e.Code != "" {
		return fmt.Sprintf("timbrado %s [%s]: %s", e.Provider, e.Code, e.Message)
	}
	return fmt.Sprintf("timbrado %s: %s", e.Provider, e.Message)
}

// CancellationError indica que el PAC rechazó o falló la cancelación.
type CancellationError struct {
	Provider string
	UUID     string
	Message  string
}

func (e *CancellationError) Error() string {
	return fmt.Sprintf("cancelación %s (uuid %s): %s", e.Provider, e.UUID, e.Message)
}

// Retryable indica si el error es elegible para reintento bajo la política de
// backoff del orquestador. Solo fallas del adaptador o de autenticación lo son;
// errores de configuración, datos o dependencias requieren intervención.
func Retryable(err error) bool {
	var authErr *AuthenticationError
	var opErr *AdapterOperationError
	return errors.As(err, &authErr) || errors.As(err, &opErr)
}
