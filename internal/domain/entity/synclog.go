package entity

import "time"

// Estados del log de sincronización. Cada intento abre una fila en
// "processing" y la cierra exactamente una vez en "success" o "error".
const (
	SyncStatusProcessing = "processing"
	SyncStatusSuccess    = "success"
	SyncStatusError      = "error"
)

// Actores que disparan una sincronización.
const (
	TriggerManual    = "manual"
	TriggerScheduled = "scheduled"
	TriggerWebhook   = "webhook"
)

// SyncLogEntry es una fila append-only de log_sincronizacion_erp: el rastro de
// auditoría que exige la conciliación financiera. Nunca se muta tras cerrarse.
type SyncLogEntry struct {
	ID              string
	SucursalID      string
	ConfigID        string
	Provider        string
	EntityType      string
	EntityID        string
	Folio           string
	Direction       string
	Status          string
	Attempt         int // 1 = intento inicial; cada reintento abre fila propia
	RequestPayload  string
	ResponsePayload string
	ErrorMessage    string
	ERPEntityID     string
	TriggeredBy     string // manual | scheduled | webhook
	TriggeredByUser string
	StartedAt       time.Time
	FinishedAt      *time.Time
}
