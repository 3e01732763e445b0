package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/spirittours/erp-hub/internal/domain"
	"github.com/spirittours/erp-hub/internal/domain/entity"
	"github.com/spirittours/erp-hub/internal/domain/repository"
)

var _ repository.CFDIDocumentRepository = (*CFDIDocumentRepo)(nil)

// CFDIDocumentRepo implementa CFDIDocumentRepository sobre documentos_cfdi.
// El XML timbrado se guarda completo; tras el timbrado sólo cambia el estado
// de cancelación.
type CFDIDocumentRepo struct {
	q Querier
}

// NewCFDIDocumentRepository construye el adaptador. Pasar pool o tx (Querier).
func NewCFDIDocumentRepository(q Querier) *CFDIDocumentRepo {
	return &CFDIDocumentRepo{q: q}
}

const cfdiDocumentColumns = `
	id, sucursal_id, uuid, tipo_de_comprobante, serie, folio,
	emisor_rfc, receptor_rfc, total, moneda, xml, qr_url,
	status, COALESCE(motivo_cancelacion, ''), COALESCE(acuse, ''),
	fecha_timbrado, canceled_at, created_at`

func scanCFDIDocument(row pgx.Row) (*entity.CFDIDocument, error) {
	var d entity.CFDIDocument
	err := row.Scan(
		&d.ID, &d.SucursalID, &d.UUID, &d.TipoDeComprobante, &d.Serie, &d.Folio,
		&d.EmisorRFC, &d.ReceptorRFC, &d.Total, &d.Moneda, &d.XML, &d.QRURL,
		&d.Status, &d.MotivoCancelacion, &d.Acuse,
		&d.FechaTimbrado, &d.CanceledAt, &d.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &d, nil
}

// Save inserta el documento timbrado.
func (r *CFDIDocumentRepo) Save(ctx context.Context, d *entity.CFDIDocument) error {
	const query = `
		INSERT INTO documentos_cfdi
			(id, sucursal_id, uuid, tipo_de_comprobante, serie, folio,
			 emisor_rfc, receptor_rfc, total, moneda, xml, qr_url,
			 status, fecha_timbrado, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, now())`
	_, err := r.q.Exec(ctx, query,
		d.ID, d.SucursalID, d.UUID, d.TipoDeComprobante, d.Serie, d.Folio,
		d.EmisorRFC, d.ReceptorRFC, d.Total, d.Moneda, d.XML, d.QRURL,
		d.Status, d.FechaTimbrado,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicate
		}
		return fmt.Errorf("insert documentos_cfdi: %w", err)
	}
	return nil
}

// GetByUUID regresa el documento o nil si no existe.
func (r *CFDIDocumentRepo) GetByUUID(ctx context.Context, uuid string) (*entity.CFDIDocument, error) {
	query := `SELECT ` + cfdiDocumentColumns + ` FROM documentos_cfdi WHERE uuid = $1`
	d, err := scanCFDIDocument(r.q.QueryRow(ctx, query, uuid))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get documentos_cfdi: %w", err)
	}
	return d, nil
}

// MarkCanceled actualiza el estado de cancelación del documento.
func (r *CFDIDocumentRepo) MarkCanceled(ctx context.Context, uuid, status, motivo, acuse string, at time.Time) error {
	const query = `
		UPDATE documentos_cfdi
		SET status = $2, motivo_cancelacion = $3, acuse = $4, canceled_at = $5
		WHERE uuid = $1`
	_, err := r.q.Exec(ctx, query, uuid, status, motivo, acuse, at)
	if err != nil {
		return fmt.Errorf("update documentos_cfdi: %w", err)
	}
	return nil
}

// ListBySucursal lista documentos de la sucursal, más reciente primero.
func (r *CFDIDocumentRepo) ListBySucursal(ctx context.Context, sucursalID string, limit, offset int) ([]*entity.CFDIDocument, error) {
	query := `
		SELECT ` + cfdiDocumentColumns + `
		FROM documentos_cfdi
		WHERE sucursal_id = $1
		ORDER BY fecha_timbrado DESC
		LIMIT $2 OFFSET $3`
	rows, err := r.q.Query(ctx, query, sucursalID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("list documentos_cfdi: %w", err)
	}
	defer rows.Close()

	var out []*entity.CFDIDocument
	for rows.Next() {
		d, err := scanCFDIDocument(rows)
		if err != nil {
			return nil, fmt.Errorf("scan documentos_cfdi: %w", err)
		}
		out = append(out, d)
	}
	return out, rows.Err()
}
