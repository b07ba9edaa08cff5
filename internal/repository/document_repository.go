package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/bhrf-oversight-api/internal/models"
)

// DocumentRepository reads document metadata. Uploads are handled by the file service.
type DocumentRepository struct {
	db *sqlx.DB
	instrumented
}

// NewDocumentRepository constructs the repository.
func NewDocumentRepository(db *sqlx.DB, observer QueryObserver) *DocumentRepository {
	return &DocumentRepository{db: db, instrumented: instrumented{observer: observer}}
}

// ListByFacility returns the facility's documents, optionally restricted to one owner type.
func (r *DocumentRepository) ListByFacility(ctx context.Context, facilityID string, ownerType models.DocumentOwnerType) ([]models.Document, error) {
	defer r.observe("document_list", time.Now())
	query := `SELECT id, facility_id, owner_type, owner_id, name, status, file_key, expires_at, created_at, updated_at
	FROM documents WHERE facility_id = $1`
	args := []interface{}{facilityID}
	if ownerType != "" {
		query += ` AND owner_type = $2`
		args = append(args, ownerType)
	}
	query += ` ORDER BY owner_type, name`

	var documents []models.Document
	if err := r.db.SelectContext(ctx, &documents, query, args...); err != nil {
		return nil, fmt.Errorf("list documents: %w", err)
	}
	return documents, nil
}
