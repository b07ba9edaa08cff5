package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/bhrf-oversight-api/internal/models"
)

// AuditLogRepository is the append-only sink for clinical record transitions.
// It exposes no update or delete.
type AuditLogRepository struct {
	db *sqlx.DB
	instrumented
}

// NewAuditLogRepository constructs the repository.
func NewAuditLogRepository(db *sqlx.DB, observer QueryObserver) *AuditLogRepository {
	return &AuditLogRepository{db: db, instrumented: instrumented{observer: observer}}
}

// Append writes entry through exec, which is the caller's transaction when the
// entry must commit together with a state change.
func (r *AuditLogRepository) Append(ctx context.Context, exec sqlx.ExtContext, entry *models.RecordAuditLog) error {
	defer r.observe("audit_append", time.Now())
	if exec == nil {
		exec = r.db
	}
	if entry.ID == "" {
		entry.ID = uuid.NewString()
	}
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = time.Now().UTC()
	}
	const query = `INSERT INTO record_audit_logs
	(id, record_id, facility_id, actor_id, actor_role, action, from_status, to_status, details, created_at)
	VALUES (:id, :record_id, :facility_id, :actor_id, :actor_role, :action, :from_status, :to_status, :details, :created_at)`
	if _, err := sqlx.NamedExecContext(ctx, exec, query, entry); err != nil {
		return fmt.Errorf("append record audit log: %w", err)
	}
	return nil
}

// ListByRecord returns the record's entries oldest first.
func (r *AuditLogRepository) ListByRecord(ctx context.Context, recordID string) ([]models.RecordAuditLog, error) {
	defer r.observe("audit_list", time.Now())
	const query = `SELECT id, record_id, facility_id, actor_id, actor_role, action, from_status, to_status, details, created_at
	FROM record_audit_logs WHERE record_id = $1 ORDER BY created_at ASC, id ASC`
	var entries []models.RecordAuditLog
	if err := r.db.SelectContext(ctx, &entries, query, recordID); err != nil {
		return nil, fmt.Errorf("list record audit logs: %w", err)
	}
	return entries, nil
}
