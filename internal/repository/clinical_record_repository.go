package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/bhrf-oversight-api/internal/models"
)

const clinicalRecordColumns = `id, facility_id, kind, status, draft_step, content, decision_reason, decided_at,
       decided_by, created_by, version, created_at, updated_at`

type auditAppender interface {
	Append(ctx context.Context, exec sqlx.ExtContext, entry *models.RecordAuditLog) error
}

// ClinicalRecordRepository persists clinical records. Every write goes through a
// transaction that also appends the audit entry describing it.
type ClinicalRecordRepository struct {
	db    *sqlx.DB
	audit auditAppender
	instrumented
}

// NewClinicalRecordRepository constructs the repository.
func NewClinicalRecordRepository(db *sqlx.DB, audit auditAppender, observer QueryObserver) *ClinicalRecordRepository {
	return &ClinicalRecordRepository{db: db, audit: audit, instrumented: instrumented{observer: observer}}
}

// GetByID fetches a record by identifier.
func (r *ClinicalRecordRepository) GetByID(ctx context.Context, id string) (*models.ClinicalRecord, error) {
	defer r.observe("clinical_record_get", time.Now())
	query := `SELECT ` + clinicalRecordColumns + ` FROM clinical_records WHERE id = $1`
	var record models.ClinicalRecord
	if err := r.db.GetContext(ctx, &record, query, id); err != nil {
		return nil, lookupErr(err)
	}
	return &record, nil
}

// List returns records matching the filter, latest first.
func (r *ClinicalRecordRepository) List(ctx context.Context, filter models.ClinicalRecordFilter) ([]models.ClinicalRecord, error) {
	defer r.observe("clinical_record_list", time.Now())
	builder := strings.Builder{}
	args := make([]interface{}, 0, 4)
	builder.WriteString(`SELECT ` + clinicalRecordColumns + ` FROM clinical_records`)

	conditions := make([]string, 0, 3)
	if filter.FacilityID != "" {
		args = append(args, filter.FacilityID)
		conditions = append(conditions, fmt.Sprintf("facility_id = $%d", len(args)))
	}
	if len(filter.Status) > 0 {
		placeholders := make([]string, len(filter.Status))
		for i, status := range filter.Status {
			args = append(args, status)
			placeholders[i] = fmt.Sprintf("$%d", len(args))
		}
		conditions = append(conditions, fmt.Sprintf("status IN (%s)", strings.Join(placeholders, ",")))
	}
	if filter.Kind != "" {
		args = append(args, filter.Kind)
		conditions = append(conditions, fmt.Sprintf("kind = $%d", len(args)))
	}
	if len(conditions) > 0 {
		builder.WriteString(" WHERE ")
		builder.WriteString(strings.Join(conditions, " AND "))
	}
	builder.WriteString(" ORDER BY updated_at DESC")

	limit := filter.Limit
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	offset := filter.Offset
	if offset < 0 {
		offset = 0
	}
	builder.WriteString(fmt.Sprintf(" LIMIT %d OFFSET %d", limit, offset))

	var records []models.ClinicalRecord
	if err := r.db.SelectContext(ctx, &records, builder.String(), args...); err != nil {
		return nil, fmt.Errorf("list clinical records: %w", err)
	}
	return records, nil
}

// CreateWithAudit inserts record and its first audit entry in one transaction.
func (r *ClinicalRecordRepository) CreateWithAudit(ctx context.Context, record *models.ClinicalRecord, entry *models.RecordAuditLog) error {
	defer r.observe("clinical_record_create", time.Now())
	if record.ID == "" {
		record.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	record.CreatedAt = now
	record.UpdatedAt = now
	if record.Version == 0 {
		record.Version = 1
	}
	entry.RecordID = record.ID

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin clinical record transaction: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	const query = `INSERT INTO clinical_records
	(id, facility_id, kind, status, draft_step, content, decision_reason, decided_at, decided_by, created_by, version, created_at, updated_at)
	VALUES (:id, :facility_id, :kind, :status, :draft_step, :content, :decision_reason, :decided_at, :decided_by, :created_by, :version, :created_at, :updated_at)`
	if _, err := tx.NamedExecContext(ctx, query, record); err != nil {
		return fmt.Errorf("create clinical record: %w", err)
	}
	if err := r.audit.Append(ctx, tx, entry); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit clinical record: %w", err)
	}
	return nil
}

// UpdateWithAudit writes record only if the stored row still has expectedStatus
// and expectedVersion, bumping the version, and appends entry in the same
// transaction. A stale guard returns sql.ErrNoRows.
func (r *ClinicalRecordRepository) UpdateWithAudit(ctx context.Context, record *models.ClinicalRecord, expectedStatus models.RecordStatus, expectedVersion int, entry *models.RecordAuditLog) error {
	defer r.observe("clinical_record_update", time.Now())
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin clinical record transaction: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	updatedAt := time.Now().UTC()
	const query = `UPDATE clinical_records SET status = $1, draft_step = $2, content = $3, decision_reason = $4,
	decided_at = $5, decided_by = $6, version = version + 1, updated_at = $7
	WHERE id = $8 AND status = $9 AND version = $10`
	result, err := tx.ExecContext(ctx, query,
		record.Status,
		record.DraftStep,
		record.Content,
		record.DecisionReason,
		record.DecidedAt,
		record.DecidedBy,
		updatedAt,
		record.ID,
		expectedStatus,
		expectedVersion,
	)
	if err != nil {
		return fmt.Errorf("update clinical record: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("check clinical record update rows: %w", err)
	}
	if rows == 0 {
		return sql.ErrNoRows
	}
	if err := r.audit.Append(ctx, tx, entry); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit clinical record: %w", err)
	}
	record.Version = expectedVersion + 1
	record.UpdatedAt = updatedAt
	return nil
}
