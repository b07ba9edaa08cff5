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

const obligationColumns = `id, facility_id, kind, shift, month, quarter, bi_week, year, performed_on, notes,
       created_by, corrected_by, created_at, updated_at`

// ObligationRepository persists obligation proof records.
type ObligationRepository struct {
	db *sqlx.DB
	instrumented
}

// NewObligationRepository constructs the repository.
func NewObligationRepository(db *sqlx.DB, observer QueryObserver) *ObligationRepository {
	return &ObligationRepository{db: db, instrumented: instrumented{observer: observer}}
}

// Create inserts a new obligation record.
func (r *ObligationRepository) Create(ctx context.Context, record *models.ObligationRecord) error {
	defer r.observe("obligation_create", time.Now())
	if record.ID == "" {
		record.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if record.CreatedAt.IsZero() {
		record.CreatedAt = now
	}
	record.UpdatedAt = now
	const query = `INSERT INTO obligation_records
	(id, facility_id, kind, shift, month, quarter, bi_week, year, performed_on, notes, created_by, corrected_by, created_at, updated_at)
	VALUES (:id, :facility_id, :kind, :shift, :month, :quarter, :bi_week, :year, :performed_on, :notes, :created_by, :corrected_by, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, record); err != nil {
		return fmt.Errorf("create obligation record: %w", err)
	}
	return nil
}

// GetByID fetches an obligation record by identifier.
func (r *ObligationRepository) GetByID(ctx context.Context, id string) (*models.ObligationRecord, error) {
	defer r.observe("obligation_get", time.Now())
	query := `SELECT ` + obligationColumns + ` FROM obligation_records WHERE id = $1`
	var record models.ObligationRecord
	if err := r.db.GetContext(ctx, &record, query, id); err != nil {
		return nil, lookupErr(err)
	}
	return &record, nil
}

// List returns records matching the filter, oldest first. A non-positive limit
// returns every match so evaluations see the whole year.
func (r *ObligationRepository) List(ctx context.Context, filter models.ObligationFilter) ([]models.ObligationRecord, error) {
	defer r.observe("obligation_list", time.Now())
	builder := strings.Builder{}
	args := make([]interface{}, 0, 3)
	builder.WriteString(`SELECT ` + obligationColumns + ` FROM obligation_records`)

	conditions := make([]string, 0, 3)
	if filter.FacilityID != "" {
		args = append(args, filter.FacilityID)
		conditions = append(conditions, fmt.Sprintf("facility_id = $%d", len(args)))
	}
	if filter.Kind != "" {
		args = append(args, filter.Kind)
		conditions = append(conditions, fmt.Sprintf("kind = $%d", len(args)))
	}
	if filter.Year != 0 {
		args = append(args, filter.Year)
		conditions = append(conditions, fmt.Sprintf("year = $%d", len(args)))
	}
	if len(conditions) > 0 {
		builder.WriteString(" WHERE ")
		builder.WriteString(strings.Join(conditions, " AND "))
	}
	builder.WriteString(" ORDER BY created_at ASC")

	if filter.Limit > 0 {
		limit := filter.Limit
		if limit > 500 {
			limit = 500
		}
		offset := filter.Offset
		if offset < 0 {
			offset = 0
		}
		builder.WriteString(fmt.Sprintf(" LIMIT %d OFFSET %d", limit, offset))
	}

	var records []models.ObligationRecord
	if err := r.db.SelectContext(ctx, &records, builder.String(), args...); err != nil {
		return nil, fmt.Errorf("list obligation records: %w", err)
	}
	return records, nil
}

// Update rewrites the mutable columns of a record.
func (r *ObligationRepository) Update(ctx context.Context, record *models.ObligationRecord) error {
	defer r.observe("obligation_update", time.Now())
	record.UpdatedAt = time.Now().UTC()
	const query = `UPDATE obligation_records SET kind = :kind, shift = :shift, month = :month, quarter = :quarter,
	bi_week = :bi_week, year = :year, performed_on = :performed_on, notes = :notes, corrected_by = :corrected_by,
	updated_at = :updated_at WHERE id = :id`
	result, err := r.db.NamedExecContext(ctx, query, record)
	if err != nil {
		return fmt.Errorf("update obligation record: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("check obligation update rows: %w", err)
	}
	if rows == 0 {
		return sql.ErrNoRows
	}
	return nil
}
