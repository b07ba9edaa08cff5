package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/bhrf-oversight-api/internal/models"
)

const facilityColumns = `id, name, bhp_id, requires_review, active, created_at, updated_at`

// FacilityRepository reads facilities. Facility administration lives outside this service.
type FacilityRepository struct {
	db *sqlx.DB
	instrumented
}

// NewFacilityRepository constructs the repository.
func NewFacilityRepository(db *sqlx.DB, observer QueryObserver) *FacilityRepository {
	return &FacilityRepository{db: db, instrumented: instrumented{observer: observer}}
}

// GetByID fetches a facility by identifier.
func (r *FacilityRepository) GetByID(ctx context.Context, id string) (*models.Facility, error) {
	defer r.observe("facility_get", time.Now())
	query := `SELECT ` + facilityColumns + ` FROM facilities WHERE id = $1`
	var facility models.Facility
	if err := r.db.GetContext(ctx, &facility, query, id); err != nil {
		return nil, lookupErr(err)
	}
	return &facility, nil
}

// ListByBHP returns every facility managed by bhpID ordered by name.
func (r *FacilityRepository) ListByBHP(ctx context.Context, bhpID string) ([]models.Facility, error) {
	defer r.observe("facility_list_by_bhp", time.Now())
	query := `SELECT ` + facilityColumns + ` FROM facilities WHERE bhp_id = $1 ORDER BY name`
	var facilities []models.Facility
	if err := r.db.SelectContext(ctx, &facilities, query, bhpID); err != nil {
		return nil, fmt.Errorf("list facilities: %w", err)
	}
	return facilities, nil
}
