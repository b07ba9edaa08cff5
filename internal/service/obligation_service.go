package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/bhrf-oversight-api/internal/dto"
	"github.com/noah-isme/bhrf-oversight-api/internal/models"
	appErrors "github.com/noah-isme/bhrf-oversight-api/pkg/errors"
)

type obligationStore interface {
	Create(ctx context.Context, record *models.ObligationRecord) error
	GetByID(ctx context.Context, id string) (*models.ObligationRecord, error)
	List(ctx context.Context, filter models.ObligationFilter) ([]models.ObligationRecord, error)
	Update(ctx context.Context, record *models.ObligationRecord) error
}

type facilityGetter interface {
	GetByID(ctx context.Context, id string) (*models.Facility, error)
}

// ObligationService records proof-of-performance rows submitted by facility staff.
// Rows are append-only apart from administrative corrections.
type ObligationService struct {
	repo       obligationStore
	facilities facilityGetter
	resolver   *PeriodResolver
	validator  *validator.Validate
	logger     *zap.Logger
}

// NewObligationService constructs the service.
func NewObligationService(repo obligationStore, facilities facilityGetter, resolver *PeriodResolver, validate *validator.Validate, logger *zap.Logger) *ObligationService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if validate == nil {
		validate = NewValidator()
	}
	if resolver == nil {
		resolver = NewPeriodResolver(time.UTC)
	}
	return &ObligationService{repo: repo, facilities: facilities, resolver: resolver, validator: validate, logger: logger}
}

// Record stores a new obligation record for the facility.
func (s *ObligationService) Record(ctx context.Context, actor models.Actor, facilityID string, req dto.ObligationRecordRequest) (*models.ObligationRecord, error) {
	facility, err := s.facility(ctx, facilityID)
	if err != nil {
		return nil, err
	}
	if !actor.StaffOf(facility) && actor.Role != models.RoleAdmin {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "only facility staff may record obligations")
	}
	record, err := s.normalise(req)
	if err != nil {
		return nil, err
	}
	record.FacilityID = facility.ID
	record.CreatedBy = actor.UserID
	if err := s.repo.Create(ctx, record); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create obligation record")
	}
	s.logger.Info("obligation recorded",
		zap.String("facility_id", record.FacilityID),
		zap.String("kind", string(record.Kind)),
		zap.Int("year", record.Year),
	)
	return record, nil
}

// List returns the facility's obligation records.
func (s *ObligationService) List(ctx context.Context, actor models.Actor, facilityID string, query dto.ObligationQuery) ([]models.ObligationRecord, error) {
	facility, err := s.facility(ctx, facilityID)
	if err != nil {
		return nil, err
	}
	if !actor.CanReadFacility(facility) {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "facility is outside your scope")
	}
	if query.Kind != "" && !query.Kind.Valid() {
		return nil, appErrors.WithFields(appErrors.ErrValidation, "invalid obligation kind", map[string]string{"kind": "is not a known obligation kind"})
	}
	limit := query.Limit
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	records, err := s.repo.List(ctx, models.ObligationFilter{
		FacilityID: facility.ID,
		Kind:       query.Kind,
		Year:       query.Year,
		Limit:      limit,
		Offset:     query.Offset,
	})
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list obligation records")
	}
	return records, nil
}

// Correct rewrites an existing record. Only the managing authority or an admin may correct.
func (s *ObligationService) Correct(ctx context.Context, actor models.Actor, id string, req dto.ObligationRecordRequest) (*models.ObligationRecord, error) {
	existing, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "obligation record not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load obligation record")
	}
	facility, err := s.facility(ctx, existing.FacilityID)
	if err != nil {
		return nil, err
	}
	if !actor.Manages(facility) && actor.Role != models.RoleAdmin {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "only the managing authority may correct obligation records")
	}
	corrected, err := s.normalise(req)
	if err != nil {
		return nil, err
	}
	corrected.ID = existing.ID
	corrected.FacilityID = existing.FacilityID
	corrected.CreatedBy = existing.CreatedBy
	corrected.CreatedAt = existing.CreatedAt
	corrected.CorrectedBy = &actor.UserID
	if err := s.repo.Update(ctx, corrected); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "obligation record not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to correct obligation record")
	}
	s.logger.Info("obligation corrected", zap.String("id", corrected.ID), zap.String("actor_id", actor.UserID))
	return corrected, nil
}

// normalise validates req and fills the period fields appropriate to its kind.
func (s *ObligationService) normalise(req dto.ObligationRecordRequest) (*models.ObligationRecord, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, validationError(err, "invalid obligation record")
	}
	fields := make(map[string]string)
	record := &models.ObligationRecord{Kind: req.Kind, Notes: strings.TrimSpace(req.Notes), Year: req.Year}

	if req.Kind.RequiresShift() {
		if req.Shift == "" {
			fields["shift"] = "is required"
		} else {
			shift := req.Shift
			record.Shift = &shift
		}
	} else if req.Shift != "" {
		fields["shift"] = fmt.Sprintf("is not applicable to %s", req.Kind)
	}

	if req.PerformedOn != "" {
		// performedOn is a calendar date in the reference timezone, not a UTC instant.
		performed, err := time.ParseInLocation(dateLayout, req.PerformedOn, s.resolver.Location())
		if err != nil {
			fields["performedOn"] = "must be a date formatted as 2006-01-02"
		} else {
			derived := s.resolver.Resolve(performed)
			date := s.resolver.Date(performed)
			record.PerformedOn = &date
			derivePeriodFields(req, derived, record, fields)
		}
	} else {
		explicitPeriodFields(req, record, fields)
	}

	if len(fields) > 0 {
		return nil, appErrors.WithFields(appErrors.ErrValidation, "invalid obligation record", fields)
	}
	return record, nil
}

func derivePeriodFields(req dto.ObligationRecordRequest, p models.Period, record *models.ObligationRecord, fields map[string]string) {
	if req.Year != 0 && req.Year != p.Year {
		fields["year"] = "does not match performedOn"
	}
	record.Year = p.Year
	switch req.Kind {
	case models.ObligationFireDrill:
		month := int(p.Month)
		if req.Month != nil && *req.Month != month {
			fields["month"] = "does not match performedOn"
		}
		record.Month = &month
	case models.ObligationEvacuationDrill, models.ObligationDisasterDrill:
		quarter := int(p.Quarter)
		if req.Quarter != nil && *req.Quarter != quarter {
			fields["quarter"] = "does not match performedOn"
		}
		record.Quarter = &quarter
	case models.ObligationOversightTraining:
		biWeek := p.BiWeek
		if req.BiWeek != nil && *req.BiWeek != biWeek {
			fields["biWeek"] = "does not match performedOn"
		}
		record.BiWeek = &biWeek
		record.Year = p.BiWeekYear
	}
	rejectForeignPeriodFields(req, fields)
}

func explicitPeriodFields(req dto.ObligationRecordRequest, record *models.ObligationRecord, fields map[string]string) {
	if req.Year == 0 {
		fields["year"] = "is required when performedOn is omitted"
	}
	switch req.Kind {
	case models.ObligationFireDrill:
		if req.Month == nil {
			fields["month"] = "is required for FIRE_DRILL"
		}
		record.Month = copyInt(req.Month)
	case models.ObligationEvacuationDrill, models.ObligationDisasterDrill:
		if req.Quarter == nil {
			fields["quarter"] = fmt.Sprintf("is required for %s", req.Kind)
		}
		record.Quarter = copyInt(req.Quarter)
	case models.ObligationOversightTraining:
		if req.BiWeek == nil {
			fields["biWeek"] = "is required for OVERSIGHT_TRAINING"
		}
		record.BiWeek = copyInt(req.BiWeek)
	}
	rejectForeignPeriodFields(req, fields)
}

// rejectForeignPeriodFields refuses period fields that belong to another kind.
func rejectForeignPeriodFields(req dto.ObligationRecordRequest, fields map[string]string) {
	notApplicable := fmt.Sprintf("is not applicable to %s", req.Kind)
	if req.Month != nil && req.Kind != models.ObligationFireDrill {
		fields["month"] = notApplicable
	}
	if req.Quarter != nil && req.Kind != models.ObligationEvacuationDrill && req.Kind != models.ObligationDisasterDrill {
		fields["quarter"] = notApplicable
	}
	if req.BiWeek != nil && req.Kind != models.ObligationOversightTraining {
		fields["biWeek"] = notApplicable
	}
}

func (s *ObligationService) facility(ctx context.Context, id string) (*models.Facility, error) {
	facility, err := s.facilities.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "facility not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load facility")
	}
	return facility, nil
}

func copyInt(v *int) *int {
	if v == nil {
		return nil
	}
	c := *v
	return &c
}
