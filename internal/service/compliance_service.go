package service

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/bhrf-oversight-api/internal/models"
	appErrors "github.com/noah-isme/bhrf-oversight-api/pkg/errors"
)

type facilityReader interface {
	GetByID(ctx context.Context, id string) (*models.Facility, error)
	ListByBHP(ctx context.Context, bhpID string) ([]models.Facility, error)
}

type obligationReader interface {
	List(ctx context.Context, filter models.ObligationFilter) ([]models.ObligationRecord, error)
}

type documentReader interface {
	ListByFacility(ctx context.Context, facilityID string, ownerType models.DocumentOwnerType) ([]models.Document, error)
}

type complianceMetrics interface {
	ObserveCompliance(status models.ComplianceStatus)
}

// ComplianceService loads a facility's current records and documents and hands
// them to the aggregator. Results are recomputed on every call.
type ComplianceService struct {
	facilities  facilityReader
	obligations obligationReader
	documents   documentReader
	aggregator  *ComplianceAggregator
	metrics     complianceMetrics
	logger      *zap.Logger
}

// ComplianceServiceParams groups constructor dependencies.
type ComplianceServiceParams struct {
	Facilities  facilityReader
	Obligations obligationReader
	Documents   documentReader
	Aggregator  *ComplianceAggregator
	Metrics     complianceMetrics
	Logger      *zap.Logger
}

// NewComplianceService constructs a ComplianceService.
func NewComplianceService(params ComplianceServiceParams) *ComplianceService {
	logger := params.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	aggregator := params.Aggregator
	if aggregator == nil {
		aggregator = NewComplianceAggregator(nil, nil)
	}
	return &ComplianceService{
		facilities:  params.Facilities,
		obligations: params.Obligations,
		documents:   params.Documents,
		aggregator:  aggregator,
		metrics:     params.Metrics,
		logger:      logger,
	}
}

// GetComplianceStatus returns the facility's compliance verdict at now.
func (s *ComplianceService) GetComplianceStatus(ctx context.Context, actor models.Actor, facilityID string, now time.Time) (*models.ComplianceStatus, error) {
	facility, err := s.loadFacility(ctx, actor, facilityID)
	if err != nil {
		return nil, err
	}
	status, err := s.evaluate(ctx, facility, now)
	if err != nil {
		return nil, err
	}
	return &status, nil
}

// Portfolio evaluates every active facility managed by bhpID. BHP users always
// see their own portfolio; admins must name one.
func (s *ComplianceService) Portfolio(ctx context.Context, actor models.Actor, bhpID string, now time.Time) ([]models.ComplianceStatus, error) {
	switch actor.Role {
	case models.RoleBHP:
		if bhpID != "" && bhpID != actor.BHPID {
			return nil, appErrors.Clone(appErrors.ErrForbidden, "portfolio belongs to another authority")
		}
		bhpID = actor.BHPID
	case models.RoleAdmin:
		if bhpID == "" {
			return nil, appErrors.WithFields(appErrors.ErrValidation, "bhpId is required", map[string]string{"bhpId": "is required"})
		}
	default:
		return nil, appErrors.ErrForbidden
	}

	facilities, err := s.facilities.ListByBHP(ctx, bhpID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list facilities")
	}
	result := make([]models.ComplianceStatus, 0, len(facilities))
	for i := range facilities {
		if !facilities[i].Active {
			continue
		}
		status, err := s.evaluate(ctx, &facilities[i], now)
		if err != nil {
			return nil, err
		}
		result = append(result, status)
	}
	return result, nil
}

// Schedule describes the current reporting window of each obligation.
func (s *ComplianceService) Schedule(ctx context.Context, actor models.Actor, facilityID string, now time.Time) ([]models.ObligationWindow, error) {
	facility, err := s.loadFacility(ctx, actor, facilityID)
	if err != nil {
		return nil, err
	}
	records, err := s.currentRecords(ctx, facility.ID, now)
	if err != nil {
		return nil, err
	}
	return s.aggregator.Schedule(*facility, records, now), nil
}

// DocumentStatuses classifies documents of the given owner type (all types when empty).
func (s *ComplianceService) DocumentStatuses(ctx context.Context, actor models.Actor, facilityID string, ownerType models.DocumentOwnerType, now time.Time) ([]models.DocumentClassification, error) {
	if ownerType != "" && !ownerType.Valid() {
		return nil, appErrors.WithFields(appErrors.ErrValidation, "invalid owner type", map[string]string{"ownerType": "must be FACILITY, EMPLOYEE or RESIDENT"})
	}
	facility, err := s.loadFacility(ctx, actor, facilityID)
	if err != nil {
		return nil, err
	}
	docs, err := s.documents.ListByFacility(ctx, facility.ID, ownerType)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load documents")
	}
	result := make([]models.DocumentClassification, 0, len(docs))
	for _, doc := range docs {
		result = append(result, models.DocumentClassification{
			Document: doc,
			State:    s.aggregator.Classify(doc.Artifact(), now),
		})
	}
	return result, nil
}

// ClassifyExpiration classifies a single artifact at now.
func (s *ComplianceService) ClassifyExpiration(artifact models.Artifact, now time.Time) models.ExpirationState {
	return s.aggregator.Classify(artifact, now)
}

func (s *ComplianceService) evaluate(ctx context.Context, facility *models.Facility, now time.Time) (models.ComplianceStatus, error) {
	records, err := s.currentRecords(ctx, facility.ID, now)
	if err != nil {
		return models.ComplianceStatus{}, err
	}
	docs, err := s.documents.ListByFacility(ctx, facility.ID, models.OwnerFacility)
	if err != nil {
		return models.ComplianceStatus{}, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load documents")
	}
	status := s.aggregator.Evaluate(*facility, records, docs, now)
	if s.metrics != nil {
		s.metrics.ObserveCompliance(status)
	}
	if !status.InCompliance {
		s.logger.Debug("facility out of compliance",
			zap.String("facility_id", facility.ID),
			zap.Int("document_issues", len(status.DocumentIssues)),
			zap.Int("obligation_issues", len(status.ObligationIssues)),
		)
	}
	return status, nil
}

// currentRecords loads the records of the year containing now. Every window lies
// inside one calendar year, so older rows can never count.
func (s *ComplianceService) currentRecords(ctx context.Context, facilityID string, now time.Time) ([]models.ObligationRecord, error) {
	period := s.aggregator.Period(now)
	records, err := s.obligations.List(ctx, models.ObligationFilter{FacilityID: facilityID, Year: period.Year})
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load obligation records")
	}
	return records, nil
}

func (s *ComplianceService) loadFacility(ctx context.Context, actor models.Actor, facilityID string) (*models.Facility, error) {
	facility, err := s.facilities.GetByID(ctx, facilityID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "facility not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load facility")
	}
	if !actor.CanReadFacility(facility) {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "facility is outside your scope")
	}
	return facility, nil
}
