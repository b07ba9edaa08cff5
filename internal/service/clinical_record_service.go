package service

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/bhrf-oversight-api/internal/dto"
	"github.com/noah-isme/bhrf-oversight-api/internal/models"
	appErrors "github.com/noah-isme/bhrf-oversight-api/pkg/errors"
)

// DefaultDecisionReasonMinLength is the shortest accepted reason for an unfavorable decision.
const DefaultDecisionReasonMinLength = 10

// clinicalRecordStore persists records. The *WithAudit methods append entry in the
// same unit of work and commit nothing when the append fails. UpdateWithAudit
// returns sql.ErrNoRows when the stored status or version no longer match.
type clinicalRecordStore interface {
	GetByID(ctx context.Context, id string) (*models.ClinicalRecord, error)
	List(ctx context.Context, filter models.ClinicalRecordFilter) ([]models.ClinicalRecord, error)
	CreateWithAudit(ctx context.Context, record *models.ClinicalRecord, entry *models.RecordAuditLog) error
	UpdateWithAudit(ctx context.Context, record *models.ClinicalRecord, expectedStatus models.RecordStatus, expectedVersion int, entry *models.RecordAuditLog) error
}

type auditTrailReader interface {
	ListByRecord(ctx context.Context, recordID string) ([]models.RecordAuditLog, error)
}

type transitionMetrics interface {
	ObserveTransition(action models.RecordAction, outcome string)
}

// ClinicalRecordService drives intake and level-of-care records through their lifecycle.
type ClinicalRecordService struct {
	records         clinicalRecordStore
	audit           auditTrailReader
	facilities      facilityGetter
	lifecycle       *RecordLifecycle
	validator       *validator.Validate
	submitValidator *validator.Validate
	metrics         transitionMetrics
	minReason       int
	now             func() time.Time
	logger          *zap.Logger
}

// ClinicalRecordServiceOption configures the service.
type ClinicalRecordServiceOption func(*ClinicalRecordService)

// WithDecisionReasonMinLength overrides the minimum reason length for unfavorable decisions.
func WithDecisionReasonMinLength(n int) ClinicalRecordServiceOption {
	return func(s *ClinicalRecordService) {
		if n > 0 {
			s.minReason = n
		}
	}
}

// WithTransitionMetrics records transition outcomes.
func WithTransitionMetrics(m transitionMetrics) ClinicalRecordServiceOption {
	return func(s *ClinicalRecordService) {
		s.metrics = m
	}
}

// WithRecordClock overrides the clock used to stamp decisions.
func WithRecordClock(now func() time.Time) ClinicalRecordServiceOption {
	return func(s *ClinicalRecordService) {
		if now != nil {
			s.now = now
		}
	}
}

// NewClinicalRecordService constructs the service with defaults.
func NewClinicalRecordService(records clinicalRecordStore, audit auditTrailReader, facilities facilityGetter, logger *zap.Logger, opts ...ClinicalRecordServiceOption) *ClinicalRecordService {
	if logger == nil {
		logger = zap.NewNop()
	}
	svc := &ClinicalRecordService{
		records:         records,
		audit:           audit,
		facilities:      facilities,
		lifecycle:       NewRecordLifecycle(),
		validator:       NewValidator(),
		submitValidator: newSubmitValidator(),
		minReason:       DefaultDecisionReasonMinLength,
		now:             func() time.Time { return time.Now().UTC() },
		logger:          logger,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(svc)
		}
	}
	return svc
}

// Create starts a record from the implicit NONE state with SAVE_DRAFT or SUBMIT.
func (s *ClinicalRecordService) Create(ctx context.Context, actor models.Actor, facilityID string, req dto.CreateRecordRequest) (*models.ClinicalRecord, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, s.reject(req.Action, validationError(err, "invalid clinical record"))
	}
	facility, err := s.facility(ctx, facilityID)
	if err != nil {
		return nil, s.reject(req.Action, err)
	}
	next, err := s.lifecycle.Next(models.RecordStatusNone, req.Action, actor, facility)
	if err != nil {
		return nil, s.reject(req.Action, err)
	}

	record := &models.ClinicalRecord{
		FacilityID: facility.ID,
		Kind:       req.Kind,
		Status:     next,
		DraftStep:  req.DraftStep,
		Content:    normaliseContent(req.Content),
		CreatedBy:  actor.UserID,
		Version:    1,
	}
	if req.Action == models.ActionSubmit {
		if err := s.validateSubmission(record.Kind, record.Content); err != nil {
			return nil, s.reject(req.Action, err)
		}
	}

	entry := s.auditEntry(actor, record, req.Action, models.RecordStatusNone)
	if err := s.records.CreateWithAudit(ctx, record, entry); err != nil {
		s.logger.Error("clinical record create failed", zap.String("facility_id", facility.ID), zap.Error(err))
		return nil, s.reject(req.Action, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create clinical record"))
	}
	s.committed(actor, record, req.Action, models.RecordStatusNone)
	return record, nil
}

// ApplyTransition moves an existing record through one lifecycle action.
func (s *ClinicalRecordService) ApplyTransition(ctx context.Context, actor models.Actor, recordID string, req dto.TransitionRequest) (*models.ClinicalRecord, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, s.reject(req.Action, validationError(err, "invalid transition"))
	}
	current, err := s.load(ctx, recordID)
	if err != nil {
		return nil, s.reject(req.Action, err)
	}
	facility, err := s.facility(ctx, current.FacilityID)
	if err != nil {
		return nil, s.reject(req.Action, err)
	}
	next, err := s.lifecycle.Next(current.Status, req.Action, actor, facility)
	if err != nil {
		return nil, s.reject(req.Action, err)
	}
	if req.ExpectedVersion > 0 && req.ExpectedVersion != current.Version {
		return nil, s.reject(req.Action, appErrors.Clone(appErrors.ErrConflict, "record has been modified since it was read"))
	}

	updated := *current
	updated.Status = next
	if err := s.applyPayload(&updated, actor, req); err != nil {
		return nil, s.reject(req.Action, err)
	}

	entry := s.auditEntry(actor, &updated, req.Action, current.Status)
	if err := s.records.UpdateWithAudit(ctx, &updated, current.Status, current.Version, entry); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, s.reject(req.Action, appErrors.Clone(appErrors.ErrConflict, "record was changed by another request"))
		}
		s.logger.Error("clinical record transition failed",
			zap.String("record_id", current.ID),
			zap.String("action", string(req.Action)),
			zap.Error(err),
		)
		return nil, s.reject(req.Action, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update clinical record"))
	}
	s.committed(actor, &updated, req.Action, current.Status)
	return &updated, nil
}

// applyPayload writes the action's payload onto record.
func (s *ClinicalRecordService) applyPayload(record *models.ClinicalRecord, actor models.Actor, req dto.TransitionRequest) error {
	switch req.Action {
	case models.ActionSaveDraft:
		if req.Content == nil {
			return appErrors.WithFields(appErrors.ErrValidation, "content is required", map[string]string{"content": "is required"})
		}
		record.Content = normaliseContent(*req.Content)
		if req.DraftStep != nil {
			record.DraftStep = *req.DraftStep
		}
	case models.ActionSubmit:
		if req.Content != nil {
			record.Content = normaliseContent(*req.Content)
		}
		if req.DraftStep != nil {
			record.DraftStep = *req.DraftStep
		}
		return s.validateSubmission(record.Kind, record.Content)
	case models.ActionEdit:
		if req.Content == nil {
			return appErrors.WithFields(appErrors.ErrValidation, "content is required", map[string]string{"content": "is required"})
		}
		record.Content = normaliseContent(*req.Content)
		return s.validateSubmission(record.Kind, record.Content)
	case models.ActionApprove, models.ActionApproveConditional, models.ActionDeny:
		if record.Decided() {
			return appErrors.Clone(appErrors.ErrConflict, "record has already been decided")
		}
		reason := strings.TrimSpace(req.Reason)
		if req.Action != models.ActionApprove && len([]rune(reason)) < s.minReason {
			return appErrors.WithFields(appErrors.ErrValidation, "decision reason is too short", map[string]string{
				"reason": "must be at least " + strconv.Itoa(s.minReason) + " characters",
			})
		}
		decidedAt := s.now()
		decidedBy := actor.UserID
		record.DecidedAt = &decidedAt
		record.DecidedBy = &decidedBy
		if reason != "" {
			record.DecisionReason = &reason
		}
	}
	return nil
}

// validateSubmission checks that content is complete enough for a non-draft record.
func (s *ClinicalRecordService) validateSubmission(kind models.RecordKind, content models.ClinicalContent) error {
	fields := make(map[string]string)
	if err := s.submitValidator.Struct(content); err != nil {
		var verrs validator.ValidationErrors
		if !errors.As(err, &verrs) {
			return appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "incomplete clinical record")
		}
		for _, fe := range verrs {
			fields[fieldPath(fe)] = describeTag(fe)
		}
	}
	if kind == models.RecordLevelOfCareAssessment && content.RecommendedLevel == "" {
		fields["recommendedLevel"] = "is required"
	}
	if len(fields) > 0 {
		return appErrors.WithFields(appErrors.ErrValidation, "incomplete clinical record", fields)
	}
	return nil
}

// Get returns one record within the actor's scope.
func (s *ClinicalRecordService) Get(ctx context.Context, actor models.Actor, id string) (*models.ClinicalRecord, error) {
	record, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.authorizeRead(ctx, actor, record.FacilityID); err != nil {
		return nil, err
	}
	return record, nil
}

// List returns the facility's records matching query.
func (s *ClinicalRecordService) List(ctx context.Context, actor models.Actor, facilityID string, query dto.RecordQuery) ([]models.ClinicalRecord, error) {
	if err := s.authorizeRead(ctx, actor, facilityID); err != nil {
		return nil, err
	}
	if query.Kind != "" && !query.Kind.Valid() {
		return nil, appErrors.WithFields(appErrors.ErrValidation, "invalid record kind", map[string]string{"kind": "is not a known record kind"})
	}
	records, err := s.records.List(ctx, models.ClinicalRecordFilter{
		FacilityID: facilityID,
		Status:     query.Status,
		Kind:       query.Kind,
		Limit:      query.Limit,
		Offset:     query.Offset,
	})
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list clinical records")
	}
	return records, nil
}

// AuditTrail returns the record's committed transitions, oldest first.
func (s *ClinicalRecordService) AuditTrail(ctx context.Context, actor models.Actor, id string) ([]models.RecordAuditLog, error) {
	record, err := s.Get(ctx, actor, id)
	if err != nil {
		return nil, err
	}
	entries, err := s.audit.ListByRecord(ctx, record.ID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load audit trail")
	}
	return entries, nil
}

func (s *ClinicalRecordService) authorizeRead(ctx context.Context, actor models.Actor, facilityID string) error {
	facility, err := s.facility(ctx, facilityID)
	if err != nil {
		return err
	}
	if !actor.CanReadFacility(facility) {
		return appErrors.Clone(appErrors.ErrForbidden, "facility is outside your scope")
	}
	return nil
}

func (s *ClinicalRecordService) load(ctx context.Context, id string) (*models.ClinicalRecord, error) {
	record, err := s.records.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "clinical record not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load clinical record")
	}
	return record, nil
}

func (s *ClinicalRecordService) facility(ctx context.Context, id string) (*models.Facility, error) {
	facility, err := s.facilities.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "facility not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load facility")
	}
	return facility, nil
}

// auditEntry summarises a transition without the clinical body.
func (s *ClinicalRecordService) auditEntry(actor models.Actor, record *models.ClinicalRecord, action models.RecordAction, from models.RecordStatus) *models.RecordAuditLog {
	details := map[string]interface{}{
		"subject":   record.Content.ResidentName,
		"kind":      record.Kind,
		"draftStep": record.DraftStep,
	}
	if action.IsDecision() {
		details["reasonProvided"] = record.DecisionReason != nil
	}
	raw, err := json.Marshal(details)
	if err != nil {
		raw = []byte("{}")
	}
	return &models.RecordAuditLog{
		RecordID:   record.ID,
		FacilityID: record.FacilityID,
		ActorID:    actor.UserID,
		ActorRole:  actor.Role,
		Action:     action,
		FromStatus: from,
		ToStatus:   record.Status,
		Details:    models.JSONB(raw),
		CreatedAt:  s.now(),
	}
}

func (s *ClinicalRecordService) committed(actor models.Actor, record *models.ClinicalRecord, action models.RecordAction, from models.RecordStatus) {
	if s.metrics != nil {
		s.metrics.ObserveTransition(action, "committed")
	}
	s.logger.Info("record transition committed",
		zap.String("record_id", record.ID),
		zap.String("facility_id", record.FacilityID),
		zap.String("actor_id", actor.UserID),
		zap.String("action", string(action)),
		zap.String("from", from.String()),
		zap.String("to", record.Status.String()),
		zap.Int("version", record.Version),
	)
}

// reject counts a refused transition by its error code and passes err through.
func (s *ClinicalRecordService) reject(action models.RecordAction, err error) error {
	if s.metrics != nil {
		outcome := "error"
		if appErr := appErrors.FromError(err); appErr != nil {
			outcome = strings.ToLower(appErr.Code)
		}
		s.metrics.ObserveTransition(action, outcome)
	}
	return err
}

func normaliseContent(c models.ClinicalContent) models.ClinicalContent {
	c.ResidentName = strings.TrimSpace(c.ResidentName)
	c.PresentingProblem = strings.TrimSpace(c.PresentingProblem)
	c.Diagnosis = strings.TrimSpace(c.Diagnosis)
	c.ClinicianName = strings.TrimSpace(c.ClinicianName)
	return c
}
