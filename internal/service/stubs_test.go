package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/noah-isme/bhrf-oversight-api/internal/models"
)

type facilityRepoStub struct {
	facilities map[string]*models.Facility
}

func newFacilityRepoStub(facilities ...models.Facility) *facilityRepoStub {
	stub := &facilityRepoStub{facilities: make(map[string]*models.Facility)}
	for i := range facilities {
		f := facilities[i]
		stub.facilities[f.ID] = &f
	}
	return stub
}

func (s *facilityRepoStub) GetByID(ctx context.Context, id string) (*models.Facility, error) {
	if f, ok := s.facilities[id]; ok {
		copy := *f
		return &copy, nil
	}
	return nil, sql.ErrNoRows
}

func (s *facilityRepoStub) ListByBHP(ctx context.Context, bhpID string) ([]models.Facility, error) {
	var result []models.Facility
	for _, f := range s.facilities {
		if f.BHPID == bhpID {
			result = append(result, *f)
		}
	}
	return result, nil
}

// recordStoreStub mimics the status and version guard of the SQL repository.
type recordStoreStub struct {
	mu       sync.Mutex
	records  map[string]*models.ClinicalRecord
	audit    []models.RecordAuditLog
	auditErr error
	seq      int
}

func newRecordStoreStub() *recordStoreStub {
	return &recordStoreStub{records: make(map[string]*models.ClinicalRecord)}
}

func (s *recordStoreStub) put(record models.ClinicalRecord) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.records[record.ID] = &record
}

func (s *recordStoreStub) GetByID(ctx context.Context, id string) (*models.ClinicalRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if r, ok := s.records[id]; ok {
		copy := *r
		return &copy, nil
	}
	return nil, sql.ErrNoRows
}

func (s *recordStoreStub) List(ctx context.Context, filter models.ClinicalRecordFilter) ([]models.ClinicalRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var result []models.ClinicalRecord
	for _, r := range s.records {
		if r.FacilityID == filter.FacilityID {
			result = append(result, *r)
		}
	}
	return result, nil
}

func (s *recordStoreStub) CreateWithAudit(ctx context.Context, record *models.ClinicalRecord, entry *models.RecordAuditLog) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.auditErr != nil {
		return s.auditErr
	}
	s.seq++
	record.ID = fmt.Sprintf("rec-%d", s.seq)
	record.CreatedAt = time.Now().UTC()
	record.UpdatedAt = record.CreatedAt
	entry.RecordID = record.ID
	copy := *record
	s.records[record.ID] = &copy
	s.audit = append(s.audit, *entry)
	return nil
}

func (s *recordStoreStub) UpdateWithAudit(ctx context.Context, record *models.ClinicalRecord, expectedStatus models.RecordStatus, expectedVersion int, entry *models.RecordAuditLog) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	stored, ok := s.records[record.ID]
	if !ok || stored.Status != expectedStatus || stored.Version != expectedVersion {
		return sql.ErrNoRows
	}
	if s.auditErr != nil {
		return s.auditErr
	}
	record.Version = expectedVersion + 1
	record.UpdatedAt = time.Now().UTC()
	copy := *record
	s.records[record.ID] = &copy
	s.audit = append(s.audit, *entry)
	return nil
}

func (s *recordStoreStub) ListByRecord(ctx context.Context, recordID string) ([]models.RecordAuditLog, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var result []models.RecordAuditLog
	for _, e := range s.audit {
		if e.RecordID == recordID {
			result = append(result, e)
		}
	}
	return result, nil
}

func (s *recordStoreStub) auditCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.audit)
}

var errAuditUnavailable = errors.New("audit sink unavailable")

type obligationRepoStub struct {
	records map[string]*models.ObligationRecord
	filter  models.ObligationFilter
	seq     int
}

func newObligationRepoStub(records ...models.ObligationRecord) *obligationRepoStub {
	stub := &obligationRepoStub{records: make(map[string]*models.ObligationRecord)}
	for i := range records {
		r := records[i]
		if r.ID == "" {
			stub.seq++
			r.ID = fmt.Sprintf("obl-%d", stub.seq)
		}
		stub.records[r.ID] = &r
	}
	return stub
}

func (s *obligationRepoStub) Create(ctx context.Context, record *models.ObligationRecord) error {
	s.seq++
	record.ID = fmt.Sprintf("obl-%d", s.seq)
	copy := *record
	s.records[record.ID] = &copy
	return nil
}

func (s *obligationRepoStub) GetByID(ctx context.Context, id string) (*models.ObligationRecord, error) {
	if r, ok := s.records[id]; ok {
		copy := *r
		return &copy, nil
	}
	return nil, sql.ErrNoRows
}

func (s *obligationRepoStub) List(ctx context.Context, filter models.ObligationFilter) ([]models.ObligationRecord, error) {
	s.filter = filter
	var result []models.ObligationRecord
	for _, r := range s.records {
		if r.FacilityID != filter.FacilityID {
			continue
		}
		if filter.Year != 0 && r.Year != filter.Year {
			continue
		}
		if filter.Kind != "" && r.Kind != filter.Kind {
			continue
		}
		result = append(result, *r)
	}
	return result, nil
}

func (s *obligationRepoStub) Update(ctx context.Context, record *models.ObligationRecord) error {
	if _, ok := s.records[record.ID]; !ok {
		return sql.ErrNoRows
	}
	copy := *record
	s.records[record.ID] = &copy
	return nil
}

type documentRepoStub struct {
	docs []models.Document
}

func (s *documentRepoStub) ListByFacility(ctx context.Context, facilityID string, ownerType models.DocumentOwnerType) ([]models.Document, error) {
	var result []models.Document
	for _, d := range s.docs {
		if d.FacilityID != facilityID {
			continue
		}
		if ownerType != "" && d.OwnerType != ownerType {
			continue
		}
		result = append(result, d)
	}
	return result, nil
}

type transitionMetricsStub struct {
	mu       sync.Mutex
	outcomes map[string]int
}

func (m *transitionMetricsStub) ObserveTransition(action models.RecordAction, outcome string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.outcomes == nil {
		m.outcomes = make(map[string]int)
	}
	m.outcomes[string(action)+":"+outcome]++
}
