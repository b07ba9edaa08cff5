package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"
)

// RecordKind distinguishes the clinical assessments subject to the lifecycle.
type RecordKind string

const (
	RecordIntakeAssessment      RecordKind = "INTAKE_ASSESSMENT"
	RecordLevelOfCareAssessment RecordKind = "LEVEL_OF_CARE_ASSESSMENT"
)

// Valid reports whether k is a known kind.
func (k RecordKind) Valid() bool {
	return k == RecordIntakeAssessment || k == RecordLevelOfCareAssessment
}

// RecordStatus captures the lifecycle state of a clinical record.
type RecordStatus string

const (
	// RecordStatusNone is the implicit state of a record that does not exist yet.
	RecordStatusNone        RecordStatus = ""
	RecordStatusDraft       RecordStatus = "DRAFT"
	RecordStatusPending     RecordStatus = "PENDING"
	RecordStatusApproved    RecordStatus = "APPROVED"
	RecordStatusConditional RecordStatus = "CONDITIONAL"
	RecordStatusDenied      RecordStatus = "DENIED"
)

// Terminal reports whether s is a final disposition.
func (s RecordStatus) Terminal() bool {
	switch s {
	case RecordStatusApproved, RecordStatusConditional, RecordStatusDenied:
		return true
	}
	return false
}

func (s RecordStatus) String() string {
	if s == RecordStatusNone {
		return "NONE"
	}
	return string(s)
}

// RecordAction is the kind of transition requested on a clinical record.
type RecordAction string

const (
	ActionSaveDraft          RecordAction = "SAVE_DRAFT"
	ActionSubmit             RecordAction = "SUBMIT"
	ActionApprove            RecordAction = "APPROVE"
	ActionApproveConditional RecordAction = "APPROVE_CONDITIONAL"
	ActionDeny               RecordAction = "DENY"
	ActionEdit               RecordAction = "EDIT"
)

// IsDecision reports whether a is one of the decision actions.
func (a RecordAction) IsDecision() bool {
	return a == ActionApprove || a == ActionApproveConditional || a == ActionDeny
}

// ClinicalContent holds the assessment body. Format rules live on the validate tag
// and apply to every save; the submit tag lists fields a final submission requires.
type ClinicalContent struct {
	ResidentName      string `json:"residentName" submit:"required"`
	DateOfBirth       string `json:"dateOfBirth" validate:"omitempty,datetime=2006-01-02" submit:"required"`
	AdmissionDate     string `json:"admissionDate" validate:"omitempty,datetime=2006-01-02" submit:"required"`
	AssessmentDate    string `json:"assessmentDate" validate:"omitempty,datetime=2006-01-02" submit:"required"`
	PresentingProblem string `json:"presentingProblem" submit:"required"`
	Diagnosis         string `json:"diagnosis" submit:"required"`
	RiskAssessment    string `json:"riskAssessment,omitempty" validate:"omitempty,oneof=LOW MODERATE HIGH"`
	RecommendedLevel  string `json:"recommendedLevel,omitempty" validate:"omitempty,oneof=RESIDENTIAL PARTIAL_HOSPITALIZATION INTENSIVE_OUTPATIENT OUTPATIENT"`
	ClinicianName     string `json:"clinicianName" submit:"required"`
	Notes             string `json:"notes,omitempty" validate:"max=10000"`
}

// Value implements driver.Valuer so the content is stored as JSONB.
func (c ClinicalContent) Value() (driver.Value, error) {
	return json.Marshal(c)
}

// Scan implements sql.Scanner.
func (c *ClinicalContent) Scan(src interface{}) error {
	var raw []byte
	switch v := src.(type) {
	case nil:
		*c = ClinicalContent{}
		return nil
	case []byte:
		raw = v
	case string:
		raw = []byte(v)
	default:
		return fmt.Errorf("clinical content: unsupported source %T", src)
	}
	return json.Unmarshal(raw, c)
}

// ClinicalRecord is an intake or level-of-care assessment owned by one facility.
// Decision fields are written once by the decision transition and never reset.
type ClinicalRecord struct {
	ID             string          `db:"id" json:"id"`
	FacilityID     string          `db:"facility_id" json:"facilityId"`
	Kind           RecordKind      `db:"kind" json:"kind"`
	Status         RecordStatus    `db:"status" json:"status"`
	DraftStep      int             `db:"draft_step" json:"draftStep"`
	Content        ClinicalContent `db:"content" json:"content"`
	DecisionReason *string         `db:"decision_reason" json:"decisionReason,omitempty"`
	DecidedAt      *time.Time      `db:"decided_at" json:"decidedAt,omitempty"`
	DecidedBy      *string         `db:"decided_by" json:"decidedBy,omitempty"`
	CreatedBy      string          `db:"created_by" json:"createdBy"`
	Version        int             `db:"version" json:"version"`
	CreatedAt      time.Time       `db:"created_at" json:"createdAt"`
	UpdatedAt      time.Time       `db:"updated_at" json:"updatedAt"`
}

// Decided reports whether the decision fields have been written.
func (r *ClinicalRecord) Decided() bool {
	return r != nil && r.DecidedAt != nil
}

// ClinicalRecordFilter constrains listing queries.
type ClinicalRecordFilter struct {
	FacilityID string
	Status     []RecordStatus
	Kind       RecordKind
	Limit      int
	Offset     int
}
