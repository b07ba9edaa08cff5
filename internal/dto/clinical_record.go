package dto

import "github.com/noah-isme/bhrf-oversight-api/internal/models"

// CreateRecordRequest starts a clinical record either as a draft or as a submission.
type CreateRecordRequest struct {
	Kind      models.RecordKind      `json:"kind" validate:"required,oneof=INTAKE_ASSESSMENT LEVEL_OF_CARE_ASSESSMENT"`
	Action    models.RecordAction    `json:"action" validate:"required,oneof=SAVE_DRAFT SUBMIT"`
	DraftStep int                    `json:"draftStep" validate:"min=0,max=50"`
	Content   models.ClinicalContent `json:"content"`
}

// TransitionRequest applies one lifecycle action to an existing record.
// Content is required for SAVE_DRAFT, SUBMIT and EDIT; Reason for unfavorable decisions.
type TransitionRequest struct {
	Action          models.RecordAction     `json:"action" validate:"required,oneof=SAVE_DRAFT SUBMIT APPROVE APPROVE_CONDITIONAL DENY EDIT"`
	ExpectedVersion int                     `json:"expectedVersion" validate:"min=0"`
	DraftStep       *int                    `json:"draftStep" validate:"omitempty,min=0,max=50"`
	Content         *models.ClinicalContent `json:"content"`
	Reason          string                  `json:"reason" validate:"max=4000"`
}

// RecordQuery mirrors supported listing filters.
type RecordQuery struct {
	Status []models.RecordStatus
	Kind   models.RecordKind
	Limit  int
	Offset int
}
