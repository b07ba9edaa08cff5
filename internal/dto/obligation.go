package dto

import "github.com/noah-isme/bhrf-oversight-api/internal/models"

// ObligationRecordRequest is the payload for recording or correcting proof of a
// recurring obligation. Either PerformedOn or the kind's period fields locate it.
type ObligationRecordRequest struct {
	Kind        models.ObligationKind `json:"kind" validate:"required,oneof=FIRE_DRILL EVACUATION_DRILL DISASTER_DRILL OVERSIGHT_TRAINING"`
	Shift       models.Shift          `json:"shift" validate:"omitempty,oneof=AM PM"`
	Month       *int                  `json:"month" validate:"omitempty,min=1,max=12"`
	Quarter     *int                  `json:"quarter" validate:"omitempty,min=1,max=4"`
	BiWeek      *int                  `json:"biWeek" validate:"omitempty,min=0,max=26"`
	Year        int                   `json:"year" validate:"omitempty,min=2000,max=2100"`
	PerformedOn string                `json:"performedOn" validate:"omitempty,datetime=2006-01-02"`
	Notes       string                `json:"notes" validate:"max=2000"`
}

// ObligationQuery mirrors supported listing filters.
type ObligationQuery struct {
	Kind   models.ObligationKind
	Year   int
	Limit  int
	Offset int
}
