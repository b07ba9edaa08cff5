package models

import "time"

// ObligationKind enumerates recurring regulatory requirements.
type ObligationKind string

const (
	ObligationFireDrill         ObligationKind = "FIRE_DRILL"
	ObligationEvacuationDrill   ObligationKind = "EVACUATION_DRILL"
	ObligationDisasterDrill     ObligationKind = "DISASTER_DRILL"
	ObligationOversightTraining ObligationKind = "OVERSIGHT_TRAINING"
)

// ObligationKinds lists every kind in evaluation order.
var ObligationKinds = []ObligationKind{
	ObligationFireDrill,
	ObligationEvacuationDrill,
	ObligationDisasterDrill,
	ObligationOversightTraining,
}

// Valid reports whether k is a known kind.
func (k ObligationKind) Valid() bool {
	for _, known := range ObligationKinds {
		if k == known {
			return true
		}
	}
	return false
}

// Label returns a human readable name.
func (k ObligationKind) Label() string {
	switch k {
	case ObligationFireDrill:
		return "Fire drill"
	case ObligationEvacuationDrill:
		return "Evacuation drill"
	case ObligationDisasterDrill:
		return "Disaster drill"
	case ObligationOversightTraining:
		return "Oversight training"
	}
	return string(k)
}

// RequiresShift reports whether records of this kind carry an AM/PM shift.
func (k ObligationKind) RequiresShift() bool {
	return k != ObligationOversightTraining
}

// Shift is the staffing shift a drill was performed on.
type Shift string

const (
	ShiftAM Shift = "AM"
	ShiftPM Shift = "PM"
)

// Valid reports whether s is a known shift.
func (s Shift) Valid() bool {
	return s == ShiftAM || s == ShiftPM
}

// ObligationRecord is a submitted proof of performance for one recurring requirement.
// Only the period fields matching Kind are set: Month for fire drills, Quarter for
// evacuation and disaster drills, BiWeek for oversight training.
type ObligationRecord struct {
	ID          string         `db:"id" json:"id"`
	FacilityID  string         `db:"facility_id" json:"facilityId"`
	Kind        ObligationKind `db:"kind" json:"kind"`
	Shift       *Shift         `db:"shift" json:"shift,omitempty"`
	Month       *int           `db:"month" json:"month,omitempty"`
	Quarter     *int           `db:"quarter" json:"quarter,omitempty"`
	BiWeek      *int           `db:"bi_week" json:"biWeek,omitempty"`
	Year        int            `db:"year" json:"year"`
	PerformedOn *time.Time     `db:"performed_on" json:"performedOn,omitempty"`
	Notes       string         `db:"notes" json:"notes"`
	CreatedBy   string         `db:"created_by" json:"createdBy"`
	CorrectedBy *string        `db:"corrected_by" json:"correctedBy,omitempty"`
	CreatedAt   time.Time      `db:"created_at" json:"createdAt"`
	UpdatedAt   time.Time      `db:"updated_at" json:"updatedAt"`
}

// HasShift reports whether the record was performed on shift s.
func (r ObligationRecord) HasShift(s Shift) bool {
	return r.Shift != nil && *r.Shift == s
}

// ObligationFilter constrains listing queries.
type ObligationFilter struct {
	FacilityID string
	Kind       ObligationKind
	Year       int
	Limit      int
	Offset     int
}
