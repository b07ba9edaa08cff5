package service

import (
	"github.com/noah-isme/bhrf-oversight-api/internal/models"
)

// ObligationVerdict is the outcome of evaluating one obligation for one period.
type ObligationVerdict struct {
	Kind          models.ObligationKind
	Satisfied     bool
	MissingShifts []models.Shift
	Matched       int
}

// ObligationEvaluator decides whether a facility met one recurring requirement in
// the reporting window containing period. Records of other kinds or facilities
// are ignored, and only exact year matches count.
type ObligationEvaluator interface {
	Kind() models.ObligationKind
	Evaluate(facilityID string, records []models.ObligationRecord, period models.Period) ObligationVerdict
	IsSatisfied(facilityID string, records []models.ObligationRecord, period models.Period) bool
	window(period models.Period) periodWindow
}

// DefaultObligationEvaluators returns one strategy per obligation kind.
func DefaultObligationEvaluators() []ObligationEvaluator {
	return []ObligationEvaluator{
		FireDrillEvaluator{},
		EvacuationDrillEvaluator{},
		DisasterDrillEvaluator{},
		OversightTrainingEvaluator{},
	}
}

// FireDrillEvaluator requires an AM and a PM drill in the current month.
type FireDrillEvaluator struct{}

// Kind implements ObligationEvaluator.
func (FireDrillEvaluator) Kind() models.ObligationKind { return models.ObligationFireDrill }

// Evaluate implements ObligationEvaluator.
func (e FireDrillEvaluator) Evaluate(facilityID string, records []models.ObligationRecord, period models.Period) ObligationVerdict {
	return evaluateShifts(e.Kind(), facilityID, records, func(r models.ObligationRecord) bool {
		return r.Month != nil && *r.Month == int(period.Month) && r.Year == period.Year
	})
}

// IsSatisfied implements ObligationEvaluator.
func (e FireDrillEvaluator) IsSatisfied(facilityID string, records []models.ObligationRecord, period models.Period) bool {
	return e.Evaluate(facilityID, records, period).Satisfied
}

func (FireDrillEvaluator) window(p models.Period) periodWindow { return monthWindow(p) }

// EvacuationDrillEvaluator reports per half-year while records carry a quarter;
// any quarter of the current half counts, and the two shifts may come from
// different quarters.
type EvacuationDrillEvaluator struct{}

// Kind implements ObligationEvaluator.
func (EvacuationDrillEvaluator) Kind() models.ObligationKind { return models.ObligationEvacuationDrill }

// Evaluate implements ObligationEvaluator.
func (e EvacuationDrillEvaluator) Evaluate(facilityID string, records []models.ObligationRecord, period models.Period) ObligationVerdict {
	return evaluateShifts(e.Kind(), facilityID, records, func(r models.ObligationRecord) bool {
		return r.Quarter != nil && period.Half.Contains(models.Quarter(*r.Quarter)) && r.Year == period.Year
	})
}

// IsSatisfied implements ObligationEvaluator.
func (e EvacuationDrillEvaluator) IsSatisfied(facilityID string, records []models.ObligationRecord, period models.Period) bool {
	return e.Evaluate(facilityID, records, period).Satisfied
}

func (EvacuationDrillEvaluator) window(p models.Period) periodWindow { return halfWindow(p) }

// DisasterDrillEvaluator requires an AM and a PM drill in the current quarter.
type DisasterDrillEvaluator struct{}

// Kind implements ObligationEvaluator.
func (DisasterDrillEvaluator) Kind() models.ObligationKind { return models.ObligationDisasterDrill }

// Evaluate implements ObligationEvaluator.
func (e DisasterDrillEvaluator) Evaluate(facilityID string, records []models.ObligationRecord, period models.Period) ObligationVerdict {
	return evaluateShifts(e.Kind(), facilityID, records, func(r models.ObligationRecord) bool {
		return r.Quarter != nil && *r.Quarter == int(period.Quarter) && r.Year == period.Year
	})
}

// IsSatisfied implements ObligationEvaluator.
func (e DisasterDrillEvaluator) IsSatisfied(facilityID string, records []models.ObligationRecord, period models.Period) bool {
	return e.Evaluate(facilityID, records, period).Satisfied
}

func (DisasterDrillEvaluator) window(p models.Period) periodWindow { return quarterWindow(p) }

// OversightTrainingEvaluator requires one session in the current bi-week, on any shift.
type OversightTrainingEvaluator struct{}

// Kind implements ObligationEvaluator.
func (OversightTrainingEvaluator) Kind() models.ObligationKind {
	return models.ObligationOversightTraining
}

// Evaluate implements ObligationEvaluator.
func (e OversightTrainingEvaluator) Evaluate(facilityID string, records []models.ObligationRecord, period models.Period) ObligationVerdict {
	verdict := ObligationVerdict{Kind: e.Kind()}
	for _, r := range records {
		if r.Kind != e.Kind() || r.FacilityID != facilityID {
			continue
		}
		if r.BiWeek != nil && *r.BiWeek == period.BiWeek && r.Year == period.BiWeekYear {
			verdict.Matched++
		}
	}
	verdict.Satisfied = verdict.Matched > 0
	return verdict
}

// IsSatisfied implements ObligationEvaluator.
func (e OversightTrainingEvaluator) IsSatisfied(facilityID string, records []models.ObligationRecord, period models.Period) bool {
	return e.Evaluate(facilityID, records, period).Satisfied
}

func (OversightTrainingEvaluator) window(p models.Period) periodWindow { return biWeekWindow(p) }

// evaluateShifts is satisfied only when both the AM and PM buckets hold a matching record.
func evaluateShifts(kind models.ObligationKind, facilityID string, records []models.ObligationRecord, inWindow func(models.ObligationRecord) bool) ObligationVerdict {
	verdict := ObligationVerdict{Kind: kind}
	var am, pm bool
	for _, r := range records {
		if r.Kind != kind || r.FacilityID != facilityID || !inWindow(r) {
			continue
		}
		switch {
		case r.HasShift(models.ShiftAM):
			am = true
			verdict.Matched++
		case r.HasShift(models.ShiftPM):
			pm = true
			verdict.Matched++
		}
	}
	if !am {
		verdict.MissingShifts = append(verdict.MissingShifts, models.ShiftAM)
	}
	if !pm {
		verdict.MissingShifts = append(verdict.MissingShifts, models.ShiftPM)
	}
	verdict.Satisfied = am && pm
	return verdict
}
