package service

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/noah-isme/bhrf-oversight-api/internal/models"
)

func intPtr(v int) *int { return &v }

func shiftPtr(s models.Shift) *models.Shift { return &s }

func fireDrill(facilityID string, month, year int, shift models.Shift) models.ObligationRecord {
	return models.ObligationRecord{FacilityID: facilityID, Kind: models.ObligationFireDrill, Month: intPtr(month), Year: year, Shift: shiftPtr(shift)}
}

func quarterDrill(kind models.ObligationKind, facilityID string, quarter, year int, shift models.Shift) models.ObligationRecord {
	return models.ObligationRecord{FacilityID: facilityID, Kind: kind, Quarter: intPtr(quarter), Year: year, Shift: shiftPtr(shift)}
}

func training(facilityID string, biWeek, year int) models.ObligationRecord {
	return models.ObligationRecord{FacilityID: facilityID, Kind: models.ObligationOversightTraining, BiWeek: intPtr(biWeek), Year: year}
}

func march2025() models.Period {
	return NewPeriodResolver(time.UTC).Resolve(time.Date(2025, time.March, 15, 12, 0, 0, 0, time.UTC))
}

func TestFireDrillEvaluator(t *testing.T) {
	period := march2025()
	e := FireDrillEvaluator{}

	onlyAM := []models.ObligationRecord{fireDrill("fac-1", 3, 2025, models.ShiftAM)}
	verdict := e.Evaluate("fac-1", onlyAM, period)
	assert.False(t, verdict.Satisfied)
	assert.Equal(t, []models.Shift{models.ShiftPM}, verdict.MissingShifts)

	both := append(onlyAM, fireDrill("fac-1", 3, 2025, models.ShiftPM))
	assert.True(t, e.IsSatisfied("fac-1", both, period))

	lastYear := []models.ObligationRecord{
		fireDrill("fac-1", 3, 2024, models.ShiftAM),
		fireDrill("fac-1", 3, 2024, models.ShiftPM),
	}
	assert.False(t, e.IsSatisfied("fac-1", lastYear, period))

	otherMonth := []models.ObligationRecord{
		fireDrill("fac-1", 2, 2025, models.ShiftAM),
		fireDrill("fac-1", 2, 2025, models.ShiftPM),
	}
	assert.False(t, e.IsSatisfied("fac-1", otherMonth, period))
}

func TestEvaluatorsIgnoreOtherFacilities(t *testing.T) {
	period := march2025()
	records := []models.ObligationRecord{
		fireDrill("fac-2", 3, 2025, models.ShiftAM),
		fireDrill("fac-2", 3, 2025, models.ShiftPM),
		training("fac-2", period.BiWeek, 2025),
	}
	assert.False(t, FireDrillEvaluator{}.IsSatisfied("fac-1", records, period))
	assert.False(t, OversightTrainingEvaluator{}.IsSatisfied("fac-1", records, period))
}

func TestEvacuationDrillEvaluatorSpansHalf(t *testing.T) {
	e := EvacuationDrillEvaluator{}
	records := []models.ObligationRecord{
		quarterDrill(models.ObligationEvacuationDrill, "fac-1", 1, 2025, models.ShiftAM),
		quarterDrill(models.ObligationEvacuationDrill, "fac-1", 2, 2025, models.ShiftPM),
	}

	h1 := NewPeriodResolver(time.UTC).Resolve(time.Date(2025, time.May, 20, 0, 0, 0, 0, time.UTC))
	assert.True(t, e.IsSatisfied("fac-1", records, h1))

	h2 := NewPeriodResolver(time.UTC).Resolve(time.Date(2025, time.August, 1, 0, 0, 0, 0, time.UTC))
	assert.False(t, e.IsSatisfied("fac-1", records, h2))

	nextYear := NewPeriodResolver(time.UTC).Resolve(time.Date(2026, time.February, 1, 0, 0, 0, 0, time.UTC))
	assert.False(t, e.IsSatisfied("fac-1", records, nextYear))
}

func TestDisasterDrillEvaluatorExactQuarter(t *testing.T) {
	e := DisasterDrillEvaluator{}
	period := march2025()

	split := []models.ObligationRecord{
		quarterDrill(models.ObligationDisasterDrill, "fac-1", 1, 2025, models.ShiftAM),
		quarterDrill(models.ObligationDisasterDrill, "fac-1", 2, 2025, models.ShiftPM),
	}
	assert.False(t, e.IsSatisfied("fac-1", split, period))

	same := []models.ObligationRecord{
		quarterDrill(models.ObligationDisasterDrill, "fac-1", 1, 2025, models.ShiftAM),
		quarterDrill(models.ObligationDisasterDrill, "fac-1", 1, 2025, models.ShiftPM),
	}
	assert.True(t, e.IsSatisfied("fac-1", same, period))

	evacuation := []models.ObligationRecord{
		quarterDrill(models.ObligationEvacuationDrill, "fac-1", 1, 2025, models.ShiftAM),
		quarterDrill(models.ObligationEvacuationDrill, "fac-1", 1, 2025, models.ShiftPM),
	}
	assert.False(t, e.IsSatisfied("fac-1", evacuation, period))
}

func TestOversightTrainingEvaluator(t *testing.T) {
	e := OversightTrainingEvaluator{}
	period := march2025()

	assert.False(t, e.IsSatisfied("fac-1", nil, period))
	assert.True(t, e.IsSatisfied("fac-1", []models.ObligationRecord{training("fac-1", period.BiWeek, 2025)}, period))
	assert.False(t, e.IsSatisfied("fac-1", []models.ObligationRecord{training("fac-1", period.BiWeek-1, 2025)}, period))
	assert.False(t, e.IsSatisfied("fac-1", []models.ObligationRecord{training("fac-1", period.BiWeek, 2024)}, period))
}
