package service

import (
	"fmt"
	"time"

	"github.com/noah-isme/bhrf-oversight-api/internal/models"
)

const (
	biWeekDays = 14
	dateLayout = "2006-01-02"
)

// PeriodResolver maps an instant onto the reporting calendars used by obligations.
// Every computation happens on the calendar date in one reference location so that
// an instant near midnight never lands in two periods depending on the caller's zone.
type PeriodResolver struct {
	loc *time.Location
}

// NewPeriodResolver builds a resolver anchored to loc (UTC when nil).
func NewPeriodResolver(loc *time.Location) *PeriodResolver {
	if loc == nil {
		loc = time.UTC
	}
	return &PeriodResolver{loc: loc}
}

// Location returns the reference location.
func (r *PeriodResolver) Location() *time.Location {
	if r == nil || r.loc == nil {
		return time.UTC
	}
	return r.loc
}

// Resolve returns the period identifiers containing now.
func (r *PeriodResolver) Resolve(now time.Time) models.Period {
	date := r.Date(now)
	year, month, _ := date.Date()
	quarter := quarterOf(month)
	biWeek := (date.YearDay() - 1) / biWeekDays
	return models.Period{
		Date:       date.Format(dateLayout),
		Month:      month,
		Quarter:    quarter,
		Half:       quarter.Half(),
		Year:       year,
		BiWeek:     biWeek,
		BiWeekYear: year,
	}
}

// Date truncates now to its calendar date in the reference location, returned as UTC midnight.
func (r *PeriodResolver) Date(now time.Time) time.Time {
	y, m, d := now.In(r.Location()).Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func quarterOf(month time.Month) models.Quarter {
	return models.Quarter((int(month)-1)/3 + 1)
}

// periodWindow is an inclusive date range.
type periodWindow struct {
	label string
	start time.Time
	end   time.Time
}

func monthWindow(p models.Period) periodWindow {
	start := time.Date(p.Year, p.Month, 1, 0, 0, 0, 0, time.UTC)
	return periodWindow{
		label: fmt.Sprintf("%s %d", p.Month, p.Year),
		start: start,
		end:   start.AddDate(0, 1, -1),
	}
}

func quarterWindow(p models.Period) periodWindow {
	start := time.Date(p.Year, time.Month((int(p.Quarter)-1)*3+1), 1, 0, 0, 0, 0, time.UTC)
	return periodWindow{
		label: fmt.Sprintf("%s %d", p.Quarter, p.Year),
		start: start,
		end:   start.AddDate(0, 3, -1),
	}
}

func halfWindow(p models.Period) periodWindow {
	start := time.Date(p.Year, time.Month((int(p.Half)-1)*6+1), 1, 0, 0, 0, 0, time.UTC)
	return periodWindow{
		label: fmt.Sprintf("%s %d", p.Half, p.Year),
		start: start,
		end:   start.AddDate(0, 6, -1),
	}
}

// biWeekWindow clamps the final index of a year to December 31st.
func biWeekWindow(p models.Period) periodWindow {
	jan1 := time.Date(p.BiWeekYear, time.January, 1, 0, 0, 0, 0, time.UTC)
	start := jan1.AddDate(0, 0, p.BiWeek*biWeekDays)
	end := start.AddDate(0, 0, biWeekDays-1)
	if yearEnd := time.Date(p.BiWeekYear, time.December, 31, 0, 0, 0, 0, time.UTC); end.After(yearEnd) {
		end = yearEnd
	}
	return periodWindow{
		label: fmt.Sprintf("Bi-week %d of %d", p.BiWeek+1, p.BiWeekYear),
		start: start,
		end:   end,
	}
}
