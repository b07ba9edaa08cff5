package service

import (
	"fmt"

	"github.com/noah-isme/bhrf-oversight-api/internal/models"
	appErrors "github.com/noah-isme/bhrf-oversight-api/pkg/errors"
)

type transitionKey struct {
	from   models.RecordStatus
	action models.RecordAction
	role   models.UserRole
}

// transitionRule names the next status. When the facility requires review,
// reviewTo replaces to.
type transitionRule struct {
	to       models.RecordStatus
	reviewTo models.RecordStatus
}

// RecordLifecycle holds the legal clinical-record transitions as data.
type RecordLifecycle struct {
	rules map[transitionKey]transitionRule
	roles map[models.RecordAction]map[models.UserRole]struct{}
}

// NewRecordLifecycle builds the standard transition table.
func NewRecordLifecycle() *RecordLifecycle {
	l := &RecordLifecycle{
		rules: make(map[transitionKey]transitionRule),
		roles: make(map[models.RecordAction]map[models.UserRole]struct{}),
	}
	staff, bhp := models.RoleFacilityStaff, models.RoleBHP

	for _, from := range []models.RecordStatus{models.RecordStatusNone, models.RecordStatusDraft} {
		l.allow(from, models.ActionSaveDraft, staff, transitionRule{to: models.RecordStatusDraft})
		l.allow(from, models.ActionSubmit, staff, transitionRule{to: models.RecordStatusApproved, reviewTo: models.RecordStatusPending})
	}

	l.allow(models.RecordStatusPending, models.ActionApprove, bhp, transitionRule{to: models.RecordStatusApproved})
	l.allow(models.RecordStatusPending, models.ActionApproveConditional, bhp, transitionRule{to: models.RecordStatusConditional})
	l.allow(models.RecordStatusPending, models.ActionDeny, bhp, transitionRule{to: models.RecordStatusDenied})

	for _, from := range []models.RecordStatus{
		models.RecordStatusPending,
		models.RecordStatusApproved,
		models.RecordStatusConditional,
		models.RecordStatusDenied,
	} {
		l.allow(from, models.ActionEdit, bhp, transitionRule{to: from})
	}
	return l
}

func (l *RecordLifecycle) allow(from models.RecordStatus, action models.RecordAction, role models.UserRole, rule transitionRule) {
	l.rules[transitionKey{from: from, action: action, role: role}] = rule
	if l.roles[action] == nil {
		l.roles[action] = make(map[models.UserRole]struct{})
	}
	l.roles[action][role] = struct{}{}
}

// Next resolves the status a record moves to when actor applies action.
// A role that may never perform action, or that does not own the facility, is
// FORBIDDEN; a permitted role acting from the wrong status is a CONFLICT.
func (l *RecordLifecycle) Next(from models.RecordStatus, action models.RecordAction, actor models.Actor, facility *models.Facility) (models.RecordStatus, error) {
	if _, ok := l.roles[action][actor.Role]; !ok {
		return "", appErrors.Clone(appErrors.ErrForbidden, fmt.Sprintf("role %s may not %s clinical records", actor.Role, action))
	}
	if !ownsFacility(actor, facility) {
		return "", appErrors.Clone(appErrors.ErrForbidden, "facility is outside your scope")
	}
	rule, ok := l.rules[transitionKey{from: from, action: action, role: actor.Role}]
	if !ok {
		return "", appErrors.Clone(appErrors.ErrConflict, fmt.Sprintf("cannot %s a record in status %s", action, from))
	}
	if rule.reviewTo != "" && facility.RequiresReview {
		return rule.reviewTo, nil
	}
	return rule.to, nil
}

func ownsFacility(actor models.Actor, facility *models.Facility) bool {
	switch actor.Role {
	case models.RoleFacilityStaff:
		return actor.StaffOf(facility)
	case models.RoleBHP:
		return actor.Manages(facility)
	}
	return false
}
