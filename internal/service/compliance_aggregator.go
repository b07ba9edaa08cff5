package service

import (
	"fmt"
	"strings"
	"time"

	"github.com/noah-isme/bhrf-oversight-api/internal/models"
)

// ComplianceAggregator is the single place where document and obligation verdicts
// are combined into a facility-level compliance flag. It holds no state between calls.
type ComplianceAggregator struct {
	resolver   *PeriodResolver
	classifier *ExpirationClassifier
	evaluators []ObligationEvaluator
}

// NewComplianceAggregator wires the aggregator; nil collaborators fall back to defaults.
func NewComplianceAggregator(resolver *PeriodResolver, classifier *ExpirationClassifier, evaluators ...ObligationEvaluator) *ComplianceAggregator {
	if resolver == nil {
		resolver = NewPeriodResolver(time.UTC)
	}
	if classifier == nil {
		classifier = NewExpirationClassifier(DefaultExpiringSoonWindow)
	}
	if len(evaluators) == 0 {
		evaluators = DefaultObligationEvaluators()
	}
	return &ComplianceAggregator{resolver: resolver, classifier: classifier, evaluators: evaluators}
}

// Evaluate computes the facility's status at now. Only documents owned by the
// facility itself are considered; EXPIRING_SOON is reported as a warning.
func (a *ComplianceAggregator) Evaluate(facility models.Facility, records []models.ObligationRecord, documents []models.Document, now time.Time) models.ComplianceStatus {
	period := a.resolver.Resolve(now)
	status := models.ComplianceStatus{
		FacilityID:       facility.ID,
		FacilityName:     facility.Name,
		DocumentIssues:   []string{},
		ObligationIssues: []models.ObligationKind{},
		Warnings:         []string{},
		Reasons:          []string{},
		Period:           period,
		EvaluatedAt:      now.UTC(),
	}

	for _, doc := range documents {
		if doc.OwnerType != models.OwnerFacility || doc.FacilityID != facility.ID {
			continue
		}
		switch state := a.classifier.ClassifyDocument(doc, now); state {
		case models.ExpirationExpired:
			status.DocumentIssues = append(status.DocumentIssues, doc.ID)
			status.Reasons = append(status.Reasons, fmt.Sprintf("Document %q is expired", documentLabel(doc)))
		case models.ExpirationAwaitingUpload:
			status.DocumentIssues = append(status.DocumentIssues, doc.ID)
			status.Reasons = append(status.Reasons, fmt.Sprintf("Document %q is awaiting upload", documentLabel(doc)))
		case models.ExpirationExpiringSoon:
			status.Warnings = append(status.Warnings, doc.ID)
		}
	}

	for _, evaluator := range a.evaluators {
		verdict := evaluator.Evaluate(facility.ID, records, period)
		if verdict.Satisfied {
			continue
		}
		status.ObligationIssues = append(status.ObligationIssues, verdict.Kind)
		status.Reasons = append(status.Reasons, obligationReason(verdict, evaluator.window(period)))
	}

	status.InCompliance = len(status.DocumentIssues) == 0 && len(status.ObligationIssues) == 0
	return status
}

// Schedule describes every obligation's current window and whether it is met.
func (a *ComplianceAggregator) Schedule(facility models.Facility, records []models.ObligationRecord, now time.Time) []models.ObligationWindow {
	period := a.resolver.Resolve(now)
	windows := make([]models.ObligationWindow, 0, len(a.evaluators))
	for _, evaluator := range a.evaluators {
		verdict := evaluator.Evaluate(facility.ID, records, period)
		w := evaluator.window(period)
		window := models.ObligationWindow{
			Kind:        verdict.Kind,
			Label:       verdict.Kind.Label(),
			WindowLabel: w.label,
			WindowStart: w.start.Format(dateLayout),
			WindowEnd:   w.end.Format(dateLayout),
			Satisfied:   verdict.Satisfied,
			RecordCount: verdict.Matched,
		}
		if !verdict.Satisfied && verdict.Kind.RequiresShift() {
			window.MissingShifts = verdict.MissingShifts
		}
		windows = append(windows, window)
	}
	return windows
}

// Classify exposes the classifier used by the aggregator.
func (a *ComplianceAggregator) Classify(artifact models.Artifact, now time.Time) models.ExpirationState {
	return a.classifier.Classify(artifact, now)
}

// Period exposes the resolver used by the aggregator.
func (a *ComplianceAggregator) Period(now time.Time) models.Period {
	return a.resolver.Resolve(now)
}

func obligationReason(v ObligationVerdict, w periodWindow) string {
	if !v.Kind.RequiresShift() {
		return fmt.Sprintf("%s not recorded for %s", v.Kind.Label(), w.label)
	}
	missing := make([]string, 0, len(v.MissingShifts))
	for _, s := range v.MissingShifts {
		missing = append(missing, string(s))
	}
	return fmt.Sprintf("%s missing %s shift for %s", v.Kind.Label(), strings.Join(missing, " and "), w.label)
}

func documentLabel(doc models.Document) string {
	if doc.Name != "" {
		return doc.Name
	}
	return doc.ID
}
