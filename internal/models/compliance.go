package models

import "time"

// ComplianceStatus is the facility-level verdict computed on read. It is never persisted.
type ComplianceStatus struct {
	FacilityID       string           `json:"facilityId"`
	FacilityName     string           `json:"facilityName"`
	InCompliance     bool             `json:"inCompliance"`
	DocumentIssues   []string         `json:"documentIssues"`
	ObligationIssues []ObligationKind `json:"obligationIssues"`
	Warnings         []string         `json:"warnings"`
	Reasons          []string         `json:"reasons"`
	Period           Period           `json:"period"`
	EvaluatedAt      time.Time        `json:"evaluatedAt"`
}

// DocumentClassification pairs a document with its expiration state.
type DocumentClassification struct {
	Document Document        `json:"document"`
	State    ExpirationState `json:"state"`
}

// ObligationWindow describes the reporting window an obligation is evaluated against.
type ObligationWindow struct {
	Kind          ObligationKind `json:"kind"`
	Label         string         `json:"label"`
	WindowLabel   string         `json:"windowLabel"`
	WindowStart   string         `json:"windowStart"`
	WindowEnd     string         `json:"windowEnd"`
	Satisfied     bool           `json:"satisfied"`
	MissingShifts []Shift        `json:"missingShifts,omitempty"`
	RecordCount   int            `json:"recordCount"`
}

// ReportFormat is a compliance export rendering.
type ReportFormat string

const (
	ReportFormatPDF  ReportFormat = "pdf"
	ReportFormatCSV  ReportFormat = "csv"
	ReportFormatXLSX ReportFormat = "xlsx"
)

// ContentType returns the MIME type of the rendering.
func (f ReportFormat) ContentType() string {
	switch f {
	case ReportFormatPDF:
		return "application/pdf"
	case ReportFormatCSV:
		return "text/csv"
	case ReportFormatXLSX:
		return "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	}
	return "application/octet-stream"
}
