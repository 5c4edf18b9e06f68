// Package models holds the wire-level data structures exchanged with the
// health-portal backend, plus a timestamp type tolerant of the backend's
// date formats.
package models

// Report is a user-uploaded medical document plus its AI-generated analysis
// and doctor-approval state. The backend is authoritative for every field;
// PendingCommit marks an optimistic local approval that has not been
// confirmed by the server yet and is never serialized.
type Report struct {
	ID             int64      `json:"id"`
	UserID         string     `json:"user_id"`
	ReportName     string     `json:"report_name"`
	UploadDate     PortalTime `json:"upload_date"`
	AnalysisResult string     `json:"analysis_result"`
	DoctorNotes    string     `json:"doctor_notes,omitempty"`
	DoctorApproval bool       `json:"doctor_approval"`

	PendingCommit bool `json:"-"`
}

// PatientReport is a row of GET /reports/all: a report joined with the
// owning patient's identity. Doctor-side listing only.
type PatientReport struct {
	ID             int64      `json:"id"`
	Username       string     `json:"username"`
	Email          string     `json:"email"`
	ReportName     string     `json:"report_name"`
	UploadDate     PortalTime `json:"upload_date"`
	AnalysisResult string     `json:"analysis_result"`
	DoctorNotes    string     `json:"doctor_notes,omitempty"`
	DoctorApproval bool       `json:"doctor_approval"`
}

// AnalyzeResult is the response of POST /reports/analyze.
type AnalyzeResult struct {
	ReportID int64  `json:"report_id"`
	Analysis string `json:"analysis"`
	Message  string `json:"message,omitempty"`
}

// UpdateReportRequest is the body of PUT /reports/{id}.
type UpdateReportRequest struct {
	Notes    string `json:"notes"`
	Approval bool   `json:"approval"`
}
