package domain

import (
	"strings"
	"time"
)

// Department enumerates the recipients a grievance can be routed to.
type Department string

const (
	DeptAdministration Department = "Administration"
	DeptExamination    Department = "Examination"
	DeptFinance        Department = "Finance"
	DeptLibrary        Department = "Library"
	DeptStudentWelfare Department = "Student Welfare"
)

// KnownDepartments returns the fixed set of routable departments.
func KnownDepartments() []Department {
	return []Department{
		DeptAdministration,
		DeptExamination,
		DeptFinance,
		DeptLibrary,
		DeptStudentWelfare,
	}
}

// IsKnown reports whether d is a member of the fixed department set.
// Matching is case-insensitive so form values survive client-side casing.
func (d Department) IsKnown() bool {
	for _, k := range KnownDepartments() {
		if strings.EqualFold(string(d), string(k)) {
			return true
		}
	}
	return false
}

// IssueRecord is the persisted grievance. Created once at submission time,
// immutable thereafter; there are no update or delete operations.
type IssueRecord struct {
	ID            string     `json:"id" db:"id"`
	ApplicantName string     `json:"applicantName" db:"applicant_name"`
	Email         string     `json:"email" db:"email"`
	IssueText     string     `json:"issue" db:"issue_text"`
	Department    Department `json:"department" db:"department"`
	Subject       string     `json:"subject" db:"subject"`
	Body          string     `json:"application" db:"application_body"`
	CreatedAt     time.Time  `json:"createdAt" db:"created_at"`
}

// IssueSummary is the listing projection of an IssueRecord. Applicant name,
// email and the full letter body are deliberately not projected.
type IssueSummary struct {
	Subject    string     `json:"subject"`
	Department Department `json:"department"`
	CreatedAt  time.Time  `json:"createdAt"`
}

// DraftApplication is the generated letter before the student approves it.
// It is client-held and never persisted; the user may edit either field
// before submission.
type DraftApplication struct {
	Subject string `json:"subject"`
	Body    string `json:"application"`
}

// GenerationInput is what the portal form provides to draft a letter.
// ApplicantName is optional at generation time.
type GenerationInput struct {
	ApplicantName string     `json:"applicantName,omitempty"`
	Email         string     `json:"email"`
	IssueText     string     `json:"issue"`
	Department    Department `json:"department"`
}

// Validate checks generation preconditions. emailSuffix is the institutional
// domain suffix (e.g. "@svsu.ac.in") that gates access to the portal.
func (in GenerationInput) Validate(emailSuffix string) error {
	if strings.TrimSpace(in.Email) == "" {
		return &ValidationError{Field: "email", Message: "email is required"}
	}
	if strings.TrimSpace(in.IssueText) == "" {
		return &ValidationError{Field: "issue", Message: "issue description is required"}
	}
	if strings.TrimSpace(string(in.Department)) == "" {
		return &ValidationError{Field: "department", Message: "department is required"}
	}
	if !strings.HasSuffix(strings.ToLower(strings.TrimSpace(in.Email)), strings.ToLower(emailSuffix)) {
		return &ValidationError{
			Field:   "email",
			Message: "invalid email: use an institutional address ending with " + emailSuffix,
		}
	}
	return nil
}

// Validate checks submission preconditions: every persisted field must be
// non-empty and the email must carry the institutional suffix.
func (r IssueRecord) Validate(emailSuffix string) error {
	if strings.TrimSpace(r.ApplicantName) == "" {
		return &ValidationError{Field: "applicantName", Message: "applicant name is required"}
	}
	in := GenerationInput{Email: r.Email, IssueText: r.IssueText, Department: r.Department}
	if err := in.Validate(emailSuffix); err != nil {
		return err
	}
	if strings.TrimSpace(r.Subject) == "" {
		return &ValidationError{Field: "subject", Message: "subject is required"}
	}
	if strings.TrimSpace(r.Body) == "" {
		return &ValidationError{Field: "application", Message: "application body is required"}
	}
	return nil
}
