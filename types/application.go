package types

import "time"

// Application review states. New applications start as pending; the owning
// company moves them to accepted or rejected.
const (
	ApplicationStatusPending  = "pending"
	ApplicationStatusAccepted = "accepted"
	ApplicationStatusRejected = "rejected"
)

// ValidApplicationStatus reports whether status is one of the review states.
func ValidApplicationStatus(status string) bool {
	switch status {
	case ApplicationStatusPending, ApplicationStatusAccepted, ApplicationStatusRejected:
		return true
	}
	return false
}

// Application represents an applicant's submission against a vacancy.
// The (VacancyID, ApplicantID) pair is unique: an applicant may apply to a
// given vacancy at most once.
type Application struct {
	// ID is the unique identifier of the application.
	ID int `json:"id" db:"id"`

	// VacancyID references the target vacancy.
	VacancyID int `json:"vacancy_id" db:"vacancy_id"`

	// ApplicantID references the submitting user.
	ApplicantID int `json:"applicant_id" db:"applicant_id"`

	// Message is an optional free-text note from the applicant.
	Message string `json:"message,omitempty" db:"message"`

	// Status is the review state: "pending", "accepted" or "rejected".
	Status string `json:"status" db:"status"`

	// SubmittedAt is the timestamp when the application was submitted.
	SubmittedAt time.Time `json:"submitted_at" db:"submitted_at"`
}

// ApplicantApplication is an application enriched with vacancy and company
// fields, as shown on the applicant dashboard.
type ApplicantApplication struct {
	Application
	VacancyTitle    string `json:"vacancy_title" db:"vacancy_title"`
	VacancyLocation string `json:"vacancy_location" db:"vacancy_location"`
	Salary          string `json:"salary,omitempty" db:"salary"`
	ContractType    string `json:"contract_type,omitempty" db:"contract_type"`
	CompanyName     string `json:"company_name" db:"company_name"`
}

// VacancyApplication is an application enriched with applicant contact
// fields, as shown on the company dashboard.
type VacancyApplication struct {
	Application
	ApplicantName     string `json:"applicant_name" db:"applicant_name"`
	ApplicantEmail    string `json:"applicant_email" db:"applicant_email"`
	ApplicantPhone    string `json:"applicant_phone,omitempty" db:"applicant_phone"`
	ApplicantLocation string `json:"applicant_location,omitempty" db:"applicant_location"`
	ResumeKey         string `json:"resume_key,omitempty" db:"resume_key"`
}
