package types

import "time"

// Vacancy lifecycle states. Only active vacancies accept new applications.
const (
	VacancyStateActive = "active"
	VacancyStateClosed = "closed"
)

// Vacancy represents a job posting owned by a company.
type Vacancy struct {
	// ID is the unique identifier of the vacancy.
	ID int `json:"id" db:"id"`

	// CompanyID references the owning company profile.
	CompanyID int `json:"company_id" db:"company_id"`

	// Title is the headline of the posting.
	Title string `json:"title" db:"title"`

	// Description contains the full posting text.
	Description string `json:"description" db:"description"`

	// Location is where the position is based.
	Location string `json:"location" db:"location"`

	// ContractType describes the employment arrangement
	// (e.g. "full-time", "part-time", "contract").
	ContractType string `json:"contract_type,omitempty" db:"contract_type"`

	// Salary is the advertised compensation. Optional free text.
	Salary string `json:"salary,omitempty" db:"salary"`

	// State is the lifecycle state: "active" or "closed".
	State string `json:"state" db:"state"`

	// PublishedAt is the timestamp when the vacancy was created.
	PublishedAt time.Time `json:"published_at" db:"published_at"`
}

// VacancyUpdate carries a partial vacancy update. Only non-nil fields are
// applied; a nil field leaves the stored value untouched.
type VacancyUpdate struct {
	Title        *string
	Description  *string
	Location     *string
	Salary       *string
	ContractType *string
	State        *string
}

// VacancyListing is a vacancy enriched with the publishing company's
// display name and location, as shown on the public board.
type VacancyListing struct {
	Vacancy
	CompanyName     string `json:"company_name" db:"company_name"`
	CompanyLocation string `json:"company_location,omitempty" db:"company_location"`
}

// VacancyWithStats is a vacancy annotated with the number of applications
// it has received, as shown on the company dashboard.
type VacancyWithStats struct {
	Vacancy
	ApplicationCount int `json:"application_count" db:"application_count"`
}

// VacancyDetail is a vacancy enriched with the publishing company's
// contact information, as shown on the vacancy detail page.
type VacancyDetail struct {
	Vacancy
	CompanyName        string `json:"company_name" db:"company_name"`
	CompanyDescription string `json:"company_description,omitempty" db:"company_description"`
	CompanyEmail       string `json:"company_email" db:"company_email"`
	CompanyPhone       string `json:"company_phone,omitempty" db:"company_phone"`
}
