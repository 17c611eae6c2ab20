package types

import "time"

// Account kinds. A company-kind user owns a CompanyProfile; an
// applicant-kind user submits applications.
const (
	UserKindApplicant = "applicant"
	UserKindCompany   = "company"
)

// User represents an account in the system.
// It covers both applicants and companies; the Kind field distinguishes them.
type User struct {
	// ID is the unique identifier of the user.
	ID int `json:"id" db:"id"`

	// FullName is the user's display or full name.
	FullName string `json:"full_name" db:"full_name"`

	// Email is the user's email address. It is globally unique.
	Email string `json:"email" db:"email"`

	// Phone is the user's contact phone number. Optional.
	Phone string `json:"phone,omitempty" db:"phone"`

	// Location is the user's city or region. Optional.
	Location string `json:"location,omitempty" db:"location"`

	// Kind indicates the account kind: "applicant" or "company".
	Kind string `json:"kind" db:"kind"`

	// PasswordHash stores the hashed representation of the user's password.
	// This field is never exposed in API responses.
	PasswordHash string `json:"-" db:"password_hash"`

	// ResumeKey is the object-storage key of the user's stored résumé PDF.
	// Empty when no résumé has been uploaded.
	ResumeKey string `json:"resume_key,omitempty" db:"resume_key"`

	// CreatedAt is the timestamp when the user registered.
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}

// UserUpdate carries a partial profile update. Only non-nil fields are
// applied; a nil field leaves the stored value untouched.
type UserUpdate struct {
	FullName  *string
	Phone     *string
	Location  *string
	ResumeKey *string
}
