package types

// CompanyProfile is the company-specific extension of a user account.
// Exactly one profile exists per company-kind user; it is created
// automatically at registration.
type CompanyProfile struct {
	// ID is the unique identifier of the company profile.
	ID int `json:"id" db:"id"`

	// UserID references the owning user account.
	UserID int `json:"user_id" db:"user_id"`

	// Name is the company's display name.
	Name string `json:"name" db:"name"`

	// Description is the company's free-text description.
	Description string `json:"description" db:"description"`
}
