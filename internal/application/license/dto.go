package license

import "time"

// IssueLicenseRequest creates a new license for a team.
type IssueLicenseRequest struct {
	ExpirationType  string     `json:"expirationType" binding:"required,oneof=NEVER DATE DURATION"`
	ExpirationStart string     `json:"expirationStart" binding:"omitempty,oneof=CREATION ACTIVATION"`
	ExpirationDate  *time.Time `json:"expirationDate"`
	ExpirationDays  *int       `json:"expirationDays"`
	IPLimit         *int       `json:"ipLimit"`
	HWIDLimit       *int       `json:"hwidLimit"`
	Note            string     `json:"note"`
}

// UpdateExpirationRequest replaces a license's expiration policy.
type UpdateExpirationRequest struct {
	ExpirationType  string     `json:"expirationType" binding:"required,oneof=NEVER DATE DURATION"`
	ExpirationStart string     `json:"expirationStart" binding:"omitempty,oneof=CREATION ACTIVATION"`
	ExpirationDate  *time.Time `json:"expirationDate"`
	ExpirationDays  *int       `json:"expirationDays"`
}

// LicenseDTO is the admin view of a license. The plaintext key is absent;
// only IssuedLicenseDTO carries it, exactly once at issuance.
type LicenseDTO struct {
	ID              string     `json:"id"`
	Suspended       bool       `json:"suspended"`
	ExpirationType  string     `json:"expirationType"`
	ExpirationStart string     `json:"expirationStart"`
	ExpirationDate  *time.Time `json:"expirationDate,omitempty"`
	ExpirationDays  *int       `json:"expirationDays,omitempty"`
	IPLimit         *int       `json:"ipLimit,omitempty"`
	HWIDLimit       *int       `json:"hwidLimit,omitempty"`
	Note            string     `json:"note,omitempty"`
	Customers       []string   `json:"customers,omitempty"`
	CreatedAt       time.Time  `json:"createdAt"`
}

// IssuedLicenseDTO is returned from Issue only. LicenseKey is shown this one
// time and cannot be recovered afterwards.
type IssuedLicenseDTO struct {
	LicenseDTO
	LicenseKey string `json:"licenseKey"`
}

// DeviceDTO is one hardware seat of a license.
type DeviceDTO struct {
	Identifier string    `json:"identifier"`
	LastBeatAt time.Time `json:"lastBeatAt"`
	IPAddress  string    `json:"ipAddress,omitempty"`
	Country    string    `json:"country,omitempty"`
	Forgotten  bool      `json:"forgotten"`
	CreatedAt  time.Time `json:"createdAt"`
}
