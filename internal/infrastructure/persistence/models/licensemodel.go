package models

import (
	"time"

	"github.com/keyward-io/keyward/internal/shared/constants"
)

// LicenseModel is the persistence model for licenses. LicenseKeyLookup is
// the HMAC of the plaintext key scoped to the team; the plaintext key is
// never stored. Exactly one row may exist per (team, lookup) pair.
type LicenseModel struct {
	ID               uint   `gorm:"primarykey"`
	SID              string `gorm:"column:sid;not null;size:32;uniqueIndex"`
	TeamID           uint   `gorm:"not null;uniqueIndex:idx_team_lookup,priority:1"`
	LicenseKeyLookup string `gorm:"not null;size:64;uniqueIndex:idx_team_lookup,priority:2"`
	Suspended        bool   `gorm:"not null;default:false"`

	ExpirationType  string     `gorm:"not null;size:10;default:NEVER"`
	ExpirationStart string     `gorm:"not null;size:10;default:CREATION"`
	ExpirationDate  *time.Time `gorm:"index"`
	ExpirationDays  *int

	IPLimit   *int
	HWIDLimit *int `gorm:"column:hwid_limit"`
	Note      string `gorm:"size:500"`

	Customers []CustomerModel `gorm:"many2many:license_customers;"`
	Products  []ProductModel  `gorm:"many2many:license_products;"`

	CreatedAt time.Time
	UpdatedAt time.Time
}

func (LicenseModel) TableName() string {
	return constants.TableLicenses
}

// CustomerModel is a buyer attached to licenses of a team.
type CustomerModel struct {
	ID        uint   `gorm:"primarykey"`
	SID       string `gorm:"column:sid;not null;size:32;uniqueIndex"`
	TeamID    uint   `gorm:"not null;index"`
	Name      string `gorm:"not null;size:100"`
	Email     string `gorm:"size:255"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

func (CustomerModel) TableName() string {
	return constants.TableCustomers
}
