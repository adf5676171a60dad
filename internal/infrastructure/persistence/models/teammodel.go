package models

import (
	"time"

	"gorm.io/gorm"

	"github.com/keyward-io/keyward/internal/shared/constants"
)

// TeamModel is the persistence model for teams. Soft deletion uses GORM's
// DeletedAt so every query through the model excludes deleted teams by
// default.
type TeamModel struct {
	ID   uint   `gorm:"primarykey"`
	SID  string `gorm:"column:sid;not null;size:32;uniqueIndex"`
	Name string `gorm:"not null;size:100"`

	// Settings
	StrictCustomers      bool   `gorm:"not null;default:false"`
	IPLimitPeriod        string `gorm:"not null;size:10;default:DAY"`
	DeviceTimeoutSeconds int    `gorm:"not null;default:600"`

	// Limits
	AllowClassloader bool `gorm:"not null;default:false"`
	MaxLicenses      int  `gorm:"not null;default:100"`
	MaxProducts      int  `gorm:"not null;default:10"`

	// KeyPair; the private key never leaves the server
	PublicKeyPEM  string `gorm:"type:text"`
	PrivateKeyPEM string `gorm:"type:text"`

	BlacklistEntries []BlacklistEntryModel `gorm:"foreignKey:TeamID"`

	CreatedAt time.Time
	UpdatedAt time.Time
	DeletedAt gorm.DeletedAt `gorm:"index"`
}

func (TeamModel) TableName() string {
	return constants.TableTeams
}

// BlacklistEntryModel is one deny rule of a team's blacklist.
type BlacklistEntryModel struct {
	ID        uint   `gorm:"primarykey"`
	TeamID    uint   `gorm:"not null;uniqueIndex:idx_team_blacklist,priority:1"`
	Type      string `gorm:"not null;size:10;uniqueIndex:idx_team_blacklist,priority:2"`
	Value     string `gorm:"not null;size:255;uniqueIndex:idx_team_blacklist,priority:3"`
	CreatedAt time.Time
}

func (BlacklistEntryModel) TableName() string {
	return constants.TableBlacklistEntries
}
