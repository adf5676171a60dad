package models

import (
	"time"

	"github.com/keyward-io/keyward/internal/shared/constants"
)

// DeviceModel is the persistence model for hardware seats. Uniqueness over
// (license, identifier) makes the heartbeat write an upsert.
type DeviceModel struct {
	ID         uint      `gorm:"primarykey"`
	LicenseID  uint      `gorm:"not null;uniqueIndex:idx_license_device,priority:1"`
	Identifier string    `gorm:"not null;size:255;uniqueIndex:idx_license_device,priority:2"`
	LastBeatAt time.Time `gorm:"not null;index"`
	IPAddress  string    `gorm:"size:45"`
	Country    string    `gorm:"size:3"`
	Forgotten  bool      `gorm:"not null;default:false"`
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

func (DeviceModel) TableName() string {
	return constants.TableDevices
}
