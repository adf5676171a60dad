package models

import (
	"time"

	"github.com/keyward-io/keyward/internal/shared/constants"
)

// RequestLogModel is the append-only record of verification attempts. The
// (team, lookup, created_at) index serves the distinct-IP accounting query.
type RequestLogModel struct {
	ID               uint   `gorm:"primarykey"`
	TeamID           uint   `gorm:"not null;index:idx_log_lookup,priority:1"`
	Endpoint         string `gorm:"not null;size:12"`
	IPAddress        string `gorm:"not null;size:45"`
	Country          string `gorm:"size:3"`
	LicenseKeyLookup string `gorm:"size:64;index:idx_log_lookup,priority:2"`
	CustomerSID      string `gorm:"column:customer_sid;size:32"`
	ProductSID       string `gorm:"column:product_sid;size:32"`
	HardwareID       string `gorm:"size:255"`
	Status           string `gorm:"not null;size:32"`
	CreatedAt        time.Time `gorm:"index:idx_log_lookup,priority:3"`
}

func (RequestLogModel) TableName() string {
	return constants.TableRequestLogs
}
