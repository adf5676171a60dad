package models

import (
	"time"

	"github.com/keyward-io/keyward/internal/shared/constants"
)

// ProductModel is the persistence model for products.
type ProductModel struct {
	ID        uint   `gorm:"primarykey"`
	SID       string `gorm:"column:sid;not null;size:32;uniqueIndex"`
	TeamID    uint   `gorm:"not null;index"`
	Name      string `gorm:"not null;size:100"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

func (ProductModel) TableName() string {
	return constants.TableProducts
}

// ReleaseModel is the persistence model for releases. At most one release
// per (product, branch) carries the latest flag; SetLatestRelease enforces
// this in one statement batch.
type ReleaseModel struct {
	ID        uint   `gorm:"primarykey"`
	SID       string `gorm:"column:sid;not null;size:32;uniqueIndex"`
	ProductID uint   `gorm:"not null;uniqueIndex:idx_product_version,priority:1;index:idx_product_latest,priority:1"`
	Version   string `gorm:"not null;size:50;uniqueIndex:idx_product_version,priority:2"`
	Branch    string `gorm:"size:50;index:idx_product_latest,priority:2"`
	Status    string `gorm:"not null;size:12;default:DRAFT"`
	Latest    bool   `gorm:"not null;default:false;index:idx_product_latest,priority:3"`

	// File attachment
	FileKey       string `gorm:"size:255"`
	FileSize      int64
	FileChecksum  string `gorm:"size:64"`
	MainClassName string `gorm:"size:255"`

	AllowedLicenses []LicenseModel `gorm:"many2many:release_licenses;"`

	LastSeenAt *time.Time
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

func (ReleaseModel) TableName() string {
	return constants.TableReleases
}
