package product

import "time"

// CreateProductRequest registers a new product for a team.
type CreateProductRequest struct {
	Name string `json:"name" binding:"required,max=100"`
}

// CreateReleaseRequest adds a draft release to a product.
type CreateReleaseRequest struct {
	Version string `json:"version" binding:"required,max=50"`
	Branch  string `json:"branch" binding:"omitempty,max=50"`
}

// AttachFileRequest registers the uploaded artifact of a release. The object
// must already exist in the release bucket under Key.
type AttachFileRequest struct {
	Key           string `json:"key" binding:"required"`
	Size          int64  `json:"size" binding:"required,gt=0"`
	Checksum      string `json:"checksum"`
	MainClassName string `json:"mainClassName"`
}

// SetAllowedLicensesRequest replaces a release's license allow-list. An
// empty list admits every license of the team.
type SetAllowedLicensesRequest struct {
	LicenseIDs []string `json:"licenseIds"`
}

// ProductDTO is the admin view of a product.
type ProductDTO struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"createdAt"`
}

// ReleaseDTO is the admin view of a release.
type ReleaseDTO struct {
	ID              string     `json:"id"`
	Version         string     `json:"version"`
	Branch          string     `json:"branch,omitempty"`
	Status          string     `json:"status"`
	Latest          bool       `json:"latest"`
	FileKey         string     `json:"fileKey,omitempty"`
	FileSize        int64      `json:"fileSize,omitempty"`
	Checksum        string     `json:"checksum,omitempty"`
	MainClassName   string     `json:"mainClassName,omitempty"`
	AllowedLicenses int        `json:"allowedLicenses"`
	LastSeenAt      *time.Time `json:"lastSeenAt,omitempty"`
	CreatedAt       time.Time  `json:"createdAt"`
}
