package product

import (
	"fmt"
	"time"
)

// ReleaseStatus is the publication state of a release. Only PUBLISHED and
// DEPRECATED releases may be fetched through the classloader.
type ReleaseStatus string

const (
	ReleaseStatusDraft      ReleaseStatus = "DRAFT"
	ReleaseStatusPublished  ReleaseStatus = "PUBLISHED"
	ReleaseStatusDeprecated ReleaseStatus = "DEPRECATED"
	ReleaseStatusArchived   ReleaseStatus = "ARCHIVED"
)

func (s ReleaseStatus) IsValid() bool {
	switch s {
	case ReleaseStatusDraft, ReleaseStatusPublished, ReleaseStatusDeprecated, ReleaseStatusArchived:
		return true
	}
	return false
}

// ReleaseFile is the stored artifact of a release. Key addresses the object
// in storage; MainClassName is set for JAR releases.
type ReleaseFile struct {
	Key           string
	Size          int64
	Checksum      string
	MainClassName string
}

// Release is one published version of a product. At most one release per
// (product, branch) carries the latest flag.
type Release struct {
	id              uint
	sid             string
	productID       uint
	version         string
	branch          string
	status          ReleaseStatus
	latest          bool
	file            *ReleaseFile
	allowedLicenses []uint
	lastSeenAt      *time.Time
	createdAt       time.Time
	updatedAt       time.Time
}

func NewRelease(sid string, productID uint, version, branch string) (*Release, error) {
	if sid == "" {
		return nil, fmt.Errorf("release sid is required")
	}
	if productID == 0 {
		return nil, fmt.Errorf("product ID is required")
	}
	if version == "" {
		return nil, fmt.Errorf("release version is required")
	}

	now := time.Now()
	return &Release{
		sid:       sid,
		productID: productID,
		version:   version,
		branch:    branch,
		status:    ReleaseStatusDraft,
		createdAt: now,
		updatedAt: now,
	}, nil
}

func ReconstructRelease(
	id uint,
	sid string,
	productID uint,
	version, branch string,
	status ReleaseStatus,
	latest bool,
	file *ReleaseFile,
	allowedLicenses []uint,
	lastSeenAt *time.Time,
	createdAt, updatedAt time.Time,
) (*Release, error) {
	if id == 0 {
		return nil, fmt.Errorf("release ID cannot be zero")
	}
	if !status.IsValid() {
		return nil, fmt.Errorf("invalid release status: %s", status)
	}

	return &Release{
		id:              id,
		sid:             sid,
		productID:       productID,
		version:         version,
		branch:          branch,
		status:          status,
		latest:          latest,
		file:            file,
		allowedLicenses: allowedLicenses,
		lastSeenAt:      lastSeenAt,
		createdAt:       createdAt,
		updatedAt:       updatedAt,
	}, nil
}

func (r *Release) ID() uint               { return r.id }
func (r *Release) SID() string            { return r.sid }
func (r *Release) ProductID() uint        { return r.productID }
func (r *Release) Version() string        { return r.version }
func (r *Release) Branch() string         { return r.branch }
func (r *Release) Status() ReleaseStatus  { return r.status }
func (r *Release) Latest() bool           { return r.latest }
func (r *Release) File() *ReleaseFile     { return r.file }
func (r *Release) AllowedLicenses() []uint { return r.allowedLicenses }
func (r *Release) LastSeenAt() *time.Time { return r.lastSeenAt }
func (r *Release) CreatedAt() time.Time   { return r.createdAt }
func (r *Release) UpdatedAt() time.Time   { return r.updatedAt }

// SetID sets the release ID after insertion (persistence layer use only).
func (r *Release) SetID(id uint) error {
	if r.id != 0 {
		return fmt.Errorf("release ID is already set")
	}
	if id == 0 {
		return fmt.Errorf("release ID cannot be zero")
	}
	r.id = id
	return nil
}

// AttachFile registers the uploaded artifact.
func (r *Release) AttachFile(file ReleaseFile) error {
	if file.Key == "" {
		return fmt.Errorf("file key is required")
	}
	if file.Size <= 0 {
		return fmt.Errorf("file size must be positive")
	}
	r.file = &file
	r.updatedAt = time.Now()
	return nil
}

// Publish moves a draft release to published. Archived releases cannot come
// back.
func (r *Release) Publish() error {
	if r.status == ReleaseStatusArchived {
		return fmt.Errorf("cannot publish archived release")
	}
	if r.file == nil {
		return fmt.Errorf("cannot publish release without a file")
	}
	r.status = ReleaseStatusPublished
	r.updatedAt = time.Now()
	return nil
}

// Archive retires the release from classloader delivery.
func (r *Release) Archive() {
	r.status = ReleaseStatusArchived
	r.latest = false
	r.updatedAt = time.Now()
}

// MarkLatest flags this release as the latest of its product+branch. The
// repository clears the flag from siblings in the same statement batch.
func (r *Release) MarkLatest() {
	r.latest = true
	r.updatedAt = time.Now()
}

// AllowsLicense reports whether the given license may fetch this release.
// An empty allow-list admits every license of the team.
func (r *Release) AllowsLicense(licenseID uint) bool {
	if len(r.allowedLicenses) == 0 {
		return true
	}
	for _, id := range r.allowedLicenses {
		if id == licenseID {
			return true
		}
	}
	return false
}

// SetAllowedLicenses replaces the allow-list.
func (r *Release) SetAllowedLicenses(licenseIDs []uint) {
	r.allowedLicenses = licenseIDs
	r.updatedAt = time.Now()
}
