// Package device tracks the hardware seats a license is used from.
package device

import (
	"fmt"
	"time"
)

// Device is one hardware seat of a license, identified uniquely by
// (licenseID, identifier). It is upserted on every successful verification.
// Forgotten devices keep their history but no longer occupy a seat.
type Device struct {
	id         uint
	licenseID  uint
	identifier string
	lastBeatAt time.Time
	ipAddress  string
	country    string
	forgotten  bool
	createdAt  time.Time
}

func NewDevice(licenseID uint, identifier, ipAddress, country string, now time.Time) (*Device, error) {
	if licenseID == 0 {
		return nil, fmt.Errorf("license ID is required")
	}
	if identifier == "" {
		return nil, fmt.Errorf("device identifier is required")
	}

	return &Device{
		licenseID:  licenseID,
		identifier: identifier,
		lastBeatAt: now,
		ipAddress:  ipAddress,
		country:    country,
		createdAt:  now,
	}, nil
}

func ReconstructDevice(id, licenseID uint, identifier string, lastBeatAt time.Time, ipAddress, country string, forgotten bool, createdAt time.Time) (*Device, error) {
	if id == 0 {
		return nil, fmt.Errorf("device ID cannot be zero")
	}
	return &Device{
		id:         id,
		licenseID:  licenseID,
		identifier: identifier,
		lastBeatAt: lastBeatAt,
		ipAddress:  ipAddress,
		country:    country,
		forgotten:  forgotten,
		createdAt:  createdAt,
	}, nil
}

func (d *Device) ID() uint              { return d.id }
func (d *Device) LicenseID() uint       { return d.licenseID }
func (d *Device) Identifier() string    { return d.identifier }
func (d *Device) LastBeatAt() time.Time { return d.lastBeatAt }
func (d *Device) IPAddress() string     { return d.ipAddress }
func (d *Device) Country() string       { return d.country }
func (d *Device) Forgotten() bool       { return d.forgotten }
func (d *Device) CreatedAt() time.Time  { return d.createdAt }

// IsActive reports whether the device was heard from within the timeout.
func (d *Device) IsActive(now time.Time, timeout time.Duration) bool {
	if d.forgotten {
		return false
	}
	return now.Sub(d.lastBeatAt) <= timeout
}

// Forget excludes the device from seat counting without deleting history.
func (d *Device) Forget() {
	d.forgotten = true
}
