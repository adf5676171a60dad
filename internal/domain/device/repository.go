package device

import (
	"context"
	"time"
)

// Repository is the device seat persistence contract. CountActive and
// Upsert are called inside one transaction by the seat accounting gate;
// implementations must lock the license's device rows so concurrent
// first-time verifications cannot both pass a full seat limit.
type Repository interface {
	// CountActive counts non-forgotten devices heard from since the cutoff,
	// excluding the given identifier.
	CountActive(ctx context.Context, licenseID uint, identifier string, since time.Time) (int64, error)
	// Exists reports whether the identifier has a non-forgotten row for the
	// license heard from since activeSince. A stale row does not hold a
	// seat; its identifier contends like a first-time device.
	Exists(ctx context.Context, licenseID uint, identifier string, activeSince time.Time) (bool, error)
	// Upsert inserts or refreshes the (licenseID, identifier) row with a new
	// heartbeat timestamp, IP, and country. Upserting clears the forgotten
	// flag: a forgotten device that verifies again occupies a seat again.
	Upsert(ctx context.Context, d *Device) error
	ListByLicense(ctx context.Context, licenseID uint) ([]*Device, error)
	Forget(ctx context.Context, licenseID uint, identifier string) error
}
