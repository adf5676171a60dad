// Package license contains the license aggregate and its expiration policy.
// Licenses are looked up by an HMAC lookup hash, never by plaintext key.
package license

import (
	"fmt"
	"time"
)

// License is the aggregate root for a single issued license key.
type License struct {
	id         uint
	sid        string
	teamID     uint
	lookupHash string
	suspended  bool
	expiration Expiration
	ipLimit    *int
	hwidLimit  *int
	note       string
	customers  []Customer
	productIDs []uint
	createdAt  time.Time
	updatedAt  time.Time
}

// Customer is a buyer the license is associated with. Strict-customer teams
// require verification requests to name one of these.
type Customer struct {
	ID    uint
	SID   string
	Name  string
	Email string
}

// NewLicense issues a license. The lookup hash must already be computed from
// the plaintext key and team; the aggregate never sees the plaintext key.
func NewLicense(sid string, teamID uint, lookupHash string, expiration Expiration, ipLimit, hwidLimit *int) (*License, error) {
	if sid == "" {
		return nil, fmt.Errorf("license sid is required")
	}
	if teamID == 0 {
		return nil, fmt.Errorf("team ID is required")
	}
	if lookupHash == "" {
		return nil, fmt.Errorf("lookup hash is required")
	}
	if err := expiration.Validate(); err != nil {
		return nil, err
	}
	if ipLimit != nil && *ipLimit <= 0 {
		return nil, fmt.Errorf("ip limit must be positive")
	}
	if hwidLimit != nil && *hwidLimit <= 0 {
		return nil, fmt.Errorf("hwid limit must be positive")
	}

	now := time.Now()
	expiration = expiration.Materialize(now)

	return &License{
		sid:        sid,
		teamID:     teamID,
		lookupHash: lookupHash,
		expiration: expiration,
		ipLimit:    ipLimit,
		hwidLimit:  hwidLimit,
		createdAt:  now,
		updatedAt:  now,
	}, nil
}

// ReconstructLicense rebuilds a license from persistence.
func ReconstructLicense(
	id uint,
	sid string,
	teamID uint,
	lookupHash string,
	suspended bool,
	expiration Expiration,
	ipLimit, hwidLimit *int,
	note string,
	customers []Customer,
	productIDs []uint,
	createdAt, updatedAt time.Time,
) (*License, error) {
	if id == 0 {
		return nil, fmt.Errorf("license ID cannot be zero")
	}
	if err := expiration.Validate(); err != nil {
		return nil, err
	}

	return &License{
		id:         id,
		sid:        sid,
		teamID:     teamID,
		lookupHash: lookupHash,
		suspended:  suspended,
		expiration: expiration,
		ipLimit:    ipLimit,
		hwidLimit:  hwidLimit,
		note:       note,
		customers:  customers,
		productIDs: productIDs,
		createdAt:  createdAt,
		updatedAt:  updatedAt,
	}, nil
}

func (l *License) ID() uint               { return l.id }
func (l *License) SID() string            { return l.sid }
func (l *License) TeamID() uint           { return l.teamID }
func (l *License) LookupHash() string     { return l.lookupHash }
func (l *License) Suspended() bool        { return l.suspended }
func (l *License) Expiration() Expiration { return l.expiration }
func (l *License) IPLimit() *int          { return l.ipLimit }
func (l *License) HWIDLimit() *int        { return l.hwidLimit }
func (l *License) Note() string           { return l.note }
func (l *License) Customers() []Customer  { return l.customers }
func (l *License) ProductIDs() []uint     { return l.productIDs }
func (l *License) CreatedAt() time.Time   { return l.createdAt }
func (l *License) UpdatedAt() time.Time   { return l.updatedAt }

// SetID sets the license ID after insertion (persistence layer use only).
func (l *License) SetID(id uint) error {
	if l.id != 0 {
		return fmt.Errorf("license ID is already set")
	}
	if id == 0 {
		return fmt.Errorf("license ID cannot be zero")
	}
	l.id = id
	return nil
}

// Suspend marks the license suspended; verification rejects it until
// unsuspended.
func (l *License) Suspend() {
	l.suspended = true
	l.updatedAt = time.Now()
}

// Unsuspend clears the suspension.
func (l *License) Unsuspend() {
	l.suspended = false
	l.updatedAt = time.Now()
}

// SetNote replaces the free-form admin note.
func (l *License) SetNote(note string) {
	l.note = note
	l.updatedAt = time.Now()
}

// HasCustomer reports whether the given customer SID is attached.
func (l *License) HasCustomer(customerSID string) bool {
	for _, c := range l.customers {
		if c.SID == customerSID {
			return true
		}
	}
	return false
}

// HasProduct reports whether the given product ID is attached. A license
// with no product attachments is valid for every product of its team.
func (l *License) HasProduct(productID uint) bool {
	if len(l.productIDs) == 0 {
		return true
	}
	for _, id := range l.productIDs {
		if id == productID {
			return true
		}
	}
	return false
}

// Activate records first activation for DURATION+ACTIVATION licenses by
// fixing the expiration date. Returns true when the expiration changed and
// must be persisted.
func (l *License) Activate(now time.Time) bool {
	updated, changed := l.expiration.Activate(now)
	if changed {
		l.expiration = updated
		l.updatedAt = now
	}
	return changed
}

// UpdateExpiration replaces the expiration policy. Transitioning into
// DURATION+CREATION recomputes the stored date from createdAt so a stale
// date from a prior policy is never silently reused.
func (l *License) UpdateExpiration(expiration Expiration) error {
	if err := expiration.Validate(); err != nil {
		return err
	}
	if expiration.Type == TypeDuration && expiration.Start == StartCreation {
		expiration = expiration.materializeFrom(l.createdAt)
	}
	l.expiration = expiration
	l.updatedAt = time.Now()
	return nil
}
