package license

import (
	"fmt"
	"time"
)

// ExpirationType determines how a license's validity window is calculated.
type ExpirationType string

const (
	TypeNever    ExpirationType = "NEVER"
	TypeDate     ExpirationType = "DATE"
	TypeDuration ExpirationType = "DURATION"
)

func (t ExpirationType) IsValid() bool {
	switch t {
	case TypeNever, TypeDate, TypeDuration:
		return true
	}
	return false
}

// ExpirationStart anchors the window of a DURATION license.
type ExpirationStart string

const (
	StartCreation   ExpirationStart = "CREATION"
	StartActivation ExpirationStart = "ACTIVATION"
)

func (s ExpirationStart) IsValid() bool {
	switch s {
	case StartCreation, StartActivation:
		return true
	}
	return false
}

// ExpirationStatus is the derived validity state of a license at a point in
// time. Upcoming means a DURATION+ACTIVATION license that has never passed a
// verification, so its window has not started.
type ExpirationStatus string

const (
	StatusActive   ExpirationStatus = "ACTIVE"
	StatusExpired  ExpirationStatus = "EXPIRED"
	StatusUpcoming ExpirationStatus = "UPCOMING"
)

// Expiration is the value object describing a license's expiration policy.
// Date is the materialized expiration instant: set at issuance for
// DATE and DURATION+CREATION, and nil for DURATION+ACTIVATION until the
// first successful verification fixes it.
type Expiration struct {
	Type  ExpirationType
	Start ExpirationStart
	Date  *time.Time
	Days  *int
}

// Never returns the policy of a license that never expires.
func Never() Expiration {
	return Expiration{Type: TypeNever, Start: StartCreation}
}

// OnDate returns a fixed-date policy.
func OnDate(date time.Time) Expiration {
	return Expiration{Type: TypeDate, Start: StartCreation, Date: &date}
}

// AfterDays returns a duration policy anchored at creation or activation.
func AfterDays(days int, start ExpirationStart) Expiration {
	return Expiration{Type: TypeDuration, Start: start, Days: &days}
}

func (e Expiration) Validate() error {
	if !e.Type.IsValid() {
		return fmt.Errorf("invalid expiration type: %s", e.Type)
	}
	if e.Type == TypeDate && e.Date == nil {
		return fmt.Errorf("expiration date is required for DATE licenses")
	}
	if e.Type == TypeDuration {
		if !e.Start.IsValid() {
			return fmt.Errorf("invalid expiration start: %s", e.Start)
		}
		if e.Days == nil || *e.Days <= 0 {
			return fmt.Errorf("expiration days must be positive for DURATION licenses")
		}
	}
	return nil
}

// CalculateExpirationDate computes from + days. Exposed for reuse by the
// dashboard when previewing license edits.
func CalculateExpirationDate(from time.Time, days int) time.Time {
	return from.Add(time.Duration(days) * 24 * time.Hour)
}

// Materialize fixes the stored date for policies whose window is known at
// issuance. DURATION+ACTIVATION stays nil until Activate.
func (e Expiration) Materialize(createdAt time.Time) Expiration {
	if e.Type == TypeDuration && e.Start == StartCreation {
		return e.materializeFrom(createdAt)
	}
	return e
}

func (e Expiration) materializeFrom(anchor time.Time) Expiration {
	d := CalculateExpirationDate(anchor, *e.Days)
	e.Date = &d
	return e
}

// Activate fixes the expiration date of a DURATION+ACTIVATION policy on the
// first successful verification. Returns the updated policy and whether it
// changed.
func (e Expiration) Activate(now time.Time) (Expiration, bool) {
	if e.Type != TypeDuration || e.Start != StartActivation || e.Date != nil {
		return e, false
	}
	return e.materializeFrom(now), true
}

// StatusAt derives the validity state at the given instant.
func (e Expiration) StatusAt(now time.Time) ExpirationStatus {
	switch e.Type {
	case TypeNever:
		return StatusActive
	case TypeDate:
		if e.Date != nil && !e.Date.After(now) {
			return StatusExpired
		}
		return StatusActive
	case TypeDuration:
		if e.Date == nil {
			if e.Start == StartActivation {
				return StatusUpcoming
			}
			// DURATION+CREATION with no materialized date should not occur;
			// treat as active rather than locking the customer out.
			return StatusActive
		}
		if !e.Date.After(now) {
			return StatusExpired
		}
		return StatusActive
	default:
		return StatusExpired
	}
}
