// Package requestlog records every verification attempt. The table is
// append-only and doubles as the source of truth for distinct-IP accounting.
package requestlog

import (
	"context"
	"time"
)

// Endpoint names which client endpoint produced the log entry.
type Endpoint string

const (
	EndpointVerify      Endpoint = "VERIFY"
	EndpointHeartbeat   Endpoint = "HEARTBEAT"
	EndpointClassloader Endpoint = "CLASSLOADER"
)

// StatusValid marks entries that passed every gate. Only these entries feed
// the distinct-IP accounting; a rejected attempt never consumes quota.
const StatusValid = "VALID"

// Entry is one verification attempt. LicenseKeyLookup may be empty when the
// request never reached license resolution.
type Entry struct {
	TeamID           uint
	Endpoint         Endpoint
	IPAddress        string
	Country          string
	LicenseKeyLookup string
	CustomerSID      string
	ProductSID       string
	HardwareID       string
	Status           string
	CreatedAt        time.Time
}

// Repository is the request log contract. Append must not participate in the
// caller's transaction: a rejected verification still gets logged.
type Repository interface {
	Append(ctx context.Context, e *Entry) error
	// CountDistinctIPs counts distinct IPs with a valid entry for the
	// license lookup since the cutoff, excluding the given IP.
	CountDistinctIPs(ctx context.Context, teamID uint, licenseKeyLookup string, since time.Time, excludeIP string) (int64, error)
	// HasIP reports whether the IP already has a valid entry for the license
	// lookup since the cutoff.
	HasIP(ctx context.Context, teamID uint, licenseKeyLookup string, since time.Time, ip string) (bool, error)
	ListRecent(ctx context.Context, teamID uint, licenseKeyLookup string, limit int) ([]*Entry, error)
}
