package verification

import (
	"context"
	"fmt"
	"time"

	"github.com/keyward-io/keyward/internal/domain/device"
	"github.com/keyward-io/keyward/internal/domain/license"
	"github.com/keyward-io/keyward/internal/domain/requestlog"
	"github.com/keyward-io/keyward/internal/domain/team"
)

// CheckBlacklist evaluates the team's deny rules against the caller's IP,
// resolved country, and hardware identifier. It runs before any quota gate so
// a blacklisted caller never consumes a seat or IP slot. Returns nil on pass.
func CheckBlacklist(bl team.Blacklist, ip string, geo *GeoData, hwid string) *Result {
	if entry := bl.MatchIP(ip); entry != nil {
		return FailWithDetails(StatusBlacklisted, "IP address is blacklisted")
	}
	if geo != nil {
		if entry := bl.MatchCountry(geo.Alpha3); entry != nil {
			return FailWithDetails(StatusBlacklisted, "Country is blacklisted")
		}
	}
	if entry := bl.MatchHWID(hwid); entry != nil {
		return FailWithDetails(StatusBlacklisted, "Device is blacklisted")
	}
	return nil
}

// CheckExpiration evaluates the license expiration policy at now. For
// DURATION+ACTIVATION licenses that have never verified, it fixes the
// expiration date on the aggregate and reports activated=true so the caller
// persists the write.
func CheckExpiration(lic *license.License, now time.Time) (result *Result, activated bool) {
	switch lic.Expiration().StatusAt(now) {
	case license.StatusExpired:
		return Fail(StatusLicenseExpired), false
	case license.StatusUpcoming:
		// First successful pass starts the window.
		return nil, lic.Activate(now)
	default:
		return nil, false
	}
}

// SeatGate enforces the concurrent-seat (HWID) limit.
type SeatGate struct {
	devices device.Repository
}

func NewSeatGate(devices device.Repository) *SeatGate {
	return &SeatGate{devices: devices}
}

// Check counts the license's active devices and rejects a new identifier
// once the limit is reached. A device already holding an active seat always
// renews; a timed-out device contends for a free seat like a new one.
// The caller wraps Check and the subsequent device upsert in one transaction
// so two first-time devices cannot both pass a one-seat limit.
func (g *SeatGate) Check(ctx context.Context, lic *license.License, hwid string, timeout time.Duration, now time.Time) (*Result, error) {
	limit := lic.HWIDLimit()
	if limit == nil {
		return nil, nil
	}

	cutoff := now.Add(-timeout)
	known, err := g.devices.Exists(ctx, lic.ID(), hwid, cutoff)
	if err != nil {
		return nil, fmt.Errorf("check device existence: %w", err)
	}
	if known {
		// Heartbeat renewal; an occupied seat never re-counts.
		return nil, nil
	}

	active, err := g.devices.CountActive(ctx, lic.ID(), hwid, cutoff)
	if err != nil {
		return nil, fmt.Errorf("count active devices: %w", err)
	}
	if active >= int64(*limit) {
		return Fail(StatusHWIDLimitReached), nil
	}
	return nil, nil
}

// IPGate enforces the distinct-IP limit derived from the request log.
type IPGate struct {
	logs requestlog.Repository
}

func NewIPGate(logs requestlog.Repository) *IPGate {
	return &IPGate{logs: logs}
}

// Check rejects an unseen IP once the distinct set inside the rolling period
// is full. An IP already in the set always passes regardless of count.
func (g *IPGate) Check(ctx context.Context, lic *license.License, ip string, period time.Duration, now time.Time) (*Result, error) {
	limit := lic.IPLimit()
	if limit == nil {
		return nil, nil
	}

	since := now.Add(-period)

	seen, err := g.logs.HasIP(ctx, lic.TeamID(), lic.LookupHash(), since, ip)
	if err != nil {
		return nil, fmt.Errorf("check known ip: %w", err)
	}
	if seen {
		return nil, nil
	}

	distinct, err := g.logs.CountDistinctIPs(ctx, lic.TeamID(), lic.LookupHash(), since, ip)
	if err != nil {
		return nil, fmt.Errorf("count distinct ips: %w", err)
	}
	if distinct >= int64(*limit) {
		return Fail(StatusIPLimitReached), nil
	}
	return nil, nil
}
