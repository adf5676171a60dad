// Package team contains the team aggregate: the tenant that owns licenses,
// products, customers, and the verification settings applied to every client
// request.
package team

import (
	"fmt"
	"time"
)

// IPLimitPeriod is the rolling window used for distinct-IP accounting.
type IPLimitPeriod string

const (
	IPLimitPeriodDay   IPLimitPeriod = "DAY"
	IPLimitPeriodWeek  IPLimitPeriod = "WEEK"
	IPLimitPeriodMonth IPLimitPeriod = "MONTH"
)

func (p IPLimitPeriod) IsValid() bool {
	switch p {
	case IPLimitPeriodDay, IPLimitPeriodWeek, IPLimitPeriodMonth:
		return true
	}
	return false
}

// Duration returns the rolling window length.
func (p IPLimitPeriod) Duration() time.Duration {
	switch p {
	case IPLimitPeriodWeek:
		return 7 * 24 * time.Hour
	case IPLimitPeriodMonth:
		return 30 * 24 * time.Hour
	default:
		return 24 * time.Hour
	}
}

// Settings are the per-team verification knobs.
type Settings struct {
	StrictCustomers      bool
	IPLimitPeriod        IPLimitPeriod
	DeviceTimeoutSeconds int
}

// DeviceTimeout returns the window within which a device counts as active.
func (s Settings) DeviceTimeout() time.Duration {
	if s.DeviceTimeoutSeconds <= 0 {
		return 10 * time.Minute
	}
	return time.Duration(s.DeviceTimeoutSeconds) * time.Second
}

// Limits are the plan feature gates for a team.
type Limits struct {
	AllowClassloader bool
	MaxLicenses      int
	MaxProducts      int
}

// KeyPair is the team's RSA keypair. The private key is used server-side
// only, to decrypt classloader session keys.
type KeyPair struct {
	PublicPEM  string
	PrivatePEM string
}

// Team is the aggregate root for a tenant. Soft-deleted teams keep their row
// but must be invisible to every lookup.
type Team struct {
	id        uint
	sid       string
	name      string
	settings  Settings
	limits    Limits
	keyPair   KeyPair
	blacklist Blacklist
	deletedAt *time.Time
	createdAt time.Time
	updatedAt time.Time
}

// NewTeam creates a team at signup time with default settings and the
// generated keypair.
func NewTeam(sid, name string, keyPair KeyPair) (*Team, error) {
	if sid == "" {
		return nil, fmt.Errorf("team sid is required")
	}
	if name == "" {
		return nil, fmt.Errorf("team name is required")
	}
	if keyPair.PublicPEM == "" || keyPair.PrivatePEM == "" {
		return nil, fmt.Errorf("team keypair is required")
	}

	now := time.Now()
	return &Team{
		sid:  sid,
		name: name,
		settings: Settings{
			StrictCustomers:      false,
			IPLimitPeriod:        IPLimitPeriodDay,
			DeviceTimeoutSeconds: 600,
		},
		limits: Limits{
			AllowClassloader: false,
			MaxLicenses:      100,
			MaxProducts:      10,
		},
		keyPair:   keyPair,
		createdAt: now,
		updatedAt: now,
	}, nil
}

// ReconstructTeam rebuilds a team from persistence.
func ReconstructTeam(
	id uint,
	sid, name string,
	settings Settings,
	limits Limits,
	keyPair KeyPair,
	blacklist Blacklist,
	deletedAt *time.Time,
	createdAt, updatedAt time.Time,
) (*Team, error) {
	if id == 0 {
		return nil, fmt.Errorf("team ID cannot be zero")
	}
	if !settings.IPLimitPeriod.IsValid() {
		return nil, fmt.Errorf("invalid IP limit period: %s", settings.IPLimitPeriod)
	}

	return &Team{
		id:        id,
		sid:       sid,
		name:      name,
		settings:  settings,
		limits:    limits,
		keyPair:   keyPair,
		blacklist: blacklist,
		deletedAt: deletedAt,
		createdAt: createdAt,
		updatedAt: updatedAt,
	}, nil
}

func (t *Team) ID() uint             { return t.id }
func (t *Team) SID() string          { return t.sid }
func (t *Team) Name() string         { return t.name }
func (t *Team) Settings() Settings   { return t.settings }
func (t *Team) Limits() Limits       { return t.limits }
func (t *Team) KeyPair() KeyPair     { return t.keyPair }
func (t *Team) Blacklist() Blacklist { return t.blacklist }
func (t *Team) CreatedAt() time.Time { return t.createdAt }
func (t *Team) UpdatedAt() time.Time { return t.updatedAt }

// SetID sets the team ID after insertion (persistence layer use only).
func (t *Team) SetID(id uint) error {
	if t.id != 0 {
		return fmt.Errorf("team ID is already set")
	}
	if id == 0 {
		return fmt.Errorf("team ID cannot be zero")
	}
	t.id = id
	return nil
}

// IsDeleted reports whether the team has been soft-deleted.
func (t *Team) IsDeleted() bool {
	return t.deletedAt != nil
}

// UpdateSettings replaces the team's verification settings.
func (t *Team) UpdateSettings(settings Settings) error {
	if !settings.IPLimitPeriod.IsValid() {
		return fmt.Errorf("invalid IP limit period: %s", settings.IPLimitPeriod)
	}
	t.settings = settings
	t.updatedAt = time.Now()
	return nil
}
