package verification

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/keyward-io/keyward/internal/domain/device"
	"github.com/keyward-io/keyward/internal/domain/license"
	"github.com/keyward-io/keyward/internal/domain/requestlog"
	"github.com/keyward-io/keyward/internal/domain/team"
)

func TestCheckBlacklist(t *testing.T) {
	bl := team.Blacklist{
		{Type: team.BlacklistTypeIP, Value: "9.9.9.9"},
		{Type: team.BlacklistTypeCountry, Value: "PRK"},
		{Type: team.BlacklistTypeHWID, Value: "bad-hwid"},
	}

	assert.Nil(t, CheckBlacklist(bl, "1.1.1.1", nil, "hwid-1"))

	res := CheckBlacklist(bl, "9.9.9.9", nil, "hwid-1")
	require.NotNil(t, res)
	assert.Equal(t, StatusBlacklisted, res.Status)
	assert.Equal(t, "IP address is blacklisted", res.Details)

	res = CheckBlacklist(bl, "1.1.1.1", &GeoData{Alpha3: "prk"}, "hwid-1")
	require.NotNil(t, res)
	assert.Equal(t, "Country is blacklisted", res.Details)

	res = CheckBlacklist(bl, "1.1.1.1", nil, "bad-hwid")
	require.NotNil(t, res)
	assert.Equal(t, "Device is blacklisted", res.Details)
}

func TestCheckBlacklist_EmptyListPasses(t *testing.T) {
	assert.Nil(t, CheckBlacklist(nil, "1.1.1.1", &GeoData{Alpha3: "USA"}, "hwid"))
}

func TestCheckExpiration_Never(t *testing.T) {
	lic := mustLicense(t, license.Never(), nil, nil)

	res, activated := CheckExpiration(lic, time.Now())
	assert.Nil(t, res)
	assert.False(t, activated)
}

func TestCheckExpiration_ExpiredDate(t *testing.T) {
	lic := mustLicense(t, license.OnDate(time.Now().Add(-time.Hour)), nil, nil)

	res, _ := CheckExpiration(lic, time.Now())
	require.NotNil(t, res)
	assert.Equal(t, StatusLicenseExpired, res.Status)
}

func TestCheckExpiration_ActivationStartsWindow(t *testing.T) {
	lic := mustLicense(t, license.AfterDays(7, license.StartActivation), nil, nil)
	now := time.Now()

	res, activated := CheckExpiration(lic, now)
	assert.Nil(t, res)
	assert.True(t, activated)
	require.NotNil(t, lic.Expiration().Date)

	// Second pass: window already running, no further write.
	res, activated = CheckExpiration(lic, now.Add(time.Minute))
	assert.Nil(t, res)
	assert.False(t, activated)

	// After the window closes it is expired.
	res, _ = CheckExpiration(lic, now.Add(8*24*time.Hour))
	require.NotNil(t, res)
	assert.Equal(t, StatusLicenseExpired, res.Status)
}

type fakeDeviceRepo struct {
	known  map[string]bool
	beats  map[string]time.Time
	active int64
}

func (f *fakeDeviceRepo) CountActive(ctx context.Context, licenseID uint, identifier string, since time.Time) (int64, error) {
	return f.active, nil
}

func (f *fakeDeviceRepo) Exists(ctx context.Context, licenseID uint, identifier string, activeSince time.Time) (bool, error) {
	if !f.known[identifier] {
		return false, nil
	}
	if beat, ok := f.beats[identifier]; ok && beat.Before(activeSince) {
		return false, nil
	}
	return true, nil
}

func (f *fakeDeviceRepo) Upsert(ctx context.Context, d *device.Device) error { return nil }

func (f *fakeDeviceRepo) ListByLicense(ctx context.Context, licenseID uint) ([]*device.Device, error) {
	return nil, nil
}

func (f *fakeDeviceRepo) Forget(ctx context.Context, licenseID uint, identifier string) error {
	return nil
}

func TestSeatGate(t *testing.T) {
	one := 1
	lic := mustLicense(t, license.Never(), nil, &one)
	repo := &fakeDeviceRepo{known: map[string]bool{"seat-1": true}, active: 1}
	gate := NewSeatGate(repo)
	timeout := 10 * time.Minute

	// Known device renews even though the limit is full.
	res, err := gate.Check(context.Background(), lic, "seat-1", timeout, time.Now())
	require.NoError(t, err)
	assert.Nil(t, res)

	// New device with the limit full is rejected.
	res, err = gate.Check(context.Background(), lic, "seat-2", timeout, time.Now())
	require.NoError(t, err)
	require.NotNil(t, res)
	assert.Equal(t, StatusHWIDLimitReached, res.Status)

	// New device with a free seat passes.
	repo.active = 0
	res, err = gate.Check(context.Background(), lic, "seat-2", timeout, time.Now())
	require.NoError(t, err)
	assert.Nil(t, res)
}

func TestSeatGate_StaleDeviceContendsLikeNew(t *testing.T) {
	one := 1
	lic := mustLicense(t, license.Never(), nil, &one)
	now := time.Now()
	timeout := 10 * time.Minute

	// seat-1 last beat two hours ago; seat-2 holds the only seat.
	repo := &fakeDeviceRepo{
		known:  map[string]bool{"seat-1": true, "seat-2": true},
		beats:  map[string]time.Time{"seat-1": now.Add(-2 * time.Hour), "seat-2": now},
		active: 1,
	}
	gate := NewSeatGate(repo)

	// The timed-out device no longer holds its seat and the limit is full.
	res, err := gate.Check(context.Background(), lic, "seat-1", timeout, now)
	require.NoError(t, err)
	require.NotNil(t, res)
	assert.Equal(t, StatusHWIDLimitReached, res.Status)

	// The device that kept beating renews as usual.
	res, err = gate.Check(context.Background(), lic, "seat-2", timeout, now)
	require.NoError(t, err)
	assert.Nil(t, res)
}

func TestSeatGate_NoLimit(t *testing.T) {
	lic := mustLicense(t, license.Never(), nil, nil)
	gate := NewSeatGate(&fakeDeviceRepo{active: 1000})

	res, err := gate.Check(context.Background(), lic, "any", time.Minute, time.Now())
	require.NoError(t, err)
	assert.Nil(t, res)
}

type fakeLogRepo struct {
	seen     map[string]bool
	distinct int64
}

func (f *fakeLogRepo) Append(ctx context.Context, e *requestlog.Entry) error { return nil }

func (f *fakeLogRepo) CountDistinctIPs(ctx context.Context, teamID uint, lookup string, since time.Time, excludeIP string) (int64, error) {
	return f.distinct, nil
}

func (f *fakeLogRepo) HasIP(ctx context.Context, teamID uint, lookup string, since time.Time, ip string) (bool, error) {
	return f.seen[ip], nil
}

func (f *fakeLogRepo) ListRecent(ctx context.Context, teamID uint, lookup string, limit int) ([]*requestlog.Entry, error) {
	return nil, nil
}

func TestIPGate(t *testing.T) {
	two := 2
	lic := mustLicense(t, license.Never(), &two, nil)
	repo := &fakeLogRepo{seen: map[string]bool{"1.1.1.1": true, "2.2.2.2": true}, distinct: 2}
	gate := NewIPGate(repo)
	period := 24 * time.Hour

	// Already-seen IP passes regardless of count.
	res, err := gate.Check(context.Background(), lic, "1.1.1.1", period, time.Now())
	require.NoError(t, err)
	assert.Nil(t, res)

	// Third distinct IP is rejected.
	res, err = gate.Check(context.Background(), lic, "3.3.3.3", period, time.Now())
	require.NoError(t, err)
	require.NotNil(t, res)
	assert.Equal(t, StatusIPLimitReached, res.Status)
	assert.Equal(t, "IP limit reached", res.Details)

	// With room left a new IP passes.
	repo.distinct = 1
	res, err = gate.Check(context.Background(), lic, "3.3.3.3", period, time.Now())
	require.NoError(t, err)
	assert.Nil(t, res)
}

func TestIPGate_NoLimit(t *testing.T) {
	lic := mustLicense(t, license.Never(), nil, nil)
	gate := NewIPGate(&fakeLogRepo{distinct: 1000})

	res, err := gate.Check(context.Background(), lic, "1.1.1.1", 24*time.Hour, time.Now())
	require.NoError(t, err)
	assert.Nil(t, res)
}

func mustLicense(t *testing.T, exp license.Expiration, ipLimit, hwidLimit *int) *license.License {
	t.Helper()
	lic, err := license.ReconstructLicense(
		1, "lic_test", 1, "lookup-hash", false,
		exp.Materialize(time.Now()),
		ipLimit, hwidLimit, "", nil, nil,
		time.Now(), time.Now(),
	)
	require.NoError(t, err)
	return lic
}
