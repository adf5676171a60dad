package usecases

import (
	"context"
	"sync"
	"time"

	"github.com/keyward-io/keyward/internal/domain/device"
	"github.com/keyward-io/keyward/internal/domain/license"
	"github.com/keyward-io/keyward/internal/domain/product"
	"github.com/keyward-io/keyward/internal/domain/requestlog"
	"github.com/keyward-io/keyward/internal/domain/team"
	"github.com/keyward-io/keyward/internal/infrastructure/events"
)

type fakeTeamRepo struct {
	teams map[string]*team.Team
}

func newFakeTeamRepo(teams ...*team.Team) *fakeTeamRepo {
	r := &fakeTeamRepo{teams: make(map[string]*team.Team)}
	for _, t := range teams {
		r.teams[t.SID()] = t
	}
	return r
}

func (r *fakeTeamRepo) Create(ctx context.Context, t *team.Team) error {
	r.teams[t.SID()] = t
	return nil
}

func (r *fakeTeamRepo) GetBySID(ctx context.Context, sid string) (*team.Team, error) {
	t, ok := r.teams[sid]
	if !ok || t.IsDeleted() {
		return nil, team.ErrTeamNotFound
	}
	return t, nil
}

func (r *fakeTeamRepo) GetByID(ctx context.Context, id uint) (*team.Team, error) {
	for _, t := range r.teams {
		if t.ID() == id && !t.IsDeleted() {
			return t, nil
		}
	}
	return nil, team.ErrTeamNotFound
}

func (r *fakeTeamRepo) UpdateSettings(ctx context.Context, t *team.Team) error { return nil }
func (r *fakeTeamRepo) AddBlacklistEntry(ctx context.Context, teamID uint, entry team.BlacklistEntry) error {
	return nil
}
func (r *fakeTeamRepo) RemoveBlacklistEntry(ctx context.Context, teamID uint, entry team.BlacklistEntry) error {
	return nil
}
func (r *fakeTeamRepo) SoftDelete(ctx context.Context, id uint) error { return nil }

type fakeLicenseRepo struct {
	byLookup    map[string]*license.License
	activations int
}

func newFakeLicenseRepo(licenses ...*license.License) *fakeLicenseRepo {
	r := &fakeLicenseRepo{byLookup: make(map[string]*license.License)}
	for _, l := range licenses {
		r.byLookup[l.LookupHash()] = l
	}
	return r
}

func (r *fakeLicenseRepo) Create(ctx context.Context, l *license.License) error {
	r.byLookup[l.LookupHash()] = l
	return nil
}

func (r *fakeLicenseRepo) GetByLookupHash(ctx context.Context, teamID uint, lookupHash string) (*license.License, error) {
	l, ok := r.byLookup[lookupHash]
	if !ok || l.TeamID() != teamID {
		return nil, license.ErrLicenseNotFound
	}
	return l, nil
}

func (r *fakeLicenseRepo) GetBySID(ctx context.Context, teamID uint, sid string) (*license.License, error) {
	for _, l := range r.byLookup {
		if l.TeamID() == teamID && l.SID() == sid {
			return l, nil
		}
	}
	return nil, license.ErrLicenseNotFound
}

func (r *fakeLicenseRepo) List(ctx context.Context, teamID uint, page, pageSize int) ([]*license.License, int64, error) {
	return nil, 0, nil
}

func (r *fakeLicenseRepo) Update(ctx context.Context, l *license.License) error { return nil }

func (r *fakeLicenseRepo) UpdateExpirationDate(ctx context.Context, l *license.License) error {
	r.activations++
	return nil
}

func (r *fakeLicenseRepo) Delete(ctx context.Context, teamID uint, sid string) error { return nil }
func (r *fakeLicenseRepo) CountByTeam(ctx context.Context, teamID uint) (int64, error) {
	return int64(len(r.byLookup)), nil
}
func (r *fakeLicenseRepo) AttachCustomer(ctx context.Context, licenseID, customerID uint) error {
	return nil
}
func (r *fakeLicenseRepo) AttachProduct(ctx context.Context, licenseID, productID uint) error {
	return nil
}

type fakeProductRepo struct {
	products map[string]*product.Product
	releases []*product.Release
	touched  []uint
}

func newFakeProductRepo() *fakeProductRepo {
	return &fakeProductRepo{products: make(map[string]*product.Product)}
}

func (r *fakeProductRepo) CreateProduct(ctx context.Context, p *product.Product) error {
	r.products[p.SID()] = p
	return nil
}

func (r *fakeProductRepo) GetProductBySID(ctx context.Context, teamID uint, sid string) (*product.Product, error) {
	p, ok := r.products[sid]
	if !ok || p.TeamID() != teamID {
		return nil, product.ErrProductNotFound
	}
	return p, nil
}

func (r *fakeProductRepo) ListProducts(ctx context.Context, teamID uint, page, pageSize int) ([]*product.Product, int64, error) {
	return nil, 0, nil
}
func (r *fakeProductRepo) UpdateProduct(ctx context.Context, p *product.Product) error { return nil }
func (r *fakeProductRepo) DeleteProduct(ctx context.Context, teamID uint, sid string) error {
	return nil
}

func (r *fakeProductRepo) CreateRelease(ctx context.Context, rel *product.Release) error {
	r.releases = append(r.releases, rel)
	return nil
}

func (r *fakeProductRepo) GetReleaseByVersion(ctx context.Context, productID uint, version string) (*product.Release, error) {
	for _, rel := range r.releases {
		if rel.ProductID() == productID && rel.Version() == version {
			return rel, nil
		}
	}
	return nil, product.ErrReleaseNotFound
}

func (r *fakeProductRepo) GetLatestRelease(ctx context.Context, productID uint, branch string) (*product.Release, error) {
	for _, rel := range r.releases {
		if rel.ProductID() == productID && rel.Latest() && (branch == "" || rel.Branch() == branch) {
			return rel, nil
		}
	}
	return nil, product.ErrReleaseNotFound
}

func (r *fakeProductRepo) ListReleases(ctx context.Context, productID uint) ([]*product.Release, error) {
	return r.releases, nil
}
func (r *fakeProductRepo) UpdateRelease(ctx context.Context, rel *product.Release) error { return nil }
func (r *fakeProductRepo) SetLatestRelease(ctx context.Context, rel *product.Release) error {
	return nil
}

func (r *fakeProductRepo) TouchReleaseLastSeen(ctx context.Context, releaseID uint) error {
	r.touched = append(r.touched, releaseID)
	return nil
}

type seatKey struct {
	licenseID  uint
	identifier string
}

type fakeDeviceRepo struct {
	mu    sync.Mutex
	seats map[seatKey]*device.Device
}

func newFakeDeviceRepo() *fakeDeviceRepo {
	return &fakeDeviceRepo{seats: make(map[seatKey]*device.Device)}
}

func (r *fakeDeviceRepo) CountActive(ctx context.Context, licenseID uint, identifier string, since time.Time) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var count int64
	for k, d := range r.seats {
		if k.licenseID == licenseID && k.identifier != identifier && !d.Forgotten() && !d.LastBeatAt().Before(since) {
			count++
		}
	}
	return count, nil
}

func (r *fakeDeviceRepo) Exists(ctx context.Context, licenseID uint, identifier string, activeSince time.Time) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	d, ok := r.seats[seatKey{licenseID, identifier}]
	return ok && !d.Forgotten() && !d.LastBeatAt().Before(activeSince), nil
}

func (r *fakeDeviceRepo) Upsert(ctx context.Context, d *device.Device) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.seats[seatKey{d.LicenseID(), d.Identifier()}] = d
	return nil
}

func (r *fakeDeviceRepo) ListByLicense(ctx context.Context, licenseID uint) ([]*device.Device, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*device.Device
	for k, d := range r.seats {
		if k.licenseID == licenseID {
			out = append(out, d)
		}
	}
	return out, nil
}

func (r *fakeDeviceRepo) Forget(ctx context.Context, licenseID uint, identifier string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	d, ok := r.seats[seatKey{licenseID, identifier}]
	if !ok {
		return device.ErrDeviceNotFound
	}
	d.Forget()
	return nil
}

type fakeLogRepo struct {
	mu      sync.Mutex
	entries []*requestlog.Entry
}

func (r *fakeLogRepo) Append(ctx context.Context, e *requestlog.Entry) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.entries = append(r.entries, e)
	return nil
}

func (r *fakeLogRepo) CountDistinctIPs(ctx context.Context, teamID uint, lookup string, since time.Time, excludeIP string) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	seen := make(map[string]bool)
	for _, e := range r.entries {
		if e.TeamID == teamID && e.LicenseKeyLookup == lookup && e.Status == requestlog.StatusValid &&
			!e.CreatedAt.Before(since) && e.IPAddress != excludeIP {
			seen[e.IPAddress] = true
		}
	}
	return int64(len(seen)), nil
}

func (r *fakeLogRepo) HasIP(ctx context.Context, teamID uint, lookup string, since time.Time, ip string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, e := range r.entries {
		if e.TeamID == teamID && e.LicenseKeyLookup == lookup && e.Status == requestlog.StatusValid &&
			!e.CreatedAt.Before(since) && e.IPAddress == ip {
			return true, nil
		}
	}
	return false, nil
}

func (r *fakeLogRepo) ListRecent(ctx context.Context, teamID uint, lookup string, limit int) ([]*requestlog.Entry, error) {
	return r.entries, nil
}

func (r *fakeLogRepo) statuses() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []string
	for _, e := range r.entries {
		out = append(out, e.Status)
	}
	return out
}

// fakeRateLimiter rejects the listed keys and counts calls.
type fakeRateLimiter struct {
	limited map[string]bool
	calls   int
}

func (r *fakeRateLimiter) IsRateLimited(ctx context.Context, key string, limit int, window time.Duration) (bool, error) {
	r.calls++
	return r.limited[key], nil
}

type fakeSessionGuard struct {
	mu   sync.Mutex
	used map[string]bool
}

func newFakeSessionGuard() *fakeSessionGuard {
	return &fakeSessionGuard{used: make(map[string]bool)}
}

func (g *fakeSessionGuard) MarkUsed(ctx context.Context, keyHash string, window time.Duration) (bool, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.used[keyHash] {
		return true, nil
	}
	g.used[keyHash] = true
	return false, nil
}

type capturePublisher struct {
	mu     sync.Mutex
	events []events.VerificationEvent
}

func (p *capturePublisher) PublishVerification(ctx context.Context, event events.VerificationEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, event)
	return nil
}

func (p *capturePublisher) Close() error { return nil }

// published snapshots the events seen so far. Publishing happens off the
// request goroutine, so assertions poll this until the expected count shows.
func (p *capturePublisher) published() []events.VerificationEvent {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]events.VerificationEvent(nil), p.events...)
}

func (p *capturePublisher) waitFor(n int) []events.VerificationEvent {
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if got := p.published(); len(got) >= n {
			return got
		}
		time.Sleep(5 * time.Millisecond)
	}
	return p.published()
}
