// Package usecases implements the verification pipeline behind the verify,
// heartbeat, and classloader endpoints.
package usecases

import (
	"context"
	"errors"
	"time"

	"github.com/keyward-io/keyward/internal/domain/device"
	"github.com/keyward-io/keyward/internal/domain/license"
	"github.com/keyward-io/keyward/internal/domain/product"
	"github.com/keyward-io/keyward/internal/domain/requestlog"
	"github.com/keyward-io/keyward/internal/domain/team"
	"github.com/keyward-io/keyward/internal/domain/verification"
	"github.com/keyward-io/keyward/internal/infrastructure/events"
	"github.com/keyward-io/keyward/internal/infrastructure/geoip"
	"github.com/keyward-io/keyward/internal/infrastructure/metrics"
	"github.com/keyward-io/keyward/internal/infrastructure/ratelimit"
	"github.com/keyward-io/keyward/internal/shared/config"
	"github.com/keyward-io/keyward/internal/shared/crypto"
	"github.com/keyward-io/keyward/internal/shared/db"
	"github.com/keyward-io/keyward/internal/shared/goroutine"
	"github.com/keyward-io/keyward/internal/shared/logger"
	"github.com/keyward-io/keyward/internal/shared/utils"
)

// GateRequest carries the fields every client endpoint feeds into the gate
// pipeline.
type GateRequest struct {
	TeamSID     string
	LicenseKey  string
	HardwareID  string
	CustomerSID string
	ProductSID  string
	IPAddress   string
	Endpoint    requestlog.Endpoint
}

// GateOutcome is the decided state of one request. Result is never nil once
// Run returns; Team, License, and Product are set as far as the pipeline got
// before deciding.
type GateOutcome struct {
	Result     *verification.Result
	Team       *team.Team
	License    *license.License
	Product    *product.Product
	Geo        *verification.GeoData
	LookupHash string
}

// Country returns the resolved alpha-3 country code, or empty.
func (o *GateOutcome) Country() string {
	if o.Geo == nil {
		return ""
	}
	return o.Geo.Alpha3
}

// Gates runs the ordered verification pipeline shared by all client
// endpoints. Each gate short-circuits: the first failure decides the request
// and no later gate runs, so a blacklisted caller never consumes a seat or
// IP slot and rate limiting rejects before any database load.
type Gates struct {
	teams     team.Repository
	licenses  license.Repository
	products  product.Repository
	devices   device.Repository
	logs      requestlog.Repository
	limiter   ratelimit.RateLimiter
	hasher    *crypto.Hasher
	geo       geoip.Resolver
	txManager *db.TransactionManager
	seatGate  *verification.SeatGate
	ipGate    *verification.IPGate
	publisher events.Publisher
	cfg       config.VerificationConfig
	logger    logger.Interface
}

func NewGates(
	teams team.Repository,
	licenses license.Repository,
	products product.Repository,
	devices device.Repository,
	logs requestlog.Repository,
	limiter ratelimit.RateLimiter,
	hasher *crypto.Hasher,
	geo geoip.Resolver,
	txManager *db.TransactionManager,
	publisher events.Publisher,
	cfg config.VerificationConfig,
	logger logger.Interface,
) *Gates {
	return &Gates{
		teams:     teams,
		licenses:  licenses,
		products:  products,
		devices:   devices,
		logs:      logs,
		limiter:   limiter,
		hasher:    hasher,
		geo:       geo,
		txManager: txManager,
		seatGate:  verification.NewSeatGate(devices),
		ipGate:    verification.NewIPGate(logs),
		publisher: publisher,
		cfg:       cfg,
		logger:    logger,
	}
}

// Run executes the gate sequence: payload shape, per-IP rate limit,
// per-(team, key) rate limit, team resolution, license resolution,
// blacklist, customer match, suspension, expiration, IP accounting, seat
// accounting, and optional product resolution. The seat check here is a
// read-only rejection; the caller claims the seat with ReserveSeat once all
// remaining gates pass.
func (g *Gates) Run(ctx context.Context, req GateRequest) *GateOutcome {
	out := &GateOutcome{}
	now := time.Now().UTC()

	if req.LicenseKey == "" || req.HardwareID == "" {
		out.Result = verification.Fail(verification.StatusBadRequest)
		return out
	}

	out.Geo = g.geo.Resolve(req.IPAddress)

	ipKey := g.hasher.RateKey("rl", "ip", req.TeamSID, req.IPAddress)
	limited, err := g.limiter.IsRateLimited(ctx, ipKey, g.cfg.IPRateLimit,
		time.Duration(g.cfg.IPRateWindowSeconds)*time.Second)
	if err != nil {
		return g.failClosed(out, "ip rate limit check failed", err)
	}
	if limited {
		metrics.RateLimitRejections.WithLabelValues("ip").Inc()
		out.Result = verification.Fail(verification.StatusRateLimit)
		return out
	}

	keyKey := g.hasher.RateKey("rl", "key", req.TeamSID, req.LicenseKey)
	limited, err = g.limiter.IsRateLimited(ctx, keyKey, g.cfg.KeyRateLimit,
		time.Duration(g.cfg.KeyRateWindowSeconds)*time.Second)
	if err != nil {
		return g.failClosed(out, "key rate limit check failed", err)
	}
	if limited {
		metrics.RateLimitRejections.WithLabelValues("key").Inc()
		out.Result = verification.Fail(verification.StatusRateLimit)
		return out
	}

	tm, err := g.teams.GetBySID(ctx, req.TeamSID)
	if err != nil {
		if errors.Is(err, team.ErrTeamNotFound) {
			out.Result = verification.Fail(verification.StatusTeamNotFound)
			return out
		}
		return g.failClosed(out, "team lookup failed", err)
	}
	out.Team = tm

	out.LookupHash = g.hasher.LookupHash(req.LicenseKey, tm.SID())
	lic, err := g.licenses.GetByLookupHash(ctx, tm.ID(), out.LookupHash)
	if err != nil {
		if errors.Is(err, license.ErrLicenseNotFound) {
			out.Result = verification.Fail(verification.StatusLicenseNotFound)
			return out
		}
		return g.failClosed(out, "license lookup failed", err)
	}
	out.License = lic

	if result := verification.CheckBlacklist(tm.Blacklist(), req.IPAddress, out.Geo, req.HardwareID); result != nil {
		out.Result = result
		return out
	}

	if result := checkCustomer(tm, lic, req.CustomerSID); result != nil {
		out.Result = result
		return out
	}

	if lic.Suspended() {
		out.Result = verification.Fail(verification.StatusLicenseSuspended)
		return out
	}

	result, activated := verification.CheckExpiration(lic, now)
	if result != nil {
		out.Result = result
		return out
	}
	if activated {
		if err := g.licenses.UpdateExpirationDate(ctx, lic); err != nil {
			return g.failClosed(out, "activation write failed", err)
		}
	}

	result, err = g.ipGate.Check(ctx, lic, req.IPAddress, tm.Settings().IPLimitPeriod.Duration(), now)
	if err != nil {
		return g.failClosed(out, "ip accounting failed", err)
	}
	if result != nil {
		out.Result = result
		return out
	}

	result, err = g.seatGate.Check(ctx, lic, req.HardwareID, tm.Settings().DeviceTimeout(), now)
	if err != nil {
		return g.failClosed(out, "seat accounting failed", err)
	}
	if result != nil {
		out.Result = result
		return out
	}

	if req.ProductSID != "" {
		prd, err := g.products.GetProductBySID(ctx, tm.ID(), req.ProductSID)
		if err != nil {
			if errors.Is(err, product.ErrProductNotFound) {
				out.Result = verification.Fail(verification.StatusProductNotFound)
				return out
			}
			return g.failClosed(out, "product lookup failed", err)
		}
		if !lic.HasProduct(prd.ID()) {
			out.Result = verification.Fail(verification.StatusProductNotFound)
			return out
		}
		out.Product = prd
	}

	out.Result = verification.Valid()
	return out
}

// checkCustomer enforces the customer-match gate. A supplied customer must
// match one attached to the license; strict-customer teams additionally
// require one to be supplied whenever the license has customers.
func checkCustomer(tm *team.Team, lic *license.License, customerSID string) *verification.Result {
	if len(lic.Customers()) == 0 {
		return nil
	}
	if customerSID == "" {
		if tm.Settings().StrictCustomers {
			return verification.Fail(verification.StatusCustomerNotFound)
		}
		return nil
	}
	if !lic.HasCustomer(customerSID) {
		return verification.Fail(verification.StatusCustomerNotFound)
	}
	return nil
}

// ReserveSeat re-runs the seat check and upserts the device heartbeat in one
// transaction. The count and the write share row locks, so two concurrent
// first-time devices cannot both squeeze past a seat limit of one. Returns
// the rejection result, or nil once the seat is held.
func (g *Gates) ReserveSeat(ctx context.Context, tm *team.Team, lic *license.License, hwid, ip, country string) *verification.Result {
	now := time.Now().UTC()

	var rejected *verification.Result
	err := g.txManager.RunInTransaction(ctx, func(txCtx context.Context) error {
		result, err := g.seatGate.Check(txCtx, lic, hwid, tm.Settings().DeviceTimeout(), now)
		if err != nil {
			return err
		}
		if result != nil {
			rejected = result
			return nil
		}

		d, err := device.NewDevice(lic.ID(), hwid, ip, country, now)
		if err != nil {
			return err
		}
		return g.devices.Upsert(txCtx, d)
	})
	if err != nil {
		g.logger.Errorw("seat reservation failed", "error", err, "license_sid", lic.SID())
		return verification.Fail(verification.StatusInternalServerError)
	}

	return rejected
}

// Finish records the decided outcome: request log append, metrics, event
// publish, and the structured rejection log. It runs for every decision that
// got far enough to know the team; nothing here can change the result.
func (g *Gates) Finish(ctx context.Context, req GateRequest, out *GateOutcome) {
	status := string(out.Result.Status)
	metrics.VerificationsTotal.WithLabelValues(string(req.Endpoint), status).Inc()

	if out.Team == nil {
		return
	}

	productSID := ""
	if out.Product != nil {
		productSID = out.Product.SID()
	}

	entry := &requestlog.Entry{
		TeamID:           out.Team.ID(),
		Endpoint:         req.Endpoint,
		IPAddress:        req.IPAddress,
		Country:          out.Country(),
		LicenseKeyLookup: out.LookupHash,
		CustomerSID:      req.CustomerSID,
		ProductSID:       productSID,
		HardwareID:       req.HardwareID,
		Status:           status,
		CreatedAt:        out.Result.Timestamp,
	}
	if err := g.logs.Append(ctx, entry); err != nil {
		g.logger.Errorw("request log append failed", "error", err, "team_sid", req.TeamSID)
	}

	// Broker latency must not delay the response; the event context outlives
	// the request.
	evt := events.VerificationEvent{
		TeamSID:    req.TeamSID,
		Endpoint:   string(req.Endpoint),
		Status:     status,
		Valid:      out.Result.IsValid(),
		IPAddress:  req.IPAddress,
		Country:    out.Country(),
		ProductSID: productSID,
		Timestamp:  out.Result.Timestamp,
	}
	evtCtx := context.WithoutCancel(ctx)
	goroutine.SafeGo(g.logger, "verification-event", func() {
		if err := g.publisher.PublishVerification(evtCtx, evt); err != nil {
			g.logger.Warnw("verification event publish failed", "error", err, "team_sid", evt.TeamSID)
		}
	})

	if !out.Result.IsValid() {
		g.logger.Infow("verification rejected",
			"team_sid", req.TeamSID,
			"endpoint", string(req.Endpoint),
			"status", status,
			"license_key", utils.MaskLicenseKey(req.LicenseKey),
			"hardware_id", utils.MaskHardwareID(req.HardwareID),
		)
	}
}

func (g *Gates) failClosed(out *GateOutcome, msg string, err error) *GateOutcome {
	g.logger.Errorw(msg, "error", err)
	out.Result = verification.Fail(verification.StatusInternalServerError)
	return out
}
