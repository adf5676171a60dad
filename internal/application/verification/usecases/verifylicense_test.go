package usecases

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/keyward-io/keyward/internal/domain/license"
	"github.com/keyward-io/keyward/internal/domain/product"
	"github.com/keyward-io/keyward/internal/domain/requestlog"
	"github.com/keyward-io/keyward/internal/domain/team"
	"github.com/keyward-io/keyward/internal/domain/verification"
	"github.com/keyward-io/keyward/internal/infrastructure/geoip"
	"github.com/keyward-io/keyward/internal/shared/config"
	"github.com/keyward-io/keyward/internal/shared/crypto"
	"github.com/keyward-io/keyward/internal/shared/db"
	"github.com/keyward-io/keyward/internal/shared/logger"
)

const (
	testTeamSID    = "team_1"
	testLicenseKey = "AAAAA-BBBBB-CCCCC-DDDDD-EEEEE"
)

var testHasher = crypto.NewHasher("test-secret")

type env struct {
	gates     *Gates
	verify    *VerifyLicenseUseCase
	heartbeat *HeartbeatUseCase

	teams     *fakeTeamRepo
	licenses  *fakeLicenseRepo
	products  *fakeProductRepo
	devices   *fakeDeviceRepo
	logs      *fakeLogRepo
	limiter   *fakeRateLimiter
	geo       geoip.StaticResolver
	publisher *capturePublisher
}

func newEnv(t *testing.T, tm *team.Team, licenses ...*license.License) *env {
	gormDB, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)

	e := &env{
		teams:     newFakeTeamRepo(tm),
		licenses:  newFakeLicenseRepo(licenses...),
		products:  newFakeProductRepo(),
		devices:   newFakeDeviceRepo(),
		logs:      &fakeLogRepo{},
		limiter:   &fakeRateLimiter{limited: make(map[string]bool)},
		geo:       geoip.StaticResolver{},
		publisher: &capturePublisher{},
	}

	cfg := config.VerificationConfig{
		IPRateLimit:                  30,
		IPRateWindowSeconds:          60,
		KeyRateLimit:                 20,
		KeyRateWindowSeconds:         10,
		SessionKeyReuseWindowSeconds: 900,
	}

	log := logger.NewLogger()
	e.gates = NewGates(e.teams, e.licenses, e.products, e.devices, e.logs,
		e.limiter, testHasher, e.geo, db.NewTransactionManager(gormDB),
		e.publisher, cfg, log)
	e.verify = NewVerifyLicenseUseCase(e.gates, log)
	e.heartbeat = NewHeartbeatUseCase(e.verify)
	return e
}

func testTeam(t *testing.T, mutate func(*team.Settings, *team.Limits, *team.Blacklist)) *team.Team {
	settings := team.Settings{
		StrictCustomers:      false,
		IPLimitPeriod:        team.IPLimitPeriodDay,
		DeviceTimeoutSeconds: 600,
	}
	limits := team.Limits{AllowClassloader: true, MaxLicenses: 100, MaxProducts: 10}
	var blacklist team.Blacklist
	if mutate != nil {
		mutate(&settings, &limits, &blacklist)
	}

	now := time.Now().UTC()
	tm, err := team.ReconstructTeam(1, testTeamSID, "Acme", settings, limits,
		team.KeyPair{PublicPEM: "pub", PrivatePEM: "priv"}, blacklist, nil, now, now)
	require.NoError(t, err)
	return tm
}

func testLicense(t *testing.T, id uint, key string, mutate func(*licenseSpec)) *license.License {
	spec := &licenseSpec{expiration: license.Never()}
	if mutate != nil {
		mutate(spec)
	}

	now := time.Now().UTC()
	lic, err := license.ReconstructLicense(id, "lic_1", 1,
		testHasher.LookupHash(key, testTeamSID), spec.suspended, spec.expiration,
		spec.ipLimit, spec.hwidLimit, "", spec.customers, spec.productIDs, now.Add(-time.Hour), now)
	require.NoError(t, err)
	return lic
}

type licenseSpec struct {
	suspended  bool
	expiration license.Expiration
	ipLimit    *int
	hwidLimit  *int
	customers  []license.Customer
	productIDs []uint
}

func intPtr(v int) *int { return &v }

func createProduct(t *testing.T, e *env, id uint, sid, name string) *product.Product {
	now := time.Now().UTC()
	prd, err := product.ReconstructProduct(id, sid, 1, name, now, now)
	require.NoError(t, err)
	e.products.products[sid] = prd
	return prd
}

func verifyCmd(mutate func(*VerifyCommand)) VerifyCommand {
	cmd := VerifyCommand{
		TeamSID:    testTeamSID,
		LicenseKey: testLicenseKey,
		HardwareID: "hwid-1",
		IPAddress:  "203.0.113.10",
		Endpoint:   requestlog.EndpointVerify,
	}
	if mutate != nil {
		mutate(&cmd)
	}
	return cmd
}

func TestVerify_Valid(t *testing.T) {
	e := newEnv(t, testTeam(t, nil), testLicense(t, 1, testLicenseKey, nil))

	res := e.verify.Execute(context.Background(), verifyCmd(nil))

	assert.Equal(t, http.StatusOK, res.HTTPStatus)
	assert.True(t, res.Response.Result.Valid)
	require.NotNil(t, res.Response.Data)
	assert.Equal(t, "lic_1", res.Response.Data.License.ID)

	t.Run("device seat is held", func(t *testing.T) {
		exists, err := e.devices.Exists(context.Background(), 1, "hwid-1", time.Time{})
		require.NoError(t, err)
		assert.True(t, exists)
	})

	t.Run("outcome is logged and published", func(t *testing.T) {
		assert.Equal(t, []string{"VALID"}, e.logs.statuses())
		published := e.publisher.waitFor(1)
		require.Len(t, published, 1)
		assert.True(t, published[0].Valid)
		assert.Equal(t, "VERIFY", published[0].Endpoint)
	})
}

func TestVerify_PayloadValidation(t *testing.T) {
	e := newEnv(t, testTeam(t, nil), testLicense(t, 1, testLicenseKey, nil))

	res := e.verify.Execute(context.Background(), verifyCmd(func(c *VerifyCommand) {
		c.HardwareID = ""
	}))

	assert.Equal(t, http.StatusBadRequest, res.HTTPStatus)
	assert.False(t, res.Response.Result.Valid)
	assert.Nil(t, res.Response.Data)
}

func TestVerify_LookupFailures(t *testing.T) {
	e := newEnv(t, testTeam(t, nil), testLicense(t, 1, testLicenseKey, nil))

	t.Run("unknown team", func(t *testing.T) {
		res := e.verify.Execute(context.Background(), verifyCmd(func(c *VerifyCommand) {
			c.TeamSID = "team_missing"
		}))
		assert.Equal(t, http.StatusNotFound, res.HTTPStatus)
		assert.Equal(t, "Team not found", res.Response.Result.Details)
	})

	t.Run("wrong license key", func(t *testing.T) {
		res := e.verify.Execute(context.Background(), verifyCmd(func(c *VerifyCommand) {
			c.LicenseKey = "AAAAA-BBBBB-CCCCC-DDDDD-WRONG"
		}))
		assert.Equal(t, http.StatusNotFound, res.HTTPStatus)
		assert.Equal(t, "License not found", res.Response.Result.Details)
	})
}

func TestVerify_RateLimit(t *testing.T) {
	e := newEnv(t, testTeam(t, nil), testLicense(t, 1, testLicenseKey, nil))
	ipKey := testHasher.RateKey("rl", "ip", testTeamSID, "203.0.113.10")
	e.limiter.limited[ipKey] = true

	res := e.verify.Execute(context.Background(), verifyCmd(nil))

	assert.Equal(t, http.StatusTooManyRequests, res.HTTPStatus)
	// Rejected before any database load: no log entry exists because the
	// team was never resolved.
	assert.Empty(t, e.logs.statuses())
}

func TestVerify_Suspended(t *testing.T) {
	e := newEnv(t, testTeam(t, nil), testLicense(t, 1, testLicenseKey, func(s *licenseSpec) {
		s.suspended = true
	}))

	res := e.verify.Execute(context.Background(), verifyCmd(nil))

	assert.Equal(t, http.StatusForbidden, res.HTTPStatus)
	assert.Equal(t, "License is suspended", res.Response.Result.Details)
	assert.Equal(t, []string{"LICENSE_SUSPENDED"}, e.logs.statuses())
}

func TestVerify_Blacklist(t *testing.T) {
	tm := testTeam(t, func(s *team.Settings, l *team.Limits, bl *team.Blacklist) {
		*bl = team.Blacklist{
			{Type: team.BlacklistTypeIP, Value: "203.0.113.10"},
			{Type: team.BlacklistTypeCountry, Value: "RUS"},
		}
	})

	t.Run("blacklisted ip never consumes a seat", func(t *testing.T) {
		e := newEnv(t, tm, testLicense(t, 1, testLicenseKey, func(s *licenseSpec) {
			s.hwidLimit = intPtr(1)
		}))

		res := e.verify.Execute(context.Background(), verifyCmd(nil))
		assert.Equal(t, http.StatusForbidden, res.HTTPStatus)
		assert.Equal(t, "IP address is blacklisted", res.Response.Result.Details)

		exists, err := e.devices.Exists(context.Background(), 1, "hwid-1", time.Time{})
		require.NoError(t, err)
		assert.False(t, exists)
	})

	t.Run("blacklisted country", func(t *testing.T) {
		e := newEnv(t, tm, testLicense(t, 1, testLicenseKey, nil))
		e.geo["198.51.100.20"] = &verification.GeoData{Alpha2: "RU", Alpha3: "RUS", Country: "Russia"}

		res := e.verify.Execute(context.Background(), verifyCmd(func(c *VerifyCommand) {
			c.IPAddress = "198.51.100.20"
		}))
		assert.Equal(t, http.StatusForbidden, res.HTTPStatus)
		assert.Equal(t, "Country is blacklisted", res.Response.Result.Details)
	})
}

func TestVerify_SeatLimit(t *testing.T) {
	e := newEnv(t, testTeam(t, nil), testLicense(t, 1, testLicenseKey, func(s *licenseSpec) {
		s.hwidLimit = intPtr(1)
	}))
	ctx := context.Background()

	first := e.verify.Execute(ctx, verifyCmd(nil))
	require.True(t, first.Response.Result.Valid)

	t.Run("second device is rejected", func(t *testing.T) {
		res := e.verify.Execute(ctx, verifyCmd(func(c *VerifyCommand) {
			c.HardwareID = "hwid-2"
		}))
		assert.Equal(t, http.StatusForbidden, res.HTTPStatus)
		assert.Equal(t, "Device limit reached", res.Response.Result.Details)
	})

	t.Run("first device renews", func(t *testing.T) {
		res := e.heartbeat.Execute(ctx, verifyCmd(nil))
		assert.True(t, res.Response.Result.Valid)
	})
}

func TestVerify_IPLimit(t *testing.T) {
	lic := testLicense(t, 1, testLicenseKey, func(s *licenseSpec) {
		s.ipLimit = intPtr(2)
	})
	e := newEnv(t, testTeam(t, nil), lic)
	ctx := context.Background()

	for _, ip := range []string{"203.0.113.1", "203.0.113.2"} {
		res := e.verify.Execute(ctx, verifyCmd(func(c *VerifyCommand) { c.IPAddress = ip }))
		require.True(t, res.Response.Result.Valid)
	}

	t.Run("third distinct ip is rejected", func(t *testing.T) {
		res := e.verify.Execute(ctx, verifyCmd(func(c *VerifyCommand) { c.IPAddress = "203.0.113.3" }))
		assert.Equal(t, http.StatusForbidden, res.HTTPStatus)
		assert.Equal(t, "IP limit reached", res.Response.Result.Details)
	})

	t.Run("a seen ip keeps passing", func(t *testing.T) {
		res := e.verify.Execute(ctx, verifyCmd(func(c *VerifyCommand) { c.IPAddress = "203.0.113.1" }))
		assert.True(t, res.Response.Result.Valid)
	})
}

func TestVerify_QuotaIsolation(t *testing.T) {
	tm := testTeam(t, func(s *team.Settings, l *team.Limits, bl *team.Blacklist) {
		*bl = team.Blacklist{{Type: team.BlacklistTypeIP, Value: "198.51.100.66"}}
	})
	e := newEnv(t, tm, testLicense(t, 1, testLicenseKey, func(s *licenseSpec) {
		s.ipLimit = intPtr(2)
	}))
	ctx := context.Background()

	// A blacklist rejection is logged but must not burn an IP slot.
	res := e.verify.Execute(ctx, verifyCmd(func(c *VerifyCommand) { c.IPAddress = "198.51.100.66" }))
	require.Equal(t, http.StatusForbidden, res.HTTPStatus)

	t.Run("both slots are still free after the rejection", func(t *testing.T) {
		for _, ip := range []string{"203.0.113.1", "203.0.113.2"} {
			res := e.verify.Execute(ctx, verifyCmd(func(c *VerifyCommand) { c.IPAddress = ip }))
			assert.True(t, res.Response.Result.Valid, ip)
		}
	})

	t.Run("an over-limit ip stays rejected on retry", func(t *testing.T) {
		for i := 0; i < 2; i++ {
			res := e.verify.Execute(ctx, verifyCmd(func(c *VerifyCommand) { c.IPAddress = "203.0.113.9" }))
			assert.Equal(t, http.StatusForbidden, res.HTTPStatus)
			assert.Equal(t, "IP limit reached", res.Response.Result.Details)
		}
	})

	t.Run("a slot holder still passes after the rejections", func(t *testing.T) {
		res := e.verify.Execute(ctx, verifyCmd(func(c *VerifyCommand) { c.IPAddress = "203.0.113.1" }))
		assert.True(t, res.Response.Result.Valid)
	})

	t.Run("every outcome was logged", func(t *testing.T) {
		assert.Equal(t, []string{
			"BLACKLISTED", "VALID", "VALID",
			"IP_LIMIT_REACHED", "IP_LIMIT_REACHED", "VALID",
		}, e.logs.statuses())
	})
}

func TestVerify_Expiration(t *testing.T) {
	t.Run("expired date license", func(t *testing.T) {
		e := newEnv(t, testTeam(t, nil), testLicense(t, 1, testLicenseKey, func(s *licenseSpec) {
			s.expiration = license.OnDate(time.Now().UTC().Add(-time.Hour))
		}))

		res := e.verify.Execute(context.Background(), verifyCmd(nil))
		assert.Equal(t, http.StatusForbidden, res.HTTPStatus)
		assert.Equal(t, "License has expired", res.Response.Result.Details)
	})

	t.Run("first verification activates a duration license", func(t *testing.T) {
		lic := testLicense(t, 1, testLicenseKey, func(s *licenseSpec) {
			s.expiration = license.AfterDays(30, license.StartActivation)
		})
		e := newEnv(t, testTeam(t, nil), lic)

		res := e.verify.Execute(context.Background(), verifyCmd(nil))
		assert.True(t, res.Response.Result.Valid)
		assert.Equal(t, 1, e.licenses.activations)
		require.NotNil(t, lic.Expiration().Date)

		// Second pass must not move the date.
		res = e.verify.Execute(context.Background(), verifyCmd(nil))
		assert.True(t, res.Response.Result.Valid)
		assert.Equal(t, 1, e.licenses.activations)
	})
}

func TestVerify_CustomerGate(t *testing.T) {
	withCustomer := func(s *licenseSpec) {
		s.customers = []license.Customer{{ID: 1, SID: "cus_1", Name: "Buyer"}}
	}

	t.Run("strict team requires a matching customer", func(t *testing.T) {
		tm := testTeam(t, func(s *team.Settings, l *team.Limits, bl *team.Blacklist) {
			s.StrictCustomers = true
		})
		e := newEnv(t, tm, testLicense(t, 1, testLicenseKey, withCustomer))

		res := e.verify.Execute(context.Background(), verifyCmd(nil))
		assert.Equal(t, http.StatusNotFound, res.HTTPStatus)
		assert.Equal(t, "Customer not found", res.Response.Result.Details)

		res = e.verify.Execute(context.Background(), verifyCmd(func(c *VerifyCommand) {
			c.CustomerSID = "cus_1"
		}))
		assert.True(t, res.Response.Result.Valid)
		require.NotNil(t, res.Response.Data.Customer)
		assert.Equal(t, "Buyer", res.Response.Data.Customer.Name)
	})

	t.Run("lenient team passes without a customer", func(t *testing.T) {
		e := newEnv(t, testTeam(t, nil), testLicense(t, 1, testLicenseKey, withCustomer))

		res := e.verify.Execute(context.Background(), verifyCmd(nil))
		assert.True(t, res.Response.Result.Valid)
	})

	t.Run("a supplied customer must match even on lenient teams", func(t *testing.T) {
		e := newEnv(t, testTeam(t, nil), testLicense(t, 1, testLicenseKey, withCustomer))

		res := e.verify.Execute(context.Background(), verifyCmd(func(c *VerifyCommand) {
			c.CustomerSID = "cus_other"
		}))
		assert.Equal(t, http.StatusNotFound, res.HTTPStatus)
	})
}

func TestVerify_ProductGate(t *testing.T) {
	e := newEnv(t, testTeam(t, nil), testLicense(t, 1, testLicenseKey, func(s *licenseSpec) {
		s.productIDs = []uint{7}
	}))
	prd := createProduct(t, e, 7, "prd_1", "Loader")
	createProduct(t, e, 8, "prd_other", "Other")

	t.Run("covered product passes with summary", func(t *testing.T) {
		res := e.verify.Execute(context.Background(), verifyCmd(func(c *VerifyCommand) {
			c.ProductSID = prd.SID()
		}))
		assert.True(t, res.Response.Result.Valid)
		require.NotNil(t, res.Response.Data.Product)
		assert.Equal(t, "Loader", res.Response.Data.Product.Name)
	})

	t.Run("uncovered product is rejected", func(t *testing.T) {
		res := e.verify.Execute(context.Background(), verifyCmd(func(c *VerifyCommand) {
			c.ProductSID = "prd_other"
		}))
		assert.Equal(t, http.StatusNotFound, res.HTTPStatus)
		assert.Equal(t, "Product not found", res.Response.Result.Details)
	})

	t.Run("unknown product is rejected", func(t *testing.T) {
		res := e.verify.Execute(context.Background(), verifyCmd(func(c *VerifyCommand) {
			c.ProductSID = "prd_missing"
		}))
		assert.Equal(t, http.StatusNotFound, res.HTTPStatus)
	})
}

func TestHeartbeat_ChallengeEcho(t *testing.T) {
	e := newEnv(t, testTeam(t, nil), testLicense(t, 1, testLicenseKey, nil))

	res := e.heartbeat.Execute(context.Background(), verifyCmd(func(c *VerifyCommand) {
		c.Challenge = "nonce-42"
	}))

	assert.True(t, res.Response.Result.Valid)
	assert.Equal(t, "nonce-42", res.Response.Data.Challenge)
	assert.Equal(t, []string{"HEARTBEAT"}, endpointTags(e))
}

func endpointTags(e *env) []string {
	var out []string
	for _, entry := range e.logs.entries {
		out = append(out, string(entry.Endpoint))
	}
	return out
}
