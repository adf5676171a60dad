package license

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExpiration_NeverAlwaysActive(t *testing.T) {
	e := Never()

	assert.Equal(t, StatusActive, e.StatusAt(time.Now()))
	assert.Equal(t, StatusActive, e.StatusAt(time.Now().Add(100*365*24*time.Hour)))
}

func TestExpiration_DatePolicy(t *testing.T) {
	future := time.Now().Add(time.Hour)
	past := time.Now().Add(-time.Hour)

	assert.Equal(t, StatusActive, OnDate(future).StatusAt(time.Now()))
	assert.Equal(t, StatusExpired, OnDate(past).StatusAt(time.Now()))
}

func TestExpiration_DateExactBoundaryExpires(t *testing.T) {
	now := time.Now()

	assert.Equal(t, StatusExpired, OnDate(now).StatusAt(now))
}

func TestCalculateExpirationDate(t *testing.T) {
	now := time.Now()

	got := CalculateExpirationDate(now, 30)

	assert.WithinDuration(t, now.Add(30*24*time.Hour), got, time.Second)
	// Stable across repeated calls, no drift.
	assert.Equal(t, got, CalculateExpirationDate(now, 30))
}

func TestExpiration_DurationCreationMaterializedAtIssue(t *testing.T) {
	created := time.Now()

	e := AfterDays(7, StartCreation).Materialize(created)

	require.NotNil(t, e.Date)
	assert.WithinDuration(t, created.Add(7*24*time.Hour), *e.Date, time.Second)
	assert.Equal(t, StatusActive, e.StatusAt(created))
	assert.Equal(t, StatusExpired, e.StatusAt(created.Add(8*24*time.Hour)))
}

func TestExpiration_DurationActivationUpcomingUntilActivated(t *testing.T) {
	e := AfterDays(7, StartActivation).Materialize(time.Now())

	assert.Nil(t, e.Date)
	assert.Equal(t, StatusUpcoming, e.StatusAt(time.Now()))
}

func TestExpiration_ActivateFixesDateOnce(t *testing.T) {
	e := AfterDays(7, StartActivation)
	now := time.Now()

	activated, changed := e.Activate(now)
	require.True(t, changed)
	require.NotNil(t, activated.Date)
	assert.WithinDuration(t, now.Add(7*24*time.Hour), *activated.Date, time.Second)
	assert.Equal(t, StatusActive, activated.StatusAt(now))

	// A second activation is a no-op.
	again, changed := activated.Activate(now.Add(time.Hour))
	assert.False(t, changed)
	assert.Equal(t, activated.Date, again.Date)
}

func TestExpiration_ActivateIgnoresOtherPolicies(t *testing.T) {
	_, changed := Never().Activate(time.Now())
	assert.False(t, changed)

	_, changed = OnDate(time.Now().Add(time.Hour)).Activate(time.Now())
	assert.False(t, changed)

	_, changed = AfterDays(7, StartCreation).Materialize(time.Now()).Activate(time.Now())
	assert.False(t, changed)
}

func TestExpiration_Validate(t *testing.T) {
	assert.NoError(t, Never().Validate())
	assert.NoError(t, OnDate(time.Now()).Validate())
	assert.NoError(t, AfterDays(1, StartActivation).Validate())

	assert.Error(t, Expiration{Type: "BOGUS"}.Validate())
	assert.Error(t, Expiration{Type: TypeDate}.Validate())

	zero := 0
	assert.Error(t, Expiration{Type: TypeDuration, Start: StartCreation, Days: &zero}.Validate())
	assert.Error(t, Expiration{Type: TypeDuration, Start: "BOGUS", Days: &zero}.Validate())
}

func TestLicense_UpdateExpirationRecomputesDurationCreation(t *testing.T) {
	limit := 5
	l, err := NewLicense("lic_1", 1, "hash", OnDate(time.Now().Add(time.Hour)), &limit, &limit)
	require.NoError(t, err)

	// Transition DATE -> DURATION+CREATION must recompute the date from
	// createdAt, not reuse the old DATE value.
	require.NoError(t, l.UpdateExpiration(AfterDays(30, StartCreation)))

	require.NotNil(t, l.Expiration().Date)
	assert.WithinDuration(t, l.CreatedAt().Add(30*24*time.Hour), *l.Expiration().Date, time.Second)
}

func TestLicense_ActivatePersistsFlag(t *testing.T) {
	l, err := NewLicense("lic_1", 1, "hash", AfterDays(14, StartActivation), nil, nil)
	require.NoError(t, err)
	assert.Nil(t, l.Expiration().Date)

	now := time.Now()
	assert.True(t, l.Activate(now))
	require.NotNil(t, l.Expiration().Date)

	assert.False(t, l.Activate(now.Add(time.Minute)))
}

func TestLicense_HasProduct(t *testing.T) {
	l, err := ReconstructLicense(1, "lic_1", 1, "hash", false, Never(), nil, nil, "", nil, []uint{7}, time.Now(), time.Now())
	require.NoError(t, err)

	assert.True(t, l.HasProduct(7))
	assert.False(t, l.HasProduct(8))

	// No attachments means every product is allowed.
	open, err := ReconstructLicense(2, "lic_2", 1, "hash2", false, Never(), nil, nil, "", nil, nil, time.Now(), time.Now())
	require.NoError(t, err)
	assert.True(t, open.HasProduct(8))
}
