package repository

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/keyward-io/keyward/internal/domain/requestlog"
	"github.com/keyward-io/keyward/internal/shared/logger"
)

func TestRequestLogRepository_DistinctIPAccounting(t *testing.T) {
	db := setupTestDB(t)
	repo := NewRequestLogRepository(db, logger.NewLogger())
	ctx := context.Background()
	tm := createTestTeam(t, db, "log_team")

	now := time.Now().UTC().Truncate(time.Second)
	cutoff := now.Add(-24 * time.Hour)

	append := func(ip, status string, at time.Time) {
		require.NoError(t, repo.Append(ctx, &requestlog.Entry{
			TeamID:           tm.ID(),
			Endpoint:         requestlog.EndpointVerify,
			IPAddress:        ip,
			LicenseKeyLookup: "log_hash",
			Status:           status,
			CreatedAt:        at,
		}))
	}

	append("192.0.2.1", requestlog.StatusValid, now.Add(-1*time.Hour))
	append("192.0.2.1", requestlog.StatusValid, now.Add(-2*time.Hour))
	append("192.0.2.2", requestlog.StatusValid, now.Add(-3*time.Hour))
	append("192.0.2.3", requestlog.StatusValid, now.Add(-48*time.Hour))
	append("192.0.2.4", "IP_LIMIT_REACHED", now.Add(-1*time.Hour))
	append("192.0.2.5", "BLACKLISTED", now.Add(-1*time.Hour))

	t.Run("repeat requests from one ip count once", func(t *testing.T) {
		count, err := repo.CountDistinctIPs(ctx, tm.ID(), "log_hash", cutoff, "198.51.100.9")
		require.NoError(t, err)
		assert.Equal(t, int64(2), count)
	})

	t.Run("the requesting ip is excluded", func(t *testing.T) {
		count, err := repo.CountDistinctIPs(ctx, tm.ID(), "log_hash", cutoff, "192.0.2.1")
		require.NoError(t, err)
		assert.Equal(t, int64(1), count)
	})

	t.Run("entries outside the window do not count", func(t *testing.T) {
		has, err := repo.HasIP(ctx, tm.ID(), "log_hash", cutoff, "192.0.2.3")
		require.NoError(t, err)
		assert.False(t, has)
	})

	t.Run("known ip within the window is found", func(t *testing.T) {
		has, err := repo.HasIP(ctx, tm.ID(), "log_hash", cutoff, "192.0.2.2")
		require.NoError(t, err)
		assert.True(t, has)
	})

	t.Run("rejected attempts never consume quota", func(t *testing.T) {
		count, err := repo.CountDistinctIPs(ctx, tm.ID(), "log_hash", cutoff, "198.51.100.9")
		require.NoError(t, err)
		assert.Equal(t, int64(2), count)

		has, err := repo.HasIP(ctx, tm.ID(), "log_hash", cutoff, "192.0.2.4")
		require.NoError(t, err)
		assert.False(t, has)
	})

	t.Run("other licenses do not leak in", func(t *testing.T) {
		count, err := repo.CountDistinctIPs(ctx, tm.ID(), "other_hash", cutoff, "")
		require.NoError(t, err)
		assert.Equal(t, int64(0), count)
	})
}

func TestRequestLogRepository_ListRecent(t *testing.T) {
	db := setupTestDB(t)
	repo := NewRequestLogRepository(db, logger.NewLogger())
	ctx := context.Background()
	tm := createTestTeam(t, db, "log_list_team")

	now := time.Now().UTC().Truncate(time.Second)
	for i, status := range []string{"VALID", "LICENSE_EXPIRED", "VALID"} {
		require.NoError(t, repo.Append(ctx, &requestlog.Entry{
			TeamID:           tm.ID(),
			Endpoint:         requestlog.EndpointHeartbeat,
			IPAddress:        "203.0.113.1",
			LicenseKeyLookup: "list_hash",
			Status:           status,
			CreatedAt:        now.Add(time.Duration(i) * time.Minute),
		}))
	}

	entries, err := repo.ListRecent(ctx, tm.ID(), "list_hash", 2)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, "VALID", entries[0].Status)
	assert.Equal(t, "LICENSE_EXPIRED", entries[1].Status)
}
