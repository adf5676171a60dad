package repository

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/keyward-io/keyward/internal/domain/product"
	"github.com/keyward-io/keyward/internal/shared/logger"
)

func createTestProduct(t *testing.T, repo product.Repository, teamID uint, sid string) *product.Product {
	entity, err := product.NewProduct(sid, teamID, "Loader")
	require.NoError(t, err)
	require.NoError(t, repo.CreateProduct(context.Background(), entity))
	return entity
}

func createTestRelease(t *testing.T, repo product.Repository, productID uint, sid, version, branch string) *product.Release {
	entity, err := product.NewRelease(sid, productID, version, branch)
	require.NoError(t, err)
	require.NoError(t, repo.CreateRelease(context.Background(), entity))
	return entity
}

func TestProductRepository_Products(t *testing.T) {
	db := setupTestDB(t)
	repo := NewProductRepository(db, logger.NewLogger())
	ctx := context.Background()
	tm := createTestTeam(t, db, "prd_team")

	t.Run("create and get", func(t *testing.T) {
		created := createTestProduct(t, repo, tm.ID(), "prd_get")

		found, err := repo.GetProductBySID(ctx, tm.ID(), "prd_get")
		require.NoError(t, err)
		assert.Equal(t, created.ID(), found.ID())
	})

	t.Run("sid is team scoped", func(t *testing.T) {
		other := createTestTeam(t, db, "prd_team_other")
		_, err := repo.GetProductBySID(ctx, other.ID(), "prd_get")
		assert.ErrorIs(t, err, product.ErrProductNotFound)
	})

	t.Run("rename persists", func(t *testing.T) {
		created := createTestProduct(t, repo, tm.ID(), "prd_rename")
		require.NoError(t, created.Rename("Loader v2"))
		require.NoError(t, repo.UpdateProduct(ctx, created))

		found, err := repo.GetProductBySID(ctx, tm.ID(), "prd_rename")
		require.NoError(t, err)
		assert.Equal(t, "Loader v2", found.Name())
	})

	t.Run("delete removes product and releases", func(t *testing.T) {
		created := createTestProduct(t, repo, tm.ID(), "prd_del")
		createTestRelease(t, repo, created.ID(), "rel_del", "1.0.0", "stable")

		require.NoError(t, repo.DeleteProduct(ctx, tm.ID(), "prd_del"))

		_, err := repo.GetProductBySID(ctx, tm.ID(), "prd_del")
		assert.ErrorIs(t, err, product.ErrProductNotFound)
		_, err = repo.GetReleaseByVersion(ctx, created.ID(), "1.0.0")
		assert.ErrorIs(t, err, product.ErrReleaseNotFound)
	})
}

func TestProductRepository_Releases(t *testing.T) {
	db := setupTestDB(t)
	repo := NewProductRepository(db, logger.NewLogger())
	ctx := context.Background()
	tm := createTestTeam(t, db, "rel_team")
	prd := createTestProduct(t, repo, tm.ID(), "rel_prd")

	t.Run("duplicate version rejected", func(t *testing.T) {
		createTestRelease(t, repo, prd.ID(), "rel_1", "1.0.0", "stable")

		dup, err := product.NewRelease("rel_1_dup", prd.ID(), "1.0.0", "stable")
		require.NoError(t, err)
		err = repo.CreateRelease(ctx, dup)
		assert.ErrorIs(t, err, product.ErrReleaseExists)
	})

	t.Run("publish with file persists", func(t *testing.T) {
		created := createTestRelease(t, repo, prd.ID(), "rel_2", "1.1.0", "stable")
		require.NoError(t, created.AttachFile(product.ReleaseFile{
			Key:           "rel_team/rel_prd/1.1.0.jar",
			Size:          2048,
			Checksum:      "abc123",
			MainClassName: "com.example.Main",
		}))
		require.NoError(t, created.Publish())
		require.NoError(t, repo.UpdateRelease(ctx, created))

		found, err := repo.GetReleaseByVersion(ctx, prd.ID(), "1.1.0")
		require.NoError(t, err)
		assert.Equal(t, product.ReleaseStatusPublished, found.Status())
		require.NotNil(t, found.File())
		assert.Equal(t, int64(2048), found.File().Size)
		assert.Equal(t, "com.example.Main", found.File().MainClassName)
	})
}

func TestProductRepository_SetLatestRelease(t *testing.T) {
	db := setupTestDB(t)
	repo := NewProductRepository(db, logger.NewLogger())
	ctx := context.Background()
	tm := createTestTeam(t, db, "latest_team")
	prd := createTestProduct(t, repo, tm.ID(), "latest_prd")

	first := createTestRelease(t, repo, prd.ID(), "rel_a", "1.0.0", "stable")
	second := createTestRelease(t, repo, prd.ID(), "rel_b", "1.1.0", "stable")
	beta := createTestRelease(t, repo, prd.ID(), "rel_c", "2.0.0-beta", "beta")

	first.MarkLatest()
	require.NoError(t, repo.SetLatestRelease(ctx, first))
	beta.MarkLatest()
	require.NoError(t, repo.SetLatestRelease(ctx, beta))

	t.Run("flag moves within the branch", func(t *testing.T) {
		second.MarkLatest()
		require.NoError(t, repo.SetLatestRelease(ctx, second))

		latest, err := repo.GetLatestRelease(ctx, prd.ID(), "stable")
		require.NoError(t, err)
		assert.Equal(t, "1.1.0", latest.Version())

		old, err := repo.GetReleaseByVersion(ctx, prd.ID(), "1.0.0")
		require.NoError(t, err)
		assert.False(t, old.Latest())
	})

	t.Run("other branches keep their flag", func(t *testing.T) {
		latest, err := repo.GetLatestRelease(ctx, prd.ID(), "beta")
		require.NoError(t, err)
		assert.Equal(t, "2.0.0-beta", latest.Version())
	})

	t.Run("unknown branch has no latest", func(t *testing.T) {
		_, err := repo.GetLatestRelease(ctx, prd.ID(), "nightly")
		assert.ErrorIs(t, err, product.ErrReleaseNotFound)
	})
}

func TestProductRepository_AllowList(t *testing.T) {
	db := setupTestDB(t)
	repo := NewProductRepository(db, logger.NewLogger())
	ctx := context.Background()
	tm := createTestTeam(t, db, "allow_team")
	prd := createTestProduct(t, repo, tm.ID(), "allow_prd")
	lic := createTestLicense(t, db, tm.ID(), "allow_lic", "allow_hash")

	created := createTestRelease(t, repo, prd.ID(), "rel_allow", "1.0.0", "")
	created.SetAllowedLicenses([]uint{lic.ID()})
	require.NoError(t, repo.UpdateRelease(ctx, created))

	found, err := repo.GetReleaseByVersion(ctx, prd.ID(), "1.0.0")
	require.NoError(t, err)
	assert.True(t, found.AllowsLicense(lic.ID()))
	assert.False(t, found.AllowsLicense(lic.ID()+100))
}

func TestProductRepository_TouchReleaseLastSeen(t *testing.T) {
	db := setupTestDB(t)
	repo := NewProductRepository(db, logger.NewLogger())
	ctx := context.Background()
	tm := createTestTeam(t, db, "touch_team")
	prd := createTestProduct(t, repo, tm.ID(), "touch_prd")
	created := createTestRelease(t, repo, prd.ID(), "rel_touch", "1.0.0", "")

	require.NoError(t, repo.TouchReleaseLastSeen(ctx, created.ID()))

	found, err := repo.GetReleaseByVersion(ctx, prd.ID(), "1.0.0")
	require.NoError(t, err)
	assert.NotNil(t, found.LastSeenAt())
}
