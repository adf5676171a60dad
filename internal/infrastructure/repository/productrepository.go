package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/keyward-io/keyward/internal/domain/product"
	"github.com/keyward-io/keyward/internal/infrastructure/persistence/mappers"
	"github.com/keyward-io/keyward/internal/infrastructure/persistence/models"
	sharederrors "github.com/keyward-io/keyward/internal/shared/errors"
	"github.com/keyward-io/keyward/internal/shared/logger"
)

// ProductRepository implements the product and release repository interface
type ProductRepository struct {
	db     *gorm.DB
	mapper mappers.ProductMapper
	logger logger.Interface
}

// NewProductRepository creates a new product repository
func NewProductRepository(db *gorm.DB, logger logger.Interface) product.Repository {
	return &ProductRepository{
		db:     db,
		mapper: mappers.NewProductMapper(),
		logger: logger,
	}
}

// CreateProduct persists a new product
func (r *ProductRepository) CreateProduct(ctx context.Context, entity *product.Product) error {
	model, err := r.mapper.ToModel(entity)
	if err != nil {
		return fmt.Errorf("failed to map product entity: %w", err)
	}

	if err := r.db.WithContext(ctx).Create(model).Error; err != nil {
		if sharederrors.IsDuplicateError(err) {
			return fmt.Errorf("product with sid %s already exists", entity.SID())
		}
		r.logger.Errorw("failed to create product", "error", err, "team_id", entity.TeamID())
		return fmt.Errorf("failed to create product: %w", err)
	}

	if err := entity.SetID(model.ID); err != nil {
		return fmt.Errorf("failed to set product ID: %w", err)
	}

	r.logger.Infow("product created", "id", model.ID, "sid", model.SID, "team_id", model.TeamID)
	return nil
}

// GetProductBySID retrieves a product by short ID within a team
func (r *ProductRepository) GetProductBySID(ctx context.Context, teamID uint, sid string) (*product.Product, error) {
	var model models.ProductModel

	err := r.db.WithContext(ctx).
		Where("team_id = ? AND sid = ?", teamID, sid).
		First(&model).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, product.ErrProductNotFound
		}
		r.logger.Errorw("failed to get product by sid", "error", err, "team_id", teamID, "sid", sid)
		return nil, fmt.Errorf("failed to get product: %w", err)
	}

	return r.mapper.ToEntity(&model)
}

// ListProducts returns a page of the team's products, newest first
func (r *ProductRepository) ListProducts(ctx context.Context, teamID uint, page, pageSize int) ([]*product.Product, int64, error) {
	var total int64
	if err := r.db.WithContext(ctx).
		Model(&models.ProductModel{}).
		Where("team_id = ?", teamID).
		Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count products: %w", err)
	}

	var productModels []*models.ProductModel
	err := r.db.WithContext(ctx).
		Where("team_id = ?", teamID).
		Order("created_at DESC").
		Offset((page - 1) * pageSize).
		Limit(pageSize).
		Find(&productModels).Error
	if err != nil {
		r.logger.Errorw("failed to list products", "error", err, "team_id", teamID)
		return nil, 0, fmt.Errorf("failed to list products: %w", err)
	}

	entities, err := r.mapper.ToEntities(productModels)
	if err != nil {
		return nil, 0, err
	}
	return entities, total, nil
}

// UpdateProduct persists the product's mutable columns
func (r *ProductRepository) UpdateProduct(ctx context.Context, entity *product.Product) error {
	result := r.db.WithContext(ctx).
		Model(&models.ProductModel{}).
		Where("id = ?", entity.ID()).
		Updates(map[string]interface{}{
			"name":       entity.Name(),
			"updated_at": entity.UpdatedAt(),
		})
	if result.Error != nil {
		r.logger.Errorw("failed to update product", "error", result.Error, "id", entity.ID())
		return fmt.Errorf("failed to update product: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return product.ErrProductNotFound
	}

	return nil
}

// DeleteProduct removes a product and its releases
func (r *ProductRepository) DeleteProduct(ctx context.Context, teamID uint, sid string) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var model models.ProductModel
		err := tx.Where("team_id = ? AND sid = ?", teamID, sid).First(&model).Error
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return product.ErrProductNotFound
			}
			return fmt.Errorf("failed to get product: %w", err)
		}

		if err := tx.Where("product_id = ?", model.ID).Delete(&models.ReleaseModel{}).Error; err != nil {
			return fmt.Errorf("failed to delete releases: %w", err)
		}
		if err := tx.Delete(&model).Error; err != nil {
			return fmt.Errorf("failed to delete product: %w", err)
		}

		r.logger.Infow("product deleted", "team_id", teamID, "sid", sid)
		return nil
	})
}

// CreateRelease persists a new release
func (r *ProductRepository) CreateRelease(ctx context.Context, entity *product.Release) error {
	model, err := r.mapper.ReleaseToModel(entity)
	if err != nil {
		return fmt.Errorf("failed to map release entity: %w", err)
	}

	if err := r.db.WithContext(ctx).Create(model).Error; err != nil {
		if sharederrors.IsDuplicateError(err) {
			return product.ErrReleaseExists
		}
		r.logger.Errorw("failed to create release", "error", err, "product_id", entity.ProductID())
		return fmt.Errorf("failed to create release: %w", err)
	}

	if err := entity.SetID(model.ID); err != nil {
		return fmt.Errorf("failed to set release ID: %w", err)
	}

	r.logger.Infow("release created", "id", model.ID, "product_id", model.ProductID, "version", model.Version)
	return nil
}

// GetReleaseByVersion retrieves a release by exact version string
func (r *ProductRepository) GetReleaseByVersion(ctx context.Context, productID uint, version string) (*product.Release, error) {
	var model models.ReleaseModel

	err := r.db.WithContext(ctx).
		Preload("AllowedLicenses").
		Where("product_id = ? AND version = ?", productID, version).
		First(&model).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, product.ErrReleaseNotFound
		}
		r.logger.Errorw("failed to get release by version", "error", err, "product_id", productID, "version", version)
		return nil, fmt.Errorf("failed to get release: %w", err)
	}

	return r.mapper.ReleaseToEntity(&model)
}

// GetLatestRelease retrieves the latest-flagged release, scoped to branch
// when one is given
func (r *ProductRepository) GetLatestRelease(ctx context.Context, productID uint, branch string) (*product.Release, error) {
	var model models.ReleaseModel

	query := r.db.WithContext(ctx).
		Preload("AllowedLicenses").
		Where("product_id = ? AND latest = ?", productID, true)
	if branch != "" {
		query = query.Where("branch = ?", branch)
	}

	if err := query.First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, product.ErrReleaseNotFound
		}
		r.logger.Errorw("failed to get latest release", "error", err, "product_id", productID, "branch", branch)
		return nil, fmt.Errorf("failed to get latest release: %w", err)
	}

	return r.mapper.ReleaseToEntity(&model)
}

// ListReleases returns every release of the product, newest first
func (r *ProductRepository) ListReleases(ctx context.Context, productID uint) ([]*product.Release, error) {
	var releaseModels []*models.ReleaseModel

	err := r.db.WithContext(ctx).
		Preload("AllowedLicenses").
		Where("product_id = ?", productID).
		Order("created_at DESC").
		Find(&releaseModels).Error
	if err != nil {
		r.logger.Errorw("failed to list releases", "error", err, "product_id", productID)
		return nil, fmt.Errorf("failed to list releases: %w", err)
	}

	return r.mapper.ReleasesToEntities(releaseModels)
}

// UpdateRelease persists the release's mutable columns and replaces its
// license allow-list
func (r *ProductRepository) UpdateRelease(ctx context.Context, entity *product.Release) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		updates := map[string]interface{}{
			"status":     string(entity.Status()),
			"latest":     entity.Latest(),
			"updated_at": entity.UpdatedAt(),
		}
		if file := entity.File(); file != nil {
			updates["file_key"] = file.Key
			updates["file_size"] = file.Size
			updates["file_checksum"] = file.Checksum
			updates["main_class_name"] = file.MainClassName
		}

		result := tx.Model(&models.ReleaseModel{}).
			Where("id = ?", entity.ID()).
			Updates(updates)
		if result.Error != nil {
			return fmt.Errorf("failed to update release: %w", result.Error)
		}
		if result.RowsAffected == 0 {
			return product.ErrReleaseNotFound
		}

		allowed := make([]*models.LicenseModel, 0, len(entity.AllowedLicenses()))
		for _, licenseID := range entity.AllowedLicenses() {
			allowed = append(allowed, &models.LicenseModel{ID: licenseID})
		}
		if err := tx.Model(&models.ReleaseModel{ID: entity.ID()}).
			Association("AllowedLicenses").
			Replace(allowed); err != nil {
			return fmt.Errorf("failed to replace release allow-list: %w", err)
		}

		return nil
	})
}

// SetLatestRelease flags the release as latest and clears its siblings in
// the same transaction so at most one (product, branch) release carries the
// flag at any point.
func (r *ProductRepository) SetLatestRelease(ctx context.Context, entity *product.Release) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		err := tx.Model(&models.ReleaseModel{}).
			Where("product_id = ? AND branch = ? AND id != ?", entity.ProductID(), entity.Branch(), entity.ID()).
			Update("latest", false).Error
		if err != nil {
			return fmt.Errorf("failed to clear latest flag: %w", err)
		}

		result := tx.Model(&models.ReleaseModel{}).
			Where("id = ?", entity.ID()).
			Updates(map[string]interface{}{
				"latest":     true,
				"updated_at": entity.UpdatedAt(),
			})
		if result.Error != nil {
			return fmt.Errorf("failed to set latest flag: %w", result.Error)
		}
		if result.RowsAffected == 0 {
			return product.ErrReleaseNotFound
		}

		r.logger.Infow("latest release set", "id", entity.ID(), "product_id", entity.ProductID(), "branch", entity.Branch())
		return nil
	})
}

// TouchReleaseLastSeen records a classloader fetch without bumping
// updated_at
func (r *ProductRepository) TouchReleaseLastSeen(ctx context.Context, releaseID uint) error {
	err := r.db.WithContext(ctx).
		Model(&models.ReleaseModel{}).
		Where("id = ?", releaseID).
		UpdateColumn("last_seen_at", time.Now()).Error
	if err != nil {
		r.logger.Errorw("failed to touch release last seen", "error", err, "id", releaseID)
		return fmt.Errorf("failed to touch release: %w", err)
	}
	return nil
}
