package repository

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/keyward-io/keyward/internal/domain/license"
	"github.com/keyward-io/keyward/internal/infrastructure/persistence/mappers"
	"github.com/keyward-io/keyward/internal/infrastructure/persistence/models"
	sharederrors "github.com/keyward-io/keyward/internal/shared/errors"
	"github.com/keyward-io/keyward/internal/shared/logger"
)

// LicenseRepository implements the license repository interface. Every read
// on the verification path goes through the (team_id, license_key_lookup)
// unique index; plaintext keys never appear in queries or logs.
type LicenseRepository struct {
	db     *gorm.DB
	mapper mappers.LicenseMapper
	logger logger.Interface
}

// NewLicenseRepository creates a new license repository
func NewLicenseRepository(db *gorm.DB, logger logger.Interface) license.Repository {
	return &LicenseRepository{
		db:     db,
		mapper: mappers.NewLicenseMapper(),
		logger: logger,
	}
}

// Create persists a new license
func (r *LicenseRepository) Create(ctx context.Context, entity *license.License) error {
	model, err := r.mapper.ToModel(entity)
	if err != nil {
		return fmt.Errorf("failed to map license entity: %w", err)
	}

	if err := r.db.WithContext(ctx).Create(model).Error; err != nil {
		if sharederrors.IsDuplicateError(err) {
			return license.ErrLicenseExists
		}
		r.logger.Errorw("failed to create license", "error", err, "team_id", entity.TeamID())
		return fmt.Errorf("failed to create license: %w", err)
	}

	if err := entity.SetID(model.ID); err != nil {
		return fmt.Errorf("failed to set license ID: %w", err)
	}

	r.logger.Infow("license created", "id", model.ID, "sid", model.SID, "team_id", model.TeamID)
	return nil
}

// GetByLookupHash retrieves a license by its team-scoped lookup hash
func (r *LicenseRepository) GetByLookupHash(ctx context.Context, teamID uint, lookupHash string) (*license.License, error) {
	var model models.LicenseModel

	err := r.db.WithContext(ctx).
		Preload("Customers").
		Preload("Products").
		Where("team_id = ? AND license_key_lookup = ?", teamID, lookupHash).
		First(&model).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, license.ErrLicenseNotFound
		}
		r.logger.Errorw("failed to get license by lookup hash", "error", err, "team_id", teamID)
		return nil, fmt.Errorf("failed to get license: %w", err)
	}

	return r.mapper.ToEntity(&model)
}

// GetBySID retrieves a license by short ID within a team
func (r *LicenseRepository) GetBySID(ctx context.Context, teamID uint, sid string) (*license.License, error) {
	var model models.LicenseModel

	err := r.db.WithContext(ctx).
		Preload("Customers").
		Preload("Products").
		Where("team_id = ? AND sid = ?", teamID, sid).
		First(&model).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, license.ErrLicenseNotFound
		}
		r.logger.Errorw("failed to get license by sid", "error", err, "team_id", teamID, "sid", sid)
		return nil, fmt.Errorf("failed to get license: %w", err)
	}

	return r.mapper.ToEntity(&model)
}

// List returns a page of the team's licenses, newest first
func (r *LicenseRepository) List(ctx context.Context, teamID uint, page, pageSize int) ([]*license.License, int64, error) {
	var total int64
	if err := r.db.WithContext(ctx).
		Model(&models.LicenseModel{}).
		Where("team_id = ?", teamID).
		Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count licenses: %w", err)
	}

	var licenseModels []*models.LicenseModel
	err := r.db.WithContext(ctx).
		Preload("Customers").
		Preload("Products").
		Where("team_id = ?", teamID).
		Order("created_at DESC").
		Offset((page - 1) * pageSize).
		Limit(pageSize).
		Find(&licenseModels).Error
	if err != nil {
		r.logger.Errorw("failed to list licenses", "error", err, "team_id", teamID)
		return nil, 0, fmt.Errorf("failed to list licenses: %w", err)
	}

	entities, err := r.mapper.ToEntities(licenseModels)
	if err != nil {
		return nil, 0, err
	}
	return entities, total, nil
}

// Update persists the license's mutable columns
func (r *LicenseRepository) Update(ctx context.Context, entity *license.License) error {
	expiration := entity.Expiration()

	result := r.db.WithContext(ctx).
		Model(&models.LicenseModel{}).
		Where("id = ?", entity.ID()).
		Updates(map[string]interface{}{
			"suspended":        entity.Suspended(),
			"expiration_type":  string(expiration.Type),
			"expiration_start": string(expiration.Start),
			"expiration_date":  expiration.Date,
			"expiration_days":  expiration.Days,
			"ip_limit":         entity.IPLimit(),
			"hwid_limit":       entity.HWIDLimit(),
			"note":             entity.Note(),
			"updated_at":       entity.UpdatedAt(),
		})
	if result.Error != nil {
		r.logger.Errorw("failed to update license", "error", result.Error, "id", entity.ID())
		return fmt.Errorf("failed to update license: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return license.ErrLicenseNotFound
	}

	return nil
}

// UpdateExpirationDate persists only the expiration date fixed by first
// activation. Guarding on a NULL date keeps concurrent activations from
// moving an already fixed date.
func (r *LicenseRepository) UpdateExpirationDate(ctx context.Context, entity *license.License) error {
	expiration := entity.Expiration()

	result := r.db.WithContext(ctx).
		Model(&models.LicenseModel{}).
		Where("id = ? AND expiration_date IS NULL", entity.ID()).
		Updates(map[string]interface{}{
			"expiration_date": expiration.Date,
			"updated_at":      entity.UpdatedAt(),
		})
	if result.Error != nil {
		r.logger.Errorw("failed to update license expiration date", "error", result.Error, "id", entity.ID())
		return fmt.Errorf("failed to update license expiration date: %w", result.Error)
	}

	return nil
}

// Delete removes a license by short ID within a team
func (r *LicenseRepository) Delete(ctx context.Context, teamID uint, sid string) error {
	result := r.db.WithContext(ctx).
		Where("team_id = ? AND sid = ?", teamID, sid).
		Delete(&models.LicenseModel{})
	if result.Error != nil {
		r.logger.Errorw("failed to delete license", "error", result.Error, "team_id", teamID, "sid", sid)
		return fmt.Errorf("failed to delete license: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return license.ErrLicenseNotFound
	}

	r.logger.Infow("license deleted", "team_id", teamID, "sid", sid)
	return nil
}

// CountByTeam counts the team's licenses for plan limit enforcement
func (r *LicenseRepository) CountByTeam(ctx context.Context, teamID uint) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.LicenseModel{}).
		Where("team_id = ?", teamID).
		Count(&count).Error
	if err != nil {
		return 0, fmt.Errorf("failed to count licenses: %w", err)
	}
	return count, nil
}

// AttachCustomer links a customer to the license
func (r *LicenseRepository) AttachCustomer(ctx context.Context, licenseID, customerID uint) error {
	err := r.db.WithContext(ctx).
		Model(&models.LicenseModel{ID: licenseID}).
		Association("Customers").
		Append(&models.CustomerModel{ID: customerID})
	if err != nil {
		r.logger.Errorw("failed to attach customer", "error", err, "license_id", licenseID, "customer_id", customerID)
		return fmt.Errorf("failed to attach customer: %w", err)
	}
	return nil
}

// AttachProduct links a product to the license
func (r *LicenseRepository) AttachProduct(ctx context.Context, licenseID, productID uint) error {
	err := r.db.WithContext(ctx).
		Model(&models.LicenseModel{ID: licenseID}).
		Association("Products").
		Append(&models.ProductModel{ID: productID})
	if err != nil {
		r.logger.Errorw("failed to attach product", "error", err, "license_id", licenseID, "product_id", productID)
		return fmt.Errorf("failed to attach product: %w", err)
	}
	return nil
}
