package repository

import (
	"context"
	"fmt"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/keyward-io/keyward/internal/domain/device"
	"github.com/keyward-io/keyward/internal/infrastructure/persistence/mappers"
	"github.com/keyward-io/keyward/internal/infrastructure/persistence/models"
	"github.com/keyward-io/keyward/internal/shared/db"
	"github.com/keyward-io/keyward/internal/shared/logger"
)

// DeviceRepository implements the device repository interface. CountActive,
// Exists, and Upsert participate in the caller's transaction via the context
// so the seat accounting count-then-write sequence stays atomic.
type DeviceRepository struct {
	db     *gorm.DB
	mapper mappers.DeviceMapper
	logger logger.Interface
}

// NewDeviceRepository creates a new device repository
func NewDeviceRepository(db *gorm.DB, logger logger.Interface) device.Repository {
	return &DeviceRepository{
		db:     db,
		mapper: mappers.NewDeviceMapper(),
		logger: logger,
	}
}

// locked adds a row lock when running inside a transaction. Outside one the
// lock would be meaningless, and SQLite used in tests has no FOR UPDATE.
func (r *DeviceRepository) locked(ctx context.Context, tx *gorm.DB) *gorm.DB {
	if db.InTransaction(ctx) {
		return tx.Clauses(clause.Locking{Strength: "UPDATE"})
	}
	return tx
}

// CountActive counts non-forgotten devices heard from since the cutoff,
// excluding the given identifier. Inside a transaction the counted rows are
// locked until commit so a concurrent verification of a new device waits.
func (r *DeviceRepository) CountActive(ctx context.Context, licenseID uint, identifier string, since time.Time) (int64, error) {
	tx := db.GetTxFromContext(ctx, r.db)

	var deviceModels []models.DeviceModel
	err := r.locked(ctx, tx).
		Where("license_id = ? AND identifier != ? AND forgotten = ? AND last_beat_at >= ?",
			licenseID, identifier, false, since).
		Find(&deviceModels).Error
	if err != nil {
		r.logger.Errorw("failed to count active devices", "error", err, "license_id", licenseID)
		return 0, fmt.Errorf("failed to count active devices: %w", err)
	}

	return int64(len(deviceModels)), nil
}

// Exists reports whether the identifier holds an active seat: a
// non-forgotten row heard from since activeSince
func (r *DeviceRepository) Exists(ctx context.Context, licenseID uint, identifier string, activeSince time.Time) (bool, error) {
	tx := db.GetTxFromContext(ctx, r.db)

	var count int64
	err := r.locked(ctx, tx).
		Model(&models.DeviceModel{}).
		Where("license_id = ? AND identifier = ? AND forgotten = ? AND last_beat_at >= ?",
			licenseID, identifier, false, activeSince).
		Count(&count).Error
	if err != nil {
		r.logger.Errorw("failed to check device existence", "error", err, "license_id", licenseID)
		return false, fmt.Errorf("failed to check device: %w", err)
	}

	return count > 0, nil
}

// Upsert inserts or refreshes the (license, identifier) row. The conflict
// update clears the forgotten flag, so a forgotten device that verifies
// again occupies a seat again.
func (r *DeviceRepository) Upsert(ctx context.Context, entity *device.Device) error {
	tx := db.GetTxFromContext(ctx, r.db)

	model, err := r.mapper.ToModel(entity)
	if err != nil {
		return fmt.Errorf("failed to map device entity: %w", err)
	}
	model.UpdatedAt = entity.LastBeatAt()

	err = tx.Clauses(clause.OnConflict{
		Columns: []clause.Column{
			{Name: "license_id"},
			{Name: "identifier"},
		},
		DoUpdates: clause.Assignments(map[string]interface{}{
			"last_beat_at": model.LastBeatAt,
			"ip_address":   model.IPAddress,
			"country":      model.Country,
			"forgotten":    false,
			"updated_at":   model.UpdatedAt,
		}),
	}).Create(model).Error
	if err != nil {
		r.logger.Errorw("failed to upsert device", "error", err, "license_id", entity.LicenseID())
		return fmt.Errorf("failed to upsert device: %w", err)
	}

	return nil
}

// ListByLicense returns every device of the license, most recently seen
// first
func (r *DeviceRepository) ListByLicense(ctx context.Context, licenseID uint) ([]*device.Device, error) {
	var deviceModels []*models.DeviceModel

	err := r.db.WithContext(ctx).
		Where("license_id = ?", licenseID).
		Order("last_beat_at DESC").
		Find(&deviceModels).Error
	if err != nil {
		r.logger.Errorw("failed to list devices", "error", err, "license_id", licenseID)
		return nil, fmt.Errorf("failed to list devices: %w", err)
	}

	return r.mapper.ToEntities(deviceModels)
}

// Forget marks the device forgotten, freeing its seat
func (r *DeviceRepository) Forget(ctx context.Context, licenseID uint, identifier string) error {
	result := r.db.WithContext(ctx).
		Model(&models.DeviceModel{}).
		Where("license_id = ? AND identifier = ?", licenseID, identifier).
		Update("forgotten", true)
	if result.Error != nil {
		r.logger.Errorw("failed to forget device", "error", result.Error, "license_id", licenseID)
		return fmt.Errorf("failed to forget device: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return device.ErrDeviceNotFound
	}

	r.logger.Infow("device forgotten", "license_id", licenseID)
	return nil
}
