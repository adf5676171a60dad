package repository

import (
	"context"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/keyward-io/keyward/internal/domain/requestlog"
	"github.com/keyward-io/keyward/internal/infrastructure/persistence/mappers"
	"github.com/keyward-io/keyward/internal/infrastructure/persistence/models"
	"github.com/keyward-io/keyward/internal/shared/logger"
)

// RequestLogRepository implements the request log repository interface.
// Append deliberately ignores any transaction on the context: a rejected
// verification must be logged even when the surrounding work rolls back.
type RequestLogRepository struct {
	db     *gorm.DB
	mapper mappers.RequestLogMapper
	logger logger.Interface
}

// NewRequestLogRepository creates a new request log repository
func NewRequestLogRepository(db *gorm.DB, logger logger.Interface) requestlog.Repository {
	return &RequestLogRepository{
		db:     db,
		mapper: mappers.NewRequestLogMapper(),
		logger: logger,
	}
}

// Append writes one verification attempt
func (r *RequestLogRepository) Append(ctx context.Context, entry *requestlog.Entry) error {
	model := r.mapper.ToModel(entry)
	if model.CreatedAt.IsZero() {
		model.CreatedAt = time.Now()
	}

	if err := r.db.WithContext(ctx).Create(model).Error; err != nil {
		r.logger.Errorw("failed to append request log", "error", err, "team_id", entry.TeamID)
		return fmt.Errorf("failed to append request log: %w", err)
	}

	return nil
}

// CountDistinctIPs counts distinct IPs with a valid entry for the license
// lookup since the cutoff, excluding the given IP. Rejected attempts are
// logged too but never count against the quota.
func (r *RequestLogRepository) CountDistinctIPs(ctx context.Context, teamID uint, licenseKeyLookup string, since time.Time, excludeIP string) (int64, error) {
	var count int64

	err := r.db.WithContext(ctx).
		Model(&models.RequestLogModel{}).
		Distinct("ip_address").
		Where("team_id = ? AND license_key_lookup = ? AND status = ? AND created_at >= ? AND ip_address != ?",
			teamID, licenseKeyLookup, requestlog.StatusValid, since, excludeIP).
		Count(&count).Error
	if err != nil {
		r.logger.Errorw("failed to count distinct ips", "error", err, "team_id", teamID)
		return 0, fmt.Errorf("failed to count distinct ips: %w", err)
	}

	return count, nil
}

// HasIP reports whether the IP already has a valid entry for the license
// lookup since the cutoff
func (r *RequestLogRepository) HasIP(ctx context.Context, teamID uint, licenseKeyLookup string, since time.Time, ip string) (bool, error) {
	var count int64

	err := r.db.WithContext(ctx).
		Model(&models.RequestLogModel{}).
		Where("team_id = ? AND license_key_lookup = ? AND status = ? AND created_at >= ? AND ip_address = ?",
			teamID, licenseKeyLookup, requestlog.StatusValid, since, ip).
		Limit(1).
		Count(&count).Error
	if err != nil {
		r.logger.Errorw("failed to check ip presence", "error", err, "team_id", teamID)
		return false, fmt.Errorf("failed to check ip presence: %w", err)
	}

	return count > 0, nil
}

// ListRecent returns the newest log entries for the license lookup
func (r *RequestLogRepository) ListRecent(ctx context.Context, teamID uint, licenseKeyLookup string, limit int) ([]*requestlog.Entry, error) {
	var logModels []*models.RequestLogModel

	query := r.db.WithContext(ctx).
		Where("team_id = ?", teamID).
		Order("created_at DESC").
		Limit(limit)
	if licenseKeyLookup != "" {
		query = query.Where("license_key_lookup = ?", licenseKeyLookup)
	}

	if err := query.Find(&logModels).Error; err != nil {
		r.logger.Errorw("failed to list request logs", "error", err, "team_id", teamID)
		return nil, fmt.Errorf("failed to list request logs: %w", err)
	}

	return r.mapper.ToEntries(logModels), nil
}
