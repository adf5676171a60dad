// Package repository contains the GORM-backed implementations of the domain
// repository interfaces.
package repository

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/keyward-io/keyward/internal/domain/team"
	"github.com/keyward-io/keyward/internal/infrastructure/persistence/mappers"
	"github.com/keyward-io/keyward/internal/infrastructure/persistence/models"
	sharederrors "github.com/keyward-io/keyward/internal/shared/errors"
	"github.com/keyward-io/keyward/internal/shared/logger"
)

// TeamRepository implements the team repository interface. GORM's soft
// delete on TeamModel keeps deleted teams out of every lookup here.
type TeamRepository struct {
	db     *gorm.DB
	mapper mappers.TeamMapper
	logger logger.Interface
}

// NewTeamRepository creates a new team repository
func NewTeamRepository(db *gorm.DB, logger logger.Interface) team.Repository {
	return &TeamRepository{
		db:     db,
		mapper: mappers.NewTeamMapper(),
		logger: logger,
	}
}

// Create persists a new team
func (r *TeamRepository) Create(ctx context.Context, entity *team.Team) error {
	model, err := r.mapper.ToModel(entity)
	if err != nil {
		return fmt.Errorf("failed to map team entity: %w", err)
	}

	if err := r.db.WithContext(ctx).Create(model).Error; err != nil {
		if sharederrors.IsDuplicateError(err) {
			return fmt.Errorf("team with sid %s already exists", entity.SID())
		}
		r.logger.Errorw("failed to create team", "error", err, "sid", entity.SID())
		return fmt.Errorf("failed to create team: %w", err)
	}

	if err := entity.SetID(model.ID); err != nil {
		return fmt.Errorf("failed to set team ID: %w", err)
	}

	r.logger.Infow("team created", "id", model.ID, "sid", model.SID)
	return nil
}

// GetBySID retrieves a team by short ID, blacklist included
func (r *TeamRepository) GetBySID(ctx context.Context, sid string) (*team.Team, error) {
	var model models.TeamModel

	err := r.db.WithContext(ctx).
		Preload("BlacklistEntries").
		Where("sid = ?", sid).
		First(&model).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, team.ErrTeamNotFound
		}
		r.logger.Errorw("failed to get team by sid", "error", err, "sid", sid)
		return nil, fmt.Errorf("failed to get team: %w", err)
	}

	return r.mapper.ToEntity(&model)
}

// GetByID retrieves a team by database ID, blacklist included
func (r *TeamRepository) GetByID(ctx context.Context, id uint) (*team.Team, error) {
	var model models.TeamModel

	err := r.db.WithContext(ctx).
		Preload("BlacklistEntries").
		First(&model, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, team.ErrTeamNotFound
		}
		r.logger.Errorw("failed to get team by id", "error", err, "id", id)
		return nil, fmt.Errorf("failed to get team: %w", err)
	}

	return r.mapper.ToEntity(&model)
}

// UpdateSettings persists the team's settings and limits columns
func (r *TeamRepository) UpdateSettings(ctx context.Context, entity *team.Team) error {
	settings := entity.Settings()
	limits := entity.Limits()

	result := r.db.WithContext(ctx).
		Model(&models.TeamModel{}).
		Where("id = ?", entity.ID()).
		Updates(map[string]interface{}{
			"strict_customers":       settings.StrictCustomers,
			"ip_limit_period":        string(settings.IPLimitPeriod),
			"device_timeout_seconds": settings.DeviceTimeoutSeconds,
			"allow_classloader":      limits.AllowClassloader,
			"max_licenses":           limits.MaxLicenses,
			"max_products":           limits.MaxProducts,
			"updated_at":             entity.UpdatedAt(),
		})
	if result.Error != nil {
		r.logger.Errorw("failed to update team settings", "error", result.Error, "id", entity.ID())
		return fmt.Errorf("failed to update team settings: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return team.ErrTeamNotFound
	}

	return nil
}

// AddBlacklistEntry inserts a deny rule for the team
func (r *TeamRepository) AddBlacklistEntry(ctx context.Context, teamID uint, entry team.BlacklistEntry) error {
	model := &models.BlacklistEntryModel{
		TeamID: teamID,
		Type:   string(entry.Type),
		Value:  entry.Value,
	}

	if err := r.db.WithContext(ctx).Create(model).Error; err != nil {
		if sharederrors.IsDuplicateError(err) {
			return team.ErrBlacklistEntryExists
		}
		r.logger.Errorw("failed to add blacklist entry", "error", err, "team_id", teamID)
		return fmt.Errorf("failed to add blacklist entry: %w", err)
	}

	return nil
}

// RemoveBlacklistEntry deletes a deny rule of the team
func (r *TeamRepository) RemoveBlacklistEntry(ctx context.Context, teamID uint, entry team.BlacklistEntry) error {
	result := r.db.WithContext(ctx).
		Where("team_id = ? AND type = ? AND value = ?", teamID, string(entry.Type), entry.Value).
		Delete(&models.BlacklistEntryModel{})
	if result.Error != nil {
		r.logger.Errorw("failed to remove blacklist entry", "error", result.Error, "team_id", teamID)
		return fmt.Errorf("failed to remove blacklist entry: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return team.ErrBlacklistEntryNotFound
	}

	return nil
}

// SoftDelete marks the team deleted. The row stays for audit but no lookup
// returns it afterwards.
func (r *TeamRepository) SoftDelete(ctx context.Context, id uint) error {
	result := r.db.WithContext(ctx).Delete(&models.TeamModel{}, id)
	if result.Error != nil {
		r.logger.Errorw("failed to soft delete team", "error", result.Error, "id", id)
		return fmt.Errorf("failed to delete team: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return team.ErrTeamNotFound
	}

	r.logger.Infow("team soft deleted", "id", id)
	return nil
}
