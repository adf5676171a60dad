// Package mappers converts between domain entities and persistence models.
package mappers

import (
	"fmt"
	"time"

	"github.com/keyward-io/keyward/internal/domain/team"
	"github.com/keyward-io/keyward/internal/infrastructure/persistence/models"
)

// TeamMapper handles the conversion between team entities and persistence models
type TeamMapper interface {
	ToEntity(model *models.TeamModel) (*team.Team, error)
	ToModel(entity *team.Team) (*models.TeamModel, error)
}

type TeamMapperImpl struct{}

// NewTeamMapper creates a new team mapper
func NewTeamMapper() TeamMapper {
	return &TeamMapperImpl{}
}

// ToEntity converts a persistence model to a domain entity
func (m *TeamMapperImpl) ToEntity(model *models.TeamModel) (*team.Team, error) {
	if model == nil {
		return nil, nil
	}

	blacklist := make(team.Blacklist, 0, len(model.BlacklistEntries))
	for _, e := range model.BlacklistEntries {
		entryType := team.BlacklistType(e.Type)
		if !entryType.IsValid() {
			return nil, fmt.Errorf("invalid blacklist entry type: %s", e.Type)
		}
		blacklist = append(blacklist, team.BlacklistEntry{
			Type:  entryType,
			Value: e.Value,
		})
	}

	var deletedAt *time.Time
	if model.DeletedAt.Valid {
		t := model.DeletedAt.Time
		deletedAt = &t
	}

	entity, err := team.ReconstructTeam(
		model.ID,
		model.SID,
		model.Name,
		team.Settings{
			StrictCustomers:      model.StrictCustomers,
			IPLimitPeriod:        team.IPLimitPeriod(model.IPLimitPeriod),
			DeviceTimeoutSeconds: model.DeviceTimeoutSeconds,
		},
		team.Limits{
			AllowClassloader: model.AllowClassloader,
			MaxLicenses:      model.MaxLicenses,
			MaxProducts:      model.MaxProducts,
		},
		team.KeyPair{
			PublicPEM:  model.PublicKeyPEM,
			PrivatePEM: model.PrivateKeyPEM,
		},
		blacklist,
		deletedAt,
		model.CreatedAt,
		model.UpdatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to reconstruct team: %w", err)
	}
	return entity, nil
}

// ToModel converts a domain entity to a persistence model. Blacklist entries
// are managed through their own rows and are not carried on the model.
func (m *TeamMapperImpl) ToModel(entity *team.Team) (*models.TeamModel, error) {
	if entity == nil {
		return nil, nil
	}

	settings := entity.Settings()
	limits := entity.Limits()
	keyPair := entity.KeyPair()

	return &models.TeamModel{
		ID:                   entity.ID(),
		SID:                  entity.SID(),
		Name:                 entity.Name(),
		StrictCustomers:      settings.StrictCustomers,
		IPLimitPeriod:        string(settings.IPLimitPeriod),
		DeviceTimeoutSeconds: settings.DeviceTimeoutSeconds,
		AllowClassloader:     limits.AllowClassloader,
		MaxLicenses:          limits.MaxLicenses,
		MaxProducts:          limits.MaxProducts,
		PublicKeyPEM:         keyPair.PublicPEM,
		PrivateKeyPEM:        keyPair.PrivatePEM,
		CreatedAt:            entity.CreatedAt(),
		UpdatedAt:            entity.UpdatedAt(),
	}, nil
}
