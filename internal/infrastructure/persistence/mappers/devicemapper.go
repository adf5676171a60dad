package mappers

import (
	"fmt"

	"github.com/keyward-io/keyward/internal/domain/device"
	"github.com/keyward-io/keyward/internal/infrastructure/persistence/models"
)

// DeviceMapper handles the conversion between device entities and persistence models
type DeviceMapper interface {
	ToEntity(model *models.DeviceModel) (*device.Device, error)
	ToModel(entity *device.Device) (*models.DeviceModel, error)
	ToEntities(models []*models.DeviceModel) ([]*device.Device, error)
}

type DeviceMapperImpl struct{}

// NewDeviceMapper creates a new device mapper
func NewDeviceMapper() DeviceMapper {
	return &DeviceMapperImpl{}
}

// ToEntity converts a persistence model to a domain entity
func (m *DeviceMapperImpl) ToEntity(model *models.DeviceModel) (*device.Device, error) {
	if model == nil {
		return nil, nil
	}

	entity, err := device.ReconstructDevice(
		model.ID,
		model.LicenseID,
		model.Identifier,
		model.LastBeatAt,
		model.IPAddress,
		model.Country,
		model.Forgotten,
		model.CreatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to reconstruct device: %w", err)
	}
	return entity, nil
}

// ToModel converts a domain entity to a persistence model
func (m *DeviceMapperImpl) ToModel(entity *device.Device) (*models.DeviceModel, error) {
	if entity == nil {
		return nil, nil
	}

	return &models.DeviceModel{
		ID:         entity.ID(),
		LicenseID:  entity.LicenseID(),
		Identifier: entity.Identifier(),
		LastBeatAt: entity.LastBeatAt(),
		IPAddress:  entity.IPAddress(),
		Country:    entity.Country(),
		Forgotten:  entity.Forgotten(),
		CreatedAt:  entity.CreatedAt(),
	}, nil
}

// ToEntities converts multiple persistence models to domain entities
func (m *DeviceMapperImpl) ToEntities(deviceModels []*models.DeviceModel) ([]*device.Device, error) {
	entities := make([]*device.Device, 0, len(deviceModels))
	for _, model := range deviceModels {
		entity, err := m.ToEntity(model)
		if err != nil {
			return nil, err
		}
		entities = append(entities, entity)
	}
	return entities, nil
}
