package mappers

import (
	"fmt"

	"github.com/keyward-io/keyward/internal/domain/license"
	"github.com/keyward-io/keyward/internal/infrastructure/persistence/models"
)

// LicenseMapper handles the conversion between license entities and persistence models
type LicenseMapper interface {
	ToEntity(model *models.LicenseModel) (*license.License, error)
	ToModel(entity *license.License) (*models.LicenseModel, error)
	ToEntities(models []*models.LicenseModel) ([]*license.License, error)
}

type LicenseMapperImpl struct{}

// NewLicenseMapper creates a new license mapper
func NewLicenseMapper() LicenseMapper {
	return &LicenseMapperImpl{}
}

// ToEntity converts a persistence model to a domain entity
func (m *LicenseMapperImpl) ToEntity(model *models.LicenseModel) (*license.License, error) {
	if model == nil {
		return nil, nil
	}

	expiration := license.Expiration{
		Type:  license.ExpirationType(model.ExpirationType),
		Start: license.ExpirationStart(model.ExpirationStart),
		Date:  model.ExpirationDate,
		Days:  model.ExpirationDays,
	}

	customers := make([]license.Customer, 0, len(model.Customers))
	for _, c := range model.Customers {
		customers = append(customers, license.Customer{
			ID:    c.ID,
			SID:   c.SID,
			Name:  c.Name,
			Email: c.Email,
		})
	}

	productIDs := make([]uint, 0, len(model.Products))
	for _, p := range model.Products {
		productIDs = append(productIDs, p.ID)
	}

	entity, err := license.ReconstructLicense(
		model.ID,
		model.SID,
		model.TeamID,
		model.LicenseKeyLookup,
		model.Suspended,
		expiration,
		model.IPLimit,
		model.HWIDLimit,
		model.Note,
		customers,
		productIDs,
		model.CreatedAt,
		model.UpdatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to reconstruct license: %w", err)
	}
	return entity, nil
}

// ToModel converts a domain entity to a persistence model. Customer and
// product associations go through the join tables, not the model.
func (m *LicenseMapperImpl) ToModel(entity *license.License) (*models.LicenseModel, error) {
	if entity == nil {
		return nil, nil
	}

	expiration := entity.Expiration()

	return &models.LicenseModel{
		ID:               entity.ID(),
		SID:              entity.SID(),
		TeamID:           entity.TeamID(),
		LicenseKeyLookup: entity.LookupHash(),
		Suspended:        entity.Suspended(),
		ExpirationType:   string(expiration.Type),
		ExpirationStart:  string(expiration.Start),
		ExpirationDate:   expiration.Date,
		ExpirationDays:   expiration.Days,
		IPLimit:          entity.IPLimit(),
		HWIDLimit:        entity.HWIDLimit(),
		Note:             entity.Note(),
		CreatedAt:        entity.CreatedAt(),
		UpdatedAt:        entity.UpdatedAt(),
	}, nil
}

// ToEntities converts multiple persistence models to domain entities
func (m *LicenseMapperImpl) ToEntities(licenseModels []*models.LicenseModel) ([]*license.License, error) {
	entities := make([]*license.License, 0, len(licenseModels))
	for _, model := range licenseModels {
		entity, err := m.ToEntity(model)
		if err != nil {
			return nil, err
		}
		entities = append(entities, entity)
	}
	return entities, nil
}
