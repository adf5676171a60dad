package mappers

import (
	"fmt"

	"github.com/keyward-io/keyward/internal/domain/product"
	"github.com/keyward-io/keyward/internal/infrastructure/persistence/models"
)

// ProductMapper handles the conversion between product/release entities and
// persistence models
type ProductMapper interface {
	ToEntity(model *models.ProductModel) (*product.Product, error)
	ToModel(entity *product.Product) (*models.ProductModel, error)
	ToEntities(models []*models.ProductModel) ([]*product.Product, error)

	ReleaseToEntity(model *models.ReleaseModel) (*product.Release, error)
	ReleaseToModel(entity *product.Release) (*models.ReleaseModel, error)
	ReleasesToEntities(models []*models.ReleaseModel) ([]*product.Release, error)
}

type ProductMapperImpl struct{}

// NewProductMapper creates a new product mapper
func NewProductMapper() ProductMapper {
	return &ProductMapperImpl{}
}

// ToEntity converts a persistence model to a domain entity
func (m *ProductMapperImpl) ToEntity(model *models.ProductModel) (*product.Product, error) {
	if model == nil {
		return nil, nil
	}

	entity, err := product.ReconstructProduct(
		model.ID,
		model.SID,
		model.TeamID,
		model.Name,
		model.CreatedAt,
		model.UpdatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to reconstruct product: %w", err)
	}
	return entity, nil
}

// ToModel converts a domain entity to a persistence model
func (m *ProductMapperImpl) ToModel(entity *product.Product) (*models.ProductModel, error) {
	if entity == nil {
		return nil, nil
	}

	return &models.ProductModel{
		ID:        entity.ID(),
		SID:       entity.SID(),
		TeamID:    entity.TeamID(),
		Name:      entity.Name(),
		CreatedAt: entity.CreatedAt(),
		UpdatedAt: entity.UpdatedAt(),
	}, nil
}

// ToEntities converts multiple persistence models to domain entities
func (m *ProductMapperImpl) ToEntities(productModels []*models.ProductModel) ([]*product.Product, error) {
	entities := make([]*product.Product, 0, len(productModels))
	for _, model := range productModels {
		entity, err := m.ToEntity(model)
		if err != nil {
			return nil, err
		}
		entities = append(entities, entity)
	}
	return entities, nil
}

// ReleaseToEntity converts a release persistence model to a domain entity
func (m *ProductMapperImpl) ReleaseToEntity(model *models.ReleaseModel) (*product.Release, error) {
	if model == nil {
		return nil, nil
	}

	var file *product.ReleaseFile
	if model.FileKey != "" {
		file = &product.ReleaseFile{
			Key:           model.FileKey,
			Size:          model.FileSize,
			Checksum:      model.FileChecksum,
			MainClassName: model.MainClassName,
		}
	}

	allowedLicenses := make([]uint, 0, len(model.AllowedLicenses))
	for _, l := range model.AllowedLicenses {
		allowedLicenses = append(allowedLicenses, l.ID)
	}

	entity, err := product.ReconstructRelease(
		model.ID,
		model.SID,
		model.ProductID,
		model.Version,
		model.Branch,
		product.ReleaseStatus(model.Status),
		model.Latest,
		file,
		allowedLicenses,
		model.LastSeenAt,
		model.CreatedAt,
		model.UpdatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to reconstruct release: %w", err)
	}
	return entity, nil
}

// ReleaseToModel converts a release domain entity to a persistence model.
// The license allow-list goes through the join table, not the model.
func (m *ProductMapperImpl) ReleaseToModel(entity *product.Release) (*models.ReleaseModel, error) {
	if entity == nil {
		return nil, nil
	}

	model := &models.ReleaseModel{
		ID:         entity.ID(),
		SID:        entity.SID(),
		ProductID:  entity.ProductID(),
		Version:    entity.Version(),
		Branch:     entity.Branch(),
		Status:     string(entity.Status()),
		Latest:     entity.Latest(),
		LastSeenAt: entity.LastSeenAt(),
		CreatedAt:  entity.CreatedAt(),
		UpdatedAt:  entity.UpdatedAt(),
	}

	if file := entity.File(); file != nil {
		model.FileKey = file.Key
		model.FileSize = file.Size
		model.FileChecksum = file.Checksum
		model.MainClassName = file.MainClassName
	}

	return model, nil
}

// ReleasesToEntities converts multiple release persistence models to domain entities
func (m *ProductMapperImpl) ReleasesToEntities(releaseModels []*models.ReleaseModel) ([]*product.Release, error) {
	entities := make([]*product.Release, 0, len(releaseModels))
	for _, model := range releaseModels {
		entity, err := m.ReleaseToEntity(model)
		if err != nil {
			return nil, err
		}
		entities = append(entities, entity)
	}
	return entities, nil
}
