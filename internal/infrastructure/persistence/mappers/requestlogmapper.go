package mappers

import (
	"github.com/keyward-io/keyward/internal/domain/requestlog"
	"github.com/keyward-io/keyward/internal/infrastructure/persistence/models"
)

// RequestLogMapper handles the conversion between request log entries and
// persistence models
type RequestLogMapper interface {
	ToEntry(model *models.RequestLogModel) *requestlog.Entry
	ToModel(entry *requestlog.Entry) *models.RequestLogModel
	ToEntries(models []*models.RequestLogModel) []*requestlog.Entry
}

type RequestLogMapperImpl struct{}

// NewRequestLogMapper creates a new request log mapper
func NewRequestLogMapper() RequestLogMapper {
	return &RequestLogMapperImpl{}
}

func (m *RequestLogMapperImpl) ToEntry(model *models.RequestLogModel) *requestlog.Entry {
	if model == nil {
		return nil
	}

	return &requestlog.Entry{
		TeamID:           model.TeamID,
		Endpoint:         requestlog.Endpoint(model.Endpoint),
		IPAddress:        model.IPAddress,
		Country:          model.Country,
		LicenseKeyLookup: model.LicenseKeyLookup,
		CustomerSID:      model.CustomerSID,
		ProductSID:       model.ProductSID,
		HardwareID:       model.HardwareID,
		Status:           model.Status,
		CreatedAt:        model.CreatedAt,
	}
}

func (m *RequestLogMapperImpl) ToModel(entry *requestlog.Entry) *models.RequestLogModel {
	if entry == nil {
		return nil
	}

	return &models.RequestLogModel{
		TeamID:           entry.TeamID,
		Endpoint:         string(entry.Endpoint),
		IPAddress:        entry.IPAddress,
		Country:          entry.Country,
		LicenseKeyLookup: entry.LicenseKeyLookup,
		CustomerSID:      entry.CustomerSID,
		ProductSID:       entry.ProductSID,
		HardwareID:       entry.HardwareID,
		Status:           entry.Status,
		CreatedAt:        entry.CreatedAt,
	}
}

func (m *RequestLogMapperImpl) ToEntries(logModels []*models.RequestLogModel) []*requestlog.Entry {
	entries := make([]*requestlog.Entry, 0, len(logModels))
	for _, model := range logModels {
		entries = append(entries, m.ToEntry(model))
	}
	return entries
}
