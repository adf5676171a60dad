package license

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/keyward-io/keyward/internal/domain/device"
	licensedomain "github.com/keyward-io/keyward/internal/domain/license"
	"github.com/keyward-io/keyward/internal/domain/team"
	"github.com/keyward-io/keyward/internal/shared/crypto"
	apperrors "github.com/keyward-io/keyward/internal/shared/errors"
	"github.com/keyward-io/keyward/internal/shared/id"
	"github.com/keyward-io/keyward/internal/shared/logger"
	"github.com/keyward-io/keyward/internal/shared/utils"
)

// Service is the admin license management surface: issuance, suspension,
// expiration changes, and seat administration.
type Service struct {
	licenses licensedomain.Repository
	devices  device.Repository
	teams    team.Repository
	hasher   *crypto.Hasher
	logger   logger.Interface
}

func NewService(
	licenses licensedomain.Repository,
	devices device.Repository,
	teams team.Repository,
	hasher *crypto.Hasher,
	logger logger.Interface,
) *Service {
	return &Service{
		licenses: licenses,
		devices:  devices,
		teams:    teams,
		hasher:   hasher,
		logger:   logger,
	}
}

// Issue generates a license key, stores its lookup hash, and returns the
// plaintext key exactly once. The key is never stored or logged.
func (s *Service) Issue(ctx context.Context, teamSID string, req IssueLicenseRequest) (*IssuedLicenseDTO, error) {
	tm, err := s.teams.GetBySID(ctx, teamSID)
	if err != nil {
		if errors.Is(err, team.ErrTeamNotFound) {
			return nil, apperrors.NewNotFoundError("team not found")
		}
		return nil, fmt.Errorf("failed to get team: %w", err)
	}

	count, err := s.licenses.CountByTeam(ctx, tm.ID())
	if err != nil {
		return nil, fmt.Errorf("failed to count licenses: %w", err)
	}
	if count >= int64(tm.Limits().MaxLicenses) {
		return nil, apperrors.NewForbiddenError("license limit reached for this team")
	}

	expiration, err := buildExpiration(req.ExpirationType, req.ExpirationStart, req.ExpirationDate, req.ExpirationDays)
	if err != nil {
		return nil, apperrors.NewValidationError(err.Error())
	}

	key, err := GenerateKey()
	if err != nil {
		return nil, fmt.Errorf("failed to generate key: %w", err)
	}

	sid, err := id.GenerateWithPrefix(id.PrefixLicense, id.DefaultLength)
	if err != nil {
		return nil, fmt.Errorf("failed to generate sid: %w", err)
	}

	lic, err := licensedomain.NewLicense(sid, tm.ID(), s.hasher.LookupHash(key, tm.SID()), expiration, req.IPLimit, req.HWIDLimit)
	if err != nil {
		return nil, apperrors.NewValidationError(err.Error())
	}
	lic.SetNote(req.Note)

	if err := s.licenses.Create(ctx, lic); err != nil {
		if errors.Is(err, licensedomain.ErrLicenseExists) {
			// A lookup hash collision means the generated key already
			// exists for this team; the caller can simply retry.
			return nil, apperrors.NewConflictError("license key collision, retry issuance")
		}
		return nil, fmt.Errorf("failed to create license: %w", err)
	}

	s.logger.Infow("license issued",
		"team_sid", teamSID,
		"license_sid", lic.SID(),
		"license_key", utils.MaskLicenseKey(key),
	)

	dto := toDTO(lic)
	return &IssuedLicenseDTO{LicenseDTO: *dto, LicenseKey: key}, nil
}

// Get returns one license of the team.
func (s *Service) Get(ctx context.Context, teamID uint, sid string) (*LicenseDTO, error) {
	lic, err := s.getLicense(ctx, teamID, sid)
	if err != nil {
		return nil, err
	}
	return toDTO(lic), nil
}

// List returns a page of the team's licenses.
func (s *Service) List(ctx context.Context, teamID uint, page, pageSize int) ([]*LicenseDTO, int64, error) {
	licenses, total, err := s.licenses.List(ctx, teamID, page, pageSize)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list licenses: %w", err)
	}

	dtos := make([]*LicenseDTO, 0, len(licenses))
	for _, lic := range licenses {
		dtos = append(dtos, toDTO(lic))
	}
	return dtos, total, nil
}

// Suspend blocks the license from verifying until unsuspended.
func (s *Service) Suspend(ctx context.Context, teamID uint, sid string) error {
	return s.setSuspended(ctx, teamID, sid, true)
}

// Unsuspend lifts a suspension.
func (s *Service) Unsuspend(ctx context.Context, teamID uint, sid string) error {
	return s.setSuspended(ctx, teamID, sid, false)
}

func (s *Service) setSuspended(ctx context.Context, teamID uint, sid string, suspended bool) error {
	lic, err := s.getLicense(ctx, teamID, sid)
	if err != nil {
		return err
	}

	if suspended {
		lic.Suspend()
	} else {
		lic.Unsuspend()
	}

	if err := s.licenses.Update(ctx, lic); err != nil {
		return fmt.Errorf("failed to update license: %w", err)
	}

	s.logger.Infow("license suspension changed", "license_sid", sid, "suspended", suspended)
	return nil
}

// UpdateExpiration replaces the license's expiration policy.
func (s *Service) UpdateExpiration(ctx context.Context, teamID uint, sid string, req UpdateExpirationRequest) (*LicenseDTO, error) {
	lic, err := s.getLicense(ctx, teamID, sid)
	if err != nil {
		return nil, err
	}

	expiration, err := buildExpiration(req.ExpirationType, req.ExpirationStart, req.ExpirationDate, req.ExpirationDays)
	if err != nil {
		return nil, apperrors.NewValidationError(err.Error())
	}
	if err := lic.UpdateExpiration(expiration); err != nil {
		return nil, apperrors.NewValidationError(err.Error())
	}

	if err := s.licenses.Update(ctx, lic); err != nil {
		return nil, fmt.Errorf("failed to update license: %w", err)
	}
	return toDTO(lic), nil
}

// Delete removes the license and frees its key for reissuance.
func (s *Service) Delete(ctx context.Context, teamID uint, sid string) error {
	if err := s.licenses.Delete(ctx, teamID, sid); err != nil {
		if errors.Is(err, licensedomain.ErrLicenseNotFound) {
			return apperrors.NewNotFoundError("license not found")
		}
		return fmt.Errorf("failed to delete license: %w", err)
	}
	return nil
}

// ListDevices returns every seat of the license, most recently seen first.
func (s *Service) ListDevices(ctx context.Context, teamID uint, sid string) ([]*DeviceDTO, error) {
	lic, err := s.getLicense(ctx, teamID, sid)
	if err != nil {
		return nil, err
	}

	devices, err := s.devices.ListByLicense(ctx, lic.ID())
	if err != nil {
		return nil, fmt.Errorf("failed to list devices: %w", err)
	}

	dtos := make([]*DeviceDTO, 0, len(devices))
	for _, d := range devices {
		dtos = append(dtos, &DeviceDTO{
			Identifier: d.Identifier(),
			LastBeatAt: d.LastBeatAt(),
			IPAddress:  d.IPAddress(),
			Country:    d.Country(),
			Forgotten:  d.Forgotten(),
			CreatedAt:  d.CreatedAt(),
		})
	}
	return dtos, nil
}

// ForgetDevice frees the seat held by the identifier. The device history
// stays; the seat is reoccupied if the device ever verifies again.
func (s *Service) ForgetDevice(ctx context.Context, teamID uint, sid, identifier string) error {
	lic, err := s.getLicense(ctx, teamID, sid)
	if err != nil {
		return err
	}

	if err := s.devices.Forget(ctx, lic.ID(), identifier); err != nil {
		if errors.Is(err, device.ErrDeviceNotFound) {
			return apperrors.NewNotFoundError("device not found")
		}
		return fmt.Errorf("failed to forget device: %w", err)
	}

	s.logger.Infow("device forgotten", "license_sid", sid, "identifier", utils.MaskHardwareID(identifier))
	return nil
}

func (s *Service) getLicense(ctx context.Context, teamID uint, sid string) (*licensedomain.License, error) {
	lic, err := s.licenses.GetBySID(ctx, teamID, sid)
	if err != nil {
		if errors.Is(err, licensedomain.ErrLicenseNotFound) {
			return nil, apperrors.NewNotFoundError("license not found")
		}
		return nil, fmt.Errorf("failed to get license: %w", err)
	}
	return lic, nil
}

func buildExpiration(expType, expStart string, date *time.Time, days *int) (licensedomain.Expiration, error) {
	start := licensedomain.ExpirationStart(expStart)
	if expStart == "" {
		start = licensedomain.StartCreation
	}

	expiration := licensedomain.Expiration{
		Type:  licensedomain.ExpirationType(expType),
		Start: start,
		Date:  date,
		Days:  days,
	}
	if err := expiration.Validate(); err != nil {
		return licensedomain.Expiration{}, err
	}
	return expiration, nil
}

func toDTO(lic *licensedomain.License) *LicenseDTO {
	expiration := lic.Expiration()

	customers := make([]string, 0, len(lic.Customers()))
	for _, c := range lic.Customers() {
		customers = append(customers, c.SID)
	}

	return &LicenseDTO{
		ID:              lic.SID(),
		Suspended:       lic.Suspended(),
		ExpirationType:  string(expiration.Type),
		ExpirationStart: string(expiration.Start),
		ExpirationDate:  expiration.Date,
		ExpirationDays:  expiration.Days,
		IPLimit:         lic.IPLimit(),
		HWIDLimit:       lic.HWIDLimit(),
		Note:            lic.Note(),
		Customers:       customers,
		CreatedAt:       lic.CreatedAt(),
	}
}
