package product

import (
	"context"
	"errors"
	"fmt"

	licensedomain "github.com/keyward-io/keyward/internal/domain/license"
	productdomain "github.com/keyward-io/keyward/internal/domain/product"
	"github.com/keyward-io/keyward/internal/domain/team"
	apperrors "github.com/keyward-io/keyward/internal/shared/errors"
	"github.com/keyward-io/keyward/internal/shared/id"
	"github.com/keyward-io/keyward/internal/shared/logger"
)

// Service is the admin product and release management surface.
type Service struct {
	products productdomain.Repository
	licenses licensedomain.Repository
	teams    team.Repository
	logger   logger.Interface
}

func NewService(
	products productdomain.Repository,
	licenses licensedomain.Repository,
	teams team.Repository,
	logger logger.Interface,
) *Service {
	return &Service{
		products: products,
		licenses: licenses,
		teams:    teams,
		logger:   logger,
	}
}

// CreateProduct registers a product for the team, subject to the team's
// product limit.
func (s *Service) CreateProduct(ctx context.Context, teamSID string, req CreateProductRequest) (*ProductDTO, error) {
	tm, err := s.teams.GetBySID(ctx, teamSID)
	if err != nil {
		if errors.Is(err, team.ErrTeamNotFound) {
			return nil, apperrors.NewNotFoundError("team not found")
		}
		return nil, fmt.Errorf("failed to get team: %w", err)
	}

	_, total, err := s.products.ListProducts(ctx, tm.ID(), 1, 1)
	if err != nil {
		return nil, fmt.Errorf("failed to count products: %w", err)
	}
	if total >= int64(tm.Limits().MaxProducts) {
		return nil, apperrors.NewForbiddenError("product limit reached for this team")
	}

	sid, err := id.GenerateWithPrefix(id.PrefixProduct, id.DefaultLength)
	if err != nil {
		return nil, fmt.Errorf("failed to generate sid: %w", err)
	}

	p, err := productdomain.NewProduct(sid, tm.ID(), req.Name)
	if err != nil {
		return nil, apperrors.NewValidationError(err.Error())
	}

	if err := s.products.CreateProduct(ctx, p); err != nil {
		return nil, fmt.Errorf("failed to create product: %w", err)
	}

	s.logger.Infow("product created", "team_sid", teamSID, "product_sid", p.SID())
	return productToDTO(p), nil
}

// GetProduct returns one product of the team.
func (s *Service) GetProduct(ctx context.Context, teamID uint, sid string) (*ProductDTO, error) {
	p, err := s.getProduct(ctx, teamID, sid)
	if err != nil {
		return nil, err
	}
	return productToDTO(p), nil
}

// ListProducts returns a page of the team's products.
func (s *Service) ListProducts(ctx context.Context, teamID uint, page, pageSize int) ([]*ProductDTO, int64, error) {
	products, total, err := s.products.ListProducts(ctx, teamID, page, pageSize)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list products: %w", err)
	}

	dtos := make([]*ProductDTO, 0, len(products))
	for _, p := range products {
		dtos = append(dtos, productToDTO(p))
	}
	return dtos, total, nil
}

// DeleteProduct removes the product and all of its releases.
func (s *Service) DeleteProduct(ctx context.Context, teamID uint, sid string) error {
	if err := s.products.DeleteProduct(ctx, teamID, sid); err != nil {
		if errors.Is(err, productdomain.ErrProductNotFound) {
			return apperrors.NewNotFoundError("product not found")
		}
		return fmt.Errorf("failed to delete product: %w", err)
	}
	return nil
}

// CreateRelease adds a draft release. It stays invisible to the classloader
// until a file is attached and the release is published.
func (s *Service) CreateRelease(ctx context.Context, teamID uint, productSID string, req CreateReleaseRequest) (*ReleaseDTO, error) {
	p, err := s.getProduct(ctx, teamID, productSID)
	if err != nil {
		return nil, err
	}

	sid, err := id.GenerateWithPrefix(id.PrefixRelease, id.DefaultLength)
	if err != nil {
		return nil, fmt.Errorf("failed to generate sid: %w", err)
	}

	rel, err := productdomain.NewRelease(sid, p.ID(), req.Version, req.Branch)
	if err != nil {
		return nil, apperrors.NewValidationError(err.Error())
	}

	if err := s.products.CreateRelease(ctx, rel); err != nil {
		if errors.Is(err, productdomain.ErrReleaseExists) {
			return nil, apperrors.NewConflictError("release version already exists")
		}
		return nil, fmt.Errorf("failed to create release: %w", err)
	}

	s.logger.Infow("release created", "product_sid", productSID, "version", rel.Version(), "branch", rel.Branch())
	return releaseToDTO(rel), nil
}

// ListReleases returns every release of the product.
func (s *Service) ListReleases(ctx context.Context, teamID uint, productSID string) ([]*ReleaseDTO, error) {
	p, err := s.getProduct(ctx, teamID, productSID)
	if err != nil {
		return nil, err
	}

	releases, err := s.products.ListReleases(ctx, p.ID())
	if err != nil {
		return nil, fmt.Errorf("failed to list releases: %w", err)
	}

	dtos := make([]*ReleaseDTO, 0, len(releases))
	for _, rel := range releases {
		dtos = append(dtos, releaseToDTO(rel))
	}
	return dtos, nil
}

// AttachFile registers the uploaded artifact of a release. The object must
// already be present in the release bucket.
func (s *Service) AttachFile(ctx context.Context, teamID uint, productSID, version string, req AttachFileRequest) (*ReleaseDTO, error) {
	rel, err := s.getRelease(ctx, teamID, productSID, version)
	if err != nil {
		return nil, err
	}

	err = rel.AttachFile(productdomain.ReleaseFile{
		Key:           req.Key,
		Size:          req.Size,
		Checksum:      req.Checksum,
		MainClassName: req.MainClassName,
	})
	if err != nil {
		return nil, apperrors.NewValidationError(err.Error())
	}

	if err := s.products.UpdateRelease(ctx, rel); err != nil {
		return nil, fmt.Errorf("failed to update release: %w", err)
	}
	return releaseToDTO(rel), nil
}

// PublishRelease makes the release fetchable through the classloader.
func (s *Service) PublishRelease(ctx context.Context, teamID uint, productSID, version string) (*ReleaseDTO, error) {
	rel, err := s.getRelease(ctx, teamID, productSID, version)
	if err != nil {
		return nil, err
	}

	if err := rel.Publish(); err != nil {
		return nil, apperrors.NewConflictError(err.Error())
	}

	if err := s.products.UpdateRelease(ctx, rel); err != nil {
		return nil, fmt.Errorf("failed to update release: %w", err)
	}

	s.logger.Infow("release published", "product_sid", productSID, "version", version)
	return releaseToDTO(rel), nil
}

// ArchiveRelease retires the release from classloader delivery.
func (s *Service) ArchiveRelease(ctx context.Context, teamID uint, productSID, version string) (*ReleaseDTO, error) {
	rel, err := s.getRelease(ctx, teamID, productSID, version)
	if err != nil {
		return nil, err
	}

	rel.Archive()

	if err := s.products.UpdateRelease(ctx, rel); err != nil {
		return nil, fmt.Errorf("failed to update release: %w", err)
	}

	s.logger.Infow("release archived", "product_sid", productSID, "version", version)
	return releaseToDTO(rel), nil
}

// SetLatest flags the release as the latest of its product and branch and
// clears the flag from siblings.
func (s *Service) SetLatest(ctx context.Context, teamID uint, productSID, version string) (*ReleaseDTO, error) {
	rel, err := s.getRelease(ctx, teamID, productSID, version)
	if err != nil {
		return nil, err
	}

	rel.MarkLatest()

	if err := s.products.SetLatestRelease(ctx, rel); err != nil {
		return nil, fmt.Errorf("failed to set latest release: %w", err)
	}

	s.logger.Infow("release marked latest", "product_sid", productSID, "version", version, "branch", rel.Branch())
	return releaseToDTO(rel), nil
}

// SetAllowedLicenses replaces the release's license allow-list with the
// licenses named by SID.
func (s *Service) SetAllowedLicenses(ctx context.Context, teamID uint, productSID, version string, req SetAllowedLicensesRequest) (*ReleaseDTO, error) {
	rel, err := s.getRelease(ctx, teamID, productSID, version)
	if err != nil {
		return nil, err
	}

	licenseIDs := make([]uint, 0, len(req.LicenseIDs))
	for _, licenseSID := range req.LicenseIDs {
		lic, err := s.licenses.GetBySID(ctx, teamID, licenseSID)
		if err != nil {
			if errors.Is(err, licensedomain.ErrLicenseNotFound) {
				return nil, apperrors.NewValidationError(fmt.Sprintf("unknown license: %s", licenseSID))
			}
			return nil, fmt.Errorf("failed to resolve license: %w", err)
		}
		licenseIDs = append(licenseIDs, lic.ID())
	}

	rel.SetAllowedLicenses(licenseIDs)

	if err := s.products.UpdateRelease(ctx, rel); err != nil {
		return nil, fmt.Errorf("failed to update release: %w", err)
	}
	return releaseToDTO(rel), nil
}

func (s *Service) getProduct(ctx context.Context, teamID uint, sid string) (*productdomain.Product, error) {
	p, err := s.products.GetProductBySID(ctx, teamID, sid)
	if err != nil {
		if errors.Is(err, productdomain.ErrProductNotFound) {
			return nil, apperrors.NewNotFoundError("product not found")
		}
		return nil, fmt.Errorf("failed to get product: %w", err)
	}
	return p, nil
}

func (s *Service) getRelease(ctx context.Context, teamID uint, productSID, version string) (*productdomain.Release, error) {
	p, err := s.getProduct(ctx, teamID, productSID)
	if err != nil {
		return nil, err
	}

	rel, err := s.products.GetReleaseByVersion(ctx, p.ID(), version)
	if err != nil {
		if errors.Is(err, productdomain.ErrReleaseNotFound) {
			return nil, apperrors.NewNotFoundError("release not found")
		}
		return nil, fmt.Errorf("failed to get release: %w", err)
	}
	return rel, nil
}

func productToDTO(p *productdomain.Product) *ProductDTO {
	return &ProductDTO{
		ID:        p.SID(),
		Name:      p.Name(),
		CreatedAt: p.CreatedAt(),
	}
}

func releaseToDTO(rel *productdomain.Release) *ReleaseDTO {
	dto := &ReleaseDTO{
		ID:              rel.SID(),
		Version:         rel.Version(),
		Branch:          rel.Branch(),
		Status:          string(rel.Status()),
		Latest:          rel.Latest(),
		AllowedLicenses: len(rel.AllowedLicenses()),
		LastSeenAt:      rel.LastSeenAt(),
		CreatedAt:       rel.CreatedAt(),
	}
	if file := rel.File(); file != nil {
		dto.FileKey = file.Key
		dto.FileSize = file.Size
		dto.Checksum = file.Checksum
		dto.MainClassName = file.MainClassName
	}
	return dto
}
