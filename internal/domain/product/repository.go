package product

import "context"

// Repository is the product and release persistence contract.
type Repository interface {
	CreateProduct(ctx context.Context, p *Product) error
	GetProductBySID(ctx context.Context, teamID uint, sid string) (*Product, error)
	ListProducts(ctx context.Context, teamID uint, page, pageSize int) ([]*Product, int64, error)
	UpdateProduct(ctx context.Context, p *Product) error
	DeleteProduct(ctx context.Context, teamID uint, sid string) error

	CreateRelease(ctx context.Context, r *Release) error
	GetReleaseByVersion(ctx context.Context, productID uint, version string) (*Release, error)
	// GetLatestRelease returns the latest-flagged release of the product,
	// scoped to branch when non-empty.
	GetLatestRelease(ctx context.Context, productID uint, branch string) (*Release, error)
	ListReleases(ctx context.Context, productID uint) ([]*Release, error)
	UpdateRelease(ctx context.Context, r *Release) error
	// SetLatestRelease flags the release as latest and clears the flag from
	// every sibling of the same product+branch atomically.
	SetLatestRelease(ctx context.Context, r *Release) error
	TouchReleaseLastSeen(ctx context.Context, releaseID uint) error
}
