package license

import "context"

// Repository is the license persistence contract. The verification path
// reads by (teamID, lookupHash) only; the plaintext key never reaches a
// query.
type Repository interface {
	Create(ctx context.Context, l *License) error
	GetByLookupHash(ctx context.Context, teamID uint, lookupHash string) (*License, error)
	GetBySID(ctx context.Context, teamID uint, sid string) (*License, error)
	List(ctx context.Context, teamID uint, page, pageSize int) ([]*License, int64, error)
	Update(ctx context.Context, l *License) error
	UpdateExpirationDate(ctx context.Context, l *License) error
	Delete(ctx context.Context, teamID uint, sid string) error
	CountByTeam(ctx context.Context, teamID uint) (int64, error)
	AttachCustomer(ctx context.Context, licenseID, customerID uint) error
	AttachProduct(ctx context.Context, licenseID, productID uint) error
}
