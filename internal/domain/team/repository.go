package team

import "context"

// Repository is the team lookup contract. Implementations must exclude
// soft-deleted teams from every query.
type Repository interface {
	Create(ctx context.Context, t *Team) error
	GetBySID(ctx context.Context, sid string) (*Team, error)
	GetByID(ctx context.Context, id uint) (*Team, error)
	UpdateSettings(ctx context.Context, t *Team) error
	AddBlacklistEntry(ctx context.Context, teamID uint, entry BlacklistEntry) error
	RemoveBlacklistEntry(ctx context.Context, teamID uint, entry BlacklistEntry) error
	SoftDelete(ctx context.Context, id uint) error
}
