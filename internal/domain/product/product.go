// Package product contains the product and release aggregates. Releases
// carry the binary artifacts the classloader endpoint serves.
package product

import (
	"fmt"
	"time"
)

// Product groups the releases of one shippable artifact for a team.
type Product struct {
	id        uint
	sid       string
	teamID    uint
	name      string
	createdAt time.Time
	updatedAt time.Time
}

func NewProduct(sid string, teamID uint, name string) (*Product, error) {
	if sid == "" {
		return nil, fmt.Errorf("product sid is required")
	}
	if teamID == 0 {
		return nil, fmt.Errorf("team ID is required")
	}
	if name == "" {
		return nil, fmt.Errorf("product name is required")
	}

	now := time.Now()
	return &Product{
		sid:       sid,
		teamID:    teamID,
		name:      name,
		createdAt: now,
		updatedAt: now,
	}, nil
}

func ReconstructProduct(id uint, sid string, teamID uint, name string, createdAt, updatedAt time.Time) (*Product, error) {
	if id == 0 {
		return nil, fmt.Errorf("product ID cannot be zero")
	}
	return &Product{
		id:        id,
		sid:       sid,
		teamID:    teamID,
		name:      name,
		createdAt: createdAt,
		updatedAt: updatedAt,
	}, nil
}

func (p *Product) ID() uint             { return p.id }
func (p *Product) SID() string          { return p.sid }
func (p *Product) TeamID() uint         { return p.teamID }
func (p *Product) Name() string         { return p.name }
func (p *Product) CreatedAt() time.Time { return p.createdAt }
func (p *Product) UpdatedAt() time.Time { return p.updatedAt }

// SetID sets the product ID after insertion (persistence layer use only).
func (p *Product) SetID(id uint) error {
	if p.id != 0 {
		return fmt.Errorf("product ID is already set")
	}
	if id == 0 {
		return fmt.Errorf("product ID cannot be zero")
	}
	p.id = id
	return nil
}

func (p *Product) Rename(name string) error {
	if name == "" {
		return fmt.Errorf("product name is required")
	}
	p.name = name
	p.updatedAt = time.Now()
	return nil
}
