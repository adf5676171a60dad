// Package geoip resolves request IPs to countries for blacklist evaluation
// and request logging.
package geoip

import "github.com/keyward-io/keyward/internal/domain/verification"

// Resolver maps an IP address to geo data. Implementations return nil (not
// an error) when the IP cannot be resolved; verification treats unresolved
// IPs as having no country.
type Resolver interface {
	Resolve(ip string) *verification.GeoData
	Close() error
}

// NoopResolver is used when no geo database is configured.
type NoopResolver struct{}

func (NoopResolver) Resolve(ip string) *verification.GeoData { return nil }
func (NoopResolver) Close() error                            { return nil }

// StaticResolver returns fixed geo data per IP, for tests.
type StaticResolver map[string]*verification.GeoData

func (s StaticResolver) Resolve(ip string) *verification.GeoData { return s[ip] }
func (s StaticResolver) Close() error                            { return nil }
