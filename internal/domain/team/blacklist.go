package team

import "strings"

// BlacklistType discriminates what a blacklist entry denies.
type BlacklistType string

const (
	BlacklistTypeIP      BlacklistType = "IP"
	BlacklistTypeCountry BlacklistType = "COUNTRY"
	BlacklistTypeHWID    BlacklistType = "HWID"
)

func (t BlacklistType) IsValid() bool {
	switch t {
	case BlacklistTypeIP, BlacklistTypeCountry, BlacklistTypeHWID:
		return true
	}
	return false
}

// BlacklistEntry is a single deny rule. Countries match on the alpha-3 code.
type BlacklistEntry struct {
	Type  BlacklistType
	Value string
}

// Blacklist is a team's deny rule collection.
type Blacklist []BlacklistEntry

// MatchIP returns the matching entry for an IP address, or nil.
func (b Blacklist) MatchIP(ip string) *BlacklistEntry {
	return b.match(BlacklistTypeIP, ip)
}

// MatchCountry returns the matching entry for an alpha-3 country code, or
// nil. Matching is case-insensitive since geo databases differ in casing.
func (b Blacklist) MatchCountry(alpha3 string) *BlacklistEntry {
	if alpha3 == "" {
		return nil
	}
	for i := range b {
		if b[i].Type == BlacklistTypeCountry && strings.EqualFold(b[i].Value, alpha3) {
			return &b[i]
		}
	}
	return nil
}

// MatchHWID returns the matching entry for a hardware identifier, or nil.
func (b Blacklist) MatchHWID(hwid string) *BlacklistEntry {
	return b.match(BlacklistTypeHWID, hwid)
}

func (b Blacklist) match(t BlacklistType, value string) *BlacklistEntry {
	if value == "" {
		return nil
	}
	for i := range b {
		if b[i].Type == t && b[i].Value == value {
			return &b[i]
		}
	}
	return nil
}
