package team

import "errors"

var (
	// ErrTeamNotFound is returned when a team does not exist or is
	// soft-deleted
	ErrTeamNotFound = errors.New("team not found")

	// ErrBlacklistEntryExists is returned when adding a duplicate blacklist
	// entry
	ErrBlacklistEntryExists = errors.New("blacklist entry already exists")

	// ErrBlacklistEntryNotFound is returned when removing a missing blacklist
	// entry
	ErrBlacklistEntryNotFound = errors.New("blacklist entry not found")
)
