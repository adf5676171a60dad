package license

import "errors"

var (
	// ErrLicenseNotFound is returned when no license matches the lookup
	ErrLicenseNotFound = errors.New("license not found")

	// ErrLicenseExists is returned when the (team, lookup hash) pair is taken
	ErrLicenseExists = errors.New("license already exists")
)
