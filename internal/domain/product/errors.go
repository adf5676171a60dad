package product

import "errors"

var (
	// ErrProductNotFound is returned when a product does not exist
	ErrProductNotFound = errors.New("product not found")

	// ErrReleaseNotFound is returned when no release matches the query
	ErrReleaseNotFound = errors.New("release not found")

	// ErrReleaseExists is returned when the (product, version) pair is taken
	ErrReleaseExists = errors.New("release version already exists")
)
