// Package verification defines the typed outcomes of the license
// verification pipeline and the gate logic shared by the verify, heartbeat,
// and classloader flows.
package verification

import "net/http"

// Status is the discriminator of every verification outcome. Each status
// carries a fixed HTTP code and a short client-visible detail string.
type Status string

const (
	StatusValid Status = "VALID"

	StatusBadRequest          Status = "BAD_REQUEST"
	StatusRateLimit           Status = "RATE_LIMIT"
	StatusTeamNotFound        Status = "TEAM_NOT_FOUND"
	StatusLicenseNotFound     Status = "LICENSE_NOT_FOUND"
	StatusCustomerNotFound    Status = "CUSTOMER_NOT_FOUND"
	StatusProductNotFound     Status = "PRODUCT_NOT_FOUND"
	StatusReleaseNotFound     Status = "RELEASE_NOT_FOUND"
	StatusReleaseArchived     Status = "RELEASE_ARCHIVED"
	StatusReleaseDraft        Status = "RELEASE_DRAFT"
	StatusNoAccessToRelease   Status = "NO_ACCESS_TO_RELEASE"
	StatusLicenseSuspended    Status = "LICENSE_SUSPENDED"
	StatusLicenseExpired      Status = "LICENSE_EXPIRED"
	StatusIPLimitReached      Status = "IP_LIMIT_REACHED"
	StatusHWIDLimitReached    Status = "HWID_LIMIT_REACHED"
	StatusBlacklisted         Status = "BLACKLISTED"
	StatusForbidden           Status = "FORBIDDEN"
	StatusInvalidSessionKey   Status = "INVALID_SESSION_KEY"
	StatusInternalServerError Status = "INTERNAL_SERVER_ERROR"
)

// HTTPStatus maps a verification status to the HTTP code the client endpoint
// responds with. Input mistakes are 400, rate limits 429, lookup misses 404,
// policy rejections 403, everything unexpected 500.
func (s Status) HTTPStatus() int {
	switch s {
	case StatusValid:
		return http.StatusOK
	case StatusBadRequest, StatusInvalidSessionKey:
		return http.StatusBadRequest
	case StatusRateLimit:
		return http.StatusTooManyRequests
	case StatusTeamNotFound, StatusLicenseNotFound, StatusCustomerNotFound,
		StatusProductNotFound, StatusReleaseNotFound:
		return http.StatusNotFound
	case StatusReleaseArchived, StatusReleaseDraft, StatusNoAccessToRelease,
		StatusLicenseSuspended, StatusLicenseExpired, StatusIPLimitReached,
		StatusHWIDLimitReached, StatusBlacklisted, StatusForbidden:
		return http.StatusForbidden
	default:
		return http.StatusInternalServerError
	}
}

// DefaultDetails returns the human-readable detail string for a status.
// These are short and stable; they never contain identifiers or internals.
func (s Status) DefaultDetails() string {
	switch s {
	case StatusValid:
		return "License is valid"
	case StatusBadRequest:
		return "Malformed request"
	case StatusRateLimit:
		return "Too many requests"
	case StatusTeamNotFound:
		return "Team not found"
	case StatusLicenseNotFound:
		return "License not found"
	case StatusCustomerNotFound:
		return "Customer not found"
	case StatusProductNotFound:
		return "Product not found"
	case StatusReleaseNotFound:
		return "Release not found"
	case StatusReleaseArchived:
		return "Release is archived"
	case StatusReleaseDraft:
		return "Release is not published"
	case StatusNoAccessToRelease:
		return "License has no access to this release"
	case StatusLicenseSuspended:
		return "License is suspended"
	case StatusLicenseExpired:
		return "License has expired"
	case StatusIPLimitReached:
		return "IP limit reached"
	case StatusHWIDLimitReached:
		return "Device limit reached"
	case StatusBlacklisted:
		return "Request is blacklisted"
	case StatusForbidden:
		return "Forbidden"
	case StatusInvalidSessionKey:
		return "Invalid session key"
	default:
		return "Internal server error"
	}
}
