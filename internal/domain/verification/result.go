package verification

import "time"

// Result is the outcome of a single gate or of the whole pipeline. Gates
// return a nil *Result to signal "pass"; the first non-nil result wins and
// short-circuits the pipeline. No gate ever reports a rejection as a Go
// error; errors are reserved for infrastructure failures, which the
// orchestrator converts to StatusInternalServerError (fail closed).
type Result struct {
	Status    Status
	Details   string
	Timestamp time.Time
}

// Fail builds a failure result with the status's default details.
func Fail(status Status) *Result {
	return &Result{
		Status:    status,
		Details:   status.DefaultDetails(),
		Timestamp: time.Now().UTC(),
	}
}

// FailWithDetails builds a failure result with custom details.
func FailWithDetails(status Status, details string) *Result {
	return &Result{
		Status:    status,
		Details:   details,
		Timestamp: time.Now().UTC(),
	}
}

// Valid builds the success result.
func Valid() *Result {
	return &Result{
		Status:    StatusValid,
		Details:   StatusValid.DefaultDetails(),
		Timestamp: time.Now().UTC(),
	}
}

// IsValid reports whether the result represents a passed verification.
func (r *Result) IsValid() bool {
	return r != nil && r.Status == StatusValid
}

// HTTPStatus returns the HTTP code for this result.
func (r *Result) HTTPStatus() int {
	return r.Status.HTTPStatus()
}

// GeoData is the resolved location of the caller's IP, or nil when
// resolution failed or no database is configured.
type GeoData struct {
	Alpha2  string
	Alpha3  string
	Country string
}
