// Package dto defines the request and response shapes of the client-facing
// verification endpoints.
package dto

import (
	"time"

	"github.com/keyward-io/keyward/internal/domain/verification"
)

// VerifyRequest is the body of the verify and heartbeat endpoints.
// DeviceIdentifier is the deprecated alias for HardwareIdentifier kept for
// old SDKs; when both are present the new field wins.
type VerifyRequest struct {
	LicenseKey         string `json:"licenseKey" binding:"required"`
	HardwareIdentifier string `json:"hardwareIdentifier"`
	DeviceIdentifier   string `json:"deviceIdentifier"`
	CustomerID         string `json:"customerId"`
	ProductID          string `json:"productId"`
	Challenge          string `json:"challenge"`
}

// Hardware returns the effective hardware identifier.
func (r *VerifyRequest) Hardware() string {
	if r.HardwareIdentifier != "" {
		return r.HardwareIdentifier
	}
	return r.DeviceIdentifier
}

// ClassloaderQuery is the query string of the classloader endpoint.
type ClassloaderQuery struct {
	LicenseKey         string `form:"licenseKey" binding:"required"`
	CustomerID         string `form:"customerId"`
	ProductID          string `form:"productId" binding:"required"`
	Version            string `form:"version"`
	Branch             string `form:"branch"`
	SessionKey         string `form:"sessionKey" binding:"required"`
	HardwareIdentifier string `form:"hardwareIdentifier"`
	DeviceIdentifier   string `form:"deviceIdentifier"`
}

// Hardware returns the effective hardware identifier.
func (q *ClassloaderQuery) Hardware() string {
	if q.HardwareIdentifier != "" {
		return q.HardwareIdentifier
	}
	return q.DeviceIdentifier
}

// ResultDTO is the outcome block every client response carries. The client
// SDK checks Valid first; Details stays short and never contains internals.
type ResultDTO struct {
	Timestamp time.Time `json:"timestamp"`
	Valid     bool      `json:"valid"`
	Details   string    `json:"details"`
}

// NewResultDTO converts a pipeline result.
func NewResultDTO(r *verification.Result) ResultDTO {
	return ResultDTO{
		Timestamp: r.Timestamp,
		Valid:     r.IsValid(),
		Details:   r.Details,
	}
}

// LicenseSummary is the non-sensitive license view returned on a valid
// verification. The plaintext key is never echoed back.
type LicenseSummary struct {
	ID             string     `json:"id"`
	ExpirationType string     `json:"expirationType"`
	ExpirationDate *time.Time `json:"expirationDate,omitempty"`
	Suspended      bool       `json:"suspended"`
}

// CustomerSummary is the matched customer, present when the caller supplied
// a customer id.
type CustomerSummary struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// ProductSummary is the matched product, present when the caller supplied a
// product id.
type ProductSummary struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// VerifyData is the data block of a valid verify or heartbeat response.
type VerifyData struct {
	License   *LicenseSummary  `json:"license,omitempty"`
	Customer  *CustomerSummary `json:"customer,omitempty"`
	Product   *ProductSummary  `json:"product,omitempty"`
	Challenge string           `json:"challenge,omitempty"`
}

// VerifyResponse is the JSON envelope of every verify, heartbeat, and failed
// classloader response.
type VerifyResponse struct {
	Data   *VerifyData `json:"data"`
	Result ResultDTO   `json:"result"`
}

// ClassloaderHeaders describes the streamed file on a successful classloader
// response.
type ClassloaderHeaders struct {
	FileSize      int64
	ProductName   string
	ReleaseStatus string
	Version       string
	LatestVersion string
	MainClass     string
}
