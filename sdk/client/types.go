package client

import (
	"io"
	"time"
)

// VerifyRequest is the body sent to the verify and heartbeat endpoints.
type VerifyRequest struct {
	LicenseKey         string `json:"licenseKey"`
	HardwareIdentifier string `json:"hardwareIdentifier,omitempty"`
	CustomerID         string `json:"customerId,omitempty"`
	ProductID          string `json:"productId,omitempty"`
	Challenge          string `json:"challenge,omitempty"`
}

// Result is the outcome block every response carries.
type Result struct {
	Timestamp time.Time `json:"timestamp"`
	Valid     bool      `json:"valid"`
	Details   string    `json:"details"`
}

// LicenseSummary is the license view returned on a valid verification.
type LicenseSummary struct {
	ID             string     `json:"id"`
	ExpirationType string     `json:"expirationType"`
	ExpirationDate *time.Time `json:"expirationDate,omitempty"`
	Suspended      bool       `json:"suspended"`
}

// CustomerSummary is the matched customer, present when a customer id was
// supplied.
type CustomerSummary struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// ProductSummary is the matched product, present when a product id was
// supplied.
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

// VerifyResponse is the JSON envelope of verify, heartbeat, and failed
// classloader responses.
type VerifyResponse struct {
	Data   *VerifyData `json:"data"`
	Result Result      `json:"result"`
}

// ClassloaderQuery is the query of the classloader endpoint.
type ClassloaderQuery struct {
	LicenseKey         string
	CustomerID         string
	ProductID          string
	Version            string
	Branch             string
	SessionKey         string
	HardwareIdentifier string
}

// ClassloaderFile is a streamed release artifact. Body must be closed by
// the caller.
type ClassloaderFile struct {
	Body          io.ReadCloser
	FileSize      int64
	ProductName   string
	ReleaseStatus string
	Version       string
	LatestVersion string
	MainClass     string
}
