package constants

const (
	// Environment constants
	EnvDevelopment = "development"
	EnvTest        = "test"
	EnvProduction  = "production"

	// Default pagination
	DefaultPage     = 1
	DefaultPageSize = 20
	MaxPageSize     = 100

	// HTTP Headers
	HeaderContentType   = "Content-Type"
	HeaderAuthorization = "Authorization"
	HeaderXRequestID    = "X-Request-ID"
	HeaderXForwardedFor = "X-Forwarded-For"

	// Classloader response headers
	HeaderXFileSize      = "X-File-Size"
	HeaderXProductName   = "X-Product-Name"
	HeaderXReleaseStatus = "X-Release-Status"
	HeaderXVersion       = "X-Version"
	HeaderXLatestVersion = "X-Latest-Version"
	HeaderXMainClass     = "X-Main-Class"

	// Content Types
	ContentTypeJSON        = "application/json"
	ContentTypeOctetStream = "application/octet-stream"

	// Context keys
	ContextKeyAdminUser = "admin_user"
	ContextKeyRequestID = "request_id"

	// Database table names
	TableTeams            = "teams"
	TableLicenses         = "licenses"
	TableCustomers        = "customers"
	TableLicenseCustomers = "license_customers"
	TableLicenseProducts  = "license_products"
	TableProducts         = "products"
	TableReleases         = "releases"
	TableReleaseLicenses  = "release_licenses"
	TableDevices          = "devices"
	TableRequestLogs      = "request_logs"
	TableBlacklistEntries = "blacklist_entries"
)
