package utils

// MaskLicenseKey truncates a license key for safe logging. Only the first
// block survives; the rest is replaced so full keys never reach log storage.
// Example: "AAAAA-BBBBB-CCCCC-DDDDD-EEEEE" -> "AAAAA-***"
func MaskLicenseKey(key string) string {
	if len(key) <= 5 {
		return "***"
	}
	return key[:5] + "-***"
}

// MaskHardwareID shortens a device identifier for logging.
func MaskHardwareID(hwid string) string {
	if len(hwid) <= 8 {
		return hwid
	}
	return hwid[:8] + "..."
}
