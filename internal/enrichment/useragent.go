// Package enrichment derives analytics dimensions (OS, device class,
// geolocation) from raw click metadata. Everything here is best-effort:
// unparseable input maps to "Unknown", never to an error.
package enrichment

import (
	ua "github.com/mileusna/useragent"
)

// Device class labels.
const (
	DeviceDesktop = "Desktop"
	DeviceMobile  = "Mobile"
	DeviceTablet  = "Tablet"
	DeviceBot     = "Bot"
	Unknown       = "Unknown"
)

// ParseUserAgent derives the OS name and device class from a raw
// User-Agent string.
func ParseUserAgent(uaString string) (osName, deviceType string) {
	if uaString == "" {
		return Unknown, Unknown
	}

	parsed := ua.Parse(uaString)

	osName = parsed.OS
	if osName == "" {
		osName = Unknown
	}

	switch {
	case parsed.Bot:
		deviceType = DeviceBot
	case parsed.Tablet:
		deviceType = DeviceTablet
	case parsed.Mobile:
		deviceType = DeviceMobile
	case parsed.Desktop:
		deviceType = DeviceDesktop
	default:
		deviceType = Unknown
	}
	return osName, deviceType
}
