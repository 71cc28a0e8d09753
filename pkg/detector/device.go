package detector

import "strings"

const (
	DeviceMobile  = "Mobile"
	DeviceTablet  = "Tablet"
	DeviceTV      = "TV"
	DeviceDesktop = "Desktop"
)

func DetectDeviceType(userAgent string) string {
	ua := strings.ToLower(userAgent)

	mobileKeywords := []string{"mobile", "iphone", "android", "blackberry", "phone", "opera mini"}
	for _, keyword := range mobileKeywords {
		if strings.Contains(ua, keyword) {
			return DeviceMobile
		}
	}

	tabletKeywords := []string{"tablet", "ipad"}
	for _, keyword := range tabletKeywords {
		if strings.Contains(ua, keyword) {
			return DeviceTablet
		}
	}

	tvKeywords := []string{"smart-tv", "hbbtv", "appletv"}
	for _, keyword := range tvKeywords {
		if strings.Contains(ua, keyword) {
			return DeviceTV
		}
	}

	return DeviceDesktop
}
