package enrich

import "strings"

// Device is the low-cardinality classification derived from a User-Agent string.
type Device struct {
	Type    string `json:"deviceType"`
	Browser string `json:"browser"`
	OS      string `json:"os"`
}

const (
	DeviceMobile  = "mobile"
	DeviceTablet  = "tablet"
	DeviceDesktop = "desktop"
)

// Tablet signatures are checked before mobile ones: an iPad UA also matches
// "mobile" and must still land on tablet.
var tabletTokens = []string{"ipad", "tablet", "kindle", "silk", "playbook"}

var mobileTokens = []string{"mobile", "iphone", "ipod", "android", "blackberry", "windows phone", "opera mini", "webos"}

// rule tables are evaluated top to bottom; the order carries the exclusions
// (Chrome must not claim Edge UAs, Safari must not claim Chrome UAs).
type rule struct {
	name  string
	match func(ua string) bool
}

var browserRules = []rule{
	{"Firefox", func(ua string) bool { return strings.Contains(ua, "firefox") }},
	{"Chrome", func(ua string) bool { return strings.Contains(ua, "chrome") && !strings.Contains(ua, "edg") }},
	{"Safari", func(ua string) bool { return strings.Contains(ua, "safari") && !strings.Contains(ua, "chrome") }},
	{"Edge", func(ua string) bool { return strings.Contains(ua, "edg") }},
	{"Opera", func(ua string) bool { return strings.Contains(ua, "opera") || strings.Contains(ua, "opr/") }},
	{"Internet Explorer", func(ua string) bool { return strings.Contains(ua, "msie") || strings.Contains(ua, "trident") }},
}

// Android before Linux (Android UAs contain "linux"), iOS before macOS (iPhone
// UAs contain "like Mac OS X").
var osRules = []rule{
	{"Android", func(ua string) bool { return strings.Contains(ua, "android") }},
	{"iOS", func(ua string) bool {
		return strings.Contains(ua, "iphone") || strings.Contains(ua, "ipad") || strings.Contains(ua, "ipod")
	}},
	{"Windows", func(ua string) bool { return strings.Contains(ua, "windows") }},
	{"macOS", func(ua string) bool { return strings.Contains(ua, "mac os") || strings.Contains(ua, "macintosh") }},
	{"Linux", func(ua string) bool { return strings.Contains(ua, "linux") }},
}

// DetectDevice classifies a raw User-Agent into device type, browser family and
// operating system. Pure string matching, no I/O, safe to call anywhere.
func DetectDevice(userAgent string) Device {
	ua := strings.ToLower(userAgent)

	d := Device{Type: DeviceDesktop, Browser: "Unknown", OS: "Unknown"}

	if containsAny(ua, tabletTokens) {
		d.Type = DeviceTablet
	} else if containsAny(ua, mobileTokens) {
		d.Type = DeviceMobile
	}

	for _, r := range browserRules {
		if r.match(ua) {
			d.Browser = r.name
			break
		}
	}
	for _, r := range osRules {
		if r.match(ua) {
			d.OS = r.name
			break
		}
	}
	return d
}

func containsAny(s string, tokens []string) bool {
	for _, t := range tokens {
		if strings.Contains(s, t) {
			return true
		}
	}
	return false
}
