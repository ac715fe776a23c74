package enrich

import "testing"

func TestDetectDeviceType(t *testing.T) {
	tests := []struct {
		name string
		ua   string
		want string
	}{
		{
			name: "ipad is tablet even though it matches mobile too",
			ua:   "Mozilla/5.0 (iPad; CPU OS 16_0 like Mac OS X) AppleWebKit/605.1.15 (KHTML, like Gecko) Version/16.0 Mobile/15E148 Safari/604.1",
			want: DeviceTablet,
		},
		{
			name: "android tablet token wins over android mobile token",
			ua:   "Mozilla/5.0 (Linux; Android 12; SM-X906C) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/105.0 Safari/537.36 Tablet Mobile",
			want: DeviceTablet,
		},
		{
			name: "kindle silk is tablet",
			ua:   "Mozilla/5.0 (Linux; Android 9; KFTRWI) AppleWebKit/537.36 Silk/108.3 Mobile Safari/537.36",
			want: DeviceTablet,
		},
		{
			name: "iphone is mobile",
			ua:   "Mozilla/5.0 (iPhone; CPU iPhone OS 16_0 like Mac OS X) AppleWebKit/605.1.15 Version/16.0 Mobile/15E148 Safari/604.1",
			want: DeviceMobile,
		},
		{
			name: "android phone is mobile",
			ua:   "Mozilla/5.0 (Linux; Android 13; Pixel 7) AppleWebKit/537.36 Chrome/114.0 Mobile Safari/537.36",
			want: DeviceMobile,
		},
		{
			name: "desktop chrome",
			ua:   "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 Chrome/114.0 Safari/537.36",
			want: DeviceDesktop,
		},
		{
			name: "empty UA defaults to desktop",
			ua:   "",
			want: DeviceDesktop,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := DetectDevice(tt.ua); got.Type != tt.want {
				t.Errorf("DetectDevice(%q).Type = %q, want %q", tt.ua, got.Type, tt.want)
			}
		})
	}
}

func TestDetectDeviceBrowser(t *testing.T) {
	tests := []struct {
		name string
		ua   string
		want string
	}{
		{
			name: "firefox",
			ua:   "Mozilla/5.0 (Windows NT 10.0; Win64; x64; rv:109.0) Gecko/20100101 Firefox/114.0",
			want: "Firefox",
		},
		{
			name: "chrome",
			ua:   "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 Chrome/114.0 Safari/537.36",
			want: "Chrome",
		},
		{
			name: "edge UA contains chrome but must classify as edge",
			ua:   "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 Chrome/114.0 Safari/537.36 Edg/114.0",
			want: "Edge",
		},
		{
			name: "safari UA contains safari but not chrome",
			ua:   "Mozilla/5.0 (Macintosh; Intel Mac OS X 13_4) AppleWebKit/605.1.15 Version/16.5 Safari/605.1.15",
			want: "Safari",
		},
		{
			name: "legacy internet explorer via trident",
			ua:   "Mozilla/5.0 (Windows NT 10.0; WOW64; Trident/7.0; rv:11.0) like Gecko",
			want: "Internet Explorer",
		},
		{
			name: "unmatched falls back to Unknown",
			ua:   "curl/8.1.2",
			want: "Unknown",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := DetectDevice(tt.ua); got.Browser != tt.want {
				t.Errorf("DetectDevice(%q).Browser = %q, want %q", tt.ua, got.Browser, tt.want)
			}
		})
	}
}

func TestDetectDeviceOS(t *testing.T) {
	tests := []struct {
		name string
		ua   string
		want string
	}{
		{
			name: "android UA contains linux but must classify as android",
			ua:   "Mozilla/5.0 (Linux; Android 13; Pixel 7) AppleWebKit/537.36 Chrome/114.0 Mobile Safari/537.36",
			want: "Android",
		},
		{
			name: "iphone UA contains mac os x but must classify as iOS",
			ua:   "Mozilla/5.0 (iPhone; CPU iPhone OS 16_0 like Mac OS X) AppleWebKit/605.1.15 Mobile/15E148 Safari/604.1",
			want: "iOS",
		},
		{
			name: "windows",
			ua:   "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 Chrome/114.0 Safari/537.36",
			want: "Windows",
		},
		{
			name: "macos",
			ua:   "Mozilla/5.0 (Macintosh; Intel Mac OS X 13_4) AppleWebKit/605.1.15 Version/16.5 Safari/605.1.15",
			want: "macOS",
		},
		{
			name: "plain linux",
			ua:   "Mozilla/5.0 (X11; Linux x86_64; rv:109.0) Gecko/20100101 Firefox/114.0",
			want: "Linux",
		},
		{
			name: "unmatched falls back to Unknown",
			ua:   "curl/8.1.2",
			want: "Unknown",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := DetectDevice(tt.ua); got.OS != tt.want {
				t.Errorf("DetectDevice(%q).OS = %q, want %q", tt.ua, got.OS, tt.want)
			}
		})
	}
}
