// Package device turns raw User-Agent strings into the short device labels
// shown on session listings. Labels are display-only.
package device

import (
	"fmt"

	"github.com/mssola/useragent"
)

// ParseUserAgent returns a human-readable "Browser on Platform" label for a
// raw User-Agent header.
func ParseUserAgent(rawUA string) string {
	if rawUA == "" {
		return "Unknown Device"
	}

	ua := useragent.New(rawUA)

	browser, _ := ua.Browser()
	if browser == "" {
		browser = "Unknown Browser"
	}

	platform := ua.OSInfo().Name
	if platform == "" {
		platform = ua.Platform()
	}
	if platform == "" {
		platform = "Unknown Platform"
	}

	return fmt.Sprintf("%s on %s", browser, platform)
}
