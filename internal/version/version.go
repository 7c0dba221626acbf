// Package version holds the application version stamped into settings exports.
package version

import "regexp"

// Version is overridden at build time:
//
//	go build -ldflags "-X home-cli/internal/version.Version=v5.1.0" ./cmd/home
var Version = "dev"

var majorRe = regexp.MustCompile(`(?i)^v?(\d+)`)

// Short returns the major-only form shown in badges: "v5.0.0" -> "v5".
// Versions without a leading number are returned unchanged.
func Short(v string) string {
	m := majorRe.FindStringSubmatch(v)
	if m == nil {
		return v
	}
	return "v" + m[1]
}
