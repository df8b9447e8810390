package version

import (
	"github.com/hashicorp/go-version"
)

// AppVersion is overridden at build time with
// -ldflags "-X github.com/nulzo/zone-analytics-proxy/internal/version.AppVersion=v1.2.3".
var AppVersion = "v0.0.0"

// Current returns the normalized semantic version of the running build. Builds stamped
// with a non-semver string (a commit hash, "dev") report it unchanged.
func Current() string {
	v, err := version.NewVersion(AppVersion)
	if err != nil {
		return AppVersion
	}
	return v.String()
}
