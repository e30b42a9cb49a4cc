// Package version reports the build version of deckcheck. Set it at build
// time with ldflags:
//
//	go build -ldflags "-X github.com/ramonehamilton/commander-consistency/internal/version.Version=v1.2.3"
package version

import "runtime/debug"

// Version defaults to "dev" and is overridden at build time.
var Version = "dev"

// GetVersion returns the build version. A dev build installed with
// go install reports its module version instead.
func GetVersion() string {
	if Version != "dev" {
		return Version
	}
	if info, ok := debug.ReadBuildInfo(); ok && info.Main.Version != "" && info.Main.Version != "(devel)" {
		return info.Main.Version
	}
	return Version
}
