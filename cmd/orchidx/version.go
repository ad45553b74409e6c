package main

import "github.com/blang/semver"

// protocolVersion is the ExtensionHeader version this binary advertises.
// It must share a major version with the host it connects to.
func protocolVersion() semver.Version {
	return semver.Version{Major: 0, Minor: 1, Patch: 0}
}
