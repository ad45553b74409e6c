package main

import "github.com/blang/semver"

// protocolVersion is the HostHeader version this binary advertises to
// every extension that connects. Bumping it is a breaking-change
// decision, not a release-number bump: an extension built against an
// older major version is expected to refuse the handshake.
func protocolVersion() semver.Version {
	return semver.Version{Major: 0, Minor: 1, Patch: 0}
}
