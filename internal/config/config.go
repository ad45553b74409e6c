// Package config locates the runtime directory and sockets this module's
// binaries use, and carries the tunable durations/gas defaults for the
// transport, interner, and evaluator.
package config

import (
	"os"
	"path/filepath"
	"time"
)

const homeEnvVar = "ORCHID_HOME"

// RuntimeDir returns $ORCHID_HOME, falling back to ~/.orchid, creating it
// with 0700 if absent.
func RuntimeDir() (dir string, err error) {
	if dir = os.Getenv(homeEnvVar); dir == "" {
		home, herr := os.UserHomeDir()
		if herr != nil {
			err = herr
			return
		}
		dir = filepath.Join(home, ".orchid")
	}
	err = os.MkdirAll(dir, 0700)
	return
}

// SocketPath joins the runtime dir with name, the host<->extension pipe's
// filename.
func SocketPath(name string) (path string, err error) {
	dir, err := RuntimeDir()
	if err != nil {
		return
	}
	path = filepath.Join(dir, name)
	return
}

// Timeouts bundles the tunable durations used across the core.
type Timeouts struct {
	// Handshake bounds the host's header exchange with an extension
	// after it connects (the connection deadline during the handshake).
	Handshake time.Duration
	// InternRPC is the duration configured for a replica's wait for a
	// master response to InternStr/InternStrv/ExternStr/ExternStrv. No
	// code in this module reads it: reqnot.Transport.Request waits
	// without a timeout.
	InternRPC time.Duration
	// SweepRPC is the duration configured for the master's wait for a
	// replica's Sweep response. No code in this module reads it either.
	SweepRPC time.Duration
}

// DefaultTimeouts returns the timeouts a new runtime should start with.
func DefaultTimeouts() Timeouts {
	return Timeouts{
		Handshake: 5 * time.Second,
		InternRPC: 2 * time.Second,
		SweepRPC:  10 * time.Second,
	}
}

// DefaultGas is the evaluator step budget used when a caller does not
// supply one explicitly; zero stands for no limit, which a caller
// expresses as eval.Unlimited(). eval.NewGas(0) is an empty budget, not
// an unlimited one.
const DefaultGas = 0
