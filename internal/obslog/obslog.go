// Package obslog provides the leveled, colorized logging used by every
// host and extension component in this module.
package obslog

import (
	"fmt"
	"os"
	"runtime/debug"
	"sync"

	"github.com/op/go-logging"
)

var (
	once    sync.Once
	format  = logging.MustStringFormatter(`%{time:15:04:05.000} %{level:.6s} ▶ %{module} %{message}`)
	backend logging.Backend
)

// EnvLevelVar is read on every New to pick a default level override,
// mirroring a KR_LOG_LEVEL-style env switch.
const EnvLevelVar = "ORCHID_LOG_LEVEL"

func initBackend() {
	once.Do(func() {
		backend = logging.NewLogBackend(os.Stderr, "", 0)
		logging.SetFormatter(format)
	})
}

// New returns a logger for the named module (e.g. "reqnot", "intern",
// "eval") leveled at defaultLevel unless ORCHID_LOG_LEVEL overrides it.
func New(module string, defaultLevel logging.Level) *logging.Logger {
	initBackend()
	leveled := logging.AddModuleLevel(backend)
	level := levelFromEnv(defaultLevel)
	leveled.SetLevel(level, module)
	logging.SetBackend(leveled)
	return logging.MustGetLogger(module)
}

func levelFromEnv(fallback logging.Level) logging.Level {
	switch os.Getenv(EnvLevelVar) {
	case "CRITICAL":
		return logging.CRITICAL
	case "ERROR":
		return logging.ERROR
	case "WARNING":
		return logging.WARNING
	case "NOTICE":
		return logging.NOTICE
	case "INFO":
		return logging.INFO
	case "DEBUG":
		return logging.DEBUG
	default:
		return fallback
	}
}

// RecoverToLog converts a panic inside f into a logged error instead of
// crashing the process. Used to wrap caller-supplied transport and atom
// callbacks, which this module does not control.
func RecoverToLog(f func(), log *logging.Logger) {
	defer func() {
		if x := recover(); x != nil {
			if log != nil {
				log.Error(fmt.Sprintf("run time panic: %v", x))
				log.Error(string(debug.Stack()))
			}
		}
	}()
	f()
}
