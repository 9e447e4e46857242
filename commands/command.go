package commands

import (
	"fmt"

	"go.uber.org/zap"
)

const APP = "db-sync-sheets"

var log = zap.NewNop()

// Options are the global command line options.
type Options struct {
	Config string
	Debug  bool
}

func setLogger(logger *zap.Logger) {
	log = logger.Named("commands")
}

func debugf(format string, args ...any) {
	log.Debug(fmt.Sprintf(format, args...))
}

func infof(format string, args ...any) {
	log.Info(fmt.Sprintf(format, args...))
}

func warnf(format string, args ...any) {
	log.Warn(fmt.Sprintf(format, args...))
}
