// Package logger builds the structured loggers passed into every subsystem
// of the engine: a single *zap.SugaredLogger threaded through each
// component's Config struct, using Infow/Errorw-style structured fields
// rather than formatted strings.
package logger

import (
	"go.uber.org/zap"
)

// New builds a production zap logger scoped to the given subsystem name
// (e.g. "engine", "consumer", "blobreader") and returns it as a
// *zap.SugaredLogger, matching every Config struct in this module.
func New(subsystem string) *zap.SugaredLogger {
	base, err := zap.NewProduction()
	if err != nil {
		// zap.NewProduction only fails if the default config cannot build
		// its sink, which does not happen with the built-in encoder/sink;
		// fall back to a no-op logger rather than panic on a logging path.
		base = zap.NewNop()
	}
	return base.Sugar().With("subsystem", subsystem)
}

// NewNop returns a logger that discards all output, used by tests and by
// callers that have not configured logging explicitly.
func NewNop() *zap.SugaredLogger {
	return zap.NewNop().Sugar()
}
