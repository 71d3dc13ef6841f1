package cli

import (
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// LogLevel maps the -v count and -q flag to a zap level. Quiet wins.
func LogLevel(verbose int, quiet bool) zapcore.Level {
	switch {
	case quiet:
		return zapcore.ErrorLevel
	case verbose >= 2:
		return zapcore.DebugLevel
	case verbose == 1:
		return zapcore.InfoLevel
	default:
		return zapcore.WarnLevel
	}
}

// NewLogger builds the CLI logger. Output goes to stderr so that stdout
// carries only SQL or documents.
func NewLogger(verbose int, quiet bool) (*zap.Logger, error) {
	cfg := zap.NewDevelopmentConfig()
	cfg.Level = zap.NewAtomicLevelAt(LogLevel(verbose, quiet))
	cfg.OutputPaths = []string{"stderr"}
	cfg.ErrorOutputPaths = []string{"stderr"}
	cfg.DisableStacktrace = true
	if verbose < 2 {
		cfg.DisableCaller = true
	}
	return cfg.Build()
}
