package atsp

import "go.uber.org/zap"

// NewLogger returns the logger of the command line tools: a console logger,
// or a JSON logger appending to path when it is set.
func NewLogger(path string, debug bool) (*zap.Logger, error) {
	cfg := zap.NewDevelopmentConfig()
	if !debug {
		cfg.Level = zap.NewAtomicLevelAt(zap.InfoLevel)
	}
	if path != "" {
		cfg.Encoding = "json"
		cfg.OutputPaths = []string{path}
		cfg.ErrorOutputPaths = []string{path, "stderr"}
	}
	return cfg.Build()
}
