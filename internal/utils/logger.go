package utils

import "go.uber.org/zap"

// NewLogger builds the process logger: human-readable in development,
// sampled JSON everywhere else. A logger we cannot construct is fatal, there
// is nothing sensible to fall back to.
func NewLogger(env string) *zap.Logger {
	var cfg zap.Config
	if env == "development" {
		cfg = zap.NewDevelopmentConfig()
	} else {
		cfg = zap.NewProductionConfig()
	}
	log, err := cfg.Build()
	if err != nil {
		panic("logger init: " + err.Error())
	}
	return log
}
