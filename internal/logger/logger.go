package logger

import "go.uber.org/zap"

// Log is the process-wide sugared logger. It defaults to a no-op so library
// code and tests can log without initialization; main replaces it via Init.
var Log = zap.NewNop().Sugar()

// Init installs the production logger.
func Init() {
	l, err := zap.NewProduction()
	if err != nil {
		panic("failed to initialize zap logger: " + err.Error())
	}
	Log = l.Sugar()
}

// InitDevelopment installs a human-readable development logger.
func InitDevelopment() {
	l, err := zap.NewDevelopment()
	if err != nil {
		panic("failed to initialize zap logger: " + err.Error())
	}
	Log = l.Sugar()
}
