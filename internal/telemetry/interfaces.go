package telemetry

import "log"

// Logger is the operational text logger of the hub, scheduler and sessions.
// Gameplay events go through the logging router instead.
type Logger interface {
	Printf(format string, args ...any)
}

// LoggerFunc adapts functions into the Logger interface. A nil LoggerFunc
// discards output.
type LoggerFunc func(format string, args ...any)

func (f LoggerFunc) Printf(format string, args ...any) {
	if f == nil {
		return
	}
	f(format, args...)
}

// WrapLogger adapts a standard library logger. A nil logger discards output.
func WrapLogger(logger *log.Logger) Logger {
	return &loggerAdapter{logger: logger}
}

type loggerAdapter struct {
	logger *log.Logger
}

func (l *loggerAdapter) Printf(format string, args ...any) {
	if l == nil || l.logger == nil {
		return
	}
	l.logger.Printf(format, args...)
}

// WithComponent tags every line with "[component] " so hub, sim and ws
// output can be told apart in one stream. A nil logger stays silent.
func WithComponent(logger Logger, component string) Logger {
	if logger == nil {
		return LoggerFunc(nil)
	}
	prefix := "[" + component + "] "
	return LoggerFunc(func(format string, args ...any) {
		logger.Printf(prefix+format, args...)
	})
}

// Metrics is the write side of Counters, for components that only count.
type Metrics interface {
	Add(key string, delta uint64)
	Store(key string, value uint64)
}

var _ Metrics = (*Counters)(nil)
