package logger

// NoopLogger discards all log output. Used in tests.
type NoopLogger struct{}

// NewNoop returns a logger that discards everything.
func NewNoop() Interface {
	return &NoopLogger{}
}

// Debug does nothing.
func (n *NoopLogger) Debug(msg string, fields ...any) {}

// Info does nothing.
func (n *NoopLogger) Info(msg string, fields ...any) {}

// Warn does nothing.
func (n *NoopLogger) Warn(msg string, fields ...any) {}

// Error does nothing.
func (n *NoopLogger) Error(msg string, fields ...any) {}

// Fatal does nothing.
func (n *NoopLogger) Fatal(msg string, fields ...any) {}

// With returns the same noop logger.
func (n *NoopLogger) With(fields ...any) Interface { return n }

// WithComponent returns the same noop logger.
func (n *NoopLogger) WithComponent(component string) Interface { return n }

// WithError returns the same noop logger.
func (n *NoopLogger) WithError(err error) Interface { return n }
