package core

// Logger is any leveled logger.
// Implementations may inspect args for known types (errors, actors) and
// forward them to an error-tracking backend.
type Logger interface {
	Enable(enabled bool)
	Debug(msg string, args ...interface{})
	Info(msg string, args ...interface{})
	Warn(msg string, args ...interface{})
	Error(msg string, args ...interface{})
	Fatal(msg string, args ...interface{})
}
