package port

// Logger is the structured logging surface handed to services and adapters.
type Logger interface {
	Info(msg string, args ...any)
	Debug(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
	// With returns a logger that prepends args to every entry.
	With(args ...any) Logger
}
