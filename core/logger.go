package core

// Actor identifies the authenticated evaluator on whose behalf an action ran.
// Loggers may use it to tag error reports.
type Actor struct {
	ID       string
	Username string
	Email    string
}

// Logger is any service that can log messages at the usual levels.
// Extra args are forwarded as structured context to the underlying sink.
type Logger interface {
	Enable(enabled bool)
	Debug(msg string, args ...interface{})
	Info(msg string, args ...interface{})
	Warn(msg string, args ...interface{})
	Error(msg string, args ...interface{})
	Fatal(msg string, args ...interface{})
}
