package core

// Logger logs messages at the usual levels and may report errors to an
// external error tracker. Fatal must exit the application after logging.
type Logger interface {
	Debug(msg string, args ...interface{})
	Info(msg string, args ...interface{})
	Warn(msg string, args ...interface{})
	Error(msg string, args ...interface{})
	Fatal(msg string, args ...interface{})
}
