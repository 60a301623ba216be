package core

// Logger interface for renderer logging
type Logger interface {
	Printf(format string, args ...interface{})
}
