// Package logger is the structured logging surface shared by the pipeline,
// the registry and the command line. Every entry carries the emitting
// component and a flat field map.
package logger

// Logger is satisfied by ZerologAdapter. Pipeline stages take it rather than
// a concrete type so tests can pass NewNop.
type Logger interface {
	Debug(component, message string, fields map[string]interface{})
	Info(component, message string, fields map[string]interface{})
	// Warning reports a recoverable problem: a batch file that failed while
	// the rest continue, or an output format overriding the file extension.
	Warning(component, message string, fields map[string]interface{})
	// Error logs err under a fixed "operation failed" message; callers put
	// the operation in fields.
	Error(component string, err error, fields map[string]interface{})
}

var _ Logger = (*ZerologAdapter)(nil)
