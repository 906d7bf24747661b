// Package logger defines the logging contract shared by the ingest
// listener, the fleet store and the outbound adapters.
package logger

// Logger is handed to each pipeline component, already tagged with the
// component name. Debugw carries per-frame fields (peer, sequence, sizes)
// that should stay queryable rather than be formatted into the message.
type Logger interface {
	Debugf(format string, args ...any)
	Debugw(msg string, fields map[string]any)
	Infof(format string, args ...any)
	Warnf(format string, args ...any)
	Errorf(format string, args ...any)
}
