// Package ports declares the interfaces between the core packages and their adapters.
package ports

// LogLevel orders log output from most to least verbose.
type LogLevel int

const (
	LevelDebug LogLevel = iota // stage and adapter internals
	LevelInfo                  // one line per video, platform or run
	LevelWarn                  // a video or upload was skipped, the run goes on
	LevelError                 // the command is about to exit non-zero
	LevelQuiet
)

func (l LogLevel) String() string {
	switch l {
	case LevelDebug:
		return "debug"
	case LevelInfo:
		return "info"
	case LevelWarn:
		return "warn"
	case LevelError:
		return "error"
	case LevelQuiet:
		return "quiet"
	default:
		return "unknown"
	}
}

// ParseLogLevel maps a config or flag value to a level. Unknown values
// fall back to info.
func ParseLogLevel(s string) LogLevel {
	switch s {
	case "debug":
		return LevelDebug
	case "info":
		return LevelInfo
	case "warn":
		return LevelWarn
	case "error":
		return LevelError
	case "quiet":
		return LevelQuiet
	default:
		return LevelInfo
	}
}

// Logger writes printf-style messages. The format string doubles as the
// message key looked up in the translation lexicon, so it must be a
// constant.
type Logger interface {
	Debug(msg string, args ...interface{})
	Info(msg string, args ...interface{})
	Warn(msg string, args ...interface{})
	Error(msg string, args ...interface{})

	// WithComponent tags every message with component, e.g. "encoder" or
	// "publisher/youtube".
	WithComponent(component string) Logger
}
