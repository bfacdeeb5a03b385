package h264encoder

// State is the lifecycle position of a Session.
type State int

const (
	StateUnopened State = iota
	StateConfigured
	StateHeaderWritten
	StateEncoding
	StateFlushed
	StateFinalized
	StateAbandoned
)

func (s State) String() string {
	switch s {
	case StateUnopened:
		return "unopened"
	case StateConfigured:
		return "configured"
	case StateHeaderWritten:
		return "header-written"
	case StateEncoding:
		return "encoding"
	case StateFlushed:
		return "flushed"
	case StateFinalized:
		return "finalized"
	case StateAbandoned:
		return "abandoned"
	default:
		return "unknown"
	}
}
