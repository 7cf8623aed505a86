package protocol

// Result is the outcome of a channel operation. Every value except OK is a
// transient failure.
type Result int

const (
	OK Result = iota
	SendTimeout
	SendRejected
	NotConnected
	AppNotRunning
	InvalidArgs
	Busy
	BufferOverflow
	AlreadyReleased
	CallbackAlreadyRegistered
	CallbackNotRegistered
	OutOfMemory
	Closed
	InternalError
)

// String returns the short code shown in status text.
func (r Result) String() string {
	switch r {
	case OK:
		return "OK"
	case SendTimeout:
		return "TIMEOUT"
	case SendRejected:
		return "REJECTED"
	case NotConnected:
		return "NOT_CONNECTED"
	case AppNotRunning:
		return "APP_NOT_RUNNING"
	case InvalidArgs:
		return "INVALID_ARGS"
	case Busy:
		return "BUSY"
	case BufferOverflow:
		return "BUF_OVERFLOW"
	case AlreadyReleased:
		return "ALREADY_RELEASED"
	case CallbackAlreadyRegistered:
		return "CB_ALREADY"
	case CallbackNotRegistered:
		return "CB_NOT_REG"
	case OutOfMemory:
		return "OOM"
	case Closed:
		return "CLOSED"
	case InternalError:
		return "INTERNAL"
	default:
		return "UNKNOWN"
	}
}
