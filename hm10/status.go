package hm10

import "errors"

// Status is the outcome of an AT command transaction.
type Status uint8

const (
	// StatusOK means the full expected response, including any variable
	// part, was received and validated.
	StatusOK Status = iota
	// StatusNoResponse means the transport was busy or timed out while
	// waiting for expected bytes.
	StatusNoResponse
	// StatusError means a hardware fault, a byte mismatch or an out of
	// domain value.
	StatusError
)

func (s Status) String() string {
	switch s {
	case StatusOK:
		return "ok"
	case StatusNoResponse:
		return "no_response"
	case StatusError:
		return "error"
	default:
		return "unknown"
	}
}

// StatusOf maps an error returned by a Device operation to its Status.
func StatusOf(err error) Status {
	switch {
	case err == nil:
		return StatusOK
	case errors.Is(err, ErrBusy), errors.Is(err, ErrTimeout):
		return StatusNoResponse
	default:
		return StatusError
	}
}

// ConnectionStatus is the outcome of Disconnect. Finding no connection to
// drop is a successful outcome, not a failure.
type ConnectionStatus uint8

const (
	// ConnectionUnknown means the probe did not complete, so the link state
	// could not be determined.
	ConnectionUnknown ConnectionStatus = iota
	// NoConnection means the module answered but was not connected.
	NoConnection
	// ConnectionLost means an ongoing connection was terminated.
	ConnectionLost
)

func (s ConnectionStatus) String() string {
	switch s {
	case NoConnection:
		return "no_connection"
	case ConnectionLost:
		return "connection_lost"
	default:
		return "unknown"
	}
}

// MarshalText lets ConnectionStatus travel as its name in JSON and YAML.
func (s ConnectionStatus) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}
