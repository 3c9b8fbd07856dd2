package hm10

import (
	"errors"
	"fmt"
)

var (
	// ErrBusy is returned by a Transport when the port is held by another
	// operation and the transfer could not start.
	ErrBusy = errors.New("transport busy")

	// ErrTimeout is returned by a Transport when the requested number of
	// bytes could not be transferred within the timeout.
	//
	// The protocol cannot tell a slow device from a silent one, so ErrBusy
	// and ErrTimeout both map to StatusNoResponse.
	ErrTimeout = errors.New("transport timeout")

	// ErrHardwareFault is returned by a Transport when the underlying port
	// failed. It is fatal to the operation in progress.
	ErrHardwareFault = errors.New("transport hardware fault")

	// ErrNoDialer is returned when a Device is constructed without a Dialer.
	//
	// This indicates a configuration error. A Dialer is required in order to
	// establish a connection to the module.
	ErrNoDialer = errors.New("no dialer configured")

	// ErrNotInitialized is returned when an operation is attempted on a
	// Device that has no bound transport.
	//
	// This can occur if the Dialer returned a nil Transport or if the Device
	// was not created via New or Open.
	ErrNotInitialized = errors.New("device not initialized")

	// ErrAlreadyClosed is returned when an operation or Close is called on a
	// Device that has already been closed.
	ErrAlreadyClosed = errors.New("device already closed")

	// ErrMismatch is returned when the bytes received from the module do not
	// match the expected response template. Use errors.As with
	// *MismatchError to get the offending offset.
	ErrMismatch = errors.New("response mismatch")

	// ErrInvalidValue is returned when a value supplied by the caller or
	// reported by the module lies outside its domain (enum range, pin
	// digits, address characters).
	ErrInvalidValue = errors.New("invalid value")

	// ErrNameTooLong is returned when a name exceeds 12 bytes, either given
	// to SetName or reported by the module without a terminator.
	ErrNameTooLong = errors.New("name too long")

	// ErrConnectFailed is returned by Connect when the module accepted the
	// command but did not report an established connection.
	//
	// Typical causes are mismatched pin settings between both ends, the
	// remote device being out of range, or radio interference.
	ErrConnectFailed = errors.New("connection not established")

	// ErrInputNotQuiet is returned when stale input keeps arriving after the
	// flush limit has been reached, so no command could be issued.
	ErrInputNotQuiet = errors.New("input did not go quiet")

	// ErrNilContext is returned when an operation is called with a nil
	// context.
	ErrNilContext = errors.New("context is nil")
)

// MismatchError describes the first byte of a response that differs from
// the expected template.
type MismatchError struct {
	// Frame names the template being validated, e.g. "OK+RESET".
	Frame  string
	Offset int
	Want   byte
	Got    byte
}

func (e *MismatchError) Error() string {
	return fmt.Sprintf("%s: %q at offset %d, expected %q", ErrMismatch, e.Got, e.Offset, e.Want)
}

func (e *MismatchError) Unwrap() error {
	return ErrMismatch
}
