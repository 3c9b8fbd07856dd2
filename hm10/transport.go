package hm10

//go:generate go tool mockgen -destination=mock_transport.go -package=hm10 . Transport,Dialer,Clock

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// Transport represents an established, half-duplex byte stream to an HM-10
// module.
//
// A Transport is assumed to be already connected and ready for use. It does
// not interpret the bytes it moves. Typical implementations are serial
// ports, TCP bridges to a serial port, or the in-memory Simulator used for
// testing.
type Transport interface {
	// Send writes all of p within timeout.
	Send(p []byte, timeout time.Duration) error
	// Receive fills p completely within timeout. It never returns a partial
	// read as success: on failure it returns ErrTimeout, ErrBusy or
	// ErrHardwareFault (possibly wrapped).
	Receive(p []byte, timeout time.Duration) error
	// Close releases the underlying port.
	Close() error
}

// Dialer opens a Transport to an HM-10 module.
//
// Dialer abstracts how the connection is created (for example, via a serial
// port or a test double) and is intended to be used during Device
// construction only. Once a Transport is obtained, the Dialer is no longer
// needed.
type Dialer interface {
	// Dial is responsible for creating and returning a connected Transport.
	// It should respect cancellation and deadlines provided by the context.
	Dial(ctx context.Context) (Transport, error)
}

// Clock provides the settle delay after Reset and Renew.
type Clock interface {
	Sleep(d time.Duration)
}

type systemClock struct{}

func (systemClock) Sleep(d time.Duration) { time.Sleep(d) }

// drainInput discards stale input one byte at a time until a receive times
// out, which means the line has been quiet for one full timeout window. The
// loop runs at most limit times and reports how many bytes it discarded.
func drainInput(t Transport, timeout time.Duration, limit int) (int, error) {
	var b [1]byte
	discarded := 0
	for range limit {
		err := t.Receive(b[:], timeout)
		switch {
		case err == nil:
			discarded++
		case errors.Is(err, ErrBusy):
		case errors.Is(err, ErrTimeout):
			return discarded, nil
		default:
			return discarded, fmt.Errorf("flush input: %w", err)
		}
	}
	return discarded, fmt.Errorf("flush input: %w after %d reads", ErrInputNotQuiet, limit)
}
