package hm10

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"go.bug.st/serial"
)

// DefaultBaudRate is the factory UART speed of the HM-10.
const DefaultBaudRate = 9600

// SerialDialer opens an HM-10 module attached to a local serial port.
type SerialDialer struct {
	// PortName is the device path, e.g. "/dev/ttyUSB0" or "COM3".
	PortName string
	// BaudRate is used when Mode is nil. Zero means DefaultBaudRate.
	BaudRate int
	// Mode overrides the complete port configuration.
	Mode *serial.Mode
}

// Dial opens the port. The context is only checked before opening since the
// open call itself cannot be interrupted.
func (d SerialDialer) Dial(ctx context.Context) (Transport, error) {
	if d.PortName == "" {
		return nil, errors.New("hm10: serial port name is required")
	}
	if ctx == nil {
		return nil, errors.New("hm10: context is nil")
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	mode := d.Mode
	if mode == nil {
		baud := d.BaudRate
		if baud == 0 {
			baud = DefaultBaudRate
		}
		mode = &serial.Mode{
			BaudRate: baud,
			DataBits: 8,
			Parity:   serial.NoParity,
			StopBits: serial.OneStopBit,
		}
	}

	port, err := serial.Open(d.PortName, mode)
	if err != nil {
		return nil, fmt.Errorf("hm10: open %s: %w", d.PortName, err)
	}
	return &serialTransport{port: port}, nil
}

// serialTransport adapts a go.bug.st/serial port to the Transport contract.
//
// Writes cannot be interrupted, so a write that outlives its timeout is kept
// as pending. At most one write is in flight; the next Send or Receive waits
// for it before touching the line.
type serialTransport struct {
	port serial.Port

	mu      sync.Mutex
	pending chan error
}

// awaitPending waits up to timeout for a write left over from an earlier
// Send.
func (s *serialTransport) awaitPending(timeout time.Duration) error {
	if s.pending == nil {
		return nil
	}
	timer := time.NewTimer(timeout)
	defer timer.Stop()
	select {
	case err := <-s.pending:
		s.pending = nil
		if err != nil {
			return portError(err)
		}
		return nil
	case <-timer.C:
		return fmt.Errorf("%w: earlier write still in progress", ErrHardwareFault)
	}
}

func (s *serialTransport) Send(p []byte, timeout time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.awaitPending(timeout); err != nil {
		return err
	}

	done := make(chan error, 1)
	go func() {
		for written := 0; written < len(p); {
			n, err := s.port.Write(p[written:])
			if err != nil {
				done <- err
				return
			}
			written += n
		}
		done <- nil
	}()

	timer := time.NewTimer(timeout)
	defer timer.Stop()
	select {
	case err := <-done:
		if err != nil {
			return portError(err)
		}
		return nil
	case <-timer.C:
		s.pending = done
		// part of the frame may already be on the line
		return fmt.Errorf("%w: write of %d bytes did not complete", ErrHardwareFault, len(p))
	}
}

func (s *serialTransport) Receive(p []byte, timeout time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.awaitPending(timeout); err != nil {
		return err
	}

	deadline := time.Now().Add(timeout)
	for got := 0; got < len(p); {
		remaining := time.Until(deadline)
		if remaining <= 0 {
			return fmt.Errorf("%w: read %d of %d bytes", ErrTimeout, got, len(p))
		}
		if err := s.port.SetReadTimeout(remaining); err != nil {
			return portError(err)
		}
		n, err := s.port.Read(p[got:])
		if err != nil {
			return portError(err)
		}
		if n == 0 {
			// go.bug.st/serial reports an expired read timeout as a zero
			// length read.
			return fmt.Errorf("%w: read %d of %d bytes", ErrTimeout, got, len(p))
		}
		got += n
	}
	return nil
}

func (s *serialTransport) Close() error {
	return s.port.Close()
}

// portError classifies a serial library error into the transport taxonomy.
func portError(err error) error {
	var code serial.PortErrorCode
	var pe *serial.PortError
	var pv serial.PortError
	switch {
	case errors.As(err, &pe):
		code = pe.Code()
	case errors.As(err, &pv):
		code = pv.Code()
	default:
		return fmt.Errorf("%w: %w", ErrHardwareFault, err)
	}
	if code == serial.PortBusy {
		return fmt.Errorf("%w: %w", ErrBusy, err)
	}
	return fmt.Errorf("%w: %w", ErrHardwareFault, err)
}
