package hm10

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
	"i4.energy/across/hm10/at"
)

// Device drives one HM-10 module over a bound Transport.
//
// Every operation is a blocking request/response transaction on the shared
// serial line. The protocol carries no transaction identifiers, so a Device
// serializes its operations; separate Devices over separate transports are
// independent.
type Device struct {
	// mu is held for the whole duration of a transaction
	mu sync.Mutex
	// transport provides the physical connection to the module
	transport Transport
	// config contains timeouts, logging and metrics settings
	config Config
	// closed indicates if the device has been shut down
	closed bool
}

// New creates a Device with the given configuration. It opens the transport
// through the configured Dialer and, if the configuration asks for it,
// checks that the module answers a test command.
//
// Returns an error if the transport cannot be opened or the probe fails.
func New(ctx context.Context, config Config) (*Device, error) {
	if err := config.validate(); err != nil {
		return nil, err
	}
	config.setDefaults()
	if ctx == nil {
		return nil, ErrNilContext
	}

	transport, err := config.dialer.Dial(ctx)
	if err != nil {
		return nil, err
	}
	if transport == nil {
		return nil, ErrNotInitialized
	}

	d := Open(transport, config)
	if config.probe {
		if err := d.Test(ctx); err != nil {
			transport.Close()
			return nil, fmt.Errorf("module not responding: %w", err)
		}
	}
	return d, nil
}

// Open binds an already established Transport. The Dialer in config, if
// any, is ignored.
func Open(transport Transport, config Config) *Device {
	config.setDefaults()
	return &Device{
		transport: transport,
		config:    config,
	}
}

// Close releases the transport. After Close every operation returns
// ErrAlreadyClosed.
func (d *Device) Close() error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.closed {
		return ErrAlreadyClosed
	}
	d.closed = true

	if d.transport != nil {
		return d.transport.Close()
	}
	return nil
}

// txn carries the per call state of one transaction. Buffers are allocated
// per call, nothing survives between transactions.
type txn struct {
	ctx       context.Context
	transport Transport
	config    *Config
	log       logrus.FieldLogger
}

// do runs fn as a single transaction under the device lock, then logs and
// records its outcome.
func (d *Device) do(ctx context.Context, op string, fn func(tx *txn) error) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.closed {
		return ErrAlreadyClosed
	}
	if d.transport == nil {
		return ErrNotInitialized
	}
	if ctx == nil {
		return fmt.Errorf("%s: %w", op, ErrNilContext)
	}
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	log := d.config.logger.WithField("op", op)
	tx := &txn{
		ctx:       ctx,
		transport: d.transport,
		config:    &d.config,
		log:       log,
	}

	start := time.Now()
	err := fn(tx)
	elapsed := time.Since(start)

	status := StatusOf(err)
	d.config.metrics.observe(op, status, elapsed)
	log = log.WithFields(logrus.Fields{"status": status.String(), "elapsed": elapsed})
	if err != nil {
		log.WithError(err).Warn("hm10 transaction failed")
		return fmt.Errorf("%s: %w", op, err)
	}
	log.Debug("hm10 transaction completed")
	return nil
}

func (tx *txn) tracef(format string, args ...any) {
	if tx.config.trace {
		tx.log.Debugf(format, args...)
	}
}

// flush discards whatever the module sent before this transaction.
func (tx *txn) flush() error {
	n, err := drainInput(tx.transport, tx.config.timeout, tx.config.flushLimit)
	if n > 0 {
		tx.tracef("discarded %d stale bytes", n)
	}
	return err
}

func (tx *txn) send(frame []byte, timeout time.Duration) error {
	if err := tx.ctx.Err(); err != nil {
		return err
	}
	tx.tracef("tx %q", frame)
	return tx.transport.Send(frame, timeout)
}

func (tx *txn) receive(n int, timeout time.Duration) ([]byte, error) {
	if err := tx.ctx.Err(); err != nil {
		return nil, err
	}
	buf := make([]byte, n)
	if err := tx.transport.Receive(buf, timeout); err != nil {
		tx.tracef("rx %d bytes: %v", n, err)
		return nil, err
	}
	tx.tracef("rx %q", buf)
	return buf, nil
}

// exchange flushes stale input, sends cmd and reads back a response of
// exactly size bytes.
func (tx *txn) exchange(cmd []byte, size int) ([]byte, error) {
	if err := tx.flush(); err != nil {
		return nil, err
	}
	if err := tx.send(cmd, tx.config.timeout); err != nil {
		return nil, err
	}
	return tx.receive(size, tx.config.timeout)
}

// expect compares a received frame byte for byte with its template.
func (tx *txn) expect(frame string, want, got []byte) error {
	i := at.Diff(want, got)
	if i < 0 {
		return nil
	}
	e := &MismatchError{Frame: frame, Offset: i}
	if i < len(want) {
		e.Want = want[i]
	}
	if i < len(got) {
		e.Got = got[i]
	}
	return e
}

// settle blocks until the module has finished persisting a reset or renew.
func (tx *txn) settle() {
	tx.tracef("settling for %s", tx.config.settleDelay)
	tx.config.clock.Sleep(tx.config.settleDelay)
}

// Test sends the bare AT command and expects OK. On a module that is
// connected as central the same command drops the connection; use
// Disconnect to tell the two outcomes apart.
func (d *Device) Test(ctx context.Context) error {
	return d.do(ctx, "test", func(tx *txn) error {
		resp, err := tx.exchange([]byte(at.CmdTest), len(at.OK))
		if err != nil {
			return err
		}
		return tx.expect(at.OK, []byte(at.OK), resp)
	})
}

// Reset restarts the module and waits for the settle delay before
// returning, so the next command is safe to send immediately.
func (d *Device) Reset(ctx context.Context) error {
	return d.do(ctx, "reset", func(tx *txn) error {
		return fixedSettling(tx, at.CmdReset, at.OKReset)
	})
}

// Renew restores the factory settings and waits for the settle delay
// before returning.
func (d *Device) Renew(ctx context.Context) error {
	return d.do(ctx, "renew", func(tx *txn) error {
		return fixedSettling(tx, at.CmdRenew, at.OKRenew)
	})
}

func fixedSettling(tx *txn, cmd, response string) error {
	resp, err := tx.exchange([]byte(cmd), len(response))
	if err != nil {
		return err
	}
	if err := tx.expect(response, []byte(response), resp); err != nil {
		return err
	}
	tx.settle()
	return nil
}
