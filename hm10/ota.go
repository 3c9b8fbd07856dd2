package hm10

import (
	"context"
	"time"
)

// SendOTA writes p unmodified to a connected peer. The input is not flushed
// first and p is handed to the transport as is; splitting a payload into
// packets the module can relay is up to the caller.
func (d *Device) SendOTA(ctx context.Context, p []byte, timeout time.Duration) error {
	return d.do(ctx, "send_ota", func(tx *txn) error {
		if err := tx.send(p, timeout); err != nil {
			return err
		}
		tx.config.metrics.addOTA("tx", len(p))
		return nil
	})
}

// ReceiveOTA fills p with exactly len(p) bytes from a connected peer.
func (d *Device) ReceiveOTA(ctx context.Context, p []byte, timeout time.Duration) error {
	return d.do(ctx, "receive_ota", func(tx *txn) error {
		if err := tx.ctx.Err(); err != nil {
			return err
		}
		if err := tx.transport.Receive(p, timeout); err != nil {
			return err
		}
		tx.tracef("rx %q", p)
		tx.config.metrics.addOTA("rx", len(p))
		return nil
	})
}
