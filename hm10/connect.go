package hm10

import (
	"context"
	"fmt"

	"i4.energy/across/hm10/at"
)

// Connect asks a module in the central role to connect to the peer at addr.
//
// The exchange has two stages. The module first acknowledges the command
// with OK+CO<t><t>A and then, once the link is up, reports OK+CONN. The
// second stage waits up to the configured connect timeout. If it times out
// or reports anything else the error wraps ErrConnectFailed and classifies
// as StatusError, never as StatusNoResponse.
func (d *Device) Connect(ctx context.Context, t AddressType, addr Address) error {
	return d.do(ctx, "connect", func(tx *txn) error {
		code, ok := encodeAddressType(t)
		if !ok {
			return invalid(t)
		}
		if !addr.Valid() {
			return fmt.Errorf("%w: address %q", ErrInvalidValue, string(addr))
		}

		resp, err := tx.exchange(at.Connect(code, []byte(addr)), at.ConnectResponseSize)
		if err != nil {
			return err
		}
		if err := tx.expect(at.OKConnect, at.ConnectResponse(code), resp); err != nil {
			return err
		}

		tx.tracef("waiting up to %s for link", tx.config.connectTimeout)
		resp, err = tx.receive(at.ConnResponseSize, tx.config.connectTimeout)
		if err != nil {
			return fmt.Errorf("%w: %v", ErrConnectFailed, err)
		}
		if err := tx.expect(at.OKConn, []byte(at.OKConn), resp); err != nil {
			return fmt.Errorf("%w: %w", ErrConnectFailed, err)
		}
		return nil
	})
}

// Disconnect drops the current link, if there is one.
//
// It sends the test command, which the module answers with OK in any case.
// A connected module follows up with +LOST. When nothing follows within
// the timeout the module was not connected and NoConnection is returned
// with a nil error.
func (d *Device) Disconnect(ctx context.Context) (ConnectionStatus, error) {
	status := ConnectionUnknown
	err := d.do(ctx, "disconnect", func(tx *txn) error {
		resp, err := tx.exchange([]byte(at.CmdTest), len(at.OK))
		if err != nil {
			return err
		}
		if err := tx.expect(at.OK, []byte(at.OK), resp); err != nil {
			return err
		}

		rest, err := tx.receive(len(at.LostSuffix), tx.config.timeout)
		if err != nil {
			if StatusOf(err) == StatusNoResponse {
				status = NoConnection
				return nil
			}
			return err
		}
		if err := tx.expect(at.OKLost, []byte(at.OKLost), append(resp, rest...)); err != nil {
			return err
		}
		status = ConnectionLost
		return nil
	})
	return status, err
}
