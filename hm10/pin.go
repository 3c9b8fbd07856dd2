package hm10

import (
	"context"
	"fmt"

	"i4.energy/across/hm10/at"
)

// SetPin stores a new six digit pairing pin.
func (d *Device) SetPin(ctx context.Context, pin string) error {
	return d.do(ctx, "set_pin", func(tx *txn) error {
		if err := validPin(pin); err != nil {
			return err
		}
		arg := []byte(pin)
		resp, err := tx.exchange(at.Set(at.CmdPass, arg...), at.PinResponseSize)
		if err != nil {
			return err
		}
		return tx.expect(at.OKSet, at.SetResponse(arg...), resp)
	})
}

// Pin reads the stored pairing pin.
func (d *Device) Pin(ctx context.Context) (string, error) {
	var pin string
	err := d.do(ctx, "get_pin", func(tx *txn) error {
		resp, err := tx.exchange(at.Get(at.CmdPass), at.PinResponseSize)
		if err != nil {
			return err
		}
		n := len(at.OKGet)
		if err := tx.expect(at.OKGet, []byte(at.OKGet), resp[:n]); err != nil {
			return err
		}
		if err := validPin(resp[n:]); err != nil {
			return fmt.Errorf("module reported %q: %w", resp[n:], err)
		}
		pin = string(resp[n:])
		return nil
	})
	return pin, err
}
