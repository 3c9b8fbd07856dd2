package hm10

import (
	"context"

	"i4.energy/across/hm10/at"
)

// SetName changes the advertised device name. Names longer than 12 bytes
// are rejected before anything is sent.
func (d *Device) SetName(ctx context.Context, name string) error {
	return d.do(ctx, "set_name", func(tx *txn) error {
		if err := validName(name); err != nil {
			return err
		}
		arg := []byte(name)
		resp, err := tx.exchange(at.Set(at.CmdName, arg...), len(at.OKSet)+len(arg))
		if err != nil {
			return err
		}
		return tx.expect(at.OKSet, at.SetResponse(arg...), resp)
	})
}

// Name reads the advertised device name.
//
// The module answers OK+NAME: followed by the name and a NUL byte. The name
// is read one byte at a time until the terminator; a thirteenth non NUL byte
// fails with ErrNameTooLong.
func (d *Device) Name(ctx context.Context) (string, error) {
	var name string
	err := d.do(ctx, "get_name", func(tx *txn) error {
		resp, err := tx.exchange(at.Get(at.CmdName), len(at.OKName))
		if err != nil {
			return err
		}
		if err := tx.expect(at.OKName, []byte(at.OKName), resp); err != nil {
			return err
		}

		buf := make([]byte, 0, at.MaxNameSize)
		for {
			b, err := tx.receive(1, tx.config.timeout)
			if err != nil {
				return err
			}
			if b[0] == at.NameTerminator {
				break
			}
			buf = append(buf, b[0])
			if len(buf) > at.MaxNameSize {
				return ErrNameTooLong
			}
		}
		name = string(buf)
		return nil
	})
	return name, err
}
