package hm10

import (
	"context"
	"fmt"

	"i4.energy/across/hm10/at"
)

// setSetting writes one enum byte and requires the module to echo it back
// in an OK+Set: response.
func setSetting(tx *txn, cmd string, code byte) error {
	resp, err := tx.exchange(at.Set(cmd, code), at.SetResponseSize)
	if err != nil {
		return err
	}
	return tx.expect(at.OKSet, at.SetResponse(code), resp)
}

// getSetting queries one enum byte and decodes it. Values outside the
// enum's domain are rejected rather than coerced.
func getSetting[T any](tx *txn, cmd string, decode func(byte) (T, bool)) (T, error) {
	var zero T
	resp, err := tx.exchange(at.Get(cmd), at.GetResponseSize)
	if err != nil {
		return zero, err
	}
	n := len(at.OKGet)
	if err := tx.expect(at.OKGet, []byte(at.OKGet), resp[:n]); err != nil {
		return zero, err
	}
	v, ok := decode(resp[n])
	if !ok {
		return zero, fmt.Errorf("%w: module reported %q for %s", ErrInvalidValue, resp[n], cmd)
	}
	return v, nil
}

func invalid(v fmt.Stringer) error {
	return fmt.Errorf("%w: %s", ErrInvalidValue, v)
}

// SetRole switches the module between peripheral and central.
func (d *Device) SetRole(ctx context.Context, r Role) error {
	return d.do(ctx, "set_role", func(tx *txn) error {
		code, ok := encodeRole(r)
		if !ok {
			return invalid(r)
		}
		return setSetting(tx, at.CmdRole, code)
	})
}

// Role reads the current Bluetooth role.
func (d *Device) Role(ctx context.Context) (Role, error) {
	var r Role
	err := d.do(ctx, "get_role", func(tx *txn) (err error) {
		r, err = getSetting(tx, at.CmdRole, decodeRole)
		return err
	})
	return r, err
}

// SetPinCodeMode enables or disables the pin prompt while bonding.
func (d *Device) SetPinCodeMode(ctx context.Context, m PinCodeMode) error {
	return d.do(ctx, "set_pin_code_mode", func(tx *txn) error {
		code, ok := encodePinCodeMode(m)
		if !ok {
			return invalid(m)
		}
		return setSetting(tx, at.CmdType, code)
	})
}

func (d *Device) PinCodeMode(ctx context.Context) (PinCodeMode, error) {
	var m PinCodeMode
	err := d.do(ctx, "get_pin_code_mode", func(tx *txn) (err error) {
		m, err = getSetting(tx, at.CmdType, decodePinCodeMode)
		return err
	})
	return m, err
}

// SetWorkMode selects how much control the remote side gets once
// connected.
func (d *Device) SetWorkMode(ctx context.Context, m WorkMode) error {
	return d.do(ctx, "set_work_mode", func(tx *txn) error {
		code, ok := encodeWorkMode(m)
		if !ok {
			return invalid(m)
		}
		return setSetting(tx, at.CmdMode, code)
	})
}

func (d *Device) WorkMode(ctx context.Context) (WorkMode, error) {
	var m WorkMode
	err := d.do(ctx, "get_work_mode", func(tx *txn) (err error) {
		m, err = getSetting(tx, at.CmdMode, decodeWorkMode)
		return err
	})
	return m, err
}

// SetWorkType selects the power-on behaviour.
func (d *Device) SetWorkType(ctx context.Context, t WorkType) error {
	return d.do(ctx, "set_work_type", func(tx *txn) error {
		code, ok := encodeWorkType(t)
		if !ok {
			return invalid(t)
		}
		return setSetting(tx, at.CmdImme, code)
	})
}

func (d *Device) WorkType(ctx context.Context) (WorkType, error) {
	var t WorkType
	err := d.do(ctx, "get_work_type", func(tx *txn) (err error) {
		t, err = getSetting(tx, at.CmdImme, decodeWorkType)
		return err
	})
	return t, err
}

// SetNotifyMode enables or disables connection notifications on the
// serial link.
func (d *Device) SetNotifyMode(ctx context.Context, m NotifyMode) error {
	return d.do(ctx, "set_notify_mode", func(tx *txn) error {
		code, ok := encodeNotifyMode(m)
		if !ok {
			return invalid(m)
		}
		return setSetting(tx, at.CmdNoti, code)
	})
}

func (d *Device) NotifyMode(ctx context.Context) (NotifyMode, error) {
	var m NotifyMode
	err := d.do(ctx, "get_notify_mode", func(tx *txn) (err error) {
		m, err = getSetting(tx, at.CmdNoti, decodeNotifyMode)
		return err
	})
	return m, err
}
