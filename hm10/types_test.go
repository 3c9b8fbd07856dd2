package hm10_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"i4.energy/across/hm10/hm10"
)

func TestEnumText(t *testing.T) {
	t.Run("Role", func(t *testing.T) {
		var r hm10.Role
		require.NoError(t, r.UnmarshalText([]byte("Central")))
		assert.Equal(t, hm10.RoleCentral, r)

		text, err := hm10.RolePeripheral.MarshalText()
		require.NoError(t, err)
		assert.Equal(t, "peripheral", string(text))
	})

	t.Run("WorkMode", func(t *testing.T) {
		var m hm10.WorkMode
		require.NoError(t, m.UnmarshalText([]byte(" pio-remote-control ")))
		assert.Equal(t, hm10.ModePIORemoteControl, m)
	})

	t.Run("AddressType", func(t *testing.T) {
		var a hm10.AddressType
		require.NoError(t, a.UnmarshalText([]byte("static-random-mac")))
		assert.Equal(t, hm10.AddressStaticRandomMAC, a)
	})

	t.Run("Unknown names are rejected", func(t *testing.T) {
		var n hm10.NotifyMode
		err := n.UnmarshalText([]byte("sometimes"))
		assert.True(t, errors.Is(err, hm10.ErrInvalidValue), "got: %v", err)

		var w hm10.WorkType
		err = w.UnmarshalText([]byte(""))
		assert.True(t, errors.Is(err, hm10.ErrInvalidValue), "got: %v", err)
	})

	t.Run("Invalid values do not marshal", func(t *testing.T) {
		_, err := hm10.PinCodeMode(0).MarshalText()
		assert.ErrorIs(t, err, hm10.ErrInvalidValue)
		assert.Equal(t, "PinCodeMode(0)", hm10.PinCodeMode(0).String())
		assert.Equal(t, "Role(7)", hm10.Role(7).String())
	})

	t.Run("Valid", func(t *testing.T) {
		assert.True(t, hm10.AddressNormal.Valid())
		assert.False(t, hm10.AddressType(0).Valid())
		assert.False(t, hm10.AddressType(5).Valid())
		assert.True(t, hm10.WorkType1.Valid())
		assert.False(t, hm10.WorkType(3).Valid())
	})
}

func TestParseAddress(t *testing.T) {
	tests := []struct {
		in   string
		want hm10.Address
		ok   bool
	}{
		{"0017EA0943AE", "0017EA0943AE", true},
		{"00:17:ea:09:43:ae", "0017EA0943AE", true},
		{"00-17-EA-09-43-AE", "0017EA0943AE", true},
		{"0017EA0943A", "", false},
		{"0017EA0943AEF", "", false},
		{"0017EA0943AG", "", false},
		{"", "", false},
	}

	for _, tc := range tests {
		t.Run(tc.in, func(t *testing.T) {
			got, err := hm10.ParseAddress(tc.in)
			if !tc.ok {
				assert.ErrorIs(t, err, hm10.ErrInvalidValue)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
		})
	}
}
