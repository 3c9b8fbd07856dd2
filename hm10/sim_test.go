package hm10_test

import (
	"context"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"i4.energy/across/hm10/hm10"
)

type sleepRecorder struct {
	sleeps []time.Duration
}

func (c *sleepRecorder) Sleep(d time.Duration) { c.sleeps = append(c.sleeps, d) }

func newSimulatedDevice(t *testing.T) (*hm10.Device, *hm10.Simulator, *sleepRecorder) {
	t.Helper()

	sim := hm10.NewSimulator()
	clock := &sleepRecorder{}
	logger := logrus.New()
	logger.SetLevel(logrus.PanicLevel)

	config, err := hm10.NewConfigBuilder().
		WithDialer(sim).
		WithClock(clock).
		WithLogger(logger).
		WithProbe(true).
		Build()
	require.NoError(t, err)

	d, err := hm10.New(context.Background(), config)
	require.NoError(t, err)
	t.Cleanup(func() { d.Close() })
	return d, sim, clock
}

func TestSimulatorFactorySettings(t *testing.T) {
	d, _, _ := newSimulatedDevice(t)

	p, err := d.ReadProfile(context.Background())
	require.NoError(t, err)
	assert.Equal(t, hm10.Profile{
		Name:        "HMSoft",
		Pin:         "000000",
		PinCodeMode: hm10.PinCodeDisabled,
		Role:        hm10.RolePeripheral,
		WorkMode:    hm10.ModeTransmission,
		WorkType:    hm10.WorkType0,
		NotifyMode:  hm10.NotifyDisabled,
	}, p)
}

func TestSimulatorSettings(t *testing.T) {
	ctx := context.Background()
	d, sim, clock := newSimulatedDevice(t)

	require.NoError(t, d.SetName(ctx, "ABCDEFGHIJKL"))
	require.NoError(t, d.SetPin(ctx, "424242"))
	require.NoError(t, d.SetRole(ctx, hm10.RoleCentral))
	require.NoError(t, d.SetPinCodeMode(ctx, hm10.PinCodeEnabled))
	require.NoError(t, d.SetWorkMode(ctx, hm10.ModePIOCollection))
	require.NoError(t, d.SetWorkType(ctx, hm10.WorkType1))
	require.NoError(t, d.SetNotifyMode(ctx, hm10.NotifyEnabled))

	name, err := d.Name(ctx)
	require.NoError(t, err)
	assert.Equal(t, "ABCDEFGHIJKL", name)

	pin, err := d.Pin(ctx)
	require.NoError(t, err)
	assert.Equal(t, "424242", pin)

	role, err := d.Role(ctx)
	require.NoError(t, err)
	assert.Equal(t, hm10.RoleCentral, role)

	assert.Equal(t, hm10.ModePIOCollection, sim.Settings().WorkMode)

	t.Run("Reset keeps settings", func(t *testing.T) {
		require.NoError(t, d.Reset(ctx))
		assert.Equal(t, "424242", sim.Settings().Pin)
	})

	t.Run("Renew restores factory settings", func(t *testing.T) {
		require.NoError(t, d.Renew(ctx))
		name, err := d.Name(ctx)
		require.NoError(t, err)
		assert.Equal(t, "HMSoft", name)
		assert.Equal(t, hm10.RolePeripheral, sim.Settings().Role)
	})

	assert.Equal(t, []time.Duration{hm10.DefaultSettleDelay, hm10.DefaultSettleDelay}, clock.sleeps)
}

func TestSimulatorStaleInput(t *testing.T) {
	d, sim, _ := newSimulatedDevice(t)

	sim.Inject([]byte("OK+LOSTgarbage"))
	assert.NoError(t, d.Test(context.Background()))
}

func TestSimulatorConnection(t *testing.T) {
	ctx := context.Background()

	t.Run("Unknown peer times out in stage two", func(t *testing.T) {
		d, _, _ := newSimulatedDevice(t)
		require.NoError(t, d.SetRole(ctx, hm10.RoleCentral))

		err := d.Connect(ctx, hm10.AddressNormal, peer)
		assert.ErrorIs(t, err, hm10.ErrConnectFailed)
		assert.Equal(t, hm10.StatusError, hm10.StatusOf(err))
	})

	t.Run("Peripheral cannot connect", func(t *testing.T) {
		d, sim, _ := newSimulatedDevice(t)
		sim.AddPeer(peer)

		err := d.Connect(ctx, hm10.AddressNormal, peer)
		assert.ErrorIs(t, err, hm10.ErrConnectFailed)
	})

	t.Run("Connect relay and disconnect", func(t *testing.T) {
		d, sim, _ := newSimulatedDevice(t)
		sim.AddPeer(peer)
		require.NoError(t, d.SetRole(ctx, hm10.RoleCentral))

		status, err := d.Disconnect(ctx)
		require.NoError(t, err)
		assert.Equal(t, hm10.NoConnection, status)

		require.NoError(t, d.Connect(ctx, hm10.AddressNormal, peer))
		addr, ok := sim.Connected()
		assert.True(t, ok)
		assert.Equal(t, peer, addr)

		require.NoError(t, d.SendOTA(ctx, []byte("AT+ROLE0"), time.Second))
		assert.Equal(t, []byte("AT+ROLE0"), sim.Outbound())

		sim.Inject([]byte("pong"))
		buf := make([]byte, 4)
		require.NoError(t, d.ReceiveOTA(ctx, buf, time.Second))
		assert.Equal(t, "pong", string(buf))

		status, err = d.Disconnect(ctx)
		require.NoError(t, err)
		assert.Equal(t, hm10.ConnectionLost, status)

		_, ok = sim.Connected()
		assert.False(t, ok)
		assert.Equal(t, hm10.RoleCentral, sim.Settings().Role)
	})
}

func TestSimulatorClosed(t *testing.T) {
	d, _, _ := newSimulatedDevice(t)
	sim := hm10.NewSimulator()
	require.NoError(t, sim.Close())

	err := sim.Send([]byte("AT"), time.Second)
	assert.ErrorIs(t, err, hm10.ErrHardwareFault)

	require.NoError(t, d.Close())
	assert.ErrorIs(t, d.Close(), hm10.ErrAlreadyClosed)
}

func TestSimulatorRoundTrip(t *testing.T) {
	ctx := context.Background()
	d, _, _ := newSimulatedDevice(t)

	for _, r := range []hm10.Role{hm10.RolePeripheral, hm10.RoleCentral} {
		t.Run("Role "+r.String(), func(t *testing.T) {
			require.NoError(t, d.SetRole(ctx, r))
			got, err := d.Role(ctx)
			require.NoError(t, err)
			assert.Equal(t, r, got)
		})
	}

	for _, m := range []hm10.PinCodeMode{hm10.PinCodeDisabled, hm10.PinCodeEnabled} {
		t.Run("PinCodeMode "+m.String(), func(t *testing.T) {
			require.NoError(t, d.SetPinCodeMode(ctx, m))
			got, err := d.PinCodeMode(ctx)
			require.NoError(t, err)
			assert.Equal(t, m, got)
		})
	}

	for _, m := range []hm10.WorkMode{hm10.ModeTransmission, hm10.ModePIOCollection, hm10.ModePIORemoteControl} {
		t.Run("WorkMode "+m.String(), func(t *testing.T) {
			require.NoError(t, d.SetWorkMode(ctx, m))
			got, err := d.WorkMode(ctx)
			require.NoError(t, err)
			assert.Equal(t, m, got)
		})
	}

	for _, w := range []hm10.WorkType{hm10.WorkType0, hm10.WorkType1} {
		t.Run("WorkType "+w.String(), func(t *testing.T) {
			require.NoError(t, d.SetWorkType(ctx, w))
			got, err := d.WorkType(ctx)
			require.NoError(t, err)
			assert.Equal(t, w, got)
		})
	}

	for _, m := range []hm10.NotifyMode{hm10.NotifyDisabled, hm10.NotifyEnabled} {
		t.Run("NotifyMode "+m.String(), func(t *testing.T) {
			require.NoError(t, d.SetNotifyMode(ctx, m))
			got, err := d.NotifyMode(ctx)
			require.NoError(t, err)
			assert.Equal(t, m, got)
		})
	}
}

func TestSimulatorConnectAddressTypes(t *testing.T) {
	ctx := context.Background()
	d, sim, _ := newSimulatedDevice(t)
	sim.AddPeer(peer)
	require.NoError(t, d.SetRole(ctx, hm10.RoleCentral))

	types := []hm10.AddressType{
		hm10.AddressStaticMAC,
		hm10.AddressStaticRandomMAC,
		hm10.AddressRandomMAC,
		hm10.AddressNormal,
	}
	for _, typ := range types {
		t.Run(typ.String(), func(t *testing.T) {
			require.NoError(t, d.Connect(ctx, typ, peer))
			addr, ok := sim.Connected()
			assert.True(t, ok)
			assert.Equal(t, peer, addr)

			status, err := d.Disconnect(ctx)
			require.NoError(t, err)
			assert.Equal(t, hm10.ConnectionLost, status)
		})
	}
}

func TestSimulatorEmptyName(t *testing.T) {
	d, sim, _ := newSimulatedDevice(t)

	err := d.SetName(context.Background(), "")
	assert.ErrorIs(t, err, hm10.ErrInvalidValue)
	assert.Equal(t, "HMSoft", sim.Settings().Name)
}
