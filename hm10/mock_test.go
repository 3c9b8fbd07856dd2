package hm10_test

import (
	"context"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	logtest "github.com/sirupsen/logrus/hooks/test"
	gomock "go.uber.org/mock/gomock"
	"i4.energy/across/hm10/hm10"
)

type MockSequenceBuilder struct {
	transport *hm10.MockTransport
	calls     []any
}

func NewMockSequence(transport *hm10.MockTransport) *MockSequenceBuilder {
	return &MockSequenceBuilder{
		transport: transport,
		calls:     []any{},
	}
}

// Quiet ends an input flush: the next single byte read times out.
func (b *MockSequenceBuilder) Quiet() *MockSequenceBuilder {
	b.calls = append(b.calls,
		b.transport.EXPECT().Receive(gomock.Len(1), hm10.DefaultTimeout).Return(hm10.ErrTimeout),
	)
	return b
}

// Stale queues bytes that the flush has to discard one by one.
func (b *MockSequenceBuilder) Stale(data string) *MockSequenceBuilder {
	for i := range len(data) {
		c := data[i]
		b.calls = append(b.calls,
			b.transport.EXPECT().Receive(gomock.Len(1), hm10.DefaultTimeout).DoAndReturn(func(p []byte, _ time.Duration) error {
				p[0] = c
				return nil
			}),
		)
	}
	return b
}

func (b *MockSequenceBuilder) Send(frame string) *MockSequenceBuilder {
	b.calls = append(b.calls,
		b.transport.EXPECT().Send([]byte(frame), hm10.DefaultTimeout).Return(nil),
	)
	return b
}

func (b *MockSequenceBuilder) SendErr(frame string, err error) *MockSequenceBuilder {
	b.calls = append(b.calls,
		b.transport.EXPECT().Send([]byte(frame), hm10.DefaultTimeout).Return(err),
	)
	return b
}

// Reply answers a receive of exactly len(resp) bytes.
func (b *MockSequenceBuilder) Reply(resp string) *MockSequenceBuilder {
	return b.ReplyWithin(resp, hm10.DefaultTimeout)
}

func (b *MockSequenceBuilder) ReplyWithin(resp string, timeout time.Duration) *MockSequenceBuilder {
	b.calls = append(b.calls,
		b.transport.EXPECT().Receive(gomock.Len(len(resp)), timeout).DoAndReturn(func(p []byte, _ time.Duration) error {
			copy(p, resp)
			return nil
		}),
	)
	return b
}

// ReplyBytes answers len(resp) single byte receives.
func (b *MockSequenceBuilder) ReplyBytes(resp string) *MockSequenceBuilder {
	for i := range len(resp) {
		b.Reply(resp[i : i+1])
	}
	return b
}

func (b *MockSequenceBuilder) ReceiveErr(size int, timeout time.Duration, err error) *MockSequenceBuilder {
	b.calls = append(b.calls,
		b.transport.EXPECT().Receive(gomock.Len(size), timeout).Return(err),
	)
	return b
}

// Command is the common flush, send, reply exchange.
func (b *MockSequenceBuilder) Command(frame, resp string) *MockSequenceBuilder {
	return b.Quiet().Send(frame).Reply(resp)
}

func (b *MockSequenceBuilder) Build() []any {
	return b.calls
}

type testDevice struct {
	*hm10.Device
	transport *hm10.MockTransport
	clock     *hm10.MockClock
	logs      *logtest.Hook
}

// newTestDevice dials a Device over a mock transport with a mock clock and
// a captured logger. Extra builder options can be applied by opts.
func newTestDevice(t *testing.T, ctrl *gomock.Controller, opts ...func(*hm10.ConfigBuilder)) *testDevice {
	t.Helper()

	transport := hm10.NewMockTransport(ctrl)
	dialer := hm10.NewMockDialer(ctrl)
	clock := hm10.NewMockClock(ctrl)
	logger, hook := logtest.NewNullLogger()
	logger.SetLevel(logrus.DebugLevel)

	dialer.EXPECT().Dial(gomock.Any()).Return(transport, nil)

	builder := hm10.NewConfigBuilder().
		WithDialer(dialer).
		WithClock(clock).
		WithLogger(logger)
	for _, opt := range opts {
		opt(builder)
	}
	config, err := builder.Build()
	if err != nil {
		t.Fatalf("unexpected error from Build(): %v", err)
	}

	d, err := hm10.New(context.Background(), config)
	if err != nil {
		t.Fatalf("unexpected error from New(): %v", err)
	}
	return &testDevice{Device: d, transport: transport, clock: clock, logs: hook}
}
