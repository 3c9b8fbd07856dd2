package hm10_test

import (
	"context"
	"errors"
	"testing"

	"go.uber.org/mock/gomock"
	"i4.energy/across/hm10/hm10"
)

func TestSetName(t *testing.T) {
	t.Run("Echoed name", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		d := newTestDevice(t, ctrl)
		gomock.InOrder(NewMockSequence(d.transport).Command("AT+NAMEHMSoft", "OK+Set:HMSoft").Build()...)

		if err := d.SetName(context.Background(), "HMSoft"); err != nil {
			t.Errorf("unexpected error: %v", err)
		}
	})

	t.Run("Twelve byte name is accepted", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		d := newTestDevice(t, ctrl)
		gomock.InOrder(NewMockSequence(d.transport).Command("AT+NAMEABCDEFGHIJKL", "OK+Set:ABCDEFGHIJKL").Build()...)

		if err := d.SetName(context.Background(), "ABCDEFGHIJKL"); err != nil {
			t.Errorf("unexpected error: %v", err)
		}
	})

	t.Run("ErrNameTooLong before any I/O", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		d := newTestDevice(t, ctrl)

		err := d.SetName(context.Background(), "ABCDEFGHIJKLM")
		if !errors.Is(err, hm10.ErrNameTooLong) {
			t.Errorf("expected ErrNameTooLong, got: %v", err)
		}
	})

	t.Run("Empty name is rejected before any I/O", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		d := newTestDevice(t, ctrl)

		err := d.SetName(context.Background(), "")
		if !errors.Is(err, hm10.ErrInvalidValue) {
			t.Errorf("expected ErrInvalidValue, got: %v", err)
		}
	})

	t.Run("Echo mismatch", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		d := newTestDevice(t, ctrl)
		gomock.InOrder(NewMockSequence(d.transport).Command("AT+NAMEHMSoft", "OK+Set:HMSofT").Build()...)

		err := d.SetName(context.Background(), "HMSoft")
		var mismatch *hm10.MismatchError
		if !errors.As(err, &mismatch) {
			t.Fatalf("expected MismatchError, got: %v", err)
		}
		if mismatch.Offset != 12 {
			t.Errorf("expected mismatch at offset 12, got: %d", mismatch.Offset)
		}
	})
}

func TestName(t *testing.T) {
	t.Run("Name up to the terminator", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		d := newTestDevice(t, ctrl)
		gomock.InOrder(NewMockSequence(d.transport).
			Command("AT+NAME?", "OK+NAME:").
			ReplyBytes("HMSoft\x00").
			Build()...)

		name, err := d.Name(context.Background())
		if err != nil {
			t.Errorf("unexpected error: %v", err)
		}
		if name != "HMSoft" {
			t.Errorf("expected HMSoft, got: %q", name)
		}
	})

	t.Run("Twelve bytes followed by the terminator", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		d := newTestDevice(t, ctrl)
		gomock.InOrder(NewMockSequence(d.transport).
			Command("AT+NAME?", "OK+NAME:").
			ReplyBytes("ABCDEFGHIJKL\x00").
			Build()...)

		name, err := d.Name(context.Background())
		if err != nil {
			t.Errorf("unexpected error: %v", err)
		}
		if name != "ABCDEFGHIJKL" {
			t.Errorf("expected ABCDEFGHIJKL, got: %q", name)
		}
	})

	t.Run("ErrNameTooLong after thirteen name bytes", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		d := newTestDevice(t, ctrl)
		// exactly thirteen single byte reads, no fourteenth
		gomock.InOrder(NewMockSequence(d.transport).
			Command("AT+NAME?", "OK+NAME:").
			ReplyBytes("ABCDEFGHIJKLM").
			Build()...)

		name, err := d.Name(context.Background())
		if !errors.Is(err, hm10.ErrNameTooLong) {
			t.Errorf("expected ErrNameTooLong, got: %v", err)
		}
		if name != "" {
			t.Errorf("expected no name on error, got: %q", name)
		}
	})

	t.Run("Empty name", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		d := newTestDevice(t, ctrl)
		gomock.InOrder(NewMockSequence(d.transport).
			Command("AT+NAME?", "OK+NAME:").
			ReplyBytes("\x00").
			Build()...)

		name, err := d.Name(context.Background())
		if err != nil {
			t.Errorf("unexpected error: %v", err)
		}
		if name != "" {
			t.Errorf("expected empty name, got: %q", name)
		}
	})

	t.Run("Timeout mid name", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		d := newTestDevice(t, ctrl)
		gomock.InOrder(NewMockSequence(d.transport).
			Command("AT+NAME?", "OK+NAME:").
			ReplyBytes("HMS").
			ReceiveErr(1, hm10.DefaultTimeout, hm10.ErrTimeout).
			Build()...)

		name, err := d.Name(context.Background())
		if hm10.StatusOf(err) != hm10.StatusNoResponse {
			t.Errorf("expected StatusNoResponse, got: %v", err)
		}
		if name != "" {
			t.Errorf("expected no name on error, got: %q", name)
		}
	})

	t.Run("Prefix mismatch stops before the name", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		d := newTestDevice(t, ctrl)
		gomock.InOrder(NewMockSequence(d.transport).Command("AT+NAME?", "OK+Get:H").Build()...)

		_, err := d.Name(context.Background())
		if !errors.Is(err, hm10.ErrMismatch) {
			t.Errorf("expected ErrMismatch, got: %v", err)
		}
	})
}
