package hm10

import (
	"context"
	"fmt"
)

// Profile is a snapshot of the persistent module settings. Zero fields are
// left untouched by ApplyProfile.
type Profile struct {
	Name        string      `yaml:"name,omitempty" json:"name,omitempty"`
	Pin         string      `yaml:"pin,omitempty" json:"pin,omitempty"`
	PinCodeMode PinCodeMode `yaml:"pin_code_mode,omitempty" json:"pin_code_mode,omitempty"`
	Role        Role        `yaml:"role,omitempty" json:"role,omitempty"`
	WorkMode    WorkMode    `yaml:"work_mode,omitempty" json:"work_mode,omitempty"`
	WorkType    WorkType    `yaml:"work_type,omitempty" json:"work_type,omitempty"`
	NotifyMode  NotifyMode  `yaml:"notify_mode,omitempty" json:"notify_mode,omitempty"`
}

// ReadProfile queries every persistent setting, one transaction each.
func (d *Device) ReadProfile(ctx context.Context) (Profile, error) {
	var (
		p   Profile
		err error
	)
	if p.Name, err = d.Name(ctx); err != nil {
		return Profile{}, err
	}
	if p.Pin, err = d.Pin(ctx); err != nil {
		return Profile{}, err
	}
	if p.PinCodeMode, err = d.PinCodeMode(ctx); err != nil {
		return Profile{}, err
	}
	if p.Role, err = d.Role(ctx); err != nil {
		return Profile{}, err
	}
	if p.WorkMode, err = d.WorkMode(ctx); err != nil {
		return Profile{}, err
	}
	if p.WorkType, err = d.WorkType(ctx); err != nil {
		return Profile{}, err
	}
	if p.NotifyMode, err = d.NotifyMode(ctx); err != nil {
		return Profile{}, err
	}
	return p, nil
}

// ApplyProfile writes every non zero field of p and stops at the first
// failure. Settings written before the failure stay in effect.
func (d *Device) ApplyProfile(ctx context.Context, p Profile) error {
	steps := []struct {
		set  bool
		name string
		fn   func() error
	}{
		{p.Name != "", "name", func() error { return d.SetName(ctx, p.Name) }},
		{p.Pin != "", "pin", func() error { return d.SetPin(ctx, p.Pin) }},
		{p.PinCodeMode != 0, "pin code mode", func() error { return d.SetPinCodeMode(ctx, p.PinCodeMode) }},
		{p.Role != 0, "role", func() error { return d.SetRole(ctx, p.Role) }},
		{p.WorkMode != 0, "work mode", func() error { return d.SetWorkMode(ctx, p.WorkMode) }},
		{p.WorkType != 0, "work type", func() error { return d.SetWorkType(ctx, p.WorkType) }},
		{p.NotifyMode != 0, "notify mode", func() error { return d.SetNotifyMode(ctx, p.NotifyMode) }},
	}
	for _, s := range steps {
		if !s.set {
			continue
		}
		if err := s.fn(); err != nil {
			return fmt.Errorf("apply %s: %w", s.name, err)
		}
	}
	return nil
}
