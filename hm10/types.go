package hm10

import (
	"fmt"
	"strings"
)

// Role is the Bluetooth role the module plays.
//
// A peripheral advertises and serves data once a central connects to it; a
// central scans for peripherals and initiates connections.
type Role uint8

const (
	RolePeripheral Role = iota + 1
	RoleCentral
)

// PinCodeMode selects whether the module asks for a pin while bonding.
type PinCodeMode uint8

const (
	PinCodeDisabled PinCodeMode = iota + 1
	PinCodeEnabled
)

// WorkMode controls how much the remote side may drive the module after a
// connection is established.
type WorkMode uint8

const (
	// ModeTransmission relays data only.
	ModeTransmission WorkMode = iota + 1
	// ModePIOCollection also lets the remote side send AT commands, read
	// PIO4..PIO11 and drive PIO2 and PIO3.
	ModePIOCollection
	// ModePIORemoteControl also lets the remote side send AT commands and
	// drive PIO2..PIO11.
	ModePIORemoteControl
)

// WorkType governs what the module does after power-on.
type WorkType uint8

const (
	// WorkType0 starts working immediately and reconnects to the last
	// configured peer, ignoring AT commands once connected.
	WorkType0 WorkType = iota + 1
	// WorkType1 only answers AT commands until told to start or connect.
	WorkType1
)

// NotifyMode selects whether the module reports connection changes on the
// serial link.
type NotifyMode uint8

const (
	NotifyDisabled NotifyMode = iota + 1
	NotifyEnabled
)

// AddressType is the kind of Bluetooth address passed to Connect.
type AddressType uint8

const (
	AddressStaticMAC AddressType = iota + 1
	AddressStaticRandomMAC
	AddressRandomMAC
	AddressNormal
)

var (
	roleNames        = []string{"", "peripheral", "central"}
	pinCodeModeNames = []string{"", "disabled", "enabled"}
	workModeNames    = []string{"", "transmission", "pio-collection", "pio-remote-control"}
	workTypeNames    = []string{"", "type0", "type1"}
	notifyModeNames  = []string{"", "disabled", "enabled"}
	addressTypeNames = []string{"", "static-mac", "static-random-mac", "random-mac", "normal"}
)

func enumString(names []string, v uint8, kind string) string {
	if v == 0 || int(v) >= len(names) {
		return fmt.Sprintf("%s(%d)", kind, v)
	}
	return names[v]
}

func parseEnum(names []string, text []byte, kind string) (uint8, error) {
	s := strings.ToLower(strings.TrimSpace(string(text)))
	for i := 1; i < len(names); i++ {
		if names[i] == s {
			return uint8(i), nil
		}
	}
	return 0, fmt.Errorf("%w: unknown %s %q", ErrInvalidValue, kind, text)
}

func (r Role) Valid() bool { return r >= RolePeripheral && r <= RoleCentral }
func (r Role) String() string { return enumString(roleNames, uint8(r), "Role") }
func (m PinCodeMode) Valid() bool { return m >= PinCodeDisabled && m <= PinCodeEnabled }
func (m PinCodeMode) String() string { return enumString(pinCodeModeNames, uint8(m), "PinCodeMode") }
func (m WorkMode) Valid() bool { return m >= ModeTransmission && m <= ModePIORemoteControl }
func (m WorkMode) String() string { return enumString(workModeNames, uint8(m), "WorkMode") }
func (t WorkType) Valid() bool { return t >= WorkType0 && t <= WorkType1 }
func (t WorkType) String() string { return enumString(workTypeNames, uint8(t), "WorkType") }
func (m NotifyMode) Valid() bool { return m >= NotifyDisabled && m <= NotifyEnabled }
func (m NotifyMode) String() string { return enumString(notifyModeNames, uint8(m), "NotifyMode") }
func (t AddressType) Valid() bool { return t >= AddressStaticMAC && t <= AddressNormal }
func (t AddressType) String() string {
	return enumString(addressTypeNames, uint8(t), "AddressType")
}

func (r Role) MarshalText() ([]byte, error) { return marshalEnum(r) }
func (r *Role) UnmarshalText(text []byte) error {
	v, err := parseEnum(roleNames, text, "role")
	*r = Role(v)
	return err
}

func (m PinCodeMode) MarshalText() ([]byte, error) { return marshalEnum(m) }
func (m *PinCodeMode) UnmarshalText(text []byte) error {
	v, err := parseEnum(pinCodeModeNames, text, "pin code mode")
	*m = PinCodeMode(v)
	return err
}

func (m WorkMode) MarshalText() ([]byte, error) { return marshalEnum(m) }
func (m *WorkMode) UnmarshalText(text []byte) error {
	v, err := parseEnum(workModeNames, text, "work mode")
	*m = WorkMode(v)
	return err
}

func (t WorkType) MarshalText() ([]byte, error) { return marshalEnum(t) }
func (t *WorkType) UnmarshalText(text []byte) error {
	v, err := parseEnum(workTypeNames, text, "work type")
	*t = WorkType(v)
	return err
}

func (m NotifyMode) MarshalText() ([]byte, error) { return marshalEnum(m) }
func (m *NotifyMode) UnmarshalText(text []byte) error {
	v, err := parseEnum(notifyModeNames, text, "notify mode")
	*m = NotifyMode(v)
	return err
}

func (t AddressType) MarshalText() ([]byte, error) { return marshalEnum(t) }
func (t *AddressType) UnmarshalText(text []byte) error {
	v, err := parseEnum(addressTypeNames, text, "address type")
	*t = AddressType(v)
	return err
}

type enum interface {
	Valid() bool
	String() string
}

func marshalEnum(e enum) ([]byte, error) {
	if !e.Valid() {
		return nil, fmt.Errorf("%w: %s", ErrInvalidValue, e)
	}
	return []byte(e.String()), nil
}
