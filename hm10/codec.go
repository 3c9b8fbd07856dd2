package hm10

// Wire encoding of the setting enums. Every value travels as a single ASCII
// byte appended to a command or response template; this file is the only
// place that knows which byte stands for which value.

var (
	roleCodes        = map[Role]byte{RolePeripheral: '0', RoleCentral: '1'}
	pinCodeModeCodes = map[PinCodeMode]byte{PinCodeDisabled: '0', PinCodeEnabled: '2'}
	workModeCodes    = map[WorkMode]byte{ModeTransmission: '0', ModePIOCollection: '1', ModePIORemoteControl: '2'}
	workTypeCodes    = map[WorkType]byte{WorkType0: '0', WorkType1: '1'}
	notifyModeCodes  = map[NotifyMode]byte{NotifyDisabled: '0', NotifyEnabled: '1'}
	addressTypeCodes = map[AddressType]byte{
		AddressStaticMAC:       '0',
		AddressStaticRandomMAC: '1',
		AddressRandomMAC:       '2',
		AddressNormal:          'N',
	}
)

func encode[T comparable](codes map[T]byte, v T) (byte, bool) {
	b, ok := codes[v]
	return b, ok
}

func decode[T comparable](codes map[T]byte, b byte) (T, bool) {
	for v, code := range codes {
		if code == b {
			return v, true
		}
	}
	var zero T
	return zero, false
}

func encodeRole(r Role) (byte, bool) { return encode(roleCodes, r) }
func decodeRole(b byte) (Role, bool) { return decode(roleCodes, b) }
func encodePinCodeMode(m PinCodeMode) (byte, bool) { return encode(pinCodeModeCodes, m) }
func decodePinCodeMode(b byte) (PinCodeMode, bool) { return decode(pinCodeModeCodes, b) }
func encodeWorkMode(m WorkMode) (byte, bool) { return encode(workModeCodes, m) }
func decodeWorkMode(b byte) (WorkMode, bool) { return decode(workModeCodes, b) }
func encodeWorkType(t WorkType) (byte, bool) { return encode(workTypeCodes, t) }
func decodeWorkType(b byte) (WorkType, bool) { return decode(workTypeCodes, b) }
func encodeNotifyMode(m NotifyMode) (byte, bool) { return encode(notifyModeCodes, m) }
func decodeNotifyMode(b byte) (NotifyMode, bool) { return decode(notifyModeCodes, b) }
func encodeAddressType(t AddressType) (byte, bool) { return encode(addressTypeCodes, t) }
func decodeAddressType(b byte) (AddressType, bool) { return decode(addressTypeCodes, b) }
