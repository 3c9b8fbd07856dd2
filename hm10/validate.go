package hm10

import (
	"fmt"
	"strings"

	"i4.energy/across/hm10/at"
)

// Address is a Bluetooth address as the module expects it: 12 upper case
// hex characters without separators, e.g. "0017EA090909".
type Address string

// ParseAddress accepts an address with or without ':' or '-' separators and
// returns it in the module's format.
func ParseAddress(s string) (Address, error) {
	clean := strings.NewReplacer(":", "", "-", "").Replace(strings.TrimSpace(s))
	a := Address(strings.ToUpper(clean))
	if !a.Valid() {
		return "", fmt.Errorf("%w: bluetooth address %q", ErrInvalidValue, s)
	}
	return a, nil
}

// Valid reports whether a is exactly 12 hex characters.
func (a Address) Valid() bool {
	if len(a) != at.AddressSize {
		return false
	}
	for i := 0; i < len(a); i++ {
		if !isHex(a[i]) {
			return false
		}
	}
	return true
}

func (a Address) String() string {
	return string(a)
}

func isDigit(b byte) bool {
	return b >= '0' && b <= '9'
}

func isHex(b byte) bool {
	return isDigit(b) || (b >= 'A' && b <= 'F') || (b >= 'a' && b <= 'f')
}

func validName(name string) error {
	if name == "" {
		return fmt.Errorf("%w: name is empty", ErrInvalidValue)
	}
	if len(name) > at.MaxNameSize {
		return fmt.Errorf("%w: %d bytes, at most %d allowed", ErrNameTooLong, len(name), at.MaxNameSize)
	}
	return nil
}

func validPin[T string | []byte](pin T) error {
	if len(pin) != at.PinSize {
		return fmt.Errorf("%w: pin must have %d digits, got %d", ErrInvalidValue, at.PinSize, len(pin))
	}
	for i := 0; i < len(pin); i++ {
		if !isDigit(pin[i]) {
			return fmt.Errorf("%w: pin byte %d is not a digit", ErrInvalidValue, i)
		}
	}
	return nil
}
