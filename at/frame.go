package at

import (
	"bytes"
	"errors"
)

// ErrUnknownCommand is returned by ParseCommand for frames that do not start
// with one of the modelled commands.
var ErrUnknownCommand = errors.New("at: unknown command")

// commands is ordered longest first so that prefix matching picks the most
// specific command.
var commands = []string{
	CmdReset, CmdRenew,
	CmdName, CmdRole, CmdPass, CmdType, CmdMode, CmdImme, CmdNoti,
	CmdConnect,
}

// Command is a parsed outbound frame.
type Command struct {
	// Name is the literal command prefix, e.g. "AT+ROLE".
	Name string
	// Arg holds the bytes following Name, without the query marker.
	Arg []byte
	// Query is set when the frame is Name followed by a single '?'.
	Query bool
}

// Set builds a command frame that writes arg.
func Set(cmd string, arg ...byte) []byte {
	frame := make([]byte, 0, len(cmd)+len(arg))
	frame = append(frame, cmd...)
	return append(frame, arg...)
}

// Get builds the query frame for cmd.
func Get(cmd string) []byte {
	return Set(cmd, Query)
}

// SetResponse is the response to a successful Set carrying the echoed value.
func SetResponse(value ...byte) []byte {
	return Set(OKSet, value...)
}

// GetResponse is the response to a query carrying the current value.
func GetResponse(value ...byte) []byte {
	return Set(OKGet, value...)
}

// NameResponse is the complete response to a name query, terminator
// included.
func NameResponse(name []byte) []byte {
	frame := Set(OKName, name...)
	return append(frame, NameTerminator)
}

// Connect builds the connect-to-address frame. The address type byte sits
// between the command and the 12 address characters.
func Connect(addrType byte, addr []byte) []byte {
	frame := Set(CmdConnect, addrType)
	return append(frame, addr...)
}

// ConnectResponse is the first-stage connect response, which repeats the
// address type twice before the acknowledgement byte.
func ConnectResponse(addrType byte) []byte {
	frame := Set(OKConnect, addrType, addrType)
	return append(frame, OKConnAck...)
}

// Diff returns the offset of the first byte where got differs from want, or
// -1 when they are equal. A length difference counts as a mismatch at the
// end of the shorter slice.
func Diff(want, got []byte) int {
	n := min(len(want), len(got))
	for i := 0; i < n; i++ {
		if want[i] != got[i] {
			return i
		}
	}
	if len(want) != len(got) {
		return n
	}
	return -1
}

// ParseCommand splits a command frame into its name and argument. It is the
// device side of the protocol and is used by simulators and capture tools.
func ParseCommand(frame []byte) (Command, error) {
	if bytes.Equal(frame, []byte(CmdTest)) {
		return Command{Name: CmdTest}, nil
	}
	for _, name := range commands {
		if !bytes.HasPrefix(frame, []byte(name)) {
			continue
		}
		arg := frame[len(name):]
		if len(arg) == 1 && arg[0] == Query {
			return Command{Name: name, Query: true}, nil
		}
		return Command{Name: name, Arg: bytes.Clone(arg)}, nil
	}
	return Command{}, ErrUnknownCommand
}
