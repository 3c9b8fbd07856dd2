package hm10

import (
	"bytes"
	"context"
	"fmt"
	"sync"
	"time"

	"i4.energy/across/hm10/at"
)

// Simulator is an in-memory HM-10 module. It implements both Transport and
// Dialer so it can stand in for a serial port in tests and in the daemon's
// simulate mode.
//
// Responses are produced synchronously when a command is sent. Receive never
// blocks: if fewer bytes are pending than requested it hands out what there
// is and returns ErrTimeout, like a serial port whose read timeout expired.
type Simulator struct {
	mu sync.Mutex

	name        []byte
	pin         []byte
	role        byte
	pinCodeMode byte
	workMode    byte
	workType    byte
	notifyMode  byte

	peers     map[Address]struct{}
	connected Address

	pending  []byte
	outbound []byte
	closed   bool
}

// NewSimulator returns a simulator with factory settings and no peers.
func NewSimulator() *Simulator {
	s := &Simulator{peers: make(map[Address]struct{})}
	s.factoryReset()
	return s
}

func (s *Simulator) factoryReset() {
	s.name = []byte("HMSoft")
	s.pin = []byte("000000")
	s.role, _ = encodeRole(RolePeripheral)
	s.pinCodeMode, _ = encodePinCodeMode(PinCodeDisabled)
	s.workMode, _ = encodeWorkMode(ModeTransmission)
	s.workType, _ = encodeWorkType(WorkType0)
	s.notifyMode, _ = encodeNotifyMode(NotifyDisabled)
}

// Dial reopens the simulator and hands it out as a Transport.
func (s *Simulator) Dial(ctx context.Context) (Transport, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = false
	return s, nil
}

func (s *Simulator) Send(p []byte, _ time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return fmt.Errorf("%w: simulator closed", ErrHardwareFault)
	}

	// A connected module relays everything to the peer except the bare test
	// command, which drops the link.
	if s.connected != "" {
		if bytes.Equal(p, []byte(at.CmdTest)) {
			s.connected = ""
			s.pending = append(s.pending, at.OKLost...)
			return nil
		}
		s.outbound = append(s.outbound, p...)
		return nil
	}

	cmd, err := at.ParseCommand(p)
	if err != nil {
		// the real module stays silent on garbage
		return nil
	}
	s.handle(cmd)
	return nil
}

func (s *Simulator) handle(cmd at.Command) {
	switch cmd.Name {
	case at.CmdTest:
		s.reply([]byte(at.OK))
	case at.CmdReset:
		s.reply([]byte(at.OKReset))
	case at.CmdRenew:
		s.factoryReset()
		s.reply([]byte(at.OKRenew))
	case at.CmdName:
		switch {
		case cmd.Query:
			s.reply(at.NameResponse(s.name))
		case validName(string(cmd.Arg)) == nil:
			s.name = cmd.Arg
			s.reply(at.SetResponse(cmd.Arg...))
		}
	case at.CmdPass:
		switch {
		case cmd.Query:
			s.reply(at.GetResponse(s.pin...))
		case validPin(cmd.Arg) == nil:
			s.pin = cmd.Arg
			s.reply(at.SetResponse(cmd.Arg...))
		}
	case at.CmdRole:
		setting(s, cmd, &s.role, roleCodes)
	case at.CmdType:
		setting(s, cmd, &s.pinCodeMode, pinCodeModeCodes)
	case at.CmdMode:
		setting(s, cmd, &s.workMode, workModeCodes)
	case at.CmdImme:
		setting(s, cmd, &s.workType, workTypeCodes)
	case at.CmdNoti:
		setting(s, cmd, &s.notifyMode, notifyModeCodes)
	case at.CmdConnect:
		s.connect(cmd.Arg)
	}
}

func setting[T comparable](s *Simulator, cmd at.Command, value *byte, codes map[T]byte) {
	if cmd.Query {
		s.reply(at.GetResponse(*value))
		return
	}
	if len(cmd.Arg) != 1 {
		return
	}
	if _, ok := decode(codes, cmd.Arg[0]); !ok {
		return
	}
	*value = cmd.Arg[0]
	s.reply(at.SetResponse(*value))
}

func (s *Simulator) connect(arg []byte) {
	if len(arg) != 1+at.AddressSize {
		return
	}
	if _, ok := decodeAddressType(arg[0]); !ok {
		return
	}
	s.reply(at.ConnectResponse(arg[0]))

	central, _ := encodeRole(RoleCentral)
	addr := Address(arg[1:])
	if _, known := s.peers[addr]; !known || s.role != central {
		return
	}
	s.connected = addr
	s.reply([]byte(at.OKConn))
}

func (s *Simulator) reply(p []byte) {
	s.pending = append(s.pending, p...)
}

func (s *Simulator) Receive(p []byte, _ time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return fmt.Errorf("%w: simulator closed", ErrHardwareFault)
	}
	n := copy(p, s.pending)
	s.pending = s.pending[n:]
	if n < len(p) {
		return fmt.Errorf("%w: read %d of %d bytes", ErrTimeout, n, len(p))
	}
	return nil
}

func (s *Simulator) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	return nil
}

// AddPeer makes addr reachable for Connect.
func (s *Simulator) AddPeer(addr Address) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.peers[addr] = struct{}{}
}

// Connected reports the address of the current peer.
func (s *Simulator) Connected() (Address, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.connected, s.connected != ""
}

// Inject queues bytes on the line toward the host. While connected they
// model data from the peer, otherwise stale output of the module.
func (s *Simulator) Inject(p []byte) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.pending = append(s.pending, p...)
}

// Outbound returns and clears the bytes relayed to the peer so far.
func (s *Simulator) Outbound() []byte {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := s.outbound
	s.outbound = nil
	return out
}

// Settings returns the stored settings as a Profile.
func (s *Simulator) Settings() Profile {
	s.mu.Lock()
	defer s.mu.Unlock()
	p := Profile{
		Name: string(s.name),
		Pin:  string(s.pin),
	}
	p.Role, _ = decodeRole(s.role)
	p.PinCodeMode, _ = decodePinCodeMode(s.pinCodeMode)
	p.WorkMode, _ = decodeWorkMode(s.workMode)
	p.WorkType, _ = decodeWorkType(s.workType)
	p.NotifyMode, _ = decodeNotifyMode(s.notifyMode)
	return p
}
