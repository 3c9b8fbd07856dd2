package at

const (
	// Commands
	CmdTest    = "AT"
	CmdReset   = "AT+RESET"
	CmdRenew   = "AT+RENEW"
	CmdName    = "AT+NAME"
	CmdRole    = "AT+ROLE"
	CmdPass    = "AT+PASS"
	CmdType    = "AT+TYPE"
	CmdMode    = "AT+MODE"
	CmdImme    = "AT+IMME"
	CmdNoti    = "AT+NOTI"
	CmdConnect = "AT+CO"

	// Query is appended to a command to read the current value.
	Query = '?'

	// Responses
	OK         = "OK"
	OKReset    = "OK+RESET"
	OKRenew    = "OK+RENEW"
	OKSet      = "OK+Set:"
	OKGet      = "OK+Get:"
	OKName     = "OK+NAME:"
	OKConnect  = "OK+CO"
	OKConnAck  = "A"
	OKConn     = "OK+CONN"
	OKLost     = "OK+LOST"
	LostSuffix = "+LOST"

	// NameTerminator ends the variable part of a name query response.
	NameTerminator = 0x00
)

const (
	// MaxFrameSize is the largest command or response the driver exchanges
	// in a single transfer (the connect command).
	MaxFrameSize = 19
	// MaxPacketSize is the largest OTA payload the module relays per write.
	MaxPacketSize = 19

	MaxNameSize = 12
	PinSize     = 6
	AddressSize = 12

	SetResponseSize     = len(OKSet) + 1
	GetResponseSize     = len(OKGet) + 1
	PinResponseSize     = len(OKSet) + PinSize
	ConnectCommandSize  = len(CmdConnect) + 1 + AddressSize
	ConnectResponseSize = len(OKConnect) + 2 + len(OKConnAck)
	ConnResponseSize    = len(OKConn)
)
