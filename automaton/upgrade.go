package automaton

import "github.com/intuitivelabs/bytescase"

// UpgradeProtocol is a bitmask of recognized Upgrade header tokens (ported
// from the teacher's UpgProtoT, parse_upgrade.go; generalized here to also
// flag h2c per SPEC_FULL's websocket-upgrade supplement).
type UpgradeProtocol uint

const (
	UpgradeNone UpgradeProtocol = 0
	UpgradeWebSocket UpgradeProtocol = 1 << (iota - 1)
	UpgradeHTTP2
	UpgradeOther
)

// ResolveUpgradeProtocol maps a single Upgrade token to its flag.
func ResolveUpgradeProtocol(tok []byte) UpgradeProtocol {
	switch {
	case len(tok) == 9 && bytescase.CmpEq(tok, []byte("websocket")):
		return UpgradeWebSocket
	case len(tok) == 3 && bytescase.CmpEq(tok, []byte("h2c")):
		return UpgradeHTTP2
	case len(tok) == 8 && bytescase.CmpEq(tok, []byte("HTTP/2.0")):
		return UpgradeHTTP2
	}
	return UpgradeOther
}
