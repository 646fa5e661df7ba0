// Package codec implements the wire encoding used between the interceptor
// process and the packet dispatch server: a fixed header followed by an
// opaque payload, plus the subset of validator message types the network
// manager and strategy layer need to inspect.
package codec

import "fmt"

// MessageType identifies the kind of payload carried by a Packet.
type MessageType uint16

const (
	TypeManifests     MessageType = 2
	TypeTransaction    MessageType = 30
	TypeValidation     MessageType = 41
	TypeStatusChange   MessageType = 34
	TypeProposeSet     MessageType = 33
	TypeHaveSet        MessageType = 35
	TypeEndpoints      MessageType = 3
	TypePing           MessageType = 1
)

func (t MessageType) String() string {
	switch t {
	case TypeManifests:
		return "mtManifests"
	case TypeTransaction:
		return "mtTransaction"
	case TypeValidation:
		return "mtValidation"
	case TypeStatusChange:
		return "mtStatusChange"
	case TypeProposeSet:
		return "mtProposeSet"
	case TypeHaveSet:
		return "mtHaveSet"
	case TypeEndpoints:
		return "mtEndpoints"
	case TypePing:
		return "mtPing"
	default:
		return fmt.Sprintf("mtUnknown(%d)", uint16(t))
	}
}

// NodeStatus mirrors the status field of a StatusChange message.
type NodeStatus uint32

// NodeEvent mirrors the event field of a StatusChange message. Only
// newEvent == 1 (closing/validating a new ledger) advances an iteration.
type NodeEvent uint32

const NewEventLedgerClosed NodeEvent = 1

// StatusChange is the subset of a validator's status-change broadcast that
// the iteration controller observes to detect ledger validation progress.
type StatusChange struct {
	NewStatus          NodeStatus
	NewEvent           NodeEvent
	LedgerSeq          uint32
	LedgerHash         []byte
	LedgerHashPrevious []byte
	NetworkTime        uint64
	FirstSeq           uint32
	LastSeq            uint32
}

// Type implements the identifiable-message convention used across the
// codec: a decoded message knows its own wire type.
func (s *StatusChange) Type() MessageType {
	return TypeStatusChange
}
