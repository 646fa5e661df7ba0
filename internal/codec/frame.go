package codec

import (
	"encoding/binary"
	"errors"
)

// HeaderSize is the length of the type+length prefix: a 2-byte type id
// followed by a 4-byte payload length, both big-endian.
const HeaderSize = 2 + 4

// ErrShortFrame is returned when raw does not contain a full header, or the
// header declares more payload than raw actually carries.
var ErrShortFrame = errors.New("codec: frame shorter than declared header/length")

// Decoded is the result of decoding a raw peer packet: the wire type id and
// either a recognised message (StatusChange today) or, for unknown types,
// the opaque payload handed back unparsed.
type Decoded struct {
	TypeID  MessageType
	Message interface{}
	Raw     []byte
}

// Decode unframes a raw peer packet: {type u16}{length u32}{payload}.
// Recognised types are parsed into their concrete message struct; anything
// else is returned with Message == nil and Raw holding the payload bytes,
// so the strategy layer can treat it opaquely.
func Decode(raw []byte) (Decoded, error) {
	if len(raw) < HeaderSize {
		return Decoded{}, ErrShortFrame
	}
	typeID := MessageType(binary.BigEndian.Uint16(raw[0:2]))
	length := binary.BigEndian.Uint32(raw[2:6])
	if uint32(len(raw)-HeaderSize) < length {
		return Decoded{}, ErrShortFrame
	}
	payload := raw[HeaderSize : HeaderSize+int(length)]

	d := Decoded{TypeID: typeID, Raw: payload}
	switch typeID {
	case TypeStatusChange:
		msg, err := decodeStatusChange(payload)
		if err != nil {
			return Decoded{}, err
		}
		d.Message = msg
	default:
		// Unknown or not-yet-modelled type: caller treats Raw as opaque.
	}
	return d, nil
}

// Encode reframes a payload with the given type id, producing the bytes the
// interceptor expects back on the wire.
func Encode(typeID MessageType, payload []byte) []byte {
	out := make([]byte, HeaderSize+len(payload))
	binary.BigEndian.PutUint16(out[0:2], uint16(typeID))
	binary.BigEndian.PutUint32(out[2:6], uint32(len(payload)))
	copy(out[HeaderSize:], payload)
	return out
}

// statusChange wire layout: newStatus(4) newEvent(4) ledgerSeq(4)
// ledgerHash(32) ledgerHashPrevious(32) networkTime(8) firstSeq(4) lastSeq(4)
const statusChangeWireSize = 4 + 4 + 4 + 32 + 32 + 8 + 4 + 4

func decodeStatusChange(payload []byte) (*StatusChange, error) {
	if len(payload) < statusChangeWireSize {
		return nil, ErrShortFrame
	}
	off := 0
	readU32 := func() uint32 {
		v := binary.BigEndian.Uint32(payload[off : off+4])
		off += 4
		return v
	}
	readHash := func() []byte {
		h := make([]byte, 32)
		copy(h, payload[off:off+32])
		off += 32
		return h
	}

	s := &StatusChange{}
	s.NewStatus = NodeStatus(readU32())
	s.NewEvent = NodeEvent(readU32())
	s.LedgerSeq = readU32()
	s.LedgerHash = readHash()
	s.LedgerHashPrevious = readHash()
	s.NetworkTime = binary.BigEndian.Uint64(payload[off : off+8])
	off += 8
	s.FirstSeq = readU32()
	s.LastSeq = readU32()
	return s, nil
}

// EncodeStatusChange is the inverse of decodeStatusChange, used by tests and
// by strategies that synthesize status-change traffic.
func EncodeStatusChange(s *StatusChange) []byte {
	payload := make([]byte, statusChangeWireSize)
	off := 0
	writeU32 := func(v uint32) {
		binary.BigEndian.PutUint32(payload[off:off+4], v)
		off += 4
	}
	writeHash := func(h []byte) {
		copy(payload[off:off+32], h)
		off += 32
	}

	writeU32(uint32(s.NewStatus))
	writeU32(uint32(s.NewEvent))
	writeU32(s.LedgerSeq)
	writeHash(s.LedgerHash)
	writeHash(s.LedgerHashPrevious)
	binary.BigEndian.PutUint64(payload[off:off+8], s.NetworkTime)
	off += 8
	writeU32(s.FirstSeq)
	writeU32(s.LastSeq)

	return Encode(TypeStatusChange, payload)
}
