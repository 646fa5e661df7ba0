package strategy

import (
	"testing"

	"github.com/diseb-lab/rocket/internal/codec"
	"github.com/diseb-lab/rocket/internal/network"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fourNodes() []network.ValidatorNode {
	nodes := make([]network.ValidatorNode, 4)
	for i := range nodes {
		nodes[i] = network.ValidatorNode{Peer: network.SocketAddress{Host: "127.0.0.1", Port: uint32(60000 + i)}}
	}
	return nodes
}

type recordingObserver struct {
	calls int
	last  struct {
		typeID         codec.MessageType
		fromIdx, toIdx int
	}
}

func (r *recordingObserver) Observe(typeID codec.MessageType, _ interface{}, fromIdx, toIdx int) {
	r.calls++
	r.last.typeID = typeID
	r.last.fromIdx = fromIdx
	r.last.toIdx = toIdx
}

type recordingLog struct {
	rows int
}

func (r *recordingLog) LogAction(network.Action, int, int, int, codec.MessageType, []byte, []byte) {
	r.rows++
}

// echoStrategy returns a fixed action for every packet, so tests can assert
// on auto-partition overriding it.
type echoStrategy struct {
	Core
	action network.Action
}

func (e *echoStrategy) Setup() {}

func (e *echoStrategy) HandlePacket(decoded codec.Decoded, fromIdx, toIdx int) ([]byte, network.Action) {
	return decoded.Raw, e.action
}

func TestDummyForwardsUnchanged(t *testing.T) {
	manager := network.NewManager(network.Options{})
	manager.UpdateNetwork(fourNodes())
	d := NewDummy(manager)

	raw := codec.Encode(codec.TypePing, []byte("hello"))
	out, action := d.Process(d, raw, 0, 1)
	assert.Equal(t, raw, out)
	assert.Equal(t, network.ActionForward, action)
}

func TestAutoPartitionOverridesActionWhenDisallowed(t *testing.T) {
	manager := network.NewManager(network.Options{})
	manager.UpdateNetwork(fourNodes())
	require.NoError(t, manager.DisconnectNodes(0, 1))

	obs := &recordingObserver{}
	logger := &recordingLog{}
	s := &echoStrategy{action: network.ActionForward}
	s.Core = NewCore(Options{AutoPartition: true, KeepActionLog: true}, manager, obs, logger)

	raw := codec.Encode(codec.TypePing, []byte("hello"))
	_, action := s.Process(s, raw, 0, 1)

	assert.Equal(t, network.ActionDrop, action)
	assert.Equal(t, 1, obs.calls)
	assert.Equal(t, 1, logger.rows)
}

func TestDecodeCacheIsConsultedOnRepeatedPayload(t *testing.T) {
	manager := network.NewManager(network.Options{})
	manager.UpdateNetwork(fourNodes())
	cache, err := codec.NewDecodeCache(16)
	require.NoError(t, err)

	s := &echoStrategy{action: network.ActionForward}
	s.Core = NewCoreWithDecodeCache(Options{}, manager, nil, nil, cache)

	raw := codec.Encode(codec.TypePing, []byte("hello"))
	_, _ = s.Process(s, raw, 0, 1)
	_, _ = s.Process(s, raw, 0, 2)

	hits, miss := cache.Stats()
	assert.Equal(t, int64(1), hits)
	assert.Equal(t, int64(1), miss)
}

func TestAutoParseIdenticalShortCircuitsSecondPacket(t *testing.T) {
	manager := network.NewManager(network.Options{AutoParseIdentical: true})
	manager.UpdateNetwork(fourNodes())

	s := &echoStrategy{action: network.Action(99)}
	s.Core = NewCore(Options{AutoParseIdentical: true}, manager, nil, nil)

	raw := codec.Encode(codec.TypePing, []byte("hello"))
	out1, action1 := s.Process(s, raw, 0, 1)
	assert.Equal(t, network.Action(99), action1)

	// Second identical payload hits the memoised decision, not HandlePacket,
	// even though HandlePacket would now report a different action.
	s.action = network.Action(7)
	out2, action2 := s.Process(s, raw, 0, 1)
	assert.Equal(t, out1, out2)
	assert.Equal(t, network.Action(99), action2)
}
