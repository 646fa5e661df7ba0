package network

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fourNodes() []ValidatorNode {
	nodes := make([]ValidatorNode, 4)
	for i := range nodes {
		nodes[i] = ValidatorNode{Peer: SocketAddress{Host: "127.0.0.1", Port: uint32(60000 + i)}}
	}
	return nodes
}

func TestUpdateNetworkInitialisesFullyConnected(t *testing.T) {
	m := NewManager(Options{})
	m.UpdateNetwork(fourNodes())

	for i := 0; i < 4; i++ {
		for j := 0; j < 4; j++ {
			if i == j {
				continue
			}
			ok, err := m.CheckCommunication(i, j)
			require.NoError(t, err)
			assert.True(t, ok)
		}
	}
}

func TestCheckCommunicationSelfEdgeErrors(t *testing.T) {
	m := NewManager(Options{})
	m.UpdateNetwork(fourNodes())

	_, err := m.CheckCommunication(1, 1)
	assert.ErrorIs(t, err, ErrSelfEdge)
}

func TestConnectDisconnectAreSymmetric(t *testing.T) {
	m := NewManager(Options{})
	m.UpdateNetwork(fourNodes())

	require.NoError(t, m.DisconnectNodes(0, 1))
	ok, _ := m.CheckCommunication(0, 1)
	assert.False(t, ok)
	ok, _ = m.CheckCommunication(1, 0)
	assert.False(t, ok)

	require.NoError(t, m.ConnectNodes(0, 1))
	ok, _ = m.CheckCommunication(0, 1)
	assert.True(t, ok)
	ok, _ = m.CheckCommunication(1, 0)
	assert.True(t, ok)
}

func TestPartitionNetworkFormations(t *testing.T) {
	m := NewManager(Options{})
	m.UpdateNetwork(fourNodes())

	require.NoError(t, m.PartitionNetwork([][]int{{0, 1}, {2, 3}}))
	ok, _ := m.CheckCommunication(0, 1)
	assert.True(t, ok)
	ok, _ = m.CheckCommunication(0, 2)
	assert.False(t, ok)
	ok, _ = m.CheckCommunication(2, 3)
	assert.True(t, ok)
}

func TestPartitionNetworkRejectsMissingIndex(t *testing.T) {
	m := NewManager(Options{})
	m.UpdateNetwork(fourNodes())

	err := m.PartitionNetwork([][]int{{0, 1}, {2}})
	assert.ErrorIs(t, err, ErrBadPartition)
}

func TestPartitionNetworkRejectsDuplicateIndex(t *testing.T) {
	m := NewManager(Options{})
	m.UpdateNetwork(fourNodes())

	err := m.PartitionNetwork([][]int{{0, 1, 1}, {2, 3}})
	assert.ErrorIs(t, err, ErrBadPartition)
}

func TestResetCommunicationsRestoresFullConnectivity(t *testing.T) {
	m := NewManager(Options{})
	m.UpdateNetwork(fourNodes())
	require.NoError(t, m.PartitionNetwork([][]int{{0, 1}, {2, 3}}))

	m.ResetCommunications()
	ok, _ := m.CheckCommunication(0, 2)
	assert.True(t, ok)
}

func TestSetMessageActionRequiresOptionEnabled(t *testing.T) {
	m := NewManager(Options{AutoParseIdentical: false})
	m.UpdateNetwork(fourNodes())

	err := m.SetMessageAction(0, 1, []byte("a"), []byte("b"), ActionForward)
	assert.ErrorIs(t, err, ErrAutoParseIdenticalDisabled)
}

func TestCheckPreviousMessageHitAndMiss(t *testing.T) {
	m := NewManager(Options{AutoParseIdentical: true})
	m.UpdateNetwork(fourNodes())

	hit, out, action, err := m.CheckPreviousMessage(0, 1, []byte("payload"))
	require.NoError(t, err)
	assert.False(t, hit)
	assert.Equal(t, []byte("payload"), out)
	assert.Equal(t, ActionForward, action)

	require.NoError(t, m.SetMessageAction(0, 1, []byte("payload"), []byte("mutated"), Action(42)))

	hit, out, action, err = m.CheckPreviousMessage(0, 1, []byte("payload"))
	require.NoError(t, err)
	assert.True(t, hit)
	assert.Equal(t, []byte("mutated"), out)
	assert.Equal(t, Action(42), action)

	hit, out, action, err = m.CheckPreviousMessage(0, 1, []byte("other"))
	require.NoError(t, err)
	assert.False(t, hit)
	assert.Equal(t, []byte("other"), out)
	assert.Equal(t, ActionForward, action)
}

func TestSubsetsDictRejectsSenderInOwnSubset(t *testing.T) {
	m := NewManager(Options{AutoParseSubsets: true})
	m.UpdateNetwork(fourNodes())

	err := m.SetSubsetsDictEntry(0, [][]int{{0, 1}})
	assert.ErrorIs(t, err, ErrSubsetContainsSender)
}

func TestCheckSubsetsPropagatesWithinGroupOnly(t *testing.T) {
	m := NewManager(Options{AutoParseIdentical: true, AutoParseSubsets: true})
	m.UpdateNetwork(fourNodes())

	require.NoError(t, m.SetSubsetsDictEntry(0, [][]int{{1, 2}, {3}}))
	require.NoError(t, m.SetMessageAction(0, 1, []byte("payload"), []byte("mutated"), Action(7)))

	hit, out, action, err := m.CheckSubsets(0, 2, []byte("payload"))
	require.NoError(t, err)
	assert.True(t, hit)
	assert.Equal(t, []byte("mutated"), out)
	assert.Equal(t, Action(7), action)

	hit, out, action, err = m.CheckSubsets(0, 3, []byte("payload"))
	require.NoError(t, err)
	assert.False(t, hit)
	assert.Equal(t, []byte("payload"), out)
	assert.Equal(t, ActionForward, action)
}

func TestUpdateNetworkResetsMemoisation(t *testing.T) {
	m := NewManager(Options{AutoParseIdentical: true})
	m.UpdateNetwork(fourNodes())
	require.NoError(t, m.SetMessageAction(0, 1, []byte("payload"), []byte("mutated"), Action(7)))

	m.UpdateNetwork(fourNodes())
	hit, _, _, err := m.CheckPreviousMessage(0, 1, []byte("payload"))
	require.NoError(t, err)
	assert.False(t, hit)
}
