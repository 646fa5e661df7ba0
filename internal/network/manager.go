package network

import (
	"bytes"
	"sync"
)

// PrevAction records the last (original, mutated) payload pair the manager
// saw for a given (sender, receiver) and the action returned for it. A
// freshly initialised entry has Action == -1, meaning "no prior decision".
type PrevAction struct {
	Initial []byte
	Final   []byte
	Action  int32
}

// Options configures which memoisation features a Manager enforces. They
// mirror the strategy construction options of the same name: the manager
// itself refuses SetMessageAction/CheckPreviousMessage/subset operations
// when the corresponding option is off, so a strategy cannot silently rely
// on memoisation it never opted into.
type Options struct {
	AutoParseIdentical bool
	AutoParseSubsets   bool
}

// Manager owns the communication matrix, the per-(src,dst) memoisation
// table, and the subset-broadcast memoisation table for one validator set.
// All operations are safe for concurrent use: packets for distinct (src,dst)
// pairs arrive on independent RPC worker goroutines.
type Manager struct {
	mu   sync.RWMutex
	opts Options

	nodes      []ValidatorNode
	portToIdx  map[uint32]int
	comm       [][]bool
	prevAction [][]PrevAction
	subsets    map[int][][]int
}

// NewManager builds an empty Manager. UpdateNetwork must be called before
// any other operation references node indices.
func NewManager(opts Options) *Manager {
	return &Manager{
		opts:      opts,
		portToIdx: make(map[uint32]int),
		subsets:   make(map[int][][]int),
	}
}

// UpdateNetwork installs a new validator set, replacing the communication
// matrix, prev-action matrix, and subset memoisation atomically. Indices are
// assigned by position in nodes. Callers passing the same node list repeatedly
// (idempotent refresh) still get freshly reset matrices.
func (m *Manager) UpdateNetwork(nodes []ValidatorNode) {
	m.mu.Lock()
	defer m.mu.Unlock()

	n := len(nodes)
	m.nodes = append([]ValidatorNode(nil), nodes...)
	m.portToIdx = make(map[uint32]int, n)
	for i, node := range nodes {
		m.portToIdx[node.Peer.Port] = i
	}

	m.comm = make([][]bool, n)
	m.prevAction = make([][]PrevAction, n)
	for i := 0; i < n; i++ {
		m.comm[i] = make([]bool, n)
		m.prevAction[i] = make([]PrevAction, n)
		for j := 0; j < n; j++ {
			if i == j {
				continue
			}
			m.comm[i][j] = true
			m.prevAction[i][j] = PrevAction{Initial: []byte{}, Final: []byte{}, Action: -1}
		}
	}
	m.subsets = make(map[int][][]int, n)
	for i := 0; i < n; i++ {
		m.subsets[i] = [][]int{}
	}
}

// NodeCount returns the number of validators currently installed.
func (m *Manager) NodeCount() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.nodes)
}

// IndexForPort returns the node index whose peer port is port.
func (m *Manager) IndexForPort(port uint32) (int, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	idx, ok := m.portToIdx[port]
	return idx, ok
}

func (m *Manager) checkRange(i, j int) error {
	n := len(m.nodes)
	if i < 0 || i >= n || j < 0 || j >= n {
		return ErrIndexOutOfRange
	}
	if i == j {
		return ErrSelfEdge
	}
	return nil
}

// PartitionNetwork sets M[i][j] true iff i and j share a part; it requires
// parts to be a partition of exactly {0..n-1}.
func (m *Manager) PartitionNetwork(parts [][]int) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	n := len(m.nodes)
	seen := make([]bool, n)
	for _, part := range parts {
		for _, idx := range part {
			if idx < 0 || idx >= n || seen[idx] {
				return ErrBadPartition
			}
			seen[idx] = true
		}
	}
	for _, s := range seen {
		if !s {
			return ErrBadPartition
		}
	}

	partOf := make([]int, n)
	for p, part := range parts {
		for _, idx := range part {
			partOf[idx] = p
		}
	}
	for i := 0; i < n; i++ {
		for j := 0; j < n; j++ {
			if i == j {
				m.comm[i][j] = false
				continue
			}
			m.comm[i][j] = partOf[i] == partOf[j]
		}
	}
	return nil
}

// ResetCommunications restores full connectivity, equivalent to
// PartitionNetwork with a single part containing every node.
func (m *Manager) ResetCommunications() {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := len(m.nodes)
	for i := 0; i < n; i++ {
		for j := 0; j < n; j++ {
			m.comm[i][j] = i != j
		}
	}
}

// ConnectNodes enables communication symmetrically between i and j.
func (m *Manager) ConnectNodes(i, j int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.checkRange(i, j); err != nil {
		return err
	}
	m.comm[i][j] = true
	m.comm[j][i] = true
	return nil
}

// DisconnectNodes disables communication symmetrically between i and j.
func (m *Manager) DisconnectNodes(i, j int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.checkRange(i, j); err != nil {
		return err
	}
	m.comm[i][j] = false
	m.comm[j][i] = false
	return nil
}

// CheckCommunication reports whether i may currently send to j.
func (m *Manager) CheckCommunication(i, j int) (bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if err := m.checkRange(i, j); err != nil {
		return false, err
	}
	return m.comm[i][j], nil
}

// SetMessageAction records the decision made for a (src,dst) pair so a
// later identical payload can short-circuit through CheckPreviousMessage.
func (m *Manager) SetMessageAction(i, j int, original, mutated []byte, action Action) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if !m.opts.AutoParseIdentical {
		return ErrAutoParseIdenticalDisabled
	}
	if err := m.checkRange(i, j); err != nil {
		return err
	}
	m.prevAction[i][j] = PrevAction{
		Initial: append([]byte(nil), original...),
		Final:   append([]byte(nil), mutated...),
		Action:  int32(action),
	}
	return nil
}

// CheckPreviousMessage looks up whether data matches the last payload seen
// for (i,j). On a hit it returns the stored mutation and action; on a miss
// it returns data unchanged with ActionForward, never an error sentinel,
// so callers can always forward the result to the wire unconditionally.
func (m *Manager) CheckPreviousMessage(i, j int, data []byte) (hit bool, out []byte, action Action, err error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if !m.opts.AutoParseIdentical {
		return false, nil, 0, ErrAutoParseIdenticalDisabled
	}
	if err := m.checkRange(i, j); err != nil {
		return false, nil, 0, err
	}
	prev := m.prevAction[i][j]
	if prev.Action != -1 && bytes.Equal(prev.Initial, data) {
		return true, prev.Final, Action(prev.Action), nil
	}
	return false, data, ActionForward, nil
}

// SetSubsetsDict installs the whole subset-broadcast table at once,
// replacing any previous entries. Every sender not present in d is reset to
// an empty subset list.
func (m *Manager) SetSubsetsDict(d map[int][][]int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if !m.opts.AutoParseSubsets {
		return ErrAutoParseSubsetsDisabled
	}
	n := len(m.nodes)
	for sender, groups := range d {
		if sender < 0 || sender >= n {
			return ErrIndexOutOfRange
		}
		for _, group := range groups {
			for _, recv := range group {
				if recv < 0 || recv >= n {
					return ErrIndexOutOfRange
				}
				if recv == sender {
					return ErrSubsetContainsSender
				}
			}
		}
	}
	normalised := make(map[int][][]int, n)
	for i := 0; i < n; i++ {
		normalised[i] = [][]int{}
	}
	for sender, groups := range d {
		normalised[sender] = groups
	}
	m.subsets = normalised
	return nil
}

// SetSubsetsDictEntry replaces the subset groups registered for a single
// sender, leaving every other sender's entry untouched.
func (m *Manager) SetSubsetsDictEntry(sender int, groups [][]int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if !m.opts.AutoParseSubsets {
		return ErrAutoParseSubsetsDisabled
	}
	if sender < 0 || sender >= len(m.nodes) {
		return ErrIndexOutOfRange
	}
	n := len(m.nodes)
	for _, group := range groups {
		for _, recv := range group {
			if recv < 0 || recv >= n {
				return ErrIndexOutOfRange
			}
			if recv == sender {
				return ErrSubsetContainsSender
			}
		}
	}
	m.subsets[sender] = groups
	return nil
}

// CheckSubsets looks for a prior decision made for any other member of a
// subset group registered under sender that also contains receiver. A match
// propagates the stored mutation/action from the matching member's own
// (sender, member) entry; nested groups are independent, so a hit in one
// group never leaks into another.
func (m *Manager) CheckSubsets(sender, receiver int, data []byte) (hit bool, out []byte, action Action, err error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if !m.opts.AutoParseSubsets {
		return false, nil, 0, ErrAutoParseSubsetsDisabled
	}
	if sender < 0 || sender >= len(m.nodes) || receiver < 0 || receiver >= len(m.nodes) {
		return false, nil, 0, ErrIndexOutOfRange
	}

	for _, group := range m.subsets[sender] {
		inGroup := false
		for _, recv := range group {
			if recv == receiver {
				inGroup = true
				break
			}
		}
		if !inGroup {
			continue
		}
		for _, member := range group {
			prev := m.prevAction[sender][member]
			if prev.Action != -1 && bytes.Equal(prev.Initial, data) {
				return true, prev.Final, Action(prev.Action), nil
			}
		}
	}
	return false, data, ActionForward, nil
}
