package network

import "errors"

var (
	// ErrSelfEdge is returned by any operation that would touch a
	// diagonal entry of the communication or prev-action matrix.
	ErrSelfEdge = errors.New("network: src and dst must differ")
	// ErrIndexOutOfRange is returned when a node index is outside
	// 0..n-1 for the currently installed validator set.
	ErrIndexOutOfRange = errors.New("network: index out of range")
	// ErrBadPartition is returned by PartitionNetwork when the supplied
	// parts do not cover exactly {0..n-1} with no duplicates.
	ErrBadPartition = errors.New("network: partition does not cover every node exactly once")
	// ErrAutoParseIdenticalDisabled is returned by SetMessageAction and
	// CheckPreviousMessage when the manager was not configured for
	// identical-message memoisation.
	ErrAutoParseIdenticalDisabled = errors.New("network: auto-parse-identical is disabled")
	// ErrAutoParseSubsetsDisabled is returned by subset operations when
	// the manager was not configured for subset memoisation.
	ErrAutoParseSubsetsDisabled = errors.New("network: auto-parse-subsets is disabled")
	// ErrSubsetContainsSender is returned when a subset entry lists its
	// own sender as a receiver.
	ErrSubsetContainsSender = errors.New("network: subset entry must not contain its own sender")
)
