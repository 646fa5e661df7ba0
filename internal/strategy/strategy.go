// Package strategy routes decoded peer-to-peer packets to user mutation
// logic and to the iteration controller's observers, applying whatever
// auto-partition and auto-parse memoisation the strategy opted into.
package strategy

import (
	"log"

	"github.com/diseb-lab/rocket/internal/codec"
	"github.com/diseb-lab/rocket/internal/network"
)

// Observer is notified of every decoded packet after a decision has been
// made, so the iteration controller can watch for ledger-validation
// progress without taking the strategy's own locks.
type Observer interface {
	Observe(typeID codec.MessageType, msg interface{}, fromIdx, toIdx int)
}

// ActionLog receives one row per decision when KeepActionLog is enabled.
type ActionLog interface {
	LogAction(action network.Action, sendAmount int, fromIdx, toIdx int, messageType codec.MessageType, original, mutated []byte)
}

// Strategy is the capability every concrete fuzzing strategy must provide.
// Setup is called once, after the network manager's node list is installed
// and before any packet can arrive; HandlePacket is the user's actual
// mutation logic, invoked only when no memoisation short-circuit applies.
type Strategy interface {
	Setup()
	HandlePacket(decoded codec.Decoded, fromIdx, toIdx int) ([]byte, network.Action)
}

// Options mirrors the boolean construction options a strategy can opt into.
type Options struct {
	AutoPartition      bool
	AutoParseIdentical bool
	AutoParseSubsets   bool
	KeepActionLog      bool
}

// Core is the embeddable base every concrete strategy composes with instead
// of inheriting from: it owns the shared network manager and implements the
// eight-step packet pipeline common to every strategy, leaving only
// HandlePacket and Setup to the concrete type.
type Core struct {
	Opts     Options
	Manager  *network.Manager
	Observer Observer
	Log      ActionLog

	// decodeCache memoises Decode results across repeated broadcasts of the
	// same payload to many receivers. Nil is valid: Process falls back to an
	// unconditional codec.Decode call.
	decodeCache *codec.DecodeCache
}

// NewCore builds a Core ready to be embedded by a concrete strategy.
func NewCore(opts Options, manager *network.Manager, observer Observer, actionLog ActionLog) Core {
	return Core{Opts: opts, Manager: manager, Observer: observer, Log: actionLog}
}

// NewCoreWithDecodeCache is NewCore with a decode cache sitting in front of
// every codec.Decode call, so the same payload broadcast to many receivers
// is decoded once.
func NewCoreWithDecodeCache(opts Options, manager *network.Manager, observer Observer, actionLog ActionLog, decodeCache *codec.DecodeCache) Core {
	c := NewCore(opts, manager, observer, actionLog)
	c.decodeCache = decodeCache
	return c
}

// Process runs the full decode-decide-log pipeline for one raw packet. self
// is the concrete strategy embedding this Core, since Go composition gives
// Process no way to call HandlePacket on itself otherwise.
func (c *Core) Process(self Strategy, raw []byte, fromIdx, toIdx int) ([]byte, network.Action) {
	decoded, err := c.decode(raw)
	if err != nil {
		// Malformed frame: forward unchanged rather than guessing at intent.
		return raw, network.ActionForward
	}

	var out []byte
	var action network.Action
	memoised := false

	if c.Opts.AutoParseIdentical {
		if hit, data, act, err := c.Manager.CheckPreviousMessage(fromIdx, toIdx, decoded.Raw); err == nil && hit {
			out, action, memoised = data, act, true
		}
	}
	if !memoised && c.Opts.AutoParseSubsets {
		if hit, data, act, err := c.Manager.CheckSubsets(fromIdx, toIdx, decoded.Raw); err == nil && hit {
			out, action, memoised = data, act, true
		}
	}
	if !memoised {
		out, action = self.HandlePacket(decoded, fromIdx, toIdx)
	}

	if c.Opts.AutoPartition {
		if allowed, err := c.Manager.CheckCommunication(fromIdx, toIdx); err == nil && !allowed {
			action = network.ActionDrop
		}
	}

	if c.Opts.AutoParseIdentical {
		if err := c.Manager.SetMessageAction(fromIdx, toIdx, decoded.Raw, out, action); err != nil {
			log.Printf("strategy: failed to memoise decision for %d->%d: %v", fromIdx, toIdx, err)
		}
	}

	if c.Observer != nil {
		c.Observer.Observe(decoded.TypeID, decoded.Message, fromIdx, toIdx)
	}

	if c.Opts.KeepActionLog && c.Log != nil {
		c.Log.LogAction(action, len(out), fromIdx, toIdx, decoded.TypeID, decoded.Raw, out)
	}

	return out, action
}

// decode resolves raw through the decode cache when one is configured,
// falling back to a direct codec.Decode when it is not (or on a miss).
func (c *Core) decode(raw []byte) (codec.Decoded, error) {
	if c.decodeCache == nil {
		return codec.Decode(raw)
	}
	digest := codec.Digest(raw)
	if decoded, ok := c.decodeCache.Get(digest); ok {
		return decoded, nil
	}
	decoded, err := codec.Decode(raw)
	if err != nil {
		return decoded, err
	}
	c.decodeCache.Put(digest, decoded)
	return decoded, nil
}
