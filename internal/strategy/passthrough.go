package strategy

import (
	"github.com/diseb-lab/rocket/internal/codec"
	"github.com/diseb-lab/rocket/internal/network"
)

// Passthrough is the default strategy wired when no user-supplied strategy
// is configured: it forwards every packet unchanged and relies entirely on
// Core's auto-partition/auto-parse options for any actual fault injection.
// A real fuzzing session supplies its own Strategy implementation; this one
// exists so the controller is runnable out of the box.
type Passthrough struct {
	Core
}

// NewPassthrough builds a Passthrough strategy with the given options.
func NewPassthrough(opts Options, manager *network.Manager, observer Observer, actionLog ActionLog) *Passthrough {
	p := &Passthrough{}
	p.Core = NewCore(opts, manager, observer, actionLog)
	return p
}

// NewPassthroughWithDecodeCache is NewPassthrough with a decode cache
// installed in front of the packet pipeline's Decode calls.
func NewPassthroughWithDecodeCache(opts Options, manager *network.Manager, observer Observer, actionLog ActionLog, decodeCache *codec.DecodeCache) *Passthrough {
	p := &Passthrough{}
	p.Core = NewCoreWithDecodeCache(opts, manager, observer, actionLog, decodeCache)
	return p
}

func (p *Passthrough) Setup() {}

func (p *Passthrough) HandlePacket(decoded codec.Decoded, fromIdx, toIdx int) ([]byte, network.Action) {
	return codec.Encode(decoded.TypeID, decoded.Raw), network.ActionForward
}
