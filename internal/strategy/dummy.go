package strategy

import (
	"github.com/diseb-lab/rocket/internal/codec"
	"github.com/diseb-lab/rocket/internal/network"
)

// Dummy is a no-op strategy used in tests and as a minimal example of
// composing Core: it forwards every packet unchanged and opts out of every
// automatic feature.
type Dummy struct {
	Core
}

// NewDummy builds a Dummy strategy wired to manager with every automatic
// feature disabled.
func NewDummy(manager *network.Manager) *Dummy {
	d := &Dummy{}
	d.Core = NewCore(Options{}, manager, nil, nil)
	return d
}

func (d *Dummy) Setup() {}

func (d *Dummy) HandlePacket(decoded codec.Decoded, fromIdx, toIdx int) ([]byte, network.Action) {
	return codec.Encode(decoded.TypeID, decoded.Raw), network.ActionForward
}
