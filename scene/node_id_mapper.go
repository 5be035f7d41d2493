package scene

import (
	"github.com/gogpu/flatten"
	"github.com/gogpu/flatten/clip"
	"github.com/gogpu/flatten/displaylist"
	"github.com/gogpu/flatten/spatial"
)

// clipNode is the chain registered for a clip id and the number of chain
// nodes the clip item itself added on top of its parent.
type clipNode struct {
	chain clip.ChainID
	count int
}

// nodeIDMapper translates caller-stable display list ids into the indices
// allocated during this pass. Every id is mapped exactly once.
type nodeIDMapper struct {
	clips    map[displaylist.ClipID]clipNode
	spatials map[displaylist.SpatialID]spatial.NodeIndex
}

func newNodeIDMapper() *nodeIDMapper {
	return &nodeIDMapper{
		clips:    make(map[displaylist.ClipID]clipNode),
		spatials: make(map[displaylist.SpatialID]spatial.NodeIndex),
	}
}

// AddClipChain maps id to chain. count is the number of nodes the clip
// contributed; aliases register zero.
func (m *nodeIDMapper) AddClipChain(id displaylist.ClipID, chain clip.ChainID, count int) {
	if _, ok := m.clips[id]; ok {
		flatten.Faultf("scene.AddClipChain", "duplicate clip id %v", id)
	}
	m.clips[id] = clipNode{chain: chain, count: count}
}

// MapSpatialNode maps id to index.
func (m *nodeIDMapper) MapSpatialNode(id displaylist.SpatialID, index spatial.NodeIndex) {
	if _, ok := m.spatials[id]; ok {
		flatten.Faultf("scene.MapSpatialNode", "duplicate spatial id %v", id)
	}
	m.spatials[id] = index
}

// ClipChainID returns the chain mapped to id.
func (m *nodeIDMapper) ClipChainID(id displaylist.ClipID) clip.ChainID {
	return m.ClipNode(id).chain
}

// ClipNode returns the chain and node count mapped to id.
func (m *nodeIDMapper) ClipNode(id displaylist.ClipID) clipNode {
	n, ok := m.clips[id]
	if !ok {
		flatten.Faultf("scene.ClipNode", "unknown clip id %v", id)
	}
	return n
}

// SpatialNodeIndex returns the node mapped to id.
func (m *nodeIDMapper) SpatialNodeIndex(id displaylist.SpatialID) spatial.NodeIndex {
	idx, ok := m.spatials[id]
	if !ok {
		flatten.Faultf("scene.SpatialNodeIndex", "unknown spatial id %v", id)
	}
	return idx
}
