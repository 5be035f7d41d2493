package scene

import (
	"github.com/gogpu/flatten"
	"github.com/gogpu/flatten/spatial"
)

// referenceFrameMapper tracks the accumulated origin of stacking contexts
// inside the current reference frame. Each reference frame or iframe opens
// a scope that starts at zero; stacking contexts push offsets within it.
type referenceFrameMapper struct {
	scopes [][]flatten.Vector
}

// PushScope starts a new scope at a zero offset.
func (m *referenceFrameMapper) PushScope() {
	m.scopes = append(m.scopes, []flatten.Vector{{}})
}

// PopScope discards the current scope.
func (m *referenceFrameMapper) PopScope() {
	if len(m.scopes) == 0 {
		flatten.Faultf("scene.PopScope", "no offset scope")
	}
	m.scopes = m.scopes[:len(m.scopes)-1]
}

// PushOffset pushes the current offset plus v.
func (m *referenceFrameMapper) PushOffset(v flatten.Vector) {
	top := m.top()
	*top = append(*top, m.CurrentOffset().Add(v))
}

// PopOffset undoes the last PushOffset.
func (m *referenceFrameMapper) PopOffset() {
	top := m.top()
	if len(*top) <= 1 {
		flatten.Faultf("scene.PopOffset", "no offset to pop")
	}
	*top = (*top)[:len(*top)-1]
}

// CurrentOffset returns the top offset of the top scope.
func (m *referenceFrameMapper) CurrentOffset() flatten.Vector {
	top := m.top()
	return (*top)[len(*top)-1]
}

// Depth returns the number of open scopes.
func (m *referenceFrameMapper) Depth() int {
	return len(m.scopes)
}

func (m *referenceFrameMapper) top() *[]flatten.Vector {
	if len(m.scopes) == 0 {
		flatten.Faultf("scene.referenceFrameMapper", "no offset scope")
	}
	return &m.scopes[len(m.scopes)-1]
}

// scrollOffsetMapper memoizes the external scroll offset of the last
// queried node. Consecutive items almost always share a spatial node.
type scrollOffsetMapper struct {
	node   spatial.NodeIndex
	offset flatten.Vector
	valid  bool
}

// ExternalScrollOffset returns the external scroll offset of node.
func (m *scrollOffsetMapper) ExternalScrollOffset(tree SpatialTree, node spatial.NodeIndex) flatten.Vector {
	if !m.valid || m.node != node {
		m.node = node
		m.offset = tree.ExternalScrollOffset(node)
		m.valid = true
	}
	return m.offset
}
