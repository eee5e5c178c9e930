package graph

import (
	"errors"
	"fmt"
	"iter"

	"github.com/RoaringBitmap/roaring/v2"
	"github.com/plus3/nodeattr/attr"
	"go.uber.org/zap"
)

// ErrNodeNotFound is returned when a node index is not part of the graph.
var ErrNodeNotFound = errors.New("no such node")

// Graph is a minimal node collection that owns a node attribute registry.
// Node indices are handed out densely and never reused; removing a node
// drops its values from every attribute.
type Graph struct {
	nodes  *roaring.Bitmap
	upper  attr.Index
	attrs  *attr.Registry
	logger *zap.Logger
}

// New creates an empty graph. The options configure the attribute registry.
func New(opts ...attr.Option) *Graph {
	attrs := attr.NewRegistry(opts...)
	return &Graph{
		nodes:  roaring.New(),
		attrs:  attrs,
		logger: attrs.Logger().Named("graph"),
	}
}

// AddNode adds a node and returns its index.
func (g *Graph) AddNode() attr.Index {
	i := g.upper
	g.upper++
	g.nodes.Add(uint32(i))
	return i
}

// AddNodes adds n nodes and returns the index of the first one.
func (g *Graph) AddNodes(n int) attr.Index {
	first := g.upper
	if n <= 0 {
		return first
	}
	g.upper += attr.Index(n)
	g.nodes.AddRange(uint64(first), uint64(g.upper))
	return first
}

// RemoveNode removes node i and invalidates its values in all node attributes.
func (g *Graph) RemoveNode(i attr.Index) error {
	if !g.nodes.CheckedRemove(uint32(i)) {
		return fmt.Errorf("%w: %d", ErrNodeNotFound, i)
	}
	g.attrs.InvalidateIndex(i)

	g.logger.Debug("node removed", zap.Uint32("node", uint32(i)))
	return nil
}

// HasNode reports whether node i exists.
func (g *Graph) HasNode(i attr.Index) bool {
	return g.nodes.Contains(uint32(i))
}

// NumberOfNodes returns the number of live nodes.
func (g *Graph) NumberOfNodes() int {
	return int(g.nodes.GetCardinality())
}

// UpperNodeIDBound returns one past the highest node index ever assigned.
func (g *Graph) UpperNodeIDBound() attr.Index {
	return g.upper
}

// Nodes returns an iterator over the live node indices in ascending order.
func (g *Graph) Nodes() iter.Seq[attr.Index] {
	return func(yield func(attr.Index) bool) {
		it := g.nodes.Iterator()
		for it.HasNext() {
			if !yield(attr.Index(it.Next())) {
				return
			}
		}
	}
}

// NodeAttributes returns the registry holding the graph's node attributes.
func (g *Graph) NodeAttributes() *attr.Registry {
	return g.attrs
}

// Close detaches all node attributes, invalidating their handles.
func (g *Graph) Close() {
	g.attrs.Close()
}
