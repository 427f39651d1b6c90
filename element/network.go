package element

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/graph"
	"gonum.org/v1/gonum/graph/iterator"
	"gonum.org/v1/gonum/graph/simple"
	"gonum.org/v1/gonum/spatial/r3"
)

// Network is the road graph. Segment IDs are dense indices, so a segment's
// ID equals its position in the network.
//
// Network implements graph.WeightedDirected with segments as nodes and an
// edge from u to v whenever v is listed as outgoing of u. The weight of that
// edge is the gap between u's end and v's start plus v's length, i.e. the
// distance driven to get through v.
type Network struct {
	segments []*Segment
}

var _ graph.WeightedDirected = (*Network)(nil)

// NewNetwork creates an empty network
func NewNetwork() *Network {
	return &Network{}
}

// AddSegment appends a segment. Its ID must be the next free index.
func (n *Network) AddSegment(s *Segment) error {
	if s.ID() != int64(len(n.segments)) {
		return fmt.Errorf("segment %d added at index %d: %w", s.ID(), len(n.segments), ErrSegmentOutOfRange)
	}
	n.segments = append(n.segments, s)
	return nil
}

// Len returns the number of segments
func (n *Network) Len() int {
	return len(n.segments)
}

// Segment returns the segment with the given ID.
func (n *Network) Segment(id int64) (*Segment, error) {
	if id < 0 || id >= int64(len(n.segments)) {
		return nil, fmt.Errorf("segment %d of %d: %w", id, len(n.segments), ErrSegmentOutOfRange)
	}
	return n.segments[id], nil
}

// MustSegment is Segment for IDs already known to be valid, such as those of a
// validated route. It panics on an unknown ID.
func (n *Network) MustSegment(id int64) *Segment {
	s, err := n.Segment(id)
	if err != nil {
		panic(err)
	}
	return s
}

// Segments returns all segments in ID order
func (n *Network) Segments() []*Segment {
	result := make([]*Segment, len(n.segments))
	copy(result, n.segments)
	return result
}

// Validate checks that every adjacency reference names an existing segment.
func (n *Network) Validate() error {
	for _, s := range n.segments {
		for _, id := range s.outgoing {
			if !n.has(id) {
				return fmt.Errorf("segment %d lists outgoing %d: %w", s.id, id, ErrSegmentOutOfRange)
			}
		}
		for _, id := range s.incoming {
			if !n.has(id) {
				return fmt.Errorf("segment %d lists incoming %d: %w", s.id, id, ErrSegmentOutOfRange)
			}
		}
	}
	return nil
}

// Gap is the straight-line distance from the end of u to the start of v.
func (n *Network) Gap(u, v int64) (float64, error) {
	su, err := n.Segment(u)
	if err != nil {
		return 0, err
	}
	sv, err := n.Segment(v)
	if err != nil {
		return 0, err
	}
	return r3.Norm(r3.Sub(sv.from, su.to)), nil
}

// Place returns the point at position along the segment.
func (n *Network) Place(id int64, position float64) (r3.Vec, error) {
	s, err := n.Segment(id)
	if err != nil {
		return r3.Vec{}, err
	}
	return s.PointAt(position), nil
}

// ClearObstacles drops every trailing entry, keeping the end-of-segment ones.
func (n *Network) ClearObstacles() {
	for _, s := range n.segments {
		s.obstacles = NewObstacleMap(s.length, s.endSpeedLimit)
	}
}

func (n *Network) has(id int64) bool {
	return id >= 0 && id < int64(len(n.segments))
}

// Node returns the segment with the given ID, or nil.
func (n *Network) Node(id int64) graph.Node {
	if !n.has(id) {
		return nil
	}
	return n.segments[id]
}

// Nodes returns all segments in ID order
func (n *Network) Nodes() graph.Nodes {
	if len(n.segments) == 0 {
		return graph.Empty
	}
	nodes := make([]graph.Node, len(n.segments))
	for i, s := range n.segments {
		nodes[i] = s
	}
	return iterator.NewOrderedNodes(nodes)
}

// From returns the outgoing segments of id
func (n *Network) From(id int64) graph.Nodes {
	if !n.has(id) {
		return graph.Empty
	}
	var nodes []graph.Node
	seen := make(map[int64]struct{})
	for _, out := range n.segments[id].outgoing {
		if _, ok := seen[out]; ok || !n.has(out) {
			continue
		}
		seen[out] = struct{}{}
		nodes = append(nodes, n.segments[out])
	}
	if len(nodes) == 0 {
		return graph.Empty
	}
	return iterator.NewOrderedNodes(nodes)
}

// To returns the segments that list id as outgoing
func (n *Network) To(id int64) graph.Nodes {
	if !n.has(id) {
		return graph.Empty
	}
	var nodes []graph.Node
	for _, s := range n.segments {
		if n.HasEdgeFromTo(s.id, id) {
			nodes = append(nodes, s)
		}
	}
	if len(nodes) == 0 {
		return graph.Empty
	}
	return iterator.NewOrderedNodes(nodes)
}

// HasEdgeBetween reports whether an edge runs between x and y in either direction
func (n *Network) HasEdgeBetween(xid, yid int64) bool {
	return n.HasEdgeFromTo(xid, yid) || n.HasEdgeFromTo(yid, xid)
}

// HasEdgeFromTo reports whether v is listed as outgoing of u
func (n *Network) HasEdgeFromTo(uid, vid int64) bool {
	if !n.has(uid) || !n.has(vid) {
		return false
	}
	for _, out := range n.segments[uid].outgoing {
		if out == vid {
			return true
		}
	}
	return false
}

// Edge returns the edge from u to v, or nil
func (n *Network) Edge(uid, vid int64) graph.Edge {
	return n.WeightedEdge(uid, vid)
}

// WeightedEdge returns the weighted edge from u to v, or nil
func (n *Network) WeightedEdge(uid, vid int64) graph.WeightedEdge {
	if !n.HasEdgeFromTo(uid, vid) {
		return nil
	}
	w, _ := n.Weight(uid, vid)
	return simple.WeightedEdge{F: n.segments[uid], T: n.segments[vid], W: w}
}

// Weight returns the cost of driving from the end of x through y.
// Weight(x, x) is zero and unconnected pairs are +Inf.
func (n *Network) Weight(xid, yid int64) (w float64, ok bool) {
	if !n.has(xid) || !n.has(yid) {
		return math.Inf(1), false
	}
	if xid == yid && !n.HasEdgeFromTo(xid, yid) {
		return 0, true
	}
	if !n.HasEdgeFromTo(xid, yid) {
		return math.Inf(1), false
	}
	gap := r3.Norm(r3.Sub(n.segments[yid].from, n.segments[xid].to))
	return gap + n.segments[yid].length, true
}
