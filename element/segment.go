package element

import (
	"gonum.org/v1/gonum/spatial/r3"
)

// Segment is a directed road piece between two points in space.
type Segment struct {
	id            int64
	from          r3.Vec
	to            r3.Vec
	length        float64
	lanes         int
	speedLimit    float64
	endSpeedLimit float64
	incoming      []int64
	outgoing      []int64
	obstacles     *ObstacleMap
}

// NewSegment creates a segment. Its length is the Euclidean distance between
// from and to, and its obstacle map starts with the end-of-segment entry
// holding endSpeedLimit.
func NewSegment(id int64, from, to r3.Vec, lanes int, speedLimit float64, incoming, outgoing []int64, endSpeedLimit float64) *Segment {
	length := r3.Norm(r3.Sub(to, from))
	return &Segment{
		id:            id,
		from:          from,
		to:            to,
		length:        length,
		lanes:         lanes,
		speedLimit:    speedLimit,
		endSpeedLimit: endSpeedLimit,
		incoming:      append([]int64(nil), incoming...),
		outgoing:      append([]int64(nil), outgoing...),
		obstacles:     NewObstacleMap(length, endSpeedLimit),
	}
}

// ID returns the segment ID
func (s *Segment) ID() int64 {
	return s.id
}

// From returns the start point
func (s *Segment) From() r3.Vec {
	return s.from
}

// To returns the end point
func (s *Segment) To() r3.Vec {
	return s.to
}

// Length returns the distance between start and end
func (s *Segment) Length() float64 {
	return s.length
}

// Lanes returns the lane count
func (s *Segment) Lanes() int {
	return s.lanes
}

// SpeedLimit returns the maximum speed on the segment
func (s *Segment) SpeedLimit() float64 {
	return s.speedLimit
}

// EndSpeedLimit returns the speed a vehicle may carry over the segment end
func (s *Segment) EndSpeedLimit() float64 {
	return s.endSpeedLimit
}

// Incoming returns the IDs of the segments that feed into this one
func (s *Segment) Incoming() []int64 {
	result := make([]int64, len(s.incoming))
	copy(result, s.incoming)
	return result
}

// Outgoing returns the IDs of the segments reachable from the end of this one
func (s *Segment) Outgoing() []int64 {
	result := make([]int64, len(s.outgoing))
	copy(result, s.outgoing)
	return result
}

// Obstacles returns the segment's obstacle map
func (s *Segment) Obstacles() *ObstacleMap {
	return s.obstacles
}

// PointAt interpolates linearly between start and end. Positions outside
// [0, length] extrapolate along the same line.
func (s *Segment) PointAt(position float64) r3.Vec {
	if s.length == 0 {
		return s.from
	}
	return r3.Add(s.from, r3.Scale(position/s.length, r3.Sub(s.to, s.from)))
}
