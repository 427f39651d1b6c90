package utils

import (
	"container/heap"
	"errors"
	"fmt"
	"slices"

	"github.com/GoVed/trafast/element"
	"gonum.org/v1/gonum/spatial/r3"
)

// ErrNoRoute is returned when the destination cannot be reached from the start.
var ErrNoRoute = errors.New("no route")

type frontierItem struct {
	id  int64
	g   float64
	f   float64
	seq int64
}

// frontier is a min-heap on f. Equal priorities pop in insertion order.
type frontier []frontierItem

func (q frontier) Len() int { return len(q) }
func (q frontier) Less(i, j int) bool {
	if q[i].f != q[j].f {
		return q[i].f < q[j].f
	}
	return q[i].seq < q[j].seq
}
func (q frontier) Swap(i, j int) { q[i], q[j] = q[j], q[i] }

func (q *frontier) Push(x any) { *q = append(*q, x.(frontierItem)) }

func (q *frontier) Pop() any {
	old := *q
	item := old[len(old)-1]
	*q = old[:len(old)-1]
	return item
}

// AStar plans a route from start to dest. The cost of stepping from one
// segment to the next is the gap between the end of the first and the start
// of the second, and the heuristic is the distance from a segment's end to
// the end of dest. The returned route begins with start and ends with dest.
func AStar(n *element.Network, start, dest int64) ([]int64, error) {
	if _, err := n.Segment(start); err != nil {
		return nil, fmt.Errorf("route start: %w", err)
	}
	target, err := n.Segment(dest)
	if err != nil {
		return nil, fmt.Errorf("route destination: %w", err)
	}

	h := func(id int64) float64 {
		return r3.Norm(r3.Sub(n.MustSegment(id).To(), target.To()))
	}

	var seq int64
	g := map[int64]float64{start: 0}
	parent := make(map[int64]int64)
	open := &frontier{{id: start, g: 0, f: h(start), seq: seq}}

	for open.Len() > 0 {
		cur := heap.Pop(open).(frontierItem)
		if cur.g > g[cur.id] {
			continue // superseded by a cheaper entry
		}
		if cur.id == dest {
			return reconstruct(parent, start, dest), nil
		}

		from := n.MustSegment(cur.id)
		for _, next := range from.Outgoing() {
			to, err := n.Segment(next)
			if err != nil {
				return nil, fmt.Errorf("segment %d: %w", cur.id, err)
			}
			cost := cur.g + r3.Norm(r3.Sub(to.From(), from.To()))
			if old, seen := g[next]; seen && cost >= old {
				continue
			}
			g[next] = cost
			parent[next] = cur.id
			seq++
			heap.Push(open, frontierItem{id: next, g: cost, f: cost + h(next), seq: seq})
		}
	}

	return nil, fmt.Errorf("from segment %d to %d: %w", start, dest, ErrNoRoute)
}

func reconstruct(parent map[int64]int64, start, dest int64) []int64 {
	route := []int64{dest}
	for cur := dest; cur != start; {
		cur = parent[cur]
		route = append(route, cur)
	}
	slices.Reverse(route)
	return route
}
