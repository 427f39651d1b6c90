package utils

import (
	"fmt"
	"math"

	"github.com/GoVed/trafast/config"
	"github.com/GoVed/trafast/element"
	"golang.org/x/exp/rand"
	"gonum.org/v1/gonum/graph"
	"gonum.org/v1/gonum/graph/path"
	"gonum.org/v1/gonum/graph/topo"
	"gonum.org/v1/gonum/graph/traverse"
)

// PathFinder plans a route from origin to destination. rng is only consulted
// by finders that choose among several candidates.
type PathFinder func(n *element.Network, origin, destination int64, rng *rand.Rand) ([]int64, error)

// GetPathFinder returns the path finder selected by the configuration
func GetPathFinder(cfg *config.Config) PathFinder {
	switch cfg.Path.PathMethod {
	case "shortest":
		return func(n *element.Network, origin, destination int64, _ *rand.Rand) ([]int64, error) {
			route, _, err := ShortestPath(n, origin, destination)
			return route, err
		}
	case "kShortest":
		k := cfg.Path.KShortest
		return func(n *element.Network, origin, destination int64, rng *rand.Rand) ([]int64, error) {
			route, _, err := ChooseFromKShortestPaths(n, origin, destination, k.K, k.SelectionStrategy, k.LengthWeightFactor, rng)
			return route, err
		}
	default:
		return func(n *element.Network, origin, destination int64, _ *rand.Rand) ([]int64, error) {
			return AStar(n, origin, destination)
		}
	}
}

// ShortestPath returns the route with the least driven distance.
func ShortestPath(n *element.Network, origin, destination int64) ([]int64, float64, error) {
	from, to, err := endpoints(n, origin, destination)
	if err != nil {
		return nil, 0, err
	}

	shortest := path.DijkstraFrom(from, n)
	nodes, weight := shortest.To(to.ID())
	if len(nodes) == 0 {
		return nil, 0, fmt.Errorf("from segment %d to %d: %w", origin, destination, ErrNoRoute)
	}
	return nodeIDs(nodes), weight, nil
}

// KShortestPaths returns up to k loopless routes in increasing driven distance.
func KShortestPaths(n *element.Network, origin, destination int64, k int) ([][]int64, error) {
	from, to, err := endpoints(n, origin, destination)
	if err != nil {
		return nil, err
	}
	if origin == destination {
		return [][]int64{{origin}}, nil
	}

	paths := path.YenKShortestPaths(n, k, math.Inf(1), from, to)
	if len(paths) == 0 {
		return nil, fmt.Errorf("from segment %d to %d: %w", origin, destination, ErrNoRoute)
	}
	routes := make([][]int64, len(paths))
	for i, p := range paths {
		routes[i] = nodeIDs(p)
	}
	return routes, nil
}

// ChooseFromKShortestPaths picks one of the k shortest routes
func ChooseFromKShortestPaths(n *element.Network, origin, destination int64, k int,
	strategy string, weightFactor float64, rng *rand.Rand) ([]int64, float64, error) {

	routes, err := KShortestPaths(n, origin, destination, k)
	if err != nil {
		return nil, 0, err
	}

	lengths := make([]float64, len(routes))
	for i, route := range routes {
		lengths[i] = RouteLength(n, route)
	}

	if len(routes) == 1 || rng == nil {
		return routes[0], lengths[0], nil
	}

	switch strategy {
	case "random":
		i := rng.Intn(len(routes))
		return routes[i], lengths[i], nil

	case "weighted":
		// shorter routes get exponentially more weight
		maxLength := 0.0
		for _, l := range lengths {
			maxLength = math.Max(maxLength, l)
		}
		weights := make([]float64, len(routes))
		total := 0.0
		for i, l := range lengths {
			normalized := 0.0
			if maxLength > 0 {
				normalized = l / maxLength
			}
			weights[i] = math.Exp(-weightFactor * normalized)
			total += weights[i]
		}

		r := rng.Float64() * total
		cumulative := 0.0
		for i, w := range weights {
			cumulative += w
			if r <= cumulative {
				return routes[i], lengths[i], nil
			}
		}
		last := len(routes) - 1
		return routes[last], lengths[last], nil

	default:
		return routes[0], lengths[0], nil
	}
}

// RouteLength sums the driven distance after the first segment of route.
func RouteLength(n *element.Network, route []int64) float64 {
	total := 0.0
	for i := 1; i < len(route); i++ {
		w, ok := n.Weight(route[i-1], route[i])
		if !ok {
			return math.Inf(1)
		}
		total += w
	}
	return total
}

// IsStronglyConnected reports whether every segment can reach every other.
func IsStronglyConnected(n *element.Network) bool {
	if n.Len() == 0 {
		return true
	}
	return len(topo.TarjanSCC(n)) == 1
}

// StronglyConnectedComponents returns the segment IDs of each component.
func StronglyConnectedComponents(n *element.Network) [][]int64 {
	sccs := topo.TarjanSCC(n)
	result := make([][]int64, len(sccs))
	for i, scc := range sccs {
		result[i] = nodeIDs(scc)
	}
	return result
}

// Reachable returns every segment reachable from origin, origin included,
// in breadth-first order.
func Reachable(n *element.Network, origin int64) ([]int64, error) {
	from, err := n.Segment(origin)
	if err != nil {
		return nil, err
	}
	var reached []int64
	bf := traverse.BreadthFirst{
		Visit: func(node graph.Node) { reached = append(reached, node.ID()) },
	}
	bf.Walk(n, from, nil)
	return reached, nil
}

func endpoints(n *element.Network, origin, destination int64) (graph.Node, graph.Node, error) {
	from, err := n.Segment(origin)
	if err != nil {
		return nil, nil, fmt.Errorf("route start: %w", err)
	}
	to, err := n.Segment(destination)
	if err != nil {
		return nil, nil, fmt.Errorf("route destination: %w", err)
	}
	return from, to, nil
}

func nodeIDs(nodes []graph.Node) []int64 {
	ids := make([]int64, len(nodes))
	for i, node := range nodes {
		ids[i] = node.ID()
	}
	return ids
}
